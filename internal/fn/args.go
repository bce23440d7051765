package fn

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Args holds the model's argument values after type-directed
// conversion. Arguments the model omitted are simply absent; the typed
// accessors return the zero value for them.
type Args map[string]any

func (a Args) Has(name string) bool {
	_, ok := a[name]
	return ok
}

func (a Args) String(name string) string {
	v, _ := a[name].(string)
	return v
}

func (a Args) Bool(name string) bool {
	v, _ := a[name].(bool)
	return v
}

func (a Args) Int(name string) int {
	v, _ := a[name].(int)
	return v
}

func (a Args) Float(name string) float64 {
	switch v := a[name].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return 0
}

// parseArgs converts the raw JSON argument object produced by the
// model into an Args map, parsing each value according to its declared
// parameter type. Values may arrive either as native JSON scalars or
// as quoted text; both forms go through the same text parsing.
func parseArgs(params []Param, rawArgs string) (Args, error) {
	args := make(Args, len(params))

	rawArgs = strings.TrimSpace(rawArgs)
	if rawArgs == "" {
		return args, nil
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(rawArgs), &raw); err != nil {
		return nil, fmt.Errorf("arguments are not a JSON object: %w", err)
	}

	for _, p := range params {
		rv, ok := raw[p.Name]
		if !ok {
			continue
		}
		v, err := parseValue(p.Type, rv)
		if err != nil {
			return nil, fmt.Errorf("parameter %q: %w", p.Name, err)
		}
		args[p.Name] = v
	}
	return args, nil
}

func parseValue(typ ParamType, raw json.RawMessage) (any, error) {
	// Unwrap quoted values so "42" and 42 parse the same way.
	text := string(raw)
	if len(raw) > 0 && raw[0] == '"' {
		if err := json.Unmarshal(raw, &text); err != nil {
			return nil, fmt.Errorf("malformed string value %s", raw)
		}
	}

	switch typ {
	case TypeString:
		return text, nil
	case TypeBoolean:
		switch text {
		case "true":
			return true, nil
		case "false":
			return false, nil
		}
		return nil, fmt.Errorf("expected true or false, got %q", text)
	case TypeInteger:
		n, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("expected an integer, got %q", text)
		}
		return int(n), nil
	case TypeNumber:
		n, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, fmt.Errorf("expected a number, got %q", text)
		}
		return n, nil
	}
	return nil, fmt.Errorf("unknown parameter type %q", typ)
}

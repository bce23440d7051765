// Package fn models the callable functions a caller exposes to the
// model: typed parameter declarations, JSON-Schema-shaped wire
// descriptors, and type-directed dispatch of the model's raw argument
// values to a bound Go handler.
package fn

import (
	"context"
	"errors"
	"fmt"

	"parley/internal/openai"
)

// ErrConfig marks errors in how a function (or a call using functions)
// was declared. They are reported before any network I/O happens.
var ErrConfig = errors.New("invalid function configuration")

// ParamType is the declared wire type of one parameter.
type ParamType string

const (
	TypeString  ParamType = "string"
	TypeInteger ParamType = "integer"
	TypeNumber  ParamType = "number"
	TypeBoolean ParamType = "boolean"
)

// Param declares one function parameter.
type Param struct {
	Name        string
	Type        ParamType
	Description string
	Required    bool
	Enum        []any
}

// Handler is the bound implementation of a function. It receives the
// model's arguments already converted to their declared types and
// returns the string fed back into the conversation.
type Handler func(ctx context.Context, args Args) (string, error)

// RawHandler is the implementation shape for externally-described
// functions whose schema does not come from the builder (for example
// functions bridged from an MCP server). It receives the raw argument
// JSON text unchanged.
type RawHandler func(ctx context.Context, rawArgs string) (string, error)

// Function is one callable function descriptor: name, description,
// parameter schema and a bound handler.
type Function struct {
	name        string
	description string
	params      []Param
	handler     Handler

	rawSchema  map[string]any
	rawHandler RawHandler

	schema map[string]any // cached serialized form
}

// New starts a function descriptor. Parameters and the handler are
// added with the builder methods; validation happens in Validate,
// which the registry runs at registration time.
func New(name, description string) *Function {
	return &Function{
		name:        name,
		description: description,
	}
}

// NewFromSchema creates a descriptor whose parameter schema was
// produced by an external source instead of the builder. The handler
// receives the raw argument text since no typed declarations exist.
func NewFromSchema(name, description string, schema map[string]any, h RawHandler) *Function {
	if schema == nil {
		schema = map[string]any{
			"type":       "object",
			"properties": map[string]any{},
		}
	}
	return &Function{
		name:        name,
		description: description,
		rawSchema:   schema,
		rawHandler:  h,
	}
}

// AddParam declares a plain typed parameter.
func (f *Function) AddParam(name string, typ ParamType, description string, required bool) *Function {
	f.params = append(f.params, Param{
		Name:        name,
		Type:        typ,
		Description: description,
		Required:    required,
	})
	return f
}

// AddEnumParam declares a parameter constrained to a fixed set of
// literal values. Enum parameters need no description; the value set
// documents them.
func (f *Function) AddEnumParam(name string, typ ParamType, enum []any, required bool) *Function {
	f.params = append(f.params, Param{
		Name:     name,
		Type:     typ,
		Required: required,
		Enum:     enum,
	})
	return f
}

// Bind attaches the handler invoked when the model calls this function.
func (f *Function) Bind(h Handler) *Function {
	f.handler = h
	return f
}

func (f *Function) Name() string        { return f.name }
func (f *Function) Description() string { return f.description }

// Validate checks the declaration. The model requires a description
// for every free-form parameter, so a plain non-boolean parameter
// without one is rejected here, before any request is built.
func (f *Function) Validate() error {
	if f.name == "" {
		return fmt.Errorf("%w: function name is empty", ErrConfig)
	}
	if f.handler == nil && f.rawHandler == nil {
		return fmt.Errorf("%w: function %q has no bound handler", ErrConfig, f.name)
	}
	if f.rawSchema != nil {
		return nil
	}

	seen := make(map[string]bool, len(f.params))
	for _, p := range f.params {
		if p.Name == "" {
			return fmt.Errorf("%w: function %q has a parameter without a name", ErrConfig, f.name)
		}
		if seen[p.Name] {
			return fmt.Errorf("%w: function %q declares parameter %q twice", ErrConfig, f.name, p.Name)
		}
		seen[p.Name] = true

		switch p.Type {
		case TypeString, TypeInteger, TypeNumber, TypeBoolean:
		default:
			return fmt.Errorf("%w: function %q parameter %q has unknown type %q", ErrConfig, f.name, p.Name, p.Type)
		}

		if len(p.Enum) > 0 {
			for _, v := range p.Enum {
				if !enumValueMatches(p.Type, v) {
					return fmt.Errorf("%w: function %q parameter %q: enum value %v (%T) does not match declared type %s",
						ErrConfig, f.name, p.Name, v, v, p.Type)
				}
			}
			continue
		}
		if p.Type == TypeBoolean {
			continue
		}
		if p.Description == "" {
			return fmt.Errorf("%w: function %q parameter %q needs a description", ErrConfig, f.name, p.Name)
		}
	}
	return nil
}

func enumValueMatches(typ ParamType, v any) bool {
	switch typ {
	case TypeString:
		_, ok := v.(string)
		return ok
	case TypeBoolean:
		_, ok := v.(bool)
		return ok
	case TypeInteger:
		switch v.(type) {
		case int, int32, int64:
			return true
		}
		return false
	case TypeNumber:
		switch v.(type) {
		case int, int32, int64, float32, float64:
			return true
		}
		return false
	}
	return false
}

// Schema returns the JSON-Schema-shaped parameter object sent on the
// wire. The result is computed once and cached.
func (f *Function) Schema() map[string]any {
	if f.rawSchema != nil {
		return f.rawSchema
	}
	if f.schema != nil {
		return f.schema
	}

	properties := make(map[string]any, len(f.params))
	required := make([]string, 0, len(f.params))
	for _, p := range f.params {
		prop := map[string]any{"type": string(p.Type)}
		if len(p.Enum) > 0 {
			prop["enum"] = p.Enum
		} else if p.Description != "" {
			prop["description"] = p.Description
		}
		properties[p.Name] = prop

		if p.Required {
			required = append(required, p.Name)
		}
	}

	f.schema = map[string]any{
		"type":       "object",
		"properties": properties,
		"required":   required,
	}
	return f.schema
}

// Definition returns the wire descriptor for this function.
func (f *Function) Definition() openai.FunctionDefinition {
	return openai.FunctionDefinition{
		Name:        f.name,
		Description: f.description,
		Parameters:  f.Schema(),
	}
}

// Call parses the raw argument text per the declared parameter types
// and invokes the handler. Failures are not propagated: they come back
// as the textual result so the model can see what went wrong and retry
// with corrected arguments.
func (f *Function) Call(ctx context.Context, rawArgs string) string {
	if f.rawHandler != nil {
		out, err := f.rawHandler(ctx, rawArgs)
		if err != nil {
			return fmt.Sprintf("error: %s failed: %v", f.name, err)
		}
		return out
	}

	args, err := parseArgs(f.params, rawArgs)
	if err != nil {
		return fmt.Sprintf("error: invalid arguments for %s: %v", f.name, err)
	}

	out, err := f.handler(ctx, args)
	if err != nil {
		return fmt.Sprintf("error: %s failed: %v", f.name, err)
	}
	return out
}

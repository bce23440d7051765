package builtin

import (
	"context"
	"fmt"
	"hash/fnv"

	"parley/internal/fn"
)

var conditions = []string{"sunny", "partly cloudy", "overcast", "light rain", "windy"}

// Weather is a canned forecast used for demonstrating function calls
// without a real weather backend. The answer is deterministic per
// location so repeated calls in one demo stay consistent.
func Weather() *fn.Function {
	return fn.New("get_weather", "Get the current weather for a city").
		AddParam("location", fn.TypeString, "City name, e.g. Oslo", true).
		AddEnumParam("unit", fn.TypeString, []any{"celsius", "fahrenheit"}, false).
		Bind(func(ctx context.Context, args fn.Args) (string, error) {
			location := args.String("location")
			if location == "" {
				return "", fmt.Errorf("location is required")
			}

			h := fnv.New32a()
			h.Write([]byte(location))
			seed := h.Sum32()

			tempC := int(seed%30) - 5
			condition := conditions[seed%uint32(len(conditions))]

			if args.String("unit") == "fahrenheit" {
				return fmt.Sprintf("%d°F and %s in %s", tempC*9/5+32, condition, location), nil
			}
			return fmt.Sprintf("%d°C and %s in %s", tempC, condition, location), nil
		})
}

package builtin

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"parley/internal/fn"
)

// Clock reports the current time, optionally in a named timezone or as
// a unix timestamp.
func Clock() *fn.Function {
	return fn.New("current_time", "Get the current date and time").
		AddParam("timezone", fn.TypeString, "IANA timezone name, e.g. Europe/Oslo; local time if omitted", false).
		AddParam("unix", fn.TypeBoolean, "", false).
		Bind(func(ctx context.Context, args fn.Args) (string, error) {
			now := time.Now()

			if tz := args.String("timezone"); tz != "" {
				loc, err := time.LoadLocation(tz)
				if err != nil {
					return "", fmt.Errorf("unknown timezone %q", tz)
				}
				now = now.In(loc)
			}

			if args.Bool("unix") {
				return strconv.FormatInt(now.Unix(), 10), nil
			}
			return now.Format(time.RFC1123), nil
		})
}

package builtin

import (
	"context"
	"strings"
	"testing"
)

func TestCalculator(t *testing.T) {
	calc := Calculator()
	if err := calc.Validate(); err != nil {
		t.Fatalf("Calculator must be a valid function: %v", err)
	}

	tests := []struct {
		name string
		args string
		want string
	}{
		{"add", `{"op": "add", "a": 9, "b": 900}`, "909"},
		{"sub", `{"op": "sub", "a": 5, "b": 8}`, "-3"},
		{"mul", `{"op": "mul", "a": 2.5, "b": 4}`, "10"},
		{"div", `{"op": "div", "a": 9, "b": 2}`, "4.5"},
		{"quoted numbers", `{"op": "add", "a": "1", "b": "2"}`, "3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := calc.Call(context.Background(), tt.args)
			if got != tt.want {
				t.Errorf("Call(%s) = %q, want %q", tt.args, got, tt.want)
			}
		})
	}
}

func TestCalculatorDivisionByZero(t *testing.T) {
	calc := Calculator()

	got := calc.Call(context.Background(), `{"op": "div", "a": 1, "b": 0}`)
	if !strings.Contains(got, "error") {
		t.Errorf("Expected textual error result, got %q", got)
	}
}

func TestClockUnix(t *testing.T) {
	clock := Clock()
	if err := clock.Validate(); err != nil {
		t.Fatalf("Clock must be a valid function: %v", err)
	}

	got := clock.Call(context.Background(), `{"unix": true}`)
	if strings.Contains(got, "error") {
		t.Fatalf("Unexpected error result: %q", got)
	}
	for _, ch := range got {
		if ch < '0' || ch > '9' {
			t.Fatalf("Expected a unix timestamp, got %q", got)
		}
	}
}

func TestClockBadTimezone(t *testing.T) {
	clock := Clock()

	got := clock.Call(context.Background(), `{"timezone": "Nowhere/Invalid"}`)
	if !strings.Contains(got, "error") {
		t.Errorf("Expected textual error result, got %q", got)
	}
}

func TestWeatherDeterministic(t *testing.T) {
	weather := Weather()
	if err := weather.Validate(); err != nil {
		t.Fatalf("Weather must be a valid function: %v", err)
	}

	first := weather.Call(context.Background(), `{"location": "Oslo"}`)
	second := weather.Call(context.Background(), `{"location": "Oslo"}`)
	if first != second {
		t.Errorf("Expected stable answer per location, got %q then %q", first, second)
	}
	if !strings.Contains(first, "Oslo") {
		t.Errorf("Expected location in answer, got %q", first)
	}
}

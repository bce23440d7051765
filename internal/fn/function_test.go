package fn

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemaShape(t *testing.T) {
	f := New("add", "Add two integers").
		AddParam("a", TypeInteger, "First addend", true).
		AddParam("b", TypeInteger, "Second addend", true).
		Bind(func(ctx context.Context, args Args) (string, error) { return "", nil })

	require.NoError(t, f.Validate())
	schema := f.Schema()

	assert.Equal(t, "object", schema["type"])
	assert.Equal(t, []string{"a", "b"}, schema["required"])

	props, ok := schema["properties"].(map[string]any)
	require.True(t, ok)
	a, ok := props["a"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "integer", a["type"])
	assert.Equal(t, "First addend", a["description"])
}

func TestSchemaEnumProperty(t *testing.T) {
	f := New("pick", "Pick a color").
		AddEnumParam("color", TypeString, []any{"red", "green", "blue"}, true).
		Bind(func(ctx context.Context, args Args) (string, error) { return "", nil })

	require.NoError(t, f.Validate())
	props := f.Schema()["properties"].(map[string]any)
	color := props["color"].(map[string]any)

	assert.Equal(t, []any{"red", "green", "blue"}, color["enum"])
	assert.NotContains(t, color, "description")
}

func TestSchemaIsCached(t *testing.T) {
	f := New("noop", "Does nothing").
		Bind(func(ctx context.Context, args Args) (string, error) { return "", nil })

	first := f.Schema()
	second := f.Schema()
	// Same underlying map, not a recomputed copy.
	first["marker"] = true
	assert.Contains(t, second, "marker")
}

func TestValidateRequiresDescription(t *testing.T) {
	f := New("greet", "Greet someone").
		AddParam("name", TypeString, "", true).
		Bind(func(ctx context.Context, args Args) (string, error) { return "", nil })

	err := f.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConfig)
}

func TestValidateBooleanNeedsNoDescription(t *testing.T) {
	f := New("toggle", "Toggle a flag").
		AddParam("on", TypeBoolean, "", true).
		Bind(func(ctx context.Context, args Args) (string, error) { return "", nil })

	assert.NoError(t, f.Validate())
}

func TestValidateEnumTypeMismatch(t *testing.T) {
	f := New("count", "Count things").
		AddEnumParam("limit", TypeInteger, []any{1, 2, "three"}, true).
		Bind(func(ctx context.Context, args Args) (string, error) { return "", nil })

	err := f.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConfig)
}

func TestValidateUnboundHandler(t *testing.T) {
	f := New("orphan", "Never bound")

	err := f.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConfig)
}

func TestValidateDuplicateParam(t *testing.T) {
	f := New("dup", "Duplicate parameter names").
		AddParam("x", TypeInteger, "A value", true).
		AddParam("x", TypeInteger, "The same value", false).
		Bind(func(ctx context.Context, args Args) (string, error) { return "", nil })

	assert.ErrorIs(t, f.Validate(), ErrConfig)
}

func TestCallInvokesHandler(t *testing.T) {
	f := New("add", "Add two integers").
		AddParam("a", TypeInteger, "First addend", true).
		AddParam("b", TypeInteger, "Second addend", true).
		Bind(func(ctx context.Context, args Args) (string, error) {
			return "909", nil
		})

	out := f.Call(context.Background(), `{"a": 9, "b": 900}`)
	assert.Equal(t, "909", out)
}

func TestCallHandlerErrorBecomesText(t *testing.T) {
	f := New("explode", "Always fails").
		Bind(func(ctx context.Context, args Args) (string, error) {
			return "", assert.AnError
		})

	out := f.Call(context.Background(), "{}")
	assert.Contains(t, out, "error:")
	assert.Contains(t, out, "explode")
}

func TestCallBadArgumentsBecomeText(t *testing.T) {
	called := false
	f := New("add", "Add two integers").
		AddParam("a", TypeInteger, "First addend", true).
		Bind(func(ctx context.Context, args Args) (string, error) {
			called = true
			return "", nil
		})

	out := f.Call(context.Background(), `{"a": "not a number"}`)
	assert.False(t, called, "handler must not run on bad arguments")
	assert.Contains(t, out, "invalid arguments")
}

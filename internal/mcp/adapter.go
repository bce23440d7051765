package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"parley/internal/fn"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// AdaptTool builds a function descriptor for one MCP tool. The
// descriptor keeps the server's own input schema and hands the raw
// argument text straight through to the server, so no typed parameter
// declarations are involved.
func AdaptTool(client *Client, tool *mcp.Tool) *fn.Function {
	name := fmt.Sprintf("%s_%s", client.Name(), tool.Name)

	description := tool.Description
	if description == "" {
		description = fmt.Sprintf("Tool from the %s MCP server", client.Name())
	}

	return fn.NewFromSchema(name, description, toolSchema(tool), func(ctx context.Context, rawArgs string) (string, error) {
		var args map[string]any
		if strings.TrimSpace(rawArgs) != "" {
			if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
				return "", fmt.Errorf("invalid arguments: %w", err)
			}
		}

		result, err := client.CallTool(ctx, tool.Name, args)
		if err != nil {
			return "", err
		}
		if result.IsError {
			return "", fmt.Errorf("%s", formatError(result))
		}
		return formatContent(result.Content), nil
	})
}

// toolSchema converts the SDK's untyped input schema into the
// map shape used on the wire.
func toolSchema(tool *mcp.Tool) map[string]any {
	emptySchema := map[string]any{
		"type":       "object",
		"properties": map[string]any{},
	}

	if tool.InputSchema == nil {
		return emptySchema
	}

	if schema, ok := tool.InputSchema.(map[string]any); ok {
		return schema
	}

	// The SDK may hand back a typed schema struct; round-trip it
	// through JSON to get the generic map form.
	schemaBytes, err := json.Marshal(tool.InputSchema)
	if err != nil {
		return emptySchema
	}
	var schema map[string]any
	if err := json.Unmarshal(schemaBytes, &schema); err != nil {
		return emptySchema
	}
	return schema
}

// formatContent flattens an MCP content array into the string fed back
// to the model.
func formatContent(content []mcp.Content) string {
	var parts []string

	for _, item := range content {
		switch c := item.(type) {
		case *mcp.TextContent:
			parts = append(parts, c.Text)
		case *mcp.ImageContent:
			parts = append(parts, fmt.Sprintf("[Image: %s]", c.MIMEType))
		case *mcp.AudioContent:
			parts = append(parts, fmt.Sprintf("[Audio: %s]", c.MIMEType))
		default:
			data, err := json.Marshal(item)
			if err != nil {
				parts = append(parts, fmt.Sprintf("[Unknown content type: %T]", item))
			} else {
				parts = append(parts, string(data))
			}
		}
	}

	return strings.Join(parts, "\n")
}

func formatError(result *mcp.CallToolResult) string {
	if len(result.Content) > 0 {
		return formatContent(result.Content)
	}
	return "MCP tool returned an error"
}

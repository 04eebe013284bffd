// Package tools binds GNS3 client operations to MCP tool
// definitions: input schemas, argument decoding and result shaping.
package tools

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/JMartinCreuzburg/gns3-over-mcp/gns3"
	"github.com/JMartinCreuzburg/gns3-over-mcp/mcp"
)

// RegisterAll registers every tool on the registry. Registration
// order is advertisement order.
func RegisterAll(reg *mcp.Registry, client *gns3.Client) error {
	groups := [][]mcp.Tool{
		projectTools(client),
		nodeTools(client),
		linkTools(client),
		templateTools(client),
	}
	for _, group := range groups {
		for _, tool := range group {
			if err := reg.Register(tool); err != nil {
				return err
			}
		}
	}
	return nil
}

// ok marks a handler result as successful.
func ok(fields map[string]any) map[string]any {
	fields["success"] = true
	return fields
}

func stringArg(args map[string]any, key string) (string, error) {
	v, present := args[key]
	if !present {
		return "", fmt.Errorf("missing required argument %q", key)
	}
	s, isString := v.(string)
	if !isString {
		return "", fmt.Errorf("argument %q must be a string", key)
	}
	return s, nil
}

func optStringArg(args map[string]any, key string) (string, error) {
	if v, present := args[key]; !present || v == nil {
		return "", nil
	}
	return stringArg(args, key)
}

// intArg reads an integer argument. JSON numbers decode as float64,
// so the value is accepted only when it has no fractional part.
func intArg(args map[string]any, key string) (int, error) {
	v, present := args[key]
	if !present {
		return 0, fmt.Errorf("missing required argument %q", key)
	}
	f, isNumber := v.(float64)
	if !isNumber || f != float64(int(f)) {
		return 0, fmt.Errorf("argument %q must be an integer", key)
	}
	return int(f), nil
}

func optIntArg(args map[string]any, key string, fallback int) (int, error) {
	if v, present := args[key]; !present || v == nil {
		return fallback, nil
	}
	return intArg(args, key)
}

// idArg reads a required argument that must hold a UUID, the form
// GNS3 uses for every resource identifier.
func idArg(args map[string]any, key string) (string, error) {
	s, err := stringArg(args, key)
	if err != nil {
		return "", err
	}
	if _, err := uuid.Parse(s); err != nil {
		return "", fmt.Errorf("argument %q must be a UUID, got %q", key, s)
	}
	return s, nil
}

func optIDArg(args map[string]any, key string) (string, error) {
	s, err := optStringArg(args, key)
	if err != nil || s == "" {
		return s, err
	}
	if _, err := uuid.Parse(s); err != nil {
		return "", fmt.Errorf("argument %q must be a UUID, got %q", key, s)
	}
	return s, nil
}

func objectSchema(required []string, props map[string]any) map[string]any {
	schema := map[string]any{
		"type":       "object",
		"properties": props,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func stringProp(desc string) map[string]any {
	return map[string]any{"type": "string", "description": desc}
}

func uuidProp(desc string) map[string]any {
	return map[string]any{"type": "string", "format": "uuid", "description": desc}
}

func intProp(desc string) map[string]any {
	return map[string]any{"type": "integer", "description": desc}
}

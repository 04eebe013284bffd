package tools

import (
	"context"

	"github.com/JMartinCreuzburg/gns3-over-mcp/gns3"
	"github.com/JMartinCreuzburg/gns3-over-mcp/mcp"
)

func templateTools(client *gns3.Client) []mcp.Tool {
	return []mcp.Tool{
		{
			Name:        "list_templates",
			Description: "List all available node templates in GNS3.",
			InputSchema: objectSchema(nil, map[string]any{}),
			Handler: func(ctx context.Context, _ map[string]any) (any, error) {
				templates, err := client.ListTemplates(ctx)
				if err != nil {
					return nil, err
				}
				return ok(map[string]any{
					"templates": templates,
					"count":     len(templates),
				}), nil
			},
		},
	}
}

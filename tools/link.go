package tools

import (
	"context"
	"fmt"

	"github.com/JMartinCreuzburg/gns3-over-mcp/gns3"
	"github.com/JMartinCreuzburg/gns3-over-mcp/mcp"
)

func linkTools(client *gns3.Client) []mcp.Tool {
	return []mcp.Tool{
		{
			Name:        "list_links",
			Description: "List all links in a GNS3 project.",
			InputSchema: objectSchema(
				[]string{"project_id"},
				map[string]any{
					"project_id": uuidProp("UUID of the project"),
				},
			),
			Handler: func(ctx context.Context, args map[string]any) (any, error) {
				projectID, err := idArg(args, "project_id")
				if err != nil {
					return nil, err
				}
				links, err := client.ListLinks(ctx, projectID)
				if err != nil {
					return nil, err
				}
				return ok(map[string]any{
					"links": links,
					"count": len(links),
				}), nil
			},
		},
		{
			Name:        "create_link",
			Description: "Create a link between two nodes in a GNS3 project.",
			InputSchema: objectSchema(
				[]string{"project_id", "node_a_id", "node_a_port", "node_b_id", "node_b_port"},
				map[string]any{
					"project_id":  uuidProp("UUID of the project"),
					"node_a_id":   uuidProp("UUID of the first node"),
					"node_a_port": intProp("Port number on the first node"),
					"node_b_id":   uuidProp("UUID of the second node"),
					"node_b_port": intProp("Port number on the second node"),
				},
			),
			Handler: func(ctx context.Context, args map[string]any) (any, error) {
				projectID, err := idArg(args, "project_id")
				if err != nil {
					return nil, err
				}
				nodeAID, err := idArg(args, "node_a_id")
				if err != nil {
					return nil, err
				}
				nodeAPort, err := intArg(args, "node_a_port")
				if err != nil {
					return nil, err
				}
				nodeBID, err := idArg(args, "node_b_id")
				if err != nil {
					return nil, err
				}
				nodeBPort, err := intArg(args, "node_b_port")
				if err != nil {
					return nil, err
				}
				link, err := client.CreateLink(ctx, projectID,
					gns3.LinkEndpoint{NodeID: nodeAID, Port: nodeAPort},
					gns3.LinkEndpoint{NodeID: nodeBID, Port: nodeBPort},
				)
				if err != nil {
					return nil, err
				}
				return ok(map[string]any{
					"link":    link,
					"message": "Link created successfully",
				}), nil
			},
		},
		{
			Name:        "delete_link",
			Description: "Delete a link from a GNS3 project.",
			InputSchema: objectSchema(
				[]string{"project_id", "link_id"},
				map[string]any{
					"project_id": uuidProp("UUID of the project"),
					"link_id":    uuidProp("UUID of the link to delete"),
				},
			),
			Handler: func(ctx context.Context, args map[string]any) (any, error) {
				projectID, err := idArg(args, "project_id")
				if err != nil {
					return nil, err
				}
				linkID, err := idArg(args, "link_id")
				if err != nil {
					return nil, err
				}
				if err := client.DeleteLink(ctx, projectID, linkID); err != nil {
					return nil, err
				}
				return ok(map[string]any{
					"message": fmt.Sprintf("Link %s deleted successfully", linkID),
				}), nil
			},
		},
	}
}

package tools

import (
	"context"
	"fmt"

	"github.com/JMartinCreuzburg/gns3-over-mcp/gns3"
	"github.com/JMartinCreuzburg/gns3-over-mcp/mcp"
)

func nodeTools(client *gns3.Client) []mcp.Tool {
	return []mcp.Tool{
		{
			Name:        "list_nodes",
			Description: "List all nodes in a GNS3 project.",
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
				nodes, err := client.ListNodes(ctx, projectID)
				if err != nil {
					return nil, err
				}
				return ok(map[string]any{
					"nodes": nodes,
					"count": len(nodes),
				}), nil
			},
		},
		{
			Name:        "create_node",
			Description: "Create a new node in a GNS3 project.",
			InputSchema: objectSchema(
				[]string{"project_id", "name", "node_type"},
				map[string]any{
					"project_id":  uuidProp("UUID of the project"),
					"name":        stringProp("Name for the node"),
					"node_type":   stringProp("Type of node (qemu, vpcs, docker, dynamips, iou)"),
					"template_id": uuidProp("Optional UUID of a template to use"),
					"x":           intProp("X position in topology (default: 0)"),
					"y":           intProp("Y position in topology (default: 0)"),
				},
			),
			Handler: func(ctx context.Context, args map[string]any) (any, error) {
				projectID, err := idArg(args, "project_id")
				if err != nil {
					return nil, err
				}
				name, err := stringArg(args, "name")
				if err != nil {
					return nil, err
				}
				nodeType, err := stringArg(args, "node_type")
				if err != nil {
					return nil, err
				}
				templateID, err := optIDArg(args, "template_id")
				if err != nil {
					return nil, err
				}
				x, err := optIntArg(args, "x", 0)
				if err != nil {
					return nil, err
				}
				y, err := optIntArg(args, "y", 0)
				if err != nil {
					return nil, err
				}
				node, err := client.CreateNode(ctx, projectID, gns3.NodeSpec{
					Name:       name,
					NodeType:   nodeType,
					TemplateID: templateID,
					X:          x,
					Y:          y,
				})
				if err != nil {
					return nil, err
				}
				return ok(map[string]any{
					"node":    node,
					"message": fmt.Sprintf("Node '%s' created successfully", name),
				}), nil
			},
		},
		{
			Name:        "delete_node",
			Description: "Delete a node from a GNS3 project.",
			InputSchema: objectSchema(
				[]string{"project_id", "node_id"},
				map[string]any{
					"project_id": uuidProp("UUID of the project"),
					"node_id":    uuidProp("UUID of the node to delete"),
				},
			),
			Handler: func(ctx context.Context, args map[string]any) (any, error) {
				projectID, err := idArg(args, "project_id")
				if err != nil {
					return nil, err
				}
				nodeID, err := idArg(args, "node_id")
				if err != nil {
					return nil, err
				}
				if err := client.DeleteNode(ctx, projectID, nodeID); err != nil {
					return nil, err
				}
				return ok(map[string]any{
					"message": fmt.Sprintf("Node %s deleted successfully", nodeID),
				}), nil
			},
		},
		{
			Name:        "start_node",
			Description: "Start a node in a GNS3 project.",
			InputSchema: objectSchema(
				[]string{"project_id", "node_id"},
				map[string]any{
					"project_id": uuidProp("UUID of the project"),
					"node_id":    uuidProp("UUID of the node to start"),
				},
			),
			Handler: func(ctx context.Context, args map[string]any) (any, error) {
				projectID, err := idArg(args, "project_id")
				if err != nil {
					return nil, err
				}
				nodeID, err := idArg(args, "node_id")
				if err != nil {
					return nil, err
				}
				node, err := client.StartNode(ctx, projectID, nodeID)
				if err != nil {
					return nil, err
				}
				return ok(map[string]any{
					"node":    node,
					"message": fmt.Sprintf("Node %s started successfully", nodeID),
				}), nil
			},
		},
		{
			Name:        "stop_node",
			Description: "Stop a node in a GNS3 project.",
			InputSchema: objectSchema(
				[]string{"project_id", "node_id"},
				map[string]any{
					"project_id": uuidProp("UUID of the project"),
					"node_id":    uuidProp("UUID of the node to stop"),
				},
			),
			Handler: func(ctx context.Context, args map[string]any) (any, error) {
				projectID, err := idArg(args, "project_id")
				if err != nil {
					return nil, err
				}
				nodeID, err := idArg(args, "node_id")
				if err != nil {
					return nil, err
				}
				node, err := client.StopNode(ctx, projectID, nodeID)
				if err != nil {
					return nil, err
				}
				return ok(map[string]any{
					"node":    node,
					"message": fmt.Sprintf("Node %s stopped successfully", nodeID),
				}), nil
			},
		},
		{
			Name:        "start_all_nodes",
			Description: "Start all nodes in a GNS3 project.",
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
				if err := client.StartAllNodes(ctx, projectID); err != nil {
					return nil, err
				}
				nodes, err := client.ListNodes(ctx, projectID)
				if err != nil {
					return nil, err
				}
				return ok(map[string]any{
					"message": "All nodes started successfully",
					"nodes":   nodes,
				}), nil
			},
		},
		{
			Name:        "stop_all_nodes",
			Description: "Stop all nodes in a GNS3 project.",
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
				if err := client.StopAllNodes(ctx, projectID); err != nil {
					return nil, err
				}
				nodes, err := client.ListNodes(ctx, projectID)
				if err != nil {
					return nil, err
				}
				return ok(map[string]any{
					"message": "All nodes stopped successfully",
					"nodes":   nodes,
				}), nil
			},
		},
	}
}

package tools

import (
	"context"
	"fmt"

	"github.com/JMartinCreuzburg/gns3-over-mcp/gns3"
	"github.com/JMartinCreuzburg/gns3-over-mcp/mcp"
)

func projectTools(client *gns3.Client) []mcp.Tool {
	return []mcp.Tool{
		{
			Name:        "create_project",
			Description: "Create a new GNS3 project.",
			InputSchema: objectSchema(
				[]string{"name"},
				map[string]any{
					"name": stringProp("Name for the new project"),
					"path": stringProp("Optional custom directory path for the project"),
				},
			),
			Handler: func(ctx context.Context, args map[string]any) (any, error) {
				name, err := stringArg(args, "name")
				if err != nil {
					return nil, err
				}
				path, err := optStringArg(args, "path")
				if err != nil {
					return nil, err
				}
				project, err := client.CreateProject(ctx, name, path)
				if err != nil {
					return nil, err
				}
				return ok(map[string]any{
					"project": project,
					"message": fmt.Sprintf("Project '%s' created successfully", name),
				}), nil
			},
		},
		{
			Name:        "list_projects",
			Description: "List all GNS3 projects.",
			InputSchema: objectSchema(nil, map[string]any{}),
			Handler: func(ctx context.Context, _ map[string]any) (any, error) {
				projects, err := client.ListProjects(ctx)
				if err != nil {
					return nil, err
				}
				return ok(map[string]any{
					"projects": projects,
					"count":    len(projects),
				}), nil
			},
		},
		{
			Name:        "get_project",
			Description: "Get details of a specific GNS3 project.",
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
				project, err := client.GetProject(ctx, projectID)
				if err != nil {
					return nil, err
				}
				return ok(map[string]any{"project": project}), nil
			},
		},
		{
			Name:        "open_project",
			Description: "Open a GNS3 project.",
			InputSchema: objectSchema(
				[]string{"project_id"},
				map[string]any{
					"project_id": uuidProp("UUID of the project to open"),
				},
			),
			Handler: func(ctx context.Context, args map[string]any) (any, error) {
				projectID, err := idArg(args, "project_id")
				if err != nil {
					return nil, err
				}
				project, err := client.OpenProject(ctx, projectID)
				if err != nil {
					return nil, err
				}
				return ok(map[string]any{
					"project": project,
					"message": fmt.Sprintf("Project %s opened successfully", projectID),
				}), nil
			},
		},
		{
			Name:        "close_project",
			Description: "Close a GNS3 project.",
			InputSchema: objectSchema(
				[]string{"project_id"},
				map[string]any{
					"project_id": uuidProp("UUID of the project to close"),
				},
			),
			Handler: func(ctx context.Context, args map[string]any) (any, error) {
				projectID, err := idArg(args, "project_id")
				if err != nil {
					return nil, err
				}
				if _, err := client.CloseProject(ctx, projectID); err != nil {
					return nil, err
				}
				return ok(map[string]any{
					"message": fmt.Sprintf("Project %s closed successfully", projectID),
				}), nil
			},
		},
		{
			Name:        "delete_project",
			Description: "Delete a GNS3 project permanently.",
			InputSchema: objectSchema(
				[]string{"project_id"},
				map[string]any{
					"project_id": uuidProp("UUID of the project to delete"),
				},
			),
			Handler: func(ctx context.Context, args map[string]any) (any, error) {
				projectID, err := idArg(args, "project_id")
				if err != nil {
					return nil, err
				}
				if err := client.DeleteProject(ctx, projectID); err != nil {
					return nil, err
				}
				return ok(map[string]any{
					"message": fmt.Sprintf("Project %s deleted successfully", projectID),
				}), nil
			},
		},
		{
			Name:        "get_project_stats",
			Description: "Get statistics about a GNS3 project.",
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
				stats, err := client.ProjectStats(ctx, projectID)
				if err != nil {
					return nil, err
				}
				return ok(map[string]any{"stats": stats}), nil
			},
		},
	}
}

// Package gns3 is a client for the GNS3 v2 REST API.
package gns3

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/JMartinCreuzburg/gns3-over-mcp/config"
)

// Client talks to the GNS3 v2 REST API. It is safe for concurrent
// use: all per-call state lives in the request, and the shared
// configuration is read-only.
type Client struct {
	cfg  *config.Config
	base string
	http *http.Client
}

// NewClient builds a Client from the resolved configuration.
func NewClient(cfg *config.Config) *Client {
	transport := http.DefaultTransport
	if !cfg.VerifySSL {
		custom := http.DefaultTransport.(*http.Transport).Clone()
		custom.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
		transport = custom
	}
	return &Client{
		cfg:  cfg,
		base: cfg.BaseURL(),
		http: &http.Client{Transport: transport},
	}
}

// NodeSpec describes a node to create. When TemplateID is set the
// node is instantiated from that template on the local compute.
type NodeSpec struct {
	Name       string
	NodeType   string
	TemplateID string
	X          int
	Y          int
	Properties map[string]any
}

// LinkEndpoint is one side of a link.
type LinkEndpoint struct {
	NodeID string
	Port   int
}

// ListProjects returns every project known to the server.
func (c *Client) ListProjects(ctx context.Context) ([]json.RawMessage, error) {
	data, err := c.request(ctx, "list_projects", http.MethodGet, "/projects", nil)
	if err != nil {
		return nil, err
	}
	return decodeList("list_projects", data)
}

// CreateProject creates a project. path is an optional custom
// directory on the server.
func (c *Client) CreateProject(ctx context.Context, name, path string) (json.RawMessage, error) {
	payload := map[string]any{"name": name}
	if path != "" {
		payload["path"] = path
	}
	return c.request(ctx, "create_project", http.MethodPost, "/projects", payload)
}

// GetProject fetches one project.
func (c *Client) GetProject(ctx context.Context, projectID string) (json.RawMessage, error) {
	return c.request(ctx, "get_project", http.MethodGet, "/projects/"+projectID, nil)
}

// OpenProject opens a project and returns its state.
func (c *Client) OpenProject(ctx context.Context, projectID string) (json.RawMessage, error) {
	return c.request(ctx, "open_project", http.MethodPost, "/projects/"+projectID+"/open", nil)
}

// CloseProject closes a project.
func (c *Client) CloseProject(ctx context.Context, projectID string) (json.RawMessage, error) {
	return c.request(ctx, "close_project", http.MethodPost, "/projects/"+projectID+"/close", nil)
}

// DeleteProject removes a project permanently.
func (c *Client) DeleteProject(ctx context.Context, projectID string) error {
	_, err := c.request(ctx, "delete_project", http.MethodDelete, "/projects/"+projectID, nil)
	return err
}

// ListNodes returns the nodes of a project.
func (c *Client) ListNodes(ctx context.Context, projectID string) ([]json.RawMessage, error) {
	data, err := c.request(ctx, "list_nodes", http.MethodGet, "/projects/"+projectID+"/nodes", nil)
	if err != nil {
		return nil, err
	}
	return decodeList("list_nodes", data)
}

// CreateNode adds a node to a project.
func (c *Client) CreateNode(ctx context.Context, projectID string, spec NodeSpec) (json.RawMessage, error) {
	payload := map[string]any{
		"name":      spec.Name,
		"node_type": spec.NodeType,
		"x":         spec.X,
		"y":         spec.Y,
	}
	if spec.TemplateID != "" {
		payload["compute_id"] = "local"
		payload["template_id"] = spec.TemplateID
	}
	if len(spec.Properties) > 0 {
		payload["properties"] = spec.Properties
	}
	return c.request(ctx, "create_node", http.MethodPost, "/projects/"+projectID+"/nodes", payload)
}

// DeleteNode removes a node from a project.
func (c *Client) DeleteNode(ctx context.Context, projectID, nodeID string) error {
	_, err := c.request(ctx, "delete_node", http.MethodDelete, "/projects/"+projectID+"/nodes/"+nodeID, nil)
	return err
}

// StartNode boots a node and returns its state.
func (c *Client) StartNode(ctx context.Context, projectID, nodeID string) (json.RawMessage, error) {
	return c.request(ctx, "start_node", http.MethodPost, "/projects/"+projectID+"/nodes/"+nodeID+"/start", nil)
}

// StopNode halts a node and returns its state.
func (c *Client) StopNode(ctx context.Context, projectID, nodeID string) (json.RawMessage, error) {
	return c.request(ctx, "stop_node", http.MethodPost, "/projects/"+projectID+"/nodes/"+nodeID+"/stop", nil)
}

// StartAllNodes boots every node in a project.
func (c *Client) StartAllNodes(ctx context.Context, projectID string) error {
	_, err := c.request(ctx, "start_all_nodes", http.MethodPost, "/projects/"+projectID+"/nodes/start", nil)
	return err
}

// StopAllNodes halts every node in a project.
func (c *Client) StopAllNodes(ctx context.Context, projectID string) error {
	_, err := c.request(ctx, "stop_all_nodes", http.MethodPost, "/projects/"+projectID+"/nodes/stop", nil)
	return err
}

// ListLinks returns the links of a project.
func (c *Client) ListLinks(ctx context.Context, projectID string) ([]json.RawMessage, error) {
	data, err := c.request(ctx, "list_links", http.MethodGet, "/projects/"+projectID+"/links", nil)
	if err != nil {
		return nil, err
	}
	return decodeList("list_links", data)
}

// CreateLink connects two nodes. Both endpoints must name nodes that
// exist in the project; the check runs before the server is asked to
// wire anything.
func (c *Client) CreateLink(ctx context.Context, projectID string, a, b LinkEndpoint) (json.RawMessage, error) {
	nodes, err := c.ListNodes(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !hasNode(nodes, a.NodeID) || !hasNode(nodes, b.NodeID) {
		return nil, &Error{Kind: KindRejected, Op: "create_link", Message: "One or both nodes not found"}
	}

	payload := map[string]any{
		"nodes": []map[string]any{
			{"node_id": a.NodeID, "adapter_number": 0, "port_number": a.Port},
			{"node_id": b.NodeID, "adapter_number": 0, "port_number": b.Port},
		},
	}
	return c.request(ctx, "create_link", http.MethodPost, "/projects/"+projectID+"/links", payload)
}

// DeleteLink removes a link from a project.
func (c *Client) DeleteLink(ctx context.Context, projectID, linkID string) error {
	_, err := c.request(ctx, "delete_link", http.MethodDelete, "/projects/"+projectID+"/links/"+linkID, nil)
	return err
}

// ListTemplates returns the node templates available on the server.
func (c *Client) ListTemplates(ctx context.Context) ([]json.RawMessage, error) {
	data, err := c.request(ctx, "list_templates", http.MethodGet, "/templates", nil)
	if err != nil {
		return nil, err
	}
	return decodeList("list_templates", data)
}

// Version reports the version string of the GNS3 server.
func (c *Client) Version(ctx context.Context) (string, error) {
	data, err := c.request(ctx, "version", http.MethodGet, "/version", nil)
	if err != nil {
		return "", err
	}
	var v struct {
		Version string `json:"version"`
	}
	if err := json.Unmarshal(data, &v); err != nil || v.Version == "" {
		return "", &Error{Kind: KindMalformed, Op: "version", Message: "version: unexpected GNS3 response shape"}
	}
	return v.Version, nil
}

// ProjectStats aggregates project, node and link state into a
// summary. The three reads have no data dependency, so they run
// concurrently and are joined before the summary is built.
func (c *Client) ProjectStats(ctx context.Context, projectID string) (map[string]any, error) {
	var (
		project      json.RawMessage
		nodes, links []json.RawMessage
	)
	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		var err error
		project, err = c.GetProject(ctx, projectID)
		return err
	})
	group.Go(func() error {
		var err error
		nodes, err = c.ListNodes(ctx, projectID)
		return err
	})
	group.Go(func() error {
		var err error
		links, err = c.ListLinks(ctx, projectID)
		return err
	})
	if err := group.Wait(); err != nil {
		return nil, err
	}

	var meta struct {
		Name   string `json:"name"`
		Status string `json:"status"`
	}
	_ = json.Unmarshal(project, &meta)

	nodeStatus := map[string]int{}
	for _, raw := range nodes {
		var node struct {
			Status string `json:"status"`
		}
		status := "unknown"
		if json.Unmarshal(raw, &node) == nil && node.Status != "" {
			status = node.Status
		}
		nodeStatus[status]++
	}

	return map[string]any{
		"project_id":   projectID,
		"project_name": meta.Name,
		"status":       meta.Status,
		"total_nodes":  len(nodes),
		"total_links":  len(links),
		"node_status":  nodeStatus,
	}, nil
}

// request performs one API call and returns the raw response body. A
// nil body with a nil error means the server answered with no content
// (204), which callers treat as success.
func (c *Client) request(ctx context.Context, op, method, path string, payload any) (json.RawMessage, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("%s: encode request: %w", op, err)
		}
		body = bytes.NewReader(data)
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.cfg.AuthRequired {
		req.SetBasicAuth(c.cfg.Username, c.cfg.Password)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, c.transportError(op, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.transportError(op, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, rejectionError(op, resp.StatusCode, data)
	}
	if resp.StatusCode == http.StatusNoContent || len(data) == 0 {
		return nil, nil
	}
	if !json.Valid(data) {
		return nil, &Error{Kind: KindMalformed, Op: op, Message: fmt.Sprintf("%s: invalid JSON in GNS3 response", op)}
	}
	return data, nil
}

// transportError classifies a failed round trip as a timeout or as
// the server being unreachable.
func (c *Client) transportError(op string, err error) *Error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &Error{
			Kind:    KindTimeout,
			Op:      op,
			Err:     err,
			Message: fmt.Sprintf("%s: request timeout after %s", op, c.cfg.Timeout),
		}
	}
	return &Error{
		Kind:    KindConnection,
		Op:      op,
		Err:     err,
		Message: fmt.Sprintf("cannot connect to GNS3 server at %s: %v (is the GNS3 server running?)", c.base, err),
	}
}

// rejectionError carries the backend's own message when the error
// body has one, the raw body otherwise.
func rejectionError(op string, status int, body []byte) *Error {
	detail := strings.TrimSpace(string(body))
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Message != "" {
		detail = payload.Message
	}
	return &Error{
		Kind:    KindRejected,
		Op:      op,
		Status:  status,
		Message: fmt.Sprintf("GNS3 API error: %d - %s", status, detail),
	}
}

// decodeList splits a JSON array while keeping each element verbatim,
// so callers can report counts without touching record contents.
func decodeList(op string, data json.RawMessage) ([]json.RawMessage, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, &Error{
			Kind:    KindMalformed,
			Op:      op,
			Err:     err,
			Message: fmt.Sprintf("%s: unexpected GNS3 response shape: %v", op, err),
		}
	}
	return items, nil
}

func hasNode(nodes []json.RawMessage, nodeID string) bool {
	for _, raw := range nodes {
		var node struct {
			NodeID string `json:"node_id"`
		}
		if json.Unmarshal(raw, &node) == nil && node.NodeID == nodeID {
			return true
		}
	}
	return false
}

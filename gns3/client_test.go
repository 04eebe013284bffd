package gns3

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JMartinCreuzburg/gns3-over-mcp/config"
)

func testConfig(t *testing.T, srvURL string) *config.Config {
	t.Helper()
	u, err := url.Parse(srvURL)
	require.NoError(t, err)
	host, portStr, err := net.SplitHostPort(u.Host)
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)
	return &config.Config{
		Host:      host,
		Port:      port,
		Protocol:  "http",
		VerifySSL: true,
		Timeout:   2 * time.Second,
	}
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(testConfig(t, srv.URL))
}

func TestListProjects(t *testing.T) {
	var gotPath, gotAccept string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAccept = r.Header.Get("Accept")
		io.WriteString(w, `[{"project_id":"p1","name":"lab"},{"project_id":"p2","name":"wan","extra":{"deep":1}}]`)
	})

	projects, err := client.ListProjects(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/v2/projects", gotPath)
	assert.Equal(t, "application/json", gotAccept)
	require.Len(t, projects, 2)
	// Records pass through untouched.
	assert.JSONEq(t, `{"project_id":"p2","name":"wan","extra":{"deep":1}}`, string(projects[1]))
}

func TestCreateProjectBody(t *testing.T) {
	var body map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, `{"project_id":"p1","name":"lab"}`)
	})

	project, err := client.CreateProject(context.Background(), "lab", "")
	require.NoError(t, err)
	assert.JSONEq(t, `{"project_id":"p1","name":"lab"}`, string(project))
	assert.Equal(t, map[string]any{"name": "lab"}, body)

	_, err = client.CreateProject(context.Background(), "lab", "/opt/gns3/lab")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"name": "lab", "path": "/opt/gns3/lab"}, body)
}

func TestBasicAuth(t *testing.T) {
	var user, pass string
	var hasAuth bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, hasAuth = r.BasicAuth()
		io.WriteString(w, `[]`)
	}))
	t.Cleanup(srv.Close)

	cfg := testConfig(t, srv.URL)
	cfg.AuthRequired = true
	cfg.Username = "admin"
	cfg.Password = "secret"
	_, err := NewClient(cfg).ListProjects(context.Background())
	require.NoError(t, err)
	assert.True(t, hasAuth)
	assert.Equal(t, "admin", user)
	assert.Equal(t, "secret", pass)

	hasAuth = false
	_, err = NewClient(testConfig(t, srv.URL)).ListProjects(context.Background())
	require.NoError(t, err)
	assert.False(t, hasAuth)
}

func TestBackendRejection(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, `{"message":"Project not found","status":404}`)
	})

	_, err := client.GetProject(context.Background(), "p1")
	var bridgeErr *Error
	require.ErrorAs(t, err, &bridgeErr)
	assert.Equal(t, KindRejected, bridgeErr.Kind)
	assert.Equal(t, http.StatusNotFound, bridgeErr.Status)
	assert.Equal(t, "GNS3 API error: 404 - Project not found", err.Error())
}

func TestBackendRejectionRawBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, "disk full")
	})

	_, err := client.ListTemplates(context.Background())
	var bridgeErr *Error
	require.ErrorAs(t, err, &bridgeErr)
	assert.Equal(t, "GNS3 API error: 500 - disk full", bridgeErr.Message)
}

func TestDeleteProjectTwice(t *testing.T) {
	deleted := false
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		if deleted {
			w.WriteHeader(http.StatusNotFound)
			io.WriteString(w, `{"message":"Project ID p1 doesn't exist"}`)
			return
		}
		deleted = true
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, client.DeleteProject(context.Background(), "p1"))

	err := client.DeleteProject(context.Background(), "p1")
	var bridgeErr *Error
	require.ErrorAs(t, err, &bridgeErr)
	assert.Equal(t, KindRejected, bridgeErr.Kind)
	assert.Equal(t, http.StatusNotFound, bridgeErr.Status)
}

func TestTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	t.Cleanup(func() {
		close(release)
		srv.Close()
	})

	cfg := testConfig(t, srv.URL)
	cfg.Timeout = 50 * time.Millisecond
	_, err := NewClient(cfg).ListProjects(context.Background())

	var bridgeErr *Error
	require.ErrorAs(t, err, &bridgeErr)
	assert.Equal(t, KindTimeout, bridgeErr.Kind)
	assert.Contains(t, err.Error(), "timeout")
	assert.Contains(t, err.Error(), "list_projects")
}

func TestConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	cfg := testConfig(t, srv.URL)
	srv.Close()

	_, err := NewClient(cfg).ListProjects(context.Background())
	var bridgeErr *Error
	require.ErrorAs(t, err, &bridgeErr)
	assert.Equal(t, KindConnection, bridgeErr.Kind)
	assert.Contains(t, err.Error(), "is the GNS3 server running?")
}

func TestMalformedResponse(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "<html>not json</html>")
	})

	_, err := client.ListNodes(context.Background(), "p1")
	var bridgeErr *Error
	require.ErrorAs(t, err, &bridgeErr)
	assert.Equal(t, KindMalformed, bridgeErr.Kind)
}

func TestListShapeMismatch(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"message":"unexpected"}`)
	})

	_, err := client.ListLinks(context.Background(), "p1")
	var bridgeErr *Error
	require.ErrorAs(t, err, &bridgeErr)
	assert.Equal(t, KindMalformed, bridgeErr.Kind)
}

func TestCreateNodeBody(t *testing.T) {
	var body map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v2/projects/p1/nodes", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, `{"node_id":"n1"}`)
	})

	_, err := client.CreateNode(context.Background(), "p1", NodeSpec{Name: "r1", NodeType: "qemu", X: 10, Y: -20})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"name": "r1", "node_type": "qemu", "x": float64(10), "y": float64(-20)}, body)

	// A template implies instantiation on the local compute.
	_, err = client.CreateNode(context.Background(), "p1", NodeSpec{Name: "pc1", NodeType: "vpcs", TemplateID: "t1"})
	require.NoError(t, err)
	assert.Equal(t, "local", body["compute_id"])
	assert.Equal(t, "t1", body["template_id"])
}

func TestCreateLinkChecksEndpoints(t *testing.T) {
	var linkCalls int
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v2/projects/p1/nodes":
			io.WriteString(w, `[{"node_id":"n1"},{"node_id":"n2"}]`)
		case "/v2/projects/p1/links":
			linkCalls++
			w.WriteHeader(http.StatusCreated)
			io.WriteString(w, `{"link_id":"l1"}`)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})

	_, err := client.CreateLink(context.Background(), "p1",
		LinkEndpoint{NodeID: "n1", Port: 0},
		LinkEndpoint{NodeID: "missing", Port: 1},
	)
	var bridgeErr *Error
	require.ErrorAs(t, err, &bridgeErr)
	assert.Equal(t, KindRejected, bridgeErr.Kind)
	assert.Equal(t, "One or both nodes not found", err.Error())
	assert.Zero(t, linkCalls)

	link, err := client.CreateLink(context.Background(), "p1",
		LinkEndpoint{NodeID: "n1", Port: 0},
		LinkEndpoint{NodeID: "n2", Port: 2},
	)
	require.NoError(t, err)
	assert.JSONEq(t, `{"link_id":"l1"}`, string(link))
	assert.Equal(t, 1, linkCalls)
}

func TestCreateLinkBody(t *testing.T) {
	var body map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v2/projects/p1/nodes" {
			io.WriteString(w, `[{"node_id":"n1"},{"node_id":"n2"}]`)
			return
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, `{"link_id":"l1"}`)
	})

	_, err := client.CreateLink(context.Background(), "p1",
		LinkEndpoint{NodeID: "n1", Port: 0},
		LinkEndpoint{NodeID: "n2", Port: 3},
	)
	require.NoError(t, err)

	nodes := body["nodes"].([]any)
	require.Len(t, nodes, 2)
	first := nodes[0].(map[string]any)
	assert.Equal(t, "n1", first["node_id"])
	assert.Equal(t, float64(0), first["adapter_number"])
	assert.Equal(t, float64(0), first["port_number"])
	second := nodes[1].(map[string]any)
	assert.Equal(t, float64(3), second["port_number"])
}

func TestNodeActions(t *testing.T) {
	var paths []string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.Method+" "+r.URL.Path)
		if strings.HasSuffix(r.URL.Path, "/n1/start") || strings.HasSuffix(r.URL.Path, "/n1/stop") {
			io.WriteString(w, `{"node_id":"n1","status":"started"}`)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	node, err := client.StartNode(context.Background(), "p1", "n1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"node_id":"n1","status":"started"}`, string(node))

	_, err = client.StopNode(context.Background(), "p1", "n1")
	require.NoError(t, err)

	require.NoError(t, client.StartAllNodes(context.Background(), "p1"))
	require.NoError(t, client.StopAllNodes(context.Background(), "p1"))
	require.NoError(t, client.DeleteNode(context.Background(), "p1", "n1"))

	assert.Equal(t, []string{
		"POST /v2/projects/p1/nodes/n1/start",
		"POST /v2/projects/p1/nodes/n1/stop",
		"POST /v2/projects/p1/nodes/start",
		"POST /v2/projects/p1/nodes/stop",
		"DELETE /v2/projects/p1/nodes/n1",
	}, paths)
}

func TestVersion(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v2/version", r.URL.Path)
		io.WriteString(w, `{"version":"2.2.44","local":true}`)
	})

	version, err := client.Version(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2.2.44", version)
}

func TestVersionShapeMismatch(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"release":"2.2.44"}`)
	})

	_, err := client.Version(context.Background())
	var bridgeErr *Error
	require.ErrorAs(t, err, &bridgeErr)
	assert.Equal(t, KindMalformed, bridgeErr.Kind)
}

func TestProjectStats(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v2/projects/p1":
			io.WriteString(w, `{"project_id":"p1","name":"lab","status":"opened"}`)
		case "/v2/projects/p1/nodes":
			io.WriteString(w, `[{"status":"started"},{"status":"stopped"},{"status":"started"},{}]`)
		case "/v2/projects/p1/links":
			io.WriteString(w, `[{"link_id":"l1"}]`)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})

	stats, err := client.ProjectStats(context.Background(), "p1")
	require.NoError(t, err)

	assert.Equal(t, "p1", stats["project_id"])
	assert.Equal(t, "lab", stats["project_name"])
	assert.Equal(t, "opened", stats["status"])
	assert.Equal(t, 4, stats["total_nodes"])
	assert.Equal(t, 1, stats["total_links"])
	assert.Equal(t, map[string]int{"started": 2, "stopped": 1, "unknown": 1}, stats["node_status"])
}

func TestProjectStatsPropagatesFailure(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v2/projects/p1":
			io.WriteString(w, `{"name":"lab"}`)
		case "/v2/projects/p1/nodes":
			io.WriteString(w, `[]`)
		default:
			w.WriteHeader(http.StatusNotFound)
			io.WriteString(w, `{"message":"Project not found"}`)
		}
	})

	_, err := client.ProjectStats(context.Background(), "p1")
	var bridgeErr *Error
	require.ErrorAs(t, err, &bridgeErr)
	assert.Equal(t, KindRejected, bridgeErr.Kind)
}

package gns3

import (
	"context"
	"crypto/tls"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/gorilla/websocket"
)

// Notification is one event from the GNS3 notification stream, e.g.
// action "node.updated" with the node object as payload.
type Notification struct {
	Action string          `json:"action"`
	Event  json.RawMessage `json:"event"`
}

// NotificationStream is an open WebSocket subscription to server
// events.
type NotificationStream struct {
	conn *websocket.Conn
}

// Notifications subscribes to the server-wide event stream, or to a
// single project's stream when projectID is non-empty.
func (c *Client) Notifications(ctx context.Context, projectID string) (*NotificationStream, error) {
	path := "/notifications/ws"
	if projectID != "" {
		path = "/projects/" + projectID + "/notifications/ws"
	}

	u, err := url.Parse(c.base + path)
	if err != nil {
		return nil, fmt.Errorf("notifications: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	}

	dialer := *websocket.DefaultDialer
	dialer.HandshakeTimeout = c.cfg.Timeout
	if !c.cfg.VerifySSL {
		dialer.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}
	header := http.Header{}
	if c.cfg.AuthRequired {
		cred := base64.StdEncoding.EncodeToString([]byte(c.cfg.Username + ":" + c.cfg.Password))
		header.Set("Authorization", "Basic "+cred)
	}

	conn, resp, err := dialer.DialContext(ctx, u.String(), header)
	if err != nil {
		if resp != nil {
			resp.Body.Close()
			return nil, &Error{
				Kind:    KindRejected,
				Op:      "notifications",
				Status:  resp.StatusCode,
				Err:     err,
				Message: fmt.Sprintf("GNS3 API error: %d - notification stream rejected", resp.StatusCode),
			}
		}
		return nil, &Error{
			Kind:    KindConnection,
			Op:      "notifications",
			Err:     err,
			Message: fmt.Sprintf("cannot connect to GNS3 server at %s: %v (is the GNS3 server running?)", c.base, err),
		}
	}
	return &NotificationStream{conn: conn}, nil
}

// Next blocks until the next event arrives or the stream ends.
func (s *NotificationStream) Next() (*Notification, error) {
	var n Notification
	if err := s.conn.ReadJSON(&n); err != nil {
		return nil, err
	}
	return &n, nil
}

// Close tears down the subscription. Safe to call from another
// goroutine to unblock a pending Next.
func (s *NotificationStream) Close() error {
	return s.conn.Close()
}

package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ledgerfoundry/ledgergate/domain"
)

// Client is a Provider backed by a remote ledger node daemon's HTTP API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a provider client for the daemon at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// CreateNode asks the daemon to provision a new node from the given
// ledger configuration.
func (c *Client) CreateNode(ctx context.Context, actor string, config json.RawMessage) (string, error) {
	body, err := c.do(ctx, actor, http.MethodPost, "/nodes", config)
	if err != nil {
		return "", err
	}
	var resp struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("failed to decode node response: %w", err)
	}
	if resp.ID == "" {
		return "", fmt.Errorf("node daemon returned no id")
	}
	return resp.ID, nil
}

// GetNode resolves a handle to a remote node. The daemon enforces its
// own access rules based on the actor header.
func (c *Client) GetNode(ctx context.Context, actor, nodeID string) (NodeHandle, error) {
	if _, err := c.do(ctx, actor, http.MethodGet, c.nodePath(nodeID), nil); err != nil {
		return nil, err
	}
	return &remoteNode{client: c, actor: actor, nodeID: nodeID}, nil
}

func (c *Client) nodePath(nodeID string, parts ...string) string {
	path := "/nodes/" + url.PathEscape(nodeID)
	for _, p := range parts {
		path += "/" + p
	}
	return path
}

func (c *Client) do(ctx context.Context, actor, method, path string, body json.RawMessage) (json.RawMessage, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if actor != "" {
		req.Header.Set("X-Actor", actor)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach node daemon: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read node daemon response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, &domain.NotFoundError{Resource: "ledger node resource", ID: path}
	case resp.StatusCode >= 400:
		return nil, fmt.Errorf("node daemon returned status %d: %s", resp.StatusCode, string(respBody))
	}
	return respBody, nil
}

// remoteNode is a NodeHandle over the daemon's per-node endpoints.
type remoteNode struct {
	client *Client
	actor  string
	nodeID string
}

func (n *remoteNode) ID() string {
	return n.nodeID
}

// PeerID tolerates daemons whose consensus mechanism exposes no stable
// peer identity; a 404 on the peer endpoint maps to absence.
func (n *remoteNode) PeerID(ctx context.Context) (string, error) {
	body, err := n.client.do(ctx, n.actor, http.MethodGet, n.client.nodePath(n.nodeID, "peer"), nil)
	if err != nil {
		var notFound *domain.NotFoundError
		if errors.As(err, &notFound) {
			return "", nil
		}
		return "", err
	}
	var resp struct {
		PeerID string `json:"peer_id"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("failed to decode peer response: %w", err)
	}
	return resp.PeerID, nil
}

func (n *remoteNode) Status(ctx context.Context) (json.RawMessage, error) {
	return n.client.do(ctx, n.actor, http.MethodGet, n.client.nodePath(n.nodeID, "status"), nil)
}

func (n *remoteNode) Config(ctx context.Context) (json.RawMessage, error) {
	return n.client.do(ctx, n.actor, http.MethodGet, n.client.nodePath(n.nodeID, "config"), nil)
}

func (n *remoteNode) SubmitOperation(ctx context.Context, op json.RawMessage) (string, error) {
	body, err := n.client.do(ctx, n.actor, http.MethodPost, n.client.nodePath(n.nodeID, "operations"), op)
	if err != nil {
		return "", err
	}
	var resp struct {
		EventID string `json:"event_id"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("failed to decode operation response: %w", err)
	}
	return resp.EventID, nil
}

func (n *remoteNode) Event(ctx context.Context, eventID string) (json.RawMessage, error) {
	return n.client.do(ctx, n.actor, http.MethodGet, n.client.nodePath(n.nodeID, "events", url.PathEscape(eventID)), nil)
}

func (n *remoteNode) Block(ctx context.Context, blockID string) (json.RawMessage, error) {
	return n.client.do(ctx, n.actor, http.MethodGet, n.client.nodePath(n.nodeID, "blocks", url.PathEscape(blockID)), nil)
}

func (n *remoteNode) QueryRecords(ctx context.Context, recordType string) ([]json.RawMessage, error) {
	body, err := n.client.do(ctx, n.actor, http.MethodGet,
		n.client.nodePath(n.nodeID, "records")+"?type="+url.QueryEscape(recordType), nil)
	if err != nil {
		return nil, err
	}
	var records []json.RawMessage
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, fmt.Errorf("failed to decode records response: %w", err)
	}
	return records, nil
}

package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/xeipuuv/gojsonschema"

	"github.com/ledgerfoundry/ledgergate/domain"
)

// configSchema is the structural contract for a ledger configuration.
// Signature validation is a node-internal concern and happens beyond
// this provider.
const configSchema = `{
	"type": "object",
	"required": ["ledger", "consensusMethod"],
	"properties": {
		"ledger": {"type": "string", "minLength": 1},
		"consensusMethod": {"type": "string", "minLength": 1}
	}
}`

// MemoryProvider is an embedded, in-process ledger node provider. Each
// node keeps an append-only event log with one block sealed per event.
// Intended for development and tests; production deployments point the
// service at a remote node daemon via Client.
type MemoryProvider struct {
	mu    sync.RWMutex
	nodes map[string]*memoryNode
}

// NewMemoryProvider creates an empty provider.
func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{
		nodes: make(map[string]*memoryNode),
	}
}

// CreateNode validates the configuration, provisions a node and writes
// its genesis event and block.
func (p *MemoryProvider) CreateNode(ctx context.Context, actor string, config json.RawMessage) (string, error) {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(configSchema),
		gojsonschema.NewBytesLoader(config))
	if err != nil {
		return "", fmt.Errorf("failed to validate ledger configuration: %w", err)
	}
	if !result.Valid() {
		return "", fmt.Errorf("invalid ledger configuration: %s", result.Errors()[0])
	}

	node := &memoryNode{
		id:      uuid.New().URN(),
		peerID:  uuid.New().URN(),
		config:  append(json.RawMessage(nil), config...),
		events:  make(map[string]json.RawMessage),
		blocks:  make(map[string]json.RawMessage),
		records: make(map[string]json.RawMessage),
	}

	genesis, _ := json.Marshal(map[string]interface{}{
		"type":                "Config",
		"ledgerConfiguration": config,
	})
	node.appendEvent(genesis)

	p.mu.Lock()
	p.nodes[node.id] = node
	p.mu.Unlock()

	return node.id, nil
}

// GetNode resolves a node handle. The embedded provider applies no
// per-actor access rules of its own.
func (p *MemoryProvider) GetNode(ctx context.Context, actor, nodeID string) (NodeHandle, error) {
	p.mu.RLock()
	node := p.nodes[nodeID]
	p.mu.RUnlock()
	if node == nil {
		return nil, &domain.NotFoundError{Resource: "ledger node", ID: nodeID}
	}
	return node, nil
}

type memoryNode struct {
	id     string
	peerID string
	config json.RawMessage

	mu          sync.RWMutex
	events      map[string]json.RawMessage
	eventOrder  []string
	blocks      map[string]json.RawMessage
	latestBlock string
	height      int64
	records     map[string]json.RawMessage
}

func (n *memoryNode) ID() string {
	return n.id
}

func (n *memoryNode) PeerID(ctx context.Context) (string, error) {
	return n.peerID, nil
}

func (n *memoryNode) Status(ctx context.Context) (json.RawMessage, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return json.Marshal(map[string]interface{}{
		"id":           n.id,
		"latest_block": n.latestBlock,
		"blocks":       len(n.blocks),
		"events":       len(n.events),
	})
}

func (n *memoryNode) Config(ctx context.Context) (json.RawMessage, error) {
	return n.config, nil
}

// SubmitOperation appends the operation as a new event and seals it
// into a block.
func (n *memoryNode) SubmitOperation(ctx context.Context, op json.RawMessage) (string, error) {
	var parsed struct {
		Type   string          `json:"type"`
		Record json.RawMessage `json:"record"`
	}
	if err := json.Unmarshal(op, &parsed); err != nil {
		return "", fmt.Errorf("failed to parse operation: %w", err)
	}
	if parsed.Type == "" {
		return "", fmt.Errorf("operation type is required")
	}

	eventID := n.appendEvent(op)

	if len(parsed.Record) > 0 {
		var record struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(parsed.Record, &record); err == nil && record.ID != "" {
			n.mu.Lock()
			n.records[record.ID] = append(json.RawMessage(nil), parsed.Record...)
			n.mu.Unlock()
		}
	}

	return eventID, nil
}

func (n *memoryNode) appendEvent(op json.RawMessage) string {
	n.mu.Lock()
	defer n.mu.Unlock()

	eventID := uuid.New().URN()
	event, _ := json.Marshal(map[string]interface{}{
		"id":        eventID,
		"operation": op,
		"created":   time.Now().UnixMilli(),
	})
	n.events[eventID] = event
	n.eventOrder = append(n.eventOrder, eventID)

	blockID := uuid.New().URN()
	block, _ := json.Marshal(map[string]interface{}{
		"id":             blockID,
		"height":         n.height,
		"event_ids":      []string{eventID},
		"previous_block": n.latestBlock,
	})
	n.blocks[blockID] = block
	n.latestBlock = blockID
	n.height++

	return eventID
}

func (n *memoryNode) Event(ctx context.Context, eventID string) (json.RawMessage, error) {
	n.mu.RLock()
	event := n.events[eventID]
	n.mu.RUnlock()
	if event == nil {
		return nil, &domain.NotFoundError{Resource: "event", ID: eventID}
	}
	return event, nil
}

func (n *memoryNode) Block(ctx context.Context, blockID string) (json.RawMessage, error) {
	n.mu.RLock()
	block := n.blocks[blockID]
	n.mu.RUnlock()
	if block == nil {
		return nil, &domain.NotFoundError{Resource: "block", ID: blockID}
	}
	return block, nil
}

func (n *memoryNode) QueryRecords(ctx context.Context, recordType string) ([]json.RawMessage, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	var matches []json.RawMessage
	for _, record := range n.records {
		var parsed struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(record, &parsed); err != nil {
			continue
		}
		if parsed.Type == recordType {
			matches = append(matches, record)
		}
	}
	return matches, nil
}

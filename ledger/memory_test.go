package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/ledgerfoundry/ledgergate/domain"
)

const testConfig = `{"ledger": "urn:example:ledger", "consensusMethod": "witness-pool"}`

func TestCreateNodeValidatesConfig(t *testing.T) {
	ctx := context.Background()
	p := NewMemoryProvider()

	if _, err := p.CreateNode(ctx, "u1", json.RawMessage(`{"consensusMethod": "solo"}`)); err == nil {
		t.Fatal("expected config without ledger to be rejected")
	}
	if _, err := p.CreateNode(ctx, "u1", json.RawMessage(`not json`)); err == nil {
		t.Fatal("expected malformed config to be rejected")
	}

	nodeID, err := p.CreateNode(ctx, "u1", json.RawMessage(testConfig))
	if err != nil {
		t.Fatalf("CreateNode failed: %v", err)
	}
	if !strings.HasPrefix(nodeID, "urn:uuid:") {
		t.Fatalf("expected urn node id, got %q", nodeID)
	}
}

func TestGetNode(t *testing.T) {
	ctx := context.Background()
	p := NewMemoryProvider()

	nodeID, err := p.CreateNode(ctx, "u1", json.RawMessage(testConfig))
	if err != nil {
		t.Fatalf("CreateNode failed: %v", err)
	}

	node, err := p.GetNode(ctx, "u1", nodeID)
	if err != nil {
		t.Fatalf("GetNode failed: %v", err)
	}
	if node.ID() != nodeID {
		t.Fatalf("expected node id %q, got %q", nodeID, node.ID())
	}

	peerID, err := node.PeerID(ctx)
	if err != nil {
		t.Fatalf("PeerID failed: %v", err)
	}
	if peerID == "" {
		t.Fatal("embedded node should expose a peer id")
	}

	_, err = p.GetNode(ctx, "u1", "urn:uuid:missing")
	var notFound *domain.NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestSubmitOperationAndRetrieval(t *testing.T) {
	ctx := context.Background()
	p := NewMemoryProvider()

	nodeID, err := p.CreateNode(ctx, "u1", json.RawMessage(testConfig))
	if err != nil {
		t.Fatalf("CreateNode failed: %v", err)
	}
	node, err := p.GetNode(ctx, "u1", nodeID)
	if err != nil {
		t.Fatalf("GetNode failed: %v", err)
	}

	op := json.RawMessage(`{"type": "CreateRecord", "record": {"id": "urn:example:r1", "type": "Concert", "name": "Demo"}}`)
	eventID, err := node.SubmitOperation(ctx, op)
	if err != nil {
		t.Fatalf("SubmitOperation failed: %v", err)
	}

	event, err := node.Event(ctx, eventID)
	if err != nil {
		t.Fatalf("Event failed: %v", err)
	}
	var parsedEvent struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(event, &parsedEvent); err != nil || parsedEvent.ID != eventID {
		t.Fatalf("unexpected event: %s", event)
	}

	status, err := node.Status(ctx)
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}
	var parsedStatus struct {
		LatestBlock string `json:"latest_block"`
		Blocks      int    `json:"blocks"`
	}
	if err := json.Unmarshal(status, &parsedStatus); err != nil {
		t.Fatalf("failed to parse status: %v", err)
	}
	if parsedStatus.Blocks != 2 { // genesis + one operation
		t.Fatalf("expected 2 blocks, got %d", parsedStatus.Blocks)
	}

	block, err := node.Block(ctx, parsedStatus.LatestBlock)
	if err != nil {
		t.Fatalf("Block failed: %v", err)
	}
	var parsedBlock struct {
		EventIDs []string `json:"event_ids"`
	}
	if err := json.Unmarshal(block, &parsedBlock); err != nil {
		t.Fatalf("failed to parse block: %v", err)
	}
	if len(parsedBlock.EventIDs) != 1 || parsedBlock.EventIDs[0] != eventID {
		t.Fatalf("latest block should seal the submitted event, got %v", parsedBlock.EventIDs)
	}

	records, err := node.QueryRecords(ctx, "Concert")
	if err != nil {
		t.Fatalf("QueryRecords failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}

	records, err = node.QueryRecords(ctx, "Venue")
	if err != nil {
		t.Fatalf("QueryRecords failed: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("expected no records, got %d", len(records))
	}
}

func TestSubmitOperationRejectsUntyped(t *testing.T) {
	ctx := context.Background()
	p := NewMemoryProvider()

	nodeID, err := p.CreateNode(ctx, "u1", json.RawMessage(testConfig))
	if err != nil {
		t.Fatalf("CreateNode failed: %v", err)
	}
	node, err := p.GetNode(ctx, "u1", nodeID)
	if err != nil {
		t.Fatalf("GetNode failed: %v", err)
	}

	if _, err := node.SubmitOperation(ctx, json.RawMessage(`{"record": {}}`)); err == nil {
		t.Fatal("expected operation without type to be rejected")
	}
}

func TestConfigRoundTrip(t *testing.T) {
	ctx := context.Background()
	p := NewMemoryProvider()

	nodeID, err := p.CreateNode(ctx, "u1", json.RawMessage(testConfig))
	if err != nil {
		t.Fatalf("CreateNode failed: %v", err)
	}
	node, err := p.GetNode(ctx, "u1", nodeID)
	if err != nil {
		t.Fatalf("GetNode failed: %v", err)
	}

	config, err := node.Config(ctx)
	if err != nil {
		t.Fatalf("Config failed: %v", err)
	}
	var parsed struct {
		Ledger          string `json:"ledger"`
		ConsensusMethod string `json:"consensusMethod"`
	}
	if err := json.Unmarshal(config, &parsed); err != nil {
		t.Fatalf("failed to parse config: %v", err)
	}
	if parsed.Ledger != "urn:example:ledger" || parsed.ConsensusMethod != "witness-pool" {
		t.Fatalf("unexpected config: %+v", parsed)
	}
}

// Package ledger defines the contract to the ledger node subsystem and
// provides two implementations: an embedded in-process provider for
// development and tests, and an HTTP client for remote node daemons.
// The node's internal consensus and storage are outside this service;
// they are consumed through this interface only.
package ledger

import (
	"context"
	"encoding/json"
)

// NodeHandle is a live handle to one ledger node.
type NodeHandle interface {
	// ID returns the node identifier.
	ID() string

	// PeerID returns the node's stable consensus peer identity.
	// Consensus mechanisms without one return ("", nil); absence is not
	// an error.
	PeerID(ctx context.Context) (string, error)

	// Status returns a summary of the node's state.
	Status(ctx context.Context) (json.RawMessage, error)

	// Config returns the node's current ledger configuration.
	Config(ctx context.Context) (json.RawMessage, error)

	// SubmitOperation submits an operation for inclusion in the ledger
	// and returns the id of the resulting event.
	SubmitOperation(ctx context.Context, op json.RawMessage) (string, error)

	// Event retrieves a ledger event by id.
	Event(ctx context.Context, eventID string) (json.RawMessage, error)

	// Block retrieves a ledger block by id.
	Block(ctx context.Context, blockID string) (json.RawMessage, error)

	// QueryRecords returns the current state of all records of the
	// given type.
	QueryRecords(ctx context.Context, recordType string) ([]json.RawMessage, error)
}

// Provider creates and resolves ledger nodes. Implementations own their
// concurrency discipline and are safe for concurrent use.
type Provider interface {
	// CreateNode provisions a new node from a ledger configuration,
	// performing its own genesis and validation, and returns the node
	// id.
	CreateNode(ctx context.Context, actor string, config json.RawMessage) (string, error)

	// GetNode resolves a live handle. actor may be empty for anonymous
	// access; the node applies its own access rules.
	GetNode(ctx context.Context, actor, nodeID string) (NodeHandle, error)
}

package domain

import (
	"errors"
	"fmt"
)

// ErrMissingOwner is returned when create or remove is called without an
// owner.
var ErrMissingOwner = errors.New("owner is required")

// ErrNodeReference is returned when create is called with neither, or
// both, of a ledger node id and a ledger configuration.
var ErrNodeReference = errors.New("exactly one of ledger_node_id or ledger_configuration is required")

// PermissionDeniedError is returned when the permission oracle rejects a
// capability check.
type PermissionDeniedError struct {
	Actor      string
	Capability string
	Owner      string
}

func (e *PermissionDeniedError) Error() string {
	actor := e.Actor
	if actor == "" {
		actor = "anonymous"
	}
	return fmt.Sprintf("permission denied: %s lacks %q for resources owned by %s", actor, e.Capability, e.Owner)
}

// NotFoundError is returned when an agent, ledger node, plugin, event or
// block lookup fails.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Resource, e.ID)
}

// InvalidPluginError is returned when a requested plugin fails structural
// validation. Name identifies the offending plugin.
type InvalidPluginError struct {
	Name   string
	Reason string
}

func (e *InvalidPluginError) Error() string {
	return fmt.Sprintf("invalid plugin %q: %s", e.Name, e.Reason)
}

// DuplicateAgentError is returned when the store reports a uniqueness
// violation on the agent id. LedgerNodeID carries the backing node id so
// a caller can clean up a node that was created for the failed agent.
type DuplicateAgentError struct {
	AgentID      string
	LedgerNodeID string
}

func (e *DuplicateAgentError) Error() string {
	return fmt.Sprintf("agent %q already exists", e.AgentID)
}

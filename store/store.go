// Package store defines the agent record storage interface and its
// SQLite implementation.
package store

import (
	"context"

	"github.com/ledgerfoundry/ledgergate/domain"
)

// AgentFilter narrows enumeration to specific owners and/or visibility.
// Zero value matches all non-deleted records.
type AgentFilter struct {
	Owners []string
	Public *bool
}

// Store is the persistence contract for agent records. The store is the
// linearizable source of truth: uniqueness of agent ids is enforced
// here, not by callers.
type Store interface {
	// InsertAgent persists a new record atomically. A uniqueness
	// violation on the agent id is reported as
	// *domain.DuplicateAgentError.
	InsertAgent(ctx context.Context, agent *domain.Agent) error

	// FindAgent returns the record for the given id, including
	// soft-deleted records (direct lookup stays possible for audit), or
	// nil when no record exists.
	FindAgent(ctx context.Context, agentID string) (*domain.Agent, error)

	// MarkAgentDeleted sets the deletion timestamp (Unix milliseconds)
	// on the record.
	MarkAgentDeleted(ctx context.Context, agentID string, when int64) error

	// AgentIDs returns up to limit ids of non-deleted records matching
	// the filter, ordered by agent id, starting after afterID. It
	// projects only the id column; callers re-read full records per
	// item.
	AgentIDs(ctx context.Context, filter AgentFilter, afterID string, limit int) ([]string, error)

	Close() error
}

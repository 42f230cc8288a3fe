// Package directory implements the agent directory: creation, lookup,
// soft-deletion and authorization-filtered enumeration of ledger
// agents.
package directory

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/ledgerfoundry/ledgergate/domain"
	"github.com/ledgerfoundry/ledgergate/ledger"
	"github.com/ledgerfoundry/ledgergate/plugin"
	"github.com/ledgerfoundry/ledgergate/store"
)

// Oracle answers capability checks. An empty actor is anonymous.
type Oracle interface {
	Check(ctx context.Context, actor, capability, owner string) error
}

const (
	capabilityCreate = "agents.create"
	capabilityAccess = "agents.access"
	capabilityRemove = "agents.remove"
)

// Directory mediates every access to agent records. It holds no state
// of its own beyond its collaborators and caches nothing across
// requests; the store is re-read on every call.
type Directory struct {
	store   store.Store
	oracle  Oracle
	nodes   ledger.Provider
	plugins *plugin.Registry
	baseURL string
	now     func() time.Time
}

// New creates a directory. baseURL is the external root under which
// agent service URIs are addressed, without a trailing slash.
func New(st store.Store, oracle Oracle, nodes ledger.Provider, plugins *plugin.Registry, baseURL string) *Directory {
	return &Directory{
		store:   st,
		oracle:  oracle,
		nodes:   nodes,
		plugins: plugins,
		baseURL: baseURL,
		now:     time.Now,
	}
}

// CreateOptions carries the inputs to Create. Exactly one of
// LedgerNodeID and LedgerConfig must be set; Owner is mandatory.
type CreateOptions struct {
	LedgerNodeID string
	LedgerConfig []byte
	Owner        string
	Public       bool
	Plugins      []string
	Name         string
	Description  string
}

// Create registers a new agent and returns its view.
//
// When LedgerConfig is supplied, a new node is provisioned before the
// capability checks run. Node creation and record persistence are not
// transactional together: a failure after the node exists leaves an
// orphaned node, an accepted at-least-once side effect. No rollback is
// attempted; on a duplicate-id conflict the orphaned node id travels in
// the error so the caller can clean up.
func (d *Directory) Create(ctx context.Context, actor string, opts CreateOptions) (*domain.AgentView, error) {
	if opts.Owner == "" {
		return nil, domain.ErrMissingOwner
	}

	nodeID := opts.LedgerNodeID
	if len(opts.LedgerConfig) > 0 {
		if nodeID != "" {
			return nil, domain.ErrNodeReference
		}
		id, err := d.nodes.CreateNode(ctx, actor, opts.LedgerConfig)
		if err != nil {
			return nil, err
		}
		nodeID = id
	}
	if nodeID == "" {
		return nil, domain.ErrNodeReference
	}

	if err := d.oracle.Check(ctx, actor, capabilityCreate, opts.Owner); err != nil {
		return nil, err
	}
	if err := d.oracle.Check(ctx, actor, capabilityAccess, opts.Owner); err != nil {
		return nil, err
	}

	for _, name := range opts.Plugins {
		if _, err := d.resolvePlugin(name); err != nil {
			return nil, err
		}
	}

	node, err := d.nodes.GetNode(ctx, actor, nodeID)
	if err != nil {
		return nil, err
	}

	record := &domain.Agent{
		AgentID:      uuid.New().URN(),
		LedgerNodeID: nodeID,
		Name:         opts.Name,
		Description:  opts.Description,
		Owner:        opts.Owner,
		Public:       opts.Public,
		Plugins:      opts.Plugins,
		CreatedAt:    d.now(),
	}
	if err := d.store.InsertAgent(ctx, record); err != nil {
		return nil, err
	}

	return d.view(ctx, record, node)
}

// resolvePlugin maps a failed registry lookup to InvalidPlugin and runs
// the structural validation.
func (d *Directory) resolvePlugin(name string) (plugin.Plugin, error) {
	p, err := d.plugins.Resolve(name)
	if err != nil {
		var notFound *domain.NotFoundError
		if errors.As(err, &notFound) {
			return nil, &domain.InvalidPluginError{Name: name, Reason: "not registered"}
		}
		return nil, err
	}
	if err := plugin.Validate(name, p); err != nil {
		return nil, err
	}
	return p, nil
}

// GetOptions is an additional filter layer the caller may supply on
// top of the stored record's own authorization metadata.
type GetOptions struct {
	Owner  string
	Public *bool
}

// Get returns the view of a non-deleted agent, enforcing visibility.
func (d *Directory) Get(ctx context.Context, actor, agentID string, opts GetOptions) (*domain.AgentView, error) {
	view, _, err := d.Resolve(ctx, actor, agentID, opts)
	return view, err
}

// Resolve is Get plus the live node handle, for callers that serve the
// node's sub-capabilities. Every access re-reads the store and re-runs
// the authorization check.
func (d *Directory) Resolve(ctx context.Context, actor, agentID string, opts GetOptions) (*domain.AgentView, ledger.NodeHandle, error) {
	record, err := d.store.FindAgent(ctx, agentID)
	if err != nil {
		return nil, nil, err
	}
	if record == nil || record.Deleted() {
		return nil, nil, &domain.NotFoundError{Resource: "agent", ID: agentID}
	}
	if opts.Owner != "" && record.Owner != opts.Owner {
		return nil, nil, &domain.NotFoundError{Resource: "agent", ID: agentID}
	}
	if opts.Public != nil && record.Public != *opts.Public {
		return nil, nil, &domain.NotFoundError{Resource: "agent", ID: agentID}
	}

	if !record.Public {
		if err := d.oracle.Check(ctx, actor, capabilityAccess, record.Owner); err != nil {
			return nil, nil, err
		}
	}

	// Public agents resolve the node anonymously so unauthenticated
	// callers can read them; the node still applies its own access
	// rules for private ones.
	nodeActor := actor
	if record.Public {
		nodeActor = ""
	}
	node, err := d.nodes.GetNode(ctx, nodeActor, record.LedgerNodeID)
	if err != nil {
		return nil, nil, err
	}

	view, err := d.view(ctx, record, node)
	if err != nil {
		return nil, nil, err
	}
	return view, node, nil
}

// Remove logically deletes an agent. The underlying node and its data
// are untouched; the record stays in the store with its deletion
// timestamp for audit.
func (d *Directory) Remove(ctx context.Context, actor, agentID, owner string) error {
	if owner == "" {
		return domain.ErrMissingOwner
	}

	record, err := d.store.FindAgent(ctx, agentID)
	if err != nil {
		return err
	}
	if record == nil || record.Deleted() {
		return &domain.NotFoundError{Resource: "agent", ID: agentID}
	}

	if err := d.oracle.Check(ctx, actor, capabilityRemove, record.Owner); err != nil {
		return err
	}

	return d.store.MarkAgentDeleted(ctx, agentID, d.now().UnixMilli())
}

// view builds the ephemeral per-request projection.
func (d *Directory) view(ctx context.Context, record *domain.Agent, node ledger.NodeHandle) (*domain.AgentView, error) {
	service, err := d.serviceMap(record)
	if err != nil {
		return nil, err
	}

	view := &domain.AgentView{
		AgentID:      record.AgentID,
		LedgerNodeID: record.LedgerNodeID,
		Name:         record.Name,
		Description:  record.Description,
		Owner:        record.Owner,
		Public:       record.Public,
		Plugins:      record.Plugins,
		Service:      service,
	}

	if node != nil {
		if peerID, err := node.PeerID(ctx); err == nil && peerID != "" {
			view.TargetNode = peerID
		}
	}

	return view, nil
}

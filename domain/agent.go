// Package domain defines the core models for the ledger agent service.
package domain

import "time"

// Agent is the durable registry record mapping an agent identifier to a
// ledger node plus ownership and visibility metadata. Records are never
// physically removed; DeletedAt marks logical deletion.
type Agent struct {
	AgentID      string    `json:"agent_id"`
	LedgerNodeID string    `json:"ledger_node_id"`
	Name         string    `json:"name,omitempty"`
	Description  string    `json:"description,omitempty"`
	Owner        string    `json:"owner"`
	Public       bool      `json:"public"`
	Plugins      []string  `json:"plugins,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	DeletedAt    *int64    `json:"deleted_at,omitempty"` // Unix milliseconds
}

// Deleted reports whether the record has been logically deleted.
func (a *Agent) Deleted() bool {
	return a.DeletedAt != nil
}

// ServiceEndpoint is one externally addressable endpoint of an agent.
// Type is set only for plugin-contributed entries, carrying the plugin's
// declared service type.
type ServiceEndpoint struct {
	URL  string `json:"url"`
	Type string `json:"type,omitempty"`
}

// AgentView is the per-request projection of an Agent plus live node
// data. It is computed fresh on every access and never persisted.
type AgentView struct {
	AgentID      string                     `json:"agent_id"`
	LedgerNodeID string                     `json:"ledger_node_id"`
	Name         string                     `json:"name,omitempty"`
	Description  string                     `json:"description,omitempty"`
	Owner        string                     `json:"owner"`
	Public       bool                       `json:"public"`
	Plugins      []string                   `json:"plugins,omitempty"`
	TargetNode   string                     `json:"target_node,omitempty"`
	Service      map[string]ServiceEndpoint `json:"service"`
}

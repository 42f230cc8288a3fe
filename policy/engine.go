// Package policy implements the permission oracle over OPA.
package policy

import (
	"context"
	"fmt"

	"github.com/open-policy-agent/opa/rego"

	"github.com/ledgerfoundry/ledgergate/domain"
)

// Engine evaluates capability checks against a rego policy.
type Engine struct {
	query rego.PreparedEvalQuery
}

// NewEngine creates a new policy engine with the given policy content.
func NewEngine(ctx context.Context, policyContent string) (*Engine, error) {
	r := rego.New(
		rego.Query("data.ledger_agents.decision"),
		rego.Module("ledger_agents.rego", policyContent),
	)

	query, err := r.PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare rego: %w", err)
	}

	return &Engine{query: query}, nil
}

// Check evaluates whether actor holds the capability over resources
// owned by owner. Any decision other than "allow" is reported as
// *domain.PermissionDeniedError.
func (e *Engine) Check(ctx context.Context, actor, capability, owner string) error {
	input := map[string]interface{}{
		"actor":      actor,
		"capability": capability,
		"owner":      owner,
	}

	results, err := e.query.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return fmt.Errorf("failed to evaluate policy: %w", err)
	}

	decision := "deny"
	if len(results) > 0 && len(results[0].Expressions) > 0 {
		if s, ok := results[0].Expressions[0].Value.(string); ok {
			decision = s
		}
	}

	if decision != "allow" {
		return &domain.PermissionDeniedError{Actor: actor, Capability: capability, Owner: owner}
	}
	return nil
}

// DefaultPolicy grants owners every capability over their own agents and
// admins every capability everywhere. Anonymous actors hold nothing.
const DefaultPolicy = `
package ledger_agents

default decision = "deny"

admins = {"admin"}

decision = "allow" {
	input.actor != ""
	input.actor == input.owner
}

decision = "allow" {
	input.actor == admins[_]
}
`

package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ledgerfoundry/ledgergate/domain"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestInsertAndFindAgent(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	agent := &domain.Agent{
		AgentID:      "urn:uuid:a1",
		LedgerNodeID: "urn:uuid:n1",
		Name:         "demo",
		Description:  "demo agent",
		Owner:        "u1",
		Public:       true,
		Plugins:      []string{"example"},
		CreatedAt:    time.Now(),
	}
	if err := s.InsertAgent(ctx, agent); err != nil {
		t.Fatalf("InsertAgent failed: %v", err)
	}

	got, err := s.FindAgent(ctx, "urn:uuid:a1")
	if err != nil {
		t.Fatalf("FindAgent failed: %v", err)
	}
	if got == nil {
		t.Fatal("expected agent, got nil")
	}
	if got.Owner != "u1" || !got.Public || got.LedgerNodeID != "urn:uuid:n1" {
		t.Fatalf("unexpected agent: %+v", got)
	}
	if len(got.Plugins) != 1 || got.Plugins[0] != "example" {
		t.Fatalf("unexpected plugins: %v", got.Plugins)
	}
	if got.Deleted() {
		t.Fatal("new agent should not be deleted")
	}
}

func TestFindAgentMissing(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	got, err := s.FindAgent(ctx, "urn:uuid:missing")
	if err != nil {
		t.Fatalf("FindAgent failed: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil, got %+v", got)
	}
}

func TestInsertDuplicateAgent(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	agent := &domain.Agent{
		AgentID:      "urn:uuid:a1",
		LedgerNodeID: "urn:uuid:n1",
		Owner:        "u1",
		CreatedAt:    time.Now(),
	}
	if err := s.InsertAgent(ctx, agent); err != nil {
		t.Fatalf("first InsertAgent failed: %v", err)
	}

	err := s.InsertAgent(ctx, agent)
	var dup *domain.DuplicateAgentError
	if !errors.As(err, &dup) {
		t.Fatalf("expected DuplicateAgentError, got %v", err)
	}
	if dup.AgentID != "urn:uuid:a1" || dup.LedgerNodeID != "urn:uuid:n1" {
		t.Fatalf("unexpected duplicate error: %+v", dup)
	}
}

func TestMarkAgentDeleted(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	agent := &domain.Agent{
		AgentID:      "urn:uuid:a1",
		LedgerNodeID: "urn:uuid:n1",
		Owner:        "u1",
		CreatedAt:    time.Now(),
	}
	if err := s.InsertAgent(ctx, agent); err != nil {
		t.Fatalf("InsertAgent failed: %v", err)
	}

	when := time.Now().UnixMilli()
	if err := s.MarkAgentDeleted(ctx, "urn:uuid:a1", when); err != nil {
		t.Fatalf("MarkAgentDeleted failed: %v", err)
	}

	got, err := s.FindAgent(ctx, "urn:uuid:a1")
	if err != nil {
		t.Fatalf("FindAgent failed: %v", err)
	}
	if got == nil || !got.Deleted() {
		t.Fatalf("expected deleted record, got %+v", got)
	}
	if *got.DeletedAt != when {
		t.Fatalf("expected deleted_at %d, got %d", when, *got.DeletedAt)
	}
}

func TestAgentIDsFilterAndPaging(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	insert := func(id, owner string, public bool) {
		t.Helper()
		err := s.InsertAgent(ctx, &domain.Agent{
			AgentID:      id,
			LedgerNodeID: "urn:uuid:n1",
			Owner:        owner,
			Public:       public,
			CreatedAt:    time.Now(),
		})
		if err != nil {
			t.Fatalf("InsertAgent(%s) failed: %v", id, err)
		}
	}

	insert("urn:uuid:a1", "u1", false)
	insert("urn:uuid:a2", "u1", true)
	insert("urn:uuid:a3", "u1", false)
	insert("urn:uuid:a4", "u2", true)
	insert("urn:uuid:a5", "u2", false)

	if err := s.MarkAgentDeleted(ctx, "urn:uuid:a3", time.Now().UnixMilli()); err != nil {
		t.Fatalf("MarkAgentDeleted failed: %v", err)
	}

	ids, err := s.AgentIDs(ctx, AgentFilter{Owners: []string{"u1"}}, "", 10)
	if err != nil {
		t.Fatalf("AgentIDs failed: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("expected 2 u1 agents (deleted excluded), got %v", ids)
	}

	public := true
	ids, err = s.AgentIDs(ctx, AgentFilter{Public: &public}, "", 10)
	if err != nil {
		t.Fatalf("AgentIDs failed: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("expected 2 public agents, got %v", ids)
	}

	// Keyset paging: two pages of two, then the rest.
	page1, err := s.AgentIDs(ctx, AgentFilter{}, "", 2)
	if err != nil {
		t.Fatalf("AgentIDs failed: %v", err)
	}
	if len(page1) != 2 {
		t.Fatalf("expected page of 2, got %v", page1)
	}
	page2, err := s.AgentIDs(ctx, AgentFilter{}, page1[len(page1)-1], 2)
	if err != nil {
		t.Fatalf("AgentIDs failed: %v", err)
	}
	if len(page2) != 2 {
		t.Fatalf("expected page of 2, got %v", page2)
	}
	page3, err := s.AgentIDs(ctx, AgentFilter{}, page2[len(page2)-1], 2)
	if err != nil {
		t.Fatalf("AgentIDs failed: %v", err)
	}
	if len(page3) != 0 {
		t.Fatalf("expected empty final page, got %v", page3)
	}

	seen := map[string]bool{}
	for _, id := range append(page1, page2...) {
		if seen[id] {
			t.Fatalf("id %s appeared twice", id)
		}
		seen[id] = true
	}
	if seen["urn:uuid:a3"] {
		t.Fatal("deleted agent appeared in enumeration")
	}
}

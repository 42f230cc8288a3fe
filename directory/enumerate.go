package directory

import (
	"context"

	"github.com/ledgerfoundry/ledgergate/domain"
	"github.com/ledgerfoundry/ledgergate/store"
)

// Filter narrows enumeration by owner and/or visibility. The zero value
// matches all non-deleted agents; per-item authorization still applies.
type Filter struct {
	Owners []string
	Public *bool
}

const enumeratePageSize = 50

// Enumerate returns a forward-only iterator over the agents matching
// the filter. Each element performs a full Get at consumption time, so
// authorization reflects the state of the world at the moment of use.
// The first authorization or lookup failure terminates the iteration;
// unauthorized items are not skipped silently. Concurrent insertions
// may or may not be observed.
func (d *Directory) Enumerate(actor string, filter Filter) *Iterator {
	return &Iterator{
		dir:      d,
		actor:    actor,
		filter:   store.AgentFilter{Owners: filter.Owners, Public: filter.Public},
		pageSize: enumeratePageSize,
	}
}

// Iterator is a pull-based sequence of agent views. It pages agent ids
// out of the store (id projection only) and re-reads the full record
// per element. Not restartable once consumed; not safe for concurrent
// use.
type Iterator struct {
	dir      *Directory
	actor    string
	filter   store.AgentFilter
	pageSize int

	pending []string
	afterID string
	view    *domain.AgentView
	done    bool
	err     error
}

// Next advances to the next agent. It returns false when the sequence
// is exhausted or a terminal error occurred; check Err afterwards.
func (it *Iterator) Next(ctx context.Context) bool {
	if it.done || it.err != nil {
		return false
	}

	if len(it.pending) == 0 {
		ids, err := it.dir.store.AgentIDs(ctx, it.filter, it.afterID, it.pageSize)
		if err != nil {
			it.err = err
			return false
		}
		if len(ids) == 0 {
			it.done = true
			return false
		}
		it.pending = ids
		it.afterID = ids[len(ids)-1]
	}

	id := it.pending[0]
	it.pending = it.pending[1:]

	view, err := it.dir.Get(ctx, it.actor, id, GetOptions{})
	if err != nil {
		it.err = err
		return false
	}
	it.view = view
	return true
}

// View returns the element produced by the last successful Next.
func (it *Iterator) View() *domain.AgentView {
	return it.view
}

// Err returns the terminal error, if any.
func (it *Iterator) Err() error {
	return it.err
}

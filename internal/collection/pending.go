package collection

import (
	"github.com/MrSnakeDoc/reelmark/internal/domain"
)

// Kind is the type of a mutation.
type Kind int

const (
	Add Kind = iota
	Update
	Delete
)

func (k Kind) String() string {
	switch k {
	case Add:
		return "add"
	case Update:
		return "update"
	case Delete:
		return "delete"
	default:
		return "unknown"
	}
}

// Mutation is a change to one bookmark. Delete only uses ID.
type Mutation struct {
	Kind     Kind
	Bookmark domain.Bookmark
	ID       string
}

// AddOf builds an Add mutation.
func AddOf(b domain.Bookmark) Mutation { return Mutation{Kind: Add, Bookmark: b.Clone(), ID: b.ID} }

// UpdateOf builds an Update mutation.
func UpdateOf(b domain.Bookmark) Mutation {
	return Mutation{Kind: Update, Bookmark: b.Clone(), ID: b.ID}
}

// DeleteOf builds a Delete mutation.
func DeleteOf(id string) Mutation { return Mutation{Kind: Delete, ID: id} }

// Pending is a handle on a mutation that has been shown but not confirmed.
type Pending struct {
	seq uint64
	m   Mutation
}

type committed struct {
	seq uint64
	m   Mutation
}

// Begin layers m on top of the confirmed state until it is committed or
// rolled back.
func (c *Collection) Begin(m Mutation) *Pending {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.nextSeq++
	p := &Pending{seq: c.nextSeq, m: m}
	c.pending = append(c.pending, p)
	return p
}

// Commit folds p into the confirmed state. It reports false when p is no
// longer pending.
func (c *Collection) Commit(p *Pending) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.dropLocked(p) {
		return false
	}
	c.confirmed = apply(c.confirmed, p.m)
	c.commits++
	if c.loads > 0 {
		c.committed = append(c.committed, committed{seq: c.commits, m: p.m})
	}
	if p.m.Kind != Delete {
		c.categories.Add(p.m.Bookmark.Category...)
	}
	return true
}

// Rollback discards p. It reports false when p is no longer pending.
func (c *Collection) Rollback(p *Pending) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.dropLocked(p)
}

// PendingCount returns the number of in-flight mutations.
func (c *Collection) PendingCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.pending)
}

func (c *Collection) dropLocked(p *Pending) bool {
	if p == nil {
		return false
	}
	for i, q := range c.pending {
		if q.seq == p.seq {
			c.pending = append(c.pending[:i], c.pending[i+1:]...)
			return true
		}
	}
	return false
}

func (c *Collection) snapshotLocked() []domain.Bookmark {
	out := make([]domain.Bookmark, 0, len(c.confirmed)+len(c.pending))
	for _, b := range c.confirmed {
		out = append(out, b.Clone())
	}
	for _, p := range c.pending {
		out = apply(out, p.m)
	}
	return out
}

// apply returns list with m applied. An Add for an id already present
// replaces it; an Update for an unknown id is ignored.
func apply(list []domain.Bookmark, m Mutation) []domain.Bookmark {
	switch m.Kind {
	case Add:
		for i := range list {
			if list[i].ID == m.ID {
				list[i] = m.Bookmark.Clone()
				return list
			}
		}
		return append([]domain.Bookmark{m.Bookmark.Clone()}, list...)
	case Update:
		for i := range list {
			if list[i].ID == m.ID {
				list[i] = m.Bookmark.Clone()
				break
			}
		}
		return list
	case Delete:
		kept := make([]domain.Bookmark, 0, len(list))
		for _, b := range list {
			if b.ID != m.ID {
				kept = append(kept, b)
			}
		}
		return kept
	}
	return list
}

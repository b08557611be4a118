// Package index implements in-memory multi-key indexes over receipts and
// trust grants, plus the query engines that filter, sort, and limit against
// them. Indexes hold owned copies of whatever is inserted; they are not a
// substitute for a store's canonical copy.
package index

import (
	"sort"

	"github.com/agentralabs/agentic-identity/pkg/identity"
	"github.com/agentralabs/agentic-identity/pkg/receipt"
)

// ReceiptIndex indexes a set of receipts by ID, actor, action-type tag, and
// timestamp, so ReceiptQuery doesn't need to scan the full set for common
// filters.
type ReceiptIndex struct {
	byID        map[receipt.ID]*receipt.ActionReceipt
	byActor     map[identity.ID][]receipt.ID
	byType      map[string][]receipt.ID
	byTimestamp []timestampedID // kept sorted ascending by timestamp
}

type timestampedID struct {
	ts uint64
	id receipt.ID
}

// NewReceiptIndex builds an empty index.
func NewReceiptIndex() *ReceiptIndex {
	return &ReceiptIndex{
		byID:    make(map[receipt.ID]*receipt.ActionReceipt),
		byActor: make(map[identity.ID][]receipt.ID),
		byType:  make(map[string][]receipt.ID),
	}
}

// Insert adds or overwrites r in the index.
func (idx *ReceiptIndex) Insert(r *receipt.ActionReceipt) {
	if _, exists := idx.byID[r.ID]; !exists {
		idx.byActor[r.Actor] = append(idx.byActor[r.Actor], r.ID)
		idx.byType[r.ActionType.Tag()] = append(idx.byType[r.ActionType.Tag()], r.ID)
		pos := sort.Search(len(idx.byTimestamp), func(i int) bool { return idx.byTimestamp[i].ts >= r.Timestamp })
		idx.byTimestamp = append(idx.byTimestamp, timestampedID{})
		copy(idx.byTimestamp[pos+1:], idx.byTimestamp[pos:])
		idx.byTimestamp[pos] = timestampedID{ts: r.Timestamp, id: r.ID}
	}
	idx.byID[r.ID] = r
}

// Get returns the receipt with the given ID, or nil.
func (idx *ReceiptIndex) Get(id receipt.ID) *receipt.ActionReceipt {
	return idx.byID[id]
}

// Remove drops a receipt from the index. Idempotent if absent.
func (idx *ReceiptIndex) Remove(id receipt.ID) {
	r, ok := idx.byID[id]
	if !ok {
		return
	}
	delete(idx.byID, id)
	idx.byActor[r.Actor] = removeID(idx.byActor[r.Actor], id)
	idx.byType[r.ActionType.Tag()] = removeID(idx.byType[r.ActionType.Tag()], id)
	for i, t := range idx.byTimestamp {
		if t.id == id {
			idx.byTimestamp = append(idx.byTimestamp[:i], idx.byTimestamp[i+1:]...)
			break
		}
	}
}

func removeID(ids []receipt.ID, target receipt.ID) []receipt.ID {
	out := ids[:0]
	for _, id := range ids {
		if id != target {
			out = append(out, id)
		}
	}
	return out
}

// inRange returns receipt IDs timestamped within [from, to] inclusive.
func (idx *ReceiptIndex) inRange(from, to uint64) []receipt.ID {
	lo := sort.Search(len(idx.byTimestamp), func(i int) bool { return idx.byTimestamp[i].ts >= from })
	var out []receipt.ID
	for i := lo; i < len(idx.byTimestamp) && idx.byTimestamp[i].ts <= to; i++ {
		out = append(out, idx.byTimestamp[i].id)
	}
	return out
}

// Sort orders ReceiptQuery results.
type Sort int

const (
	NewestFirst Sort = iota
	OldestFirst
)

// ReceiptQuery filters receipts by AND-combined criteria: actor, action
// type, an inclusive timestamp range, and/or direct successors of a chain
// root (receipts whose PreviousReceipt equals the given ID — not the full
// transitive chain).
type ReceiptQuery struct {
	Actor      *identity.ID
	ActionType *string
	From, To   *uint64
	ChainRoot  *receipt.ID
	Sort       Sort
	Limit      *int
}

// Run executes the query against idx. It seeds the candidate set from
// whichever secondary key is likely most selective (actor, then type, then
// timestamp range, then a full scan), then filters that candidate set
// against every other criterion so the result is correct regardless of
// which key was chosen as the seed.
func (q ReceiptQuery) Run(idx *ReceiptIndex) []*receipt.ActionReceipt {
	var candidateIDs []receipt.ID
	switch {
	case q.Actor != nil:
		candidateIDs = idx.byActor[*q.Actor]
	case q.ActionType != nil:
		candidateIDs = idx.byType[*q.ActionType]
	case q.From != nil || q.To != nil:
		from, to := uint64(0), ^uint64(0)
		if q.From != nil {
			from = *q.From
		}
		if q.To != nil {
			to = *q.To
		}
		candidateIDs = idx.inRange(from, to)
	default:
		for id := range idx.byID {
			candidateIDs = append(candidateIDs, id)
		}
	}

	var results []*receipt.ActionReceipt
	for _, id := range candidateIDs {
		r := idx.byID[id]
		if r == nil {
			continue
		}
		if !q.matches(r) {
			continue
		}
		results = append(results, r)
	}

	sort.Slice(results, func(i, j int) bool {
		if q.Sort == OldestFirst {
			return results[i].Timestamp < results[j].Timestamp
		}
		return results[i].Timestamp > results[j].Timestamp
	})

	if q.Limit != nil && len(results) > *q.Limit {
		results = results[:*q.Limit]
	}
	return results
}

func (q ReceiptQuery) matches(r *receipt.ActionReceipt) bool {
	if q.Actor != nil && r.Actor != *q.Actor {
		return false
	}
	if q.ActionType != nil && r.ActionType.Tag() != *q.ActionType {
		return false
	}
	if q.From != nil && r.Timestamp < *q.From {
		return false
	}
	if q.To != nil && r.Timestamp > *q.To {
		return false
	}
	if q.ChainRoot != nil {
		if r.PreviousReceipt == nil || *r.PreviousReceipt != *q.ChainRoot {
			return false
		}
	}
	return true
}

package index

import (
	"strings"

	"github.com/agentralabs/agentic-identity/pkg/identity"
	"github.com/agentralabs/agentic-identity/pkg/trust"
)

// TrustIndex indexes a set of grants by ID, grantor, and grantee, and tracks
// revocations keyed by trust ID.
type TrustIndex struct {
	byID        map[trust.ID]*trust.Grant
	byGrantor   map[identity.ID][]trust.ID
	byGrantee   map[identity.ID][]trust.ID
	revocations map[string]*trust.Revocation
}

// NewTrustIndex builds an empty index.
func NewTrustIndex() *TrustIndex {
	return &TrustIndex{
		byID:        make(map[trust.ID]*trust.Grant),
		byGrantor:   make(map[identity.ID][]trust.ID),
		byGrantee:   make(map[identity.ID][]trust.ID),
		revocations: make(map[string]*trust.Revocation),
	}
}

// Insert adds or overwrites g in the index.
func (idx *TrustIndex) Insert(g *trust.Grant) {
	if _, exists := idx.byID[g.ID]; !exists {
		idx.byGrantor[g.Grantor] = append(idx.byGrantor[g.Grantor], g.ID)
		idx.byGrantee[g.Grantee] = append(idx.byGrantee[g.Grantee], g.ID)
	}
	idx.byID[g.ID] = g
}

// Get returns the grant with the given ID, or nil.
func (idx *TrustIndex) Get(id trust.ID) *trust.Grant {
	return idx.byID[id]
}

// Revoke records a revocation against a trust ID.
func (idx *TrustIndex) Revoke(r *trust.Revocation) {
	idx.revocations[r.TrustID] = r
}

// IsRevokedID reports whether the given trust ID string has a recorded
// revocation. Revocation.TrustID is a plain string (it need not name a
// grant this index has ever seen), unlike trust.ID which is always a
// derived identifier.
func (idx *TrustIndex) IsRevokedID(trustID string) bool {
	_, ok := idx.revocations[trustID]
	return ok
}

// Revocations returns the full revocation set, suitable for passing to
// trust.VerifyGrant.
func (idx *TrustIndex) Revocations() []trust.Revocation {
	out := make([]trust.Revocation, 0, len(idx.revocations))
	for _, r := range idx.revocations {
		out = append(out, *r)
	}
	return out
}

// IsRevoked reports whether id has a recorded revocation.
func (idx *TrustIndex) IsRevoked(id trust.ID) bool {
	return idx.IsRevokedID(string(id))
}

// TrustQuery filters grants by AND-combined criteria: grantor, grantee, a
// plain-string prefix match against any capability URI, and/or
// currently-valid (time-valid and not revoked at the query's injected now).
type TrustQuery struct {
	Grantor          *identity.ID
	Grantee          *identity.ID
	CapabilityPrefix *string
	ValidOnly        bool
	Now              uint64
	CurrentUses      uint64
	Limit            *int
}

// Run executes the query against idx.
func (q TrustQuery) Run(idx *TrustIndex) []*trust.Grant {
	var candidateIDs []trust.ID
	switch {
	case q.Grantor != nil:
		candidateIDs = idx.byGrantor[*q.Grantor]
	case q.Grantee != nil:
		candidateIDs = idx.byGrantee[*q.Grantee]
	default:
		for id := range idx.byID {
			candidateIDs = append(candidateIDs, id)
		}
	}

	var results []*trust.Grant
	for _, id := range candidateIDs {
		g := idx.byID[id]
		if g == nil || !q.matches(idx, g) {
			continue
		}
		results = append(results, g)
	}

	if q.Limit != nil && len(results) > *q.Limit {
		results = results[:*q.Limit]
	}
	return results
}

func (q TrustQuery) matches(idx *TrustIndex, g *trust.Grant) bool {
	if q.Grantor != nil && g.Grantor != *q.Grantor {
		return false
	}
	if q.Grantee != nil && g.Grantee != *q.Grantee {
		return false
	}
	if q.CapabilityPrefix != nil {
		found := false
		for _, c := range g.Capabilities {
			if strings.HasPrefix(c.URI, *q.CapabilityPrefix) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if q.ValidOnly {
		timeValid := g.Constraints == nil || g.Constraints.IsTimeValid(q.Now)
		if !timeValid || idx.IsRevoked(g.ID) {
			return false
		}
	}
	return true
}

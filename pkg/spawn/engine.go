package spawn

import (
	"fmt"

	"github.com/agentralabs/agentic-identity/pkg/aicrypto"
	"github.com/agentralabs/agentic-identity/pkg/aitime"
	"github.com/agentralabs/agentic-identity/pkg/identity"
	"github.com/agentralabs/agentic-identity/pkg/receipt"
	"github.com/agentralabs/agentic-identity/pkg/trust"
	"github.com/agentralabs/agentic-identity/pkg/xerrors"
)

// computeDepth is a deliberate simplification carried over from the
// original engine: a full answer requires walking the entire ancestor
// chain, which this function's callers don't have on hand. It reports 0
// for a root spawn and 1 for anything spawned by an already-spawned
// identity, which is enough to gate against an immediate max-depth-of-0
// policy but not to enforce an arbitrary depth ceiling by itself — callers
// enforcing exact depth limits should combine this with GetAncestors.
func computeDepth(parentSpawnInfo *Info) uint32 {
	if parentSpawnInfo == nil {
		return 0
	}
	return 1
}

// SpawnChild creates a new bounded-authority identity under parent. The
// granted and ceiling capability sets must each already be covered by the
// parent's own ceiling (a spawn can never grant more than the parent
// holds), and the parent must not have exceeded its max-children limit.
// Returns the new anchor, the signed spawn record, and a Delegation
// receipt documenting the act.
func SpawnChild(
	parent *identity.Anchor,
	spawnType Type,
	purpose string,
	authorityGranted, authorityCeiling []trust.Capability,
	lifetime Lifetime,
	constraints Constraints,
	parentSpawnInfo *Info,
	existingChildren []*Record,
	clock aitime.Clock,
) (*identity.Anchor, *Record, *receipt.ActionReceipt, error) {
	const op = "spawn.SpawnChild"

	depth := computeDepth(parentSpawnInfo)
	if parentSpawnInfo != nil {
		maxDepth := uint32(10)
		if parentSpawnInfo.Constraints.MaxSpawnDepth != nil {
			maxDepth = *parentSpawnInfo.Constraints.MaxSpawnDepth
		}
		if depth >= maxDepth {
			return nil, nil, nil, xerrors.New(xerrors.KindDelegationDepthExceeded, op, "max spawn depth exceeded")
		}
		if !parentSpawnInfo.Constraints.CanSpawn {
			return nil, nil, nil, xerrors.New(xerrors.KindDelegationNotAllowed, op, "identity is not permitted to spawn")
		}
	}

	parentCeiling := authorityCeiling
	if parentSpawnInfo != nil {
		parentCeiling = parentSpawnInfo.AuthorityCeiling
	}
	for _, cap := range authorityGranted {
		if !trust.CapabilitiesCover(parentCeiling, cap.URI) {
			return nil, nil, nil, xerrors.New(xerrors.KindTrustNotGranted, op, fmt.Sprintf("capability '%s' exceeds parent's authority ceiling", cap.URI))
		}
	}
	for _, cap := range authorityCeiling {
		if !trust.CapabilitiesCover(parentCeiling, cap.URI) {
			return nil, nil, nil, xerrors.New(xerrors.KindTrustNotGranted, op, fmt.Sprintf("ceiling capability '%s' exceeds parent's authority ceiling", cap.URI))
		}
	}

	if constraints.MaxChildren != nil {
		active := uint32(0)
		for _, c := range existingChildren {
			if c.ParentID == parent.ID() && !c.Terminated {
				active++
			}
		}
		if active >= *constraints.MaxChildren {
			return nil, nil, nil, xerrors.New(xerrors.KindMaxUsesExceeded, op, "max children exceeded")
		}
	}

	childName := fmt.Sprintf("%s:%s", spawnType.Tag(), purpose)
	child, err := identity.NewAnchor(&childName, clock)
	if err != nil {
		return nil, nil, nil, xerrors.Wrap(xerrors.KindCrypto, op, err)
	}

	now := clock()
	spawnID := ID(aicrypto.DeriveID("aspawn_", []byte(fmt.Sprintf("spawn:%s:%s:%d", parent.ID(), child.ID(), now))))

	content := receipt.ContentWithData(
		fmt.Sprintf("spawned child %s (%s): %s", child.ID(), spawnType.Tag(), purpose),
		map[string]interface{}{
			"spawn_id":          string(spawnID),
			"child_id":          string(child.ID()),
			"spawn_type":        spawnType.Tag(),
			"purpose":           purpose,
			"authority_granted": capabilityURIs(authorityGranted),
			"authority_ceiling": capabilityURIs(authorityCeiling),
			"lifetime":          lifetime.Tag(),
		},
	)
	spawnReceipt, err := receipt.NewBuilder(parent.ID(), receipt.ActionDelegation, content).Sign(parent.Keys(), clock)
	if err != nil {
		return nil, nil, nil, err
	}

	parentSignMsg := fmt.Sprintf("spawn:%s:%s:%s:%s:%d", spawnID, parent.ID(), child.ID(), spawnType.Tag(), now)
	parentSig := aicrypto.SignToBase64(parent.Keys(), []byte(parentSignMsg))

	childAckMsg := fmt.Sprintf("ack:%s:%s:%d", spawnID, child.ID(), now)
	childAck := aicrypto.SignToBase64(child.Keys(), []byte(childAckMsg))

	record := &Record{
		ID:                  spawnID,
		ParentID:            parent.ID(),
		ParentKey:           parent.PublicKeyBase64(),
		ChildID:             child.ID(),
		ChildKey:            child.PublicKeyBase64(),
		SpawnTimestamp:      now,
		SpawnType:           spawnType,
		SpawnPurpose:        purpose,
		SpawnReceiptID:      string(spawnReceipt.ID),
		AuthorityGranted:    authorityGranted,
		AuthorityCeiling:    authorityCeiling,
		Lifetime:            lifetime,
		Constraints:         constraints,
		ParentSignature:     parentSig,
		ChildAcknowledgment: &childAck,
	}

	return child, record, spawnReceipt, nil
}

func capabilityURIs(caps []trust.Capability) []string {
	out := make([]string, len(caps))
	for i, c := range caps {
		out[i] = c.URI
	}
	return out
}

// TerminateSpawn ends a child's bounded authority. Only the parent
// identity named on the spawn record may terminate it. If cascade is set,
// every descendant is recursively terminated too, each with a termination
// reason noting it was a cascade from the named parent's termination.
// Returns a Revocation receipt documenting the termination and the full
// list of spawn IDs that were terminated (the direct child plus any
// cascaded descendants).
func TerminateSpawn(
	parent *identity.Anchor,
	record *Record,
	reason string,
	cascade bool,
	allRecords []*Record,
	clock aitime.Clock,
) (*receipt.ActionReceipt, []ID, error) {
	const op = "spawn.TerminateSpawn"

	if parent.ID() != record.ParentID {
		return nil, nil, xerrors.New(xerrors.KindTrustNotGranted, op, "only the parent may terminate its own spawn")
	}

	now := clock()
	record.Terminated = true
	record.TerminatedAt = &now
	record.TerminationReason = &reason

	terminatedIDs := []ID{record.ID}
	if cascade {
		terminatedIDs = append(terminatedIDs, cascadeTerminate(record.ChildID, reason, allRecords, clock)...)
	}

	content := receipt.ContentWithData(
		fmt.Sprintf("terminated spawn %s: %s", record.ID, reason),
		map[string]interface{}{
			"spawn_id":       string(record.ID),
			"child_id":       string(record.ChildID),
			"cascade":        cascade,
			"terminated_ids": idsToStrings(terminatedIDs),
		},
	)
	rec, err := receipt.NewBuilder(parent.ID(), receipt.ActionRevocation, content).Sign(parent.Keys(), clock)
	if err != nil {
		return nil, nil, err
	}

	return rec, terminatedIDs, nil
}

// cascadeTerminate recursively terminates every descendant of parentID: it
// finds parentID's direct, still-active children, marks each terminated,
// then recurses into each child's own children. This mirrors the depth-
// first recursive structure of the original engine rather than a
// breadth-first sweep.
func cascadeTerminate(parentID identity.ID, reason string, allRecords []*Record, clock aitime.Clock) []ID {
	now := clock()
	cascadeReason := fmt.Sprintf("Cascade from parent: %s", reason)

	var directChildren []*Record
	for _, r := range allRecords {
		if r.ParentID == parentID && !r.Terminated {
			directChildren = append(directChildren, r)
		}
	}

	var terminated []ID
	for _, child := range directChildren {
		child.Terminated = true
		child.TerminatedAt = &now
		child.TerminationReason = &cascadeReason
		terminated = append(terminated, child.ID)
	}
	for _, child := range directChildren {
		terminated = append(terminated, cascadeTerminate(child.ChildID, reason, allRecords, clock)...)
	}
	return terminated
}

func idsToStrings(ids []ID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}

// VerifyLineage checks an identity's position in the spawn tree: if it has
// no spawn record (it's a root identity), it holds full, unbounded
// authority. Otherwise it walks up the parent chain, checking every
// ancestor remains non-terminated and non-expired.
func VerifyLineage(id identity.ID, spawnRecords []*Record, clock aitime.Clock) LineageVerification {
	now := clock()

	own := findAsChild(id, spawnRecords)
	if own == nil {
		return LineageVerification{
			Identity:           id,
			LineageValid:       true,
			AllAncestorsActive: true,
			EffectiveAuthority: []trust.Capability{trust.NewCapability("*")},
			SpawnDepth:         0,
			IsValid:            true,
			VerifiedAt:         now,
		}
	}

	var parentChain []identity.ID
	var errs []string
	allActive := true
	var revokedAncestor *identity.ID

	cur := own
	for {
		if cur.Terminated {
			allActive = false
			id := cur.ParentID
			revokedAncestor = &id
			errs = append(errs, fmt.Sprintf("ancestor spawn %s is terminated", cur.ID))
		}
		if cur.Lifetime.IsExpired(cur.SpawnTimestamp, now, nil, nil) {
			allActive = false
			errs = append(errs, fmt.Sprintf("ancestor spawn %s has expired", cur.ID))
		}
		parentChain = append(parentChain, cur.ParentID)

		next := findAsChild(cur.ParentID, spawnRecords)
		if next == nil {
			break
		}
		cur = next
	}

	lineageValid := !own.Terminated && allActive
	effective := []trust.Capability{}
	if lineageValid {
		effective = own.AuthorityGranted
	}

	return LineageVerification{
		Identity:           id,
		LineageValid:       lineageValid,
		AllAncestorsActive: allActive,
		EffectiveAuthority: effective,
		SpawnDepth:         len(parentChain),
		RevokedAncestor:    revokedAncestor,
		IsValid:            lineageValid,
		VerifiedAt:         now,
		Errors:             errs,
	}
}

func findAsChild(id identity.ID, records []*Record) *Record {
	for _, r := range records {
		if r.ChildID == id {
			return r
		}
	}
	return nil
}

// GetEffectiveAuthority returns the capabilities an identity currently
// holds per its lineage verification.
func GetEffectiveAuthority(id identity.ID, spawnRecords []*Record, clock aitime.Clock) []trust.Capability {
	return VerifyLineage(id, spawnRecords, clock).EffectiveAuthority
}

// GetAncestors walks id's parent chain up to (and including) the root.
func GetAncestors(id identity.ID, spawnRecords []*Record) []identity.ID {
	var out []identity.ID
	cur := id
	for {
		rec := findAsChild(cur, spawnRecords)
		if rec == nil {
			return out
		}
		out = append(out, rec.ParentID)
		cur = rec.ParentID
	}
}

// GetChildren returns id's direct spawn records, terminated ones included.
func GetChildren(id identity.ID, spawnRecords []*Record) []*Record {
	var out []*Record
	for _, r := range spawnRecords {
		if r.ParentID == id {
			out = append(out, r)
		}
	}
	return out
}

// GetDescendants returns every record transitively spawned under id,
// walked breadth-first.
func GetDescendants(id identity.ID, spawnRecords []*Record) []*Record {
	var out []*Record
	queue := []identity.ID{id}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, r := range spawnRecords {
			if r.ParentID == cur {
				out = append(out, r)
				queue = append(queue, r.ChildID)
			}
		}
	}
	return out
}

// CanSpawn reports whether parentSpawnInfo (nil for a root identity) and
// constraints permit spawning another child, without actually creating
// one.
func CanSpawn(parentSpawnInfo *Info, constraints Constraints, existingChildren []*Record, parentID identity.ID) bool {
	if parentSpawnInfo != nil {
		maxDepth := uint32(10)
		if parentSpawnInfo.Constraints.MaxSpawnDepth != nil {
			maxDepth = *parentSpawnInfo.Constraints.MaxSpawnDepth
		}
		if computeDepth(parentSpawnInfo) >= maxDepth {
			return false
		}
		if !parentSpawnInfo.Constraints.CanSpawn {
			return false
		}
	}
	if constraints.MaxChildren != nil {
		active := uint32(0)
		for _, c := range existingChildren {
			if c.ParentID == parentID && !c.Terminated {
				active++
			}
		}
		if active >= *constraints.MaxChildren {
			return false
		}
	}
	return true
}

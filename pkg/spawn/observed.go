package spawn

import (
	"context"
	"fmt"

	"github.com/agentralabs/agentic-identity/pkg/aitime"
	"github.com/agentralabs/agentic-identity/pkg/identity"
	"github.com/agentralabs/agentic-identity/pkg/observability"
	"github.com/agentralabs/agentic-identity/pkg/receipt"
	"github.com/agentralabs/agentic-identity/pkg/trust"
)

// SpawnChildObserved wraps SpawnChild with a Monitor span, RED-metric
// sample, SLO observation, and audit-timeline entry. mon may be nil, in
// which case this behaves exactly like SpawnChild.
func SpawnChildObserved(
	ctx context.Context,
	mon *observability.Monitor,
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
	depth := computeDepth(parentSpawnInfo)
	finish := mon.Track(ctx, "spawn.create", string(parent.ID()), observability.EntryTypeAction,
		fmt.Sprintf("spawn %s under %s", spawnType.Tag(), parent.ID()),
		observability.SpawnOperation(string(parent.ID()), "", "create", int64(depth))...)

	child, record, rec, err := SpawnChild(parent, spawnType, purpose, authorityGranted, authorityCeiling, lifetime, constraints, parentSpawnInfo, existingChildren, clock)
	finish(err)
	return child, record, rec, err
}

// TerminateSpawnObserved wraps TerminateSpawn the same way SpawnChildObserved
// wraps SpawnChild.
func TerminateSpawnObserved(
	ctx context.Context,
	mon *observability.Monitor,
	parent *identity.Anchor,
	record *Record,
	reason string,
	cascade bool,
	allRecords []*Record,
	clock aitime.Clock,
) (*receipt.ActionReceipt, []ID, error) {
	finish := mon.Track(ctx, "spawn.terminate", string(parent.ID()), observability.EntryTypeAction,
		fmt.Sprintf("terminate spawn %s: %s", record.ID, reason),
		observability.SpawnOperation(string(parent.ID()), string(record.ID), "terminate", 0)...)

	rec, ids, err := TerminateSpawn(parent, record, reason, cascade, allRecords, clock)
	finish(err)
	return rec, ids, err
}

// VerifyLineageObserved wraps VerifyLineage with a Monitor span and audit
// entry. VerifyLineage never itself fails (it reports LineageValid=false
// in the verdict rather than erroring), so the audit entry's "error" field
// reflects !IsValid, not a Go error.
func VerifyLineageObserved(ctx context.Context, mon *observability.Monitor, id identity.ID, spawnRecords []*Record, clock aitime.Clock) LineageVerification {
	finish := mon.Track(ctx, "spawn.verify_lineage", string(id), observability.EntryTypeDecision,
		fmt.Sprintf("verify lineage for %s", id),
		observability.SpawnOperation(string(id), "", "verify_lineage", 0)...)

	v := VerifyLineage(id, spawnRecords, clock)
	var err error
	if !v.IsValid {
		err = fmt.Errorf("lineage invalid for %s", id)
	}
	finish(err)
	return v
}

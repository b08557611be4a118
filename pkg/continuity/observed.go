package continuity

import (
	"context"
	"fmt"

	"github.com/agentralabs/agentic-identity/pkg/aitime"
	"github.com/agentralabs/agentic-identity/pkg/identity"
	"github.com/agentralabs/agentic-identity/pkg/observability"
)

// RecordExperienceObserved wraps RecordExperience with a Monitor span,
// RED-metric sample, SLO observation, and audit-timeline entry. mon may be
// nil, in which case this behaves exactly like RecordExperience.
func RecordExperienceObserved(ctx context.Context, mon *observability.Monitor, anchor *identity.Anchor, eventType ExperienceType, contentHash string, intensity float32, previous *Event, clock aitime.Clock) (*Event, error) {
	seq := int64(0)
	if previous != nil {
		seq = int64(previous.SequenceNumber) + 1
	}
	finish := mon.Track(ctx, "continuity.record_experience", string(anchor.ID()), observability.EntryTypeAction,
		fmt.Sprintf("record experience %d for %s", seq, anchor.ID()),
		observability.ContinuityOperation(string(anchor.ID()), "", seq, "")...)

	event, err := RecordExperience(anchor, eventType, contentHash, intensity, previous, clock)
	finish(err)
	return event, err
}

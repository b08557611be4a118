package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
)

// Monitor binds a Provider to the SLI registry, SLO tracker, and audit
// timeline so a single call site at an engine boundary can emit a span, a
// RED-metric sample, an SLO observation, and an audit-timeline entry
// together, instead of a host having to wire each one separately.
type Monitor struct {
	Provider *Provider
	SLIs     *SLIRegistry
	SLOs     *SLOTracker
	Timeline *AuditTimeline
	RunID    string
	TenantID string
}

// NewMonitor builds a Monitor around an already-initialized Provider. SLIs,
// SLOs, and Timeline are created empty; callers register whatever SLI/SLO
// definitions their deployment cares about via SLIs.Register/SLOs.SetTarget.
func NewMonitor(provider *Provider, runID, tenantID string) *Monitor {
	return &Monitor{
		Provider: provider,
		SLIs:     NewSLIRegistry(),
		SLOs:     NewSLOTracker(),
		Timeline: NewAuditTimeline(),
		RunID:    runID,
		TenantID: tenantID,
	}
}

// Track starts a span + RED-metric sample for operation via the underlying
// Provider and returns a finish function. Calling finish additionally
// records an SLO observation (latency + success) and an audit-timeline
// entry summarizing the outcome, so a single engine call produces all four
// signals. entryType classifies the audit-timeline entry (EntryTypeAction,
// EntryTypeDecision, ...); actor is typically the identity performing the
// operation.
func (m *Monitor) Track(ctx context.Context, operation, actor string, entryType TimelineEntryType, summary string, attrs ...attribute.KeyValue) func(error) {
	if m == nil || m.Provider == nil {
		return func(error) {}
	}
	start := time.Now()
	ctx, finishSpan := m.Provider.TrackOperation(ctx, operation, attrs...)

	return func(err error) {
		finishSpan(err)

		if m.SLOs != nil {
			m.SLOs.Record(SLOObservation{
				Operation: operation,
				Latency:   time.Since(start),
				Success:   err == nil,
			})
		}

		if m.Timeline != nil {
			details := map[string]interface{}{"operation": operation}
			if err != nil {
				details["error"] = err.Error()
			}
			_ = m.Timeline.Record(TimelineEntry{
				EntryType: entryType,
				RunID:     m.RunID,
				TenantID:  m.TenantID,
				Actor:     actor,
				Summary:   summary,
				Details:   details,
			})
		}
	}
}

// Package observability provides OpenTelemetry tracing and metrics for the
// agentic identity engines and the hosts that embed them.
//
// # Tracing
//
// Initialize the provider at application startup:
//
//	p, err := observability.New(ctx, &observability.Config{
//		ServiceName:  "identity-daemon",
//		OTLPEndpoint: "otel-collector:4317",
//		SampleRate:   0.1, // 10% sampling in production
//	})
//	defer p.Shutdown(ctx)
//
// Create spans manually:
//
//	ctx, span := p.StartSpan(ctx, "trust.evaluate")
//	defer span.End()
//
// Or track a full operation, including the RED metrics, in one call:
//
//	ctx, finish := p.TrackOperation(ctx, "spawn.create", observability.SpawnOperation(parentID, childID, "create", depth)...)
//	defer finish(err)
//
// # Metrics
//
// RED (Rate, Errors, Duration) metrics are recorded automatically by
// TrackOperation, or individually via RecordRequest/RecordError/RecordDuration.
package observability

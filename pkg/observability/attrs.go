// Package observability provides identity-domain instrumentation helpers.
package observability

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Identity-domain semantic convention attributes.
var (
	// Identity attributes
	AttrIdentityID   = attribute.Key("identity.id")
	AttrIdentityName = attribute.Key("identity.name")

	// Spawn/lineage attributes
	AttrSpawnID       = attribute.Key("identity.spawn.id")
	AttrSpawnDepth    = attribute.Key("identity.spawn.depth")
	AttrSpawnAction   = attribute.Key("identity.spawn.action")
	AttrSpawnParentID = attribute.Key("identity.spawn.parent_id")
	AttrSpawnActive   = attribute.Key("identity.spawn.active")

	// Continuity attributes
	AttrContinuityChainID  = attribute.Key("identity.continuity.chain_id")
	AttrContinuitySequence = attribute.Key("identity.continuity.sequence")
	AttrContinuityGapClass = attribute.Key("identity.continuity.gap_class")

	// Trust/decision attributes
	AttrTrustGrantID    = attribute.Key("identity.trust.grant_id")
	AttrTrustCapability = attribute.Key("identity.trust.capability")
	AttrTrustDecision   = attribute.Key("identity.trust.decision")
	AttrTrustLatencyMs  = attribute.Key("identity.trust.latency_ms")

	// Negative-capability attributes
	AttrNegProofID    = attribute.Key("identity.negative.proof_id")
	AttrNegReasonKind = attribute.Key("identity.negative.reason_kind")
	AttrNegCapability = attribute.Key("identity.negative.capability")
	AttrNegProofValid = attribute.Key("identity.negative.valid")

	// Crypto attributes
	AttrCryptoAlgorithm = attribute.Key("identity.crypto.algorithm")
	AttrCryptoOperation = attribute.Key("identity.crypto.operation")
	AttrCryptoKeyID     = attribute.Key("identity.crypto.key_id")
)

// SpawnOperation creates attributes for spawn/lineage operations.
func SpawnOperation(identityID, spawnID, action string, depth int64) []attribute.KeyValue {
	return []attribute.KeyValue{
		AttrIdentityID.String(identityID),
		AttrSpawnID.String(spawnID),
		AttrSpawnAction.String(action),
		AttrSpawnDepth.Int64(depth),
	}
}

// ContinuityOperation creates attributes for continuity-chain append/verify operations.
func ContinuityOperation(identityID, chainID string, sequence int64, gapClass string) []attribute.KeyValue {
	return []attribute.KeyValue{
		AttrIdentityID.String(identityID),
		AttrContinuityChainID.String(chainID),
		AttrContinuitySequence.Int64(sequence),
		AttrContinuityGapClass.String(gapClass),
	}
}

// TrustOperation creates attributes for trust-grant evaluation.
func TrustOperation(grantID, capability, decision string, latencyMs float64) []attribute.KeyValue {
	return []attribute.KeyValue{
		AttrTrustGrantID.String(grantID),
		AttrTrustCapability.String(capability),
		AttrTrustDecision.String(decision),
		AttrTrustLatencyMs.Float64(latencyMs),
	}
}

// NegativeCapabilityOperation creates attributes for negative-capability proof checks.
func NegativeCapabilityOperation(proofID, reasonKind, capability string, valid bool) []attribute.KeyValue {
	return []attribute.KeyValue{
		AttrNegProofID.String(proofID),
		AttrNegReasonKind.String(reasonKind),
		AttrNegCapability.String(capability),
		AttrNegProofValid.Bool(valid),
	}
}

// CryptoOperation creates attributes for cryptographic operations.
func CryptoOperation(algorithm, operation, keyID string) []attribute.KeyValue {
	return []attribute.KeyValue{
		AttrCryptoAlgorithm.String(algorithm),
		AttrCryptoOperation.String(operation),
		AttrCryptoKeyID.String(keyID),
	}
}

// SpanFromContext extracts the span from context.
func SpanFromContext(ctx context.Context) trace.Span {
	return trace.SpanFromContext(ctx)
}

// AddSpanEvent adds an event to the current span.
func AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	span := trace.SpanFromContext(ctx)
	span.AddEvent(name, trace.WithAttributes(attrs...))
}

// SetSpanStatus records err on the current span when err is non-nil. It
// does not change the span's status code.
func SetSpanStatus(ctx context.Context, err error) {
	span := trace.SpanFromContext(ctx)
	if err != nil {
		span.RecordError(err)
	}
}

package observability

import "github.com/google/uuid"

// CorrelationID mints a fresh, non-identity-bearing UUID for tying
// together spans/log lines/witness-challenge nonces/storage lock tokens
// across a single logical operation. Never used for aid_/arec_/... IDs —
// those are content-derived per spec.md §3; this is purely a correlation
// handle with no cryptographic meaning.
func CorrelationID() string {
	return uuid.NewString()
}

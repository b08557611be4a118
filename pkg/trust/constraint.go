package trust

import "github.com/agentralabs/agentic-identity/pkg/xerrors"

// Constraints bounds how and when a grant can be used: a validity window,
// a use count ceiling, optional geographic/IP restrictions enforced by the
// caller (this module only tracks them; it doesn't itself have access to a
// caller's network or geo context), and an optional custom CEL expression
// that EvaluateCustom evaluates.
type Constraints struct {
	NotBefore   *uint64     `json:"not_before,omitempty"`
	NotAfter    *uint64     `json:"not_after,omitempty"`
	MaxUses     *uint64     `json:"max_uses,omitempty"`
	Geographic  []string    `json:"geographic,omitempty"`
	IPAllowlist []string    `json:"ip_allowlist,omitempty"`
	// Custom holds a CEL expression evaluated by EvaluateCustom against
	// {now, current_uses, context}; empty means no custom constraint.
	// See cel_constraint.go.
	Custom string `json:"custom,omitempty"`
}

// Open builds an unconstrained grant window starting now.
func Open(now uint64) Constraints {
	return Constraints{NotBefore: &now}
}

// TimeBounded builds a grant window valid between notBefore and notAfter.
func TimeBounded(notBefore, notAfter uint64) Constraints {
	return Constraints{NotBefore: &notBefore, NotAfter: &notAfter}
}

// WithMaxUses attaches a use-count ceiling to otherwise-open constraints.
func (c Constraints) WithMaxUses(max uint64) Constraints {
	c.MaxUses = &max
	return c
}

// IsTimeValid reports whether now falls within the constraint's window.
func (c Constraints) IsTimeValid(now uint64) bool {
	if c.NotBefore != nil && now < *c.NotBefore {
		return false
	}
	if c.NotAfter != nil && now > *c.NotAfter {
		return false
	}
	return true
}

// IsWithinUses reports whether currentUses is still under the ceiling.
func (c Constraints) IsWithinUses(currentUses uint64) bool {
	return c.MaxUses == nil || currentUses < *c.MaxUses
}

// Validate returns a descriptive error for the first constraint violated,
// or nil if now/currentUses satisfy every constraint.
func (c Constraints) Validate(now, currentUses uint64) error {
	if c.NotBefore != nil && now < *c.NotBefore {
		return xerrors.New(xerrors.KindTrustNotYetValid, "trust.Constraints.Validate", "trust grant not yet valid")
	}
	if c.NotAfter != nil && now > *c.NotAfter {
		return xerrors.New(xerrors.KindTrustExpired, "trust.Constraints.Validate", "trust grant expired")
	}
	if c.MaxUses != nil && currentUses >= *c.MaxUses {
		return xerrors.New(xerrors.KindMaxUsesExceeded, "trust.Constraints.Validate", "trust grant max uses exceeded")
	}
	return nil
}

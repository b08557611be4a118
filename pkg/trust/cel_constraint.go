package trust

import (
	"fmt"

	"github.com/google/cel-go/cel"

	"github.com/agentralabs/agentic-identity/pkg/aitime"
	"github.com/agentralabs/agentic-identity/pkg/xerrors"
)

// customEnv is the CEL environment every Constraints.Custom expression is
// compiled against: now and current_uses are always available, alongside
// whatever the caller passes as custom context values.
func customEnv(contextKeys []string) (*cel.Env, error) {
	opts := []cel.EnvOption{
		cel.Variable("now", cel.UintType),
		cel.Variable("current_uses", cel.UintType),
		cel.Variable("context", cel.MapType(cel.StringType, cel.DynType)),
	}
	return cel.NewEnv(opts...)
}

// EvaluateCustom compiles and runs c.Custom (a CEL boolean expression) with
// now, current_uses, and an arbitrary context map bound as variables. An
// empty expression is vacuously true — most grants carry no custom
// constraint at all, matching spec.md's "custom" field being optional.
// This is the one place in the trust engine where capability-bearing
// policy logic beyond the structural checks in verify.go/chain.go runs;
// everything else stays CEL-free.
func (c Constraints) EvaluateCustom(now, currentUses uint64, context map[string]any) (bool, error) {
	if c.Custom == "" {
		return true, nil
	}
	const op = "trust.Constraints.EvaluateCustom"

	env, err := customEnv(nil)
	if err != nil {
		return false, xerrors.Wrap(xerrors.KindTrust, op, err)
	}
	ast, issues := env.Compile(c.Custom)
	if issues != nil && issues.Err() != nil {
		return false, xerrors.Wrap(xerrors.KindTrust, op, issues.Err())
	}
	program, err := env.Program(ast)
	if err != nil {
		return false, xerrors.Wrap(xerrors.KindTrust, op, err)
	}
	if context == nil {
		context = map[string]any{}
	}
	out, _, err := program.Eval(map[string]any{
		"now":          now,
		"current_uses": currentUses,
		"context":      context,
	})
	if err != nil {
		return false, xerrors.Wrap(xerrors.KindTrust, op, err)
	}
	valid, ok := out.Value().(bool)
	if !ok {
		return false, xerrors.New(xerrors.KindTrust, op, fmt.Sprintf("custom constraint did not evaluate to bool: %v", out.Value()))
	}
	return valid, nil
}

// VerifyGrantWithContext extends VerifyGrant with the grant's CEL custom
// constraint (if any), folding the result into IsValid. Hosts that never
// set Constraints.Custom get identical behavior to VerifyGrant.
func VerifyGrantWithContext(grant *Grant, requestedCapability string, currentUses uint64, revocations []Revocation, custom map[string]any, clock aitime.Clock) (Verification, error) {
	now := clock()
	v := VerifyGrant(grant, requestedCapability, currentUses, revocations, aitime.Fixed(now))

	customValid := true
	if grant.Constraints != nil && grant.Constraints.Custom != "" {
		ok, err := grant.Constraints.EvaluateCustom(now, currentUses, custom)
		if err != nil {
			return Verification{}, err
		}
		customValid = ok
	}
	v.IsValid = v.IsValid && customValid
	return v, nil
}

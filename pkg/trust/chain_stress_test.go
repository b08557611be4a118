package trust_test

import (
	"fmt"
	"testing"

	"github.com/agentralabs/agentic-identity/pkg/aitime"
	"github.com/agentralabs/agentic-identity/pkg/identity"
	"github.com/agentralabs/agentic-identity/pkg/trust"
)

// Builds a 50-hop delegation chain and verifies the terminal capability
// grant holds across the whole chain.
func TestStressTrustChainDepth50(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping stress test in short mode")
	}
	const chainDepth = 50

	anchors := make([]*identity.Anchor, chainDepth+1)
	for i := range anchors {
		name := fmt.Sprintf("node-%d", i)
		a, err := identity.NewAnchor(&name, aitime.System)
		if err != nil {
			t.Fatalf("new anchor %d: %v", i, err)
		}
		anchors[i] = a
	}

	grants := make([]*trust.Grant, 0, chainDepth)

	root, err := trust.NewBuilder(anchors[0].ID(), anchors[0].Keys(), anchors[1].ID(), anchors[1].PublicKeyBase64(),
		[]trust.Capability{{URI: "read:*"}}).
		AllowDelegation(chainDepth).
		Sign(aitime.System)
	if err != nil {
		t.Fatalf("root grant: %v", err)
	}
	grants = append(grants, root)

	for i := 1; i < chainDepth; i++ {
		parent := grants[len(grants)-1]
		g, err := trust.NewBuilder(anchors[i].ID(), anchors[i].Keys(), anchors[i+1].ID(), anchors[i+1].PublicKeyBase64(),
			[]trust.Capability{{URI: "read:*"}}).
			AllowDelegation(chainDepth).
			AsDelegationOf(parent.ID, parent.DelegationDepth).
			Sign(aitime.System)
		if err != nil {
			t.Fatalf("delegation grant %d: %v", i, err)
		}
		grants = append(grants, g)
	}

	if len(grants) != chainDepth {
		t.Fatalf("expected %d grants, got %d", chainDepth, len(grants))
	}

	verification, err := trust.VerifyChain(grants, "read:docs", nil, aitime.System)
	if err != nil {
		t.Fatalf("chain verification: %v", err)
	}
	if !verification.IsValid {
		t.Fatalf("trust chain of depth %d should be valid", chainDepth)
	}
	if !verification.SignatureValid {
		t.Fatal("expected signature valid")
	}
	if !verification.CapabilityGranted {
		t.Fatal("expected capability granted")
	}
	if len(verification.TrustChain) != chainDepth {
		t.Fatalf("expected trust chain length %d, got %d", chainDepth, len(verification.TrustChain))
	}
}

// A 50-hop chain delegating a specific capability honors narrower coverage
// at verification time: a matching capability passes, a non-matching one
// fails, even though every individual link's own signature/time checks are
// satisfied.
func TestStressTrustChainDepth50SpecificCapability(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping stress test in short mode")
	}
	const chainDepth = 50

	anchors := make([]*identity.Anchor, chainDepth+1)
	for i := range anchors {
		name := fmt.Sprintf("cap-node-%d", i)
		a, err := identity.NewAnchor(&name, aitime.System)
		if err != nil {
			t.Fatalf("new anchor %d: %v", i, err)
		}
		anchors[i] = a
	}

	grants := make([]*trust.Grant, 0, chainDepth)
	root, err := trust.NewBuilder(anchors[0].ID(), anchors[0].Keys(), anchors[1].ID(), anchors[1].PublicKeyBase64(),
		[]trust.Capability{{URI: "execute:deploy:*"}}).
		AllowDelegation(chainDepth).
		Sign(aitime.System)
	if err != nil {
		t.Fatalf("root grant: %v", err)
	}
	grants = append(grants, root)

	for i := 1; i < chainDepth; i++ {
		parent := grants[len(grants)-1]
		g, err := trust.NewBuilder(anchors[i].ID(), anchors[i].Keys(), anchors[i+1].ID(), anchors[i+1].PublicKeyBase64(),
			[]trust.Capability{{URI: "execute:deploy:*"}}).
			AllowDelegation(chainDepth).
			AsDelegationOf(parent.ID, parent.DelegationDepth).
			Sign(aitime.System)
		if err != nil {
			t.Fatalf("delegation grant %d: %v", i, err)
		}
		grants = append(grants, g)
	}

	matching, err := trust.VerifyChain(grants, "execute:deploy:production", nil, aitime.System)
	if err != nil {
		t.Fatalf("chain verification: %v", err)
	}
	if !matching.IsValid {
		t.Fatal("matching capability should be valid")
	}

	nonMatching, err := trust.VerifyChain(grants, "read:calendar", nil, aitime.System)
	if err != nil {
		t.Fatalf("chain verification: %v", err)
	}
	if nonMatching.IsValid {
		t.Fatal("non-matching capability should not be valid")
	}
}

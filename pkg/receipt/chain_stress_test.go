package receipt_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/agentralabs/agentic-identity/pkg/aitime"
	"github.com/agentralabs/agentic-identity/pkg/identity"
	"github.com/agentralabs/agentic-identity/pkg/receipt"
)

// Builds a chain of 1000 receipts and verifies it links and cryptographically
// verifies within a reasonable time budget.
func TestStressReceiptChain1000(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping stress test in short mode")
	}
	name := "chain-agent"
	anchor, err := identity.NewAnchor(&name, aitime.System)
	if err != nil {
		t.Fatalf("new anchor: %v", err)
	}

	start := time.Now()

	chain := make([]*receipt.ActionReceipt, 0, 1000)
	first, err := receipt.NewBuilder(anchor.ID(), receipt.ActionObservation, receipt.NewContent("chain receipt 0")).
		Sign(anchor.Keys(), aitime.System)
	if err != nil {
		t.Fatalf("sign first receipt: %v", err)
	}
	chain = append(chain, first)

	for i := 1; i < 1000; i++ {
		prevID := chain[len(chain)-1].ID
		r, err := receipt.NewBuilder(anchor.ID(), receipt.ActionDecision, receipt.NewContent(fmt.Sprintf("chain receipt %d", i))).
			ChainTo(prevID).
			Sign(anchor.Keys(), aitime.System)
		if err != nil {
			t.Fatalf("sign receipt %d: %v", i, err)
		}
		chain = append(chain, r)
	}

	buildElapsed := time.Since(start)
	if len(chain) != 1000 {
		t.Fatalf("expected 1000 receipts, got %d", len(chain))
	}

	for i := 1; i < len(chain); i++ {
		if chain[i].PreviousReceipt == nil || *chain[i].PreviousReceipt != chain[i-1].ID {
			t.Fatalf("receipt %d should chain to receipt %d", i, i-1)
		}
	}

	verifyStart := time.Now()
	if err := receipt.VerifyChain(chain, aitime.System); err != nil {
		t.Fatalf("chain of 1000 receipts should verify: %v", err)
	}
	verifyElapsed := time.Since(verifyStart)

	totalElapsed := time.Since(start)
	if totalElapsed > 60*time.Second {
		t.Fatalf("1000-receipt chain should complete in under 60s, took %v", totalElapsed)
	}

	t.Logf("receipt chain stress: build=%v verify=%v total=%v", buildElapsed, verifyElapsed, totalElapsed)
}

// Every receipt ID in a 1000-long chain must be unique.
func TestStressReceiptChain1000UniqueIDs(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping stress test in short mode")
	}
	anchor, err := identity.NewAnchor(nil, aitime.System)
	if err != nil {
		t.Fatalf("new anchor: %v", err)
	}

	seen := make(map[receipt.ID]struct{}, 1000)
	chain := make([]*receipt.ActionReceipt, 0, 1000)

	first, err := receipt.NewBuilder(anchor.ID(), receipt.ActionDecision, receipt.NewContent("first")).
		Sign(anchor.Keys(), aitime.System)
	if err != nil {
		t.Fatalf("sign first receipt: %v", err)
	}
	seen[first.ID] = struct{}{}
	chain = append(chain, first)

	for i := 1; i < 1000; i++ {
		prevID := chain[len(chain)-1].ID
		r, err := receipt.NewBuilder(anchor.ID(), receipt.ActionDecision, receipt.NewContent(fmt.Sprintf("receipt %d", i))).
			ChainTo(prevID).
			Sign(anchor.Keys(), aitime.System)
		if err != nil {
			t.Fatalf("sign receipt %d: %v", i, err)
		}
		if _, dup := seen[r.ID]; dup {
			t.Fatalf("duplicate receipt ID at position %d", i)
		}
		seen[r.ID] = struct{}{}
		chain = append(chain, r)
	}

	if len(seen) != 1000 {
		t.Fatalf("expected 1000 unique ids, got %d", len(seen))
	}
}

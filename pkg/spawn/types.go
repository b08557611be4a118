// Package spawn implements bounded-authority child identities: an anchor
// can spawn another anchor with authority that is a subset of its own
// ceiling, track lineage back to a root, and cascade-terminate a subtree.
package spawn

import (
	"github.com/agentralabs/agentic-identity/pkg/identity"
	"github.com/agentralabs/agentic-identity/pkg/trust"
)

// ID is an "aspawn_"-prefixed spawn record identifier.
type ID string

// Type classifies why a child was spawned.
type Type struct{ tag string }

var (
	TypeWorker     = Type{"worker"}
	TypeDelegate   = Type{"delegate"}
	TypeClone      = Type{"clone"}
	TypeSpecialist = Type{"specialist"}
)

// CustomType builds an application-defined spawn type.
func CustomType(tag string) Type { return Type{tag} }

func (t Type) Tag() string { return t.tag }

// TaskStatusFunc reports whether a given task has completed, resolving a
// Lifetime of TaskCompletion; without one, IsExpired reports false for
// that kind. ParentStatusFunc reports whether a parent identity has
// terminated. IsExpired accepts one but never calls it (a Lifetime does not
// hold the parent's ID), so ParentTermination always reports false, matching
// the original engine's behavior when it has no side-channel into parent
// state.
type TaskStatusFunc func(taskID string) bool
type ParentStatusFunc func(parentID identity.ID) bool

// Lifetime bounds how long a spawned child's authority remains valid.
type Lifetime struct {
	kind      string
	seconds   uint64
	timestamp uint64
	taskID    string
}

func Indefinite() Lifetime                   { return Lifetime{kind: "indefinite"} }
func ForDuration(seconds uint64) Lifetime     { return Lifetime{kind: "duration", seconds: seconds} }
func Until(timestamp uint64) Lifetime        { return Lifetime{kind: "until", timestamp: timestamp} }
func UntilTaskCompletion(taskID string) Lifetime { return Lifetime{kind: "task_completion", taskID: taskID} }
func UntilParentTermination() Lifetime       { return Lifetime{kind: "parent_termination"} }

func (l Lifetime) Tag() string { return l.kind }

// IsExpired reports whether the lifetime has elapsed, given the spawn
// timestamp and the current time (both microseconds). taskDone resolves
// the TaskCompletion variant; with a nil taskDone that variant reports
// not-expired. parentTerminated is not consulted: ParentTermination always
// reports not-expired.
func (l Lifetime) IsExpired(spawnTimestamp, now uint64, taskDone TaskStatusFunc, parentTerminated ParentStatusFunc) bool {
	switch l.kind {
	case "indefinite":
		return false
	case "duration":
		return now > spawnTimestamp+l.seconds*1_000_000
	case "until":
		return now > l.timestamp
	case "task_completion":
		if taskDone == nil {
			return false
		}
		return taskDone(l.taskID)
	case "parent_termination":
		return false // resolved externally by the caller checking the parent record directly
	default:
		return false
	}
}

// Constraints bounds how a single identity may spawn children.
type Constraints struct {
	MaxSpawnDepth   *uint32  `json:"max_spawn_depth,omitempty"`
	MaxChildren     *uint32  `json:"max_children,omitempty"`
	MaxDescendants  *uint64  `json:"max_descendants,omitempty"`
	CanSpawn        bool     `json:"can_spawn"`
	AuthorityDecay  *float32 `json:"authority_decay,omitempty"`
}

// DefaultConstraints mirrors the original's defaults: a spawn depth ceiling
// of 10, spawning allowed, no other limits.
func DefaultConstraints() Constraints {
	depth := uint32(10)
	return Constraints{MaxSpawnDepth: &depth, CanSpawn: true}
}

// Info is the subset of a spawn record a parent needs on hand to check
// whether it is itself eligible to spawn further (its own depth, ceiling,
// lifetime, and constraints as a *child*).
type Info struct {
	SpawnID       ID           `json:"spawn_id"`
	ParentID      identity.ID  `json:"parent_id"`
	SpawnType     Type         `json:"spawn_type"`
	SpawnTimestamp uint64      `json:"spawn_timestamp"`
	AuthorityCeiling []trust.Capability `json:"authority_ceiling"`
	Lifetime      Lifetime     `json:"lifetime"`
	Constraints   Constraints  `json:"constraints"`
}

// Record documents one spawn: who spawned whom, under what bounded
// authority, and its current (possibly terminated) status.
type Record struct {
	ID                   ID           `json:"id"`
	ParentID             identity.ID  `json:"parent_id"`
	ParentKey            string       `json:"parent_key"`
	ChildID              identity.ID  `json:"child_id"`
	ChildKey             string       `json:"child_key"`
	SpawnTimestamp       uint64       `json:"spawn_timestamp"`
	SpawnType            Type         `json:"spawn_type"`
	SpawnPurpose         string       `json:"spawn_purpose"`
	SpawnReceiptID       string       `json:"spawn_receipt_id"`
	AuthorityGranted     []trust.Capability `json:"authority_granted"`
	AuthorityCeiling     []trust.Capability `json:"authority_ceiling"`
	Lifetime             Lifetime     `json:"lifetime"`
	Constraints          Constraints  `json:"constraints"`
	ParentSignature      string       `json:"parent_signature"`
	ChildAcknowledgment  *string      `json:"child_acknowledgment,omitempty"`
	Terminated           bool         `json:"terminated"`
	TerminatedAt         *uint64      `json:"terminated_at,omitempty"`
	TerminationReason    *string      `json:"termination_reason,omitempty"`
}

// Lineage summarizes an identity's position in a spawn tree.
type Lineage struct {
	Identity      identity.ID   `json:"identity"`
	RootAncestor  identity.ID   `json:"root_ancestor"`
	ParentChain   []identity.ID `json:"parent_chain"`
	SpawnDepth    int           `json:"spawn_depth"`
	SiblingIndex  int           `json:"sibling_index"`
	TotalSiblings int           `json:"total_siblings"`
}

// LineageVerification is the verdict returned by VerifyLineage.
type LineageVerification struct {
	Identity            identity.ID        `json:"identity"`
	LineageValid        bool               `json:"lineage_valid"`
	AllAncestorsActive  bool               `json:"all_ancestors_active"`
	EffectiveAuthority  []trust.Capability `json:"effective_authority"`
	SpawnDepth          int                `json:"spawn_depth"`
	RevokedAncestor     *identity.ID       `json:"revoked_ancestor,omitempty"`
	IsValid             bool               `json:"is_valid"`
	VerifiedAt          uint64             `json:"verified_at"`
	Errors              []string           `json:"errors,omitempty"`
}

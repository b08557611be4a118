// Package receipt implements signed, chainable proof that an identity
// anchor took an action: what was done, when, under what prior context,
// and optionally co-signed by one or more witnesses.
package receipt

// ActionType classifies the kind of action a receipt documents.
type ActionType struct {
	tag string
}

// Well-known action types. Custom(tag) constructs an arbitrary one; its tag
// flows straight into the receipt hash so two receipts with different
// custom tags never collide.
var (
	ActionDecision          = ActionType{"decision"}
	ActionObservation       = ActionType{"observation"}
	ActionMutation          = ActionType{"mutation"}
	ActionDelegation        = ActionType{"delegation"}
	ActionRevocation        = ActionType{"revocation"}
	ActionIdentityOperation = ActionType{"identity_operation"}
)

// CustomActionType builds an application-defined action type.
func CustomActionType(tag string) ActionType { return ActionType{tag} }

// Tag returns the stable string used in the receipt's signed preimage.
func (t ActionType) Tag() string { return t.tag }

func (t ActionType) String() string { return t.tag }

// Content is the body of an action: a human-readable description, optional
// structured data, and references to related resources (other receipt IDs,
// external URIs).
type Content struct {
	Description string      `json:"description"`
	Data        interface{} `json:"data,omitempty"`
	References  []string    `json:"references,omitempty"`
}

// NewContent builds a content value with only a description.
func NewContent(description string) Content {
	return Content{Description: description, References: []string{}}
}

// ContentWithData builds a content value carrying structured data alongside
// its description.
func ContentWithData(description string, data interface{}) Content {
	return Content{Description: description, Data: data, References: []string{}}
}

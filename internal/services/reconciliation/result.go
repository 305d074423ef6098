package reconciliation

// Outcome tags why a webhook did or did not mutate state. Unknown references
// and unrecognized codes are deliberate no-ops: the webhook is still
// acknowledged so the sender does not retry a permanently-unresolvable event.
type Outcome string

const (
	OutcomeApplied          Outcome = "applied"
	OutcomeUnknownReference Outcome = "unknown_reference"
	OutcomeUnrecognizedCode Outcome = "unrecognized_code"
)

// Result describes what a reconciliation pass did
type Result struct {
	Outcome      Outcome
	ItemsUpdated int
}

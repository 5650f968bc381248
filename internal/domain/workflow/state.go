package workflow

// State represents a workflow state in the offer lifecycle
type State string

const (
	StateDraft           State = "DRAFT"
	StatePendingApproval State = "PENDING_APPROVAL"
	StateApproved        State = "APPROVED"
	StateRejected        State = "REJECTED"
	StateLetterGenerated State = "LETTER_GENERATED"
	StateAccepted        State = "ACCEPTED"
	StateDeclined        State = "DECLINED"
	StateExpired         State = "EXPIRED"
)

var validStates = map[State]bool{
	StateDraft:           true,
	StatePendingApproval: true,
	StateApproved:        true,
	StateRejected:        true,
	StateLetterGenerated: true,
	StateAccepted:        true,
	StateDeclined:        true,
	StateExpired:         true,
}

var terminalStates = map[State]bool{
	StateAccepted: true,
	StateDeclined: true,
	StateExpired:  true,
}

// IsTerminal returns true if the state is a terminal state (no further transitions allowed)
func (s State) IsTerminal() bool {
	return terminalStates[s]
}

// String returns the string representation of the state
func (s State) String() string {
	return string(s)
}

// IsValid returns true if the state is a valid workflow state
func (s State) IsValid() bool {
	return validStates[s]
}

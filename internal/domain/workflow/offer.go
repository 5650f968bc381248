package workflow

// offerDefinition is the shared transition table for the offer lifecycle:
//
//	DRAFT/REJECTED --SUBMIT--> PENDING_APPROVAL
//	PENDING_APPROVAL --APPROVE--> APPROVED, --REJECT--> REJECTED
//	APPROVED --MARK_LETTER_GENERATED--> LETTER_GENERATED
//	PENDING_APPROVAL/LETTER_GENERATED --ACCEPT/DECLINE/COUNTER--> resolution
//	every non-terminal state --EXPIRE--> EXPIRED
var offerDefinition = newOfferDefinition()

func newOfferDefinition() *Definition {
	def := NewDefinition()

	def.From(StateDraft).
		Permit(TriggerSubmit, StatePendingApproval).
		Permit(TriggerExpire, StateExpired)

	def.From(StateRejected).
		Permit(TriggerSubmit, StatePendingApproval).
		Permit(TriggerExpire, StateExpired)

	def.From(StatePendingApproval).
		Permit(TriggerApprove, StateApproved).
		Permit(TriggerReject, StateRejected).
		Permit(TriggerAccept, StateAccepted).
		Permit(TriggerDecline, StateDeclined).
		Permit(TriggerCounter, StatePendingApproval).
		Permit(TriggerExpire, StateExpired)

	def.From(StateApproved).
		Permit(TriggerMarkLetterGenerated, StateLetterGenerated).
		Permit(TriggerExpire, StateExpired)

	def.From(StateLetterGenerated).
		Permit(TriggerAccept, StateAccepted).
		Permit(TriggerDecline, StateDeclined).
		Permit(TriggerCounter, StatePendingApproval).
		Permit(TriggerExpire, StateExpired)

	return def
}

// NewOfferMachine returns an offer lifecycle machine positioned at initial
func NewOfferMachine(initial State) *Machine {
	return offerDefinition.Machine(initial)
}

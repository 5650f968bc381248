package workflow

import (
	"context"
	"errors"
	"testing"
)

func TestOfferMachine_Transitions(t *testing.T) {
	tests := []struct {
		name    string
		from    State
		trigger Trigger
		want    State
		wantErr bool
	}{
		{"submit draft", StateDraft, TriggerSubmit, StatePendingApproval, false},
		{"resubmit rejected", StateRejected, TriggerSubmit, StatePendingApproval, false},
		{"approve pending", StatePendingApproval, TriggerApprove, StateApproved, false},
		{"reject pending", StatePendingApproval, TriggerReject, StateRejected, false},
		{"mark letter generated", StateApproved, TriggerMarkLetterGenerated, StateLetterGenerated, false},
		{"accept after letter", StateLetterGenerated, TriggerAccept, StateAccepted, false},
		{"decline after letter", StateLetterGenerated, TriggerDecline, StateDeclined, false},
		{"counter after letter", StateLetterGenerated, TriggerCounter, StatePendingApproval, false},
		{"accept while pending", StatePendingApproval, TriggerAccept, StateAccepted, false},
		{"counter while pending", StatePendingApproval, TriggerCounter, StatePendingApproval, false},
		{"expire draft", StateDraft, TriggerExpire, StateExpired, false},
		{"expire pending", StatePendingApproval, TriggerExpire, StateExpired, false},
		{"expire approved", StateApproved, TriggerExpire, StateExpired, false},
		{"expire letter generated", StateLetterGenerated, TriggerExpire, StateExpired, false},
		{"submit from approved", StateApproved, TriggerSubmit, StateApproved, true},
		{"approve from draft", StateDraft, TriggerApprove, StateDraft, true},
		{"letter before approval", StatePendingApproval, TriggerMarkLetterGenerated, StatePendingApproval, true},
		{"accept from draft", StateDraft, TriggerAccept, StateDraft, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			machine := NewOfferMachine(tt.from)

			err := machine.Fire(context.Background(), tt.trigger)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Fire(%s) error = %v, wantErr %v", tt.trigger, err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, ErrInvalidTransition) {
				t.Errorf("Fire(%s) error = %v, want ErrInvalidTransition", tt.trigger, err)
			}
			if machine.State() != tt.want {
				t.Errorf("State() = %v, want %v", machine.State(), tt.want)
			}
		})
	}
}

func TestOfferMachine_TerminalStatesHaveNoTransitions(t *testing.T) {
	triggers := []Trigger{
		TriggerSubmit, TriggerApprove, TriggerReject, TriggerMarkLetterGenerated,
		TriggerAccept, TriggerDecline, TriggerCounter, TriggerExpire,
	}

	for _, state := range []State{StateAccepted, StateDeclined, StateExpired} {
		machine := NewOfferMachine(state)
		for _, trigger := range triggers {
			if machine.CanFire(trigger) {
				t.Errorf("CanFire(%s) from terminal state %s should be false", trigger, state)
			}
		}
	}
}

func TestOfferMachine_IndependentInstances(t *testing.T) {
	first := NewOfferMachine(StateDraft)
	second := NewOfferMachine(StateDraft)

	if err := first.Fire(context.Background(), TriggerSubmit); err != nil {
		t.Fatalf("Fire() error = %v", err)
	}

	if second.State() != StateDraft {
		t.Errorf("second machine state = %v, want %v", second.State(), StateDraft)
	}
}

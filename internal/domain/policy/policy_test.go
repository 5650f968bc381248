package policy

import "testing"

func TestCanPerform(t *testing.T) {
	tests := []struct {
		name string
		role string
		op   Operation
		want bool
	}{
		{"recruiter creates offer", RoleRecruiter, OpOfferCreate, true},
		{"hiring manager creates offer", RoleHiringManager, OpOfferCreate, true},
		{"hr cannot create offer", RoleHR, OpOfferCreate, false},
		{"hr approves offer", RoleHR, OpOfferApprove, true},
		{"finance approves offer", RoleFinance, OpOfferApprove, true},
		{"leadership approves offer", RoleLeadership, OpOfferApprove, true},
		{"recruiter cannot approve offer", RoleRecruiter, OpOfferApprove, false},
		{"only hiring manager generates letter", RoleRecruiter, OpOfferGenerateLetter, false},
		{"hiring manager generates letter", RoleHiringManager, OpOfferGenerateLetter, true},
		{"any authenticated role reads offers", RoleFinance, OpOfferRead, true},
		{"hiring manager assigns recruiter", RoleHiringManager, OpRequisitionAssign, true},
		{"recruiter cannot assign recruiter", RoleRecruiter, OpRequisitionAssign, false},
		{"hiring manager deletes requisition", RoleHiringManager, OpRequisitionDelete, true},
		{"admin bypasses every gate", RoleAdmin, OpRequisitionDelete, true},
		{"admin bypasses unknown operation", RoleAdmin, Operation("unknown.op"), true},
		{"empty role is always denied", "", OpOfferRead, false},
		{"unknown operation denied", RoleHR, Operation("unknown.op"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanPerform(tt.role, tt.op); got != tt.want {
				t.Errorf("CanPerform(%q, %q) = %v, want %v", tt.role, tt.op, got, tt.want)
			}
		})
	}
}

// Package policy centralizes role authorization decisions so they are uniform
// across every entry point, independent of transport.
package policy

// Operation identifies a role-gated entry point
type Operation string

const (
	OpOfferCreate          Operation = "offer.create"
	OpOfferSubmit          Operation = "offer.submit"
	OpOfferApprove         Operation = "offer.approve"
	OpOfferGenerateLetter  Operation = "offer.generate_letter"
	OpOfferCandidateAction Operation = "offer.candidate_action"
	OpOfferRead            Operation = "offer.read"
	OpRequisitionCreate    Operation = "requisition.create"
	OpRequisitionRead      Operation = "requisition.read"
	OpRequisitionUpdate    Operation = "requisition.update"
	OpRequisitionApprove   Operation = "requisition.approve"
	OpRequisitionAssign    Operation = "requisition.assign"
	OpRequisitionDelete    Operation = "requisition.delete"
)

// Known role names
const (
	RoleAdmin         = "admin"
	RoleRecruiter     = "recruiter"
	RoleHiringManager = "hiring_manager"
	RoleHR            = "hr"
	RoleFinance       = "finance"
	RoleLeadership    = "leadership"
)

var allowedRoles = map[Operation][]string{
	OpOfferCreate:          {RoleRecruiter, RoleHiringManager},
	OpOfferSubmit:          {RoleRecruiter, RoleHiringManager},
	OpOfferApprove:         {RoleHR, RoleFinance, RoleLeadership},
	OpOfferGenerateLetter:  {RoleHiringManager},
	OpOfferCandidateAction: {RoleRecruiter, RoleHiringManager},
	OpOfferRead:            nil, // any authenticated role
	OpRequisitionCreate:    {RoleRecruiter, RoleHiringManager},
	OpRequisitionRead:      nil,
	OpRequisitionUpdate:    nil,
	OpRequisitionApprove:   nil,
	OpRequisitionAssign:    {RoleHiringManager},
	OpRequisitionDelete:    {RoleHiringManager},
}

// CanPerform reports whether a role may invoke an operation. Admin may invoke
// everything; a nil role list means any authenticated caller.
func CanPerform(role string, op Operation) bool {
	if role == "" {
		return false
	}
	if role == RoleAdmin {
		return true
	}

	roles, known := allowedRoles[op]
	if !known {
		return false
	}
	if roles == nil {
		return true
	}
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

package workers

// InviteRejection is why an invite was refused. The zero value means the
// invite was sent.
type InviteRejection int

const (
	InviteOK InviteRejection = iota
	InviteCompanyNotFound
	InviteMemberNotFound
	InviteAlreadyWorking
	InviteAlreadyInvited
)

var inviteRejectionNames = map[InviteRejection]string{
	InviteOK:              "ok",
	InviteCompanyNotFound: "company_not_found",
	InviteMemberNotFound:  "member_not_found",
	InviteAlreadyWorking:  "worker_already_at_company",
	InviteAlreadyInvited:  "member_already_invited",
}

func (r InviteRejection) String() string {
	if s, ok := inviteRejectionNames[r]; ok {
		return s
	}
	return "unknown"
}

// AnswerFailure is why answering an invite failed.
type AnswerFailure int

const (
	AnswerOK AnswerFailure = iota
	AnswerInviteNotFound
	AnswerMemberWasNotInvited
)

var answerFailureNames = map[AnswerFailure]string{
	AnswerOK:                  "ok",
	AnswerInviteNotFound:      "invite_not_found",
	AnswerMemberWasNotInvited: "member_was_not_invited",
}

func (f AnswerFailure) String() string {
	if s, ok := answerFailureNames[f]; ok {
		return s
	}
	return "unknown"
}

// PayRejection is why a wage transfer was refused.
type PayRejection int

const (
	PayOK PayRejection = iota
	PayCompanyNotFound
	PayWorkerNotFound
	PayWorkerNotAtCompany
	PayInvalidAmount
)

var payRejectionNames = map[PayRejection]string{
	PayOK:                 "ok",
	PayCompanyNotFound:    "company_not_found",
	PayWorkerNotFound:     "worker_not_found",
	PayWorkerNotAtCompany: "worker_not_at_company",
	PayInvalidAmount:      "invalid_amount",
}

func (r PayRejection) String() string {
	if s, ok := payRejectionNames[r]; ok {
		return s
	}
	return "unknown"
}

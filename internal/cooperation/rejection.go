package cooperation

// RequestRejection is why a cooperation request was refused. The zero
// value means the request was accepted.
type RequestRejection int

const (
	RequestOK RequestRejection = iota
	RequestPlanNotFound
	RequestCooperationNotFound
	RequestPlanInactive
	RequestPlanHasCooperation
	RequestPlanAlreadyRequesting
	RequestPlanIsPublicService
	RequestRequesterIsNotPlanner
)

var requestRejectionNames = map[RequestRejection]string{
	RequestOK:                    "ok",
	RequestPlanNotFound:          "plan_not_found",
	RequestCooperationNotFound:   "cooperation_not_found",
	RequestPlanInactive:          "plan_inactive",
	RequestPlanHasCooperation:    "plan_has_cooperation",
	RequestPlanAlreadyRequesting: "plan_is_already_requesting_cooperation",
	RequestPlanIsPublicService:   "plan_is_public_service",
	RequestRequesterIsNotPlanner: "requester_is_not_planner",
}

func (r RequestRejection) String() string {
	if s, ok := requestRejectionNames[r]; ok {
		return s
	}
	return "unknown"
}

// AcceptRejection is why accepting a request was refused.
type AcceptRejection int

const (
	AcceptOK AcceptRejection = iota
	AcceptPlanNotFound
	AcceptCooperationNotFound
	AcceptPlanInactive
	AcceptPlanHasCooperation
	AcceptPlanIsPublicService
	AcceptNotRequested
	AcceptRequesterIsNotCoordinator
)

var acceptRejectionNames = map[AcceptRejection]string{
	AcceptOK:                        "ok",
	AcceptPlanNotFound:              "plan_not_found",
	AcceptCooperationNotFound:       "cooperation_not_found",
	AcceptPlanInactive:              "plan_inactive",
	AcceptPlanHasCooperation:        "plan_has_cooperation",
	AcceptPlanIsPublicService:       "plan_is_public_service",
	AcceptNotRequested:              "cooperation_was_not_requested",
	AcceptRequesterIsNotCoordinator: "requester_is_not_coordinator",
}

func (r AcceptRejection) String() string {
	if s, ok := acceptRejectionNames[r]; ok {
		return s
	}
	return "unknown"
}

// DenyRejection is why denying a request was refused.
type DenyRejection int

const (
	DenyOK DenyRejection = iota
	DenyPlanNotFound
	DenyCooperationNotFound
	DenyNotRequested
	DenyRequesterIsNotCoordinator
)

var denyRejectionNames = map[DenyRejection]string{
	DenyOK:                        "ok",
	DenyPlanNotFound:              "plan_not_found",
	DenyCooperationNotFound:       "cooperation_not_found",
	DenyNotRequested:              "cooperation_was_not_requested",
	DenyRequesterIsNotCoordinator: "requester_is_not_coordinator",
}

func (r DenyRejection) String() string {
	if s, ok := denyRejectionNames[r]; ok {
		return s
	}
	return "unknown"
}

// EndRejection is why ending a membership was refused.
type EndRejection int

const (
	EndOK EndRejection = iota
	EndPlanNotFound
	EndCooperationNotFound
	EndPlanNotInCooperation
	EndRequesterUnauthorized
)

var endRejectionNames = map[EndRejection]string{
	EndOK:                    "ok",
	EndPlanNotFound:          "plan_not_found",
	EndCooperationNotFound:   "cooperation_not_found",
	EndPlanNotInCooperation:  "plan_has_no_cooperation",
	EndRequesterUnauthorized: "requester_is_unauthorized",
}

func (r EndRejection) String() string {
	if s, ok := endRejectionNames[r]; ok {
		return s
	}
	return "unknown"
}

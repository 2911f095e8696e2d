package tool

// OutcomeKind classifies a completed call before the result is flattened
// into the external response.
type OutcomeKind string

const (
	// OutcomeSuccess carries a structured payload from the backend.
	OutcomeSuccess OutcomeKind = "success"
	// OutcomeDomainError is a recoverable business-level failure reported
	// by the backend itself (resource not found, credential rejected).
	OutcomeDomainError OutcomeKind = "domain_error"
	// OutcomeValidationError covers malformed, missing, or mistyped
	// arguments and unknown tool names.
	OutcomeValidationError OutcomeKind = "validation_error"
	// OutcomeFault is anything unanticipated raised on the dispatch path.
	OutcomeFault OutcomeKind = "fault"
)

// Outcome is the internal result of one dispatched call. Produced once per
// call and consumed once by the normalizer; never persisted.
type Outcome struct {
	Kind    OutcomeKind
	Payload map[string]any // set when Kind == OutcomeSuccess
	Message string         // set on every failure kind
}

// OK reports whether the outcome is a success.
func (o Outcome) OK() bool {
	return o.Kind == OutcomeSuccess
}

func successOutcome(payload map[string]any) Outcome {
	return Outcome{Kind: OutcomeSuccess, Payload: payload}
}

func domainError(message string) Outcome {
	return Outcome{Kind: OutcomeDomainError, Message: message}
}

func validationError(message string) Outcome {
	return Outcome{Kind: OutcomeValidationError, Message: message}
}

func faultOutcome(message string) Outcome {
	return Outcome{Kind: OutcomeFault, Message: message}
}

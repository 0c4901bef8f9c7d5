package model

// Outcome values mirror the interview_outcome strings used by the tracker
// API. The empty string means "no outcome yet".
type Outcome string

const (
	OutcomeNone             Outcome = ""
	OutcomeScheduled        Outcome = "SCHEDULED"
	OutcomePassed           Outcome = "PASSED"
	OutcomeRejected         Outcome = "REJECTED"
	OutcomeAwaitingResponse Outcome = "AWAITING_RESPONSE"
	OutcomeOfferReceived    Outcome = "OFFER_RECEIVED"
	OutcomeOfferAccepted    Outcome = "OFFER_ACCEPTED"
	OutcomeOfferDeclined    Outcome = "OFFER_DECLINED"
	OutcomeWithdrew         Outcome = "WITHDREW"
)

// ParseOutcome matches s against the closed outcome set, case-sensitively.
// An unrecognized or empty string yields OutcomeNone — never an error: the
// server is authoritative and an unknown value must not poison a sync pass.
func ParseOutcome(s string) Outcome {
	switch o := Outcome(s); o {
	case OutcomeScheduled, OutcomePassed, OutcomeRejected, OutcomeAwaitingResponse,
		OutcomeOfferReceived, OutcomeOfferAccepted, OutcomeOfferDeclined, OutcomeWithdrew:
		return o
	}
	return OutcomeNone
}

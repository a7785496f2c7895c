package analytics

import "time"

// OnTimeGrace is the tolerance after the scheduled time before a delivery
// counts as late.
const OnTimeGrace = 30 * time.Minute

// OnTimeOutcome is the three-state punctuality result for a delivery.
// Unknown means one or both timestamps were missing; reporting collapses
// it to false.
type OnTimeOutcome int

const (
	OutcomeUnknown OnTimeOutcome = iota
	OutcomeOnTime
	OutcomeLate
)

// String returns the outcome label
func (o OnTimeOutcome) String() string {
	switch o {
	case OutcomeOnTime:
		return "on_time"
	case OutcomeLate:
		return "late"
	default:
		return "unknown"
	}
}

// Bool collapses the outcome to the reporting boolean: only a confirmed
// on-time delivery is true.
func (o OnTimeOutcome) Bool() bool {
	return o == OutcomeOnTime
}

// EvaluateOnTime classifies a delivery against its schedule. The outcome
// is Unknown unless both timestamps are present; otherwise a delivery is
// on time iff it arrived no later than scheduled plus the grace period.
func EvaluateOnTime(scheduled, actual *time.Time) OnTimeOutcome {
	if scheduled == nil || actual == nil {
		return OutcomeUnknown
	}
	if actual.After(scheduled.Add(OnTimeGrace)) {
		return OutcomeLate
	}
	return OutcomeOnTime
}

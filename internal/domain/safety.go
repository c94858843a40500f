package domain

// SafetyLabel is the coarse risk classification attached to a generated
// command. Derived deterministically from command text, never user-settable.
type SafetyLabel string

const (
	SafetySafe    SafetyLabel = "safe"
	SafetyCaution SafetyLabel = "caution"
	SafetyRisky   SafetyLabel = "risky"
)

var safetyRank = map[SafetyLabel]int{
	SafetySafe:    0,
	SafetyCaution: 1,
	SafetyRisky:   2,
}

// MoreSevere reports whether a outranks b (risky > caution > safe).
func MoreSevere(a, b SafetyLabel) bool {
	return safetyRank[a] > safetyRank[b]
}

// ParseSafetyLabel validates a label spelling (used for user rules files).
func ParseSafetyLabel(s string) (SafetyLabel, bool) {
	switch SafetyLabel(s) {
	case SafetySafe, SafetyCaution, SafetyRisky:
		return SafetyLabel(s), true
	default:
		return "", false
	}
}

// SafetyAssessment is the classifier's full verdict: the winning label plus
// the messages of every matched rule.
type SafetyAssessment struct {
	Label   SafetyLabel
	Reasons []string
}

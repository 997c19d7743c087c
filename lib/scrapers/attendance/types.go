package attendance

import (
	"errors"
	"strings"
	"time"
)

// State is an attendance state as recorded in the sheets.
type State string

const (
	StateInPerson State = "現場"
	StateOnline   State = "線上"
	StateLeave    State = "請假"
	StateAbsent   State = "未出席"
	StateUnknown  State = "不明"
)

// the labels sheet owners actually type; unknown is never written, it is
// what everything unrecognized collapses to.
var knownStates = []State{StateInPerson, StateOnline, StateLeave, StateAbsent}

// parseStatePrefix matches free-form cell text by prefix, e.g.
// `請假（事假）` still counts as leave.
func parseStatePrefix(text string) State {
	text = strings.TrimSpace(text)
	for _, s := range knownStates {
		if strings.HasPrefix(text, string(s)) {
			return s
		}
	}
	return StateUnknown
}

// parseStateExact requires the cell to hold exactly one of the labels;
// form-generated sheets constrain answers so anything else is suspect.
func parseStateExact(text string) State {
	text = strings.TrimSpace(text)
	for _, s := range knownStates {
		if text == string(s) {
			return s
		}
	}
	return StateUnknown
}

// Record is one member's attendance for one class date, as reported by a
// group's sheet.
type Record struct {
	Name        string
	State       State
	GroupNumber string
	Date        time.Time
}

var (
	// ErrNoRelevantStatus means the sheet is fine but holds no data for
	// the requested date. Callers treat it as "skip this sheet", not as a
	// failure.
	ErrNoRelevantStatus = errors.New("the sheet has no data for the requested date")
	ErrUnsupportedSheet = errors.New("unrecognized sheet layout")
)

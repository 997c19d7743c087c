package committee

import (
	"errors"
	"fmt"

	"rollcall-backend/lib/textutil"
)

// State is a member's roll-call state as the platform records it.
type State string

const (
	// StateUnset marks a roster row whose state has not been resolved yet.
	StateUnset   State = ""
	StatePresent State = "出席"
	StateLeave   State = "請假"
	StateAbsent  State = "未出席"
	StateUnknown State = "不明"
)

// radioValue maps a state onto the value attribute of the platform's
// radio inputs.
func (s State) radioValue() string {
	switch s {
	case StatePresent:
		return "D"
	case StateLeave:
		return "C"
	default:
		return "B"
	}
}

func stateFromRadioValue(v string) State {
	switch v {
	case "D":
		return StatePresent
	case "C":
		return StateLeave
	default:
		return StateAbsent
	}
}

// Member is one row of the paginated roster. PageNumber records which page
// the row was scraped from, since committing a state later requires
// navigating back to that exact page. GroupNumber holds the cell text as
// the platform renders it, because the committer's XPath must match it
// verbatim.
type Member struct {
	Name        string
	GroupNumber string
	PageNumber  int
	State       State
}

// Key is the composite identity used to join roster rows with attendance
// records. The group part is reduced to its digits so it lines up with
// the sheet side no matter how the platform decorates the label. It must
// be unique within one roster snapshot; duplicates silently collapse.
func (m Member) Key() string {
	return fmt.Sprintf("%s-%s", textutil.ConvertToGroupNumber(m.GroupNumber), m.Name)
}

var (
	ErrNoCaptchaInput           = errors.New("the captcha resolver returned no text")
	ErrTooManyWrongCaptcha      = errors.New("too many wrong captcha attempts")
	ErrUnableToLogIn            = errors.New("unable to log in")
	ErrNoLectureToRollCall      = errors.New("no lecture scheduled, nothing to roll call")
	ErrUnableToSwitchPage       = errors.New("unable to switch roster page")
	ErrUnableToGetClassDate     = errors.New("unable to get the class date")
	ErrUnableToCompleteRollCall = errors.New("unable to complete the roll call")
)

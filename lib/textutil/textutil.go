package textutil

import (
	"strings"
	"time"
)

// ConvertToName strips the decorations sheet owners put around member
// names, e.g. `出席記錄 [王小明]` or `王小明（線上）` both normalize to
// `王小明`. Applying it twice returns the same string.
func ConvertToName(text string) string {
	if i := strings.Index(text, "["); i >= 0 {
		text = text[i+len("["):]
	}
	for _, c := range []string{"]", "(", "（"} {
		if i := strings.Index(text, c); i >= 0 {
			text = text[:i]
		}
	}
	return strings.TrimSpace(text)
}

// ConvertToGroupNumber reduces a group label such as `第3組` or `3組` to
// its digit characters only. Both the sheet side and the platform side go
// through this so that the group part of the `group-name` join key is
// produced identically.
func ConvertToGroupNumber(text string) string {
	var b strings.Builder
	for _, r := range text {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

var dateLayouts = []string{"2006/1/2", "1/2/2006"}

// ConvertToDate parses the date formats seen in the wild: the platform and
// most sheets use YYYY/MM/DD, form-generated sheets sometimes use
// MM/DD/YYYY.
func ConvertToDate(text string) (time.Time, error) {
	text = strings.TrimSpace(text)
	if i := strings.Index(text, " "); i >= 0 {
		// form timestamps carry a time-of-day part
		text = text[:i]
	}
	var lastErr error
	for _, layout := range dateLayouts {
		d, err := time.Parse(layout, text)
		if err == nil {
			return d, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// SameDate reports whether two timestamps fall on the same calendar day.
func SameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

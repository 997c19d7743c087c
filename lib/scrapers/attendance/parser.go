package attendance

import (
	"strings"
	"time"

	"rollcall-backend/lib/textutil"
)

// Parser extracts attendance records for one class date out of a
// worksheet.
type Parser interface {
	RecordsByDate(date time.Time) ([]Record, error)
}

const formReportTitlePrefix = "出席記錄 ["

// BuildParser sniffs the sheet's header cell to pick a layout. Manually
// maintained sheets put a meridiem-formatted timestamp there; sheets
// generated by the feedback form start with the form timestamp column
// title. Anything else is unsupported.
func BuildParser(ws Worksheet) (Parser, error) {
	first := ws.Cell(1, 1)
	lower := strings.ToLower(first)

	if strings.HasSuffix(lower, " am") || strings.HasSuffix(lower, " pm") ||
		strings.HasPrefix(first, "上午 ") || strings.HasPrefix(first, "下午 ") {
		return &dateColumnParser{ws: ws}, nil
	}
	if first == "Timestamp" || first == "時間戳記" {
		return &formReportParser{ws: ws}, nil
	}
	return nil, ErrUnsupportedSheet
}

// dateColumnParser handles the per-date-column layout: row 1 holds one
// date per column from column 2 on, cell (2,1) holds the group label, and
// the rows below hold name/state pairs.
type dateColumnParser struct {
	ws Worksheet
}

func (p *dateColumnParser) relevantColumn(date time.Time) (int, error) {
	header := p.ws.Row(1)
	for i := 1; i < len(header); i++ {
		d, err := textutil.ConvertToDate(header[i])
		if err != nil {
			continue
		}
		if textutil.SameDate(d, date) {
			return i + 1, nil
		}
	}
	return 0, ErrNoRelevantStatus
}

func (p *dateColumnParser) RecordsByDate(date time.Time) ([]Record, error) {
	col, err := p.relevantColumn(date)
	if err != nil {
		return nil, err
	}
	group := textutil.ConvertToGroupNumber(p.ws.Cell(2, 1))

	names := p.ws.Col(1)
	states := p.ws.Col(col)

	var records []Record
	for row := 3; row <= len(names); row++ {
		name := names[row-1]
		if name == "" {
			continue
		}

		state := StateAbsent
		if row <= len(states) && states[row-1] != "" {
			state = parseStatePrefix(states[row-1])
		}

		records = append(records, Record{
			Name:        textutil.ConvertToName(name),
			State:       state,
			GroupNumber: group,
			Date:        date,
		})
	}
	return records, nil
}

// formReportParser handles sheets built up by the feedback form: one row
// per submission with a timestamp in column 2, the group label in column
// 3 and one `出席記錄 [名字]` column per member.
type formReportParser struct {
	ws Worksheet
}

// relevantRow scans the timestamp column bottom-up so a group that
// submitted the form twice for the same date has its latest submission
// win.
func (p *formReportParser) relevantRow(date time.Time) (int, error) {
	timestamps := p.ws.Col(2)
	for row := len(timestamps); row >= 2; row-- {
		d, err := textutil.ConvertToDate(timestamps[row-1])
		if err != nil {
			continue
		}
		if textutil.SameDate(d, date) {
			return row, nil
		}
	}
	return 0, ErrNoRelevantStatus
}

func (p *formReportParser) RecordsByDate(date time.Time) ([]Record, error) {
	row, err := p.relevantRow(date)
	if err != nil {
		return nil, err
	}
	group := textutil.ConvertToGroupNumber(p.ws.Cell(row, 3))

	titles := p.ws.Row(1)
	data := p.ws.Row(row)

	var records []Record
	for i, title := range titles {
		if !strings.HasPrefix(title, formReportTitlePrefix) {
			continue
		}

		state := StateAbsent
		if i < len(data) && data[i] != "" {
			state = parseStateExact(data[i])
		}

		records = append(records, Record{
			Name:        textutil.ConvertToName(title),
			State:       state,
			GroupNumber: group,
			Date:        date,
		})
	}
	return records, nil
}

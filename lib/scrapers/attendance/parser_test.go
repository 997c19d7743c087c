package attendance

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

var classDate = time.Date(2023, 4, 15, 0, 0, 0, 0, time.UTC)

func dateColumnSheet() Grid {
	return Grid{
		{"下午 7:30:00", "2023/04/08", "2023/04/15", "2023/04/22"},
		{"第3組", "", "", ""},
		{"王小明", "現場", "線上", "現場"},
		{"李大華", "請假", "請假（事假）", ""},
		{"陳美玲", "現場", "", "現場"},
		{"林志豪", "現場", "出差", "現場"},
	}
}

func formReportSheet() Grid {
	return Grid{
		{"時間戳記", "上課日期", "組別", "出席記錄 [王小明]", "出席記錄 [李大華]", "備註"},
		{"whatever", "2023/04/08", "第3組", "現場", "請假", ""},
		{"whatever", "2023/04/15", "第3組", "線上", "現場", ""},
		{"whatever", "2023/04/15", "3", "線上", "", "latest wins"},
	}
}

func TestBuildParser(t *testing.T) {
	p, err := BuildParser(dateColumnSheet())
	require.NoError(t, err)
	require.IsType(t, &dateColumnParser{}, p)

	p, err = BuildParser(formReportSheet())
	require.NoError(t, err)
	require.IsType(t, &formReportParser{}, p)

	p, err = BuildParser(Grid{{"10:30:00 PM"}})
	require.NoError(t, err)
	require.IsType(t, &dateColumnParser{}, p)

	p, err = BuildParser(Grid{{"Timestamp"}})
	require.NoError(t, err)
	require.IsType(t, &formReportParser{}, p)

	_, err = BuildParser(Grid{{"whatever else"}})
	require.ErrorIs(t, err, ErrUnsupportedSheet)
}

func TestDateColumnRecords(t *testing.T) {
	p, err := BuildParser(dateColumnSheet())
	require.NoError(t, err)

	records, err := p.RecordsByDate(classDate)
	require.NoError(t, err)

	expected := []Record{
		{Name: "王小明", State: StateOnline, GroupNumber: "3", Date: classDate},
		// prefix match keeps the annotated leave
		{Name: "李大華", State: StateLeave, GroupNumber: "3", Date: classDate},
		// empty state cell reads as absent
		{Name: "陳美玲", State: StateAbsent, GroupNumber: "3", Date: classDate},
		// unrecognized text collapses to unknown
		{Name: "林志豪", State: StateUnknown, GroupNumber: "3", Date: classDate},
	}
	diff := cmp.Diff(expected, records)
	if diff != "" {
		t.Fatal(diff)
	}
}

func TestDateColumnNoRelevantDate(t *testing.T) {
	p, err := BuildParser(dateColumnSheet())
	require.NoError(t, err)

	_, err = p.RecordsByDate(time.Date(2023, 5, 20, 0, 0, 0, 0, time.UTC))
	require.ErrorIs(t, err, ErrNoRelevantStatus)
}

func TestFormReportRecords(t *testing.T) {
	p, err := BuildParser(formReportSheet())
	require.NoError(t, err)

	records, err := p.RecordsByDate(classDate)
	require.NoError(t, err)

	// the last row matching the date wins, so 李大華's empty cell reads
	// as absent even though an earlier submission said 現場
	expected := []Record{
		{Name: "王小明", State: StateOnline, GroupNumber: "3", Date: classDate},
		{Name: "李大華", State: StateAbsent, GroupNumber: "3", Date: classDate},
	}
	diff := cmp.Diff(expected, records)
	if diff != "" {
		t.Fatal(diff)
	}
}

func TestFormReportNoRelevantDate(t *testing.T) {
	p, err := BuildParser(formReportSheet())
	require.NoError(t, err)

	_, err = p.RecordsByDate(time.Date(2023, 5, 20, 0, 0, 0, 0, time.UTC))
	require.ErrorIs(t, err, ErrNoRelevantStatus)
}

func TestGrid(t *testing.T) {
	g := Grid{
		{"a", "b"},
		{"c"},
	}
	require.Equal(t, 2, g.NumRows())
	require.Equal(t, "b", g.Cell(1, 2))
	require.Equal(t, "", g.Cell(2, 2))
	require.Equal(t, "", g.Cell(3, 1))
	require.Equal(t, []string{"b", ""}, g.Col(2))
	require.Nil(t, g.Row(3))
}

func TestParseStates(t *testing.T) {
	require.Equal(t, StateLeave, parseStatePrefix("請假（病假）"))
	require.Equal(t, StateInPerson, parseStatePrefix(" 現場 "))
	require.Equal(t, StateUnknown, parseStatePrefix("出差"))

	require.Equal(t, StateLeave, parseStateExact("請假"))
	require.Equal(t, StateUnknown, parseStateExact("請假（病假）"))
}

package rollcall

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"rollcall-backend/lib/scrapers/attendance"
	"rollcall-backend/lib/scrapers/committee"
	"rollcall-backend/lib/telemetry"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func init() {
	teardownDelay = 0
}

type fakePortal struct {
	loginErr     error
	classDate    time.Time
	classDateErr error
	members      []committee.Member
	membersErr   error
	rollCallErr  error

	rolled []committee.Member
	closed bool
}

func (p *fakePortal) Login(ctx context.Context, cb committee.CaptchaCallbacks) error {
	return p.loginErr
}

func (p *fakePortal) ActivatedRollCallClassDate(ctx context.Context) (time.Time, error) {
	return p.classDate, p.classDateErr
}

func (p *fakePortal) Members(ctx context.Context, noState bool) ([]committee.Member, error) {
	return p.members, p.membersErr
}

func (p *fakePortal) RollCall(ctx context.Context, members []committee.Member, onProcessed func(committee.Member)) error {
	if p.rollCallErr != nil {
		return p.rollCallErr
	}
	p.rolled = members
	for _, m := range members {
		if onProcessed != nil {
			onProcessed(m)
		}
	}
	return nil
}

func (p *fakePortal) Close(ctx context.Context) error {
	p.closed = true
	return nil
}

type fakeSheets struct {
	records map[string][]attendance.Record
	errs    map[string]error
}

func (s fakeSheets) RecordsByDate(ctx context.Context, link string, date time.Time) ([]attendance.Record, error) {
	if err := s.errs[link]; err != nil {
		return nil, err
	}
	return s.records[link], nil
}

func newTestService(t *testing.T, portal *fakePortal, sheets SheetSource, cfg Config) (Service, func() []string) {
	t.Helper()

	cleanup := telemetry.SetupForTesting(t, "test:services/rollcall")
	t.Cleanup(cleanup)

	status := make(chan string, 128)
	service := NewService(ServiceOptions{
		Config: cfg,
		Status: status,
		Sheets: sheets,
		NewPortal: func(ctx context.Context) (Portal, error) {
			return portal, nil
		},
	})
	return service, func() []string {
		close(status)
		var out []string
		for s := range status {
			out = append(out, s)
		}
		return out
	}
}

func TestRunHappyPath(t *testing.T) {
	classDate := time.Date(2023, 5, 13, 0, 0, 0, 0, time.UTC)
	portal := &fakePortal{
		classDate: classDate,
		members: []committee.Member{
			{Name: "王小明", GroupNumber: "1", PageNumber: 1},
			{Name: "李大華", GroupNumber: "2", PageNumber: 1},
		},
	}
	sheets := fakeSheets{records: map[string][]attendance.Record{
		"link-1": {
			{Name: "王小明", GroupNumber: "1", State: attendance.StateOnline, Date: classDate},
			{Name: "李大華", GroupNumber: "2", State: attendance.StateLeave, Date: classDate},
		},
	}}
	cfg := Config{
		AttendanceReportSheetLinks: []SheetLink{{Link: "link-1", Note: "一組"}},
	}

	service, statuses := newTestService(t, portal, sheets, cfg)
	result := service.Run(context.Background())
	require.Equal(t, Succeeded, result.Code)
	require.True(t, portal.closed)

	expected := []committee.Member{
		{Name: "王小明", GroupNumber: "1", PageNumber: 1, State: committee.StatePresent},
		{Name: "李大華", GroupNumber: "2", PageNumber: 1, State: committee.StateLeave},
	}
	if diff := cmp.Diff(expected, portal.rolled); diff != "" {
		t.Fatal(diff)
	}

	out := statuses()
	require.Contains(t, out, "登入 ...")
	require.Contains(t, out, "取得「一組」出席狀況 ...")
	require.Contains(t, out, "1-王小明：出席")
	require.Contains(t, out, "2-李大華：請假")
}

func TestRunLoginFailed(t *testing.T) {
	portal := &fakePortal{loginErr: committee.ErrUnableToLogIn}

	service, statuses := newTestService(t, portal, fakeSheets{}, Config{})
	result := service.Run(context.Background())
	require.Equal(t, UnableToLogIn, result.Code)
	require.True(t, portal.closed)
	require.Contains(t, statuses(), "無法登入")
}

func TestRunNoLecture(t *testing.T) {
	portal := &fakePortal{classDateErr: committee.ErrNoLectureToRollCall}

	service, statuses := newTestService(t, portal, fakeSheets{}, Config{})
	result := service.Run(context.Background())
	require.Equal(t, NoLectureToRollCall, result.Code)
	require.Contains(t, statuses(), "無上課時程表，不須點名")
}

func TestRunClassDateFailed(t *testing.T) {
	portal := &fakePortal{classDateErr: committee.ErrUnableToGetClassDate}

	service, _ := newTestService(t, portal, fakeSheets{}, Config{})
	result := service.Run(context.Background())
	require.Equal(t, UnableToGetClassDate, result.Code)
}

func TestRunMemberListFailed(t *testing.T) {
	portal := &fakePortal{
		classDate:  time.Date(2023, 5, 13, 0, 0, 0, 0, time.UTC),
		membersErr: errors.New("the table went away"),
	}

	service, _ := newTestService(t, portal, fakeSheets{}, Config{})
	result := service.Run(context.Background())
	require.Equal(t, UnableToGetMemberList, result.Code)
}

func TestRunRollCallFailed(t *testing.T) {
	portal := &fakePortal{
		classDate:   time.Date(2023, 5, 13, 0, 0, 0, 0, time.UTC),
		members:     []committee.Member{{Name: "王小明", GroupNumber: "1"}},
		rollCallErr: committee.ErrUnableToCompleteRollCall,
	}

	service, _ := newTestService(t, portal, fakeSheets{}, Config{})
	result := service.Run(context.Background())
	require.Equal(t, UnableToRollCall, result.Code)
}

func TestRunSkipsSheetsWithoutTheDate(t *testing.T) {
	classDate := time.Date(2023, 5, 13, 0, 0, 0, 0, time.UTC)
	portal := &fakePortal{
		classDate: classDate,
		members:   []committee.Member{{Name: "王小明", GroupNumber: "1"}},
	}
	sheets := fakeSheets{
		records: map[string][]attendance.Record{
			"link-2": {{Name: "王小明", GroupNumber: "1", State: attendance.StateInPerson, Date: classDate}},
		},
		errs: map[string]error{"link-1": attendance.ErrNoRelevantStatus},
	}
	cfg := Config{AttendanceReportSheetLinks: []SheetLink{
		{Link: "link-1", Note: "一組"},
		{Link: "link-2", Note: "二組"},
	}}

	service, statuses := newTestService(t, portal, sheets, cfg)
	result := service.Run(context.Background())
	require.Equal(t, Succeeded, result.Code)
	require.Contains(t, statuses(), "「一組」無本次上課出席記錄")

	require.Len(t, portal.rolled, 1)
	require.Equal(t, committee.StatePresent, portal.rolled[0].State)
}

func TestRunSheetFailureNamesTheSheet(t *testing.T) {
	portal := &fakePortal{classDate: time.Date(2023, 5, 13, 0, 0, 0, 0, time.UTC)}
	sheets := fakeSheets{errs: map[string]error{"link-1": errors.New("http 403")}}
	cfg := Config{AttendanceReportSheetLinks: []SheetLink{{Link: "link-1", Note: "一組"}}}

	service, _ := newTestService(t, portal, sheets, cfg)
	result := service.Run(context.Background())
	require.Equal(t, UnableToReadAttendanceReportSheet, result.Code)
	require.Equal(t, "一組", result.Data)
}

func TestRunReportsAnomalies(t *testing.T) {
	classDate := time.Date(2023, 5, 13, 0, 0, 0, 0, time.UTC)
	portal := &fakePortal{
		classDate: classDate,
		members: []committee.Member{
			{Name: "王小明", GroupNumber: "1"},
			{Name: "李大華", GroupNumber: "2"},
		},
	}
	sheets := fakeSheets{records: map[string][]attendance.Record{
		"link-1": {
			{Name: "王曉明", GroupNumber: "1", State: attendance.StateInPerson, Date: classDate},
		},
	}}
	cfg := Config{AttendanceReportSheetLinks: []SheetLink{{Link: "link-1", Note: "一組"}}}

	service, statuses := newTestService(t, portal, sheets, cfg)
	result := service.Run(context.Background())
	require.Equal(t, Succeeded, result.Code)

	out := statuses()
	require.Contains(t, out, "不在點名系統的人員：1-王曉明")
	require.Contains(t, out, "「1-王曉明」可能是「1-王小明」")
	require.Contains(t, out, "不在出席記錄試算表的人員：1-王小明, 2-李大華")
}

func TestRunLogin(t *testing.T) {
	portal := &fakePortal{}

	service, _ := newTestService(t, portal, fakeSheets{}, Config{})
	result := service.RunLogin(context.Background())
	require.Equal(t, Succeeded, result.Code)
	require.True(t, portal.closed)
}

func TestRunnerRejectsOverlappingJobs(t *testing.T) {
	block := make(chan struct{})
	started := make(chan struct{}, 2)
	portal := &fakePortal{classDateErr: committee.ErrNoLectureToRollCall}

	service := NewService(ServiceOptions{
		NewPortal: func(ctx context.Context) (Portal, error) {
			started <- struct{}{}
			<-block
			return portal, nil
		},
	})
	runner := NewRunner(service)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := runner.Run(context.Background())
		require.NoError(t, err)
	}()

	<-started
	_, err := runner.Run(context.Background())
	require.ErrorIs(t, err, ErrJobAlreadyRunning)

	close(block)
	wg.Wait()

	// the gate reopens once the job finishes
	_, err = runner.Run(context.Background())
	require.NoError(t, err)
}

func TestRunnerStopCancelsTheJob(t *testing.T) {
	started := make(chan struct{})
	service := NewService(ServiceOptions{
		NewPortal: func(ctx context.Context) (Portal, error) {
			close(started)
			<-ctx.Done()
			return nil, ctx.Err()
		},
	})
	runner := NewRunner(service)

	done := make(chan Result, 1)
	go func() {
		result, err := runner.Run(context.Background())
		require.NoError(t, err)
		done <- result
	}()

	<-started
	runner.Stop()
	result := <-done
	require.Equal(t, UnableToInitializeWebDriver, result.Code)
}

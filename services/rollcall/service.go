package rollcall

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"rollcall-backend/lib/browser"
	"rollcall-backend/lib/scrapers/attendance"
	"rollcall-backend/lib/scrapers/committee"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("services/rollcall")

// teardownDelay keeps the browser open briefly after the job ends so an
// operator watching it can see the final page state.
var teardownDelay = 3 * time.Second

// Portal is the slice of the committee-platform client the job needs.
type Portal interface {
	Login(ctx context.Context, cb committee.CaptchaCallbacks) error
	ActivatedRollCallClassDate(ctx context.Context) (time.Time, error)
	Members(ctx context.Context, noState bool) ([]committee.Member, error)
	RollCall(ctx context.Context, members []committee.Member, onProcessed func(committee.Member)) error
	Close(ctx context.Context) error
}

// SheetSource resolves one sheet link into the attendance records for a
// date.
type SheetSource interface {
	RecordsByDate(ctx context.Context, link string, date time.Time) ([]attendance.Record, error)
}

type ServiceOptions struct {
	Config Config
	// Status receives the human-readable progress stream. The consumer
	// must keep draining it until the job finishes.
	Status chan<- string
	// Captcha resolves CAPTCHA challenges during login.
	Captcha *CaptchaPrompt
	// History, when set, records every finished job.
	History *History
	// NewPortal overrides how the portal client is built; nil launches a
	// real browser.
	NewPortal func(ctx context.Context) (Portal, error)
	// Sheets overrides the sheet source; nil talks to the real API.
	Sheets SheetSource
}

// Service runs roll-call jobs. All job state is created per run; the
// service itself only holds configuration and collaborators.
type Service struct {
	cfg       Config
	status    chan<- string
	captcha   *CaptchaPrompt
	history   *History
	newPortal func(ctx context.Context) (Portal, error)
	sheets    SheetSource
}

func NewService(opts ServiceOptions) Service {
	s := Service{
		cfg:       opts.Config,
		status:    opts.Status,
		captcha:   opts.Captcha,
		history:   opts.History,
		newPortal: opts.NewPortal,
		sheets:    opts.Sheets,
	}
	if s.captcha == nil {
		s.captcha = &CaptchaPrompt{}
	}
	if s.newPortal == nil {
		s.newPortal = defaultNewPortal(opts.Config)
	}
	return s
}

// Captcha exposes the prompt so the front end can fulfill challenges.
func (s Service) Captcha() *CaptchaPrompt {
	return s.captcha
}

func (s Service) report(status string) {
	if s.status != nil {
		s.status <- status
	}
}

func (s Service) captchaCallbacks(ctx context.Context) committee.CaptchaCallbacks {
	return committee.CaptchaCallbacks{
		OnCaptchaNeeded: func(imagePath string) (string, error) {
			s.report("請輸入驗證碼 ...")
			return s.captcha.Challenge(ctx, imagePath)
		},
		OnCaptchaSending: func() {
			s.report("送出驗證碼 ...")
		},
		OnCaptchaResolved: func(ok bool) {
			if !ok {
				s.report("驗證碼錯誤，重新取得驗證碼 ...")
			}
		},
	}
}

// Run executes one full import job and returns its result. Exactly one
// result is produced per invocation; the browser session is torn down on
// every exit path.
func (s Service) Run(ctx context.Context) Result {
	ctx, span := tracer.Start(ctx, "service:Run")
	defer span.End()

	startedAt := time.Now()
	result, classDate := s.runJob(ctx)
	s.recordHistory(ctx, startedAt, classDate, result)

	if result.Code > 0 {
		slog.Info("imported", "result", result.Code.String())
	} else {
		slog.Info("failed to import", "result", result.Code.String(), "data", result.Data)
		span.SetStatus(codes.Error, result.Code.String())
	}
	return result
}

func (s Service) runJob(ctx context.Context) (Result, string) {
	portal, err := s.newPortal(ctx)
	if err != nil {
		slog.Error("unable to launch the browser", "err", err)
		s.report("無法啟動瀏覽器")
		return Result{Code: UnableToInitializeWebDriver}, ""
	}
	defer s.teardown(portal)

	slog.Info("logging in")
	s.report("登入 ...")
	err = portal.Login(ctx, s.captchaCallbacks(ctx))
	if err != nil {
		slog.Error("unable to log in", "err", err)
		s.report("無法登入")
		return Result{Code: UnableToLogIn}, ""
	}

	slog.Info("detecting the class date")
	s.report("偵測上課時間 ...")
	date, err := portal.ActivatedRollCallClassDate(ctx)
	if err != nil {
		if errors.Is(err, committee.ErrNoLectureToRollCall) {
			slog.Info("no lecture to roll call")
			s.report("無上課時程表，不須點名")
			return Result{Code: NoLectureToRollCall}, ""
		}
		slog.Error("unable to get the class date", "err", err)
		s.report("無法取得上課時間")
		return Result{Code: UnableToGetClassDate}, ""
	}
	classDate := date.Format("2006/01/02")

	records, result := s.collectRecords(ctx, date)
	if result.Code != Unset {
		return result, classDate
	}

	slog.Info("obtaining the member list on the committee platform")
	s.report("取得學員平臺學員名單 ...")
	members, err := portal.Members(ctx, true)
	if err != nil {
		slog.Error("unable to obtain the roll call list", "err", err)
		s.report("無法取得福智學員平臺名單")
		return Result{Code: UnableToGetMemberList}, classDate
	}

	reconcile(members, records)

	err = portal.RollCall(ctx, members, func(m committee.Member) {
		state := "無資料"
		if m.State != committee.StateUnset {
			state = string(m.State)
		}
		s.report(fmt.Sprintf("%s：%s", m.Key(), state))
	})
	if err != nil {
		slog.Error("unable to roll call", "err", err)
		s.report("無法匯入出席狀況")
		return Result{Code: UnableToRollCall}, classDate
	}

	s.reportAnomalies(records, members)
	return Result{Code: Succeeded}, classDate
}

// collectRecords parses every configured sheet for the class date. A
// sheet with no data for the date is skipped with a status note; any
// other failure is fatal and names the sheet.
func (s Service) collectRecords(ctx context.Context, date time.Time) ([]attendance.Record, Result) {
	sheets := s.sheets
	if sheets == nil {
		sheets = NewSheetSource(ctx, s.cfg)
	}

	var records []attendance.Record
	for _, link := range s.cfg.AttendanceReportSheetLinks {
		if link.Link == "" {
			continue
		}
		slog.Info("obtaining the member statuses of a group", "note", link.Note)
		s.report(fmt.Sprintf("取得「%s」出席狀況 ...", link.Note))

		sheetRecords, err := sheets.RecordsByDate(ctx, link.Link, date)
		if errors.Is(err, attendance.ErrNoRelevantStatus) {
			slog.Info("no data for the date in the attendance sheet", "note", link.Note)
			s.report(fmt.Sprintf("「%s」無本次上課出席記錄", link.Note))
			continue
		}
		if err != nil {
			slog.Error("unable to read the attendance sheet", "note", link.Note, "err", err)
			s.report(fmt.Sprintf("無法讀取「%s」出勤結果表", link.Note))
			return nil, Result{Code: UnableToReadAttendanceReportSheet, Data: link.Note}
		}
		records = append(records, sheetRecords...)
	}
	return records, Result{Code: Unset}
}

func (s Service) reportAnomalies(records []attendance.Record, members []committee.Member) {
	found := computeAnomalies(records, members)

	if len(found.NotOnPlatform) > 0 {
		slog.Info("members not on the platform", "keys", found.NotOnPlatform)
		s.report(fmt.Sprintf("不在點名系統的人員：%s", strings.Join(found.NotOnPlatform, ", ")))

		memberKeys := make([]string, len(members))
		for i, m := range members {
			memberKeys[i] = m.Key()
		}
		for _, suggestion := range suggestMatches(found.NotOnPlatform, memberKeys) {
			s.report(fmt.Sprintf("「%s」可能是「%s」", suggestion.Key, suggestion.Closest))
		}
	}
	if len(found.NoFeedback) > 0 {
		slog.Info("members without attendance feedback", "keys", found.NoFeedback)
		s.report(fmt.Sprintf("不在出席記錄試算表的人員：%s", strings.Join(found.NoFeedback, ", ")))
	}
}

// RunLogin executes a credential-check job: launch, log in, tear down.
func (s Service) RunLogin(ctx context.Context) Result {
	ctx, span := tracer.Start(ctx, "service:RunLogin")
	defer span.End()

	portal, err := s.newPortal(ctx)
	if err != nil {
		slog.Error("unable to launch the browser", "err", err)
		s.report("無法啟動瀏覽器")
		return Result{Code: UnableToInitializeWebDriver}
	}
	defer s.teardown(portal)

	slog.Info("logging in")
	s.report("登入 ...")
	err = portal.Login(ctx, s.captchaCallbacks(ctx))
	if err != nil {
		slog.Error("unable to log in", "err", err)
		s.report("無法登入")
		return Result{Code: UnableToLogIn}
	}
	return Result{Code: Succeeded}
}

// teardown closes the portal on every exit path. Errors are logged and
// swallowed so the completion path always runs.
func (s Service) teardown(portal Portal) {
	time.Sleep(teardownDelay)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err := portal.Close(ctx)
	if err != nil {
		slog.Warn("failed to tear down the browser session", "err", err)
	}
}

func (s Service) recordHistory(ctx context.Context, startedAt time.Time, classDate string, result Result) {
	if s.history == nil {
		return
	}
	_, err := s.history.Record(ctx, HistoryEntry{
		StartedAt:  startedAt,
		FinishedAt: time.Now(),
		ClassDate:  classDate,
		Result:     result,
	})
	if err != nil {
		slog.Warn("failed to record job history", "err", err)
	}
}

func defaultNewPortal(cfg Config) func(ctx context.Context) (Portal, error) {
	return func(ctx context.Context) (Portal, error) {
		session, err := browser.NewSession(ctx, browser.Options{
			Headless: cfg.Headless,
			WorkDir:  browserWorkDir(),
		})
		if err != nil {
			return nil, err
		}
		return committee.NewClient(session, committee.Options{
			Account:   cfg.Account,
			Password:  cfg.Password,
			ClassName: cfg.ClassName,
		}), nil
	}
}

func browserWorkDir() string {
	cache, err := os.UserCacheDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "rollcall-assistant", "browser-working-directory")
	}
	return filepath.Join(cache, "rollcall-assistant", "browser-working-directory")
}

// sheetSource is the production SheetSource over the Sheets API.
type sheetSource struct {
	client *attendance.Client
}

func NewSheetSource(ctx context.Context, cfg Config) SheetSource {
	return sheetSource{
		client: attendance.NewClient(ctx, attendance.Credentials{
			PrivateKeyID: cfg.GoogleAPIPrivateKeyID,
			PrivateKey:   cfg.GoogleAPIPrivateKey,
		}),
	}
}

func (s sheetSource) RecordsByDate(ctx context.Context, link string, date time.Time) ([]attendance.Record, error) {
	ws, err := s.client.Worksheet(ctx, link)
	if err != nil {
		return nil, err
	}
	parser, err := attendance.BuildParser(ws)
	if err != nil {
		return nil, err
	}
	return parser.RecordsByDate(date)
}

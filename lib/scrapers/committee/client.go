package committee

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"rollcall-backend/lib/browser"
	"rollcall-backend/lib/textutil"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/chromedp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("scrapers/committee")

const loginAttempts = 5

// CaptchaCallbacks is the boundary between the login flow and whoever
// resolves CAPTCHA challenges (a human prompt or an OCR engine).
type CaptchaCallbacks struct {
	// OnCaptchaNeeded receives the path of the rendered CAPTCHA image and
	// blocks until an answer is available.
	OnCaptchaNeeded func(imagePath string) (string, error)
	// OnCaptchaSending fires right before the answer is submitted.
	OnCaptchaSending func()
	// OnCaptchaResolved reports whether the platform accepted the answer.
	OnCaptchaResolved func(ok bool)
}

// driver is the slice of page interaction the client performs. The live
// implementation drives chromedp; tests substitute a scripted fake.
type driver interface {
	Navigate(url string) error
	// WaitVisible blocks up to timeout for the element to appear. A
	// context.DeadlineExceeded means it never did.
	WaitVisible(timeout time.Duration, sel string) error
	// IsPresent checks for the element right now, without waiting.
	IsPresent(sel string) (bool, error)
	// Click scrolls the element into view and clicks it.
	Click(sel string) error
	// Fill types text into the element.
	Fill(sel, text string) error
	// Refill clears the element first, then types.
	Refill(sel, text string) error
	Text(sel string) (string, error)
	OuterHTML(sel string) (string, error)
	Attribute(sel, name string) (string, bool, error)
}

// chromedpDriver implements driver over a live browser session. Every
// call runs under the session's action timeout.
type chromedpDriver struct {
	session *browser.Session
	timeout time.Duration
}

func (d chromedpDriver) run(actions ...chromedp.Action) error {
	return d.session.Run(d.timeout, actions...)
}

func (d chromedpDriver) Navigate(url string) error {
	return d.run(chromedp.Navigate(url))
}

func (d chromedpDriver) WaitVisible(timeout time.Duration, sel string) error {
	return d.session.Run(timeout, chromedp.WaitVisible(sel, chromedp.BySearch))
}

func (d chromedpDriver) IsPresent(sel string) (bool, error) {
	var nodes []*cdp.Node
	err := d.run(chromedp.Nodes(sel, &nodes, chromedp.BySearch, chromedp.AtLeast(0)))
	if err != nil {
		return false, err
	}
	return len(nodes) > 0, nil
}

func (d chromedpDriver) Click(sel string) error {
	return d.run(
		chromedp.ScrollIntoView(sel, chromedp.BySearch),
		chromedp.Click(sel, chromedp.BySearch),
	)
}

func (d chromedpDriver) Fill(sel, text string) error {
	return d.run(chromedp.SendKeys(sel, text, chromedp.BySearch))
}

func (d chromedpDriver) Refill(sel, text string) error {
	return d.run(
		chromedp.Clear(sel, chromedp.BySearch),
		chromedp.SendKeys(sel, text, chromedp.BySearch),
	)
}

func (d chromedpDriver) Text(sel string) (string, error) {
	var text string
	err := d.run(chromedp.Text(sel, &text, chromedp.BySearch))
	return text, err
}

func (d chromedpDriver) OuterHTML(sel string) (string, error) {
	var html string
	err := d.run(chromedp.OuterHTML(sel, &html, chromedp.BySearch))
	return html, err
}

func (d chromedpDriver) Attribute(sel, name string) (string, bool, error) {
	var value string
	var ok bool
	err := d.run(chromedp.AttributeValue(sel, name, &value, &ok, chromedp.BySearch))
	return value, ok, err
}

type Options struct {
	Account   string
	Password  string
	ClassName string
	// ActionTimeout bounds individual element waits, not whole operations.
	ActionTimeout time.Duration
}

// Client drives the committee platform through a live browser session.
// Methods mutate browser state, so calls on one client must not overlap.
type Client struct {
	drv           driver
	session       *browser.Session
	account       string
	password      string
	className     string
	actionTimeout time.Duration
	// settleDelay is how long to give the SPA after a mutation before
	// reading it again.
	settleDelay time.Duration
}

func NewClient(session *browser.Session, opts Options) *Client {
	timeout := opts.ActionTimeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		drv:           chromedpDriver{session: session, timeout: timeout},
		session:       session,
		account:       opts.Account,
		password:      opts.Password,
		className:     opts.ClassName,
		actionTimeout: timeout,
		settleDelay:   time.Second,
	}
}

func (c *Client) settle() {
	time.Sleep(c.settleDelay)
}

// Login walks the login form, resolving CAPTCHAs through the callbacks.
// An empty answer fails immediately with ErrNoCaptchaInput; a rejected
// answer retries with a fresh CAPTCHA up to 5 attempts in total.
func (c *Client) Login(ctx context.Context, cb CaptchaCallbacks) error {
	ctx, span := tracer.Start(ctx, "client:Login")
	defer span.End()

	accepted := false
	for attempt := 0; attempt < loginAttempts; attempt++ {
		err := c.drv.Navigate(loginPageURL)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to load the login page")
			return err
		}

		err = c.drv.Fill(selAccountInput, c.account)
		if err == nil {
			err = c.drv.Fill(selPasswordInput, c.password)
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to fill in credentials")
			return err
		}

		answer, err := c.resolveCaptcha(ctx, cb)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to resolve captcha")
			return err
		}

		if cb.OnCaptchaSending != nil {
			cb.OnCaptchaSending()
		}
		err = c.drv.Refill(selCaptchaInput, answer)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to fill in captcha")
			return err
		}
		err = c.drv.Click(selLoginButton)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to click login")
			return err
		}

		err = c.drv.WaitVisible(2*time.Second, selCaptchaWrongNotice)
		if err == nil {
			// platform rejected the answer, reload for a fresh image
			slog.Info("captcha rejected", "attempt", attempt+1)
			if cb.OnCaptchaResolved != nil {
				cb.OnCaptchaResolved(false)
			}
			continue
		}
		if !errors.Is(err, context.DeadlineExceeded) {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to check the wrong-captcha notice")
			return err
		}

		if cb.OnCaptchaResolved != nil {
			cb.OnCaptchaResolved(true)
		}
		accepted = true
		break
	}
	if !accepted {
		span.SetStatus(codes.Error, ErrTooManyWrongCaptcha.Error())
		return ErrTooManyWrongCaptcha
	}

	err := c.drv.WaitVisible(c.actionTimeout, selLogoutButton)
	if err != nil {
		span.SetStatus(codes.Error, ErrUnableToLogIn.Error())
		return fmt.Errorf("%w: %v", ErrUnableToLogIn, err)
	}
	return nil
}

// resolveCaptcha materializes the inline CAPTCHA image to a temp file and
// blocks on the callback for an answer. The file only lives for the
// duration of the callback.
func (c *Client) resolveCaptcha(ctx context.Context, cb CaptchaCallbacks) (string, error) {
	src, ok, err := c.drv.Attribute(selCaptchaImage, "src")
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("captcha image has no src attribute")
	}

	_, encoded, found := strings.Cut(src, ";base64,")
	if !found {
		return "", fmt.Errorf("captcha image src is not inline base64 data")
	}
	image, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("decode captcha image: %w", err)
	}

	f, err := os.CreateTemp("", "captcha-*.png")
	if err != nil {
		return "", err
	}
	defer os.Remove(f.Name())
	_, err = f.Write(image)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return "", err
	}

	answer, err := cb.OnCaptchaNeeded(f.Name())
	if err != nil {
		return "", err
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return "", ErrNoCaptchaInput
	}
	return answer, nil
}

// GoToActivatedRollCallPage opens the roll-call feature, picks the
// configured class and activates its roll-call table.
func (c *Client) GoToActivatedRollCallPage(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "client:GoToActivatedRollCallPage")
	defer span.End()

	err := c.drv.Navigate(rollCallPageURL)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to load the roll call page")
		return err
	}

	err = c.drv.Click(selClassNameDropdown)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to open the class dropdown")
		return err
	}
	err = c.drv.Click(selClassNameItem(c.className))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to choose the class")
		return fmt.Errorf("choose class %q: %w", c.className, err)
	}

	err = c.drv.Click(selRollCallButton)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to click the roll call button")
		return err
	}

	// a legitimate terminal outcome, not a scraping failure
	err = c.drv.WaitVisible(3*time.Second, selNoLectureNotice)
	if err == nil {
		span.SetStatus(codes.Error, ErrNoLectureToRollCall.Error())
		return ErrNoLectureToRollCall
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to check the no-lecture notice")
		return err
	}

	err = c.drv.WaitVisible(c.actionTimeout, selRowsPerPage)
	if err != nil {
		span.SetStatus(codes.Error, ErrUnableToSwitchPage.Error())
		return fmt.Errorf("%w: roll call table never loaded", ErrUnableToSwitchPage)
	}
	return nil
}

// ActivatedRollCallClassDate reads the class date displayed above the
// roll-call table.
func (c *Client) ActivatedRollCallClassDate(ctx context.Context) (time.Time, error) {
	ctx, span := tracer.Start(ctx, "client:ActivatedRollCallClassDate")
	defer span.End()

	err := c.GoToActivatedRollCallPage(ctx)
	if err != nil {
		return time.Time{}, err
	}

	text, err := c.drv.Text(selClassDate)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, ErrUnableToGetClassDate.Error())
		return time.Time{}, fmt.Errorf("%w: %v", ErrUnableToGetClassDate, err)
	}
	date, err := textutil.ConvertToDate(text)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, ErrUnableToGetClassDate.Error())
		return time.Time{}, fmt.Errorf("%w: bad date text %q", ErrUnableToGetClassDate, text)
	}
	return date, nil
}

// Close tears down the browser session.
func (c *Client) Close(ctx context.Context) error {
	if c.session == nil {
		return nil
	}
	return c.session.Close()
}

package browser

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/chromedp/chromedp"
)

// Options controls how the browser process is launched.
type Options struct {
	// ExecPath overrides the chrome binary chromedp discovers on its own.
	ExecPath string
	Headless bool
	// WorkDir is used as the browser profile directory. It is wiped on
	// every launch so stale SPA state never leaks between jobs.
	WorkDir string
}

// Session owns one browser process and the chromedp contexts attached to
// it. All page interaction runs through Run.
type Session struct {
	ctx             context.Context
	cancelBrowser   context.CancelFunc
	cancelAllocator context.CancelFunc
}

// NewSession launches the browser. A launch failure here is an environment
// problem (no browser/driver installed), which callers treat differently
// from in-page failures.
func NewSession(ctx context.Context, opts Options) (*Session, error) {
	if opts.WorkDir != "" {
		err := os.RemoveAll(opts.WorkDir)
		if err != nil {
			return nil, fmt.Errorf("clear browser work dir: %w", err)
		}
		err = os.MkdirAll(opts.WorkDir, 0o755)
		if err != nil {
			return nil, fmt.Errorf("create browser work dir: %w", err)
		}
	}

	allocOpts := append(
		chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("start-maximized", true),
	)
	if opts.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ExecPath))
	}
	if opts.WorkDir != "" {
		allocOpts = append(allocOpts, chromedp.UserDataDir(opts.WorkDir))
	}

	allocatorCtx, cancelAllocator := chromedp.NewExecAllocator(ctx, allocOpts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocatorCtx)

	// starts the browser process, surfacing launch failures immediately
	err := chromedp.Run(browserCtx)
	if err != nil {
		cancelBrowser()
		cancelAllocator()
		return nil, fmt.Errorf("start browser: %w", err)
	}

	return &Session{
		ctx:             browserCtx,
		cancelBrowser:   cancelBrowser,
		cancelAllocator: cancelAllocator,
	}, nil
}

// Run executes actions with a bounded deadline. Individual element waits
// are bounded, the job as a whole is not.
func (s *Session) Run(timeout time.Duration, actions ...chromedp.Action) error {
	ctx, cancel := context.WithTimeout(s.ctx, timeout)
	defer cancel()
	return chromedp.Run(ctx, actions...)
}

func (s *Session) Close() error {
	err := chromedp.Cancel(s.ctx)
	s.cancelBrowser()
	s.cancelAllocator()
	return err
}

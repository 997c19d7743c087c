package rollcall

import (
	"context"
	"errors"
	"sync"
)

var (
	ErrNoChallengePending = errors.New("no captcha challenge is pending")
	ErrChallengeAbandoned = errors.New("the captcha challenge was abandoned")
)

// CaptchaPrompt is the rendezvous between the login flow, which blocks on
// an answer, and whatever resolves the challenge (terminal prompt, OCR,
// another goroutine). Each challenge is fulfilled exactly once through a
// single-slot channel, so nobody busy-polls shared state.
type CaptchaPrompt struct {
	mu      sync.Mutex
	pending chan string

	// OnChallenge, when set, is notified with the path of the rendered
	// CAPTCHA image every time a challenge opens.
	OnChallenge func(imagePath string)
}

// Challenge opens a challenge for the image at imagePath and blocks until
// someone fulfills it or the context ends.
func (p *CaptchaPrompt) Challenge(ctx context.Context, imagePath string) (string, error) {
	p.mu.Lock()
	answers := make(chan string, 1)
	p.pending = answers
	notify := p.OnChallenge
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		if p.pending == answers {
			p.pending = nil
		}
		p.mu.Unlock()
	}()

	if notify != nil {
		notify(imagePath)
	}

	select {
	case answer, ok := <-answers:
		if !ok {
			return "", ErrChallengeAbandoned
		}
		return answer, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Fulfill answers the pending challenge. It fails when no challenge is
// open, and a second fulfillment of the same challenge fails the same
// way.
func (p *CaptchaPrompt) Fulfill(answer string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.pending == nil {
		return ErrNoChallengePending
	}
	p.pending <- answer
	p.pending = nil
	return nil
}

// Abandon closes the pending challenge without an answer, unblocking the
// login flow with an error.
func (p *CaptchaPrompt) Abandon() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.pending != nil {
		close(p.pending)
		p.pending = nil
	}
}

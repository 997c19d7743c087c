package rollcall

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCaptchaPromptFulfill(t *testing.T) {
	prompt := &CaptchaPrompt{}

	notified := make(chan string, 1)
	prompt.OnChallenge = func(imagePath string) {
		notified <- imagePath
	}

	go func() {
		<-notified
		require.NoError(t, prompt.Fulfill("ABCD"))
	}()

	answer, err := prompt.Challenge(context.Background(), "/tmp/captcha.png")
	require.NoError(t, err)
	require.Equal(t, "ABCD", answer)
}

func TestCaptchaPromptFulfillWithoutChallenge(t *testing.T) {
	prompt := &CaptchaPrompt{}
	require.ErrorIs(t, prompt.Fulfill("ABCD"), ErrNoChallengePending)
}

func TestCaptchaPromptFulfillOnlyOnce(t *testing.T) {
	prompt := &CaptchaPrompt{}

	opened := make(chan struct{})
	prompt.OnChallenge = func(string) { close(opened) }

	done := make(chan error, 1)
	go func() {
		_, err := prompt.Challenge(context.Background(), "captcha.png")
		done <- err
	}()

	<-opened
	require.NoError(t, prompt.Fulfill("ABCD"))
	require.NoError(t, <-done)

	// the challenge is spent
	require.ErrorIs(t, prompt.Fulfill("EFGH"), ErrNoChallengePending)
}

func TestCaptchaPromptAbandon(t *testing.T) {
	prompt := &CaptchaPrompt{}

	opened := make(chan struct{})
	prompt.OnChallenge = func(string) { close(opened) }

	done := make(chan error, 1)
	go func() {
		_, err := prompt.Challenge(context.Background(), "captcha.png")
		done <- err
	}()

	<-opened
	prompt.Abandon()
	require.ErrorIs(t, <-done, ErrChallengeAbandoned)
}

func TestCaptchaPromptContextCanceled(t *testing.T) {
	prompt := &CaptchaPrompt{}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := prompt.Challenge(ctx, "captcha.png")
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

package commands

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"rollcall-backend/lib/serviceutil"
	"rollcall-backend/services/rollcall"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(runCmd)
}

// printStatuses drains the job's status stream to stdout, one timestamped
// line each, until the channel closes.
func printStatuses(status <-chan string) *sync.WaitGroup {
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for s := range status {
			fmt.Printf("%s  %s\n", time.Now().Format("15:04:05"), s)
		}
	}()
	return &wg
}

// attachTerminalPrompt answers CAPTCHA challenges by pointing the
// operator at the rendered image and reading a line from stdin.
func attachTerminalPrompt(prompt *rollcall.CaptchaPrompt) {
	stdin := bufio.NewReader(os.Stdin)
	prompt.OnChallenge = func(imagePath string) {
		go func() {
			fmt.Printf("驗證碼圖片：%s\n> ", imagePath)
			answer, err := stdin.ReadString('\n')
			if err != nil {
				prompt.Abandon()
				return
			}
			err = prompt.Fulfill(strings.TrimSpace(answer))
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
			}
		}()
	}
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Runs one roll call import job.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		history, closeHistory := openHistory()
		defer closeHistory()

		status := make(chan string, 64)
		prompt := &rollcall.CaptchaPrompt{}
		attachTerminalPrompt(prompt)

		service := rollcall.NewService(rollcall.ServiceOptions{
			Config:  cfg,
			Status:  status,
			Captcha: prompt,
			History: history,
		})
		runner := rollcall.NewRunner(service)

		wg := printStatuses(status)
		result, err := runner.Run(serviceutil.SignalContext())
		close(status)
		wg.Wait()

		if err != nil {
			serviceutil.Fatal("failed to start the job", err)
		}
		fmt.Println(result.Code.Message())
		if result.Code <= 0 {
			os.Exit(1)
		}
	},
}

package commands

import (
	"fmt"
	"os"

	"rollcall-backend/lib/serviceutil"
	"rollcall-backend/services/rollcall"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(loginCmd)
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Verifies the configured credentials by logging into the committee platform.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()

		status := make(chan string, 64)
		prompt := &rollcall.CaptchaPrompt{}
		attachTerminalPrompt(prompt)

		service := rollcall.NewService(rollcall.ServiceOptions{
			Config:  cfg,
			Status:  status,
			Captcha: prompt,
		})
		runner := rollcall.NewRunner(service)

		wg := printStatuses(status)
		result, err := runner.RunLogin(serviceutil.SignalContext())
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

package main

import (
	"context"
	"log/slog"
	"os"

	"rollcall-backend/cmd/rollcall-cli/commands"
	"rollcall-backend/lib/telemetry"
)

func main() {
	telemetry.InitSlog(false)

	ctx := context.Background()
	tel, err := telemetry.SetupFromEnv(ctx, "rollcall-cli")
	if err == nil {
		defer tel.Shutdown(ctx)
	} else if !os.IsNotExist(err) {
		slog.Warn("failed to set up telemetry", "err", err)
	}

	commands.ExecuteContext(ctx)
}

package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"llreminder/cmd/llreminder/commands"
	"llreminder/lib/osutil"
	"llreminder/lib/telemetry"
)

func main() {
	ctx, cancel := osutil.SignalContext(context.Background())

	telemetry.InitSlog(false)
	tel, err := telemetry.SetupFromEnv(ctx, "llreminder")
	if err != nil {
		osutil.Fatal("failed to setup telemetry", err)
	}

	code := commands.ExecuteContext(ctx)
	cancel()

	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	err = tel.Shutdown(shutdownCtx)
	if err != nil {
		slog.Warn("failed to flush telemetry", "err", err)
	}
	os.Exit(code)
}

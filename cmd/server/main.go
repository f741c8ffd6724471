package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/joho/godotenv/autoload"

	"bp-tracker-service/internal/app"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.InitializeApp(ctx)
	if err != nil {
		// No logger yet when wiring fails this early.
		os.Stderr.WriteString("failed to initialise application: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := application.Run(ctx); err != nil {
		application.Logger().Error(ctx, "server failed", "error", err)
		os.Exit(1)
	}
}

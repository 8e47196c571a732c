// Command loadtest exercises a running courtside instance with randomized
// traffic and prints the resulting leaderboard.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/okian/courtside/internal/loadtest"
	"github.com/okian/courtside/pkg/logger"
)

func main() {
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := loadtest.ParseFlags()
	if err := loadtest.Run(ctx, cfg); err != nil {
		logger.Get().Error(ctx, "load test failed", logger.Error(err))
		os.Exit(1)
	}
}

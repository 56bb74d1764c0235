package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/gnzdotmx/vidscribe/cmd"
	"github.com/gnzdotmx/vidscribe/internal/utils"
)

func init() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		utils.LogDebug("No .env file found - using environment variables")
	} else {
		utils.LogDebug("Loaded environment variables from .env file")
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cmd.Execute(ctx)
	stop()

	if err != nil {
		if !errors.Is(err, cmd.ErrReported) {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		}
		os.Exit(1)
	}
}

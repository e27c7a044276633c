package main

import (
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sunflowerskg/internal/config"
	"github.com/sunflowerskg/internal/console"
	"github.com/sunflowerskg/internal/logging"
)

const defaultAPIURL = "http://localhost:3000/api/v1"

func main() {
	if err := config.LoadDotEnv(); err != nil {
		logrus.Fatalf("failed to load .env: %v", err)
	}

	logger := logging.New(envOr("LOG_LEVEL", "warn"), "text", os.Stderr)

	cli := commandLine{
		session: console.New(envOr("SUNFLOWERS_API_URL", defaultAPIURL), 30*time.Second, logger),
		in:      os.Stdin,
		out:     os.Stdout,
		token:   os.Getenv("SUNFLOWERS_TOKEN"),
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.WithError(err).Error("command failed")
		}
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

package main

import (
	"os"

	"github.com/rs/zerolog/log"

	"github.com/mule-tools/mmc-deploy/cmd/mmc-deploy/root"
	_ "github.com/mule-tools/mmc-deploy/common/logger"
	"github.com/mule-tools/mmc-deploy/telemetry"
)

// This variable will be overridden by ldflags during build
// Example : go build -ldflags "-X main.AppVersion=1.0.0 -X main.PosthogAPIKey=<POSTHOG_API_KEY> -X main.SentryDsn=<SENTRY_DSN>"
var (
	AppVersion    string
	PosthogAPIKey string
	SentryDsn     string
)

func init() {
	// Set default app version in case not provided by ldflags
	if AppVersion == "" {
		AppVersion = "dev"
	}
	root.AppVersion = AppVersion
}

func main() {
	os.Exit(run())
}

func run() int {
	// Sentry initialization
	telemetry.SentryInit(SentryDsn, AppVersion)
	defer telemetry.SentryFlush()

	// Set logger sentry hook
	log.Logger = log.Logger.Hook(telemetry.SentryHook{})

	// Posthog Initialization
	telemetry.PosthogInit(PosthogAPIKey)
	defer telemetry.PosthogClose()

	telemetry.PosthogCaptureEvent(AppVersion, telemetry.RunningEvent, nil)

	if err := root.Execute(); err != nil {
		return 1
	}
	return 0
}

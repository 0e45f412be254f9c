package telemetry

import (
	"time"

	"github.com/denisbrodbeck/machineid"
	"github.com/posthog/posthog-go"
	"github.com/rs/zerolog/log"
)

const (
	RunningEvent   = "MMC Deploy Running"
	CompletedEvent = "MMC Deploy Completed"

	machineIDApp = "mmc-deploy"
)

var (
	posthogClient      posthog.Client
	posthogInitialized bool
)

// PosthogInit enables usage events. An empty key leaves them disabled.
func PosthogInit(posthogAPIKey string) {
	if posthogAPIKey == "" {
		return
	}
	posthogClient = posthog.New(posthogAPIKey)
	posthogInitialized = true
}

// PosthogCaptureEvent sends event with the CLI version and any extra
// properties. Credentials and URLs must never be passed in properties.
func PosthogCaptureEvent(appVersion, event string, properties map[string]interface{}) {
	if !posthogInitialized {
		return
	}

	// Obtain the machine ID
	machineID, err := machineid.ProtectedID(machineIDApp)
	if err != nil {
		log.Err(err).Msg("Cannot get machine id")
		return
	}

	props := posthog.NewProperties().Set("version", appVersion)
	for k, v := range properties {
		props.Set(k, v)
	}

	err = posthogClient.Enqueue(posthog.Capture{
		DistinctId: machineID,
		Timestamp:  time.Now(),
		Event:      event,
		Properties: props,
	})
	if err != nil {
		log.Err(err).Msg("Cannot capture event")
	}
}

func PosthogClose() {
	if posthogInitialized {
		err := posthogClient.Close()
		if err != nil {
			log.Err(err).Msg("Cannot close posthog client")
		}
		posthogInitialized = false
	}
}

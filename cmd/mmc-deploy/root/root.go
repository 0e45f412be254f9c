package root

import (
	"github.com/spf13/cobra"

	"github.com/mule-tools/mmc-deploy/common/config"
	"github.com/mule-tools/mmc-deploy/common/credential"
	"github.com/mule-tools/mmc-deploy/common/logger"
	"github.com/mule-tools/mmc-deploy/common/printer"
	"github.com/mule-tools/mmc-deploy/internal/clients/mmc"
	"github.com/mule-tools/mmc-deploy/internal/deploy"
	"github.com/mule-tools/mmc-deploy/telemetry"
)

var AppVersion string

// Dependencies are the collaborators commands reach outside the process
// through. Tests replace them with mocks.
type Dependencies struct {
	NewClient   deploy.ClientFactory
	Credentials credential.Store
	Events      EventRecorder
}

// EventRecorder receives usage events.
type EventRecorder func(event string, properties map[string]interface{})

func DefaultDependencies() Dependencies {
	return Dependencies{
		NewClient: func(apiEndpoint, username, password string) mmc.ClientInterface {
			return mmc.NewClient(apiEndpoint, username, password)
		},
		Credentials: credential.NewKeyring(),
		Events: func(event string, properties map[string]interface{}) {
			telemetry.PosthogCaptureEvent(AppVersion, event, properties)
		},
	}
}

// NewRootCmd builds the command tree.
// Usage: `mmc-deploy`
func NewRootCmd(deps Dependencies) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "mmc-deploy",
		Short: "Deploy Mule application archives through the Mule Management Console",
		Long: `Upload a packaged Mule application to a Mule Management Console repository,
create a deployment for a server group and start it.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			logger.SetDebugMode(cmd)
		},
	}

	// Enable case-insensitive commands
	cobra.EnableCaseInsensitive = true

	rootCmd.AddGroup(&cobra.Group{ID: "Core", Title: "Deployment Commands:"})
	rootCmd.AddCommand(
		newDeployCmd(deps),
		newLoginCmd(deps),
		newLogoutCmd(deps),
		newVersionCmd(),
	)

	config.AddConfigFlag(rootCmd)
	logger.AddLogFlag(rootCmd)

	return rootCmd
}

// Execute runs the CLI. The returned error has already been printed.
// This is called by main.main().
func Execute() error {
	rootCmd := NewRootCmd(DefaultDependencies())
	err := rootCmd.Execute()
	if err != nil {
		logger.Errors(err)
		printer.Errorln(err.Error())
	}
	// print log stack
	logger.PrintLogs()
	return err
}

package root

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/mule-tools/mmc-deploy/common/config"
	"github.com/mule-tools/mmc-deploy/common/credential"
	"github.com/mule-tools/mmc-deploy/common/logger"
	"github.com/mule-tools/mmc-deploy/common/printer"
	"github.com/mule-tools/mmc-deploy/internal/deploy"
	"github.com/mule-tools/mmc-deploy/telemetry"
)

const (
	flagName        = "name"
	flagVersion     = "version"
	flagUsername    = "username"
	flagPassword    = "password"
	flagOutputDir   = "output-dir"
	flagFinalName   = "final-name"
	flagAppName     = "app-name"
	flagAppDir      = "app-dir"
	flagAPIURL      = "api-url"
	flagServerGroup = "server-group"

	DefaultAppDir = "src/main/app"
)

type deployFlags struct {
	name        string
	version     string
	username    string
	password    string
	outputDir   string
	finalName   string
	appDir      string
	apiURL      string
	serverGroup string
}

// newDeployCmd uploads and deploys a packaged application.
// Usage: `mmc-deploy deploy --server-group prod --final-name orders-1.0`
func newDeployCmd(deps Dependencies) *cobra.Command {
	flags := &deployFlags{}

	cmd := &cobra.Command{
		Use:     "deploy",
		GroupID: "Core",
		Short:   "Upload the application archive and deploy it to a server group",
		Long: `Upload {output-dir}/{final-name}.zip to the console repository, create a
deployment for every server in --server-group and start it.

A version containing SNAPSHOT replaces an existing repository version of the
same name. Nothing is retried: a failed run may leave an uploaded version or
an untriggered deployment behind.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.GetConfig(cmd)
			if err != nil {
				return err
			}
			req := buildRequest(cmd, cfg, flags, deps.Credentials)
			return runDeploy(cmd, deps, req)
		},
	}

	f := cmd.Flags()
	f.StringVar(&flags.name, flagName, "", "name the application is deployed as (default \""+deploy.DefaultName+"\")")
	f.StringVar(&flags.version, flagVersion, "", "version to deploy (default: current timestamp)")
	f.StringVar(&flags.username, flagUsername, "", "console user")
	f.StringVar(&flags.password, flagPassword, "", "console password (prefer the keyring, see 'mmc-deploy login')")
	f.StringVar(&flags.outputDir, flagOutputDir, "", "directory containing the packaged archive")
	f.StringVar(&flags.finalName, flagFinalName, "", "archive file name without .zip (alias --"+flagAppName+")")
	f.StringVar(&flags.appDir, flagAppDir, DefaultAppDir, "directory containing mule-config.xml or mule-deploy.properties")
	f.StringVar(&flags.apiURL, flagAPIURL, "", "base URL of the console REST API")
	f.StringVar(&flags.serverGroup, flagServerGroup, "", "server group to deploy to")
	f.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		if name == flagAppName {
			name = flagFinalName
		}
		return pflag.NormalizedName(name)
	})

	return cmd
}

// buildRequest layers flags over the config file and environment. The
// keyring is consulted for the password last.
func buildRequest(cmd *cobra.Command, cfg *config.Config, flags *deployFlags, creds credential.Store) deploy.Request {
	pick := func(flag, flagValue, fallback string) string {
		if cmd.Flags().Changed(flag) {
			return flagValue
		}
		return fallback
	}

	req := deploy.Request{
		Name:            pick(flagName, flags.name, cfg.App.Name),
		Version:         pick(flagVersion, flags.version, cfg.App.Version),
		Username:        pick(flagUsername, flags.username, cfg.MMC.Username),
		Password:        pick(flagPassword, flags.password, cfg.MMC.Password),
		OutputDirectory: pick(flagOutputDir, flags.outputDir, cfg.App.OutputDir),
		ArchiveBaseName: pick(flagFinalName, flags.finalName, cfg.App.FinalName),
		AppDirectory:    pick(flagAppDir, flags.appDir, cfg.App.AppDir),
		APIEndpoint:     pick(flagAPIURL, flags.apiURL, cfg.MMC.APIURL),
		ServerGroup:     pick(flagServerGroup, flags.serverGroup, cfg.MMC.ServerGroup),
	}
	if req.AppDirectory == "" {
		req.AppDirectory = cfg.ResolvePath(flags.appDir)
	}
	if cfg.Source != "" {
		logger.Infof("using config file %s", cfg.Source)
	}

	if req.Password == "" && req.Username != "" && creds != nil {
		password, found, err := creds.Get(req.Username)
		switch {
		case err != nil:
			logger.Warnf("keyring lookup for %s failed: %s", req.Username, err)
		case found:
			logger.Debugf("using keyring password for %s", req.Username)
			req.Password = password
		}
	}
	return req
}

func runDeploy(cmd *cobra.Command, deps Dependencies, req deploy.Request) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	steps := newStepReporter(cmd.OutOrStdout(), cancel)
	deployer := deploy.NewDeployer(deps.NewClient, logger.Get(), deploy.WithProgress(steps.Step))

	result, err := deployer.Deploy(ctx, req)
	steps.Done()
	if err != nil {
		if result.DeploymentID != "" && !result.Triggered {
			printer.Warnln(fmt.Sprintf(
				"Deployment %s was created but not started; it is left on the console.", result.DeploymentID))
		}
		return err
	}

	resolved := result.Request
	printer.NewLine(1)
	printer.Headerln("Deployment summary")
	printer.Successf("Deployed %s %s to server group %s\n", resolved.Name, resolved.Version, resolved.ServerGroup)
	if result.DeletedVersionID != "" {
		printer.Infof("Replaced version:  %s\n", result.DeletedVersionID)
	}
	printer.Infof("Version ID:        %s\n", result.VersionID)
	printer.Infof("Deployment ID:     %s\n", result.DeploymentID)

	deps.Events(telemetry.CompletedEvent, map[string]interface{}{
		"snapshot":         resolved.IsSnapshot(),
		"replaced_version": result.DeletedVersionID != "",
	})
	return nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

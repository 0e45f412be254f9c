package deploy

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mule-tools/mmc-deploy/internal/clients/mmc"
)

// ClientFactory builds the MMC client for a validated request.
type ClientFactory func(apiEndpoint, username, password string) mmc.ClientInterface

// ProgressFunc is told about each remote step just before it starts.
type ProgressFunc func(op string, step, total int)

// Result describes what a run did on the remote side. On failure it still
// carries the identifiers obtained before the failing step, so a caller can
// report a deployment that was created but never triggered.
type Result struct {
	RunID            string
	Request          Request
	DeletedVersionID string
	VersionID        string
	DeploymentID     string
	Triggered        bool
}

type Deployer struct {
	newClient ClientFactory
	logger    zerolog.Logger
	now       func() time.Time
	newRunID  func() string
	progress  ProgressFunc
}

type Option func(*Deployer)

// WithClock overrides the time source used for default versions.
func WithClock(now func() time.Time) Option {
	return func(d *Deployer) {
		d.now = now
	}
}

func WithProgress(progress ProgressFunc) Option {
	return func(d *Deployer) {
		d.progress = progress
	}
}

// WithRunID overrides the run identifier generator.
func WithRunID(newRunID func() string) Option {
	return func(d *Deployer) {
		d.newRunID = newRunID
	}
}

func NewDeployer(newClient ClientFactory, logger zerolog.Logger, opts ...Option) *Deployer {
	d := &Deployer{
		newClient: newClient,
		logger:    logger,
		now:       time.Now,
		newRunID:  uuid.NewString,
		progress:  func(string, int, int) {},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Deploy normalizes and validates req, then uploads, creates and triggers the
// deployment. Any failure stops the run and is returned as *Error. Nothing
// is retried or rolled back.
func (d *Deployer) Deploy(ctx context.Context, req Request) (Result, error) {
	result := Result{RunID: d.newRunID()}
	log := d.logger.With().Str("run_id", result.RunID).Logger()

	resolved := Normalize(req, d.now())
	if req.Name == "" {
		log.Info().Msgf("Name is not set, using default %q", resolved.Name)
	}
	if req.Version == "" {
		log.Info().Msgf("Version is not set, using a default of the timestamp: %s", resolved.Version)
	}
	result.Request = resolved

	log = log.With().Str("name", resolved.Name).Str("version", resolved.Version).Logger()

	// failures are reported once, by the caller
	if err := Validate(resolved); err != nil {
		failure := toFailure(err)
		log.Debug().Str("kind", failure.Kind.String()).Msg(failure.Error())
		return result, failure
	}

	client := d.newClient(resolved.APIEndpoint, resolved.Username, resolved.Password)
	if err := d.run(ctx, client, resolved, &result, log); err != nil {
		failure := toFailure(err)
		log.Debug().
			Str("kind", failure.Kind.String()).
			Str("op", failure.Op).
			Msg(failure.Error())
		return result, failure
	}

	log.Info().
		Str("version_id", result.VersionID).
		Str("deployment_id", result.DeploymentID).
		Msg("deployment triggered")
	return result, nil
}

func (d *Deployer) run(
	ctx context.Context,
	client mmc.ClientInterface,
	req Request,
	result *Result,
	log zerolog.Logger,
) error {
	total := 3
	step := 0
	if req.IsSnapshot() {
		total = 4
	}
	next := func(op string) {
		step++
		d.progress(op, step, total)
	}

	if req.IsSnapshot() {
		next(OpReplace)
		versionID, found, err := client.LookupVersionID(ctx, req.Name, req.Version)
		if err != nil {
			return &stepError{op: OpLookup, err: err}
		}
		if found {
			log.Info().Str("version_id", versionID).Msg("About to remove existing snapshot version")
			if err = client.DeleteVersion(ctx, versionID); err != nil {
				return &stepError{op: OpDelete, err: err}
			}
			result.DeletedVersionID = versionID
		} else {
			log.Debug().Msg("no existing snapshot version to remove")
		}
	}

	next(OpUpload)
	versionID, err := client.UploadArchive(ctx, req.Name, req.Version, req.ArchivePath())
	if err != nil {
		return &stepError{op: OpUpload, err: err}
	}
	result.VersionID = versionID
	log.Debug().Str("version_id", versionID).Msg("archive uploaded")

	next(OpCreate)
	deploymentID, err := client.CreateDeployment(ctx, req.ServerGroup, req.Name, versionID)
	if err != nil {
		return &stepError{op: OpCreate, err: err}
	}
	result.DeploymentID = deploymentID
	log.Debug().Str("deployment_id", deploymentID).Msg("deployment created")

	next(OpTrigger)
	if err = client.TriggerDeployment(ctx, deploymentID); err != nil {
		return &stepError{op: OpTrigger, err: err}
	}
	result.Triggered = true
	return nil
}

package deploy

import (
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

const (
	// DefaultName is the application name used when none is configured.
	DefaultName = "MuleApplication"

	// VersionLayout formats the default version, e.g. 03-14-2025-09:26:53.
	VersionLayout = "01-02-2006-15:04:05"

	// SnapshotMarker marks a version as replaceable. Matching is a literal,
	// case-sensitive substring test.
	SnapshotMarker = "SNAPSHOT"

	ArchiveExtension     = ".zip"
	MuleConfigFile       = "mule-config.xml"
	DeployDescriptorFile = "mule-deploy.properties"
)

// Request describes one deployment run. Build it, pass it through Normalize,
// and treat it as read-only afterwards.
type Request struct {
	Name            string
	Version         string
	Username        string
	Password        string
	OutputDirectory string
	ArchiveBaseName string
	AppDirectory    string
	APIEndpoint     string
	ServerGroup     string
}

// Normalize fills in the default name and a timestamp version. It returns a
// copy and never fails.
func Normalize(req Request, now time.Time) Request {
	if req.Name == "" {
		req.Name = DefaultName
	}
	if req.Version == "" {
		req.Version = now.Format(VersionLayout)
	}
	return req
}

// ArchivePath is where the packaged application is expected.
func (r Request) ArchivePath() string {
	return filepath.Join(r.OutputDirectory, r.ArchiveBaseName+ArchiveExtension)
}

// IsSnapshot reports whether an existing remote copy of this version should
// be replaced.
func (r Request) IsSnapshot() bool {
	return strings.Contains(r.Version, SnapshotMarker)
}

// Validate checks a normalized request without touching the network. The
// first failing check wins; the order is fixed.
func Validate(req Request) error {
	if req.Username == "" {
		return configurationError("Username not set.")
	}
	if req.Password == "" {
		return configurationError("Password not set.")
	}
	if req.OutputDirectory == "" {
		return configurationError("outputDirectory not set.")
	}
	if req.ArchiveBaseName == "" {
		return configurationError("finalName not set.")
	}
	if req.ServerGroup == "" {
		return configurationError("serverGroup not set.")
	}
	if req.APIEndpoint == "" {
		return configurationError("muleApiUrl not set.")
	}
	if err := validateEndpoint(req.APIEndpoint); err != nil {
		return &Error{Kind: KindConfiguration, Op: OpValidate, Err: err}
	}

	if err := checkArchive(req.ArchivePath()); err != nil {
		return &Error{Kind: KindPrecondition, Op: OpValidate, Err: err}
	}
	if err := checkAppDirectory(req.AppDirectory); err != nil {
		return &Error{Kind: KindPrecondition, Op: OpValidate, Err: err}
	}
	return nil
}

func validateEndpoint(endpoint string) error {
	u, err := url.Parse(endpoint)
	if err != nil {
		return eris.Wrap(err, "muleApiUrl is not a valid URL")
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return eris.Errorf("muleApiUrl is not a valid URL: %q", endpoint)
	}
	return nil
}

func checkArchive(path string) error {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return eris.Errorf(
			"There is no application ZIP file generated at %s: run the packaging step first", path)
	}
	return nil
}

func checkAppDirectory(dir string) error {
	for _, marker := range []string{MuleConfigFile, DeployDescriptorFile} {
		if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
			return nil
		}
	}
	return eris.Errorf("No %s or %s in %q", MuleConfigFile, DeployDescriptorFile, dir)
}

func configurationError(msg string) *Error {
	return &Error{Kind: KindConfiguration, Op: OpValidate, Err: eris.New(msg)}
}

package mmc

import (
	"context"
	"net/http"
)

// Client talks to the Mule Management Console REST API.
type Client struct {
	BaseURL    string
	Username   string
	Password   string
	HTTPClient HTTPClientInterface
}

// ClientInterface is the set of MMC operations a deployment run needs.
type ClientInterface interface {
	// LookupVersionID finds the repository version of application name.
	// found is false, with a nil error, when no such version exists.
	LookupVersionID(ctx context.Context, name, version string) (versionID string, found bool, err error)
	DeleteVersion(ctx context.Context, versionID string) error
	UploadArchive(ctx context.Context, name, version, archivePath string) (string, error)
	CreateDeployment(ctx context.Context, serverGroup, name, versionID string) (string, error)
	TriggerDeployment(ctx context.Context, deploymentID string) error
}

// HTTPClientInterface allows for mocking the underlying HTTP client.
type HTTPClientInterface interface {
	Do(req *http.Request) (*http.Response, error)
}

// RequestConfig holds configuration for individual requests.
type RequestConfig struct {
	ContentType string
	Accept      string
}

// Application is an entry of the MMC repository listing.
type Application struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Versions []Version `json:"versions"`
}

// Version is one uploaded archive of an Application.
type Version struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type ServerGroup struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Server struct {
	ID     string        `json:"id"`
	Name   string        `json:"name"`
	Groups []ServerGroup `json:"groups"`
}

// DeploymentPayload is the body of POST /deployments.
type DeploymentPayload struct {
	Name         string   `json:"name"`
	Servers      []string `json:"servers"`
	Applications []string `json:"applications"`
}

package mmc

import (
	"context"
	"net/http"

	"github.com/stretchr/testify/mock"
)

// Ensure MockClient implements the interface.
var _ ClientInterface = (*MockClient)(nil)

// MockClient is a mock implementation of ClientInterface.
type MockClient struct {
	mock.Mock
}

func (m *MockClient) LookupVersionID(ctx context.Context, name, version string) (string, bool, error) {
	args := m.Called(ctx, name, version)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *MockClient) DeleteVersion(ctx context.Context, versionID string) error {
	args := m.Called(ctx, versionID)
	return args.Error(0)
}

func (m *MockClient) UploadArchive(ctx context.Context, name, version, archivePath string) (string, error) {
	args := m.Called(ctx, name, version, archivePath)
	return args.String(0), args.Error(1)
}

func (m *MockClient) CreateDeployment(ctx context.Context, serverGroup, name, versionID string) (string, error) {
	args := m.Called(ctx, serverGroup, name, versionID)
	return args.String(0), args.Error(1)
}

func (m *MockClient) TriggerDeployment(ctx context.Context, deploymentID string) error {
	args := m.Called(ctx, deploymentID)
	return args.Error(0)
}

// MockHTTPClient is a mock implementation of HTTPClientInterface for testing.
type MockHTTPClient struct {
	mock.Mock
}

func (m *MockHTTPClient) Do(req *http.Request) (*http.Response, error) {
	args := m.Called(req)
	if resp, ok := args.Get(0).(*http.Response); ok {
		return resp, args.Error(1)
	}
	return nil, args.Error(1)
}

package mmc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/tidwall/gjson"
)

const (
	get  = http.MethodGet
	post = http.MethodPost
	del  = http.MethodDelete
)

var (
	ErrNoApplicationName  = eris.New("application name is required")
	ErrNoVersion          = eris.New("application version is required")
	ErrNoVersionID        = eris.New("version ID is required")
	ErrNoDeploymentID     = eris.New("deployment ID is required")
	ErrNoServerGroup      = eris.New("server group is required")
	ErrNoArchivePath      = eris.New("archive path is required")
	ErrServerGroupMissing = eris.New("server group not found")
	ErrNoServersInGroup   = eris.New("server group has no servers")
)

// LookupVersionID scans the repository for version of application name.
func (c *Client) LookupVersionID(ctx context.Context, name, version string) (string, bool, error) {
	if name == "" {
		return "", false, ErrNoApplicationName
	}
	if version == "" {
		return "", false, ErrNoVersion
	}

	body, err := c.sendRequest(ctx, get, "/repository", nil)
	if err != nil {
		return "", false, eris.Wrap(err, "Failed to list repository")
	}

	apps, err := parseResponse[[]Application](body)
	if err != nil {
		return "", false, eris.Wrap(err, "Failed to parse repository listing")
	}

	for _, app := range apps {
		if app.Name != name {
			continue
		}
		for _, v := range app.Versions {
			if v.Name == version {
				return v.ID, true, nil
			}
		}
	}
	return "", false, nil
}

// DeleteVersion removes an uploaded version from the repository.
func (c *Client) DeleteVersion(ctx context.Context, versionID string) error {
	if versionID == "" {
		return ErrNoVersionID
	}

	endpoint := "/repository/" + url.PathEscape(versionID)
	if _, err := c.sendRequest(ctx, del, endpoint, nil); err != nil {
		return eris.Wrapf(err, "Failed to delete version %s", versionID)
	}
	return nil
}

// UploadArchive uploads the zip at archivePath as version of application name
// and returns the new repository version ID.
func (c *Client) UploadArchive(ctx context.Context, name, version, archivePath string) (string, error) {
	if name == "" {
		return "", ErrNoApplicationName
	}
	if version == "" {
		return "", ErrNoVersion
	}
	if archivePath == "" {
		return "", ErrNoArchivePath
	}

	archive, err := os.Open(archivePath)
	if err != nil {
		return "", eris.Wrap(err, "Failed to open archive")
	}
	defer archive.Close()

	/* create multipart request */
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	if err = writer.WriteField("name", name); err != nil {
		return "", eris.Wrap(err, "Failed to write name")
	}
	if err = writer.WriteField("version", version); err != nil {
		return "", eris.Wrap(err, "Failed to write version")
	}
	part, err := writer.CreateFormFile("file", filepath.Base(archivePath))
	if err != nil {
		return "", eris.Wrap(err, "Failed to create form file")
	}
	if _, err = io.Copy(part, archive); err != nil {
		return "", eris.Wrap(err, "Failed to copy archive to request")
	}
	if err = writer.Close(); err != nil {
		return "", eris.Wrap(err, "Failed to finish multipart body")
	}
	/* end of multipart request */

	req, err := c.prepareRequest(ctx, post, "/repository", nil)
	if err != nil {
		return "", eris.Wrap(err, "Failed to create request")
	}
	// Override body and content type for multipart
	req.Body = io.NopCloser(body)
	req.ContentLength = int64(body.Len())
	req.Header.Set("Content-Type", writer.FormDataContentType())

	result, err := c.doRequest(req)
	if err != nil {
		return "", eris.Wrap(err, "Failed to upload archive")
	}

	versionID := gjson.GetBytes(result, "versionId").String()
	if versionID == "" {
		return "", eris.Wrap(ErrNoVersionID, "upload response has no versionId")
	}
	return versionID, nil
}

// CreateDeployment registers a deployment of versionID on every server of
// serverGroup and returns the deployment ID. The deployment is not started.
func (c *Client) CreateDeployment(ctx context.Context, serverGroup, name, versionID string) (string, error) {
	if serverGroup == "" {
		return "", ErrNoServerGroup
	}
	if name == "" {
		return "", ErrNoApplicationName
	}
	if versionID == "" {
		return "", ErrNoVersionID
	}

	groupID, err := c.getServerGroupID(ctx, serverGroup)
	if err != nil {
		return "", err
	}
	serverIDs, err := c.getServerIDs(ctx, groupID)
	if err != nil {
		return "", err
	}
	if len(serverIDs) == 0 {
		return "", eris.Wrapf(ErrNoServersInGroup, "group %q", serverGroup)
	}

	payload := DeploymentPayload{
		Name:         name,
		Servers:      serverIDs,
		Applications: []string{versionID},
	}
	result, err := c.sendRequest(ctx, post, "/deployments", payload)
	if err != nil {
		return "", eris.Wrap(err, "Failed to create deployment")
	}

	deploymentID := gjson.GetBytes(result, "id").String()
	if deploymentID == "" {
		return "", eris.Wrap(ErrNoDeploymentID, "create deployment response has no id")
	}
	return deploymentID, nil
}

// TriggerDeployment starts a previously created deployment.
func (c *Client) TriggerDeployment(ctx context.Context, deploymentID string) error {
	if deploymentID == "" {
		return ErrNoDeploymentID
	}

	endpoint := fmt.Sprintf("/deployments/%s/deploy", url.PathEscape(deploymentID))
	if _, err := c.sendRequest(ctx, post, endpoint, nil); err != nil {
		return eris.Wrapf(err, "Failed to trigger deployment %s", deploymentID)
	}
	return nil
}

func (c *Client) getServerGroupID(ctx context.Context, serverGroup string) (string, error) {
	body, err := c.sendRequest(ctx, get, "/serverGroups", nil)
	if err != nil {
		return "", eris.Wrap(err, "Failed to list server groups")
	}

	groups, err := parseResponse[[]ServerGroup](body)
	if err != nil {
		return "", eris.Wrap(err, "Failed to parse server groups")
	}
	for _, g := range groups {
		if g.Name == serverGroup {
			return g.ID, nil
		}
	}
	return "", eris.Wrapf(ErrServerGroupMissing, "group %q", serverGroup)
}

func (c *Client) getServerIDs(ctx context.Context, groupID string) ([]string, error) {
	query := url.Values{"groupId": []string{groupID}}
	body, err := c.sendRequest(ctx, get, "/servers?"+query.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "Failed to list servers")
	}

	servers, err := parseResponse[[]Server](body)
	if err != nil {
		return nil, eris.Wrap(err, "Failed to parse servers")
	}
	ids := make([]string, 0, len(servers))
	for _, s := range servers {
		// older consoles ignore the groupId filter and list every server
		if len(s.Groups) > 0 && !s.inGroup(groupID) {
			continue
		}
		ids = append(ids, s.ID)
	}
	return ids, nil
}

func (s Server) inGroup(groupID string) bool {
	for _, g := range s.Groups {
		if g.ID == groupID {
			return true
		}
	}
	return false
}

// parseResponse decodes the "data" member of an MMC listing.
func parseResponse[T any](body []byte) (T, error) {
	result := gjson.GetBytes(body, "data")
	if !result.Exists() {
		return *new(T), eris.New("Missing data field in response")
	}

	var data T
	if err := json.Unmarshal([]byte(result.Raw), &data); err != nil {
		return *new(T), eris.Wrap(err, "Failed to parse response")
	}

	return data, nil
}

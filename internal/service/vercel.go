package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"gosovereign-backend/internal/config"
	apperrors "gosovereign-backend/internal/errors"
	"gosovereign-backend/internal/logger"
)

const defaultVercelBaseURL = "https://api.vercel.com"

// Env var visibility classes accepted by the hosting provider
const (
	EnvTypePlain  = "plain"
	EnvTypeSecret = "encrypted"
)

// EnvVar is one key/value/visibility-class triple injected into a hosting project
type EnvVar struct {
	Key    string   `json:"key"`
	Value  string   `json:"value"`
	Type   string   `json:"type"`
	Target []string `json:"target"`
}

// VercelProject is the subset of the provider's project record this system reads
type VercelProject struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Framework string `json:"framework"`
}

// VercelDeployment is the subset of the provider's deployment record this system reads
type VercelDeployment struct {
	ID         string `json:"id"`
	URL        string `json:"url"`
	ReadyState string `json:"readyState"`
}

// VercelDomain is the provider's record for a domain attached to a project
type VercelDomain struct {
	Name     string `json:"name"`
	Verified bool   `json:"verified"`
	// Status is set by the domain service for domains the provider has no
	// record of yet; the provider itself never returns it.
	Status string `json:"status,omitempty"`
}

// CreateProjectRequest describes a new hosting project bound to a template repository
type CreateProjectRequest struct {
	Name            string
	TemplateRepo    string
	Framework       string
	BuildCommand    string
	OutputDirectory string
}

// CreateDeploymentRequest triggers a build+deploy from a project's bound repository
type CreateDeploymentRequest struct {
	ProjectName string
	RepoID      int64
	Ref         string
	Target      string
}

// vercelErrorBody is the provider's error envelope
type vercelErrorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// VercelClient talks to a Vercel-compatible hosting API with platform-owned
// credentials. All responses are decoded into explicit schemas at the
// boundary; callers never touch untyped provider JSON.
type VercelClient struct {
	token      string
	teamID     string
	baseURL    string
	httpClient *http.Client
}

// NewVercelClient creates a new hosting provider client
func NewVercelClient(cfg *config.Config) *VercelClient {
	return &VercelClient{
		token:      cfg.VercelToken,
		teamID:     cfg.VercelTeamID,
		baseURL:    defaultVercelBaseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// endpoint builds a full API URL with the optional team scope
func (c *VercelClient) endpoint(path string) string {
	u := c.baseURL + path
	if c.teamID != "" {
		sep := "?"
		if strings.Contains(u, "?") {
			sep = "&"
		}
		u += sep + "teamId=" + url.QueryEscape(c.teamID)
	}
	return u
}

// doJSON performs an authenticated request and decodes the response into out.
// Non-2xx responses are returned as ProviderError carrying the provider's
// code and message.
func (c *VercelClient) doJSON(ctx context.Context, method, path string, body interface{}, stage string, out interface{}) error {
	log := logger.WithContext(ctx)

	if c.token == "" {
		return apperrors.ErrVercelTokenNotSet
	}

	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path), reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	log.Debugf("Hosting API request: %s %s", method, path)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		var errBody vercelErrorBody
		_ = json.Unmarshal(raw, &errBody)

		code := errBody.Error.Code
		message := errBody.Error.Message
		if message == "" {
			message = fmt.Sprintf("status %d", resp.StatusCode)
		}
		if resp.StatusCode == http.StatusNotFound && code == "" {
			code = "not_found"
		}

		log.Errorf("Hosting API request failed: %s %s status=%d code=%s", method, path, resp.StatusCode, code)
		return &apperrors.ProviderError{
			Stage:   stage,
			Message: fmt.Sprintf("hosting provider request failed (%s)", stage),
			Detail:  message,
			Code:    code,
		}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode %s response: %w", stage, err)
		}
	}

	return nil
}

// GetProjectByName looks a project up by its exact name. Returns
// ErrProjectNotFound when the provider reports 404.
func (c *VercelClient) GetProjectByName(ctx context.Context, name string) (*VercelProject, error) {
	var project VercelProject
	err := c.doJSON(ctx, http.MethodGet, "/v9/projects/"+url.PathEscape(name), nil, "project_lookup", &project)
	if err != nil {
		if provErr, ok := apperrors.AsProvider(err); ok && provErr.Code == "not_found" {
			return nil, apperrors.ErrProjectNotFound
		}
		return nil, err
	}
	return &project, nil
}

// CreateProject creates a hosting project bound to a template repository
func (c *VercelClient) CreateProject(ctx context.Context, req CreateProjectRequest) (*VercelProject, error) {
	body := map[string]interface{}{
		"name":            req.Name,
		"framework":       req.Framework,
		"buildCommand":    req.BuildCommand,
		"outputDirectory": req.OutputDirectory,
		"gitRepository": map[string]string{
			"type": "github",
			"repo": req.TemplateRepo,
		},
	}

	var project VercelProject
	if err := c.doJSON(ctx, http.MethodPost, "/v10/projects", body, "project_create", &project); err != nil {
		return nil, err
	}
	return &project, nil
}

// UpsertEnv replaces or creates the given environment variables on a project
func (c *VercelClient) UpsertEnv(ctx context.Context, projectID string, vars []EnvVar) error {
	path := "/v10/projects/" + url.PathEscape(projectID) + "/env?upsert=true"
	return c.doJSON(ctx, http.MethodPost, path, vars, "env_upsert", nil)
}

// CreateDeployment triggers a production build+deploy of a project from its
// bound repository's default branch
func (c *VercelClient) CreateDeployment(ctx context.Context, req CreateDeploymentRequest) (*VercelDeployment, error) {
	body := map[string]interface{}{
		"name":   req.ProjectName,
		"target": req.Target,
		"gitSource": map[string]interface{}{
			"type":   "github",
			"repoId": req.RepoID,
			"ref":    req.Ref,
		},
	}

	var deployment VercelDeployment
	if err := c.doJSON(ctx, http.MethodPost, "/v13/deployments", body, "deployment_create", &deployment); err != nil {
		return nil, err
	}
	return &deployment, nil
}

// GetDeployment fetches the current state of a deployment
func (c *VercelClient) GetDeployment(ctx context.Context, deploymentID string) (*VercelDeployment, error) {
	var deployment VercelDeployment
	err := c.doJSON(ctx, http.MethodGet, "/v13/deployments/"+url.PathEscape(deploymentID), nil, "deployment_status", &deployment)
	if err != nil {
		return nil, err
	}
	return &deployment, nil
}

// AddProjectDomain attaches a domain to a project. Provider error codes are
// preserved on the returned ProviderError so callers can distinguish
// already-attached from in-use-elsewhere.
func (c *VercelClient) AddProjectDomain(ctx context.Context, projectID, domain string) (*VercelDomain, error) {
	path := "/v10/projects/" + url.PathEscape(projectID) + "/domains"
	body := map[string]string{"name": domain}

	var result VercelDomain
	if err := c.doJSON(ctx, http.MethodPost, path, body, "domain_add", &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetProjectDomain fetches a domain's record on a project. Returns
// ErrDomainNotFound when the provider reports 404.
func (c *VercelClient) GetProjectDomain(ctx context.Context, projectID, domain string) (*VercelDomain, error) {
	path := "/v9/projects/" + url.PathEscape(projectID) + "/domains/" + url.PathEscape(domain)

	var result VercelDomain
	err := c.doJSON(ctx, http.MethodGet, path, nil, "domain_get", &result)
	if err != nil {
		if provErr, ok := apperrors.AsProvider(err); ok && provErr.Code == "not_found" {
			return nil, apperrors.ErrDomainNotFound
		}
		return nil, err
	}
	return &result, nil
}

// RemoveProjectDomain detaches a domain from a project. Deletion is
// idempotent: a 404 from the provider is success.
func (c *VercelClient) RemoveProjectDomain(ctx context.Context, projectID, domain string) error {
	path := "/v9/projects/" + url.PathEscape(projectID) + "/domains/" + url.PathEscape(domain)

	err := c.doJSON(ctx, http.MethodDelete, path, nil, "domain_remove", nil)
	if err != nil {
		if provErr, ok := apperrors.AsProvider(err); ok && provErr.Code == "not_found" {
			return nil
		}
		return err
	}
	return nil
}

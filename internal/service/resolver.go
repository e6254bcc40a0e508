package service

import (
	"context"
	"fmt"

	"gosovereign-backend/internal/config"
	"gosovereign-backend/internal/database/models"
	apperrors "gosovereign-backend/internal/errors"
	"gosovereign-backend/internal/logger"
)

// ProjectResolver finds or creates the hosting project backing a store. The
// project is named after the store subdomain, so resolution is idempotent:
// redeploys reuse the existing project instead of creating duplicates.
type ProjectResolver struct {
	cfg     *config.Config
	hosting HostingClient
}

// NewProjectResolver creates a new hosting project resolver
func NewProjectResolver(cfg *config.Config, hosting HostingClient) *ProjectResolver {
	return &ProjectResolver{
		cfg:     cfg,
		hosting: hosting,
	}
}

// TemplateRepo returns the owner/name template repository for a store's kind,
// falling back to the configured default for unknown kinds.
func (r *ProjectResolver) TemplateRepo(kind models.TemplateKind) string {
	switch kind {
	case models.TemplateKindGoods:
		return r.cfg.TemplateRepoGoods
	case models.TemplateKindServices:
		return r.cfg.TemplateRepoServices
	case models.TemplateKindBrochure:
		return r.cfg.TemplateRepoBrochure
	default:
		return r.cfg.TemplateRepoDefault
	}
}

// Resolve returns the hosting project for the store, creating it from the
// store's template repository when it does not exist yet.
func (r *ProjectResolver) Resolve(ctx context.Context, store *models.Store) (*VercelProject, error) {
	log := logger.WithContext(ctx)

	project, err := r.hosting.GetProjectByName(ctx, store.Subdomain)
	if err == nil {
		log.WithField("project_id", project.ID).Debug("Reusing existing hosting project")
		return project, nil
	}
	if !apperrors.IsNotFound(err) {
		return nil, fmt.Errorf("failed to look up hosting project %s: %w", store.Subdomain, err)
	}

	templateRepo := r.TemplateRepo(store.TemplateKind)
	log.WithFields(map[string]interface{}{
		"project_name":  store.Subdomain,
		"template_repo": templateRepo,
	}).Info("Creating hosting project")

	project, err = r.hosting.CreateProject(ctx, CreateProjectRequest{
		Name:            store.Subdomain,
		TemplateRepo:    templateRepo,
		Framework:       "nextjs",
		BuildCommand:    "npm run build",
		OutputDirectory: ".next",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create hosting project %s: %w", store.Subdomain, err)
	}

	return project, nil
}

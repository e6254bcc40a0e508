package service

import (
	"context"
	"crypto/subtle"
	"fmt"
	"regexp"
	"strings"

	"gosovereign-backend/internal/config"
	"gosovereign-backend/internal/database/models"
	apperrors "gosovereign-backend/internal/errors"
	"gosovereign-backend/internal/logger"
	"gosovereign-backend/internal/repository"
)

// hostnameRegex accepts lowercase DNS hostnames with at least one dot and an
// alphabetic TLD. Deliberately stricter than RFC 1123: no underscores, no
// trailing dot, no IP literals.
var hostnameRegex = regexp.MustCompile(`^(?:[a-z0-9](?:[a-z0-9-]{0,61}[a-z0-9])?\.)+[a-z]{2,}$`)

// Provider error codes for domain attachment conflicts
const (
	domainCodeAlreadyInUse  = "domain_already_in_use"
	domainCodeAlreadyExists = "domain_already_exists"
)

// DomainService manages the domain aliases attached to a store's hosting
// project: the platform subdomain alias added during every deploy, and
// owner-managed custom domains.
type DomainService struct {
	cfg       *config.Config
	hosting   HostingClient
	storeRepo repository.StoreRepositoryInterface
}

// NewDomainService creates a new domain service
func NewDomainService(cfg *config.Config, hosting HostingClient, storeRepo repository.StoreRepositoryInterface) *DomainService {
	return &DomainService{
		cfg:       cfg,
		hosting:   hosting,
		storeRepo: storeRepo,
	}
}

// PlatformAlias returns the store's platform subdomain alias
func (s *DomainService) PlatformAlias(store *models.Store) string {
	return fmt.Sprintf("%s.%s", store.Subdomain, s.cfg.PlatformDomain)
}

// EnsureSubdomainAlias attaches the platform subdomain alias to the store's
// hosting project. Both already-exists and already-in-use provider conflicts
// are success here: the alias survives across redeploys, so a re-run must not
// fail just because a prior attempt attached it. Hard conflict handling is
// reserved for the custom-domain path.
func (s *DomainService) EnsureSubdomainAlias(ctx context.Context, store *models.Store, projectID string) (string, error) {
	alias := s.PlatformAlias(store)

	_, err := s.hosting.AddProjectDomain(ctx, projectID, alias)
	if err != nil {
		if provErr, ok := apperrors.AsProvider(err); ok &&
			(provErr.Code == domainCodeAlreadyExists || provErr.Code == domainCodeAlreadyInUse) {
			logger.WithContext(ctx).WithField("domain", alias).Debug("Subdomain alias already attached")
			return alias, nil
		}
		return "", fmt.Errorf("failed to attach subdomain alias %s: %w", alias, err)
	}

	return alias, nil
}

// AuthorizeStoreAdmin checks the bearer credential presented on domain
// management endpoints against the store's derived admin password. The store
// must already have a hosting project.
func (s *DomainService) AuthorizeStoreAdmin(store *models.Store, bearerToken string) error {
	if store.VercelProjectID == "" {
		return apperrors.ErrStoreNotDeployed
	}
	expected := DerivedAdminPassword(store.ID)
	if subtle.ConstantTimeCompare([]byte(bearerToken), []byte(expected)) != 1 {
		return apperrors.NewAuthenticationError("invalid store admin credential")
	}
	return nil
}

// VerifyDomain fetches one domain's current verification state from the
// provider. A domain the provider has no record of yet is reported as not yet
// added, not as an error.
func (s *DomainService) VerifyDomain(ctx context.Context, store *models.Store, domain string) (*VercelDomain, error) {
	domain = strings.ToLower(strings.TrimSpace(domain))
	if !hostnameRegex.MatchString(domain) {
		return nil, apperrors.ErrInvalidDomainName
	}

	result, err := s.hosting.GetProjectDomain(ctx, store.VercelProjectID, domain)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return &VercelDomain{Name: domain, Status: "not_yet_added"}, nil
		}
		return nil, err
	}
	return result, nil
}

// ListDomains returns every domain attached to the store: the platform alias
// plus the custom domain when one is configured, each with its current
// verification state from the provider.
func (s *DomainService) ListDomains(ctx context.Context, store *models.Store) ([]VercelDomain, error) {
	names := []string{s.PlatformAlias(store)}
	if store.CustomDomain != "" {
		names = append(names, store.CustomDomain)
	}

	domains := make([]VercelDomain, 0, len(names))
	for _, name := range names {
		domain, err := s.hosting.GetProjectDomain(ctx, store.VercelProjectID, name)
		if err != nil {
			if apperrors.IsNotFound(err) {
				continue
			}
			return nil, err
		}
		domains = append(domains, *domain)
	}
	return domains, nil
}

// AddCustomDomain validates and attaches a custom domain to the store's
// hosting project and records it on the store. A domain held by another
// project is rejected as a conflict.
func (s *DomainService) AddCustomDomain(ctx context.Context, store *models.Store, domain string) (*VercelDomain, error) {
	domain = strings.ToLower(strings.TrimSpace(domain))
	if !hostnameRegex.MatchString(domain) {
		return nil, apperrors.ErrInvalidDomainName
	}
	if domain == s.PlatformAlias(store) || strings.HasSuffix(domain, "."+s.cfg.PlatformDomain) {
		return nil, apperrors.NewValidationError("domain", "platform subdomains cannot be added as custom domains")
	}

	result, err := s.hosting.AddProjectDomain(ctx, store.VercelProjectID, domain)
	if err != nil {
		if provErr, ok := apperrors.AsProvider(err); ok {
			switch provErr.Code {
			case domainCodeAlreadyExists:
				// Already on this project; fall through to persisting it
				result = &VercelDomain{Name: domain}
			case domainCodeAlreadyInUse:
				return nil, apperrors.ErrDomainInUse
			default:
				return nil, err
			}
		} else {
			return nil, err
		}
	}

	if err := s.storeRepo.UpdateFields(store.ID, map[string]interface{}{"custom_domain": domain}); err != nil {
		return nil, fmt.Errorf("failed to record custom domain: %w", err)
	}
	store.CustomDomain = domain

	logger.WithContext(ctx).WithFields(map[string]interface{}{
		"store_id": store.ID,
		"domain":   domain,
	}).Info("Custom domain attached")

	return result, nil
}

// RemoveCustomDomain detaches the store's custom domain from its hosting
// project and clears it from the store record. The platform subdomain alias
// cannot be removed.
func (s *DomainService) RemoveCustomDomain(ctx context.Context, store *models.Store, domain string) error {
	domain = strings.ToLower(strings.TrimSpace(domain))
	if domain == s.PlatformAlias(store) {
		return apperrors.NewValidationError("domain", "the platform subdomain alias cannot be removed")
	}
	if store.CustomDomain == "" || domain != store.CustomDomain {
		return apperrors.ErrDomainNotFound
	}

	if err := s.hosting.RemoveProjectDomain(ctx, store.VercelProjectID, domain); err != nil {
		return fmt.Errorf("failed to detach custom domain %s: %w", domain, err)
	}

	if err := s.storeRepo.UpdateFields(store.ID, map[string]interface{}{"custom_domain": ""}); err != nil {
		return fmt.Errorf("failed to clear custom domain: %w", err)
	}
	store.CustomDomain = ""

	logger.WithContext(ctx).WithFields(map[string]interface{}{
		"store_id": store.ID,
		"domain":   domain,
	}).Info("Custom domain removed")

	return nil
}

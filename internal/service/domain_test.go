package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gosovereign-backend/internal/config"
	"gosovereign-backend/internal/database/models"
	apperrors "gosovereign-backend/internal/errors"
)

func domainCfg() *config.Config {
	return &config.Config{PlatformDomain: "gosovereign.app"}
}

func domainTestStore() *models.Store {
	return &models.Store{
		BaseModel:       models.BaseModel{ID: uuid.New()},
		Subdomain:       "acme",
		VercelProjectID: "prj_123",
	}
}

func providerDomainErr(code string) error {
	return &apperrors.ProviderError{Stage: "domain_add", Message: "hosting provider request failed (domain_add)", Code: code}
}

func TestEnsureSubdomainAlias_Attached(t *testing.T) {
	hosting := &mockHostingClient{
		AddProjectDomainFunc: func(ctx context.Context, projectID, domain string) (*VercelDomain, error) {
			assert.Equal(t, "prj_123", projectID)
			assert.Equal(t, "acme.gosovereign.app", domain)
			return &VercelDomain{Name: domain}, nil
		},
	}
	svc := NewDomainService(domainCfg(), hosting, newMockStoreRepo())

	alias, err := svc.EnsureSubdomainAlias(context.Background(), domainTestStore(), "prj_123")
	require.NoError(t, err)
	assert.Equal(t, "acme.gosovereign.app", alias)
}

func TestEnsureSubdomainAlias_AlreadyOnProjectIsSuccess(t *testing.T) {
	hosting := &mockHostingClient{
		AddProjectDomainFunc: func(ctx context.Context, projectID, domain string) (*VercelDomain, error) {
			return nil, providerDomainErr("domain_already_exists")
		},
	}
	svc := NewDomainService(domainCfg(), hosting, newMockStoreRepo())

	alias, err := svc.EnsureSubdomainAlias(context.Background(), domainTestStore(), "prj_123")
	require.NoError(t, err)
	assert.Equal(t, "acme.gosovereign.app", alias)
}

func TestEnsureSubdomainAlias_InUseConflictIsSuccess(t *testing.T) {
	hosting := &mockHostingClient{
		AddProjectDomainFunc: func(ctx context.Context, projectID, domain string) (*VercelDomain, error) {
			return nil, providerDomainErr("domain_already_in_use")
		},
	}
	svc := NewDomainService(domainCfg(), hosting, newMockStoreRepo())

	alias, err := svc.EnsureSubdomainAlias(context.Background(), domainTestStore(), "prj_123")
	require.NoError(t, err)
	assert.Equal(t, "acme.gosovereign.app", alias)
}

func TestEnsureSubdomainAlias_OtherProviderErrorPropagates(t *testing.T) {
	hosting := &mockHostingClient{
		AddProjectDomainFunc: func(ctx context.Context, projectID, domain string) (*VercelDomain, error) {
			return nil, providerDomainErr("forbidden")
		},
	}
	svc := NewDomainService(domainCfg(), hosting, newMockStoreRepo())

	_, err := svc.EnsureSubdomainAlias(context.Background(), domainTestStore(), "prj_123")
	require.Error(t, err)
	assert.True(t, apperrors.IsProvider(err))
}

func TestAuthorizeStoreAdmin(t *testing.T) {
	svc := NewDomainService(domainCfg(), &mockHostingClient{}, newMockStoreRepo())
	store := domainTestStore()

	t.Run("valid credential", func(t *testing.T) {
		assert.NoError(t, svc.AuthorizeStoreAdmin(store, DerivedAdminPassword(store.ID)))
	})

	t.Run("wrong credential", func(t *testing.T) {
		err := svc.AuthorizeStoreAdmin(store, "nope")
		assert.True(t, apperrors.IsAuthentication(err))
	})

	t.Run("store without hosting project", func(t *testing.T) {
		bare := &models.Store{BaseModel: models.BaseModel{ID: uuid.New()}, Subdomain: "bare"}
		err := svc.AuthorizeStoreAdmin(bare, DerivedAdminPassword(bare.ID))
		assert.ErrorIs(t, err, apperrors.ErrStoreNotDeployed)
	})
}

func TestVerifyDomain_Attached(t *testing.T) {
	hosting := &mockHostingClient{
		GetProjectDomainFunc: func(ctx context.Context, projectID, domain string) (*VercelDomain, error) {
			return &VercelDomain{Name: domain, Verified: true}, nil
		},
	}
	svc := NewDomainService(domainCfg(), hosting, newMockStoreRepo())

	result, err := svc.VerifyDomain(context.Background(), domainTestStore(), "shop.acme.com")
	require.NoError(t, err)
	assert.Equal(t, "shop.acme.com", result.Name)
	assert.True(t, result.Verified)
}

func TestVerifyDomain_UnknownDomainIsNotYetAdded(t *testing.T) {
	hosting := &mockHostingClient{
		GetProjectDomainFunc: func(ctx context.Context, projectID, domain string) (*VercelDomain, error) {
			return nil, apperrors.ErrDomainNotFound
		},
	}
	svc := NewDomainService(domainCfg(), hosting, newMockStoreRepo())

	result, err := svc.VerifyDomain(context.Background(), domainTestStore(), "shop.acme.com")
	require.NoError(t, err)
	assert.Equal(t, "shop.acme.com", result.Name)
	assert.False(t, result.Verified)
	assert.Equal(t, "not_yet_added", result.Status)
}

func TestAddCustomDomain_Success(t *testing.T) {
	store := domainTestStore()
	repo := newMockStoreRepo(store)
	hosting := &mockHostingClient{
		AddProjectDomainFunc: func(ctx context.Context, projectID, domain string) (*VercelDomain, error) {
			assert.Equal(t, "shop.acme.com", domain)
			return &VercelDomain{Name: domain}, nil
		},
	}
	svc := NewDomainService(domainCfg(), hosting, repo)

	result, err := svc.AddCustomDomain(context.Background(), store, " Shop.Acme.COM ")
	require.NoError(t, err)
	assert.Equal(t, "shop.acme.com", result.Name)
	assert.Equal(t, "shop.acme.com", store.CustomDomain)

	require.Len(t, repo.updateFieldsCalls, 1)
	assert.Equal(t, "shop.acme.com", repo.updateFieldsCalls[0]["custom_domain"])
}

func TestAddCustomDomain_InvalidHostname(t *testing.T) {
	svc := NewDomainService(domainCfg(), &mockHostingClient{}, newMockStoreRepo())

	for _, bad := range []string{"no-dot", "UPPER CASE.com", "-leading.com", "trailing-.com", "shop.acme.com."} {
		_, err := svc.AddCustomDomain(context.Background(), domainTestStore(), bad)
		assert.ErrorIs(t, err, apperrors.ErrInvalidDomainName, "domain %q", bad)
	}
}

func TestAddCustomDomain_RejectsPlatformSubdomains(t *testing.T) {
	svc := NewDomainService(domainCfg(), &mockHostingClient{}, newMockStoreRepo())

	for _, bad := range []string{"acme.gosovereign.app", "other.gosovereign.app"} {
		_, err := svc.AddCustomDomain(context.Background(), domainTestStore(), bad)
		assert.True(t, apperrors.IsValidation(err), "domain %q", bad)
	}
}

func TestAddCustomDomain_InUseElsewhere(t *testing.T) {
	hosting := &mockHostingClient{
		AddProjectDomainFunc: func(ctx context.Context, projectID, domain string) (*VercelDomain, error) {
			return nil, providerDomainErr("domain_already_in_use")
		},
	}
	svc := NewDomainService(domainCfg(), hosting, newMockStoreRepo())

	_, err := svc.AddCustomDomain(context.Background(), domainTestStore(), "shop.acme.com")
	assert.ErrorIs(t, err, apperrors.ErrDomainInUse)
}

func TestRemoveCustomDomain(t *testing.T) {
	store := domainTestStore()
	store.CustomDomain = "shop.acme.com"
	repo := newMockStoreRepo(store)
	hosting := &mockHostingClient{
		RemoveProjectDomainFunc: func(ctx context.Context, projectID, domain string) error {
			assert.Equal(t, "shop.acme.com", domain)
			return nil
		},
	}
	svc := NewDomainService(domainCfg(), hosting, repo)

	require.NoError(t, svc.RemoveCustomDomain(context.Background(), store, "shop.acme.com"))
	assert.Empty(t, store.CustomDomain)

	require.Len(t, repo.updateFieldsCalls, 1)
	assert.Equal(t, "", repo.updateFieldsCalls[0]["custom_domain"])
}

func TestRemoveCustomDomain_AliasProtected(t *testing.T) {
	svc := NewDomainService(domainCfg(), &mockHostingClient{}, newMockStoreRepo())

	err := svc.RemoveCustomDomain(context.Background(), domainTestStore(), "acme.gosovereign.app")
	assert.True(t, apperrors.IsValidation(err))
}

func TestRemoveCustomDomain_NotAttached(t *testing.T) {
	store := domainTestStore()
	store.CustomDomain = "shop.acme.com"
	svc := NewDomainService(domainCfg(), &mockHostingClient{}, newMockStoreRepo(store))

	err := svc.RemoveCustomDomain(context.Background(), store, "other.acme.com")
	assert.ErrorIs(t, err, apperrors.ErrDomainNotFound)
}

func TestListDomains_SkipsUnattached(t *testing.T) {
	store := domainTestStore()
	store.CustomDomain = "shop.acme.com"
	hosting := &mockHostingClient{
		GetProjectDomainFunc: func(ctx context.Context, projectID, domain string) (*VercelDomain, error) {
			if domain == "shop.acme.com" {
				return nil, apperrors.ErrDomainNotFound
			}
			return &VercelDomain{Name: domain, Verified: true}, nil
		},
	}
	svc := NewDomainService(domainCfg(), hosting, newMockStoreRepo(store))

	domains, err := svc.ListDomains(context.Background(), store)
	require.NoError(t, err)
	require.Len(t, domains, 1)
	assert.Equal(t, "acme.gosovereign.app", domains[0].Name)
	assert.True(t, domains[0].Verified)
}

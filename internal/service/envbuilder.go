package service

import (
	"fmt"

	"gosovereign-backend/internal/config"
	"gosovereign-backend/internal/database/models"
	apperrors "gosovereign-backend/internal/errors"
)

// Tier-derived item limits
const (
	starterItemLimit   = "10"
	unlimitedItemLimit = "unlimited"
)

var allTargets = []string{"production", "preview", "development"}

// EnvBuilder maps a store record plus platform configuration to the complete
// environment variable set for its hosting project. Pure computation: no
// network calls, no side effects, deterministic for a given input.
type EnvBuilder struct {
	cfg *config.Config
}

// NewEnvBuilder creates a new environment variable builder
func NewEnvBuilder(cfg *config.Config) *EnvBuilder {
	return &EnvBuilder{cfg: cfg}
}

// Build produces the full env var list for a store. Only the platform
// database credentials and domain are mandatory; their absence is a
// configuration error raised before any deployment starts. Optional store
// fields are simply skipped.
func (b *EnvBuilder) Build(store *models.Store) ([]EnvVar, error) {
	if b.cfg.SupabaseURL == "" || b.cfg.SupabaseAnonKey == "" {
		return nil, apperrors.ErrSupabaseNotSet
	}
	if b.cfg.PlatformDomain == "" {
		return nil, apperrors.ErrPlatformDomainEmpty
	}

	storeURL := fmt.Sprintf("https://%s.%s", store.Subdomain, b.cfg.PlatformDomain)

	vars := []EnvVar{
		plain("NEXT_PUBLIC_SUPABASE_URL", b.cfg.SupabaseURL),
		plain("NEXT_PUBLIC_SUPABASE_ANON_KEY", b.cfg.SupabaseAnonKey),
		plain("NEXT_PUBLIC_STORE_ID", store.ID.String()),
		plain("NEXT_PUBLIC_STORE_NAME", store.Name),
		plain("NEXT_PUBLIC_BRAND_COLOR", store.BrandColor),
		plain("NEXT_PUBLIC_THEME_PRESET", store.ThemePreset),
		plain("NEXT_PUBLIC_SHIPPING_ENABLED", boolValue(store.ShippingEnabled)),
		plain("NEXT_PUBLIC_SHIPPING_COUNTRIES", store.ShippingCountries),
		plain("NEXT_PUBLIC_TAX_ENABLED", boolValue(store.TaxEnabled)),
		plain("NEXT_PUBLIC_TEMPLATE_KIND", string(store.TemplateKind)),
		plain("NEXT_PUBLIC_CURRENCY", store.Currency),
		plain("NEXT_PUBLIC_STORE_URL", storeURL),
		plain("NEXT_PUBLIC_PLATFORM_API_URL", b.cfg.PlatformAPIURL),
		plain("FROM_EMAIL", b.cfg.FromEmail),
	}

	// Optional store fields
	if store.LogoURL != "" {
		vars = append(vars, plain("NEXT_PUBLIC_LOGO_URL", store.LogoURL))
	}
	if store.StripeAccountID != "" {
		vars = append(vars, secret("STRIPE_ACCOUNT_ID", store.StripeAccountID))
	}
	if store.ContactEmail != "" {
		// Emitted twice: once private for server-side mail, once exposed to
		// the storefront client.
		vars = append(vars,
			plain("STORE_OWNER_EMAIL", store.ContactEmail),
			plain("NEXT_PUBLIC_CONTACT_EMAIL", store.ContactEmail),
		)
	}

	// Platform-wide secrets, forwarded only when configured
	if b.cfg.StripeSecretKey != "" {
		vars = append(vars, secret("STRIPE_SECRET_KEY", b.cfg.StripeSecretKey))
	}
	if b.cfg.AdminBootstrapPassword != "" {
		vars = append(vars, secret("ADMIN_BOOTSTRAP_PASSWORD", b.cfg.AdminBootstrapPassword))
	}
	if b.cfg.SuperAdminPassword != "" {
		vars = append(vars, secret("SUPER_ADMIN_PASSWORD", b.cfg.SuperAdminPassword))
	}
	if b.cfg.SupabaseServiceRoleKey != "" {
		vars = append(vars, secret("SUPABASE_SERVICE_ROLE_KEY", b.cfg.SupabaseServiceRoleKey))
	}
	if b.cfg.ResendAPIKey != "" {
		vars = append(vars, secret("RESEND_API_KEY", b.cfg.ResendAPIKey))
	}
	if b.cfg.OpenAIAPIKey != "" {
		vars = append(vars, secret("OPENAI_API_KEY", b.cfg.OpenAIAPIKey))
	}

	// Per-store generated secret: the same value handed to the store owner
	vars = append(vars, secret("STORE_ADMIN_PASSWORD", DerivedAdminPassword(store.ID)))

	// Tier-derived flags. One env var set supports every template kind, so
	// the item limit is emitted under both the product-style and
	// service-style names.
	itemLimit := starterItemLimit
	if store.PaymentTier.IsPaid() {
		itemLimit = unlimitedItemLimit
	}
	paid := boolValue(store.PaymentTier.IsPaid())
	vars = append(vars,
		plain("NEXT_PUBLIC_MAX_PRODUCTS", itemLimit),
		plain("NEXT_PUBLIC_MAX_SERVICES", itemLimit),
		plain("NEXT_PUBLIC_CUSTOM_DOMAIN_ENABLED", paid),
		plain("NEXT_PUBLIC_ANALYTICS_ENABLED", paid),
		plain("NEXT_PUBLIC_PREMIUM_THEMES_ENABLED", paid),
		plain("NEXT_PUBLIC_BOOKING_ENABLED", paid),
		plain("NEXT_PUBLIC_PORTFOLIO_ENABLED", paid),
	)

	return vars, nil
}

func plain(key, value string) EnvVar {
	return EnvVar{Key: key, Value: value, Type: EnvTypePlain, Target: allTargets}
}

func secret(key, value string) EnvVar {
	return EnvVar{Key: key, Value: value, Type: EnvTypeSecret, Target: allTargets}
}

func boolValue(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

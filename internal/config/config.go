package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Environment string `mapstructure:"ENVIRONMENT"`
	Port        string `mapstructure:"PORT"`
	LogLevel    string `mapstructure:"LOG_LEVEL"`

	// Database configuration
	DatabaseURL      string `mapstructure:"DATABASE_URL"`
	DatabaseHost     string `mapstructure:"DB_HOST"`
	DatabasePort     string `mapstructure:"DB_PORT"`
	DatabaseUser     string `mapstructure:"DB_USER"`
	DatabasePassword string `mapstructure:"DB_PASSWORD"`
	DatabaseName     string `mapstructure:"DB_NAME"`
	DatabaseSSLMode  string `mapstructure:"DB_SSL_MODE"`

	// JWT configuration
	JWTSecret string `mapstructure:"JWT_SECRET"`

	// CORS configuration
	AllowedOrigins []string `mapstructure:"ALLOWED_ORIGINS"`

	// Platform identity: deployed stores live at https://{subdomain}.{PlatformDomain}
	PlatformDomain string `mapstructure:"PLATFORM_DOMAIN"`
	PlatformAPIURL string `mapstructure:"PLATFORM_API_URL"`

	// Hosting provider (Vercel-compatible API) configuration
	VercelToken  string `mapstructure:"VERCEL_TOKEN"`
	VercelTeamID string `mapstructure:"VERCEL_TEAM_ID"`

	// Template repositories, one per store type, in owner/name form
	GitHubToken          string `mapstructure:"GITHUB_TOKEN"`
	TemplateRepoGoods    string `mapstructure:"TEMPLATE_REPO_GOODS"`
	TemplateRepoServices string `mapstructure:"TEMPLATE_REPO_SERVICES"`
	TemplateRepoBrochure string `mapstructure:"TEMPLATE_REPO_BROCHURE"`
	TemplateRepoDefault  string `mapstructure:"TEMPLATE_REPO_DEFAULT"`

	// Backing data platform credentials injected into deployed stores
	SupabaseURL            string `mapstructure:"SUPABASE_URL"`
	SupabaseAnonKey        string `mapstructure:"SUPABASE_ANON_KEY"`
	SupabaseServiceRoleKey string `mapstructure:"SUPABASE_SERVICE_ROLE_KEY"`

	// Platform-wide secrets forwarded to deployed stores only when set
	StripeSecretKey        string `mapstructure:"STRIPE_SECRET_KEY"`
	ResendAPIKey           string `mapstructure:"RESEND_API_KEY"`
	OpenAIAPIKey           string `mapstructure:"OPENAI_API_KEY"`
	AdminBootstrapPassword string `mapstructure:"ADMIN_BOOTSTRAP_PASSWORD"`
	SuperAdminPassword     string `mapstructure:"SUPER_ADMIN_PASSWORD"`

	// Outbound email sender
	FromEmail string `mapstructure:"FROM_EMAIL"`

	// Platform admin allow-list, comma-separated emails
	AdminEmails string `mapstructure:"ADMIN_EMAILS"`

	// Optional Redis URL enabling the token-bucket redeploy pacer
	RedisURL string `mapstructure:"REDIS_URL"`
}

// Load reads configuration from environment variables and config files
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	// Set default values
	setDefaults()

	// Read config file if it exists
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	// Override with environment variables
	viper.AutomaticEnv()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Build database URL if not provided
	if config.DatabaseURL == "" {
		config.DatabaseURL = buildDatabaseURL(&config)
	}

	// Validate required fields
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("ENVIRONMENT", "development")
	viper.SetDefault("PORT", "7010")
	viper.SetDefault("LOG_LEVEL", "info")

	// Database defaults
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_USER", "postgres")
	viper.SetDefault("DB_PASSWORD", "postgres")
	viper.SetDefault("DB_NAME", "gosovereign")
	viper.SetDefault("DB_SSL_MODE", "disable")

	// JWT defaults
	viper.SetDefault("JWT_SECRET", "your-secret-key-change-in-production")

	// CORS defaults
	viper.SetDefault("ALLOWED_ORIGINS", []string{"http://localhost:3000", "http://localhost:8080"})

	// Platform defaults
	viper.SetDefault("PLATFORM_DOMAIN", "gosovereign.app")
	viper.SetDefault("PLATFORM_API_URL", "https://gosovereign.app/api")
	viper.SetDefault("FROM_EMAIL", "noreply@gosovereign.app")

	// Template repository defaults
	viper.SetDefault("TEMPLATE_REPO_GOODS", "gosovereign/storefront-goods-template")
	viper.SetDefault("TEMPLATE_REPO_SERVICES", "gosovereign/storefront-services-template")
	viper.SetDefault("TEMPLATE_REPO_BROCHURE", "gosovereign/storefront-brochure-template")
	viper.SetDefault("TEMPLATE_REPO_DEFAULT", "gosovereign/storefront-goods-template")
}

func buildDatabaseURL(config *Config) string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		config.DatabaseUser,
		config.DatabasePassword,
		config.DatabaseHost,
		config.DatabasePort,
		config.DatabaseName,
		config.DatabaseSSLMode,
	)
}

func validate(config *Config) error {
	if config.Environment == "production" {
		if config.JWTSecret == "your-secret-key-change-in-production" {
			return fmt.Errorf("JWT_SECRET must be set in production")
		}
	}

	if config.DatabaseName == "" {
		return fmt.Errorf("database name is required")
	}

	return nil
}

// AdminEmailList returns the configured platform admin emails, trimmed,
// empty entries removed.
func (c *Config) AdminEmailList() []string {
	if c.AdminEmails == "" {
		return nil
	}
	parts := strings.Split(c.AdminEmails, ",")
	emails := make([]string, 0, len(parts))
	for _, p := range parts {
		if e := strings.TrimSpace(p); e != "" {
			emails = append(emails, e)
		}
	}
	return emails
}

// IsDevelopment returns true if the environment is development
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction returns true if the environment is production
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

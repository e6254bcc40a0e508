package errors

import (
	"errors"
	"fmt"
)

// NotFoundError represents an error when an entity is not found
type NotFoundError struct {
	Entity string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Entity)
}

// Is enables errors.Is() comparison for NotFoundError
func (e *NotFoundError) Is(target error) bool {
	t, ok := target.(*NotFoundError)
	if !ok {
		return false
	}
	return e.Entity == t.Entity
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

// AuthenticationError represents authentication-related errors
type AuthenticationError struct {
	Message string
}

func (e *AuthenticationError) Error() string {
	return e.Message
}

// AuthorizationError represents authorization-related errors
type AuthorizationError struct {
	Message string
}

func (e *AuthorizationError) Error() string {
	return e.Message
}

// ConfigurationError represents configuration-related errors
type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string {
	return e.Message
}

// ProviderError wraps a failure reported by an upstream provider (hosting,
// domain or email API). Stage identifies the pipeline stage that failed,
// Detail carries the provider's own message verbatim.
type ProviderError struct {
	Stage   string
	Message string
	Detail  string
	Code    string
}

func (e *ProviderError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s", e.Message, e.Detail)
	}
	return e.Message
}

// ConflictError represents a resource conflict surfaced to the caller as 409
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

// DeployNotAllowedError carries the billing-derived reason a deployment was
// refused alongside the subscription status the reason was derived from.
type DeployNotAllowedError struct {
	Reason             string
	SubscriptionStatus string
}

func (e *DeployNotAllowedError) Error() string {
	return e.Reason
}

// Entity Not Found Errors
var (
	ErrStoreNotFound         = &NotFoundError{Entity: "store"}
	ErrUserNotFound          = &NotFoundError{Entity: "user"}
	ErrDeploymentNotFound    = &NotFoundError{Entity: "deployment"}
	ErrDeploymentLogNotFound = &NotFoundError{Entity: "deployment log"}
	ErrDomainNotFound        = &NotFoundError{Entity: "domain"}
	ErrProjectNotFound       = &NotFoundError{Entity: "hosting project"}
)

// Authorization Errors
var (
	ErrNotStoreOwner    = &AuthorizationError{Message: "you do not own this store"}
	ErrNotPlatformAdmin = &AuthorizationError{Message: "platform admin access required"}
	ErrStoreNotDeployed = &AuthorizationError{Message: "store has no hosting project"}
)

// Business Logic Errors
var (
	ErrInvalidStatus           = errors.New("invalid status")
	ErrInvalidStatusTransition = errors.New("invalid status transition")
	ErrSubdomainImmutable      = errors.New("subdomain cannot be changed after the hosting project has been created")
	ErrInvalidDomainName       = errors.New("invalid domain name")
	ErrDomainInUse             = &ConflictError{Message: "domain is already in use by another project"}
)

// Configuration Errors
var (
	ErrVercelTokenNotSet   = &ConfigurationError{Message: "VERCEL_TOKEN environment variable not set"}
	ErrGitHubTokenNotSet   = &ConfigurationError{Message: "GITHUB_TOKEN environment variable not set"}
	ErrSupabaseNotSet      = &ConfigurationError{Message: "SUPABASE_URL or SUPABASE_ANON_KEY environment variable not set"}
	ErrPlatformDomainEmpty = &ConfigurationError{Message: "PLATFORM_DOMAIN is not configured"}
)

// Helper Functions

// IsNotFound checks if an error is a NotFoundError
func IsNotFound(err error) bool {
	var notFoundErr *NotFoundError
	return errors.As(err, &notFoundErr)
}

// IsValidation checks if an error is a ValidationError
func IsValidation(err error) bool {
	var validationErr *ValidationError
	return errors.As(err, &validationErr)
}

// IsAuthentication checks if an error is an AuthenticationError
func IsAuthentication(err error) bool {
	var authErr *AuthenticationError
	return errors.As(err, &authErr)
}

// IsAuthorization checks if an error is an AuthorizationError
func IsAuthorization(err error) bool {
	var authzErr *AuthorizationError
	return errors.As(err, &authzErr)
}

// IsConfiguration checks if an error is a ConfigurationError
func IsConfiguration(err error) bool {
	var configErr *ConfigurationError
	return errors.As(err, &configErr)
}

// IsConflict checks if an error is a ConflictError
func IsConflict(err error) bool {
	var conflictErr *ConflictError
	return errors.As(err, &conflictErr)
}

// IsProvider checks if an error is a ProviderError
func IsProvider(err error) bool {
	var provErr *ProviderError
	return errors.As(err, &provErr)
}

// AsProvider unwraps a ProviderError when present
func AsProvider(err error) (*ProviderError, bool) {
	var provErr *ProviderError
	ok := errors.As(err, &provErr)
	return provErr, ok
}

// AsDeployNotAllowed unwraps a DeployNotAllowedError when present
func AsDeployNotAllowed(err error) (*DeployNotAllowedError, bool) {
	var dnaErr *DeployNotAllowedError
	ok := errors.As(err, &dnaErr)
	return dnaErr, ok
}

// NewNotFoundError creates a new NotFoundError for a custom entity
func NewNotFoundError(entity string) error {
	return &NotFoundError{Entity: entity}
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// NewAuthenticationError creates a new AuthenticationError
func NewAuthenticationError(message string) error {
	return &AuthenticationError{Message: message}
}

// NewAuthorizationError creates a new AuthorizationError
func NewAuthorizationError(message string) error {
	return &AuthorizationError{Message: message}
}

// NewConfigurationError creates a new ConfigurationError
func NewConfigurationError(message string) error {
	return &ConfigurationError{Message: message}
}

// NewProviderError creates a ProviderError for a pipeline stage
func NewProviderError(stage, message, detail string) error {
	return &ProviderError{Stage: stage, Message: message, Detail: detail}
}

package models

// StoreStatus tracks a store's deployment lifecycle
type StoreStatus string

const (
	StoreStatusPending     StoreStatus = "pending"
	StoreStatusConfiguring StoreStatus = "configuring"
	StoreStatusDeploying   StoreStatus = "deploying"
	StoreStatusDeployed    StoreStatus = "deployed"
	StoreStatusFailed      StoreStatus = "failed"
	StoreStatusError       StoreStatus = "error"
)

// IsValid checks if the StoreStatus is valid
func (s StoreStatus) IsValid() bool {
	switch s {
	case StoreStatusPending, StoreStatusConfiguring, StoreStatusDeploying,
		StoreStatusDeployed, StoreStatusFailed, StoreStatusError:
		return true
	}
	return false
}

// storeStatusTransitions is the explicit transition table for store lifecycle
// status. failed and deployed both re-enter deploying on retry/redeploy;
// there is no terminal abandoned state.
var storeStatusTransitions = map[StoreStatus][]StoreStatus{
	StoreStatusPending:     {StoreStatusConfiguring, StoreStatusDeploying},
	StoreStatusConfiguring: {StoreStatusConfiguring, StoreStatusDeploying},
	StoreStatusDeploying:   {StoreStatusDeploying, StoreStatusDeployed, StoreStatusFailed, StoreStatusError},
	StoreStatusDeployed:    {StoreStatusDeploying},
	StoreStatusFailed:      {StoreStatusDeploying},
	StoreStatusError:       {StoreStatusDeploying},
}

// CanTransitionTo reports whether the status may legally move to target.
func (s StoreStatus) CanTransitionTo(target StoreStatus) bool {
	for _, t := range storeStatusTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// TemplateKind selects which source template repository is deployed
type TemplateKind string

const (
	TemplateKindGoods    TemplateKind = "goods"
	TemplateKindServices TemplateKind = "services"
	TemplateKindBrochure TemplateKind = "brochure"
)

// IsValid checks if the TemplateKind is valid
func (k TemplateKind) IsValid() bool {
	switch k {
	case TemplateKindGoods, TemplateKindServices, TemplateKindBrochure:
		return true
	}
	return false
}

// PaymentTier is the store's billing plan
type PaymentTier string

const (
	PaymentTierStarter PaymentTier = "starter"
	PaymentTierPro     PaymentTier = "pro"
	PaymentTierHosted  PaymentTier = "hosted"
	PaymentTierNone    PaymentTier = "none"
)

// IsPaid reports whether the tier unlocks pro features. Anything that is not
// pro or hosted is treated as starter-equivalent.
func (t PaymentTier) IsPaid() bool {
	return t == PaymentTierPro || t == PaymentTierHosted
}

// SubscriptionStatus mirrors the payment processor's subscription state
type SubscriptionStatus string

const (
	SubscriptionStatusActive    SubscriptionStatus = "active"
	SubscriptionStatusPastDue   SubscriptionStatus = "past_due"
	SubscriptionStatusCancelled SubscriptionStatus = "cancelled"
	SubscriptionStatusNone      SubscriptionStatus = "none"
)

// DeploymentLogStatus is the status of a single audit-trail entry
type DeploymentLogStatus string

const (
	LogStatusStarted   DeploymentLogStatus = "started"
	LogStatusCompleted DeploymentLogStatus = "completed"
	LogStatusFailed    DeploymentLogStatus = "failed"
)

// IsValid checks if the DeploymentLogStatus is valid
func (s DeploymentLogStatus) IsValid() bool {
	switch s {
	case LogStatusStarted, LogStatusCompleted, LogStatusFailed:
		return true
	}
	return false
}

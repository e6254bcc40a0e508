package service

import (
	"context"
	"time"

	"gosovereign-backend/internal/logger"
)

// DeployState is the platform's view of a deployment's progress, a coarser
// state machine than the provider's readyState values.
type DeployState string

const (
	DeployStateIdle      DeployState = "idle"
	DeployStateDeploying DeployState = "deploying"
	DeployStateBuilding  DeployState = "building"
	DeployStateReady     DeployState = "ready"
	DeployStateError     DeployState = "error"
)

// IsTerminal reports whether the state can no longer change
func (s DeployState) IsTerminal() bool {
	return s == DeployStateReady || s == DeployStateError
}

// mapReadyState collapses the provider's readyState values onto DeployState.
// Unknown values are treated as still-deploying rather than failed, so new
// provider states never break in-flight polls.
func mapReadyState(readyState string) DeployState {
	switch readyState {
	case "READY":
		return DeployStateReady
	case "ERROR", "CANCELED":
		return DeployStateError
	case "BUILDING":
		return DeployStateBuilding
	case "QUEUED", "INITIALIZING":
		return DeployStateDeploying
	default:
		return DeployStateDeploying
	}
}

// PollResult is one observation of a deployment's progress. ReadyState is
// the provider's verbatim value, surfaced to polling clients.
type PollResult struct {
	State      DeployState
	ReadyState string
	URL        string
	Message    string
}

// Poller defaults; WaitForTerminal runs for at most pollMaxAttempts*pollInterval
const (
	pollInterval    = 5 * time.Second
	pollMaxAttempts = 60
)

// StatusPoller reads deployment progress from the hosting provider
type StatusPoller struct {
	hosting  HostingClient
	interval time.Duration
	attempts int
}

// NewStatusPoller creates a poller with the default cadence
func NewStatusPoller(hosting HostingClient) *StatusPoller {
	return &StatusPoller{
		hosting:  hosting,
		interval: pollInterval,
		attempts: pollMaxAttempts,
	}
}

// Poll fetches the deployment's current state once
func (p *StatusPoller) Poll(ctx context.Context, deploymentID string) (*PollResult, error) {
	if deploymentID == "" {
		return &PollResult{State: DeployStateIdle}, nil
	}

	deployment, err := p.hosting.GetDeployment(ctx, deploymentID)
	if err != nil {
		return nil, err
	}

	return &PollResult{
		State:      mapReadyState(deployment.ReadyState),
		ReadyState: deployment.ReadyState,
		URL:        deployment.URL,
	}, nil
}

// WaitForTerminal polls until the deployment reaches a terminal state, the
// context is cancelled, or the attempt budget runs out. Transient poll errors
// are logged and retried; only context cancellation aborts early. Exhausting
// the budget transitions to the error state with an explanatory message; the
// provider's last observed readyState is kept so callers can tell a timeout
// from a build failure.
func (p *StatusPoller) WaitForTerminal(ctx context.Context, deploymentID string) (*PollResult, error) {
	log := logger.WithContext(ctx).WithField("deployment_id", deploymentID)

	last := &PollResult{State: DeployStateDeploying}
	for attempt := 0; attempt < p.attempts; attempt++ {
		result, err := p.Poll(ctx, deploymentID)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			log.WithField("attempt", attempt).Warnf("Deployment poll failed, retrying: %v", err)
		} else {
			last = result
			if result.State.IsTerminal() {
				return result, nil
			}
		}

		timer := time.NewTimer(p.interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	log.Warn("Deployment did not reach a terminal state within the polling budget")
	last.State = DeployStateError
	last.Message = "deployment is taking longer than expected"
	return last, nil
}

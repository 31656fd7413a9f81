package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/wefixte/Foreach-Wildwatch/internal/core/domain"
)

// LocationProvider is the device location service collaborator.
type LocationProvider interface {
	PermissionStatus(ctx context.Context) (domain.PermissionStatus, error)
	RequestPermission(ctx context.Context) (domain.PermissionStatus, error)
	CurrentPosition(ctx context.Context, opts domain.AcquireOptions) (*domain.LocationSample, error)
}

// DeniedReason is the human-readable error recorded when the user
// rejects the permission prompt.
const DeniedReason = "location permission denied - enable location access in your device settings"

// LocationStatus is one atomic read of the state machine.
type LocationStatus struct {
	State     domain.LocationState   `json:"state"`
	Sample    *domain.LocationSample `json:"sample,omitempty"`
	Acquiring bool                   `json:"acquiring"`
	Error     string                 `json:"error,omitempty"`
}

// LocationService manages permission state and current-position
// retrieval. States: Undetermined -> Requesting -> Granted | Denied.
// Denial is only reached through an explicit request being rejected;
// the mount-time check leaves a not-granted device at Undetermined.
type LocationService struct {
	provider LocationProvider
	opts     domain.AcquireOptions

	mu        sync.RWMutex
	state     domain.LocationState
	sample    *domain.LocationSample
	acquiring bool
	lastErr   string
}

func NewLocationService(provider LocationProvider, opts domain.AcquireOptions) *LocationService {
	return &LocationService{
		provider: provider,
		opts:     opts,
		state:    domain.StateUndetermined,
	}
}

func (s *LocationService) State() domain.LocationState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Sample returns the best-known position, or nil if none has been
// acquired yet. A failed refresh never clears it.
func (s *LocationService) Sample() *domain.LocationSample {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.sample == nil {
		return nil
	}
	sample := *s.sample
	return &sample
}

func (s *LocationService) Acquiring() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.acquiring
}

func (s *LocationService) Err() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

func (s *LocationService) Status() LocationStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	status := LocationStatus{
		State:     s.state,
		Acquiring: s.acquiring,
		Error:     s.lastErr,
	}
	if s.sample != nil {
		sample := *s.sample
		status.Sample = &sample
	}
	return status
}

// CheckPermission is the mount-time check: an already-granted device
// transitions straight to Granted and triggers one acquisition; anything
// else stays Undetermined without prompting.
func (s *LocationService) CheckPermission(ctx context.Context) error {
	status, err := s.provider.PermissionStatus(ctx)
	if err != nil {
		s.recordErr(fmt.Sprintf("permission check failed: %v", err))
		return fmt.Errorf("permission check failed: %w", err)
	}

	if status != domain.PermissionGranted {
		return nil
	}

	s.mu.Lock()
	s.state = domain.StateGranted
	s.mu.Unlock()

	return s.acquire(ctx)
}

// RequestPermission prompts the user unless permission is already
// granted. The boolean reports whether permission ended up granted; an
// acquisition failure after a successful grant does not change it.
func (s *LocationService) RequestPermission(ctx context.Context) (bool, error) {
	s.mu.Lock()
	s.state = domain.StateRequesting
	s.lastErr = ""
	s.mu.Unlock()

	status, err := s.provider.PermissionStatus(ctx)
	if err != nil {
		s.fail(domain.StateUndetermined, fmt.Sprintf("permission check failed: %v", err))
		return false, fmt.Errorf("permission check failed: %w", err)
	}

	if status != domain.PermissionGranted {
		status, err = s.provider.RequestPermission(ctx)
		if err != nil {
			s.fail(domain.StateUndetermined, fmt.Sprintf("permission request failed: %v", err))
			return false, fmt.Errorf("permission request failed: %w", err)
		}
	}

	if status != domain.PermissionGranted {
		s.fail(domain.StateDenied, DeniedReason)
		return false, nil
	}

	s.mu.Lock()
	s.state = domain.StateGranted
	s.mu.Unlock()

	if err := s.acquire(ctx); err != nil {
		return true, err
	}
	return true, nil
}

// RefreshLocation re-acquires the current position. It fails fast when
// permission is not granted and never prompts; prompting belongs to
// RequestPermission and the mount check alone.
func (s *LocationService) RefreshLocation(ctx context.Context) error {
	s.mu.Lock()
	if s.state != domain.StateGranted {
		s.lastErr = domain.ErrPermissionRequired.Error()
		s.mu.Unlock()
		return domain.ErrPermissionRequired
	}
	s.mu.Unlock()

	return s.acquire(ctx)
}

func (s *LocationService) acquire(ctx context.Context) error {
	s.mu.Lock()
	s.acquiring = true
	s.mu.Unlock()

	sample, err := s.provider.CurrentPosition(ctx, s.opts)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.acquiring = false

	if err != nil {
		// previous sample retained: the map keeps its last-known position
		s.lastErr = fmt.Sprintf("failed to acquire position: %v", err)
		return fmt.Errorf("failed to acquire position: %w", err)
	}

	s.sample = sample
	s.lastErr = ""
	return nil
}

func (s *LocationService) fail(state domain.LocationState, msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
	s.lastErr = msg
}

func (s *LocationService) recordErr(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = msg
}

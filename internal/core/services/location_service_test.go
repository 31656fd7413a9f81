package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/wefixte/Foreach-Wildwatch/internal/core/domain"
	"github.com/wefixte/Foreach-Wildwatch/internal/core/services"
)

// FakeProvider scripts the device location service.
type FakeProvider struct {
	status        domain.PermissionStatus
	promptAnswer  domain.PermissionStatus
	sample        *domain.LocationSample
	statusErr     error
	promptErr     error
	positionErr   error
	promptCalls   int
	positionCalls int
}

func (p *FakeProvider) PermissionStatus(ctx context.Context) (domain.PermissionStatus, error) {
	if p.statusErr != nil {
		return "", p.statusErr
	}
	return p.status, nil
}

func (p *FakeProvider) RequestPermission(ctx context.Context) (domain.PermissionStatus, error) {
	p.promptCalls++
	if p.promptErr != nil {
		return "", p.promptErr
	}
	p.status = p.promptAnswer
	return p.promptAnswer, nil
}

func (p *FakeProvider) CurrentPosition(ctx context.Context, opts domain.AcquireOptions) (*domain.LocationSample, error) {
	p.positionCalls++
	if p.positionErr != nil {
		return nil, p.positionErr
	}
	sample := *p.sample
	return &sample, nil
}

func parisSample() *domain.LocationSample {
	accuracy := 5.0
	return &domain.LocationSample{
		Latitude:  48.8566,
		Longitude: 2.3522,
		Accuracy:  &accuracy,
	}
}

func newLocationService(p *FakeProvider) *services.LocationService {
	return services.NewLocationService(p, domain.DefaultAcquireOptions())
}

func TestInitialStateIsUndetermined(t *testing.T) {
	svc := newLocationService(&FakeProvider{status: domain.PermissionUndetermined})

	assert.Equal(t, domain.StateUndetermined, svc.State())
	assert.Nil(t, svc.Sample())
	assert.Empty(t, svc.Err())
}

func TestCheckPermissionAlreadyGranted(t *testing.T) {
	provider := &FakeProvider{status: domain.PermissionGranted, sample: parisSample()}
	svc := newLocationService(provider)

	assert.NoError(t, svc.CheckPermission(context.Background()))

	assert.Equal(t, domain.StateGranted, svc.State())
	assert.Equal(t, 0, provider.promptCalls)
	assert.Equal(t, 1, provider.positionCalls)
	assert.NotNil(t, svc.Sample())
	assert.Equal(t, 48.8566, svc.Sample().Latitude)
}

func TestCheckPermissionNotGrantedStaysUndetermined(t *testing.T) {
	// denial is only reached via an explicit rejected request
	for _, status := range []domain.PermissionStatus{domain.PermissionUndetermined, domain.PermissionDenied} {
		provider := &FakeProvider{status: status}
		svc := newLocationService(provider)

		assert.NoError(t, svc.CheckPermission(context.Background()))

		assert.Equal(t, domain.StateUndetermined, svc.State())
		assert.Equal(t, 0, provider.promptCalls)
		assert.Equal(t, 0, provider.positionCalls)
	}
}

func TestRequestPermissionAccepted(t *testing.T) {
	provider := &FakeProvider{
		status:       domain.PermissionUndetermined,
		promptAnswer: domain.PermissionGranted,
		sample:       parisSample(),
	}
	svc := newLocationService(provider)

	granted, err := svc.RequestPermission(context.Background())
	assert.NoError(t, err)
	assert.True(t, granted)

	assert.Equal(t, domain.StateGranted, svc.State())
	assert.Equal(t, 1, provider.promptCalls)
	assert.Equal(t, 1, provider.positionCalls)
	assert.NotNil(t, svc.Sample())
}

func TestRequestPermissionSkipsPromptWhenAlreadyGranted(t *testing.T) {
	provider := &FakeProvider{status: domain.PermissionGranted, sample: parisSample()}
	svc := newLocationService(provider)

	granted, err := svc.RequestPermission(context.Background())
	assert.NoError(t, err)
	assert.True(t, granted)
	assert.Equal(t, 0, provider.promptCalls)
}

func TestRequestPermissionRejected(t *testing.T) {
	provider := &FakeProvider{
		status:       domain.PermissionUndetermined,
		promptAnswer: domain.PermissionDenied,
	}
	svc := newLocationService(provider)

	granted, err := svc.RequestPermission(context.Background())
	assert.NoError(t, err)
	assert.False(t, granted)

	assert.Equal(t, domain.StateDenied, svc.State())
	assert.Equal(t, services.DeniedReason, svc.Err())
	assert.Equal(t, 0, provider.positionCalls)
}

func TestRequestPermissionGrantedButAcquisitionFails(t *testing.T) {
	provider := &FakeProvider{
		status:       domain.PermissionUndetermined,
		promptAnswer: domain.PermissionGranted,
		positionErr:  errors.New("gps timeout"),
	}
	svc := newLocationService(provider)

	granted, err := svc.RequestPermission(context.Background())
	assert.True(t, granted)
	assert.Error(t, err)

	assert.Equal(t, domain.StateGranted, svc.State())
	assert.Contains(t, svc.Err(), "gps timeout")
	assert.Nil(t, svc.Sample())
}

func TestRefreshLocationRequiresPermission(t *testing.T) {
	provider := &FakeProvider{status: domain.PermissionUndetermined}
	svc := newLocationService(provider)

	err := svc.RefreshLocation(context.Background())
	assert.ErrorIs(t, err, domain.ErrPermissionRequired)

	// fails fast: no prompt, no device query
	assert.Equal(t, 0, provider.promptCalls)
	assert.Equal(t, 0, provider.positionCalls)
	assert.Equal(t, domain.ErrPermissionRequired.Error(), svc.Err())
}

func TestRefreshLocationDeniedState(t *testing.T) {
	provider := &FakeProvider{
		status:       domain.PermissionUndetermined,
		promptAnswer: domain.PermissionDenied,
	}
	svc := newLocationService(provider)

	_, err := svc.RequestPermission(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, domain.StateDenied, svc.State())

	err = svc.RefreshLocation(context.Background())
	assert.ErrorIs(t, err, domain.ErrPermissionRequired)
	assert.Equal(t, 0, provider.positionCalls)
}

func TestFailedRefreshPreservesLastSample(t *testing.T) {
	provider := &FakeProvider{status: domain.PermissionGranted, sample: parisSample()}
	svc := newLocationService(provider)

	assert.NoError(t, svc.CheckPermission(context.Background()))
	first := svc.Sample()
	assert.NotNil(t, first)

	provider.positionErr = errors.New("radio unavailable")
	err := svc.RefreshLocation(context.Background())
	assert.Error(t, err)

	// last-known position survives the failed attempt
	assert.Equal(t, first, svc.Sample())
	assert.Contains(t, svc.Err(), "radio unavailable")
	assert.Equal(t, domain.StateGranted, svc.State())
}

func TestSuccessfulRefreshClearsError(t *testing.T) {
	provider := &FakeProvider{status: domain.PermissionGranted, sample: parisSample()}
	svc := newLocationService(provider)

	assert.NoError(t, svc.CheckPermission(context.Background()))

	provider.positionErr = errors.New("transient")
	assert.Error(t, svc.RefreshLocation(context.Background()))
	assert.NotEmpty(t, svc.Err())

	provider.positionErr = nil
	provider.sample.Latitude = 48.9
	assert.NoError(t, svc.RefreshLocation(context.Background()))

	assert.Empty(t, svc.Err())
	assert.Equal(t, 48.9, svc.Sample().Latitude)
}

func TestStatusIsOneAtomicView(t *testing.T) {
	provider := &FakeProvider{status: domain.PermissionGranted, sample: parisSample()}
	svc := newLocationService(provider)

	assert.NoError(t, svc.CheckPermission(context.Background()))

	status := svc.Status()
	assert.Equal(t, domain.StateGranted, status.State)
	assert.False(t, status.Acquiring)
	assert.Empty(t, status.Error)
	assert.NotNil(t, status.Sample)

	// the returned sample is a copy, not a handle on internal state
	status.Sample.Latitude = 0
	assert.Equal(t, 48.8566, svc.Sample().Latitude)
}

package geo

import (
	"context"

	"github.com/wefixte/Foreach-Wildwatch/internal/core/domain"
	"github.com/wefixte/Foreach-Wildwatch/internal/core/services"
)

var _ services.LocationProvider = (*StaticProvider)(nil)

// StaticProvider reports one fixed position with permission always
// granted. Used for demos and local development without a device bridge.
type StaticProvider struct {
	sample domain.LocationSample
}

func NewStaticProvider(latitude, longitude float64) *StaticProvider {
	return &StaticProvider{
		sample: domain.LocationSample{
			Latitude:  latitude,
			Longitude: longitude,
		},
	}
}

func (p *StaticProvider) PermissionStatus(ctx context.Context) (domain.PermissionStatus, error) {
	return domain.PermissionGranted, nil
}

func (p *StaticProvider) RequestPermission(ctx context.Context) (domain.PermissionStatus, error) {
	return domain.PermissionGranted, nil
}

func (p *StaticProvider) CurrentPosition(ctx context.Context, opts domain.AcquireOptions) (*domain.LocationSample, error) {
	sample := p.sample
	return &sample, nil
}

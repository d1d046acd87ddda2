package usecases

import (
	"github.com/samirrijal/gridgeo/internal/core/domain"
	"github.com/samirrijal/gridgeo/internal/core/ports"
)

// NetworkResolver resolves element ids against a network snapshot and delegates CRS
// checks to a catalog.
type NetworkResolver struct {
	crs     ports.CRSChecker
	network *domain.Network
}

// NewNetworkResolver creates a resolver over network.
func NewNetworkResolver(crs ports.CRSChecker, network *domain.Network) *NetworkResolver {
	return &NetworkResolver{crs: crs, network: network}
}

func (r *NetworkResolver) IsSupportedCRS(name, urn string) bool {
	return r.crs.IsSupportedCRS(name, urn)
}

func (r *NetworkResolver) ResolveLine(id string) (domain.ElementRef, bool) {
	if r.network.Line(id) == nil {
		return domain.ElementRef{}, false
	}
	return domain.ElementRef{Kind: domain.KindLine, ID: id}, true
}

func (r *NetworkResolver) ResolveDanglingLine(id string) (domain.ElementRef, bool) {
	if r.network.DanglingLine(id) == nil {
		return domain.ElementRef{}, false
	}
	return domain.ElementRef{Kind: domain.KindDanglingLine, ID: id}, true
}

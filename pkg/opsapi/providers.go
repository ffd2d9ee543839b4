package opsapi

import (
	"sync"

	"github.com/teamarena/quotakit/pkg/limitprovider"
)

// providerSet keeps one provider per organization so escalation state
// survives between requests and a persisting condition is notified once.
type providerSet struct {
	factory ProviderFactory

	mu    sync.Mutex
	byOrg map[string]*limitprovider.Provider
}

func newProviderSet(factory ProviderFactory) *providerSet {
	return &providerSet{
		factory: factory,
		byOrg:   make(map[string]*limitprovider.Provider),
	}
}

func (s *providerSet) get(organizationID string) *limitprovider.Provider {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.byOrg[organizationID]
	if !ok {
		p = s.factory()
		s.byOrg[organizationID] = p
	}
	return p
}

package memory

import (
	"context"
	"sync"

	"github.com/Apurer/go-gin-sales-server/internal/domains/sales/domain"
	"github.com/Apurer/go-gin-sales-server/internal/domains/sales/ports"
)

var _ ports.CampaignReader = (*CampaignStore)(nil)

// CampaignStore keeps campaigns in memory. Campaigns are managed elsewhere, so
// Put exists for seeding and tests.
type CampaignStore struct {
	mu        sync.RWMutex
	campaigns map[int64]domain.Campaign
}

func NewCampaignStore(seed ...domain.Campaign) *CampaignStore {
	s := &CampaignStore{campaigns: map[int64]domain.Campaign{}}
	for _, c := range seed {
		s.campaigns[c.ID] = c
	}
	return s
}

// Put stores or replaces a campaign after validating it.
func (s *CampaignStore) Put(c domain.Campaign) error {
	if err := c.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.campaigns[c.ID] = c
	return nil
}

func (s *CampaignStore) FindByIDs(_ context.Context, ids []int64) (map[int64]domain.Campaign, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[int64]domain.Campaign, len(ids))
	for _, id := range ids {
		if c, ok := s.campaigns[id]; ok {
			out[id] = c
		}
	}
	return out, nil
}

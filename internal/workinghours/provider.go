package workinghours

import (
	"context"
	"strconv"
	"time"

	gocache "github.com/patrickmn/go-cache"

	domain "github.com/BruksfildServices01/salon-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/salon-scheduler/internal/models"
)

// Source loads every working-hours row of a salon.
type Source interface {
	ListWorkingHours(ctx context.Context, salonID uint) ([]models.WorkingHours, error)
}

// Provider answers "what are this provider's hours on this date", caching the
// salon's rows for a short TTL. Writers call Invalidate after a change.
type Provider struct {
	source Source
	cache  *gocache.Cache
}

func NewProvider(source Source, ttl time.Duration) *Provider {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &Provider{
		source: source,
		cache:  gocache.New(ttl, 2*ttl),
	}
}

// For resolves the hours of providerID on day. ok=false means closed.
func (p *Provider) For(
	ctx context.Context,
	salonID uint,
	providerID uint,
	day time.Time,
) (hours domain.WorkingHours, ok bool, err error) {

	rows, err := p.rows(ctx, salonID)
	if err != nil {
		return domain.WorkingHours{}, false, err
	}

	hours, ok = domain.ResolveWorkingHours(rows, providerID, day.Weekday())
	return hours, ok, nil
}

func (p *Provider) Invalidate(salonID uint) {
	p.cache.Delete(key(salonID))
}

func (p *Provider) rows(ctx context.Context, salonID uint) ([]models.WorkingHours, error) {
	if v, found := p.cache.Get(key(salonID)); found {
		return v.([]models.WorkingHours), nil
	}

	rows, err := p.source.ListWorkingHours(ctx, salonID)
	if err != nil {
		return nil, err
	}

	p.cache.SetDefault(key(salonID), rows)
	return rows, nil
}

func key(salonID uint) string {
	return "wh:" + strconv.FormatUint(uint64(salonID), 10)
}

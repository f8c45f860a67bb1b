package rates

import (
	"context"
	"fmt"
	"time"

	"github.com/etnz/fiscal/date"
	"github.com/patrickmn/go-cache"
	"github.com/phuslu/log"
	"github.com/shopspring/decimal"
)

// DefaultTTL is how long a cached rate is kept.
const DefaultTTL = 24 * time.Hour

// missing is cached for days known to have no rate.
type missing struct{}

// Cache is a Provider backed by a Source. Rates are cached per pair and day,
// including the absence of rate. It is safe for concurrent use.
type Cache struct {
	source Source
	store  *cache.Cache
	logger *log.Logger
}

// NewCache returns a cache over source. source can be nil, then only
// injected rates are known.
func NewCache(source Source, ttl time.Duration, logger *log.Logger) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = &log.DefaultLogger
	}
	return &Cache{
		source: source,
		store:  cache.New(ttl, 2*ttl),
		logger: logger,
	}
}

func key(p Pair, on date.Date) string { return p.String() + "|" + on.String() }

// lookup returns the cached rate, hit is false if nothing is cached.
func (c *Cache) lookup(p Pair, on date.Date) (rate decimal.Decimal, ok, hit bool) {
	v, hit := c.store.Get(key(p, on))
	if !hit {
		return decimal.Decimal{}, false, false
	}
	rate, ok = v.(decimal.Decimal)
	return rate, ok, true
}

// Rate returns the rate of the pair on a day, fetching it from the source
// on a cache miss.
func (c *Cache) Rate(ctx context.Context, from, to string, on date.Date) (decimal.Decimal, bool, error) {
	if from == to {
		return one, true, nil
	}
	p := Pair{From: from, To: to}
	if rate, ok, hit := c.lookup(p, on); hit {
		return rate, ok, nil
	}
	if c.source == nil {
		return decimal.Decimal{}, false, nil
	}
	if err := c.load(ctx, p, date.Range{From: on, To: on}); err != nil {
		return decimal.Decimal{}, false, err
	}
	rate, ok, _ := c.lookup(p, on)
	return rate, ok, nil
}

// Preload fetches every pair over the range at once, and caches a rate, or
// its absence, for every day of the range.
func (c *Cache) Preload(ctx context.Context, pairs []Pair, r date.Range) error {
	if c.source == nil || r.IsEmpty() {
		return nil
	}
	for _, p := range pairs {
		if err := c.load(ctx, p, r); err != nil {
			return err
		}
	}
	return nil
}

func (c *Cache) load(ctx context.Context, p Pair, r date.Range) error {
	h, err := c.source.Fetch(ctx, p, lookbackRange(r))
	if err != nil {
		return fmt.Errorf("cannot fetch %s rates for %s: %w", p, r, err)
	}
	found := 0
	for day := range r.Days() {
		quoted, v, ok := h.ValueWithin(day, Lookback)
		if !ok || !v.IsPositive() {
			c.store.Set(key(p, day), missing{}, cache.DefaultExpiration)
			continue
		}
		if quoted != day {
			c.logger.Debug().Stringer("pair", p).Stringer("date", day).Stringer("quote", quoted).Msg("using an earlier quote")
		}
		c.store.Set(key(p, day), v, cache.DefaultExpiration)
		found++
	}
	c.logger.Info().Stringer("pair", p).Stringer("range", r).Int("quotes", h.Len()).Int("days", found).Msg("rates loaded")
	return nil
}

// Inject stores a known rate, typically a live quote, and its inverse.
func (c *Cache) Inject(p Pair, on date.Date, rate decimal.Decimal) {
	c.store.Set(key(p, on), rate, cache.DefaultExpiration)
	if rate.IsPositive() {
		c.store.Set(key(p.Inverse(), on), one.Div(rate), cache.DefaultExpiration)
	}
}

// Flush empties the cache.
func (c *Cache) Flush() { c.store.Flush() }

// Len returns the number of cached entries, including cached absences.
func (c *Cache) Len() int { return c.store.ItemCount() }

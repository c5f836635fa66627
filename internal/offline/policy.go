package offline

import (
	"fmt"
	"regexp"
	"time"

	"github.com/teamup-app/teamup-backend/config"
)

// Strategy decides how a request is served relative to its cache
type Strategy int

const (
	CacheFirst Strategy = iota
	NetworkFirst
	StaleWhileRevalidate
)

func (s Strategy) String() string {
	switch s {
	case CacheFirst:
		return "cache-first"
	case NetworkFirst:
		return "network-first"
	case StaleWhileRevalidate:
		return "stale-while-revalidate"
	default:
		return fmt.Sprintf("strategy(%d)", int(s))
	}
}

// Route binds a URL pattern to a strategy and a named cache.
// Zero MaxEntries or MaxAge means no ceiling.
type Route struct {
	Name       string
	Pattern    *regexp.Regexp
	Strategy   Strategy
	MaxEntries int
	MaxAge     time.Duration
}

func (r Route) matches(rawURL string) bool {
	return r.Pattern != nil && r.Pattern.MatchString(rawURL)
}

// Policy is an ordered route table; the first matching route wins and
// unmatched URLs use the fallback route.
type Policy struct {
	routes   []Route
	fallback Route
}

func NewPolicy(fallback Route, routes ...Route) *Policy {
	return &Policy{routes: routes, fallback: fallback}
}

// Match returns the route that applies to rawURL
func (p *Policy) Match(rawURL string) Route {
	for _, r := range p.routes {
		if r.matches(rawURL) {
			return r
		}
	}
	return p.fallback
}

const (
	AssetCache    = "static-assets"
	RealtimeCache = "firebase-realtime"
	APICache      = "external-api"
)

// DefaultPolicy builds the standard route table:
//
//	realtime database host  network-first            50 entries, 300s
//	external API host       stale-while-revalidate   10 entries, 86400s
//	anything else           cache-first
func DefaultPolicy(cfg config.OfflineConfig) (*Policy, error) {
	realtime, err := regexp.Compile(cfg.RealtimePattern)
	if err != nil {
		return nil, fmt.Errorf("invalid realtime pattern: %w", err)
	}
	api, err := regexp.Compile(cfg.APIPattern)
	if err != nil {
		return nil, fmt.Errorf("invalid api pattern: %w", err)
	}

	return NewPolicy(
		Route{Name: AssetCache, Strategy: CacheFirst, MaxEntries: 100},
		Route{
			Name:       RealtimeCache,
			Pattern:    realtime,
			Strategy:   NetworkFirst,
			MaxEntries: 50,
			MaxAge:     300 * time.Second,
		},
		Route{
			Name:       APICache,
			Pattern:    api,
			Strategy:   StaleWhileRevalidate,
			MaxEntries: 10,
			MaxAge:     86400 * time.Second,
		},
	), nil
}

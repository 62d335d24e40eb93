package cache

import "time"

// Policy decides how long a successful fetch counts as fresh. A window of
// zero means the entry is revalidated on every read.
type Policy struct {
	Default time.Duration
	// Windows is keyed by resource type or by group; the exact type wins
	Windows map[string]time.Duration
}

// DefaultPolicy is the staleness policy used unless configured otherwise
func DefaultPolicy() Policy {
	return Policy{
		Default: 0,
		Windows: map[string]time.Duration{
			"quota":      0,
			"payments":   0,
			"chat":       0,
			"dashboard":  30 * time.Second,
			"candidates": 30 * time.Second,
			"jobs":       time.Minute,
			"profile":    5 * time.Minute,
			"packages":   10 * time.Minute,
		},
	}
}

// StaleAfter returns the freshness window of rt
func (p Policy) StaleAfter(rt ResourceType) time.Duration {
	if d, ok := p.Windows[string(rt)]; ok {
		return d
	}
	if d, ok := p.Windows[rt.Group()]; ok {
		return d
	}
	return p.Default
}

// With returns a copy of p with the window for key set to d
func (p Policy) With(key string, d time.Duration) Policy {
	windows := make(map[string]time.Duration, len(p.Windows)+1)
	for k, v := range p.Windows {
		windows[k] = v
	}
	windows[key] = d
	return Policy{Default: p.Default, Windows: windows}
}

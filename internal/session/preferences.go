package session

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/rs/zerolog"
)

type prefsState struct {
	Compact bool `json:"compact"`
}

type persistedPrefs struct {
	State   prefsState `json:"state"`
	Version int        `json:"version"`
}

// Preferences are UI settings kept in their own slot, independent of the
// signed-in company.
type Preferences struct {
	kv     KV
	logger zerolog.Logger

	mu    sync.Mutex
	state prefsState
}

// NewPreferences loads preferences from kv
func NewPreferences(ctx context.Context, kv KV, logger zerolog.Logger) *Preferences {
	p := &Preferences{kv: kv, logger: logger.With().Str("component", "preferences").Logger()}
	raw, ok, err := kv.Get(ctx, PreferencesKey)
	if err != nil {
		p.logger.Warn().Err(err).Msg("could not read preferences")
		return p
	}
	if ok {
		var stored persistedPrefs
		if err := json.Unmarshal(raw, &stored); err != nil {
			p.logger.Warn().Err(err).Msg("ignoring corrupt preferences")
			return p
		}
		p.state = stored.State
	}
	return p
}

// Compact reports whether lists render in compact form
func (p *Preferences) Compact() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state.Compact
}

// SetCompact sets the compact list preference
func (p *Preferences) SetCompact(compact bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state.Compact = compact
	p.persistLocked()
}

// ToggleCompact flips the compact list preference and returns the new value
func (p *Preferences) ToggleCompact() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state.Compact = !p.state.Compact
	p.persistLocked()
	return p.state.Compact
}

func (p *Preferences) persistLocked() {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	raw, err := json.Marshal(persistedPrefs{State: p.state, Version: persistVersion})
	if err != nil {
		p.logger.Error().Err(err).Msg("encode preferences")
		return
	}
	if err := p.kv.Set(ctx, PreferencesKey, raw); err != nil {
		p.logger.Warn().Err(err).Msg("persist preferences failed")
	}
}

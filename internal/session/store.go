// Package session holds who is signed in. The Store is the only writer of
// the persisted auth slot; every mutation is written through to the KV
// before the lock is released, so memory and storage never disagree.
package session

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"
	"time"

	"github.com/justformeokay/Karir-Nusantara-Company-sub000/pkg/models"
	"github.com/rs/zerolog"
)

// Slot keys
const (
	AuthKey              = "karir-company-auth"
	DocumentsCompleteKey = "karir-documents-complete"
	PreferencesKey       = "karir-ui-preferences"
)

const (
	persistVersion = 0
	persistTimeout = 5 * time.Second
)

// Snapshot is a consistent, caller-owned view of the session
type Snapshot struct {
	Token           string
	Company         *models.CompanyProfile
	IsAuthenticated bool
	Loading         bool
}

type authState struct {
	Token           string                 `json:"token"`
	Company         *models.CompanyProfile `json:"company"`
	IsAuthenticated bool                   `json:"isAuthenticated"`
}

type persistedAuth struct {
	State   authState `json:"state"`
	Version int       `json:"version"`
}

// Store is the session store
type Store struct {
	kv     KV
	logger zerolog.Logger

	mu      sync.RWMutex
	token   string
	company *models.CompanyProfile
	loading bool

	subMu   sync.Mutex
	subs    map[int]func(Snapshot)
	nextSub int
}

// NewStore rehydrates a Store from kv. A missing or unreadable slot yields
// an empty session.
func NewStore(ctx context.Context, kv KV, logger zerolog.Logger) *Store {
	s := &Store{
		kv:     kv,
		logger: logger.With().Str("component", "session").Logger(),
		subs:   map[int]func(Snapshot){},
	}
	s.rehydrate(ctx)
	return s
}

func (s *Store) rehydrate(ctx context.Context) {
	raw, ok, err := s.kv.Get(ctx, AuthKey)
	if err != nil {
		s.logger.Warn().Err(err).Msg("could not read persisted session")
		return
	}
	if !ok {
		return
	}
	var p persistedAuth
	if err := json.Unmarshal(raw, &p); err != nil {
		s.logger.Warn().Err(err).Msg("ignoring corrupt persisted session")
		return
	}
	if p.State.Token == "" || p.State.Company == nil {
		return
	}
	s.token = p.State.Token
	s.company = p.State.Company
}

// SetAuth signs a company in. Both token and company are required; a call
// missing either is ignored.
func (s *Store) SetAuth(token string, company *models.CompanyProfile) {
	if token == "" || company == nil {
		s.logger.Warn().Msg("SetAuth called without token or company, ignoring")
		return
	}
	c := *company

	s.mu.Lock()
	s.token = token
	s.company = &c
	s.persistLocked()
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snap)
}

// UpdateCompany merges patch into the current company. It is a no-op when
// nobody is signed in.
func (s *Store) UpdateCompany(patch models.CompanyPatch) {
	s.mu.Lock()
	if s.company == nil {
		s.mu.Unlock()
		return
	}
	c := *s.company
	patch.Apply(&c)
	s.company = &c
	s.persistLocked()
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snap)
}

// Logout clears the session. Calling it while signed out still clears and
// persists.
func (s *Store) Logout() {
	s.mu.Lock()
	s.token = ""
	s.company = nil
	s.persistLocked()
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snap)
}

// SetLoading toggles the transient loading flag. It is never persisted.
func (s *Store) SetLoading(loading bool) {
	s.mu.Lock()
	s.loading = loading
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snap)
}

// Snapshot returns the current session
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Token returns the bearer token, or "" when signed out
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// IsAuthenticated reports whether both a token and a company are held
func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != "" && s.company != nil
}

// Company returns a copy of the signed-in company
func (s *Store) Company() (models.CompanyProfile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.company == nil {
		return models.CompanyProfile{}, false
	}
	return *s.company, true
}

// TokenExpiry returns the expiry claimed by the current token
func (s *Store) TokenExpiry() (time.Time, bool) {
	return TokenExpiry(s.Token())
}

// Subscribe registers fn to run after every session change. The returned
// func unregisters it.
func (s *Store) Subscribe(fn func(Snapshot)) func() {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

func (s *Store) notify(snap Snapshot) {
	s.subMu.Lock()
	fns := make([]func(Snapshot), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}

func (s *Store) snapshotLocked() Snapshot {
	snap := Snapshot{
		Token:           s.token,
		IsAuthenticated: s.token != "" && s.company != nil,
		Loading:         s.loading,
	}
	if s.company != nil {
		c := *s.company
		snap.Company = &c
	}
	return snap
}

// persistLocked writes the auth slot and the documents flag. Must be called
// with mu held. Failures are logged and dropped.
func (s *Store) persistLocked() {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	p := persistedAuth{
		State: authState{
			Token:           s.token,
			Company:         s.company,
			IsAuthenticated: s.token != "" && s.company != nil,
		},
		Version: persistVersion,
	}
	raw, err := json.Marshal(p)
	if err != nil {
		s.logger.Error().Err(err).Msg("encode session")
		return
	}
	if err := s.kv.Set(ctx, AuthKey, raw); err != nil {
		s.logger.Warn().Err(err).Msg("persist session failed")
	}

	if s.company == nil {
		if err := s.kv.Delete(ctx, DocumentsCompleteKey); err != nil {
			s.logger.Warn().Err(err).Msg("clear documents flag failed")
		}
		return
	}
	flag := strconv.FormatBool(s.company.DocumentsComplete())
	if err := s.kv.Set(ctx, DocumentsCompleteKey, []byte(flag)); err != nil {
		s.logger.Warn().Err(err).Msg("persist documents flag failed")
	}
}

// DocumentsComplete reads the persisted documents flag
func DocumentsComplete(ctx context.Context, kv KV) bool {
	raw, ok, err := kv.Get(ctx, DocumentsCompleteKey)
	if err != nil || !ok {
		return false
	}
	v, _ := strconv.ParseBool(string(raw))
	return v
}

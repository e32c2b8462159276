package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/CaptainYami1/Flowvahub-Test/internal/domain"
	"github.com/CaptainYami1/Flowvahub-Test/internal/logger"
	"github.com/CaptainYami1/Flowvahub-Test/internal/service"
)

const (
	DefaultPollInterval = 3 * time.Second
	// bound on a remote mutation that nobody waits for any more
	detachedTimeout = 30 * time.Second
	resubscribeWait = 2 * time.Second
)

// State is a snapshot of what the user sees
type State struct {
	UserID    string
	Confirmed domain.BalanceRecord
	Pending   int64
	Display   int64
}

type Option func(*Session)

func WithPollInterval(d time.Duration) Option {
	return func(s *Session) { s.pollInterval = d }
}

func WithCatalog(c *service.Catalog) Option {
	return func(s *Session) { s.catalog = c }
}

// WithOnChange registers a callback run after every state change
func WithOnChange(fn func(State)) Option {
	return func(s *Session) { s.onChange = fn }
}

func WithClock(now service.Clock) Option {
	return func(s *Session) { s.now = now }
}

// Session is safe for concurrent use. Several sessions of one user only
// interact through the server.
type Session struct {
	connect      Connector
	pollInterval time.Duration
	catalog      *service.Catalog
	onChange     func(State)
	now          service.Clock
	log          *slog.Logger

	mu        sync.Mutex
	epoch     uint64
	userID    string
	remote    Remote
	config    domain.RewardConfig
	confirmed domain.BalanceRecord
	pending   map[uint64]int64
	seq       uint64
	stopSync  context.CancelFunc
	syncDone  chan struct{}
}

func New(connect Connector, opts ...Option) *Session {
	s := &Session{
		connect:      connect,
		pollInterval: DefaultPollInterval,
		catalog:      service.DefaultCatalog(),
		now:          time.Now,
		log:          logger.Component("session"),
		pending:      make(map[uint64]int64),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Run consumes auth events until ctx is done or events is closed
func (s *Session) Run(ctx context.Context, events <-chan AuthEvent) error {
	defer s.Logout()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if err := s.HandleAuth(ctx, ev); err != nil {
				s.log.Warn("auth event failed", "kind", ev.Kind, "user_id", ev.UserID, "error", err)
			}
		}
	}
}

func (s *Session) HandleAuth(ctx context.Context, ev AuthEvent) error {
	switch ev.Kind {
	case AuthLogout:
		s.Logout()
		return nil
	case AuthLogin, AuthTokenRefresh:
		remote, err := s.connect(ctx, ev)
		if err != nil {
			return err
		}
		if id, err := domain.NormalizeUserID(ev.UserID); err == nil && ev.Kind == AuthTokenRefresh && s.UserID() == id {
			s.swapRemote(ctx, remote)
			return nil
		}
		return s.Login(ctx, ev.UserID, remote)
	}
	return errors.New("unknown auth event " + string(ev.Kind))
}

// Login resets the session for userID, loads config, starts the realtime
// listener and poll loop, then reads the balance.
func (s *Session) Login(ctx context.Context, userID string, remote Remote) error {
	userID, err := domain.NormalizeUserID(userID)
	if err != nil {
		return err
	}
	s.Logout()

	cfg, err := remote.RewardConfig(ctx)
	if err != nil {
		s.log.Warn("failed to load reward config", "error", err)
	}

	s.mu.Lock()
	s.epoch++
	s.userID = userID
	s.remote = remote
	s.config = cfg
	s.mu.Unlock()

	// subscribed before the first read so no update falls in between
	s.startSync(remote)
	return s.Refresh(ctx)
}

// Logout stops syncing and discards all local state, pending included
func (s *Session) Logout() {
	s.mu.Lock()
	stop, done := s.stopSync, s.syncDone
	s.stopSync, s.syncDone = nil, nil
	s.epoch++
	s.userID = ""
	s.remote = nil
	s.confirmed = domain.BalanceRecord{}
	s.pending = make(map[uint64]int64)
	s.mu.Unlock()

	if stop != nil {
		stop()
		<-done
	}
	s.changed()
}

func (s *Session) swapRemote(ctx context.Context, remote Remote) {
	s.mu.Lock()
	stop, done := s.stopSync, s.syncDone
	s.stopSync, s.syncDone = nil, nil
	s.remote = remote
	s.mu.Unlock()

	if stop != nil {
		stop()
		<-done
	}
	s.startSync(remote)
	if err := s.Refresh(ctx); err != nil {
		s.log.Warn("refresh after token refresh failed", "error", err)
	}
}

func (s *Session) UserID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userID
}

func (s *Session) RewardConfig() domain.RewardConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.config
}

// State returns the current view
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

func (s *Session) stateLocked() State {
	var p int64
	for _, d := range s.pending {
		p += d
	}
	return State{
		UserID:    s.userID,
		Confirmed: s.confirmed,
		Pending:   p,
		Display:   s.confirmed.Balance + p,
	}
}

// Display is the confirmed balance plus every in-flight delta
func (s *Session) Display() int64 {
	return s.State().Display
}

// Spendable is the confirmed balance minus in-flight debits. Pending
// credits are left out until the server confirms them.
func (s *Session) Spendable() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.confirmed.Balance
	for _, d := range s.pending {
		if d < 0 {
			n += d
		}
	}
	return n
}

// SetConfirmed merges an authoritative snapshot. Push and poll both land
// here; a snapshot older than the current one by (row, version) is ignored.
func (s *Session) SetConfirmed(rec domain.BalanceRecord) bool {
	s.mu.Lock()
	ok := s.mergeLocked(rec)
	s.mu.Unlock()

	if ok {
		s.changed()
	}
	return ok
}

func (s *Session) mergeLocked(rec domain.BalanceRecord) bool {
	if s.userID == "" || rec.UserID != s.userID {
		return false
	}
	if s.confirmed.ID != 0 && !rec.Newer(s.confirmed) {
		return false
	}
	s.confirmed = rec
	return true
}

// Refresh re-reads the authoritative balance
func (s *Session) Refresh(ctx context.Context) error {
	remote, _, err := s.current()
	if err != nil {
		return err
	}
	rec, err := remote.Balance(ctx)
	if err != nil {
		return err
	}
	s.SetConfirmed(rec)
	return nil
}

func (s *Session) current() (Remote, uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.remote == nil {
		return nil, 0, ErrNotLoggedIn
	}
	return s.remote, s.epoch, nil
}

func (s *Session) changed() {
	if s.onChange == nil {
		return
	}
	s.onChange(s.State())
}

func (s *Session) startSync(remote Remote) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	first, err := remote.Subscribe(ctx)
	if err != nil {
		s.log.Debug("subscribe failed", "error", err)
	}

	s.mu.Lock()
	s.stopSync, s.syncDone = cancel, done
	s.mu.Unlock()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		s.pollLoop(ctx, remote)
	}()
	go func() {
		defer wg.Done()
		s.listen(ctx, remote, first)
	}()
	go func() {
		wg.Wait()
		close(done)
	}()
}

// pollLoop is the fallback path for notifications the listener missed
func (s *Session) pollLoop(ctx context.Context, remote Remote) {
	if s.pollInterval <= 0 {
		return
	}
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rec, err := remote.Balance(ctx)
			if err != nil {
				if ctx.Err() == nil {
					s.log.Debug("balance poll failed", "error", err)
				}
				continue
			}
			s.SetConfirmed(rec)
		}
	}
}

// listen merges pushed snapshots, resubscribing after a broken stream
func (s *Session) listen(ctx context.Context, remote Remote, ch <-chan domain.BalanceRecord) {
	for {
		if ch != nil {
			for rec := range ch {
				s.SetConfirmed(rec)
			}
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(resubscribeWait):
		}

		var err error
		ch, err = remote.Subscribe(ctx)
		if err != nil && ctx.Err() == nil {
			s.log.Debug("subscribe failed", "error", err)
		}
	}
}

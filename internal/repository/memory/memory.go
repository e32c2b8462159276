// Package memory provides in-memory repositories with the same contract as
// the Postgres ones (for tests and STORE_DRIVER=memory).
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/CaptainYami1/Flowvahub-Test/internal/domain"
)

// Store bundles one repository per table
type Store struct {
	Balances     *BalanceRepository
	Claims       *ClaimRepository
	Referrals    *ReferralRepository
	Redemptions  *RedemptionRepository
	RewardConfig *RewardConfigRepository
}

func New() *Store {
	return &Store{
		Balances:     NewBalanceRepository(),
		Claims:       NewClaimRepository(),
		Referrals:    NewReferralRepository(),
		Redemptions:  NewRedemptionRepository(),
		RewardConfig: &RewardConfigRepository{},
	}
}

// =============================================================================
// BALANCES
// =============================================================================

type BalanceRepository struct {
	mu     sync.RWMutex
	seq    int64
	rows   map[int64]domain.BalanceRecord
	failOn map[string][]error
}

func NewBalanceRepository() *BalanceRepository {
	return &BalanceRepository{
		rows:   make(map[int64]domain.BalanceRecord),
		failOn: make(map[string][]error),
	}
}

// FailNext queues err for the next call of op ("list", "insert",
// "increment", "delete"). Queued errors are returned in order.
func (r *BalanceRepository) FailNext(op string, err error) {
	r.mu.Lock()
	r.failOn[op] = append(r.failOn[op], err)
	r.mu.Unlock()
}

func (r *BalanceRepository) takeFailure(op string) error {
	queue := r.failOn[op]
	if len(queue) == 0 {
		return nil
	}
	r.failOn[op] = queue[1:]
	return queue[0]
}

// SeedRow inserts a row with an explicit id, as a racing writer would have
func (r *BalanceRepository) SeedRow(rec domain.BalanceRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = time.Now().UTC()
	}
	r.rows[rec.ID] = rec
	if rec.ID > r.seq {
		r.seq = rec.ID
	}
}

func (r *BalanceRepository) ListByUser(_ context.Context, userID string) ([]domain.BalanceRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.takeFailure("list"); err != nil {
		return nil, err
	}

	var result []domain.BalanceRecord
	for _, b := range r.rows {
		if b.UserID == userID {
			result = append(result, b)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (r *BalanceRepository) Insert(_ context.Context, userID string, balance int64) (domain.BalanceRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.takeFailure("insert"); err != nil {
		return domain.BalanceRecord{}, err
	}

	r.seq++
	b := domain.BalanceRecord{
		ID:        r.seq,
		UserID:    userID,
		Balance:   balance,
		UpdatedAt: time.Now().UTC(),
	}
	r.rows[b.ID] = b
	return b, nil
}

func (r *BalanceRepository) Increment(_ context.Context, id int64, delta int64) (domain.BalanceRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.takeFailure("increment"); err != nil {
		return domain.BalanceRecord{}, err
	}

	b, ok := r.rows[id]
	if !ok {
		return domain.BalanceRecord{}, domain.ErrNotFound
	}
	if b.Balance+delta < 0 {
		return domain.BalanceRecord{}, &domain.InsufficientBalanceError{UserID: b.UserID, Available: b.Balance, Requested: -delta}
	}
	b.Balance += delta
	b.Version++
	b.UpdatedAt = time.Now().UTC()
	r.rows[id] = b
	return b, nil
}

func (r *BalanceRepository) DeleteByIDs(_ context.Context, ids []int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.takeFailure("delete"); err != nil {
		return 0, err
	}

	var n int64
	for _, id := range ids {
		if _, ok := r.rows[id]; ok {
			delete(r.rows, id)
			n++
		}
	}
	return n, nil
}

func (r *BalanceRepository) UsersWithDuplicates(_ context.Context, limit int) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := make(map[string]int)
	for _, b := range r.rows {
		counts[b.UserID]++
	}
	var users []string
	for u, n := range counts {
		if n > 1 {
			users = append(users, u)
		}
	}
	sort.Strings(users)
	if limit > 0 && len(users) > limit {
		users = users[:limit]
	}
	return users, nil
}

// =============================================================================
// CLAIMS
// =============================================================================

type claimKey struct {
	UserID    string
	EventType domain.EventType
	Key       string
}

type ClaimRepository struct {
	mu     sync.RWMutex
	seq    int64
	rows   map[int64]domain.ClaimRecord
	unique map[claimKey]int64
	failOn map[string][]error
}

func NewClaimRepository() *ClaimRepository {
	return &ClaimRepository{
		rows:   make(map[int64]domain.ClaimRecord),
		unique: make(map[claimKey]int64),
		failOn: make(map[string][]error),
	}
}

// FailNext queues err for the next call of op ("insert", "exists", "list", "delete")
func (r *ClaimRepository) FailNext(op string, err error) {
	r.mu.Lock()
	r.failOn[op] = append(r.failOn[op], err)
	r.mu.Unlock()
}

func (r *ClaimRepository) takeFailure(op string) error {
	queue := r.failOn[op]
	if len(queue) == 0 {
		return nil
	}
	r.failOn[op] = queue[1:]
	return queue[0]
}

// SeedRow inserts a claim bypassing the unique index, the way a legacy
// table without the index could hold duplicates.
func (r *ClaimRepository) SeedRow(rec domain.ClaimRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	r.rows[rec.ID] = rec
	k := claimKey{rec.UserID, rec.EventType, rec.Key}
	if _, ok := r.unique[k]; !ok {
		r.unique[k] = rec.ID
	}
	if rec.ID > r.seq {
		r.seq = rec.ID
	}
}

func (r *ClaimRepository) Insert(_ context.Context, c *domain.ClaimRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.takeFailure("insert"); err != nil {
		return err
	}

	k := claimKey{c.UserID, c.EventType, c.Key}
	if _, ok := r.unique[k]; ok {
		return domain.ErrDuplicate
	}
	r.seq++
	c.ID = r.seq
	c.CreatedAt = time.Now().UTC()
	r.rows[c.ID] = *c
	r.unique[k] = c.ID
	return nil
}

func (r *ClaimRepository) Exists(_ context.Context, userID string, event domain.EventType, key string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.takeFailure("exists"); err != nil {
		return false, err
	}
	_, ok := r.unique[claimKey{userID, event, key}]
	return ok, nil
}

func (r *ClaimRepository) ListByUser(_ context.Context, userID string, event domain.EventType, since time.Time) ([]domain.ClaimRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.takeFailure("list"); err != nil {
		return nil, err
	}
	return r.filterLocked(func(c domain.ClaimRecord) bool {
		return c.UserID == userID && c.EventType == event && !c.CreatedAt.Before(since)
	}), nil
}

func (r *ClaimRepository) ListAllByUser(_ context.Context, userID string) ([]domain.ClaimRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.takeFailure("list"); err != nil {
		return nil, err
	}
	return r.filterLocked(func(c domain.ClaimRecord) bool { return c.UserID == userID }), nil
}

func (r *ClaimRepository) filterLocked(keep func(domain.ClaimRecord) bool) []domain.ClaimRecord {
	var result []domain.ClaimRecord
	for _, c := range r.rows {
		if keep(c) {
			result = append(result, c)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

func (r *ClaimRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.takeFailure("delete"); err != nil {
		return err
	}
	if !r.deleteLocked(id) {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ClaimRepository) DeleteByIDs(_ context.Context, ids []int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.takeFailure("delete"); err != nil {
		return 0, err
	}
	var n int64
	for _, id := range ids {
		if r.deleteLocked(id) {
			n++
		}
	}
	return n, nil
}

func (r *ClaimRepository) deleteLocked(id int64) bool {
	c, ok := r.rows[id]
	if !ok {
		return false
	}
	delete(r.rows, id)

	k := claimKey{c.UserID, c.EventType, c.Key}
	if r.unique[k] != id {
		return true
	}
	delete(r.unique, k)
	// a surviving duplicate keeps the key claimed
	for _, other := range r.rows {
		if (claimKey{other.UserID, other.EventType, other.Key}) == k {
			if cur, ok := r.unique[k]; !ok || other.ID < cur {
				r.unique[k] = other.ID
			}
		}
	}
	return true
}

// =============================================================================
// REFERRALS
// =============================================================================

type ReferralRepository struct {
	mu        sync.RWMutex
	seq       int64
	codes     map[string]string // user -> code
	owners    map[string]string // code -> user
	referrals map[string]domain.ReferralRecord
}

func NewReferralRepository() *ReferralRepository {
	return &ReferralRepository{
		codes:     make(map[string]string),
		owners:    make(map[string]string),
		referrals: make(map[string]domain.ReferralRecord),
	}
}

func (r *ReferralRepository) InsertCode(_ context.Context, userID, code string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.codes[userID]; ok {
		return domain.ErrDuplicate
	}
	if _, ok := r.owners[code]; ok {
		return domain.ErrDuplicate
	}
	r.codes[userID] = code
	r.owners[code] = userID
	return nil
}

func (r *ReferralRepository) CodeByUser(_ context.Context, userID string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	code, ok := r.codes[userID]
	if !ok {
		return "", domain.ErrNotFound
	}
	return code, nil
}

func (r *ReferralRepository) UserByCode(_ context.Context, code string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	userID, ok := r.owners[code]
	if !ok {
		return "", domain.ErrNotFound
	}
	return userID, nil
}

func (r *ReferralRepository) InsertReferral(_ context.Context, ref *domain.ReferralRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.referrals[ref.ReferredUserID]; ok {
		return domain.ErrDuplicate
	}
	r.seq++
	ref.ID = r.seq
	ref.CreatedAt = time.Now().UTC()
	r.referrals[ref.ReferredUserID] = *ref
	return nil
}

func (r *ReferralRepository) ReferralOf(_ context.Context, referredID string) (domain.ReferralRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ref, ok := r.referrals[referredID]
	if !ok {
		return domain.ReferralRecord{}, domain.ErrNotFound
	}
	return ref, nil
}

func (r *ReferralRepository) CountByReferrer(ctx context.Context, referrerID string) (int, error) {
	refs, err := r.ListByReferrer(ctx, referrerID)
	return len(refs), err
}

func (r *ReferralRepository) ListByReferrer(_ context.Context, referrerID string) ([]domain.ReferralRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []domain.ReferralRecord
	for _, ref := range r.referrals {
		if ref.ReferrerID == referrerID {
			result = append(result, ref)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID > result[j].ID })
	return result, nil
}

// =============================================================================
// REDEMPTIONS & CONFIG
// =============================================================================

type RedemptionRepository struct {
	mu   sync.RWMutex
	seq  int64
	rows []domain.RedemptionRecord
}

func NewRedemptionRepository() *RedemptionRepository {
	return &RedemptionRepository{}
}

func (r *RedemptionRepository) Insert(_ context.Context, rec *domain.RedemptionRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	rec.ID = r.seq
	rec.CreatedAt = time.Now().UTC()
	r.rows = append(r.rows, *rec)
	return nil
}

func (r *RedemptionRepository) ListByUser(_ context.Context, userID string, limit int) ([]domain.RedemptionRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []domain.RedemptionRecord
	for i := len(r.rows) - 1; i >= 0; i-- {
		if r.rows[i].UserID == userID {
			result = append(result, r.rows[i])
			if limit > 0 && len(result) == limit {
				break
			}
		}
	}
	return result, nil
}

// RewardConfigRepository returns ErrNotFound until Set is called, like an
// empty reward_config table.
type RewardConfigRepository struct {
	mu    sync.RWMutex
	cfg   *domain.RewardConfig
	calls int
}

func (r *RewardConfigRepository) Set(cfg domain.RewardConfig) {
	r.mu.Lock()
	r.cfg = &cfg
	r.mu.Unlock()
}

// Calls reports how many times Get was invoked
func (r *RewardConfigRepository) Calls() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.calls
}

func (r *RewardConfigRepository) Get(_ context.Context) (domain.RewardConfig, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.cfg == nil {
		return domain.RewardConfig{}, domain.ErrNotFound
	}
	return *r.cfg, nil
}

package session

import (
	"context"

	"github.com/CaptainYami1/Flowvahub-Test/internal/domain"
)

// CanClaim asks the server whether event is still claimable
func (s *Session) CanClaim(ctx context.Context, event domain.EventType) (bool, error) {
	remote, _, err := s.current()
	if err != nil {
		return false, err
	}
	key := domain.KeyOnce
	if event == domain.EventDaily {
		key = domain.DateKey(s.now())
	}
	claimed, err := remote.HasClaimed(ctx, event, key)
	if err != nil {
		return false, err
	}
	return !claimed, nil
}

func (s *Session) ClaimDaily(ctx context.Context) (domain.ClaimResult, error) {
	return s.claim(ctx, "claim daily reward", domain.EventDaily, nil)
}

func (s *Session) ClaimShare(ctx context.Context) (domain.ClaimResult, error) {
	return s.claim(ctx, "claim share reward", domain.EventShareStack, nil)
}

// ClaimTopTool validates the form locally before anything is sent
func (s *Session) ClaimTopTool(ctx context.Context, sub domain.TopToolSubmission) (domain.ClaimResult, error) {
	const op = "claim top tool reward"
	if err := sub.Validate(); err != nil {
		return domain.ClaimResult{}, &ActionError{Op: op, Err: err}
	}
	return s.claim(ctx, op, domain.EventTopTool, &sub)
}

func (s *Session) claim(ctx context.Context, op string, event domain.EventType, sub *domain.TopToolSubmission) (domain.ClaimResult, error) {
	delta := s.RewardConfig().Amount(event)
	return run(ctx, s, op, delta, func(ctx context.Context, r Remote) (domain.ClaimResult, domain.BalanceRecord, bool, error) {
		res, err := r.Claim(ctx, event, sub)
		return res, res.Balance, res.Status == domain.ClaimAlreadyClaimed, err
	})
}

// Redeem spends points on a catalog item. Unknown items, coming-soon items
// and a short displayed balance are rejected without a remote call.
func (s *Session) Redeem(ctx context.Context, itemName string) (domain.RedeemResult, error) {
	const op = "redeem reward"
	item, ok := s.catalog.Find(itemName)
	if !ok {
		return domain.RedeemResult{}, &ActionError{Op: op, Err: domain.ErrUnknownItem}
	}
	if item.StatusFor(0) == domain.ItemComingSoon {
		return domain.RedeemResult{}, &ActionError{Op: op, Err: &domain.ValidationError{Field: "item", Message: "this reward is coming soon"}}
	}

	userID := s.UserID()
	if userID == "" {
		return domain.RedeemResult{}, ErrNotLoggedIn
	}
	if avail := s.Spendable(); avail < item.Points {
		return domain.RedeemResult{}, &ActionError{Op: op, Err: &domain.InsufficientBalanceError{UserID: userID, Available: avail, Requested: item.Points}}
	}

	return run(ctx, s, op, -item.Points, func(ctx context.Context, r Remote) (domain.RedeemResult, domain.BalanceRecord, bool, error) {
		res, err := r.Redeem(ctx, item.Name)
		return res, res.Balance, false, err
	})
}

// run applies delta optimistically and performs call against the server.
// The call is detached from ctx; its outcome settles the session state even
// after the caller has stopped waiting. call reports the new balance and
// whether the server did nothing (already claimed).
func run[T any](ctx context.Context, s *Session, op string, delta int64, call func(ctx context.Context, r Remote) (T, domain.BalanceRecord, bool, error)) (T, error) {
	var zero T

	s.mu.Lock()
	if s.remote == nil {
		s.mu.Unlock()
		return zero, ErrNotLoggedIn
	}
	remote, epoch := s.remote, s.epoch
	s.seq++
	id := s.seq
	if delta != 0 {
		s.pending[id] = delta
	}
	s.mu.Unlock()
	s.changed()

	type result struct {
		res T
		err error
	}
	done := make(chan result, 1)

	go func() {
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), detachedTimeout)
		defer cancel()

		res, bal, noop, err := call(rctx, remote)
		if err != nil {
			s.settle(rctx, remote, epoch, id, nil)
			done <- result{err: &ActionError{Op: op, Err: err}}
			return
		}
		if noop {
			s.settle(rctx, remote, epoch, id, nil)
		} else {
			s.settle(rctx, remote, epoch, id, &bal)
		}
		done <- result{res: res}
	}()

	select {
	case r := <-done:
		return r.res, r.err
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// settle drops the pending delta. A confirmed snapshot is merged in the
// same step; without one the balance is re-read.
func (s *Session) settle(ctx context.Context, remote Remote, epoch, id uint64, bal *domain.BalanceRecord) {
	s.mu.Lock()
	if s.epoch != epoch {
		// logged out or switched user meanwhile
		s.mu.Unlock()
		return
	}
	delete(s.pending, id)
	if bal != nil {
		s.mergeLocked(*bal)
	}
	s.mu.Unlock()
	s.changed()

	if bal != nil {
		return
	}
	rec, err := remote.Balance(ctx)
	if err != nil {
		s.log.Warn("balance re-read failed", "error", err)
		return
	}
	s.mu.Lock()
	ok := s.epoch == epoch && s.mergeLocked(rec)
	s.mu.Unlock()
	if ok {
		s.changed()
	}
}

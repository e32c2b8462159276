// Package session keeps one user's view of the ledger: the confirmed
// balance from the server plus a pending overlay for in-flight actions.
package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/CaptainYami1/Flowvahub-Test/internal/domain"
)

// Remote is the ledger API as seen by one authenticated user
type Remote interface {
	RewardConfig(ctx context.Context) (domain.RewardConfig, error)
	Balance(ctx context.Context) (domain.BalanceRecord, error)
	HasClaimed(ctx context.Context, event domain.EventType, key string) (bool, error)
	Claim(ctx context.Context, event domain.EventType, sub *domain.TopToolSubmission) (domain.ClaimResult, error)
	Redeem(ctx context.Context, item string) (domain.RedeemResult, error)
	// Subscribe streams post-update snapshots until ctx is done or the
	// channel is closed by a broken connection.
	Subscribe(ctx context.Context) (<-chan domain.BalanceRecord, error)
}

// Connector builds a Remote for a freshly authenticated user
type Connector func(ctx context.Context, ev AuthEvent) (Remote, error)

// AuthKind is the type of a session-change event
type AuthKind string

const (
	AuthLogin        AuthKind = "login"
	AuthLogout       AuthKind = "logout"
	AuthTokenRefresh AuthKind = "token_refresh"
)

// AuthEvent is delivered by the authentication collaborator
type AuthEvent struct {
	Kind   AuthKind
	UserID string
	Token  string
}

// ErrNotLoggedIn is returned by actions attempted without a user
var ErrNotLoggedIn = errors.New("not logged in")

// ActionError is a failed user action. The optimistic change has been
// rolled back; the user may retry.
type ActionError struct {
	Op  string
	Err error
}

func (e *ActionError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *ActionError) Unwrap() error {
	return e.Err
}

// Message is the text shown to the user
func (e *ActionError) Message() string {
	var ib *domain.InsufficientBalanceError
	switch {
	case errors.As(e.Err, &ib):
		return fmt.Sprintf("You need %d more points for this reward.", ib.Requested-ib.Available)
	case domain.IsValidation(e.Err):
		return e.Err.Error()
	default:
		return "Something went wrong, please try again."
	}
}

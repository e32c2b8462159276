package client

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/CaptainYami1/Flowvahub-Test/internal/config"
	"github.com/CaptainYami1/Flowvahub-Test/internal/domain"
	"github.com/CaptainYami1/Flowvahub-Test/internal/eventbus"
	httpapi "github.com/CaptainYami1/Flowvahub-Test/internal/http"
	"github.com/CaptainYami1/Flowvahub-Test/internal/repository/memory"
	"github.com/CaptainYami1/Flowvahub-Test/internal/service"
	"github.com/CaptainYami1/Flowvahub-Test/internal/session"
	"github.com/CaptainYami1/Flowvahub-Test/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const alice = "7b1e4c2a-1111-4000-8000-000000000001"

func init() {
	gin.SetMode(gin.TestMode)
	service.InitJWT("client-test-secret")
}

func startServer(t *testing.T) (*httptest.Server, *service.Ledger) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	store := memory.New()
	bus := eventbus.New()
	ledger := service.NewLedger(service.Stores{
		Balances:     store.Balances,
		Claims:       store.Claims,
		Referrals:    store.Referrals,
		Redemptions:  store.Redemptions,
		RewardConfig: store.RewardConfig,
	}, service.LedgerOptions{
		DefaultRewards: domain.RewardConfig{DailyReward: 5, ReferralReward: 25, ShareStackReward: 10, TopToolReward: 25},
		Notifier:       bus,
	})

	hub := ws.NewHub()
	hub.Consume(bus.Subscribe(ctx, 64))

	r := gin.New()
	httpapi.RegisterRoutes(r, httpapi.Deps{
		Ledger: ledger,
		Hub:    hub,
		Config: &config.Config{
			AppVersion:      "test",
			APIRateLimit:    1000,
			APIRateWindow:   time.Minute,
			ClaimRateLimit:  1000,
			ClaimRateWindow: time.Minute,
		},
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, ledger
}

func token(t *testing.T, userID string) string {
	t.Helper()
	tok, err := service.GenerateJWT(userID, time.Hour)
	require.NoError(t, err)
	return tok
}

func TestClient_ErrorsMapBackToDomain(t *testing.T) {
	srv, _ := startServer(t)
	c := New(srv.URL, token(t, alice))
	ctx := context.Background()

	_, err := c.Redeem(ctx, "$10 Amazon Gift Card")
	var ib *domain.InsufficientBalanceError
	require.ErrorAs(t, err, &ib)
	assert.EqualValues(t, 10000, ib.Requested)

	_, err = c.Redeem(ctx, "A yacht")
	assert.ErrorIs(t, err, domain.ErrUnknownItem)

	_, err = c.Claim(ctx, domain.EventTopTool, &domain.TopToolSubmission{Email: "me@example.com"})
	assert.True(t, domain.IsValidation(err))

	_, err = c.ApplyReferral(ctx, "deadbeef")
	assert.ErrorIs(t, err, domain.ErrUnknownReferralCode)

	_, err = New(srv.URL, "bad-token").Balance(ctx)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestClient_TopToolUpload(t *testing.T) {
	srv, _ := startServer(t)
	c := New(srv.URL, token(t, alice))

	res, err := c.Claim(context.Background(), domain.EventTopTool, &domain.TopToolSubmission{
		Email:          "me@example.com",
		ScreenshotName: "profile.png",
		ScreenshotType: "image/png",
		ScreenshotSize: 9,
		Screenshot:     []byte("\x89PNG fake"),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.ClaimGranted, res.Status)
	assert.EqualValues(t, 25, res.Balance.Balance)
}

func TestClient_SubscribeReceivesSnapshots(t *testing.T) {
	srv, ledger := startServer(t)
	c := New(srv.URL, token(t, alice))

	ctx, cancel := context.WithCancel(context.Background())
	ch, err := c.Subscribe(ctx)
	require.NoError(t, err)

	// the socket opens with the current balance
	select {
	case rec := <-ch:
		assert.Equal(t, alice, rec.UserID)
		assert.Zero(t, rec.Balance)
	case <-time.After(2 * time.Second):
		t.Fatal("no initial snapshot")
	}

	_, err = ledger.Balances.ApplyDelta(context.Background(), alice, 40)
	require.NoError(t, err)

	select {
	case rec := <-ch:
		assert.EqualValues(t, 40, rec.Balance)
	case <-time.After(2 * time.Second):
		t.Fatal("no pushed snapshot")
	}

	cancel()
	require.Eventually(t, func() bool {
		select {
		case _, ok := <-ch:
			return !ok
		default:
			return false
		}
	}, 2*time.Second, 10*time.Millisecond)
}

func TestClient_DrivesSession(t *testing.T) {
	srv, ledger := startServer(t)

	s := session.New(Connector(srv.URL), session.WithPollInterval(50*time.Millisecond))
	ctx := context.Background()
	require.NoError(t, s.HandleAuth(ctx, session.AuthEvent{Kind: session.AuthLogin, UserID: alice, Token: token(t, alice)}))
	defer s.Logout()

	res, err := s.ClaimDaily(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.ClaimGranted, res.Status)
	assert.EqualValues(t, 5, s.Display())

	_, err = ledger.Balances.ApplyDelta(ctx, alice, 100)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return s.Display() == 105 }, 2*time.Second, 10*time.Millisecond)

	_, err = s.Redeem(ctx, "$5 Bank Transfer")
	var actionErr *session.ActionError
	require.ErrorAs(t, err, &actionErr)
	assert.True(t, errors.Is(err, domain.ErrInsufficientBalance))
}

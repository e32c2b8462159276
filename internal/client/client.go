// Package client talks to the ledger HTTP API on behalf of one user.
// *Client satisfies session.Remote.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/CaptainYami1/Flowvahub-Test/internal/domain"
	"github.com/CaptainYami1/Flowvahub-Test/internal/service"
	"github.com/CaptainYami1/Flowvahub-Test/internal/session"
)

// ErrUnauthorized is returned when the server rejects the token
var ErrUnauthorized = errors.New("unauthorized")

// APIError is a non-2xx answer the client could not map to a domain error
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func New(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Connector returns a session.Connector dialing baseURL with the event's token
func Connector(baseURL string, opts ...Option) session.Connector {
	return func(_ context.Context, ev session.AuthEvent) (session.Remote, error) {
		if ev.Token == "" {
			return nil, ErrUnauthorized
		}
		return New(baseURL, ev.Token, opts...), nil
	}
}

func (c *Client) RewardConfig(ctx context.Context) (domain.RewardConfig, error) {
	var out domain.RewardConfig
	err := c.call(ctx, http.MethodGet, "/api/v1/rewards/config", nil, "", &out)
	return out, err
}

func (c *Client) Balance(ctx context.Context) (domain.BalanceRecord, error) {
	var out domain.BalanceRecord
	err := c.call(ctx, http.MethodGet, "/api/v1/balance", nil, "", &out)
	return out, err
}

func (c *Client) HasClaimed(ctx context.Context, event domain.EventType, key string) (bool, error) {
	q := url.Values{"event": {string(event)}}
	if key != "" {
		q.Set("key", key)
	}
	var out struct {
		Claimed bool `json:"claimed"`
	}
	err := c.call(ctx, http.MethodGet, "/api/v1/claims/status?"+q.Encode(), nil, "", &out)
	return out.Claimed, err
}

func (c *Client) Claim(ctx context.Context, event domain.EventType, sub *domain.TopToolSubmission) (domain.ClaimResult, error) {
	var out domain.ClaimResult
	switch event {
	case domain.EventDaily:
		return out, c.call(ctx, http.MethodPost, "/api/v1/claims/daily", nil, "", &out)
	case domain.EventShareStack:
		return out, c.call(ctx, http.MethodPost, "/api/v1/claims/share", nil, "", &out)
	case domain.EventTopTool:
		if sub == nil {
			return out, &domain.ValidationError{Field: "submission", Message: "is required"}
		}
		body, contentType, err := topToolForm(*sub)
		if err != nil {
			return out, err
		}
		return out, c.call(ctx, http.MethodPost, "/api/v1/claims/top-tool", body, contentType, &out)
	}
	return out, &domain.ValidationError{Field: "event_type", Message: "cannot be claimed directly"}
}

func (c *Client) Redeem(ctx context.Context, item string) (domain.RedeemResult, error) {
	var out domain.RedeemResult
	body, err := json.Marshal(map[string]string{"item": item})
	if err != nil {
		return out, err
	}
	err = c.call(ctx, http.MethodPost, "/api/v1/redeem", bytes.NewReader(body), "application/json", &out)
	return out, err
}

func (c *Client) Streak(ctx context.Context) (service.StreakView, error) {
	var out service.StreakView
	err := c.call(ctx, http.MethodGet, "/api/v1/streak", nil, "", &out)
	return out, err
}

func (c *Client) ApplyReferral(ctx context.Context, code string) (domain.AttributionResult, error) {
	var out domain.AttributionResult
	body, err := json.Marshal(map[string]string{"code": code})
	if err != nil {
		return out, err
	}
	err = c.call(ctx, http.MethodPost, "/api/v1/referral/apply", bytes.NewReader(body), "application/json", &out)
	return out, err
}

func topToolForm(sub domain.TopToolSubmission) (io.Reader, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("email", sub.Email); err != nil {
		return nil, "", err
	}
	if len(sub.Screenshot) > 0 {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="screenshot"; filename=%q`, sub.ScreenshotName))
		h.Set("Content-Type", sub.ScreenshotType)
		part, err := mw.CreatePart(h)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(sub.Screenshot); err != nil {
			return nil, "", err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return &buf, mw.FormDataContentType(), nil
}

type errorBody struct {
	Error     string `json:"error"`
	Field     string `json:"field"`
	Available int64  `json:"available"`
	Requested int64  `json:"requested"`
}

func (c *Client) call(ctx context.Context, method, path string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%s %s: read body: %w", method, path, err)
	}

	if res.StatusCode >= 200 && res.StatusCode < 300 {
		if out == nil {
			return nil
		}
		return json.Unmarshal(raw, out)
	}
	return decodeError(res.StatusCode, raw)
}

// decodeError turns an error answer back into the domain error the server mapped
func decodeError(status int, raw []byte) error {
	var eb errorBody
	_ = json.Unmarshal(raw, &eb)

	switch {
	case status == http.StatusUnauthorized:
		return ErrUnauthorized
	case status == http.StatusBadRequest && eb.Field != "":
		return &domain.ValidationError{Field: eb.Field, Message: eb.Error}
	case status == http.StatusConflict && eb.Requested > 0:
		return &domain.InsufficientBalanceError{Available: eb.Available, Requested: eb.Requested}
	case status == http.StatusConflict:
		return domain.ErrConflict
	case status == http.StatusNotFound && eb.Error == domain.ErrUnknownItem.Error():
		return domain.ErrUnknownItem
	case status == http.StatusNotFound && eb.Error == domain.ErrUnknownReferralCode.Error():
		return domain.ErrUnknownReferralCode
	case status == http.StatusBadRequest && eb.Error == domain.ErrSelfReferral.Error():
		return domain.ErrSelfReferral
	}
	msg := eb.Error
	if msg == "" {
		msg = http.StatusText(status)
	}
	return &APIError{Status: status, Message: msg}
}

package client

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"
	"time"

	"github.com/CaptainYami1/Flowvahub-Test/internal/domain"
	"github.com/CaptainYami1/Flowvahub-Test/internal/logger"

	"github.com/gorilla/websocket"
)

const (
	pingPeriod = 30 * time.Second
	writeWait  = 10 * time.Second
)

type frame struct {
	Type    string                `json:"type"`
	Balance *domain.BalanceRecord `json:"balance,omitempty"`
	Error   string                `json:"error,omitempty"`
}

func (c *Client) wsURL() (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/ws"
	u.RawQuery = url.Values{"token": {c.token}}.Encode()
	return u.String(), nil
}

// Subscribe opens the balance socket. The channel is closed when ctx is done
// or the connection breaks; the caller resubscribes.
func (c *Client) Subscribe(ctx context.Context) (<-chan domain.BalanceRecord, error) {
	target, err := c.wsURL()
	if err != nil {
		return nil, err
	}

	conn, res, err := websocket.DefaultDialer.DialContext(ctx, target, nil)
	if err != nil {
		if res != nil && res.StatusCode == 401 {
			return nil, ErrUnauthorized
		}
		return nil, err
	}

	out := make(chan domain.BalanceRecord, 16)
	done := make(chan struct{})

	// closing the socket unblocks the reader
	go func() {
		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
				conn.Close()
				return
			case <-done:
				return
			case <-ticker.C:
				_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"ping"}`)); err != nil {
					conn.Close()
					return
				}
			}
		}
	}()

	go func() {
		defer close(out)
		defer close(done)
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				if ctx.Err() == nil {
					logger.Debug("balance socket closed", "error", err)
				}
				conn.Close()
				return
			}
			var f frame
			if err := json.Unmarshal(data, &f); err != nil || f.Type != "balance" || f.Balance == nil {
				continue
			}
			select {
			case out <- *f.Balance:
			case <-ctx.Done():
				conn.Close()
				return
			}
		}
	}()

	return out, nil
}

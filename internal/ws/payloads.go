package ws

import (
	"encoding/json"

	"github.com/CaptainYami1/Flowvahub-Test/internal/domain"
)

// Message is the envelope of every frame on the balance socket
type Message struct {
	Type    string                `json:"type"`
	Balance *domain.BalanceRecord `json:"balance,omitempty"`
	Error   string                `json:"error,omitempty"`
}

func encode(m Message) []byte {
	b, _ := json.Marshal(m)
	return b
}

// BalanceFrame encodes a post-update balance snapshot
func BalanceFrame(rec domain.BalanceRecord) []byte {
	return encode(Message{Type: MsgBalance, Balance: &rec})
}

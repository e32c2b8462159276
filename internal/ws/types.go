package ws

const (
	// client - server
	MsgPing = "ping"

	// server - client
	MsgReady   = "ready"
	MsgBalance = "balance"
	MsgPong    = "pong"
	MsgError   = "error"
)

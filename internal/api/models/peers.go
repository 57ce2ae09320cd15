package models

import "time"

// GossipPeer reports one configured gossip peer's last broadcast outcome.
type GossipPeer struct {
	Addr        string    `json:"addr"`
	LastAttempt time.Time `json:"last_attempt,omitempty"`
	LastError   string    `json:"last_error,omitempty"`
	SendCount   int64     `json:"send_count"`
	ErrorCount  int64     `json:"error_count"`
}

// GossipStatusResponse reports the broadcaster's current state.
type GossipStatusResponse struct {
	Running         bool         `json:"running"`
	IntervalSeconds int          `json:"interval_seconds"`
	Peers           []GossipPeer `json:"peers"`
}

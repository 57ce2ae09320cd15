package models

import "time"

// CPUStats contains system CPU statistics.
type CPUStats struct {
	NumCPU      int     `json:"num_cpu"`
	UsedPercent float64 `json:"used_percent"`
	IdlePercent float64 `json:"idle_percent"`
}

// MemoryStats contains system memory statistics.
type MemoryStats struct {
	TotalMB     float64 `json:"total_mb"`
	FreeMB      float64 `json:"free_mb"`
	UsedMB      float64 `json:"used_mb"`
	UsedPercent float64 `json:"used_percent"`
}

// TableStats reports the hash table's slot bookkeeping.
type TableStats struct {
	Cursor     int `json:"cursor"`
	Size       int `json:"size"`
	FirstEmpty int `json:"first_empty"`
	LiveCount  int `json:"live_count"`
}

// DispatchStats reports command dispatcher counters.
type DispatchStats struct {
	Puts      uint64 `json:"puts"`
	Gets      uint64 `json:"gets"`
	GossipIn  uint64 `json:"gossip_in"`
	GossipOut uint64 `json:"gossip_out"`
	Unknown   uint64 `json:"unknown"`
	Dropped   uint64 `json:"dropped"`
}

// ServerStatsResponse contains server runtime statistics.
type ServerStatsResponse struct {
	NodeID        string        `json:"node_id,omitempty"`
	Uptime        string        `json:"uptime"`
	UptimeSeconds int64         `json:"uptime_seconds"`
	StartTime     time.Time     `json:"start_time"`
	CPU           CPUStats      `json:"cpu"`
	Memory        MemoryStats   `json:"memory"`
	Table         TableStats    `json:"table"`
	Dispatch      DispatchStats `json:"dispatch"`
}

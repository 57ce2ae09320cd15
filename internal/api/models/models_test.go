// Package models_test provides behavior tests for the API models package.
package models_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jroosing/dhtnode/internal/api/models"
)

func TestErrorResponseJSON(t *testing.T) {
	resp := models.ErrorResponse{Error: "something went wrong"}

	data, err := json.Marshal(resp)
	require.NoError(t, err)

	var decoded models.ErrorResponse
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "something went wrong", decoded.Error)
}

func TestStatusResponseJSON(t *testing.T) {
	resp := models.StatusResponse{Status: "ok"}

	data, err := json.Marshal(resp)
	require.NoError(t, err)

	var decoded models.StatusResponse
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "ok", decoded.Status)
}

func TestServerStatsResponseJSON(t *testing.T) {
	startTime := time.Now()
	resp := models.ServerStatsResponse{
		NodeID:        "abcd1234",
		Uptime:        "1h30m",
		UptimeSeconds: 5400,
		StartTime:     startTime,
		CPU: models.CPUStats{
			NumCPU:      8,
			UsedPercent: 25.5,
			IdlePercent: 74.5,
		},
		Memory: models.MemoryStats{
			TotalMB:     16384.0,
			FreeMB:      8192.0,
			UsedMB:      8192.0,
			UsedPercent: 50.0,
		},
		Table: models.TableStats{
			Cursor:     10,
			Size:       512,
			FirstEmpty: 3,
			LiveCount:  7,
		},
		Dispatch: models.DispatchStats{
			Puts: 100,
			Gets: 200,
		},
	}

	data, err := json.Marshal(resp)
	require.NoError(t, err)

	var decoded models.ServerStatsResponse
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, "abcd1234", decoded.NodeID)
	assert.Equal(t, "1h30m", decoded.Uptime)
	assert.Equal(t, int64(5400), decoded.UptimeSeconds)
	assert.Equal(t, 8, decoded.CPU.NumCPU)
	assert.InDelta(t, 25.5, decoded.CPU.UsedPercent, 0.001)
	assert.InDelta(t, 50.0, decoded.Memory.UsedPercent, 0.001)
	assert.Equal(t, 7, decoded.Table.LiveCount)
	assert.Equal(t, uint64(100), decoded.Dispatch.Puts)
}

func TestGossipStatusResponseJSON(t *testing.T) {
	resp := models.GossipStatusResponse{
		Running:         true,
		IntervalSeconds: 30,
		Peers: []models.GossipPeer{
			{Addr: "[::1]:9999", SendCount: 3},
		},
	}

	data, err := json.Marshal(resp)
	require.NoError(t, err)

	var decoded models.GossipStatusResponse
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.True(t, decoded.Running)
	require.Len(t, decoded.Peers, 1)
	assert.Equal(t, "[::1]:9999", decoded.Peers[0].Addr)
	assert.Equal(t, int64(3), decoded.Peers[0].SendCount)
}

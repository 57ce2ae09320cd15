package handlers

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/jroosing/dhtnode/internal/api/models"
)

// Health godoc
// @Summary Health check
// @Description Returns server health status
// @Tags system
// @Produce json
// @Success 200 {object} models.StatusResponse
// @Security ApiKeyAuth
// @Router /health [get]
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, models.StatusResponse{Status: "ok"})
}

// Stats godoc
// @Summary Server statistics
// @Description Returns runtime statistics: system CPU/memory, hash table occupancy and dispatcher counters
// @Tags system
// @Produce json
// @Success 200 {object} models.ServerStatsResponse
// @Security ApiKeyAuth
// @Router /stats [get]
func (h *Handler) Stats(c *gin.Context) {
	uptime := time.Since(h.startTime)

	memStats := models.MemoryStats{}
	if vmStat, err := mem.VirtualMemory(); err == nil {
		memStats.TotalMB = float64(vmStat.Total) / 1024 / 1024
		memStats.FreeMB = float64(vmStat.Available) / 1024 / 1024
		memStats.UsedMB = float64(vmStat.Used) / 1024 / 1024
		memStats.UsedPercent = vmStat.UsedPercent
	}

	cpuStats := models.CPUStats{NumCPU: runtime.NumCPU()}
	if cpuPercent, err := cpu.Percent(200*time.Millisecond, false); err == nil && len(cpuPercent) > 0 {
		cpuStats.UsedPercent = cpuPercent[0]
		cpuStats.IdlePercent = 100.0 - cpuPercent[0]
	}

	resp := models.ServerStatsResponse{
		NodeID:        h.getNodeID(),
		Uptime:        uptime.Round(time.Second).String(),
		UptimeSeconds: int64(uptime.Seconds()),
		StartTime:     h.startTime,
		CPU:           cpuStats,
		Memory:        memStats,
		Table:         h.tableStats(),
		Dispatch:      h.dispatchStats(),
	}

	c.JSON(http.StatusOK, resp)
}

func (h *Handler) tableStats() models.TableStats {
	t := h.getTable()
	if t == nil {
		return models.TableStats{}
	}
	snap := t.Snapshot()
	return models.TableStats{
		Cursor:     snap.Cursor,
		Size:       snap.Size,
		FirstEmpty: snap.FirstEmpty,
		LiveCount:  snap.LiveCount,
	}
}

func (h *Handler) dispatchStats() models.DispatchStats {
	s := h.getDispatchStats()
	snap := s.Snapshot()
	return models.DispatchStats{
		Puts:      snap.Puts,
		Gets:      snap.Gets,
		GossipIn:  snap.GossipIn,
		GossipOut: snap.GossipOut,
		Unknown:   snap.Unknown,
		Dropped:   snap.Dropped,
	}
}

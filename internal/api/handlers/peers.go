package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jroosing/dhtnode/internal/api/models"
)

// Peers godoc
// @Summary Gossip peer status
// @Description Returns the gossip broadcaster's configured peers and last broadcast outcome for each
// @Tags gossip
// @Produce json
// @Success 200 {object} models.GossipStatusResponse
// @Security ApiKeyAuth
// @Router /peers [get]
func (h *Handler) Peers(c *gin.Context) {
	b := h.getBroadcaster()
	if b == nil {
		c.JSON(http.StatusOK, models.GossipStatusResponse{})
		return
	}

	status := b.Status()
	resp := models.GossipStatusResponse{
		Running:         status.Running,
		IntervalSeconds: status.IntervalSecs,
		Peers:           make([]models.GossipPeer, 0, len(status.Peers)),
	}
	for _, p := range status.Peers {
		resp.Peers = append(resp.Peers, models.GossipPeer{
			Addr:        p.Addr,
			LastAttempt: p.LastAttempt,
			LastError:   p.LastError,
			SendCount:   p.SendCount,
			ErrorCount:  p.ErrorCount,
		})
	}
	c.JSON(http.StatusOK, resp)
}

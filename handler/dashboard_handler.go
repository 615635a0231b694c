package handler

import (
	"net/http"
	"strconv"

	"resourcehub/common"
	"resourcehub/service"

	"github.com/gin-gonic/gin"
)

type DashboardHandler struct {
	dashboard service.DashboardService
}

func NewDashboardHandler(dashboard service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard}
}

// Dashboard 返回评分榜和下载榜
// GET /api/dashboard?n=5
func (h *DashboardHandler) Dashboard(c *gin.Context) {
	n, _ := strconv.Atoi(c.DefaultQuery("n", "0"))

	topRated, err := h.dashboard.TopRated(c.Request.Context(), n)
	if err != nil {
		c.JSON(common.HTTPStatusFromError(err), gin.H{"error": err.Error()})
		return
	}
	mostDownloaded, err := h.dashboard.MostDownloaded(c.Request.Context(), n)
	if err != nil {
		c.JSON(common.HTTPStatusFromError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"top_rated":       topRated,
		"most_downloaded": mostDownloaded,
	})
}

package handler

import (
	"net/http"

	"resourcehub/common"
	"resourcehub/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type RatingHandler struct {
	ratings service.RatingService
}

func NewRatingHandler(ratings service.RatingService) *RatingHandler {
	return &RatingHandler{ratings: ratings}
}

// Rate 重复评分走覆盖，响应带重算后的平均分
// POST /api/resources/:id/rate
func (h *RatingHandler) Rate(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	resourceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid resource id"})
		return
	}
	var req struct {
		Rating   int    `json:"rating" binding:"required"`
		Feedback string `json:"feedback"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}
	average, err := h.ratings.Rate(c.Request.Context(), resourceID, userID, req.Rating, req.Feedback)
	if err != nil {
		c.JSON(common.HTTPStatusFromError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "rating submitted successfully", "average_rating": average})
}

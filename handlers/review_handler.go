package handlers

import (
	"errors"
	"net/http"

	"github.com/Abhishek-Jose7/CA-alternative/models"
	"github.com/Abhishek-Jose7/CA-alternative/service"

	"github.com/gin-gonic/gin"
)

// ReviewHandler handles HTTP requests for the CA review queue
type ReviewHandler struct {
	queue *service.ReviewQueue
}

// NewReviewHandler creates a new review handler
func NewReviewHandler(queue *service.ReviewQueue) *ReviewHandler {
	return &ReviewHandler{queue: queue}
}

// GetQueue handles GET /ca/queue
func (h *ReviewHandler) GetQueue(c *gin.Context) {
	pending := h.queue.ListPending(c.Request.Context())

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"count": len(pending),
			"queue": pending,
		},
	})
}

// ReviewRequest represents the request body for a CA decision
type ReviewRequest struct {
	Action   string `json:"action"`
	Comments string `json:"comments"`
}

// Review handles POST /ca/review/:id
func (h *ReviewHandler) Review(c *gin.Context) {
	id := c.Param("id")

	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": err.Error(),
			},
		})
		return
	}

	action := models.ReviewAction(req.Action)
	if action == "" {
		action = models.ReviewActionApprove
	}
	if action != models.ReviewActionApprove && action != models.ReviewActionFlag {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_ACTION",
				"message": "action must be 'approve' or 'flag'",
			},
		})
		return
	}

	err := h.queue.Review(c.Request.Context(), id, action, req.Comments)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrReviewItemNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "NOT_FOUND",
					"message": "Document not found in queue",
				},
			})
		case errors.Is(err, service.ErrAlreadyReviewed):
			c.JSON(http.StatusConflict, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "ALREADY_REVIEWED",
					"message": "Document has already been reviewed",
				},
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "REVIEW_FAILED",
					"message": err.Error(),
				},
			})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"id":     id,
			"status": models.ReviewStatusReviewed,
		},
	})
}

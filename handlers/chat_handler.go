package handlers

import (
	"net/http"

	"github.com/Abhishek-Jose7/CA-alternative/service"

	"github.com/gin-gonic/gin"
)

// ChatHandler handles HTTP requests for the advisory chat and HSN lookup
type ChatHandler struct {
	chatService *service.ChatService
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chatService *service.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// ChatRequest represents the request body for the advisory chat
type ChatRequest struct {
	UserID   string `json:"user_id" binding:"required"`
	Message  string `json:"message" binding:"required"`
	Language string `json:"language"`
}

// Chat handles POST /api/chat
func (h *ChatHandler) Chat(c *gin.Context) {
	var req ChatRequest
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

	reply, err := h.chatService.Chat(c.Request.Context(), req.UserID, req.Message, req.Language)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "CHAT_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"reply": reply,
		},
	})
}

// HSNRequest represents the request body for HSN lookup
type HSNRequest struct {
	Query string `json:"query" binding:"required"`
}

// SearchHSN handles POST /api/hsn
func (h *ChatHandler) SearchHSN(c *gin.Context) {
	var req HSNRequest
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

	result, err := h.chatService.SearchHSN(c.Request.Context(), req.Query)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "HSN_LOOKUP_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result,
	})
}

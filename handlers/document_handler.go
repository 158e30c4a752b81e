package handlers

import (
	"bytes"
	"io"
	"log"
	"mime/multipart"
	"net/http"

	"github.com/Abhishek-Jose7/CA-alternative/repository"
	"github.com/Abhishek-Jose7/CA-alternative/service"
	"github.com/Abhishek-Jose7/CA-alternative/storage"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// maxUploadSize bounds scanned document uploads
const maxUploadSize = 10 * 1024 * 1024 // 10MB

// DocumentHandler handles HTTP requests for notice and invoice extraction
type DocumentHandler struct {
	extraction *service.ExtractionService
	docRepo    *repository.DocumentRepository
	storage    storage.Storage

	allowedMimeTypes map[string]bool
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(extraction *service.ExtractionService, docRepo *repository.DocumentRepository, fileStorage storage.Storage) *DocumentHandler {
	return &DocumentHandler{
		extraction: extraction,
		docRepo:    docRepo,
		storage:    fileStorage,
		allowedMimeTypes: map[string]bool{
			"image/jpeg": true,
			"image/jpg":  true,
			"image/png":  true,
			"image/webp": true,
		},
	}
}

// DecodeNotice handles POST /notice/decode
func (h *DocumentHandler) DecodeNotice(c *gin.Context) {
	data, header, mimeType, ok := h.readUpload(c)
	if !ok {
		return
	}

	h.archive(c, header, data)

	result, err := h.extraction.DecodeNotice(c.Request.Context(), service.DecodeNoticeRequest{
		Image:      data,
		MimeType:   mimeType,
		Language:   c.DefaultPostForm("language", "en"),
		SourceName: header.Filename,
		UserID:     c.PostForm("user_id"),
	})
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "EXTRACTION_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"record":       result.Record,
			"guidance":     result.Guidance,
			"needs_review": result.NeedsReview,
			"review_id":    result.ReviewID,
		},
	})
}

// ParseInvoice handles POST /invoice/parse
func (h *DocumentHandler) ParseInvoice(c *gin.Context) {
	data, header, mimeType, ok := h.readUpload(c)
	if !ok {
		return
	}

	h.archive(c, header, data)

	result, err := h.extraction.ParseInvoice(c.Request.Context(), service.ParseInvoiceRequest{
		Image:      data,
		MimeType:   mimeType,
		SourceName: header.Filename,
		UserID:     c.PostForm("user_id"),
	})
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "EXTRACTION_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"record":       result.Record,
			"validation":   result.Verdict,
			"needs_review": result.NeedsReview,
			"review_id":    result.ReviewID,
		},
	})
}

// GetHistory handles GET /api/history
func (h *DocumentHandler) GetHistory(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": "user_id is required",
			},
		})
		return
	}

	entries, err := h.docRepo.History(c.Request.Context(), userID, 50)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "RETRIEVAL_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    entries,
	})
}

// readUpload validates and reads the multipart "file" field. On failure it
// writes the error response and returns ok=false.
func (h *DocumentHandler) readUpload(c *gin.Context) ([]byte, *multipart.FileHeader, string, bool) {
	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "MISSING_FILE",
				"message": "A scanned document file is required",
			},
		})
		return nil, nil, "", false
	}

	if header.Size > maxUploadSize {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FILE_TOO_LARGE",
				"message": "File exceeds the 10MB limit",
			},
		})
		return nil, nil, "", false
	}

	mimeType := header.Header.Get("Content-Type")
	if !h.allowedMimeTypes[mimeType] {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UNSUPPORTED_FILE_TYPE",
				"message": "Only JPEG, PNG and WebP scans are supported",
			},
		})
		return nil, nil, "", false
	}

	file, err := header.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UPLOAD_FAILED",
				"message": err.Error(),
			},
		})
		return nil, nil, "", false
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadSize))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UPLOAD_FAILED",
				"message": err.Error(),
			},
		})
		return nil, nil, "", false
	}

	return data, header, mimeType, true
}

// archive stores the raw scan for later reference. Best-effort: a storage
// failure never blocks extraction.
func (h *DocumentHandler) archive(c *gin.Context, header *multipart.FileHeader, data []byte) {
	if h.storage == nil {
		return
	}
	if _, err := h.storage.Upload(c.Request.Context(), uuid.New(), header.Filename, bytes.NewReader(data)); err != nil {
		log.Printf("Warning: Failed to archive upload %s: %v", header.Filename, err)
	}
}

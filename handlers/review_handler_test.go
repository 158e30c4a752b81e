package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Abhishek-Jose7/CA-alternative/models"
	"github.com/Abhishek-Jose7/CA-alternative/service"
)

func reviewRouter(queue *service.ReviewQueue) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewReviewHandler(queue)
	r := gin.New()
	r.GET("/ca/queue", h.GetQueue)
	r.POST("/ca/review/:id", h.Review)
	return r
}

func enqueueNotice(t *testing.T, queue *service.ReviewQueue, sourceName string) *models.ReviewItem {
	t.Helper()
	rec := &models.ExtractionRecord{
		DocType: models.DocTypeNotice,
		Notice:  &models.NoticeRecord{NoticeType: "ASMT-10", RiskLevel: models.RiskHigh},
	}
	return queue.Enqueue(context.Background(), rec, sourceName)
}

func TestGetQueue(t *testing.T) {
	queue := service.NewReviewQueue()
	enqueueNotice(t, queue, "notice_a.jpg")
	enqueueNotice(t, queue, "notice_b.jpg")
	router := reviewRouter(queue)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ca/queue", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Success bool `json:"success"`
		Data    struct {
			Count int                 `json:"count"`
			Queue []models.ReviewItem `json:"queue"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, 2, body.Data.Count)
	require.Len(t, body.Data.Queue, 2)
	assert.Equal(t, "notice_a", body.Data.Queue[0].ID)
}

func TestGetQueue_Empty(t *testing.T) {
	router := reviewRouter(service.NewReviewQueue())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ca/queue", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"count":0`)
}

func TestReview(t *testing.T) {
	queue := service.NewReviewQueue()
	item := enqueueNotice(t, queue, "notice.jpg")
	router := reviewRouter(queue)

	payload := bytes.NewBufferString(`{"action": "flag", "comments": "needs revised reply"}`)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/ca/review/"+item.ID, payload)
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"reviewed"`)
	assert.Empty(t, queue.ListPending(context.Background()))
}

func TestReview_DefaultActionIsApprove(t *testing.T) {
	queue := service.NewReviewQueue()
	item := enqueueNotice(t, queue, "notice.jpg")
	router := reviewRouter(queue)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/ca/review/"+item.ID, bytes.NewBufferString(`{}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestReview_InvalidAction(t *testing.T) {
	queue := service.NewReviewQueue()
	item := enqueueNotice(t, queue, "notice.jpg")
	router := reviewRouter(queue)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/ca/review/"+item.ID, bytes.NewBufferString(`{"action": "reject"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_ACTION")
	// The failed call leaves the item pending
	assert.Len(t, queue.ListPending(context.Background()), 1)
}

func TestReview_NotFound(t *testing.T) {
	router := reviewRouter(service.NewReviewQueue())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/ca/review/missing", bytes.NewBufferString(`{"action": "approve"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "NOT_FOUND")
}

func TestReview_AlreadyReviewed(t *testing.T) {
	queue := service.NewReviewQueue()
	item := enqueueNotice(t, queue, "notice.jpg")
	require.NoError(t, queue.Review(context.Background(), item.ID, models.ReviewActionApprove, ""))
	router := reviewRouter(queue)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/ca/review/"+item.ID, bytes.NewBufferString(`{"action": "approve"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "ALREADY_REVIEWED")
}

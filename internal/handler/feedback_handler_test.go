package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/mentorlens/mentorlens-api/internal/models"
	"github.com/mentorlens/mentorlens-api/internal/repository"
	"github.com/mentorlens/mentorlens-api/internal/service"
)

func setupFeedbackApp(t *testing.T) *fiber.App {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.FeedbackItem{}))

	validate := validator.New(validator.WithRequiredStructEnabled())
	logger := zerolog.New(io.Discard)

	feedbackService := service.NewFeedbackService(repository.NewFeedbackRepository(db), validate, logger)

	app := fiber.New()
	feedback := app.Group("/api/v1/feedback")
	NewFeedbackHandler(feedbackService, logger).Register(feedback)

	return app
}

func postFeedback(t *testing.T, app *fiber.App, category, text string, rating int) *http.Response {
	t.Helper()

	payload, err := json.Marshal(fiber.Map{
		"student_ref": "student-42",
		"category":    category,
		"text":        text,
		"rating":      rating,
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/feedback", bytes.NewReader(payload))
	req.Header.Set("Content-Type", fiber.MIMEApplicationJSON)

	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestFeedbackCreateAndList(t *testing.T) {
	app := setupFeedbackApp(t)

	resp := postFeedback(t, app, models.FeedbackCategoryAppreciation, "Loved the live debugging walkthrough", 5)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created struct {
		ID        uint      `json:"id"`
		Category  string    `json:"category"`
		CreatedAt time.Time `json:"created_at"`
	}
	env := decodeEnvelope(t, resp, &created)
	require.True(t, env.Success)
	require.NotZero(t, created.ID)
	require.Equal(t, models.FeedbackCategoryAppreciation, created.Category)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/feedback", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var list struct {
		Items []struct {
			Text string `json:"text"`
		} `json:"items"`
		Summary struct {
			Total int64 `json:"total"`
		} `json:"summary"`
	}
	decodeEnvelope(t, resp, &list)
	require.Len(t, list.Items, 1)
	require.Equal(t, int64(1), list.Summary.Total)
}

func TestFeedbackListFilterByCategory(t *testing.T) {
	app := setupFeedbackApp(t)

	categories := []string{
		models.FeedbackCategoryAppreciation,
		models.FeedbackCategoryAccessibility,
		models.FeedbackCategorySuggestion,
		models.FeedbackCategoryAppreciation,
		models.FeedbackCategoryAccessibility,
		models.FeedbackCategoryAppreciation,
	}
	for i, category := range categories {
		resp := postFeedback(t, app, category, fmt.Sprintf("entry %d", i+1), 4)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/feedback?category=accessibility", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var list struct {
		Items []struct {
			Category string `json:"category"`
			Text     string `json:"text"`
		} `json:"items"`
		Summary struct {
			Total         int64 `json:"total"`
			Accessibility int64 `json:"accessibility"`
		} `json:"summary"`
	}
	decodeEnvelope(t, resp, &list)
	require.Len(t, list.Items, 2)
	for _, item := range list.Items {
		require.Equal(t, models.FeedbackCategoryAccessibility, item.Category)
	}
	require.Equal(t, int64(6), list.Summary.Total)
	require.Equal(t, int64(2), list.Summary.Accessibility)
}

func TestFeedbackCreateRejectsInvalidRating(t *testing.T) {
	app := setupFeedbackApp(t)

	resp := postFeedback(t, app, models.FeedbackCategorySuggestion, "More whiteboard sessions", 6)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = postFeedback(t, app, models.FeedbackCategorySuggestion, "More whiteboard sessions", 0)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestFeedbackCreateRejectsUnknownCategory(t *testing.T) {
	app := setupFeedbackApp(t)

	resp := postFeedback(t, app, "complaint", "The projector flickered", 2)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestFeedbackListRejectsUnknownCategory(t *testing.T) {
	app := setupFeedbackApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/feedback?category=complaint", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

package server

import (
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"skillshare/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func planBody(title string, topics, resources []string, start, end time.Time) map[string]any {
	return map[string]any{
		"title":       title,
		"description": "a learning plan",
		"topics":      topics,
		"resources":   resources,
		"startDate":   start.Format("2006-01-02"),
		"endDate":     end.Format("2006-01-02"),
	}
}

func createPlan(t *testing.T, app *fiber.App, token string, body map[string]any) *http.Response {
	t.Helper()
	return doJSON(t, app, http.MethodPost, "/api/learning-plans", token, body)
}

func TestCreateLearningPlan(t *testing.T) {
	app, _ := setupTestServer(t)
	auth := signupUser(t, app, "planner", "planner@example.com")

	tomorrow := time.Now().AddDate(0, 0, 1)
	nextMonth := time.Now().AddDate(0, 1, 0)

	t.Run("success", func(t *testing.T) {
		body := planBody("Learn woodworking",
			[]string{"joinery", "finishing"},
			[]string{"https://example.com/guide", "book:The Joiner's Handbook", "course:Intro Woodworking"},
			tomorrow, nextMonth)
		resp := createPlan(t, app, auth.AccessToken, body)
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		plan := decodeBody[models.LearningPlan](t, resp)
		assert.Equal(t, "Learn woodworking", plan.Title)
		assert.Equal(t, models.PlanNotStarted, plan.Status)
		assert.Len(t, plan.Topics, 2)
		assert.Len(t, plan.Resources, 3)
	})

	t.Run("plan starting today is accepted", func(t *testing.T) {
		body := planBody("Starts today", nil, nil, time.Now(), nextMonth)
		resp := createPlan(t, app, auth.AccessToken, body)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
	})

	t.Run("start in the past", func(t *testing.T) {
		body := planBody("Too late", nil, nil, time.Now().AddDate(0, 0, -2), nextMonth)
		resp := createPlan(t, app, auth.AccessToken, body)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		errBody := decodeBody[models.ErrorResponse](t, resp)
		assert.Equal(t, "Start date cannot be in the past", errBody.Message)
	})

	t.Run("start after end", func(t *testing.T) {
		body := planBody("Backwards", nil, nil, nextMonth, tomorrow)
		resp := createPlan(t, app, auth.AccessToken, body)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		errBody := decodeBody[models.ErrorResponse](t, resp)
		assert.Equal(t, "Start date must be before end date", errBody.Message)
	})

	t.Run("too many topics", func(t *testing.T) {
		topics := make([]string, models.MaxPlanTopics+1)
		for i := range topics {
			topics[i] = fmt.Sprintf("topic%d", i)
		}
		body := planBody("Topic overload", topics, nil, tomorrow, nextMonth)
		resp := createPlan(t, app, auth.AccessToken, body)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		errBody := decodeBody[models.ErrorResponse](t, resp)
		assert.Equal(t, "Maximum 10 topics allowed", errBody.Message)
	})

	t.Run("overlong topic", func(t *testing.T) {
		body := planBody("Long topic", []string{strings.Repeat("x", 51)}, nil, tomorrow, nextMonth)
		resp := createPlan(t, app, auth.AccessToken, body)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		errBody := decodeBody[models.ErrorResponse](t, resp)
		assert.Equal(t, "Invalid topic found. Topics must be between 1 and 50 characters", errBody.Message)
	})

	t.Run("bad resource format", func(t *testing.T) {
		body := planBody("Bad resource", nil, []string{"just some text"}, tomorrow, nextMonth)
		resp := createPlan(t, app, auth.AccessToken, body)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		errBody := decodeBody[models.ErrorResponse](t, resp)
		assert.Equal(t, "Invalid resource URL or format found", errBody.Message)
	})

	t.Run("unparseable date yields field error", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPost, "/api/learning-plans", auth.AccessToken, map[string]any{
			"title":     "Bad date",
			"startDate": "not-a-date",
			"endDate":   nextMonth.Format("2006-01-02"),
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		fields := decodeBody[map[string]string](t, resp)
		assert.Contains(t, fields, "startDate")
	})
}

func TestUpdateLearningPlan(t *testing.T) {
	app, _ := setupTestServer(t)
	owner := signupUser(t, app, "planowner", "planowner@example.com")
	stranger := signupUser(t, app, "planstranger", "planstranger@example.com")

	tomorrow := time.Now().AddDate(0, 0, 1)
	nextMonth := time.Now().AddDate(0, 1, 0)

	resp := createPlan(t, app, owner.AccessToken,
		planBody("Original plan", []string{"go"}, nil, tomorrow, nextMonth))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	plan := decodeBody[models.LearningPlan](t, resp)

	planURL := fmt.Sprintf("/api/learning-plans/%d", plan.ID)

	t.Run("owner updates status and dates", func(t *testing.T) {
		body := planBody("Revised plan", []string{"go", "sql"}, nil,
			time.Now().AddDate(0, 0, -7), nextMonth)
		body["status"] = string(models.PlanInProgress)
		resp := doJSON(t, app, http.MethodPut, planURL, owner.AccessToken, body)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		updated := decodeBody[models.LearningPlan](t, resp)
		assert.Equal(t, "Revised plan", updated.Title)
		// past start dates are allowed on update, unlike creation
		assert.Equal(t, models.PlanInProgress, updated.Status)
	})

	t.Run("invalid status", func(t *testing.T) {
		body := planBody("Bad status", nil, nil, tomorrow, nextMonth)
		body["status"] = "PAUSED"
		resp := doJSON(t, app, http.MethodPut, planURL, owner.AccessToken, body)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("stranger forbidden", func(t *testing.T) {
		body := planBody("Hijacked", nil, nil, tomorrow, nextMonth)
		body["status"] = string(models.PlanNotStarted)
		resp := doJSON(t, app, http.MethodPut, planURL, stranger.AccessToken, body)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		errBody := decodeBody[models.ErrorResponse](t, resp)
		assert.Equal(t, "You don't have permission to modify this learning plan", errBody.Message)
	})

	t.Run("stranger cannot delete", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodDelete, planURL, stranger.AccessToken, nil)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("owner deletes", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodDelete, planURL, owner.AccessToken, nil)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	})
}

func TestLearningPlanQueries(t *testing.T) {
	app, _ := setupTestServer(t)
	auth := signupUser(t, app, "querier", "querier@example.com")

	tomorrow := time.Now().AddDate(0, 0, 1)
	nextMonth := time.Now().AddDate(0, 1, 0)

	for _, title := range []string{"Learn Rust", "Learn Piano"} {
		topics := []string{"basics"}
		if title == "Learn Rust" {
			topics = []string{"ownership", "lifetimes"}
		}
		resp := createPlan(t, app, auth.AccessToken, planBody(title, topics, nil, tomorrow, nextMonth))
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		_ = resp.Body.Close()
	}

	userBase := fmt.Sprintf("/api/learning-plans/user/%d", auth.User.ID)

	t.Run("user plans paged", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodGet, userBase, "", nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		page := decodeBody[models.Page[models.LearningPlan]](t, resp)
		assert.EqualValues(t, 2, page.TotalElements)
	})

	t.Run("plans by status", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodGet, userBase+"/status/NOT_STARTED", "", nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		plans := decodeBody[[]models.LearningPlan](t, resp)
		assert.Len(t, plans, 2)

		resp2 := doJSON(t, app, http.MethodGet, userBase+"/status/COMPLETED", "", nil)
		assert.Equal(t, http.StatusOK, resp2.StatusCode)
		assert.Empty(t, decodeBody[[]models.LearningPlan](t, resp2))
	})

	t.Run("count by status", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodGet, userBase+"/count/NOT_STARTED", "", nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.EqualValues(t, 2, decodeBody[int64](t, resp))
	})

	t.Run("invalid status rejected", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodGet, userBase+"/status/BOGUS", "", nil)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("search by topic", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodGet, "/api/learning-plans/search?topic=ownership", "", nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		plans := decodeBody[[]models.LearningPlan](t, resp)
		require.Len(t, plans, 1)
		assert.Equal(t, "Learn Rust", plans[0].Title)
	})

	t.Run("validate topic", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodGet, "/api/learning-plans/validate-topic?topic=go", "", nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.True(t, decodeBody[bool](t, resp))

		resp2 := doJSON(t, app, http.MethodGet,
			"/api/learning-plans/validate-topic?topic="+strings.Repeat("x", 60), "", nil)
		assert.Equal(t, http.StatusOK, resp2.StatusCode)
		assert.False(t, decodeBody[bool](t, resp2))
	})

	t.Run("validate resource", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodGet,
			"/api/learning-plans/validate-resource?resource=book:SICP", "", nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.True(t, decodeBody[bool](t, resp))

		resp2 := doJSON(t, app, http.MethodGet,
			"/api/learning-plans/validate-resource?resource=plaintext", "", nil)
		assert.Equal(t, http.StatusOK, resp2.StatusCode)
		assert.False(t, decodeBody[bool](t, resp2))
	})
}

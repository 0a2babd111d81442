package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"journal-metrics-api/models"
	"journal-metrics-api/services"

	"github.com/gin-gonic/gin"
)

type stubChecker struct {
	lastRequest models.MetricsRequest
	lastISSN    string
	metricsErr  error
}

func (s *stubChecker) Check(ctx context.Context, req models.MetricsRequest) (*models.AggregateResult, error) {
	s.lastRequest = req
	return &models.AggregateResult{
		Scopus: &models.DatabaseCheckResult{Found: true, Title: "Paper"},
		WoS:    models.NotFoundResult("Web of Science does not support ISBN search"),
	}, nil
}

func (s *stubChecker) FetchJournalMetricsOnly(ctx context.Context, issn, title string) (models.JournalMetrics, error) {
	s.lastISSN = issn
	if s.metricsErr != nil {
		return models.JournalMetrics{}, s.metricsErr
	}
	return models.JournalMetrics{Quartile: models.QuartileQ1, MetricsSource: models.MetricsSourceScopus}, nil
}

func newTestRouter(checker PublicationChecker) *gin.Engine {
	gin.SetMode(gin.TestMode)
	SetPublicationChecker(checker)
	router := gin.New()
	router.GET("/check", CheckPublication)
	router.GET("/metrics", GetJournalMetrics)
	return router
}

func serve(router *gin.Engine, target string) (*httptest.ResponseRecorder, map[string]any) {
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	var body map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	return rec, body
}

func TestCheckPublicationReturnsAggregate(t *testing.T) {
	checker := &stubChecker{}
	rec, body := serve(newTestRouter(checker), "/check?isbn=978-0-13-110362-7")
	if rec.Code != http.StatusOK || body["success"] != true {
		t.Fatalf("unexpected response %d %s", rec.Code, rec.Body.String())
	}
	if checker.lastRequest.ISBN != "978-0-13-110362-7" {
		t.Fatalf("unexpected request %+v", checker.lastRequest)
	}
	data := body["data"].(map[string]any)
	wos := data["wos"].(map[string]any)
	if wos["found"] != false || wos["error"] != "Web of Science does not support ISBN search" {
		t.Fatalf("unexpected wos slot %v", wos)
	}
	if _, ok := wos["title"]; ok {
		t.Fatalf("found=false must not carry descriptive fields: %v", wos)
	}
}

func TestCheckPublicationRejectsBadInput(t *testing.T) {
	router := newTestRouter(&stubChecker{})
	for _, target := range []string{
		"/check",
		"/check?doi=10.1/x&isbn=9780131103627",
		"/check?doi=nonsense",
		"/check?isbn=12",
	} {
		rec, body := serve(router, target)
		if rec.Code != http.StatusBadRequest || body["success"] != false {
			t.Fatalf("%s: expected 400, got %d %s", target, rec.Code, rec.Body.String())
		}
	}
}

func TestGetJournalMetrics(t *testing.T) {
	checker := &stubChecker{}
	rec, body := serve(newTestRouter(checker), "/metrics?issn=1234-5678")
	if rec.Code != http.StatusOK || body["found"] != true || checker.lastISSN != "1234-5678" {
		t.Fatalf("unexpected response %d %s", rec.Code, rec.Body.String())
	}

	rec, _ = serve(newTestRouter(checker), "/metrics?issn=12")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad issn, got %d", rec.Code)
	}

	checker.metricsErr = services.ErrNoCredentials
	rec, _ = serve(newTestRouter(checker), "/metrics?title=Nature")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 without credentials, got %d", rec.Code)
	}
}

package controllers

import (
	"context"
	"errors"
	"net/http"

	"journal-metrics-api/models"
	"journal-metrics-api/services"
	"journal-metrics-api/utils"

	"github.com/gin-gonic/gin"
)

// PublicationChecker is the service behind the check endpoints.
type PublicationChecker interface {
	Check(ctx context.Context, req models.MetricsRequest) (*models.AggregateResult, error)
	FetchJournalMetricsOnly(ctx context.Context, issn, title string) (models.JournalMetrics, error)
}

var publicationChecker PublicationChecker

// SetPublicationChecker installs the service used by the handlers.
func SetPublicationChecker(checker PublicationChecker) {
	publicationChecker = checker
}

// GET /api/v1/publications/check?doi=10.1016/...  (or ?isbn= / ?journal=)
func CheckPublication(c *gin.Context) {
	if publicationChecker == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "error": "publication check is not configured"})
		return
	}

	var req models.MetricsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid query parameters"})
		return
	}
	req.DOI = utils.SanitizeInput(req.DOI)
	req.ISBN = utils.SanitizeInput(req.ISBN)
	req.JournalName = utils.SanitizeInput(req.JournalName)

	kind, err := req.Kind()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}
	switch {
	case kind == models.RequestKindDOI && !utils.ValidateDOI(req.DOI):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid doi"})
		return
	case kind == models.RequestKindISBN && !utils.ValidateISBN(req.ISBN):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid isbn"})
		return
	}

	result, err := publicationChecker.Check(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "kind": kind, "data": result})
}

// GET /api/v1/journals/metrics?issn=1234-5678&title=...
func GetJournalMetrics(c *gin.Context) {
	if publicationChecker == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "error": "publication check is not configured"})
		return
	}

	issn := utils.SanitizeInput(c.Query("issn"))
	title := utils.SanitizeInput(c.Query("title"))
	if issn == "" && title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "missing issn or title"})
		return
	}
	if issn != "" && !utils.ValidateISSN(issn) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid issn"})
		return
	}

	metrics, err := publicationChecker.FetchJournalMetricsOnly(c.Request.Context(), issn, title)
	if err != nil {
		var cfgErr *services.ConfigurationError
		var upstream *services.UpstreamError
		switch {
		case errors.As(err, &cfgErr):
			c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "error": err.Error()})
		case errors.As(err, &upstream):
			c.JSON(http.StatusBadGateway, gin.H{"success": false, "error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "found": metrics.HasSignal(), "data": metrics})
}

package controllers

import (
	"errors"
	"net/http"

	"civic-tracker-be/models"
	"civic-tracker-be/services"
	"civic-tracker-be/storage"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// IssueController serves the citizen-facing report endpoints and the status update command.
type IssueController struct {
	issues *services.IssueService
	photos storage.PhotoStore
}

func NewIssueController(issues *services.IssueService, photos storage.PhotoStore) *IssueController {
	return &IssueController{issues: issues, photos: photos}
}

// reportForm mirrors the multipart fields of POST /api/report.
type reportForm struct {
	Description string `form:"description"`
	Location    string `form:"location"`
	Category    string `form:"category"`
	Department  string `form:"department"`
	Email       string `form:"email"`
	State       string `form:"state"`
	City        string `form:"city"`
	Country     string `form:"country"`
}

// CreateReport handles POST /api/report
func (ic *IssueController) CreateReport(c *gin.Context) {
	var form reportForm
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid report form"})
		return
	}

	input := models.IssueInput{
		Description: form.Description,
		Location:    form.Location,
		Category:    form.Category,
		Department:  form.Department,
		Email:       form.Email,
		State:       form.State,
		City:        form.City,
		Country:     form.Country,
	}

	// Reject before the photo is stored; a rejected report leaves nothing behind.
	if err := ic.issues.Validate(input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if fileHeader, err := c.FormFile("photo"); err == nil {
		file, err := fileHeader.Open()
		if err != nil {
			log.Error().Err(err).Msg("Error opening uploaded photo")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save issue."})
			return
		}
		defer file.Close()

		filename, err := ic.photos.Save(c.Request.Context(), file, fileHeader.Size,
			fileHeader.Filename, fileHeader.Header.Get("Content-Type"))
		if err != nil {
			log.Error().Err(err).Msg("Error storing uploaded photo")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save issue."})
			return
		}
		photoURL := storage.PhotoURL(filename)
		input.PhotoURL = &photoURL
	}

	issue, err := ic.issues.Create(c.Request.Context(), input)
	if err != nil {
		var verr *services.ValidationError
		if errors.As(err, &verr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error()})
			return
		}
		log.Error().Err(err).Msg("Error creating issue")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save issue."})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Report received", "issueId": issue.ID.Hex()})
}

// ListIssues handles GET /api/issues
func (ic *IssueController) ListIssues(c *gin.Context) {
	issues, err := ic.issues.List(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("Error listing issues")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch issues."})
		return
	}
	c.JSON(http.StatusOK, issues)
}

// GetIssue handles GET /api/issues/:id
func (ic *IssueController) GetIssue(c *gin.Context) {
	issue, err := ic.issues.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Issue not found"})
			return
		}
		log.Error().Err(err).Msg("Error retrieving issue")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve issue."})
		return
	}
	c.JSON(http.StatusOK, issue)
}

// UpdateIssueStatus handles PATCH /api/issues/:id
func (ic *IssueController) UpdateIssueStatus(c *gin.Context) {
	var input struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
		return
	}

	issue, err := ic.issues.UpdateStatus(c.Request.Context(), c.Param("id"), models.IssueStatus(input.Status))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidStatus):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
		case errors.Is(err, services.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Issue not found"})
		default:
			log.Error().Err(err).Msg("Error updating issue status")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update status."})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Status updated", "issue": issue})
}

// SubmitFeedback handles POST /api/issues/:id/feedback for solved issues.
// An unsatisfied citizen gets a new report; the solved one is never reopened.
func (ic *IssueController) SubmitFeedback(c *gin.Context) {
	var input struct {
		Feedback string `json:"feedback" binding:"required,oneof=satisfied unsatisfied"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Feedback must be satisfied or unsatisfied"})
		return
	}

	ctx := c.Request.Context()
	id := c.Param("id")

	if input.Feedback == "satisfied" {
		issue, err := ic.issues.Get(ctx, id)
		if err != nil {
			ic.feedbackError(c, err)
			return
		}
		if issue.Status != models.StatusSolved {
			ic.feedbackError(c, services.ErrNotResolved)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Thanks for your feedback!"})
		return
	}

	resubmitted, err := ic.issues.Resubmit(ctx, id)
	if err != nil {
		ic.feedbackError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Resubmitted", "issueId": resubmitted.ID.Hex()})
}

func (ic *IssueController) feedbackError(c *gin.Context, err error) {
	var verr *services.ValidationError
	switch {
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Issue not found"})
	case errors.Is(err, services.ErrNotResolved):
		c.JSON(http.StatusConflict, gin.H{"error": "Feedback is only accepted for solved issues"})
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to resubmit issue."})
	default:
		log.Error().Err(err).Msg("Error handling feedback")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resubmit issue."})
	}
}

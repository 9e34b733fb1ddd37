package controllers

import (
	"net/http"
	"strings"

	"civic-tracker-be/middlewares"
	"civic-tracker-be/models"
	"civic-tracker-be/services"
	authUtils "civic-tracker-be/utils"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// AuthorityController serves the staff console. Login selects a viewer profile;
// it does not check credentials.
type AuthorityController struct {
	issues       *services.IssueService
	jwtSecret    string
	secureCookie bool
}

func NewAuthorityController(issues *services.IssueService, jwtSecret string, secureCookie bool) *AuthorityController {
	return &AuthorityController{issues: issues, jwtSecret: jwtSecret, secureCookie: secureCookie}
}

// Login handles POST /api/authority/login
func (ac *AuthorityController) Login(c *gin.Context) {
	var input struct {
		Gmail      string `json:"gmail" binding:"required"`
		Password   string `json:"password" binding:"required"`
		State      string `json:"state"`
		Department string `json:"department"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	profile := models.ViewerProfile{
		Gmail:      strings.TrimSpace(input.Gmail),
		State:      strings.TrimSpace(input.State),
		Department: strings.TrimSpace(input.Department),
	}

	token, err := authUtils.GenerateProfileToken(ac.jwtSecret, profile)
	if err != nil {
		log.Error().Err(err).Msg("Error generating profile token")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
		return
	}

	cookie := &http.Cookie{
		Name:     middlewares.ProfileCookie,
		Value:    token,
		MaxAge:   int(authUtils.ProfileTokenTTL.Seconds()),
		Path:     "/",
		Secure:   ac.secureCookie,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	http.SetCookie(c.Writer, cookie)

	c.JSON(http.StatusOK, gin.H{"token": token, "profile": profile})
}

type dashboardIssue struct {
	models.Issue
	Priority string `json:"priority"`
}

// Dashboard handles GET /api/authority/issues
func (ac *AuthorityController) Dashboard(c *gin.Context) {
	profile, ok := middlewares.Profile(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "No authorization token provided"})
		return
	}

	status := c.DefaultQuery("status", services.StatusFilterAll)
	if !services.ValidStatusFilter(status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status filter"})
		return
	}

	all, err := ac.issues.List(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("Error listing issues for dashboard")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch issues."})
		return
	}

	scoped := services.ScopeIssues(all, profile)
	filtered := services.FilterByStatus(scoped, status)

	rows := make([]dashboardIssue, 0, len(filtered))
	for _, issue := range filtered {
		rows = append(rows, dashboardIssue{Issue: issue, Priority: services.Priority(issue.Status)})
	}

	c.JSON(http.StatusOK, gin.H{
		"profile": profile,
		"summary": services.Summarize(scoped),
		"issues":  rows,
		"markers": services.Markers(scoped),
	})
}

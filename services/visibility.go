package services

import (
	"strings"

	"civic-tracker-be/models"
)

// StatusFilterAll disables the display status filter.
const StatusFilterAll = "all"

// IsVisible reports whether an authority with profile p may see issue.
// Missing attributes on either side never hide a report.
func IsVisible(issue models.Issue, p models.ViewerProfile) bool {
	if p.Department != "" && issue.Department != "" && !strings.EqualFold(issue.Department, p.Department) {
		return false
	}
	if p.State != "" && issue.State != "" && issue.State != p.State {
		return false
	}
	return true
}

// ScopeIssues returns the visible subset, preserving order.
func ScopeIssues(issues []models.Issue, p models.ViewerProfile) []models.Issue {
	scoped := make([]models.Issue, 0, len(issues))
	for _, issue := range issues {
		if IsVisible(issue, p) {
			scoped = append(scoped, issue)
		}
	}
	return scoped
}

// FilterByStatus keeps issues whose status matches exactly. "" and "all" keep everything.
func FilterByStatus(issues []models.Issue, status string) []models.Issue {
	if status == "" || status == StatusFilterAll {
		return issues
	}
	filtered := make([]models.Issue, 0, len(issues))
	for _, issue := range issues {
		if string(issue.Status) == status {
			filtered = append(filtered, issue)
		}
	}
	return filtered
}

// ValidStatusFilter reports whether status is "all" or one of the issue statuses.
func ValidStatusFilter(status string) bool {
	if status == "" || status == StatusFilterAll {
		return true
	}
	s := models.IssueStatus(status)
	return s == models.StatusSubmitted || s.IsUpdatable()
}

// Summarize counts a scoped list. Callers pass the scoped set, not the status-filtered one.
func Summarize(scoped []models.Issue) models.PrioritySummary {
	summary := models.PrioritySummary{Total: len(scoped)}
	for _, issue := range scoped {
		switch issue.Status {
		case models.StatusNotSolved:
			summary.Urgent++
		case models.StatusUnderwork:
			summary.Underwork++
		case models.StatusSolved:
			summary.Solved++
		}
	}
	return summary
}

// Priority is derived from status alone.
func Priority(status models.IssueStatus) string {
	switch status {
	case models.StatusNotSolved:
		return "danger"
	case models.StatusUnderwork:
		return "warn"
	case models.StatusSolved:
		return "success"
	default:
		return "info"
	}
}

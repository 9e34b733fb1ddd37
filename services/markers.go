package services

import (
	"math"
	"strconv"
	"strings"

	"civic-tracker-be/models"
)

// MapMarker is one plottable issue on the authority map.
type MapMarker struct {
	IssueID  string             `json:"id"`
	Lat      float64            `json:"lat"`
	Lng      float64            `json:"lng"`
	Status   models.IssueStatus `json:"status"`
	Priority string             `json:"priority"`
	Category string             `json:"category"`
}

// ParseLatLng reads a "<lat>, <lng>" location. Address strings return ok=false.
func ParseLatLng(location string) (lat, lng float64, ok bool) {
	parts := strings.Split(location, ",")
	if len(parts) != 2 {
		return 0, 0, false
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, false
	}
	lng, err = strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, false
	}
	if !isFinite(lat) || !isFinite(lng) {
		return 0, 0, false
	}
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return 0, 0, false
	}
	return lat, lng, true
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Markers plots every issue whose location is a coordinate pair. Others are skipped.
func Markers(issues []models.Issue) []MapMarker {
	markers := make([]MapMarker, 0, len(issues))
	for _, issue := range issues {
		lat, lng, ok := ParseLatLng(issue.Location)
		if !ok {
			continue
		}
		markers = append(markers, MapMarker{
			IssueID:  issue.ID.Hex(),
			Lat:      lat,
			Lng:      lng,
			Status:   issue.Status,
			Priority: Priority(issue.Status),
			Category: string(issue.Category),
		})
	}
	return markers
}

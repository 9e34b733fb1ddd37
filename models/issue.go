package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// IssueCategory enum
type IssueCategory string

const (
	Pothole     IssueCategory = "pothole"
	Streetlight IssueCategory = "streetlight"
	Trash       IssueCategory = "trash"
	Water       IssueCategory = "water"
	Other       IssueCategory = "other"
)

// IssueStatus enum
type IssueStatus string

const (
	StatusSubmitted IssueStatus = "submitted"
	StatusNotSolved IssueStatus = "not solved"
	StatusUnderwork IssueStatus = "underwork"
	StatusSolved    IssueStatus = "solved"
)

// DefaultCountry is stored when a report arrives without a country.
const DefaultCountry = "India"

// categoryDepartments is applied once at intake. A stored department is never re-derived.
var categoryDepartments = map[IssueCategory]string{
	Pothole:     "PWD",
	Streetlight: "Electricity",
	Trash:       "Sanitation",
	Water:       "Water",
	Other:       "Other",
}

// DepartmentFor returns the department responsible for a category, or "" if unknown.
func DepartmentFor(category IssueCategory) string {
	return categoryDepartments[IssueCategory(strings.ToLower(string(category)))]
}

// UpdatableStatuses are the statuses an authority may set after creation.
var UpdatableStatuses = []IssueStatus{StatusNotSolved, StatusUnderwork, StatusSolved}

// IsUpdatable reports whether status may be set by an authority.
func (s IssueStatus) IsUpdatable() bool {
	for _, u := range UpdatableStatuses {
		if s == u {
			return true
		}
	}
	return false
}

// Issue represents a civic issue reported by a citizen.
// JSON names follow the public REST surface (`_id`, `photoUrl`).
type Issue struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Description string             `bson:"description" json:"description"`
	Location    string             `bson:"location" json:"location"`
	Category    IssueCategory      `bson:"category" json:"category"`
	Department  string             `bson:"department,omitempty" json:"department,omitempty"`
	Email       string             `bson:"email,omitempty" json:"email,omitempty"`
	State       string             `bson:"state,omitempty" json:"state,omitempty"`
	City        string             `bson:"city,omitempty" json:"city,omitempty"`
	Country     string             `bson:"country" json:"country"`
	PhotoURL    *string            `bson:"photoUrl,omitempty" json:"photoUrl,omitempty"`
	Status      IssueStatus        `bson:"status" json:"status"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// IssueInput is what Report Intake hands to the store.
type IssueInput struct {
	Description string `validate:"required"`
	Location    string `validate:"required"`
	Category    string `validate:"required,oneof=pothole streetlight trash water other"`
	Department  string
	Email       string `validate:"required"`
	State       string `validate:"required"`
	City        string `validate:"required"`
	Country     string
	PhotoURL    *string
}

/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.
*/
package api

import (
	"strings"
	"time"

	"github.com/solapur/traffic-reports/report"
)

// ReportDTO is the full report representation exposed to clients.
type ReportDTO struct {
	ID                string   `json:"id"`
	ReportID          string   `json:"report_id"`
	IssueType         string   `json:"issue_type"`
	Description       string   `json:"description,omitempty"`
	ImageURL          string   `json:"image_url,omitempty"`
	PhotoPath         string   `json:"photo_path,omitempty"`
	Latitude          *float64 `json:"latitude,omitempty"`
	Longitude         *float64 `json:"longitude,omitempty"`
	LocationText      string   `json:"location_text,omitempty"`
	PhoneNumber       string   `json:"phone_number"`
	Status            string   `json:"status"`
	PhotoVerification string   `json:"photo_verification_status,omitempty"`
	CreatedAt         string   `json:"created_at"`
	ApprovedAt        *string  `json:"approved_at,omitempty"`
	ClosedAt          *string  `json:"closed_at,omitempty"`
	UpdatedAt         string   `json:"updated_at"`
}

// CreateReportResult acknowledges a citizen submission.
type CreateReportResult struct {
	Success  bool   `json:"success"`
	ReportID string `json:"report_id"`
	Status   string `json:"status"`
}

// StatusUpdateRequest is the body for status updates.
type StatusUpdateRequest struct {
	Status string `json:"status"`
}

// PhotoStatusUpdateRequest is the body for photo verification updates.
type PhotoStatusUpdateRequest struct {
	PhotoStatus string `json:"photo_status"`
}

// PhotoReportDTO is one entry in the photo verification queue.
type PhotoReportDTO struct {
	ReportID    string `json:"report_id"`
	IssueType   string `json:"issue_type"`
	Location    string `json:"location,omitempty"`
	PhotoURL    string `json:"photo_url"`
	SubmittedAt string `json:"submitted_at"`
	PhotoStatus string `json:"photo_status"`
}

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// toReportDTO converts a domain report, resolving a relative image URL to
// an absolute one against the serving host.
func toReportDTO(r *report.Report, baseURL string) ReportDTO {
	dto := ReportDTO{
		ID:                r.InternalID,
		ReportID:          r.ReportID,
		IssueType:         string(r.IssueType),
		Description:       r.Description,
		ImageURL:          resolveImageURL(r.ImageURL, baseURL),
		PhotoPath:         r.PhotoPath,
		Latitude:          r.Latitude,
		Longitude:         r.Longitude,
		LocationText:      r.LocationText,
		PhoneNumber:       r.PhoneNumber,
		Status:            string(r.Status),
		PhotoVerification: string(r.PhotoVerification),
		CreatedAt:         r.CreatedAt.Format(time.RFC3339),
		UpdatedAt:         r.UpdatedAt.Format(time.RFC3339),
	}
	if r.ApprovedAt != nil {
		s := r.ApprovedAt.Format(time.RFC3339)
		dto.ApprovedAt = &s
	}
	if r.ClosedAt != nil {
		s := r.ClosedAt.Format(time.RFC3339)
		dto.ClosedAt = &s
	}
	return dto
}

func toReportDTOs(reports []*report.Report, baseURL string) []ReportDTO {
	dtos := make([]ReportDTO, len(reports))
	for i, r := range reports {
		dtos[i] = toReportDTO(r, baseURL)
	}
	return dtos
}

// resolveImageURL prefixes relative URLs with the serving host. Absolute
// URLs (remote-hosted photos) pass through untouched.
func resolveImageURL(imageURL, baseURL string) string {
	if imageURL == "" || strings.HasPrefix(imageURL, "http") {
		return imageURL
	}
	if strings.HasPrefix(imageURL, "/") {
		return baseURL + imageURL
	}
	return baseURL + "/" + imageURL
}

// photoURL picks the best displayable URL for the verification queue:
// the hosted/relative image URL when present, otherwise the local path.
func photoURL(r *report.Report, baseURL string) string {
	if r.ImageURL != "" {
		return resolveImageURL(r.ImageURL, baseURL)
	}
	if r.PhotoPath != "" {
		return resolveImageURL(r.PhotoPath, baseURL)
	}
	return ""
}

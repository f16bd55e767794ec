/*
Package report contains the domain model for citizen traffic-issue reports.

PURPOSE:
  Defines the Report record, the closed enum sets (issue type, lifecycle
  status, photo verification), the human-facing report identifier format,
  and phone normalization. This package has no knowledge of HTTP or the
  database - those live in api/ and store/sqlite/.

KEY CONCEPTS IN THIS FILE (types.go):
  - Report: one citizen submission, immutable except status/verification
  - IssueType/Status/PhotoVerification: closed string sets with strict parsers
  - FormatReportID: SLP-YYYY-XXXX, sequence zero-padded to 4 digits
  - NormalizePhone: canonical form used for storage and comparison

DESIGN PRINCIPLES:
  1. Closed sets: unrecognized strings are rejected at parse time,
     never coerced or stored
  2. Identifiers are assigned once and never mutated
  3. Timestamps are UTC and server-assigned

SEE ALSO:
  - status.go: write-once timestamp rules for status transitions
  - errors.go: sentinel errors shared across store and API
*/
package report

import (
	"fmt"
	"strings"
	"time"
)

// =============================================================================
// ISSUE TYPES
// =============================================================================

// IssueType identifies what kind of traffic problem is being reported.
type IssueType string

const (
	IssueParking IssueType = "parking"
	IssueHawker  IssueType = "hawker"
	IssueBlocked IssueType = "blocked"
	IssueSignal  IssueType = "signal"
)

// ParseIssueType validates a raw string against the closed issue-type set.
func ParseIssueType(s string) (IssueType, error) {
	switch IssueType(s) {
	case IssueParking, IssueHawker, IssueBlocked, IssueSignal:
		return IssueType(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidIssueType, s)
}

// =============================================================================
// LIFECYCLE STATUS
// =============================================================================

// Status is the lifecycle state of a report. The set is closed; APPROVED is
// a legacy alias of ACTION_PLANNED and both remain accepted input values.
type Status string

const (
	StatusReceived      Status = "RECEIVED"
	StatusUnderReview   Status = "UNDER_REVIEW"
	StatusActionPlanned Status = "ACTION_PLANNED"
	StatusApproved      Status = "APPROVED"
	StatusIgnored       Status = "IGNORED"
	StatusClosed        Status = "CLOSED"
)

// ParseStatus validates a raw string against the closed status set.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusReceived, StatusUnderReview, StatusActionPlanned,
		StatusApproved, StatusIgnored, StatusClosed:
		return Status(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}

// MarksApproved reports whether entering this status stamps approved_at.
func (s Status) MarksApproved() bool {
	return s == StatusActionPlanned || s == StatusApproved
}

// MarksClosed reports whether entering this status stamps closed_at.
func (s Status) MarksClosed() bool {
	return s == StatusClosed || s == StatusIgnored
}

// =============================================================================
// PHOTO VERIFICATION
// =============================================================================

// PhotoVerification is a manually-set review label for an uploaded photo.
// An empty value means the photo has not been reviewed yet.
type PhotoVerification string

const (
	PhotoValid        PhotoVerification = "Valid"
	PhotoUnclear      PhotoVerification = "Unclear"
	PhotoPossiblyFake PhotoVerification = "Possibly Fake"
)

// ParsePhotoVerification validates a raw string against the closed set.
func ParsePhotoVerification(s string) (PhotoVerification, error) {
	switch PhotoVerification(s) {
	case PhotoValid, PhotoUnclear, PhotoPossiblyFake:
		return PhotoVerification(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidPhotoStatus, s)
}

// =============================================================================
// REPORT RECORD
// =============================================================================

// Report is one citizen submission. InternalID and ReportID are assigned at
// creation and never change; ApprovedAt and ClosedAt are write-once.
type Report struct {
	InternalID        string
	ReportID          string
	IssueType         IssueType
	Description       string
	ImageURL          string
	PhotoPath         string
	Latitude          *float64
	Longitude         *float64
	LocationText      string
	PhoneNumber       string
	Status            Status
	PhotoVerification PhotoVerification
	CreatedAt         time.Time
	ApprovedAt        *time.Time
	ClosedAt          *time.Time
	UpdatedAt         time.Time
}

// Draft carries the citizen-supplied fields of a new report. ReportID may be
// pre-allocated (photo upload path); when empty the store allocates one.
type Draft struct {
	ReportID     string
	IssueType    IssueType
	Description  string
	ImageURL     string
	PhotoPath    string
	Latitude     *float64
	Longitude    *float64
	LocationText string
	PhoneNumber  string
}

// =============================================================================
// IDENTIFIER FORMAT
// =============================================================================

// FormatReportID renders the human-facing identifier, e.g. SLP-2026-0001.
// The sequence is zero-padded to at least 4 digits and grows past that.
func FormatReportID(year, seq int) string {
	return fmt.Sprintf("SLP-%d-%04d", year, seq)
}

// NormalizePhone strips surrounding whitespace. Applied before storage and
// before every comparison so lookups match submissions.
func NormalizePhone(phone string) string {
	return strings.TrimSpace(phone)
}

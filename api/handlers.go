/*
handlers.go - HTTP API handlers for the citizen traffic-report service

PURPOSE:
  Exposes the report store, ID allocator, and photo ingestion via REST.
  Handles HTTP request/response, JSON serialization, and delegates to
  domain logic.

ENDPOINTS:
  Citizen:
    POST   /api/reports                         Submit a report (form/multipart)
    GET    /api/reports                         List all reports, newest first
    GET    /api/reports/photos                  Photo verification queue
    GET    /api/reports/search                  Lookup by report_id or phone
    GET    /api/reports/{reportID}              Get one report
    PATCH  /api/reports/{reportID}              Update status
    PUT    /api/reports/{reportID}/photo-status Update photo verification

  Admin (Basic auth):
    GET    /api/admin/reports                   Filtered/paginated listing
    PATCH  /api/admin/reports/{reportID}/status Update status

REQUEST FLOW:
  1. Parse HTTP request
  2. Validate input (closed enum sets rejected at the boundary)
  3. Call store / photo ingestion
  4. Serialize response

UPLOAD SEQUENCING:
  A photo upload pre-allocates the report identifier so the stored filename
  can embed it: allocate -> store file -> create record. A failure after
  allocation burns the identifier, which is acceptable; a persisted report
  with a half-written photo file is not.

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Report not found
  - 500: Storage failures (internals never exposed beyond the message)

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/solapur/traffic-reports/photo"
	"github.com/solapur/traffic-reports/report"
	"github.com/solapur/traffic-reports/store/sqlite"
)

// maxUploadBytes caps in-memory multipart parsing.
const maxUploadBytes = 10 << 20

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store  *sqlite.Store
	Photos *photo.Storage
	Host   *photo.HostClient
}

// NewHandler creates a new handler with the given dependencies.
func NewHandler(store *sqlite.Store, photos *photo.Storage, host *photo.HostClient) *Handler {
	return &Handler{Store: store, Photos: photos, Host: host}
}

// =============================================================================
// CITIZEN HANDLERS
// =============================================================================

// CreateReport accepts a citizen submission as a form or multipart post.
func (h *Handler) CreateReport(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid multipart form", err)
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid form", err)
			return
		}
	}

	issueType, err := report.ParseIssueType(strings.TrimSpace(r.FormValue("issue_type")))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid issue_type", err)
		return
	}

	phone := report.NormalizePhone(r.FormValue("phone_number"))
	if phone == "" {
		writeError(w, http.StatusBadRequest, "Missing phone_number", nil)
		return
	}

	latitude, err := parseOptionalFloat(r.FormValue("latitude"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid latitude", err)
		return
	}
	longitude, err := parseOptionalFloat(r.FormValue("longitude"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid longitude", err)
		return
	}

	draft := report.Draft{
		IssueType:    issueType,
		Description:  strings.TrimSpace(r.FormValue("description")),
		Latitude:     latitude,
		Longitude:    longitude,
		LocationText: strings.TrimSpace(r.FormValue("location")),
		PhoneNumber:  phone,
	}

	if file, header, ferr := r.FormFile("photo"); ferr == nil {
		defer file.Close()
		if err := h.ingestPhoto(r, file, header, &draft); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to store photo", err)
			return
		}
	}

	rep, err := h.Store.CreateReport(r.Context(), draft)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create report", err)
		return
	}

	writeJSON(w, http.StatusOK, CreateReportResult{
		Success:  true,
		ReportID: rep.ReportID,
		Status:   string(rep.Status),
	})
}

// ingestPhoto runs the allocate -> upload-or-store -> record sequence,
// filling the draft's identifier and photo fields.
func (h *Handler) ingestPhoto(r *http.Request, file multipart.File, header *multipart.FileHeader, draft *report.Draft) error {
	data, err := io.ReadAll(file)
	if err != nil {
		return err
	}

	// Allocate first so the filename embeds a stable identifier.
	reportID, err := h.Store.NextReportID(r.Context(), time.Now().UTC().Year())
	if err != nil {
		return err
	}
	draft.ReportID = reportID

	if h.Host.Configured() {
		hosted, err := h.Host.Upload(r.Context(), header.Filename, data)
		if err == nil && hosted != "" {
			draft.ImageURL = hosted
			return nil
		}
		// Remote hosting is best-effort only.
		log.Printf("image host upload failed, falling back to local: %v", err)
	}

	photoPath, imageURL, err := h.Photos.Save(reportID, header.Filename, data)
	if err != nil {
		return err
	}
	draft.PhotoPath = photoPath
	draft.ImageURL = imageURL
	return nil
}

// ListReports returns all reports, newest first.
func (h *Handler) ListReports(w http.ResponseWriter, r *http.Request) {
	reports, err := h.Store.List(r.Context(), sqlite.ListFilter{})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list reports", err)
		return
	}
	writeJSON(w, http.StatusOK, toReportDTOs(reports, requestBaseURL(r)))
}

// GetReport returns a single report by its human-facing identifier.
func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	rep, err := h.Store.GetByReportID(r.Context(), chi.URLParam(r, "reportID"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get report", err)
		return
	}
	if rep == nil {
		writeError(w, http.StatusNotFound, "Report not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toReportDTO(rep, requestBaseURL(r)))
}

// SearchReports looks up by exact report_id or by submitter phone.
func (h *Handler) SearchReports(w http.ResponseWriter, r *http.Request) {
	baseURL := requestBaseURL(r)

	if reportID := strings.TrimSpace(r.URL.Query().Get("report_id")); reportID != "" {
		rep, err := h.Store.GetByReportID(r.Context(), reportID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to search reports", err)
			return
		}
		if rep == nil {
			writeJSON(w, http.StatusOK, []ReportDTO{})
			return
		}
		writeJSON(w, http.StatusOK, []ReportDTO{toReportDTO(rep, baseURL)})
		return
	}

	if phone := r.URL.Query().Get("phone"); report.NormalizePhone(phone) != "" {
		reports, err := h.Store.ListByPhone(r.Context(), phone)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to search reports", err)
			return
		}
		writeJSON(w, http.StatusOK, toReportDTOs(reports, baseURL))
		return
	}

	writeError(w, http.StatusBadRequest, "Provide report_id or phone", nil)
}

// ListPhotoReports returns the photo verification queue.
func (h *Handler) ListPhotoReports(w http.ResponseWriter, r *http.Request) {
	reports, err := h.Store.ListWithPhotos(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list photo reports", err)
		return
	}

	baseURL := requestBaseURL(r)
	items := make([]PhotoReportDTO, len(reports))
	for i, rep := range reports {
		status := string(rep.PhotoVerification)
		if status == "" {
			status = "Pending"
		}
		items[i] = PhotoReportDTO{
			ReportID:    rep.ReportID,
			IssueType:   string(rep.IssueType),
			Location:    rep.LocationText,
			PhotoURL:    photoURL(rep, baseURL),
			SubmittedAt: rep.CreatedAt.Format(time.RFC3339),
			PhotoStatus: status,
		}
	}
	writeJSON(w, http.StatusOK, items)
}

// UpdateStatus applies a status change to a report.
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req StatusUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	status, err := report.ParseStatus(req.Status)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid status", err)
		return
	}

	rep, err := h.Store.UpdateStatus(r.Context(), chi.URLParam(r, "reportID"), status)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update status", err)
		return
	}
	if rep == nil {
		writeError(w, http.StatusNotFound, "Report not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toReportDTO(rep, requestBaseURL(r)))
}

// UpdatePhotoStatus records the manual photo verification label.
func (h *Handler) UpdatePhotoStatus(w http.ResponseWriter, r *http.Request) {
	var req PhotoStatusUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	verification, err := report.ParsePhotoVerification(req.PhotoStatus)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid photo_status", err)
		return
	}

	rep, err := h.Store.SetPhotoVerification(r.Context(), chi.URLParam(r, "reportID"), verification)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update photo status", err)
		return
	}
	if rep == nil {
		writeError(w, http.StatusNotFound, "Report not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toReportDTO(rep, requestBaseURL(r)))
}

// =============================================================================
// ADMIN HANDLERS
// =============================================================================

// AdminListReports returns a filtered, paginated listing. The limit is
// clamped to 1..200 here - the store does not enforce it.
func (h *Handler) AdminListReports(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := sqlite.ListFilter{Limit: 50}

	if s := q.Get("status"); s != "" {
		status, err := report.ParseStatus(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid status", err)
			return
		}
		filter.Status = &status
	}
	if s := q.Get("issue_type"); s != "" {
		issueType, err := report.ParseIssueType(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid issue_type", err)
			return
		}
		filter.IssueType = &issueType
	}
	if s := q.Get("skip"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "Invalid skip", err)
			return
		}
		filter.Skip = n
	}
	if s := q.Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid limit", err)
			return
		}
		filter.Limit = clampLimit(n)
	}

	reports, err := h.Store.List(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list reports", err)
		return
	}
	writeJSON(w, http.StatusOK, toReportDTOs(reports, requestBaseURL(r)))
}

// =============================================================================
// HELPERS
// =============================================================================

func clampLimit(n int) int {
	if n < 1 {
		return 1
	}
	if n > 200 {
		return 200
	}
	return n
}

func parseOptionalFloat(s string) (*float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// requestBaseURL reconstructs the serving host for absolute URL resolution.
func requestBaseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

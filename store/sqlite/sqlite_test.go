package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/solapur/traffic-reports/report"
	"github.com/solapur/traffic-reports/store/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func createReport(t *testing.T, store *sqlite.Store, d report.Draft) *report.Report {
	t.Helper()
	if d.PhoneNumber == "" {
		d.PhoneNumber = "9000000000"
	}
	r, err := store.CreateReport(context.Background(), d)
	require.NoError(t, err)
	return r
}

// =============================================================================
// CREATE + LOOKUPS
// =============================================================================

func TestCreateReport_PopulatesServerAssignedFields(t *testing.T) {
	store := newTestStore(t)

	r := createReport(t, store, report.Draft{
		IssueType:    report.IssueParking,
		Description:  "car blocking the footpath",
		Latitude:     ptr(17.6599),
		Longitude:    ptr(75.9064),
		LocationText: "Saat Rasta",
		PhoneNumber:  "9876543210",
	})

	assert.NotEmpty(t, r.InternalID)
	assert.Regexp(t, `^SLP-\d{4}-\d{4,}$`, r.ReportID)
	assert.Equal(t, report.StatusReceived, r.Status)
	assert.False(t, r.CreatedAt.IsZero())
	assert.Equal(t, r.CreatedAt, r.UpdatedAt)
	assert.Nil(t, r.ApprovedAt)
	assert.Nil(t, r.ClosedAt)

	got, err := store.GetByReportID(context.Background(), r.ReportID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, r.InternalID, got.InternalID)
	assert.Equal(t, "car blocking the footpath", got.Description)
	require.NotNil(t, got.Latitude)
	assert.InDelta(t, 17.6599, *got.Latitude, 1e-9)
	assert.Equal(t, "Saat Rasta", got.LocationText)

	byPK, err := store.GetByInternalID(context.Background(), r.InternalID)
	require.NoError(t, err)
	require.NotNil(t, byPK)
	assert.Equal(t, r.ReportID, byPK.ReportID)
}

func TestCreateReport_UsesPreallocatedID(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	rid, err := store.NextReportID(ctx, time.Now().UTC().Year())
	require.NoError(t, err)

	r := createReport(t, store, report.Draft{
		ReportID:  rid,
		IssueType: report.IssueSignal,
		PhotoPath: "uploads/reports/" + rid + ".jpg",
		ImageURL:  "/uploads/reports/" + rid + ".jpg",
	})
	assert.Equal(t, rid, r.ReportID)
}

func TestGetByReportID_Missing(t *testing.T) {
	store := newTestStore(t)

	r, err := store.GetByReportID(context.Background(), "SLP-2026-9999")
	require.NoError(t, err)
	assert.Nil(t, r)
}

// =============================================================================
// PHONE NORMALIZATION
// =============================================================================

func TestListByPhone_NormalizationRoundTrip(t *testing.T) {
	store := newTestStore(t)

	created := createReport(t, store, report.Draft{
		IssueType:   report.IssueHawker,
		PhoneNumber: " 9876543210 ",
	})
	assert.Equal(t, "9876543210", created.PhoneNumber)

	reports, err := store.ListByPhone(context.Background(), "9876543210")
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, created.ReportID, reports[0].ReportID)

	// Whitespace on the lookup side is normalized too.
	reports, err = store.ListByPhone(context.Background(), "  9876543210")
	require.NoError(t, err)
	assert.Len(t, reports, 1)
}

// =============================================================================
// LISTING
// =============================================================================

func TestList_FiltersAndOrder(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	a := createReport(t, store, report.Draft{IssueType: report.IssueParking})
	b := createReport(t, store, report.Draft{IssueType: report.IssueSignal})
	c := createReport(t, store, report.Draft{IssueType: report.IssueParking})

	_, err := store.UpdateStatus(ctx, b.ReportID, report.StatusUnderReview)
	require.NoError(t, err)

	all, err := store.List(ctx, sqlite.ListFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	// Newest first by creation time.
	assert.Equal(t, c.ReportID, all[0].ReportID)
	assert.Equal(t, b.ReportID, all[1].ReportID)
	assert.Equal(t, a.ReportID, all[2].ReportID)

	received, err := store.List(ctx, sqlite.ListFilter{Status: ptr(report.StatusReceived)})
	require.NoError(t, err)
	require.Len(t, received, 2)
	for _, r := range received {
		assert.Equal(t, report.StatusReceived, r.Status)
	}

	parking, err := store.List(ctx, sqlite.ListFilter{IssueType: ptr(report.IssueParking)})
	require.NoError(t, err)
	assert.Len(t, parking, 2)

	both, err := store.List(ctx, sqlite.ListFilter{
		Status:    ptr(report.StatusUnderReview),
		IssueType: ptr(report.IssueSignal),
	})
	require.NoError(t, err)
	require.Len(t, both, 1)
	assert.Equal(t, b.ReportID, both[0].ReportID)
}

func TestList_Pagination(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	var ids []string
	for i := 0; i < 5; i++ {
		r := createReport(t, store, report.Draft{IssueType: report.IssueBlocked})
		ids = append(ids, r.ReportID)
	}

	page, err := store.List(ctx, sqlite.ListFilter{Skip: 1, Limit: 2})
	require.NoError(t, err)
	require.Len(t, page, 2)
	// Newest first: skipping one lands on the second-newest.
	assert.Equal(t, ids[3], page[0].ReportID)
	assert.Equal(t, ids[2], page[1].ReportID)

	tail, err := store.List(ctx, sqlite.ListFilter{Skip: 4, Limit: 10})
	require.NoError(t, err)
	require.Len(t, tail, 1)
	assert.Equal(t, ids[0], tail[0].ReportID)
}

func TestListWithPhotos(t *testing.T) {
	store := newTestStore(t)

	createReport(t, store, report.Draft{IssueType: report.IssueParking})
	withLocal := createReport(t, store, report.Draft{
		IssueType: report.IssueSignal,
		PhotoPath: "uploads/reports/x.jpg",
		ImageURL:  "/uploads/reports/x.jpg",
	})
	withHosted := createReport(t, store, report.Draft{
		IssueType: report.IssueHawker,
		ImageURL:  "https://images.example.com/y.jpg",
	})

	reports, err := store.ListWithPhotos(context.Background())
	require.NoError(t, err)
	require.Len(t, reports, 2)
	assert.Equal(t, withHosted.ReportID, reports[0].ReportID)
	assert.Equal(t, withLocal.ReportID, reports[1].ReportID)
}

// =============================================================================
// STATUS MUTATION
// =============================================================================

func TestUpdateStatus_WriteOnceApprovedAt(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	r := createReport(t, store, report.Draft{IssueType: report.IssueParking})

	updated, err := store.UpdateStatus(ctx, r.ReportID, report.StatusActionPlanned)
	require.NoError(t, err)
	require.NotNil(t, updated)
	require.NotNil(t, updated.ApprovedAt)
	firstApproved := *updated.ApprovedAt

	again, err := store.UpdateStatus(ctx, r.ReportID, report.StatusActionPlanned)
	require.NoError(t, err)
	require.NotNil(t, again.ApprovedAt)
	assert.Equal(t, firstApproved, *again.ApprovedAt)
	assert.True(t, again.UpdatedAt.After(updated.CreatedAt))

	// The APPROVED alias maps to the same stamp.
	alias, err := store.UpdateStatus(ctx, r.ReportID, report.StatusApproved)
	require.NoError(t, err)
	assert.Equal(t, firstApproved, *alias.ApprovedAt)
}

func TestUpdateStatus_WriteOnceClosedAt(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	r := createReport(t, store, report.Draft{IssueType: report.IssueBlocked})

	ignored, err := store.UpdateStatus(ctx, r.ReportID, report.StatusIgnored)
	require.NoError(t, err)
	require.NotNil(t, ignored.ClosedAt)
	firstClosed := *ignored.ClosedAt

	closed, err := store.UpdateStatus(ctx, r.ReportID, report.StatusClosed)
	require.NoError(t, err)
	assert.Equal(t, report.StatusClosed, closed.Status)
	assert.Equal(t, firstClosed, *closed.ClosedAt)
}

func TestUpdateStatus_MissingReport(t *testing.T) {
	store := newTestStore(t)

	r, err := store.UpdateStatus(context.Background(), "SLP-2026-0404", report.StatusClosed)
	require.NoError(t, err)
	assert.Nil(t, r)
}

// =============================================================================
// PHOTO VERIFICATION
// =============================================================================

func TestSetPhotoVerification(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	r := createReport(t, store, report.Draft{
		IssueType: report.IssueParking,
		PhotoPath: "uploads/reports/z.jpg",
	})
	assert.Empty(t, r.PhotoVerification)

	updated, err := store.SetPhotoVerification(ctx, r.ReportID, report.PhotoPossiblyFake)
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, report.PhotoPossiblyFake, updated.PhotoVerification)

	missing, err := store.SetPhotoVerification(ctx, "SLP-2026-0404", report.PhotoValid)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

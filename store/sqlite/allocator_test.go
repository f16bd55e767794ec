package sqlite_test

import (
	"context"
	"path/filepath"
	"sort"
	"sync"
	"testing"

	"github.com/solapur/traffic-reports/report"
	"github.com/solapur/traffic-reports/store/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

// newFileStore uses a real file so concurrent goroutines share one
// database; pooled connections to ":memory:" each get their own.
func newFileStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.New(filepath.Join(t.TempDir(), "reports.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestNextReportID_SequenceFromFreshStore(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	id, err := store.NextReportID(ctx, 2026)
	require.NoError(t, err)
	assert.Equal(t, "SLP-2026-0001", id)

	id, err = store.NextReportID(ctx, 2026)
	require.NoError(t, err)
	assert.Equal(t, "SLP-2026-0002", id)
}

func TestNextReportID_YearsAreIndependent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := store.NextReportID(ctx, 2025)
		require.NoError(t, err)
	}

	id, err := store.NextReportID(ctx, 2026)
	require.NoError(t, err)
	assert.Equal(t, "SLP-2026-0001", id)

	id, err = store.NextReportID(ctx, 2025)
	require.NoError(t, err)
	assert.Equal(t, "SLP-2025-0004", id)
}

func TestNextReportID_ConcurrentAllocationsAreDistinctAndContiguous(t *testing.T) {
	store := newFileStore(t)
	ctx := context.Background()

	const n = 50
	ids := make([]string, n)
	errs := make([]error, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ids[i], errs[i] = store.NextReportID(ctx, 2026)
		}(i)
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
	}

	// Pairwise distinct and a contiguous ascending run starting at 1.
	sort.Strings(ids)
	for i := 0; i < n; i++ {
		assert.Equal(t, report.FormatReportID(2026, i+1), ids[i])
	}
}

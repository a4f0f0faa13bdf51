package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neuroquant-report-server/internal/domain"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "reports.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func testReport(risk domain.RiskLevel) *domain.AnalysisReport {
	bpf := &domain.BPFResult{
		Value:          0.78,
		Expected:       0.78,
		Interpretation: domain.INTERP_NORMAL,
	}
	return &domain.AnalysisReport{
		ID:               uuid.New().String(),
		CreatedAt:        time.Now().UTC().Truncate(time.Millisecond),
		Age:              70,
		Sex:              domain.MALE,
		Regions:          map[string]domain.ZScoreResult{"Hippocampus": {Region: "Hippocampus", RawVolume: 6000, ZScore: -1.26}},
		TotalBrainVolume: 1109635,
		EstimatedICV:     1422609,
		BPF:              bpf,
		Risk:             risk,
		RiskDescription:  risk.Description(),
	}
}

func TestSQLiteStore_SaveAndGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	report := testReport(domain.RISK_LOW_NORMAL)
	require.NoError(t, store.Save(ctx, report))

	retrieved, err := store.Get(ctx, report.ID)
	require.NoError(t, err)
	assert.Equal(t, report.ID, retrieved.ID)
	assert.Equal(t, report.Risk, retrieved.Risk)
	assert.Equal(t, report.EstimatedICV, retrieved.EstimatedICV)
	assert.Equal(t, report.Regions["Hippocampus"].ZScore, retrieved.Regions["Hippocampus"].ZScore)
}

func TestSQLiteStore_GetNotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Get(context.Background(), "does-not-exist")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSQLiteStore_SaveReplacesExisting(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	report := testReport(domain.RISK_NORMAL)
	require.NoError(t, store.Save(ctx, report))

	report.Risk = domain.RISK_MODERATE
	require.NoError(t, store.Save(ctx, report))

	retrieved, err := store.Get(ctx, report.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RISK_MODERATE, retrieved.Risk)

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestSQLiteStore_ListPagination(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	base := time.Now().UTC()
	for i := 0; i < 5; i++ {
		report := testReport(domain.RISK_NORMAL)
		report.CreatedAt = base.Add(time.Duration(i) * time.Second)
		report.Age = float64(60 + i)
		require.NoError(t, store.Save(ctx, report))
	}

	page, err := store.List(ctx, 3, 0)
	require.NoError(t, err)
	require.Len(t, page, 3)

	// Newest first
	assert.Equal(t, 64.0, page[0].Age)
	require.NotNil(t, page[0].BPF)
	assert.InDelta(t, 0.78, *page[0].BPF, 1e-9)

	rest, err := store.List(ctx, 3, 3)
	require.NoError(t, err)
	assert.Len(t, rest, 2)
}

func TestSQLiteStore_NullableBPF(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	report := testReport(domain.RISK_NORMAL)
	report.BPF = nil
	require.NoError(t, store.Save(ctx, report))

	page, err := store.List(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Nil(t, page[0].BPF)
}

func TestSQLiteStore_Delete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	report := testReport(domain.RISK_NORMAL)
	require.NoError(t, store.Save(ctx, report))
	require.NoError(t, store.Delete(ctx, report.ID))

	_, err := store.Get(ctx, report.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestSQLiteStore_CreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "reports.db")
	store, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Save(context.Background(), testReport(domain.RISK_NORMAL)))
}

func TestSQLiteStore_CountMany(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, store.Save(ctx, testReport(domain.RISK_NORMAL)))
	}

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

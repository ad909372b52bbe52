package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vjc2026/EmissionSense/internal/catalog"
	"github.com/vjc2026/EmissionSense/internal/models"
)

// memStore is an in-memory Store backed by a slice, mirroring the uniqueness
// and active-record semantics of the SQL store.
type memStore struct {
	nextID  uint
	records []*models.ProjectRecord
	users   map[uint]*models.User
}

func newMemStore() *memStore {
	return &memStore{nextID: 1, users: make(map[uint]*models.User)}
}

func (s *memStore) FindActive(_ context.Context, userID uint, name, description string) (*models.ProjectRecord, error) {
	for _, r := range s.records {
		if r.UserID == userID && r.ProjectName == name && r.ProjectDescription == description && r.IsActive() {
			cp := *r
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *memStore) CreateRecord(_ context.Context, rec *models.ProjectRecord) error {
	for _, r := range s.records {
		if r.UserID == rec.UserID && r.ProjectName == rec.ProjectName {
			return fmt.Errorf("%q: %w", rec.ProjectName, models.ErrDuplicateName)
		}
	}
	rec.ID = s.nextID
	s.nextID++
	cp := *rec
	s.records = append(s.records, &cp)
	return nil
}

func (s *memStore) InsertRecord(_ context.Context, rec *models.ProjectRecord) error {
	rec.ID = s.nextID
	s.nextID++
	cp := *rec
	s.records = append(s.records, &cp)
	return nil
}

func (s *memStore) GetRecord(_ context.Context, id, userID uint) (*models.ProjectRecord, error) {
	for _, r := range s.records {
		if r.ID == id && r.UserID == userID {
			cp := *r
			return &cp, nil
		}
	}
	return nil, models.ErrNotFound
}

func (s *memStore) UpdateProgress(_ context.Context, id, userID uint, duration int64, emissionKg float64, stage models.Stage) error {
	for _, r := range s.records {
		if r.ID == id && r.UserID == userID && r.IsActive() {
			r.DurationSeconds = duration
			r.CarbonEmitKg = emissionKg
			r.Stage = stage
			return nil
		}
	}
	return models.ErrNotFound
}

func (s *memStore) CompleteRecord(_ context.Context, id, userID uint) error {
	for _, r := range s.records {
		if r.ID == id && r.UserID == userID && r.IsActive() {
			r.Status = models.StatusComplete
			return nil
		}
	}
	return models.ErrNotFound
}

func (s *memStore) DeleteRecord(_ context.Context, id, userID uint) error {
	for i, r := range s.records {
		if r.ID == id && r.UserID == userID {
			s.records = append(s.records[:i], s.records[i+1:]...)
			return nil
		}
	}
	return models.ErrNotFound
}

func (s *memStore) GetUser(_ context.Context, id uint) (*models.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *memStore) activeFor(userID uint, name string) []*models.ProjectRecord {
	var out []*models.ProjectRecord
	for _, r := range s.records {
		if r.UserID == userID && r.ProjectName == name && r.IsActive() {
			out = append(out, r)
		}
	}
	return out
}

// fakeSource serves fixed wattages for the desktop profile used across these
// tests: 65 + 120 + 5 W plus a 550 W PSU.
type fakeSource struct{}

func (fakeSource) DesktopCPUWatts(_ context.Context, model string) (float64, error) {
	if model == "Core i5-12400" {
		return 65, nil
	}
	return 0, models.ErrComponentNotFound
}

func (fakeSource) DesktopGPUWatts(_ context.Context, model string) (float64, error) {
	if model == "RTX 3060" {
		return 120, nil
	}
	return 0, models.ErrComponentNotFound
}

func (fakeSource) MobileCPUWatts(_ context.Context, string) (float64, error) {
	return 0, models.ErrComponentNotFound
}

func (fakeSource) MobileGPUWatts(_ context.Context, string) (float64, error) {
	return 0, models.ErrComponentNotFound
}

func (fakeSource) RAMWatts(_ context.Context, generation string) (float64, error) {
	if generation == "DDR4" {
		return 5, nil
	}
	return 0, models.ErrComponentNotFound
}

func newTestManager(t *testing.T) (*Manager, *memStore) {
	t.Helper()
	store := newMemStore()
	store.users[1] = &models.User{
		ID:           1,
		Name:         "Ada",
		Organization: "Acme",
		Device:       models.DeviceDesktop,
		CPU:          "Core i5-12400",
		GPU:          "RTX 3060",
		RAM:          "DDR4",
		PSUWatts:     550,
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewManager(store, catalog.NewResolver(fakeSource{}), logger), store
}

func TestStartSessionSeedsFromActiveRecord(t *testing.T) {
	mgr, store := newTestManager(t)
	ctx := context.Background()

	rec, err := mgr.CreateProject(ctx, 1, "Acme", "engine", "tracking backend", models.StageDesign)
	require.NoError(t, err)
	require.NoError(t, store.UpdateProgress(ctx, rec.ID, 1, 250, 1.5, models.StageDesign))

	seed, err := mgr.StartSession(ctx, 1, "engine", "tracking backend")
	require.NoError(t, err)
	assert.True(t, seed.Found)
	assert.Equal(t, rec.ID, seed.RecordID)
	assert.Equal(t, int64(250), seed.BaseDurationSeconds)
	assert.Equal(t, models.StageDesign, seed.Stage)
}

func TestStartSessionUnknownProjectSeedsZero(t *testing.T) {
	mgr, _ := newTestManager(t)

	seed, err := mgr.StartSession(context.Background(), 1, "engine", "tracking backend")
	require.NoError(t, err)
	assert.False(t, seed.Found)
	assert.Zero(t, seed.BaseDurationSeconds)
}

func TestStartSessionRequiresNameAndDescription(t *testing.T) {
	mgr, _ := newTestManager(t)

	_, err := mgr.StartSession(context.Background(), 1, "", "desc")
	assert.Error(t, err)
	_, err = mgr.StartSession(context.Background(), 1, "engine", "")
	assert.Error(t, err)
}

func TestStopSessionReplacesTotals(t *testing.T) {
	mgr, store := newTestManager(t)
	ctx := context.Background()

	rec, err := mgr.CreateProject(ctx, 1, "Acme", "engine", "tracking backend", models.StageDesign)
	require.NoError(t, err)
	require.NoError(t, store.UpdateProgress(ctx, rec.ID, 1, 1000, 10, models.StageDesign))

	// 740 W for one hour: 740 units of energy, 351.5 kg at 0.475 intensity.
	updated, err := mgr.StopSession(ctx, 1, "engine", "tracking backend", models.StageDesign, 3600)
	require.NoError(t, err)

	assert.Equal(t, rec.ID, updated.ID)
	assert.Equal(t, int64(3600), updated.DurationSeconds)
	assert.InDelta(t, 351.5, updated.CarbonEmitKg, 1e-9)

	stored, err := store.GetRecord(ctx, rec.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(3600), stored.DurationSeconds)
	assert.InDelta(t, 351.5, stored.CarbonEmitKg, 1e-9)
}

func TestStopSessionCreatesRecordLazily(t *testing.T) {
	mgr, store := newTestManager(t)
	ctx := context.Background()

	rec, err := mgr.StopSession(ctx, 1, "engine", "tracking backend", models.StageDesign, 3600)
	require.NoError(t, err)

	assert.NotZero(t, rec.ID)
	assert.Equal(t, "Acme", rec.Organization)
	assert.Equal(t, models.StatusInProgress, rec.Status)
	assert.Equal(t, int64(3600), rec.DurationSeconds)
	assert.InDelta(t, 351.5, rec.CarbonEmitKg, 1e-9)
	assert.Len(t, store.activeFor(1, "engine"), 1)
}

func TestStopSessionZeroElapsed(t *testing.T) {
	mgr, _ := newTestManager(t)

	rec, err := mgr.StopSession(context.Background(), 1, "engine", "tracking backend", models.StageDesign, 0)
	require.NoError(t, err)
	assert.Zero(t, rec.DurationSeconds)
	assert.Zero(t, rec.CarbonEmitKg)
}

func TestStopSessionRejectsNegativeElapsed(t *testing.T) {
	mgr, _ := newTestManager(t)

	_, err := mgr.StopSession(context.Background(), 1, "engine", "tracking backend", models.StageDesign, -1)
	assert.Error(t, err)
}

func TestStopSessionRejectsUnknownStage(t *testing.T) {
	mgr, _ := newTestManager(t)

	_, err := mgr.StopSession(context.Background(), 1, "engine", "tracking backend", models.Stage("Shipping"), 60)
	assert.Error(t, err)
}

func TestStopSessionUnresolvableComponentFails(t *testing.T) {
	mgr, store := newTestManager(t)
	store.users[1].GPU = "GTX 750 Ti"

	_, err := mgr.StopSession(context.Background(), 1, "engine", "tracking backend", models.StageDesign, 60)
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrComponentNotFound)
	assert.Empty(t, store.activeFor(1, "engine"))
}

func TestCalculateEmissions(t *testing.T) {
	mgr, _ := newTestManager(t)

	kg, err := mgr.CalculateEmissions(context.Background(), 1, 3600)
	require.NoError(t, err)
	assert.InDelta(t, 351.5, kg, 1e-9)
}

func TestCalculateEmissionsUnknownUser(t *testing.T) {
	mgr, _ := newTestManager(t)

	_, err := mgr.CalculateEmissions(context.Background(), 99, 3600)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestCreateProjectDuplicateName(t *testing.T) {
	mgr, _ := newTestManager(t)
	ctx := context.Background()

	_, err := mgr.CreateProject(ctx, 1, "Acme", "engine", "tracking backend", models.StageDesign)
	require.NoError(t, err)

	// Same name with a different description still collides: creation
	// uniqueness is by name only.
	_, err = mgr.CreateProject(ctx, 1, "Acme", "engine", "something else", models.StageDesign)
	assert.ErrorIs(t, err, models.ErrDuplicateName)
}

func TestCreateProjectRejectsUnknownStage(t *testing.T) {
	mgr, _ := newTestManager(t)

	_, err := mgr.CreateProject(context.Background(), 1, "Acme", "engine", "tracking backend", models.Stage("Planning"))
	assert.Error(t, err)
}

func TestAdvanceStageCreatesNextSibling(t *testing.T) {
	mgr, store := newTestManager(t)
	ctx := context.Background()

	rec, err := mgr.CreateProject(ctx, 1, "Acme", "engine", "tracking backend", models.StageDesign)
	require.NoError(t, err)
	require.NoError(t, store.UpdateProgress(ctx, rec.ID, 1, 500, 2.5, models.StageDesign))

	res, err := mgr.AdvanceStage(ctx, 1, rec.ID)
	require.NoError(t, err)

	assert.False(t, res.IsComplete)
	assert.Equal(t, models.StatusComplete, res.Completed.Status)
	require.NotNil(t, res.Next)
	assert.Equal(t, models.StageDevelopment, res.Next.Stage)
	assert.Zero(t, res.Next.DurationSeconds)
	assert.Zero(t, res.Next.CarbonEmitKg)
	assert.Equal(t, rec.ProjectName, res.Next.ProjectName)
	assert.Equal(t, rec.ProjectDescription, res.Next.ProjectDescription)

	// The completed record's totals are untouched and exactly one active
	// record remains in the lineage.
	old, err := store.GetRecord(ctx, rec.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(500), old.DurationSeconds)
	assert.Len(t, store.activeFor(1, "engine"), 1)
}

func TestAdvanceStageTerminal(t *testing.T) {
	mgr, store := newTestManager(t)
	ctx := context.Background()

	rec, err := mgr.CreateProject(ctx, 1, "Acme", "engine", "tracking backend", models.StageTesting)
	require.NoError(t, err)

	res, err := mgr.AdvanceStage(ctx, 1, rec.ID)
	require.NoError(t, err)

	assert.True(t, res.IsComplete)
	assert.Nil(t, res.Next)
	assert.Empty(t, store.activeFor(1, "engine"))
}

func TestAdvanceStageWalksFullLifecycle(t *testing.T) {
	mgr, store := newTestManager(t)
	ctx := context.Background()

	rec, err := mgr.CreateProject(ctx, 1, "Acme", "engine", "tracking backend", models.StageDesign)
	require.NoError(t, err)

	res, err := mgr.AdvanceStage(ctx, 1, rec.ID)
	require.NoError(t, err)
	res, err = mgr.AdvanceStage(ctx, 1, res.Next.ID)
	require.NoError(t, err)
	res, err = mgr.AdvanceStage(ctx, 1, res.Next.ID)
	require.NoError(t, err)

	assert.True(t, res.IsComplete)
	assert.Len(t, store.records, 3)
	assert.Empty(t, store.activeFor(1, "engine"))
}

func TestAdvanceStageCompletedRecord(t *testing.T) {
	mgr, store := newTestManager(t)
	ctx := context.Background()

	rec, err := mgr.CreateProject(ctx, 1, "Acme", "engine", "tracking backend", models.StageTesting)
	require.NoError(t, err)
	_, err = mgr.AdvanceStage(ctx, 1, rec.ID)
	require.NoError(t, err)

	_, err = mgr.AdvanceStage(ctx, 1, rec.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.Len(t, store.records, 1)
}

func TestAdvanceStageWrongUser(t *testing.T) {
	mgr, _ := newTestManager(t)

	rec, err := mgr.CreateProject(context.Background(), 1, "Acme", "engine", "tracking backend", models.StageDesign)
	require.NoError(t, err)

	_, err = mgr.AdvanceStage(context.Background(), 2, rec.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestStopSessionCompletedRecordRace(t *testing.T) {
	mgr, store := newTestManager(t)
	ctx := context.Background()

	rec, err := mgr.CreateProject(ctx, 1, "Acme", "engine", "tracking backend", models.StageDesign)
	require.NoError(t, err)

	// Simulate the record completing between the find and the update.
	raced := &racingStore{memStore: store, completeID: rec.ID, userID: 1}
	mgr = NewManager(raced, catalog.NewResolver(fakeSource{}), slog.New(slog.NewTextHandler(io.Discard, nil)))

	_, err = mgr.StopSession(ctx, 1, "engine", "tracking backend", models.StageDesign, 60)
	assert.True(t, errors.Is(err, models.ErrNoMatchingProject))
}

// racingStore completes the target record right after FindActive returns it.
type racingStore struct {
	*memStore
	completeID uint
	userID     uint
}

func (s *racingStore) FindActive(ctx context.Context, userID uint, name, description string) (*models.ProjectRecord, error) {
	rec, err := s.memStore.FindActive(ctx, userID, name, description)
	if rec != nil && rec.ID == s.completeID {
		_ = s.memStore.CompleteRecord(ctx, s.completeID, s.userID)
	}
	return rec, err
}

func TestDeleteProject(t *testing.T) {
	mgr, store := newTestManager(t)
	ctx := context.Background()

	rec, err := mgr.CreateProject(ctx, 1, "Acme", "engine", "tracking backend", models.StageDesign)
	require.NoError(t, err)

	require.NoError(t, mgr.DeleteProject(ctx, 1, rec.ID))
	_, err = store.GetRecord(ctx, rec.ID, 1)
	assert.ErrorIs(t, err, models.ErrNotFound)

	assert.ErrorIs(t, mgr.DeleteProject(ctx, 1, rec.ID), models.ErrNotFound)
}

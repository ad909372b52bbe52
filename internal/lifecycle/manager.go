// Package lifecycle drives project records through their stage progression
// and maps finished sessions onto the correct store mutation.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/vjc2026/EmissionSense/internal/catalog"
	"github.com/vjc2026/EmissionSense/internal/emissions"
	"github.com/vjc2026/EmissionSense/internal/models"
)

// Store is the persistence contract the manager issues reads and writes
// against. Failures surface typed; nothing is retried here.
type Store interface {
	FindActive(ctx context.Context, userID uint, name, description string) (*models.ProjectRecord, error)
	CreateRecord(ctx context.Context, rec *models.ProjectRecord) error
	InsertRecord(ctx context.Context, rec *models.ProjectRecord) error
	GetRecord(ctx context.Context, id, userID uint) (*models.ProjectRecord, error)
	UpdateProgress(ctx context.Context, id, userID uint, duration int64, emissionKg float64, stage models.Stage) error
	CompleteRecord(ctx context.Context, id, userID uint) error
	DeleteRecord(ctx context.Context, id, userID uint) error
	GetUser(ctx context.Context, id uint) (*models.User, error)
}

// Manager owns the create-vs-update decision and stage advancement for
// project lineages.
type Manager struct {
	store    Store
	resolver *catalog.Resolver
	logger   *slog.Logger
}

// NewManager creates a Manager over the given store and power resolver.
func NewManager(store Store, resolver *catalog.Resolver, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{store: store, resolver: resolver, logger: logger}
}

// SessionSeed tells a timer where to start counting for a project selection.
type SessionSeed struct {
	RecordID            uint         `json:"record_id,omitempty"`
	BaseDurationSeconds int64        `json:"base_duration_seconds"`
	Stage               models.Stage `json:"stage,omitempty"`
	Found               bool         `json:"found"`
}

// StartSession performs the find-or-create seed lookup: an existing active
// record seeds the timer with its stored duration, an unknown selection seeds
// with zero (the record is created lazily on the first stop).
func (m *Manager) StartSession(ctx context.Context, userID uint, name, description string) (SessionSeed, error) {
	if name == "" || description == "" {
		return SessionSeed{}, fmt.Errorf("project name and description are required")
	}

	rec, err := m.store.FindActive(ctx, userID, name, description)
	if err != nil {
		return SessionSeed{}, err
	}
	if rec == nil {
		m.logger.Debug("no active record, seeding from zero", "user", userID, "project", name)
		return SessionSeed{}, nil
	}
	return SessionSeed{
		RecordID:            rec.ID,
		BaseDurationSeconds: rec.DurationSeconds,
		Stage:               rec.Stage,
		Found:               true,
	}, nil
}

// CalculateEmissions resolves the user's device profile and converts elapsed
// seconds into kilograms of CO2-equivalent. An unresolvable component fails
// the calculation; no default wattage is substituted.
func (m *Manager) CalculateEmissions(ctx context.Context, userID uint, elapsedSeconds int64) (float64, error) {
	if elapsedSeconds < 0 {
		return 0, fmt.Errorf("elapsed seconds must be non-negative, got %d", elapsedSeconds)
	}
	user, err := m.store.GetUser(ctx, userID)
	if err != nil {
		return 0, err
	}
	draw, err := m.resolver.ResolveDraw(ctx, *user)
	if err != nil {
		return 0, err
	}
	return emissions.Emissions(draw, elapsedSeconds), nil
}

// StopSession records a finished session: the reported total duration and the
// emissions computed from it overwrite the active record's fields. When no
// active record exists for the selection, one is created with the reported
// totals.
func (m *Manager) StopSession(ctx context.Context, userID uint, name, description string, stage models.Stage, elapsedSeconds int64) (*models.ProjectRecord, error) {
	if name == "" || description == "" {
		return nil, fmt.Errorf("project name and description are required")
	}
	if stage.Index() < 0 {
		return nil, fmt.Errorf("unknown project stage %q", stage)
	}
	if elapsedSeconds < 0 {
		return nil, fmt.Errorf("elapsed seconds must be non-negative, got %d", elapsedSeconds)
	}

	user, err := m.store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	draw, err := m.resolver.ResolveDraw(ctx, *user)
	if err != nil {
		return nil, err
	}
	emissionKg := emissions.Emissions(draw, elapsedSeconds)

	rec, err := m.store.FindActive(ctx, userID, name, description)
	if err != nil {
		return nil, err
	}

	if rec == nil {
		rec = &models.ProjectRecord{
			UserID:             userID,
			Organization:       user.Organization,
			ProjectName:        name,
			ProjectDescription: description,
			DurationSeconds:    elapsedSeconds,
			CarbonEmitKg:       emissionKg,
			Stage:              stage,
			Status:             models.StatusInProgress,
		}
		if err := m.store.InsertRecord(ctx, rec); err != nil {
			return nil, err
		}
		m.logger.Info("session recorded into new project record",
			"user", userID, "project", name, "duration", elapsedSeconds, "emission_kg", emissionKg)
		return rec, nil
	}

	if err := m.store.UpdateProgress(ctx, rec.ID, userID, elapsedSeconds, emissionKg, stage); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNoMatchingProject
		}
		return nil, err
	}

	rec.DurationSeconds = elapsedSeconds
	rec.CarbonEmitKg = emissionKg
	rec.Stage = stage
	m.logger.Info("session recorded",
		"user", userID, "project", name, "record", rec.ID,
		"duration", elapsedSeconds, "emission_kg", emissionKg)
	return rec, nil
}

// CreateProject explicitly creates a new project record at the given stage.
// The project name must be unused by this user, regardless of description.
func (m *Manager) CreateProject(ctx context.Context, userID uint, organization, name, description string, stage models.Stage) (*models.ProjectRecord, error) {
	if name == "" || description == "" {
		return nil, fmt.Errorf("project name and description are required")
	}
	if stage.Index() < 0 {
		return nil, fmt.Errorf("unknown project stage %q", stage)
	}

	rec := &models.ProjectRecord{
		UserID:             userID,
		Organization:       organization,
		ProjectName:        name,
		ProjectDescription: description,
		Stage:              stage,
		Status:             models.StatusInProgress,
	}
	if err := m.store.CreateRecord(ctx, rec); err != nil {
		return nil, err
	}
	m.logger.Info("project created", "user", userID, "project", name, "stage", stage.Short())
	return rec, nil
}

// AdvanceResult describes the outcome of a stage completion.
type AdvanceResult struct {
	Completed  *models.ProjectRecord `json:"completed"`
	Next       *models.ProjectRecord `json:"next,omitempty"`
	IsComplete bool                  `json:"is_complete"`
}

// AdvanceStage completes the current stage record. On a non-terminal stage a
// new active sibling is created with the next stage and zeroed totals,
// extending the lineage's history chain; on the terminal stage the project is
// done. The next stage always comes from the fixed order, never the caller.
func (m *Manager) AdvanceStage(ctx context.Context, userID, recordID uint) (*AdvanceResult, error) {
	rec, err := m.store.GetRecord(ctx, recordID, userID)
	if err != nil {
		return nil, err
	}
	if !rec.IsActive() {
		return nil, models.ErrNotFound
	}

	if err := m.store.CompleteRecord(ctx, rec.ID, userID); err != nil {
		return nil, err
	}
	rec.Status = models.StatusComplete

	if rec.Stage.IsTerminal() {
		m.logger.Info("project completed", "user", userID, "project", rec.ProjectName, "record", rec.ID)
		return &AdvanceResult{Completed: rec, IsComplete: true}, nil
	}

	next, _ := rec.Stage.Next()
	sibling := &models.ProjectRecord{
		UserID:             rec.UserID,
		Organization:       rec.Organization,
		ProjectName:        rec.ProjectName,
		ProjectDescription: rec.ProjectDescription,
		Stage:              next,
		Status:             models.StatusInProgress,
	}
	if err := m.store.InsertRecord(ctx, sibling); err != nil {
		return nil, err
	}

	m.logger.Info("stage advanced",
		"user", userID, "project", rec.ProjectName,
		"from", rec.Stage.Short(), "to", next.Short())
	return &AdvanceResult{Completed: rec, Next: sibling}, nil
}

// DeleteProject permanently removes a record on explicit user action.
func (m *Manager) DeleteProject(ctx context.Context, userID, recordID uint) error {
	if err := m.store.DeleteRecord(ctx, recordID, userID); err != nil {
		return err
	}
	m.logger.Info("project record deleted", "user", userID, "record", recordID)
	return nil
}

// Package sqlite persists project history, device profiles, and the power
// catalogs behind the tracking engine.
package sqlite

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/vjc2026/EmissionSense/internal/models"
)

// gormLogger bridges GORM's logger into slog.
type gormLogger struct {
	log   *slog.Logger
	level logger.LogLevel
}

// LogMode sets the log level.
func (l *gormLogger) LogMode(level logger.LogLevel) logger.Interface {
	return &gormLogger{log: l.log, level: level}
}

// Info logs info messages.
func (l *gormLogger) Info(_ context.Context, msg string, data ...interface{}) {
	if l.level >= logger.Info {
		l.log.Info(fmt.Sprintf(msg, data...))
	}
}

// Warn logs warn messages.
func (l *gormLogger) Warn(_ context.Context, msg string, data ...interface{}) {
	if l.level >= logger.Warn {
		l.log.Warn(fmt.Sprintf(msg, data...))
	}
}

// Error logs error messages.
func (l *gormLogger) Error(_ context.Context, msg string, data ...interface{}) {
	if l.level >= logger.Error {
		l.log.Error(fmt.Sprintf(msg, data...))
	}
}

// Trace logs slow queries and query errors.
func (l *gormLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level < logger.Warn {
		return
	}
	elapsed := time.Since(begin)
	sql, rows := fc()
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		l.log.Error("query failed", "error", err, "duration", elapsed, "sql", sql, "rows", rows)
	} else if elapsed > 200*time.Millisecond {
		l.log.Warn("slow query", "duration", elapsed, "sql", sql, "rows", rows)
	}
}

// Store wraps access to the SQLite database and exposes the persistence
// contract consumed by the lifecycle manager and the catalog resolver.
type Store struct {
	db     *gorm.DB
	logger *slog.Logger
}

// Open initializes the store, runs migrations, and seeds the power catalogs
// when they are empty.
func Open(dbPath string, log *slog.Logger) (*Store, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("empty database path")
	}
	if log == nil {
		log = slog.Default()
	}

	if err := ensureDir(dbPath); err != nil {
		return nil, err
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		NowFunc: func() time.Time { return time.Now().UTC() },
		Logger:  &gormLogger{log: log, level: logger.Warn},
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	db.Exec("PRAGMA journal_mode=WAL")
	db.Exec("PRAGMA busy_timeout=5000")
	db.Exec("PRAGMA synchronous=NORMAL")
	db.Exec("PRAGMA foreign_keys=ON")

	if err := db.AutoMigrate(
		&models.User{},
		&models.ProjectRecord{},
		&models.DesktopCPU{},
		&models.DesktopGPU{},
		&models.MobileCPU{},
		&models.MobileGPU{},
		&models.RAMModule{},
	); err != nil {
		return nil, fmt.Errorf("migrate schema: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetConnMaxLifetime(0)

	s := &Store{db: db, logger: log}
	if err := s.seedCatalogs(); err != nil {
		return nil, err
	}
	return s, nil
}

// Close releases the database resources.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func ensureDir(dbPath string) error {
	dir := filepath.Dir(dbPath)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

// FindActive returns the single active record for (user, name, description),
// or nil when none exists.
func (s *Store) FindActive(ctx context.Context, userID uint, name, description string) (*models.ProjectRecord, error) {
	var rec models.ProjectRecord
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND project_name = ? AND project_description = ? AND status <> ?",
			userID, name, description, models.StatusComplete).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, models.NewDatabaseError("find active project", err)
	}
	return &rec, nil
}

// ExistsProjectName reports whether the user has any record with the given
// project name, regardless of description or status.
func (s *Store) ExistsProjectName(ctx context.Context, userID uint, name string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.ProjectRecord{}).
		Where("user_id = ? AND project_name = ?", userID, name).
		Count(&count).Error
	if err != nil {
		return false, models.NewDatabaseError("check project name", err)
	}
	return count > 0, nil
}

// CreateRecord inserts a new project record. The DuplicateName rule is
// enforced here, by name alone, before the insert.
func (s *Store) CreateRecord(ctx context.Context, rec *models.ProjectRecord) error {
	exists, err := s.ExistsProjectName(ctx, rec.UserID, rec.ProjectName)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%q: %w", rec.ProjectName, models.ErrDuplicateName)
	}
	if rec.Status == "" {
		rec.Status = models.StatusInProgress
	}
	if err := s.db.WithContext(ctx).Create(rec).Error; err != nil {
		return models.NewDatabaseError("create project record", err)
	}
	return nil
}

// InsertRecord inserts a record without the DuplicateName check. Stage
// advancement uses it to append the next link of an existing chain.
func (s *Store) InsertRecord(ctx context.Context, rec *models.ProjectRecord) error {
	if rec.Status == "" {
		rec.Status = models.StatusInProgress
	}
	if err := s.db.WithContext(ctx).Create(rec).Error; err != nil {
		return models.NewDatabaseError("insert project record", err)
	}
	return nil
}

// GetRecord fetches one record scoped to its owner.
func (s *Store) GetRecord(ctx context.Context, id, userID uint) (*models.ProjectRecord, error) {
	var rec models.ProjectRecord
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, models.NewDatabaseError("get project record", err)
	}
	return &rec, nil
}

// UpdateProgress overwrites the duration, emission, and stage of an active
// record. The new totals replace the stored ones; each session stop reports
// the full elapsed time since the stage began.
func (s *Store) UpdateProgress(ctx context.Context, id, userID uint, duration int64, emissionKg float64, stage models.Stage) error {
	result := s.db.WithContext(ctx).Model(&models.ProjectRecord{}).
		Where("id = ? AND user_id = ? AND status <> ?", id, userID, models.StatusComplete).
		Updates(map[string]interface{}{
			"duration_seconds": duration,
			"carbon_emit_kg":   emissionKg,
			"stage":            stage,
		})
	if result.Error != nil {
		return models.NewDatabaseError("update project progress", result.Error)
	}
	if result.RowsAffected == 0 {
		return models.ErrNotFound
	}
	return nil
}

// CompleteRecord flips a record's status to Complete.
func (s *Store) CompleteRecord(ctx context.Context, id, userID uint) error {
	result := s.db.WithContext(ctx).Model(&models.ProjectRecord{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("status", models.StatusComplete)
	if result.Error != nil {
		return models.NewDatabaseError("complete project record", result.Error)
	}
	if result.RowsAffected == 0 {
		return models.ErrNotFound
	}
	return nil
}

// DeleteRecord permanently removes a record. Deletion is unconditional.
func (s *Store) DeleteRecord(ctx context.Context, id, userID uint) error {
	result := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.ProjectRecord{})
	if result.Error != nil {
		return models.NewDatabaseError("delete project record", result.Error)
	}
	if result.RowsAffected == 0 {
		return models.ErrNotFound
	}
	return nil
}

// ListActive returns the user's records that can still receive sessions.
func (s *Store) ListActive(ctx context.Context, userID uint) ([]models.ProjectRecord, error) {
	var recs []models.ProjectRecord
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND status <> ?", userID, models.StatusComplete).
		Find(&recs).Error
	if err != nil {
		return nil, models.NewDatabaseError("list active projects", err)
	}
	return recs, nil
}

// ListAll returns the user's full project history, newest first.
func (s *Store) ListAll(ctx context.Context, userID uint) ([]models.ProjectRecord, error) {
	var recs []models.ProjectRecord
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&recs).Error
	if err != nil {
		return nil, models.NewDatabaseError("list project history", err)
	}
	return recs, nil
}

// ListOrganization returns every record in an organization joined with its
// owner's name.
func (s *Store) ListOrganization(ctx context.Context, organization string) ([]models.OrganizationProject, error) {
	var projects []models.OrganizationProject
	err := s.db.WithContext(ctx).Model(&models.ProjectRecord{}).
		Select("user_history.id, user_history.project_name, user_history.project_description, "+
			"user_history.duration_seconds, user_history.carbon_emit_kg, user_history.stage, "+
			"user_history.status, users.name AS owner").
		Joins("JOIN users ON users.id = user_history.user_id").
		Where("user_history.organization = ?", organization).
		Scan(&projects).Error
	if err != nil {
		return nil, models.NewDatabaseError("list organization projects", err)
	}
	return projects, nil
}

// CreateUser inserts a user with their device profile.
func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		return models.NewDatabaseError("create user", err)
	}
	return nil
}

// GetUser fetches a user and device profile by id.
func (s *Store) GetUser(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, models.NewDatabaseError("get user", err)
	}
	return &user, nil
}

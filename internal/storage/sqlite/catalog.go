package sqlite

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/vjc2026/EmissionSense/internal/models"
)

// DesktopCPUWatts resolves a desktop CPU model to its average watt usage.
func (s *Store) DesktopCPUWatts(ctx context.Context, model string) (float64, error) {
	var row models.DesktopCPU
	return s.wattLookup(ctx, s.db.WithContext(ctx).Where("model = ?", model).First(&row).Error,
		"desktop cpu", model, func() float64 { return row.AvgWattUsage })
}

// DesktopGPUWatts resolves a desktop GPU model to its average watt usage.
func (s *Store) DesktopGPUWatts(ctx context.Context, model string) (float64, error) {
	var row models.DesktopGPU
	return s.wattLookup(ctx, s.db.WithContext(ctx).Where("model = ?", model).First(&row).Error,
		"desktop gpu", model, func() float64 { return row.AvgWattUsage })
}

// MobileCPUWatts resolves a mobile CPU model to its rated watts.
func (s *Store) MobileCPUWatts(ctx context.Context, model string) (float64, error) {
	var row models.MobileCPU
	return s.wattLookup(ctx, s.db.WithContext(ctx).Where("model = ?", model).First(&row).Error,
		"mobile cpu", model, func() float64 { return row.Watts })
}

// MobileGPUWatts resolves a mobile GPU model to its rated watts.
func (s *Store) MobileGPUWatts(ctx context.Context, model string) (float64, error) {
	var row models.MobileGPU
	return s.wattLookup(ctx, s.db.WithContext(ctx).Where("model = ?", model).First(&row).Error,
		"mobile gpu", model, func() float64 { return row.Watts })
}

// RAMWatts resolves a DDR generation to its average watt usage. The RAM table
// is shared by both device classes.
func (s *Store) RAMWatts(ctx context.Context, generation string) (float64, error) {
	var row models.RAMModule
	return s.wattLookup(ctx, s.db.WithContext(ctx).Where("ddr_generation = ?", generation).First(&row).Error,
		"ram", generation, func() float64 { return row.AvgWattUsage })
}

func (s *Store) wattLookup(_ context.Context, err error, kind, model string, watts func() float64) (float64, error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, fmt.Errorf("%s %q: %w", kind, model, models.ErrComponentNotFound)
	}
	if err != nil {
		return 0, models.NewDatabaseError("lookup "+kind+" watts", err)
	}
	return watts(), nil
}

// DesktopCPUOptions lists selectable desktop CPUs with display labels.
func (s *Store) DesktopCPUOptions(ctx context.Context) ([]models.ComponentOption, error) {
	var rows []models.DesktopCPU
	if err := s.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, models.NewDatabaseError("list desktop cpu options", err)
	}
	options := make([]models.ComponentOption, len(rows))
	for i, row := range rows {
		options[i] = models.ComponentOption{
			Label: fmt.Sprintf("%s %s %s", row.Manufacturer, row.Series, row.Model),
			Value: row.Model,
		}
	}
	return options, nil
}

// DesktopGPUOptions lists selectable desktop GPUs with display labels.
func (s *Store) DesktopGPUOptions(ctx context.Context) ([]models.ComponentOption, error) {
	var rows []models.DesktopGPU
	if err := s.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, models.NewDatabaseError("list desktop gpu options", err)
	}
	options := make([]models.ComponentOption, len(rows))
	for i, row := range rows {
		options[i] = models.ComponentOption{
			Label: fmt.Sprintf("%s %s %s", row.Manufacturer, row.Series, row.Model),
			Value: row.Model,
		}
	}
	return options, nil
}

// MobileCPUOptions lists selectable mobile CPUs with display labels.
func (s *Store) MobileCPUOptions(ctx context.Context) ([]models.ComponentOption, error) {
	var rows []models.MobileCPU
	if err := s.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, models.NewDatabaseError("list mobile cpu options", err)
	}
	options := make([]models.ComponentOption, len(rows))
	for i, row := range rows {
		options[i] = models.ComponentOption{
			Label: fmt.Sprintf("%s %s", row.Generation, row.Model),
			Value: row.Model,
		}
	}
	return options, nil
}

// MobileGPUOptions lists selectable mobile GPUs with display labels.
func (s *Store) MobileGPUOptions(ctx context.Context) ([]models.ComponentOption, error) {
	var rows []models.MobileGPU
	if err := s.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, models.NewDatabaseError("list mobile gpu options", err)
	}
	options := make([]models.ComponentOption, len(rows))
	for i, row := range rows {
		options[i] = models.ComponentOption{
			Label: fmt.Sprintf("%s %s", row.Manufacturer, row.Model),
			Value: row.Model,
		}
	}
	return options, nil
}

// RAMOptions lists selectable RAM generations.
func (s *Store) RAMOptions(ctx context.Context) ([]models.ComponentOption, error) {
	var rows []models.RAMModule
	if err := s.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, models.NewDatabaseError("list ram options", err)
	}
	options := make([]models.ComponentOption, len(rows))
	for i, row := range rows {
		options[i] = models.ComponentOption{
			Label: row.DDRGeneration,
			Value: row.DDRGeneration,
		}
	}
	return options, nil
}

// seedCatalogs populates the power catalogs with a starter set when they are
// empty, so a fresh install can resolve common components immediately.
func (s *Store) seedCatalogs() error {
	var count int64
	if err := s.db.Model(&models.DesktopCPU{}).Count(&count).Error; err != nil {
		return models.NewDatabaseError("count desktop cpus", err)
	}
	if count > 0 {
		return nil
	}

	s.logger.Info("seeding power catalogs")

	desktopCPUs := []models.DesktopCPU{
		{Manufacturer: "Intel", Series: "Core i5", Model: "Core i5-12400", AvgWattUsage: 65},
		{Manufacturer: "Intel", Series: "Core i7", Model: "Core i7-12700K", AvgWattUsage: 125},
		{Manufacturer: "AMD", Series: "Ryzen 5", Model: "Ryzen 5 5600X", AvgWattUsage: 65},
		{Manufacturer: "AMD", Series: "Ryzen 7", Model: "Ryzen 7 5800X", AvgWattUsage: 105},
	}
	desktopGPUs := []models.DesktopGPU{
		{Manufacturer: "NVIDIA", Series: "GeForce RTX", Model: "RTX 3060", AvgWattUsage: 120},
		{Manufacturer: "NVIDIA", Series: "GeForce RTX", Model: "RTX 3080", AvgWattUsage: 320},
		{Manufacturer: "AMD", Series: "Radeon RX", Model: "RX 6700 XT", AvgWattUsage: 230},
	}
	mobileCPUs := []models.MobileCPU{
		{Generation: "11th Gen Intel", Model: "Core i7-1165G7", Watts: 15},
		{Generation: "12th Gen Intel", Model: "Core i5-1240P", Watts: 28},
		{Generation: "AMD Ryzen 5000", Model: "Ryzen 7 5800U", Watts: 15},
	}
	mobileGPUs := []models.MobileGPU{
		{Manufacturer: "Intel", Model: "Iris Xe", Watts: 25},
		{Manufacturer: "NVIDIA", Model: "RTX 3050 Mobile", Watts: 60},
		{Manufacturer: "AMD", Model: "Radeon 680M", Watts: 50},
	}
	ramModules := []models.RAMModule{
		{DDRGeneration: "DDR3", AvgWattUsage: 4},
		{DDRGeneration: "DDR4", AvgWattUsage: 5},
		{DDRGeneration: "DDR5", AvgWattUsage: 6},
	}

	if err := s.db.Create(&desktopCPUs).Error; err != nil {
		return models.NewDatabaseError("seed desktop cpus", err)
	}
	if err := s.db.Create(&desktopGPUs).Error; err != nil {
		return models.NewDatabaseError("seed desktop gpus", err)
	}
	if err := s.db.Create(&mobileCPUs).Error; err != nil {
		return models.NewDatabaseError("seed mobile cpus", err)
	}
	if err := s.db.Create(&mobileGPUs).Error; err != nil {
		return models.NewDatabaseError("seed mobile gpus", err)
	}
	if err := s.db.Create(&ramModules).Error; err != nil {
		return models.NewDatabaseError("seed ram modules", err)
	}
	return nil
}

package models

import "time"

// Status marks whether a project-stage record is still accumulating sessions.
type Status string

const (
	StatusInProgress Status = "In-Progress"
	StatusComplete   Status = "Complete"
)

// DeviceClass selects which power catalog and calculation path apply.
type DeviceClass string

const (
	DeviceDesktop DeviceClass = "Desktop"
	DeviceMobile  DeviceClass = "Mobile"
)

// ComponentKind identifies a hardware component in the power catalogs.
type ComponentKind string

const (
	ComponentCPU ComponentKind = "CPU"
	ComponentGPU ComponentKind = "GPU"
	ComponentRAM ComponentKind = "RAM"
)

// ProjectRecord is one (user, project name, description, stage) unit of work.
// A project's full history is the chain of records sharing the same name and
// description; at most one of them is active (status != Complete) at a time.
type ProjectRecord struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	UserID             uint      `gorm:"not null;index:idx_history_user" json:"user_id"`
	Organization       string    `json:"organization"`
	ProjectName        string    `gorm:"not null;index:idx_history_name" json:"project_name"`
	ProjectDescription string    `gorm:"not null" json:"project_description"`
	DurationSeconds    int64     `gorm:"not null;default:0" json:"session_duration"`
	CarbonEmitKg       float64   `gorm:"not null;default:0" json:"carbon_emit"`
	Stage              Stage     `gorm:"not null" json:"stage"`
	Status             Status    `gorm:"not null;default:'In-Progress'" json:"status"`
	CreatedAt          time.Time `json:"created_at"`
}

// TableName keeps the table name the rest of the deployment already uses.
func (ProjectRecord) TableName() string { return "user_history" }

// IsActive reports whether the record can still receive session updates.
func (r ProjectRecord) IsActive() bool { return r.Status != StatusComplete }

// User holds the identity and device profile consulted for emission
// calculations. The component fields are lookup keys into the power catalogs
// and are never mutated by the tracking engine.
type User struct {
	ID           uint        `gorm:"primaryKey" json:"id"`
	Name         string      `json:"name"`
	Email        string      `gorm:"uniqueIndex" json:"email"`
	Organization string      `json:"organization"`
	Device       DeviceClass `json:"device"`
	CPU          string      `json:"cpu"`
	GPU          string      `json:"gpu"`
	RAM          string      `json:"ram"` // DDR generation, e.g. "DDR4"
	PSUWatts     float64     `json:"psu"` // desktop only, rated wattage added flat
	CreatedAt    time.Time   `json:"created_at"`
}

// DesktopCPU is a catalog row for desktop processors.
type DesktopCPU struct {
	ID           uint    `gorm:"primaryKey" json:"id"`
	Manufacturer string  `json:"manufacturer"`
	Series       string  `json:"series"`
	Model        string  `gorm:"uniqueIndex" json:"model"`
	AvgWattUsage float64 `json:"avg_watt_usage"`
}

// TableName matches the catalog table provisioned for desktop CPUs.
func (DesktopCPU) TableName() string { return "cpus" }

// DesktopGPU is a catalog row for desktop graphics cards.
type DesktopGPU struct {
	ID           uint    `gorm:"primaryKey" json:"id"`
	Manufacturer string  `json:"manufacturer"`
	Series       string  `json:"series"`
	Model        string  `gorm:"uniqueIndex" json:"model"`
	AvgWattUsage float64 `json:"avg_watt_usage"`
}

func (DesktopGPU) TableName() string { return "gpus" }

// MobileCPU is a catalog row for mobile/laptop processors. Mobile parts
// report a single TDP-like watts figure rather than an average usage.
type MobileCPU struct {
	ID         uint    `gorm:"primaryKey" json:"id"`
	Generation string  `json:"generation"`
	Model      string  `gorm:"uniqueIndex" json:"model"`
	Watts      float64 `json:"watts"`
}

func (MobileCPU) TableName() string { return "cpusm" }

// MobileGPU is a catalog row for mobile/laptop graphics processors.
type MobileGPU struct {
	ID           uint    `gorm:"primaryKey" json:"id"`
	Manufacturer string  `json:"manufacturer"`
	Model        string  `gorm:"uniqueIndex" json:"model"`
	Watts        float64 `json:"watts"`
}

func (MobileGPU) TableName() string { return "gpusm" }

// RAMModule is a catalog row keyed by DDR generation, shared by both device
// classes.
type RAMModule struct {
	ID            uint    `gorm:"primaryKey" json:"id"`
	DDRGeneration string  `gorm:"uniqueIndex;column:ddr_generation" json:"ddr_generation"`
	AvgWattUsage  float64 `json:"avg_watt_usage"`
}

func (RAMModule) TableName() string { return "ram" }

// ComponentOption is a selectable catalog entry with a display label.
type ComponentOption struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// OrganizationProject is a project record joined with its owner's name for
// organization-wide listings.
type OrganizationProject struct {
	ID                 uint    `json:"id"`
	ProjectName        string  `json:"project_name"`
	ProjectDescription string  `json:"project_description"`
	DurationSeconds    int64   `json:"session_duration"`
	CarbonEmitKg       float64 `json:"carbon_emit"`
	Stage              Stage   `json:"stage"`
	Status             Status  `json:"status"`
	Owner              string  `json:"owner"`
}

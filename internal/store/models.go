// Package store provides the PostgreSQL record store for the farm hierarchy,
// animals, devices and their raw time-series observations.
package store

import (
	"time"
)

// Farm is the root of the location hierarchy.
type Farm struct {
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
	Name      string    `gorm:"not null"`
	Location  string
	ID        uint `gorm:"primaryKey"`
}

// TableName specifies the table name for Farm model.
func (Farm) TableName() string {
	return "farms"
}

// Barn belongs to a farm and contains stalls.
type Barn struct {
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
	Name      string    `gorm:"not null"`
	FarmID    uint      `gorm:"index;not null"`
	ID        uint      `gorm:"primaryKey"`
}

// TableName specifies the table name for Barn model.
func (Barn) TableName() string {
	return "barns"
}

// Stall belongs to a barn. FarmID duplicates the barn's farm reference for
// query convenience; the writing side keeps it consistent, readers only join on it.
type Stall struct {
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
	Name      string    `gorm:"not null"`
	BarnID    uint      `gorm:"index;not null"`
	FarmID    uint      `gorm:"index;not null"`
	ID        uint      `gorm:"primaryKey"`
}

// TableName specifies the table name for Stall model.
func (Stall) TableName() string {
	return "stalls"
}

// Device statuses.
const (
	DeviceStatusOnline  = "online"
	DeviceStatusOffline = "offline"
	DeviceStatusWarning = "warning"
)

// Device represents a monitoring device. Status and temperature are mutated by
// the ingestion path; the aggregator only reads.
type Device struct {
	LastUpdate  time.Time `gorm:"index:idx_devices_last_update"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
	DeviceID    int64     `gorm:"uniqueIndex;not null"`
	Name        string    `gorm:"not null"`
	Type        string
	Status      string `gorm:"default:offline"`
	Temperature float64
	ID          uint `gorm:"primaryKey"`
}

// TableName specifies the table name for Device model.
func (Device) TableName() string {
	return "devices"
}

// Pig represents an animal. PigID is the stable, externally assigned herd number.
type Pig struct {
	LastUpdate     time.Time `gorm:"index:idx_pigs_last_update"`
	CreatedAt      time.Time `gorm:"autoCreateTime"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime"`
	PigID          int64     `gorm:"uniqueIndex;not null"`
	Tag            string    `gorm:"not null"`
	Breed          string
	Age            int
	BCSScore       float64
	CurrentFarmID  uint
	CurrentBarnID  uint `gorm:"index"`
	CurrentStallID uint `gorm:"index"`
	Active         bool `gorm:"default:true"`
	ID             uint `gorm:"primaryKey"`
}

// TableName specifies the table name for Pig model.
func (Pig) TableName() string {
	return "pigs"
}

// TemperatureRecord is an append-only device temperature observation.
type TemperatureRecord struct {
	Timestamp   time.Time `gorm:"index:idx_temperature_device_ts;index:idx_temperature_ts;not null"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	DeviceID    int64     `gorm:"index:idx_temperature_device_ts;not null"`
	Temperature float64   `gorm:"not null"`
	ID          uint      `gorm:"primaryKey"`
}

// TableName specifies the table name for TemperatureRecord model.
func (TemperatureRecord) TableName() string {
	return "temperature_records"
}

// BCSRecord is an append-only body-condition score observation.
type BCSRecord struct {
	Timestamp time.Time `gorm:"index:idx_bcs_pig_ts;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	PigID     int64     `gorm:"index:idx_bcs_pig_ts;not null"`
	Score     float64   `gorm:"not null"`
	ID        uint      `gorm:"primaryKey"`
}

// TableName specifies the table name for BCSRecord model.
func (BCSRecord) TableName() string {
	return "bcs_records"
}

// PostureRecord is an append-only posture score observation (1..5).
type PostureRecord struct {
	Timestamp time.Time `gorm:"index:idx_posture_pig_ts;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	PigID     int64     `gorm:"index:idx_posture_pig_ts;not null"`
	Score     int       `gorm:"not null"`
	ID        uint      `gorm:"primaryKey"`
}

// TableName specifies the table name for PostureRecord model.
func (PostureRecord) TableName() string {
	return "posture_records"
}

// HealthStatusRecord is an append-only health status observation.
type HealthStatusRecord struct {
	Timestamp time.Time `gorm:"index:idx_health_pig_ts;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	PigID     int64     `gorm:"index:idx_health_pig_ts;not null"`
	Status    string    `gorm:"not null"`
	ID        uint      `gorm:"primaryKey"`
}

// TableName specifies the table name for HealthStatusRecord model.
func (HealthStatusRecord) TableName() string {
	return "health_status_records"
}

// FertilityStatusRecord is an append-only fertility status observation.
type FertilityStatusRecord struct {
	Timestamp time.Time `gorm:"index:idx_fertility_pig_ts;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	PigID     int64     `gorm:"index:idx_fertility_pig_ts;not null"`
	Status    string    `gorm:"not null"`
	ID        uint      `gorm:"primaryKey"`
}

// TableName specifies the table name for FertilityStatusRecord model.
func (FertilityStatusRecord) TableName() string {
	return "fertility_status_records"
}

// HeatStatusRecord is an append-only heat status observation.
type HeatStatusRecord struct {
	Timestamp time.Time `gorm:"index:idx_heat_pig_ts;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	PigID     int64     `gorm:"index:idx_heat_pig_ts;not null"`
	Status    string    `gorm:"not null"`
	ID        uint      `gorm:"primaryKey"`
}

// TableName specifies the table name for HeatStatusRecord model.
func (HeatStatusRecord) TableName() string {
	return "heat_status_records"
}

// BreathRateRecord is an append-only breath rate observation.
type BreathRateRecord struct {
	Timestamp time.Time `gorm:"index:idx_breath_pig_ts;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	PigID     int64     `gorm:"index:idx_breath_pig_ts;not null"`
	Rate      float64   `gorm:"not null"`
	ID        uint      `gorm:"primaryKey"`
}

// TableName specifies the table name for BreathRateRecord model.
func (BreathRateRecord) TableName() string {
	return "breath_rate_records"
}

// VulvaSwellingRecord is an append-only vulva swelling observation.
type VulvaSwellingRecord struct {
	Timestamp time.Time `gorm:"index:idx_vulva_pig_ts;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	PigID     int64     `gorm:"index:idx_vulva_pig_ts;not null"`
	Value     string    `gorm:"not null"` // low, moderate, high
	ID        uint      `gorm:"primaryKey"`
}

// TableName specifies the table name for VulvaSwellingRecord model.
func (VulvaSwellingRecord) TableName() string {
	return "vulva_swelling_records"
}

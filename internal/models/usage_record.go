package models

import "time"

// Tracks analyses consumed per identity
type UsageRecord struct {
	Identity     string    `gorm:"primaryKey" json:"identity"`
	AnalysesUsed int64     `gorm:"not null;default:0" json:"analyses_used"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (UsageRecord) TableName() string {
	return "usage_records"
}

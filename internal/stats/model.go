package stats

import "time"

// singletonID is the primary key of the only UsageStats row.
const singletonID = 1

type UsageStats struct {
	ID             uint      `gorm:"primaryKey;autoIncrement:false" json:"-"`
	UniqueVisitors int64     `gorm:"column:unique_visitors;not null;default:0" json:"uniqueVisitors"`
	DuasGenerated  int64     `gorm:"column:duas_generated;not null;default:0" json:"duasGenerated"`
	DuasShared     int64     `gorm:"column:duas_shared;not null;default:0" json:"duasShared"`
	LastUpdated    time.Time `gorm:"column:last_updated;not null" json:"lastUpdated"`
}

func (UsageStats) TableName() string { return "usage_stats" }

// Counter names one of the UsageStats columns that can be incremented.
type Counter string

const (
	Visitors  Counter = "unique_visitors"
	Generated Counter = "duas_generated"
	Shared    Counter = "duas_shared"
)

func (c Counter) valid() bool {
	switch c {
	case Visitors, Generated, Shared:
		return true
	}
	return false
}

// Snapshot is the public view served by GET /api/stats.
type Snapshot struct {
	UniqueVisitors int64 `json:"uniqueVisitors"`
	DuasGenerated  int64 `json:"duasGenerated"`
	DuasShared     int64 `json:"duasShared"`
}

func (u *UsageStats) Snapshot() Snapshot {
	return Snapshot{UniqueVisitors: u.UniqueVisitors, DuasGenerated: u.DuasGenerated, DuasShared: u.DuasShared}
}

package entities

import "time"

type ActivityLog struct {
	ID           uint      `json:"id" gorm:"primaryKey;column:id"`
	SalesRepID   uint      `json:"sales_rep_id" gorm:"column:salesrepTb;index;not null"`
	ActivityType string    `json:"activity_type" gorm:"column:activity_type;size:64"`
	RecordedAt   time.Time `json:"recorded_at" gorm:"column:rDateTime"`
	Duration     int       `json:"duration" gorm:"column:duration"`
}

func (ActivityLog) TableName() string {
	return "user_activity"
}

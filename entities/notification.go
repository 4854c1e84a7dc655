package entities

import "time"

type Notification struct {
	ID        uint      `json:"id" gorm:"primaryKey;column:id"`
	Title     string    `json:"title" gorm:"column:title;size:255;not null"`
	Body      string    `json:"body" gorm:"column:body;type:text"`
	ReadFlag  bool      `json:"read_flag" gorm:"column:read_flag;default:false"`
	CreatedAt time.Time `json:"created_at"`
}

func (Notification) TableName() string {
	return "admin_notifications"
}

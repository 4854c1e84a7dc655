package entities

import (
	"repwatch-console/constant"
)

// Recording is one captured media file reference. Date and Time are stored as
// zero-padded strings (YYYY-MM-DD, HH:MM:SS) so that lexicographic order of
// CONCAT(date,' ',time) equals chronological order; the range query in the
// repository depends on this.
type Recording struct {
	ID       uint                     `json:"id" gorm:"primaryKey;column:id"`
	UserID   uint                     `json:"user_id" gorm:"column:user_id;index;not null"`
	FileName string                   `json:"file_name" gorm:"column:imgName;size:255;not null"`
	Date     string                   `json:"date" gorm:"column:date;size:10;not null"`
	Time     string                   `json:"time" gorm:"column:time;size:8;not null"`
	Status   constant.RecordingStatus `json:"status" gorm:"column:status;size:32"`
	Type     constant.RecordingType   `json:"type" gorm:"column:type;size:32;index"`
}

func (Recording) TableName() string {
	return "web_images"
}

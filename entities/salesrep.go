package entities

import (
	"time"

	"repwatch-console/constant"
)

type SalesRep struct {
	ID           uint                `json:"id" gorm:"primaryKey;column:id"`
	RepID        string              `json:"rep_id" gorm:"column:rep_id;size:32;uniqueIndex;not null"`
	Name         string              `json:"name" gorm:"column:name;size:128;not null"`
	BranchID     string              `json:"branch_id" gorm:"column:branch_id;size:32"`
	EmailAddress string              `json:"email_address" gorm:"column:email_address;size:255"`
	JoinDate     string              `json:"join_date" gorm:"column:join_date;size:10"`
	ActiveFlag   constant.ActiveFlag `json:"active_flag" gorm:"column:active_flag;type:varchar(3);default:'YES'"`
	PasswordHash string              `json:"-" gorm:"column:password_hash;size:255"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

func (SalesRep) TableName() string {
	return "salesrep"
}

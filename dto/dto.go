package dto

import "repwatch-console/constant"

type LoginForm struct {
	Username  string `form:"username"`
	Password  string `form:"password"`
	CSRFToken string `form:"csrf_token"`
}

type CombineRequest struct {
	UserID    uint   `form:"user_id"`
	StartDate string `form:"start_date"`
	StartTime string `form:"start_time"`
	EndDate   string `form:"end_date"`
	EndTime   string `form:"end_time"`
	Format    string `form:"format"`
}

type RepForm struct {
	RepID        string `form:"rep_id"`
	Name         string `form:"name"`
	BranchID     string `form:"branch_id"`
	EmailAddress string `form:"email_address"`
	JoinDate     string `form:"join_date"`
	ActiveFlag   string `form:"active_flag"`
	Password     string `form:"password"`
}

// UploadEvent is published by capture clients when a recording has been
// written into the uploads root. Date and time must arrive zero-padded; the
// ingest handler normalizes them again before the row is inserted.
type UploadEvent struct {
	UserID   uint                     `json:"userId"`
	FileName string                   `json:"fileName"`
	Date     string                   `json:"date"`
	Time     string                   `json:"time"`
	Status   constant.RecordingStatus `json:"status"`
	Type     constant.RecordingType   `json:"type"`
}

package repository

import (
	"context"
	"database/sql"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"repwatch-console/constant"
	"repwatch-console/entities"
)

// RepSortColumn is the enumerated allow-list for dashboard sorting. Anything
// outside this set falls back to the primary key; column names are never
// built from request input.
type RepSortColumn string

const (
	SortByRepID    RepSortColumn = "rep_id"
	SortByName     RepSortColumn = "name"
	SortByBranch   RepSortColumn = "branch_id"
	SortByJoinDate RepSortColumn = "join_date"
)

func (c RepSortColumn) column() string {
	switch c {
	case SortByRepID, SortByName, SortByBranch, SortByJoinDate:
		return string(c)
	default:
		return "id"
	}
}

type SortOrder string

const (
	OrderAsc  SortOrder = "asc"
	OrderDesc SortOrder = "desc"
)

func (o SortOrder) direction() string {
	if o == OrderDesc {
		return "DESC"
	}
	return "ASC"
}

type ListRepsParams struct {
	Page    int
	PerPage int
	SortBy  RepSortColumn
	Order   SortOrder
	Search  string
}

type ActivitySummaryRow struct {
	ActivityType  string `json:"activity_type"`
	Count         int64  `json:"count"`
	TotalDuration int64  `json:"total_duration"`
}

type RepRecordingCountRow struct {
	RepID      string `json:"rep_id"`
	Name       string `json:"name"`
	Recordings int64  `json:"recordings"`
}

type ConsoleRepository interface {
	Transaction(ctx context.Context, callback func(ctx context.Context) error, opts ...*sql.TxOptions) error
	GetDB() *gorm.DB
	AutoMigrate() error

	FindRepByID(ctx context.Context, id uint) (*entities.SalesRep, error)
	ListReps(ctx context.Context, params ListRepsParams) ([]*entities.SalesRep, int64, error)
	CreateRep(ctx context.Context, rep *entities.SalesRep) error
	UpdateRep(ctx context.Context, rep *entities.SalesRep) error
	DeleteRep(ctx context.Context, id uint) error
	BulkDeleteReps(ctx context.Context, ids []uint) error

	RecordingsInRange(ctx context.Context, userID uint, start, end string) ([]*entities.Recording, error)
	RecordingsSince(ctx context.Context, userID uint, afterID uint) ([]*entities.Recording, error)
	LatestRecording(ctx context.Context, userID uint) (*entities.Recording, error)
	CreateRecording(ctx context.Context, rec *entities.Recording) error
	DeleteRecording(ctx context.Context, id uint) error

	ActivitySummary(ctx context.Context, since time.Time) ([]ActivitySummaryRow, error)
	RecordingCountsPerRep(ctx context.Context) ([]RepRecordingCountRow, error)

	ListNotifications(ctx context.Context, unreadOnly bool) ([]*entities.Notification, error)
	CreateNotification(ctx context.Context, n *entities.Notification) error
	MarkNotificationRead(ctx context.Context, id uint) error
	DeleteNotification(ctx context.Context, id uint) error
}

type repo struct {
	db *gorm.DB
}

func NewRepo(dsn string, logMode bool) (ConsoleRepository, error) {
	level := logger.Warn
	if logMode {
		level = logger.Info
	}
	gormDB, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(level),
	})
	if err != nil {
		return nil, err
	}
	return &repo{db: gormDB}, nil
}

func (r *repo) GetDB() *gorm.DB {
	return r.db
}

func (r *repo) AutoMigrate() error {
	return r.db.AutoMigrate(
		&entities.SalesRep{},
		&entities.Recording{},
		&entities.ActivityLog{},
		&entities.Notification{},
	)
}

func (r *repo) Transaction(ctx context.Context, callback func(ctx context.Context) error, opts ...*sql.TxOptions) error {
	return r.GetDB().Transaction(func(tx *gorm.DB) error {
		return callback(ctx)
	}, opts...)
}

func (r *repo) FindRepByID(ctx context.Context, id uint) (*entities.SalesRep, error) {
	rep := &entities.SalesRep{}
	if err := r.GetDB().WithContext(ctx).First(rep, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return rep, nil
}

func (r *repo) ListReps(ctx context.Context, params ListRepsParams) ([]*entities.SalesRep, int64, error) {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.PerPage < 1 || params.PerPage > 200 {
		params.PerPage = 25
	}

	q := r.GetDB().WithContext(ctx).Model(&entities.SalesRep{})
	if params.Search != "" {
		pattern := "%" + params.Search + "%"
		q = q.Where("name LIKE ? OR rep_id LIKE ? OR email_address LIKE ?", pattern, pattern, pattern)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var reps []*entities.SalesRep
	err := q.Order(params.SortBy.column() + " " + params.Order.direction()).
		Offset((params.Page - 1) * params.PerPage).
		Limit(params.PerPage).
		Find(&reps).Error
	if err != nil {
		return nil, 0, err
	}
	return reps, total, nil
}

func (r *repo) CreateRep(ctx context.Context, rep *entities.SalesRep) error {
	return r.GetDB().WithContext(ctx).Create(rep).Error
}

func (r *repo) UpdateRep(ctx context.Context, rep *entities.SalesRep) error {
	return r.GetDB().WithContext(ctx).Save(rep).Error
}

func (r *repo) DeleteRep(ctx context.Context, id uint) error {
	return r.GetDB().WithContext(ctx).Delete(&entities.SalesRep{}, "id = ?", id).Error
}

func (r *repo) BulkDeleteReps(ctx context.Context, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	return r.GetDB().WithContext(ctx).Delete(&entities.SalesRep{}, "id IN ?", ids).Error
}

// RecordingsInRange matches rows whose CONCAT(date,' ',time) falls inside
// [start, end] inclusive. Comparison is textual on zero-padded fields, which
// is chronological by the Recording formatting invariant.
func (r *repo) RecordingsInRange(ctx context.Context, userID uint, start, end string) ([]*entities.Recording, error) {
	var recordings []*entities.Recording
	err := r.GetDB().WithContext(ctx).
		Where("user_id = ? AND type = ?", userID, constant.RecordingTypeRecording).
		Where("CONCAT(date, ' ', time) BETWEEN ? AND ?", start, end).
		Order("date ASC, time ASC").
		Find(&recordings).Error
	if err != nil {
		return nil, err
	}
	return recordings, nil
}

func (r *repo) RecordingsSince(ctx context.Context, userID uint, afterID uint) ([]*entities.Recording, error) {
	var recordings []*entities.Recording
	err := r.GetDB().WithContext(ctx).
		Where("user_id = ? AND type = ? AND id > ?", userID, constant.RecordingTypeRecording, afterID).
		Order("id ASC").
		Find(&recordings).Error
	if err != nil {
		return nil, err
	}
	return recordings, nil
}

func (r *repo) LatestRecording(ctx context.Context, userID uint) (*entities.Recording, error) {
	rec := &entities.Recording{}
	err := r.GetDB().WithContext(ctx).
		Where("user_id = ? AND type = ?", userID, constant.RecordingTypeRecording).
		Order("date DESC, time DESC").
		First(rec).Error
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (r *repo) CreateRecording(ctx context.Context, rec *entities.Recording) error {
	return r.GetDB().WithContext(ctx).Create(rec).Error
}

func (r *repo) DeleteRecording(ctx context.Context, id uint) error {
	return r.GetDB().WithContext(ctx).Delete(&entities.Recording{}, "id = ?", id).Error
}

func (r *repo) ActivitySummary(ctx context.Context, since time.Time) ([]ActivitySummaryRow, error) {
	var rows []ActivitySummaryRow
	err := r.GetDB().WithContext(ctx).
		Model(&entities.ActivityLog{}).
		Select("activity_type, COUNT(*) AS count, COALESCE(SUM(duration), 0) AS total_duration").
		Where("rDateTime >= ?", since).
		Group("activity_type").
		Order("count DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repo) RecordingCountsPerRep(ctx context.Context) ([]RepRecordingCountRow, error) {
	var rows []RepRecordingCountRow
	err := r.GetDB().WithContext(ctx).
		Model(&entities.SalesRep{}).
		Select("salesrep.rep_id, salesrep.name, COUNT(web_images.id) AS recordings").
		Joins("LEFT JOIN web_images ON web_images.user_id = salesrep.id AND web_images.type = ?", constant.RecordingTypeRecording).
		Group("salesrep.id").
		Order("recordings DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repo) ListNotifications(ctx context.Context, unreadOnly bool) ([]*entities.Notification, error) {
	q := r.GetDB().WithContext(ctx).Order("created_at DESC")
	if unreadOnly {
		q = q.Where("read_flag = ?", false)
	}
	var notifications []*entities.Notification
	if err := q.Find(&notifications).Error; err != nil {
		return nil, err
	}
	return notifications, nil
}

func (r *repo) CreateNotification(ctx context.Context, n *entities.Notification) error {
	return r.GetDB().WithContext(ctx).Create(n).Error
}

func (r *repo) MarkNotificationRead(ctx context.Context, id uint) error {
	return r.GetDB().WithContext(ctx).
		Model(&entities.Notification{}).
		Where("id = ?", id).
		Update("read_flag", true).Error
}

func (r *repo) DeleteNotification(ctx context.Context, id uint) error {
	return r.GetDB().WithContext(ctx).Delete(&entities.Notification{}, "id = ?", id).Error
}

package db

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

const (
	CategoryBot      = "bot"
	CategoryChannel  = "channel"
	CategoryChat     = "chat"
	CategoryAFK      = "afk_request"
	CategoryAdminApp = "admin_application"
)

type Report struct {
	ID               int64     `db:"id"`
	ReporterID       int64     `db:"reporter_id"`
	ReporterUsername *string   `db:"reporter_username"`
	Category         string    `db:"category"`
	TargetIdentifier *string   `db:"target_identifier"`
	Reason           string    `db:"reason"`
	Attachments      *string   `db:"attachments"`
	CreatedAt        time.Time `db:"created_at"`
}

type ReportRepository struct {
	db *sqlx.DB
}

func NewReportRepository(db *sqlx.DB) *ReportRepository {
	return &ReportRepository{
		db: db,
	}
}

func (r *ReportRepository) Create(rep *Report) (int64, error) {
	var id int64

	err := r.db.Get(&id, `
	    INSERT INTO reports
		(reporter_id, reporter_username, category, target_identifier, reason, attachments, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`,
		rep.ReporterID,
		rep.ReporterUsername,
		rep.Category,
		rep.TargetIdentifier,
		rep.Reason,
		rep.Attachments,
		rep.CreatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("ReportRepository.Create: %w", err)
	}

	return id, nil
}

func (r *ReportRepository) List() ([]Report, error) {
	var reports []Report

	err := r.db.Select(&reports, `
	    SELECT * FROM reports
		ORDER BY id DESC
	`)

	if err != nil {
		return nil, fmt.Errorf("ReportRepository.List: %w", err)
	}

	return reports, nil
}

func (r *ReportRepository) ListByCategory(category string) ([]Report, error) {
	var reports []Report

	err := r.db.Select(&reports, `
	    SELECT * FROM reports
		WHERE category = $1
		ORDER BY id DESC
	`, category)

	if err != nil {
		return nil, fmt.Errorf("ReportRepository.ListByCategory: %w", err)
	}

	return reports, nil
}

func (r *ReportRepository) ClearAll() (bool, error) {
	res, err := r.db.Exec(`DELETE FROM reports`)
	if err != nil {
		return false, fmt.Errorf("ReportRepository.ClearAll: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("ReportRepository.ClearAll: %w", err)
	}

	return affected > 0, nil
}

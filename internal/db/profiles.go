package db

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
)

var ErrNotFound = errors.New("record not found")

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
)

type Profile struct {
	ID           int64      `db:"id"`
	Username     string     `db:"username"`
	Age          *int       `db:"age"`
	Name         *string    `db:"name"`
	Country      *string    `db:"country"`
	City         *string    `db:"city"`
	Timezone     *string    `db:"timezone"`
	TzOffset     *int       `db:"tz_offset"`
	Languages    *string    `db:"languages"`
	Note         *string    `db:"note"`
	AddedBy      string     `db:"added_by"`
	AddedByID    *int64     `db:"added_by_id"`
	Status       string     `db:"status"`
	ReviewedByID *int64     `db:"reviewed_by_id"`
	AddedAt      time.Time  `db:"added_at"`
}

type ProfileRepository struct {
	db *sqlx.DB
}

func NewProfileRepository(db *sqlx.DB) *ProfileRepository {
	return &ProfileRepository{
		db: db,
	}
}

func (r *ProfileRepository) Create(p *Profile) (int64, error) {
	var id int64

	err := r.db.Get(&id, `
	    INSERT INTO profiles
		(username, age, name, country, city, timezone, tz_offset, languages, note,
		added_by, added_by_id, status, added_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id
	`,
		p.Username,
		p.Age,
		p.Name,
		p.Country,
		p.City,
		p.Timezone,
		p.TzOffset,
		p.Languages,
		p.Note,
		p.AddedBy,
		p.AddedByID,
		p.Status,
		p.AddedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("ProfileRepository.Create: %w", err)
	}

	return id, nil
}

func (r *ProfileRepository) GetByID(id int64) (*Profile, error) {
	var p Profile

	err := r.db.Get(&p, `
	    SELECT * FROM profiles
		WHERE id = $1
	`, id)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("ProfileRepository.GetByID: %w", err)
	}

	return &p, nil
}

func (r *ProfileRepository) GetByUsername(username string) (*Profile, error) {
	var p Profile

	err := r.db.Get(&p, `
	    SELECT * FROM profiles
		WHERE LOWER(username) = LOWER($1)
	`, username)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("ProfileRepository.GetByUsername: %w", err)
	}

	return &p, nil
}

// List returns profiles ordered by username, case-insensitive. An empty
// status returns all profiles.
func (r *ProfileRepository) List(status string) ([]Profile, error) {
	var profiles []Profile
	var err error

	if status == "" {
		err = r.db.Select(&profiles, `
		    SELECT * FROM profiles
			ORDER BY LOWER(username)
		`)
	} else {
		err = r.db.Select(&profiles, `
		    SELECT * FROM profiles
			WHERE status = $1
			ORDER BY LOWER(username)
		`, status)
	}

	if err != nil {
		return nil, fmt.Errorf("ProfileRepository.List: %w", err)
	}

	return profiles, nil
}

var updatableColumns = map[string]bool{
	"age":       true,
	"name":      true,
	"country":   true,
	"city":      true,
	"timezone":  true,
	"tz_offset": true,
	"languages": true,
	"note":      true,
}

func (r *ProfileRepository) UpdateFields(username string, changes map[string]any) (bool, error) {
	sets := make([]string, 0, len(changes))
	values := make([]any, 0, len(changes)+1)

	for col, v := range changes {
		if !updatableColumns[col] {
			return false, fmt.Errorf("ProfileRepository.UpdateFields: column %q is not updatable", col)
		}
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(values)+1))
		values = append(values, v)
	}

	if len(sets) == 0 {
		return false, nil
	}

	values = append(values, username)
	query := fmt.Sprintf(
		"UPDATE profiles SET %s WHERE LOWER(username) = LOWER($%d)",
		strings.Join(sets, ", "), len(values),
	)

	res, err := r.db.Exec(query, values...)
	if err != nil {
		return false, fmt.Errorf("ProfileRepository.UpdateFields: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("ProfileRepository.UpdateFields: %w", err)
	}

	return affected > 0, nil
}

// SetReviewDecision records the one-time review decision. The guard on
// reviewed_by_id makes a second decision on the same id report zero rows.
func (r *ProfileRepository) SetReviewDecision(id int64, status string, reviewerID int64) (bool, error) {
	res, err := r.db.Exec(`
	    UPDATE profiles
		SET status = $1, reviewed_by_id = $2
		WHERE id = $3 AND reviewed_by_id IS NULL
	`, status, reviewerID, id)

	if err != nil {
		return false, fmt.Errorf("ProfileRepository.SetReviewDecision: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("ProfileRepository.SetReviewDecision: %w", err)
	}

	return affected > 0, nil
}

// DeleteIfUnreviewed removes a record only while no review decision was
// recorded. Used by the reject transition.
func (r *ProfileRepository) DeleteIfUnreviewed(id int64) (bool, error) {
	res, err := r.db.Exec(`
	    DELETE FROM profiles
		WHERE id = $1 AND reviewed_by_id IS NULL
	`, id)

	if err != nil {
		return false, fmt.Errorf("ProfileRepository.DeleteIfUnreviewed: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("ProfileRepository.DeleteIfUnreviewed: %w", err)
	}

	return affected > 0, nil
}

func (r *ProfileRepository) Delete(username string) (bool, error) {
	res, err := r.db.Exec(`
	    DELETE FROM profiles
		WHERE LOWER(username) = LOWER($1)
	`, username)

	if err != nil {
		return false, fmt.Errorf("ProfileRepository.Delete: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("ProfileRepository.Delete: %w", err)
	}

	return affected > 0, nil
}

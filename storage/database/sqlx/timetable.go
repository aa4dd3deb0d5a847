package sqlxrepos

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/edufacil/efs/core/timetable"
)

// timetableRepository keeps one selection snapshot per student ID in the
// user_timetable table, as a jsonb array.
type timetableRepository struct {
	db *sqlx.DB
}

var _ timetable.Persister = (*timetableRepository)(nil) // interface compliance check

func NewTimetableRepository(db *sqlx.DB) *timetableRepository {
	return &timetableRepository{db: db}
}

func (repo timetableRepository) SaveSelections(ctx context.Context, sid string, selections []timetable.SelectedSession) error {
	if selections == nil {
		selections = []timetable.SelectedSession{}
	}
	payload, err := json.Marshal(selections)
	if err != nil {
		return errors.Wrap(err, "encoding selections")
	}

	_, err = repo.db.ExecContext(ctx,
		`INSERT INTO user_timetable (sid, selections, updated_at) VALUES ($1, $2, $3)
		 ON CONFLICT (sid) DO UPDATE SET selections = EXCLUDED.selections, updated_at = EXCLUDED.updated_at`,
		sid, payload, time.Now().UTC(),
	)
	return errors.Wrap(err, "saving selections")
}

func (repo timetableRepository) LoadSelections(ctx context.Context, sid string) ([]timetable.SelectedSession, error) {
	var payload []byte
	err := repo.db.QueryRowContext(ctx,
		`SELECT selections FROM user_timetable WHERE sid = $1`, sid,
	).Scan(&payload)
	if err != nil {
		if err == sql.ErrNoRows {
			return []timetable.SelectedSession{}, nil
		}
		return nil, errors.Wrap(err, "loading selections")
	}

	var selections []timetable.SelectedSession
	if err = json.Unmarshal(payload, &selections); err != nil {
		return nil, errors.Wrap(err, "decoding selections")
	}
	return selections, nil
}

package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/edufacil/efs/core"
	"github.com/edufacil/efs/core/questionnaire"
)

type questionnaireRow struct {
	ID              string         `db:"id"`
	SID             string         `db:"sid"`
	Title           string         `db:"title"`
	Description     string         `db:"description"`
	Link            string         `db:"link"`
	TargetResponses int            `db:"target_responses"`
	Responses       int            `db:"responses"`
	FilledBy        pq.StringArray `db:"filled_by"`
	Status          string         `db:"status"`
	CreatedAt       time.Time      `db:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at"`
}

const questionnaireColumns = `id, sid, title, description, link, target_responses, responses,
	filled_by, status, created_at, updated_at`

type questionnaireRepository struct {
	db *sqlx.DB
}

var _ questionnaire.Repository = (*questionnaireRepository)(nil) // interface compliance check

func NewQuestionnaireRepository(db *sqlx.DB) *questionnaireRepository {
	return &questionnaireRepository{db: db}
}

func (repo questionnaireRepository) getExec(svcExec []core.DBExecutor) core.DBExecutor {
	if len(svcExec) > 0 {
		return svcExec[0]
	}
	return repo.db
}

func (repo questionnaireRepository) unpack(row questionnaireRow) questionnaire.Questionnaire {
	return questionnaire.Questionnaire{
		ID:              row.ID,
		SID:             row.SID,
		Title:           row.Title,
		Description:     row.Description,
		Link:            row.Link,
		TargetResponses: row.TargetResponses,
		Responses:       row.Responses,
		FilledBy:        row.FilledBy,
		Status:          row.Status,
		CreatedAt:       row.CreatedAt,
		UpdatedAt:       row.UpdatedAt,
	}
}

// scanOne supports reads inside a service transaction, where only the bare
// core.DBExecutor interface is available.
func (repo questionnaireRepository) scanOne(row *sql.Row) (questionnaire.Questionnaire, error) {
	var q questionnaire.Questionnaire
	err := row.Scan(
		&q.ID, &q.SID, &q.Title, &q.Description, &q.Link, &q.TargetResponses, &q.Responses,
		pq.Array(&q.FilledBy), &q.Status, &q.CreatedAt, &q.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return questionnaire.Questionnaire{}, questionnaire.ErrNotFound
		}
		return questionnaire.Questionnaire{}, errors.Wrap(err, "scanning questionnaire")
	}
	return q, nil
}

func (repo questionnaireRepository) CreateQuestionnaire(ctx context.Context, q questionnaire.Questionnaire, exec ...core.DBExecutor) (questionnaire.Questionnaire, error) {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	_, err := repo.getExec(exec).ExecContext(ctx,
		`INSERT INTO questionnaire (`+questionnaireColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		q.ID, q.SID, q.Title, q.Description, q.Link, q.TargetResponses, q.Responses,
		pq.Array(q.FilledBy), q.Status, q.CreatedAt.UTC(), q.UpdatedAt.UTC(),
	)
	if err != nil {
		return questionnaire.Questionnaire{}, errors.Wrap(err, "inserting questionnaire")
	}
	return q, nil
}

func (repo questionnaireRepository) QueryActiveQuestionnaires(ctx context.Context, exec ...core.DBExecutor) ([]questionnaire.Questionnaire, error) {
	var rows []questionnaireRow
	err := repo.db.SelectContext(ctx, &rows,
		`SELECT `+questionnaireColumns+` FROM questionnaire WHERE status = $1 ORDER BY created_at DESC`,
		questionnaire.StatusActive)
	if err != nil {
		return nil, errors.Wrap(err, "querying active questionnaires")
	}

	qs := make([]questionnaire.Questionnaire, 0, len(rows))
	for _, row := range rows {
		qs = append(qs, repo.unpack(row))
	}
	return qs, nil
}

func (repo questionnaireRepository) QueryQuestionnairesBySID(ctx context.Context, sid string, exec ...core.DBExecutor) ([]questionnaire.Questionnaire, error) {
	var rows []questionnaireRow
	err := repo.db.SelectContext(ctx, &rows,
		`SELECT `+questionnaireColumns+` FROM questionnaire WHERE sid = $1 ORDER BY created_at DESC`, sid)
	if err != nil {
		return nil, errors.Wrap(err, "querying questionnaires by sid")
	}

	qs := make([]questionnaire.Questionnaire, 0, len(rows))
	for _, row := range rows {
		qs = append(qs, repo.unpack(row))
	}
	return qs, nil
}

func (repo questionnaireRepository) GetQuestionnaire(ctx context.Context, id string, exec ...core.DBExecutor) (questionnaire.Questionnaire, error) {
	row := repo.getExec(exec).QueryRowContext(ctx,
		`SELECT `+questionnaireColumns+` FROM questionnaire WHERE id = $1`, id)
	return repo.scanOne(row)
}

func (repo questionnaireRepository) GetActiveBySID(ctx context.Context, sid string, exec ...core.DBExecutor) (questionnaire.Questionnaire, error) {
	row := repo.getExec(exec).QueryRowContext(ctx,
		`SELECT `+questionnaireColumns+` FROM questionnaire WHERE sid = $1 AND status = $2`,
		sid, questionnaire.StatusActive)
	return repo.scanOne(row)
}

func (repo questionnaireRepository) UpdateQuestionnaire(ctx context.Context, q questionnaire.Questionnaire, exec ...core.DBExecutor) (questionnaire.Questionnaire, error) {
	_, err := repo.getExec(exec).ExecContext(ctx,
		`UPDATE questionnaire SET responses = $2, filled_by = $3, status = $4, updated_at = $5 WHERE id = $1`,
		q.ID, q.Responses, pq.Array(q.FilledBy), q.Status, q.UpdatedAt.UTC(),
	)
	if err != nil {
		return questionnaire.Questionnaire{}, errors.Wrap(err, "updating questionnaire")
	}
	return q, nil
}

func (repo questionnaireRepository) CountQuestionnaires(ctx context.Context, exec ...core.DBExecutor) (int, error) {
	var cnt int
	err := repo.getExec(exec).QueryRowContext(ctx, `SELECT COUNT(*) FROM questionnaire`).Scan(&cnt)
	return cnt, errors.Wrap(err, "counting questionnaires")
}

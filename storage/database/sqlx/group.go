package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/edufacil/efs/core"
	"github.com/edufacil/efs/core/group"
)

type groupRequestRow struct {
	ID           string       `db:"id"`
	SID          string       `db:"sid"`
	Major        string       `db:"major"`
	Description  string       `db:"description"`
	ContactEmail string       `db:"contact_email"`
	ContactPhone string       `db:"contact_phone"`
	DesiredMates int          `db:"desired_mates"`
	GPA          null.Float64 `db:"gpa"`
	DSEScore     string       `db:"dse_score"`
	CreatedAt    time.Time    `db:"created_at"`
}

const groupRequestColumns = `id, sid, major, description, contact_email, contact_phone,
	desired_mates, gpa, dse_score, created_at`

type groupRepository struct {
	db *sqlx.DB
}

var _ group.Repository = (*groupRepository)(nil) // interface compliance check

func NewGroupRepository(db *sqlx.DB) *groupRepository {
	return &groupRepository{db: db}
}

func (repo groupRepository) getExec(svcExec []core.DBExecutor) core.DBExecutor {
	if len(svcExec) > 0 {
		return svcExec[0]
	}
	return repo.db
}

func (repo groupRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return group.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo groupRepository) CreateRequest(ctx context.Context, req group.Request, exec ...core.DBExecutor) (group.Request, error) {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	_, err := repo.getExec(exec).ExecContext(ctx,
		`INSERT INTO group_request (`+groupRequestColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		req.ID, req.SID, req.Major, req.Description, req.ContactEmail, req.ContactPhone,
		req.DesiredMates, req.GPA, req.DSEScore, req.CreatedAt.UTC(),
	)
	if err != nil {
		return group.Request{}, errors.Wrap(err, "inserting group request")
	}
	return req, nil
}

func (repo groupRepository) QueryActiveRequests(ctx context.Context, exec ...core.DBExecutor) ([]group.Request, error) {
	var rows []groupRequestRow
	err := repo.db.SelectContext(ctx, &rows,
		`SELECT `+groupRequestColumns+` FROM group_request ORDER BY created_at DESC`)
	if err != nil {
		return nil, errors.Wrap(err, "querying group requests")
	}

	reqs := make([]group.Request, 0, len(rows))
	for _, row := range rows {
		reqs = append(reqs, group.Request(row))
	}
	return reqs, nil
}

func (repo groupRepository) GetRequest(ctx context.Context, id string, exec ...core.DBExecutor) (group.Request, error) {
	var row groupRequestRow
	err := repo.db.GetContext(ctx, &row,
		`SELECT `+groupRequestColumns+` FROM group_request WHERE id = $1`, id)
	if err != nil {
		return group.Request{}, repo.trapNoRowsErr(err, "finding group request")
	}
	return group.Request(row), nil
}

func (repo groupRepository) GetRequestBySID(ctx context.Context, sid string, exec ...core.DBExecutor) (group.Request, error) {
	var row groupRequestRow
	err := repo.db.GetContext(ctx, &row,
		`SELECT `+groupRequestColumns+` FROM group_request WHERE sid = $1`, sid)
	if err != nil {
		return group.Request{}, repo.trapNoRowsErr(err, "finding group request by sid")
	}
	return group.Request(row), nil
}

func (repo groupRepository) DeleteRequest(ctx context.Context, id string, exec ...core.DBExecutor) error {
	_, err := repo.getExec(exec).ExecContext(ctx, `DELETE FROM group_request WHERE id = $1`, id)
	return errors.Wrap(err, "deleting group request")
}

func (repo groupRepository) CountRequests(ctx context.Context, exec ...core.DBExecutor) (int, error) {
	var cnt int
	err := repo.getExec(exec).QueryRowContext(ctx, `SELECT COUNT(*) FROM group_request`).Scan(&cnt)
	return cnt, errors.Wrap(err, "counting group requests")
}

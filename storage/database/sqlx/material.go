package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/edufacil/efs/core"
	"github.com/edufacil/efs/core/material"
)

type materialRow struct {
	ID          string    `db:"id"`
	CourseCode  string    `db:"course_code"`
	Name        string    `db:"name"`
	Description string    `db:"description"`
	FileName    string    `db:"file_name"`
	FileKey     string    `db:"file_key"`
	Size        int64     `db:"size"`
	ContentType string    `db:"content_type"`
	UploadedBy  string    `db:"uploaded_by"`
	Downloads   int       `db:"downloads"`
	CreatedAt   time.Time `db:"created_at"`
}

const materialColumns = `id, course_code, name, description, file_name, file_key, size,
	content_type, uploaded_by, downloads, created_at`

type materialRepository struct {
	db *sqlx.DB
}

var _ material.Repository = (*materialRepository)(nil) // interface compliance check

func NewMaterialRepository(db *sqlx.DB) *materialRepository {
	return &materialRepository{db: db}
}

func (repo materialRepository) getExec(svcExec []core.DBExecutor) core.DBExecutor {
	if len(svcExec) > 0 {
		return svcExec[0]
	}
	return repo.db
}

func (repo materialRepository) CreateMaterial(ctx context.Context, mat material.Material, exec ...core.DBExecutor) (material.Material, error) {
	if mat.ID == "" {
		mat.ID = uuid.NewString()
	}
	_, err := repo.getExec(exec).ExecContext(ctx,
		`INSERT INTO material (`+materialColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		mat.ID, mat.CourseCode, mat.Name, mat.Description, mat.FileName, mat.FileKey,
		mat.Size, mat.ContentType, mat.UploadedBy, mat.Downloads, mat.CreatedAt.UTC(),
	)
	if err != nil {
		return material.Material{}, errors.Wrap(err, "inserting material")
	}
	return mat, nil
}

func (repo materialRepository) QueryMaterialsByCourse(ctx context.Context, code string, exec ...core.DBExecutor) ([]material.Material, error) {
	var rows []materialRow
	err := repo.db.SelectContext(ctx, &rows,
		`SELECT `+materialColumns+` FROM material WHERE course_code = $1 ORDER BY created_at DESC`, code)
	if err != nil {
		return nil, errors.Wrap(err, "querying materials")
	}

	mats := make([]material.Material, 0, len(rows))
	for _, row := range rows {
		mats = append(mats, material.Material(row))
	}
	return mats, nil
}

func (repo materialRepository) GetMaterial(ctx context.Context, id string, exec ...core.DBExecutor) (material.Material, error) {
	var row materialRow
	err := repo.db.GetContext(ctx, &row,
		`SELECT `+materialColumns+` FROM material WHERE id = $1`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return material.Material{}, material.ErrNotFound
		}
		return material.Material{}, errors.Wrap(err, "finding material")
	}
	return material.Material(row), nil
}

func (repo materialRepository) IncrementDownloads(ctx context.Context, id string, exec ...core.DBExecutor) error {
	_, err := repo.getExec(exec).ExecContext(ctx,
		`UPDATE material SET downloads = downloads + 1 WHERE id = $1`, id)
	return errors.Wrap(err, "incrementing downloads")
}

func (repo materialRepository) DeleteMaterial(ctx context.Context, id string, exec ...core.DBExecutor) error {
	_, err := repo.getExec(exec).ExecContext(ctx, `DELETE FROM material WHERE id = $1`, id)
	return errors.Wrap(err, "deleting material")
}

func (repo materialRepository) CountMaterials(ctx context.Context, exec ...core.DBExecutor) (int, error) {
	var cnt int
	err := repo.getExec(exec).QueryRowContext(ctx, `SELECT COUNT(*) FROM material`).Scan(&cnt)
	return cnt, errors.Wrap(err, "counting materials")
}

func (repo materialRepository) CountMaterialsBySID(ctx context.Context, sid string, exec ...core.DBExecutor) (int, error) {
	var cnt int
	err := repo.getExec(exec).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM material WHERE uploaded_by = $1`, sid).Scan(&cnt)
	return cnt, errors.Wrap(err, "counting materials by sid")
}

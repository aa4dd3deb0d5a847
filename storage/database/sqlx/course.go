package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/edufacil/efs/core"
	"github.com/edufacil/efs/core/course"
	"github.com/edufacil/efs/core/timetable"
)

type courseRow struct {
	Code        string    `db:"code"`
	Title       string    `db:"title"`
	Description string    `db:"description"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

type pendingCourseRow struct {
	ID          string    `db:"id"`
	Code        string    `db:"code"`
	Title       string    `db:"title"`
	Description string    `db:"description"`
	RequestedBy string    `db:"requested_by"`
	CreatedAt   time.Time `db:"created_at"`
}

type courseRepository struct {
	db *sqlx.DB
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(db *sqlx.DB) *courseRepository {
	return &courseRepository{db: db}
}

func (repo courseRepository) getExec(svcExec []core.DBExecutor) core.DBExecutor {
	if len(svcExec) > 0 {
		return svcExec[0]
	}
	return repo.db
}

func (repo courseRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return course.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo courseRepository) CheckCodeUniqueness(ctx context.Context, code string, exec ...core.DBExecutor) error {
	exe := repo.getExec(exec)

	var exists bool
	err := exe.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM course WHERE code = $1)`, code).Scan(&exists)
	if err != nil {
		return errors.Wrap(err, "checking course code")
	}
	if exists {
		return course.ErrCodeExists
	}

	err = exe.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM pending_course WHERE code = $1)`, code).Scan(&exists)
	if err != nil {
		return errors.Wrap(err, "checking pending course code")
	}
	if exists {
		return course.ErrRequestExists
	}
	return nil
}

func (repo courseRepository) CreateCourse(ctx context.Context, crs course.Course, exec ...core.DBExecutor) (course.Course, error) {
	_, err := repo.getExec(exec).ExecContext(ctx,
		`INSERT INTO course (code, title, description, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)`,
		crs.Code, crs.Title, crs.Description, crs.CreatedAt.UTC(), crs.UpdatedAt.UTC(),
	)
	if err != nil {
		return course.Course{}, errors.Wrap(err, "inserting course")
	}
	return crs, nil
}

func (repo courseRepository) QueryAllCourses(ctx context.Context, exec ...core.DBExecutor) ([]course.Course, error) {
	var rows []courseRow
	err := repo.db.SelectContext(ctx, &rows,
		`SELECT code, title, description, created_at, updated_at FROM course ORDER BY code`)
	if err != nil {
		return nil, errors.Wrap(err, "querying courses")
	}

	courses := make([]course.Course, 0, len(rows))
	for _, row := range rows {
		courses = append(courses, course.Course(row))
	}
	return courses, nil
}

func (repo courseRepository) GetCourse(ctx context.Context, code string, exec ...core.DBExecutor) (course.Course, error) {
	var row courseRow
	err := repo.db.GetContext(ctx, &row,
		`SELECT code, title, description, created_at, updated_at FROM course WHERE code = $1`, code)
	if err != nil {
		return course.Course{}, repo.trapNoRowsErr(err, "finding course")
	}
	return course.Course(row), nil
}

func (repo courseRepository) UpdateCourse(ctx context.Context, crs course.Course, exec ...core.DBExecutor) (course.Course, error) {
	_, err := repo.getExec(exec).ExecContext(ctx,
		`UPDATE course SET title = $2, description = $3, updated_at = $4 WHERE code = $1`,
		crs.Code, crs.Title, crs.Description, crs.UpdatedAt.UTC(),
	)
	if err != nil {
		return course.Course{}, errors.Wrap(err, "updating course")
	}
	return crs, nil
}

func (repo courseRepository) CountCourses(ctx context.Context, exec ...core.DBExecutor) (int, error) {
	var cnt int
	err := repo.getExec(exec).QueryRowContext(ctx, `SELECT COUNT(*) FROM course`).Scan(&cnt)
	return cnt, errors.Wrap(err, "counting courses")
}

func (repo courseRepository) QueryAllSessions(ctx context.Context, exec ...core.DBExecutor) ([]timetable.Session, error) {
	var sessions []timetable.Session
	err := repo.db.SelectContext(ctx, &sessions,
		`SELECT id, course_code, class_no, weekday, start_time, end_time, room
		 FROM course_session ORDER BY course_code, class_no, weekday, start_time`)
	return sessions, errors.Wrap(err, "querying sessions")
}

func (repo courseRepository) QueryCourseSessions(ctx context.Context, code string, exec ...core.DBExecutor) ([]timetable.Session, error) {
	var sessions []timetable.Session
	err := repo.db.SelectContext(ctx, &sessions,
		`SELECT id, course_code, class_no, weekday, start_time, end_time, room
		 FROM course_session WHERE course_code = $1 ORDER BY class_no, weekday, start_time`, code)
	return sessions, errors.Wrap(err, "querying course sessions")
}

func (repo courseRepository) ReplaceSessions(ctx context.Context, code string, sessions []timetable.Session, exec ...core.DBExecutor) error {
	exe := repo.getExec(exec)

	if _, err := exe.ExecContext(ctx, `DELETE FROM course_session WHERE course_code = $1`, code); err != nil {
		return errors.Wrap(err, "clearing course sessions")
	}
	for _, s := range sessions {
		if s.ID == "" {
			s.ID = uuid.NewString()
		}
		_, err := exe.ExecContext(ctx,
			`INSERT INTO course_session (id, course_code, class_no, weekday, start_time, end_time, room)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			s.ID, code, s.ClassNo, s.Weekday, s.StartTime, s.EndTime, s.Room,
		)
		if err != nil {
			return errors.Wrap(err, "inserting course session")
		}
	}
	return nil
}

func (repo courseRepository) CreatePendingCourse(ctx context.Context, pc course.PendingCourse, exec ...core.DBExecutor) (course.PendingCourse, error) {
	if pc.ID == "" {
		pc.ID = uuid.NewString()
	}
	_, err := repo.getExec(exec).ExecContext(ctx,
		`INSERT INTO pending_course (id, code, title, description, requested_by, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		pc.ID, pc.Code, pc.Title, pc.Description, pc.RequestedBy, pc.CreatedAt.UTC(),
	)
	if err != nil {
		return course.PendingCourse{}, errors.Wrap(err, "inserting pending course")
	}
	return pc, nil
}

func (repo courseRepository) QueryPendingCourses(ctx context.Context, exec ...core.DBExecutor) ([]course.PendingCourse, error) {
	var rows []pendingCourseRow
	err := repo.db.SelectContext(ctx, &rows,
		`SELECT id, code, title, description, requested_by, created_at FROM pending_course ORDER BY created_at`)
	if err != nil {
		return nil, errors.Wrap(err, "querying pending courses")
	}

	pcs := make([]course.PendingCourse, 0, len(rows))
	for _, row := range rows {
		pcs = append(pcs, course.PendingCourse(row))
	}
	return pcs, nil
}

func (repo courseRepository) GetPendingCourse(ctx context.Context, id string, exec ...core.DBExecutor) (course.PendingCourse, error) {
	var row pendingCourseRow
	err := repo.db.GetContext(ctx, &row,
		`SELECT id, code, title, description, requested_by, created_at FROM pending_course WHERE id = $1`, id)
	if err != nil {
		return course.PendingCourse{}, repo.trapNoRowsErr(err, "finding pending course")
	}
	return course.PendingCourse(row), nil
}

func (repo courseRepository) GetPendingCourseByCode(ctx context.Context, code string, exec ...core.DBExecutor) (course.PendingCourse, error) {
	var row pendingCourseRow
	err := repo.db.GetContext(ctx, &row,
		`SELECT id, code, title, description, requested_by, created_at FROM pending_course WHERE code = $1`, code)
	if err != nil {
		return course.PendingCourse{}, repo.trapNoRowsErr(err, "finding pending course by code")
	}
	return course.PendingCourse(row), nil
}

func (repo courseRepository) DeletePendingCourse(ctx context.Context, id string, exec ...core.DBExecutor) error {
	_, err := repo.getExec(exec).ExecContext(ctx, `DELETE FROM pending_course WHERE id = $1`, id)
	return errors.Wrap(err, "deleting pending course")
}

func (repo courseRepository) CountPendingCourses(ctx context.Context, exec ...core.DBExecutor) (int, error) {
	var cnt int
	err := repo.getExec(exec).QueryRowContext(ctx, `SELECT COUNT(*) FROM pending_course`).Scan(&cnt)
	return cnt, errors.Wrap(err, "counting pending courses")
}

package inmemdb

import (
	"context"
	"database/sql"
	"sync"

	"github.com/edufacil/efs/core"
	"github.com/edufacil/efs/core/course"
	"github.com/edufacil/efs/core/group"
	"github.com/edufacil/efs/core/material"
	"github.com/edufacil/efs/core/questionnaire"
	"github.com/edufacil/efs/core/timetable"
	"github.com/edufacil/efs/core/user"
)

// DB is the in-memory stand-in used by tests; every table is a map guarded
// by one mutex.
type DB struct {
	mutex sync.RWMutex

	users           map[string]*user.User           // by SID
	pendingAccounts map[string]*user.PendingAccount // by SID
	courses         map[string]*course.Course       // by code
	sessions        map[string][]timetable.Session  // by course code
	pendingCourses  map[string]*course.PendingCourse
	timetables      map[string][]timetable.SelectedSession // by SID
	groupRequests   map[string]*group.Request
	questionnaires  map[string]*questionnaire.Questionnaire
	materials       map[string]*material.Material
}

func Open() (*DB, error) {
	db := &DB{
		users:           make(map[string]*user.User),
		pendingAccounts: make(map[string]*user.PendingAccount),
		courses:         make(map[string]*course.Course),
		sessions:        make(map[string][]timetable.Session),
		pendingCourses:  make(map[string]*course.PendingCourse),
		timetables:      make(map[string][]timetable.SelectedSession),
		groupRequests:   make(map[string]*group.Request),
		questionnaires:  make(map[string]*questionnaire.Questionnaire),
		materials:       make(map[string]*material.Material),
	}
	return db, nil
}

// noopTx keeps transactional services happy; the in-memory tables have no
// real isolation to offer.
type noopTx struct{ db *DB }

var (
	_ core.DB           = (*DB)(nil)
	_ core.DBTransactor = (*noopTx)(nil)
)

func (db *DB) Exec(query string, args ...interface{}) (sql.Result, error) { return nil, nil }
func (db *DB) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return nil, nil
}
func (db *DB) Query(query string, args ...interface{}) (*sql.Rows, error) { return nil, nil }
func (db *DB) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return nil, nil
}
func (db *DB) QueryRow(query string, args ...interface{}) *sql.Row { return nil }
func (db *DB) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	return nil
}

func (db *DB) Begin() (core.DBTransactor, error) { return &noopTx{db: db}, nil }
func (db *DB) BeginTx(ctx context.Context, opts *sql.TxOptions) (core.DBTransactor, error) {
	return &noopTx{db: db}, nil
}

func (tx *noopTx) Exec(query string, args ...interface{}) (sql.Result, error) { return nil, nil }
func (tx *noopTx) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return nil, nil
}
func (tx *noopTx) Query(query string, args ...interface{}) (*sql.Rows, error) { return nil, nil }
func (tx *noopTx) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return nil, nil
}
func (tx *noopTx) QueryRow(query string, args ...interface{}) *sql.Row { return nil }
func (tx *noopTx) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	return nil
}
func (tx *noopTx) Commit() error   { return nil }
func (tx *noopTx) Rollback() error { return nil }

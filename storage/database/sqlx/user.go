package sqlxrepos

import (
	"context"
	"database/sql"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/edufacil/efs/core"
	"github.com/edufacil/efs/core/user"
)

type userRow struct {
	ID           string         `db:"id"`
	SID          string         `db:"sid"`
	Email        string         `db:"email"`
	Roles        pq.StringArray `db:"roles"`
	IsActive     null.Bool      `db:"is_active"`
	Credits      int            `db:"credits"`
	Phone        string         `db:"phone"`
	Major        string         `db:"major"`
	YearOfStudy  int            `db:"year_of_study"`
	GPA          null.Float64   `db:"gpa"`
	DSEScore     string         `db:"dse_score"`
	Skills       pq.StringArray `db:"skills"`
	AboutMe      string         `db:"about_me"`
	PhotoKey     string         `db:"photo_key"`
	PasswordHash []byte         `db:"password_hash"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
	LastLogin    null.Time      `db:"last_login"`
}

type pendingAccountRow struct {
	ID           string    `db:"id"`
	SID          string    `db:"sid"`
	Email        string    `db:"email"`
	PasswordHash []byte    `db:"password_hash"`
	PhotoKey     string    `db:"photo_key"`
	CreatedAt    time.Time `db:"created_at"`
}

const userColumns = `id, sid, email, roles, is_active, credits, phone, major, year_of_study,
	gpa, dse_score, skills, about_me, photo_key, password_hash, created_at, updated_at, last_login`

type userRepository struct {
	db *sqlx.DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *sqlx.DB) *userRepository {
	return &userRepository{db: db}
}

func (repo userRepository) getExec(svcExec []core.DBExecutor) core.DBExecutor {
	if len(svcExec) > 0 {
		return svcExec[0]
	}
	return repo.db
}

func (repo userRepository) pack(usr user.User) userRow {
	return userRow{
		ID:           usr.ID,
		SID:          usr.SID,
		Email:        usr.Email,
		Roles:        usr.Roles,
		IsActive:     null.BoolFromPtr(usr.IsActive),
		Credits:      usr.Credits,
		Phone:        usr.Phone,
		Major:        usr.Major,
		YearOfStudy:  usr.YearOfStudy,
		GPA:          usr.GPA,
		DSEScore:     usr.DSEScore,
		Skills:       usr.Skills,
		AboutMe:      usr.AboutMe,
		PhotoKey:     usr.PhotoKey,
		PasswordHash: usr.PasswordHash,
		CreatedAt:    usr.CreatedAt.UTC(),
		UpdatedAt:    usr.UpdatedAt.UTC(),
		LastLogin:    null.NewTime(usr.LastLogin.UTC(), !usr.LastLogin.IsZero()),
	}
}

func (repo userRepository) unpack(row userRow) user.User {
	return user.User{
		ID:           row.ID,
		SID:          row.SID,
		Email:        row.Email,
		Roles:        row.Roles,
		IsActive:     row.IsActive.Ptr(),
		Credits:      row.Credits,
		Phone:        row.Phone,
		Major:        row.Major,
		YearOfStudy:  row.YearOfStudy,
		GPA:          row.GPA,
		DSEScore:     row.DSEScore,
		Skills:       row.Skills,
		AboutMe:      row.AboutMe,
		PhotoKey:     row.PhotoKey,
		PasswordHash: row.PasswordHash,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
		LastLogin:    row.LastLogin.Time,
	}
}

func (repo userRepository) unpackSlice(rows []userRow) []user.User {
	users := make([]user.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, repo.unpack(row))
	}
	return users
}

// trapNoRowsErr maps psql "no rows" err to user.ErrNotFound
func (repo userRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return user.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo userRepository) CheckUniqueness(ctx context.Context, sid, email string, exec ...core.DBExecutor) error {
	exe := repo.getExec(exec)

	var exists bool
	err := exe.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM "user" WHERE email = $1)`, email,
	).Scan(&exists)
	if err != nil {
		return errors.Wrap(err, "checking email uniqueness")
	}
	if exists {
		return user.ErrEmailExists
	}

	err = exe.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM "user" WHERE sid = $1)`, sid,
	).Scan(&exists)
	if err != nil {
		return errors.Wrap(err, "checking sid uniqueness")
	}
	if exists {
		return user.ErrSIDExists
	}

	err = exe.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM pending_account WHERE sid = $1 OR email = $2)`, sid, email,
	).Scan(&exists)
	if err != nil {
		return errors.Wrap(err, "checking pending uniqueness")
	}
	if exists {
		return user.ErrPendingExists
	}
	return nil
}

func (repo userRepository) CreateUser(ctx context.Context, usr user.User, exec ...core.DBExecutor) (user.User, error) {
	if usr.ID == "" {
		usr.ID = uuid.NewString()
	}
	row := repo.pack(usr)
	_, err := repo.getExec(exec).ExecContext(ctx,
		`INSERT INTO "user" (`+userColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`,
		row.ID, row.SID, row.Email, row.Roles, row.IsActive, row.Credits, row.Phone, row.Major,
		row.YearOfStudy, row.GPA, row.DSEScore, row.Skills, row.AboutMe, row.PhotoKey,
		row.PasswordHash, row.CreatedAt, row.UpdatedAt, row.LastLogin,
	)
	if err != nil {
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return repo.unpack(row), nil
}

func (repo userRepository) QueryAllUsers(ctx context.Context, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]user.User, error) {
	query := `SELECT ` + userColumns + ` FROM "user"` + orderByClause(ordering)

	var rows []userRow
	if err := repo.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, errors.Wrap(err, "querying users")
	}
	return repo.unpackSlice(rows), nil
}

func (repo userRepository) GetUser(ctx context.Context, filter user.GetFilter, exec ...core.DBExecutor) (user.User, error) {
	query := `SELECT ` + userColumns + ` FROM "user" WHERE `
	var arg, arg2 interface{}

	switch {
	case filter.ID != "":
		if _, err := uuid.Parse(filter.ID); err != nil {
			return user.User{}, user.ErrNotFound
		}
		query += `id = $1`
		arg = filter.ID
	case filter.SID != "":
		query += `sid = $1`
		arg = filter.SID
	case filter.Email != "":
		query += `email = $1`
		arg = filter.Email
	case filter.SIDOrEmail != "":
		query += `sid = $1 OR email = $2`
		arg, arg2 = filter.SIDOrEmail, filter.SIDOrEmail
	default:
		return user.User{}, user.ErrNotFound
	}

	var row userRow
	var err error
	if arg2 != nil {
		err = repo.db.GetContext(ctx, &row, query, arg, arg2)
	} else {
		err = repo.db.GetContext(ctx, &row, query, arg)
	}
	if err != nil {
		return user.User{}, repo.trapNoRowsErr(err, "finding user")
	}
	return repo.unpack(row), nil
}

func (repo userRepository) FilterUsers(ctx context.Context, filter user.QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]user.User, error) {
	var (
		conds []string
		args  []interface{}
	)
	next := func() string { return "$" + strconv.Itoa(len(args)) }

	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		p := next()
		conds = append(conds, "(sid ILIKE "+p+" OR email ILIKE "+p+" OR major ILIKE "+p+")")
	}
	if len(filter.Roles) > 0 {
		roleConds := make([]string, 0, len(filter.Roles))
		for _, role := range filter.Roles {
			args = append(args, role+"%")
			roleConds = append(roleConds, `EXISTS (SELECT 1 FROM UNNEST(roles) r WHERE r ILIKE `+next()+`)`)
		}
		conds = append(conds, "("+strings.Join(roleConds, " OR ")+")")
	}
	if filter.IsActive != nil {
		args = append(args, *filter.IsActive)
		conds = append(conds, "is_active = "+next())
	}
	if !filter.CreatedFrom.IsZero() {
		args = append(args, filter.CreatedFrom.UTC())
		conds = append(conds, "created_at >= "+next())
	}
	if !filter.CreatedTo.IsZero() {
		args = append(args, filter.CreatedTo.UTC())
		conds = append(conds, "created_at <= "+next())
	}

	query := `SELECT ` + userColumns + ` FROM "user"`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += orderByClause(ordering)

	var rows []userRow
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "filtering users")
	}
	return repo.unpackSlice(rows), nil
}

func (repo userRepository) UpdateUser(ctx context.Context, usr user.User, isActive *bool, exec ...core.DBExecutor) (user.User, error) {
	if isActive != nil {
		usr.IsActive = isActive
	}
	row := repo.pack(usr)
	// credits only move through AdjustCredits
	_, err := repo.getExec(exec).ExecContext(ctx,
		`UPDATE "user" SET
			email = $2, roles = $3, is_active = $4, phone = $5, major = $6,
			year_of_study = $7, gpa = $8, dse_score = $9, skills = $10, about_me = $11,
			photo_key = $12, password_hash = $13, updated_at = $14, last_login = $15
		 WHERE id = $1`,
		row.ID, row.Email, row.Roles, row.IsActive, row.Phone, row.Major,
		row.YearOfStudy, row.GPA, row.DSEScore, row.Skills, row.AboutMe, row.PhotoKey,
		row.PasswordHash, row.UpdatedAt, row.LastLogin,
	)
	if err != nil {
		return user.User{}, errors.Wrap(err, "updating user")
	}
	return repo.unpack(row), nil
}

func (repo userRepository) AdjustCredits(ctx context.Context, sid string, delta int, exec ...core.DBExecutor) (int, error) {
	var balance int
	err := repo.getExec(exec).QueryRowContext(ctx,
		`UPDATE "user" SET credits = credits + $2, updated_at = $3 WHERE sid = $1 RETURNING credits`,
		sid, delta, time.Now().UTC(),
	).Scan(&balance)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, user.ErrNotFound
		}
		// the credits check constraint rejects negative balances
		if pqErr, ok := errors.Cause(err).(*pq.Error); ok && pqErr.Code.Name() == "check_violation" {
			return 0, user.ErrInsufficientCredits
		}
		return 0, errors.Wrap(err, "adjusting credits")
	}
	return balance, nil
}

func (repo userRepository) DeleteUsersBySID(ctx context.Context, sids ...string) error {
	_, err := repo.db.ExecContext(ctx, `DELETE FROM "user" WHERE sid = ANY($1)`, pq.Array(sids))
	return errors.Wrap(err, "deleting users")
}

func (repo userRepository) CountUsers(ctx context.Context, exec ...core.DBExecutor) (int, error) {
	var cnt int
	err := repo.getExec(exec).QueryRowContext(ctx, `SELECT COUNT(*) FROM "user"`).Scan(&cnt)
	return cnt, errors.Wrap(err, "counting users")
}

func (repo userRepository) CreatePendingAccount(ctx context.Context, acc user.PendingAccount, exec ...core.DBExecutor) (user.PendingAccount, error) {
	if acc.ID == "" {
		acc.ID = uuid.NewString()
	}
	_, err := repo.getExec(exec).ExecContext(ctx,
		`INSERT INTO pending_account (id, sid, email, password_hash, photo_key, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		acc.ID, acc.SID, acc.Email, acc.PasswordHash, acc.PhotoKey, acc.CreatedAt.UTC(),
	)
	if err != nil {
		return user.PendingAccount{}, errors.Wrap(err, "inserting pending account")
	}
	return acc, nil
}

func (repo userRepository) QueryPendingAccounts(ctx context.Context, exec ...core.DBExecutor) ([]user.PendingAccount, error) {
	var rows []pendingAccountRow
	err := repo.db.SelectContext(ctx, &rows,
		`SELECT id, sid, email, password_hash, photo_key, created_at FROM pending_account ORDER BY created_at`)
	if err != nil {
		return nil, errors.Wrap(err, "querying pending accounts")
	}

	accs := make([]user.PendingAccount, 0, len(rows))
	for _, row := range rows {
		accs = append(accs, user.PendingAccount(row))
	}
	return accs, nil
}

func (repo userRepository) GetPendingAccount(ctx context.Context, sid string, exec ...core.DBExecutor) (user.PendingAccount, error) {
	var row pendingAccountRow
	err := repo.db.GetContext(ctx, &row,
		`SELECT id, sid, email, password_hash, photo_key, created_at FROM pending_account WHERE sid = $1`, sid)
	if err != nil {
		if err == sql.ErrNoRows {
			return user.PendingAccount{}, user.ErrNotPending
		}
		return user.PendingAccount{}, errors.Wrap(err, "finding pending account")
	}
	return user.PendingAccount(row), nil
}

func (repo userRepository) DeletePendingAccount(ctx context.Context, sid string, exec ...core.DBExecutor) error {
	_, err := repo.getExec(exec).ExecContext(ctx, `DELETE FROM pending_account WHERE sid = $1`, sid)
	return errors.Wrap(err, "deleting pending account")
}

func (repo userRepository) CountPendingAccounts(ctx context.Context, exec ...core.DBExecutor) (int, error) {
	var cnt int
	err := repo.getExec(exec).QueryRowContext(ctx, `SELECT COUNT(*) FROM pending_account`).Scan(&cnt)
	return cnt, errors.Wrap(err, "counting pending accounts")
}

package inmemdb

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/edufacil/efs/core"
	"github.com/edufacil/efs/core/user"
)

type userRepository struct {
	db *DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *DB) *userRepository {
	return &userRepository{db: db}
}

func (repo *userRepository) query() []user.User {
	users := make([]user.User, 0, len(repo.db.users))
	for _, u := range repo.db.users {
		users = append(users, *u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.After(users[j].CreatedAt) })
	return users
}

func (repo *userRepository) CheckUniqueness(ctx context.Context, sid, email string, exec ...core.DBExecutor) error {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, usr := range repo.db.users {
		if usr.Email == email {
			return user.ErrEmailExists
		}
		if usr.SID == sid {
			return user.ErrSIDExists
		}
	}
	for _, acc := range repo.db.pendingAccounts {
		if acc.SID == sid || acc.Email == email {
			return user.ErrPendingExists
		}
	}
	return nil
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User, exec ...core.DBExecutor) (user.User, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if usr.ID == "" {
		usr.ID = uuid.NewString()
	}
	repo.db.users[usr.SID] = &usr
	return usr, nil
}

func (repo *userRepository) QueryAllUsers(ctx context.Context, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]user.User, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return repo.query(), nil
}

func (repo *userRepository) GetUser(ctx context.Context, filter user.GetFilter, exec ...core.DBExecutor) (user.User, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, usr := range repo.db.users {
		switch {
		case filter.ID != "" && usr.ID == filter.ID:
			return *usr, nil
		case filter.SID != "" && usr.SID == filter.SID:
			return *usr, nil
		case filter.Email != "" && usr.Email == filter.Email:
			return *usr, nil
		case filter.SIDOrEmail != "" && (usr.SID == filter.SIDOrEmail || usr.Email == filter.SIDOrEmail):
			return *usr, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) FilterUsers(ctx context.Context, filter user.QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]user.User, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	match := func(usr user.User) bool {
		if filter.Search != "" {
			s := strings.ToLower(filter.Search)
			if !strings.Contains(strings.ToLower(usr.SID), s) &&
				!strings.Contains(strings.ToLower(usr.Email), s) &&
				!strings.Contains(strings.ToLower(usr.Major), s) {
				return false
			}
		}
		if len(filter.Roles) > 0 {
			var ok bool
			for _, role := range filter.Roles {
				if usr.RoleStartsWith(role) {
					ok = true
					break
				}
			}
			if !ok {
				return false
			}
		}
		if filter.IsActive != nil {
			if usr.IsActive == nil || *usr.IsActive != *filter.IsActive {
				return false
			}
		}
		if !filter.CreatedFrom.IsZero() && usr.CreatedAt.Before(filter.CreatedFrom) {
			return false
		}
		if !filter.CreatedTo.IsZero() && usr.CreatedAt.After(filter.CreatedTo) {
			return false
		}
		return true
	}

	var users []user.User
	for _, usr := range repo.query() {
		if match(usr) {
			users = append(users, usr)
		}
	}
	return users, nil
}

func (repo *userRepository) UpdateUser(ctx context.Context, usr user.User, isActive *bool, exec ...core.DBExecutor) (user.User, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	orig, ok := repo.db.users[usr.SID]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	if isActive != nil {
		usr.IsActive = isActive
	}
	usr.Credits = orig.Credits // credits only move through AdjustCredits
	repo.db.users[usr.SID] = &usr
	return usr, nil
}

func (repo *userRepository) AdjustCredits(ctx context.Context, sid string, delta int, exec ...core.DBExecutor) (int, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	usr, ok := repo.db.users[sid]
	if !ok {
		return 0, user.ErrNotFound
	}
	if usr.Credits+delta < 0 {
		return 0, user.ErrInsufficientCredits
	}
	usr.Credits += delta
	return usr.Credits, nil
}

func (repo *userRepository) DeleteUsersBySID(ctx context.Context, sids ...string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	for _, sid := range sids {
		delete(repo.db.users, sid)
	}
	return nil
}

func (repo *userRepository) CountUsers(ctx context.Context, exec ...core.DBExecutor) (int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return len(repo.db.users), nil
}

func (repo *userRepository) CreatePendingAccount(ctx context.Context, acc user.PendingAccount, exec ...core.DBExecutor) (user.PendingAccount, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if acc.ID == "" {
		acc.ID = uuid.NewString()
	}
	repo.db.pendingAccounts[acc.SID] = &acc
	return acc, nil
}

func (repo *userRepository) QueryPendingAccounts(ctx context.Context, exec ...core.DBExecutor) ([]user.PendingAccount, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	accs := make([]user.PendingAccount, 0, len(repo.db.pendingAccounts))
	for _, acc := range repo.db.pendingAccounts {
		accs = append(accs, *acc)
	}
	sort.Slice(accs, func(i, j int) bool { return accs[i].CreatedAt.Before(accs[j].CreatedAt) })
	return accs, nil
}

func (repo *userRepository) GetPendingAccount(ctx context.Context, sid string, exec ...core.DBExecutor) (user.PendingAccount, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if acc, ok := repo.db.pendingAccounts[sid]; ok {
		return *acc, nil
	}
	return user.PendingAccount{}, user.ErrNotPending
}

func (repo *userRepository) DeletePendingAccount(ctx context.Context, sid string, exec ...core.DBExecutor) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	delete(repo.db.pendingAccounts, sid)
	return nil
}

func (repo *userRepository) CountPendingAccounts(ctx context.Context, exec ...core.DBExecutor) (int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return len(repo.db.pendingAccounts), nil
}

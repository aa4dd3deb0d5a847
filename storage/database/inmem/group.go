package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/edufacil/efs/core"
	"github.com/edufacil/efs/core/group"
)

type groupRepository struct {
	db *DB
}

var _ group.Repository = (*groupRepository)(nil) // interface compliance check

func NewGroupRepository(db *DB) *groupRepository {
	return &groupRepository{db: db}
}

func (repo *groupRepository) CreateRequest(ctx context.Context, req group.Request, exec ...core.DBExecutor) (group.Request, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	repo.db.groupRequests[req.ID] = &req
	return req, nil
}

func (repo *groupRepository) QueryActiveRequests(ctx context.Context, exec ...core.DBExecutor) ([]group.Request, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	reqs := make([]group.Request, 0, len(repo.db.groupRequests))
	for _, req := range repo.db.groupRequests {
		reqs = append(reqs, *req)
	}
	sort.Slice(reqs, func(i, j int) bool { return reqs[i].CreatedAt.After(reqs[j].CreatedAt) })
	return reqs, nil
}

func (repo *groupRepository) GetRequest(ctx context.Context, id string, exec ...core.DBExecutor) (group.Request, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if req, ok := repo.db.groupRequests[id]; ok {
		return *req, nil
	}
	return group.Request{}, group.ErrNotFound
}

func (repo *groupRepository) GetRequestBySID(ctx context.Context, sid string, exec ...core.DBExecutor) (group.Request, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, req := range repo.db.groupRequests {
		if req.SID == sid {
			return *req, nil
		}
	}
	return group.Request{}, group.ErrNotFound
}

func (repo *groupRepository) DeleteRequest(ctx context.Context, id string, exec ...core.DBExecutor) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	delete(repo.db.groupRequests, id)
	return nil
}

func (repo *groupRepository) CountRequests(ctx context.Context, exec ...core.DBExecutor) (int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return len(repo.db.groupRequests), nil
}

package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/edufacil/efs/core"
	"github.com/edufacil/efs/core/material"
)

type materialRepository struct {
	db *DB
}

var _ material.Repository = (*materialRepository)(nil) // interface compliance check

func NewMaterialRepository(db *DB) *materialRepository {
	return &materialRepository{db: db}
}

func (repo *materialRepository) CreateMaterial(ctx context.Context, mat material.Material, exec ...core.DBExecutor) (material.Material, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if mat.ID == "" {
		mat.ID = uuid.NewString()
	}
	repo.db.materials[mat.ID] = &mat
	return mat, nil
}

func (repo *materialRepository) QueryMaterialsByCourse(ctx context.Context, code string, exec ...core.DBExecutor) ([]material.Material, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var mats []material.Material
	for _, mat := range repo.db.materials {
		if mat.CourseCode == code {
			mats = append(mats, *mat)
		}
	}
	sort.Slice(mats, func(i, j int) bool { return mats[i].CreatedAt.After(mats[j].CreatedAt) })
	return mats, nil
}

func (repo *materialRepository) GetMaterial(ctx context.Context, id string, exec ...core.DBExecutor) (material.Material, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if mat, ok := repo.db.materials[id]; ok {
		return *mat, nil
	}
	return material.Material{}, material.ErrNotFound
}

func (repo *materialRepository) IncrementDownloads(ctx context.Context, id string, exec ...core.DBExecutor) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	mat, ok := repo.db.materials[id]
	if !ok {
		return material.ErrNotFound
	}
	mat.Downloads++
	return nil
}

func (repo *materialRepository) DeleteMaterial(ctx context.Context, id string, exec ...core.DBExecutor) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	delete(repo.db.materials, id)
	return nil
}

func (repo *materialRepository) CountMaterials(ctx context.Context, exec ...core.DBExecutor) (int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return len(repo.db.materials), nil
}

func (repo *materialRepository) CountMaterialsBySID(ctx context.Context, sid string, exec ...core.DBExecutor) (int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var cnt int
	for _, mat := range repo.db.materials {
		if mat.UploadedBy == sid {
			cnt++
		}
	}
	return cnt, nil
}

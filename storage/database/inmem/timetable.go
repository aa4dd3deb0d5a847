package inmemdb

import (
	"context"

	"github.com/edufacil/efs/core/timetable"
)

type timetableRepository struct {
	db *DB
}

var _ timetable.Persister = (*timetableRepository)(nil) // interface compliance check

func NewTimetableRepository(db *DB) *timetableRepository {
	return &timetableRepository{db: db}
}

func (repo *timetableRepository) SaveSelections(ctx context.Context, sid string, selections []timetable.SelectedSession) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	repo.db.timetables[sid] = append([]timetable.SelectedSession(nil), selections...)
	return nil
}

func (repo *timetableRepository) LoadSelections(ctx context.Context, sid string) ([]timetable.SelectedSession, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return append([]timetable.SelectedSession{}, repo.db.timetables[sid]...), nil
}

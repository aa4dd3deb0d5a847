package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/edufacil/efs/core"
	"github.com/edufacil/efs/core/course"
	"github.com/edufacil/efs/core/timetable"
)

type courseRepository struct {
	db *DB
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(db *DB) *courseRepository {
	return &courseRepository{db: db}
}

func (repo *courseRepository) CheckCodeUniqueness(ctx context.Context, code string, exec ...core.DBExecutor) error {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if _, ok := repo.db.courses[code]; ok {
		return course.ErrCodeExists
	}
	for _, pc := range repo.db.pendingCourses {
		if pc.Code == code {
			return course.ErrRequestExists
		}
	}
	return nil
}

func (repo *courseRepository) CreateCourse(ctx context.Context, crs course.Course, exec ...core.DBExecutor) (course.Course, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	repo.db.courses[crs.Code] = &crs
	return crs, nil
}

func (repo *courseRepository) QueryAllCourses(ctx context.Context, exec ...core.DBExecutor) ([]course.Course, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	courses := make([]course.Course, 0, len(repo.db.courses))
	for _, crs := range repo.db.courses {
		courses = append(courses, *crs)
	}
	sort.Slice(courses, func(i, j int) bool { return courses[i].Code < courses[j].Code })
	return courses, nil
}

func (repo *courseRepository) GetCourse(ctx context.Context, code string, exec ...core.DBExecutor) (course.Course, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if crs, ok := repo.db.courses[code]; ok {
		return *crs, nil
	}
	return course.Course{}, course.ErrNotFound
}

func (repo *courseRepository) UpdateCourse(ctx context.Context, crs course.Course, exec ...core.DBExecutor) (course.Course, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.courses[crs.Code]; !ok {
		return course.Course{}, course.ErrNotFound
	}
	repo.db.courses[crs.Code] = &crs
	return crs, nil
}

func (repo *courseRepository) CountCourses(ctx context.Context, exec ...core.DBExecutor) (int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return len(repo.db.courses), nil
}

func (repo *courseRepository) QueryAllSessions(ctx context.Context, exec ...core.DBExecutor) ([]timetable.Session, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var sessions []timetable.Session
	for _, ss := range repo.db.sessions {
		sessions = append(sessions, ss...)
	}
	sort.Slice(sessions, func(i, j int) bool {
		if sessions[i].CourseCode != sessions[j].CourseCode {
			return sessions[i].CourseCode < sessions[j].CourseCode
		}
		if sessions[i].ClassNo != sessions[j].ClassNo {
			return sessions[i].ClassNo < sessions[j].ClassNo
		}
		return sessions[i].StartTime < sessions[j].StartTime
	})
	return sessions, nil
}

func (repo *courseRepository) QueryCourseSessions(ctx context.Context, code string, exec ...core.DBExecutor) ([]timetable.Session, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return append([]timetable.Session(nil), repo.db.sessions[code]...), nil
}

func (repo *courseRepository) ReplaceSessions(ctx context.Context, code string, sessions []timetable.Session, exec ...core.DBExecutor) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for i := range sessions {
		if sessions[i].ID == "" {
			sessions[i].ID = uuid.NewString()
		}
	}
	repo.db.sessions[code] = append([]timetable.Session(nil), sessions...)
	return nil
}

func (repo *courseRepository) CreatePendingCourse(ctx context.Context, pc course.PendingCourse, exec ...core.DBExecutor) (course.PendingCourse, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if pc.ID == "" {
		pc.ID = uuid.NewString()
	}
	repo.db.pendingCourses[pc.ID] = &pc
	return pc, nil
}

func (repo *courseRepository) QueryPendingCourses(ctx context.Context, exec ...core.DBExecutor) ([]course.PendingCourse, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	pcs := make([]course.PendingCourse, 0, len(repo.db.pendingCourses))
	for _, pc := range repo.db.pendingCourses {
		pcs = append(pcs, *pc)
	}
	sort.Slice(pcs, func(i, j int) bool { return pcs[i].CreatedAt.Before(pcs[j].CreatedAt) })
	return pcs, nil
}

func (repo *courseRepository) GetPendingCourse(ctx context.Context, id string, exec ...core.DBExecutor) (course.PendingCourse, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if pc, ok := repo.db.pendingCourses[id]; ok {
		return *pc, nil
	}
	return course.PendingCourse{}, course.ErrNotFound
}

func (repo *courseRepository) GetPendingCourseByCode(ctx context.Context, code string, exec ...core.DBExecutor) (course.PendingCourse, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, pc := range repo.db.pendingCourses {
		if pc.Code == code {
			return *pc, nil
		}
	}
	return course.PendingCourse{}, course.ErrNotFound
}

func (repo *courseRepository) DeletePendingCourse(ctx context.Context, id string, exec ...core.DBExecutor) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	delete(repo.db.pendingCourses, id)
	return nil
}

func (repo *courseRepository) CountPendingCourses(ctx context.Context, exec ...core.DBExecutor) (int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return len(repo.db.pendingCourses), nil
}

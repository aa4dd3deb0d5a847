package course

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/edufacil/efs/core"
	"github.com/edufacil/efs/core/timetable"
)

var (
	// errors
	ErrNotFound      = errors.New("course not found")
	ErrCodeExists    = errors.New("a course with this code already exists")
	ErrRequestExists = errors.New("a request for this course code is already awaiting review")
)

type (
	Repository interface {
		// CheckCodeUniqueness looks at both approved and pending courses.
		CheckCodeUniqueness(ctx context.Context, code string, exec ...core.DBExecutor) error
		CreateCourse(ctx context.Context, crs Course, exec ...core.DBExecutor) (Course, error)
		QueryAllCourses(ctx context.Context, exec ...core.DBExecutor) ([]Course, error)
		GetCourse(ctx context.Context, code string, exec ...core.DBExecutor) (Course, error)
		UpdateCourse(ctx context.Context, crs Course, exec ...core.DBExecutor) (Course, error)
		CountCourses(ctx context.Context, exec ...core.DBExecutor) (int, error)

		// Sessions; the catalog rows timetable projections consume.
		QueryAllSessions(ctx context.Context, exec ...core.DBExecutor) ([]timetable.Session, error)
		QueryCourseSessions(ctx context.Context, code string, exec ...core.DBExecutor) ([]timetable.Session, error)
		ReplaceSessions(ctx context.Context, code string, sessions []timetable.Session, exec ...core.DBExecutor) error

		CreatePendingCourse(ctx context.Context, pc PendingCourse, exec ...core.DBExecutor) (PendingCourse, error)
		QueryPendingCourses(ctx context.Context, exec ...core.DBExecutor) ([]PendingCourse, error)
		GetPendingCourse(ctx context.Context, id string, exec ...core.DBExecutor) (PendingCourse, error)
		GetPendingCourseByCode(ctx context.Context, code string, exec ...core.DBExecutor) (PendingCourse, error)
		DeletePendingCourse(ctx context.Context, id string, exec ...core.DBExecutor) error
		CountPendingCourses(ctx context.Context, exec ...core.DBExecutor) (int, error)
	}

	Service interface {
		CheckCodeUniqueness(code string) error
		// CourseMap returns {code: title} for the whole catalog.
		CourseMap(ctx context.Context) (map[string]string, error)
		QueryAll(ctx context.Context) ([]Course, error)
		// GetDetail looks up an approved course first, then pending requests.
		GetDetail(ctx context.Context, code string) (Detail, error)
		Request(ctx context.Context, sid string, ncr NewCourseRequest) (PendingCourse, error)
		Update(ctx context.Context, code string, uc UpdateCourse) (Detail, error)

		PendingCourses(ctx context.Context) ([]PendingCourse, error)
		Approve(ctx context.Context, id string) (Course, error)
		Reject(ctx context.Context, id string) error

		Counts(ctx context.Context) (approved, pending int, err error)

		// timetable.CourseSource
		QueryAllSessions(ctx context.Context) ([]timetable.Session, error)
		CourseTitles(ctx context.Context) (map[string]string, error)
	}

	service struct {
		repo Repository
	}
)

var (
	_ Service                = (*service)(nil)
	_ timetable.CourseSource = (*service)(nil)
)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (svc *service) CheckCodeUniqueness(code string) error {
	if err := svc.repo.CheckCodeUniqueness(context.Background(), code); err != nil {
		switch errors.Cause(err) {
		case ErrCodeExists, ErrRequestExists:
			return core.NewValidationError(err, core.FieldError{Field: "code", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *service) CourseMap(ctx context.Context) (map[string]string, error) {
	return svc.CourseTitles(ctx)
}

func (svc *service) QueryAll(ctx context.Context) ([]Course, error) {
	courses, err := svc.repo.QueryAllCourses(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(courses, func(i, j int) bool { return courses[i].Code < courses[j].Code })
	return courses, nil
}

func (svc *service) GetDetail(ctx context.Context, code string) (Detail, error) {
	crs, err := svc.repo.GetCourse(ctx, code)
	if err == nil {
		sessions, err := svc.repo.QueryCourseSessions(ctx, code)
		if err != nil {
			return Detail{}, err
		}
		return Detail{Course: crs, Groups: timetable.GroupSessions(sessions)}, nil
	}
	if errors.Cause(err) != ErrNotFound {
		return Detail{}, err
	}

	// not in the catalog; maybe still pending review
	pc, err := svc.repo.GetPendingCourseByCode(ctx, code)
	if err != nil {
		return Detail{}, err
	}
	return Detail{
		Course: Course{
			Code:        pc.Code,
			Title:       pc.Title,
			Description: pc.Description,
			CreatedAt:   pc.CreatedAt,
			UpdatedAt:   pc.CreatedAt,
		},
		Pending: true,
	}, nil
}

func (svc *service) Request(ctx context.Context, sid string, ncr NewCourseRequest) (PendingCourse, error) {
	pc := PendingCourse{
		ID:          uuid.NewString(),
		Code:        ncr.Code,
		Title:       ncr.Title,
		Description: ncr.Description,
		RequestedBy: sid,
		CreatedAt:   time.Now().UTC(),
	}
	return svc.repo.CreatePendingCourse(ctx, pc)
}

func (svc *service) Update(ctx context.Context, code string, uc UpdateCourse) (Detail, error) {
	crs, err := svc.repo.GetCourse(ctx, code)
	if err != nil {
		return Detail{}, err
	}
	crs.Description = uc.Description
	crs.UpdatedAt = time.Now().UTC()

	sessions := make([]timetable.Session, 0, len(uc.Sessions))
	for _, in := range uc.Sessions {
		wd, err := timetable.ParseDay(in.Day)
		if err != nil {
			return Detail{}, core.NewValidationError(err, core.FieldError{Field: "day", Error: err.Error()})
		}
		if _, _, err = timetable.ParseClock(in.StartTime); err != nil {
			return Detail{}, core.NewValidationError(err, core.FieldError{Field: "start_time", Error: err.Error()})
		}
		if _, _, err = timetable.ParseClock(in.EndTime); err != nil {
			return Detail{}, core.NewValidationError(err, core.FieldError{Field: "end_time", Error: err.Error()})
		}
		sessions = append(sessions, timetable.Session{
			ID:         uuid.NewString(),
			CourseCode: crs.Code,
			ClassNo:    in.ClassNo,
			Weekday:    wd,
			StartTime:  in.StartTime,
			EndTime:    in.EndTime,
			Room:       in.Room,
		})
	}

	if crs, err = svc.repo.UpdateCourse(ctx, crs); err != nil {
		return Detail{}, err
	}
	if err = svc.repo.ReplaceSessions(ctx, crs.Code, sessions); err != nil {
		return Detail{}, err
	}
	return Detail{Course: crs, Groups: timetable.GroupSessions(sessions)}, nil
}

func (svc *service) PendingCourses(ctx context.Context) ([]PendingCourse, error) {
	return svc.repo.QueryPendingCourses(ctx)
}

// Approve promotes a pending course into the catalog; it starts with no
// sessions until an admin fills them in.
func (svc *service) Approve(ctx context.Context, id string) (Course, error) {
	pc, err := svc.repo.GetPendingCourse(ctx, id)
	if err != nil {
		return Course{}, err
	}

	now := time.Now().UTC()
	crs := Course{
		Code:        pc.Code,
		Title:       pc.Title,
		Description: pc.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if crs, err = svc.repo.CreateCourse(ctx, crs); err != nil {
		return Course{}, err
	}
	return crs, svc.repo.DeletePendingCourse(ctx, id)
}

func (svc *service) Reject(ctx context.Context, id string) error {
	if _, err := svc.repo.GetPendingCourse(ctx, id); err != nil {
		return err
	}
	return svc.repo.DeletePendingCourse(ctx, id)
}

func (svc *service) Counts(ctx context.Context) (int, int, error) {
	approved, err := svc.repo.CountCourses(ctx)
	if err != nil {
		return 0, 0, err
	}
	pending, err := svc.repo.CountPendingCourses(ctx)
	if err != nil {
		return 0, 0, err
	}
	return approved, pending, nil
}

func (svc *service) QueryAllSessions(ctx context.Context) ([]timetable.Session, error) {
	return svc.repo.QueryAllSessions(ctx)
}

func (svc *service) CourseTitles(ctx context.Context) (map[string]string, error) {
	courses, err := svc.repo.QueryAllCourses(ctx)
	if err != nil {
		return nil, err
	}
	titles := make(map[string]string, len(courses))
	for _, crs := range courses {
		titles[crs.Code] = crs.Title
	}
	return titles, nil
}

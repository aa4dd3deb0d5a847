package timetable

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

type (
	// CourseSource supplies the catalog data projections are built from.
	// storage/database's course repository satisfies it.
	CourseSource interface {
		QueryAllSessions(ctx context.Context) ([]Session, error)
		CourseTitles(ctx context.Context) (map[string]string, error)
	}

	Service interface {
		// CalendarCourses returns every catalog session decorated for
		// calendar display (color, campus, day/time strings).
		CalendarCourses(ctx context.Context) ([]SelectedSession, error)
		// Events projects the whole catalog over the forward window.
		Events(ctx context.Context, ref time.Time, weeks int) ([]Event, error)
		// MyEvents projects one user's saved selections.
		MyEvents(ctx context.Context, sid string, ref time.Time, weeks int) ([]Event, error)
		SaveSelections(ctx context.Context, sid string, selections []SelectedSession) error
		Selections(ctx context.Context, sid string) ([]SelectedSession, error)
	}

	service struct {
		src       CourseSource
		persister Persister
	}
)

var _ Service = (*service)(nil)

func NewService(src CourseSource, persister Persister) Service {
	return &service{src: src, persister: persister}
}

func (svc *service) catalogSelections(ctx context.Context) ([]SelectedSession, error) {
	sessions, err := svc.src.QueryAllSessions(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "querying sessions")
	}
	titles, err := svc.src.CourseTitles(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "querying course titles")
	}

	selections := make([]SelectedSession, 0, len(sessions))
	for _, s := range sessions {
		selections = append(selections, NewSelection(titles[s.CourseCode], s))
	}
	return selections, nil
}

func (svc *service) CalendarCourses(ctx context.Context) ([]SelectedSession, error) {
	return svc.catalogSelections(ctx)
}

func (svc *service) Events(ctx context.Context, ref time.Time, weeks int) ([]Event, error) {
	selections, err := svc.catalogSelections(ctx)
	if err != nil {
		return nil, err
	}
	return Project(selections, ref, weeks), nil
}

func (svc *service) MyEvents(ctx context.Context, sid string, ref time.Time, weeks int) ([]Event, error) {
	store := NewStore(sid, svc.persister)
	if err := store.Load(ctx); err != nil {
		return nil, errors.Wrap(err, "loading selections")
	}
	return Project(store.Selections(), ref, weeks), nil
}

func (svc *service) SaveSelections(ctx context.Context, sid string, selections []SelectedSession) error {
	return svc.persister.SaveSelections(ctx, sid, selections)
}

func (svc *service) Selections(ctx context.Context, sid string) ([]SelectedSession, error) {
	return svc.persister.LoadSelections(ctx, sid)
}

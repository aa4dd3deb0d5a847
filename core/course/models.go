package course

import (
	"time"

	"github.com/edufacil/efs/core"
	"github.com/edufacil/efs/core/timetable"
)

type Course struct {
	Code        string    `json:"code"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"` // UTC
	UpdatedAt   time.Time `json:"updated_at"` // UTC
}

// PendingCourse is a student-submitted course awaiting admin review.
type PendingCourse struct {
	ID          string    `json:"id"`
	Code        string    `json:"code"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	RequestedBy string    `json:"requested_by"` // student ID
	CreatedAt   time.Time `json:"created_at"`   // UTC
}

// Detail is the full course page payload: the course, its class groups and
// whether it is still pending review.
type Detail struct {
	Course
	Groups  []timetable.ClassGroup `json:"groups"`
	Pending bool                   `json:"pending"`
}

// NewCourseRequest contains information needed to propose a new course.
type NewCourseRequest struct {
	Code        string `json:"code" validate:"required,coursecode"`
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
}

func (ncr *NewCourseRequest) Validate(svc Service) error {
	ncr.Code = core.CleanString(ncr.Code)
	ncr.Title = core.CleanString(ncr.Title)
	ncr.Description = core.CleanString(ncr.Description)

	if err := core.Validate.Struct(ncr); err != nil {
		return err
	}
	return svc.CheckCodeUniqueness(ncr.Code)
}

// SessionInput is one session row of an admin course edit; the weekday comes
// in as a short day name.
type SessionInput struct {
	ClassNo   string `json:"class_no"`
	Day       string `json:"day" validate:"required"`
	StartTime string `json:"start_time" validate:"required"`
	EndTime   string `json:"end_time" validate:"required"`
	Room      string `json:"room"`
}

// UpdateCourse replaces a course's description and full session list.
type UpdateCourse struct {
	Description string         `json:"description"`
	Sessions    []SessionInput `json:"sessions" validate:"dive"`
}

func (uc *UpdateCourse) Validate() error {
	uc.Description = core.CleanString(uc.Description)
	for i := range uc.Sessions {
		uc.Sessions[i].ClassNo = core.CleanString(uc.Sessions[i].ClassNo)
		uc.Sessions[i].Day = core.CleanString(uc.Sessions[i].Day)
		uc.Sessions[i].StartTime = core.CleanString(uc.Sessions[i].StartTime)
		uc.Sessions[i].EndTime = core.CleanString(uc.Sessions[i].EndTime)
		uc.Sessions[i].Room = core.CleanString(uc.Sessions[i].Room)
	}
	return core.Validate.Struct(uc)
}

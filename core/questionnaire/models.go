package questionnaire

import (
	"time"

	"github.com/edufacil/efs/core"
)

// Statuses
const (
	StatusActive    = "active"
	StatusCompleted = "completed"
)

// Credit economics: posting costs one credit, every fill earns one.
const (
	CreateCost = 1
	FillReward = 1
)

type Questionnaire struct {
	ID              string    `json:"id"`
	SID             string    `json:"sid"` // creator
	Title           string    `json:"title"`
	Description     string    `json:"description,omitempty"`
	Link            string    `json:"link"` // external form URL
	TargetResponses int       `json:"target_responses"`
	Responses       int       `json:"responses"`
	FilledBy        []string  `json:"-"` // filler student IDs
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"created_at"` // UTC
	UpdatedAt       time.Time `json:"updated_at"` // UTC
}

func (q *Questionnaire) IsActive() bool { return q.Status == StatusActive }

func (q *Questionnaire) FilledBySID(sid string) bool {
	for _, s := range q.FilledBy {
		if s == sid {
			return true
		}
	}
	return false
}

// NewQuestionnaire contains information needed to post a questionnaire.
type NewQuestionnaire struct {
	Title           string `json:"title" validate:"required"`
	Description     string `json:"description"`
	Link            string `json:"link" validate:"required,url"`
	TargetResponses int    `json:"target_responses" validate:"min=1,max=500"`
}

func (nq *NewQuestionnaire) Validate() error {
	nq.Title = core.CleanString(nq.Title)
	nq.Description = core.CleanString(nq.Description)
	nq.Link = core.CleanString(nq.Link)
	return core.Validate.Struct(nq)
}

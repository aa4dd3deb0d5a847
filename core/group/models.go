package group

import (
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/edufacil/efs/core"
)

// Request is a study-group matchmaking post. A user keeps at most one
// active request at a time.
type Request struct {
	ID           string       `json:"id"`
	SID          string       `json:"sid"` // owner
	Major        string       `json:"major"`
	Description  string       `json:"description,omitempty"`
	ContactEmail string       `json:"contact_email,omitempty"`
	ContactPhone string       `json:"contact_phone,omitempty"`
	DesiredMates int          `json:"desired_mates"`
	GPA          null.Float64 `json:"gpa,omitempty"`
	DSEScore     string       `json:"dse_score,omitempty"`
	CreatedAt    time.Time    `json:"created_at"` // UTC
}

// NewRequest contains information needed to post a group request.
type NewRequest struct {
	Major        string   `json:"major" validate:"required"`
	Description  string   `json:"description"`
	ContactEmail string   `json:"contact_email" validate:"omitempty,email"`
	ContactPhone string   `json:"contact_phone"`
	DesiredMates int      `json:"desired_mates" validate:"min=1,max=10"`
	GPA          *float64 `json:"gpa" validate:"omitempty,min=0,max=4.3"`
	DSEScore     string   `json:"dse_score"`
}

func (nr *NewRequest) Validate() error {
	nr.Major = core.CleanString(nr.Major)
	nr.Description = core.CleanString(nr.Description)
	nr.ContactEmail = core.CleanString(nr.ContactEmail, true /* lower */)
	nr.ContactPhone = core.CleanString(nr.ContactPhone)
	nr.DSEScore = core.CleanString(nr.DSEScore)
	return core.Validate.Struct(nr)
}

// Invitation is the message one student sends to a request owner.
type Invitation struct {
	Message      string `json:"message"`
	ContactEmail string `json:"contact_email" validate:"required,email"`
}

func (inv *Invitation) Validate() error {
	inv.Message = core.CleanString(inv.Message)
	inv.ContactEmail = core.CleanString(inv.ContactEmail, true /* lower */)
	return core.Validate.Struct(inv)
}

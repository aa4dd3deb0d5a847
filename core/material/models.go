package material

import (
	"time"

	"github.com/edufacil/efs/core"
)

// Material is the metadata of one uploaded learning resource; the payload
// itself lives in the blob store under FileKey.
type Material struct {
	ID          string    `json:"id"`
	CourseCode  string    `json:"code"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	FileName    string    `json:"file_name"`
	FileKey     string    `json:"-"`
	Size        int64     `json:"size"`
	ContentType string    `json:"content_type"`
	UploadedBy  string    `json:"uploaded_by"` // student ID
	Downloads   int       `json:"downloads"`
	CreatedAt   time.Time `json:"created_at"` // UTC
}

// NewMaterial contains information needed to upload a material.
type NewMaterial struct {
	CourseCode  string `json:"code" validate:"required,coursecode"`
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	FileName    string `json:"file_name" validate:"required"`
	Data        string `json:"data" validate:"required"` // base64 payload
}

func (nm *NewMaterial) Validate() error {
	nm.CourseCode = core.CleanString(nm.CourseCode)
	nm.Name = core.CleanString(nm.Name)
	nm.Description = core.CleanString(nm.Description)
	nm.FileName = core.CleanString(nm.FileName)
	return core.Validate.Struct(nm)
}

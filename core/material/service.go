package material

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/edufacil/efs/core"
)

var (
	// errors
	ErrNotFound = errors.New("material not found")
)

type (
	Repository interface {
		CreateMaterial(ctx context.Context, mat Material, exec ...core.DBExecutor) (Material, error)
		QueryMaterialsByCourse(ctx context.Context, code string, exec ...core.DBExecutor) ([]Material, error)
		GetMaterial(ctx context.Context, id string, exec ...core.DBExecutor) (Material, error)
		IncrementDownloads(ctx context.Context, id string, exec ...core.DBExecutor) error
		DeleteMaterial(ctx context.Context, id string, exec ...core.DBExecutor) error
		CountMaterials(ctx context.Context, exec ...core.DBExecutor) (int, error)
		CountMaterialsBySID(ctx context.Context, sid string, exec ...core.DBExecutor) (int, error)
	}

	Service interface {
		Upload(ctx context.Context, sid string, nm NewMaterial) (Material, error)
		ByCourse(ctx context.Context, code string) ([]Material, error)
		// Download returns the metadata and a payload stream, counting the
		// download. The caller closes the stream.
		Download(ctx context.Context, id string) (Material, io.ReadCloser, error)
		Delete(ctx context.Context, id string) error
		Count(ctx context.Context) (int, error)
		CountBySID(ctx context.Context, sid string) (int, error)
	}

	service struct {
		repo  Repository
		files core.FileStore
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, files core.FileStore) Service {
	return &service{repo: repo, files: files}
}

func (svc *service) Upload(ctx context.Context, sid string, nm NewMaterial) (Material, error) {
	data, err := decodePayload(nm.Data)
	if err != nil {
		return Material{}, core.NewValidationError(err, core.FieldError{Field: "data", Error: err.Error()})
	}

	mat := Material{
		ID:          uuid.NewString(),
		CourseCode:  nm.CourseCode,
		Name:        nm.Name,
		Description: nm.Description,
		FileName:    nm.FileName,
		Size:        int64(len(data)),
		ContentType: contentTypeFor(nm.FileName, data),
		UploadedBy:  sid,
		CreatedAt:   time.Now().UTC(),
	}
	mat.FileKey = fmt.Sprintf("materials/%s/%s%s", mat.CourseCode, mat.ID, path.Ext(nm.FileName))

	if err = svc.files.Put(ctx, mat.FileKey, bytes.NewReader(data), mat.ContentType); err != nil {
		return Material{}, errors.Wrap(err, "storing material")
	}
	return svc.repo.CreateMaterial(ctx, mat)
}

func (svc *service) ByCourse(ctx context.Context, code string) ([]Material, error) {
	return svc.repo.QueryMaterialsByCourse(ctx, code)
}

func (svc *service) Download(ctx context.Context, id string) (Material, io.ReadCloser, error) {
	mat, err := svc.repo.GetMaterial(ctx, id)
	if err != nil {
		return Material{}, nil, err
	}
	rc, err := svc.files.Get(ctx, mat.FileKey)
	if err != nil {
		return Material{}, nil, errors.Wrap(err, "fetching material payload")
	}
	if err = svc.repo.IncrementDownloads(ctx, id); err != nil {
		rc.Close()
		return Material{}, nil, err
	}
	mat.Downloads++
	return mat, rc, nil
}

func (svc *service) Delete(ctx context.Context, id string) error {
	mat, err := svc.repo.GetMaterial(ctx, id)
	if err != nil {
		return err
	}
	if err = svc.repo.DeleteMaterial(ctx, id); err != nil {
		return err
	}
	_ = svc.files.Delete(ctx, mat.FileKey)
	return nil
}

func (svc *service) Count(ctx context.Context) (int, error) {
	return svc.repo.CountMaterials(ctx)
}

func (svc *service) CountBySID(ctx context.Context, sid string) (int, error) {
	return svc.repo.CountMaterialsBySID(ctx, sid)
}

func decodePayload(b64 string) ([]byte, error) {
	data, err := core.DecodeBase64Payload(b64)
	if err != nil {
		return nil, errors.New("invalid base64 file data")
	}
	return data, nil
}

func contentTypeFor(fileName string, data []byte) string {
	switch strings.ToLower(path.Ext(fileName)) {
	case ".pdf":
		return "application/pdf"
	case ".doc":
		return "application/msword"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case ".ppt":
		return "application/vnd.ms-powerpoint"
	case ".pptx":
		return "application/vnd.openxmlformats-officedocument.presentationml.presentation"
	case ".zip":
		return "application/zip"
	}
	return http.DetectContentType(data)
}

package group

import (
	"context"
	"net/mail"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/edufacil/efs/core"
)

var (
	// errors
	ErrNotFound     = errors.New("group request not found")
	ErrActiveExists = errors.New("you already have an active group request")
	ErrNotOwner     = errors.New("this group request belongs to someone else")
)

type (
	Repository interface {
		CreateRequest(ctx context.Context, req Request, exec ...core.DBExecutor) (Request, error)
		QueryActiveRequests(ctx context.Context, exec ...core.DBExecutor) ([]Request, error)
		GetRequest(ctx context.Context, id string, exec ...core.DBExecutor) (Request, error)
		// GetRequestBySID returns ErrNotFound when the user has no active request.
		GetRequestBySID(ctx context.Context, sid string, exec ...core.DBExecutor) (Request, error)
		DeleteRequest(ctx context.Context, id string, exec ...core.DBExecutor) error
		CountRequests(ctx context.Context, exec ...core.DBExecutor) (int, error)
	}

	Service interface {
		Create(ctx context.Context, sid string, nr NewRequest) (Request, error)
		QueryActive(ctx context.Context) ([]Request, error)
		Mine(ctx context.Context, sid string) (Request, error)
		// Delete removes the caller's own request; admins may remove any.
		Delete(ctx context.Context, sid, id string, isAdmin bool) error
		// Invite emails the request owner on behalf of the caller.
		Invite(ctx context.Context, id, inviterSID string, inv Invitation) error
		Count(ctx context.Context) (int, error)
	}

	service struct {
		repo    Repository
		mailSvc core.EmailService
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, mailSvc core.EmailService) Service {
	return &service{repo: repo, mailSvc: mailSvc}
}

func (svc *service) Create(ctx context.Context, sid string, nr NewRequest) (Request, error) {
	if _, err := svc.repo.GetRequestBySID(ctx, sid); err == nil {
		return Request{}, core.NewValidationError(ErrActiveExists)
	} else if errors.Cause(err) != ErrNotFound {
		return Request{}, err
	}

	req := Request{
		ID:           uuid.NewString(),
		SID:          sid,
		Major:        nr.Major,
		Description:  nr.Description,
		ContactEmail: nr.ContactEmail,
		ContactPhone: nr.ContactPhone,
		DesiredMates: nr.DesiredMates,
		DSEScore:     nr.DSEScore,
		CreatedAt:    time.Now().UTC(),
	}
	if nr.GPA != nil {
		req.GPA.SetValid(*nr.GPA)
	}
	return svc.repo.CreateRequest(ctx, req)
}

func (svc *service) QueryActive(ctx context.Context) ([]Request, error) {
	return svc.repo.QueryActiveRequests(ctx)
}

func (svc *service) Mine(ctx context.Context, sid string) (Request, error) {
	return svc.repo.GetRequestBySID(ctx, sid)
}

func (svc *service) Delete(ctx context.Context, sid, id string, isAdmin bool) error {
	req, err := svc.repo.GetRequest(ctx, id)
	if err != nil {
		return err
	}
	if req.SID != sid && !isAdmin {
		return ErrNotOwner
	}
	return svc.repo.DeleteRequest(ctx, id)
}

func (svc *service) Invite(ctx context.Context, id, inviterSID string, inv Invitation) error {
	req, err := svc.repo.GetRequest(ctx, id)
	if err != nil {
		return err
	}
	if req.ContactEmail == "" {
		return errors.New("the request owner left no contact email")
	}

	msg := &core.EmailMessage{
		To:           []mail.Address{{Address: req.ContactEmail}},
		Subject:      core.Conf.AppName + " - Study group invitation",
		TemplateName: "group-invitation",
		TemplateData: struct {
			InviterSID   string
			InviterEmail string
			Message      string
			Major        string
		}{inviterSID, inv.ContactEmail, inv.Message, req.Major},
	}
	// render now so a bad template surfaces to the caller; delivery itself
	// is handled (and logged) by the email service
	if err = msg.Render(); err != nil {
		return errors.Wrap(err, "rendering invitation")
	}
	svc.mailSvc.SendMessages(msg)
	return nil
}

func (svc *service) Count(ctx context.Context) (int, error) {
	return svc.repo.CountRequests(ctx)
}

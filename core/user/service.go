package user

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/mail"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/edufacil/efs/core"
)

var (
	// errors
	ErrNotFound      = errors.New("user not found")
	ErrSIDExists     = errors.New("an account with this student ID already exists")
	ErrEmailExists   = errors.New("an account with this email already exists")
	ErrPendingExists = errors.New("a registration for this student ID is already awaiting review")
	ErrNotPending    = errors.New("pending account not found")
	// ErrInsufficientCredits is returned by Repository.AdjustCredits when the
	// delta would take the balance negative.
	ErrInsufficientCredits = errors.New("insufficient credits")
)

type (
	Repository interface {
		// CheckUniqueness looks at both approved users and pending accounts.
		CheckUniqueness(ctx context.Context, sid, email string, exec ...core.DBExecutor) error
		CreateUser(ctx context.Context, usr User, exec ...core.DBExecutor) (User, error)
		QueryAllUsers(ctx context.Context, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]User, error)
		GetUser(ctx context.Context, filter GetFilter, exec ...core.DBExecutor) (User, error)
		// FilterUsers applies AND operation on available QueryFilter fields.
		// QueryFilter.Search does a case-insensitive match on one of User.SID, User.Email or User.Major.
		FilterUsers(ctx context.Context, filter QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]User, error)
		UpdateUser(ctx context.Context, usr User, isActive *bool, exec ...core.DBExecutor) (User, error)
		// AdjustCredits atomically applies delta to the user's balance and
		// returns the new balance. A delta that would take the balance
		// negative fails.
		AdjustCredits(ctx context.Context, sid string, delta int, exec ...core.DBExecutor) (int, error)
		DeleteUsersBySID(ctx context.Context, sids ...string) error
		CountUsers(ctx context.Context, exec ...core.DBExecutor) (int, error)

		CreatePendingAccount(ctx context.Context, acc PendingAccount, exec ...core.DBExecutor) (PendingAccount, error)
		QueryPendingAccounts(ctx context.Context, exec ...core.DBExecutor) ([]PendingAccount, error)
		GetPendingAccount(ctx context.Context, sid string, exec ...core.DBExecutor) (PendingAccount, error)
		DeletePendingAccount(ctx context.Context, sid string, exec ...core.DBExecutor) error
		CountPendingAccounts(ctx context.Context, exec ...core.DBExecutor) (int, error)
	}

	Service interface {
		CheckUniqueness(sid, email string) error
		Register(ctx context.Context, na NewAccount) (PendingAccount, error)
		QueryAll(ctx context.Context, ordering ...core.DBOrdering) ([]User, error)
		Filter(ctx context.Context, filter QueryFilter, ordering ...core.DBOrdering) ([]User, error)
		GetByID(ctx context.Context, id string) (User, error)
		GetBySID(ctx context.Context, sid string) (User, error)
		GetByEmail(ctx context.Context, email string) (User, error)
		GetBySIDOrEmail(ctx context.Context, sid string) (User, error)
		SetLastLogin(ctx context.Context, usr User) (User, error)
		UpdateProfile(ctx context.Context, sid string, up UpdateProfile) (User, error)
		SetPhoto(ctx context.Context, sid string, photo []byte, fileName string) (User, error)
		Delete(ctx context.Context, sids ...string) error

		PendingAccounts(ctx context.Context) ([]PendingAccount, error)
		Approve(ctx context.Context, sid string) (User, error)
		Reject(ctx context.Context, sid, reason string) error

		RequestPasswordReset(email string) error
		ResetPassword(ctx context.Context, rp ResetUserPassword) error

		Stats(ctx context.Context) (Stats, error)
	}

	service struct {
		repo    Repository
		mailSvc core.EmailService
		files   core.FileStore
	}

	// Stats feeds the admin dashboard.
	Stats struct {
		Users   int `json:"users"`
		Pending int `json:"pending"`
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, mailSvc core.EmailService, files core.FileStore) Service {
	return &service{
		repo:    repo,
		mailSvc: mailSvc,
		files:   files,
	}
}

func (svc *service) CheckUniqueness(sid, email string) error {
	if err := svc.repo.CheckUniqueness(context.Background(), sid, email); err != nil {
		var field string
		switch errors.Cause(err) {
		case ErrSIDExists, ErrPendingExists:
			field = "sid"
		case ErrEmailExists:
			field = "email"
		default:
			return err
		}
		return core.NewValidationError(err, core.FieldError{Field: field, Error: err.Error()})
	}
	return nil
}

func (svc *service) Register(ctx context.Context, na NewAccount) (PendingAccount, error) {
	photo, err := decodePhoto(na.Photo)
	if err != nil {
		return PendingAccount{}, core.NewValidationError(err, core.FieldError{Field: "photo", Error: err.Error()})
	}

	acc := PendingAccount{
		ID:        uuid.NewString(),
		SID:       na.SID,
		Email:     na.Email,
		CreatedAt: time.Now().UTC(),
	}
	hash, err := hashPassword(na.Password)
	if err != nil {
		return PendingAccount{}, err
	}
	acc.PasswordHash = hash

	key := fmt.Sprintf("student-cards/%s%s", acc.ID, photoExt(na.FileName))
	if err = svc.files.Put(ctx, key, bytes.NewReader(photo), http.DetectContentType(photo)); err != nil {
		return PendingAccount{}, errors.Wrap(err, "storing student card")
	}
	acc.PhotoKey = key

	acc, err = svc.repo.CreatePendingAccount(ctx, acc)
	if err != nil {
		return PendingAccount{}, err
	}
	svc.sendRegistrationMails(acc)
	return acc, nil
}

func (svc *service) QueryAll(ctx context.Context, ordering ...core.DBOrdering) ([]User, error) {
	if len(ordering) == 0 {
		ordering = []core.DBOrdering{{Field: "created_at"}}
	}
	return svc.repo.QueryAllUsers(ctx, ordering)
}

func (svc *service) Filter(ctx context.Context, filter QueryFilter, ordering ...core.DBOrdering) ([]User, error) {
	filter.Clean()
	if filter.IsEmpty() {
		return svc.QueryAll(ctx, ordering...)
	}
	if len(ordering) == 0 {
		ordering = []core.DBOrdering{{Field: "created_at"}}
	}
	return svc.repo.FilterUsers(ctx, filter, ordering)
}

func (svc *service) GetByID(ctx context.Context, id string) (User, error) {
	return svc.repo.GetUser(ctx, GetFilter{ID: id})
}

func (svc *service) GetBySID(ctx context.Context, sid string) (User, error) {
	return svc.repo.GetUser(ctx, GetFilter{SID: core.CleanString(sid, true /* lower */)})
}

func (svc *service) GetByEmail(ctx context.Context, email string) (User, error) {
	return svc.repo.GetUser(ctx, GetFilter{Email: core.CleanString(email, true /* lower */)})
}

func (svc *service) GetBySIDOrEmail(ctx context.Context, sid string) (User, error) {
	return svc.repo.GetUser(ctx, GetFilter{SIDOrEmail: core.CleanString(sid, true /* lower */)})
}

func (svc *service) SetLastLogin(ctx context.Context, usr User) (User, error) {
	usr.LastLogin = time.Now().UTC()
	return svc.repo.UpdateUser(ctx, usr, nil)
}

func (svc *service) UpdateProfile(ctx context.Context, sid string, up UpdateProfile) (User, error) {
	usr, err := svc.GetBySID(ctx, sid)
	if err != nil {
		return User{}, err
	}
	usr.Phone = up.Phone
	usr.Major = up.Major
	usr.YearOfStudy = up.YearOfStudy
	usr.DSEScore = up.DSEScore
	usr.Skills = up.Skills
	usr.AboutMe = up.AboutMe
	if up.GPA != nil {
		usr.GPA.SetValid(*up.GPA)
	} else {
		usr.GPA.Valid = false
	}
	usr.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateUser(ctx, usr, nil)
}

func (svc *service) SetPhoto(ctx context.Context, sid string, photo []byte, fileName string) (User, error) {
	usr, err := svc.GetBySID(ctx, sid)
	if err != nil {
		return User{}, err
	}
	key := fmt.Sprintf("profile-photos/%s%s", usr.ID, photoExt(fileName))
	if err = svc.files.Put(ctx, key, bytes.NewReader(photo), http.DetectContentType(photo)); err != nil {
		return User{}, errors.Wrap(err, "storing profile photo")
	}
	usr.PhotoKey = key
	usr.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateUser(ctx, usr, nil)
}

func (svc *service) Delete(ctx context.Context, sids ...string) error {
	return svc.repo.DeleteUsersBySID(ctx, sids...)
}

func (svc *service) PendingAccounts(ctx context.Context) ([]PendingAccount, error) {
	return svc.repo.QueryPendingAccounts(ctx)
}

// Approve converts a pending account into an active student with the
// starting credit balance and notifies the applicant.
func (svc *service) Approve(ctx context.Context, sid string) (User, error) {
	acc, err := svc.repo.GetPendingAccount(ctx, sid)
	if err != nil {
		return User{}, err
	}

	now := time.Now().UTC()
	usr := User{
		ID:           uuid.NewString(),
		SID:          acc.SID,
		Email:        acc.Email,
		Roles:        StudentRoles,
		Credits:      StartingCredits,
		PhotoKey:     acc.PhotoKey,
		PasswordHash: acc.PasswordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	usr.SetActive(true)

	usr, err = svc.repo.CreateUser(ctx, usr)
	if err != nil {
		return User{}, err
	}
	if err = svc.repo.DeletePendingAccount(ctx, sid); err != nil {
		return User{}, err
	}
	svc.sendAccountApprovedMail(usr)
	return usr, nil
}

func (svc *service) Reject(ctx context.Context, sid, reason string) error {
	acc, err := svc.repo.GetPendingAccount(ctx, sid)
	if err != nil {
		return err
	}
	if err = svc.repo.DeletePendingAccount(ctx, sid); err != nil {
		return err
	}
	if acc.PhotoKey != "" {
		_ = svc.files.Delete(context.Background(), acc.PhotoKey)
	}
	svc.sendAccountRejectedMail(acc, reason)
	return nil
}

func (svc *service) RequestPasswordReset(email string) error {
	usr, err := svc.GetByEmail(context.Background(), email)
	if err != nil {
		return err
	}
	go svc.sendPasswordResetMail(usr)
	return nil
}

func (svc *service) ResetPassword(ctx context.Context, rp ResetUserPassword) error {
	uid, err := decodeUID(rp.UID)
	if err != nil {
		return core.NewValidationError(err, core.FieldError{Field: "uid", Error: err.Error()})
	}
	usr, err := svc.GetByID(ctx, uid)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return core.NewValidationError(errInvalidToken, core.FieldError{Field: "uid", Error: errInvalidToken.Error()})
		}
		return err
	}
	if err = verifyToken(usr, rp.Token); err != nil {
		return core.NewValidationError(err, core.FieldError{Field: "token", Error: err.Error()})
	}
	if err = usr.SetPassword(rp.Password); err != nil {
		return err
	}
	usr.UpdatedAt = time.Now().UTC()
	_, err = svc.repo.UpdateUser(ctx, usr, nil)
	return err
}

func (svc *service) Stats(ctx context.Context) (Stats, error) {
	users, err := svc.repo.CountUsers(ctx)
	if err != nil {
		return Stats{}, err
	}
	pending, err := svc.repo.CountPendingAccounts(ctx)
	if err != nil {
		return Stats{}, err
	}
	return Stats{Users: users, Pending: pending}, nil
}

// ------------------------------------------------------------------------

func (svc *service) sendRegistrationMails(acc PendingAccount) {
	svc.mailSvc.SendMessages(
		&core.EmailMessage{
			To:           []mail.Address{core.Conf.AdminEmail},
			Subject:      core.Conf.AppName + " - New account request",
			TemplateName: "admin-new-request",
			TemplateData: struct {
				SID       string
				Email     string
				ReviewURL string
			}{acc.SID, acc.Email, core.Conf.FrontendBaseURL + "/admin/accounts"},
		},
	)
}

func (svc *service) sendAccountApprovedMail(usr User) {
	svc.mailSvc.SendMessages(
		&core.EmailMessage{
			To:           []mail.Address{{Address: usr.Email}},
			Subject:      core.Conf.AppName + " - Welcome aboard!",
			TemplateName: "account-approved",
			TemplateData: struct {
				SID      string
				Credits  int
				LoginURL string
			}{usr.SID, usr.Credits, core.Conf.FrontendBaseURL + "/login"},
		},
	)
}

func (svc *service) sendAccountRejectedMail(acc PendingAccount, reason string) {
	svc.mailSvc.SendMessages(
		&core.EmailMessage{
			To:           []mail.Address{{Address: acc.Email}},
			Subject:      core.Conf.AppName + " - Account request declined",
			TemplateName: "account-rejected",
			TemplateData: struct {
				SID    string
				Reason string
			}{acc.SID, reason},
		},
	)
}

func (svc *service) sendPasswordResetMail(usr User) {
	svc.mailSvc.SendMessages(
		&core.EmailMessage{
			To:           []mail.Address{{Address: usr.Email}},
			Subject:      core.Conf.AppName + " - Password reset",
			TemplateName: "password-reset",
			TemplateData: struct {
				SID      string
				ResetURL string
			}{usr.SID, fmt.Sprintf("%s/password-reset?uid=%s&token=%s", core.Conf.FrontendBaseURL, encodeUID(usr), makeToken(usr))},
		},
	)
}

func decodePhoto(b64 string) ([]byte, error) {
	photo, err := core.DecodeBase64Payload(b64)
	if err != nil {
		return nil, errors.New("invalid base64 image data")
	}
	return photo, nil
}

func photoExt(fileName string) string {
	if ext := strings.ToLower(path.Ext(fileName)); ext != "" {
		return ext
	}
	return ".jpg"
}

func hashPassword(pwd string) ([]byte, error) {
	var u User
	if err := u.SetPassword(pwd); err != nil {
		return nil, err
	}
	return u.PasswordHash, nil
}

package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/edufacil/efs/core"
	"github.com/edufacil/efs/core/group"
	"github.com/edufacil/efs/core/user"
)

type authApi struct {
	svc user.Service
}

func registerAuthAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc user.Service) {
	api := authApi{svc: svc}

	ag := g.Group("/auth")

	// un-authed endpoints
	// TODO: rate limit `/password-reset` & `/password-reset-confirm`
	ag.POST("/register", api.register)
	ag.POST("/login", api.login)
	ag.POST("/password-reset", api.resetPassword)
	ag.POST("/password-reset-confirm", api.confirmPasswordReset)

	// authed endpoints
	tg := ag.Group("", jwt)
	tg.GET("/check", api.check)
	tg.POST("/token-refresh", api.refreshToken)
}

// Handlers

func (api *authApi) register(ctx echo.Context) error {
	var data user.NewAccount
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAccount")
	}
	if err := data.Validate(api.svc); err != nil {
		return err
	}

	acc, err := api.svc.Register(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "registering account")
	}
	return ctx.JSON(http.StatusCreated, acc)
}

func (api *authApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	usr, claims, err := authenticate(ctx, data.Email, data.Password, api.svc)
	if err != nil {
		return err
	}
	token, err := GenerateToken(claims)
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	return ctx.JSON(http.StatusOK, LoginResponse{Token: token, User: usr})
}

func (api *authApi) check(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.svc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *authApi) resetPassword(ctx echo.Context) error {
	var data PasswordResetRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to PasswordResetRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	if err := api.svc.RequestPasswordReset(data.Email); !(err == nil || errors.Cause(err) == user.ErrNotFound) {
		// do not return errors to attackers
		ctx.Logger().Errorf("%+v", errors.Wrap(err, "requesting password reset"))
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{
		Success: "If the email address supplied is associated with an active account on this system, " +
			"an email will arrive in your inbox shortly with instructions to reset your password.",
	})
}

func (api *authApi) confirmPasswordReset(ctx echo.Context) error {
	var data user.ResetUserPassword
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ResetUserPassword")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	if err := api.svc.ResetPassword(ctx.Request().Context(), data); err != nil {
		return errors.Wrap(err, "resetting password")
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "Password has been reset with the new password."})
}

func (api *authApi) refreshToken(ctx echo.Context) error {
	token, err := refreshToken(ctx, api.svc)
	if err != nil {
		return errors.Wrap(err, "refreshing token")
	}
	return ctx.JSON(http.StatusOK, TokenResponse{Token: token})
}

type profileApi struct {
	opts *Options
}

func registerProfileAPI(g *echo.Group, jwt echo.MiddlewareFunc, opts *Options) {
	api := profileApi{opts: opts}

	pg := g.Group("/profile", jwt)
	pg.GET("/me", api.retrieve)
	pg.PUT("/me", api.update)
	pg.PUT("/me/photo", api.setPhoto)

	dg := g.Group("/dashboard", jwt)
	dg.GET("/summary", api.summary)
}

func (api *profileApi) retrieve(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.opts.UserSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *profileApi) update(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.opts.UserSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data user.UpdateProfile
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateProfile")
	}
	if err = data.Validate(); err != nil {
		return err
	}

	usr, err = api.opts.UserSvc.UpdateProfile(ctx.Request().Context(), usr.SID, data)
	if err != nil {
		return errors.Wrap(err, "updating profile")
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *profileApi) setPhoto(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.opts.UserSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data PhotoRequest
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to PhotoRequest")
	}
	if err = data.Validate(); err != nil {
		return err
	}

	photo, err := core.DecodeBase64Payload(data.Photo)
	if err != nil {
		return core.NewValidationError(err, core.FieldError{Field: "photo", Error: err.Error()})
	}

	usr, err = api.opts.UserSvc.SetPhoto(ctx.Request().Context(), usr.SID, photo, data.FileName)
	if err != nil {
		return errors.Wrap(err, "setting photo")
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *profileApi) summary(ctx echo.Context) error {
	rctx := ctx.Request().Context()

	usr, err := getContextUser(ctx, api.opts.UserSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	courses, pendingCourses, err := api.opts.CourseSvc.Counts(rctx)
	if err != nil {
		return errors.Wrap(err, "counting courses")
	}

	var groupRequests int
	if _, err = api.opts.GroupSvc.Mine(rctx, usr.SID); err == nil {
		groupRequests = 1
	} else if errors.Cause(err) != group.ErrNotFound {
		return errors.Wrap(err, "finding group request")
	}

	qnrs, err := api.opts.QuestionnaireSvc.Mine(rctx, usr.SID)
	if err != nil {
		return errors.Wrap(err, "querying questionnaires")
	}

	materials, err := api.opts.MaterialSvc.CountBySID(rctx, usr.SID)
	if err != nil {
		return errors.Wrap(err, "counting materials")
	}

	summary := SummaryResponse{
		Credits:        usr.Credits,
		Courses:        courses,
		GroupRequests:  groupRequests,
		Questionnaires: len(qnrs),
		Materials:      materials,
	}
	if usr.IsAdmin() {
		stats, err := api.opts.UserSvc.Stats(rctx)
		if err != nil {
			return errors.Wrap(err, "querying user stats")
		}
		summary.PendingAccounts = stats.Pending
		summary.PendingCourses = pendingCourses
	}
	return ctx.JSON(http.StatusOK, summary)
}

type (
	LoginRequest struct {
		Email    string `json:"email" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	LoginResponse struct {
		Token string    `json:"token"`
		User  user.User `json:"user"`
	}

	TokenResponse struct {
		Token string `json:"token"`
	}

	PasswordResetRequest struct {
		Email string `json:"email" validate:"required,email"`
	}

	SuccessResponse struct {
		Success string `json:"success"`
	}

	PhotoRequest struct {
		Photo    string `json:"photo" validate:"required"` // base64 payload
		FileName string `json:"file_name"`
	}

	SummaryResponse struct {
		Credits        int `json:"credits"`
		Courses        int `json:"courses"`
		GroupRequests  int `json:"group_requests"`
		Questionnaires int `json:"questionnaires"`
		Materials      int `json:"materials"`

		// admin only
		PendingAccounts int `json:"pending_accounts,omitempty"`
		PendingCourses  int `json:"pending_courses,omitempty"`
	}
)

func (lr *LoginRequest) Validate() error {
	lr.Email = core.CleanString(lr.Email, true /* lower */)
	return core.Validate.Struct(lr)
}

func (pr *PasswordResetRequest) Validate() error {
	pr.Email = core.CleanString(pr.Email, true /* lower */)
	return core.Validate.Struct(pr)
}

func (pr *PhotoRequest) Validate() error {
	pr.FileName = core.CleanString(pr.FileName)
	if pr.FileName == "" {
		pr.FileName = "photo.jpg"
	}
	return core.Validate.Struct(pr)
}

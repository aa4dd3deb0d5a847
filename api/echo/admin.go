package echoapi

import (
	"net/http"
	"sort"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/edufacil/efs/core"
	"github.com/edufacil/efs/core/course"
	"github.com/edufacil/efs/core/user"
)

type adminApi struct {
	opts *Options
}

func registerAdminAPI(g *echo.Group, jwt echo.MiddlewareFunc, opts *Options) {
	api := adminApi{opts: opts}

	ag := g.Group("/admin", jwt, adminMiddleware())

	ag.GET("/accounts/pending", api.pendingAccounts)
	ag.POST("/accounts/pending/:sid/approve", api.approveAccount)
	ag.POST("/accounts/pending/:sid/reject", api.rejectAccount)

	ag.GET("/courses/pending", api.pendingCourses)
	ag.POST("/courses/pending/:id/approve", api.approveCourse)
	ag.POST("/courses/pending/:id/reject", api.rejectCourse)

	ag.GET("/users", api.queryUsers)
	ag.DELETE("/users", api.destroyUsers)

	ag.GET("/stats", api.stats)
}

// Handlers

func (api *adminApi) pendingAccounts(ctx echo.Context) error {
	accs, err := api.opts.UserSvc.PendingAccounts(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying pending accounts")
	}
	if accs == nil {
		accs = []user.PendingAccount{}
	}
	return ctx.JSON(http.StatusOK, accs)
}

func (api *adminApi) approveAccount(ctx echo.Context) error {
	usr, err := api.opts.UserSvc.Approve(ctx.Request().Context(), ctx.Param("sid"))
	if err != nil {
		if errors.Cause(err) == user.ErrNotPending {
			return errHttpNotFound
		}
		return errors.Wrap(err, "approving account")
	}
	return ctx.JSON(http.StatusCreated, usr)
}

func (api *adminApi) rejectAccount(ctx echo.Context) error {
	var data RejectRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to RejectRequest")
	}
	data.Reason = core.CleanString(data.Reason)

	if err := api.opts.UserSvc.Reject(ctx.Request().Context(), ctx.Param("sid"), data.Reason); err != nil {
		if errors.Cause(err) == user.ErrNotPending {
			return errHttpNotFound
		}
		return errors.Wrap(err, "rejecting account")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *adminApi) pendingCourses(ctx echo.Context) error {
	pcs, err := api.opts.CourseSvc.PendingCourses(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying pending courses")
	}
	if pcs == nil {
		pcs = []course.PendingCourse{}
	}
	return ctx.JSON(http.StatusOK, pcs)
}

func (api *adminApi) approveCourse(ctx echo.Context) error {
	crs, err := api.opts.CourseSvc.Approve(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == course.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "approving course")
	}
	return ctx.JSON(http.StatusCreated, crs)
}

func (api *adminApi) rejectCourse(ctx echo.Context) error {
	if err := api.opts.CourseSvc.Reject(ctx.Request().Context(), ctx.Param("id")); err != nil {
		if errors.Cause(err) == course.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "rejecting course")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *adminApi) queryUsers(ctx echo.Context) error {
	filter := new(user.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []user.User{})
	}
	ordering := new(Ordering)
	ordering.Bind(ctx)

	users, err := api.opts.UserSvc.Filter(ctx.Request().Context(), *filter, ordering.Orderings...)
	if err != nil {
		return errors.Wrap(err, "querying users")
	}
	if users == nil {
		users = []user.User{}
	}
	return ctx.JSON(http.StatusOK, users)
}

func (api *adminApi) destroyUsers(ctx echo.Context) error {
	var query DestroyUsersRequest
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to DestroyUsersRequest")
	}
	if query.SIDs == nil {
		return ctx.NoContent(http.StatusNoContent)
	}

	// ctxUser cannot delete themselves
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	sort.Strings(query.SIDs)
	if i := sort.SearchStrings(query.SIDs, claims.SID); i < len(query.SIDs) {
		if match := query.SIDs[i]; claims.SID == match {
			return errHttpForbidden
		}
	}

	if err = api.opts.UserSvc.Delete(ctx.Request().Context(), query.SIDs...); err != nil {
		return errors.Wrap(err, "deleting users")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *adminApi) stats(ctx echo.Context) error {
	rctx := ctx.Request().Context()

	usrStats, err := api.opts.UserSvc.Stats(rctx)
	if err != nil {
		return errors.Wrap(err, "querying user stats")
	}
	courses, pendingCourses, err := api.opts.CourseSvc.Counts(rctx)
	if err != nil {
		return errors.Wrap(err, "counting courses")
	}
	groups, err := api.opts.GroupSvc.Count(rctx)
	if err != nil {
		return errors.Wrap(err, "counting group requests")
	}
	qnrs, err := api.opts.QuestionnaireSvc.Count(rctx)
	if err != nil {
		return errors.Wrap(err, "counting questionnaires")
	}
	materials, err := api.opts.MaterialSvc.Count(rctx)
	if err != nil {
		return errors.Wrap(err, "counting materials")
	}

	return ctx.JSON(http.StatusOK, StatsResponse{
		Users:           usrStats.Users,
		PendingAccounts: usrStats.Pending,
		Courses:         courses,
		PendingCourses:  pendingCourses,
		GroupRequests:   groups,
		Questionnaires:  qnrs,
		Materials:       materials,
	})
}

type (
	RejectRequest struct {
		Reason string `json:"reason"`
	}

	DestroyUsersRequest struct {
		SIDs []string `query:"sid"`
	}

	StatsResponse struct {
		Users           int `json:"users"`
		PendingAccounts int `json:"pending_accounts"`
		Courses         int `json:"courses"`
		PendingCourses  int `json:"pending_courses"`
		GroupRequests   int `json:"group_requests"`
		Questionnaires  int `json:"questionnaires"`
		Materials       int `json:"materials"`
	}
)

package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/edufacil/efs/core/group"
)

type groupApi struct {
	svc group.Service
}

func registerGroupAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc group.Service) {
	api := groupApi{svc: svc}

	gg := g.Group("/groups", jwt)
	gg.GET("/requests", api.query)
	gg.POST("/requests", api.create)
	gg.GET("/requests/mine", api.mine)
	gg.DELETE("/requests/:id", api.destroy)
	gg.POST("/requests/:id/invite", api.invite)
}

// Handlers

func (api *groupApi) query(ctx echo.Context) error {
	reqs, err := api.svc.QueryActive(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying group requests")
	}
	if reqs == nil {
		reqs = []group.Request{}
	}
	return ctx.JSON(http.StatusOK, reqs)
}

func (api *groupApi) create(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var data group.NewRequest
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewRequest")
	}
	if err = data.Validate(); err != nil {
		return err
	}

	req, err := api.svc.Create(ctx.Request().Context(), claims.SID, data)
	if err != nil {
		return errors.Wrap(err, "creating group request")
	}
	return ctx.JSON(http.StatusCreated, req)
}

func (api *groupApi) mine(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	req, err := api.svc.Mine(ctx.Request().Context(), claims.SID)
	if err != nil {
		if errors.Cause(err) == group.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding group request")
	}
	return ctx.JSON(http.StatusOK, req)
}

func (api *groupApi) destroy(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	err = api.svc.Delete(ctx.Request().Context(), claims.SID, ctx.Param("id"), claims.IsAdmin)
	switch errors.Cause(err) {
	case nil:
		return ctx.NoContent(http.StatusNoContent)
	case group.ErrNotFound:
		return errHttpNotFound
	case group.ErrNotOwner:
		return errHttpForbidden
	default:
		return errors.Wrap(err, "deleting group request")
	}
}

func (api *groupApi) invite(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var data group.Invitation
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Invitation")
	}
	if err = data.Validate(); err != nil {
		return err
	}

	if err = api.svc.Invite(ctx.Request().Context(), ctx.Param("id"), claims.SID, data); err != nil {
		if errors.Cause(err) == group.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "sending invitation")
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "Invitation sent."})
}

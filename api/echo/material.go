package echoapi

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/edufacil/efs/core/material"
)

type materialApi struct {
	svc material.Service
}

func registerMaterialAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc material.Service) {
	api := materialApi{svc: svc}

	mg := g.Group("/materials", jwt)
	mg.GET("/course/:code", api.byCourse)
	mg.GET("/:id/download", api.download)
	mg.POST("", api.upload, adminMiddleware())
	mg.DELETE("/:id", api.destroy, adminMiddleware())
}

// Handlers

func (api *materialApi) byCourse(ctx echo.Context) error {
	materials, err := api.svc.ByCourse(ctx.Request().Context(), ctx.Param("code"))
	if err != nil {
		return errors.Wrap(err, "querying materials")
	}
	if materials == nil {
		materials = []material.Material{}
	}
	return ctx.JSON(http.StatusOK, materials)
}

func (api *materialApi) download(ctx echo.Context) error {
	mat, payload, err := api.svc.Download(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == material.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "downloading material")
	}
	defer payload.Close()

	ctx.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", mat.FileName))
	return ctx.Stream(http.StatusOK, mat.ContentType, payload)
}

func (api *materialApi) upload(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var data material.NewMaterial
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewMaterial")
	}
	if err = data.Validate(); err != nil {
		return err
	}

	mat, err := api.svc.Upload(ctx.Request().Context(), claims.SID, data)
	if err != nil {
		return errors.Wrap(err, "uploading material")
	}
	return ctx.JSON(http.StatusCreated, mat)
}

func (api *materialApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		if errors.Cause(err) == material.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "deleting material")
	}
	return ctx.NoContent(http.StatusNoContent)
}

package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/edufacil/efs/core/course"
	"github.com/edufacil/efs/core/material"
)

type courseApi struct {
	svc       course.Service
	materials material.Service
}

func registerCourseAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc course.Service, matSvc material.Service) {
	api := courseApi{svc: svc, materials: matSvc}

	cg := g.Group("/courses")

	// the catalog is public
	cg.GET("", api.courseMap)
	cg.GET("/all", api.queryAll)
	cg.GET("/:code", api.retrieve)

	// authed endpoints
	ag := cg.Group("", jwt)
	ag.POST("/request", api.request)
	ag.PUT("/:code", api.update, adminMiddleware())
}

// Handlers

func (api *courseApi) courseMap(ctx echo.Context) error {
	cmap, err := api.svc.CourseMap(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying course map")
	}
	return ctx.JSON(http.StatusOK, cmap)
}

func (api *courseApi) queryAll(ctx echo.Context) error {
	courses, err := api.svc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying courses")
	}
	if courses == nil {
		courses = []course.Course{}
	}
	return ctx.JSON(http.StatusOK, courses)
}

// retrieve echoes the optional `seq` query param back so clients can match
// responses to requests and discard stale ones.
func (api *courseApi) retrieve(ctx echo.Context) error {
	rctx := ctx.Request().Context()
	seq := ctx.QueryParam("seq")

	detail, err := api.svc.GetDetail(rctx, ctx.Param("code"))
	if err != nil {
		if errors.Cause(err) == course.ErrNotFound {
			return ctx.JSON(http.StatusNotFound, CourseDetailResponse{Seq: seq, Materials: []material.Material{}})
		}
		return errors.Wrap(err, "querying course detail")
	}

	materials, err := api.materials.ByCourse(rctx, detail.Code)
	if err != nil {
		return errors.Wrap(err, "querying course materials")
	}
	if materials == nil {
		materials = []material.Material{}
	}
	return ctx.JSON(http.StatusOK, CourseDetailResponse{Detail: detail, Materials: materials, Seq: seq})
}

func (api *courseApi) request(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var data course.NewCourseRequest
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCourseRequest")
	}
	if err = data.Validate(api.svc); err != nil {
		return err
	}

	pc, err := api.svc.Request(ctx.Request().Context(), claims.SID, data)
	if err != nil {
		return errors.Wrap(err, "requesting course")
	}
	return ctx.JSON(http.StatusCreated, pc)
}

func (api *courseApi) update(ctx echo.Context) error {
	var data course.UpdateCourse
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateCourse")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	detail, err := api.svc.Update(ctx.Request().Context(), ctx.Param("code"), data)
	if err != nil {
		if errors.Cause(err) == course.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "updating course")
	}
	return ctx.JSON(http.StatusOK, detail)
}

type CourseDetailResponse struct {
	course.Detail
	Materials []material.Material `json:"materials"`
	Seq       string              `json:"seq,omitempty"`
}

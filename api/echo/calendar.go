package echoapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/edufacil/efs/core/timetable"
)

// defaultProjectionWeeks is the forward window projected when the client
// does not ask for a specific one.
const defaultProjectionWeeks = 2

type calendarApi struct {
	svc timetable.Service
}

func registerCalendarAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc timetable.Service) {
	api := calendarApi{svc: svc}

	cg := g.Group("/calendar")

	cg.GET("/courses", api.courses)
	cg.GET("/events", api.events)

	// authed endpoints
	ag := cg.Group("", jwt)
	ag.GET("/mytimetable", api.mySelections)
	ag.POST("/save", api.save)
	ag.GET("/myevents", api.myEvents)
}

// Handlers

func (api *calendarApi) courses(ctx echo.Context) error {
	selections, err := api.svc.CalendarCourses(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying calendar courses")
	}
	if selections == nil {
		selections = []timetable.SelectedSession{}
	}
	return ctx.JSON(http.StatusOK, selections)
}

func (api *calendarApi) events(ctx echo.Context) error {
	events, err := api.svc.Events(ctx.Request().Context(), time.Now(), projectionWeeks(ctx))
	if err != nil {
		return errors.Wrap(err, "projecting events")
	}
	if events == nil {
		events = []timetable.Event{}
	}
	return ctx.JSON(http.StatusOK, events)
}

func (api *calendarApi) mySelections(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	selections, err := api.svc.Selections(ctx.Request().Context(), claims.SID)
	if err != nil {
		return errors.Wrap(err, "loading selections")
	}
	if selections == nil {
		selections = []timetable.SelectedSession{}
	}
	return ctx.JSON(http.StatusOK, selections)
}

func (api *calendarApi) save(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var selections []timetable.SelectedSession
	if err = ctx.Bind(&selections); err != nil {
		return errors.Wrap(err, "binding to selections")
	}

	if err = api.svc.SaveSelections(ctx.Request().Context(), claims.SID, selections); err != nil {
		return errors.Wrap(err, "saving selections")
	}
	return ctx.JSON(http.StatusOK, selections)
}

func (api *calendarApi) myEvents(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	events, err := api.svc.MyEvents(ctx.Request().Context(), claims.SID, time.Now(), projectionWeeks(ctx))
	if err != nil {
		return errors.Wrap(err, "projecting my events")
	}
	if events == nil {
		events = []timetable.Event{}
	}
	return ctx.JSON(http.StatusOK, events)
}

func projectionWeeks(ctx echo.Context) int {
	if weeks, err := strconv.Atoi(ctx.QueryParam("weeks")); err == nil && weeks > 0 && weeks <= 52 {
		return weeks
	}
	return defaultProjectionWeeks
}

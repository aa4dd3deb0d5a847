package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/edufacil/efs/core"
	"github.com/edufacil/efs/core/questionnaire"
)

type questionnaireApi struct {
	svc questionnaire.Service
}

func registerQuestionnaireAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc questionnaire.Service) {
	api := questionnaireApi{svc: svc}

	qg := g.Group("/questionnaires", jwt)
	qg.GET("/active", api.queryActive)
	qg.GET("/mine", api.mine)
	qg.POST("", api.create)
	qg.POST("/:id/fill", api.fill)
}

// Handlers

func (api *questionnaireApi) queryActive(ctx echo.Context) error {
	qnrs, err := api.svc.QueryActive(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying questionnaires")
	}
	if qnrs == nil {
		qnrs = []questionnaire.Questionnaire{}
	}
	return ctx.JSON(http.StatusOK, qnrs)
}

func (api *questionnaireApi) mine(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	qnrs, err := api.svc.Mine(ctx.Request().Context(), claims.SID)
	if err != nil {
		return errors.Wrap(err, "querying questionnaires")
	}
	if qnrs == nil {
		qnrs = []questionnaire.Questionnaire{}
	}
	return ctx.JSON(http.StatusOK, qnrs)
}

func (api *questionnaireApi) create(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var data questionnaire.NewQuestionnaire
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewQuestionnaire")
	}
	if err = data.Validate(); err != nil {
		return err
	}

	qnr, err := api.svc.Create(ctx.Request().Context(), claims.SID, data)
	if err != nil {
		return errors.Wrap(err, "creating questionnaire")
	}
	return ctx.JSON(http.StatusCreated, qnr)
}

func (api *questionnaireApi) fill(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	qnr, err := api.svc.Fill(ctx.Request().Context(), ctx.Param("id"), claims.SID)
	switch errors.Cause(err) {
	case nil:
		return ctx.JSON(http.StatusOK, qnr)
	case questionnaire.ErrNotFound:
		return errHttpNotFound
	case questionnaire.ErrOwnQuestionnaire, questionnaire.ErrAlreadyFilled, questionnaire.ErrNotActive:
		return core.NewValidationError(errors.Cause(err))
	default:
		return errors.Wrap(err, "filling questionnaire")
	}
}

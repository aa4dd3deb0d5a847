package echoapi_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/edufacil/efs/core/questionnaire"
	"github.com/edufacil/efs/core/user"
)

func questionnaireBody(target int) questionnaire.NewQuestionnaire {
	return questionnaire.NewQuestionnaire{
		Title:           "Commute habits survey",
		Link:            "https://forms.test.test/abc123",
		TargetResponses: target,
	}
}

func TestQuestionnaireCreate(t *testing.T) {
	app, env := setup(t)
	usr := createStudent(t, env, "20123456")
	token := getToken(t, usr)

	req, rec := newAuthRequest(http.MethodPost, "/v1/questionnaires", token, marshallObj(t, questionnaireBody(10)))
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusCreated, rec.Code)

	var qnr questionnaire.Questionnaire
	decodeBody(t, rec, &qnr)
	assert.Equal(t, usr.SID, qnr.SID)
	assert.Equal(t, questionnaire.StatusActive, qnr.Status)

	// posting costs one credit
	usr, err := env.usrSvc.GetBySID(context.Background(), usr.SID)
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, user.StartingCredits-questionnaire.CreateCost, usr.Credits)

	// a second active questionnaire is rejected
	req, rec = newAuthRequest(http.MethodPost, "/v1/questionnaires", token, marshallObj(t, questionnaireBody(10)))
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestQuestionnaireCreateWithoutCredit(t *testing.T) {
	app, env := setup(t)
	usr := createUser(t, env, "20123456", "broke@connect.test.test", "Secr3tPass!", user.StudentRoles, 0)

	req, rec := newAuthRequest(http.MethodPost, "/v1/questionnaires", getToken(t, usr), marshallObj(t, questionnaireBody(10)))
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "insufficient credits")
}

func TestQuestionnaireFill(t *testing.T) {
	app, env := setup(t)
	owner := createStudent(t, env, "20123456")
	filler := createStudent(t, env, "20654321")

	req, rec := newAuthRequest(http.MethodPost, "/v1/questionnaires", getToken(t, owner), marshallObj(t, questionnaireBody(2)))
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusCreated, rec.Code)
	var qnr questionnaire.Questionnaire
	decodeBody(t, rec, &qnr)

	// the creator cannot fill their own questionnaire
	req, rec = newAuthRequest(http.MethodPost, "/v1/questionnaires/"+qnr.ID+"/fill", getToken(t, owner))
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req, rec = newAuthRequest(http.MethodPost, "/v1/questionnaires/"+qnr.ID+"/fill", getToken(t, filler))
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	decodeBody(t, rec, &qnr)
	assert.Equal(t, 1, qnr.Responses)

	// filling pays the filler
	got, err := env.usrSvc.GetBySID(context.Background(), filler.SID)
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, user.StartingCredits+questionnaire.FillReward, got.Credits)

	// a second fill by the same user is rejected
	req, rec = newAuthRequest(http.MethodPost, "/v1/questionnaires/"+qnr.ID+"/fill", getToken(t, filler))
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// reaching the target completes the questionnaire
	third := createStudent(t, env, "20999999")
	req, rec = newAuthRequest(http.MethodPost, "/v1/questionnaires/"+qnr.ID+"/fill", getToken(t, third))
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	decodeBody(t, rec, &qnr)
	assert.Equal(t, questionnaire.StatusCompleted, qnr.Status)

	// completed questionnaires no longer show as active
	req, rec = newAuthRequest(http.MethodGet, "/v1/questionnaires/active", getToken(t, filler))
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	var active []questionnaire.Questionnaire
	decodeBody(t, rec, &active)
	assert.Empty(t, active)

	// but still list under the owner's own
	req, rec = newAuthRequest(http.MethodGet, "/v1/questionnaires/mine", getToken(t, owner))
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	var mine []questionnaire.Questionnaire
	decodeBody(t, rec, &mine)
	assert.Len(t, mine, 1)
}

func TestQuestionnaireFillUnknown(t *testing.T) {
	app, env := setup(t)
	usr := createStudent(t, env, "20123456")

	req, rec := newAuthRequest(http.MethodPost, "/v1/questionnaires/b0000000-0000-0000-0000-000000000000/fill", getToken(t, usr))
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

package echoapi_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/edufacil/efs/core/group"
	consolemail "github.com/edufacil/efs/services/email/console"
)

func groupRequestBody() group.NewRequest {
	return group.NewRequest{
		Major:        "Computer Science",
		Description:  "Group project teammates wanted",
		ContactEmail: "owner@connect.test.test",
		DesiredMates: 3,
	}
}

func TestGroupRequestLifecycle(t *testing.T) {
	app, env := setup(t)
	usr := createStudent(t, env, "20123456")
	token := getToken(t, usr)

	// anonymous users see nothing
	req, rec := newRequest(http.MethodGet, "/v1/groups/requests")
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// create
	req, rec = newAuthRequest(http.MethodPost, "/v1/groups/requests", token, marshallObj(t, groupRequestBody()))
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusCreated, rec.Code)

	var created group.Request
	decodeBody(t, rec, &created)
	assert.Equal(t, usr.SID, created.SID)

	// only one active request per user
	req, rec = newAuthRequest(http.MethodPost, "/v1/groups/requests", token, marshallObj(t, groupRequestBody()))
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// list + mine
	req, rec = newAuthRequest(http.MethodGet, "/v1/groups/requests", token)
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	var reqs []group.Request
	decodeBody(t, rec, &reqs)
	assert.Len(t, reqs, 1)

	req, rec = newAuthRequest(http.MethodGet, "/v1/groups/requests/mine", token)
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	// another user cannot delete it
	other := createStudent(t, env, "20654321")
	req, rec = newAuthRequest(http.MethodDelete, "/v1/groups/requests/"+created.ID, getToken(t, other))
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// the owner can
	req, rec = newAuthRequest(http.MethodDelete, "/v1/groups/requests/"+created.ID, token)
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	req, rec = newAuthRequest(http.MethodGet, "/v1/groups/requests/mine", token)
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGroupAdminDelete(t *testing.T) {
	app, env := setup(t)
	usr := createStudent(t, env, "20123456")
	admin := createAdmin(t, env, "admin1")

	req, rec := newAuthRequest(http.MethodPost, "/v1/groups/requests", getToken(t, usr), marshallObj(t, groupRequestBody()))
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusCreated, rec.Code)
	var created group.Request
	decodeBody(t, rec, &created)

	req, rec = newAuthRequest(http.MethodDelete, "/v1/groups/requests/"+created.ID, getToken(t, admin))
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestGroupInvite(t *testing.T) {
	app, env := setup(t)
	owner := createStudent(t, env, "20123456")
	inviter := createStudent(t, env, "20654321")

	req, rec := newAuthRequest(http.MethodPost, "/v1/groups/requests", getToken(t, owner), marshallObj(t, groupRequestBody()))
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusCreated, rec.Code)
	var created group.Request
	decodeBody(t, rec, &created)

	sentBefore := len(consolemail.SentMessages)

	inv := group.Invitation{Message: "Join us!", ContactEmail: inviter.Email}
	req, rec = newAuthRequest(http.MethodPost, "/v1/groups/requests/"+created.ID+"/invite", getToken(t, inviter), marshallObj(t, inv))
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	if assert.Greater(t, len(consolemail.SentMessages), sentBefore) {
		msg := consolemail.SentMessages[len(consolemail.SentMessages)-1]
		assert.Equal(t, created.ContactEmail, msg.To[0].Address)
		assert.Contains(t, msg.Subject, "invitation")
	}

	// unknown request 404s
	req, rec = newAuthRequest(http.MethodPost, "/v1/groups/requests/b0000000-0000-0000-0000-000000000000/invite", getToken(t, inviter), marshallObj(t, inv))
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

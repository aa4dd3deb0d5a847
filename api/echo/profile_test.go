package echoapi_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/edufacil/efs/core/user"
)

func TestProfileRetrieve(t *testing.T) {
	app, env := setup(t)
	usr := createStudent(t, env, "20123456")

	req, rec := newAuthRequest(http.MethodGet, "/v1/profile/me", getToken(t, usr))
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	var got user.User
	decodeBody(t, rec, &got)
	assert.Equal(t, usr.SID, got.SID)
	assert.Equal(t, user.StartingCredits, got.Credits)
}

func TestProfileUpdate(t *testing.T) {
	app, env := setup(t)
	usr := createStudent(t, env, "20123456")

	gpa := 3.5
	body := marshallObj(t, user.UpdateProfile{
		Phone:       "+852 9123 4567",
		Major:       "Computer Science",
		YearOfStudy: 2,
		GPA:         &gpa,
		Skills:      []string{"Go", "SQL"},
		AboutMe:     "Hi there",
	})
	req, rec := newAuthRequest(http.MethodPut, "/v1/profile/me", getToken(t, usr), body)
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	var got user.User
	decodeBody(t, rec, &got)
	assert.Equal(t, "Computer Science", got.Major)
	assert.Equal(t, 2, got.YearOfStudy)
	assert.Equal(t, []string{"Go", "SQL"}, got.Skills)

	// out-of-range year is rejected
	body = marshallObj(t, user.UpdateProfile{YearOfStudy: 12})
	req, rec = newAuthRequest(http.MethodPut, "/v1/profile/me", getToken(t, usr), body)
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProfileSetPhoto(t *testing.T) {
	app, env := setup(t)
	usr := createStudent(t, env, "20123456")

	body := marshallObj(t, map[string]string{"photo": cardPhoto, "file_name": "me.png"})
	req, rec := newAuthRequest(http.MethodPut, "/v1/profile/me/photo", getToken(t, usr), body)
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	var got user.User
	decodeBody(t, rec, &got)
	assert.NotEmpty(t, got.PhotoKey)
	assert.True(t, env.files.Has(got.PhotoKey))
}

func TestDashboardSummary(t *testing.T) {
	app, env := setup(t)
	usr := createStudent(t, env, "20123456")
	createCourse(t, env, "ENG101", "English I")

	req, rec := newAuthRequest(http.MethodGet, "/v1/dashboard/summary", getToken(t, usr))
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	var got struct {
		Credits         int `json:"credits"`
		Courses         int `json:"courses"`
		GroupRequests   int `json:"group_requests"`
		Questionnaires  int `json:"questionnaires"`
		Materials       int `json:"materials"`
		PendingAccounts int `json:"pending_accounts"`
	}
	decodeBody(t, rec, &got)
	assert.Equal(t, user.StartingCredits, got.Credits)
	assert.Equal(t, 1, got.Courses)
	assert.Equal(t, 0, got.GroupRequests)
	assert.Equal(t, 0, got.Questionnaires)
	assert.Equal(t, 0, got.Materials)
	assert.Equal(t, 0, got.PendingAccounts) // not an admin
}

package echoapi_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/edufacil/efs/core/course"
)

func eng101Sessions() []course.SessionInput {
	return []course.SessionInput{
		{ClassNo: "L1", Day: "Mon", StartTime: "09:30", EndTime: "10:50", Room: "ADC302"},
		{ClassNo: "L1", Day: "Wed", StartTime: "09:30", EndTime: "10:50", Room: "ADC302"},
		{ClassNo: "L2", Day: "Fri", StartTime: "14:30", EndTime: "15:50", Room: "CIT104"},
	}
}

func TestCourseMapAndList(t *testing.T) {
	app, env := setup(t)
	createCourse(t, env, "ENG101", "English I")
	createCourse(t, env, "MAT201", "Calculus II")

	req, rec := newRequest(http.MethodGet, "/v1/courses")
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	var cmap map[string]string
	decodeBody(t, rec, &cmap)
	assert.Equal(t, map[string]string{"ENG101": "English I", "MAT201": "Calculus II"}, cmap)

	req, rec = newRequest(http.MethodGet, "/v1/courses/all")
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	var courses []course.Course
	decodeBody(t, rec, &courses)
	assert.Len(t, courses, 2)
}

func TestCourseDetail(t *testing.T) {
	app, env := setup(t)
	createCourse(t, env, "ENG101", "English I", eng101Sessions()...)

	req, rec := newRequest(http.MethodGet, "/v1/courses/ENG101?seq=42")
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	var got struct {
		Code      string                   `json:"code"`
		Title     string                   `json:"title"`
		Groups    []map[string]interface{} `json:"groups"`
		Materials []interface{}            `json:"materials"`
		Seq       string                   `json:"seq"`
	}
	decodeBody(t, rec, &got)
	assert.Equal(t, "ENG101", got.Code)
	assert.Equal(t, "English I", got.Title)
	assert.Len(t, got.Groups, 2) // L1 (two meetings), L2
	assert.Equal(t, "42", got.Seq)
	assert.NotNil(t, got.Materials)
}

func TestCourseDetailNotFound(t *testing.T) {
	app, _ := setup(t)

	req, rec := newRequest(http.MethodGet, "/v1/courses/NOPE101?seq=7")
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	// the empty shape still echoes seq so clients can discard it
	assert.Contains(t, rec.Body.String(), `"seq":"7"`)
}

func TestCourseRequest(t *testing.T) {
	app, env := setup(t)
	usr := createStudent(t, env, "20123456")

	body := marshallObj(t, course.NewCourseRequest{Code: "PHY101", Title: "Physics I"})
	req, rec := newAuthRequest(http.MethodPost, "/v1/courses/request", getToken(t, usr), body)
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusCreated, rec.Code)

	var pc course.PendingCourse
	decodeBody(t, rec, &pc)
	assert.Equal(t, "PHY101", pc.Code)
	assert.Equal(t, usr.SID, pc.RequestedBy)

	// duplicate request is rejected
	req, rec = newAuthRequest(http.MethodPost, "/v1/courses/request", getToken(t, usr), body)
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// anonymous users cannot request
	req, rec = newRequest(http.MethodPost, "/v1/courses/request", body)
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// lowercase code fails validation
	body = marshallObj(t, course.NewCourseRequest{Code: "phy102", Title: "Physics II"})
	req, rec = newAuthRequest(http.MethodPost, "/v1/courses/request", getToken(t, usr), body)
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCourseUpdate(t *testing.T) {
	app, env := setup(t)
	createCourse(t, env, "ENG101", "English I")
	student := createStudent(t, env, "20123456")
	admin := createAdmin(t, env, "admin1")

	body := marshallObj(t, course.UpdateCourse{
		Description: "Foundations of academic English.",
		Sessions:    eng101Sessions(),
	})

	// students may not edit courses
	req, rec := newAuthRequest(http.MethodPut, "/v1/courses/ENG101", getToken(t, student), body)
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req, rec = newAuthRequest(http.MethodPut, "/v1/courses/ENG101", getToken(t, admin), body)
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	var got course.Detail
	decodeBody(t, rec, &got)
	assert.Equal(t, "Foundations of academic English.", got.Description)
	assert.Len(t, got.Groups, 2)

	// a bogus weekday is rejected
	body = marshallObj(t, course.UpdateCourse{
		Sessions: []course.SessionInput{{ClassNo: "L1", Day: "Funday", StartTime: "09:30", EndTime: "10:50"}},
	})
	req, rec = newAuthRequest(http.MethodPut, "/v1/courses/ENG101", getToken(t, admin), body)
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

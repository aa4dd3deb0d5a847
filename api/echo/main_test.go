package echoapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	. "github.com/edufacil/efs/api/echo"
	"github.com/edufacil/efs/core"
	"github.com/edufacil/efs/core/course"
	"github.com/edufacil/efs/core/group"
	"github.com/edufacil/efs/core/material"
	"github.com/edufacil/efs/core/questionnaire"
	"github.com/edufacil/efs/core/timetable"
	"github.com/edufacil/efs/core/user"
	consolemail "github.com/edufacil/efs/services/email/console"
	"github.com/edufacil/efs/services/filestore"
	logsvc "github.com/edufacil/efs/services/logger"
	inmemdb "github.com/edufacil/efs/storage/database/inmem"
)

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

type testEnv struct {
	usrRepo user.Repository
	usrSvc  user.Service
	crsSvc  course.Service
	files   *filestore.InMemStore
}

func setup(t *testing.T) (Server, *testEnv) {
	t.Helper()

	db, err := inmemdb.Open()
	if err != nil {
		t.Fatal(err)
	}

	mailSvc := consolemail.NewService(core.Conf.AppName, core.Conf.DefaultFromEmail.Address)
	files := filestore.NewInMemStore()
	logger := logsvc.NewRollbarLogger(log.New(os.Stdout, "TEST : ", log.LstdFlags), core.Conf)
	logger.Enable(false)

	usrRepo := inmemdb.NewUserRepository(db)
	crsRepo := inmemdb.NewCourseRepository(db)

	usrSvc := user.NewServiceMock(usrRepo, mailSvc, files)
	crsSvc := course.NewService(crsRepo)

	app := NewServer(&Options{
		DisableReqLogs:   true,
		Logger:           logger,
		UserSvc:          usrSvc,
		CourseSvc:        crsSvc,
		TimetableSvc:     timetable.NewService(crsSvc, inmemdb.NewTimetableRepository(db)),
		GroupSvc:         group.NewService(inmemdb.NewGroupRepository(db), mailSvc),
		QuestionnaireSvc: questionnaire.NewService(db, inmemdb.NewQuestionnaireRepository(db), usrRepo),
		MaterialSvc:      material.NewService(inmemdb.NewMaterialRepository(db), files),
	})
	env := &testEnv{usrRepo: usrRepo, usrSvc: usrSvc, crsSvc: crsSvc, files: files}
	return app, env
}

type httpErr struct {
	Error string `json:"error"`
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func getToken(t *testing.T, usr user.User) string {
	t.Helper()
	token, err := GenerateToken(GetUserClaims(usr))
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func marshallObj(t *testing.T, obj interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshallObj() failed: %v", err)
	}
	return data
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decoding response body %q: %v", rec.Body.String(), err)
	}
}

func createUser(t *testing.T, env *testEnv, sid, email, pwd string, roles []string, credits int) user.User {
	t.Helper()

	now := time.Now().UTC()
	usr := user.User{
		SID:       sid,
		Email:     email,
		Roles:     roles,
		Credits:   credits,
		CreatedAt: now,
		UpdatedAt: now,
	}
	usr.SetActive(true)
	if err := usr.SetPassword(pwd); err != nil {
		t.Fatal(err)
	}

	usr, err := env.usrRepo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatal(err)
	}
	return usr
}

func createStudent(t *testing.T, env *testEnv, sid string) user.User {
	t.Helper()
	return createUser(t, env, sid, sid+"@connect.test.test", "Secr3tPass!", user.StudentRoles, user.StartingCredits)
}

func createAdmin(t *testing.T, env *testEnv, sid string) user.User {
	t.Helper()
	return createUser(t, env, sid, sid+"@test.test", "Secr3tPass!", user.AdminRoles, 0)
}

func createCourse(t *testing.T, env *testEnv, code, title string, sessions ...course.SessionInput) course.Detail {
	t.Helper()

	admin := createAdmin(t, env, "crs-admin-"+code)
	pc, err := env.crsSvc.Request(context.Background(), admin.SID, course.NewCourseRequest{Code: code, Title: title})
	if err != nil {
		t.Fatal(err)
	}
	if _, err = env.crsSvc.Approve(context.Background(), pc.ID); err != nil {
		t.Fatal(err)
	}
	detail, err := env.crsSvc.Update(context.Background(), code, course.UpdateCourse{Sessions: sessions})
	if err != nil {
		t.Fatal(err)
	}
	return detail
}

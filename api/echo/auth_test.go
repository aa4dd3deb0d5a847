package echoapi_test

import (
	"context"
	"encoding/base64"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/edufacil/efs/core/user"
)

var cardPhoto = base64.StdEncoding.EncodeToString([]byte("not really a JPEG"))

func registerBody(sid, email string) map[string]string {
	return map[string]string{
		"sid":              sid,
		"email":            email,
		"password":         "Secr3tPass!",
		"password_confirm": "Secr3tPass!",
		"photo":            cardPhoto,
		"file_name":        "card.jpg",
	}
}

func TestRegister(t *testing.T) {
	app, env := setup(t)

	body := marshallObj(t, registerBody("20123456", "20123456@connect.test.test"))
	req, rec := newRequest(http.MethodPost, "/v1/auth/register", body)
	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	var acc user.PendingAccount
	decodeBody(t, rec, &acc)
	assert.Equal(t, "20123456", acc.SID)
	assert.NotEmpty(t, acc.PhotoKey)
	assert.True(t, env.files.Has(acc.PhotoKey))

	// the same sid cannot register twice
	req, rec = newRequest(http.MethodPost, "/v1/auth/register", body)
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "awaiting review")
}

func TestRegisterValidation(t *testing.T) {
	app, _ := setup(t)

	body := marshallObj(t, map[string]string{
		"sid":              "20123456",
		"email":            "not-an-email",
		"password":         "short",
		"password_confirm": "different",
	})
	req, rec := newRequest(http.MethodPost, "/v1/auth/register", body)
	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "email")
	assert.Contains(t, rec.Body.String(), "password")
}

func TestLogin(t *testing.T) {
	app, env := setup(t)
	usr := createStudent(t, env, "20123456")

	tests := []struct {
		name     string
		body     map[string]string
		wantCode int
	}{
		{"ok by email", map[string]string{"email": usr.Email, "password": "Secr3tPass!"}, http.StatusOK},
		{"ok by sid", map[string]string{"email": usr.SID, "password": "Secr3tPass!"}, http.StatusOK},
		{"wrong password", map[string]string{"email": usr.Email, "password": "nope"}, http.StatusBadRequest},
		{"unknown user", map[string]string{"email": "ghost@test.test", "password": "Secr3tPass!"}, http.StatusBadRequest},
		{"missing fields", map[string]string{}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/v1/auth/login", marshallObj(t, tt.body))
			app.ServeHTTP(rec, req)
			assert.Equal(t, tt.wantCode, rec.Code)

			if tt.wantCode == http.StatusOK {
				var resp struct {
					Token string    `json:"token"`
					User  user.User `json:"user"`
				}
				decodeBody(t, rec, &resp)
				assert.NotEmpty(t, resp.Token)
				assert.Equal(t, usr.SID, resp.User.SID)
			}
		})
	}
}

func TestLoginDeactivated(t *testing.T) {
	app, env := setup(t)
	usr := createStudent(t, env, "20123456")
	usr.SetActive(false)
	if _, err := env.usrRepo.UpdateUser(context.Background(), usr, usr.IsActive); err != nil {
		t.Fatal(err)
	}

	body := marshallObj(t, map[string]string{"email": usr.Email, "password": "Secr3tPass!"})
	req, rec := newRequest(http.MethodPost, "/v1/auth/login", body)
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAuthCheck(t *testing.T) {
	app, env := setup(t)
	usr := createStudent(t, env, "20123456")

	req, rec := newAuthRequest(http.MethodGet, "/v1/auth/check", getToken(t, usr))
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	var got user.User
	decodeBody(t, rec, &got)
	assert.Equal(t, usr.ID, got.ID)

	// no token
	req, rec = newRequest(http.MethodGet, "/v1/auth/check")
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	var herr httpErr
	decodeBody(t, rec, &herr)
	assert.Equal(t, errMissingToken, herr)
}

func TestTokenRefresh(t *testing.T) {
	app, env := setup(t)
	usr := createStudent(t, env, "20123456")

	req, rec := newAuthRequest(http.MethodPost, "/v1/auth/token-refresh", getToken(t, usr))
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Token string `json:"token"`
	}
	decodeBody(t, rec, &resp)
	assert.NotEmpty(t, resp.Token)
}

func TestPasswordResetRequest(t *testing.T) {
	app, env := setup(t)
	createStudent(t, env, "20123456")

	// the response does not leak whether the email exists
	for _, email := range []string{"20123456@connect.test.test", "ghost@test.test"} {
		body := marshallObj(t, map[string]string{"email": email})
		req, rec := newRequest(http.MethodPost, "/v1/auth/password-reset", body)
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "instructions to reset your password")
	}
}

func TestPasswordResetConfirmBadToken(t *testing.T) {
	app, env := setup(t)
	usr := createStudent(t, env, "20123456")

	body := marshallObj(t, map[string]string{
		"uid":              base64.RawURLEncoding.EncodeToString([]byte(usr.ID)),
		"token":            "bogus-token-sig",
		"password":         "NewSecr3t!",
		"password_confirm": "NewSecr3t!",
	})
	req, rec := newRequest(http.MethodPost, "/v1/auth/password-reset-confirm", body)
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "token")
}

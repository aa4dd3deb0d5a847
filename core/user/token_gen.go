package user

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/edufacil/efs/core"
)

// Password reset tokens bind a user's current state (password hash, last
// login) to a timestamp, so a token is invalidated by use or by login.

var (
	errInvalidToken = errors.New("invalid token")
	errTokenExpired = errors.New("token expired")

	secretKey                 []byte
	passwordResetTimeoutDelta time.Duration
	nowFunc                   = time.Now
)

func init() {
	secretKey = []byte(core.Conf.SecretKey)
	passwordResetTimeoutDelta = core.Conf.PasswordResetTimeoutDelta
}

func makeToken(usr User) string {
	return makeTokenWithTimestamp(usr, numSeconds(nowFunc()))
}

func verifyToken(usr User, token string) error {
	parts := strings.SplitN(token, "-", 2)
	if len(parts) != 2 {
		return errInvalidToken
	}
	ts, err := strconv.ParseInt(parts[0], 36, 64)
	if err != nil {
		return errInvalidToken
	}

	// constant-time comparison against a freshly computed token
	expected := makeTokenWithTimestamp(usr, ts)
	if !hmac.Equal([]byte(expected), []byte(token)) {
		return errInvalidToken
	}

	if numSeconds(nowFunc())-ts > int64(passwordResetTimeoutDelta.Seconds()) {
		return errTokenExpired
	}
	return nil
}

func makeTokenWithTimestamp(usr User, ts int64) string {
	tsB36 := strconv.FormatInt(ts, 36)
	hash := sign(hashValue(usr, ts), tsB36)
	return fmt.Sprintf("%s-%s", tsB36, hash)
}

// hashValue returns the value to hash: a use of the token (password change)
// or a login (last_login change) must invalidate it.
func hashValue(usr User, ts int64) string {
	var lastLogin string
	if !usr.LastLogin.IsZero() {
		lastLogin = usr.LastLogin.Format(time.RFC3339)
	}
	return usr.ID + string(usr.PasswordHash) + lastLogin + strconv.FormatInt(ts, 10)
}

func sign(value, salt string) string {
	mac := hmac.New(sha256.New, append([]byte(salt), secretKey...))
	mac.Write([]byte(value))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

func numSeconds(t time.Time) int64 { return t.Unix() }

func encodeUID(usr User) string {
	return base64.RawURLEncoding.EncodeToString([]byte(usr.ID))
}

func decodeUID(uidB64 string) (string, error) {
	uid, err := base64.RawURLEncoding.DecodeString(uidB64)
	if err != nil {
		return "", errors.Wrap(errInvalidToken, "decoding uid")
	}
	return string(uid), nil
}

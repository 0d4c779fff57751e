package xld

import (
	"net/http"
	"strings"
)

const expiredTokenPhrase = "the incoming token has expired"

// CheckTokenExpired clears the session token when err signals a rejected
// credential: an *APIError with status 401, or any error whose text contains
// "the incoming token has expired" in any case. It reports whether the token
// was cleared. The caller still owns err and must return it.
func CheckTokenExpired(session *Session, err error) bool {
	if session == nil || err == nil {
		return false
	}

	if apiErr, ok := AsAPIError(err); ok && apiErr.StatusCode == http.StatusUnauthorized {
		session.ClearToken()
		return true
	}

	if strings.Contains(strings.ToLower(err.Error()), expiredTokenPhrase) {
		session.ClearToken()
		return true
	}

	return false
}

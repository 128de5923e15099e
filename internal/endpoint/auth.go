package endpoint

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// BasicAuth is a http.Handler wrapper that handles Basic Authorization.
// It supports only one pair of username and password.
//
// /healthz is not protected, so that health checkers can reach it without credentials.
type BasicAuth struct {
	Handler            http.Handler
	Username, Password string
}

// WithBasicAuth wraps http.Handler with a BasicAuth.
// The userinfo is "username:password" form. Empty userinfo means no authorization.
func WithBasicAuth(handler http.Handler, userinfo string) http.Handler {
	if userinfo == "" {
		return handler
	}

	username, password, _ := strings.Cut(userinfo, ":")

	return BasicAuth{
		Handler:  handler,
		Username: username,
		Password: password,
	}
}

func equal(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func (a BasicAuth) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/healthz" {
		a.Handler.ServeHTTP(w, r)
		return
	}

	username, password, ok := r.BasicAuth()
	if !ok || !equal(username, a.Username) || !equal(password, a.Password) {
		w.Header().Add("WWW-Authenticate", `Basic realm="statwatch"`)
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	a.Handler.ServeHTTP(w, r)
}

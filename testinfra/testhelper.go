package testinfra

import (
	"context"
	"crudcore/session"
	"io/ioutil"
	"net/http"
	"net/http/httptest"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
)

// BuildSecCtx builds a session for an authenticated principal.
func BuildSecCtx(uid types.ID) *session.Session {
	return &session.Session{
		Token:    "test-token",
		Identity: session.Identity{ID: uid, Name: "user" + uid.String()},
		Context:  context.Background(),
	}
}

// AnonymousSecCtx builds a session with no authenticated principal.
func AnonymousSecCtx() *session.Session {
	return &session.Session{Context: context.Background()}
}

// ExecuteRequest runs a request against the router and returns status, body
// and response headers.
func ExecuteRequest(req *http.Request, router *gin.Engine) (int, string, http.Header) {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	bodyBytes, _ := ioutil.ReadAll(w.Body)
	return w.Code, string(bodyBytes), w.Header()
}

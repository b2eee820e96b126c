package session

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/gomega"
)

func TestAuthenticated(t *testing.T) {
	RegisterTestingT(t)

	t.Run("should require a real principal", func(t *testing.T) {
		var s *Session
		Expect(s.Authenticated()).To(BeFalse())
		Expect((&Session{}).Authenticated()).To(BeFalse())
		Expect((&Session{Identity: Identity{ID: 10}}).Authenticated()).To(BeTrue())
	})
}

func TestExtractSessionFromGinContext(t *testing.T) {
	RegisterTestingT(t)

	buildGinContext := func() *gin.Context {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
		return c
	}

	t.Run("should fall back to an anonymous session", func(t *testing.T) {
		c := buildGinContext()

		s := ExtractSessionFromGinContext(c)
		Expect(s.Authenticated()).To(BeFalse())
		Expect(s.Context).ToNot(BeNil())
	})

	t.Run("should clone the injected session with the request context attached", func(t *testing.T) {
		c := buildGinContext()
		injected := &Session{Token: "token-1", Identity: Identity{ID: 10, Name: "ann"}}
		InjectSessionIntoGinContext(c, injected)

		s := ExtractSessionFromGinContext(c)
		Expect(s.Identity).To(Equal(injected.Identity))
		Expect(s.Token).To(Equal("token-1"))
		Expect(s.Context).To(Equal(c.Request.Context()))
		Expect(s).ToNot(BeIdenticalTo(injected))
	})

	t.Run("should not inject tokenless sessions", func(t *testing.T) {
		c := buildGinContext()
		InjectSessionIntoGinContext(c, &Session{Identity: Identity{ID: 10}})

		s := ExtractSessionFromGinContext(c)
		Expect(s.Authenticated()).To(BeFalse())
	})
}

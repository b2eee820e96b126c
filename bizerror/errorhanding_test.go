package bizerror_test

import (
	"crudcore/bizerror"
	"crudcore/testinfra"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/gorm"
	. "github.com/onsi/gomega"
)

func TestErrorHandling(t *testing.T) {
	RegisterTestingT(t)

	router := gin.Default()
	router.Use(bizerror.ErrorHandling())

	var raised error
	router.GET("/panic", func(c *gin.Context) { panic(raised) })
	router.GET("/collected", func(c *gin.Context) { _ = c.Error(raised) })
	router.POST("/bind", func(c *gin.Context) {
		payload := struct {
			Name string `json:"name" binding:"required"`
		}{}
		if err := c.ShouldBindJSON(&payload); err != nil {
			panic(err)
		}
		c.Status(http.StatusOK)
	})

	expectResponse := func(path string, wantStatus int, wantBody string) {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(wantStatus))
		Expect(body).To(MatchJSON(wantBody))
	}

	t.Run("should map sentinel errors to their statuses", func(t *testing.T) {
		raised = bizerror.ErrUnauthenticated
		expectResponse("/panic", http.StatusUnauthorized,
			`{"code": "common.unauthenticated", "message": "unauthenticated", "data": null}`)

		raised = bizerror.ErrForbidden
		expectResponse("/panic", http.StatusForbidden,
			`{"code": "security.forbidden", "message": "access forbidden", "data": null}`)

		raised = bizerror.ErrInvalidSecret
		expectResponse("/panic", http.StatusForbidden,
			`{"code": "security.invalid_secret", "message": "invalid name or secret", "data": null}`)

		raised = bizerror.ErrNotFound
		expectResponse("/panic", http.StatusNotFound,
			`{"code": "common.record_not_found", "message": "record not found", "data": null}`)

		raised = gorm.ErrRecordNotFound
		expectResponse("/panic", http.StatusNotFound,
			`{"code": "common.record_not_found", "message": "record not found", "data": null}`)
	})

	t.Run("should respond conflicts without the storage detail", func(t *testing.T) {
		raised = bizerror.ConflictOf(errors.New("Duplicate entry '42' for key 'PRIMARY'"))
		expectResponse("/panic", http.StatusConflict,
			`{"code": "common.persistence_conflict", "message": "persistence conflict", "data": null}`)
	})

	t.Run("should respond bad params through the biz error contract", func(t *testing.T) {
		raised = &bizerror.ErrBadParam{Cause: errors.New("invalid id")}
		expectResponse("/panic", http.StatusBadRequest,
			`{"code": "common.bad_param", "message": "invalid id", "data": null}`)
	})

	t.Run("should handle collected gin errors too", func(t *testing.T) {
		raised = bizerror.ErrForbidden
		expectResponse("/collected", http.StatusForbidden,
			`{"code": "security.forbidden", "message": "access forbidden", "data": null}`)
	})

	t.Run("should reject missing and malformed bodies as 400", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/bind", nil)
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusBadRequest))
		Expect(body).To(MatchJSON(`{"code": "bad_request.body_not_found", "message": "body not found", "data": null}`))

		req = httptest.NewRequest(http.MethodPost, "/bind", strings.NewReader(`{bad`))
		status, body, _ = testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusBadRequest))
		Expect(body).To(ContainSubstring(`"code":"bad_request.invalid_body_format"`))
	})

	t.Run("should render validation failures as 422", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/bind", strings.NewReader(`{}`))
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusUnprocessableEntity))
		Expect(body).To(ContainSubstring(`"code":"common.validation_failed"`))
	})

	t.Run("should fall back to 500 for unknown errors", func(t *testing.T) {
		raised = errors.New("boom")
		expectResponse("/panic", http.StatusInternalServerError,
			`{"code": "common.internal_server_error", "message": "boom", "data": null}`)
	})
}

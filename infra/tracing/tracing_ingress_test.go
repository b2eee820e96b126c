package tracing

import (
	"crudcore/testinfra"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/gomega"
	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/mocktracer"
)

func TestTracingIngress(t *testing.T) {
	RegisterTestingT(t)

	tracer := mocktracer.New()
	opentracing.SetGlobalTracer(tracer)

	router := gin.Default()
	router.Use(TracingIngress())
	router.GET("/posts", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	t.Run("new root trace with http tags", func(t *testing.T) {
		tracer.Reset()

		req := httptest.NewRequest(http.MethodGet, "/posts?paginate=10", nil)
		status, _, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusOK))

		spans := tracer.FinishedSpans()
		Expect(len(spans)).To(Equal(1))
		s := spans[0]
		Expect(s.OperationName).To(Equal("GET /posts"))
		Expect(s.ParentID).To(Equal(0))
		Expect(s.Tag("http.method")).To(Equal("GET"))
		Expect(s.Tag("http.url")).To(Equal("/posts?paginate=10"))
		Expect(s.Tag("http.status_code")).To(Equal(uint16(http.StatusOK)))
	})

	t.Run("join upstream trace", func(t *testing.T) {
		tracer.Reset()

		parent := tracer.StartSpan("upstream")
		req := httptest.NewRequest(http.MethodGet, "/posts", nil)
		Expect(tracer.Inject(parent.Context(), opentracing.HTTPHeaders,
			opentracing.HTTPHeadersCarrier(req.Header))).To(BeNil())

		status, _, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusOK))

		spans := tracer.FinishedSpans()
		Expect(len(spans)).To(Equal(1))
		Expect(spans[0].ParentID).To(Equal(parent.(*mocktracer.MockSpan).SpanContext.SpanID))
	})
}

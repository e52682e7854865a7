package es

import (
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	. "github.com/onsi/gomega"
	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/mocktracer"
)

type stubRoundTripper struct {
	received *http.Request
	status   int
}

func (t *stubRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	t.received = req
	return &http.Response{StatusCode: t.status, Body: ioutil.NopCloser(strings.NewReader("{}"))}, nil
}

func TestTracingTransport(t *testing.T) {
	RegisterTestingT(t)

	t.Run("should start a client span and inject its context into headers", func(t *testing.T) {
		tracer := mocktracer.New()
		parent := tracer.StartSpan("parent")
		stub := &stubRoundTripper{status: 200}
		transport := &TracingTransport{Transport: stub}

		req := httptest.NewRequest(http.MethodGet, "http://es:9200/ad_insights/_search", nil)
		req = req.WithContext(opentracing.ContextWithSpan(req.Context(), parent))
		res, err := transport.RoundTrip(req)
		Expect(err).To(BeNil())
		Expect(res.StatusCode).To(Equal(200))

		spans := tracer.FinishedSpans()
		Expect(len(spans)).To(Equal(1))
		Expect(spans[0].ParentID).To(Equal(parent.(*mocktracer.MockSpan).SpanContext.SpanID))
		Expect(spans[0].Tag("http.method")).To(Equal("GET"))
		Expect(spans[0].Tag("error")).To(Equal(false))
		Expect(stub.received.Header.Get("Mockpfx-Ids-Spanid")).ToNot(BeEmpty())
	})

	t.Run("should mark spans of error responses", func(t *testing.T) {
		tracer := mocktracer.New()
		parent := tracer.StartSpan("parent")
		transport := &TracingTransport{Transport: &stubRoundTripper{status: 500}}

		req := httptest.NewRequest(http.MethodGet, "http://es:9200/ad_insights/_search", nil)
		req = req.WithContext(opentracing.ContextWithSpan(req.Context(), parent))
		_, err := transport.RoundTrip(req)
		Expect(err).To(BeNil())
		Expect(tracer.FinishedSpans()[0].Tag("error")).To(Equal(true))
	})

	t.Run("should pass requests without a span straight through", func(t *testing.T) {
		stub := &stubRoundTripper{status: 200}
		transport := &TracingTransport{Transport: stub}
		req := httptest.NewRequest(http.MethodGet, "http://es:9200/", nil)
		res, err := transport.RoundTrip(req)
		Expect(err).To(BeNil())
		Expect(res.StatusCode).To(Equal(200))
	})
}

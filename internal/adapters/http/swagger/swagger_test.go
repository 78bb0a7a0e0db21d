package swagger

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	kyaml "github.com/knadh/koanf/parsers/yaml"
	"github.com/smartystreets/goconvey/convey"
)

func TestSwaggerHandler(t *testing.T) {
	convey.Convey("Given a swagger handler", t, func() {
		ctx := context.Background()
		mux := http.NewServeMux()

		convey.Convey("When registering the swagger handler", func() {
			Register(ctx, mux)

			convey.Convey("Then it should handle /openapi.yaml route", func() {
				req := httptest.NewRequest("GET", "/openapi.yaml", http.NoBody)
				w := httptest.NewRecorder()
				mux.ServeHTTP(w, req)

				convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
				convey.So(w.Header().Get("Content-Type"), convey.ShouldEqual, "application/yaml; charset=utf-8")
				convey.So(w.Body.Len(), convey.ShouldBeGreaterThan, 0)
			})

			convey.Convey("And it should handle /api-docs route", func() {
				req := httptest.NewRequest("GET", "/api-docs", http.NoBody)
				w := httptest.NewRecorder()
				mux.ServeHTTP(w, req)

				convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
				convey.So(w.Header().Get("Content-Type"), convey.ShouldEqual, "text/html; charset=utf-8")
				convey.So(w.Body.String(), convey.ShouldContainSubstring, "Heat Sheet API")
				convey.So(w.Body.String(), convey.ShouldContainSubstring, RedocURL)
			})

			convey.Convey("And other methods are not allowed", func() {
				req := httptest.NewRequest("POST", "/openapi.yaml", http.NoBody)
				w := httptest.NewRecorder()
				mux.ServeHTTP(w, req)

				convey.So(w.Code, convey.ShouldEqual, http.StatusMethodNotAllowed)
				convey.So(w.Header().Get("Allow"), convey.ShouldEqual, "GET")
			})
		})
	})
}

func TestOpenAPIDocument(t *testing.T) {
	convey.Convey("Given the embedded OpenAPI document", t, func() {
		doc, err := kyaml.Parser().Unmarshal(OpenAPI)
		convey.So(err, convey.ShouldBeNil)
		paths, ok := doc["paths"].(map[string]interface{})
		convey.So(ok, convey.ShouldBeTrue)

		convey.Convey("Then it documents every API route", func() {
			convey.So(doc["openapi"], convey.ShouldStartWith, "3.")
			routes := []struct{ path, method string }{
				{"/healthz", "get"},
				{"/metrics", "get"},
				{"/stats", "get"},
				{"/roster", "post"},
				{"/schedule", "get"},
				{"/schedule/options", "get"},
				{"/schedule/board", "get"},
				{"/heats/{event}/{heat}/actual-end", "put"},
				{"/heats/{event}/{heat}/actual-end", "delete"},
				{"/actual-ends", "delete"},
				{"/config/schedule", "get"},
				{"/config/schedule", "put"},
			}
			for _, r := range routes {
				convey.So(paths, convey.ShouldContainKey, r.path)
				ops, _ := paths[r.path].(map[string]interface{})
				convey.So(ops, convey.ShouldContainKey, r.method)
			}
		})
	})
}

func TestSwaggerHandlerWithNilMux(t *testing.T) {
	convey.Convey("Given a nil mux", t, func() {
		ctx := context.Background()

		convey.Convey("When registering the swagger handler", func() {
			convey.Convey("Then it should panic", func() {
				convey.So(func() {
					Register(ctx, nil)
				}, convey.ShouldPanic)
			})
		})
	})
}

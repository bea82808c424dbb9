package gee

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNotFound(t *testing.T) {
	engine := New()
	engine.GET("/exists", func(ctx *Context) {
		ctx.String(200, "ok")
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/not-exists", nil)
	engine.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, w.Code)
	}
}

func TestCustomNoRoute(t *testing.T) {
	engine := New()
	engine.NoRoute(func(ctx *Context) {
		ctx.JSON(http.StatusNotFound, H{"error": "page not found"})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/not-exists", nil)
	engine.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, w.Code)
	}
	if !strings.Contains(w.Body.String(), "page not found") {
		t.Errorf("expected custom error message, got: %s", w.Body.String())
	}
}

func TestMethodNotAllowed(t *testing.T) {
	engine := New()
	engine.GET("/test", func(ctx *Context) {
		ctx.String(200, "ok")
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/test", nil)
	engine.ServeHTTP(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected status %d, got %d", http.StatusMethodNotAllowed, w.Code)
	}
}

func TestMethodNotAllowedWithAllowHeader(t *testing.T) {
	engine := New()
	engine.GET("/test", func(ctx *Context) {
		ctx.String(200, "ok")
	})
	engine.POST("/test", func(ctx *Context) {
		ctx.String(200, "ok")
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("DELETE", "/test", nil)
	engine.ServeHTTP(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected status %d, got %d", http.StatusMethodNotAllowed, w.Code)
	}

	allow := w.Header().Get("Allow")
	if allow == "" {
		t.Error("expected Allow header to be set")
	}
	if !strings.Contains(allow, "GET") || !strings.Contains(allow, "POST") {
		t.Errorf("expected Allow header to contain GET and POST, got: %s", allow)
	}
}

func TestCustomNoMethod(t *testing.T) {
	engine := New()
	engine.NoMethod(func(ctx *Context) {
		ctx.JSON(http.StatusMethodNotAllowed, H{"error": "method not allowed"})
	})
	engine.GET("/test", func(ctx *Context) {
		ctx.String(200, "ok")
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/test", nil)
	engine.ServeHTTP(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected status %d, got %d", http.StatusMethodNotAllowed, w.Code)
	}
	if !strings.Contains(w.Body.String(), "method not allowed") {
		t.Errorf("expected custom error message, got: %s", w.Body.String())
	}
}

func TestNotFoundGoThroughMiddleware(t *testing.T) {
	middlewareExecuted := false

	engine := New()
	engine.Use(func(ctx *Context) {
		middlewareExecuted = true
		ctx.Next()
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/not-exists", nil)
	engine.ServeHTTP(w, req)

	if !middlewareExecuted {
		t.Error("middleware should be executed for 404")
	}
}

func TestMethodNotAllowedGoThroughMiddleware(t *testing.T) {
	middlewareExecuted := false

	engine := New()
	engine.Use(func(ctx *Context) {
		middlewareExecuted = true
		ctx.Next()
	})
	engine.GET("/test", func(ctx *Context) {
		ctx.String(200, "ok")
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/test", nil)
	engine.ServeHTTP(w, req)

	if !middlewareExecuted {
		t.Error("middleware should be executed for 405")
	}
}

func TestOptionsRoute(t *testing.T) {
	engine := New()
	engine.GET("/:code", func(ctx *Context) {
		ctx.String(http.StatusFound, "redirect")
	})
	engine.OPTIONS("/:code", func(ctx *Context) {
		ctx.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/abc123", nil)
	engine.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("expected status %d, got %d", http.StatusNoContent, w.Code)
	}
}

func TestStaticRouteBeatsParam(t *testing.T) {
	engine := New()
	var got string
	engine.GET("/:code", func(ctx *Context) {
		got = "code:" + ctx.Param("code")
	})
	engine.GET("/healthz", func(ctx *Context) {
		got = "healthz"
	})

	engine.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/healthz", nil))
	if got != "healthz" {
		t.Errorf("expected healthz, got %q", got)
	}

	engine.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/k3x9", nil))
	if got != "code:k3x9" {
		t.Errorf("expected code:k3x9, got %q", got)
	}
}

func TestRoutePatternSetBeforeMiddleware(t *testing.T) {
	engine := New()
	var seen string
	engine.Use(func(ctx *Context) {
		seen = ctx.RoutePattern
		ctx.Next()
	})
	engine.GET("/:code", func(ctx *Context) {})

	engine.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/abc", nil))

	if seen != "/:code" {
		t.Errorf("expected /:code, got %q", seen)
	}
}

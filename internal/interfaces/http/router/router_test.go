package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func perform(engine *gin.Engine, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestNewRouter(t *testing.T) {
	r := NewRouter(gin.New())

	assert.NotNil(t, r)
	assert.Equal(t, "v1", r.apiVersion)
	assert.Empty(t, r.registrars)
}

func TestRouterWithAPIVersion(t *testing.T) {
	r := NewRouter(gin.New(), WithAPIVersion("v2"))

	assert.Equal(t, "v2", r.apiVersion)
}

func TestRouterRegister(t *testing.T) {
	r := NewRouter(gin.New())

	r.Register(NewDomainGroup("billing", "/billing"))

	assert.Len(t, r.registrars, 1)
}

func TestRouterSetup(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine, WithAPIVersion("v1"))

	group := NewDomainGroup("system", "/system")
	group.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})

	r.Register(group)
	r.Setup()

	w := perform(engine, "GET", "/api/v1/system/ping")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())
}

func TestRouterUse(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)

	r.Use(func(c *gin.Context) {
		c.Header("X-Group-Middleware", "seen")
		c.Next()
	})

	group := NewDomainGroup("billing", "/billing")
	group.GET("/invoices", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	r.Register(group).Setup()

	// Middleware applies inside the versioned group but not outside it
	w := perform(engine, "GET", "/api/v1/billing/invoices")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "seen", w.Header().Get("X-Group-Middleware"))

	engine.GET("/health", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	w = perform(engine, "GET", "/health")
	assert.Empty(t, w.Header().Get("X-Group-Middleware"))
}

func TestDomainGroup(t *testing.T) {
	t.Run("creates group with name and prefix", func(t *testing.T) {
		g := NewDomainGroup("billing", "/billing")
		assert.Equal(t, "billing", g.Name())
		assert.Equal(t, "/billing", g.Prefix())
	})

	t.Run("registers routes for every method", func(t *testing.T) {
		engine := gin.New()
		g := NewDomainGroup("billing", "/billing")
		g.GET("/invoices", func(c *gin.Context) { c.String(http.StatusOK, "listed") })
		g.POST("/invoices", func(c *gin.Context) { c.String(http.StatusCreated, "created") })
		g.PUT("/invoices/:id/status", func(c *gin.Context) { c.String(http.StatusOK, "overridden") })
		g.PATCH("/invoices/:id", func(c *gin.Context) { c.String(http.StatusOK, "patched") })
		g.DELETE("/invoices/:id", func(c *gin.Context) { c.String(http.StatusNoContent, "") })

		g.RegisterRoutes(engine.Group("/api/v1"))

		tests := []struct {
			method string
			path   string
			want   int
		}{
			{"GET", "/api/v1/billing/invoices", http.StatusOK},
			{"POST", "/api/v1/billing/invoices", http.StatusCreated},
			{"PUT", "/api/v1/billing/invoices/42/status", http.StatusOK},
			{"PATCH", "/api/v1/billing/invoices/42", http.StatusOK},
			{"DELETE", "/api/v1/billing/invoices/42", http.StatusNoContent},
		}
		for _, tt := range tests {
			w := perform(engine, tt.method, tt.path)
			assert.Equal(t, tt.want, w.Code, "%s %s", tt.method, tt.path)
		}
	})

	t.Run("applies middleware", func(t *testing.T) {
		engine := gin.New()
		g := NewDomainGroup("billing", "/billing")

		g.Use(func(c *gin.Context) {
			c.Header("X-Domain-Middleware", "applied")
			c.Next()
		})

		g.GET("/invoices", func(c *gin.Context) {
			c.String(http.StatusOK, "ok")
		})

		g.RegisterRoutes(engine.Group("/api/v1"))

		w := perform(engine, "GET", "/api/v1/billing/invoices")
		assert.Equal(t, "applied", w.Header().Get("X-Domain-Middleware"))
	})

	t.Run("creates subgroups", func(t *testing.T) {
		engine := gin.New()
		g := NewDomainGroup("billing", "/billing")

		invoices := g.Group("invoices", "/invoices")
		invoices.GET("", func(c *gin.Context) {
			c.String(http.StatusOK, "invoice list")
		})

		contracts := g.Group("contracts", "/contracts")
		contracts.GET("", func(c *gin.Context) {
			c.String(http.StatusOK, "contract list")
		})

		g.RegisterRoutes(engine.Group("/api/v1"))

		w := perform(engine, "GET", "/api/v1/billing/invoices")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "invoice list", w.Body.String())

		w = perform(engine, "GET", "/api/v1/billing/contracts")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "contract list", w.Body.String())
	})
}

func TestMultipleDomainGroups(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)

	billing := NewDomainGroup("billing", "/billing")
	billing.GET("/invoices", func(c *gin.Context) {
		c.String(http.StatusOK, "invoices")
	})

	auth := NewDomainGroup("auth", "/auth")
	auth.POST("/login", func(c *gin.Context) {
		c.String(http.StatusOK, "logged in")
	})

	r.Register(billing).Register(auth)
	r.Setup()

	w := perform(engine, "GET", "/api/v1/billing/invoices")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "invoices", w.Body.String())

	w = perform(engine, "POST", "/api/v1/auth/login")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "logged in", w.Body.String())
}

func TestChainedMethodCalls(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)

	g := NewDomainGroup("billing", "/billing")
	g.POST("/payments", func(c *gin.Context) { c.String(http.StatusOK, "recorded") }).
		GET("/contracts", func(c *gin.Context) { c.String(http.StatusOK, "contracts") }).
		PUT("/invoices/:id/status", func(c *gin.Context) { c.String(http.StatusOK, "status") })

	r.Register(g).Setup()

	tests := []struct {
		method string
		path   string
	}{
		{"POST", "/api/v1/billing/payments"},
		{"GET", "/api/v1/billing/contracts"},
		{"PUT", "/api/v1/billing/invoices/42/status"},
	}

	for _, tt := range tests {
		w := perform(engine, tt.method, tt.path)
		assert.Equal(t, http.StatusOK, w.Code, "Route %s %s should work", tt.method, tt.path)
	}
}

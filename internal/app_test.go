package internal_test

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weiye465/Kindle-Transfer-App/internal"
)

type textComponent string

func (t textComponent) Render(_ context.Context, w io.Writer) error {
	_, err := w.Write([]byte(t))
	return err
}

func TestApp_ErrorHandler(t *testing.T) {
	t.Parallel()

	var handled error
	app := internal.New(
		internal.WithErrorHandler(func(c internal.Context, err error) error {
			handled = err
			code := http.StatusInternalServerError
			if he := internal.AsHTTPError(err); he != nil {
				code = he.Code
			}
			return c.JSON(code, map[string]any{"success": false, "message": err.Error()})
		}),
		internal.WithHandlers(routeFunc(func(r internal.Router) {
			r.GET("/bad", func(c internal.Context) error {
				return internal.ErrBadRequest("no file provided")
			})
			r.GET("/late", func(c internal.Context) error {
				_ = c.String(http.StatusOK, "partial")
				return errors.New("too late")
			})
		})),
	)

	w := serve(t, app, httptest.NewRequest(http.MethodGet, "/bad", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"success":false,"message":"no file provided"}`, w.Body.String())
	require.True(t, internal.IsHTTPError(handled))

	handled = nil
	w = serve(t, app, httptest.NewRequest(http.MethodGet, "/late", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "partial", w.Body.String())
	assert.Nil(t, handled)
}

func TestApp_DefaultErrorHandling(t *testing.T) {
	t.Parallel()

	app := internal.New(internal.WithHandlers(routeFunc(func(r internal.Router) {
		r.GET("/http", func(c internal.Context) error { return internal.ErrNotFound("file not found") })
		r.GET("/plain", func(c internal.Context) error { return errors.New("boom") })
	})))

	w := serve(t, app, httptest.NewRequest(http.MethodGet, "/http", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "file not found")

	w = serve(t, app, httptest.NewRequest(http.MethodGet, "/plain", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "boom")
}

func TestApp_MiddlewareOrder(t *testing.T) {
	t.Parallel()

	var order []string
	tag := func(name string) internal.Middleware {
		return func(next internal.HandlerFunc) internal.HandlerFunc {
			return func(c internal.Context) error {
				order = append(order, name)
				return next(c)
			}
		}
	}

	app := internal.New(
		internal.WithMiddleware(tag("global1"), tag("global2")),
		internal.WithHandlers(routeFunc(func(r internal.Router) {
			r.Route("/api", func(r internal.Router) {
				r.Use(tag("group"))
				r.GET("/x", func(c internal.Context) error {
					order = append(order, "handler")
					return c.NoContent(http.StatusNoContent)
				}, tag("route1"), tag("route2"))
			})
		})),
	)

	w := serve(t, app, httptest.NewRequest(http.MethodGet, "/api/x", nil))
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, []string{"global1", "global2", "group", "route1", "route2", "handler"}, order)
}

func TestApp_MiddlewareSeesStatus(t *testing.T) {
	t.Parallel()

	var status int
	app := internal.New(
		internal.WithMiddleware(func(next internal.HandlerFunc) internal.HandlerFunc {
			return func(c internal.Context) error {
				err := next(c)
				status = c.Status()
				return err
			}
		}),
		internal.WithHandlers(routeFunc(func(r internal.Router) {
			r.GET("/", func(c internal.Context) error { return c.String(http.StatusTeapot, "tea") })
		})),
	)

	serve(t, app, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTeapot, status)
}

func TestApp_NotFoundAndMethodNotAllowed(t *testing.T) {
	t.Parallel()

	app := internal.New(
		internal.WithNotFoundHandler(func(c internal.Context) error {
			return c.JSON(http.StatusNotFound, map[string]any{"success": false})
		}),
		internal.WithMethodNotAllowedHandler(func(c internal.Context) error {
			return c.String(http.StatusMethodNotAllowed, "nope")
		}),
		internal.WithHandlers(routeFunc(func(r internal.Router) {
			r.POST("/api/send", func(c internal.Context) error { return c.NoContent(http.StatusOK) })
		})),
	)

	w := serve(t, app, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"success":false}`, w.Body.String())

	w = serve(t, app, httptest.NewRequest(http.MethodGet, "/api/send", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestApp_HealthAndMount(t *testing.T) {
	t.Parallel()

	ready := errors.New("settings unreadable")
	app := internal.New(
		internal.WithHealthChecks(
			internal.WithReadinessCheck("settings", func(context.Context) error { return ready }),
		),
		internal.WithMount("/metrics", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("# metrics"))
		})),
	)

	w := serve(t, app, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(t, app, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = serve(t, app, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, "# metrics", w.Body.String())
}

func TestContext_DecodeJSONAndRender(t *testing.T) {
	t.Parallel()

	var decodeErr error
	var body struct {
		Filepath string `json:"filepath"`
	}
	app := internal.New(internal.WithHandlers(routeFunc(func(r internal.Router) {
		r.POST("/decode", func(c internal.Context) error {
			decodeErr = c.DecodeJSON(&body)
			return c.NoContent(http.StatusOK)
		})
		r.GET("/page", func(c internal.Context) error {
			return c.Render(http.StatusOK, textComponent("<h1>Kindle</h1>"))
		})
	})))

	serve(t, app, httptest.NewRequest(http.MethodPost, "/decode", strings.NewReader(`{"filepath":"book.pdf"}`)))
	require.NoError(t, decodeErr)
	assert.Equal(t, "book.pdf", body.Filepath)

	serve(t, app, httptest.NewRequest(http.MethodPost, "/decode", strings.NewReader("")))
	assert.ErrorIs(t, decodeErr, internal.ErrEmptyBody)

	w := serve(t, app, httptest.NewRequest(http.MethodGet, "/page", nil))
	assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, "<h1>Kindle</h1>", w.Body.String())
}

func TestApp_RunHooks(t *testing.T) {
	t.Parallel()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	var started, stopped bool

	app := internal.New(internal.WithHandlers(routeFunc(func(r internal.Router) {
		r.GET("/", func(c internal.Context) error { return c.String(http.StatusOK, "ok") })
	})))

	done := make(chan error, 1)
	go func() {
		done <- app.Run("", internal.WithListener(ln), internal.WithContext(ctx),
			internal.StartupHook(func(context.Context) error { started = true; return nil }),
			internal.ShutdownHook(func(context.Context) error { stopped = true; return nil }),
		)
	}()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/")
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
	assert.True(t, started)
	assert.True(t, stopped)
}

func TestApp_RunStartupFailure(t *testing.T) {
	t.Parallel()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	app := internal.New()
	err = app.Run("", internal.WithListener(ln),
		internal.StartupHook(func(context.Context) error { return errors.New("scheduler") }),
	)
	require.ErrorIs(t, err, internal.ErrStartupFailed)
}

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

type recordingLogger struct {
	msg  string
	args []any
}

func (l *recordingLogger) Info(msg string, args ...any) {
	l.msg = msg
	l.args = args
}

func TestLoggerMiddleware(t *testing.T) {
	t.Parallel()

	t.Run("logs method status and size", func(t *testing.T) {
		log := &recordingLogger{}
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTeapot)
			_, _ = w.Write([]byte("hello"))
		})

		r := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		w := httptest.NewRecorder()
		LoggerMiddleware(log)(next).ServeHTTP(w, r)

		require.Equal(t, "got HTTP request", log.msg)

		// args is a flat key-value list
		logged := map[any]any{}
		for i := 0; i+1 < len(log.args); i += 2 {
			logged[log.args[i]] = log.args[i+1]
		}
		require.Equal(t, http.MethodPost, logged["method"])
		require.Equal(t, http.StatusTeapot, logged["status"])
		require.Equal(t, len("hello"), logged["size"])
	})

	t.Run("default status is 200", func(t *testing.T) {
		log := &recordingLogger{}
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("ok"))
		})

		r := httptest.NewRequest(http.MethodGet, "/", nil)
		LoggerMiddleware(log)(next).ServeHTTP(httptest.NewRecorder(), r)

		logged := map[any]any{}
		for i := 0; i+1 < len(log.args); i += 2 {
			logged[log.args[i]] = log.args[i+1]
		}
		require.Equal(t, http.StatusOK, logged["status"])
	})
}

// Package web - Executor middleware
//
// EDUCATIONAL NOTES:
// ------------------
// Context-based dependency injection is a common pattern:
//
// 1. Outer middleware injects dependencies into request context
// 2. Handlers retrieve dependencies from context when needed
// 3. Inner middleware can require dependencies and fail fast if missing

package web

import (
	"context"
	"net/http"

	"github.com/cabewaldrop/rowdb/internal/command"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

// executorKey is the context key for storing the command executor.
const executorKey contextKey = "executor"

// WithExecutor returns middleware that injects the command executor into
// the request context. Handlers can retrieve it using GetExecutor.
//
// Usage:
//
//	router.Use(WithExecutor(exec))
//	router.Get("/records", func(w http.ResponseWriter, r *http.Request) {
//	    exec := GetExecutor(r)
//	    // use exec.Table()
//	})
func WithExecutor(exec *command.Executor) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), executorKey, exec)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetExecutor retrieves the command executor from the request context.
// Returns nil if the executor was not set (middleware not applied).
func GetExecutor(r *http.Request) *command.Executor {
	exec, ok := r.Context().Value(executorKey).(*command.Executor)
	if !ok {
		return nil
	}
	return exec
}

// RequireExecutor returns middleware that ensures an executor is present
// in the request context. If not found, it answers 503 Service Unavailable.
func RequireExecutor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetExecutor(r) == nil {
			writeError(w, http.StatusServiceUnavailable, "database not initialized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

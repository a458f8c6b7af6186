// Package web provides the HTTP server for the record store.
//
// This file contains the JSON API endpoints for programmatic access.

package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/cabewaldrop/rowdb/internal/command"
	"github.com/cabewaldrop/rowdb/internal/record"
	"github.com/cabewaldrop/rowdb/internal/table"
)

// ============================================================================
// API Response Types
// ============================================================================

// APIResponse wraps all API responses with success/error info.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Hint    string      `json:"hint,omitempty"`
}

// RecordsResponse contains paginated record data.
type RecordsResponse struct {
	Records    []record.Record `json:"records"`
	TotalCount int             `json:"total_count"`
	Offset     int             `json:"offset"`
	Limit      int             `json:"limit"`
	HasMore    bool            `json:"has_more"`
}

// InsertRequest is the body for inserting one record.
type InsertRequest struct {
	ID       *uint32 `json:"id"`
	Username string  `json:"username"`
	Email    string  `json:"email"`
}

// ExecRequest is the body for running one command line.
type ExecRequest struct {
	Command string `json:"command"`
}

// ExecResponse contains the outcome of a command line.
type ExecResponse struct {
	Records []record.Record `json:"records,omitempty"`
	Message string          `json:"message,omitempty"`
	Output  string          `json:"output"`
}

// ============================================================================
// Helper Functions
// ============================================================================

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeSuccess writes a successful API response.
func writeSuccess(w http.ResponseWriter, status int, data interface{}) {
	writeJSON(w, status, APIResponse{
		Success: true,
		Data:    data,
	})
}

// writeError writes an error API response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, APIResponse{
		Success: false,
		Error:   message,
		Hint:    GetErrorHint(message),
	})
}

// statusFor maps a store or parse error to an HTTP status.
func statusFor(err error) int {
	var perr *command.ParseError
	switch {
	case errors.As(err, &perr):
		return http.StatusBadRequest
	case errors.Is(err, table.ErrSlotOutOfRange):
		return http.StatusBadRequest
	case errors.Is(err, table.ErrTableFull):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// paginate reads limit and offset query parameters.
func paginate(r *http.Request) (limit, offset int) {
	limit = 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= 1000 {
			limit = parsed
		}
	}
	if o := r.URL.Query().Get("offset"); o != "" {
		if parsed, err := strconv.Atoi(o); err == nil && parsed >= 0 {
			offset = parsed
		}
	}
	return limit, offset
}

// window returns rows[offset:offset+limit] clamped to the slice.
func window(rows []record.Record, limit, offset int) ([]record.Record, bool) {
	start := min(offset, len(rows))
	end := start + min(limit, len(rows)-start)
	return rows[start:end], end < len(rows)
}

// ============================================================================
// API Handlers
// ============================================================================

// handleAPIListRecords returns paginated records.
// GET /api/records?limit=50&offset=0
func (s *Server) handleAPIListRecords(w http.ResponseWriter, r *http.Request) {
	tbl := GetExecutor(r).Table()
	limit, offset := paginate(r)

	all, err := tbl.Scan()
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("scan failed: %v", err))
		return
	}

	rows, hasMore := window(all, limit, offset)
	writeSuccess(w, http.StatusOK, RecordsResponse{
		Records:    rows,
		TotalCount: len(all),
		Offset:     offset,
		Limit:      limit,
		HasMore:    hasMore,
	})
}

// handleAPIInsertRecord stores one record.
// POST /api/records
func (s *Server) handleAPIInsertRecord(w http.ResponseWriter, r *http.Request) {
	var req InsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := ValidateInsert(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rec := record.Record{ID: *req.ID, Username: req.Username, Email: req.Email}
	if err := GetExecutor(r).Table().Insert(rec); err != nil {
		s.log.Warn("insert failed", "id", rec.ID, "error", err)
		writeError(w, statusFor(err), err.Error())
		return
	}

	writeSuccess(w, http.StatusCreated, record.Canonical(rec))
}

// handleAPIExec runs one command line through the command language.
// POST /api/exec
func (s *Server) handleAPIExec(w http.ResponseWriter, r *http.Request) {
	var req ExecRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	stmt, err := command.Parse(req.Command)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	if stmt == nil {
		writeError(w, http.StatusBadRequest, "command field is required")
		return
	}
	if _, ok := stmt.(*command.MetaCommand); ok {
		writeError(w, http.StatusBadRequest, "meta commands are only available in the shell")
		return
	}

	result, err := GetExecutor(r).Execute(stmt)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	writeSuccess(w, http.StatusOK, ExecResponse{
		Records: result.Rows,
		Message: result.Message,
		Output:  result.String(),
	})
}

// handleAPIStats returns table statistics.
// GET /api/stats
func (s *Server) handleAPIStats(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, http.StatusOK, GetExecutor(r).Table().Stats())
}

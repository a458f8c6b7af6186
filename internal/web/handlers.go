package web

import (
	"fmt"
	"html/template"
	"net/http"
)

// handleHealth returns a simple health check response.
// This endpoint is used by load balancers and monitoring systems.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// recordsPage holds data for rendering the records template.
type recordsPage struct {
	Rows      [][]string
	Count     int
	Capacity  int
	Limit     int
	Offset    int
	OffsetEnd int
	HasPrev   bool
	HasNext   bool
	PrevURL   string
	NextURL   string
	Empty     bool
	Error     string
}

// recordsTemplate is the HTML template for the record listing.
var recordsTemplate = template.Must(template.New("records").Parse(`<!DOCTYPE html>
<html>
<head>
    <title>rowdb</title>
    <style>
        body { font-family: system-ui, sans-serif; margin: 20px; }
        table { border-collapse: collapse; width: 100%; margin: 20px 0; }
        th, td { border: 1px solid #ddd; padding: 8px; text-align: left; }
        th { background-color: #f4f4f4; }
        tr:nth-child(even) { background-color: #fafafa; }
        .nav a { margin-right: 10px; }
        .empty { color: #666; font-style: italic; }
        .error { color: red; }
    </style>
</head>
<body>
    <h1>rowdb</h1>
    {{if .Error}}
        <p class="error">{{.Error}}</p>
    {{else}}
        <p>{{.Count}} of {{.Capacity}} rows used.</p>
        {{if .Empty}}
            <p class="empty">No rows yet.</p>
        {{else}}
            <table>
                <thead><tr><th>id</th><th>username</th><th>email</th></tr></thead>
                <tbody>
                    {{range .Rows}}<tr>{{range .}}<td>{{.}}</td>{{end}}</tr>{{end}}
                </tbody>
            </table>
            <div class="nav">
                {{if .HasPrev}}<a href="{{.PrevURL}}">← Previous</a>{{end}}
                {{if .HasNext}}<a href="{{.NextURL}}">Next →</a>{{end}}
                <span>Showing rows {{.Offset}} - {{.OffsetEnd}}</span>
            </div>
        {{end}}
    {{end}}
</body>
</html>`))

// handleIndex serves the paginated record listing.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	limit, offset := paginate(r)
	page := recordsPage{Limit: limit, Offset: offset}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	if s.executor == nil {
		page.Error = "Database not initialized"
		w.WriteHeader(http.StatusServiceUnavailable)
		recordsTemplate.Execute(w, page)
		return
	}

	tbl := s.executor.Table()
	all, err := tbl.Scan()
	if err != nil {
		page.Error = fmt.Sprintf("Scan error: %v", err)
		w.WriteHeader(http.StatusInternalServerError)
		recordsTemplate.Execute(w, page)
		return
	}

	rows, hasMore := window(all, limit, offset)
	for _, row := range rows {
		page.Rows = append(page.Rows, []string{fmt.Sprint(row.ID), row.Username, row.Email})
	}

	page.Count = len(all)
	page.Capacity = tbl.Capacity()
	page.Empty = len(page.Rows) == 0
	page.OffsetEnd = offset + len(page.Rows)
	page.HasPrev = offset > 0
	page.HasNext = hasMore

	if page.HasPrev {
		page.PrevURL = fmt.Sprintf("/?limit=%d&offset=%d", limit, max(offset-limit, 0))
	}
	if page.HasNext {
		page.NextURL = fmt.Sprintf("/?limit=%d&offset=%d", limit, offset+limit)
	}

	w.WriteHeader(http.StatusOK)
	recordsTemplate.Execute(w, page)
}

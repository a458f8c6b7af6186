package web

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cabewaldrop/rowdb/internal/record"
)

func postJSON(t *testing.T, url string, body interface{}) *http.Response {
	t.Helper()

	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to marshal body: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("failed to POST %s: %v", url, err)
	}
	return resp
}

func decodeResponse(t *testing.T, resp *http.Response, data interface{}) APIResponse {
	t.Helper()
	defer resp.Body.Close()

	var raw struct {
		APIResponse
		Data json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if data != nil && len(raw.Data) > 0 {
		if err := json.Unmarshal(raw.Data, data); err != nil {
			t.Fatalf("Failed to decode data: %v", err)
		}
	}
	return raw.APIResponse
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := NewServer(":0", setupTestExecutor(t))
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts
}

func TestAPIWithoutExecutor(t *testing.T) {
	srv := NewServer(":0", nil)
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/records")
	if err != nil {
		t.Fatalf("Failed to GET /api/records: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("Expected status 503, got %d", resp.StatusCode)
	}
}

func TestAPIInsertAndList(t *testing.T) {
	ts := newTestServer(t)

	id := uint32(1)
	resp := postJSON(t, ts.URL+"/api/records", InsertRequest{ID: &id, Username: "alice", Email: "alice@example.com"})
	if resp.StatusCode != http.StatusCreated {
		t.Errorf("Expected status 201, got %d", resp.StatusCode)
	}
	var inserted record.Record
	if apiResp := decodeResponse(t, resp, &inserted); !apiResp.Success {
		t.Fatalf("Expected success=true, got false: %s", apiResp.Error)
	}
	if inserted.Username != "alice" {
		t.Errorf("Expected username alice, got %q", inserted.Username)
	}

	resp, err := http.Get(ts.URL + "/api/records")
	if err != nil {
		t.Fatalf("Failed to GET /api/records: %v", err)
	}
	var list RecordsResponse
	decodeResponse(t, resp, &list)

	if list.TotalCount != 1 || len(list.Records) != 1 {
		t.Fatalf("Expected 1 record, got %+v", list)
	}
	want := record.Record{ID: 1, Username: "alice", Email: "alice@example.com"}
	if list.Records[0] != want {
		t.Errorf("Expected %v, got %v", want, list.Records[0])
	}
}

func TestAPIListPagination(t *testing.T) {
	ts := newTestServer(t)

	for i := uint32(0); i < 5; i++ {
		id := i
		resp := postJSON(t, ts.URL+"/api/records", InsertRequest{ID: &id, Username: fmt.Sprintf("u%d", i), Email: "e"})
		resp.Body.Close()
	}

	resp, err := http.Get(ts.URL + "/api/records?limit=2&offset=2")
	if err != nil {
		t.Fatalf("Failed to GET /api/records: %v", err)
	}
	var list RecordsResponse
	decodeResponse(t, resp, &list)

	if list.TotalCount != 5 {
		t.Errorf("Expected total 5, got %d", list.TotalCount)
	}
	if len(list.Records) != 2 || list.Records[0].ID != 2 || list.Records[1].ID != 3 {
		t.Errorf("Unexpected page: %+v", list.Records)
	}
	if !list.HasMore {
		t.Error("Expected has_more=true")
	}
}

func TestAPIInsertValidation(t *testing.T) {
	ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/records", map[string]string{"username": "a b", "email": "x"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", resp.StatusCode)
	}
	if apiResp := decodeResponse(t, resp, nil); apiResp.Success {
		t.Error("Expected success=false")
	}

	resp, err := http.Post(ts.URL+"/api/records", "application/json", strings.NewReader("{not json"))
	if err != nil {
		t.Fatalf("Failed to POST: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected status 400 for bad JSON, got %d", resp.StatusCode)
	}
}

func TestAPIInsertTableFull(t *testing.T) {
	exec := setupTestExecutor(t)
	tbl := exec.Table()
	for i := 0; i < tbl.Capacity(); i++ {
		if err := tbl.Insert(record.Record{ID: uint32(i)}); err != nil {
			t.Fatalf("Insert %d failed: %v", i, err)
		}
	}

	ts := httptest.NewServer(NewServer(":0", exec).Router())
	defer ts.Close()

	id := uint32(1)
	resp := postJSON(t, ts.URL+"/api/records", InsertRequest{ID: &id, Username: "late", Email: "late@x"})
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("Expected status 409, got %d", resp.StatusCode)
	}
	apiResp := decodeResponse(t, resp, nil)
	if apiResp.Hint == "" {
		t.Error("Expected a hint for table full")
	}
}

func TestAPIExec(t *testing.T) {
	ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/exec", ExecRequest{Command: "insert 7 bob bob@x.io"})
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}
	var out ExecResponse
	decodeResponse(t, resp, &out)
	if out.Message != "Executed." {
		t.Errorf("Expected 'Executed.', got %q", out.Message)
	}

	resp = postJSON(t, ts.URL+"/api/exec", ExecRequest{Command: "select"})
	decodeResponse(t, resp, &out)
	if out.Output != "(7, bob, bob@x.io)" {
		t.Errorf("Unexpected output %q", out.Output)
	}
}

func TestAPIExecErrors(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		command string
		status  int
		message string
	}{
		{"insert 1 alice", http.StatusBadRequest, "invalid insert expected 3 args"},
		{"insert abc alice x", http.StatusBadRequest, "invalid id. not a number"},
		{"drop", http.StatusBadRequest, "unknown command"},
		{"", http.StatusBadRequest, "command field is required"},
		{".exit", http.StatusBadRequest, "meta commands are only available in the shell"},
	}

	for _, tt := range tests {
		t.Run(tt.command, func(t *testing.T) {
			resp := postJSON(t, ts.URL+"/api/exec", ExecRequest{Command: tt.command})
			if resp.StatusCode != tt.status {
				t.Errorf("Expected status %d, got %d", tt.status, resp.StatusCode)
			}
			apiResp := decodeResponse(t, resp, nil)
			if apiResp.Error != tt.message {
				t.Errorf("Expected error %q, got %q", tt.message, apiResp.Error)
			}
		})
	}
}

func TestAPIStats(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/stats")
	if err != nil {
		t.Fatalf("Failed to GET /api/stats: %v", err)
	}
	var stats struct {
		RowCount    int    `json:"row_count"`
		Capacity    int    `json:"capacity"`
		RecordSize  int    `json:"record_size"`
		RowsPerPage int    `json:"rows_per_page"`
		SlotPolicy  string `json:"slot_policy"`
	}
	decodeResponse(t, resp, &stats)

	if stats.Capacity != 1300 || stats.RecordSize != 307 || stats.RowsPerPage != 13 {
		t.Errorf("Unexpected stats %+v", stats)
	}
	if stats.SlotPolicy != "sequential" {
		t.Errorf("Expected sequential policy, got %q", stats.SlotPolicy)
	}
}

func TestIndexListsRecords(t *testing.T) {
	ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/exec", ExecRequest{Command: "insert 1 <alice> a@x"})
	resp.Body.Close()

	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatalf("Failed to GET /: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	html := string(body)

	if !strings.Contains(html, "1 of 1300 rows used") {
		t.Error("expected row usage in response")
	}
	// Usernames are HTML escaped.
	if !strings.Contains(html, "&lt;alice&gt;") {
		t.Error("expected escaped username in response")
	}
}

func TestWindowHugeOffset(t *testing.T) {
	rows := []record.Record{{ID: 1}, {ID: 2}}

	got, hasMore := window(rows, 50, math.MaxInt)
	if len(got) != 0 || hasMore {
		t.Errorf("expected empty window, got %v (has_more=%v)", got, hasMore)
	}

	got, hasMore = window(rows, 1, 1)
	if len(got) != 1 || got[0].ID != 2 || hasMore {
		t.Errorf("unexpected window %v (has_more=%v)", got, hasMore)
	}
}

func TestListingHugeOffset(t *testing.T) {
	ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/exec", ExecRequest{Command: "insert 1 alice a@x"})
	resp.Body.Close()

	resp, err := http.Get(ts.URL + "/api/records?offset=9223372036854775807")
	if err != nil {
		t.Fatalf("Failed to GET /api/records: %v", err)
	}
	var list RecordsResponse
	decodeResponse(t, resp, &list)
	if len(list.Records) != 0 || list.HasMore || list.TotalCount != 1 {
		t.Errorf("Expected empty page past the end, got %+v", list)
	}

	for _, path := range []string{"/api/records?offset=9223372036854775807", "/?offset=9223372036854775807"} {
		resp, err := http.Get(ts.URL + path)
		if err != nil {
			t.Fatalf("Failed to GET %s: %v", path, err)
		}
		resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Errorf("GET %s: expected status 200, got %d", path, resp.StatusCode)
		}
	}
}

package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cristianoliveira/workbench/internal/tablewindow"
	"github.com/cristianoliveira/workbench/internal/upload"
	"github.com/cristianoliveira/workbench/internal/workbench"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedRequest struct {
	Method string
	Path   string
	Query  map[string]string
	Header http.Header
	Body   map[string]any
}

// fakeServer records requests and answers from a per-route handler table.
type fakeServer struct {
	t        *testing.T
	mu       sync.Mutex
	requests []capturedRequest
	routes   map[string]http.HandlerFunc
	srv      *httptest.Server
}

func newFakeServer(t *testing.T) *fakeServer {
	t.Helper()
	fs := &fakeServer{t: t, routes: map[string]http.HandlerFunc{}}
	fs.srv = httptest.NewServer(http.HandlerFunc(fs.serve))
	t.Cleanup(fs.srv.Close)
	return fs
}

func (fs *fakeServer) handle(method, path string, h http.HandlerFunc) {
	fs.routes[method+" "+path] = h
}

func (fs *fakeServer) json(method, path string, status int, body any) {
	fs.handle(method, path, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if body != nil {
			require.NoError(fs.t, json.NewEncoder(w).Encode(body))
		}
	})
}

func (fs *fakeServer) serve(w http.ResponseWriter, r *http.Request) {
	c := capturedRequest{Method: r.Method, Path: r.URL.Path, Query: map[string]string{}, Header: r.Header.Clone()}
	for k := range r.URL.Query() {
		c.Query[k] = r.URL.Query().Get(k)
	}
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		data, _ := io.ReadAll(r.Body)
		if len(data) > 0 {
			_ = json.Unmarshal(data, &c.Body)
		}
	}
	fs.mu.Lock()
	fs.requests = append(fs.requests, c)
	fs.mu.Unlock()

	if h, ok := fs.routes[r.Method+" "+r.URL.Path]; ok {
		h(w, r)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (fs *fakeServer) last() capturedRequest {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	require.NotEmpty(fs.t, fs.requests)
	return fs.requests[len(fs.requests)-1]
}

func (fs *fakeServer) count() int {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return len(fs.requests)
}

func newTestClient(t *testing.T, fs *fakeServer) *Client {
	t.Helper()
	c := New(Options{
		BaseURL:       fs.srv.URL,
		CSRFToken:     "csrf-abc",
		SessionCookie: "sessionid=s3cr3t",
		Timeout:       5 * time.Second,
	})
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestLoadWorkflowSendsCredentials(t *testing.T) {
	fs := newFakeServer(t)
	fs.json(http.MethodGet, "/api/workflows/7", http.StatusOK, map[string]any{
		"id": 7, "name": "Sales", "revision": 4,
		"wf_modules": []map[string]any{{"id": 31, "status": "ready"}},
	})
	c := newTestClient(t, fs)

	wf, err := c.LoadWorkflow(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "Sales", wf.Name)
	assert.Equal(t, 4, wf.Revision)
	require.Len(t, wf.Modules, 1)
	assert.Equal(t, 31, wf.Modules[0].ID)

	req := fs.last()
	assert.Equal(t, "csrf-abc", req.Header.Get("X-CSRFToken"))
	assert.Equal(t, "sessionid=s3cr3t", req.Header.Get("Cookie"))
	assert.NotEmpty(t, req.Header.Get("X-Request-ID"))
}

func TestRenderQuery(t *testing.T) {
	tests := []struct {
		name       string
		start, end int
		want       map[string]string
	}{
		{"initial window sends only endrow", 0, 120, map[string]string{"endrow": "120"}},
		{"fetch more sends both", 120, 220, map[string]string{"startrow": "120", "endrow": "220"}},
		{"whole table sends nothing", 0, 0, map[string]string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := newFakeServer(t)
			fs.json(http.MethodGet, "/api/wfmodules/12/render", http.StatusOK, map[string]any{
				"columns": []string{"a"}, "rows": []map[string]any{{"a": 1}},
				"start_row": tt.start, "end_row": tt.start + 1, "total_rows": 500,
			})
			c := newTestClient(t, fs)

			page, err := c.Render(context.Background(), 12, tt.start, tt.end)
			require.NoError(t, err)
			assert.Equal(t, tt.want, fs.last().Query)
			assert.Equal(t, 500, page.TotalRows)
			assert.Equal(t, []string{"a"}, page.Columns)
			assert.Equal(t, tablewindow.Row{"a": float64(1)}, page.Rows[0])
		})
	}
}

func TestStatusErrors(t *testing.T) {
	tests := []struct {
		status  int
		body    any
		target  error
		message string
	}{
		{http.StatusNotFound, nil, ErrNotFound, ""},
		{http.StatusForbidden, nil, ErrForbidden, ""},
		{http.StatusBadRequest, map[string]any{"message": "bad row number", "status_code": 400}, ErrBadRequest, "bad row number"},
		{http.StatusInternalServerError, nil, ErrServer, ""},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			fs := newFakeServer(t)
			fs.json(http.MethodGet, "/api/wfmodules/3/render", tt.status, tt.body)
			c := newTestClient(t, fs)

			_, err := c.Render(context.Background(), 3, 0, 10)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.target)

			var se *StatusError
			require.True(t, errors.As(err, &se))
			assert.Equal(t, tt.status, se.StatusCode)
			assert.Equal(t, tt.message, se.Message)
			assert.Contains(t, err.Error(), "/api/wfmodules/3/render")
		})
	}
}

func TestMalformedJSONIsDecodeError(t *testing.T) {
	fs := newFakeServer(t)
	fs.handle(http.MethodGet, "/api/wfmodules/3/render", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"columns": [`)
	})
	c := newTestClient(t, fs)

	_, err := c.Render(context.Background(), 3, 0, 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode response")
}

func TestContextDeadline(t *testing.T) {
	fs := newFakeServer(t)
	fs.handle(http.MethodGet, "/api/workflows/1", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})
	c := newTestClient(t, fs)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := c.LoadWorkflow(ctx, 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestWorkflowMutations(t *testing.T) {
	fs := newFakeServer(t)
	fs.json(http.MethodPut, "/api/workflows/7/addmodule", http.StatusCreated, map[string]int{"id": 99})
	fs.json(http.MethodGet, "/api/workflows/7/duplicate", http.StatusCreated, map[string]int{"id": 8})
	c := newTestClient(t, fs)
	ctx := context.Background()

	id, err := c.AddModule(ctx, 7, 3, 1)
	require.NoError(t, err)
	assert.Equal(t, 99, id)
	assert.Equal(t, map[string]any{"moduleId": float64(3), "insertBefore": float64(1)}, fs.last().Body)

	require.NoError(t, c.SetWorkflowPublic(ctx, 7, true))
	assert.Equal(t, http.MethodPost, fs.last().Method)
	assert.Equal(t, map[string]any{"public": true}, fs.last().Body)

	name, err := c.SetWorkflowName(ctx, 7, "   ")
	require.NoError(t, err)
	assert.Equal(t, workbench.UntitledWorkflow, name)
	assert.Equal(t, map[string]any{"newName": "Untitled Workflow"}, fs.last().Body)

	require.NoError(t, c.Undo(ctx, 7))
	assert.Equal(t, "/api/workflows/7/undo", fs.last().Path)
	assert.Equal(t, http.MethodPut, fs.last().Method)

	require.NoError(t, c.Redo(ctx, 7))
	assert.Equal(t, "/api/workflows/7/redo", fs.last().Path)

	dup, err := c.Duplicate(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, 8, dup)

	require.NoError(t, c.SetParameter(ctx, 55, "a,b"))
	assert.Equal(t, "/api/parameters/55", fs.last().Path)
	assert.Equal(t, http.MethodPatch, fs.last().Method)
	assert.Equal(t, map[string]any{"value": "a,b"}, fs.last().Body)
}

func TestWfModuleMutations(t *testing.T) {
	fs := newFakeServer(t)
	fs.json(http.MethodGet, "/api/wfmodules/31/dataversions", http.StatusOK, map[string]any{
		"versions": []string{"2017-10-01T00:00:00.000000Z", "2017-10-02T00:00:00.000000Z"},
		"selected": "2017-10-02T00:00:00.000000Z",
	})
	c := newTestClient(t, fs)
	ctx := context.Background()

	require.NoError(t, c.DeleteModule(ctx, 31))
	assert.Equal(t, http.MethodDelete, fs.last().Method)
	assert.Equal(t, "/api/wfmodules/31", fs.last().Path)

	require.NoError(t, c.SetNotes(ctx, 31, "check totals"))
	assert.Equal(t, map[string]any{"notes": "check totals"}, fs.last().Body)

	require.NoError(t, c.SetCollapsed(ctx, 31, true))
	assert.Equal(t, map[string]any{"collapsed": true}, fs.last().Body)

	versions, err := c.DataVersions(ctx, 31)
	require.NoError(t, err)
	assert.Len(t, versions.Versions, 2)
	assert.Equal(t, "2017-10-02T00:00:00.000000Z", versions.Selected)

	require.NoError(t, c.SetDataVersion(ctx, 31, versions.Versions[0]))
	assert.Equal(t, map[string]any{"selected": "2017-10-01T00:00:00.000000Z"}, fs.last().Body)

	require.NoError(t, c.SetUpdateSettings(ctx, 31, workbench.UpdateSettings{
		AutoUpdateData: true, UpdateInterval: 10, UpdateUnits: "minutes",
	}))
	assert.Equal(t, map[string]any{
		"auto_update_data": true, "update_interval": float64(10), "update_units": "minutes",
	}, fs.last().Body)
}

func TestSetUpdateSettingsRejectsUnknownUnitLocally(t *testing.T) {
	fs := newFakeServer(t)
	c := newTestClient(t, fs)

	err := c.SetUpdateSettings(context.Background(), 31, workbench.UpdateSettings{
		AutoUpdateData: true, UpdateInterval: 1, UpdateUnits: "fortnights",
	})
	assert.ErrorIs(t, err, workbench.ErrUnknownUnit)
	assert.Equal(t, 0, fs.count())
}

func TestInputColumnsRequestsOneRow(t *testing.T) {
	fs := newFakeServer(t)
	fs.json(http.MethodGet, "/api/wfmodules/5/input", http.StatusOK, map[string]any{
		"columns": []string{"region", "sales"}, "rows": []map[string]any{{"region": "N", "sales": 3}},
		"start_row": 0, "end_row": 1, "total_rows": 80,
	})
	c := newTestClient(t, fs)

	cols, err := c.InputColumns(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"region", "sales"}, cols)
	assert.Equal(t, map[string]string{"endrow": "1"}, fs.last().Query)
}

func TestListEndpoints(t *testing.T) {
	fs := newFakeServer(t)
	fs.json(http.MethodGet, "/api/workflows", http.StatusOK, []map[string]any{{"id": 1, "name": "A"}, {"id": 2, "name": "B"}})
	fs.json(http.MethodGet, "/api/modules/", http.StatusOK, []map[string]any{{"id": 4, "name": "Filter", "category": "Clean"}})
	c := newTestClient(t, fs)

	wfs, err := c.ListWorkflows(context.Background())
	require.NoError(t, err)
	require.Len(t, wfs, 2)
	assert.Equal(t, "B", wfs[1].Name)

	mods, err := c.ListModules(context.Background())
	require.NoError(t, err)
	require.Len(t, mods, 1)
	assert.Equal(t, "Clean", mods[0].Category)
}

func TestUploadFileSendsMultipartFields(t *testing.T) {
	fs := newFakeServer(t)
	got := map[string]string{}
	var fileBody string
	fs.handle(http.MethodPost, "/api/uploadfile", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		for k := range r.MultipartForm.Value {
			got[k] = r.FormValue(k)
		}
		f, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		data, _ := io.ReadAll(f)
		fileBody = string(data)
		got["filename"] = hdr.Filename
		w.WriteHeader(http.StatusOK)
	})
	c := newTestClient(t, fs)

	path := filepath.Join(t.TempDir(), "sales.csv")
	require.NoError(t, os.WriteFile(path, []byte("a,b\n1,2\n"), 0o644))
	f, err := upload.Prepare(path)
	require.NoError(t, err)

	require.NoError(t, c.UploadFile(context.Background(), 31, f))
	assert.Equal(t, "sales.csv", got["name"])
	assert.Equal(t, f.UUID, got["uuid"])
	assert.Equal(t, "8", got["size"])
	assert.Equal(t, "31", got["wf_module"])
	assert.Equal(t, "sales.csv", got["filename"])
	assert.Equal(t, "a,b\n1,2\n", fileBody)
}

func TestUploadFileReportsStatus(t *testing.T) {
	fs := newFakeServer(t)
	fs.json(http.MethodPost, "/api/uploadfile", http.StatusForbidden, nil)
	c := newTestClient(t, fs)

	path := filepath.Join(t.TempDir(), "sales.csv")
	require.NoError(t, os.WriteFile(path, []byte("a\n"), 0o644))
	f, err := upload.Prepare(path)
	require.NoError(t, err)

	assert.ErrorIs(t, c.UploadFile(context.Background(), 31, f), ErrForbidden)
}

func TestNewStatusErrorMessage(t *testing.T) {
	assert.Equal(t, "server down", newStatusError("GET", "/x", 502, "server down").Message)
	assert.Equal(t, "", newStatusError("GET", "/x", 404, "<html>not found</html>").Message)
	assert.Equal(t, "nope", newStatusError("GET", "/x", 400, `{"message":"nope","status_code":400}`).Message)
	assert.Nil(t, (&StatusError{StatusCode: http.StatusConflict}).Unwrap())
	assert.ErrorIs(t, &StatusError{StatusCode: http.StatusUnauthorized}, ErrForbidden)
}

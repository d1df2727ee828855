package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/faizuddinzulkifli7-netizen/facebook-url-search/internal/config"
	"github.com/faizuddinzulkifli7-netizen/facebook-url-search/internal/model"
)

func serveTestConfig() *config.Config {
	return &config.Config{
		Google: config.GoogleConfig{
			Country:    "us",
			Language:   "en",
			NumResults: 10,
		},
		Anthropic: config.AnthropicConfig{Mode: "off"},
		Match:     config.DefaultMatch(),
		Batch: config.BatchConfig{
			Concurrency:    2,
			RowTimeoutSecs: 5,
		},
	}
}

func newTestServer(t *testing.T) (*httptest.Server, *serverEnv) {
	t.Helper()
	env, err := newServerEnv(context.Background(), serveTestConfig(), true, true)
	require.NoError(t, err)
	srv := httptest.NewServer(newRouter(env))
	t.Cleanup(srv.Close)
	return srv, env
}

func uploadCSV(t *testing.T, srv *httptest.Server, filename, content string, fields map[string]string) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())

	resp, err := http.Post(srv.URL+"/upload", mw.FormDataContentType(), &buf)
	require.NoError(t, err)
	return resp
}

func waitForTerminal(t *testing.T, srv *httptest.Server, taskID string) model.Task {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := http.Get(srv.URL + "/status/" + taskID)
		require.NoError(t, err)

		var task model.Task
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&task))
		resp.Body.Close()

		if task.Status.Terminal() {
			return task
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("task never reached a terminal state")
	return model.Task{}
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, false, body["google_configured"])
	assert.Equal(t, false, body["ai_enabled"])
}

func TestUploadLifecycle(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := uploadCSV(t, srv, "businesses.csv",
		"Business Name,Location\nAcme,Springfield\nGlobex,Cypress Creek\n", nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var upload struct {
		TaskID       string `json:"task_id"`
		TotalRecords int    `json:"total_records"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&upload))
	assert.NotEmpty(t, upload.TaskID)
	assert.Equal(t, 2, upload.TotalRecords)

	task := waitForTerminal(t, srv, upload.TaskID)
	assert.Equal(t, model.TaskCompleted, task.Status)
	assert.Equal(t, 2, task.Processed)

	// The stub backend returns nothing, so every row is a no-match.
	dl, err := http.Get(srv.URL + "/download/" + upload.TaskID)
	require.NoError(t, err)
	defer dl.Body.Close()
	require.Equal(t, http.StatusOK, dl.StatusCode)
	assert.Equal(t, "text/csv", dl.Header.Get("Content-Type"))
	assert.Contains(t, dl.Header.Get("Content-Disposition"), upload.TaskID)

	var csvBody bytes.Buffer
	_, err = csvBody.ReadFrom(dl.Body)
	require.NoError(t, err)
	assert.Contains(t, csvBody.String(), "Business Name,Location,Facebook URL,Type,Confidence,Notes")
	assert.Contains(t, csvBody.String(), "Acme")
}

func TestUploadRejectsBadFile(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := uploadCSV(t, srv, "businesses.csv", "Company,Region\nAcme,West\n", nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUploadRejectsBadLanguage(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := uploadCSV(t, srv, "businesses.csv",
		"Business Name,Location\nAcme,Springfield\n",
		map[string]string{"language": "not a language"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestStatusUnknownTask(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/status/no-such-task")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDownloadBeforeCompletion(t *testing.T) {
	srv, env := newTestServer(t)

	// Registered but never run: stays pending.
	id := env.registry.Create([]model.BusinessQuery{{Name: "Acme"}}, "us", "en")

	resp, err := http.Get(srv.URL + "/download/" + id)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestNotFoundAndRequery(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := uploadCSV(t, srv, "businesses.csv",
		"Business Name,Location\nAcme,Springfield\n",
		map[string]string{"country_code": "it", "language": "it"})
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var upload struct {
		TaskID string `json:"task_id"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&upload))
	waitForTerminal(t, srv, upload.TaskID)

	nf, err := http.Get(srv.URL + fmt.Sprintf("/tasks/%s/notfound", upload.TaskID))
	require.NoError(t, err)
	defer nf.Body.Close()
	require.Equal(t, http.StatusOK, nf.StatusCode)

	var nfBody struct {
		Count    int                   `json:"count"`
		NotFound []model.BusinessQuery `json:"not_found"`
	}
	require.NoError(t, json.NewDecoder(nf.Body).Decode(&nfBody))
	require.Equal(t, 1, nfBody.Count)
	assert.Equal(t, "Acme", nfBody.NotFound[0].Name)

	rq, err := http.Post(srv.URL+fmt.Sprintf("/tasks/%s/requery", upload.TaskID), "", nil)
	require.NoError(t, err)
	defer rq.Body.Close()
	require.Equal(t, http.StatusOK, rq.StatusCode)

	var requery struct {
		TaskID       string `json:"task_id"`
		TotalRecords int    `json:"total_records"`
	}
	require.NoError(t, json.NewDecoder(rq.Body).Decode(&requery))
	assert.NotEqual(t, upload.TaskID, requery.TaskID)
	assert.Equal(t, 1, requery.TotalRecords)

	retried := waitForTerminal(t, srv, requery.TaskID)
	assert.Equal(t, model.TaskCompleted, retried.Status)
}

func TestServeHTTPDrainsInflightRequests(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(entered)
		<-release
		w.WriteHeader(http.StatusOK)
	})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	srv := &http.Server{Handler: handler}

	ctx, cancel := context.WithCancel(context.Background())
	served := make(chan error, 1)
	go func() {
		served <- serveHTTP(ctx, srv, ln)
	}()

	respErr := make(chan error, 1)
	go func() {
		resp, err := http.Get("http://" + ln.Addr().String() + "/")
		if err == nil {
			resp.Body.Close()
		}
		respErr <- err
	}()

	// Shut down while the request is still being handled.
	<-entered
	cancel()

	select {
	case err := <-served:
		t.Fatalf("server exited before draining in-flight requests: %v", err)
	case <-time.After(100 * time.Millisecond):
	}

	close(release)
	require.NoError(t, <-respErr)

	select {
	case err := <-served:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not exit after draining")
	}
}

func TestRequeryWhileRunning(t *testing.T) {
	srv, env := newTestServer(t)

	id := env.registry.Create([]model.BusinessQuery{{Name: "Acme"}}, "us", "en")
	require.NoError(t, env.registry.SetRunning(id))

	resp, err := http.Post(srv.URL+fmt.Sprintf("/tasks/%s/requery", id), "", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

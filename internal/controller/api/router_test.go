package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/ricardoalejandro/Download-videos-youtube/internal/core/allowlist"
	"github.com/ricardoalejandro/Download-videos-youtube/internal/core/event"
	"github.com/ricardoalejandro/Download-videos-youtube/internal/core/job"
	"github.com/ricardoalejandro/Download-videos-youtube/internal/core/resolver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedResolver returns a fixed outcome, optionally holding every call
// until release is closed.
type scriptedResolver struct {
	info    *resolver.MediaInfo
	err     error
	release chan struct{}
}

func (s *scriptedResolver) Resolve(context.Context, string, string) (*resolver.MediaInfo, error) {
	if s.release != nil {
		<-s.release
	}
	return s.info, s.err
}

func (s *scriptedResolver) Probe(ctx context.Context, url string) (*resolver.MediaInfo, error) {
	return s.Resolve(ctx, url, "")
}

func clipInfo() *resolver.MediaInfo {
	return &resolver.MediaInfo{
		Title:    "Test Clip",
		Ext:      "mp4",
		URL:      "https://cdn.example.com/clip.mp4",
		Duration: 12,
		Filesize: 4096,
		Formats: []resolver.Format{
			{FormatID: "22", Ext: "mp4", URL: "https://cdn.example.com/22.mp4", Height: 720, VCodec: "avc1", ACodec: "mp4a", TBR: 1200},
			{FormatID: "140", Ext: "m4a", URL: "https://cdn.example.com/140.m4a", VCodec: "none", ACodec: "mp4a", ABR: 129.5, ASR: 44100},
		},
	}
}

func newTestServer(res resolver.Resolver) *echo.Echo {
	store := job.NewStore()
	bus := event.NewBus()
	sw := job.NewSweeper(store, bus, 24*time.Hour, 1000)
	mgr := job.NewManager(store, res, bus, sw, 2)
	allow := allowlist.New([]string{
		"youtube.com", "www.youtube.com", "youtu.be",
		"instagram.com", "www.instagram.com", "tiktok.com",
	})

	e := echo.New()
	SetupRouter(e, RouterConfig{Manager: mgr, Resolver: res, Allowlist: allow})
	return e
}

func doRequest(e *echo.Echo, method, path, sessionID string, body any) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if sessionID != "" {
		req.Header.Set("X-Session-ID", sessionID)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m), "body: %s", rec.Body.String())
	return m
}

func startJob(t *testing.T, e *echo.Echo, sessionID, url string) string {
	t.Helper()
	rec := doRequest(e, http.MethodPost, "/start", sessionID, map[string]string{"url": url})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	require.Equal(t, true, body["success"])
	id, _ := body["job_id"].(string)
	require.NotEmpty(t, id)
	return id
}

func awaitJobStatus(t *testing.T, e *echo.Echo, sessionID, jobID, want string) map[string]any {
	t.Helper()
	var last map[string]any
	require.Eventually(t, func() bool {
		rec := doRequest(e, http.MethodGet, "/status/"+jobID, sessionID, nil)
		if rec.Code != http.StatusOK {
			return false
		}
		last = decodeBody(t, rec)
		return last["status"] == want
	}, time.Second, 50*time.Millisecond)
	return last
}

func TestStartStatusDownloadFlow(t *testing.T) {
	e := newTestServer(&scriptedResolver{info: clipInfo()})

	rec := doRequest(e, http.MethodPost, "/start", "alice", map[string]string{
		"url": "https://www.youtube.com/watch?v=abc", "quality": "best",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "alice", body["session_id"])
	id := body["job_id"].(string)
	assert.Equal(t, "/status/"+id, body["status_url"])

	status := awaitJobStatus(t, e, "alice", id, "ready")
	result, ok := status["result"].(map[string]any)
	require.True(t, ok, "ready job must carry a result")
	assert.Equal(t, "https://cdn.example.com/clip.mp4", result["download_url"])
	assert.Equal(t, "Test Clip.mp4", result["filename"])

	rec = doRequest(e, http.MethodGet, "/download/"+id, "alice", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	dl := decodeBody(t, rec)
	assert.Equal(t, "https://cdn.example.com/clip.mp4", dl["download_url"])
	assert.Equal(t, "Test Clip.mp4", dl["filename"])
	assert.EqualValues(t, 4096, dl["file_size"])
}

func TestStartRejectsMissingURL(t *testing.T) {
	e := newTestServer(&scriptedResolver{info: clipInfo()})

	rec := doRequest(e, http.MethodPost, "/start", "alice", map[string]string{})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "URL is required", body["error"])
}

func TestStartRejectsDisallowedURL(t *testing.T) {
	e := newTestServer(&scriptedResolver{info: clipInfo()})

	rec := doRequest(e, http.MethodPost, "/start", "alice", map[string]string{
		"url": "https://evil.example.com/watch?v=abc",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Contains(t, body["error"], "URL not allowed")
}

func TestDownloadBeforeReady(t *testing.T) {
	res := &scriptedResolver{info: clipInfo(), release: make(chan struct{})}
	defer close(res.release)
	e := newTestServer(res)

	id := startJob(t, e, "alice", "https://youtu.be/abc")

	rec := doRequest(e, http.MethodGet, "/download/"+id, "alice", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "download is not ready", body["error"])
}

func TestSessionIsolation(t *testing.T) {
	e := newTestServer(&scriptedResolver{info: clipInfo()})

	id := startJob(t, e, "alice", "https://youtu.be/abc")

	rec := doRequest(e, http.MethodGet, "/status/"+id, "bob", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "job not found in this session", body["error"])

	rec = doRequest(e, http.MethodGet, "/jobs", "bob", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 0, decodeBody(t, rec)["total"])

	rec = doRequest(e, http.MethodGet, "/jobs", "alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, decodeBody(t, rec)["total"])
}

func TestMissingSessionHeaderUsesDefault(t *testing.T) {
	e := newTestServer(&scriptedResolver{info: clipInfo()})

	rec := doRequest(e, http.MethodPost, "/start", "", map[string]string{
		"url": "https://youtu.be/abc",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "default", decodeBody(t, rec)["session_id"])
}

func TestCancelEndpoint(t *testing.T) {
	res := &scriptedResolver{info: clipInfo(), release: make(chan struct{})}
	defer close(res.release)
	e := newTestServer(res)

	id := startJob(t, e, "alice", "https://youtu.be/abc")

	rec := doRequest(e, http.MethodDelete, "/cancel/"+id, "alice", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Download cancelled", body["message"])

	rec = doRequest(e, http.MethodGet, "/status/"+id, "alice", nil)
	assert.Equal(t, "cancelled", decodeBody(t, rec)["status"])

	rec = doRequest(e, http.MethodDelete, "/cancel/unknown-job", "alice", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestJobsListCounts(t *testing.T) {
	res := &scriptedResolver{info: clipInfo(), release: make(chan struct{})}
	e := newTestServer(res)

	first := startJob(t, e, "alice", "https://youtu.be/a")
	second := startJob(t, e, "alice", "https://youtu.be/b")

	rec := doRequest(e, http.MethodGet, "/jobs", "alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "alice", body["session_id"])
	assert.EqualValues(t, 2, body["total"])
	assert.EqualValues(t, 2, body["active"])

	jobs, ok := body["jobs"].([]any)
	require.True(t, ok)
	require.Len(t, jobs, 2)
	assert.Equal(t, first, jobs[0].(map[string]any)["id"])
	assert.Equal(t, second, jobs[1].(map[string]any)["id"])

	close(res.release)
	require.Eventually(t, func() bool {
		rec := doRequest(e, http.MethodGet, "/jobs", "alice", nil)
		return decodeBody(t, rec)["active"] == float64(0)
	}, time.Second, 50*time.Millisecond)
}

func TestFormatsProbe(t *testing.T) {
	e := newTestServer(&scriptedResolver{info: clipInfo()})

	rec := doRequest(e, http.MethodPost, "/formats", "alice", map[string]string{
		"url": "https://youtu.be/abc",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	assert.EqualValues(t, 2, body["total_formats"])

	info, ok := body["video_info"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Test Clip", info["title"])

	qualities, ok := body["common_qualities"].([]any)
	require.True(t, ok)
	require.NotEmpty(t, qualities)
	assert.Equal(t, "best", qualities[0].(map[string]any)["value"])
}

func TestFormatsClassifiedError(t *testing.T) {
	e := newTestServer(&scriptedResolver{err: errors.New("login required to view this post")})

	rec := doRequest(e, http.MethodPost, "/formats", "alice", map[string]string{
		"url": "https://www.instagram.com/p/abc/",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "This Instagram content is private or requires login", body["error"])
	assert.Equal(t, "instagram", body["platform_detected"])
}

func TestFormatsRejectsDisallowedURL(t *testing.T) {
	e := newTestServer(&scriptedResolver{info: clipInfo()})

	rec := doRequest(e, http.MethodPost, "/formats", "alice", map[string]string{
		"url": "https://evil.example.com/v/1",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, false, decodeBody(t, rec)["success"])
}

func TestHealthAndInfo(t *testing.T) {
	e := newTestServer(&scriptedResolver{info: clipInfo()})

	rec := doRequest(e, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decodeBody(t, rec)["status"])

	rec = doRequest(e, http.MethodGet, "/api/info", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "3.0", body["version"])
	assert.NotEmpty(t, body["endpoints"])
}

package main

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/huyinayena-commits/EasyScanlate/pkg/chapter"
	"github.com/huyinayena-commits/EasyScanlate/pkg/config"
	"github.com/huyinayena-commits/EasyScanlate/pkg/transcript"
)

// helper to perform requests with auth token
func performRequest(r http.Handler, method, path string, body io.Reader, token string, contentType string) *httptest.ResponseRecorder {
	if body == nil {
		body = http.NoBody
	}
	req, _ := http.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

// stubRunner stands in for the OCR pipeline: every chapter gets two pages.
type stubRunner struct{ calls int }

func (s *stubRunner) Run(ctx context.Context, req chapter.Request) (*chapter.Result, error) {
	s.calls++
	t := transcript.Transcript{Title: req.Title, Pages: []transcript.PageResult{
		{Index: 1, Image: "001.png", Dialogues: []string{"HELLO WORLD"}},
		{Index: 2, Image: "002.png", Dialogues: []string{}, Err: fmt.Errorf("recognize: boom")},
	}}
	md, err := transcript.Markdown(t, transcript.DefaultLabels())
	if err != nil {
		return nil, err
	}
	if err := transcript.WriteFile(req.Output, md); err != nil {
		return nil, err
	}
	return &chapter.Result{Transcript: t, Markdown: md, Output: req.Output, Images: 2, Failed: 1}, nil
}

func setupTestServer(t *testing.T) (*gin.Engine, *stubRunner) {
	// integration tests are opt-in. Set DB_DSN_TEST=1 and DB_DSN to run them.
	if os.Getenv("DB_DSN_TEST") != "1" {
		t.Skip("integration tests are disabled; set DB_DSN_TEST=1 to enable")
	}
	gin.SetMode(gin.TestMode)
	t.Setenv("UPLOAD_BASE", t.TempDir())
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	appCfg = cfg
	jwtSecret = []byte("integration-secret")
	initDB()
	stub := &stubRunner{}
	chapterRunner = stub
	r := gin.Default()
	setupRoutes(r)
	return r, stub
}

func zipUpload(t *testing.T, filename string) (*bytes.Buffer, string) {
	t.Helper()
	var arc bytes.Buffer
	zw := zip.NewWriter(&arc)
	w, _ := zw.Create("001.png")
	_, _ = w.Write([]byte("not really a png"))
	_ = zw.Close()

	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	_ = mw.WriteField("title", "Solo Leveling - Ch 1")
	fw, _ := mw.CreateFormFile("file", filename)
	_, _ = fw.Write(arc.Bytes())
	_ = mw.Close()
	return buf, mw.FormDataContentType()
}

func TestFullFlow(t *testing.T) {
	r, stub := setupTestServer(t)

	// 1. Register user
	regBody, _ := json.Marshal(map[string]string{"username": "reader1", "password": "secret1"})
	resp := performRequest(r, http.MethodPost, "/register", bytes.NewBuffer(regBody), "", "application/json")
	if resp.Code != 200 && resp.Code != 409 {
		t.Fatalf("register failed status=%d body=%s", resp.Code, resp.Body.String())
	}

	// 2. Login
	loginBody, _ := json.Marshal(map[string]string{"username": "reader1", "password": "secret1"})
	resp = performRequest(r, http.MethodPost, "/login", bytes.NewBuffer(loginBody), "", "application/json")
	if resp.Code != 200 {
		t.Fatalf("login failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	var loginResp map[string]any
	_ = json.Unmarshal(resp.Body.Bytes(), &loginResp)
	token, _ := loginResp["token"].(string)
	refresh, _ := loginResp["refresh_token"].(string)
	if token == "" || refresh == "" {
		t.Fatalf("missing tokens in login response: %+v", loginResp)
	}

	// 3. Upload a chapter archive
	body, ct := zipUpload(t, "ch1.cbz")
	resp = performRequest(r, http.MethodPost, "/chapters", body, token, ct)
	if resp.Code != 200 {
		t.Fatalf("upload failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	var up struct {
		ID          uint   `json:"id"`
		Status      string `json:"status"`
		Images      int    `json:"images"`
		FailedPages int    `json:"failed_pages"`
	}
	_ = json.Unmarshal(resp.Body.Bytes(), &up)
	if up.ID == 0 || up.Status != "done" || up.Images != 2 || up.FailedPages != 1 {
		t.Fatalf("unexpected upload response: %s", resp.Body.String())
	}
	if stub.calls != 1 {
		t.Fatalf("runner calls = %d", stub.calls)
	}
	left, _ := filepath.Glob(filepath.Join(uploadBaseDir(), "*", "*"))
	if len(left) != 0 {
		t.Fatalf("upload files left behind: %v", left)
	}

	// 4. Unsupported upload is rejected before processing
	body, ct = zipUpload(t, "notes.txt")
	resp = performRequest(r, http.MethodPost, "/chapters", body, token, ct)
	if resp.Code != http.StatusBadRequest || stub.calls != 1 {
		t.Fatalf("expected 400 for .txt upload, got %d (calls=%d)", resp.Code, stub.calls)
	}

	// 5. List and fetch
	resp = performRequest(r, http.MethodGet, "/chapters", nil, token, "")
	if resp.Code != 200 {
		t.Fatalf("list chapters failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	path := fmt.Sprintf("/chapters/%d", up.ID)
	resp = performRequest(r, http.MethodGet, path, nil, token, "")
	if resp.Code != 200 || !strings.Contains(resp.Body.String(), "HELLO WORLD") {
		t.Fatalf("get chapter failed status=%d body=%s", resp.Code, resp.Body.String())
	}

	// 6. Transcript and HTML (second HTML call is served from cache)
	resp = performRequest(r, http.MethodGet, path+"/transcript", nil, token, "")
	if resp.Code != 200 || !strings.Contains(resp.Body.String(), "## Halaman 2\n\n- *(Tidak ada teks terdeteksi)*") {
		t.Fatalf("transcript failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	for i := 0; i < 2; i++ {
		resp = performRequest(r, http.MethodGet, path+"/html", nil, token, "")
		if resp.Code != 200 || !strings.Contains(resp.Body.String(), "<strong>Teks 1:</strong> HELLO WORLD") {
			t.Fatalf("html #%d failed status=%d body=%s", i+1, resp.Code, resp.Body.String())
		}
	}

	// 7. Unauthorized access to protected endpoint should be 401
	unauth := performRequest(r, http.MethodGet, "/chapters", nil, "", "")
	if unauth.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for unauthorized list got %d", unauth.Code)
	}

	// 8. Refresh rotates, revoked token can't be reused
	refBody, _ := json.Marshal(map[string]string{"refresh_token": refresh})
	resp = performRequest(r, http.MethodPost, "/refresh", bytes.NewBuffer(refBody), "", "application/json")
	if resp.Code != 200 {
		t.Fatalf("refresh failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	resp = performRequest(r, http.MethodPost, "/refresh", bytes.NewBuffer(refBody), "", "application/json")
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("reused refresh token should be rejected, got %d", resp.Code)
	}
}

func TestMigrateCommand(t *testing.T) {
	if os.Getenv("DB_DSN_TEST") != "1" {
		t.Skip("integration tests are disabled; set DB_DSN_TEST=1 to enable")
	}
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	appCfg = cfg
	initDB()
}

package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestIndex_EmbedsVideoFeed(t *testing.T) {
	h, _, _ := testPagesHandler(t)
	recorder := httptest.NewRecorder()

	h.Index(recorder, httptest.NewRequest(http.MethodGet, "/", nil))

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", recorder.Code)
	}
	if !strings.Contains(recorder.Body.String(), `src="/video_feed"`) {
		t.Error("expected index page to embed /video_feed")
	}
}

func TestRegisterForm(t *testing.T) {
	h, _, _ := testPagesHandler(t)
	recorder := httptest.NewRecorder()

	h.RegisterForm(recorder, httptest.NewRequest(http.MethodGet, "/register", nil))

	body := recorder.Body.String()
	for _, want := range []string{`name="name"`, `name="image"`, `enctype="multipart/form-data"`} {
		if !strings.Contains(body, want) {
			t.Errorf("expected register form to contain %s", want)
		}
	}
}

func TestRegister(t *testing.T) {
	h, g, root := testPagesHandler(t)
	recorder := httptest.NewRecorder()
	req := multipartRequest(t, "/register", map[string]string{"name": "alice"}, "image", "me.jpg", "face:alice")

	h.Register(recorder, req)

	if recorder.Code != http.StatusSeeOther {
		t.Fatalf("expected status 303, got %d: %s", recorder.Code, recorder.Body.String())
	}
	if loc := recorder.Header().Get("Location"); loc != "/" {
		t.Errorf("expected redirect to /, got %s", loc)
	}
	if _, err := os.Stat(filepath.Join(root, "known_faces", "alice", "me.jpg")); err != nil {
		t.Errorf("expected uploaded file to be saved: %v", err)
	}
	if g.Snapshot().Len() != 1 {
		t.Errorf("expected gallery to be reloaded with 1 face, got %d", g.Snapshot().Len())
	}
}

func TestRegister_MissingFields(t *testing.T) {
	tests := []struct {
		name   string
		fields map[string]string
		file   bool
	}{
		{"missing name", map[string]string{}, true},
		{"blank name", map[string]string{"name": "  "}, true},
		{"missing image", map[string]string{"name": "bob"}, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h, _, _ := testPagesHandler(t)
			fileField := ""
			if tc.file {
				fileField = "image"
			}
			recorder := httptest.NewRecorder()
			h.Register(recorder, multipartRequest(t, "/register", tc.fields, fileField, "a.jpg", "face:a"))

			if recorder.Code != http.StatusBadRequest {
				t.Errorf("expected status 400, got %d", recorder.Code)
			}
			var result map[string]string
			if err := json.Unmarshal(recorder.Body.Bytes(), &result); err != nil || result["error"] == "" {
				t.Errorf("expected JSON error body, got %s", recorder.Body.String())
			}
		})
	}
}

func TestRegister_NotMultipart(t *testing.T) {
	h, _, _ := testPagesHandler(t)
	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/register", strings.NewReader("name=alice"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	h.Register(recorder, req)

	if recorder.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", recorder.Code)
	}
}

func TestLabelForm_ListsUnknownFiles(t *testing.T) {
	h, _, root := testPagesHandler(t)
	writeTestFile(t, filepath.Join(root, "unknown_faces", "unknown_10_20.jpg"), "face:x")

	recorder := httptest.NewRecorder()
	h.LabelForm(recorder, httptest.NewRequest(http.MethodGet, "/label_unknown", nil))

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", recorder.Code)
	}
	body := recorder.Body.String()
	if !strings.Contains(body, `value="unknown_10_20.jpg"`) {
		t.Error("expected hidden filename field for the unknown file")
	}
	if !strings.Contains(body, `/unknown_faces/unknown_10_20.jpg`) {
		t.Error("expected image link for the unknown file")
	}
}

func TestLabelForm_MissingDirectory(t *testing.T) {
	h, _, root := testPagesHandler(t)
	if err := os.RemoveAll(filepath.Join(root, "unknown_faces")); err != nil {
		t.Fatal(err)
	}

	recorder := httptest.NewRecorder()
	h.LabelForm(recorder, httptest.NewRequest(http.MethodGet, "/label_unknown", nil))

	if recorder.Code != http.StatusOK {
		t.Errorf("expected status 200 for a missing directory, got %d", recorder.Code)
	}
}

func labelRequest(values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/label_unknown", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestLabel(t *testing.T) {
	h, g, root := testPagesHandler(t)
	writeTestFile(t, filepath.Join(root, "unknown_faces", "unknown_10_20.jpg"), "face:x")

	recorder := httptest.NewRecorder()
	h.Label(recorder, labelRequest(url.Values{"filename": {"unknown_10_20.jpg"}, "name": {"carol"}}))

	if recorder.Code != http.StatusSeeOther {
		t.Fatalf("expected status 303, got %d: %s", recorder.Code, recorder.Body.String())
	}
	if _, err := os.Stat(filepath.Join(root, "known_faces", "carol", "unknown_10_20.jpg")); err != nil {
		t.Errorf("expected file moved to known faces: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "unknown_faces", "unknown_10_20.jpg")); !os.IsNotExist(err) {
		t.Error("expected file removed from unknown faces")
	}
	if g.Snapshot().Len() != 1 {
		t.Errorf("expected gallery to contain the labeled face, got %d", g.Snapshot().Len())
	}
}

func TestLabel_Errors(t *testing.T) {
	tests := []struct {
		name     string
		values   url.Values
		wantCode int
	}{
		{"missing filename", url.Values{"name": {"carol"}}, http.StatusBadRequest},
		{"missing name", url.Values{"filename": {"unknown_1_1.jpg"}}, http.StatusBadRequest},
		{"unknown file", url.Values{"filename": {"unknown_9_9.jpg"}, "name": {"carol"}}, http.StatusNotFound},
		{"escaping path", url.Values{"filename": {"../known_faces/x.jpg"}, "name": {"carol"}}, http.StatusNotFound},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h, _, _ := testPagesHandler(t)
			recorder := httptest.NewRecorder()
			h.Label(recorder, labelRequest(tc.values))

			if recorder.Code != tc.wantCode {
				t.Errorf("expected status %d, got %d", tc.wantCode, recorder.Code)
			}
		})
	}
}

func TestUnknownImage(t *testing.T) {
	h, _, root := testPagesHandler(t)
	writeTestFile(t, filepath.Join(root, "unknown_faces", "unknown_3_4.jpg"), "jpegdata")

	recorder := httptest.NewRecorder()
	req := requestWithChiParams(httptest.NewRequest(http.MethodGet, "/unknown_faces/unknown_3_4.jpg", nil),
		map[string]string{"filename": "unknown_3_4.jpg"})
	h.UnknownImage(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", recorder.Code)
	}
	if recorder.Body.String() != "jpegdata" {
		t.Errorf("unexpected body %q", recorder.Body.String())
	}

	recorder = httptest.NewRecorder()
	req = requestWithChiParams(httptest.NewRequest(http.MethodGet, "/unknown_faces/missing.jpg", nil),
		map[string]string{"filename": "missing.jpg"})
	h.UnknownImage(recorder, req)
	if recorder.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", recorder.Code)
	}
}

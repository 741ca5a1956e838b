package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"

	"discussioncomments/entities"
)

func testDiscussions() entities.Discussions {
	return entities.Discussions{
		5: {Title: "Hello", URL: "https://github.com/o/r/discussions/5", Comments: []entities.Comment{
			{ID: "c1", Body: "hi", Author: &entities.Author{Login: "alice"}, Replies: []entities.Reply{}},
		}},
		7: {Title: "Empty", URL: "https://github.com/o/r/discussions/7", Comments: []entities.Comment{}},
	}
}

func serve(t *testing.T, h *Handler, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.Router().ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func TestList(t *testing.T) {
	rec := serve(t, NewHandler(testDiscussions(), nil), http.MethodGet, "/discussions")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var got entities.Discussions
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(testDiscussions(), got); diff != "" {
		t.Errorf("body mismatch (-want +got):\n%s", diff)
	}
}

func TestListNil(t *testing.T) {
	rec := serve(t, NewHandler(nil, nil), http.MethodGet, "/discussions")
	if rec.Code != http.StatusOK || rec.Body.String() != "{}\n" {
		t.Errorf("got %d %q", rec.Code, rec.Body.String())
	}
}

func TestGet(t *testing.T) {
	h := NewHandler(testDiscussions(), nil)
	tests := []struct {
		path   string
		status int
	}{
		{"/discussions/5", http.StatusOK},
		{"/discussions/7", http.StatusOK},
		{"/discussions/6", http.StatusNotFound},
		{"/discussions/abc", http.StatusBadRequest},
		{"/discussions/0", http.StatusBadRequest},
	}
	for _, tt := range tests {
		rec := serve(t, h, http.MethodGet, tt.path)
		if rec.Code != tt.status {
			t.Errorf("GET %s = %d, want %d", tt.path, rec.Code, tt.status)
		}
	}

	rec := serve(t, h, http.MethodGet, "/discussions/5")
	var got entities.Discussion
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(testDiscussions()[5], got); diff != "" {
		t.Errorf("body mismatch (-want +got):\n%s", diff)
	}
}

func TestHealthAndMethods(t *testing.T) {
	h := NewHandler(nil, nil)
	if rec := serve(t, h, http.MethodGet, "/health"); rec.Code != http.StatusOK {
		t.Errorf("GET /health = %d", rec.Code)
	}
	if rec := serve(t, h, http.MethodPost, "/discussions"); rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("POST /discussions = %d, want 405", rec.Code)
	}
}

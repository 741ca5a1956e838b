package fetcher

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"discussioncomments/entities"

	"github.com/google/go-cmp/cmp"
)

type fakeTransport struct {
	name  string
	data  *queryData
	err   error
	calls int
}

func (f *fakeTransport) Name() string { return f.name }

func (f *fakeTransport) Fetch(context.Context, string, string) (*queryData, error) {
	f.calls++
	return f.data, f.err
}

type panicTransport struct{}

func (panicTransport) Name() string { return "panic" }

func (panicTransport) Fetch(context.Context, string, string) (*queryData, error) {
	panic("boom")
}

func TestFetchFirstTransportWins(t *testing.T) {
	a := &fakeTransport{name: "a", data: decodeFixture(t, "two_discussions.json")}
	b := &fakeTransport{name: "b", err: errors.New("should not run")}
	f := NewWithTransports(discardLogger(), a, b)

	got := f.FetchDiscussionData(context.Background(), "lqdev", "TestGHCMS")
	if diff := cmp.Diff(twoDiscussions(), got); diff != "" {
		t.Errorf("FetchDiscussionData() mismatch (-want +got):\n%s", diff)
	}
	if a.calls != 1 || b.calls != 0 {
		t.Errorf("calls a=%d b=%d, want 1 and 0", a.calls, b.calls)
	}
}

func TestFetchFallsBack(t *testing.T) {
	a := &fakeTransport{name: "a", err: ErrUnavailable}
	b := &fakeTransport{name: "b", data: decodeFixture(t, "two_discussions.json")}
	var buf bytes.Buffer
	f := NewWithTransports(bufferLogger(&buf), a, b)

	got := f.FetchDiscussionData(context.Background(), "lqdev", "TestGHCMS")
	if len(got) != 2 {
		t.Errorf("got %d discussions, want 2", len(got))
	}
	if a.calls != 1 || b.calls != 1 {
		t.Errorf("calls a=%d b=%d, want 1 and 1", a.calls, b.calls)
	}
	if !strings.Contains(buf.String(), "transport=b") || !strings.Contains(buf.String(), "discussions=2") {
		t.Errorf("success not logged:\n%s", buf.String())
	}
}

func TestFetchAllFail(t *testing.T) {
	f := NewWithTransports(discardLogger(),
		&fakeTransport{name: "a", err: ErrUnavailable},
		&fakeTransport{name: "b", err: &NetworkError{Err: errors.New("dial tcp: no route")}},
		panicTransport{},
	)
	got := f.FetchDiscussionData(context.Background(), "o", "r")
	if got == nil || len(got) != 0 {
		t.Errorf("FetchDiscussionData() = %v, want empty non-nil map", got)
	}
}

func TestFetchNoTransports(t *testing.T) {
	got := NewWithTransports(nil).FetchDiscussionData(context.Background(), "o", "r")
	if got == nil || len(got) != 0 {
		t.Errorf("FetchDiscussionData() = %v, want empty non-nil map", got)
	}
}

// gh unavailable, then the direct endpoint answers 403.
func TestFetchCLIUnavailableThen403(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	var buf bytes.Buffer
	runner := &fakeRunner{authErr: errors.New("not logged in")}
	f, err := New(Config{
		Endpoint: srv.URL,
		Timeout:  time.Second,
		Runner:   runner,
	}, bufferLogger(&buf))
	if err != nil {
		t.Fatal(err)
	}

	got := f.FetchDiscussionData(context.Background(), "lqdev", "TestGHCMS")
	if diff := cmp.Diff(entities.Discussions{}, got); diff != "" {
		t.Errorf("FetchDiscussionData() mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(buf.String(), "GITHUB_TOKEN") {
		t.Errorf("credential hint not logged:\n%s", buf.String())
	}
}

// A 200 with an errors array yields nothing, even with partial data.
func TestFetchGraphQLErrorsNoPartialData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"repository":{"discussions":{"nodes":[{"number":1,"title":"leak","url":"u","comments":{"nodes":[]}}]}}},"errors":[{"message":"Something went wrong"}]}`))
	}))
	defer srv.Close()

	f, err := New(Config{
		Endpoint:   srv.URL,
		Timeout:    time.Second,
		Transports: []string{"http"},
	}, discardLogger())
	if err != nil {
		t.Fatal(err)
	}
	got := f.FetchDiscussionData(context.Background(), "o", "r")
	if len(got) != 0 {
		t.Errorf("FetchDiscussionData() = %v, want empty", got)
	}
}

func TestFetchEndToEnd(t *testing.T) {
	out := []byte(`{"data":{"repository":{"discussions":{"nodes":[{"number":1,"title":"T","url":"u","comments":{"nodes":[]}}]}}}}`)
	f, err := New(Config{Runner: &fakeRunner{queryOut: out}}, discardLogger())
	if err != nil {
		t.Fatal(err)
	}
	got := f.FetchDiscussionData(context.Background(), "o", "r")
	want := entities.Discussions{1: {Title: "T", URL: "u", Comments: []entities.Comment{}}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("FetchDiscussionData() mismatch (-want +got):\n%s", diff)
	}
}

func TestNewTransportOrder(t *testing.T) {
	f, err := New(Config{Transports: []string{"githubv4", "http", "gh"}}, nil)
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, tr := range f.transports {
		names = append(names, tr.Name())
	}
	if diff := cmp.Diff([]string{"githubv4", "http", "gh"}, names); diff != "" {
		t.Errorf("transport order mismatch (-want +got):\n%s", diff)
	}

	f, err = New(Config{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(f.transports) != 2 || f.transports[0].Name() != "gh" || f.transports[1].Name() != "http" {
		t.Errorf("default transports = %v", f.transports)
	}

	if _, err := New(Config{Transports: []string{"carrier-pigeon"}}, nil); err == nil {
		t.Error("New() accepted an unknown transport")
	}
}

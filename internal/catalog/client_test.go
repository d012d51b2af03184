package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

const guideIndex = `<html><body>
<div class="tags">
  <a href="/adoptable_guide.php?tag=Forest">Forest</a>
  <a href="adoptable_guide.php?tag=Ocean%20Life"> Ocean Life </a>
  <a href="https://elsewhere.example/adoptable_guide.php?tag=Forest">Forest</a>
  <a href="/news.php?tag=Ignored">Ignored</a>
  <a href="/adoptable_guide.php?id=4">Not a tag</a>
</div>
</body></html>`

const forestPage = `<html><body>
<a href="/adoptable_guide.php?id=12"><img src="fox.png"></a>
<a href="/adoptable_guide.php?id=12">Fox</a>
<a href="https://www.clickcritters.com/adoptable_guide.php?id=3">Owl</a>
<a href="/adoptable_guide.php?id=abc">Broken</a>
<a href="/adoptable_guide.php?tag=Forest">Forest</a>
<a href="/adoptable_guide.php?id=7">Elk</a>
</body></html>`

func newTestServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	c, err := NewClient(Options{BaseURL: server.URL, Cookie: "session=abc", RequestsPerSecond: 1000})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	return c
}

func TestParseBaseURL_DefaultsAndNormalizes(t *testing.T) {
	u, err := parseBaseURL("")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.String() != defaultBaseURL {
		t.Fatalf("base = %q, want %q", u.String(), defaultBaseURL)
	}

	u, err = parseBaseURL("example.com:8080/path?x=1#frag")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.Scheme != "https" || u.Path != "" || u.RawQuery != "" || u.Fragment != "" {
		t.Fatalf("url not normalized: %q", u.String())
	}
}

func TestClient_ListTags(t *testing.T) {
	t.Parallel()

	var gotCookie, gotUserAgent string
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotCookie = r.Header.Get("Cookie")
		gotUserAgent = r.Header.Get("User-Agent")
		if r.URL.Path != guidePath || r.URL.RawQuery != "" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(guideIndex))
	})

	tags, err := c.ListTags(context.Background())
	if err != nil {
		t.Fatalf("ListTags returned error: %v", err)
	}
	if diff := cmp.Diff([]string{"Forest", "Ocean Life"}, tags); diff != "" {
		t.Fatalf("ListTags mismatch (-want +got):\n%s", diff)
	}
	if gotCookie != "session=abc" {
		t.Fatalf("Cookie = %q, want session=abc", gotCookie)
	}
	if !strings.HasPrefix(gotUserAgent, "collfilter/") {
		t.Fatalf("User-Agent = %q, want collfilter/*", gotUserAgent)
	}
}

func TestClient_ListIDsForTag(t *testing.T) {
	t.Parallel()

	var gotTag string
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotTag = r.URL.Query().Get("tag")
		_, _ = w.Write([]byte(forestPage))
	})

	ids, err := c.ListIDsForTag(context.Background(), " Forest & Field ")
	if err != nil {
		t.Fatalf("ListIDsForTag returned error: %v", err)
	}
	if gotTag != "Forest & Field" {
		t.Fatalf("tag query = %q, want it escaped and trimmed", gotTag)
	}
	if diff := cmp.Diff([]string{"12", "3", "7"}, ids); diff != "" {
		t.Fatalf("ListIDsForTag mismatch (-want +got):\n%s", diff)
	}
}

func TestClient_EmptyTagPageIsNotAnError(t *testing.T) {
	t.Parallel()

	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html><body><p>No adoptables.</p></body></html>"))
	})
	ids, err := c.ListIDsForTag(context.Background(), "Empty")
	if err != nil {
		t.Fatalf("ListIDsForTag returned error: %v", err)
	}
	if ids == nil || len(ids) != 0 {
		t.Fatalf("ids = %#v, want empty non-nil slice", ids)
	}
}

func TestClient_FailuresWrapErrFetch(t *testing.T) {
	t.Parallel()

	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Has("tag") {
			http.Error(w, "down", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("<html><body>logged out</body></html>"))
	})

	_, err := c.ListIDsForTag(context.Background(), "Forest")
	if !errors.Is(err, ErrFetch) || !strings.Contains(err.Error(), "returned status 503") {
		t.Fatalf("ListIDsForTag error = %v, want ErrFetch with status 503", err)
	}

	_, err = c.ListTags(context.Background())
	if !errors.Is(err, ErrFetch) || !strings.Contains(err.Error(), "no tags found") {
		t.Fatalf("ListTags error = %v, want ErrFetch no tags found", err)
	}

	if _, err := c.ListIDsForTag(context.Background(), "  "); !errors.Is(err, ErrFetch) {
		t.Fatalf("ListIDsForTag(blank) error = %v, want ErrFetch", err)
	}
}

func TestClient_UnreachableServer(t *testing.T) {
	c, err := NewClient(Options{BaseURL: "http://127.0.0.1:1", Timeout: time.Second, RequestsPerSecond: 1000})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	if _, err := c.ListTags(context.Background()); !errors.Is(err, ErrFetch) {
		t.Fatalf("ListTags error = %v, want ErrFetch", err)
	}
}

func TestClient_FetchComparePage(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Path != comparePath || r.URL.Query().Get("compareto") != "555" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`<html><body><table class="niceTable"></table></body></html>`))
	})

	doc, err := c.FetchComparePage(context.Background(), "555")
	if err != nil {
		t.Fatalf("FetchComparePage returned error: %v", err)
	}
	if doc == nil {
		t.Fatalf("FetchComparePage returned nil document")
	}
	if _, err := c.FetchComparePage(context.Background(), ""); !errors.Is(err, ErrFetch) {
		t.Fatalf("FetchComparePage(empty) error = %v, want ErrFetch", err)
	}
	if hits.Load() != 1 {
		t.Fatalf("server hits = %d, want 1", hits.Load())
	}
}

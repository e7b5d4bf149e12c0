package hosting

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestDetect(t *testing.T) {
	cases := []struct {
		url   string
		owner string
		repo  string
	}{
		{"git@github.com:acme/widget.git", "acme", "widget"},
		{"https://github.com/acme/widget.git", "acme", "widget"},
		{"https://github.com/acme/widget", "acme", "widget"},
	}
	for _, tc := range cases {
		ref, err := Detect(tc.url)
		if err != nil {
			t.Fatalf("Detect(%q): %v", tc.url, err)
		}
		if ref.Owner != tc.owner || ref.Repo != tc.repo {
			t.Errorf("Detect(%q) = %+v, want %s/%s", tc.url, ref, tc.owner, tc.repo)
		}
	}
}

func TestDetect_Invalid(t *testing.T) {
	if _, err := Detect("not a url"); err == nil {
		t.Fatalf("expected error for unparseable remote")
	}
}

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := NewClient("", RepoRef{Owner: "acme", Repo: "widget"})
	if err := client.SetBaseURL(srv.URL); err != nil {
		t.Fatalf("SetBaseURL: %v", err)
	}
	return client, srv
}

func TestTemplate_TriesPathsInOrder(t *testing.T) {
	var requested []string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requested = append(requested, r.URL.Path)
		if r.URL.Path == "/repos/acme/widget/contents/docs/PULL_REQUEST_TEMPLATE.md" {
			encoded := base64.StdEncoding.EncodeToString([]byte("## Summary\n\n## Testing\n"))
			fmt.Fprintf(w, `{"type":"file","encoding":"base64","name":"PULL_REQUEST_TEMPLATE.md","content":%q}`, encoded)
			return
		}
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"message":"Not Found"}`)
	}))

	text, err := client.Template(context.Background())
	if err != nil {
		t.Fatalf("Template: %v", err)
	}
	if text != "## Summary\n\n## Testing\n" {
		t.Fatalf("template = %q", text)
	}
	if len(requested) != 3 {
		t.Fatalf("expected 3 lookups before the hit, got %v", requested)
	}
}

func TestTemplate_NoneFound(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"message":"Not Found"}`)
	}))

	text, err := client.Template(context.Background())
	if err != nil {
		t.Fatalf("Template: %v", err)
	}
	if text != "" {
		t.Fatalf("expected empty template, got %q", text)
	}
}

func TestFindPR(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/repos/acme/widget/pulls" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if head := r.URL.Query().Get("head"); head != "acme:feature/login" {
			t.Errorf("head = %q", head)
		}
		fmt.Fprint(w, `[{"number":7,"html_url":"https://github.com/acme/widget/pull/7"}]`)
	}))

	pr, err := client.FindPR(context.Background(), "feature/login")
	if err != nil {
		t.Fatalf("FindPR: %v", err)
	}
	if pr == nil || pr.GetNumber() != 7 {
		t.Fatalf("pr = %+v", pr)
	}
}

func TestFindPR_None(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[]`)
	}))
	pr, err := client.FindPR(context.Background(), "feature/login")
	if err != nil {
		t.Fatalf("FindPR: %v", err)
	}
	if pr != nil {
		t.Fatalf("expected nil, got %+v", pr)
	}
}

func TestCreatePR(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/repos/acme/widget/pulls" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"number":8,"html_url":"https://github.com/acme/widget/pull/8"}`)
	}))

	url, err := client.CreatePR(context.Background(), NewPR{
		Title: "PROJ-42: Add login flow",
		Body:  "## Summary\nAdds SSO login.",
		Head:  "feature/login",
		Base:  "main",
	})
	if err != nil {
		t.Fatalf("CreatePR: %v", err)
	}
	if url != "https://github.com/acme/widget/pull/8" {
		t.Fatalf("url = %q", url)
	}
}

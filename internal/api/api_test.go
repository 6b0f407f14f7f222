package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/calloway/vellum/internal/access"
	"github.com/calloway/vellum/internal/auth"
	"github.com/calloway/vellum/internal/docservice"
	"github.com/calloway/vellum/internal/models"
	"github.com/calloway/vellum/internal/notify"
	"github.com/calloway/vellum/internal/spaceservice"
	"github.com/calloway/vellum/internal/sse"
	"github.com/calloway/vellum/internal/testutil"
)

// testEnv wires a temp SQLite DB, services, broker, and router for testing.
func testEnv(t *testing.T) http.Handler {
	t.Helper()
	db := testutil.TestDB(t)
	broker := sse.NewBroker()
	t.Cleanup(broker.Close)

	notif := notify.New(db, broker)
	authSvc := auth.NewService(db, time.Hour)
	docs := docservice.NewService(db, access.NewEvaluator(db, db), notif,
		slog.New(slog.NewTextHandler(io.Discard, nil)))
	spaces := spaceservice.NewService(db)

	return NewRouter(NewHandler(db, docs, spaces, authSvc, notif, broker))
}

func do(router http.Handler, method, path string, body any, cookie *http.Cookie) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// register creates an account and returns its session cookie.
func register(t *testing.T, router http.Handler, username string) *http.Cookie {
	t.Helper()
	w := do(router, http.MethodPost, "/register", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": "s3cret99",
	}, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("register %s = %d, body = %s", username, w.Code, w.Body.String())
	}
	for _, c := range w.Result().Cookies() {
		if c.Name == SessionCookie {
			return c
		}
	}
	t.Fatal("register did not set a session cookie")
	return nil
}

func createDoc(t *testing.T, router http.Handler, cookie *http.Cookie, body map[string]any) models.Document {
	t.Helper()
	w := do(router, http.MethodPost, "/documents", body, cookie)
	if w.Code != http.StatusCreated {
		t.Fatalf("create document = %d, body = %s", w.Code, w.Body.String())
	}
	var doc models.Document
	_ = json.Unmarshal(w.Body.Bytes(), &doc)
	return doc
}

func TestRegisterLoginSession(t *testing.T) {
	router := testEnv(t)

	cookie := register(t, router, "alice")

	w := do(router, http.MethodGet, "/user", nil, cookie)
	if w.Code != http.StatusOK {
		t.Fatalf("get user = %d", w.Code)
	}
	var u models.UserRef
	_ = json.Unmarshal(w.Body.Bytes(), &u)
	if u.Username != "alice" {
		t.Errorf("username = %q, want alice", u.Username)
	}

	if w := do(router, http.MethodGet, "/user", nil, nil); w.Code != http.StatusUnauthorized {
		t.Errorf("anonymous get user = %d, want 401", w.Code)
	}

	// Duplicate registration conflicts.
	w = do(router, http.MethodPost, "/register", map[string]string{
		"username": "alice", "email": "dup@example.com", "password": "s3cret99",
	}, nil)
	if w.Code != http.StatusConflict {
		t.Errorf("duplicate register = %d, want 409", w.Code)
	}

	w = do(router, http.MethodPost, "/login", map[string]string{"username": "alice", "password": "wrong"}, nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("bad login = %d, want 401", w.Code)
	}
	w = do(router, http.MethodPost, "/login", map[string]string{"username": "alice", "password": "s3cret99"}, nil)
	if w.Code != http.StatusOK {
		t.Errorf("login = %d, want 200", w.Code)
	}

	if w := do(router, http.MethodPost, "/logout", nil, cookie); w.Code != http.StatusNoContent {
		t.Fatalf("logout = %d", w.Code)
	}
	if w := do(router, http.MethodGet, "/user", nil, cookie); w.Code != http.StatusUnauthorized {
		t.Errorf("get user after logout = %d, want 401", w.Code)
	}
}

func TestDocumentCrud(t *testing.T) {
	router := testEnv(t)
	cookie := register(t, router, "alice")

	doc := createDoc(t, router, cookie, map[string]any{"title": "Release Plan", "content": "v1"})
	if doc.Slug != "release-plan" {
		t.Errorf("slug = %q, want release-plan", doc.Slug)
	}
	if doc.Visibility != "private" {
		t.Errorf("visibility = %q, want private default", doc.Visibility)
	}

	w := do(router, http.MethodGet, fmt.Sprintf("/documents/%d", doc.ID), nil, cookie)
	if w.Code != http.StatusOK {
		t.Fatalf("get = %d", w.Code)
	}
	var got models.Document
	_ = json.Unmarshal(w.Body.Bytes(), &got)
	if got.Views != 1 {
		t.Errorf("views = %d, want 1", got.Views)
	}

	w = do(router, http.MethodPut, fmt.Sprintf("/documents/%d", doc.ID),
		map[string]any{"title": "Shipped", "content": "v2"}, cookie)
	if w.Code != http.StatusOK {
		t.Fatalf("update = %d, body = %s", w.Code, w.Body.String())
	}
	_ = json.Unmarshal(w.Body.Bytes(), &got)
	if got.Title != "Shipped" || got.Slug != "shipped" {
		t.Errorf("updated = (%q, %q)", got.Title, got.Slug)
	}

	w = do(router, http.MethodGet, fmt.Sprintf("/documents/%d/versions", doc.ID), nil, cookie)
	if w.Code != http.StatusOK {
		t.Fatalf("versions = %d", w.Code)
	}
	var versions []models.Version
	_ = json.Unmarshal(w.Body.Bytes(), &versions)
	if len(versions) != 1 || versions[0].Title != "Release Plan" {
		t.Errorf("versions = %+v, want one pre-update snapshot", versions)
	}

	if w := do(router, http.MethodDelete, fmt.Sprintf("/documents/%d", doc.ID), nil, cookie); w.Code != http.StatusNoContent {
		t.Fatalf("delete = %d", w.Code)
	}
	if w := do(router, http.MethodGet, fmt.Sprintf("/documents/%d", doc.ID), nil, cookie); w.Code != http.StatusNotFound {
		t.Errorf("get deleted = %d, want 404", w.Code)
	}
}

func TestAnonymousAccess(t *testing.T) {
	router := testEnv(t)
	alice := register(t, router, "alice")
	bob := register(t, router, "bob")

	pub := createDoc(t, router, alice, map[string]any{"title": "Public", "content": "# Hi", "visibility": "public"})
	priv := createDoc(t, router, alice, map[string]any{"title": "Private", "content": "s"})

	// Anonymous reads of public documents count views.
	w := do(router, http.MethodGet, fmt.Sprintf("/documents/%d", pub.ID), nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("anonymous public get = %d", w.Code)
	}
	var got models.Document
	_ = json.Unmarshal(w.Body.Bytes(), &got)
	if got.Views != 1 {
		t.Errorf("views = %d, want 1", got.Views)
	}

	w = do(router, http.MethodGet, fmt.Sprintf("/documents/%d/html", pub.ID), nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("anonymous html = %d", w.Code)
	}
	var html map[string]string
	_ = json.Unmarshal(w.Body.Bytes(), &html)
	if html["html"] == "" {
		t.Error("html body empty")
	}

	if w := do(router, http.MethodGet, fmt.Sprintf("/documents/%d", priv.ID), nil, nil); w.Code != http.StatusUnauthorized {
		t.Errorf("anonymous private get = %d, want 401", w.Code)
	}
	if w := do(router, http.MethodGet, fmt.Sprintf("/documents/%d", priv.ID), nil, bob); w.Code != http.StatusForbidden {
		t.Errorf("non-author private get = %d, want 403", w.Code)
	}
	if w := do(router, http.MethodGet, "/documents", nil, nil); w.Code != http.StatusUnauthorized {
		t.Errorf("anonymous list = %d, want 401", w.Code)
	}
}

func TestShareFlow(t *testing.T) {
	router := testEnv(t)
	alice := register(t, router, "alice")
	bob := register(t, router, "bob")

	doc := createDoc(t, router, alice, map[string]any{"title": "Plan", "content": "x"})

	// bob's id is discoverable via user search.
	w := do(router, http.MethodGet, "/users/search?q=bob", nil, alice)
	if w.Code != http.StatusOK {
		t.Fatalf("user search = %d", w.Code)
	}
	var found []models.UserRef
	_ = json.Unmarshal(w.Body.Bytes(), &found)
	if len(found) != 1 {
		t.Fatalf("found = %+v, want bob", found)
	}
	bobID := found[0].ID

	w = do(router, http.MethodPost, fmt.Sprintf("/documents/%d/permissions", doc.ID),
		map[string]any{"userId": bobID, "permission": "view"}, alice)
	if w.Code != http.StatusCreated {
		t.Fatalf("share = %d, body = %s", w.Code, w.Body.String())
	}

	if w := do(router, http.MethodGet, fmt.Sprintf("/documents/%d", doc.ID), nil, bob); w.Code != http.StatusOK {
		t.Errorf("bob get after share = %d", w.Code)
	}
	// A view grant does not allow edits.
	w = do(router, http.MethodPut, fmt.Sprintf("/documents/%d", doc.ID),
		map[string]any{"title": "hijack"}, bob)
	if w.Code != http.StatusForbidden {
		t.Errorf("bob update with view grant = %d, want 403", w.Code)
	}

	w = do(router, http.MethodGet, "/notifications", nil, bob)
	if w.Code != http.StatusOK {
		t.Fatalf("notifications = %d", w.Code)
	}
	var items []notify.Item
	_ = json.Unmarshal(w.Body.Bytes(), &items)
	if len(items) != 1 || items[0].Type != notify.TypeShare {
		t.Fatalf("notifications = %+v, want one share", items)
	}

	w = do(router, http.MethodDelete, fmt.Sprintf("/documents/%d/permissions/%d", doc.ID, bobID), nil, alice)
	if w.Code != http.StatusNoContent {
		t.Fatalf("unshare = %d", w.Code)
	}
	if w := do(router, http.MethodGet, fmt.Sprintf("/documents/%d", doc.ID), nil, bob); w.Code != http.StatusForbidden {
		t.Errorf("bob get after unshare = %d, want 403", w.Code)
	}
}

func TestCommentMentionPipeline(t *testing.T) {
	router := testEnv(t)
	alice := register(t, router, "alice")
	bob := register(t, router, "bob")

	doc := createDoc(t, router, alice, map[string]any{"title": "Plan", "content": "x"})

	w := do(router, http.MethodPost, fmt.Sprintf("/documents/%d/comments", doc.ID),
		map[string]string{"content": "thoughts @bob?"}, alice)
	if w.Code != http.StatusCreated {
		t.Fatalf("comment = %d, body = %s", w.Code, w.Body.String())
	}
	var c models.Comment
	_ = json.Unmarshal(w.Body.Bytes(), &c)
	if len(c.Mentions) != 1 || c.Mentions[0] != "bob" {
		t.Errorf("mentions = %v, want [bob]", c.Mentions)
	}

	// The mention granted bob access to the private document.
	if w := do(router, http.MethodGet, fmt.Sprintf("/documents/%d", doc.ID), nil, bob); w.Code != http.StatusOK {
		t.Errorf("bob get after mention = %d", w.Code)
	}

	w = do(router, http.MethodGet, "/notifications", nil, bob)
	var items []notify.Item
	_ = json.Unmarshal(w.Body.Bytes(), &items)
	if len(items) != 1 || items[0].Title != "You were mentioned in a comment" {
		t.Fatalf("notifications = %+v, want one comment mention", items)
	}

	// Mark it read.
	w = do(router, http.MethodPut, fmt.Sprintf("/notifications/%d/read", items[0].ID), nil, bob)
	if w.Code != http.StatusNoContent {
		t.Fatalf("mark read = %d", w.Code)
	}
	// Another user cannot mark it.
	w = do(router, http.MethodPut, fmt.Sprintf("/notifications/%d/read", items[0].ID), nil, alice)
	if w.Code != http.StatusNotFound {
		t.Errorf("cross-user mark read = %d, want 404", w.Code)
	}
}

func TestSpaces(t *testing.T) {
	router := testEnv(t)
	alice := register(t, router, "alice")
	bob := register(t, router, "bob")

	w := do(router, http.MethodPost, "/spaces", map[string]any{"name": "Platform Team"}, alice)
	if w.Code != http.StatusCreated {
		t.Fatalf("create space = %d, body = %s", w.Code, w.Body.String())
	}
	var sp models.Space
	_ = json.Unmarshal(w.Body.Bytes(), &sp)
	if sp.Slug != "platform-team" {
		t.Errorf("slug = %q, want platform-team", sp.Slug)
	}

	w = do(router, http.MethodPost, "/spaces", map[string]any{"name": "platform team"}, alice)
	if w.Code != http.StatusConflict {
		t.Errorf("duplicate slug = %d, want 409", w.Code)
	}

	// Outsiders cannot read the space or its roster.
	if w := do(router, http.MethodGet, fmt.Sprintf("/spaces/%d", sp.ID), nil, bob); w.Code != http.StatusForbidden {
		t.Errorf("outsider get space = %d, want 403", w.Code)
	}

	// Owner adds bob.
	w = do(router, http.MethodGet, "/users/search?q=bob", nil, alice)
	var found []models.UserRef
	_ = json.Unmarshal(w.Body.Bytes(), &found)
	w = do(router, http.MethodPost, fmt.Sprintf("/spaces/%d/members", sp.ID),
		map[string]any{"userId": found[0].ID}, alice)
	if w.Code != http.StatusCreated {
		t.Fatalf("add member = %d, body = %s", w.Code, w.Body.String())
	}

	// Space-visible documents reach members through listings.
	createDoc(t, router, alice, map[string]any{
		"title": "Team Doc", "content": "x", "visibility": "space", "spaceId": sp.ID,
	})
	w = do(router, http.MethodGet, fmt.Sprintf("/documents?spaceId=%d", sp.ID), nil, bob)
	if w.Code != http.StatusOK {
		t.Fatalf("member list = %d", w.Code)
	}
	var docs []models.Document
	_ = json.Unmarshal(w.Body.Bytes(), &docs)
	if len(docs) != 1 || docs[0].Title != "Team Doc" {
		t.Errorf("member sees %+v, want Team Doc", docs)
	}

	w = do(router, http.MethodDelete, fmt.Sprintf("/spaces/%d/members/%d", sp.ID, found[0].ID), nil, alice)
	if w.Code != http.StatusNoContent {
		t.Fatalf("remove member = %d", w.Code)
	}
	w = do(router, http.MethodGet, fmt.Sprintf("/documents?spaceId=%d", sp.ID), nil, bob)
	_ = json.Unmarshal(w.Body.Bytes(), &docs)
	if len(docs) != 0 {
		t.Errorf("removed member sees %+v, want nothing", docs)
	}
}

func TestSearchAndRecent(t *testing.T) {
	router := testEnv(t)
	alice := register(t, router, "alice")

	createDoc(t, router, alice, map[string]any{"title": "Release runbook", "content": "steps"})
	createDoc(t, router, alice, map[string]any{"title": "Meeting notes", "content": "agenda"})

	// An empty query is not an error; it matches nothing.
	w := do(router, http.MethodGet, "/documents/search?q=", nil, alice)
	if w.Code != http.StatusOK {
		t.Fatalf("empty search = %d, want 200", w.Code)
	}
	if body := w.Body.String(); body != "[]\n" {
		t.Errorf("empty search body = %q, want []", body)
	}
	w = do(router, http.MethodGet, "/users/search", nil, alice)
	if w.Code != http.StatusOK {
		t.Fatalf("empty user search = %d, want 200", w.Code)
	}
	if body := w.Body.String(); body != "[]\n" {
		t.Errorf("empty user search body = %q, want []", body)
	}

	w = do(router, http.MethodGet, "/documents/search?q=runbook", nil, alice)
	if w.Code != http.StatusOK {
		t.Fatalf("search = %d", w.Code)
	}
	var docs []models.Document
	_ = json.Unmarshal(w.Body.Bytes(), &docs)
	if len(docs) != 1 || docs[0].Title != "Release runbook" {
		t.Errorf("search = %+v", docs)
	}

	w = do(router, http.MethodGet, "/documents/recent?limit=1", nil, alice)
	if w.Code != http.StatusOK {
		t.Fatalf("recent = %d", w.Code)
	}
	_ = json.Unmarshal(w.Body.Bytes(), &docs)
	if len(docs) != 1 {
		t.Errorf("recent limit ignored, got %d docs", len(docs))
	}
}

func TestValidation(t *testing.T) {
	router := testEnv(t)
	alice := register(t, router, "alice")

	// Missing required fields.
	if w := do(router, http.MethodPost, "/register", map[string]string{"username": "x"}, nil); w.Code != http.StatusBadRequest {
		t.Errorf("bad register = %d, want 400", w.Code)
	}
	if w := do(router, http.MethodPost, "/documents", map[string]string{"content": "no title"}, alice); w.Code != http.StatusBadRequest {
		t.Errorf("untitled document = %d, want 400", w.Code)
	}
	if w := do(router, http.MethodPost, "/documents", map[string]any{"title": "T", "visibility": "everyone"}, alice); w.Code != http.StatusBadRequest {
		t.Errorf("bad visibility = %d, want 400", w.Code)
	}

	doc := createDoc(t, router, alice, map[string]any{"title": "T", "content": "c"})
	w := do(router, http.MethodPost, fmt.Sprintf("/documents/%d/permissions", doc.ID),
		map[string]any{"userId": 1, "permission": "owner"}, alice)
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad permission kind = %d, want 400", w.Code)
	}

	if w := do(router, http.MethodGet, "/documents/abc", nil, alice); w.Code != http.StatusBadRequest {
		t.Errorf("non-numeric id = %d, want 400", w.Code)
	}
}

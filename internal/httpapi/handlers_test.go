package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"planova.app/internal/auth"
	"planova.app/internal/planner"
)

type stubGoogle struct {
	identity auth.ExternalIdentity
}

func (s stubGoogle) ConsentURL() string { return "https://accounts.example/consent?client_id=test" }

func (s stubGoogle) Exchange(ctx context.Context, code string) (auth.ExternalIdentity, error) {
	return s.identity, nil
}

type apiClient struct {
	baseURL string
	client  *http.Client
	t       *testing.T
}

func newTestAPI(t *testing.T, opts ...auth.Option) *apiClient {
	t.Helper()

	codec, err := auth.NewCodec("test-secret", time.Minute)
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}
	accounts := auth.NewService(auth.NewMemoryStore(), codec, opts...)
	api := New(accounts, planner.NewMemoryStore(), ReadyProbe{}, Options{
		FrontendURL: "http://localhost:5173",
		RateBurst:   1000,
		RatePerSec:  1000,
	}, "test")

	srv := httptest.NewServer(api.Handler())
	t.Cleanup(srv.Close)

	client := srv.Client()
	// Redirect targets (Google consent, frontend) are not real in tests.
	client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		return http.ErrUseLastResponse
	}

	return &apiClient{
		baseURL: srv.URL,
		client:  client,
		t:       t,
	}
}

func (c *apiClient) do(method, path string, body any, token string) *http.Response {
	c.t.Helper()
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			c.t.Fatalf("marshal body: %v", err)
		}
	}
	req, err := http.NewRequest(method, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		c.t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		c.t.Fatalf("do request: %v", err)
	}
	return resp
}

func (c *apiClient) post(path string, body any, token string) *http.Response {
	return c.do(http.MethodPost, path, body, token)
}

func (c *apiClient) get(path, token string) *http.Response {
	return c.do(http.MethodGet, path, nil, token)
}

func (c *apiClient) put(path string, body any, token string) *http.Response {
	return c.do(http.MethodPut, path, body, token)
}

func (c *apiClient) delete(path, token string) *http.Response {
	return c.do(http.MethodDelete, path, nil, token)
}

func (c *apiClient) register(fullName, email, password string) string {
	c.t.Helper()
	resp := c.post("/api/auth/register", map[string]string{
		"fullName": fullName,
		"email":    email,
		"password": password,
	}, "")
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		c.t.Fatalf("register status: %d", resp.StatusCode)
	}
	var payload struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		c.t.Fatalf("decode register response: %v", err)
	}
	if payload.Token == "" {
		c.t.Fatal("register returned empty token")
	}
	return payload.Token
}

func decode[T any](t *testing.T, r *http.Response) T {
	t.Helper()
	defer r.Body.Close()
	var v T
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func TestHealthEndpoints(t *testing.T) {
	c := newTestAPI(t)

	resp := c.get("/healthz", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("healthz status: %d", resp.StatusCode)
	}
	body := decode[map[string]any](t, resp)
	if body["status"] != "ok" {
		t.Fatalf("healthz body: %+v", body)
	}

	resp = c.get("/readyz", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("readyz status: %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestRegisterAndLoginFlow(t *testing.T) {
	c := newTestAPI(t)

	resp := c.post("/api/auth/register", map[string]string{
		"fullName": "Jane Doe",
		"email":    "jane@example.com",
		"password": "hunter22",
	}, "")
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register status: %d", resp.StatusCode)
	}
	reg := decode[map[string]any](t, resp)
	if reg["success"] != true || reg["role"] != "user" || reg["token"] == "" {
		t.Fatalf("register body: %+v", reg)
	}

	resp = c.post("/api/auth/login", map[string]string{
		"email":    "jane@example.com",
		"password": "hunter22",
	}, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login status: %d", resp.StatusCode)
	}
	login := decode[map[string]any](t, resp)
	if login["fullName"] != "Jane Doe" || login["email"] != "jane@example.com" || login["role"] != "user" {
		t.Fatalf("login body: %+v", login)
	}
	if login["createdAt"] == "" || login["token"] == "" {
		t.Fatalf("login body missing token or createdAt: %+v", login)
	}
}

func TestRegisterDuplicateAndLoginFailures(t *testing.T) {
	c := newTestAPI(t)
	c.register("Jane", "jane@example.com", "hunter22")

	resp := c.post("/api/auth/register", map[string]string{
		"fullName": "Other",
		"email":    "jane@example.com",
		"password": "pw",
	}, "")
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("duplicate register status: %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = c.post("/api/auth/login", map[string]string{
		"email":    "jane@example.com",
		"password": "wrong",
	}, "")
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("wrong password status: %d", resp.StatusCode)
	}
	body := decode[map[string]any](t, resp)
	if body["message"] != "invalid email or password" {
		t.Fatalf("wrong password message: %+v", body)
	}
}

func TestProtectedPathsRequireToken(t *testing.T) {
	c := newTestAPI(t)

	resp := c.get("/api/notes", "")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("missing token status: %d", resp.StatusCode)
	}
	body := decode[map[string]any](t, resp)
	if body["message"] != "access denied, no token provided" {
		t.Fatalf("missing token message: %+v", body)
	}

	resp = c.get("/api/notes", "not-a-real-token")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("bad token status: %d", resp.StatusCode)
	}
	body = decode[map[string]any](t, resp)
	if body["message"] != "invalid token" {
		t.Fatalf("bad token message: %+v", body)
	}
}

func TestBareTokenAccepted(t *testing.T) {
	c := newTestAPI(t)
	token := c.register("Jane", "jane@example.com", "pw")

	req, err := http.NewRequest(http.MethodGet, c.baseURL+"/api/me", nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Authorization", token) // no Bearer prefix
	resp, err := c.client.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("bare token status: %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestNotesCRUDAndOwnership(t *testing.T) {
	c := newTestAPI(t)
	jane := c.register("Jane", "jane@example.com", "pw")
	bob := c.register("Bob", "bob@example.com", "pw")

	resp := c.post("/api/notes", map[string]any{
		"title":   "groceries",
		"content": "milk, eggs",
		"tags":    []string{"home"},
	}, jane)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status: %d", resp.StatusCode)
	}
	created := decode[struct {
		Data planner.Note `json:"data"`
	}](t, resp)
	noteID := created.Data.ID
	if noteID == "" || created.Data.Color != "#ffffff" {
		t.Fatalf("created note: %+v", created.Data)
	}

	// Owner sees it, the other user does not.
	resp = c.get("/api/notes/"+noteID, jane)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("owner get status: %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = c.get("/api/notes/"+noteID, bob)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("foreign get status: %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = c.delete("/api/notes/"+noteID, bob)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("foreign delete status: %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = c.put("/api/notes/"+noteID, map[string]any{
		"title":   "groceries v2",
		"content": "milk, eggs, bread",
	}, jane)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update status: %d", resp.StatusCode)
	}
	updated := decode[struct {
		Data planner.Note `json:"data"`
	}](t, resp)
	if updated.Data.Title != "groceries v2" {
		t.Fatalf("update not applied: %+v", updated.Data)
	}

	resp = c.get("/api/notes", bob)
	list := decode[struct {
		Data []planner.Note `json:"data"`
	}](t, resp)
	if len(list.Data) != 0 {
		t.Fatalf("bob should see no notes, got %d", len(list.Data))
	}

	resp = c.delete("/api/notes/"+noteID, jane)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete status: %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = c.get("/api/notes/"+noteID, jane)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("deleted note still readable: %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestTaskValidationOverHTTP(t *testing.T) {
	c := newTestAPI(t)
	token := c.register("Jane", "jane@example.com", "pw")

	resp := c.post("/api/tasks", map[string]any{"priority": "High"}, token)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("missing title status: %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = c.post("/api/tasks", map[string]any{"title": "plan trip", "priority": "Urgent"}, token)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad priority status: %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = c.post("/api/tasks", map[string]any{"title": "plan trip"}, token)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status: %d", resp.StatusCode)
	}
	created := decode[struct {
		Data planner.Task `json:"data"`
	}](t, resp)
	if created.Data.Priority != planner.PriorityMedium || created.Data.Status != planner.StatusPending {
		t.Fatalf("defaults not applied: %+v", created.Data)
	}
}

func TestAdminSeesAllRecordsWithOwners(t *testing.T) {
	c := newTestAPI(t)
	jane := c.register("Jane", "jane@example.com", "pw")
	admin := c.register("Root", "admin@example.com", "pw")

	resp := c.post("/api/notes", map[string]any{"title": "jane's note"}, jane)
	resp.Body.Close()
	resp = c.post("/api/notes", map[string]any{"title": "admin's note"}, admin)
	resp.Body.Close()

	resp = c.get("/api/notes", admin)
	list := decode[struct {
		Data []planner.Note `json:"data"`
	}](t, resp)
	if len(list.Data) != 2 {
		t.Fatalf("admin should see all notes, got %d", len(list.Data))
	}

	resp = c.get("/api/notes", jane)
	mine := decode[struct {
		Data []planner.Note `json:"data"`
	}](t, resp)
	if len(mine.Data) != 1 {
		t.Fatalf("jane should see only her note, got %d", len(mine.Data))
	}
}

func TestUsersEndpointsAdminOnly(t *testing.T) {
	c := newTestAPI(t)
	jane := c.register("Jane", "jane@example.com", "pw")
	admin := c.register("Root", "admin@example.com", "pw")

	resp := c.get("/api/users", jane)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("non-admin list status: %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = c.get("/api/users", admin)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("admin list status: %d", resp.StatusCode)
	}
	list := decode[struct {
		Total int                `json:"total"`
		Users []auth.AccountView `json:"users"`
	}](t, resp)
	if list.Total != 2 || len(list.Users) != 2 {
		t.Fatalf("expected both accounts, got %+v", list)
	}
	for _, u := range list.Users {
		if u.ID == "" || u.Email == "" {
			t.Fatalf("account view incomplete: %+v", u)
		}
	}
}

func TestDeleteUserCascadesRecords(t *testing.T) {
	c := newTestAPI(t)
	jane := c.register("Jane", "jane@example.com", "pw")
	admin := c.register("Root", "admin@example.com", "pw")

	resp := c.post("/api/notes", map[string]any{"title": "to be purged"}, jane)
	resp.Body.Close()

	resp = c.get("/api/me", jane)
	me := decode[struct {
		User auth.AccountView `json:"user"`
	}](t, resp)
	if me.User.ID == "" {
		t.Fatal("me returned no id")
	}

	// Non-admins cannot delete accounts, not even their own.
	resp = c.delete("/api/users/"+me.User.ID, jane)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("self delete status: %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = c.delete("/api/users/"+me.User.ID, admin)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("admin delete status: %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = c.get("/api/notes", admin)
	list := decode[struct {
		Data []planner.Note `json:"data"`
	}](t, resp)
	if len(list.Data) != 0 {
		t.Fatalf("deleted user's notes should be gone, got %d", len(list.Data))
	}

	resp = c.post("/api/auth/login", map[string]string{
		"email":    "jane@example.com",
		"password": "pw",
	}, "")
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("deleted account login status: %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = c.delete("/api/users/ghost", admin)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("missing account delete status: %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestGoogleLoginRedirectAndSessionExchange(t *testing.T) {
	stub := stubGoogle{identity: auth.ExternalIdentity{
		Subject: "google-1",
		Email:   "jane@example.com",
		Name:    "Jane Doe",
	}}
	c := newTestAPI(t, auth.WithGoogle(stub))

	resp := c.get("/api/auth/continue-with-google", "")
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("consent status: %d", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != stub.ConsentURL() {
		t.Fatalf("consent location: %s", loc)
	}
	resp.Body.Close()

	resp = c.get("/api/auth/google?code=provider-code", "")
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("callback status: %d", resp.StatusCode)
	}
	loc, err := url.Parse(resp.Header.Get("Location"))
	if err != nil {
		t.Fatalf("parse redirect: %v", err)
	}
	resp.Body.Close()
	if loc.Path != "/dashboard" {
		t.Fatalf("redirect path: %s", loc.Path)
	}
	sessionCode := loc.Query().Get("code")
	if sessionCode == "" {
		t.Fatal("redirect carries no session code")
	}

	resp = c.post("/api/auth/session", map[string]string{"code": sessionCode}, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("session status: %d", resp.StatusCode)
	}
	session := decode[map[string]any](t, resp)
	token, _ := session["token"].(string)
	if token == "" {
		t.Fatalf("session body: %+v", session)
	}

	// Codes are single use.
	resp = c.post("/api/auth/session", map[string]string{"code": sessionCode}, "")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("replayed code status: %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = c.get("/api/me", token)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("me status: %d", resp.StatusCode)
	}
	me := decode[struct {
		User auth.AccountView `json:"user"`
	}](t, resp)
	if me.User.Email != "jane@example.com" {
		t.Fatalf("unexpected account: %+v", me.User)
	}
}

func TestGoogleAdminRedirectTarget(t *testing.T) {
	stub := stubGoogle{identity: auth.ExternalIdentity{
		Subject: "google-2",
		Email:   "admin@example.com",
		Name:    "Root",
	}}
	c := newTestAPI(t, auth.WithGoogle(stub))

	resp := c.get("/api/auth/google?code=provider-code", "")
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("callback status: %d", resp.StatusCode)
	}
	defer resp.Body.Close()
	loc, err := url.Parse(resp.Header.Get("Location"))
	if err != nil {
		t.Fatalf("parse redirect: %v", err)
	}
	if loc.Path != "/admin" {
		t.Fatalf("admin should land on /admin, got %s", loc.Path)
	}
}

func TestGoogleDisabledReturns503(t *testing.T) {
	c := newTestAPI(t)

	resp := c.get("/api/auth/continue-with-google", "")
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("consent status: %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestMethodNotAllowed(t *testing.T) {
	c := newTestAPI(t)
	token := c.register("Jane", "jane@example.com", "pw")

	resp := c.do(http.MethodPut, "/api/notes", map[string]any{"title": "x"}, token)
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("status: %d", resp.StatusCode)
	}
	if allow := resp.Header.Get("Allow"); allow == "" {
		t.Fatal("Allow header missing")
	}
	resp.Body.Close()
}

package http

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spendwise/internal/log"
	"spendwise/internal/services"
	"spendwise/internal/storage"
)

var testNow = time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)

// newTestServer spins up the full handler stack over an in-memory database.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	repo, err := storage.NewSQLiteRepository(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	svc := services.New(repo, 720*time.Hour).WithClock(func() time.Time { return testNow })

	logger := log.New(log.Config{
		Handler: slog.NewTextHandler(io.Discard, nil),
	})

	srv, err := NewServer("127.0.0.1:0", svc, logger, false)
	require.NoError(t, err)
	t.Cleanup(func() { srv.rateLimiter.stop() })

	ts := httptest.NewServer(srv.Handler)
	t.Cleanup(ts.Close)
	return ts
}

// newTestClient returns a client with a cookie jar that reports redirects
// instead of following them, so tests can assert on Location headers.
func newTestClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func get(t *testing.T, client *http.Client, url string) *http.Response {
	t.Helper()
	resp, err := client.Get(url)
	require.NoError(t, err)
	return resp
}

func postForm(t *testing.T, client *http.Client, url string, form url.Values) *http.Response {
	t.Helper()
	resp, err := client.PostForm(url, form)
	require.NoError(t, err)
	return resp
}

func body(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

// register creates an account and logs it in, leaving the session cookie in
// the client's jar.
func register(t *testing.T, client *http.Client, baseURL, username, password string) {
	t.Helper()

	resp := postForm(t, client, baseURL+"/register", url.Values{
		"username":         {username},
		"password":         {password},
		"confirm_password": {password},
	})
	resp.Body.Close()
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, "/login", resp.Header.Get("Location"))

	resp = postForm(t, client, baseURL+"/login", url.Values{
		"username": {username},
		"password": {password},
	})
	resp.Body.Close()
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, "/", resp.Header.Get("Location"))
}

func TestHealthEndpoints(t *testing.T) {
	ts := newTestServer(t)
	client := newTestClient(t)

	resp := get(t, client, ts.URL+"/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body(t, resp))

	resp = get(t, client, ts.URL+"/readyz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ready", body(t, resp))
}

func TestAnonymousRedirectedToLogin(t *testing.T) {
	ts := newTestServer(t)
	client := newTestClient(t)

	for _, path := range []string{"/", "/add", "/set_income", "/change_password"} {
		resp := get(t, client, ts.URL+path)
		resp.Body.Close()
		assert.Equal(t, http.StatusFound, resp.StatusCode, "path %s", path)
		assert.Equal(t, "/login", resp.Header.Get("Location"), "path %s", path)
	}
}

func TestLoginPageRenders(t *testing.T) {
	ts := newTestServer(t)
	client := newTestClient(t)

	resp := get(t, client, ts.URL+"/login")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", resp.Header.Get("X-Frame-Options"))

	page := body(t, resp)
	assert.Contains(t, page, `action="/login"`)
	assert.Contains(t, page, `name="username"`)
	assert.Contains(t, page, `name="password"`)
}

func TestRegisterAndLoginFlow(t *testing.T) {
	ts := newTestServer(t)
	client := newTestClient(t)

	resp := postForm(t, client, ts.URL+"/register", url.Values{
		"username":         {"alice"},
		"password":         {"pw1"},
		"confirm_password": {"pw1"},
	})
	resp.Body.Close()
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, "/login", resp.Header.Get("Location"))

	// The flash message survives exactly one render.
	resp = get(t, client, ts.URL+"/login")
	assert.Contains(t, body(t, resp), "Registration successful, please log in.")
	resp = get(t, client, ts.URL+"/login")
	assert.NotContains(t, body(t, resp), "Registration successful")

	resp = postForm(t, client, ts.URL+"/login", url.Values{
		"username": {"alice"},
		"password": {"pw1"},
	})
	resp.Body.Close()
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, "/", resp.Header.Get("Location"))

	var sessionCookie *http.Cookie
	base, _ := url.Parse(ts.URL)
	for _, c := range client.Jar.Cookies(base) {
		if c.Name == SessionCookieName {
			sessionCookie = c
		}
	}
	require.NotNil(t, sessionCookie, "session cookie should be set after login")
	assert.Len(t, sessionCookie.Value, 64)

	resp = get(t, client, ts.URL+"/")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	page := body(t, resp)
	assert.Contains(t, page, "Logged in as alice")
	assert.Contains(t, page, "No expenses yet.")
}

func TestRegisterPasswordMismatch(t *testing.T) {
	ts := newTestServer(t)
	client := newTestClient(t)

	resp := postForm(t, client, ts.URL+"/register", url.Values{
		"username":         {"alice"},
		"password":         {"pw1"},
		"confirm_password": {"pw2"},
	})
	resp.Body.Close()
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/register", resp.Header.Get("Location"))

	resp = get(t, client, ts.URL+"/register")
	assert.Contains(t, body(t, resp), "Passwords do not match.")
}

func TestRegisterDuplicateUsername(t *testing.T) {
	ts := newTestServer(t)
	client := newTestClient(t)

	form := url.Values{
		"username":         {"alice"},
		"password":         {"pw1"},
		"confirm_password": {"pw1"},
	}
	resp := postForm(t, client, ts.URL+"/register", form)
	resp.Body.Close()
	require.Equal(t, http.StatusFound, resp.StatusCode)

	resp = postForm(t, client, ts.URL+"/register", form)
	resp.Body.Close()
	assert.Equal(t, "/register", resp.Header.Get("Location"))

	resp = get(t, client, ts.URL+"/register")
	assert.Contains(t, body(t, resp), "Username already exists.")
}

func TestLoginInvalidCredentials(t *testing.T) {
	ts := newTestServer(t)
	client := newTestClient(t)
	register(t, client, ts.URL, "alice", "pw1")

	other := newTestClient(t)
	resp := postForm(t, other, ts.URL+"/login", url.Values{
		"username": {"alice"},
		"password": {"wrong"},
	})
	resp.Body.Close()
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))

	resp = get(t, other, ts.URL+"/login")
	assert.Contains(t, body(t, resp), "Invalid username or password.")
}

func TestAddExpenseFlow(t *testing.T) {
	ts := newTestServer(t)
	client := newTestClient(t)
	register(t, client, ts.URL, "alice", "pw1")

	resp := postForm(t, client, ts.URL+"/add", url.Values{
		"title":  {"Rent"},
		"amount": {"800"},
	})
	resp.Body.Close()
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, "/", resp.Header.Get("Location"))

	resp = get(t, client, ts.URL+"/")
	page := body(t, resp)
	assert.Contains(t, page, "Expense added successfully.")
	assert.Contains(t, page, "Rent")
	assert.Contains(t, page, "800.00")
	assert.Contains(t, page, "Other", "category should default")
	assert.Contains(t, page, "2024-06-15", "date should default to today")
}

func TestAddExpenseInvalidAmount(t *testing.T) {
	ts := newTestServer(t)
	client := newTestClient(t)
	register(t, client, ts.URL, "alice", "pw1")

	resp := postForm(t, client, ts.URL+"/add", url.Values{
		"title":  {"Rent"},
		"amount": {"abc"},
	})
	resp.Body.Close()
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/add", resp.Header.Get("Location"))

	resp = get(t, client, ts.URL+"/add")
	assert.Contains(t, body(t, resp), "Please enter a valid number for amount.")

	resp = get(t, client, ts.URL+"/")
	assert.Contains(t, body(t, resp), "No expenses yet.")
}

func TestDeleteExpense(t *testing.T) {
	ts := newTestServer(t)
	client := newTestClient(t)
	register(t, client, ts.URL, "alice", "pw1")

	resp := postForm(t, client, ts.URL+"/add", url.Values{
		"title":  {"Coffee"},
		"amount": {"3.50"},
	})
	resp.Body.Close()

	resp = get(t, client, ts.URL+"/")
	page := body(t, resp)
	require.Contains(t, page, "Coffee")
	require.Contains(t, page, `action="/delete/1"`)

	resp = postForm(t, client, ts.URL+"/delete/1", url.Values{})
	resp.Body.Close()
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, "/", resp.Header.Get("Location"))

	resp = get(t, client, ts.URL+"/")
	page = body(t, resp)
	assert.Contains(t, page, "Expense removed.")
	assert.NotContains(t, page, "Coffee")
}

func TestDeleteExpenseBadID(t *testing.T) {
	ts := newTestServer(t)
	client := newTestClient(t)
	register(t, client, ts.URL, "alice", "pw1")

	resp := postForm(t, client, ts.URL+"/delete/abc", url.Values{})
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDeleteExpenseOtherOwner(t *testing.T) {
	ts := newTestServer(t)

	alice := newTestClient(t)
	register(t, alice, ts.URL, "alice", "pw1")
	resp := postForm(t, alice, ts.URL+"/add", url.Values{
		"title":  {"Rent"},
		"amount": {"800"},
	})
	resp.Body.Close()

	bob := newTestClient(t)
	register(t, bob, ts.URL, "bob", "pw2")

	// Bob deleting alice's expense still redirects with a success flash,
	// but the record survives.
	resp = postForm(t, bob, ts.URL+"/delete/1", url.Values{})
	resp.Body.Close()
	assert.Equal(t, http.StatusFound, resp.StatusCode)

	resp = get(t, alice, ts.URL+"/")
	assert.Contains(t, body(t, resp), "Rent")
}

func TestSetIncome(t *testing.T) {
	ts := newTestServer(t)
	client := newTestClient(t)
	register(t, client, ts.URL, "alice", "pw1")

	resp := postForm(t, client, ts.URL+"/set_income", url.Values{
		"monthly_income": {"2000"},
	})
	resp.Body.Close()
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, "/", resp.Header.Get("Location"))

	resp = get(t, client, ts.URL+"/")
	page := body(t, resp)
	assert.Contains(t, page, "Monthly income updated successfully.")
	assert.Contains(t, page, "2000.00")
}

func TestSetIncomeInvalidNumber(t *testing.T) {
	ts := newTestServer(t)
	client := newTestClient(t)
	register(t, client, ts.URL, "alice", "pw1")

	resp := postForm(t, client, ts.URL+"/set_income", url.Values{
		"monthly_income": {"abc"},
	})
	resp.Body.Close()
	assert.Equal(t, "/set_income", resp.Header.Get("Location"))

	resp = get(t, client, ts.URL+"/set_income")
	assert.Contains(t, body(t, resp), "Please enter a valid number for monthly income.")
}

func TestChangePasswordFlow(t *testing.T) {
	ts := newTestServer(t)
	client := newTestClient(t)
	register(t, client, ts.URL, "alice", "old-pw")

	resp := postForm(t, client, ts.URL+"/change_password", url.Values{
		"current_password": {"old-pw"},
		"new_password":     {"new-pw"},
		"confirm_password": {"new-pw"},
	})
	resp.Body.Close()
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, "/", resp.Header.Get("Location"))

	resp = get(t, client, ts.URL+"/logout")
	resp.Body.Close()

	other := newTestClient(t)
	resp = postForm(t, other, ts.URL+"/login", url.Values{
		"username": {"alice"},
		"password": {"old-pw"},
	})
	resp.Body.Close()
	assert.Equal(t, "/login", resp.Header.Get("Location"), "old password should stop working")

	resp = postForm(t, other, ts.URL+"/login", url.Values{
		"username": {"alice"},
		"password": {"new-pw"},
	})
	resp.Body.Close()
	assert.Equal(t, "/", resp.Header.Get("Location"), "new password should work")
}

func TestChangePasswordWrongCurrent(t *testing.T) {
	ts := newTestServer(t)
	client := newTestClient(t)
	register(t, client, ts.URL, "alice", "pw1")

	resp := postForm(t, client, ts.URL+"/change_password", url.Values{
		"current_password": {"wrong"},
		"new_password":     {"new-pw"},
		"confirm_password": {"new-pw"},
	})
	resp.Body.Close()
	assert.Equal(t, "/change_password", resp.Header.Get("Location"))

	resp = get(t, client, ts.URL+"/change_password")
	assert.Contains(t, body(t, resp), "Current password is incorrect.")
}

func TestLogoutClearsSession(t *testing.T) {
	ts := newTestServer(t)
	client := newTestClient(t)
	register(t, client, ts.URL, "alice", "pw1")

	resp := get(t, client, ts.URL+"/logout")
	resp.Body.Close()
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, "/login", resp.Header.Get("Location"))

	resp = get(t, client, ts.URL+"/")
	resp.Body.Close()
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))
}

func TestExpensesAreScopedToAccount(t *testing.T) {
	ts := newTestServer(t)

	alice := newTestClient(t)
	register(t, alice, ts.URL, "alice", "pw1")
	resp := postForm(t, alice, ts.URL+"/add", url.Values{
		"title":  {"AliceOnly"},
		"amount": {"10"},
	})
	resp.Body.Close()

	bob := newTestClient(t)
	register(t, bob, ts.URL, "bob", "pw2")

	resp = get(t, bob, ts.URL+"/")
	assert.NotContains(t, body(t, resp), "AliceOnly")
}

func TestMethodNotAllowed(t *testing.T) {
	ts := newTestServer(t)
	client := newTestClient(t)

	req, err := http.NewRequest(http.MethodDelete, ts.URL+"/login", nil)
	require.NoError(t, err)
	resp, err := client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	assert.Equal(t, "GET, POST", resp.Header.Get("Allow"))
}

func TestUnknownPathNotFound(t *testing.T) {
	ts := newTestServer(t)
	client := newTestClient(t)
	register(t, client, ts.URL, "alice", "pw1")

	resp := get(t, client, ts.URL+"/nonexistent")
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestNegativeBalanceRendering(t *testing.T) {
	ts := newTestServer(t)
	client := newTestClient(t)
	register(t, client, ts.URL, "alice", "pw1")

	resp := postForm(t, client, ts.URL+"/add", url.Values{
		"title":  {"Rent"},
		"amount": {"500"},
	})
	resp.Body.Close()

	resp = get(t, client, ts.URL+"/")
	page := body(t, resp)
	assert.Contains(t, page, "-500.00")
	assert.True(t, strings.Contains(page, "negative"), "negative balance should be marked")
}

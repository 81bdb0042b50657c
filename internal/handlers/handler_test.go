// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared infrastructure for handler integration
// tests. The suite lives outside the handlers package and exercises the
// full router the way a browser would; tests are skipped when PostgreSQL
// or Valkey are unavailable, and the external identity service is always
// faked with a local httptest server.
package handlers_test

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"

	"nutra/internal/ai"
	"nutra/internal/bulk"
	"nutra/internal/cache"
	"nutra/internal/database"
	"nutra/internal/handlers"
	"nutra/internal/identity"
	"nutra/internal/middleware"
	"nutra/internal/models"
	"nutra/internal/photos"
	"nutra/internal/router"
	"nutra/internal/routes"
	"nutra/internal/session"
	"nutra/internal/store"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test PostgreSQL and runs migrations.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "nutra")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "nutra")
	dsn := "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Skipf("skipping: cannot open DB: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping: DB not reachable: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("migrate: %v", err)
	}
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// testValkeyClient returns a Redis client for handler tests on DB 15.
func testValkeyClient(t *testing.T) *redis.Client {
	t.Helper()

	host := envOr("VALKEY_HOST", "localhost")
	port := envOr("VALKEY_PORT", "6379")
	password := os.Getenv("VALKEY_PASSWORD")

	client := redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: password,
		DB:       15,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping: Valkey not reachable: %v", err)
	}

	t.Cleanup(func() {
		for _, pattern := range []string{"session:*", "page:*"} {
			keys, _ := client.Keys(ctx, pattern).Result()
			if len(keys) > 0 {
				client.Del(ctx, keys...)
			}
		}
		client.Close()
	})

	return client
}

// fakeIdentityService stands in for the hosted identity provider. It
// issues opaque tokens for known credentials and validates them until
// revoked, which is exactly the surface the application uses.
type fakeIdentityService struct {
	mu       sync.Mutex
	accounts map[string]string         // email -> password
	users    map[string]*identity.User // email -> user
	tokens   map[string]*identity.User // token -> user
	server   *httptest.Server
}

func newFakeIdentityService(t *testing.T) *fakeIdentityService {
	t.Helper()
	f := &fakeIdentityService{
		accounts: map[string]string{},
		users:    map[string]*identity.User{},
		tokens:   map[string]*identity.User{},
	}
	f.server = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeIdentityService) addUser(email, password string) *identity.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	u := &identity.User{ID: uuid.New(), Email: email}
	f.accounts[email] = password
	f.users[email] = u
	return u
}

func (f *fakeIdentityService) handle(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/token":
		var creds struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		pass, ok := f.accounts[creds.Email]
		if !ok || pass != creds.Password {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		token := uuid.NewString()
		user := f.users[creds.Email]
		f.tokens[token] = user
		json.NewEncoder(w).Encode(map[string]any{
			"access_token": token,
			"user":         user,
		})

	case r.Method == http.MethodGet && r.URL.Path == "/user":
		user, ok := f.tokens[bearerToken(r)]
		if !ok {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(user)

	case r.Method == http.MethodPost && r.URL.Path == "/logout":
		delete(f.tokens, bearerToken(r))
		w.WriteHeader(http.StatusNoContent)

	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func bearerToken(r *http.Request) string {
	return strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
}

// memStorage keeps uploaded objects in memory for photo tests.
type memStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newMemStorage() *memStorage {
	return &memStorage{objects: map[string][]byte{}}
}

func (m *memStorage) Upload(_ context.Context, key, _ string, body io.Reader, _ int64) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = data
	return nil
}

func (m *memStorage) FileURL(key string) string {
	return "https://cdn.test.local/" + key
}

func (m *memStorage) keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for k := range m.objects {
		out = append(out, k)
	}
	return out
}

// stubModerator returns a fixed verdict so photo tests never hit the
// moderation retry loop.
type stubModerator struct {
	mu    sync.Mutex
	check ai.FoodCheck
}

func (s *stubModerator) CheckFood(context.Context, string) (*ai.FoodCheck, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.check
	return &c, nil
}

func (s *stubModerator) set(check ai.FoodCheck) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.check = check
}

// testEnv holds all dependencies for handler integration tests.
type testEnv struct {
	DB        *sql.DB
	Valkey    *redis.Client
	Identity  *fakeIdentityService
	Sessions  *session.Store
	Gate      *identity.Gate
	Recipes   *store.RecipeStore
	Premium   *store.PremiumStore
	Waitlist  *store.WaitlistStore
	PageCache *cache.PageCache
	AI        *ai.Registry
	Storage   *memStorage
	Moderator *stubModerator
	Admin     *identity.User
	Server    *httptest.Server
}

// newTestEnv wires the full router against real Postgres/Valkey and the
// fake identity service, with one allow-listed admin account.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testDB(t)
	vk := testValkeyClient(t)
	ident := newFakeIdentityService(t)
	admin := ident.addUser("admin@example.com", "correct-horse")
	ident.addUser("member@example.com", "battery-staple")

	idClient := identity.NewClient(ident.server.URL, "test-key")
	gate := identity.NewGate(idClient, []string{admin.ID.String()})
	sessions := session.NewStore(vk, false)

	recipes := store.NewRecipeStore(db)
	premium := store.NewPremiumStore(db)
	waitlist := store.NewWaitlistStore(db)
	pageCache := cache.NewPageCache(vk, 1*time.Minute)

	executor := bulk.NewExecutor(recipes, nil, nil)
	resolver := routes.NewResolver(recipes)
	registry := ai.NewRegistry("", nil)

	storage := newMemStorage()
	moderator := &stubModerator{check: ai.FoodCheck{IsFood: true, Confidence: 1}}
	pipeline := photos.NewPipeline(storage, moderator, recipes)

	loginLimiter := middleware.NewRateLimiter(1000, time.Minute)
	waitlistLimiter := middleware.NewRateLimiter(1000, time.Minute)
	t.Cleanup(loginLimiter.Stop)
	t.Cleanup(waitlistLimiter.Stop)

	r := router.New(router.Deps{
		Sessions:        sessions,
		Gate:            gate,
		Auth:            handlers.NewAuth(sessions, idClient, gate),
		Admin:           handlers.NewAdmin(recipes, premium, pageCache, pipeline, executor, registry),
		Public:          handlers.NewPublic(resolver, recipes, waitlist, pageCache, "http://localhost:8080", "cs"),
		WellKnown:       handlers.NewWellKnown("", "", ""),
		LoginLimiter:    loginLimiter,
		WaitlistLimiter: waitlistLimiter,
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return &testEnv{
		DB:        db,
		Valkey:    vk,
		Identity:  ident,
		Sessions:  sessions,
		Gate:      gate,
		Recipes:   recipes,
		Premium:   premium,
		Waitlist:  waitlist,
		PageCache: pageCache,
		AI:        registry,
		Storage:   storage,
		Moderator: moderator,
		Admin:     admin,
		Server:    srv,
	}
}

// testClient is an HTTP client with a cookie jar that mirrors the CSRF
// cookie into the X-CSRF-Token header, the way the admin console does.
type testClient struct {
	t      *testing.T
	base   string
	client *http.Client
}

func newTestClient(t *testing.T, env *testEnv) *testClient {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookiejar: %v", err)
	}
	c := &testClient{
		t:    t,
		base: env.Server.URL,
		client: &http.Client{
			Jar: jar,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
	// Prime the CSRF cookie the way the console does on first load.
	resp := c.get("/admin/api/session")
	resp.Body.Close()
	return c
}

func (c *testClient) do(method, path string, body any) *http.Response {
	c.t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			c.t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, c.base+path, reader)
	if err != nil {
		c.t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.csrfToken(); token != "" {
		req.Header.Set(middleware.CSRFHeaderName, token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

func (c *testClient) get(path string) *http.Response {
	c.t.Helper()
	resp, err := c.client.Get(c.base + path)
	if err != nil {
		c.t.Fatalf("GET %s: %v", path, err)
	}
	return resp
}

// csrfToken reads the CSRF token currently in the jar.
func (c *testClient) csrfToken() string {
	req, _ := http.NewRequest(http.MethodGet, c.base+"/admin/api/", nil)
	for _, cookie := range c.client.Jar.Cookies(req.URL) {
		if cookie.Name == middleware.CSRFCookieName {
			return cookie.Value
		}
	}
	return ""
}

// login signs the client in through the real login endpoint.
func (c *testClient) login(email, password string) *http.Response {
	c.t.Helper()
	return c.do(http.MethodPost, "/admin/api/login", map[string]string{
		"email":    email,
		"password": password,
	})
}

// decodeBody decodes a JSON response body into dst and closes it.
func decodeBody(t *testing.T, resp *http.Response, dst any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

// seedRecipe inserts a recipe directly through the store.
func seedRecipe(t *testing.T, env *testEnv, name string, visibility models.Visibility) *models.Recipe {
	t.Helper()
	lang := "cs"
	created, err := env.Recipes.Create(&models.Recipe{
		Name:        name,
		Slug:        slugify(name),
		Servings:    2,
		Difficulty:  models.DifficultyEasy,
		Language:    &lang,
		Ingredients: models.IngredientList{{Name: "potatoes"}},
		Steps:       models.StringList{"boil"},
		Visibility:  visibility,
	})
	if err != nil {
		t.Fatalf("seed recipe: %v", err)
	}
	t.Cleanup(func() {
		env.DB.Exec("DELETE FROM recipes WHERE id = $1", created.ID)
	})
	return created
}

func slugify(name string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), " ", "-"))
}

// cleanWaitlist removes waitlist rows by email.
func cleanWaitlist(t *testing.T, db *sql.DB, emails ...string) {
	t.Helper()
	for _, e := range emails {
		db.Exec("DELETE FROM marketing_waitlist WHERE email = $1", e)
	}
}

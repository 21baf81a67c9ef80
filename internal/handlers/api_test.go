package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/fiesta-dev/fiesta/internal/auth"
	"github.com/fiesta-dev/fiesta/internal/handlers"
	"github.com/fiesta-dev/fiesta/internal/models"
	"github.com/fiesta-dev/fiesta/internal/notify"
	"github.com/fiesta-dev/fiesta/internal/planner"
	"github.com/fiesta-dev/fiesta/internal/router"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	router *gin.Engine
	conn   *gorm.DB
	t      *testing.T
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	conn, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	err = conn.AutoMigrate(
		&models.User{},
		&models.Party{},
		&models.Participation{},
		&models.Item{},
		&models.Notification{},
	)
	if err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	hub := notify.NewHub()
	engine := planner.NewEngine(conn, planner.NopNotifier{})
	h := handlers.New(conn, engine, jwtManager, hub)

	return &testServer{
		router: router.NewRouter(h, jwtManager, conn),
		conn:   conn,
		t:      t,
	}
}

func (s *testServer) request(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	s.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			s.t.Fatalf("failed to encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("failed to decode response %q: %v", w.Body.String(), err)
	}
	return out
}

// register creates an account and returns its token and user id.
func (s *testServer) register(name, email string) (string, uint) {
	s.t.Helper()

	w := s.request(http.MethodPost, "/api/auth/register", "", gin.H{
		"name":     name,
		"email":    email,
		"password": "password123",
	})
	if w.Code != http.StatusCreated {
		s.t.Fatalf("register %s: expected 201, got %d: %s", email, w.Code, w.Body.String())
	}
	body := decode(s.t, w)
	token, _ := body["token"].(string)
	user, _ := body["user"].(map[string]interface{})
	id, _ := user["id"].(float64)
	if token == "" || id == 0 {
		s.t.Fatalf("register %s: missing token or user id in %v", email, body)
	}
	return token, uint(id)
}

func (s *testServer) createParty(token, name string) uint {
	s.t.Helper()

	w := s.request(http.MethodPost, "/api/parties", token, gin.H{
		"name":     name,
		"date":     time.Now().Add(48 * time.Hour).Format(time.RFC3339),
		"location": "Rooftop",
	})
	if w.Code != http.StatusCreated {
		s.t.Fatalf("create party: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	body := decode(s.t, w)
	id, _ := body["id"].(float64)
	if id == 0 {
		s.t.Fatalf("create party: missing id in %v", body)
	}
	return uint(id)
}

func TestHealthCheck(t *testing.T) {
	s := newTestServer(t)
	w := s.request(http.MethodGet, "/api/health", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	s := newTestServer(t)
	s.register("Alice", "alice@example.com")

	w := s.request(http.MethodPost, "/api/auth/register", "", gin.H{
		"name":     "Imposter",
		"email":    "alice@example.com",
		"password": "password123",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestRegisterValidation(t *testing.T) {
	s := newTestServer(t)

	cases := []gin.H{
		{"name": "Alice", "email": "not-an-email", "password": "password123"},
		{"name": "Alice", "email": "alice@example.com", "password": "short"},
		{"name": "A", "email": "alice@example.com", "password": "password123"},
	}
	for _, body := range cases {
		w := s.request(http.MethodPost, "/api/auth/register", "", body)
		if w.Code != http.StatusBadRequest {
			t.Errorf("body %v: expected 400, got %d", body, w.Code)
		}
	}
}

func TestLogin(t *testing.T) {
	s := newTestServer(t)
	s.register("Alice", "alice@example.com")

	w := s.request(http.MethodPost, "/api/auth/login", "", gin.H{
		"email":    "alice@example.com",
		"password": "password123",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if token, _ := decode(t, w)["token"].(string); token == "" {
		t.Error("expected a token in the login response")
	}

	// Wrong password and unknown email both come back 401.
	w = s.request(http.MethodPost, "/api/auth/login", "", gin.H{
		"email":    "alice@example.com",
		"password": "wrong-password",
	})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("wrong password: expected 401, got %d", w.Code)
	}
	w = s.request(http.MethodPost, "/api/auth/login", "", gin.H{
		"email":    "ghost@example.com",
		"password": "password123",
	})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("unknown email: expected 401, got %d", w.Code)
	}
}

func TestAuthRequired(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{"/api/parties", "/api/auth/me"} {
		w := s.request(http.MethodGet, path, "", nil)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("%s without token: expected 401, got %d", path, w.Code)
		}
		w = s.request(http.MethodGet, path, "not-a-jwt", nil)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("%s with garbage token: expected 401, got %d", path, w.Code)
		}
	}
}

// TestBirthdayScenario walks the happy path: Alice creates a party, adds
// Bob, Bob commits a cake, and Alice sees both of them and the item.
func TestBirthdayScenario(t *testing.T) {
	s := newTestServer(t)
	aliceToken, _ := s.register("Alice", "alice@example.com")
	bobToken, bobID := s.register("Bob", "bob@example.com")

	partyID := s.createParty(aliceToken, "Birthday")

	w := s.request(http.MethodPost, fmt.Sprintf("/api/parties/%d/participants", partyID), aliceToken, gin.H{
		"userId": bobID,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("add participant: expected 201, got %d: %s", w.Code, w.Body.String())
	}

	w = s.request(http.MethodPost, fmt.Sprintf("/api/parties/%d/items", partyID), bobToken, gin.H{
		"name":     "Cake",
		"quantity": 1,
		"category": "Desserts",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("add item: expected 201, got %d: %s", w.Code, w.Body.String())
	}

	w = s.request(http.MethodGet, fmt.Sprintf("/api/parties/%d", partyID), aliceToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get party: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	body := decode(t, w)

	participants, _ := body["participants"].([]interface{})
	if len(participants) != 2 {
		t.Errorf("expected 2 participants, got %d", len(participants))
	}
	items, _ := body["items"].([]interface{})
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	item, _ := items[0].(map[string]interface{})
	if item["brought_by"] != "Bob" {
		t.Errorf("expected item brought_by Bob, got %v", item["brought_by"])
	}
}

func TestPartyAccessControl(t *testing.T) {
	s := newTestServer(t)
	aliceToken, _ := s.register("Alice", "alice@example.com")
	carolToken, _ := s.register("Carol", "carol@example.com")

	partyID := s.createParty(aliceToken, "Private")

	w := s.request(http.MethodGet, fmt.Sprintf("/api/parties/%d", partyID), carolToken, nil)
	if w.Code != http.StatusForbidden {
		t.Errorf("non-participant read: expected 403, got %d", w.Code)
	}

	name := gin.H{"name": "Hijacked"}
	w = s.request(http.MethodPut, fmt.Sprintf("/api/parties/%d", partyID), carolToken, name)
	if w.Code != http.StatusForbidden {
		t.Errorf("non-creator update: expected 403, got %d", w.Code)
	}

	w = s.request(http.MethodDelete, fmt.Sprintf("/api/parties/%d", partyID), carolToken, nil)
	if w.Code != http.StatusForbidden {
		t.Errorf("non-creator delete: expected 403, got %d", w.Code)
	}

	w = s.request(http.MethodGet, "/api/parties/999999", aliceToken, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("missing party: expected 404, got %d", w.Code)
	}

	w = s.request(http.MethodGet, "/api/parties/not-a-number", aliceToken, nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("malformed id: expected 400, got %d", w.Code)
	}
}

func TestCreatePartyRejectsBadDate(t *testing.T) {
	s := newTestServer(t)
	token, _ := s.register("Alice", "alice@example.com")

	w := s.request(http.MethodPost, "/api/parties", token, gin.H{
		"name":     "Birthday",
		"date":     "next friday",
		"location": "Rooftop",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}

	w = s.request(http.MethodPost, "/api/parties", token, gin.H{
		"name":     "Birthday",
		"date":     time.Now().Add(-time.Hour).Format(time.RFC3339),
		"location": "Rooftop",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("past date: expected 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestDuplicateParticipantConflict(t *testing.T) {
	s := newTestServer(t)
	aliceToken, _ := s.register("Alice", "alice@example.com")
	_, bobID := s.register("Bob", "bob@example.com")

	partyID := s.createParty(aliceToken, "Birthday")
	path := fmt.Sprintf("/api/parties/%d/participants", partyID)

	if w := s.request(http.MethodPost, path, aliceToken, gin.H{"userId": bobID}); w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", w.Code)
	}
	if w := s.request(http.MethodPost, path, aliceToken, gin.H{"userId": bobID}); w.Code != http.StatusConflict {
		t.Errorf("duplicate: expected 409, got %d: %s", w.Code, w.Body.String())
	}
	if w := s.request(http.MethodPost, path, aliceToken, gin.H{"userId": 999999}); w.Code != http.StatusNotFound {
		t.Errorf("unknown user: expected 404, got %d", w.Code)
	}
}

func TestItemEndpoints(t *testing.T) {
	s := newTestServer(t)
	aliceToken, _ := s.register("Alice", "alice@example.com")
	bobToken, bobID := s.register("Bob", "bob@example.com")

	partyID := s.createParty(aliceToken, "Birthday")
	s.request(http.MethodPost, fmt.Sprintf("/api/parties/%d/participants", partyID), aliceToken, gin.H{"userId": bobID})

	itemsPath := fmt.Sprintf("/api/parties/%d/items", partyID)

	w := s.request(http.MethodPost, itemsPath, bobToken, gin.H{"name": "Cake", "quantity": 0})
	if w.Code != http.StatusBadRequest {
		t.Errorf("zero quantity: expected 400, got %d", w.Code)
	}

	w = s.request(http.MethodPost, itemsPath, bobToken, gin.H{"name": "Cake", "quantity": 2, "category": "Desserts"})
	if w.Code != http.StatusCreated {
		t.Fatalf("add item: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	itemID := uint(decode(t, w)["id"].(float64))
	itemPath := fmt.Sprintf("/api/parties/%d/items/%d", partyID, itemID)

	// Alice is not the bringer.
	w = s.request(http.MethodPut, itemPath, aliceToken, gin.H{"quantity": 5})
	if w.Code != http.StatusForbidden {
		t.Errorf("non-bringer update: expected 403, got %d", w.Code)
	}

	w = s.request(http.MethodPut, itemPath, bobToken, gin.H{"quantity": 5})
	if w.Code != http.StatusOK {
		t.Fatalf("bringer update: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if q := decode(t, w)["quantity"].(float64); q != 5 {
		t.Errorf("expected quantity 5, got %v", q)
	}

	w = s.request(http.MethodDelete, itemPath, bobToken, nil)
	if w.Code != http.StatusNoContent {
		t.Errorf("bringer delete: expected 204, got %d", w.Code)
	}
	w = s.request(http.MethodDelete, itemPath, bobToken, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("delete again: expected 404, got %d", w.Code)
	}
}

func TestProfileLifecycle(t *testing.T) {
	s := newTestServer(t)
	token, _ := s.register("Alice", "alice@example.com")

	w := s.request(http.MethodGet, "/api/auth/me", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("me: expected 200, got %d", w.Code)
	}
	me, _ := decode(t, w)["user"].(map[string]interface{})
	if me["email"] != "alice@example.com" {
		t.Errorf("unexpected me payload: %s", w.Body.String())
	}

	w = s.request(http.MethodPut, "/api/auth/me", token, gin.H{
		"name":            "Alicia",
		"currentPassword": "password123",
		"newPassword":     "password456",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("update profile: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	// Old password no longer works, new one does.
	w = s.request(http.MethodPost, "/api/auth/login", "", gin.H{"email": "alice@example.com", "password": "password123"})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("old password: expected 401, got %d", w.Code)
	}
	w = s.request(http.MethodPost, "/api/auth/login", "", gin.H{"email": "alice@example.com", "password": "password456"})
	if w.Code != http.StatusOK {
		t.Errorf("new password: expected 200, got %d", w.Code)
	}

	// Deleting the account needs the right password.
	w = s.request(http.MethodDelete, "/api/auth/me", token, gin.H{"password": "wrong"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("wrong password delete: expected 400, got %d", w.Code)
	}
	w = s.request(http.MethodDelete, "/api/auth/me", token, gin.H{"password": "password456"})
	if w.Code != http.StatusOK {
		t.Fatalf("delete account: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	// The token is for a user that no longer exists.
	w = s.request(http.MethodGet, "/api/auth/me", token, nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("deleted account token: expected 401, got %d", w.Code)
	}
}

func TestRegisterPushToken(t *testing.T) {
	s := newTestServer(t)
	token, userID := s.register("Alice", "alice@example.com")

	w := s.request(http.MethodPost, "/api/auth/push-token", token, gin.H{"token": "device-abc"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var user models.User
	if err := s.conn.First(&user, userID).Error; err != nil {
		t.Fatalf("failed to load user: %v", err)
	}
	if user.PushToken != "device-abc" {
		t.Errorf("expected push token stored, got %q", user.PushToken)
	}
}

package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"comptabilite/internal/database"
	"comptabilite/internal/middleware"
	"comptabilite/internal/repository"
	"comptabilite/internal/service"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const testSecret = "test-secret-key-at-least-32-chars-long"

func init() {
	gin.SetMode(gin.TestMode)
}

// newTestRouter wires the full API over an in-memory database, the same
// composition main performs against postgres.
func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()

	dsn := "file:" + strings.ReplaceAll(t.Name(), "/", "_") + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	userRepo := repository.NewUserRepository(db)
	sectionRepo := repository.NewSectionRepository(db)
	personnelRepo := repository.NewPersonnelRepository(db)
	relationRepo := repository.NewPersonnelSectionRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	txManager := repository.NewTransactionManager(db)

	tokenService := service.NewTokenService(testSecret)
	authService := service.NewAuthService(userRepo, auditRepo, tokenService, txManager, nil)
	sectionService := service.NewSectionService(sectionRepo, relationRepo, auditRepo, txManager, nil)
	personnelService := service.NewPersonnelService(personnelRepo, relationRepo, auditRepo, txManager, nil)
	auditService := service.NewAuditService(auditRepo)

	r := gin.New()
	api := r.Group("/")
	authn := middleware.Authenticate(tokenService)

	NewAuthHandler(authService).RegisterRoutes(api, authn)
	NewSectionHandler(sectionService).RegisterRoutes(api, authn)
	NewPersonnelHandler(personnelService, sectionService).RegisterRoutes(api, authn)
	NewAuditHandler(auditService).RegisterRoutes(api, authn)
	return r
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func do(t *testing.T, r *gin.Engine, method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	if len(w.Body.Bytes()) > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
			t.Fatalf("decode %s %s response %q: %v", method, path, w.Body.String(), err)
		}
	}
	return w, env
}

func signup(t *testing.T, r *gin.Engine, email, role string) string {
	t.Helper()
	w, env := do(t, r, http.MethodPost, "/auth/signup", "", gin.H{
		"firstname": "Test",
		"lastname":  "User",
		"email":     email,
		"password":  "secret123",
		"role":      role,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("signup %s: status %d body %s", email, w.Code, w.Body.String())
	}
	var result struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(env.Data, &result); err != nil {
		t.Fatalf("decode signup data: %v", err)
	}
	if result.Token == "" {
		t.Fatal("signup returned no token")
	}
	return result.Token
}

func createSection(t *testing.T, r *gin.Engine, token, label string) uint {
	t.Helper()
	w, env := do(t, r, http.MethodPost, "/section/add", token, gin.H{
		"label": label, "unit": "U1", "type": "operational",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create section: status %d body %s", w.Code, w.Body.String())
	}
	var section struct {
		ID uint `json:"id"`
	}
	if err := json.Unmarshal(env.Data, &section); err != nil {
		t.Fatalf("decode section: %v", err)
	}
	return section.ID
}

func TestPersonnelLifecycle(t *testing.T) {
	r := newTestRouter(t)
	admin := signup(t, r, "admin@example.com", "admin")

	s1 := createSection(t, r, admin, "Comptabilité")
	s2 := createSection(t, r, admin, "Logistique")

	// Section ids arrive as numbers or integer strings interchangeably.
	w, env := do(t, r, http.MethodPost, "/personnel/add", admin, gin.H{
		"matricule":     "MAT-001",
		"nom":           "Diallo",
		"qualification": "Technicien",
		"affectation":   "Atelier",
		"sections":      []interface{}{s1, fmt.Sprint(s2)},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create personnel: status %d body %s", w.Code, w.Body.String())
	}
	var created struct {
		ID       uint `json:"id"`
		Sections []struct {
			ID uint `json:"id"`
		} `json:"sections"`
	}
	if err := json.Unmarshal(env.Data, &created); err != nil {
		t.Fatalf("decode personnel: %v", err)
	}
	if len(created.Sections) != 2 {
		t.Fatalf("sections = %v, want both assigned", created.Sections)
	}

	// Replace-all update keeps only the new set.
	w, _ = do(t, r, http.MethodPut, fmt.Sprintf("/personnel/%d", created.ID), admin, gin.H{
		"matricule":     "MAT-001",
		"nom":           "Diallo",
		"qualification": "Technicien",
		"affectation":   "Atelier",
		"sections":      []uint{s2},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("update personnel: status %d body %s", w.Code, w.Body.String())
	}

	w, env = do(t, r, http.MethodGet, fmt.Sprintf("/personnel/%d/sections", created.ID), admin, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("assigned sections: status %d", w.Code)
	}
	var ids []uint
	if err := json.Unmarshal(env.Data, &ids); err != nil {
		t.Fatalf("decode ids: %v", err)
	}
	if len(ids) != 1 || ids[0] != s2 {
		t.Errorf("ids = %v, want [%d]", ids, s2)
	}

	w, env = do(t, r, http.MethodDelete, fmt.Sprintf("/personnel/%d", created.ID), admin, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("delete personnel: status %d", w.Code)
	}
	if env.Message == "" {
		t.Error("delete returned no confirmation message")
	}

	if w, _ = do(t, r, http.MethodGet, fmt.Sprintf("/personnel/%d", created.ID), admin, nil); w.Code != http.StatusNotFound {
		t.Errorf("get after delete: status %d, want 404", w.Code)
	}
}

func TestPersonnelCreate_BadSectionReference(t *testing.T) {
	r := newTestRouter(t)
	admin := signup(t, r, "admin@example.com", "admin")

	w, env := do(t, r, http.MethodPost, "/personnel/add", admin, gin.H{
		"matricule":     "MAT-002",
		"nom":           "Diallo",
		"qualification": "Technicien",
		"affectation":   "Atelier",
		"sections":      []uint{99999},
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if !strings.Contains(env.Error, "99999") {
		t.Errorf("error %q does not name the offending section", env.Error)
	}

	// Non-integer section ids are rejected at binding time.
	w, _ = do(t, r, http.MethodPost, "/personnel/add", admin, gin.H{
		"matricule":     "MAT-003",
		"nom":           "Diallo",
		"qualification": "Technicien",
		"affectation":   "Atelier",
		"sections":      []string{"abc"},
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestAuthorization(t *testing.T) {
	r := newTestRouter(t)
	admin := signup(t, r, "admin@example.com", "admin")
	customer := signup(t, r, "customer@example.com", "")

	sectionID := createSection(t, r, admin, "Comptabilité")

	// No token: 401 on reads and writes alike.
	if w, _ := do(t, r, http.MethodGet, "/personnel/all", "", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("anonymous read: status %d, want 401", w.Code)
	}
	if w, _ := do(t, r, http.MethodPost, "/section/add", "", gin.H{"label": "X", "unit": "U", "type": "t"}); w.Code != http.StatusUnauthorized {
		t.Errorf("anonymous write: status %d, want 401", w.Code)
	}

	// Customer: reads pass, writes are forbidden.
	if w, _ := do(t, r, http.MethodGet, "/section/all", customer, nil); w.Code != http.StatusOK {
		t.Errorf("customer read: status %d, want 200", w.Code)
	}
	if w, _ := do(t, r, http.MethodDelete, fmt.Sprintf("/section/%d", sectionID), customer, nil); w.Code != http.StatusForbidden {
		t.Errorf("customer write: status %d, want 403", w.Code)
	}

	// Audit trail is admin-only.
	if w, _ := do(t, r, http.MethodGet, "/audit/logs", customer, nil); w.Code != http.StatusForbidden {
		t.Errorf("customer audit: status %d, want 403", w.Code)
	}
	if w, _ := do(t, r, http.MethodGet, "/audit/logs", admin, nil); w.Code != http.StatusOK {
		t.Errorf("admin audit: status %d, want 200", w.Code)
	}
}

func TestLoginFlow(t *testing.T) {
	r := newTestRouter(t)
	signup(t, r, "user@example.com", "")

	w, env := do(t, r, http.MethodPost, "/auth/login", "", gin.H{
		"email": "user@example.com", "password": "secret123",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("login: status %d body %s", w.Code, w.Body.String())
	}
	var result struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(env.Data, &result); err != nil {
		t.Fatalf("decode login data: %v", err)
	}

	// The fresh token grants access to a protected read.
	if w, _ := do(t, r, http.MethodGet, "/personnel/all", result.Token, nil); w.Code != http.StatusOK {
		t.Errorf("read with fresh token: status %d, want 200", w.Code)
	}

	// Unknown user and bad password answer differently.
	if w, _ := do(t, r, http.MethodPost, "/auth/login", "", gin.H{"email": "nobody@example.com", "password": "secret123"}); w.Code != http.StatusNotFound {
		t.Errorf("unknown user: status %d, want 404", w.Code)
	}
	if w, _ := do(t, r, http.MethodPost, "/auth/login", "", gin.H{"email": "user@example.com", "password": "wrong"}); w.Code != http.StatusUnauthorized {
		t.Errorf("bad password: status %d, want 401", w.Code)
	}
}

func TestSectionPicker(t *testing.T) {
	r := newTestRouter(t)
	admin := signup(t, r, "admin@example.com", "admin")

	createSection(t, r, admin, "Logistique")
	createSection(t, r, admin, "Comptabilité")

	w, env := do(t, r, http.MethodGet, "/personnel/sections", admin, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("picker: status %d", w.Code)
	}
	var picker []struct {
		ID    uint   `json:"id"`
		Label string `json:"label"`
	}
	if err := json.Unmarshal(env.Data, &picker); err != nil {
		t.Fatalf("decode picker: %v", err)
	}
	if len(picker) != 2 {
		t.Fatalf("picker = %v, want both sections", picker)
	}
	// Alphabetical order for the form dropdown.
	if picker[0].Label != "Comptabilité" || picker[1].Label != "Logistique" {
		t.Errorf("picker order = %v, want alphabetical", picker)
	}
}

package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"studyquest/internal/database"
	"studyquest/internal/models"
	"studyquest/internal/repository"
	"studyquest/internal/security"
	"studyquest/internal/service"
	"studyquest/internal/sync"
)

func newTestHousehold(t *testing.T) *service.Household {
	t.Helper()

	db, err := database.Initialize(filepath.Join(t.TempDir(), "handlers_test.db"))
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS documents (
			doc_key TEXT PRIMARY KEY,
			body TEXT NOT NULL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		t.Fatalf("failed to create documents table: %v", err)
	}

	repo := repository.NewStateRepository(repository.NewDocumentRepository(db))
	syncer := sync.New(repo, nil, time.Millisecond)
	household := service.NewHousehold(repo, syncer)
	if err := household.Hydrate(t.Context()); err != nil {
		t.Fatalf("failed to hydrate household: %v", err)
	}
	return household
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("failed to decode response body: %v", err)
	}
}

func TestParentLoginFlow(t *testing.T) {
	authService, err := service.NewAuthService("1234", []byte("test-secret"), time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	handler := NewAuthHandler(authService, time.Hour)

	rec := httptest.NewRecorder()
	handler.Login(rec, httptest.NewRequest("POST", "/auth/login", strings.NewReader(`{"password":"wrong"}`)))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("wrong password: status = %d, want 401", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.Login(rec, httptest.NewRequest("POST", "/auth/login", strings.NewReader(`{"password":"1234"}`)))
	if rec.Code != http.StatusOK {
		t.Fatalf("correct password: status = %d, want 200", rec.Code)
	}

	var sessionCookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == security.ParentSessionCookie {
			sessionCookie = c
		}
	}
	if sessionCookie == nil || sessionCookie.Value == "" {
		t.Fatal("login must set the parent session cookie")
	}
	if !sessionCookie.HttpOnly {
		t.Error("parent session cookie must be HttpOnly")
	}

	// the issued cookie must pass the gate
	mw := NewMiddleware(authService)
	gated := mw.RequireParent(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	req := httptest.NewRequest("GET", "/worksheets", nil)
	req.AddCookie(sessionCookie)
	rec = httptest.NewRecorder()
	gated(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Errorf("gated request with valid cookie: status = %d, want 204", rec.Code)
	}
}

func TestRequireParentRejectsMissingOrBadCookie(t *testing.T) {
	authService, err := service.NewAuthService("1234", []byte("test-secret"), time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	mw := NewMiddleware(authService)
	gated := mw.RequireParent(func(w http.ResponseWriter, r *http.Request) {
		t.Error("gate must not pass the request through")
	})

	rec := httptest.NewRecorder()
	gated(rec, httptest.NewRequest("GET", "/worksheets", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("no cookie: status = %d, want 401", rec.Code)
	}

	req := httptest.NewRequest("GET", "/worksheets", nil)
	req.AddCookie(&http.Cookie{Name: security.ParentSessionCookie, Value: "forged"})
	rec = httptest.NewRecorder()
	gated(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("forged cookie: status = %d, want 401", rec.Code)
	}
}

func TestPrizeEndpoints(t *testing.T) {
	household := newTestHousehold(t)
	rewards := service.NewRewardsService(household)
	handler := NewPrizeHandler(rewards, household)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /prizes", handler.List)
	mux.HandleFunc("POST /prizes", handler.Create)
	mux.HandleFunc("POST /prizes/{id}/purchase", handler.Purchase)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("POST", "/prizes", strings.NewReader(`{"name":"Cinema","cost":10,"image":""}`)))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: status = %d, want 201", rec.Code)
	}
	var prize models.Prize
	decodeBody(t, rec, &prize)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/prizes", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("list: status = %d, want 200", rec.Code)
	}
	var prizes []models.Prize
	decodeBody(t, rec, &prizes)
	if len(prizes) != 1 || prizes[0].Name != "Cinema" {
		t.Errorf("list = %v, want the created prize", prizes)
	}

	// no credits yet
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("POST", "/prizes/"+prize.ID+"/purchase", nil))
	if rec.Code != http.StatusConflict {
		t.Errorf("unaffordable purchase: status = %d, want 409", rec.Code)
	}

	record := models.CompletionRecord{CorrectCount: 4, TotalCredits: 10, ItemCount: 4}
	if err := rewards.ApplyCompletion(record, models.SubjectMath, ""); err != nil {
		t.Fatal(err)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("POST", "/prizes/"+prize.ID+"/purchase", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("purchase: status = %d, want 200", rec.Code)
	}
	var won models.WonPrize
	decodeBody(t, rec, &won)
	if !won.Unlocked || won.Name != "Cinema" {
		t.Errorf("won = %+v, want unlocked Cinema", won)
	}
}

func TestPrizeCreateValidation(t *testing.T) {
	household := newTestHousehold(t)
	handler := NewPrizeHandler(service.NewRewardsService(household), household)

	tests := []struct {
		name string
		body string
	}{
		{"missing name", `{"cost":5}`},
		{"negative cost", `{"name":"Bike","cost":-1}`},
		{"unknown field", `{"name":"Bike","cost":5,"surprise":true}`},
		{"not json", `name=Bike`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handler.Create(rec, httptest.NewRequest("POST", "/prizes", strings.NewReader(tt.body)))
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestWorksheetListFilterValidation(t *testing.T) {
	household := newTestHousehold(t)
	worksheets := service.NewWorksheetService(household, nil)
	handler := NewWorksheetHandler(worksheets)

	rec := httptest.NewRecorder()
	handler.List(rec, httptest.NewRequest("GET", "/worksheets?subject=alchemy", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unknown subject filter: status = %d, want 400", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.List(rec, httptest.NewRequest("GET", "/worksheets?subject=math", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("valid subject filter: status = %d, want 200", rec.Code)
	}
}

func TestRateLimitReturns429(t *testing.T) {
	authService, err := service.NewAuthService("1234", []byte("test-secret"), time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	mw := NewMiddleware(authService)
	limited := mw.RateLimit(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	var last int
	for i := 0; i < 11; i++ {
		req := httptest.NewRequest("POST", "/auth/login", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		limited(rec, req)
		last = rec.Code
	}
	if last != http.StatusTooManyRequests {
		t.Errorf("attempt 11: status = %d, want 429", last)
	}
}

package routes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"document-tracker-api/catalog"
	"document-tracker-api/controllers"
	"document-tracker-api/middleware"
	"document-tracker-api/models"
	"document-tracker-api/services"
	"document-tracker-api/utils"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testSecret = []byte("test-secret")

type apiFixture struct {
	router *gin.Engine
	db     *gorm.DB
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	if err := db.AutoMigrate(
		&models.User{},
		&models.TrackedDocument{},
		&models.RouteLog{},
		&models.Remark{},
		&models.RoutingSequence{},
	); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	cat := catalog.Default()
	remarks := services.NewRemarkService(db)
	h := &controllers.Handlers{
		DB:        db,
		Tracker:   services.NewTrackerService(db, services.WithCatalog(cat), services.WithLogger(zap.NewNop())),
		Remarks:   remarks,
		Scope:     services.NewScopeResolver(db, cat, nil),
		Query:     services.NewDocumentQuery(db),
		Catalog:   cat,
		Logger:    zap.NewNop(),
		JWTSecret: testSecret,
	}

	router := gin.New()
	SetupRoutes(router, h)
	return &apiFixture{router: router, db: db}
}

func signToken(t *testing.T, userID int, name, department string) string {
	t.Helper()
	claims := middleware.Claims{
		UserID:     userID,
		Name:       name,
		Department: department,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSecret)
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return signed
}

func (f *apiFixture) do(t *testing.T, method, path, token string, body interface{}) (int, map[string]interface{}) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	var payload map[string]interface{}
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
			t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
		}
	}
	return rec.Code, payload
}

func documentBody() map[string]interface{} {
	return map[string]interface{}{
		"type":          "Letters",
		"status":        "Open",
		"location":      "Records Section",
		"requester":     "Juan Dela Cruz",
		"agency":        "DILG",
		"amount":        "1,500.00",
		"particulars":   "Request for assistance",
		"date_received": "2026-03-01",
	}
}

func TestDocumentLifecycleOverHTTP(t *testing.T) {
	f := newAPIFixture(t)
	admin := signToken(t, 1, "Records Clerk", "Administration")
	finance := signToken(t, 2, "Budget Officer", "Finance")
	hr := signToken(t, 3, "HR Clerk", "HR")

	code, payload := f.do(t, http.MethodPost, "/api/v1/documents", admin, documentBody())
	if code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %v", code, payload)
	}
	data := payload["data"].(map[string]interface{})
	doc := data["document"].(map[string]interface{})
	if doc["routing_slip_no"] != "LTR-1" {
		t.Fatalf("expected LTR-1, got %v", doc["routing_slip_no"])
	}
	id := doc["id"].(string)
	docPath := "/api/v1/documents/" + id

	if code, _ := f.do(t, http.MethodGet, docPath, finance, nil); code != http.StatusNotFound {
		t.Fatalf("expected Finance to be denied before routing, got %d", code)
	}

	code, payload = f.do(t, http.MethodPatch, docPath+"/location", admin, map[string]string{"location": "Budget Office"})
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %v", code, payload)
	}

	code, payload = f.do(t, http.MethodGet, docPath, finance, nil)
	if code != http.StatusOK {
		t.Fatalf("expected Finance to see the routed document, got %d", code)
	}
	if payload["status_color"] != "blue" {
		t.Fatalf("expected status color, got %v", payload["status_color"])
	}

	code, payload = f.do(t, http.MethodGet, "/api/v1/documents", finance, nil)
	if code != http.StatusOK || payload["total"].(float64) != 1 {
		t.Fatalf("expected one listed document for Finance, got %d %v", code, payload)
	}
	code, payload = f.do(t, http.MethodGet, "/api/v1/documents", hr, nil)
	if code != http.StatusOK || payload["total"].(float64) != 0 {
		t.Fatalf("expected empty listing for HR, got %d %v", code, payload)
	}

	code, payload = f.do(t, http.MethodGet, docPath+"/route-logs", finance, nil)
	if code != http.StatusOK || payload["total"].(float64) != 2 {
		t.Fatalf("expected two route log entries, got %d %v", code, payload)
	}
	entries := payload["data"].([]interface{})
	if entries[1].(map[string]interface{})["title"] != "Budget Office" {
		t.Fatalf("unexpected route log %v", entries)
	}

	code, payload = f.do(t, http.MethodPost, docPath+"/remarks", finance, map[string]string{"body": "for obligation"})
	if code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %v", code, payload)
	}
	remarkID := payload["data"].(map[string]interface{})["id"].(float64)
	remarkPath := "/api/v1/remarks/" + jsonNumber(remarkID)

	if code, _ := f.do(t, http.MethodDelete, remarkPath, admin, nil); code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-author delete, got %d", code)
	}
	if code, _ := f.do(t, http.MethodPut, remarkPath, finance, map[string]string{"body": "obligated"}); code != http.StatusOK {
		t.Fatalf("expected author edit to succeed, got %d", code)
	}

	code, payload = f.do(t, http.MethodGet, docPath, admin, nil)
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	recent := payload["data"].(map[string]interface{})["recent_remarks"].(map[string]interface{})
	if recent["body"] != "obligated" {
		t.Fatalf("expected recent remark to follow the edit, got %v", recent)
	}

	if code, _ := f.do(t, http.MethodPost, docPath+"/archive", admin, nil); code != http.StatusOK {
		t.Fatalf("expected archive to succeed, got %d", code)
	}
	code, payload = f.do(t, http.MethodGet, "/api/v1/documents", admin, nil)
	if code != http.StatusOK || payload["total"].(float64) != 0 {
		t.Fatalf("expected archived document to be hidden, got %v", payload)
	}
	code, payload = f.do(t, http.MethodGet, "/api/v1/documents?archived=true", admin, nil)
	if code != http.StatusOK || payload["total"].(float64) != 1 {
		t.Fatalf("expected archived listing to include the document, got %v", payload)
	}
}

func TestCreateDocumentValidationError(t *testing.T) {
	f := newAPIFixture(t)
	admin := signToken(t, 1, "Records Clerk", "Administration")

	body := documentBody()
	delete(body, "agency")
	code, payload := f.do(t, http.MethodPost, "/api/v1/documents", admin, body)
	if code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", code)
	}
	if payload["field"] != "agency" {
		t.Fatalf("expected agency field error, got %v", payload)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	f := newAPIFixture(t)
	if code, _ := f.do(t, http.MethodGet, "/api/v1/documents", "", nil); code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", code)
	}
	if code, _ := f.do(t, http.MethodGet, "/api/v1/health", "", nil); code != http.StatusOK {
		t.Fatalf("expected health to be public, got %d", code)
	}
}

func TestPresignWithoutStorageIsUnavailable(t *testing.T) {
	f := newAPIFixture(t)
	admin := signToken(t, 1, "Records Clerk", "Administration")
	code, _ := f.do(t, http.MethodPost, "/api/v1/documents/any/attachments/presign", admin, map[string]string{"file_name": "a.pdf"})
	if code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", code)
	}
}

func TestLoginIssuesDepartmentToken(t *testing.T) {
	f := newAPIFixture(t)
	hash, err := utils.HashPassword("Secret123")
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}
	user := models.User{UserID: 7, Email: "clerk@example.gov", UserFname: "Ana", UserLname: "Reyes", Department: "Finance", PasswordHash: hash}
	if err := f.db.Create(&user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	code, _ := f.do(t, http.MethodPost, "/api/v1/login", "", map[string]string{"email": "clerk@example.gov", "password": "wrong"})
	if code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for wrong password, got %d", code)
	}

	code, payload := f.do(t, http.MethodPost, "/api/v1/login", "", map[string]string{"email": "clerk@example.gov", "password": "Secret123"})
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %v", code, payload)
	}
	claims, err := middleware.ParseToken(payload["token"].(string), testSecret)
	if err != nil {
		t.Fatalf("issued token does not parse: %v", err)
	}
	if claims.UserID != 7 || claims.Department != "Finance" || claims.Name != "Ana Reyes" {
		t.Fatalf("unexpected claims %+v", claims)
	}

	code, payload = f.do(t, http.MethodGet, "/api/v1/scope", payload["token"].(string), nil)
	if code != http.StatusOK || payload["department"] != "Finance" {
		t.Fatalf("expected scope for Finance, got %d %v", code, payload)
	}
}

func jsonNumber(v float64) string {
	raw, _ := json.Marshal(int64(v))
	return string(raw)
}

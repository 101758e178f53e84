package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/brightpath/assessment-engine/internal/platform/logger"
	"github.com/brightpath/assessment-engine/internal/requestdata"
	"github.com/brightpath/assessment-engine/internal/services"
)

const testSecret = "test-secret"

func signToken(t *testing.T, beneficiaryID, tenantID uuid.UUID, secret string) string {
	t.Helper()

	claims := services.IdentityClaims{
		TenantID: tenantID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   beneficiaryID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func authRouter(t *testing.T) (*gin.Engine, *requestdata.RequestData) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	t.Cleanup(log.Sync)

	identity := services.NewIdentityService(log, testSecret)
	am := NewAuthMiddleware(log, identity)

	captured := &requestdata.RequestData{}
	r := gin.New()
	r.GET("/api/ping", am.RequireAuth(), func(c *gin.Context) {
		if rd := requestdata.GetRequestData(c.Request.Context()); rd != nil {
			*captured = *rd
		}
		c.Status(http.StatusOK)
	})
	return r, captured
}

func TestRequireAuthAcceptsBearerToken(t *testing.T) {
	t.Parallel()

	r, captured := authRouter(t)
	beneficiaryID := uuid.New()
	tenantID := uuid.New()

	req := httptest.NewRequest(http.MethodGet, "/api/ping", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, beneficiaryID, tenantID, testSecret))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: got=%d want=%d body=%s", rec.Code, http.StatusOK, rec.Body.String())
	}
	if captured.BeneficiaryID != beneficiaryID || captured.TenantID != tenantID {
		t.Fatalf("request data not propagated: got=%+v", captured)
	}
}

func TestRequireAuthAcceptsQueryToken(t *testing.T) {
	t.Parallel()

	r, captured := authRouter(t)
	beneficiaryID := uuid.New()
	tenantID := uuid.New()

	token := signToken(t, beneficiaryID, tenantID, testSecret)
	req := httptest.NewRequest(http.MethodGet, "/api/ping?token="+token, nil)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: got=%d want=%d", rec.Code, http.StatusOK)
	}
	if captured.BeneficiaryID != beneficiaryID {
		t.Fatalf("beneficiary not propagated from query token: got=%+v", captured)
	}
}

func TestRequireAuthRejectsMissingToken(t *testing.T) {
	t.Parallel()

	r, _ := authRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/api/ping", nil)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected status: got=%d want=%d", rec.Code, http.StatusUnauthorized)
	}
}

func TestRequireAuthRejectsBadSignature(t *testing.T) {
	t.Parallel()

	r, _ := authRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/api/ping", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, uuid.New(), uuid.New(), "wrong-secret"))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected status: got=%d want=%d", rec.Code, http.StatusUnauthorized)
	}
}

func TestRequireAuthRejectsExpiredToken(t *testing.T) {
	t.Parallel()

	r, _ := authRouter(t)

	claims := services.IdentityClaims{
		TenantID: uuid.New().String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uuid.New().String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/ping", nil)
	req.Header.Set("Authorization", "Bearer "+signed)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected status: got=%d want=%d", rec.Code, http.StatusUnauthorized)
	}
}

package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	errs "github.com/amirhossein-jamali/topup-ledger/internal/domain/error"
	"github.com/amirhossein-jamali/topup-ledger/internal/infrastructure/adapter/api/dto"
	mockcore "github.com/amirhossein-jamali/topup-ledger/mocks/port/core"
)

var testSecret = []byte("test-secret")

func init() {
	gin.SetMode(gin.TestMode)
}

func signToken(t *testing.T, secret []byte, claims jwt.RegisteredClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	require.NoError(t, err)
	return token
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) dto.ErrorResponse {
	t.Helper()
	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestJWTAuth(t *testing.T) {
	valid := signToken(t, testSecret, jwt.RegisteredClaims{
		Subject:   "user-1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	expired := signToken(t, testSecret, jwt.RegisteredClaims{
		Subject:   "user-1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
	})
	noExpiry := signToken(t, testSecret, jwt.RegisteredClaims{Subject: "user-1"})
	noSubject := signToken(t, testSecret, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	wrongKey := signToken(t, []byte("other"), jwt.RegisteredClaims{
		Subject:   "user-1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})

	tests := []struct {
		name        string
		header      string
		wantStatus  int
		wantUser    string
		wantMessage string
	}{
		{name: "valid token", header: "Bearer " + valid, wantStatus: http.StatusOK, wantUser: "user-1"},
		{name: "missing header", header: "", wantStatus: http.StatusUnauthorized, wantMessage: "missing authorization header"},
		{name: "not a bearer token", header: "Basic abc", wantStatus: http.StatusUnauthorized, wantMessage: "invalid authorization format"},
		{name: "expired token", header: "Bearer " + expired, wantStatus: http.StatusUnauthorized, wantMessage: "token expired"},
		{name: "token without expiry", header: "Bearer " + noExpiry, wantStatus: http.StatusUnauthorized, wantMessage: "invalid token"},
		{name: "token without subject", header: "Bearer " + noSubject, wantStatus: http.StatusUnauthorized, wantMessage: "token has no subject"},
		{name: "wrong signing key", header: "Bearer " + wrongKey, wantStatus: http.StatusUnauthorized, wantMessage: "invalid token"},
		{name: "garbage", header: "Bearer not.a.jwt", wantStatus: http.StatusUnauthorized, wantMessage: "invalid token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			logger := mockcore.NewMockLogger(t).AllowAll()
			router := gin.New()
			router.Use(JWTAuth(testSecret, logger))
			router.GET("/me", func(c *gin.Context) {
				userID, ok := UserIDFromContext(c)
				require.True(t, ok)
				c.String(http.StatusOK, userID)
			})

			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			// Act
			router.ServeHTTP(rec, req)

			// Assert
			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, tt.wantUser, rec.Body.String())
				return
			}
			resp := decodeError(t, rec)
			assert.Equal(t, errs.CodeUnauthorized, resp.Code)
			assert.Equal(t, tt.wantMessage, resp.Message)
		})
	}
}

func TestJWTAuth_RejectsOtherAlgorithms(t *testing.T) {
	// Arrange
	logger := mockcore.NewMockLogger(t).AllowAll()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.RegisteredClaims{
		Subject:   "user-1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString(testSecret)
	require.NoError(t, err)

	router := gin.New()
	router.Use(JWTAuth(testSecret, logger))
	router.GET("/me", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	// Act
	router.ServeHTTP(rec, req)

	// Assert
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUserIDFromContext_Unauthenticated(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	userID, ok := UserIDFromContext(c)

	assert.False(t, ok)
	assert.Empty(t, userID)
}

func TestAdminAPIKey(t *testing.T) {
	tests := []struct {
		name       string
		configured string
		provided   string
		wantStatus int
	}{
		{name: "matching key", configured: "secret", provided: "secret", wantStatus: http.StatusOK},
		{name: "wrong key", configured: "secret", provided: "guess", wantStatus: http.StatusUnauthorized},
		{name: "missing key", configured: "secret", provided: "", wantStatus: http.StatusUnauthorized},
		{name: "admin API disabled", configured: "", provided: "", wantStatus: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			logger := mockcore.NewMockLogger(t).AllowAll()
			router := gin.New()
			router.Use(AdminAPIKey(tt.configured, logger))
			router.POST("/admin", func(c *gin.Context) { c.Status(http.StatusOK) })

			req := httptest.NewRequest(http.MethodPost, "/admin", nil)
			if tt.provided != "" {
				req.Header.Set(AdminKeyHeader, tt.provided)
			}
			rec := httptest.NewRecorder()

			// Act
			router.ServeHTTP(rec, req)

			// Assert
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestErrorHandler_RecoversPanics(t *testing.T) {
	// Arrange
	logger := mockcore.NewMockLogger(t)
	logger.On("Error", "Panic recovered in API request", mock.MatchedBy(func(fields map[string]any) bool {
		return fields["panic"] == "boom" && fields["path"] == "/panic"
	})).Return().Once()

	router := gin.New()
	router.Use(ErrorHandler(logger))
	router.GET("/panic", func(*gin.Context) { panic("boom") })
	rec := httptest.NewRecorder()

	// Act
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/panic", nil))

	// Assert
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	resp := decodeError(t, rec)
	assert.Equal(t, errs.CodeInternalServer, resp.Code)
	assert.Equal(t, "Internal server error", resp.Message)
}

func TestLogger(t *testing.T) {
	t.Run("assigns a request id and logs success at info", func(t *testing.T) {
		// Arrange
		logger := mockcore.NewMockLogger(t)
		logger.On("Info", "Request processed", mock.MatchedBy(func(fields map[string]any) bool {
			return fields["status"] == http.StatusOK &&
				fields["route"] == "/ok" &&
				fields["status_text"] == "Success" &&
				fields["request_id"] != ""
		})).Return().Once()
		tp := mockcore.NewMockTimeProvider(t).Fixed(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))

		router := gin.New()
		router.Use(Logger(logger, tp))
		router.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
		rec := httptest.NewRecorder()

		// Act
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ok", nil))

		// Assert
		assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))
	})

	t.Run("keeps the caller's request id and logs client errors at warn", func(t *testing.T) {
		// Arrange
		logger := mockcore.NewMockLogger(t)
		logger.On("Warn", "Request processed", mock.MatchedBy(func(fields map[string]any) bool {
			return fields["request_id"] == "req-42" && fields["status_text"] == "Client Error"
		})).Return().Once()
		tp := mockcore.NewMockTimeProvider(t).Fixed(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))

		router := gin.New()
		router.Use(Logger(logger, tp))
		router.GET("/bad", func(c *gin.Context) { c.Status(http.StatusBadRequest) })

		req := httptest.NewRequest(http.MethodGet, "/bad", nil)
		req.Header.Set(RequestIDHeader, "req-42")
		rec := httptest.NewRecorder()

		// Act
		router.ServeHTTP(rec, req)

		// Assert
		assert.Equal(t, "req-42", rec.Header().Get(RequestIDHeader))
	})

	t.Run("logs server errors at error", func(t *testing.T) {
		logger := mockcore.NewMockLogger(t)
		logger.On("Error", "Request processed", mock.Anything).Return().Once()
		tp := mockcore.NewMockTimeProvider(t).Fixed(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))

		router := gin.New()
		router.Use(Logger(logger, tp))
		router.GET("/fail", func(c *gin.Context) { c.Status(http.StatusServiceUnavailable) })

		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/fail", nil))
	})
}

func TestStatusText(t *testing.T) {
	assert.Equal(t, "Informational", statusText(101))
	assert.Equal(t, "Success", statusText(201))
	assert.Equal(t, "Redirect", statusText(302))
	assert.Equal(t, "Client Error", statusText(404))
	assert.Equal(t, "Server Error", statusText(502))
}

func TestCORS(t *testing.T) {
	t.Run("allowed origin gets headers", func(t *testing.T) {
		router := gin.New()
		router.Use(CORS([]string{"https://shop.example.com"}))
		router.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Header.Set("Origin", "https://shop.example.com")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "https://shop.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "Origin", rec.Header().Get("Vary"))
	})

	t.Run("unknown origin gets no headers", func(t *testing.T) {
		router := gin.New()
		router.Use(CORS([]string{"https://shop.example.com"}))
		router.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Header.Set("Origin", "https://evil.example.com")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight is answered without reaching the route", func(t *testing.T) {
		router := gin.New()
		router.Use(CORS(nil))
		router.POST("/x", func(c *gin.Context) { c.Status(http.StatusCreated) })

		req := httptest.NewRequest(http.MethodOptions, "/x", nil)
		req.Header.Set("Origin", "https://any.example.com")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "POST")
	})
}

type recordedRequest struct {
	method, path, status string
}

type fakeHTTPMetrics struct {
	mu       sync.Mutex
	inFlight int
	peak     int
	requests []recordedRequest
}

func (f *fakeHTTPMetrics) RecordHTTPRequest(method, path, statusCode string, _ time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, recordedRequest{method, path, statusCode})
}

func (f *fakeHTTPMetrics) HTTPRequestStarted() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inFlight++
	f.peak = max(f.peak, f.inFlight)
}

func (f *fakeHTTPMetrics) HTTPRequestFinished() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inFlight--
}

func TestMetrics(t *testing.T) {
	// Arrange
	recorder := &fakeHTTPMetrics{}
	router := gin.New()
	router.Use(Metrics(recorder))
	router.GET("/v1/purchases/:transactionId", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	// Act
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/purchases/123", nil))
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	// Assert
	require.Len(t, recorder.requests, 2)
	assert.Equal(t, recordedRequest{"GET", "/v1/purchases/:transactionId", "404"}, recorder.requests[0])
	assert.Equal(t, recordedRequest{"GET", unmatchedRoute, "404"}, recorder.requests[1])
	assert.Equal(t, 0, recorder.inFlight)
	assert.Equal(t, 1, recorder.peak)
}

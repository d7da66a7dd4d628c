package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
	"github.com/BruksfildServices01/salon-scheduler/internal/idempotency"
)

const testSecret = "test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

func authRouter() *gin.Engine {
	r := gin.New()
	r.GET("/me", AuthMiddleware(testSecret), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"provider": c.MustGet(ContextProviderID).(uint),
			"salon":    c.MustGet(ContextSalonID).(uint),
		})
	})
	return r
}

func get(r http.Handler, path, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuth_ValidToken(t *testing.T) {
	token, err := SignToken(testSecret, 3, 1, time.Hour)
	require.NoError(t, err)

	w := get(authRouter(), "/me", "Bearer "+token)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"provider":3,"salon":1}`, w.Body.String())
}

func TestAuth_Rejections(t *testing.T) {
	wrongSecret, err := SignToken("other", 3, 1, time.Hour)
	require.NoError(t, err)
	expired, err := SignToken(testSecret, 3, 1, -time.Minute)
	require.NoError(t, err)

	cases := map[string]string{
		"":                      "missing_authorization_header",
		"Basic abc":             "invalid_authorization_header",
		"Bearer garbage":        "invalid_token",
		"Bearer " + wrongSecret: "invalid_token",
		"Bearer " + expired:     "invalid_token",
	}
	for header, code := range cases {
		w := get(authRouter(), "/me", header)
		assert.Equal(t, http.StatusUnauthorized, w.Code, header)
		assert.Contains(t, w.Body.String(), code, header)
	}
}

func TestAuth_RequiresProviderRole(t *testing.T) {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":     3,
		"salonId": 1,
		"role":    "customer",
		"exp":     time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	w := get(authRouter(), "/me", "Bearer "+token)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRateLimit_PerClient(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{Rate: rate.Every(time.Hour), Burst: 2})
	r := gin.New()
	r.GET("/x", rl.RateLimit(), func(c *gin.Context) { c.Status(http.StatusOK) })

	call := func(ip string) int {
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.RemoteAddr = ip + ":1234"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, call("10.0.0.1"))
	assert.Equal(t, http.StatusOK, call("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, call("10.0.0.1"))
	assert.Equal(t, http.StatusOK, call("10.0.0.2"))
}

func TestRequestID_EchoesOrAssigns(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), RequestLogger(zerolog.Nop()))
	r.GET("/x", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(ContextRequestID)) })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(HeaderXRequestID, "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Body.String())
	assert.Equal(t, "abc-123", w.Header().Get(HeaderXRequestID))

	w = get(r, "/x", "")
	assert.Len(t, w.Body.String(), 36)
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(Recovery(zerolog.Nop()))
	r.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := get(r, "/boom", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "internal_error")
}

// ======================================================
// Idempotency
// ======================================================

func idempotentRouter(store idempotency.Store, status *int32, calls *int32) *gin.Engine {
	r := gin.New()
	r.POST("/book", Idempotency(store, zerolog.Nop()), func(c *gin.Context) {
		n := atomic.AddInt32(calls, 1)
		c.JSON(int(atomic.LoadInt32(status)), gin.H{"call": n})
	})
	return r
}

func post(r http.Handler, key, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/book", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if key != "" {
		req.Header.Set(HeaderIdempotencyKey, key)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestIdempotency_ReplaysCompletedResponse(t *testing.T) {
	status, calls := int32(http.StatusCreated), int32(0)
	r := idempotentRouter(idempotency.NewMemoryStore(time.Hour), &status, &calls)

	first := post(r, "k1", `{"a":1}`)
	second := post(r, "k1", `{"a":1}`)

	assert.Equal(t, http.StatusCreated, first.Code)
	assert.Equal(t, http.StatusCreated, second.Code)
	assert.JSONEq(t, first.Body.String(), second.Body.String())
	assert.Equal(t, "true", second.Header().Get(HeaderIdempotentReplay))
	assert.EqualValues(t, 1, calls)

	// no key, no dedupe
	post(r, "", `{"a":1}`)
	assert.EqualValues(t, 2, calls)
}

func TestIdempotency_KeyReusedWithOtherBody(t *testing.T) {
	status, calls := int32(http.StatusCreated), int32(0)
	r := idempotentRouter(idempotency.NewMemoryStore(time.Hour), &status, &calls)

	post(r, "k1", `{"a":1}`)
	w := post(r, "k1", `{"a":2}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "idempotency_key_mismatch")
	assert.EqualValues(t, 1, calls)
}

func TestIdempotency_InProgress(t *testing.T) {
	store := idempotency.NewMemoryStore(time.Hour)
	status, calls := int32(http.StatusCreated), int32(0)
	r := idempotentRouter(store, &status, &calls)

	_, reserved, err := store.Reserve(t.Context(), "POST /book k1", fingerprint([]byte(`{"a":1}`)))
	require.NoError(t, err)
	require.True(t, reserved)

	w := post(r, "k1", `{"a":1}`)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "request_in_progress")
	assert.EqualValues(t, 0, calls)
}

func TestIdempotency_ServerErrorReleasesKey(t *testing.T) {
	status, calls := int32(http.StatusInternalServerError), int32(0)
	r := idempotentRouter(idempotency.NewMemoryStore(time.Hour), &status, &calls)

	assert.Equal(t, http.StatusInternalServerError, post(r, "k1", `{}`).Code)

	atomic.StoreInt32(&status, http.StatusCreated)
	assert.Equal(t, http.StatusCreated, post(r, "k1", `{}`).Code)
	assert.EqualValues(t, 2, calls)
}

func TestIdempotency_ConflictIsReplayed(t *testing.T) {
	status, calls := int32(http.StatusConflict), int32(0)
	r := idempotentRouter(idempotency.NewMemoryStore(time.Hour), &status, &calls)

	post(r, "k1", `{}`)
	atomic.StoreInt32(&status, http.StatusCreated)
	w := post(r, "k1", `{}`)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.EqualValues(t, 1, calls)
}

func TestIdempotency_RetryableConflictReleasesKey(t *testing.T) {
	var calls int32
	r := gin.New()
	r.POST("/book", Idempotency(idempotency.NewMemoryStore(time.Hour), zerolog.Nop()), func(c *gin.Context) {
		if atomic.AddInt32(&calls, 1) == 1 {
			httperr.Respond(c, httperr.RetryableConflict("commit_timeout"))
			return
		}
		c.JSON(http.StatusCreated, gin.H{"id": 1})
	})

	first := post(r, "k1", `{}`)
	assert.Equal(t, http.StatusConflict, first.Code)
	assert.Contains(t, first.Body.String(), "commit_timeout")

	retry := post(r, "k1", `{}`)
	assert.Equal(t, http.StatusCreated, retry.Code)
	assert.Empty(t, retry.Header().Get(HeaderIdempotentReplay))

	replay := post(r, "k1", `{}`)
	assert.Equal(t, http.StatusCreated, replay.Code)
	assert.Equal(t, "true", replay.Header().Get(HeaderIdempotentReplay))
	assert.EqualValues(t, 2, calls)
}

func TestIdempotency_PanicReleasesKey(t *testing.T) {
	var calls int32
	r := gin.New()
	r.Use(Recovery(zerolog.Nop()))
	r.POST("/book", Idempotency(idempotency.NewMemoryStore(time.Hour), zerolog.Nop()), func(c *gin.Context) {
		if atomic.AddInt32(&calls, 1) == 1 {
			panic("boom")
		}
		c.JSON(http.StatusCreated, gin.H{"id": 1})
	})

	assert.Equal(t, http.StatusInternalServerError, post(r, "k1", `{}`).Code)
	assert.Equal(t, http.StatusCreated, post(r, "k1", `{}`).Code)
	assert.EqualValues(t, 2, calls)
}

// contextStore fails like a network store once the caller's context is gone.
type contextStore struct {
	*idempotency.MemoryStore
}

func (s contextStore) Complete(ctx context.Context, key string, rec idempotency.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.MemoryStore.Complete(ctx, key, rec)
}

func (s contextStore) Release(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.MemoryStore.Release(ctx, key)
}

func TestIdempotency_FinalizesAfterClientHangsUp(t *testing.T) {
	status, calls := int32(http.StatusCreated), int32(0)
	var hangUp context.CancelFunc
	r := gin.New()
	r.POST("/book", Idempotency(contextStore{idempotency.NewMemoryStore(time.Hour)}, zerolog.Nop()), func(c *gin.Context) {
		atomic.AddInt32(&calls, 1)
		c.JSON(int(atomic.LoadInt32(&status)), gin.H{"id": 1})
		hangUp()
	})

	send := func(key string) *httptest.ResponseRecorder {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		hangUp = cancel
		req := httptest.NewRequest(http.MethodPost, "/book", strings.NewReader(`{}`)).WithContext(ctx)
		req.Header.Set(HeaderIdempotencyKey, key)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	// the outcome is stored even though the caller is gone
	send("k1")
	replay := send("k1")
	assert.Equal(t, "true", replay.Header().Get(HeaderIdempotentReplay))
	assert.EqualValues(t, 1, calls)

	// and a failure still frees the key
	atomic.StoreInt32(&status, http.StatusInternalServerError)
	send("k2")
	atomic.StoreInt32(&status, http.StatusCreated)
	w := send("k2")
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Empty(t, w.Header().Get(HeaderIdempotentReplay))
	assert.EqualValues(t, 3, calls)
}

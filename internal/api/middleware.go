package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type contextKey int

const requestIDCtxKey contextKey = iota

// requestIDFromContext returns the id assigned by requestLogging, or "".
func requestIDFromContext(ctx context.Context) string {
	v, _ := ctx.Value(requestIDCtxKey).(string)
	return v
}

// --- Admin token cache (stale-while-revalidate) ---

type cacheEntry struct {
	expiresAt  time.Time
	refreshing atomic.Bool
}

// adminCache remembers tokens that passed the bcrypt check so that the
// analytics endpoints do not pay for a hash comparison on every call.
type adminCache struct {
	store sync.Map // map[string]*cacheEntry keyed by the presented token
	ttl   time.Duration
}

func newAdminCache(ttl time.Duration) *adminCache {
	return &adminCache{ttl: ttl}
}

func (c *adminCache) get(token string) (hit bool, needsRefresh bool) {
	v, ok := c.store.Load(token)
	if !ok {
		return false, false
	}
	entry := v.(*cacheEntry)
	if time.Now().Before(entry.expiresAt) {
		return true, false
	}
	// Stale: still accepted, one goroutine re-verifies.
	return true, entry.refreshing.CompareAndSwap(false, true)
}

func (c *adminCache) set(token string) {
	c.store.Store(token, &cacheEntry{expiresAt: time.Now().Add(c.ttl)})
}

func (c *adminCache) evict(token string) {
	c.store.Delete(token)
}

// --- Admin middleware ---

// adminMiddleware guards next with "Authorization: Bearer <admin token>"
// checked against the configured bcrypt hash.
func (d *Dependencies) adminMiddleware(next http.HandlerFunc) http.HandlerFunc {
	cache := newAdminCache(d.CacheTTL)

	return func(w http.ResponseWriter, r *http.Request) {
		token, ok := extractBearerToken(r)
		if !ok || token == "" {
			writeJSON(w, http.StatusUnauthorized, ErrorResp{Error: "Missing or invalid Authorization header"})
			return
		}

		hit, needsRefresh := cache.get(token)
		if hit {
			if needsRefresh {
				go d.refreshAdmin(cache, token)
			}
			next(w, r)
			return
		}

		if err := d.verifyAdminToken(token); err != nil {
			d.Logger.Warn("admin auth failed",
				zap.String("request_id", requestIDFromContext(r.Context())),
				zap.Error(err))
			writeJSON(w, http.StatusUnauthorized, ErrorResp{Error: "Invalid admin token"})
			return
		}
		cache.set(token)
		next(w, r)
	}
}

func (d *Dependencies) verifyAdminToken(token string) error {
	return bcrypt.CompareHashAndPassword([]byte(d.AdminTokenHash), []byte(token))
}

// refreshAdmin re-checks a stale token; a token that no longer matches is
// dropped so the next request is verified synchronously.
func (d *Dependencies) refreshAdmin(cache *adminCache, token string) {
	if err := d.verifyAdminToken(token); err != nil {
		d.Logger.Warn("background admin token refresh failed", zap.Error(err))
		cache.evict(token)
		return
	}
	cache.set(token)
}

// extractBearerToken extracts the token from "Authorization: Bearer <token>".
func extractBearerToken(r *http.Request) (string, bool) {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return "", false
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(auth, prefix) {
		return "", false
	}
	return strings.TrimSpace(auth[len(prefix):]), true
}

// --- JSON helpers ---

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

// --- Request logging ---

func requestLogging(next http.Handler, logger *zap.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)

		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r.WithContext(context.WithValue(r.Context(), requestIDCtxKey, id)))
		logger.Info("http request",
			zap.String("request_id", id),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", sw.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// --- CORS ---

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Request-ID")
		w.Header().Set("Access-Control-Expose-Headers", "X-Request-ID")
		w.Header().Set("Access-Control-Max-Age", "86400")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

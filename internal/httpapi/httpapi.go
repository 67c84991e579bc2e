package httpapi

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/netip"
	"strings"
	"sync"
	"time"

	"sucursalpos/internal/domain"
	"sucursalpos/internal/sale"
	"sucursalpos/internal/service"
	"sucursalpos/internal/store"
)

type API struct {
	service       *service.Service
	auth          *AuthManager
	allowedOrigin string
	loginLimiter  *attemptLimiter
	csrfSecret    []byte
}

func New(svc *service.Service, auth *AuthManager, allowedOrigin string) *API {
	csrfSecret := make([]byte, 32)
	if _, err := rand.Read(csrfSecret); err != nil {
		log.Printf("[httpapi] WARN: crypto/rand failed, CSRF tokens use a fixed secret: %v", err)
		csrfSecret = []byte("csrf-fallback-secret-change-me!!")
	}
	return &API{
		service:       svc,
		auth:          auth,
		allowedOrigin: allowedOrigin,
		loginLimiter:  newAttemptLimiter(5, time.Minute),
		csrfSecret:    csrfSecret,
	}
}

func (a *API) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", a.handleHealth)
	mux.HandleFunc("/api/v1/auth/login", a.handleLogin)
	mux.HandleFunc("/api/v1/auth/csrf-token", a.handleCSRFToken)
	mux.HandleFunc("/api/v1/auth/logout", a.requireAuth(a.handleLogout))
	mux.HandleFunc("/api/v1/auth/me", a.requireAuth(a.handleMe))

	mux.HandleFunc("/api/v1/branches", a.requireAuth(a.handleBranches, domain.RoleAdmin))
	mux.HandleFunc("/api/v1/branches/", a.requireAuth(a.handleBranchActions, domain.RoleAdmin))
	mux.HandleFunc("/api/v1/categories", a.requireAuth(a.handleCategories, domain.RoleAdmin))
	mux.HandleFunc("/api/v1/categories/", a.requireAuth(a.handleCategoryActions, domain.RoleAdmin))
	mux.HandleFunc("/api/v1/subcategories", a.requireAuth(a.handleSubcategories, domain.RoleAdmin))
	mux.HandleFunc("/api/v1/subcategories/", a.requireAuth(a.handleSubcategoryActions, domain.RoleAdmin))
	mux.HandleFunc("/api/v1/brands", a.requireAuth(a.handleBrands, domain.RoleAdmin))
	mux.HandleFunc("/api/v1/brands/", a.requireAuth(a.handleBrandActions, domain.RoleAdmin))
	mux.HandleFunc("/api/v1/master-products", a.requireAuth(a.handleMasterProducts, domain.RoleAdmin))
	mux.HandleFunc("/api/v1/master-products/", a.requireAuth(a.handleMasterProductActions, domain.RoleAdmin))

	mux.HandleFunc("/api/v1/inventory", a.requireAuth(a.handleInventory, domain.RoleAdmin, domain.RoleEmployee))
	mux.HandleFunc("/api/v1/inventory/", a.requireAuth(a.handleInventoryActions, domain.RoleAdmin))
	mux.HandleFunc("/api/v1/users", a.requireAuth(a.handleUsers, domain.RoleAdmin))
	mux.HandleFunc("/api/v1/users/", a.requireAuth(a.handleUserActions, domain.RoleAdmin))

	mux.HandleFunc("/api/v1/register", a.requireAuth(a.handleRegister, domain.RoleAdmin, domain.RoleEmployee))
	mux.HandleFunc("/api/v1/register/search", a.requireAuth(a.handleRegisterSearch, domain.RoleAdmin, domain.RoleEmployee))
	mux.HandleFunc("/api/v1/register/items", a.requireAuth(a.handleRegisterItems, domain.RoleAdmin, domain.RoleEmployee))
	mux.HandleFunc("/api/v1/register/manual-items", a.requireAuth(a.handleRegisterManualItems, domain.RoleAdmin, domain.RoleEmployee))
	mux.HandleFunc("/api/v1/register/checkout", a.requireAuth(a.handleCheckout, domain.RoleAdmin, domain.RoleEmployee))

	mux.HandleFunc("/api/v1/sales/today", a.requireAuth(a.handleTodaySummary, domain.RoleAdmin, domain.RoleEmployee))
	mux.HandleFunc("/api/v1/reports/dashboard", a.requireAuth(a.handleDashboard, domain.RoleAdmin))
	mux.HandleFunc("/api/v1/reports/performance", a.requireAuth(a.handlePerformance, domain.RoleAdmin))

	return a.withMiddleware(mux)
}

type sessionKey struct{}

func withSession(ctx context.Context, sess domain.Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, sess)
}

func sessionFrom(r *http.Request) domain.Session {
	sess, _ := r.Context().Value(sessionKey{}).(domain.Session)
	return sess
}

func bearerToken(r *http.Request) (string, bool) {
	authorization := strings.TrimSpace(r.Header.Get("Authorization"))
	if !strings.HasPrefix(strings.ToLower(authorization), "bearer ") {
		return "", false
	}
	return strings.TrimSpace(authorization[len("Bearer "):]), true
}

// requireAuth resolves the bearer token into a session. With no roles listed
// any authenticated caller passes.
func (a *API) requireAuth(next http.HandlerFunc, roles ...string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, errors.New("missing bearer token"))
			return
		}

		sess, err := a.auth.ParseToken(r.Context(), token)
		if err != nil {
			if errors.Is(err, ErrInvalidToken) {
				writeError(w, http.StatusUnauthorized, err)
				return
			}
			writeError(w, http.StatusServiceUnavailable, err)
			return
		}

		if len(roles) > 0 && !isRoleAllowed(sess.Role, roles) {
			writeError(w, http.StatusForbidden, errors.New("forbidden role"))
			return
		}

		next(w, r.WithContext(withSession(r.Context(), sess)))
	}
}

func isRoleAllowed(role string, allowed []string) bool {
	for _, allow := range allowed {
		if role == allow {
			return true
		}
	}
	return false
}

func (a *API) withMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Cross-Origin-Opener-Policy", "same-origin")
		w.Header().Set("Access-Control-Allow-Origin", a.allowedOrigin)
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-CSRF-Token")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PATCH,DELETE,OPTIONS")
		w.Header().Set("Vary", "Origin")

		if isMutating(r.Method) && strings.Contains(strings.ToLower(r.Header.Get("Content-Type")), "application/json") {
			r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		if !a.checkCSRF(w, r) {
			return
		}

		startedAt := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(startedAt))
	})
}

func isMutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

// csrfTokenForHour signs a Unix hour bucket with the per-process secret.
func (a *API) csrfTokenForHour(hourBucket int64) string {
	h := hmac.New(sha256.New, a.csrfSecret)
	fmt.Fprintf(h, "%d", hourBucket)
	return hex.EncodeToString(h.Sum(nil))
}

func (a *API) generateCSRFToken() string {
	return a.csrfTokenForHour(time.Now().UTC().Truncate(time.Hour).Unix())
}

// validateCSRFToken accepts the current and the previous hour bucket.
func (a *API) validateCSRFToken(token string) bool {
	if token == "" {
		return false
	}
	current := time.Now().UTC().Truncate(time.Hour).Unix()
	for _, bucket := range []int64{current, current - 3600} {
		if hmac.Equal([]byte(token), []byte(a.csrfTokenForHour(bucket))) {
			return true
		}
	}
	return false
}

// Login is called before the client has fetched a token.
var csrfExemptPaths = []string{
	"/api/v1/auth/login",
}

func (a *API) checkCSRF(w http.ResponseWriter, r *http.Request) bool {
	if !isMutating(r.Method) {
		return true
	}
	for _, exempt := range csrfExemptPaths {
		if r.URL.Path == exempt {
			return true
		}
	}
	token := strings.TrimSpace(r.Header.Get("X-CSRF-Token"))
	if !a.validateCSRFToken(token) {
		writeError(w, http.StatusForbidden, errors.New("missing or invalid CSRF token"))
		return false
	}
	return true
}

type attemptLimiter struct {
	mu      sync.Mutex
	max     int
	window  time.Duration
	entries map[string][]time.Time
}

func newAttemptLimiter(max int, window time.Duration) *attemptLimiter {
	if max < 1 {
		max = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &attemptLimiter{max: max, window: window, entries: make(map[string][]time.Time)}
}

// Allow records an attempt for key and reports whether it fits in the window.
func (l *attemptLimiter) Allow(key string) bool {
	if l == nil {
		return true
	}
	now := time.Now()
	cutoff := now.Add(-l.window)

	l.mu.Lock()
	defer l.mu.Unlock()

	history := l.entries[key]
	kept := history[:0]
	for _, ts := range history {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	if len(kept) >= l.max {
		l.entries[key] = kept
		return false
	}
	l.entries[key] = append(kept, now)
	return true
}

func clientKey(r *http.Request) string {
	host := strings.TrimSpace(r.RemoteAddr)
	if host == "" {
		return "unknown"
	}
	if addr, err := netip.ParseAddrPort(host); err == nil {
		return addr.Addr().String()
	}
	if idx := strings.LastIndex(host, ":"); idx > 0 {
		return host[:idx]
	}
	return host
}

// statusFor maps service and store errors to HTTP status codes.
func statusFor(err error) int {
	var partial *service.PartialSaleError
	switch {
	case errors.As(err, &partial):
		return http.StatusInternalServerError
	case errors.Is(err, service.ErrSummaryUnavailable), errors.Is(err, store.ErrSchemaMissing):
		return http.StatusServiceUnavailable
	case errors.Is(err, sale.ErrOutOfStock),
		errors.Is(err, sale.ErrInsufficientStock),
		errors.Is(err, store.ErrInsufficientStock),
		errors.Is(err, store.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, store.ErrInvalidRecord),
		errors.Is(err, sale.ErrNotInResults),
		errors.Is(err, sale.ErrInvalidManualItem),
		errors.Is(err, ErrInvalidEmail):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrForbidden), errors.Is(err, service.ErrNoBranch):
		return http.StatusForbidden
	case errors.Is(err, ErrInvalidCredentials),
		errors.Is(err, ErrProfileNotFound),
		errors.Is(err, ErrRoleUndefined),
		errors.Is(err, ErrInvalidToken):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func writeServiceError(w http.ResponseWriter, err error) {
	writeError(w, statusFor(err), err)
}

// pathID extracts the single path segment after prefix, optionally followed
// by an action segment.
func pathID(path, prefix string) (id string, action string) {
	tail := strings.Trim(strings.TrimPrefix(path, prefix), "/")
	id, action, _ = strings.Cut(tail, "/")
	return strings.TrimSpace(id), strings.TrimSpace(action)
}

func decodeJSON(r *http.Request, dest any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dest)
}

func writeMethodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, errors.New("method not allowed"))
}

// writeError hides the message of 5xx responses; the detail goes to the log.
func writeError(w http.ResponseWriter, status int, err error) {
	msg := err.Error()
	if status >= 500 {
		log.Printf("internal error (status %d): %v", status, err)
		msg = "internal server error"
		if status == http.StatusServiceUnavailable {
			msg = "service temporarily unavailable"
		}
	}
	writeJSON(w, status, map[string]any{
		"error": msg,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

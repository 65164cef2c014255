package apitest

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

const traceIDHeader = "X-Trace-ID"

// requestID echoes the caller's trace id back, minting one when absent.
func requestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			traceID := c.Request().Header.Get(traceIDHeader)
			if traceID == "" {
				traceID = uuid.New().String()
			}
			c.Response().Header().Set(traceIDHeader, traceID)
			return next(c)
		}
	}
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// rateLimiter throttles per remote address. State lives in the closure
// so each Server gets its own limiter table.
func rateLimiter(rps, burst int) echo.MiddlewareFunc {
	var (
		mu       sync.Mutex
		visitors = make(map[string]*visitor)
	)

	getVisitor := func(ip string) *rate.Limiter {
		mu.Lock()
		defer mu.Unlock()

		v, exists := visitors[ip]
		if !exists {
			limiter := rate.NewLimiter(rate.Limit(rps), burst)
			visitors[ip] = &visitor{limiter, time.Now()}
			return limiter
		}
		v.lastSeen = time.Now()
		return v.limiter
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !getVisitor(c.RealIP()).Allow() {
				return sendDetail(c, http.StatusTooManyRequests, "Too many requests")
			}
			return next(c)
		}
	}
}

// requireToken validates the bearer token the way the real backend does.
// Any failure is a 401 with a detail body, which the client maps to its
// unauthenticated error.
func (s *Server) requireToken(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			return sendDetail(c, http.StatusUnauthorized, "Not authenticated")
		}

		raw, found := strings.CutPrefix(authHeader, "Bearer ")
		if !found {
			return sendDetail(c, http.StatusUnauthorized, "Not authenticated")
		}

		token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return s.secret, nil
		})
		if err != nil || !token.Valid {
			return sendDetail(c, http.StatusUnauthorized, "Could not validate credentials")
		}
		return next(c)
	}
}

func (s *Server) countHits(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		s.mu.Lock()
		s.hits++
		s.mu.Unlock()
		return next(c)
	}
}

// injectFailures serves queued failures before any routing happens.
func (s *Server) injectFailures(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		s.mu.Lock()
		if len(s.failures) == 0 {
			s.mu.Unlock()
			return next(c)
		}
		f := s.failures[0]
		s.failures = s.failures[1:]
		s.mu.Unlock()

		if f.raw {
			return c.String(f.status, f.detail)
		}
		return sendDetail(c, f.status, f.detail)
	}
}

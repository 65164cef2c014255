// Package apitest provides an in-memory stand-in for the bezorgen
// backend, used by client tests. It speaks the same wire contract as
// the real service: bearer tokens, {"detail": ...} error bodies and
// offset pagination.
package apitest

import (
	"net/http"
	"sort"
	"strconv"
	"sync"
	"time"

	"bezorgen/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const tokenTTL = time.Hour

// Server is a fake backend holding its state in memory. All methods are
// safe for concurrent use.
type Server struct {
	echo   *echo.Echo
	secret []byte

	mu        sync.Mutex
	expenses  map[int64]models.Expense
	providers map[int64]models.LinkedProvider
	nextID    int64
	hits      int
	failures  []failure
}

type failure struct {
	status int
	detail string
	raw    bool
}

// Option configures a Server.
type Option func(*Server)

// WithRateLimit mounts a per-client rate limiter in front of every route.
func WithRateLimit(rps, burst int) Option {
	return func(s *Server) {
		s.echo.Use(rateLimiter(rps, burst))
	}
}

// NewServer builds a fake backend with no expenses and a single linked
// provider, so that unlink guards can be exercised from a known state.
func NewServer(opts ...Option) *Server {
	s := &Server{
		echo:     echo.New(),
		secret:   []byte(uuid.NewString()),
		expenses: map[int64]models.Expense{},
		providers: map[int64]models.LinkedProvider{
			1: {ID: 1, Provider: "telegram", ProviderUserID: "99001122"},
		},
		nextID: 1,
	}
	s.echo.HideBanner = true
	s.echo.Use(requestID())
	s.echo.Use(s.countHits)
	s.echo.Use(s.injectFailures)

	for _, opt := range opts {
		opt(s)
	}

	s.routes()
	return s
}

// Handler returns the server as an http.Handler for httptest.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// IssueToken mints a token the server will accept. A negative ttl
// produces an already expired token.
func (s *Server) IssueToken(telegramID, username string, ttl time.Duration) string {
	return s.signToken(telegramID, username, time.Now().Add(ttl))
}

// HitCount reports how many requests reached the server.
func (s *Server) HitCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits
}

// FailNext makes the next request fail with the given status and
// {"detail": detail} body, bypassing the route handler.
func (s *Server) FailNext(status int, detail string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = append(s.failures, failure{status: status, detail: detail})
}

// FailNextRaw is FailNext with a non-JSON body, for exercising the
// client's fallback error message.
func (s *Server) FailNextRaw(status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = append(s.failures, failure{status: status, detail: body, raw: true})
}

// AddExpense stores an expense verbatim, assigning an id when none is
// set, and returns the stored copy.
func (s *Server) AddExpense(e models.Expense) models.Expense {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e.ID == 0 {
		e.ID = s.nextID
		s.nextID++
	} else if e.ID >= s.nextID {
		s.nextID = e.ID + 1
	}
	s.expenses[e.ID] = e
	return e
}

// SeedExpenses fills the store with n generated expenses spread over the
// ninety days before now.
func (s *Server) SeedExpenses(n int) {
	now := time.Now().UTC()
	for _, e := range generateExpenses(n, now.AddDate(0, 0, -90), now) {
		s.AddExpense(e)
	}
}

// AddProvider stores a linked provider for the stub account.
func (s *Server) AddProvider(p models.LinkedProvider) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.providers[p.ID] = p
}

// ExpenseCount reports how many expenses the store currently holds.
func (s *Server) ExpenseCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.expenses)
}

func (s *Server) routes() {
	s.echo.GET("/health", s.handleHealth)
	s.echo.POST("/auth/telegram", s.handleTelegramLogin)

	authed := s.echo.Group("", s.requireToken)
	authed.GET("/expenses/", s.handleListExpenses)
	authed.GET("/expenses/category/:category", s.handleListByCategory)
	authed.GET("/expenses/date-range", s.handleListByDateRange)
	authed.GET("/expenses/stats/monthly", s.handleMonthlyStats)
	authed.POST("/expenses/", s.handleCreateExpense)
	authed.PATCH("/expenses/:id", s.handleUpdateExpense)
	authed.DELETE("/expenses/:id", s.handleDeleteExpense)
	authed.GET("/auth/linked-providers", s.handleListProviders)
	authed.DELETE("/auth/linked-providers/:id", s.handleUnlinkProvider)
}

func (s *Server) signToken(telegramID, username string, expiresAt time.Time) string {
	claims := models.SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		TelegramID: telegramID,
		Username:   username,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		panic(err)
	}
	return signed
}

func sendDetail(c echo.Context, status int, detail string) error {
	return c.JSON(status, map[string]string{"detail": detail})
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, models.HealthStatus{Status: "ok"})
}

func (s *Server) handleTelegramLogin(c echo.Context) error {
	var data models.TelegramAuthData
	if err := c.Bind(&data); err != nil {
		return sendDetail(c, http.StatusBadRequest, "Invalid authentication data")
	}
	if data.ID == "" || data.Hash == "" || data.AuthDate == 0 {
		return sendDetail(c, http.StatusBadRequest, "Invalid authentication data")
	}
	// The real service verifies the widget hash. The stub accepts any
	// well-formed payload.
	token := s.signToken(data.ID, data.Username, time.Now().Add(tokenTTL))
	return c.JSON(http.StatusOK, models.TokenResponse{AccessToken: token, TokenType: "bearer"})
}

func parsePaging(c echo.Context) (limit, offset int) {
	limit = 50
	if v, err := strconv.Atoi(c.QueryParam("limit")); err == nil && v > 0 {
		limit = v
	}
	if v, err := strconv.Atoi(c.QueryParam("offset")); err == nil && v >= 0 {
		offset = v
	}
	return limit, offset
}

// sortedExpenses returns the store newest-first, the order the real
// backend lists in.
func (s *Server) sortedExpenses() []models.Expense {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := make([]models.Expense, 0, len(s.expenses))
	for _, e := range s.expenses {
		all = append(all, e)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].ID > all[j].ID
		}
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})
	return all
}

func page(all []models.Expense, limit, offset int) models.ExpensesPage {
	total := int64(len(all))
	if offset > len(all) {
		offset = len(all)
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return models.ExpensesPage{
		Expenses:   append([]models.Expense{}, all[offset:end]...),
		TotalCount: total,
		Limit:      limit,
		Offset:     offset,
	}
}

func (s *Server) handleListExpenses(c echo.Context) error {
	limit, offset := parsePaging(c)
	return c.JSON(http.StatusOK, page(s.sortedExpenses(), limit, offset))
}

func (s *Server) handleListByCategory(c echo.Context) error {
	limit, offset := parsePaging(c)
	category := c.Param("category")

	filtered := make([]models.Expense, 0)
	for _, e := range s.sortedExpenses() {
		if e.Category == category {
			filtered = append(filtered, e)
		}
	}
	return c.JSON(http.StatusOK, page(filtered, limit, offset))
}

func (s *Server) handleListByDateRange(c echo.Context) error {
	limit, offset := parsePaging(c)

	start, err := time.Parse(time.RFC3339, c.QueryParam("start_date"))
	if err != nil {
		return sendDetail(c, http.StatusUnprocessableEntity, "Invalid start_date")
	}
	end, err := time.Parse(time.RFC3339, c.QueryParam("end_date"))
	if err != nil {
		return sendDetail(c, http.StatusUnprocessableEntity, "Invalid end_date")
	}

	filtered := make([]models.Expense, 0)
	for _, e := range s.sortedExpenses() {
		if !e.CreatedAt.Before(start) && !e.CreatedAt.After(end) {
			filtered = append(filtered, e)
		}
	}
	return c.JSON(http.StatusOK, page(filtered, limit, offset))
}

func (s *Server) handleMonthlyStats(c echo.Context) error {
	month, err := strconv.Atoi(c.QueryParam("month"))
	if err != nil || month < 1 || month > 12 {
		return sendDetail(c, http.StatusUnprocessableEntity, "Invalid month")
	}
	year, err := strconv.Atoi(c.QueryParam("year"))
	if err != nil {
		return sendDetail(c, http.StatusUnprocessableEntity, "Invalid year")
	}
	currency := c.QueryParam("currency")
	if currency == "" {
		currency = models.DefaultCurrency
	}

	return c.JSON(http.StatusOK, s.computeMonthlyStats(month, year, currency))
}

func (s *Server) handleCreateExpense(c echo.Context) error {
	var payload models.ExpenseCreate
	if err := c.Bind(&payload); err != nil {
		return sendDetail(c, http.StatusUnprocessableEntity, "Invalid expense payload")
	}
	if payload.Category == "" || !models.IsValidCategory(payload.Category) {
		return sendDetail(c, http.StatusUnprocessableEntity, "Invalid expense payload")
	}
	if payload.Amount < 0 {
		return sendDetail(c, http.StatusUnprocessableEntity, "Invalid expense payload")
	}

	currency := payload.Currency
	if currency == "" {
		currency = models.DefaultCurrency
	}
	createdAt := time.Now().UTC()
	if payload.CreatedAt != nil {
		createdAt = payload.CreatedAt.UTC()
	}

	created := s.AddExpense(models.Expense{
		Amount:         payload.Amount,
		Category:       payload.Category,
		Description:    payload.Description,
		CreatedAt:      createdAt,
		Currency:       currency,
		TelegramUserID: stubTelegramUserID,
	})
	return c.JSON(http.StatusCreated, created)
}

func (s *Server) handleUpdateExpense(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return sendDetail(c, http.StatusUnprocessableEntity, "Invalid expense id")
	}

	var payload models.ExpenseUpdate
	if err := c.Bind(&payload); err != nil {
		return sendDetail(c, http.StatusUnprocessableEntity, "Invalid expense payload")
	}

	s.mu.Lock()
	e, ok := s.expenses[id]
	if !ok {
		s.mu.Unlock()
		return sendDetail(c, http.StatusNotFound, "Expense not found")
	}
	if payload.Amount != nil {
		e.Amount = *payload.Amount
	}
	if payload.Category != nil {
		e.Category = *payload.Category
	}
	if payload.Description != nil {
		e.Description = *payload.Description
	}
	if payload.Currency != nil {
		e.Currency = *payload.Currency
	}
	if payload.CreatedAt != nil {
		e.CreatedAt = payload.CreatedAt.UTC()
	}
	s.expenses[id] = e
	s.mu.Unlock()

	return c.JSON(http.StatusOK, e)
}

func (s *Server) handleDeleteExpense(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return sendDetail(c, http.StatusUnprocessableEntity, "Invalid expense id")
	}

	s.mu.Lock()
	_, ok := s.expenses[id]
	if ok {
		delete(s.expenses, id)
	}
	s.mu.Unlock()

	if !ok {
		return sendDetail(c, http.StatusNotFound, "Expense not found")
	}
	return c.JSON(http.StatusOK, models.ExpenseDeleteResponse{
		Success: true,
		Message: "Expense deleted successfully",
	})
}

func (s *Server) handleListProviders(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := make([]models.LinkedProvider, 0, len(s.providers))
	for _, p := range s.providers {
		list = append(list, p)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return c.JSON(http.StatusOK, list)
}

func (s *Server) handleUnlinkProvider(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return sendDetail(c, http.StatusUnprocessableEntity, "Invalid provider id")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.providers[id]; !ok {
		return sendDetail(c, http.StatusNotFound, "Provider not found")
	}
	if len(s.providers) <= 1 {
		return sendDetail(c, http.StatusBadRequest, "Cannot unlink the only sign-in method")
	}
	delete(s.providers, id)
	return c.JSON(http.StatusOK, map[string]any{"success": true, "message": "Provider unlinked"})
}

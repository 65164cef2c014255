package api_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bezorgen/internal/api"
	"bezorgen/internal/api/api_mocks"
	"bezorgen/internal/apitest"
	apperrors "bezorgen/internal/errors"
	"bezorgen/internal/models"
	"bezorgen/internal/session"
	"bezorgen/internal/statestore"

	"github.com/golang-jwt/jwt/v5"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/suite"
)

type ClientTestSuite struct {
	suite.Suite
	stub    *apitest.Server
	backend *httptest.Server
	state   *statestore.DB
	session *session.Store
	client  *api.Client
	ctx     context.Context
}

func (s *ClientTestSuite) SetupTest() {
	s.stub = apitest.NewServer()
	s.backend = httptest.NewServer(s.stub.Handler())

	state, err := statestore.OpenInMemory()
	s.Require().NoError(err)
	s.state = state
	s.session = session.NewStore(state)
	s.client = api.NewClient(s.backend.URL, s.session)
	s.ctx = context.Background()
}

func (s *ClientTestSuite) TearDownTest() {
	s.backend.Close()
	s.Require().NoError(s.state.Close())
}

// login saves a server-accepted token into the session store.
func (s *ClientTestSuite) login() {
	token := s.stub.IssueToken("99001122", "tester", time.Hour)
	s.Require().NoError(s.session.Save(token))
}

func validTelegramAuth() models.TelegramAuthData {
	return models.TelegramAuthData{
		ID:        "99001122",
		FirstName: "Jo",
		Username:  "tester",
		AuthDate:  time.Now().Unix(),
		Hash:      "0f1e2d3c4b5a",
	}
}

// Test exchanging widget data for a token, then using that token
func (s *ClientTestSuite) TestLoginWithTelegram() {
	resp, err := s.client.LoginWithTelegram(s.ctx, validTelegramAuth())
	s.Require().NoError(err)
	s.NotEmpty(resp.AccessToken)
	s.Equal("bearer", resp.TokenType)

	s.Require().NoError(s.session.Save(resp.AccessToken))
	_, err = s.client.ListExpenses(s.ctx, 10, 0)
	s.NoError(err)
}

// Test a widget payload missing its hash never leaves the process
func (s *ClientTestSuite) TestLoginValidatesPayload() {
	data := validTelegramAuth()
	data.Hash = ""

	_, err := s.client.LoginWithTelegram(s.ctx, data)
	s.True(apperrors.IsSchemaViolation(err))
	s.Equal(0, s.stub.HitCount())
}

// Test listing returns the seeded page with its pagination cursor
func (s *ClientTestSuite) TestListExpenses() {
	s.stub.SeedExpenses(30)
	s.login()

	page, err := s.client.ListExpenses(s.ctx, 10, 20)
	s.Require().NoError(err)
	s.Len(page.Expenses, 10)
	s.Equal(int64(30), page.TotalCount)
	s.Equal(10, page.Limit)
	s.Equal(20, page.Offset)
}

// Test the category filter only returns matching expenses
func (s *ClientTestSuite) TestListExpensesByCategory() {
	s.login()
	now := time.Now().UTC()
	s.stub.AddExpense(models.Expense{Amount: 12, Category: models.CategoryGroceries, CreatedAt: now, Currency: "NZD", TelegramUserID: 1})
	s.stub.AddExpense(models.Expense{Amount: 30, Category: models.CategoryTransport, CreatedAt: now, Currency: "NZD", TelegramUserID: 1})

	page, err := s.client.ListExpensesByCategory(s.ctx, models.CategoryGroceries, 50, 0)
	s.Require().NoError(err)
	s.Require().Len(page.Expenses, 1)
	s.Equal(models.CategoryGroceries, page.Expenses[0].Category)
}

// Test the date range filter is inclusive on both ends
func (s *ClientTestSuite) TestListExpensesByDateRange() {
	s.login()
	inRange := time.Date(2025, time.April, 15, 10, 0, 0, 0, time.UTC)
	s.stub.AddExpense(models.Expense{Amount: 10, Category: models.CategoryGroceries, CreatedAt: inRange, Currency: "NZD", TelegramUserID: 1})
	s.stub.AddExpense(models.Expense{Amount: 20, Category: models.CategoryGroceries, CreatedAt: inRange.AddDate(0, 2, 0), Currency: "NZD", TelegramUserID: 1})

	start := time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, time.April, 30, 23, 59, 59, 0, time.UTC)
	page, err := s.client.ListExpensesByDateRange(s.ctx, start, end, 50, 0)
	s.Require().NoError(err)
	s.Require().Len(page.Expenses, 1)
	s.Equal(10.0, page.Expenses[0].Amount)
}

// Test monthly stats arrive with allocations split out of spending
func (s *ClientTestSuite) TestFetchMonthlyStats() {
	s.login()
	created := time.Date(2025, time.May, 5, 9, 0, 0, 0, time.UTC)
	s.stub.AddExpense(models.Expense{Amount: 80, Category: models.CategoryGroceries, CreatedAt: created, Currency: "NZD", TelegramUserID: 1})
	s.stub.AddExpense(models.Expense{Amount: 4000, Category: models.CategoryIncome, CreatedAt: created, Currency: "NZD", TelegramUserID: 1})

	stats, err := s.client.FetchMonthlyStats(s.ctx, 5, 2025, "")
	s.Require().NoError(err)
	s.Equal(80.0, stats.TotalSpent)
	s.Equal(4000.0, stats.TotalIncome)
	s.Equal("NZD", stats.Currency)
	s.Equal(int64(1), stats.ExpenseCount)
}

// Test create round trips and the server assigns the identity fields
func (s *ClientTestSuite) TestCreateExpense() {
	s.login()

	created, err := s.client.CreateExpense(s.ctx, models.ExpenseCreate{
		Amount:   42.50,
		Category: models.CategoryGoingOut,
		Currency: "NZD",
	})
	s.Require().NoError(err)
	s.NotZero(created.ID)
	s.Equal(42.50, created.Amount)
	s.NotZero(created.TelegramUserID)
	s.Equal(1, s.stub.ExpenseCount())
}

// Test an invalid create payload is rejected before any request is sent
func (s *ClientTestSuite) TestCreateExpenseRejectedLocally() {
	s.login()

	_, err := s.client.CreateExpense(s.ctx, models.ExpenseCreate{
		Amount:   -5,
		Category: models.CategoryGroceries,
		Currency: "NZD",
	})
	s.True(apperrors.IsSchemaViolation(err))

	_, err = s.client.CreateExpense(s.ctx, models.ExpenseCreate{
		Amount:   5,
		Category: "Gadgets",
		Currency: "NZD",
	})
	s.True(apperrors.IsSchemaViolation(err))

	s.Equal(0, s.stub.HitCount())
}

// Test partial update touches only the provided fields
func (s *ClientTestSuite) TestUpdateExpense() {
	s.login()
	existing := s.stub.AddExpense(models.Expense{
		Amount: 10, Category: models.CategoryGroceries, Description: "weekly shop",
		CreatedAt: time.Now().UTC(), Currency: "NZD", TelegramUserID: 1,
	})

	amount := 12.75
	updated, err := s.client.UpdateExpense(s.ctx, existing.ID, models.ExpenseUpdate{Amount: &amount})
	s.Require().NoError(err)
	s.Equal(12.75, updated.Amount)
	s.Equal("weekly shop", updated.Description)
	s.Equal(models.CategoryGroceries, updated.Category)
}

// Test delete acknowledges, and a second delete surfaces a 404 APIError
func (s *ClientTestSuite) TestDeleteExpense() {
	s.login()
	existing := s.stub.AddExpense(models.Expense{
		Amount: 10, Category: models.CategoryGroceries,
		CreatedAt: time.Now().UTC(), Currency: "NZD", TelegramUserID: 1,
	})

	ack, err := s.client.DeleteExpense(s.ctx, existing.ID)
	s.Require().NoError(err)
	s.True(ack.Success)

	_, err = s.client.DeleteExpense(s.ctx, existing.ID)
	apiErr, ok := apperrors.AsAPIError(err)
	s.Require().True(ok)
	s.Equal(http.StatusNotFound, apiErr.Status)
	s.Equal("Expense not found", apiErr.Message)
}

// Test a rejected token clears the session exactly once and every
// subsequent call keeps reporting unauthenticated
func (s *ClientTestSuite) TestUnauthorizedClearsSession() {
	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte("wrong-secret"))
	s.Require().NoError(err)
	s.Require().NoError(s.session.Save(forged))
	s.True(s.session.IsAuthenticated())

	_, err = s.client.FetchMonthlyStats(s.ctx, 5, 2025, "")
	s.ErrorIs(err, apperrors.ErrUnauthenticated)

	_, present := s.session.Read()
	s.False(present)
	s.False(s.session.IsAuthenticated())

	_, err = s.client.ListExpenses(s.ctx, 10, 0)
	s.ErrorIs(err, apperrors.ErrUnauthenticated)
}

// Test server detail strings surface verbatim and non-JSON bodies fall
// back to the generic message
func (s *ClientTestSuite) TestErrorDetailPropagation() {
	s.login()

	s.stub.FailNext(http.StatusInternalServerError, "Database unavailable")
	_, err := s.client.ListExpenses(s.ctx, 10, 0)
	apiErr, ok := apperrors.AsAPIError(err)
	s.Require().True(ok)
	s.Equal(http.StatusInternalServerError, apiErr.Status)
	s.Equal("Database unavailable", apiErr.Message)

	s.stub.FailNextRaw(http.StatusBadGateway, "<html>bad gateway</html>")
	_, err = s.client.ListExpenses(s.ctx, 10, 0)
	apiErr, ok = apperrors.AsAPIError(err)
	s.Require().True(ok)
	s.Equal(apperrors.GenericDetail, apiErr.Message)
}

// Test a 401 on the public path is an ordinary APIError and leaves the
// stored token alone
func (s *ClientTestSuite) TestPublicPathKeepsSessionOn401() {
	s.login()

	s.stub.FailNext(http.StatusUnauthorized, "Invalid authentication data")
	_, err := s.client.Health(s.ctx)
	s.Require().NotErrorIs(err, apperrors.ErrUnauthenticated)

	apiErr, ok := apperrors.AsAPIError(err)
	s.Require().True(ok)
	s.Equal(http.StatusUnauthorized, apiErr.Status)

	_, present := s.session.Read()
	s.True(present)
}

// Test the health probe
func (s *ClientTestSuite) TestHealth() {
	status, err := s.client.Health(s.ctx)
	s.Require().NoError(err)
	s.Equal("ok", status.Status)
	s.False(s.session.IsAuthenticated())
}

// Test listing providers and the unlink guard behavior
func (s *ClientTestSuite) TestLinkedProviders() {
	s.login()

	providers, err := s.client.ListLinkedProviders(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(providers, 1)
	s.False(models.CanUnlink(providers))

	err = s.client.UnlinkProvider(s.ctx, providers[0].ID)
	apiErr, ok := apperrors.AsAPIError(err)
	s.Require().True(ok)
	s.Equal(http.StatusBadRequest, apiErr.Status)

	email := "jo@example.com"
	s.stub.AddProvider(models.LinkedProvider{ID: 2, Provider: "google", ProviderUserID: "g-123", Email: &email})
	providers, err = s.client.ListLinkedProviders(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(providers, 2)
	s.True(models.CanUnlink(providers))

	s.Require().NoError(s.client.UnlinkProvider(s.ctx, 2))
	providers, err = s.client.ListLinkedProviders(s.ctx)
	s.Require().NoError(err)
	s.Len(providers, 1)
}

// Test network failures wrap the transport error instead of panicking
func (s *ClientTestSuite) TestNetworkError() {
	dead := api.NewClient("http://127.0.0.1:1", s.session)

	_, err := dead.Health(s.ctx)
	s.Require().Error(err)
	s.False(apperrors.IsSchemaViolation(err))
	_, ok := apperrors.AsAPIError(err)
	s.False(ok)
	s.False(errors.Is(err, apperrors.ErrUnauthenticated))
}

// Test the token store is consulted once per authenticated request
func (s *ClientTestSuite) TestTokenStoreReadPerRequest() {
	ctrl := gomock.NewController(s.T())
	defer ctrl.Finish()

	token := s.stub.IssueToken("99001122", "tester", time.Hour)
	store := api_mocks.NewMockTokenStore(ctrl)
	store.EXPECT().Read().Return(token, true).Times(2)

	client := api.NewClient(s.backend.URL, store)
	_, err := client.ListExpenses(s.ctx, 10, 0)
	s.Require().NoError(err)
	_, err = client.ListExpenses(s.ctx, 10, 0)
	s.Require().NoError(err)
}

func TestClientTestSuite(t *testing.T) {
	suite.Run(t, new(ClientTestSuite))
}

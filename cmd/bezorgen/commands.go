package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/url"
	"time"

	"bezorgen/internal/api"
	"bezorgen/internal/config"
	"bezorgen/internal/listview"
	"bezorgen/internal/models"
	"bezorgen/internal/session"
)

const dateLayout = "2006-01-02"

type app struct {
	cfg     *config.Config
	client  *api.Client
	session *session.Store
	stdout  io.Writer
}

func (a *app) login(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	fs.SetOutput(a.stdout)
	id := fs.String("id", "", "Telegram user id")
	firstName := fs.String("first-name", "", "First name from the widget payload")
	lastName := fs.String("last-name", "", "Last name from the widget payload")
	username := fs.String("username", "", "Telegram username")
	photoURL := fs.String("photo-url", "", "Avatar URL from the widget payload")
	authDate := fs.Int64("auth-date", 0, "Unix timestamp of the widget authentication")
	hash := fs.String("hash", "", "Integrity hash from the widget payload")
	if err := fs.Parse(args); err != nil {
		return err
	}

	resp, err := a.client.LoginWithTelegram(ctx, models.TelegramAuthData{
		ID:        *id,
		FirstName: *firstName,
		LastName:  *lastName,
		Username:  *username,
		PhotoURL:  *photoURL,
		AuthDate:  *authDate,
		Hash:      *hash,
	})
	if err != nil {
		return err
	}
	if err := a.session.Save(resp.AccessToken); err != nil {
		return fmt.Errorf("failed to store session token: %w", err)
	}

	if claims, ok := a.session.DecodeClaims(); ok {
		fmt.Fprintf(a.stdout, "Signed in as %s (telegram id %s)\n", claims.Username, claims.TelegramID)
	} else {
		fmt.Fprintln(a.stdout, "Signed in")
	}
	return nil
}

func (a *app) logout() error {
	if err := a.session.Clear(); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	fmt.Fprintln(a.stdout, "Signed out")
	return nil
}

func (a *app) whoami() error {
	claims, ok := a.session.DecodeClaims()
	if !ok {
		fmt.Fprintln(a.stdout, "Not signed in")
		return nil
	}

	fmt.Fprintf(a.stdout, "Telegram id: %s\n", claims.TelegramID)
	fmt.Fprintf(a.stdout, "Username:    %s\n", claims.Username)
	if claims.ExpiresAt != nil {
		fmt.Fprintf(a.stdout, "Expires:     %s\n", claims.ExpiresAt.Time.Local().Format(time.RFC1123))
	}
	if a.session.IsExpired() {
		fmt.Fprintln(a.stdout, "The session is expired or about to expire. Run `bezorgen login`.")
	}
	return nil
}

// expenses resolves a list view state against the backend. The -state
// flag accepts the URL-encoded form printed by a previous invocation, so
// paging and filters survive between runs the way they survive in a
// browser URL bar.
func (a *app) expenses(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("expenses", flag.ContinueOnError)
	fs.SetOutput(a.stdout)
	state := fs.String("state", "", "URL-encoded view state from a previous run")
	category := fs.String("category", "", "Filter by category")
	start := fs.String("start", "", "Range start date (YYYY-MM-DD)")
	end := fs.String("end", "", "Range end date (YYYY-MM-DD)")
	page := fs.Int("page", 0, "Jump to page number")
	limit := fs.Int("limit", 0, "Page size")
	clearFilters := fs.Bool("clear", false, "Drop all filters")
	if err := fs.Parse(args); err != nil {
		return err
	}

	query := listview.NewQuery()
	query.Limit = a.cfg.API.PageSize
	if *state != "" {
		values, err := url.ParseQuery(*state)
		if err != nil {
			return fmt.Errorf("invalid -state value: %w", err)
		}
		query = listview.ParseQuery(values)
	}
	if *limit > 0 {
		query.Limit = *limit
	}

	if *clearFilters {
		query = query.ClearFilters()
	}
	if *category != "" || *start != "" || *end != "" {
		startDate, endDate, err := parseDateRange(*start, *end)
		if err != nil {
			return err
		}
		query = query.ApplyFilter(*category, startDate, endDate)
	}
	if *page > 0 {
		query = query.GoToPage(*page)
	}

	result, err := query.Fetch(ctx, a.client)
	if err != nil {
		return err
	}

	for _, e := range result.Expenses {
		fmt.Fprintf(a.stdout, "%6d  %s  %10.2f %s  %-16s  %s\n",
			e.ID, e.CreatedAt.Local().Format(dateLayout), e.Amount, e.Currency, e.Category, e.Description)
	}
	fmt.Fprintf(a.stdout, "Page %d of %d (%d expenses)\n",
		query.CurrentPage(), listview.TotalPages(result.TotalCount, query.Limit), result.TotalCount)
	fmt.Fprintf(a.stdout, "State: %s\n", query.Encode().Encode())
	return nil
}

func (a *app) stats(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("stats", flag.ContinueOnError)
	fs.SetOutput(a.stdout)
	state := fs.String("state", "", "URL-encoded view state from a previous run")
	month := fs.Int("month", 0, "Month (1-12)")
	year := fs.Int("year", 0, "Year")
	currency := fs.String("currency", "", "Currency code, defaults to the backend's")
	if err := fs.Parse(args); err != nil {
		return err
	}

	query := listview.NewStatsQuery(time.Now())
	if *state != "" {
		values, err := url.ParseQuery(*state)
		if err != nil {
			return fmt.Errorf("invalid -state value: %w", err)
		}
		query = listview.ParseStatsQuery(values, time.Now())
	}
	if *month != 0 {
		query.Month = *month
	}
	if *year != 0 {
		query.Year = *year
	}
	if *currency != "" {
		query.Currency = *currency
	}

	stats, err := a.client.FetchMonthlyStats(ctx, query.Month, query.Year, query.Currency)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.stdout, "%d-%02d (%s)\n", query.Year, query.Month, stats.Currency)
	fmt.Fprintf(a.stdout, "  Spent:       %10.2f across %d expenses\n", stats.TotalSpent, stats.ExpenseCount)
	fmt.Fprintf(a.stdout, "  Income:      %10.2f\n", stats.TotalIncome)
	fmt.Fprintf(a.stdout, "  Savings:     %10.2f\n", stats.TotalSavings)
	fmt.Fprintf(a.stdout, "  Investment:  %10.2f\n", stats.TotalInvestment)
	fmt.Fprintf(a.stdout, "  Allocated:   %s\n", stats.Allocated().StringFixed(2))
	fmt.Fprintf(a.stdout, "  Net balance: %s\n", stats.NetBalance().StringFixed(2))
	if stats.TransactionCount > 0 {
		fmt.Fprintf(a.stdout, "  Average per transaction: %s\n", stats.AveragePerTransaction().StringFixed(2))
	}

	if len(stats.CategoryBreakdown) > 0 {
		fmt.Fprintln(a.stdout, "By category:")
		for _, ct := range stats.CategoryBreakdown {
			fmt.Fprintf(a.stdout, "  %-16s %10.2f  (%s%%, %d expenses)\n",
				ct.Category, ct.Total, ct.Share(stats.TotalSpent).StringFixed(1), ct.Count)
		}
	}
	fmt.Fprintf(a.stdout, "State: %s\n", query.Encode().Encode())
	return nil
}

func (a *app) add(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	fs.SetOutput(a.stdout)
	amount := fs.Float64("amount", 0, "Amount")
	category := fs.String("category", "", "Category")
	description := fs.String("description", "", "Description")
	currency := fs.String("currency", models.DefaultCurrency, "Currency code")
	date := fs.String("date", "", "Date (YYYY-MM-DD), defaults to today")
	if err := fs.Parse(args); err != nil {
		return err
	}

	payload := models.ExpenseCreate{
		Amount:      *amount,
		Category:    *category,
		Description: *description,
		Currency:    *currency,
	}
	if *date != "" {
		createdAt, err := time.ParseInLocation(dateLayout, *date, time.Local)
		if err != nil {
			return fmt.Errorf("invalid -date value: %w", err)
		}
		payload.CreatedAt = &createdAt
	}

	created, err := a.client.CreateExpense(ctx, payload)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "Created expense %d: %.2f %s on %s\n",
		created.ID, created.Amount, created.Currency, created.Category)
	return nil
}

func (a *app) update(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("update", flag.ContinueOnError)
	fs.SetOutput(a.stdout)
	id := fs.Int64("id", 0, "Expense id")
	amount := fs.Float64("amount", 0, "New amount")
	category := fs.String("category", "", "New category")
	description := fs.String("description", "", "New description")
	currency := fs.String("currency", "", "New currency code")
	date := fs.String("date", "", "New date (YYYY-MM-DD)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == 0 {
		return fmt.Errorf("missing required flag -id")
	}

	// Only flags the user actually passed become part of the patch.
	var payload models.ExpenseUpdate
	var parseErr error
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "amount":
			payload.Amount = amount
		case "category":
			payload.Category = category
		case "description":
			payload.Description = description
		case "currency":
			payload.Currency = currency
		case "date":
			createdAt, err := time.ParseInLocation(dateLayout, *date, time.Local)
			if err != nil {
				parseErr = fmt.Errorf("invalid -date value: %w", err)
				return
			}
			payload.CreatedAt = &createdAt
		}
	})
	if parseErr != nil {
		return parseErr
	}

	updated, err := a.client.UpdateExpense(ctx, *id, payload)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "Updated expense %d: %.2f %s on %s\n",
		updated.ID, updated.Amount, updated.Currency, updated.Category)
	return nil
}

func (a *app) deleteExpense(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("delete", flag.ContinueOnError)
	fs.SetOutput(a.stdout)
	id := fs.Int64("id", 0, "Expense id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == 0 {
		return fmt.Errorf("missing required flag -id")
	}

	ack, err := a.client.DeleteExpense(ctx, *id)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.stdout, ack.Message)
	return nil
}

func (a *app) providers(ctx context.Context) error {
	providers, err := a.client.ListLinkedProviders(ctx)
	if err != nil {
		return err
	}

	for _, p := range providers {
		line := fmt.Sprintf("%4d  %-10s %s", p.ID, p.Provider, p.ProviderUserID)
		if p.DisplayName != nil {
			line += "  " + *p.DisplayName
		}
		if p.Email != nil {
			line += "  <" + *p.Email + ">"
		}
		fmt.Fprintln(a.stdout, line)
	}
	if !models.CanUnlink(providers) {
		fmt.Fprintln(a.stdout, "This is the only sign-in method; it cannot be unlinked.")
	}
	return nil
}

func (a *app) unlink(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("unlink", flag.ContinueOnError)
	fs.SetOutput(a.stdout)
	id := fs.Int64("id", 0, "Provider id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == 0 {
		return fmt.Errorf("missing required flag -id")
	}

	providers, err := a.client.ListLinkedProviders(ctx)
	if err != nil {
		return err
	}
	if !models.CanUnlink(providers) {
		return fmt.Errorf("cannot unlink the only sign-in method")
	}

	if err := a.client.UnlinkProvider(ctx, *id); err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "Unlinked provider %d\n", *id)
	return nil
}

func (a *app) health(ctx context.Context) error {
	status, err := a.client.Health(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "Backend status: %s\n", status.Status)
	return nil
}

func parseDateRange(start, end string) (*time.Time, *time.Time, error) {
	var startDate, endDate *time.Time
	if start != "" {
		t, err := time.ParseInLocation(dateLayout, start, time.Local)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid -start value: %w", err)
		}
		startDate = &t
	}
	if end != "" {
		t, err := time.ParseInLocation(dateLayout, end, time.Local)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid -end value: %w", err)
		}
		// Make the range inclusive of the whole end day.
		t = t.Add(24*time.Hour - time.Second)
		endDate = &t
	}
	return startDate, endDate, nil
}

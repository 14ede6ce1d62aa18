package core

import (
	"errors"
	"strings"
	"time"
)

const (
	// DefaultCategory is assigned when an expense is created with a blank category.
	DefaultCategory = "Other"
	// DefaultLabel is assigned when an expense is created with a blank label.
	DefaultLabel = "default"
	// DefaultColor is the schema default for expense rows. No exposed
	// operation sets it; it exists for the rendered list only.
	DefaultColor = "#3498db"
)

type (
	// Account is a registered user identity with credentials and a monthly
	// income figure. Username is unique and immutable after creation.
	Account struct {
		ID            int64
		Username      string
		PasswordHash  string
		MonthlyIncome float64
		CreatedAt     time.Time
	}

	// ExpenseRecord is one dated spending entry owned by exactly one Account.
	// Records are never mutated after creation, only deleted.
	ExpenseRecord struct {
		ID       int64
		OwnerID  int64
		Title    string
		Category string
		Amount   float64
		Date     string // ISO YYYY-MM-DD
		Note     string
		Label    string
		Color    string
	}

	// Session associates an opaque server-issued token with an Account id.
	Session struct {
		Token     string
		AccountID int64
		ExpiresAt time.Time
	}

	// Overview is the dashboard view of an account's ledger: the expense list
	// in date-descending order plus the derived balance figures.
	Overview struct {
		Expenses         []ExpenseRecord
		Total            float64
		MonthlyIncome    float64
		RemainingBalance float64
	}
)

var (
	ErrDuplicateUsername  = errors.New("username already exists")
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidNumber      = errors.New("invalid number")
	ErrInvalidDate        = errors.New("invalid date")
	ErrEmptyTitle         = errors.New("empty title")
	ErrAccountNotFound    = errors.New("account not found")
	ErrSessionNotFound    = errors.New("session not found")
)

// NewExpenseInput carries the raw form fields of an add-expense request.
// It is validated and normalized once at the boundary via Normalize.
type NewExpenseInput struct {
	Title      string
	Category   string
	AmountText string
	DateText   string
	Note       string
	Label      string
}

// Normalize validates the input against a reference "now" and returns the
// record ready for insertion (without OwnerID). Blank category and label get
// their defaults, an empty date defaults to now's calendar date, and the
// amount may carry any sign.
func (in NewExpenseInput) Normalize(now time.Time) (ExpenseRecord, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return ExpenseRecord{}, ErrEmptyTitle
	}

	amount, err := ParseAmount(in.AmountText)
	if err != nil {
		return ExpenseRecord{}, err
	}

	date, err := ParseDate(in.DateText, now)
	if err != nil {
		return ExpenseRecord{}, err
	}

	category := strings.TrimSpace(in.Category)
	if category == "" {
		category = DefaultCategory
	}
	label := strings.TrimSpace(in.Label)
	if label == "" {
		label = DefaultLabel
	}

	return ExpenseRecord{
		Title:    title,
		Category: category,
		Amount:   amount,
		Date:     date,
		Note:     strings.TrimSpace(in.Note),
		Label:    label,
		Color:    DefaultColor,
	}, nil
}

// RemainingBalance returns monthlyIncome minus the total of all expense
// amounts. It may be negative; no clamping is applied.
func RemainingBalance(monthlyIncome, total float64) float64 {
	return monthlyIncome - total
}

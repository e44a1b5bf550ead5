package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	FoodDining     Category = "Food & Dining"
	Transportation Category = "Transportation"
	Shopping       Category = "Shopping"
	Entertainment  Category = "Entertainment"
	BillsUtilities Category = "Bills & Utilities"
	Healthcare     Category = "Healthcare"
	Travel         Category = "Travel"
	Education      Category = "Education"
	Other          Category = "Other"
)

const (
	maxDescriptionLen = 200
	dateLayout        = "2006-01-02"
)

type (
	// Category is one of the fixed expense categories.
	Category string

	// Date is a calendar date without a time component, stored at UTC midnight.
	Date struct {
		time.Time
	}

	Expense struct {
		ID          string    `json:"id"`
		Amount      Money     `json:"amount"`
		Category    Category  `json:"category"`
		Description string    `json:"description"`
		Date        Date      `json:"date"`
		CreatedAt   time.Time `json:"createdAt"`
	}

	// ExpenseInput is the payload of a create or update intent, as entered
	// in the form. Amount and Date are raw strings; Build parses them.
	ExpenseInput struct {
		Amount      string
		Category    string
		Description string
		Date        string
	}
)

var (
	ErrMissingAmount      = errors.New("amount is required")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrEmptyDescription   = errors.New("empty description")
	ErrDescriptionTooLong = fmt.Errorf("description too long (max %d characters)", maxDescriptionLen)
	ErrInvalidCategory    = errors.New("invalid category")
	ErrInvalidDate        = errors.New("invalid date")
	ErrMissingID          = errors.New("missing id")
	ErrNotFound           = errors.New("expense not found")
)

// ValidationError reports which input field was rejected.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func invalid(field string, err error) error {
	return &ValidationError{Field: field, Err: err}
}

var categories = []Category{
	FoodDining,
	Transportation,
	Shopping,
	Entertainment,
	BillsUtilities,
	Healthcare,
	Travel,
	Education,
	Other,
}

// Categories returns the fixed category set in display order.
func Categories() []Category {
	return append([]Category(nil), categories...)
}

// ParseCategory matches s against the category set, ignoring case and
// surrounding whitespace.
func ParseCategory(s string) (Category, bool) {
	s = strings.TrimSpace(s)
	for _, c := range categories {
		if strings.EqualFold(string(c), s) {
			return c, true
		}
	}
	return "", false
}

func (c Category) IsValid() bool {
	for _, known := range categories {
		if c == known {
			return true
		}
	}
	return false
}

func (c Category) String() string {
	return string(c)
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf returns the calendar date of t in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, int(m), d)
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return errors.New("date cannot be zero")
	}
	return nil
}

// Day returns the day of the month
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year
func (d Date) Year() int {
	return d.Time.Year()
}

// YearMonth returns the "YYYY-MM" key of the date.
func (d Date) YearMonth() string {
	return d.Time.Format("2006-01")
}

// AddDays returns the date n calendar days later (n may be negative).
func (d Date) AddDays(n int) Date {
	return Date{Time: d.Time.AddDate(0, 0, n)}
}

// DaysUntil returns the number of calendar days from d to other.
func (d Date) DaysUntil(other Date) int {
	return int(other.Time.Sub(d.Time).Hours() / 24)
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Time.Format(dateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Validate checks a record that is about to enter, or was read back into,
// the collection.
func (e Expense) Validate() error {
	if strings.TrimSpace(e.ID) == "" {
		return invalid("id", ErrMissingID)
	}
	if err := e.Amount.Validate(); err != nil {
		return invalid("amount", err)
	}
	if len(strings.TrimSpace(e.Description)) == 0 {
		return invalid("description", ErrEmptyDescription)
	}
	if !e.Category.IsValid() {
		return invalid("category", ErrInvalidCategory)
	}
	if err := e.Date.Validate(); err != nil {
		return invalid("date", ErrInvalidDate)
	}
	return nil
}

// Build validates the input and returns the record body. The id and
// creation time are left for the store to assign. An empty category
// defaults to Other and an empty date to today.
func (in ExpenseInput) Build(today Date) (Expense, error) {
	amount := strings.TrimSpace(in.Amount)
	if amount == "" {
		return Expense{}, invalid("amount", ErrMissingAmount)
	}
	money, err := ParseAmount(amount)
	if err != nil {
		return Expense{}, invalid("amount", err)
	}

	desc := strings.TrimSpace(in.Description)
	if desc == "" {
		return Expense{}, invalid("description", ErrEmptyDescription)
	}
	if len([]rune(desc)) > maxDescriptionLen {
		return Expense{}, invalid("description", ErrDescriptionTooLong)
	}

	category := Other
	if strings.TrimSpace(in.Category) != "" {
		c, ok := ParseCategory(in.Category)
		if !ok {
			return Expense{}, invalid("category", ErrInvalidCategory)
		}
		category = c
	}

	date := today
	if strings.TrimSpace(in.Date) != "" {
		d, err := ParseDate(in.Date)
		if err != nil {
			return Expense{}, invalid("date", err)
		}
		date = d
	}

	return Expense{
		Amount:      money,
		Category:    category,
		Description: desc,
		Date:        date,
	}, nil
}

// InputOf returns the form payload that reproduces e, used to pre-fill
// the edit form.
func InputOf(e Expense) ExpenseInput {
	return ExpenseInput{
		Amount:      e.Amount.String(),
		Category:    string(e.Category),
		Description: e.Description,
		Date:        e.Date.String(),
	}
}

package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"fintrack/internal/core"
)

// ErrCorrupt marks a blob that is not a JSON array of records.
var ErrCorrupt = errors.New("persisted state corrupt")

// wireExpense is the persisted shape of one record. Field names match the
// blobs written by the earlier browser build of the tracker.
type wireExpense struct {
	ID          wireID      `json:"id"`
	Amount      json.Number `json:"amount"`
	Category    string      `json:"category"`
	Description string      `json:"description"`
	Date        string      `json:"date"`
	CreatedAt   string      `json:"createdAt"`
}

// wireID accepts both string ids and the numeric millisecond ids older
// blobs carry.
type wireID string

func (id *wireID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*id = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = wireID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("id: %w", err)
	}
	*id = wireID(n.String())
	return nil
}

func (id wireID) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(id))
}

// dropped describes a record the decoder skipped.
type dropped struct {
	Index  int
	Reason string
}

// encode serializes records in collection order.
func encode(records []core.Expense) ([]byte, error) {
	out := make([]wireExpense, len(records))
	for i, e := range records {
		w := wireExpense{
			ID:          wireID(e.ID),
			Amount:      json.Number(e.Amount.String()),
			Category:    string(e.Category),
			Description: e.Description,
			Date:        e.Date.String(),
		}
		if !e.CreatedAt.IsZero() {
			w.CreatedAt = e.CreatedAt.UTC().Format(time.RFC3339Nano)
		}
		out[i] = w
	}
	return json.Marshal(out)
}

// decode parses a blob, coercing what it can. A blob that is not a JSON
// array returns ErrCorrupt. Individual records that cannot be coerced are
// skipped and reported in the second return value.
func decode(data []byte) ([]core.Expense, []dropped, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}

	records := make([]core.Expense, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	var skipped []dropped
	for i, item := range raw {
		e, err := decodeOne(item)
		if err != nil {
			skipped = append(skipped, dropped{Index: i, Reason: err.Error()})
			continue
		}
		if _, dup := seen[e.ID]; dup {
			skipped = append(skipped, dropped{Index: i, Reason: "duplicate id " + e.ID})
			continue
		}
		seen[e.ID] = struct{}{}
		records = append(records, e)
	}
	return records, skipped, nil
}

func decodeOne(item json.RawMessage) (core.Expense, error) {
	var w wireExpense
	if err := json.Unmarshal(item, &w); err != nil {
		return core.Expense{}, err
	}

	id := strings.TrimSpace(string(w.ID))
	if id == "" {
		return core.Expense{}, core.ErrMissingID
	}
	desc := strings.TrimSpace(w.Description)
	if desc == "" {
		return core.Expense{}, core.ErrEmptyDescription
	}
	date, err := core.ParseDate(w.Date)
	if err != nil {
		return core.Expense{}, err
	}
	amount, err := decodeAmount(w.Amount)
	if err != nil {
		return core.Expense{}, err
	}

	category, ok := core.ParseCategory(w.Category)
	if !ok {
		category = core.Other
	}

	var createdAt time.Time
	if w.CreatedAt != "" {
		if t, err := time.Parse(time.RFC3339, w.CreatedAt); err == nil {
			createdAt = t
		}
	}

	return core.Expense{
		ID:          id,
		Amount:      amount,
		Category:    category,
		Description: desc,
		Date:        date,
		CreatedAt:   createdAt,
	}, nil
}

func decodeAmount(n json.Number) (core.Money, error) {
	s := strings.TrimSpace(n.String())
	if s == "" {
		return core.Money{}, core.ErrMissingAmount
	}
	var m core.Money
	if err := m.UnmarshalJSON([]byte(s)); err != nil {
		return core.Money{}, err
	}
	if err := m.Validate(); err != nil {
		return core.Money{}, err
	}
	return m, nil
}

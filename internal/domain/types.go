package domain

import (
	"encoding/json"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Statement is an account statement as returned by the open-banking API.
type Statement struct {
	ID           string           `json:"id"`
	Status       string           `json:"status"`
	Transactions []RawTransaction `json:"transactions"`
}

// UnmarshalJSON decodes the envelope leniently. Non-string ids and statuses are
// kept as text, and a transaction entry that is not an object becomes an empty
// record so that it is dropped on its own during projection.
func (s *Statement) UnmarshalJSON(data []byte) error {
	var envelope struct {
		ID           json.RawMessage `json:"id"`
		Status       json.RawMessage `json:"status"`
		Transactions json.RawMessage `json:"transactions"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return err
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(envelope.Transactions, &entries); err != nil {
		entries = nil
	}

	*s = Statement{
		ID:     Text(envelope.ID),
		Status: Text(envelope.Status),
	}

	if entries == nil {
		return nil
	}

	s.Transactions = make([]RawTransaction, 0, len(entries))
	for _, entry := range entries {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(entry, &fields); err != nil || fields == nil {
			fields = map[string]json.RawMessage{}
		}

		s.Transactions = append(s.Transactions, fields)
	}

	return nil
}

// RawTransaction keeps every field of an upstream transaction undecoded, so that
// presence and type can be checked per record.
type RawTransaction map[string]json.RawMessage

// Keys of a RawTransaction.
const (
	FieldID           = "id"
	FieldAmount       = "amount"
	FieldCurrency     = "currency"
	FieldDate         = "date"
	FieldCounterparty = "counterparty"
	FieldDescription  = "description"
)

var RequiredFields = []string{FieldID, FieldAmount, FieldCurrency, FieldDate, FieldCounterparty}

// Has reports whether every key is present. A present key holding null still counts.
func (t RawTransaction) Has(keys ...string) bool {
	for _, key := range keys {
		if _, ok := t[key]; !ok {
			return false
		}
	}

	return true
}

// String returns the field as text: JSON strings are unquoted, null and absent
// fields are empty, any other value is returned as its JSON literal.
func (t RawTransaction) String(key string) string {
	raw, ok := t[key]
	if !ok {
		return ""
	}

	return Text(raw)
}

// Text renders a raw JSON value the way RawTransaction.String does.
func Text(raw json.RawMessage) string {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	return trimmed
}

// Direction labels a row as money in or money out.
type Direction string

type DirectionLabels struct {
	Credit Direction
	Debit  Direction
}

var DefaultDirectionLabels = DirectionLabels{Credit: "credit", Debit: "debit"}

// For returns the credit label for amounts >= 0, the debit label otherwise.
func (l DirectionLabels) For(amount decimal.Decimal) Direction {
	if amount.Sign() >= 0 {
		return l.Credit
	}

	return l.Debit
}

// Row is a projected transaction, one line of the output CSV.
type Row struct {
	TransactionID string
	Amount        decimal.Decimal
	Currency      string
	Date          string
	Counterparty  string
	Description   string
	Direction     Direction
}

// FormatAmount renders amount with the currency's symbol and precision, e.g. "$100.50".
// Unknown currency codes fall back to "<amount> <code>".
func FormatAmount(amount decimal.Decimal, currencyCode string) string {
	currency := money.GetCurrency(strings.ToUpper(currencyCode))
	if currency == nil {
		return strings.TrimSpace(amount.String() + " " + currencyCode)
	}

	minor := amount.Shift(int32(currency.Fraction)).Round(0).IntPart()
	return money.New(minor, currency.Code).Display()
}

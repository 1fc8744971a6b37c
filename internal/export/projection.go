package export

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"

	"github.com/HallyG/stmtgrab/internal/domain"
	"github.com/shopspring/decimal"
)

var (
	errMissingField        = errors.New("missing required field")
	errInvalidAmount       = errors.New("amount is not a number")
	errUnnamedCounterparty = errors.New("counterparty has no name")
)

// Projection is the result of mapping a statement's raw transactions to rows.
type Projection struct {
	Rows []domain.Row
	// Skipped counts records dropped for missing fields or an unparsable amount.
	Skipped int
	// Totals is the net amount per currency over Rows.
	Totals map[string]decimal.Decimal
}

// Project maps every usable transaction of stmt to a Row, preserving order.
// Malformed records are dropped and counted, never reported individually.
func Project(stmt *domain.Statement, labels domain.DirectionLabels) Projection {
	projection := Projection{
		Totals: make(map[string]decimal.Decimal),
	}

	if stmt == nil {
		return projection
	}

	for _, txn := range stmt.Transactions {
		row, err := projectTransaction(txn, labels)
		if err != nil {
			projection.Skipped++
			continue
		}

		projection.Rows = append(projection.Rows, row)
		projection.Totals[row.Currency] = projection.Totals[row.Currency].Add(row.Amount)
	}

	return projection
}

func projectTransaction(txn domain.RawTransaction, labels domain.DirectionLabels) (domain.Row, error) {
	if !txn.Has(domain.RequiredFields...) {
		return domain.Row{}, errMissingField
	}

	counterparty, err := resolveCounterparty(txn[domain.FieldCounterparty])
	if err != nil {
		return domain.Row{}, err
	}

	amount, err := parseAmount(txn[domain.FieldAmount])
	if err != nil {
		return domain.Row{}, err
	}

	return domain.Row{
		TransactionID: txn.String(domain.FieldID),
		Amount:        amount,
		Currency:      txn.String(domain.FieldCurrency),
		Date:          txn.String(domain.FieldDate),
		Counterparty:  counterparty,
		Description:   txn.String(domain.FieldDescription),
		Direction:     labels.For(amount),
	}, nil
}

// resolveCounterparty unwraps {"name": ...} objects and passes anything else through as text.
func resolveCounterparty(raw json.RawMessage) (string, error) {
	if !bytes.HasPrefix(bytes.TrimSpace(raw), []byte("{")) {
		return domain.Text(raw), nil
	}

	var entity domain.RawTransaction
	if err := json.Unmarshal(raw, &entity); err != nil {
		return "", err
	}

	if !entity.Has("name") {
		return "", errUnnamedCounterparty
	}

	return entity.String("name"), nil
}

// parseAmount accepts JSON numbers and numeric strings. NaN, infinities and
// underscore-grouped digits have no decimal value and are rejected.
func parseAmount(raw json.RawMessage) (decimal.Decimal, error) {
	trimmed := bytes.TrimSpace(raw)

	var text string
	switch {
	case len(trimmed) == 0:
		return decimal.Zero, errInvalidAmount
	case trimmed[0] == '"':
		if err := json.Unmarshal(trimmed, &text); err != nil {
			return decimal.Zero, errInvalidAmount
		}
	case trimmed[0] == '-' || (trimmed[0] >= '0' && trimmed[0] <= '9'):
		text = string(trimmed)
	default:
		return decimal.Zero, errInvalidAmount
	}

	amount, err := decimal.NewFromString(strings.TrimSpace(text))
	if err != nil {
		return decimal.Zero, errInvalidAmount
	}

	return amount, nil
}

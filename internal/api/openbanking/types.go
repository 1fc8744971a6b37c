package openbanking

import (
	"encoding/json"

	"github.com/HallyG/stmtgrab/internal/domain"
)

type createStatementRequest struct {
	AccountID string `json:"account_id"`
	FromDate  string `json:"from_date"`
	ToDate    string `json:"to_date"`
	Format    string `json:"format"`
}

// StatementRequestResult is the API's answer to a statement request. The whole
// body is kept in Raw since providers add their own fields.
type StatementRequestResult struct {
	StatementID string
	Status      string
	Raw         map[string]json.RawMessage
}

func (r *StatementRequestResult) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	fields := domain.RawTransaction(raw)

	r.Raw = raw
	r.Status = fields.String("status")
	r.StatementID = fields.String("statement_id")
	if r.StatementID == "" {
		r.StatementID = fields.String("id")
	}

	return nil
}

func (r StatementRequestResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Raw)
}

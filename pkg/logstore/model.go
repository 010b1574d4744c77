package logstore

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Entry is one row of the logs table: the request-shaped projection of
// an event plus the full masked event JSON under Extra.
type Entry struct {
	ID            uuid.UUID
	RequestID     string
	ClientAddress string
	Timestamp     time.Time
	Session       map[string]any
	Method        string
	Protocol      string
	Path          string
	StatusCode    *int
	Message       string
	Extra         []byte
}

// sessionJSON renders the session map for a JSON column, nil when the
// entry carries no session so the stores write NULL instead of "{}".
func (e Entry) sessionJSON() ([]byte, error) {
	if len(e.Session) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(e.Session)
	if err != nil {
		return nil, fmt.Errorf("logstore: marshal session: %w", err)
	}
	return b, nil
}

// Columns the mapper resolves by name. Hosts extending the rules refer
// to these when adding aliases or search paths.
const (
	ColumnRequestID     = "request_id"
	ColumnClientAddress = "client_address"
	ColumnSession       = "session"
	ColumnMethod        = "method"
	ColumnProtocol      = "protocol"
	ColumnPath          = "path"
	ColumnStatusCode    = "status_code"
)

package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// Coin is one user's balance record in the coins table
type Coin struct {
	ID                        uint         `gorm:"primaryKey" json:"id"`
	Name                      string       `gorm:"size:255;not null;default:''" json:"name"`
	Email                     string       `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Coins                     int64        `gorm:"not null;default:0" json:"coins"`
	UserConsultsQuantity      int64        `gorm:"not null;default:0" json:"user_consults_quantity"`
	StatementConsultsQuantity int64        `gorm:"not null;default:0" json:"statement_consults_quantity"`
	UserConsultedAt           *time.Time   `json:"user_consulted_at"`
	AdminConsultedAt          *time.Time   `json:"admin_consulted_at"`
	CreatedAt                 time.Time    `gorm:"index" json:"created_at"`
	UpdatedAt                 time.Time    `json:"updated_at"`
	SpendHistory              SpendHistory `gorm:"not null;default:'[]'" json:"spend_history"`
}

func (Coin) TableName() string {
	return "coins"
}

// SpendHistory is an ordered list of opaque JSON entries.
// Reading a NULL, malformed or non-list value yields an empty list instead of an error.
type SpendHistory []json.RawMessage

// Scan implements sql.Scanner
func (h *SpendHistory) Scan(value interface{}) error {
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		*h = SpendHistory{}
		return nil
	}
	*h = ParseSpendHistory(raw)
	return nil
}

// Value implements driver.Valuer, always storing a JSON array
func (h SpendHistory) Value() (driver.Value, error) {
	if h == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]json.RawMessage(h))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// MarshalJSON renders a nil history as []
func (h SpendHistory) MarshalJSON() ([]byte, error) {
	if h == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]json.RawMessage(h))
}

// GormDBDataType stores the history as jsonb on postgres and text elsewhere
func (SpendHistory) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	if db.Dialector.Name() == "postgres" {
		return "jsonb"
	}
	return "text"
}

// ParseSpendHistory decodes a stored history. A JSON string holding an encoded list
// is unwrapped once; anything that is not a list becomes an empty list.
func ParseSpendHistory(raw []byte) SpendHistory {
	if len(raw) == 0 {
		return SpendHistory{}
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err == nil {
		if entries == nil {
			return SpendHistory{}
		}
		return SpendHistory(entries)
	}

	var encoded string
	if err := json.Unmarshal(raw, &encoded); err == nil {
		if err := json.Unmarshal([]byte(encoded), &entries); err == nil && entries != nil {
			return SpendHistory(entries)
		}
	}

	logrus.WithField("spend_history", truncate(string(raw), 64)).Warn("Discarding unparseable spend_history")
	return SpendHistory{}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

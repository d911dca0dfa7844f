package model

import (
	"fmt"
	"time"
)

// AccountType identifies the channel a raw message arrived from.
// The persisted value is the upper-case string form; anything outside
// the closed set is rejected at the boundary instead of being stored.
type AccountType string

const (
	AccountGmail AccountType = "GMAIL"
	AccountNaver AccountType = "NAVER"
	AccountSMS   AccountType = "SMS"
	AccountKakao AccountType = "KAKAO"
	AccountOCR   AccountType = "OCR"
	AccountOther AccountType = "OTHER"
)

var accountTypes = map[AccountType]struct{}{
	AccountGmail: {},
	AccountNaver: {},
	AccountSMS:   {},
	AccountKakao: {},
	AccountOCR:   {},
	AccountOther: {},
}

// ParseAccountType maps a persisted or wire string to an AccountType.
func ParseAccountType(s string) (AccountType, error) {
	at := AccountType(s)
	if _, ok := accountTypes[at]; !ok {
		return "", fmt.Errorf("unknown account type: %q", s)
	}
	return at, nil
}

func (a AccountType) String() string { return string(a) }

// Valid reports whether the value belongs to the closed set.
func (a AccountType) Valid() bool {
	_, ok := accountTypes[a]
	return ok
}

// RawMessage is an immutable record of one inbound text fragment.
// The pair (AccountType, SourceMessageID) is unique; re-ingesting the
// same source item is a no-op at the store layer.
type RawMessage struct {
	ID              int64       `json:"id"`
	AccountType     AccountType `json:"account_type"`
	SourceMessageID string      `json:"source_message_id"`
	Subject         *string     `json:"subject,omitempty"`
	Sender          *string     `json:"sender,omitempty"`
	Body            string      `json:"body"`
	SourcePayload   *string     `json:"source_payload,omitempty"`
	ReceivedAt      time.Time   `json:"received_at"`
	IngestedAt      time.Time   `json:"ingested_at"`
}

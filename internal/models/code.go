package models

import "time"

type IssuedCode struct {
	ID       int64     `json:"id" db:"id"`
	Sequence string    `json:"sequence" db:"sequence_name"`
	Value    uint64    `json:"value" db:"seq_value"`
	Code     string    `json:"code" db:"code"`
	Length   int       `json:"length" db:"code_length"`
	Tier     int       `json:"tier" db:"tier"`
	IssuedAt time.Time `json:"issued_at" db:"issued_at"`
}

type IssueRequest struct {
	Length int `json:"length,omitempty"`
}

type EncodeResponse struct {
	Value  uint64 `json:"value"`
	Length int    `json:"length"`
	Code   string `json:"code"`
	Tier   int    `json:"tier"`
}

// TierCapacity is the slice of values one overflow tier covers.
type TierCapacity struct {
	Tier  int    `json:"tier"`
	First uint64 `json:"first"`
	Last  uint64 `json:"last"`
	Code  string `json:"first_code"`
}

type CapacityResponse struct {
	Radix    int            `json:"radix"`
	Alphabet string         `json:"alphabet"`
	Length   int            `json:"length"`
	Capacity uint64         `json:"capacity"`
	Tiers    []TierCapacity `json:"tiers"`
}

// SequenceStatus reports how far a sequence is from exhausting a length.
type SequenceStatus struct {
	Sequence  string `json:"sequence"`
	Length    int    `json:"length"`
	Capacity  uint64 `json:"capacity"`
	Remaining uint64 `json:"remaining"`
	Exhausted bool   `json:"exhausted"`
}

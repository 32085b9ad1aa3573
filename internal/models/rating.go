package models

import "time"

// Rating is one user's rating of one document, value in [0,5]. Exactly one
// row exists per (document, user) pair.
type Rating struct {
	DocumentID int64     `db:"document_id" json:"document_id"`
	UserID     int64     `db:"user_id" json:"user_id"`
	Value      float64   `db:"value" json:"value"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// RatingAggregate is derived data: the mean of all rating rows for a
// document, rounded to two decimals. No row exists for documents without
// ratings.
type RatingAggregate struct {
	DocumentID int64   `db:"document_id" json:"document_id"`
	Average    float64 `db:"average" json:"average"`
}

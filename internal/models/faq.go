package models

import "time"

// FAQ is a frequently-asked-question entry that users may rate for
// helpfulness.
type FAQ struct {
	ID        int64     `db:"id" json:"id"`
	Question  string    `db:"question" json:"question"`
	Answer    string    `db:"answer" json:"answer"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// FAQRating mirrors Rating for FAQ targets.
type FAQRating struct {
	FAQID     int64     `db:"faq_id" json:"faq_id"`
	UserID    int64     `db:"user_id" json:"user_id"`
	Value     float64   `db:"value" json:"value"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// FAQDetail joins an FAQ with its aggregate for listing.
type FAQDetail struct {
	FAQ
	Average     *float64 `db:"average" json:"average,omitempty"`
	RatingCount *int     `db:"rating_count" json:"rating_count,omitempty"`
}

// FAQRatingAggregate carries the running mean plus a count for FAQ entries.
type FAQRatingAggregate struct {
	FAQID       int64   `db:"faq_id" json:"faq_id"`
	Average     float64 `db:"average" json:"average"`
	RatingCount int     `db:"rating_count" json:"rating_count"`
}

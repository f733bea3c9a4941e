package domain

import "time"

// Comment is free-text feedback on an event.
type Comment struct {
	UserID    string    `json:"userId" validate:"required"`
	Text      string    `json:"comment"`
	Timestamp time.Time `json:"timestamp"`
}

// RatingSummary aggregates the numeric ratings of an event.
type RatingSummary struct {
	AverageRating float64 `json:"averageRating" validate:"gte=0,lte=5"`
	TotalRatings  int     `json:"totalRatings" validate:"gte=0"`
}

// Rating bounds accepted by the feedback form.
const (
	MinRating = 1
	MaxRating = 5
)

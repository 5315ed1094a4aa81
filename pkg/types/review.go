package types

import "time"

const (
	MinReviewRating = 1
	MaxReviewRating = 5
)

// Review is a customer review stored inline on a product.
type Review struct {
	Name    string    `json:"name"`
	Comment string    `json:"comment"`
	Rating  int       `json:"rating"`
	Date    time.Time `json:"date"`
}

// Reviews is the jsonb column type for product reviews.
type Reviews []Review

// AverageRating returns the mean rating, or 0 when there are no reviews.
func (r Reviews) AverageRating() float64 {
	if len(r) == 0 {
		return 0
	}
	sum := 0
	for _, review := range r {
		sum += review.Rating
	}
	return float64(sum) / float64(len(r))
}

package types

import "testing"

func TestReviewsAverageRating(t *testing.T) {
	if got := (Reviews{}).AverageRating(); got != 0 {
		t.Fatalf("expected 0 for no reviews, got %v", got)
	}
	reviews := Reviews{{Rating: 5}, {Rating: 4}, {Rating: 3}}
	if got := reviews.AverageRating(); got != 4 {
		t.Fatalf("expected average 4, got %v", got)
	}
}

package domain

import "fmt"

// FieldError reports the first field that failed validation on a record.
type FieldError struct {
	Field string
	Msg   string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("domain: field %s: %s", e.Field, e.Msg)
}

// ValidateReview checks a review after defaults have been applied. It
// fails fast on the first violation.
func ValidateReview(rev Review) error {
	if rev.Text == "" {
		return &FieldError{Field: "text", Msg: "is empty"}
	}
	if rev.Rating < 0 || rev.Rating > 5 {
		return &FieldError{Field: "rating", Msg: fmt.Sprintf("%d out of range [0,5]", rev.Rating)}
	}
	if !ValidSources[rev.Source] {
		return &FieldError{Field: "source", Msg: fmt.Sprintf("unknown source %q", rev.Source)}
	}
	return nil
}

// ValidateRestaurant checks a restaurant record after defaults have been
// applied, including all of its reviews.
func ValidateRestaurant(r Restaurant) error {
	if r.Name == "" {
		return &FieldError{Field: "name", Msg: "is empty"}
	}
	if r.Rating < 0 || r.Rating > 5 {
		return &FieldError{Field: "rating", Msg: fmt.Sprintf("%g out of range [0,5]", r.Rating)}
	}
	if !ValidPriceRanges[r.PriceRange] {
		return &FieldError{Field: "price_range", Msg: fmt.Sprintf("unknown price range %q", r.PriceRange)}
	}
	for i, rev := range r.Reviews {
		if err := ValidateReview(rev); err != nil {
			return fmt.Errorf("reviews[%d]: %w", i, err)
		}
	}
	return nil
}

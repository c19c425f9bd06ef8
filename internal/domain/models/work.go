package models

const (
	MinRating = 1
	MaxRating = 5
)

// Provider is the professional a work is attributed to.
type Provider struct {
	Name      string `json:"name"`
	AvatarRef string `json:"image"`
}

// Work is a published portfolio entry.
type Work struct {
	ID          string   `json:"id"`
	ImageRef    string   `json:"image"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Rating      *int     `json:"rating,omitempty"` // nil until the work is rated
	Provider    Provider `json:"provider"`
}

// Rated reports whether the work carries a rating.
func (w Work) Rated() bool {
	return w.Rating != nil
}

// Clone returns a copy that shares no memory with w.
func (w Work) Clone() Work {
	if w.Rating != nil {
		r := *w.Rating
		w.Rating = &r
	}
	return w
}

// ValidRating reports whether n is an accepted rating value.
func ValidRating(n int) bool {
	return n >= MinRating && n <= MaxRating
}

// IntPtr is a small helper for optional ratings.
func IntPtr(n int) *int {
	return &n
}

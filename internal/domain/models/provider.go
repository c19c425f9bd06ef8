package models

// FeaturedProvider is a professional highlighted on the home screen.
type FeaturedProvider struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Role        string   `json:"role"`
	Rating      float64  `json:"rating"`
	Location    string   `json:"location"`
	AvatarRef   string   `json:"image"`
	Specialties []string `json:"specialties"`
}

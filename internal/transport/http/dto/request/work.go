package request

// UpdateDraftRequest patches the open new-work draft. Absent fields are left as they are.
type UpdateDraftRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

type SelectRatingRequest struct {
	Rating *int `json:"rating" validate:"required"`
}

type RecentWorksQuery struct {
	Limit int `query:"limit" validate:"gte=0,lte=100"`
}

package models

// NewWorkDraft stages a work before it is published.
type NewWorkDraft struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description" validate:"required"`
	ImageRef    string `json:"image" validate:"required"`
}

// RatingDraft stages a rating for an existing work. SelectedRating 0 means none chosen.
type RatingDraft struct {
	TargetWorkID   string `json:"target_work_id"`
	SelectedRating int    `json:"selected_rating"`
}

// NewWorkSubmission is what a backend receives to create a work.
// Key is stable across retries of the same draft.
type NewWorkSubmission struct {
	Key      string       `json:"key"`
	Draft    NewWorkDraft `json:"draft"`
	Provider Provider     `json:"provider"`
}

// Work builds the catalog entry for the submission under the given id.
func (s NewWorkSubmission) Work(id string) Work {
	return Work{
		ID:          id,
		ImageRef:    s.Draft.ImageRef,
		Title:       s.Draft.Title,
		Description: s.Draft.Description,
		Provider:    s.Provider,
	}
}

package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"atelieconnect/internal/domain/models"
	"atelieconnect/internal/lib/logger/sl"
)

// OpenRating starts a rating draft for an existing work.
func (w *Workflow) OpenRating(ctx context.Context, workID string) (models.RatingDraft, error) {
	const op = "service.Workflow.OpenRating"

	w.mu.Lock()
	defer w.mu.Unlock()

	switch {
	case w.publish.state != StateIdle:
		return models.RatingDraft{}, fmt.Errorf("%s: %w", op, ErrFlowBusy)
	case w.rating.state == StatePending:
		return w.rating.draft, fmt.Errorf("%s: %w", op, ErrSubmitPending)
	case w.rating.state == StateEditing && w.rating.draft.TargetWorkID == workID:
		return w.rating.draft, nil
	case w.rating.state == StateEditing:
		return w.rating.draft, fmt.Errorf("%s: %w", op, ErrFlowBusy)
	}

	if _, err := w.catalog.Get(workID); err != nil {
		return models.RatingDraft{}, fmt.Errorf("%s: %w", op, err)
	}

	w.rating.draft = models.RatingDraft{TargetWorkID: workID}
	w.setState(&w.rating.flowState, StateEditing)

	w.log.DebugContext(ctx, "rating draft opened", slog.String("op", op), slog.String("work_id", workID))

	return w.rating.draft, nil
}

// SelectRating sets the chosen rating. 0 clears the selection.
func (w *Workflow) SelectRating(rating int) (models.RatingDraft, error) {
	const op = "service.Workflow.SelectRating"

	w.mu.Lock()
	defer w.mu.Unlock()

	if err := editable(&w.rating.flowState); err != nil {
		return w.rating.draft, fmt.Errorf("%s: %w", op, err)
	}

	if rating != 0 && !models.ValidRating(rating) {
		return w.rating.draft, fmt.Errorf("%s: %w", op, &ValidationError{Code: CodeInvalidRating, Fields: []string{"selected_rating"}})
	}

	w.rating.draft.SelectedRating = rating

	return w.rating.draft, nil
}

// SubmitRating commits the selected rating and applies it to the catalog.
// A previous rating on the work is overwritten.
func (w *Workflow) SubmitRating(ctx context.Context) (Outcome, error) {
	const op = "service.Workflow.SubmitRating"
	log := w.log.With(slog.String("op", op))

	w.mu.Lock()
	if err := editable(&w.rating.flowState); err != nil {
		w.mu.Unlock()
		if errors.Is(err, ErrSubmitPending) {
			w.recorder.ObserveSubmission(string(FlowRating), ResultIgnored)
			log.Debug("submit ignored while pending")
		}
		return Outcome{}, fmt.Errorf("%s: %w", op, err)
	}

	w.setState(&w.rating.flowState, StateValidating)

	if w.rating.draft.SelectedRating == 0 {
		w.setState(&w.rating.flowState, StateEditing)
		outcome := w.report(failure(FlowRating, msgNoRating, false))
		w.mu.Unlock()

		w.recorder.ObserveSubmission(string(FlowRating), ResultInvalid)
		log.Info("rating draft has no selection")

		return outcome, fmt.Errorf("%s: %w", op, &ValidationError{Code: CodeNoRatingSelected, Fields: []string{"selected_rating"}})
	}

	w.setState(&w.rating.flowState, StatePending)
	draft := w.rating.draft
	w.mu.Unlock()

	log = log.With(
		slog.String("work_id", draft.TargetWorkID),
		slog.Int("rating", draft.SelectedRating),
	)
	log.Info("committing rating")

	err := w.committer.CommitRating(ctx, draft.TargetWorkID, draft.SelectedRating)

	w.mu.Lock()
	defer w.mu.Unlock()

	if err != nil {
		w.setState(&w.rating.flowState, StateRejected)
		w.setState(&w.rating.flowState, StateEditing)
		outcome := w.report(failure(FlowRating, msgRatingFailed, true))

		w.recorder.ObserveSubmission(string(FlowRating), ResultRejected)
		log.Warn("commit failed, draft kept", sl.Err(err))

		return outcome, fmt.Errorf("%s: %w", op, &CommitError{Flow: FlowRating, Err: err})
	}

	works, err := w.catalog.UpdateRating(draft.TargetWorkID, draft.SelectedRating)
	if err != nil {
		w.resetRating()
		outcome := w.report(failure(FlowRating, msgUnexpectedFail, false))

		w.recorder.ObserveSubmission(string(FlowRating), ResultFailed)
		log.Error("catalog rejected committed rating", sl.Err(err))

		return outcome, fmt.Errorf("%s: %w", op, err)
	}

	w.setState(&w.rating.flowState, StateCommitted)
	w.resetRating()

	outcome := success(FlowRating, msgRatingSent)
	for i := range works {
		if works[i].ID == draft.TargetWorkID {
			outcome.Work = &works[i]
			break
		}
	}
	outcome = w.report(outcome)

	w.recorder.ObserveSubmission(string(FlowRating), ResultCommitted)
	log.Info("rating applied")

	return outcome, nil
}

// CancelRating discards the rating draft. Only an editing draft can be cancelled.
func (w *Workflow) CancelRating() error {
	const op = "service.Workflow.CancelRating"

	w.mu.Lock()
	defer w.mu.Unlock()

	if err := editable(&w.rating.flowState); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	w.resetRating()

	return nil
}

// resetRating must be called with w.mu held.
func (w *Workflow) resetRating() {
	w.rating.draft = models.RatingDraft{}
	w.setState(&w.rating.flowState, StateIdle)
}

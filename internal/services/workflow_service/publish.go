package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"atelieconnect/internal/domain/models"
	"atelieconnect/internal/lib/logger/sl"
)

// OpenPublish starts a new-work draft. Opening an already open draft keeps it.
func (w *Workflow) OpenPublish(ctx context.Context) (models.NewWorkDraft, error) {
	const op = "service.Workflow.OpenPublish"

	w.mu.Lock()
	defer w.mu.Unlock()

	switch {
	case w.rating.state != StateIdle:
		return models.NewWorkDraft{}, fmt.Errorf("%s: %w", op, ErrFlowBusy)
	case w.publish.state == StatePending:
		return w.publish.draft, fmt.Errorf("%s: %w", op, ErrSubmitPending)
	case w.publish.state == StateEditing:
		return w.publish.draft, nil
	}

	w.publish.draft = models.NewWorkDraft{}
	w.publish.key = newKey()
	w.setState(&w.publish.flowState, StateEditing)

	w.log.DebugContext(ctx, "publish draft opened", slog.String("op", op), slog.String("key", w.publish.key))

	return w.publish.draft, nil
}

func (w *Workflow) SetTitle(title string) (models.NewWorkDraft, error) {
	return w.editPublish("service.Workflow.SetTitle", func(d *models.NewWorkDraft) {
		d.Title = w.sanitize(title)
	})
}

func (w *Workflow) SetDescription(description string) (models.NewWorkDraft, error) {
	return w.editPublish("service.Workflow.SetDescription", func(d *models.NewWorkDraft) {
		d.Description = w.sanitize(description)
	})
}

func (w *Workflow) editPublish(op string, edit func(d *models.NewWorkDraft)) (models.NewWorkDraft, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := editable(&w.publish.flowState); err != nil {
		return w.publish.draft, fmt.Errorf("%s: %w", op, err)
	}

	edit(&w.publish.draft)

	return w.publish.draft, nil
}

// PickImage asks picker for the draft photo. A cancelled pick leaves the
// current image untouched. The picker runs without holding the workflow lock;
// a pick that finishes after its draft was cancelled or replaced is rejected
// with ErrFlowNotOpen.
func (w *Workflow) PickImage(ctx context.Context, picker ImagePicker) (models.NewWorkDraft, error) {
	const op = "service.Workflow.PickImage"
	log := w.log.With(slog.String("op", op))

	w.mu.Lock()
	if err := editable(&w.publish.flowState); err != nil {
		draft := w.publish.draft
		w.mu.Unlock()
		return draft, fmt.Errorf("%s: %w", op, err)
	}
	key := w.publish.key
	w.mu.Unlock()

	ref, ok, err := picker.PickImage(ctx)
	if err != nil {
		log.Error("failed to pick image", sl.Err(err))
		return w.Snapshot().Publish.Draft, fmt.Errorf("%s: %w", op, err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	// the draft may have been cancelled or reopened while the picker was open
	if err := editable(&w.publish.flowState); err != nil {
		return w.publish.draft, fmt.Errorf("%s: %w", op, err)
	}
	if w.publish.key != key {
		log.Debug("draft replaced during pick")
		return w.publish.draft, fmt.Errorf("%s: %w", op, ErrFlowNotOpen)
	}

	if !ok {
		log.Debug("image pick cancelled")
		return w.publish.draft, nil
	}

	w.publish.draft.ImageRef = ref

	return w.publish.draft, nil
}

// SubmitPublish validates the draft, commits it and prepends the new work to
// the catalog. A second submit while the first is pending is ignored with
// ErrSubmitPending.
func (w *Workflow) SubmitPublish(ctx context.Context) (Outcome, error) {
	const op = "service.Workflow.SubmitPublish"
	log := w.log.With(slog.String("op", op))

	w.mu.Lock()
	if err := editable(&w.publish.flowState); err != nil {
		w.mu.Unlock()
		if errors.Is(err, ErrSubmitPending) {
			w.recorder.ObserveSubmission(string(FlowPublish), ResultIgnored)
			log.Debug("submit ignored while pending")
		}
		return Outcome{}, fmt.Errorf("%s: %w", op, err)
	}

	w.setState(&w.publish.flowState, StateValidating)

	if err := w.validateDraft(w.publish.draft); err != nil {
		w.setState(&w.publish.flowState, StateEditing)
		outcome := w.report(failure(FlowPublish, msgMissingFields, false))
		w.mu.Unlock()

		w.recorder.ObserveSubmission(string(FlowPublish), ResultInvalid)
		log.Info("draft failed validation", sl.Err(err))

		return outcome, fmt.Errorf("%s: %w", op, err)
	}

	w.setState(&w.publish.flowState, StatePending)
	draft, key := w.publish.draft, w.publish.key
	w.mu.Unlock()

	log = log.With(slog.String("key", key))
	log.Info("committing new work")

	work, err := w.commitNewWork(ctx, key, draft)

	w.mu.Lock()
	defer w.mu.Unlock()

	if err != nil {
		w.setState(&w.publish.flowState, StateRejected)
		w.setState(&w.publish.flowState, StateEditing)
		outcome := w.report(failure(FlowPublish, msgPublishFailed, true))

		w.recorder.ObserveSubmission(string(FlowPublish), ResultRejected)
		log.Warn("commit failed, draft kept", sl.Err(err))

		return outcome, fmt.Errorf("%s: %w", op, &CommitError{Flow: FlowPublish, Err: err})
	}

	if _, err := w.catalog.Insert(work); err != nil {
		w.resetPublish()
		outcome := w.report(failure(FlowPublish, msgUnexpectedFail, false))

		w.recorder.ObserveSubmission(string(FlowPublish), ResultFailed)
		log.Error("catalog rejected committed work", slog.String("work_id", work.ID), sl.Err(err))

		return outcome, fmt.Errorf("%s: %w", op, err)
	}

	w.setState(&w.publish.flowState, StateCommitted)
	w.resetPublish()

	outcome := success(FlowPublish, msgWorkPublished)
	outcome.Work = &work
	outcome = w.report(outcome)

	w.recorder.ObserveSubmission(string(FlowPublish), ResultCommitted)
	log.Info("work published", slog.String("work_id", work.ID))

	return outcome, nil
}

func (w *Workflow) commitNewWork(ctx context.Context, key string, draft models.NewWorkDraft) (models.Work, error) {
	user, err := w.users.CurrentUser(ctx)
	if err != nil {
		return models.Work{}, fmt.Errorf("current user: %w", err)
	}

	return w.committer.CommitNewWork(ctx, models.NewWorkSubmission{
		Key:      key,
		Draft:    draft,
		Provider: user.Provider(),
	})
}

// CancelPublish discards the draft. Only an editing draft can be cancelled.
func (w *Workflow) CancelPublish() error {
	const op = "service.Workflow.CancelPublish"

	w.mu.Lock()
	defer w.mu.Unlock()

	if err := editable(&w.publish.flowState); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	w.resetPublish()

	return nil
}

// resetPublish must be called with w.mu held.
func (w *Workflow) resetPublish() {
	w.publish.draft = models.NewWorkDraft{}
	w.publish.key = ""
	w.setState(&w.publish.flowState, StateIdle)
}

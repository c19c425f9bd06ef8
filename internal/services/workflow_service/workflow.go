package services

import (
	"context"
	"errors"
	"html"
	"log/slog"
	"reflect"
	"strings"
	"sync"

	"atelieconnect/internal/domain/models"
	"atelieconnect/internal/lib/pubsub"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
)

type Catalog interface {
	Insert(work models.Work) ([]models.Work, error)
	UpdateRating(id string, rating int) ([]models.Work, error)
	Get(id string) (models.Work, error)
}

// Committer is the backend call standing behind a submit. Both methods must
// resolve exactly once per call and be safe to retry.
type Committer interface {
	CommitNewWork(ctx context.Context, sub models.NewWorkSubmission) (models.Work, error)
	CommitRating(ctx context.Context, workID string, rating int) error
}

type UserProvider interface {
	CurrentUser(ctx context.Context) (models.CurrentUser, error)
}

// ImagePicker resolves an image reference. ok is false when the user cancelled.
type ImagePicker interface {
	PickImage(ctx context.Context) (ref string, ok bool, err error)
}

type PickerFunc func(ctx context.Context) (string, bool, error)

func (f PickerFunc) PickImage(ctx context.Context) (string, bool, error) {
	return f(ctx)
}

type Recorder interface {
	ObserveSubmission(flow, result string)
}

type flowState struct {
	name  FlowName
	state State
}

type publishFlow struct {
	flowState
	key   string
	draft models.NewWorkDraft
}

type ratingFlow struct {
	flowState
	draft models.RatingDraft
}

// Workflow drives the publish and rating flows of one presentation session.
type Workflow struct {
	log       *slog.Logger
	catalog   Catalog
	committer Committer
	users     UserProvider
	recorder  Recorder
	validate  *validator.Validate
	policy    *bluemonday.Policy

	mu          sync.Mutex
	publish     publishFlow
	rating      ratingFlow
	lastOutcome *Outcome

	states   *pubsub.Bus[StateChanged]
	outcomes *pubsub.Bus[Outcome]
}

func New(log *slog.Logger, catalog Catalog, committer Committer, users UserProvider, recorder Recorder) *Workflow {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	if recorder == nil {
		recorder = nopRecorder{}
	}

	return &Workflow{
		log:       log,
		catalog:   catalog,
		committer: committer,
		users:     users,
		recorder:  recorder,
		validate:  validate,
		policy:    bluemonday.StrictPolicy(),
		publish:   publishFlow{flowState: flowState{name: FlowPublish, state: StateIdle}},
		rating:    ratingFlow{flowState: flowState{name: FlowRating, state: StateIdle}},
		states:    pubsub.New[StateChanged](),
		outcomes:  pubsub.New[Outcome](),
	}
}

// States streams flow transitions. Subscribers must not call back into the workflow.
func (w *Workflow) States() *pubsub.Bus[StateChanged] {
	return w.states
}

// Outcomes streams submit results. Subscribers must not call back into the workflow.
func (w *Workflow) Outcomes() *pubsub.Bus[Outcome] {
	return w.outcomes
}

type PublishView struct {
	State State               `json:"state"`
	Draft models.NewWorkDraft `json:"draft"`
}

type RatingView struct {
	State State              `json:"state"`
	Draft models.RatingDraft `json:"draft"`
}

type Snapshot struct {
	Publish     PublishView `json:"publish"`
	Rating      RatingView  `json:"rating"`
	LastOutcome *Outcome    `json:"last_outcome,omitempty"`
}

func (w *Workflow) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()

	s := Snapshot{
		Publish: PublishView{State: w.publish.state, Draft: w.publish.draft},
		Rating:  RatingView{State: w.rating.state, Draft: w.rating.draft},
	}
	if w.lastOutcome != nil {
		o := *w.lastOutcome
		s.LastOutcome = &o
	}

	return s
}

// setState must be called with w.mu held.
func (w *Workflow) setState(f *flowState, to State) {
	from := f.state
	f.state = to
	w.states.Publish(StateChanged{Flow: f.name, From: from, To: to})
}

// report must be called with w.mu held.
func (w *Workflow) report(o Outcome) Outcome {
	w.lastOutcome = &o
	w.outcomes.Publish(o)
	return o
}

// editable checks that f accepts draft edits. Must be called with w.mu held.
func editable(f *flowState) error {
	switch f.state {
	case StateEditing:
		return nil
	case StatePending:
		return ErrSubmitPending
	default:
		return ErrFlowNotOpen
	}
}

const sanitizePasses = 5

// sanitize strips markup from user text and trims it. Entities are decoded
// only while the decoded text sanitizes to itself, so encoded tags never
// come back as markup.
func (w *Workflow) sanitize(s string) string {
	for i := 0; i < sanitizePasses; i++ {
		out := html.UnescapeString(w.policy.Sanitize(s))
		if out == s {
			return strings.TrimSpace(s)
		}
		s = out
	}

	return strings.TrimSpace(w.policy.Sanitize(s))
}

func (w *Workflow) validateDraft(draft models.NewWorkDraft) error {
	err := w.validate.Struct(draft)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field())
	}

	return &ValidationError{Code: CodeMissingField, Fields: fields}
}

func newKey() string {
	return uuid.NewString()
}

type nopRecorder struct{}

func (nopRecorder) ObserveSubmission(string, string) {}

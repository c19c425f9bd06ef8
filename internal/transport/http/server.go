package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"atelieconnect/internal/domain/models"
	"atelieconnect/internal/lib/logger/sl"
	"atelieconnect/internal/lib/pubsub"
	"atelieconnect/internal/services/auth"
	workflow "atelieconnect/internal/services/workflow_service"
	"atelieconnect/internal/storage"
	filestorage "atelieconnect/internal/storage/filestorage"
	"atelieconnect/internal/storage/memory"
	"atelieconnect/internal/transport/http/dto/request"
	"atelieconnect/internal/transport/http/dto/response"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
)

const (
	SessionName  = "atelieconnect"
	sessionIDKey = "session_id"

	DefaultCommitTimeout = 30 * time.Second
)

type Catalog interface {
	List() []models.Work
	Changes() *pubsub.Bus[memory.CatalogChanged]
}

type SessionService interface {
	Workflow(sessionID string) *workflow.Workflow
	Forget(sessionID string)
}

type DirectoryService interface {
	FeaturedProviders(ctx context.Context) []models.FeaturedProvider
	RecentWorks(ctx context.Context, limit int) []models.Work
}

type AuthService interface {
	IssueToken(ctx context.Context, user models.CurrentUser) (string, error)
	Authenticate(token string) (models.CurrentUser, error)
}

type Routers struct {
	log              *slog.Logger
	Catalog          Catalog
	SessionService   SessionService
	DirectoryService DirectoryService
	AuthService      AuthService
	Files            filestorage.FileStorage
	CommitTimeout    time.Duration
	SessionMaxAge    time.Duration
}

func NewRouter(log *slog.Logger, catalog Catalog, sessionService SessionService, directoryService DirectoryService, authService AuthService, files filestorage.FileStorage) *Routers {
	return &Routers{
		log:              log,
		Catalog:          catalog,
		SessionService:   sessionService,
		DirectoryService: directoryService,
		AuthService:      authService,
		Files:            files,
		CommitTimeout:    DefaultCommitTimeout,
		SessionMaxAge:    24 * time.Hour,
	}
}

// Session makes sure every request carries a session id cookie and stores
// the id in the echo context.
func (r *Routers) Session(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		const op = "http.routers.Session"

		sess, err := session.Get(SessionName, c)
		if sess == nil {
			r.log.Error("session store missing", slog.String("op", op), sl.Err(err))
			return c.JSON(http.StatusInternalServerError, response.ErrSessionUnavailable)
		}
		if err != nil {
			// undecodable cookie, a fresh session is issued below
			r.log.Debug("discarding session cookie", slog.String("op", op), sl.Err(err))
		}

		id, _ := sess.Values[sessionIDKey].(string)
		if id == "" {
			id = uuid.NewString()
			sess.Values[sessionIDKey] = id
			sess.Options = &sessions.Options{
				Path:     "/",
				MaxAge:   int(r.SessionMaxAge.Seconds()),
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			}

			if err := sess.Save(c.Request(), c.Response()); err != nil {
				r.log.Error("failed to save session", slog.String("op", op), sl.Err(err))
				return c.JSON(http.StatusInternalServerError, response.ErrSessionUnavailable)
			}
		}

		c.Set(sessionIDKey, id)

		return next(c)
	}
}

// Identify attaches the bearer token's user to the request context.
// Requests without a token act as the default user.
func (r *Routers) Identify(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get(echo.HeaderAuthorization)
		if header == "" {
			return next(c)
		}

		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			return c.JSON(http.StatusUnauthorized, response.ErrAuthenticationFailed)
		}

		user, err := r.AuthService.Authenticate(strings.TrimSpace(token))
		if err != nil {
			return c.JSON(http.StatusUnauthorized, response.ErrAuthenticationFailed)
		}

		c.SetRequest(c.Request().WithContext(auth.WithUser(c.Request().Context(), user)))

		return next(c)
	}
}

func (r *Routers) workflow(c echo.Context) *workflow.Workflow {
	id, _ := c.Get(sessionIDKey).(string)
	return r.SessionService.Workflow(id)
}

// commitContext keeps the submit running when the client goes away, so the
// commit resolves exactly once.
func (r *Routers) commitContext(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(c.Request().Context()), r.CommitTimeout)
}

func (r *Routers) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, response.Response{Status: "success", Message: "ok"})
}

func (r *Routers) Login(c echo.Context) error {
	const op = "http.routers.Login"

	log := r.log.With(
		slog.String("op", op),
	)

	var req request.LoginRequest

	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	if err := c.Validate(req); err != nil {
		log.Warn("invalid format request", sl.Err(err))
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails(response.CodeInvalidRequest, err.Error()))
	}

	token, err := r.AuthService.IssueToken(c.Request().Context(), models.CurrentUser{Name: req.Name, AvatarRef: req.Avatar})
	if err != nil {
		return r.fail(c, log, err, workflow.Outcome{})
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(map[string]string{"access_token": token}))
}

func (r *Routers) ListWorks(c echo.Context) error {
	return c.JSON(http.StatusOK, response.SuccessResponse(r.Catalog.List()))
}

func (r *Routers) RecentWorks(c echo.Context) error {
	var q request.RecentWorksQuery

	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &q); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	if err := c.Validate(q); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails(response.CodeInvalidRequest, err.Error()))
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(r.DirectoryService.RecentWorks(c.Request().Context(), q.Limit)))
}

func (r *Routers) FeaturedProviders(c echo.Context) error {
	return c.JSON(http.StatusOK, response.SuccessResponse(r.DirectoryService.FeaturedProviders(c.Request().Context())))
}

func (r *Routers) SessionState(c echo.Context) error {
	return c.JSON(http.StatusOK, response.SuccessResponse(r.workflow(c).Snapshot()))
}

func (r *Routers) OpenDraft(c echo.Context) error {
	const op = "http.routers.OpenDraft"

	draft, err := r.workflow(c).OpenPublish(c.Request().Context())
	if err != nil {
		return r.fail(c, r.log.With(slog.String("op", op)), err, workflow.Outcome{})
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(draft))
}

func (r *Routers) UpdateDraft(c echo.Context) error {
	const op = "http.routers.UpdateDraft"

	log := r.log.With(slog.String("op", op))

	var req request.UpdateDraftRequest

	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	wf := r.workflow(c)

	if req.Title == nil && req.Description == nil {
		snap := wf.Snapshot()
		switch snap.Publish.State {
		case workflow.StateEditing:
		case workflow.StatePending:
			return r.fail(c, log, workflow.ErrSubmitPending, workflow.Outcome{})
		default:
			return r.fail(c, log, workflow.ErrFlowNotOpen, workflow.Outcome{})
		}
		return c.JSON(http.StatusOK, response.SuccessResponse(snap.Publish.Draft))
	}

	var (
		draft models.NewWorkDraft
		err   error
	)

	if req.Title != nil {
		if draft, err = wf.SetTitle(*req.Title); err != nil {
			return r.fail(c, log, err, workflow.Outcome{})
		}
	}

	if req.Description != nil {
		if draft, err = wf.SetDescription(*req.Description); err != nil {
			return r.fail(c, log, err, workflow.Outcome{})
		}
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(draft))
}

// AttachImage sets the draft photo from the multipart field "image". A
// request without the field is a cancelled pick.
func (r *Routers) AttachImage(c echo.Context) error {
	const op = "http.routers.AttachImage"

	log := r.log.With(slog.String("op", op))

	file, err := c.FormFile("image")
	switch {
	case errors.Is(err, http.ErrMissingFile):
		file = nil
	case err != nil:
		log.Warn("invalid upload", sl.Err(err))
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	upload := filestorage.UploadPicker{
		Storage: r.Files,
		File:    file,
		SubPath: "works",
	}

	var saved string
	picker := workflow.PickerFunc(func(ctx context.Context) (string, bool, error) {
		ref, ok, err := upload.PickImage(ctx)
		if ok {
			saved = ref
		}
		return ref, ok, err
	})

	ctx := c.Request().Context()
	wf := r.workflow(c)
	previous := wf.Snapshot().Publish.Draft.ImageRef

	draft, err := wf.PickImage(ctx, picker)
	if err != nil {
		// the draft went away while the file was being stored
		r.discardUpload(ctx, log, saved)
		return r.fail(c, log, err, workflow.Outcome{})
	}

	if saved != "" && previous != "" && previous != draft.ImageRef {
		r.discardUpload(ctx, log, previous)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(draft))
}

func (r *Routers) SubmitDraft(c echo.Context) error {
	const op = "http.routers.SubmitDraft"

	ctx, cancel := r.commitContext(c)
	defer cancel()

	outcome, err := r.workflow(c).SubmitPublish(ctx)
	if err != nil {
		return r.fail(c, r.log.With(slog.String("op", op)), err, outcome)
	}

	return c.JSON(http.StatusCreated, response.Response{
		Status:  "success",
		Data:    outcome,
		Message: outcome.Message,
	})
}

// CancelDraft discards the open draft along with its uploaded photo.
func (r *Routers) CancelDraft(c echo.Context) error {
	const op = "http.routers.CancelDraft"

	log := r.log.With(slog.String("op", op))

	wf := r.workflow(c)
	draft := wf.Snapshot().Publish.Draft

	if err := wf.CancelPublish(); err != nil {
		return r.fail(c, log, err, workflow.Outcome{})
	}

	r.discardUpload(c.Request().Context(), log, draft.ImageRef)

	return c.NoContent(http.StatusNoContent)
}

// EndSession drops the session's workflow and clears its cookie. The next
// request starts a fresh session.
func (r *Routers) EndSession(c echo.Context) error {
	const op = "http.routers.EndSession"

	log := r.log.With(slog.String("op", op))

	id, _ := c.Get(sessionIDKey).(string)
	r.SessionService.Forget(id)

	sess, err := session.Get(SessionName, c)
	if sess == nil {
		log.Error("session store missing", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrSessionUnavailable)
	}

	delete(sess.Values, sessionIDKey)
	sess.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}

	if err := sess.Save(c.Request(), c.Response()); err != nil {
		log.Error("failed to clear session", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrSessionUnavailable)
	}

	return c.NoContent(http.StatusNoContent)
}

// DiscardSession removes the photo of a draft that was still being edited
// when its session ended. A pending draft keeps its photo for the commit.
func (r *Routers) DiscardSession(sessionID string, snap workflow.Snapshot) {
	if snap.Publish.State != workflow.StateEditing {
		return
	}

	log := r.log.With(
		slog.String("op", "http.routers.DiscardSession"),
		slog.String("session_id", sessionID),
	)

	r.discardUpload(context.Background(), log, snap.Publish.Draft.ImageRef)
}

func (r *Routers) discardUpload(ctx context.Context, log *slog.Logger, ref string) {
	if r.Files == nil || ref == "" {
		return
	}

	rel, ok := r.Files.Resolve(ref)
	if !ok {
		return
	}

	if err := r.Files.Delete(ctx, rel); err != nil {
		log.Warn("failed to delete discarded upload", slog.String("path", rel), sl.Err(err))
	}
}

func (r *Routers) OpenRating(c echo.Context) error {
	const op = "http.routers.OpenRating"

	draft, err := r.workflow(c).OpenRating(c.Request().Context(), c.Param("id"))
	if err != nil {
		return r.fail(c, r.log.With(slog.String("op", op)), err, workflow.Outcome{})
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(draft))
}

func (r *Routers) SelectRating(c echo.Context) error {
	const op = "http.routers.SelectRating"

	log := r.log.With(slog.String("op", op))

	var req request.SelectRatingRequest

	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails(response.CodeInvalidRequest, err.Error()))
	}

	draft, err := r.workflow(c).SelectRating(*req.Rating)
	if err != nil {
		return r.fail(c, log, err, workflow.Outcome{})
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(draft))
}

func (r *Routers) SubmitRating(c echo.Context) error {
	const op = "http.routers.SubmitRating"

	ctx, cancel := r.commitContext(c)
	defer cancel()

	outcome, err := r.workflow(c).SubmitRating(ctx)
	if err != nil {
		return r.fail(c, r.log.With(slog.String("op", op)), err, outcome)
	}

	return c.JSON(http.StatusOK, response.Response{
		Status:  "success",
		Data:    outcome,
		Message: outcome.Message,
	})
}

func (r *Routers) CancelRating(c echo.Context) error {
	const op = "http.routers.CancelRating"

	if err := r.workflow(c).CancelRating(); err != nil {
		return r.fail(c, r.log.With(slog.String("op", op)), err, workflow.Outcome{})
	}

	return c.NoContent(http.StatusNoContent)
}

// fail maps workflow and storage errors to responses. outcome carries the
// user-facing message when the error came out of a submit.
func (r *Routers) fail(c echo.Context, log *slog.Logger, err error, outcome workflow.Outcome) error {
	var (
		verr *workflow.ValidationError
		cerr *workflow.CommitError
	)

	resp := response.ErrorResponse{Status: "error", Details: outcome.Message}
	status := http.StatusInternalServerError

	switch {
	case errors.As(err, &verr):
		status = http.StatusUnprocessableEntity
		resp.Error = verr.Code
		resp.Fields = verr.Fields
		if resp.Details == "" {
			resp.Details = verr.Error()
		}
	case errors.As(err, &cerr):
		status = http.StatusBadGateway
		resp.Error = response.CodeCommitFailed
		resp.Retry = true
	case errors.Is(err, workflow.ErrSubmitPending):
		status = http.StatusConflict
		resp.Error = response.CodeSubmitPending
		resp.Details = workflow.ErrSubmitPending.Error()
	case errors.Is(err, workflow.ErrFlowBusy):
		status = http.StatusConflict
		resp.Error = response.CodeFlowBusy
		resp.Details = workflow.ErrFlowBusy.Error()
	case errors.Is(err, workflow.ErrFlowNotOpen):
		status = http.StatusConflict
		resp.Error = response.CodeFlowNotOpen
		resp.Details = workflow.ErrFlowNotOpen.Error()
	case errors.Is(err, storage.ErrWorkNotFound):
		status = http.StatusNotFound
		resp.Error = response.CodeWorkNotFound
		if resp.Details == "" {
			resp.Details = storage.ErrWorkNotFound.Error()
		}
	case errors.Is(err, storage.ErrInvalidFileType):
		status = http.StatusUnsupportedMediaType
		resp.Error = response.CodeInvalidFileType
		resp.Details = storage.ErrInvalidFileType.Error()
	case errors.Is(err, storage.ErrFileTooLarge):
		status = http.StatusRequestEntityTooLarge
		resp.Error = response.CodeFileTooLarge
		resp.Details = storage.ErrFileTooLarge.Error()
	case errors.Is(err, auth.ErrInvalidCredentials):
		status = http.StatusUnauthorized
		resp = response.ErrAuthenticationFailed
	default:
		log.Error("request failed", sl.Err(err))
		resp.Error = response.CodeInternal
		if resp.Details == "" {
			resp.Details = "internal server error"
		}
		return c.JSON(status, resp)
	}

	log.Debug("request rejected", slog.Int("status", status), sl.Err(err))

	return c.JSON(status, resp)
}

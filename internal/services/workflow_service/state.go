package services

import "atelieconnect/internal/domain/models"

type FlowName string

const (
	FlowPublish FlowName = "publish"
	FlowRating  FlowName = "rating"
)

type State string

const (
	StateIdle       State = "idle"
	StateEditing    State = "editing"
	StateValidating State = "validating"
	StatePending    State = "pending"
	StateCommitted  State = "committed"
	StateRejected   State = "rejected"
)

// StateChanged is published on every flow transition, including the
// transient validating, committed and rejected states.
type StateChanged struct {
	Flow FlowName `json:"flow"`
	From State    `json:"from"`
	To   State    `json:"to"`
}

type OutcomeKind string

const (
	OutcomeSuccess OutcomeKind = "success"
	OutcomeFailure OutcomeKind = "failure"
)

// Outcome is the user-facing result of a submit.
type Outcome struct {
	Flow    FlowName     `json:"flow"`
	Kind    OutcomeKind  `json:"kind"`
	Title   string       `json:"title"`
	Message string       `json:"message"`
	Retry   bool         `json:"retry"`
	Work    *models.Work `json:"work,omitempty"`
}

const (
	titleSuccess = "Sucesso"
	titleError   = "Erro"

	msgWorkPublished  = "Trabalho publicado com sucesso!"
	msgRatingSent     = "Avaliação enviada com sucesso!"
	msgMissingFields  = "Por favor, preencha todos os campos."
	msgNoRating       = "Por favor, selecione uma avaliação."
	msgPublishFailed  = "Não foi possível publicar o trabalho. Tente novamente."
	msgRatingFailed   = "Não foi possível enviar a avaliação. Tente novamente."
	msgUnexpectedFail = "Ocorreu um erro inesperado."
)

func success(flow FlowName, msg string) Outcome {
	return Outcome{Flow: flow, Kind: OutcomeSuccess, Title: titleSuccess, Message: msg}
}

func failure(flow FlowName, msg string, retry bool) Outcome {
	return Outcome{Flow: flow, Kind: OutcomeFailure, Title: titleError, Message: msg, Retry: retry}
}

// Submission results reported to the Recorder.
const (
	ResultCommitted = "committed"
	ResultRejected  = "rejected"
	ResultInvalid   = "invalid"
	ResultIgnored   = "ignored"
	ResultFailed    = "failed"
)

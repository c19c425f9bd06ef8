package response

const (
	CodeInvalidRequest  = "invalid_request"
	CodeAuthentication  = "authentication_failed"
	CodeSubmitPending   = "submit_pending"
	CodeFlowBusy        = "flow_busy"
	CodeFlowNotOpen     = "flow_not_open"
	CodeWorkNotFound    = "work_not_found"
	CodeCommitFailed    = "commit_failed"
	CodeInvalidFileType = "invalid_file_type"
	CodeFileTooLarge    = "file_too_large"
	CodeInternal        = "internal_error"
)

var (
	ErrInvalidRequestFormat = ErrorResponse{
		Status:  "error",
		Error:   CodeInvalidRequest,
		Details: "Invalid request format",
	}

	ErrAuthenticationFailed = ErrorResponse{
		Status:  "error",
		Error:   CodeAuthentication,
		Details: "Invalid or expired token",
	}

	ErrSessionUnavailable = ErrorResponse{
		Status:  "error",
		Error:   CodeInternal,
		Details: "Session unavailable",
	}
)

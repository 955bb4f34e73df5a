package apply

// GateErrorKind identifies which safety gate rejected an apply.
type GateErrorKind string

const (
	KindConfirmation  GateErrorKind = "confirmation"
	KindConflict      GateErrorKind = "conflict"
	KindUnknownCommit GateErrorKind = "unknown_commit"
	KindHeadMoved     GateErrorKind = "head_moved"
	KindScope         GateErrorKind = "scope"
)

// GateError is a typed apply failure. The message names the specific
// violated condition and is surfaced to callers verbatim; nothing is
// downgraded to a warning.
type GateError struct {
	Kind    GateErrorKind
	Message string
}

func (e *GateError) Error() string {
	return e.Message
}

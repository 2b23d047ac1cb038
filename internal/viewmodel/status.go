package viewmodel

type StatusKind int

const (
	KindIdle StatusKind = iota
	KindLoading
	KindSuccess
	KindError
)

func (k StatusKind) String() string {
	switch k {
	case KindLoading:
		return "loading"
	case KindSuccess:
		return "success"
	case KindError:
		return "error"
	default:
		return "idle"
	}
}

// Status is the outcome of the last operation of a view-model. Message is
// set only for KindError.
type Status struct {
	Kind    StatusKind
	Message string
}

var (
	StatusIdle    = Status{Kind: KindIdle}
	StatusLoading = Status{Kind: KindLoading}
	StatusSuccess = Status{Kind: KindSuccess}
)

func StatusError(message string) Status {
	return Status{Kind: KindError, Message: message}
}

func (s Status) IsError() bool { return s.Kind == KindError }

func (s Status) String() string {
	if s.Kind == KindError {
		return "error: " + s.Message
	}
	return s.Kind.String()
}

// UserIDSource yields the signed-in backend user id, or "".
type UserIDSource interface {
	UserID() string
}

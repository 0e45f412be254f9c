package deploy

import (
	"github.com/rotisserie/eris"
)

// Kind classifies a deployment failure.
type Kind int

const (
	// KindConfiguration means a required setting is missing or malformed.
	KindConfiguration Kind = iota + 1
	// KindPrecondition means the local project is not ready to deploy.
	KindPrecondition
	// KindRemoteOperation means an MMC call failed.
	KindRemoteOperation
)

func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindPrecondition:
		return "precondition"
	case KindRemoteOperation:
		return "remote operation"
	default:
		return "unknown"
	}
}

// Steps of a run, used as Error.Op and in progress reports. OpReplace is
// reported once for the lookup and the optional delete of a snapshot.
const (
	OpValidate = "validate"
	OpReplace  = "replace snapshot version"
	OpLookup   = "lookup version"
	OpDelete   = "delete version"
	OpUpload   = "upload archive"
	OpCreate   = "create deployment"
	OpTrigger  = "trigger deployment"
)

// RemotePrefix starts the message of every remote operation failure.
const RemotePrefix = "Error in attempting to deploy archive: "

// Sentinels for errors.Is. A *Error matches the sentinel of its Kind.
var (
	ErrConfiguration   = eris.New("configuration error")
	ErrPrecondition    = eris.New("precondition error")
	ErrRemoteOperation = eris.New("remote operation error")
)

// Error is the single failure type returned by Deployer.Deploy.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Kind == KindRemoteOperation {
		return RemotePrefix + e.Err.Error()
	}
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	switch target {
	case ErrConfiguration:
		return e.Kind == KindConfiguration
	case ErrPrecondition:
		return e.Kind == KindPrecondition
	case ErrRemoteOperation:
		return e.Kind == KindRemoteOperation
	default:
		return false
	}
}

// stepError tags a raw client error with the step that produced it until it
// reaches the boundary in toFailure.
type stepError struct {
	op  string
	err error
}

func (s *stepError) Error() string { return s.err.Error() }

func (s *stepError) Unwrap() error { return s.err }

// toFailure maps any error leaving a run onto *Error. It is the only place
// remote errors get their kind and prefix.
func toFailure(err error) *Error {
	if err == nil {
		return nil
	}
	if failure, ok := err.(*Error); ok { //nolint:errorlint // validation returns *Error unwrapped
		return failure
	}
	if step, ok := err.(*stepError); ok { //nolint:errorlint // stepError is never wrapped
		return &Error{Kind: KindRemoteOperation, Op: step.op, Err: step.err}
	}
	return &Error{Kind: KindRemoteOperation, Err: err}
}

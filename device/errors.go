package device

import "github.com/cockroachdb/errors"

// Errors reported by backends and by code orchestrating them. Backends
// wrap or mark their errors with one of these, so callers can classify
// failures with errors.Is or Kind.
var (
	ErrNoDevice                = errors.New("no compute device available")
	ErrCommandQueueUnavailable = errors.New("command queue unavailable")
	ErrKernelUnavailable       = errors.New("compute kernel unavailable")
	ErrPipelineBuildFailed     = errors.New("compute pipeline build failed")
	ErrBufferAllocationFailed  = errors.New("buffer allocation failed")
)

// An ErrorKind classifies device errors.
type ErrorKind int

const (
	KindNone ErrorKind = iota
	KindNoDevice
	KindCommandQueueUnavailable
	KindKernelUnavailable
	KindPipelineBuildFailed
	KindBufferAllocationFailed
	KindOther
)

func (k ErrorKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindNoDevice:
		return "NoDevice"
	case KindCommandQueueUnavailable:
		return "CommandQueueUnavailable"
	case KindKernelUnavailable:
		return "KernelUnavailable"
	case KindPipelineBuildFailed:
		return "PipelineBuildFailed"
	case KindBufferAllocationFailed:
		return "BufferAllocationFailed"
	default:
		return "Other"
	}
}

// Kind returns the kind of err. It returns KindNone for a nil error, and
// KindOther for errors that are not device errors.
func Kind(err error) ErrorKind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrNoDevice):
		return KindNoDevice
	case errors.Is(err, ErrCommandQueueUnavailable):
		return KindCommandQueueUnavailable
	case errors.Is(err, ErrKernelUnavailable):
		return KindKernelUnavailable
	case errors.Is(err, ErrPipelineBuildFailed):
		return KindPipelineBuildFailed
	case errors.Is(err, ErrBufferAllocationFailed):
		return KindBufferAllocationFailed
	default:
		return KindOther
	}
}

// markf wraps err with a formatted message and marks the result as kind,
// unless err already is of that kind.
func markf(err error, kind error, format string, args ...interface{}) error {
	wrapped := errors.Wrapf(err, format, args...)
	if errors.Is(err, kind) {
		return wrapped
	}
	return errors.Mark(wrapped, kind)
}

// Mark wraps err with msg and marks it as kind, so that errors.Is(result,
// kind) holds while the original cause stays available.
func Mark(err error, kind error, msg string) error {
	return markf(err, kind, "%s", msg)
}

package extract

import (
	"fmt"

	"github.com/rotisserie/eris"
)

// ErrorKind classifies extraction failures.
type ErrorKind int

const (
	KindMalformedResponse ErrorKind = iota + 1
	KindNoDelimitersFound
	KindTimeout
)

func (k ErrorKind) String() string {
	switch k {
	case KindMalformedResponse:
		return "malformed_response"
	case KindNoDelimitersFound:
		return "no_delimiters_found"
	case KindTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// Sentinels for errors.Is against an *ExtractionError.
var (
	ErrMalformedResponse = eris.New("extract: model response is not a JSON object")
	ErrNoDelimitersFound = eris.New("extract: no record delimiters found")
	ErrTimeout           = eris.New("extract: provider timed out")

	// ErrEmptySegment marks a batch segment with no text after its marker.
	ErrEmptySegment = eris.New("extract: empty batch segment")
)

// ExtractionError is returned when a response cannot become a record.
type ExtractionError struct {
	Kind ErrorKind
	// Raw holds the cleaned model output for MalformedResponse.
	Raw string
	Err error
}

func (e *ExtractionError) Error() string {
	switch e.Kind {
	case KindMalformedResponse:
		if e.Err != nil {
			return fmt.Sprintf("extract: malformed response: %v: %q", e.Err, truncate(e.Raw, 200))
		}
		return fmt.Sprintf("extract: malformed response: %q", truncate(e.Raw, 200))
	case KindNoDelimitersFound:
		return "extract: no record delimiters found"
	case KindTimeout:
		if e.Err != nil {
			return fmt.Sprintf("extract: provider timed out: %v", e.Err)
		}
		return "extract: provider timed out"
	default:
		return fmt.Sprintf("extract: %v", e.Err)
	}
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// Is matches the sentinel for e.Kind.
func (e *ExtractionError) Is(target error) bool {
	switch e.Kind {
	case KindMalformedResponse:
		return target == ErrMalformedResponse
	case KindNoDelimitersFound:
		return target == ErrNoDelimitersFound
	case KindTimeout:
		return target == ErrTimeout
	}
	return false
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

package kdlt

import (
	"sync"

	"github.com/reoring/kdlt/internal/parser"
	"github.com/reoring/kdlt/kdl"
)

// DocumentDriver converts raw text into the primitive node tree via a
// pluggable SPI. The built-in driver is a hand-written parser; it may be
// swapped with SetDocumentDriver for another implementation, as long as the
// replacement fills reprs and trivia so that the size invariant (and with it
// every span) stays exact.
//
// Parse returns a best-effort document: on syntax errors the document holds
// whatever parsed cleanly and the error lists every problem found.
type DocumentDriver interface {
	Parse(src []byte) (*kdl.Document, error)
	Name() string
}

var (
	docDriverMu      sync.RWMutex
	currentDocDriver DocumentDriver = defaultDocDriver{}
)

// SetDocumentDriver replaces the global document driver; nil values are ignored.
func SetDocumentDriver(d DocumentDriver) {
	if d == nil {
		return
	}
	docDriverMu.Lock()
	currentDocDriver = d
	docDriverMu.Unlock()
}

// UseDefaultDocumentDriver restores the built-in parser.
func UseDefaultDocumentDriver() {
	docDriverMu.Lock()
	currentDocDriver = defaultDocDriver{}
	docDriverMu.Unlock()
}

func getDocumentDriver() DocumentDriver {
	docDriverMu.RLock()
	d := currentDocDriver
	docDriverMu.RUnlock()
	return d
}

// defaultDocDriver wraps the built-in parser.
type defaultDocDriver struct{}

func (defaultDocDriver) Parse(src []byte) (*kdl.Document, error) { return parser.Parse(src) }
func (defaultDocDriver) Name() string                            { return "kdlt/internal/parser" }

// driverIssues converts a driver error into Issues, one parse_error per
// recorded syntax problem, spans preserved.
func driverIssues(err error) Issues {
	if err == nil {
		return nil
	}
	if iss, ok := AsIssues(err); ok {
		return iss
	}
	if perrs, ok := err.(parser.Errors); ok {
		out := make(Issues, 0, len(perrs))
		for _, pe := range perrs {
			out = append(out, Issue{
				Span:    kdl.Span{Offset: uint32(pe.Offset), Size: uint32(pe.Size)},
				Code:    CodeParseError,
				Message: pe.Msg,
			})
		}
		return out
	}
	return Issues{{Code: CodeParseError, Message: err.Error(), Cause: err}}
}

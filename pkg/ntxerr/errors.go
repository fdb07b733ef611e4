// Package ntxerr declares the error conditions shared by every ntxbuild
// package and maps them onto the failure kinds reported to the user.
package ntxerr

import (
	"errors"
	"fmt"

	"github.com/rotisserie/eris"
)

// Kind classifies an error for reporting and exit-code selection.
type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindInvalid
	KindExternal
	KindCorrupt
	KindNotInitialized
)

var kindNames = map[Kind]string{
	KindUnknown:        "unknown",
	KindNotFound:       "not found",
	KindInvalid:        "invalid",
	KindExternal:       "external failure",
	KindCorrupt:        "state corruption",
	KindNotInitialized: "not initialized",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Conditions. Messages must stay distinct: eris compares by message.
var (
	ErrWorkspaceNotFound = eris.New("NuttX workspace not found. Make sure nuttx and apps directories are present")
	ErrRecordNotFound    = eris.New("environment record not found")
	ErrSymbolNotFound    = eris.New("kconfig option not found")
	ErrBoardNotFound     = eris.New("board not found")

	ErrBadFormat      = eris.New("set value must be string representation of a numerical or hexadecimal value")
	ErrWrongType      = eris.New("wrong symbol type")
	ErrNotAssignable  = eris.New("symbol is not assignable")
	ErrOutOfRange     = eris.New("value is outside the option's range")
	ErrSourceRequired = eris.New("source file is required")
	ErrInvalidArg     = eris.New("invalid argument")

	ErrRecordCorrupt  = eris.New("environment record is corrupt")
	ErrNotInitialized = eris.New(".config not found, NuttX must be initialized first")
	ErrStart          = eris.New("failed to start process")
)

var kinds = []struct {
	err  error
	kind Kind
}{
	{ErrWorkspaceNotFound, KindNotFound},
	{ErrRecordNotFound, KindNotFound},
	{ErrSymbolNotFound, KindNotFound},
	{ErrBoardNotFound, KindNotFound},
	{ErrBadFormat, KindInvalid},
	{ErrWrongType, KindInvalid},
	{ErrNotAssignable, KindInvalid},
	{ErrOutOfRange, KindInvalid},
	{ErrSourceRequired, KindInvalid},
	{ErrInvalidArg, KindInvalid},
	{ErrRecordCorrupt, KindCorrupt},
	{ErrNotInitialized, KindNotInitialized},
	{ErrStart, KindExternal},
}

// ExternalError reports a delegated tool that exited nonzero.
type ExternalError struct {
	Tool string
	Code int
}

func (e *ExternalError) Error() string {
	return fmt.Sprintf("%s exited with code %d", e.Tool, e.Code)
}

// External returns an *ExternalError, or nil when code is zero.
func External(tool string, code int) error {
	if code == 0 {
		return nil
	}
	return &ExternalError{Tool: tool, Code: code}
}

// KindOf returns the kind of the first known condition in err's chain.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	var ext *ExternalError
	if errors.As(err, &ext) {
		return KindExternal
	}
	for _, k := range kinds {
		if eris.Is(err, k.err) {
			return k.kind
		}
	}
	return KindUnknown
}

// ExitCode maps err to a process exit code. External failures keep the
// tool's own code.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var ext *ExternalError
	if errors.As(err, &ext) {
		if ext.Code < 0 {
			return 1
		}
		return ext.Code
	}
	if KindOf(err) == KindInvalid {
		return 2
	}
	return 1
}

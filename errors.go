package calculus

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies a failure raised by one of the passes.
type ErrorKind string

const (
	UnsupportedArity       ErrorKind = "UnsupportedArity"
	UnsupportedFunction    ErrorKind = "UnsupportedFunction"
	DivisionByZero         ErrorKind = "DivisionByZero"
	UnknownExpressionShape ErrorKind = "UnknownExpressionShape"
	WrongArity             ErrorKind = "WrongArity"
	UnknownFunction        ErrorKind = "UnknownFunction"
	NotSupported           ErrorKind = "NotSupported"
	InvalidArgument        ErrorKind = "InvalidArgument"
)

// Sentinels for errors.Is. They match any *Error of the same kind.
var (
	ErrUnsupportedArity       = &Error{Kind: UnsupportedArity}
	ErrUnsupportedFunction    = &Error{Kind: UnsupportedFunction}
	ErrDivisionByZero         = &Error{Kind: DivisionByZero}
	ErrUnknownExpressionShape = &Error{Kind: UnknownExpressionShape}
	ErrWrongArity             = &Error{Kind: WrongArity}
	ErrUnknownFunction        = &Error{Kind: UnknownFunction}
	ErrNotSupported           = &Error{Kind: NotSupported}
	ErrInvalidArgument        = &Error{Kind: InvalidArgument}
)

// Error is returned by every pass in this package. Expr holds the offending
// subtree, if any.
type Error struct {
	Kind ErrorKind
	Op   string
	Expr Expr
	Msg  string
}

func (e *Error) Error() string {
	var sb strings.Builder
	if e.Op != "" {
		sb.WriteString(e.Op)
		sb.WriteString(": ")
	}
	sb.WriteString(string(e.Kind))
	if e.Msg != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Msg)
	}
	if e.Expr != nil {
		sb.WriteString(" in ")
		sb.WriteString(e.Expr.String())
	}
	return sb.String()
}

// Is matches on Kind only.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// NewError builds an *Error for op with a formatted message.
func NewError(kind ErrorKind, op string, expr Expr, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Op: op, Expr: expr, Msg: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of the first *Error in err's chain, or "".
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func unknownShape(op string, e Expr) *Error {
	return NewError(UnknownExpressionShape, op, e, "unexpected node %T", e)
}

package lang

import (
	"fmt"

	"github.com/pkg/errors"
)

type DeclKind string

const (
	DeclOperator  DeclKind = "operator"
	DeclSingleton DeclKind = "singleton"
	DeclPattern   DeclKind = "pattern"
	DeclAlias     DeclKind = "alias"
	DeclComposite DeclKind = "composite"
	DeclLiteral   DeclKind = "literal operator"
	DeclKnown     DeclKind = "known fact"
)

type DuplicateDeclarationError struct {
	Name string
	// Existing is what the name is already declared as.
	Existing DeclKind
}

func (e *DuplicateDeclarationError) Error() string {
	return fmt.Sprintf("%s already declared as %s", e.Name, e.Existing)
}

type ReservedNameError struct {
	Name string
}

func (e *ReservedNameError) Error() string {
	return fmt.Sprintf("%s is a reserved name", e.Name)
}

type UndeclaredOperatorError struct {
	Name string
}

func (e *UndeclaredOperatorError) Error() string {
	return fmt.Sprintf("operator not declared: %s", e.Name)
}

type UndeclaredVariableError struct {
	Name string
}

func (e *UndeclaredVariableError) Error() string {
	return fmt.Sprintf("variable not declared: %s", e.Name)
}

type ArityMismatchError struct {
	Name   string
	Wanted int
	Got    int
}

func (e *ArityMismatchError) Error() string {
	return fmt.Sprintf("%s takes %d arguments; given %d", e.Name, e.Wanted, e.Got)
}

type UndeclaredKnownError struct {
	Name string
}

func (e *UndeclaredKnownError) Error() string {
	return fmt.Sprintf("no known fact named %s", e.Name)
}

type notNegatable struct {
	Fact Fact
}

func (e *notNegatable) Error() string {
	return fmt.Sprintf("can't negate %s", e.Fact)
}

// ErrNoLiteral is what a LiteralResolver returns when it has no value for the call.
var ErrNoLiteral = errors.New("literal operator produced no symbol")

// IsDuplicateDeclaration reports whether err (or its cause) is a DuplicateDeclarationError.
func IsDuplicateDeclaration(err error) bool {
	var target *DuplicateDeclarationError
	return errors.As(err, &target)
}

func IsUndeclaredOperator(err error) bool {
	var target *UndeclaredOperatorError
	return errors.As(err, &target)
}

func IsArityMismatch(err error) bool {
	var target *ArityMismatchError
	return errors.As(err, &target)
}

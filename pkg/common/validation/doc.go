// Package validation provides the argument checks used by admit constructors.
//
// Every failure is reported as a *errors.ValidationError so callers can test
// for configuration mistakes with errors.Is(err, errors.ErrInvalidConfiguration).
package validation

package nodeflow

import (
	stderrors "errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

// ErrInvalidState indicates a state failed schema validation.
var ErrInvalidState = stderrors.New("invalid state")

// StateValidationError reports a state rejected by validation. The store
// keeps its previous state.
type StateValidationError struct {
	// Fields lists the failing fields as "Namespace: tag".
	Fields []string
	// Err is the underlying validation error.
	Err error
}

// Error implements the error interface.
func (e *StateValidationError) Error() string {
	if len(e.Fields) > 0 {
		return "invalid state: " + strings.Join(e.Fields, ", ")
	}
	return "invalid state: " + e.Err.Error()
}

// Unwrap returns ErrInvalidState and the underlying error.
func (e *StateValidationError) Unwrap() []error {
	return []error{ErrInvalidState, e.Err}
}

// stateValidator is shared by all stores; validator caches struct metadata
// and is safe for concurrent use.
var stateValidator = validator.New(validator.WithRequiredStructEnabled())

// validateStruct checks `validate` struct tags. Non-struct states pass.
func validateStruct(state any) error {
	rv := reflect.ValueOf(state)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}

	err := stateValidator.Struct(state)
	if err == nil {
		return nil
	}

	verr := newStateValidationError(err)
	var fieldErrs validator.ValidationErrors
	if stderrors.As(err, &fieldErrs) {
		for _, fe := range fieldErrs {
			verr.Fields = append(verr.Fields, fe.Namespace()+": "+fe.Tag())
		}
	}
	return verr
}

func newStateValidationError(err error) *StateValidationError {
	return &StateValidationError{Err: errors.Wrap(err, "validate state")}
}

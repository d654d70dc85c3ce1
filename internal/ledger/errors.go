package ledger

import (
	"errors"
	"fmt"
)

// ValidationError rejects a single mutation. It carries a stable code
// for programmatic handling, the offending field when one can be named,
// and a human-readable message. Validation errors never mutate state:
// the store applies a mutation only when validation produced none.
type ValidationError struct {
	Code    ValidationCode
	Field   string
	Message string
}

// ValidationCode categorizes validation failures.
type ValidationCode string

const (
	// CodeMissingID indicates the payload has no record ID.
	CodeMissingID ValidationCode = "MISSING_ID"

	// CodeDuplicateID indicates a create with an ID already in use.
	CodeDuplicateID ValidationCode = "DUPLICATE_ID"

	// CodeNotFound indicates an update/delete of a record that does not exist.
	CodeNotFound ValidationCode = "NOT_FOUND"

	// CodeUnknownEntity indicates an unrecognized entity kind. Derived
	// views are not entities; mutating them is not a supported operation.
	CodeUnknownEntity ValidationCode = "UNKNOWN_ENTITY"

	// CodeUnsupportedOp indicates an operation the entity does not allow.
	CodeUnsupportedOp ValidationCode = "UNSUPPORTED_OP"

	// CodeUnresolvedRef indicates a reference to a record that does not exist.
	CodeUnresolvedRef ValidationCode = "UNRESOLVED_REF"

	// CodeRecordInUse indicates a delete of a record other records reference.
	CodeRecordInUse ValidationCode = "RECORD_IN_USE"

	// CodeInactiveCustomer indicates a new invoice for a deactivated customer.
	CodeInactiveCustomer ValidationCode = "INACTIVE_CUSTOMER"

	// CodeInvalidCategory indicates a category outside Settings.Categories.
	CodeInvalidCategory ValidationCode = "INVALID_CATEGORY"

	// CodeInvalidPaymentMethod indicates a method outside Settings.PaymentMethods.
	CodeInvalidPaymentMethod ValidationCode = "INVALID_PAYMENT_METHOD"

	// CodeInvalidRate indicates a VAT rate outside [0, 1].
	CodeInvalidRate ValidationCode = "INVALID_RATE"

	// CodeInvalidValue indicates any other field constraint violation
	// (negative amount, non-positive quantity, missing line items).
	CodeInvalidValue ValidationCode = "INVALID_VALUE"

	// CodeValueInUse indicates a settings update dropping a category or
	// payment method that stored records still reference.
	CodeValueInUse ValidationCode = "VALUE_IN_USE"
)

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s (field=%s)", e.Code, e.Message, e.Field)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func newError(code ValidationCode, field, format string, args ...any) *ValidationError {
	return &ValidationError{
		Code:    code,
		Field:   field,
		Message: fmt.Sprintf(format, args...),
	}
}

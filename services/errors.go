package services

// ErrorKind is the machine-readable error classification carried on every
// failure response next to the human message.
type ErrorKind string

const (
	KindValidation        ErrorKind = "validation_error"
	KindNotFound          ErrorKind = "not_found"
	KindForbidden         ErrorKind = "forbidden"
	KindConflict          ErrorKind = "conflict"
	KindInsufficientStock ErrorKind = "insufficient_stock"
	KindInvalidTransition ErrorKind = "invalid_transition"
	KindDependencyFailure ErrorKind = "dependency_failure"
)

// ServiceError represents a typed error with an HTTP status code.
type ServiceError struct {
	StatusCode int
	Kind       ErrorKind
	Message    string
	// Details carries actionable context for the caller: known product
	// names, available stock, the full shortfall list, and so on.
	Details map[string]interface{}
}

func (e *ServiceError) Error() string {
	return e.Message
}

func (e *ServiceError) withDetail(key string, value interface{}) *ServiceError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

func validationError(message string) *ServiceError {
	return &ServiceError{StatusCode: 400, Kind: KindValidation, Message: message}
}

func notFoundError(message string) *ServiceError {
	return &ServiceError{StatusCode: 404, Kind: KindNotFound, Message: message}
}

func forbiddenError(message string) *ServiceError {
	return &ServiceError{StatusCode: 403, Kind: KindForbidden, Message: message}
}

func conflictError(message string) *ServiceError {
	return &ServiceError{StatusCode: 409, Kind: KindConflict, Message: message}
}

func insufficientStockError(message string) *ServiceError {
	return &ServiceError{StatusCode: 400, Kind: KindInsufficientStock, Message: message}
}

func invalidTransitionError(message string) *ServiceError {
	return &ServiceError{StatusCode: 409, Kind: KindInvalidTransition, Message: message}
}

func dependencyError(message string) *ServiceError {
	return &ServiceError{StatusCode: 500, Kind: KindDependencyFailure, Message: message}
}

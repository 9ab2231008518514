package admission

import "errors"

const Namespace = "workgate/admission"

var (
	ErrInvalidCeiling   = errors.New(Namespace + ": ceiling must be greater than zero")
	ErrAdmissionTimeout = errors.New(Namespace + ": no ticket available within timeout")
	ErrDoubleRelease    = errors.New(Namespace + ": ticket released twice")
)

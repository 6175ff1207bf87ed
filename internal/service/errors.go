package service

import "errors"

// Sentinel errors shared across the service layer. Handlers map them to HTTP
// statuses and stable machine-readable codes with errors.Is.
var (
	ErrValidation         = errors.New("validation")               // 400
	ErrAuth               = errors.New("auth")                     // 401
	ErrNotFound           = errors.New("not found")                // 404
	ErrConflict           = errors.New("conflict")                 // 409
	ErrInvalidTransition  = errors.New("invalid state transition") // 409
	ErrAlreadyLinked      = errors.New("payment already linked")   // 409
	ErrSignatureMismatch  = errors.New("signature mismatch")       // 400
	ErrGatewayUnavailable = errors.New("gateway unavailable")      // 502
	ErrPersistence        = errors.New("persistence")              // 500
)

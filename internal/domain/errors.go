package domain

import "errors"

var (
	ErrInvalidLength       = errors.New("invalid digest length")
	ErrInvalidEncoding     = errors.New("invalid hex encoding")
	ErrMalformedRecord     = errors.New("malformed signature record")
	ErrInvalidKey          = errors.New("invalid key")
	ErrProofDecode         = errors.New("malformed proof envelope")
	ErrProofInvalid        = errors.New("proof verification failed")
	ErrTransport           = errors.New("transport failure")
	ErrNotFound            = errors.New("not found")
	ErrEpochNotConsecutive = errors.New("epochs are not consecutive")
	ErrEquivocation        = errors.New("conflicting digest for epoch")
	ErrUnknownCiphersuite  = errors.New("unknown ciphersuite")
	ErrInvalidRoot         = errors.New("invalid namespace root")
)

package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidArgument     = errors.New("invalid argument")
	ErrNotFound            = errors.New("resource not found")
	ErrParse               = errors.New("parse error")
	ErrExternalService     = errors.New("external service error")
	ErrNoEligibleDocuments = errors.New("no eligible documents for any requested bank")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrUnsupportedFileType = errors.New("unsupported file type")
)

// NotFound reasons reported by the document locator. Both match ErrNotFound.
var (
	ErrDocumentDirMissing = fmt.Errorf("%w: document directory does not exist", ErrNotFound)
	ErrNoMatchingDocument = fmt.Errorf("%w: no matching document", ErrNotFound)
	ErrResultNotFound     = fmt.Errorf("%w: consolidated result", ErrNotFound)
	ErrPromptNotFound     = fmt.Errorf("%w: prompt file", ErrNotFound)
)

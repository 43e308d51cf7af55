package questions

import "errors"

var (
	ErrNotFound         = errors.New("question not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrDocumentNotReady = errors.New("document is not ready for analysis")
	ErrUpstream         = errors.New("upstream service failed")
	ErrMalformedReply   = errors.New("malformed analysis reply")
)

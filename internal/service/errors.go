package service

import "errors"

// ErrInvalidInput indicates a malformed request that the caller must correct.
var ErrInvalidInput = errors.New("invalid input")

// ErrSessionNotFound indicates the session could not be located.
var ErrSessionNotFound = errors.New("session not found")

// ErrNotReady indicates the session exists but its evaluation has not completed.
var ErrNotReady = errors.New("evaluation not ready")

// ErrAnalysisUnavailable indicates a transient upstream failure; a fresh
// submission may succeed.
var ErrAnalysisUnavailable = errors.New("analysis engine unavailable")

// ErrUnsupportedMedia indicates the upload was permanently rejected.
var ErrUnsupportedMedia = errors.New("unsupported media type")

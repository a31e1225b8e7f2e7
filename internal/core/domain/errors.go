package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrConnectivity indicates a transient network failure during a
	// remote fetch. Recoverable by retry or by falling back to the
	// durable-cache path.
	ErrConnectivity = errors.New("no connection")

	// ErrRemote indicates the LMS responded with a server error.
	ErrRemote = errors.New("server error")

	// ErrNoCachedData indicates the durable cache holds nothing for the
	// requested course. Distinct from ErrConnectivity so the caller can
	// explain "nothing saved yet" rather than "check your connection".
	ErrNoCachedData = errors.New("no cached data for course")

	// ErrNotLoaded indicates a structure query was made before any
	// successful load this session. A sequencing error, not a
	// user-facing condition.
	ErrNotLoaded = errors.New("course structure not loaded")

	// ErrWifiRequired indicates downloads are restricted to Wi-Fi and
	// the device is not on Wi-Fi. Surfaced once per request as a
	// notification, never persisted as an error state.
	ErrWifiRequired = errors.New("downloads allowed only on Wi-Fi")

	// Authentication errors.

	// ErrAuthRequired indicates no credentials are configured.
	ErrAuthRequired = errors.New("authentication required")

	// ErrAuthExpired indicates the session expired and refresh failed.
	ErrAuthExpired = errors.New("authentication expired")

	// ErrAuthInvalid indicates the credentials were rejected.
	ErrAuthInvalid = errors.New("authentication invalid")
)

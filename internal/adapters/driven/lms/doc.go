// Package lms implements the CourseAPI port against an Open edX
// compatible LMS over HTTP.
//
// Authentication uses the OAuth2 password grant; access and refresh
// tokens are persisted through the configuration store so a refreshed
// token survives the process. Requests are throttled proactively with a
// token bucket, and transport failures are mapped onto the domain's
// sentinel errors before they reach the core.
package lms

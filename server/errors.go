/******************************************************************************
 *
 *  Description :
 *
 *  Request-level error taxonomy. Every operation failure maps to one of
 *  these, carrying an HTTP status and a user-facing message.
 *
 *****************************************************************************/

package main

import "net/http"

// apiError is an operation failure with an HTTP status code.
type apiError struct {
	Code int    `json:"code"`
	Text string `json:"text"`
}

func (e *apiError) Error() string {
	return e.Text
}

// errUnauthorized: no identity present. Fatal to the request, never retried.
func errUnauthorized() error {
	return &apiError{http.StatusUnauthorized, "Unauthorized"}
}

// errForbidden: identity present, permission denied. Carries a reason for
// UI display.
func errForbidden(reason string) error {
	return &apiError{http.StatusForbidden, "Forbidden: " + reason}
}

func errNotFound(what string) error {
	return &apiError{http.StatusNotFound, what + " not found"}
}

// errBadRequest: invalid state transition or malformed input. Surfaced with
// a specific message per case, never silently coerced.
func errBadRequest(msg string) error {
	return &apiError{http.StatusBadRequest, msg}
}

// errCode extracts the HTTP status of an error, 500 for unclassified ones.
func errCode(err error) int {
	if ae, ok := err.(*apiError); ok {
		return ae.Code
	}
	return http.StatusInternalServerError
}

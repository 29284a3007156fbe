package api

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"lumen/internal/lineage"
	"lumen/internal/services"
)

// ErrorStatus maps err onto an HTTP status code and response body.
func ErrorStatus(err error) (int, ErrorResponse) {
	status := services.HTTPStatus(err)
	body := ErrorResponse{Error: errorMessage(err), Kind: services.Kind(err)}
	if services.Retryable(err) {
		body.Retryable = true
	}
	return status, body
}

// errorMessage replaces wrap chains with a stable message for missing records
// and unavailable generation.
func errorMessage(err error) string {
	if err == nil {
		return ""
	}
	switch {
	case errors.Is(err, lineage.ErrNotFound):
		return "Lineage record not found"
	case errors.Is(err, services.ErrNotFound):
		return "not found"
	case errors.Is(err, services.ErrUnavailable):
		return "guidance generation is temporarily unavailable"
	}
	return err.Error()
}

// ParsePage reads limit and offset query values. Empty values are zero.
func ParsePage(limit, offset string) (int, int, error) {
	l, err := parseNonNegative("limit", limit)
	if err != nil {
		return 0, 0, err
	}
	o, err := parseNonNegative("offset", offset)
	if err != nil {
		return 0, 0, err
	}
	return l, o, nil
}

func parseNonNegative(name, value string) (int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil || n < 0 {
		return 0, services.Wrap(services.ErrValidation, "api", "parse query", fmt.Sprintf("%s must be a non-negative integer", name), nil)
	}
	return n, nil
}

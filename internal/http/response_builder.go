// Package http provides HTTP server and handler implementations.
//
// This file implements the Builder Pattern for constructing JSON responses.
// Every handler writes through it so status codes, headers and error bodies
// stay consistent across endpoints.

package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// JSONResponseBuilder provides a fluent API for building JSON responses.
type JSONResponseBuilder struct {
	statusCode int
	body       interface{}
	raw        []byte
	headers    map[string]string
}

// ErrorBody is the shape of every error response.
type ErrorBody struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// ValidationBody lists validation failures.
type ValidationBody struct {
	Errors []string `json:"errors"`
}

// NewJSONResponse creates a new response builder with default 200 status.
func NewJSONResponse() *JSONResponseBuilder {
	return &JSONResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

// Status sets the HTTP status code for the response.
func (b *JSONResponseBuilder) Status(code int) *JSONResponseBuilder {
	b.statusCode = code
	return b
}

// Header adds a custom header to the response.
func (b *JSONResponseBuilder) Header(name, value string) *JSONResponseBuilder {
	b.headers[name] = value
	return b
}

// Body sets a value to be encoded as JSON.
func (b *JSONResponseBuilder) Body(v interface{}) *JSONResponseBuilder {
	b.body = v
	b.raw = nil
	return b
}

// RawJSON sets an already encoded JSON body.
func (b *JSONResponseBuilder) RawJSON(data []byte) *JSONResponseBuilder {
	b.raw = data
	b.body = nil
	return b
}

// Write sends the built response to the http.ResponseWriter.
func (b *JSONResponseBuilder) Write(w http.ResponseWriter) {
	payload := b.raw
	if payload == nil && b.body != nil {
		var err error
		payload, err = json.Marshal(b.body)
		if err != nil {
			slog.Error("Failed to encode JSON response", "error", err)
			b.statusCode = http.StatusInternalServerError
			payload = []byte(`{"error":"Internal server error"}`)
		}
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}

	w.WriteHeader(b.statusCode)
	if len(payload) > 0 {
		_, _ = w.Write(payload)
		_, _ = w.Write([]byte("\n"))
	}
}

// JSON is shorthand for a response with the given status and body.
func JSON(statusCode int, v interface{}) *JSONResponseBuilder {
	return NewJSONResponse().Status(statusCode).Body(v)
}

// ErrorResponse creates a standard {"error": ...} response.
func ErrorResponse(statusCode int, message string) *JSONResponseBuilder {
	return JSON(statusCode, ErrorBody{Error: message})
}

// BadRequestError creates a 400 Bad Request error response.
func BadRequestError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusBadRequest, message)
}

// ValidationError creates a 422 response listing every problem.
func ValidationError(errs []string) *JSONResponseBuilder {
	if errs == nil {
		errs = []string{}
	}
	return JSON(http.StatusUnprocessableEntity, ValidationBody{Errors: errs})
}

// InternalServerError creates a 500 Internal Server Error response.
func InternalServerError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusInternalServerError, message)
}

// NotFoundError creates a 404 Not Found error response.
func NotFoundError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusNotFound, message)
}

// MethodNotAllowedError creates a 405 Method Not Allowed error response.
func MethodNotAllowedError(allowedMethods string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusMethodNotAllowed, "Method not allowed").
		Header("Allow", allowedMethods)
}

// TooManyRequestsError is written when the rate limiter rejects a request.
func TooManyRequestsError() *JSONResponseBuilder {
	return ErrorResponse(http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.")
}

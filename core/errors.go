package core

import (
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	ErrorAuthFailed        = "INGEST_AUTH_FAILED"
	ErrorMalformedPayload  = "INGEST_MALFORMED_PAYLOAD"
	ErrorValidationFailed  = "INGEST_VALIDATION_FAILED"
	ErrorPersistenceFailed = "INGEST_PERSISTENCE_FAILED"
	ErrorDispatchFailed    = "INGEST_DISPATCH_FAILED"
	ErrorInternal          = "INGEST_INTERNAL"
)

// MapError normalizes arbitrary errors into the ingestion error envelope.
// Auth and parse failures keep their categories so transports can map them
// straight to status codes; anything unrecognized becomes internal.
func MapError(err error) *goerrors.Error {
	if err == nil {
		return nil
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return ensureErrorEnvelope(richErr)
	}

	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	switch {
	case strings.Contains(msg, "signature"):
		return newIngestError(err.Error(), goerrors.CategoryAuth, ErrorAuthFailed)
	case strings.Contains(msg, "json"), strings.Contains(msg, "malformed"):
		return newIngestError(err.Error(), goerrors.CategoryBadInput, ErrorMalformedPayload)
	case strings.Contains(msg, "required"), strings.Contains(msg, "invalid"):
		return newIngestError(err.Error(), goerrors.CategoryValidation, ErrorValidationFailed)
	}

	mapped := goerrors.MapToError(err, goerrors.DefaultErrorMappers())
	return ensureErrorEnvelope(mapped)
}

func newIngestError(message string, category goerrors.Category, textCode string) *goerrors.Error {
	return ensureErrorEnvelope(
		goerrors.New(message, category).
			WithTextCode(textCode),
	)
}

func ensureErrorEnvelope(err *goerrors.Error) *goerrors.Error {
	if err == nil {
		return nil
	}
	if err.Code == 0 {
		err.Code = ingestHTTPStatus(err.Category)
	}
	if strings.TrimSpace(err.TextCode) == "" {
		err.TextCode = defaultTextCode(err.Category)
	}
	if err.Category == goerrors.CategoryInternal && strings.TrimSpace(err.Message) == "" {
		err.Message = "An unexpected error occurred"
	}
	return err
}

func defaultTextCode(category goerrors.Category) string {
	switch category {
	case goerrors.CategoryAuth:
		return ErrorAuthFailed
	case goerrors.CategoryBadInput:
		return ErrorMalformedPayload
	case goerrors.CategoryValidation:
		return ErrorValidationFailed
	default:
		return ErrorInternal
	}
}

func ingestHTTPStatus(category goerrors.Category) int {
	switch category {
	case goerrors.CategoryAuth:
		return http.StatusForbidden
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// HTTPStatus resolves the response code for an error, falling back to 500
// for anything that escapes the taxonomy.
func HTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}
	mapped := MapError(err)
	if mapped == nil || mapped.Code == 0 {
		return http.StatusInternalServerError
	}
	return mapped.Code
}

func badInputError(message string, metadata map[string]any) error {
	err := goerrors.New(message, goerrors.CategoryBadInput).
		WithCode(http.StatusBadRequest).
		WithTextCode(ErrorMalformedPayload)
	if len(metadata) > 0 {
		err.WithMetadata(metadata)
	}
	return err
}

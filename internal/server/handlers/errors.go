package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/Khin-96/pochi-sub000/internal/domain"
)

func statusFor(code domain.ErrorCode) int {
	switch code {
	case domain.CodeUnauthenticated:
		return http.StatusUnauthorized
	case domain.CodeValidation, domain.CodeInsufficientFunds, domain.CodeInvalidRecipient:
		return http.StatusBadRequest
	case domain.CodeRecipientNotFound:
		return http.StatusNotFound
	case domain.CodeIdempotencyConflict:
		return http.StatusConflict
	case domain.CodeIdempotencyReused:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes the error envelope. Business outcomes are expected and
// only logged at debug; anything else is logged and hidden from the client.
func respondError(c *gin.Context, logger zerolog.Logger, err error) {
	var derr *domain.Error
	if !errors.As(err, &derr) {
		derr = domain.NewPersistenceError(err)
	}

	status := statusFor(derr.Code)
	if status >= http.StatusInternalServerError {
		logger.Error().Err(err).Str("path", c.FullPath()).Msg("Request failed")
		derr = domain.NewPersistenceError(nil)
	} else {
		logger.Debug().Str("code", string(derr.Code)).Str("path", c.FullPath()).Msg("Request rejected")
	}

	c.JSON(status, domain.ErrorResponse{
		Message: derr.Message,
		Code:    derr.Code,
		Errors:  derr.Fields,
	})
}

// bindError turns a gin binding failure into a field-level validation error
// keyed by the JSON field names the client sent.
func bindError(err error, fieldNames map[string]string) *domain.Error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			name := fieldNames[fe.Field()]
			if name == "" {
				name = strings.ToLower(fe.Field())
			}
			switch fe.Tag() {
			case "required":
				fields[name] = "is required"
			case "oneof":
				fields[name] = "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
			default:
				fields[name] = "is invalid"
			}
		}
		return domain.NewValidationError(fields)
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return domain.NewValidationError(map[string]string{typeErr.Field: "has the wrong type"})
	}
	return domain.NewValidationError(map[string]string{"body": "must be a valid JSON object"})
}

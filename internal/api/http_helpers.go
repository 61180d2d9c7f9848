package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/cvagent/internal/services"
)

type errorResponse struct {
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func apiError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(errorResponse{Message: message})
}

func apiFieldError(c *fiber.Ctx, status int, field string, message string) error {
	return c.Status(status).JSON(errorResponse{Message: message, Field: field})
}

// decodeJSONBody decodes the request body into target and rejects unknown
// fields, trailing data and values of the wrong type.
func decodeJSONBody(c *fiber.Ctx, target any) error {
	body := bytes.TrimSpace(c.Body())
	if len(body) == 0 {
		return &services.ValidationError{Message: "request body is required"}
	}

	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(target); err != nil {
		return decodeError(err)
	}
	if err := decoder.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return &services.ValidationError{Message: "request body must contain a single JSON object"}
	}
	return nil
}

func decodeError(err error) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		field := typeErr.Field
		if field == "" {
			return &services.ValidationError{Message: "request body must be a JSON object"}
		}
		return &services.ValidationError{Field: field, Message: "value has the wrong type"}
	}

	message := err.Error()
	if strings.HasPrefix(message, "json: unknown field ") {
		field := strings.Trim(strings.TrimPrefix(message, "json: unknown field "), `"`)
		return &services.ValidationError{Field: field, Message: "unknown field"}
	}
	return &services.ValidationError{Message: "request body is not valid JSON"}
}

func requireField(present bool, field string) error {
	if present {
		return nil
	}
	return &services.ValidationError{Field: field, Message: field + " is required"}
}

func requirePersonID(personID *uint) error {
	if personID == nil || *personID == 0 {
		return &services.ValidationError{Field: "person_id", Message: "person_id is required"}
	}
	return nil
}

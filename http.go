package auth

import (
	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
)

// Envelope is the uniform response shape: exactly one of error/data is
// non-null.
type Envelope struct {
	Error *string `json:"error"`
	Data  any     `json:"data"`
}

// OK wraps a success payload in the response envelope
func OK(data any) Envelope {
	return Envelope{Data: data}
}

// Err wraps an error message in the response envelope
func Err(msg string) Envelope {
	return Envelope{Error: &msg}
}

// RespondOK writes a 200 envelope
func RespondOK(c *fiber.Ctx, data any) error {
	return c.Status(fiber.StatusOK).JSON(OK(data))
}

// RespondError maps an error onto the envelope and a status code. Rich
// errors carry their own category and code; anything else, and every
// internal-category failure, is hidden behind a generic message so
// persistence and mail faults never leak detail to the caller.
func RespondError(c *fiber.Ctx, err error, logger Logger) error {
	if logger == nil {
		logger = defLogger{}
	}

	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		richErr = goerrors.Wrap(err, goerrors.CategoryInternal, "An error occurred").
			WithCode(goerrors.CodeInternal)
	}

	status := statusFromError(richErr)
	msg := richErr.Message

	if richErr.Category == goerrors.CategoryInternal || richErr.Category == goerrors.CategoryOperation {
		logger.Error(
			"request failed",
			"error", err.Error(),
			"metadata", print.MaybePrettyJSON(richErr.Metadata),
		)
		msg = "An error occurred"
		status = fiber.StatusInternalServerError
	}

	return c.Status(status).JSON(Err(msg))
}

func statusFromError(richErr *goerrors.Error) int {
	if richErr.Code > 0 {
		return richErr.Code
	}

	switch richErr.Category {
	case goerrors.CategoryNotFound:
		return fiber.StatusNotFound
	case goerrors.CategoryAuth:
		return fiber.StatusUnauthorized
	case goerrors.CategoryAuthz:
		return fiber.StatusForbidden
	case goerrors.CategoryConflict:
		return fiber.StatusConflict
	case goerrors.CategoryValidation, goerrors.CategoryBadInput:
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

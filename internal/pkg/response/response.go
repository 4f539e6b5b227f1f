package response

import (
	"github.com/gofiber/fiber/v2"
)

const traceHeader = "X-Trace-Id"

// Envelope is the body of every successful API response.
type Envelope struct {
	Status   string      `json:"status"`
	Message  string      `json:"message"`
	Data     interface{} `json:"data"`
	Metadata interface{} `json:"metadata,omitempty"`
}

// Failure is the body of every error response.
type Failure struct {
	Status string  `json:"status"`
	Error  Problem `json:"error"`
}

type Problem struct {
	Message    string      `json:"message"`
	StatusCode int         `json:"statusCode"`
	TraceID    string      `json:"traceId,omitempty"`
	Details    interface{} `json:"details,omitempty"`
}

func Success(c *fiber.Ctx, message string, data, metadata interface{}) error {
	return ok(c, fiber.StatusOK, message, data, metadata)
}

func SuccessCreated(c *fiber.Ctx, message string, data, metadata interface{}) error {
	return ok(c, fiber.StatusCreated, message, data, metadata)
}

func ok(c *fiber.Ctx, code int, message string, data, metadata interface{}) error {
	if metadata == nil {
		metadata = fiber.Map{}
	}
	return c.Status(code).JSON(Envelope{Status: "success", Message: message, Data: data, Metadata: metadata})
}

// Error writes the error envelope. The trace id set by the tracing middleware is echoed back.
func Error(c *fiber.Ctx, message string, statusCode int, details interface{}) error {
	if details == nil {
		details = fiber.Map{}
	}
	return c.Status(statusCode).JSON(Failure{
		Status: "error",
		Error: Problem{
			Message:    message,
			StatusCode: statusCode,
			TraceID:    c.GetRespHeader(traceHeader),
			Details:    details,
		},
	})
}

// BadRequest carries field-level problems in details.
func BadRequest(c *fiber.Ctx, message string, details interface{}) error {
	return Error(c, message, fiber.StatusBadRequest, details)
}

func NotFound(c *fiber.Ctx, message string) error {
	return Error(c, message, fiber.StatusNotFound, nil)
}

func Conflict(c *fiber.Ctx, message string) error {
	return Error(c, message, fiber.StatusConflict, nil)
}

func Unprocessable(c *fiber.Ctx, message string) error {
	return Error(c, message, fiber.StatusUnprocessableEntity, nil)
}

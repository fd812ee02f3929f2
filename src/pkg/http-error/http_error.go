package httpError

import "github.com/gofiber/fiber/v2"

// CommonError carries the HTTP status a business failure maps to. Usecases
// construct one, set Message, and hand it back through utils.Result.
type CommonError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *CommonError) Error() string {
	return e.Message
}

func NewBadRequest() *CommonError {
	return &CommonError{Code: fiber.StatusBadRequest, Message: "bad request"}
}

func NewUnauthorized() *CommonError {
	return &CommonError{Code: fiber.StatusUnauthorized, Message: "unauthorized"}
}

func NewForbidden() *CommonError {
	return &CommonError{Code: fiber.StatusForbidden, Message: "forbidden"}
}

func NewNotFound() *CommonError {
	return &CommonError{Code: fiber.StatusNotFound, Message: "not found"}
}

func NewConflict() *CommonError {
	return &CommonError{Code: fiber.StatusConflict, Message: "conflict"}
}

func NewUnprocessableEntity() *CommonError {
	return &CommonError{Code: fiber.StatusUnprocessableEntity, Message: "unprocessable entity"}
}

func NewTooManyRequests() *CommonError {
	return &CommonError{Code: fiber.StatusTooManyRequests, Message: "too many requests"}
}

func NewInternalServerError() *CommonError {
	return &CommonError{Code: fiber.StatusInternalServerError, Message: "internal server error"}
}

package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v5"

	"github.com/samcharles93/gltfkit/pkg/gltf"
)

var ErrInvalidRequest = errors.New("invalid_request")

type invalidRequestError struct {
	msg string
}

func (e invalidRequestError) Error() string { return e.msg }
func (e invalidRequestError) Unwrap() error { return ErrInvalidRequest }

func newInvalidRequest(msg string) error {
	return invalidRequestError{msg: msg}
}

func writeError(c *echo.Context, status int, errType, msg, code string) error {
	return c.JSON(status, map[string]any{
		"error": ErrorBody{Message: msg, Type: errType, Code: code},
	})
}

func writeBadRequest(c *echo.Context, msg string) error {
	return writeError(c, http.StatusBadRequest, "invalid_request_error", msg, "")
}

func writeNotFound(c *echo.Context, msg string) error {
	return writeError(c, http.StatusNotFound, "not_found_error", msg, "")
}

// writeImportError maps an import failure to 422 with the error kind as
// the code. Failures that are not gltf errors are server errors.
func writeImportError(c *echo.Context, err error) error {
	kind := gltf.KindOf(err)
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return writeBadRequest(c, err.Error())
	case kind == gltf.KindUnknown:
		return writeError(c, http.StatusInternalServerError, "server_error", err.Error(), "")
	default:
		return writeError(c, http.StatusUnprocessableEntity, "import_error", err.Error(), kind.String())
	}
}

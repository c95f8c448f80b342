package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	msg := err.Error()

	if he, ok := err.(*echo.HTTPError); ok {
		code = he.Code
		switch m := he.Message.(type) {
		case string:
			msg = m
		default:
			// structured payloads (field-error maps) render as-is
			_ = c.JSON(code, m)
			return
		}
	}

	_ = c.JSON(code, map[string]string{"message": msg})
}

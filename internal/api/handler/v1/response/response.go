package response

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Envelope is the wire shape of every endpoint: success with optional
// data, or failure with an error message.
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// OK renders a 200 success envelope around data.
func OK(ctx *gin.Context, data any) {
	ctx.JSON(http.StatusOK, Envelope{Success: true, Data: data})
}

// Created renders a 201 success envelope around data.
func Created(ctx *gin.Context, data any) {
	ctx.JSON(http.StatusCreated, Envelope{Success: true, Data: data})
}

// OKRaw renders a 200 success envelope around already-marshalled data,
// used when serving from the response cache.
func OKRaw(ctx *gin.Context, data json.RawMessage) {
	ctx.JSON(http.StatusOK, Envelope{Success: true, Data: data})
}

type Err struct {
	StatusCode int    `json:"-"`
	Msg        string `json:"message"`
}

func (e *Err) Error() string {
	return e.Msg
}

func RenderErr(ctx *gin.Context, err *Err) {
	if err.StatusCode == http.StatusInternalServerError {
		zap.L().Error("internal server error", zap.String("error", err.Msg))
		err.Msg = "internal server error"
	}

	ctx.AbortWithStatusJSON(err.StatusCode, Envelope{Success: false, Error: err.Msg})
}

func ErrBadRequest(err error) *Err {
	return &Err{
		StatusCode: http.StatusBadRequest,
		Msg:        err.Error(),
	}
}

func ErrUnauthorized(err error) *Err {
	return &Err{
		StatusCode: http.StatusUnauthorized,
		Msg:        err.Error(),
	}
}

func ErrWrongCredentials(err error) *Err {
	return &Err{
		StatusCode: http.StatusUnauthorized,
		Msg:        "wrong credentials",
	}
}

func ErrPermissionDenied(err error) *Err {
	return &Err{
		StatusCode: http.StatusForbidden,
		Msg:        err.Error(),
	}
}

func ErrNotFound(resource, field string, value any) *Err {
	return &Err{
		StatusCode: http.StatusNotFound,
		Msg:        fmt.Sprintf("%v not found by %v (%v)", resource, field, value),
	}
}

func ErrInternalServerError(err error) *Err {
	return &Err{
		StatusCode: http.StatusInternalServerError,
		Msg:        err.Error(),
	}
}

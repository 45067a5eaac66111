package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/prateek8318/RankUpAPI-sub001/internal/apperr"
	"github.com/prateek8318/RankUpAPI-sub001/internal/dto"
	"github.com/rs/zerolog/log"
)

// RespondError maps the service error taxonomy onto HTTP statuses. The four
// expected kinds are caller-recoverable and rendered with their message;
// anything else is an internal error and logged, with details withheld.
func RespondError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Message: err.Error()})
	case errors.Is(err, apperr.ErrConflict):
		ctx.JSON(http.StatusConflict, dto.ErrorResponse{Message: err.Error()})
	case errors.Is(err, apperr.ErrInvalidState):
		ctx.JSON(http.StatusConflict, dto.ErrorResponse{Message: err.Error()})
	case errors.Is(err, apperr.ErrExpired):
		ctx.JSON(http.StatusGone, dto.ErrorResponse{Message: err.Error()})
	case errors.Is(err, apperr.ErrTransient):
		ctx.JSON(http.StatusServiceUnavailable, dto.ErrorResponse{Message: "temporary storage problem, please retry"})
	default:
		log.Error().Err(err).Str("path", ctx.FullPath()).Msg("Unhandled service error")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "internal server error"})
	}
}

// ParseUintParam reads a numeric path parameter, responding 400 itself on
// bad input. The bool result tells the handler whether to continue.
func ParseUintParam(ctx *gin.Context, name string) (uint, bool) {
	raw := ctx.Param(name)
	val, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid " + name + " format"})
		return 0, false
	}
	return uint(val), true
}

// ParseUintQuery reads a required numeric query parameter.
func ParseUintQuery(ctx *gin.Context, name string) (uint, bool) {
	raw := ctx.Query(name)
	if raw == "" {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: name + " query parameter is required"})
		return 0, false
	}
	val, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid " + name + " format"})
		return 0, false
	}
	return uint(val), true
}

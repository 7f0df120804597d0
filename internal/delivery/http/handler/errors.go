package handler

import (
	"shiftmatch/internal/delivery/http/middleware"
	"shiftmatch/internal/pkg/response"
	"shiftmatch/internal/usecase"

	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v3"
)

func mapUsecaseError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, usecase.ErrInvalidInput):
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	case errors.Is(err, usecase.ErrUnauthorized):
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, err)
	case errors.Is(err, usecase.ErrJobNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, "Job not found", nil, err)
	case errors.Is(err, usecase.ErrWorkerNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, "Worker not found", nil, err)
	case errors.Is(err, usecase.ErrMatchNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, "Match not found", nil, err)
	case errors.Is(err, usecase.ErrBranchNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, "Branch not found", nil, err)
	case errors.Is(err, usecase.ErrInvalidTransition):
		return middleware.NewAppError(fiber.StatusConflict, "Invalid status transition", nil, err)
	default:
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}
}

func callerOrUnauthorized(c fiber.Ctx) (usecase.Caller, error) {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		return usecase.Caller{}, middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}
	return caller, nil
}

package handler

import (
	"shiftmatch/internal/delivery/http/dto"
	"shiftmatch/internal/delivery/http/middleware"
	"shiftmatch/internal/pkg/response"
	"shiftmatch/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

type AIMatchingHandler struct {
	uc usecase.AIMatchingUsecase
}

func NewAIMatchingHandler(uc usecase.AIMatchingUsecase) *AIMatchingHandler {
	return &AIMatchingHandler{uc: uc}
}

func (h *AIMatchingHandler) RegisterRoutes(r fiber.Router, worker, limiter fiber.Handler) {
	if r == nil {
		return
	}
	r.Post("/ai-matching", limiter, worker, h.Propose)
}

func (h *AIMatchingHandler) Propose(c fiber.Ctx) error {
	caller, err := callerOrUnauthorized(c)
	if err != nil {
		return err
	}

	var req dto.AIMatchingRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}
	if len(req.TimeSlots) == 0 {
		return middleware.NewAppError(fiber.StatusBadRequest, "timeSlots required", nil, nil)
	}

	proposals, err := h.uc.Propose(c.Context(), req.Input(caller.ID))
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.OK(c, dto.NewAIMatchingResponse(proposals))
}

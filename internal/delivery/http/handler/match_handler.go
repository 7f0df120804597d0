package handler

import (
	"shiftmatch/internal/delivery/http/dto"
	"shiftmatch/internal/delivery/http/middleware"
	"shiftmatch/internal/pkg/response"
	"shiftmatch/internal/usecase"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

type MatchHandler struct {
	uc usecase.MatchUsecase
}

func NewMatchHandler(uc usecase.MatchUsecase) *MatchHandler {
	return &MatchHandler{uc: uc}
}

func (h *MatchHandler) RegisterRoutes(r fiber.Router, worker, anyone fiber.Handler) {
	if r == nil {
		return
	}
	grp := r.Group("/matches")
	grp.Get("", anyone, h.List)
	grp.Put("/:id", worker, h.Decide)
}

func (h *MatchHandler) List(c fiber.Ctx) error {
	caller, err := callerOrUnauthorized(c)
	if err != nil {
		return err
	}

	p := usecase.ListMatchesParams{Status: c.Query("status")}
	if raw := c.Query("jobId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
		}
		p.JobID = id
	}

	out, err := h.uc.List(c.Context(), caller, p)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.OK(c, dto.NewMatchResponses(out))
}

func (h *MatchHandler) Decide(c fiber.Ctx) error {
	caller, err := callerOrUnauthorized(c)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	var req dto.DecideMatchRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	m, err := h.uc.Decide(c.Context(), caller, id, req.Status)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.OK(c, dto.NewMatchResponse(m))
}

package handler

import (
	"strconv"

	"shiftmatch/internal/delivery/http/dto"
	"shiftmatch/internal/delivery/http/middleware"
	"shiftmatch/internal/pkg/response"
	"shiftmatch/internal/usecase"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

type JobHandler struct {
	jobs          usecase.JobUsecase
	compatibility usecase.CompatibilityUsecase
}

func NewJobHandler(jobs usecase.JobUsecase, compatibility usecase.CompatibilityUsecase) *JobHandler {
	return &JobHandler{jobs: jobs, compatibility: compatibility}
}

// RegisterRoutes mounts /jobs. Each guard is the identity middleware for the
// role its routes need.
func (h *JobHandler) RegisterRoutes(r fiber.Router, business, worker, anyone fiber.Handler) {
	if r == nil {
		return
	}
	grp := r.Group("/jobs")
	grp.Post("", business, h.Create)
	grp.Get("/urgent", anyone, h.Urgent)
	grp.Get("/:id", anyone, h.Get)
	grp.Get("/:id/candidates", business, h.Candidates)
	grp.Get("/:id/compatibility", worker, h.Compatibility)
}

func (h *JobHandler) Create(c fiber.Ctx) error {
	caller, err := callerOrUnauthorized(c)
	if err != nil {
		return err
	}

	var req dto.CreateJobRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	res, err := h.jobs.Create(c.Context(), usecase.CreateJobInput{
		BusinessID:     caller.ID,
		BranchID:       req.BranchID,
		Title:          req.Title,
		Description:    req.Description,
		SkillsRequired: req.SkillsRequired,
		StartTime:      req.StartTime,
		EndTime:        req.EndTime,
		HourlyRate:     req.HourlyRate,
		MaxWorkers:     req.MaxWorkers,
	})
	if err != nil {
		return mapUsecaseError(err)
	}

	return response.Created(c, "Job created", dto.CreateJobResponse{
		Job:            dto.NewJobResponse(res.Job),
		MatchesCreated: res.MatchesCreated,
	})
}

func (h *JobHandler) Get(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}
	j, err := h.jobs.Get(c.Context(), id)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.OK(c, dto.NewJobResponse(j))
}

func (h *JobHandler) Urgent(c fiber.Ctx) error {
	jobs, err := h.jobs.Urgent(c.Context())
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.OK(c, dto.NewJobResponses(jobs))
}

func (h *JobHandler) Candidates(c fiber.Ctx) error {
	caller, err := callerOrUnauthorized(c)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}
	limit, err := parseQueryIntStrict(c, "limit", 0)
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	ranked, err := h.compatibility.Candidates(c.Context(), caller, id, limit)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.OK(c, dto.NewCandidateResponses(ranked))
}

func (h *JobHandler) Compatibility(c fiber.Ctx) error {
	caller, err := callerOrUnauthorized(c)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	res, err := h.compatibility.Score(c.Context(), caller.ID, id)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.OK(c, dto.CompatibilityResponse{
		WorkerID:  caller.ID,
		JobID:     id,
		Score:     dto.Score(res.Total),
		Breakdown: dto.NewBreakdown(res.Breakdown),
	})
}

func parseQueryIntStrict(c fiber.Ctx, key string, defaultVal int) (int, error) {
	s := c.Query(key)
	if s == "" {
		return defaultVal, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	return v, nil
}

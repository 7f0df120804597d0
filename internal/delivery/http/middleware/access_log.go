package middleware

import (
	"time"

	"shiftmatch/internal/logger"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const HeaderRequestID = "X-Request-ID"

type AccessLogMiddleware struct {
	log *zap.Logger
}

func NewAccessLogMiddleware(log *zap.Logger) *AccessLogMiddleware {
	return &AccessLogMiddleware{log: logger.Component(log, "http")}
}

func (m *AccessLogMiddleware) Middleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		start := time.Now()

		rid := c.Get(HeaderRequestID)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Set(HeaderRequestID, rid)
		c.Locals(HeaderRequestID, rid)

		err := c.Next()

		m.log.Info("http access",
			zap.String(logger.FieldRequestID, rid),
			zap.String(logger.FieldClientIP, c.IP()),
			zap.String(logger.FieldMethod, c.Method()),
			zap.String(logger.FieldPath, c.OriginalURL()),
			zap.Int(logger.FieldStatus, c.Response().StatusCode()),
			zap.Int64(logger.FieldLatencyMS, time.Since(start).Milliseconds()),
			zap.Int("req_bytes", c.Request().Header.ContentLength()),
			zap.Int("resp_bytes", c.Response().Header.ContentLength()),
			zap.String("ua", c.Get("User-Agent")),
		)

		return err
	}
}

func requestID(c fiber.Ctx) string {
	if rid, ok := c.Locals(HeaderRequestID).(string); ok {
		return rid
	}
	return c.Get(HeaderRequestID)
}

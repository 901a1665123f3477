package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/attendance-service/internal/api/dto"
	apperrors "github.com/spec-kit/attendance-service/pkg/util"
)

// bindJSON decodes the body into req and runs its validation rules.
func bindJSON[T dto.Validatable](c *fiber.Ctx, req T) error {
	if len(c.Body()) > 0 {
		if err := c.BodyParser(req); err != nil {
			return apperrors.NewBadRequest("", "invalid payload", map[string]any{"body": err.Error()})
		}
	}
	return dto.ValidationError(req.Validate())
}

func idParam(c *fiber.Ctx, name string) (int64, error) {
	raw := c.Params(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewBadRequest("", name+" must be a positive integer", map[string]any{name: raw})
	}
	return id, nil
}

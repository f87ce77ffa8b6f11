package handlers

import (
	"errors"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

func actorID(c *fiber.Ctx) (int64, error) {
	raw, ok := c.Locals("user_id").(string)
	if !ok {
		return 0, errors.New("missing user id")
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid user id")
	}
	return id, nil
}

func validationMessage(err error) string {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) && len(validationErrs) > 0 {
		fieldErr := validationErrs[0]
		switch fieldErr.Tag() {
		case "required":
			return fieldErr.Field() + " is required"
		case "email":
			return fieldErr.Field() + " must be a valid email"
		case "min":
			return fieldErr.Field() + " is too short"
		case "oneof":
			return fieldErr.Field() + " must be one of: " + fieldErr.Param()
		case "gt":
			return fieldErr.Field() + " must be greater than " + fieldErr.Param()
		default:
			return fieldErr.Field() + " is invalid"
		}
	}
	return "Invalid request"
}

func parseIDParam(c *fiber.Ctx, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}

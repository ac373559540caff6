package controllers

import (
	"errors"
	"reflect"
	"strconv"
	"strings"

	"coursehub/backend/middleware"
	"coursehub/backend/models"
	"coursehub/backend/utils"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// bind parses the JSON body into dst and validates it. When ok is false the
// error response has already been written and err must be returned as is.
func bind(c *fiber.Ctx, dst interface{}) (ok bool, err error) {
	if err := c.BodyParser(dst); err != nil {
		// Well-formed JSON that a domain type rejects, such as a bad quiz.
		if status, known := statusFor(err); known {
			return false, utils.Error(c, status, err)
		}
		return false, utils.BadRequest(c, "Cannot parse JSON")
	}
	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return false, utils.BadRequest(c, err.Error())
		}
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fe.Field()] = validationMessage(fe)
		}
		return false, utils.ValidationError(c, fields)
	}
	return true, nil
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "oneof":
		return "must be one of: " + fe.Param()
	case "gte":
		return "must be >= " + fe.Param()
	default:
		return "is invalid"
	}
}

func paramID(c *fiber.Ctx, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func currentUser(c *fiber.Ctx) models.User {
	user, _ := middleware.CurrentUser(c)
	return user
}

func pageParams(c *fiber.Ctx) (page, pageSize int) {
	page = c.QueryInt("page", 1)
	pageSize = c.QueryInt("page_size", 20)
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return page, pageSize
}

package http

import (
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/alem-hub/studyhub/internal/domain/shared"
)

// Custom binding tags.
const (
	tagSkillLevel   = "skill_level"
	tagResourceType = "resource_type"
)

var registerOnce sync.Once

// registerValidators installs the custom tags on gin's validator and makes
// field errors use JSON names.
func registerValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		_ = v.RegisterValidation(tagSkillLevel, func(fl validator.FieldLevel) bool {
			_, err := shared.ParseSkillLevel(fl.Field().String())
			return err == nil
		})
		_ = v.RegisterValidation(tagResourceType, func(fl validator.FieldLevel) bool {
			_, err := shared.ParseResourceType(fl.Field().String())
			return err == nil
		})
	})
}

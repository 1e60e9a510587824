/*
Package config provides validation for loaded configuration.

Struct tags drive go-playground/validator; this file turns its field errors
into one readable message per offending key.
*/
package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("koanf"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// Validate checks the configuration and returns a combined error describing
// every invalid field.
func (c *Config) Validate() error {
	c.Storage.Redis.Enabled = c.Storage.Backend == "redis"

	if c.Storage.Backend == "sqlite" && strings.TrimSpace(c.Storage.Path) == "" {
		return errors.New("storage.path: required when backend is sqlite")
	}

	err := getValidator().Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validate config: %w", err)
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, describeFieldError(fe))
	}
	return errors.New(strings.Join(msgs, "; "))
}

// describeFieldError reports fields by their YAML key (storage.backend).
func describeFieldError(fe validator.FieldError) string {
	key := strings.TrimPrefix(fe.Namespace(), "Config.")

	switch fe.Tag() {
	case "oneof":
		return fmt.Sprintf("%s: %q is not one of [%s]", key, fmt.Sprint(fe.Value()), fe.Param())
	case "required", "required_if":
		return fmt.Sprintf("%s: required", key)
	default:
		return fmt.Sprintf("%s: failed %s=%s (got %v)", key, fe.Tag(), fe.Param(), fe.Value())
	}
}

package validate

import (
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/verdantmart/storefront/internal/errors"
)

var (
	once     sync.Once
	validate *validator.Validate
)

func Get() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Struct checks a request struct against its validate tags and wraps any
// failure as a ValidationError so it never reaches an external service.
func Struct(s interface{}) error {
	err := Get().Struct(s)
	if err != nil {
		return errors.ValidationError{Err: fmt.Errorf("invalid request with error=%w", err)}
	}
	return nil
}

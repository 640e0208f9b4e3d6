package validator

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin/binding"
	playground "github.com/go-playground/validator/v10"
)

// RegisterBindingRules adds eth_addr, wei and fhe_handle tags to gin's binding validator.
func RegisterBindingRules() error {
	engine, ok := binding.Validator.Engine().(*playground.Validate)
	if !ok {
		return errors.New("validator: gin binding engine is not go-playground")
	}
	return RegisterRules(engine)
}

func RegisterRules(v *playground.Validate) error {
	rules := map[string]func(string) bool{
		"eth_addr":   IsHexAddress,
		"wei":        IsWeiAmount,
		"fhe_handle": IsHandle,
	}
	for tag, fn := range rules {
		fn := fn
		err := v.RegisterValidation(tag, func(fl playground.FieldLevel) bool {
			return fn(fl.Field().String())
		})
		if err != nil {
			return fmt.Errorf("validator: register %s: %w", tag, err)
		}
	}
	return nil
}

// BindingErrors flattens binding failures into field -> message.
func BindingErrors(err error) map[string]string {
	var fieldErrs playground.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return map[string]string{"body": err.Error()}
	}
	out := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		out[fe.Field()] = fmt.Sprintf("failed on the '%s' rule", fe.Tag())
	}
	return out
}

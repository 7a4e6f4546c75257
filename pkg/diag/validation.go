package diag

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// NewValidator returns a struct validator that names fields by their yaml
// tag.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// FromValidation converts the result of a struct validation into records of
// the given class, one per failed field. A nil err yields nil.
func FromValidation(class Class, err error) List {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return List{New(class, fmt.Sprintf("invalid definition: %v", err)).WithCause(err)}
	}
	out := make(List, 0, len(verrs))
	for _, fe := range verrs {
		check := fe.Tag()
		if fe.Param() != "" {
			check += "=" + fe.Param()
		}
		out = append(out, Newf(class, nil, "invalid %s: failed '%s' check", fe.Field(), check))
	}
	return out
}

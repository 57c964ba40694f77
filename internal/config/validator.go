package config

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/podtend/podtend/internal/reconcile"
	pterrors "github.com/podtend/podtend/pkg/errors"
)

var (
	validatorOnce sync.Once
	validateInst  *validator.Validate

	// Same character set podman itself accepts for resource names.
	resourceNamePattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_.-]*$`)
)

func validatorInstance() *validator.Validate {
	validatorOnce.Do(func() {
		v := validator.New()

		_ = v.RegisterValidation("resource_kind", func(fl validator.FieldLevel) bool {
			_, err := reconcile.ParseKind(fl.Field().String())
			return err == nil
		})

		_ = v.RegisterValidation("resource_name", func(fl validator.FieldLevel) bool {
			return resourceNamePattern.MatchString(fl.Field().String())
		})

		validateInst = v
	})
	return validateInst
}

// ValidateManifest performs schema and cross-resource validation.
func ValidateManifest(manifest *Manifest) error {
	if manifest == nil {
		return pterrors.NewValidationError("manifest", "manifest is nil", nil)
	}

	v := validatorInstance()
	if err := v.Struct(manifest); err != nil {
		return convertValidationError(err)
	}

	seen := make(map[string]struct{}, len(manifest.Resources))
	for i, res := range manifest.Resources {
		key := res.Kind + "/" + res.Name
		if _, dup := seen[key]; dup {
			return pterrors.NewValidationError(fieldForResource(i, "name"),
				fmt.Sprintf("duplicate resource %s", key), nil)
		}
		seen[key] = struct{}{}
	}
	return nil
}

// convertValidationError flattens the validator's error list into the
// shared taxonomy, naming the first offending field.
func convertValidationError(err error) error {
	var verrs validator.ValidationErrors
	if ok := asValidationErrors(err, &verrs); !ok || len(verrs) == 0 {
		return pterrors.NewValidationError("manifest", err.Error(), err)
	}

	first := verrs[0]
	field := strings.ToLower(first.Namespace())
	field = strings.TrimPrefix(field, "manifest.")
	return pterrors.NewValidationError(field,
		fmt.Sprintf("failed %q validation", first.Tag()), err)
}

func asValidationErrors(err error, target *validator.ValidationErrors) bool {
	verrs, ok := err.(validator.ValidationErrors)
	if ok {
		*target = verrs
	}
	return ok
}

func fieldForResource(index int, field string) string {
	return fmt.Sprintf("resources[%d].%s", index, field)
}

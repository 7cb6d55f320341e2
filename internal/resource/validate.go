package resource

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/VitaminP8/postery-admin/internal/apperr"
	"github.com/VitaminP8/postery-admin/internal/media"
)

var validate = validator.New()

// Input is a submitted form: text values by field name plus uploaded files.
type Input struct {
	Values map[string]string
	Files  map[string]*media.Upload
}

// Values are validated, typed form values: string, uint (relations), bool
// (toggles) or *media.Upload (files). Optional fields left empty are absent
// unless the field declares a default.
type Values map[string]any

func (v Values) String(name string) string {
	s, _ := v[name].(string)
	return s
}

func (v Values) Uint(name string) uint {
	n, _ := v[name].(uint)
	return n
}

func (v Values) Bool(name string) bool {
	b, _ := v[name].(bool)
	return b
}

func (v Values) File(name string) *media.Upload {
	f, _ := v[name].(*media.Upload)
	return f
}

// Validate applies every field rule and returns one message per failing
// field as *apperr.ValidationError. Fields the descriptor does not declare
// are dropped.
func (d *Descriptor[T]) Validate(in Input) (Values, error) {
	values := Values{}
	errs := map[string]string{}

	for _, f := range d.Fields {
		if f.Kind == KindFile {
			up := in.Files[f.Name]
			if up == nil || up.Size() == 0 {
				if f.Required {
					errs[f.Name] = fmt.Sprintf("The %s field is required.", f.Label)
				}
				continue
			}
			if msg, ok := checkFile(f, up); !ok {
				errs[f.Name] = msg
				continue
			}
			values[f.Name] = up
			continue
		}

		raw := strings.TrimSpace(in.Values[f.Name])
		if raw == "" {
			if f.Required {
				errs[f.Name] = fmt.Sprintf("The %s field is required.", f.Label)
			} else if f.Default != nil {
				values[f.Name] = f.Default
			}
			continue
		}

		v, msg, ok := checkValue(f, raw)
		if !ok {
			errs[f.Name] = msg
			continue
		}
		values[f.Name] = v
	}

	if len(errs) > 0 {
		return nil, &apperr.ValidationError{Fields: errs}
	}
	return values, nil
}

func checkValue(f Field, raw string) (any, string, bool) {
	switch f.Kind {
	case KindEmail:
		if err := validate.Var(raw, "email"); err != nil {
			return nil, fmt.Sprintf("The %s field must be a valid email address.", f.Label), false
		}
		return raw, "", true

	case KindSelect:
		if f.Options != nil {
			for _, o := range f.Options() {
				if o.Value == raw {
					return raw, "", true
				}
			}
		}
		return nil, fmt.Sprintf("The selected %s is invalid.", f.Label), false

	case KindRelation:
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || id == 0 {
			return nil, fmt.Sprintf("The selected %s is invalid.", f.Label), false
		}
		return uint(id), "", true

	case KindToggle:
		switch strings.ToLower(raw) {
		case "1", "true", "on", "yes":
			return true, "", true
		case "0", "false", "off", "no":
			return false, "", true
		}
		return nil, fmt.Sprintf("The %s field must be true or false.", f.Label), false
	}

	return raw, "", true
}

func checkFile(f Field, up *media.Upload) (string, bool) {
	if f.MaxSizeKB > 0 && up.Size() > f.MaxSizeKB*1024 {
		return fmt.Sprintf("The %s field must not be greater than %d kilobytes.", f.Label, f.MaxSizeKB), false
	}
	if len(f.AcceptedTypes) > 0 && !up.Is(f.AcceptedTypes...) {
		return fmt.Sprintf("The %s field must be a file of type: %s.", f.Label, strings.Join(f.AcceptedTypes, ", ")), false
	}
	return "", true
}

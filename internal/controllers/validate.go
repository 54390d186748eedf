package controllers

import (
	"encoding/json"
	"errors"
	"io"
	"slices"
	"strings"

	"inventory/internal/models"
	"inventory/lib/opt"

	"github.com/go-playground/validator/v10"
)

// FieldError is one entry of a 400 response's details list.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type appField struct {
	name     string
	get      func(*models.AppPatch) *opt.String
	required bool
	tag      string
}

var appFields = []appField{
	{name: "name", get: func(p *models.AppPatch) *opt.String { return &p.Name }, required: true, tag: "required"},
	{name: "platform", get: func(p *models.AppPatch) *opt.String { return &p.Platform }, required: true, tag: "required"},
	{name: "status", get: func(p *models.AppPatch) *opt.String { return &p.Status }, required: true, tag: "required,app_status"},
	{name: "category", get: func(p *models.AppPatch) *opt.String { return &p.Category }, required: true, tag: "required,app_category"},
	{name: "icon", get: func(p *models.AppPatch) *opt.String { return &p.Icon }},
	{name: "liveUrl", get: func(p *models.AppPatch) *opt.String { return &p.LiveURL }},
	{name: "repositoryUrl", get: func(p *models.AppPatch) *opt.String { return &p.RepositoryURL }},
	{name: "notes", get: func(p *models.AppPatch) *opt.String { return &p.Notes }},
}

// AppValidator checks create and update payloads. Update uses the same
// rules with every field optional.
type AppValidator struct {
	v *validator.Validate
}

func NewAppValidator() *AppValidator {
	v := validator.New()
	_ = v.RegisterValidation("app_status", oneOf(models.Statuses))
	_ = v.RegisterValidation("app_category", oneOf(models.Categories))

	return &AppValidator{v: v}
}

func oneOf(allowed []string) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return slices.Contains(allowed, fl.Field().String())
	}
}

func (av *AppValidator) ValidateCreate(p models.AppPatch) []FieldError {
	return av.validate(p, false)
}

func (av *AppValidator) ValidateUpdate(p models.AppPatch) []FieldError {
	return av.validate(p, true)
}

func (av *AppValidator) validate(p models.AppPatch, partial bool) []FieldError {
	var errs []FieldError

	for _, f := range appFields {
		val := *f.get(&p)

		switch {
		case !val.IsSet():
			if f.required && !partial {
				errs = append(errs, FieldError{Field: f.name, Message: "Required"})
			}
		case val.IsNull():
			if f.required {
				errs = append(errs, FieldError{Field: f.name, Message: "Expected string, received null"})
			}
		default:
			if f.tag == "" {
				continue
			}
			s, _ := val.Get()
			if err := av.v.Var(s, f.tag); err != nil {
				errs = append(errs, FieldError{Field: f.name, Message: message(err)})
			}
		}
	}

	return errs
}

func message(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Invalid value"
	}

	switch verrs[0].Tag() {
	case "required":
		return "Must not be empty"
	case "app_status":
		return "Must be one of: " + strings.Join(models.Statuses, ", ")
	case "app_category":
		return "Must be one of: " + strings.Join(models.Categories, ", ")
	default:
		return "Invalid value"
	}
}

// decodeAppPatch reads a JSON object into a patch. Unknown keys are
// ignored, so client-supplied id and updatedAt never reach the store.
func decodeAppPatch(r io.Reader) (models.AppPatch, []FieldError) {
	var p models.AppPatch

	var raw map[string]json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return p, []FieldError{{Field: "body", Message: "Malformed JSON object"}}
	}

	var errs []FieldError
	for _, f := range appFields {
		msg, ok := raw[f.name]
		if !ok {
			continue
		}
		if err := json.Unmarshal(msg, f.get(&p)); err != nil {
			errs = append(errs, FieldError{Field: f.name, Message: "Expected string"})
		}
	}

	return p, errs
}

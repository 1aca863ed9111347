package httpapi

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/PabloPavan/sniply_inject/internal/settings"
	"github.com/PabloPavan/sniply_inject/internal/snippets"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		field := fl.Field()
		if field.Kind() != reflect.String {
			return false
		}
		return strings.TrimSpace(field.String()) != ""
	})
	validate.RegisterValidation("maxlines", func(fl validator.FieldLevel) bool {
		field := fl.Field()
		if field.Kind() != reflect.String {
			return false
		}
		raw := field.String()
		lines := strings.Count(raw, "\n") + 1
		return lines <= maxLinesFromParam(fl.Param())
	})
}

// SnippetWriteDTO is the body of create and update calls. Unknown
// code_type and location values are accepted and coerced to defaults.
type SnippetWriteDTO struct {
	Name       string `json:"name" validate:"required,notblank,max=200"`
	Code       string `json:"code" validate:"max=250000,maxlines=5000"`
	CodeType   string `json:"code_type" validate:"max=32"`
	Location   string `json:"location" validate:"max=32"`
	CustomHook string `json:"custom_hook" validate:"max=191"`
	Priority   *int   `json:"priority" validate:"omitempty,min=-100000,max=100000"`
	Active     bool   `json:"active"`
}

func (r *SnippetWriteDTO) Validate() error {
	if err := validate.Struct(r); err != nil {
		return validationMessage(err, map[string]map[string]string{
			"Name": {
				"required": "name is required",
				"notblank": "name is required",
				"max":      "name is too long",
			},
			"Code": {
				"max":      "code is too long",
				"maxlines": "code has too many lines",
			},
			"CustomHook": {
				"max": "custom hook is too long",
			},
			"Priority": {
				"*": "priority out of range",
			},
		}, "invalid request")
	}
	return nil
}

func (r *SnippetWriteDTO) toRequest() snippets.CreateSnippetRequest {
	return snippets.CreateSnippetRequest{
		Name:       r.Name,
		Code:       r.Code,
		CodeType:   r.CodeType,
		Location:   r.Location,
		CustomHook: r.CustomHook,
		Priority:   r.Priority,
		Active:     r.Active,
	}
}

type SnippetActiveDTO struct {
	Active *bool `json:"active" validate:"required"`
}

func (r *SnippetActiveDTO) Validate() error {
	if err := validate.Struct(r); err != nil {
		return validationMessage(err, map[string]map[string]string{
			"Active": {"required": "active is required"},
		}, "invalid request")
	}
	return nil
}

type HeaderFooterDTO struct {
	Header string `json:"header_code" validate:"max=250000"`
	Footer string `json:"footer_code" validate:"max=250000"`
}

func (r *HeaderFooterDTO) Validate() error {
	if err := validate.Struct(r); err != nil {
		return validationMessage(err, map[string]map[string]string{
			"Header": {"max": "header code is too long"},
			"Footer": {"max": "footer code is too long"},
		}, "invalid request")
	}
	return nil
}

func (r *HeaderFooterDTO) toSettings() settings.HeaderFooter {
	return settings.HeaderFooter{Header: r.Header, Footer: r.Footer}
}

func validationMessage(err error, messages map[string]map[string]string, fallback string) error {
	var valErrs validator.ValidationErrors
	if !errors.As(err, &valErrs) {
		return errors.New(fallback)
	}
	for _, valErr := range valErrs {
		if fieldMessages, ok := messages[valErr.Field()]; ok {
			if msg, ok := fieldMessages[valErr.Tag()]; ok {
				return errors.New(msg)
			}
			if msg, ok := fieldMessages["*"]; ok {
				return errors.New(msg)
			}
		}
	}
	return errors.New(fallback)
}

func maxLinesFromParam(param string) int {
	n := 0
	for _, r := range param {
		if r < '0' || r > '9' {
			return 0
		}
		n = n*10 + int(r-'0')
	}
	return n
}

package validators

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	pkgerrors "github.com/angelmondragon/bazaar-backend/pkg/errors"
)

const (
	maxJSONBody        = 1 << 20
	maxMultipartMemory = 8 << 20
)

// bdMobile matches Bangladeshi mobile numbers with an optional +88 prefix.
var bdMobile = regexp.MustCompile(`^(?:\+?88)?01[3-9][0-9]{8}$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("bdphone", func(fl validator.FieldLevel) bool {
		return bdMobile.MatchString(strings.ReplaceAll(fl.Field().String(), " ", ""))
	})
	return v
}

// DecodeJSONBody decodes exactly one JSON object into dest and validates it.
// Unknown fields, trailing data and bodies over 1 MiB are rejected.
func DecodeJSONBody(r *http.Request, dest any) error {
	body := http.MaxBytesReader(nil, r.Body, maxJSONBody)
	defer func() { _, _ = io.Copy(io.Discard, body) }()

	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dest); err != nil {
		return decodeError(err)
	}
	if dec.More() {
		return pkgerrors.New(pkgerrors.CodeValidation, "request body must hold a single JSON object")
	}
	return ValidateStruct(dest)
}

// decodeError names the offending field or offset where encoding/json allows.
func decodeError(err error) error {
	var (
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
		maxErr    *http.MaxBytesError
	)
	wrap := pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid request body")
	switch {
	case errors.Is(err, io.EOF):
		return pkgerrors.New(pkgerrors.CodeValidation, "request body is empty")
	case errors.As(err, &maxErr):
		return wrap.WithDetails(map[string]any{"limit_bytes": maxErr.Limit})
	case errors.As(err, &syntaxErr):
		return wrap.WithDetails(map[string]any{"offset": syntaxErr.Offset})
	case errors.As(err, &typeErr):
		return wrap.WithDetails(map[string]any{"field": typeErr.Field, "expected": typeErr.Type.String()})
	case strings.HasPrefix(err.Error(), "json: unknown field "):
		return wrap.WithDetails(map[string]any{"field": strings.Trim(strings.TrimPrefix(err.Error(), "json: unknown field "), `"`)})
	}
	return wrap.WithDetails(map[string]any{"error": err.Error()})
}

// DecodeFormOrJSON accepts a JSON body or a multipart/urlencoded form. Form
// values are mapped onto dest by json tag; only string and *string fields
// are filled from forms.
func DecodeFormOrJSON(r *http.Request, dest any) error {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "multipart/form-data":
		if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid form body")
		}
	case "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid form body")
		}
	default:
		return DecodeJSONBody(r, dest)
	}
	if err := fillFromForm(r, dest); err != nil {
		return err
	}
	return ValidateStruct(dest)
}

// ValidateStruct runs the struct tags of dest.
func ValidateStruct(dest any) error {
	if err := validate.Struct(dest); err != nil {
		return formatValidationErrors(err)
	}
	return nil
}

func fillFromForm(r *http.Request, dest any) error {
	v := reflect.ValueOf(dest)
	if v.Kind() != reflect.Pointer || v.Elem().Kind() != reflect.Struct {
		return pkgerrors.New(pkgerrors.CodeInternal, "form destination must be a struct pointer")
	}
	v = v.Elem()
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			continue
		}
		if _, ok := r.Form[name]; !ok {
			continue
		}
		value := r.FormValue(name)
		target := v.Field(i)
		switch {
		case target.Kind() == reflect.String:
			target.SetString(value)
		case target.Kind() == reflect.Pointer && target.Type().Elem().Kind() == reflect.String:
			s := value
			target.Set(reflect.ValueOf(&s))
		}
	}
	return nil
}

func formatValidationErrors(err error) *pkgerrors.Error {
	var errs validator.ValidationErrors
	if errors.As(err, &errs) {
		details := map[string]string{}
		for _, fieldErr := range errs {
			details[fieldErr.Field()] = validationMessage(fieldErr)
		}
		return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(details)
	}
	return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "validation failed")
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "email":
		return "must be a valid email"
	case "oneof":
		return fmt.Sprintf("must be one of %s", fe.Param())
	case "uuid":
		return "must be a valid uuid"
	case "url":
		return "must be a valid url"
	case "bdphone":
		return "must be a Bangladeshi mobile number"
	}
	return "is invalid"
}

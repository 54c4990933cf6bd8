package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"qa-forum/internal/models"
)

var (
	validate   *validator.Validate
	translator ut.Translator
)

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	english := en.New()
	uni := ut.New(english, english)
	translator, _ = uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	// Report JSON field names instead of Go struct names
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	_ = validate.RegisterValidation("known_role", func(fl validator.FieldLevel) bool {
		return models.IsKnownRole(strings.ToLower(strings.TrimSpace(fl.Field().String())))
	})
	_ = validate.RegisterTranslation("known_role", translator,
		func(t ut.Translator) error {
			return t.Add("known_role", "{0} must be one of the supported roles", true)
		},
		func(t ut.Translator, fe validator.FieldError) string {
			msg, _ := t.T("known_role", fe.Field())
			return msg
		},
	)
}

// decodeAndValidate decodes a JSON request body into dst and validates it.
// It writes the error response itself and reports whether the handler may continue.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidRequestBody)
		return false
	}

	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make(map[string]string, len(verrs))
			for _, fe := range verrs {
				fields[fe.Field()] = fe.Translate(translator)
			}
			respondWithJSON(w, http.StatusBadRequest, map[string]any{
				"error":  ErrMsgValidationFailed,
				"fields": fields,
			})
			return false
		}
		respondWithError(w, http.StatusBadRequest, err.Error())
		return false
	}

	return true
}

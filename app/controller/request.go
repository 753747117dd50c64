package controller

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	pkgerrors "mifoto-print/errors"
	"mifoto-print/logger"
	"mifoto-print/models"
	"mifoto-print/utils"
)

const maxJSONBody = 1 << 20

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" || tag == "-" {
			return f.Name
		}
		return tag
	})
	// margin accepts style codes and the editor's Spanish aliases ("blanco 5mm")
	v.RegisterValidation("margin", func(fl validator.FieldLevel) bool {
		_, ok := utils.ParseMarginStyle(fl.Field().String())
		return ok
	})
	return v
}

// decodeJSONBody decodes and validates the request body into dest.
func decodeJSONBody(w http.ResponseWriter, r *http.Request, dest any) error {
	defer io.Copy(io.Discard, r.Body)
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dest); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid request body")
	}
	if err := validate.Struct(dest); err != nil {
		return formatValidationErrors(err)
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
		return fmt.Sprintf("must have at least %s entries", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "margin":
		return "must be none, white-5, white-10, black-5 or black-10"
	}
	return "is invalid"
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.L().Errorf("❌ Error encoding response: %v", err)
	}
}

// writeError answers with the status mapped from err. Validation failures carry the
// customer-facing message; internal errors are logged and answered generically.
func writeError(w http.ResponseWriter, op string, err error) {
	status := pkgerrors.HTTPStatus(err)
	resp := models.ErrorResponse{
		Code:    string(pkgerrors.CodeOf(err)),
		Message: pkgerrors.UserMessage(err),
	}
	if typed := pkgerrors.As(err); typed != nil {
		resp.Details = typed.Details()
	}
	var odd *pkgerrors.OddPairQuantityError
	if errors.As(err, &odd) {
		resp.Details = odd.Items
	}

	if status >= http.StatusInternalServerError {
		logger.L().Errorf("❌ %s: %v", op, err)
		if pkgerrors.CodeOf(err) == pkgerrors.CodeInternal {
			resp.Message = "internal error"
		}
	} else {
		logger.L().Infof("⚠️  %s: %v", op, err)
	}
	writeJSON(w, status, resp)
}

// Package validate holds the write-time rules for machines, maintenances and
// complaints. Every rule records its violations into an apperr.Fields so one
// rejection can report all of them.
package validate

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"silant-backend/internal/apperr"
	"silant-backend/internal/model"
)

// Field-level messages shared by every resource.
const (
	MsgRequired   = "This field is required."
	MsgBlank      = "This field may not be blank."
	MsgDateFormat = "Date has wrong format. Use one of these formats instead: YYYY-MM-DD."
	MsgFuture     = "Date cannot be in the future."

	MsgRestorationBeforeFailure = "Restoration date cannot be earlier than failure date."
)

var futureMessages = map[string]string{
	"event_date":       "Maintenance date cannot be in the future.",
	"failure_date":     "Failure date cannot be in the future.",
	"restoration_date": "Restoration date cannot be in the future.",
}

// NotInFuture rejects a date of an event that has already happened when it
// falls after today.
func NotInFuture(errs apperr.Fields, field string, d, today model.Date) {
	if d.IsZero() || !d.After(today) {
		return
	}
	msg, ok := futureMessages[field]
	if !ok {
		msg = MsgFuture
	}
	errs.Add(field, msg)
}

// RestorationNotBeforeFailure is the record-level rule of a complaint. It only
// applies when both dates are part of the same write.
func RestorationNotBeforeFailure(errs apperr.Fields, failure, restoration model.Date) {
	if failure.IsZero() || restoration.IsZero() {
		return
	}
	if restoration.Before(failure) {
		errs.Add(apperr.NonFieldKey, MsgRestorationBeforeFailure)
	}
}

var structs = newStructValidator()

func newStructValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Struct checks the `validate` tags of a write payload: lengths and numeric
// bounds. Nil pointer fields are skipped through omitempty.
func Struct(payload any) apperr.Fields {
	errs := apperr.Fields{}
	err := structs.Struct(payload)
	if err == nil {
		return errs
	}
	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		errs.Add(apperr.NonFieldKey, err.Error())
		return errs
	}
	for _, fe := range fieldErrs {
		errs.Add(fe.Field(), tagMessage(fe))
	}
	return errs
}

func tagMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "max":
		return fmt.Sprintf("Ensure this field has no more than %s characters.", fe.Param())
	case "gte", "min":
		return fmt.Sprintf("Ensure this value is greater than or equal to %s.", fe.Param())
	}
	return "Invalid value."
}

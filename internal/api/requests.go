package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"ContentStudio/internal/domain"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

type onboardRequest struct {
	OwnerID         string `json:"owner_id" validate:"required"`
	Name            string `json:"name"`
	LinkedInURL     string `json:"linkedin_url" validate:"omitempty,url"`
	Bio             string `json:"bio"`
	Goals           string `json:"goals"`
	TonePreferences string `json:"tone_preferences"`
	Industry        string `json:"industry"`
	Role            string `json:"role"`
	TargetAudience  string `json:"target_audience"`
	CompanyName     string `json:"company_name"`
	ApprovalEmail   string `json:"approval_email" validate:"omitempty,email"`
}

type statusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending approved rejected scheduled"`
}

type feedbackRequest struct {
	Feedback string `json:"feedback" validate:"required"`
}

type newItemRequest struct {
	Title  string `json:"title" validate:"required"`
	Brief  string `json:"brief"`
	Format string `json:"format" validate:"omitempty,oneof=text story carousel"`
	Pillar string `json:"pillar"`
	Date   string `json:"scheduled_date" validate:"omitempty,datetime=2006-01-02"`
	Time   string `json:"scheduled_time" validate:"omitempty,datetime=15:04"`
}

type manualScriptRequest struct {
	ContentText string `json:"content_text" validate:"required"`
}

type sendApprovalRequest struct {
	ItemIDs []string `json:"item_ids" validate:"required,min=1,dive,required"`
}

type scheduleRequest struct {
	ScheduledTime time.Time `json:"scheduled_time" validate:"required"`
	Method        string    `json:"method" validate:"omitempty,oneof=manual auto"`
}

type assistRequest struct {
	Topic    string `json:"topic" validate:"required"`
	ClientID string `json:"client_id"`
}

type decisionRequest struct {
	Action   string `json:"action" validate:"required,oneof=approve reject"`
	Feedback string `json:"feedback"`
}

// decode reads a JSON body into dst and validates it.
func decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20))
	if err := dec.Decode(dst); err != nil {
		return &domain.ValidationError{Reason: "invalid request body: " + err.Error()}
	}
	return check(dst)
}

func check(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return &domain.ValidationError{Field: fe.Field(), Reason: describe(fe)}
	}
	return &domain.ValidationError{Reason: err.Error()}
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be an e-mail address"
	case "url":
		return "must be a URL"
	case "oneof":
		return "must be one of " + fe.Param()
	case "datetime":
		return "must match " + fe.Param()
	case "min":
		return "must have at least " + fe.Param() + " entries"
	}
	return fmt.Sprintf("failed %s check", fe.Tag())
}

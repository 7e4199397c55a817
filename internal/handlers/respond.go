package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"syllabus_calendar/internal/models"
	"syllabus_calendar/internal/usecases"
)

const maxBodyBytes = 5 << 20

var clockPattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// newValidator registers the date, time and event type rules used by request structs.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
		_, ok := usecases.ParseISODate(fl.Field().String())
		return ok
	})
	// An empty clock is allowed so a patch can clear the time.
	_ = v.RegisterValidation("clock", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return s == "" || clockPattern.MatchString(s)
	})
	_ = v.RegisterValidation("eventtype", func(fl validator.FieldLevel) bool {
		return models.EventType(fl.Field().String()).Valid()
	})

	return v
}

// decodeJSON reads a JSON body into dst and validates it.
func decodeJSON(w http.ResponseWriter, r *http.Request, v *validator.Validate, dst any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return validateStruct(v, dst)
}

func validateStruct(v *validator.Validate, dst any) error {
	err := v.Struct(dst)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, "missing required field: "+fe.Field())
		default:
			msgs = append(msgs, fmt.Sprintf("invalid %s (%s)", fe.Field(), fe.Tag()))
		}
	}
	return errors.New(strings.Join(msgs, "; "))
}

func writeJSON(w http.ResponseWriter, log *zap.Logger, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Warn("encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, log *zap.Logger, status int, msg string, details error) {
	resp := errorResponse{Error: msg}
	if details != nil {
		resp.Details = details.Error()
	}
	writeJSON(w, log, status, resp)
}

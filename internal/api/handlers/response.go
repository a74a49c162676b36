package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/m04kA/SMC-ConsultationService/internal/domain"
)

// Коды ошибок в конверте ответа
const (
	CodeValidation        = "validation_error"
	CodeConflict          = "conflict"
	CodeInvalidTransition = "invalid_transition"
	CodeForbidden         = "forbidden"
	CodeUnauthorized      = "unauthorized"
	CodeNotFound          = "not_found"
	CodeUnavailable       = "unavailable"
	CodeInternal          = "internal_error"
)

const (
	msgInternalError = "внутренняя ошибка сервера"
	msgUnavailable   = "сервис временно недоступен, повторите запрос"
	msgNotFound      = "объект не найден"
	maxBodyBytes     = 1 << 20
)

// ErrorBody содержимое конверта ошибки
type ErrorBody struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// ErrorResponse единый конверт ошибки {"error": {...}}
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// В ошибках валидации используем имена полей из JSON
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// DecodeJSON декодирует тело запроса в v
func DecodeJSON(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return errors.New("empty request body")
	}
	decoder := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	return decoder.Decode(v)
}

// Validate проверяет форму запроса по тегам validate и возвращает *domain.ValidationError
func Validate(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) && len(validationErrs) > 0 {
		fe := validationErrs[0]
		return domain.NewValidationError(fe.Field(), describeTag(fe))
	}
	return domain.NewValidationError("", err.Error())
}

func describeTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	case "gte":
		return fmt.Sprintf("must be >= %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be <= %s", fe.Param())
	default:
		return fmt.Sprintf("failed on %q", fe.Tag())
	}
}

// RespondJSON отправляет JSON ответ
func RespondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(data)
}

// RespondError отправляет конверт ошибки
func RespondError(w http.ResponseWriter, status int, code, message string, details map[string]any) {
	RespondJSON(w, status, ErrorResponse{Error: ErrorBody{
		Code:    code,
		Message: message,
		Details: details,
	}})
}

func RespondBadRequest(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusBadRequest, CodeValidation, message, nil)
}

func RespondUnauthorized(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusUnauthorized, CodeUnauthorized, message, nil)
}

func RespondForbidden(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusForbidden, CodeForbidden, message, nil)
}

func RespondNotFound(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusNotFound, CodeNotFound, message, nil)
}

func RespondInternalError(w http.ResponseWriter) {
	RespondError(w, http.StatusInternalServerError, CodeInternal, msgInternalError, nil)
}

// RespondDomainError переводит вид доменной ошибки в HTTP статус.
// Возвращает статус, чтобы обработчик мог выбрать уровень логирования.
func RespondDomainError(w http.ResponseWriter, err error) int {
	var (
		validationErr *domain.ValidationError
		conflictErr   *domain.ConflictError
		transitionErr *domain.InvalidTransitionError
	)

	switch {
	case errors.As(err, &validationErr):
		details := map[string]any{"reason": validationErr.Reason}
		if validationErr.Field != "" {
			details["field"] = validationErr.Field
		}
		RespondError(w, http.StatusBadRequest, CodeValidation, validationErr.Error(), details)
		return http.StatusBadRequest

	case errors.Is(err, domain.ErrValidation):
		RespondError(w, http.StatusBadRequest, CodeValidation, err.Error(), nil)
		return http.StatusBadRequest

	case errors.As(err, &conflictErr):
		RespondError(w, http.StatusConflict, CodeConflict, "выбранный временной слот недоступен",
			map[string]any{"bookingId": conflictErr.BookingID})
		return http.StatusConflict

	case errors.As(err, &transitionErr):
		details := map[string]any{"from": string(transitionErr.From), "event": string(transitionErr.Event)}
		if transitionErr.Reason != "" {
			details["reason"] = transitionErr.Reason
		}
		RespondError(w, http.StatusConflict, CodeInvalidTransition, transitionErr.Error(), details)
		return http.StatusConflict

	case errors.Is(err, domain.ErrConflict):
		RespondError(w, http.StatusConflict, CodeConflict, "выбранный временной слот недоступен", nil)
		return http.StatusConflict

	case errors.Is(err, domain.ErrInvalidTransition):
		RespondError(w, http.StatusConflict, CodeInvalidTransition, err.Error(), nil)
		return http.StatusConflict

	case errors.Is(err, domain.ErrForbidden):
		RespondForbidden(w, "доступ запрещен")
		return http.StatusForbidden

	case errors.Is(err, domain.ErrNotFound):
		RespondNotFound(w, msgNotFound)
		return http.StatusNotFound

	case errors.Is(err, domain.ErrTransient):
		w.Header().Set("Retry-After", "1")
		RespondError(w, http.StatusServiceUnavailable, CodeUnavailable, msgUnavailable, nil)
		return http.StatusServiceUnavailable

	default:
		RespondInternalError(w)
		return http.StatusInternalServerError
	}
}

// Package response содержит вспомогательные типы и функции для формирования
// унифицированных ответов HTTP‑обработчиков: JSON для API-клиентов
// и редиректы 303 для отправки HTML-форм.
package response

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/account-service/internal/models"
)

// Response описывает стандартную структуру JSON‑ответа сервера.
// Поле Next — страница, на которую браузер был бы перенаправлен после отправки формы.
type Response struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
	Next   string `json:"next,omitempty"`
	Data   any    `json:"data,omitempty"`
}

// ErrorResponse — структура ошибки для Swagger-документации.
type ErrorResponse struct {
	Status string `json:"status" example:"Error"`
	Error  string `json:"error" example:"invalid credentials"`
}

const (
	// StatusOK — значение статуса для успешного ответа.
	StatusOK = "OK"
	// StatusError — значение статуса для ответа с ошибкой.
	StatusError = "Error"
)

// OKWithData возвращает успешный Response с переданными данными.
func OKWithData(data any) Response {
	return Response{
		Status: StatusOK,
		Data:   data,
	}
}

// Error возвращает ErrorResponse с переданным сообщением.
func Error(msg string) ErrorResponse {
	return ErrorResponse{
		Status: StatusError,
		Error:  msg,
	}
}

// ValidationError формирует Response со статусом Error на основе ошибок валидации.
func ValidationError(errs validator.ValidationErrors) Response {
	var errsMsgs []string

	for _, err := range errs {
		switch err.ActualTag() {
		case "required":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is a required field", err.Field()))
		case "email":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be a valid email", err.Field()))
		default:
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is not a valid", err.Field()))
		}
	}
	return Response{
		Status: StatusError,
		Error:  strings.Join(errsMsgs, ", "),
	}
}

// FromError переводит ошибку сервиса в HTTP-статус и текст для клиента.
// Ошибки ввода дают 400 с текстом ошибки, всё остальное 500 без подробностей.
func FromError(err error) (int, ErrorResponse) {
	for _, kind := range []error{
		models.ErrPasswordMismatch,
		models.ErrUsernameTaken,
		models.ErrEmailTaken,
		models.ErrInvalidCredentials,
		models.ErrEmailNotFound,
		models.ErrInvalidEmail,
	} {
		if errors.Is(err, kind) {
			return http.StatusBadRequest, Error(kind.Error())
		}
	}
	return http.StatusInternalServerError, Error("internal error")
}

// IsForm сообщает, пришёл ли запрос из HTML-формы.
func IsForm(r *http.Request) bool {
	return render.GetRequestContentType(r) == render.ContentTypeForm
}

// Next завершает успешный запрос: форма получает редирект 303 на next,
// JSON-клиент получает Response с тем же адресом в поле next.
func Next(w http.ResponseWriter, r *http.Request, next string, data any) {
	if IsForm(r) {
		http.Redirect(w, r, next, http.StatusSeeOther)
		return
	}
	render.JSON(w, r, Response{
		Status: StatusOK,
		Next:   next,
		Data:   data,
	})
}

// Fail пишет ошибку сервиса с соответствующим статусом.
func Fail(w http.ResponseWriter, r *http.Request, err error) {
	status, resp := FromError(err)
	render.Status(r, status)
	render.JSON(w, r, resp)
}

// openapi.go — валидация входящих запросов по встроенному OpenAPI-контракту
// (kin-openapi). Некорректные параметры и тела отклоняются с VALIDATION_ERROR
// до вызова обработчиков. Запросы к путям вне контракта пропускаются
// без проверки: их обрабатывает роутер.
package middleware

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers/legacy"

	apierrors "github.com/Divyamm05/chatbot/internal/api/errors"
)

// OpenAPIValidator возвращает middleware валидации запросов по контракту.
// Аутентификация проверяется JWT middleware, поэтому security-схемы
// контракта здесь не проверяются.
func OpenAPIValidator(doc *openapi3.T) (func(http.Handler) http.Handler, error) {
	router, err := legacy.NewRouter(doc)
	if err != nil {
		return nil, fmt.Errorf("создание роутера OpenAPI: %w", err)
	}

	options := &openapi3filter.Options{
		AuthenticationFunc: openapi3filter.NoopAuthenticationFunc,
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			route, pathParams, err := router.FindRoute(r)
			if err != nil {
				// Путь или метод вне контракта — 404/405 вернёт роутер
				next.ServeHTTP(w, r)
				return
			}

			err = openapi3filter.ValidateRequest(r.Context(), &openapi3filter.RequestValidationInput{
				Request:    r,
				PathParams: pathParams,
				Route:      route,
				Options:    options,
			})
			if err != nil {
				apierrors.ValidationError(w, validationMessage(err))
				return
			}

			next.ServeHTTP(w, r)
		})
	}, nil
}

// validationMessage формирует краткое сообщение об ошибке валидации.
func validationMessage(err error) string {
	var reqErr *openapi3filter.RequestError
	if errors.As(err, &reqErr) {
		detail := reqErr.Reason
		if reqErr.Err != nil {
			detail = reqErr.Err.Error()
		}
		switch {
		case reqErr.Parameter != nil:
			return fmt.Sprintf("Некорректный параметр %s: %s", reqErr.Parameter.Name, detail)
		case reqErr.RequestBody != nil:
			return "Некорректное тело запроса: " + detail
		}
	}
	return "Запрос не соответствует контракту: " + err.Error()
}

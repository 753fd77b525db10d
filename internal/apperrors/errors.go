// Package apperrors определяет сентинельные ошибки доменного уровня.
// Сервисы возвращают их (обёрнутыми через %w), а HTTP-слой по errors.Is
// отображает в соответствующие статусы ответа.
package apperrors

import "errors"

var (
	// ErrNotFound — запись отсутствует в хранилище.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorizedAccess — запись существует, но у пользователя нет прав на неё.
	ErrUnauthorizedAccess = errors.New("unauthorized access")
	// ErrAlreadyExists — нарушение уникальности username или email.
	ErrAlreadyExists = errors.New("already exists")
	// ErrInvalidToken — токен не разбирается, не подписан или просрочен.
	ErrInvalidToken = errors.New("invalid token")
	// ErrInvalidCredentials — неверная пара логин/пароль.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

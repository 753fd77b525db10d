// Package jwt реализует выпуск, проверку и обновление JWT токенов
// с пользовательскими claim полями.
//
// Maker определяет интерфейс сессионного слоя: выпуск токена с username,
// ролью и uid пользователя, разбор токена, быструю проверку валидности,
// извлечение subject без повторной проверки срока и ротацию токена,
// которому осталось жить меньше часа.
package jwt

import (
	"time"
)

// Maker описывает интерфейс для работы с JWT токенами.
type Maker interface {
	// GenerateToken выпускает подписанный токен с username, role и useruid.
	GenerateToken(username, role, useruid string) (string, error)
	// ParseToken разбирает токен, проверяя подпись и срок действия.
	ParseToken(tokenStr string) (*CustomClaims, error)
	// Validate отвечает, валиден ли токен; на любой ошибке возвращает false.
	Validate(tokenStr string) bool
	// Subject возвращает username из токена без повторной проверки срока.
	Subject(tokenStr string) (string, error)
	// RefreshIfNeeded возвращает новый токен, если старому осталось меньше
	// часа, иначе исходный токен без изменений.
	RefreshIfNeeded(tokenStr string) (string, error)
}

// MakerImpl реализует интерфейс Maker с использованием секретного ключа
// и времени жизни токена (TTL).
type MakerImpl struct {
	secretKey string        // Секретный ключ для подписи токенов.
	tokenTTL  time.Duration // Время жизни токена.
}

// NewJWTMaker создаёт новый экземпляр MakerImpl на основе секретного ключа и TTL.
func NewJWTMaker(secretKey string, ttl time.Duration) *MakerImpl {
	return &MakerImpl{
		secretKey: secretKey,
		tokenTTL:  ttl,
	}
}

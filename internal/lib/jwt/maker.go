package jwt

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/magabrotheeeer/task-manager/internal/apperrors"
)

// refreshThreshold — остаток срока действия, при котором токен ротируется.
const refreshThreshold = time.Hour

// CustomClaims описывает пользовательские данные, хранящиеся в JWT.
type CustomClaims struct {
	Username             string `json:"username"` // Имя пользователя
	Role                 string `json:"role"`     // Роль пользователя
	UserUID              string `json:"user_uid"` // Идентификатор пользователя
	jwt.RegisteredClaims        // Встроенные стандартные claims JWT (ExpiresAt, IssuedAt и пр.)
}

// GenerateToken создает JWT токен с заданными username, role и useruid,
// подписывая его секретным ключом.
//
// Время жизни токена определяется полем tokenTTL.
func (j *MakerImpl) GenerateToken(username, role, useruid string) (string, error) {
	claims := CustomClaims{
		Username: username,
		Role:     role,
		UserUID:  useruid,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(j.tokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(j.secretKey))
}

// ParseToken парсит JWT токен, проверяет его подпись и срок действия,
// возвращает CustomClaims с данными, если токен корректен.
func (j *MakerImpl) ParseToken(tokenStr string) (*CustomClaims, error) {
	const op = "jwt.ParseToken"
	token, err := jwt.ParseWithClaims(tokenStr, &CustomClaims{}, func(_ *jwt.Token) (any, error) {
		return []byte(j.secretKey), nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	claims, ok := token.Claims.(*CustomClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%s: %w", op, apperrors.ErrInvalidToken)
	}
	return claims, nil
}

// Validate отвечает, валиден ли токен. Любая проблема — плохая подпись,
// битый формат, истёкший срок, пустые claims — даёт false, не ошибку.
func (j *MakerImpl) Validate(tokenStr string) bool {
	_, err := j.ParseToken(tokenStr)
	return err == nil
}

// Subject извлекает username из токена, не проверяя срок действия заново.
// Возвращает apperrors.ErrInvalidToken, если токен не разбирается.
func (j *MakerImpl) Subject(tokenStr string) (string, error) {
	const op = "jwt.Subject"
	claims := &CustomClaims{}
	_, err := jwt.ParseWithClaims(tokenStr, claims, func(_ *jwt.Token) (any, error) {
		return []byte(j.secretKey), nil
	}, jwt.WithoutClaimsValidation())
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, apperrors.ErrInvalidToken)
	}
	return claims.Username, nil
}

// RefreshIfNeeded ротирует токен, которому осталось меньше часа: выпускает
// новый с тем же username, role и uid и свежим TTL. Валидный токен с большим
// остатком и любой невалидный токен возвращаются без изменений.
func (j *MakerImpl) RefreshIfNeeded(tokenStr string) (string, error) {
	claims, err := j.ParseToken(tokenStr)
	if err != nil {
		return tokenStr, nil
	}
	if claims.ExpiresAt == nil {
		return tokenStr, nil
	}
	if time.Until(claims.ExpiresAt.Time) >= refreshThreshold {
		return tokenStr, nil
	}
	return j.GenerateToken(claims.Username, claims.Role, claims.UserUID)
}

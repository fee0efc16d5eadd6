// Package password реализует функции для безопасного хеширования и проверки паролей.
//
// Hash создает PBKDF2-HMAC-SHA256 хеш пароля для безопасного хранения.
// Verify сравнивает сохранённый хеш с введённым паролем, проверяя их соответствие
// за постоянное время.
package password

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

const (
	saltLength = 16    // Длина соли в байтах
	iterations = 65536 // Число итераций PBKDF2
	keyLength  = 32    // Длина производного ключа, 256 бит
)

// Hash принимает пароль пользователя и возвращает строку вида
// base64(salt) + ":" + base64(key), где key получен через
// PBKDF2-HMAC-SHA256 с 65536 итерациями и случайной 16-байтовой солью.
func Hash(rawPassword string) (string, error) {
	const op = "password.Hash"
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	key := pbkdf2.Key([]byte(rawPassword), salt, iterations, keyLength, sha256.New)
	return base64.StdEncoding.EncodeToString(salt) + ":" +
		base64.StdEncoding.EncodeToString(key), nil
}

// Verify сравнивает сохранённый хеш с введённым паролем.
//
// Возвращает true, если пароль соответствует хешу. Сравнение не
// прерывается на первом расхождении: различия накапливаются через OR.
func Verify(rawPassword, storedHash string) bool {
	parts := strings.SplitN(storedHash, ":", 2)
	if len(parts) != 2 {
		return false
	}
	salt, err := base64.StdEncoding.DecodeString(parts[0])
	if err != nil {
		return false
	}
	expected, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return false
	}
	key := pbkdf2.Key([]byte(rawPassword), salt, iterations, len(expected), sha256.New)
	return slowEquals(expected, key)
}

func slowEquals(a, b []byte) bool {
	diff := len(a) ^ len(b)
	for i := 0; i < len(a) && i < len(b); i++ {
		diff |= int(a[i] ^ b[i])
	}
	return diff == 0
}

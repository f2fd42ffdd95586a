package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// keyCharset VIP 키에 사용하는 문자 집합 (대문자 + 숫자)
const keyCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// keyLength VIP 키 길이
const keyLength = 8

// GenerateKey VIP 키 생성 (형식: 8자리 대문자/숫자, 예: A1B2C3D4)
func GenerateKey() (string, error) {
	buf := make([]byte, keyLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}

	for i, b := range buf {
		buf[i] = keyCharset[int(b)%len(keyCharset)]
	}
	return string(buf), nil
}

// GenerateID UUID 스타일 ID 생성
func GenerateID(prefix string) (string, error) {
	bytes := make([]byte, 16)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}

	id := hex.EncodeToString(bytes)
	if prefix != "" {
		return fmt.Sprintf("%s-%s", prefix, id[:16]), nil
	}
	return id[:16], nil
}

// HashPassword 비밀번호 해싱
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// CheckPassword 비밀번호 검증
func CheckPassword(hashedPassword, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
	return err == nil
}

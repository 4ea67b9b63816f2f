// Package password centraliza el hash bcrypt y la política de fortaleza de contraseñas.
package password

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
)

// bcrypt solo considera los primeros 72 bytes.
const maxBcryptBytes = 72

// SpecialChars caracteres aceptados como "especiales" por la política.
const SpecialChars = `!@#$%^&*(),.?":{}|<>`

// ErrMismatch contraseña incorrecta.
var ErrMismatch = errors.New("password: no coincide")

// Policy reglas de longitud y costo del hash.
type Policy struct {
	MinLength int
	MaxLength int
	Cost      int
}

// DefaultPolicy 8-128 caracteres, costo 12.
func DefaultPolicy() Policy {
	return Policy{MinLength: 8, MaxLength: 128, Cost: 12}
}

// Validate comprueba longitud, mayúscula, minúscula, dígito y carácter especial.
// Devuelve un error con el primer incumplimiento encontrado.
func (p Policy) Validate(plain string) error {
	n := utf8.RuneCountInString(plain)
	if n < p.MinLength {
		return fmt.Errorf("la contraseña debe tener al menos %d caracteres", p.MinLength)
	}
	if p.MaxLength > 0 && n > p.MaxLength {
		return fmt.Errorf("la contraseña no puede superar %d caracteres", p.MaxLength)
	}
	var upper, lower, digit, special bool
	for _, r := range plain {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(SpecialChars, r):
			special = true
		}
	}
	switch {
	case !upper:
		return errors.New("la contraseña debe contener al menos una mayúscula")
	case !lower:
		return errors.New("la contraseña debe contener al menos una minúscula")
	case !digit:
		return errors.New("la contraseña debe contener al menos un número")
	case !special:
		return errors.New("la contraseña debe contener al menos un carácter especial")
	}
	return nil
}

// Hash genera el hash bcrypt de la contraseña truncada a 72 bytes.
func (p Policy) Hash(plain string) (string, error) {
	cost := p.Cost
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	h, err := bcrypt.GenerateFromPassword(truncate(plain), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(h), nil
}

// Verify compara la contraseña en texto plano con el hash almacenado.
func Verify(hash, plain string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), truncate(plain)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrMismatch
		}
		return fmt.Errorf("verify password: %w", err)
	}
	return nil
}

// truncate corta a 72 bytes sin partir un carácter multibyte.
func truncate(plain string) []byte {
	b := []byte(plain)
	if len(b) <= maxBcryptBytes {
		return b
	}
	cut := maxBcryptBytes
	for cut > 0 && !utf8.RuneStart(b[cut]) {
		cut--
	}
	return b[:cut]
}

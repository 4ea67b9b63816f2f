package password

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// costo mínimo para que los tests sean rápidos
var testPolicy = Policy{MinLength: 8, MaxLength: 128, Cost: 4}

func TestValidate(t *testing.T) {
	cases := []struct {
		name  string
		plain string
		ok    bool
	}{
		{"válida", "Secreta#2024", true},
		{"muy corta", "Ab1#", false},
		{"sin mayúscula", "secreta#2024", false},
		{"sin minúscula", "SECRETA#2024", false},
		{"sin número", "Secreta#abcd", false},
		{"sin especial", "Secreta2024x", false},
		{"demasiado larga", "Aa1#" + strings.Repeat("x", 200), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := testPolicy.Validate(tc.plain)
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestHashAndVerify(t *testing.T) {
	hash, err := testPolicy.Hash("Secreta#2024")
	require.NoError(t, err)
	assert.NotEqual(t, "Secreta#2024", hash)

	assert.NoError(t, Verify(hash, "Secreta#2024"))
	assert.ErrorIs(t, Verify(hash, "Secreta#2025"), ErrMismatch)
}

func TestHash_ContraseñaLargaSeTruncaA72Bytes(t *testing.T) {
	long := strings.Repeat("a", 72)
	hash, err := testPolicy.Hash(long + "EXTRA")
	require.NoError(t, err, "bcrypt no debe fallar con contraseñas de más de 72 bytes")

	assert.NoError(t, Verify(hash, long+"OTRO"), "solo cuentan los primeros 72 bytes")
}

func TestTruncate_NoParteRunas(t *testing.T) {
	plain := strings.Repeat("a", 71) + "ñ" // ñ ocupa 2 bytes: 73 en total
	b := truncate(plain)
	assert.Len(t, b, 71)
	assert.True(t, utf8.Valid(b))
}

package crypto

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"

func TestCipher_IdaYVuelta(t *testing.T) {
	c, err := NewAESCipher(testKey)
	require.NoError(t, err)

	plaintext := []byte("contenido del .p12 con su contraseña")
	enc, err := c.Encrypt(plaintext)
	require.NoError(t, err)
	assert.NotEqual(t, plaintext, enc)

	dec, err := c.Decrypt(enc)
	require.NoError(t, err)
	assert.Equal(t, plaintext, dec)
}

func TestCipher_NonceUnicoPorMensaje(t *testing.T) {
	c, err := NewAESCipher(testKey)
	require.NoError(t, err)

	a, err := c.Encrypt([]byte("mismo mensaje"))
	require.NoError(t, err)
	b, err := c.Encrypt([]byte("mismo mensaje"))
	require.NoError(t, err)
	assert.NotEqual(t, a, b, "cada cifrado lleva nonce propio")
}

func TestCipher_RechazaAlterado(t *testing.T) {
	c, err := NewAESCipher(testKey)
	require.NoError(t, err)

	enc, err := c.Encrypt([]byte("material sensible"))
	require.NoError(t, err)
	enc[len(enc)-1] ^= 0xff

	_, err = c.Decrypt(enc)
	assert.Error(t, err, "GCM detecta la alteración")
}

func TestCipher_RechazaOtraLlave(t *testing.T) {
	a, err := NewAESCipher(testKey)
	require.NoError(t, err)
	b, err := NewAESCipher(strings.Repeat("ff", 32))
	require.NoError(t, err)

	enc, err := a.Encrypt([]byte("material"))
	require.NoError(t, err)
	_, err = b.Decrypt(enc)
	assert.Error(t, err)
}

func TestNewAESCipher_LlaveInvalida(t *testing.T) {
	_, err := NewAESCipher("no-es-hex")
	assert.Error(t, err)

	_, err = NewAESCipher("abcd") // muy corta
	assert.Error(t, err)
}

func TestCipher_CiphertextCorto(t *testing.T) {
	c, err := NewAESCipher(testKey)
	require.NoError(t, err)
	_, err = c.Decrypt([]byte{1, 2, 3})
	assert.Error(t, err)
}

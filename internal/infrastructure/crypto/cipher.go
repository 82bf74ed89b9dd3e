// Package crypto cifra el material de la bóveda de certificados en reposo.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
)

// AESCipher cifrado AES-256-GCM con la llave maestra del servidor. El nonce
// se genera por mensaje y viaja como prefijo del ciphertext.
type AESCipher struct {
	gcm cipher.AEAD
}

// NewAESCipher construye el cifrador desde la llave maestra en hex
// (VAULT_MASTER_KEY, 32 bytes = 64 caracteres hex).
func NewAESCipher(masterKeyHex string) (*AESCipher, error) {
	key, err := hex.DecodeString(masterKeyHex)
	if err != nil {
		return nil, fmt.Errorf("crypto: llave maestra no es hex válido: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("crypto: la llave maestra debe tener 32 bytes, tiene %d", len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("crypto: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("crypto: %w", err)
	}
	return &AESCipher{gcm: gcm}, nil
}

// Encrypt cifra y autentica. Salida: nonce || ciphertext.
func (c *AESCipher) Encrypt(plaintext []byte) ([]byte, error) {
	nonce := make([]byte, c.gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("crypto: generar nonce: %w", err)
	}
	return c.gcm.Seal(nonce, nonce, plaintext, nil), nil
}

// Decrypt verifica la autenticación y descifra. Un ciphertext alterado o
// cifrado con otra llave falla, nunca devuelve basura.
func (c *AESCipher) Decrypt(data []byte) ([]byte, error) {
	ns := c.gcm.NonceSize()
	if len(data) < ns {
		return nil, fmt.Errorf("crypto: ciphertext demasiado corto")
	}
	plaintext, err := c.gcm.Open(nil, data[:ns], data[ns:], nil)
	if err != nil {
		return nil, fmt.Errorf("crypto: descifrado falló: %w", err)
	}
	return plaintext, nil
}

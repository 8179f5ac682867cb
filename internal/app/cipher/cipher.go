/*
Package cipher implements the symmetric codec applied to message bodies before
they are written to the database and after they are read back.

The envelope format is hex(iv) + ":" + hex(ciphertext) under AES-256-CBC with
PKCS#7 padding, so the IV travels with the ciphertext. A value containing no
separator is treated as legacy plaintext written before encryption was
introduced and is returned unchanged. This is transport/at-rest obfuscation
with a process-wide key, not end-to-end encryption.
*/
package cipher

import (
	"bytes"
	"crypto/aes"
	stdcipher "crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"

	"crmchat/internal/pkg/errs"
)

// Separator joins the hex-encoded IV and ciphertext in the stored envelope.
const Separator = ":"

// Codec encrypts and decrypts message bodies with a fixed process-wide key.
// It holds no mutable state and is safe for concurrent use.
type Codec struct {
	block stdcipher.Block
}

// NewCodec builds a Codec from a 32-byte AES-256 key.
func NewCodec(key []byte) (*Codec, error) {
	if len(key) != 32 {
		return nil, fmt.Errorf("message key must be 32 bytes for AES-256, got %d", len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cipher: %w", err)
	}

	return &Codec{block: block}, nil
}

// Encrypt produces a fresh random IV, encrypts the plaintext under CBC mode,
// and serializes the result as hex(iv) + Separator + hex(ciphertext).
func (c *Codec) Encrypt(plaintext string) (string, error) {
	iv := make([]byte, aes.BlockSize)
	if _, err := rand.Read(iv); err != nil {
		return "", fmt.Errorf("failed to generate IV: %w", err)
	}

	padded := pkcs7Pad([]byte(plaintext), aes.BlockSize)

	ciphertext := make([]byte, len(padded))
	stdcipher.NewCBCEncrypter(c.block, iv).CryptBlocks(ciphertext, padded)

	return hex.EncodeToString(iv) + Separator + hex.EncodeToString(ciphertext), nil
}

// Decrypt reverses Encrypt. An envelope without the separator is returned
// unchanged (legacy plaintext rule). Any structural defect in the envelope
// yields ErrMalformedCiphertext.
func (c *Codec) Decrypt(envelope string) (string, error) {
	if !strings.Contains(envelope, Separator) {
		return envelope, nil
	}

	ivPart, ctPart, _ := strings.Cut(envelope, Separator)

	iv, err := hex.DecodeString(ivPart)
	if err != nil || len(iv) != aes.BlockSize {
		return "", errs.NewError(errs.ErrMalformedCiphertext)
	}

	ciphertext, err := hex.DecodeString(ctPart)
	if err != nil || len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return "", errs.NewError(errs.ErrMalformedCiphertext)
	}

	plaintext := make([]byte, len(ciphertext))
	stdcipher.NewCBCDecrypter(c.block, iv).CryptBlocks(plaintext, ciphertext)

	unpadded, err := pkcs7Unpad(plaintext, aes.BlockSize)
	if err != nil {
		return "", errs.NewError(errs.ErrMalformedCiphertext)
	}

	return string(unpadded), nil
}

// pkcs7Pad appends PKCS#7 padding up to the next block boundary.
func pkcs7Pad(data []byte, blockSize int) []byte {
	padLen := blockSize - len(data)%blockSize
	return append(data, bytes.Repeat([]byte{byte(padLen)}, padLen)...)
}

// pkcs7Unpad strips and verifies PKCS#7 padding.
func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, fmt.Errorf("invalid padded length %d", len(data))
	}

	padLen := int(data[len(data)-1])
	if padLen == 0 || padLen > blockSize || padLen > len(data) {
		return nil, fmt.Errorf("invalid padding length %d", padLen)
	}

	for _, b := range data[len(data)-padLen:] {
		if int(b) != padLen {
			return nil, fmt.Errorf("inconsistent padding bytes")
		}
	}

	return data[:len(data)-padLen], nil
}

// Package codec provides the wire-level JSON serialization plus the
// optional password-derived symmetric encryption and sign/verify envelope
// described by the messaging adapter's codec utilities. Encryption is wired
// into the protocol but left disabled by default in the reference
// deployment; the API exists so placements and shots can be signed later.
package codec

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"unicode/utf8"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

// Error kinds mirror the reference TranslationError variants so callers can
// branch on failure class without string matching.
var (
	// ErrArgon2 is returned when the derived key fails to authenticate the
	// ciphertext, almost always meaning the wrong key was supplied.
	ErrArgon2 = errors.New("codec: key derivation/decryption failed")
	// ErrBase64 signals a malformed encrypted envelope.
	ErrBase64 = errors.New("codec: malformed base64 envelope")
	// ErrUTF8 signals the decrypted plaintext was not valid UTF-8.
	ErrUTF8 = errors.New("codec: decrypted payload is not valid UTF-8")
	// ErrJSON wraps a JSON marshal/unmarshal failure.
	ErrJSON = errors.New("codec: json error")
	// ErrVerification signals a sign/verify mismatch.
	ErrVerification = errors.New("codec: verification failed")
)

const (
	saltSize      = 16
	argon2Time    = 1
	argon2Memory  = 64 * 1024
	argon2Threads = 4
)

// Serialize marshals value to its standard JSON wire representation.
func Serialize(value any) (string, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrJSON, err)
	}
	return string(data), nil
}

// Deserialize unmarshals a JSON string into out.
func Deserialize(input string, out any) error {
	if err := json.Unmarshal([]byte(input), out); err != nil {
		return fmt.Errorf("%w: %v", ErrJSON, err)
	}
	return nil
}

func deriveKey(key string, salt []byte) []byte {
	return argon2.IDKey([]byte(key), salt, argon2Time, argon2Memory, argon2Threads, chacha20poly1305.KeySize)
}

// Encrypt authenticates and encrypts plaintext under a password-derived key.
// The returned envelope is base64(salt || nonce || ciphertext).
func Encrypt(plaintext, key string) (string, error) {
	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("%w: %v", ErrArgon2, err)
	}
	derived := deriveKey(key, salt)
	aead, err := chacha20poly1305.New(derived)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrArgon2, err)
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("%w: %v", ErrArgon2, err)
	}
	ciphertext := aead.Seal(nil, nonce, []byte(plaintext), nil)

	envelope := make([]byte, 0, len(salt)+len(nonce)+len(ciphertext))
	envelope = append(envelope, salt...)
	envelope = append(envelope, nonce...)
	envelope = append(envelope, ciphertext...)
	return base64.StdEncoding.EncodeToString(envelope), nil
}

// Decrypt reverses Encrypt, failing with ErrArgon2 on wrong key or corrupted
// ciphertext, ErrBase64 on a malformed envelope, and ErrUTF8 if the
// decrypted bytes are not valid UTF-8.
func Decrypt(envelopeB64, key string) (string, error) {
	envelope, err := base64.StdEncoding.DecodeString(envelopeB64)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrBase64, err)
	}
	if len(envelope) < saltSize+chacha20poly1305.NonceSize {
		return "", fmt.Errorf("%w: envelope too short", ErrBase64)
	}
	salt := envelope[:saltSize]
	nonce := envelope[saltSize : saltSize+chacha20poly1305.NonceSize]
	ciphertext := envelope[saltSize+chacha20poly1305.NonceSize:]

	derived := deriveKey(key, salt)
	aead, err := chacha20poly1305.New(derived)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrArgon2, err)
	}
	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrArgon2, err)
	}
	if !utf8.Valid(plaintext) {
		return "", ErrUTF8
	}
	return string(plaintext), nil
}

// signedMessage is the wire envelope produced by Sign and consumed by Verify.
type signedMessage struct {
	Data json.RawMessage `json:"data"`
	Sign string          `json:"sign"`
}

// Sign wraps value's serialized form in a {data, sign} envelope where sign
// is Encrypt(serialize(data), key).
func Sign(value any, key string) (string, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrJSON, err)
	}
	sign, err := Encrypt(string(data), key)
	if err != nil {
		return "", err
	}
	envelope, err := json.Marshal(signedMessage{Data: data, Sign: sign})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrJSON, err)
	}
	return string(envelope), nil
}

// Verify deserializes a Sign envelope and returns the raw data bytes iff the
// decrypted sign equals the re-serialized data, else ErrVerification.
func Verify(envelope string, key string) (json.RawMessage, error) {
	var signed signedMessage
	if err := json.Unmarshal([]byte(envelope), &signed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrJSON, err)
	}
	decryptedSign, err := Decrypt(signed.Sign, key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrVerification, err)
	}
	if decryptedSign != string(signed.Data) {
		return nil, fmt.Errorf("%w: decrypted sign does not match data", ErrVerification)
	}
	return signed.Data, nil
}

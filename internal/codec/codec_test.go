package codec

import (
	"errors"
	"strings"
	"testing"
)

type shotPayload struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func TestSerializeDeserializeRoundTrip(t *testing.T) {
	in := shotPayload{X: 3, Y: 7}
	wire, err := Serialize(in)
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}
	var out shotPayload
	if err := Deserialize(wire, &out); err != nil {
		t.Fatalf("deserialize: %v", err)
	}
	if out != in {
		t.Errorf("round trip mismatch: got %+v, want %+v", out, in)
	}
}

func TestDeserializeMalformedJSON(t *testing.T) {
	var out shotPayload
	err := Deserialize("{not json", &out)
	if !errors.Is(err, ErrJSON) {
		t.Fatalf("expected ErrJSON, got %v", err)
	}
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	plaintext := `{"x":1,"y":2}`
	key := "game-secret"

	envelope, err := Encrypt(plaintext, key)
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	got, err := Decrypt(envelope, key)
	if err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	if got != plaintext {
		t.Errorf("decrypt mismatch: got %q, want %q", got, plaintext)
	}
}

func TestEncryptDecryptRoundTripNonASCIIWithQuotesAndBackslashes(t *testing.T) {
	// Regression: plaintext mixing a non-ASCII byte with a literal quote or
	// backslash must still round-trip; a naive "wrap in quotes and probe
	// json.Valid, else require pure ASCII" check rejects this.
	key := "game-secret"
	for _, plaintext := range []string{
		`sé"to`,
		"back\\é",
		`"é\`,
	} {
		envelope, err := Encrypt(plaintext, key)
		if err != nil {
			t.Fatalf("encrypt(%q): %v", plaintext, err)
		}
		got, err := Decrypt(envelope, key)
		if err != nil {
			t.Fatalf("decrypt(%q): unexpected error %v", plaintext, err)
		}
		if got != plaintext {
			t.Errorf("decrypt(%q) = %q, want %q", plaintext, got, plaintext)
		}
	}
}

func TestEncryptProducesDistinctEnvelopes(t *testing.T) {
	a, err := Encrypt("same", "key")
	if err != nil {
		t.Fatalf("encrypt a: %v", err)
	}
	b, err := Encrypt("same", "key")
	if err != nil {
		t.Fatalf("encrypt b: %v", err)
	}
	if a == b {
		t.Errorf("expected distinct envelopes due to random salt/nonce")
	}
}

func TestDecryptWrongKeyFails(t *testing.T) {
	envelope, err := Encrypt("secret payload", "correct-key")
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	_, err = Decrypt(envelope, "wrong-key")
	if !errors.Is(err, ErrArgon2) {
		t.Fatalf("expected ErrArgon2 on wrong key, got %v", err)
	}
}

func TestDecryptMalformedBase64(t *testing.T) {
	_, err := Decrypt("not-base64!!", "key")
	if !errors.Is(err, ErrBase64) {
		t.Fatalf("expected ErrBase64, got %v", err)
	}
}

func TestSignVerifyRoundTrip(t *testing.T) {
	payload := shotPayload{X: 4, Y: 9}
	key := "player-secret"

	envelope, err := Sign(payload, key)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	data, err := Verify(envelope, key)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	var out shotPayload
	if err := Deserialize(string(data), &out); err != nil {
		t.Fatalf("deserialize verified data: %v", err)
	}
	if out != payload {
		t.Errorf("verified data mismatch: got %+v, want %+v", out, payload)
	}
}

func TestVerifyWrongKeyFails(t *testing.T) {
	envelope, err := Sign(shotPayload{X: 1, Y: 1}, "correct-key")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	_, err = Verify(envelope, "wrong-key")
	if !errors.Is(err, ErrVerification) {
		t.Fatalf("expected ErrVerification, got %v", err)
	}
}

func TestVerifyTamperedDataFails(t *testing.T) {
	envelope, err := Sign(shotPayload{X: 1, Y: 1}, "key")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	tampered := strings.Replace(envelope, `"x":1`, `"x":2`, 1)
	if tampered == envelope {
		t.Fatalf("expected envelope data to contain \"x\":1, got %s", envelope)
	}
	_, err = Verify(tampered, "key")
	if !errors.Is(err, ErrVerification) {
		t.Fatalf("expected ErrVerification on tampered data, got %v", err)
	}
}

package secret

import (
	"bytes"
	"encoding/base64"
	"errors"
	"strings"
	"testing"

	"credshield/internal/domain/entity"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(bytes.Repeat([]byte{0x42}, KeySize))
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	return store
}

func TestNewStore_KeyLength(t *testing.T) {
	tests := []struct {
		name    string
		keyLen  int
		wantErr bool
	}{
		{"32 bytes", 32, false},
		{"16 bytes", 16, true},
		{"empty", 0, true},
		{"33 bytes", 33, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewStore(bytes.Repeat([]byte{0x01}, tt.keyLen))
			if (err != nil) != tt.wantErr {
				t.Errorf("NewStore() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestStore_RoundTrip(t *testing.T) {
	store := testStore(t)

	secrets := []string{
		"a",
		"sk-ant-REDACTED",
		strings.Repeat("x", 4096),
		"secret with spaces and 日本語",
	}

	for _, plaintext := range secrets {
		ciphertext, err := store.Encrypt(plaintext)
		if err != nil {
			t.Fatalf("Encrypt(%q) error = %v", plaintext, err)
		}
		if ciphertext == plaintext {
			t.Fatal("ciphertext must differ from plaintext")
		}

		got, err := store.Decrypt(ciphertext)
		if err != nil {
			t.Fatalf("Decrypt() error = %v", err)
		}
		if got != plaintext {
			t.Errorf("Decrypt(Encrypt(%q)) = %q", plaintext, got)
		}
	}
}

func TestStore_EncryptEmpty(t *testing.T) {
	store := testStore(t)

	if _, err := store.Encrypt(""); !errors.Is(err, entity.ErrEmptySecret) {
		t.Errorf("Encrypt(\"\") error = %v, want ErrEmptySecret", err)
	}
}

func TestStore_DecryptFailures(t *testing.T) {
	store := testStore(t)

	valid, err := store.Encrypt("some-secret")
	if err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}

	// Flip one byte of the sealed payload to break authentication.
	raw, err := base64.StdEncoding.DecodeString(valid)
	if err != nil {
		t.Fatalf("decode ciphertext: %v", err)
	}
	raw[len(raw)-1] ^= 0xff
	tampered := base64.StdEncoding.EncodeToString(raw)

	tests := []struct {
		name       string
		ciphertext string
	}{
		{"empty", ""},
		{"not base64", "%%%not-base64%%%"},
		{"too short", base64.StdEncoding.EncodeToString([]byte("tiny"))},
		{"tampered", tampered},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := store.Decrypt(tt.ciphertext); !errors.Is(err, entity.ErrDecryptionFailed) {
				t.Errorf("Decrypt() error = %v, want ErrDecryptionFailed", err)
			}
		})
	}
}

func TestStore_WrongKey(t *testing.T) {
	store := testStore(t)
	other, err := NewStore(bytes.Repeat([]byte{0x24}, KeySize))
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}

	ciphertext, err := store.Encrypt("cross-key-secret")
	if err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}

	if _, err := other.Decrypt(ciphertext); !errors.Is(err, entity.ErrDecryptionFailed) {
		t.Errorf("Decrypt() with wrong key error = %v, want ErrDecryptionFailed", err)
	}
}

func TestMask(t *testing.T) {
	tests := []struct {
		name      string
		plaintext string
		want      string
	}{
		{"empty", "", "***"},
		{"short", "abc", "***"},
		{"13 chars masked fully", "1234567890123", "***"},
		{"14 chars reveals edges", "12345678901234", "123456" + strings.Repeat("*", 15) + "78901234"},
		{
			"anthropic-shaped key",
			"sk-ant-REDACTED",
			"sk-ant" + strings.Repeat("*", 15) + "on-12345",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Mask(tt.plaintext); got != tt.want {
				t.Errorf("Mask(%q) = %q, want %q", tt.plaintext, got, tt.want)
			}
		})
	}
}

func TestMask_Shape(t *testing.T) {
	masked := Mask("sk-ant-REDACTED")
	if len(masked) != 6+15+8 {
		t.Errorf("masked length = %d, want %d", len(masked), 6+15+8)
	}
	if !strings.Contains(masked, strings.Repeat("*", 15)) {
		t.Error("masked secret must contain exactly fifteen stars between the edges")
	}
}

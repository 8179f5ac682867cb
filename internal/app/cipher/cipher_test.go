package cipher

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"crmchat/internal/pkg/errs"
)

var testKey = []byte("0123456789abcdef0123456789abcdef")

func newTestCodec(t *testing.T) *Codec {
	t.Helper()

	codec, err := NewCodec(testKey)
	require.NoError(t, err)
	return codec
}

func TestNewCodec_RejectsBadKeyLength(t *testing.T) {
	for _, n := range []int{0, 16, 31, 33, 64} {
		_, err := NewCodec(make([]byte, n))
		require.Error(t, err, "key length %d should be rejected", n)
	}
}

func TestCodec_RoundTrip(t *testing.T) {
	codec := newTestCodec(t)

	tests := []struct {
		name      string
		plaintext string
	}{
		{"simple", "hello team"},
		{"empty", ""},
		{"whitespace only", "   "},
		{"contains separator", "meeting at 15:30, room 2:B"},
		{"unicode", "Привет! 你好 🚀"},
		{"exactly one block", "sixteen bytes!!!"},
		{"long", strings.Repeat("quarterly lead report ", 200)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			envelope, err := codec.Encrypt(tt.plaintext)
			require.NoError(t, err)
			require.Contains(t, envelope, Separator)
			require.NotContains(t, envelope, tt.plaintext)

			decrypted, err := codec.Decrypt(envelope)
			require.NoError(t, err)
			require.Equal(t, tt.plaintext, decrypted)
		})
	}
}

func TestCodec_FreshIVPerCall(t *testing.T) {
	codec := newTestCodec(t)

	first, err := codec.Encrypt("same message")
	require.NoError(t, err)
	second, err := codec.Encrypt("same message")
	require.NoError(t, err)

	require.NotEqual(t, first, second)
}

func TestCodec_LegacyPlaintextPassthrough(t *testing.T) {
	codec := newTestCodec(t)

	for _, legacy := range []string{"", "plain old message", "deadbeef"} {
		out, err := codec.Decrypt(legacy)
		require.NoError(t, err)
		require.Equal(t, legacy, out)
	}
}

// truncatedEnvelope drops the final ciphertext block of a two-block message,
// so the remaining block decrypts to raw plaintext with no valid padding.
func truncatedEnvelope(t *testing.T, codec *Codec) string {
	t.Helper()

	envelope, err := codec.Encrypt(strings.Repeat("A", 32))
	require.NoError(t, err)

	ivHex, ctHex, _ := strings.Cut(envelope, Separator)
	return ivHex + Separator + ctHex[:32]
}

func TestCodec_MalformedCiphertext(t *testing.T) {
	codec := newTestCodec(t)

	valid, err := codec.Encrypt("reference")
	require.NoError(t, err)
	_, ciphertextHex, _ := strings.Cut(valid, Separator)

	tests := []struct {
		name     string
		envelope string
	}{
		{"iv not hex", "zz:" + ciphertextHex},
		{"iv too short", "deadbeef:" + ciphertextHex},
		{"ciphertext not hex", strings.Repeat("ab", 16) + ":nothex"},
		{"ciphertext empty", strings.Repeat("ab", 16) + ":"},
		{"ciphertext not block aligned", strings.Repeat("ab", 16) + ":abcd"},
		{"truncated ciphertext breaks padding", truncatedEnvelope(t, codec)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := codec.Decrypt(tt.envelope)
			require.Error(t, err)
			require.True(t, errors.Is(err, errs.NewError(errs.ErrMalformedCiphertext)),
				"expected MalformedCiphertext, got %v", err)
		})
	}
}

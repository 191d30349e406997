package encoding_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taxright/taxright/internal/encoding"
)

func TestNewUTF8Reader_UTF8Passthrough(t *testing.T) {
	// Valid UTF-8 with accented vendor names should pass through unchanged.
	input := `{"vendor_name": "Café São Paulo", "total_amount": "12.50"}`
	r, err := encoding.NewUTF8Reader(bytes.NewReader([]byte(input)))
	require.NoError(t, err)

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, input, string(got))
}

func TestNewUTF8Reader_Latin1(t *testing.T) {
	// Windows-1252 encoded `{"vendor_name": "Café"}`.
	// In Windows-1252: é = 0xE9
	latin1Bytes := []byte{
		'{', '"', 'v', 'e', 'n', 'd', 'o', 'r', '_', 'n', 'a', 'm', 'e', '"',
		':', ' ', '"', 'C', 'a', 'f', 0xE9, '"', '}',
	}

	r, err := encoding.NewUTF8Reader(bytes.NewReader(latin1Bytes))
	require.NoError(t, err)

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, `{"vendor_name": "Café"}`, string(got))
}

func TestNewUTF8Reader_UTF8BOM(t *testing.T) {
	// UTF-8 BOM (0xEF 0xBB 0xBF) should be stripped.
	bom := []byte{0xEF, 0xBB, 0xBF}
	content := []byte(`{"vendor_name": "Acme"}`)
	input := append(bom, content...)

	r, err := encoding.NewUTF8Reader(bytes.NewReader(input))
	require.NoError(t, err)

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, `{"vendor_name": "Acme"}`, string(got))
}

func TestDecodeString(t *testing.T) {
	got, err := encoding.DecodeString([]byte(`{"state_code": "CA"}`))
	require.NoError(t, err)
	assert.Equal(t, `{"state_code": "CA"}`, got)
}

package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestParseFile_CSV(t *testing.T) {
	t.Parallel()

	csv := "email,firstname,policy_number\n" +
		"a@example.com,Ann,P-1\n" +
		"b@example.com,Bob,\n"
	path := writeTempFile(t, "input.csv", csv)

	rows, err := ParseFile(path, "input.csv")
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "a@example.com", rows[0].Get("email"))
	assert.Equal(t, "Ann", rows[0].Get("firstname"))
	assert.Equal(t, "P-1", rows[0].Get("policy_number"))

	// Empty cells come back as "", never as a missing key.
	assert.Equal(t, "", rows[1].Get("policy_number"))
}

func TestParseFile_CSVRaggedRow(t *testing.T) {
	t.Parallel()

	csv := "email,firstname,policy_number\n" +
		"a@example.com,Ann\n"
	path := writeTempFile(t, "ragged.csv", csv)

	rows, err := ParseFile(path, "ragged.csv")
	require.NoError(t, err)
	require.Len(t, rows, 1)

	// Short rows normalize against the header.
	assert.Equal(t, "", rows[0].Get("policy_number"))
}

func TestParseFile_CSVValuesTrimmed(t *testing.T) {
	t.Parallel()

	path := writeTempFile(t, "spaces.csv", "email , firstname\n a@example.com , Ann \n")

	rows, err := ParseFile(path, "spaces.csv")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "a@example.com", rows[0].Get("email"))
	assert.Equal(t, "Ann", rows[0].Get("firstname"))
}

func TestParseFile_EmptyCSV(t *testing.T) {
	t.Parallel()

	path := writeTempFile(t, "empty.csv", "")

	rows, err := ParseFile(path, "empty.csv")
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestParseFile_UnsupportedExtension(t *testing.T) {
	t.Parallel()

	path := writeTempFile(t, "input.txt", "not tabular")

	_, err := ParseFile(path, "input.txt")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestParseFile_ExtensionFromOriginalName(t *testing.T) {
	t.Parallel()

	// Uploads are spooled under random names; only the original filename
	// decides the format.
	path := writeTempFile(t, "upload-12345", "email\na@example.com\n")

	rows, err := ParseFile(path, "customers.csv")
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	_, err = ParseFile(path, "customers.pdf")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

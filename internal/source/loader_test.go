package source

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const phoneDoc = `{
  "source": "phone",
  "contacts": [
    {
      "display_name": "Claudia Platzer",
      "name": {"given": "Claudia", "family": "Platzer"},
      "emails": [{"address": "claudia.platzer@example.com", "type": "home"}],
      "phones": [{"number": "+43 699 1234567", "type": "cell"}],
      "organization": "ACME GmbH",
      "notes": "met at conference",
      "raw": [{"name": "X-CUSTOM", "value": "kept verbatim"}]
    },
    {"display_name": "Max Muster"}
  ]
}`

func TestLoad_ParsesDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "phone.json")
	require.NoError(t, os.WriteFile(path, []byte(phoneDoc), 0o644))

	records, err := Load(path)
	require.NoError(t, err)
	require.Len(t, records, 2)

	first := records[0]
	assert.Equal(t, "phone", first.SourceName)
	assert.Equal(t, 0, first.SourceIndex)
	assert.Equal(t, "Claudia Platzer", first.DisplayName)
	assert.Equal(t, "Claudia", first.Name.Given)
	assert.Equal(t, "claudia.platzer@example.com", first.Emails[0].Address)
	assert.Equal(t, "+43 699 1234567", first.Phones[0].Number)
	assert.Equal(t, "ACME GmbH", first.Organization)
	require.Len(t, first.Raw, 1)
	assert.Equal(t, "X-CUSTOM", first.Raw[0].Name)

	assert.Equal(t, 1, records[1].SourceIndex, "indices follow document order")
}

func TestLoad_SourceNameFallsBackToFilename(t *testing.T) {
	path := filepath.Join(t.TempDir(), "old-backup.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"contacts": [{"display_name": "Max"}]}`), 0o644))

	records, err := Load(path)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "old-backup", records[0].SourceName)
}

func TestLoad_MalformedJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadDir_LexicalOrder(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.json"),
		[]byte(`{"source": "beta", "contacts": [{"display_name": "B"}]}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.json"),
		[]byte(`{"source": "alpha", "contacts": [{"display_name": "A1"}, {"display_name": "A2"}]}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))

	records, names, err := LoadDir(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "beta"}, names)
	require.Len(t, records, 3)
	assert.Equal(t, "A1", records[0].DisplayName)
	assert.Equal(t, "B", records[2].DisplayName)
}

func TestLoadDir_EmptyDirErrors(t *testing.T) {
	_, _, err := LoadDir(t.TempDir())
	assert.Error(t, err)
}

package utils

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectCSVSeparator(t *testing.T) {
	assert.Equal(t, ';', DetectCSVSeparator("Nom;Prénom\nDurand;Marie"))
	assert.Equal(t, ',', DetectCSVSeparator("last name,first name\nDurand,Marie"))
	// Only the header line is sniffed.
	assert.Equal(t, ';', DetectCSVSeparator("Nom;Prénom\na,b,c,d\n"))
	// Ties and empty input fall back to the export separator.
	assert.Equal(t, ';', DetectCSVSeparator("Nom Prénom"))
	assert.Equal(t, ';', DetectCSVSeparator(""))
}

func TestStripBOM(t *testing.T) {
	assert.Equal(t, "Nom;Prénom", StripBOM("\uFEFFNom;Prénom"))
	assert.Equal(t, "Nom;Prénom", StripBOM("Nom;Prénom"))
}

func TestNewExportWriter(t *testing.T) {
	var buf bytes.Buffer
	cw, err := NewExportWriter(&buf)
	require.NoError(t, err)
	require.NoError(t, cw.Write([]string{"a", "b"}))
	cw.Flush()
	require.NoError(t, cw.Error())

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, UTF8BOM))
	assert.Equal(t, "a;b\n", StripBOM(out))
}

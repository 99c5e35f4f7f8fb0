package advisory

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anuraagbaishya/paladin/pkg/domain/report"
)

const cweCatalogXML = `<?xml version="1.0"?>
<Weakness_Catalog xmlns="http://cwe.mitre.org/cwe-7">
  <Weaknesses>
    <Weakness ID="79" Name="Improper Neutralization of Input During Web Page Generation"/>
    <Weakness ID="89" Name="SQL Injection"/>
    <Weakness ID="bogus" Name="Should be skipped"/>
  </Weaknesses>
</Weakness_Catalog>`

func zipCatalog(t *testing.T, xml string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	f, err := zw.Create("cwec.xml")
	require.NoError(t, err)
	_, err = f.Write([]byte(xml))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestParseCweZip(t *testing.T) {
	cwes, err := ParseCweZip(zipCatalog(t, cweCatalogXML))
	require.NoError(t, err)

	assert.Equal(t, []report.Cwe{
		{ID: 79, Title: "Improper Neutralization of Input During Web Page Generation"},
		{ID: 89, Title: "SQL Injection"},
	}, cwes)
}

func TestParseCweZipInvalidArchive(t *testing.T) {
	_, err := ParseCweZip([]byte("not a zip"))
	require.Error(t, err)
}

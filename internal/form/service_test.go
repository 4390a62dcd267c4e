package form

import (
	"archive/zip"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dentalforms/formspec/internal/schema"
)

// writeDocx builds a minimal .docx containing one paragraph per line
func writeDocx(t *testing.T, path string, lines []string) {
	t.Helper()

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	zw := zip.NewWriter(f)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)

	body := ""
	for _, line := range lines {
		body += fmt.Sprintf("<w:p><w:r><w:t xml:space=\"preserve\">%s</w:t></w:r></w:p>", line)
	}
	doc := `<?xml version="1.0"?>` +
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">` +
		`<w:body>` + body + `</w:body></w:document>`
	_, err = w.Write([]byte(doc))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
}

func newTestService(t *testing.T, root string) *Service {
	t.Helper()
	svc, err := NewService(50*1024*1024, root)
	require.NoError(t, err)
	return svc
}

func TestConvertFileWritesSpecJSON(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "intake.docx")
	writeDocx(t, src, []string{
		"Patient Information",
		"First Name: ______ Last Name: ______",
		"E-Mail: ______",
	})

	svc := newTestService(t, dir)
	result, err := svc.ConvertFile(ConvertFileRequest{Path: src})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "intake.json"), result.OutputPath)
	assert.Greater(t, result.FieldCount, 2)

	data, err := os.ReadFile(result.OutputPath)
	require.NoError(t, err)
	spec, err := schema.DecodeSpec(data)
	require.NoError(t, err)

	keys := spec.Keys()
	assert.Contains(t, keys, "first_name")
	assert.Contains(t, keys, "signature")
	assert.Contains(t, keys, "date_signed")
}

func TestConvertFileDryRun(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "intake.docx")
	writeDocx(t, src, []string{"First Name: ______"})

	svc := newTestService(t, dir)
	result, err := svc.ConvertFile(ConvertFileRequest{Path: src, DryRun: true})
	require.NoError(t, err)

	assert.Empty(t, result.OutputPath)
	_, err = os.Stat(filepath.Join(dir, "intake.json"))
	assert.True(t, os.IsNotExist(err))
}

func TestConvertFileRejectsPathOutsideRoot(t *testing.T) {
	root := t.TempDir()
	outside := t.TempDir()
	src := filepath.Join(outside, "intake.docx")
	writeDocx(t, src, []string{"First Name: ______"})

	svc := newTestService(t, root)
	_, err := svc.ConvertFile(ConvertFileRequest{Path: src})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "outside the forms directory")
}

func TestConvertFileAppliesProvider(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "consent.docx")
	writeDocx(t, src, []string{
		"Informed Consent for Extraction",
		"I understand the risks, benefits, and complications of the extraction procedure performed by Dr. ________ and I consent to treatment.",
		"I acknowledge that alternative treatment options were explained to me and I voluntarily agree to proceed as discussed.",
		"Patient Signature: ______ Date: ______",
	})

	svc := newTestService(t, dir)
	svc.SetProvider("Dr. Alvarez")

	result, err := svc.ConvertFile(ConvertFileRequest{Path: src, DryRun: true})
	require.NoError(t, err)

	var found bool
	for _, f := range result.Spec {
		tc, ok := f.Control.(schema.TextControl)
		if !ok {
			continue
		}
		found = true
		assert.NotContains(t, tc.HTMLText, "{{provider}}")
	}
	assert.True(t, found, "consent form should produce a text field")
}

func TestConvertDirectoryIsolatesFailures(t *testing.T) {
	dir := t.TempDir()
	writeDocx(t, filepath.Join(dir, "good.docx"), []string{"First Name: ______"})
	// A .docx that is not a zip archive fails extraction
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.docx"), []byte("not a zip"), 0o600))

	svc := newTestService(t, dir)
	result, err := svc.ConvertDirectory(ConvertDirectoryRequest{Directory: dir})
	require.NoError(t, err)

	require.Len(t, result.Converted, 1)
	assert.Equal(t, filepath.Join(dir, "good.docx"), result.Converted[0].Path)
	require.Len(t, result.Failures, 1)
	assert.Equal(t, filepath.Join(dir, "broken.docx"), result.Failures[0].Path)
}

func TestConvertDirectoryOutputDirectory(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(t.TempDir(), "specs")
	writeDocx(t, filepath.Join(dir, "intake.docx"), []string{"First Name: ______"})

	svc := newTestService(t, dir)
	result, err := svc.ConvertDirectory(ConvertDirectoryRequest{Directory: dir, OutputDirectory: out})
	require.NoError(t, err)

	require.Len(t, result.Converted, 1)
	assert.Equal(t, filepath.Join(out, "intake.json"), result.Converted[0].OutputPath)
	_, err = os.Stat(result.Converted[0].OutputPath)
	assert.NoError(t, err)
}

func TestValidateSpecFile(t *testing.T) {
	dir := t.TempDir()
	spec := schema.Spec{
		{Key: "first_name", Title: "First Name", Type: schema.FieldTypeInput,
			Section: "Patient Information Form",
			Control: schema.InputControl{InputType: schema.InputTypeName}},
		{Key: "signature", Title: "Signature", Type: schema.FieldTypeSignature, Section: "Signature"},
		{Key: "date_signed", Title: "Date", Type: schema.FieldTypeDate, Section: "Signature",
			Control: schema.DateControl{InputType: schema.DateTypePast}},
	}
	data, err := spec.Encode()
	require.NoError(t, err)
	path := filepath.Join(dir, "spec.json")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	svc := newTestService(t, dir)
	result, err := svc.ValidateSpecFile(ValidateSpecRequest{Path: path})
	require.NoError(t, err)
	assert.True(t, result.Valid, "problems: %v", result.Problems)
	assert.Equal(t, 3, result.FieldCount)
}

func TestValidateSpecFileRejectsGarbage(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	svc := newTestService(t, dir)
	result, err := svc.ValidateSpecFile(ValidateSpecRequest{Path: path})
	require.NoError(t, err)
	assert.False(t, result.Valid)
	require.NotEmpty(t, result.Problems)
}

func TestServerInfo(t *testing.T) {
	dir := t.TempDir()
	writeDocx(t, filepath.Join(dir, "intake.docx"), []string{"First Name: ______"})

	svc := newTestService(t, dir)
	info, err := svc.ServerInfo("formspec", "1.0.0")
	require.NoError(t, err)

	assert.Equal(t, "formspec", info.ServerName)
	assert.Equal(t, dir, info.DefaultDirectory)
	require.Len(t, info.DirectoryContents, 1)

	names := make([]string, len(info.AvailableTools))
	for i, tool := range info.AvailableTools {
		names[i] = tool.Name
	}
	assert.ElementsMatch(t, names, []string{
		"form_convert_file", "form_validate_spec", "form_search_directory", "form_server_info",
	})
}

package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const dump = "PACKING LIST\n" +
	"A100 L7 Y12 Cotton Blend Navy 24 456.5 11 445.5\n" +
	"A101 L7 Y12 Cotton Blend Navy 24 45O 11 439\n" +
	"\f" +
	"B200 L9 Y40 Wool Red 12 300.5 4 296.5\n"

func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := newRootCmd(&stdout, &stderr)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

type envelope struct {
	Status  string           `json:"status"`
	Message string           `json:"message"`
	Data    []map[string]any `json:"data"`
}

func TestParseFromStdin(t *testing.T) {
	stdout, stderr, err := execute(t, dump, "parse", "--log-format", "json")
	require.NoError(t, err)

	var env envelope
	require.NoError(t, json.Unmarshal([]byte(stdout), &env), stdout)
	assert.Equal(t, "success", env.Status)
	require.Len(t, env.Data, 2)
	assert.Equal(t, "A100", env.Data[0]["case_number"])
	assert.Equal(t, "B200", env.Data[1]["case_number"])
	assert.Equal(t, 296.5, env.Data[1]["net_weight"])

	assert.Contains(t, stderr, `"message":"parsed line"`)
	assert.Contains(t, stderr, `"field":"gross_weight"`)
}

func TestParseWritesExports(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "dump.txt")
	require.NoError(t, os.WriteFile(in, []byte(dump), 0o644))
	csvPath := filepath.Join(dir, "out.csv")
	jsonPath := filepath.Join(dir, "out.json")
	htmlPath := filepath.Join(dir, "out.html")
	xlsxPath := filepath.Join(dir, "out")

	stdout, _, err := execute(t, "", "parse", in,
		"--csv", csvPath, "--json", jsonPath, "--html", htmlPath, "--xlsx", xlsxPath,
		"--log-level", "warn")
	require.NoError(t, err)
	assert.Empty(t, stdout)

	csvData, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(csvData), "Case #,Lot #,Yarn ID"))
	assert.Contains(t, string(csvData), "B200,L9,Y40,Wool,Red,12,300.5,4,296.5")

	jsonData, err := os.ReadFile(jsonPath)
	require.NoError(t, err)
	assert.Contains(t, string(jsonData), `"status": "success"`)

	htmlData, err := os.ReadFile(htmlPath)
	require.NoError(t, err)
	assert.Contains(t, string(htmlData), "<table>")

	_, err = os.Stat(xlsxPath + ".xlsx")
	assert.NoError(t, err)
}

func TestParseFilterAndMetrics(t *testing.T) {
	stdout, stderr, err := execute(t, dump, "parse", "-",
		"--filter", `record.color === "Red"`, "--metrics", "--log-level", "error")
	require.NoError(t, err)

	var env envelope
	require.NoError(t, json.Unmarshal([]byte(stdout), &env))
	require.Len(t, env.Data, 1)
	assert.Equal(t, "Red", env.Data[0]["color"])
	assert.Contains(t, stderr, "packlist_records_total 1")
	assert.Contains(t, stderr, `packlist_lines_total{outcome="numeric_field_invalid"} 1`)
}

func TestExtractRejectsNonPDF(t *testing.T) {
	in := filepath.Join(t.TempDir(), "list.txt")
	require.NoError(t, os.WriteFile(in, []byte(dump), 0o644))

	stdout, _, err := execute(t, "", "extract", in, "--log-level", "error")
	require.ErrorIs(t, err, errFailed)

	var env envelope
	require.NoError(t, json.Unmarshal([]byte(stdout), &env))
	assert.Equal(t, "error", env.Status)
	assert.Contains(t, env.Message, "error processing PDF: ")
	assert.Nil(t, env.Data)
}

func TestInvalidFlagsAreReported(t *testing.T) {
	_, _, err := execute(t, "", "parse", "--strategy", "optimistic")
	assert.ErrorContains(t, err, "invalid configuration")

	_, _, err = execute(t, "", "extract")
	assert.Error(t, err)
}

func TestSplitLangs(t *testing.T) {
	assert.Equal(t, []string{"eng", "deu"}, splitLangs("eng,deu"))
	assert.Equal(t, []string{"eng", "fra"}, splitLangs("eng+fra"))
	assert.Empty(t, splitLangs(""))
}

func TestParseOutPicksFormatFromExtension(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "rows.CSV")
	htmlPath := filepath.Join(dir, "report.htm")
	jsonPath := filepath.Join(dir, "result.json")

	stdout, _, err := execute(t, dump, "parse", "-o", csvPath, "--out", htmlPath, "-o", jsonPath, "--log-level", "error")
	require.NoError(t, err)
	assert.Empty(t, stdout)

	csvData, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	assert.Contains(t, string(csvData), "A100,L7,Y12,Cotton Blend,Navy,24,456.5,11,445.5")

	htmlData, err := os.ReadFile(htmlPath)
	require.NoError(t, err)
	assert.Contains(t, string(htmlData), "<td>B200</td>")

	var env envelope
	jsonData, err := os.ReadFile(jsonPath)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(jsonData, &env))
	assert.Len(t, env.Data, 2)
}

func TestParseOutRejectsUnknownExtension(t *testing.T) {
	_, _, err := execute(t, dump, "parse", "--out", filepath.Join(t.TempDir(), "rows.pdf"))
	assert.ErrorContains(t, err, "unsupported export format")
}

func TestParseEmptyInputSkipsTableExports(t *testing.T) {
	dir := t.TempDir()
	htmlPath := filepath.Join(dir, "report.html")
	jsonPath := filepath.Join(dir, "result.json")

	_, stderr, err := execute(t, "no rows here\n", "parse", "-o", htmlPath, "-o", jsonPath)
	require.NoError(t, err)
	assert.Contains(t, stderr, "no records, file not written")

	_, err = os.Stat(htmlPath)
	assert.True(t, os.IsNotExist(err))
	jsonData, err := os.ReadFile(jsonPath)
	require.NoError(t, err)
	assert.Contains(t, string(jsonData), `"data": []`)
}

package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samirrijal/gridgeo/internal/adapters/file"
)

const testNetwork = `
id: grid-a
lines:
  - id: L1
    name: North tie
  - id: L2
dangling_lines:
  - id: DL1
`

const testRecords = `power_system_resource,seq,x,y,crs_name,crs_urn,name
L1,2,20,10,WGS84,urn:ogc:def:crs:EPSG::4326,North tie
L1,1,19,9,WGS84,urn:ogc:def:crs:EPSG::4326,North tie
DL1,1,5,6,WGS84,urn:ogc:def:crs:EPSG::4326,
L9,1,0,0,WGS84,urn:ogc:def:crs:EPSG::4326,Ghost
`

func writeFixtures(t *testing.T, records string) (networkPath, recordsPath string) {
	t.Helper()
	dir := t.TempDir()
	networkPath = filepath.Join(dir, "net.yaml")
	recordsPath = filepath.Join(dir, "points.csv")
	require.NoError(t, os.WriteFile(networkPath, []byte(testNetwork), 0o644))
	require.NoError(t, os.WriteFile(recordsPath, []byte(records), 0o644))
	return networkPath, recordsPath
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return buf.String(), err
}

func TestImportText(t *testing.T) {
	networkPath, recordsPath := writeFixtures(t, testRecords)

	output, err := execute(t, "import", "--network", networkPath, "--records", recordsPath)
	require.NoError(t, err)

	assert.Contains(t, output, "Network grid-a: 4 records, 1 lines, 1 dangling lines, 1 skipped")
	assert.Contains(t, output, "line L1: 2 points")
	assert.Contains(t, output, "dangling_line DL1: 1 points")
	assert.Contains(t, output, "skipped L9 (Ghost): unresolved, did you mean L1?")
}

func TestImportJSON(t *testing.T) {
	networkPath, recordsPath := writeFixtures(t, testRecords)

	output, err := execute(t, "--format", "json", "import", "--network", networkPath, "--records", recordsPath)
	require.NoError(t, err)

	var resp struct {
		Status string       `json:"status"`
		Data   ImportOutput `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(output), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "grid-a", resp.Data.Report.NetworkID)
	require.Len(t, resp.Data.Positions, 2)

	line := resp.Data.Positions[0]
	assert.Equal(t, "L1", line.Element.ID)
	require.Len(t, line.Coordinates, 2)
	assert.Equal(t, 9.0, line.Coordinates[0].Lat)
	assert.Equal(t, 19.0, line.Coordinates[0].Lon)
	assert.Equal(t, 10.0, line.Coordinates[1].Lat)
}

func TestImportUnsupportedCRS(t *testing.T) {
	records := testRecords + "L2,1,1,1,ETRS89,urn:ogc:def:crs:EPSG::4258,\n"
	networkPath, recordsPath := writeFixtures(t, records)

	output, err := execute(t, "--format", "json", "import", "--network", networkPath, "--records", recordsPath)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(output), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeUnsupportedCRS, resp.Error.Code)
}

func TestImportExtraCRS(t *testing.T) {
	records := testRecords + "L2,1,1,1,ETRS89,urn:ogc:def:crs:EPSG::4258,\n"
	networkPath, recordsPath := writeFixtures(t, records)

	output, err := execute(t, "import", "--network", networkPath, "--records", recordsPath,
		"--crs", "ETRS89=urn:ogc:def:crs:EPSG::4258")
	require.NoError(t, err)
	assert.Contains(t, output, "2 lines")
}

func TestImportMalformedRecord(t *testing.T) {
	networkPath, recordsPath := writeFixtures(t, testRecords+"L2,abc,1,1,WGS84,urn:ogc:def:crs:EPSG::4326,\n")

	output, err := execute(t, "import", "--network", networkPath, "--records", recordsPath)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, output, "Error [malformed_record]")
}

func TestImportMissingFile(t *testing.T) {
	networkPath, _ := writeFixtures(t, testRecords)

	_, err := execute(t, "import", "--network", networkPath, "--records", filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestImportBadCRSFlag(t *testing.T) {
	networkPath, recordsPath := writeFixtures(t, testRecords)

	_, err := execute(t, "import", "--network", networkPath, "--records", recordsPath, "--crs", "ETRS89")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestInvalidFormatFlag(t *testing.T) {
	_, err := execute(t, "--format", "xml", "convert", "--in", "a.csv", "--out", "b.jsonl")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestConvertCSVToMsgpack(t *testing.T) {
	_, recordsPath := writeFixtures(t, testRecords)
	out := filepath.Join(t.TempDir(), "points.msgpack")

	output, err := execute(t, "convert", "--in", recordsPath, "--out", out)
	require.NoError(t, err)
	assert.Contains(t, output, "Converted 4 records")

	source, err := file.NewRecordSource(out)
	require.NoError(t, err)
	records, err := file.Collect(source.PositionRecords(context.Background(), ""))
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, "L1", records[0].ElementID)
	assert.Equal(t, 2, records[0].Sequence)
	assert.Equal(t, 10.0, records[0].Latitude)
	assert.Equal(t, 20.0, records[0].Longitude)
	assert.Equal(t, "North tie", records[0].DisplayName)
}

func TestConvertRejectsCGMESOutput(t *testing.T) {
	_, recordsPath := writeFixtures(t, testRecords)

	_, err := execute(t, "convert", "--in", recordsPath, "--out", filepath.Join(t.TempDir(), "out.xml"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestParseCatalog(t *testing.T) {
	catalog, err := parseCatalog([]string{"ETRS89 = urn:ogc:def:crs:EPSG::4258"})
	require.NoError(t, err)
	assert.True(t, catalog.IsSupportedCRS("WGS84", "urn:ogc:def:crs:EPSG::4326"))
	assert.True(t, catalog.IsSupportedCRS("ETRS89", "urn:ogc:def:crs:EPSG::4258"))
	assert.False(t, catalog.IsSupportedCRS("etrs89", "urn:ogc:def:crs:EPSG::4258"))

	_, err = parseCatalog([]string{"=urn"})
	assert.Error(t, err)
}

func TestConvertMissingInputIsInputError(t *testing.T) {
	dir := t.TempDir()

	output, err := execute(t, "--format", "json", "convert",
		"--in", filepath.Join(dir, "missing.csv"), "--out", filepath.Join(dir, "out.jsonl"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(output), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeInput, resp.Error.Code)
}

func TestConvertMalformedRecord(t *testing.T) {
	_, recordsPath := writeFixtures(t, testRecords+"L2,abc,1,1,WGS84,urn:ogc:def:crs:EPSG::4326,\n")

	output, err := execute(t, "convert", "--in", recordsPath, "--out", filepath.Join(t.TempDir(), "out.jsonl"))
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, output, "Error [malformed_record]")
}

package main

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leadcrm/internal/export"
	"github.com/sells-group/leadcrm/internal/model"
)

var exportRecs = []model.LeadRecord{
	{ID: "1", Name: "Ana", Company: "Acme", Status: model.StatusMeeting, Value: 1500},
	{ID: "2", Name: "Bo", Status: model.StatusLost},
}

// failingCloser accepts writes and fails on Close.
type failingCloser struct {
	bytes.Buffer
}

func (*failingCloser) Close() error { return errors.New("disk full") }

func TestWriteExport_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leads.csv")
	require.NoError(t, writeExport(io.Discard, path, exportRecs))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close() //nolint:errcheck

	got, err := export.ReadCSV(f)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Ana", got[0].Name)
	assert.Equal(t, 1500.0, got[0].Value)
	assert.Equal(t, model.StatusLost, got[1].Status)
}

func TestWriteExport_Stdout(t *testing.T) {
	for _, path := range []string{"", "-"} {
		var buf bytes.Buffer
		require.NoError(t, writeExport(&buf, path, exportRecs))
		got, err := export.ReadCSV(&buf)
		require.NoError(t, err, path)
		assert.Len(t, got, 2, path)
	}
}

func TestWriteExport_CreateError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "leads.csv")
	err := writeExport(io.Discard, path, exportRecs)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "export: create file")
}

func TestWriteExport_CloseErrorReturned(t *testing.T) {
	w := &failingCloser{}
	orig := createExportFile
	createExportFile = func(string) (io.WriteCloser, error) { return w, nil }
	t.Cleanup(func() { createExportFile = orig })

	err := writeExport(io.Discard, "leads.csv", exportRecs)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "export: close file")
	assert.Contains(t, err.Error(), "disk full")
	assert.Contains(t, w.String(), "Ana", "rows are written before the close fails")
}

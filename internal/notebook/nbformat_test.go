package notebook

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const sampleNotebook = `{
 "cells": [
  {
   "cell_type": "markdown",
   "id": "intro",
   "metadata": {},
   "source": ["# Trades\n", "Query the trade model."]
  },
  {
   "cell_type": "code",
   "id": "legend-1",
   "metadata": {"tags": ["query"]},
   "source": "Trade.all()->filter(t|$t.qty > 10)",
   "outputs": [],
   "execution_count": 3
  },
  {
   "cell_type": "code",
   "id": "py-1",
   "metadata": {"legendnb": {"mimetype": "text/x-python"}, "editable": false},
   "source": ["#Kernel: Python\n", "#Code in Python below. Don't Remove this Header!!\n", "print(1)"],
   "outputs": [{"output_type": "stream", "name": "stdout", "text": ["1\n"]}],
   "execution_count": null
  }
 ],
 "metadata": {"kernelspec": {"name": "ilegend", "display_name": "Legend"}},
 "nbformat": 4,
 "nbformat_minor": 5
}`

func TestRead_DecodesCells(t *testing.T) {
	doc, err := Read(strings.NewReader(sampleNotebook), ReadOptions{
		IdentityFor: func(string) string { return "text/x-ilegend" },
	})
	require.NoError(t, err)
	require.Equal(t, 3, doc.Len())
	require.Equal(t, 0, doc.ActiveIndex())

	intro := doc.Cells()[0]
	require.Equal(t, KindMarkdown, intro.Kind())
	require.Equal(t, "# Trades\nQuery the trade model.", intro.Source())

	legend := doc.Cells()[1]
	require.Equal(t, "legend-1", legend.ID())
	require.Equal(t, "text/x-ilegend", legend.LanguageIdentity(), "identity comes from IdentityFor")
	require.True(t, legend.Attached())

	py := doc.Cells()[2]
	require.Equal(t, "text/x-python", py.LanguageIdentity(), "identity comes from metadata")
	require.True(t, py.ReadOnly())
	require.Equal(t, []string{
		"#Kernel: Python",
		"#Code in Python below. Don't Remove this Header!!",
		"print(1)",
	}, py.Lines())
}

func TestRead_RejectsOldFormat(t *testing.T) {
	_, err := Read(strings.NewReader(`{"cells": [], "metadata": {}, "nbformat": 3, "nbformat_minor": 0}`), ReadOptions{})
	require.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestRead_RejectsUnknownCellType(t *testing.T) {
	_, err := Read(strings.NewReader(`{"cells": [{"cell_type": "widget", "source": ""}], "metadata": {}, "nbformat": 4, "nbformat_minor": 5}`), ReadOptions{})
	require.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestRead_AssignsMissingIDs(t *testing.T) {
	doc, err := Read(strings.NewReader(`{"cells": [{"cell_type": "code", "metadata": {}, "source": "x"}], "metadata": {}, "nbformat": 4, "nbformat_minor": 4}`), ReadOptions{})
	require.NoError(t, err)
	require.NotEmpty(t, doc.Cells()[0].ID())
	require.Empty(t, doc.Cells()[0].LanguageIdentity())
}

func TestWrite_RoundTripPreservesForeignFields(t *testing.T) {
	doc, err := Read(strings.NewReader(sampleNotebook), ReadOptions{
		IdentityFor: func(string) string { return "text/x-ilegend" },
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, doc))

	var raw map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &raw))
	cells := raw["cells"].([]any)

	legend := cells[1].(map[string]any)
	meta := legend["metadata"].(map[string]any)
	require.Equal(t, []any{"query"}, meta["tags"])
	require.Equal(t, map[string]any{"mimetype": "text/x-ilegend"}, meta["legendnb"])
	require.Equal(t, float64(3), legend["execution_count"])

	py := cells[2].(map[string]any)
	require.Equal(t, []any{
		"#Kernel: Python\n",
		"#Code in Python below. Don't Remove this Header!!\n",
		"print(1)",
	}, py["source"])
	require.Len(t, py["outputs"], 1)
	require.Nil(t, py["execution_count"])

	md := cells[0].(map[string]any)
	_, hasOutputs := md["outputs"]
	require.False(t, hasOutputs, "markdown cells carry no outputs")

	again, err := Read(bytes.NewReader(buf.Bytes()), ReadOptions{})
	require.NoError(t, err)
	require.Equal(t, "text/x-ilegend", again.Cells()[1].LanguageIdentity())
	require.Equal(t, doc.Cells()[2].Source(), again.Cells()[2].Source())
}

func TestEncodeSource(t *testing.T) {
	require.Equal(t, []string{}, encodeSource(""))
	require.Equal(t, []string{"a"}, encodeSource("a"))
	require.Equal(t, []string{"a\n", "b"}, encodeSource("a\nb"))
	require.Equal(t, []string{"a\n"}, encodeSource("a\n"))
}

func TestLoadSave(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "trades.ipynb")
	require.NoError(t, os.WriteFile(path, []byte(sampleNotebook), 0o644))

	doc, err := Load(path, ReadOptions{})
	require.NoError(t, err)
	require.Equal(t, path, doc.Path())

	cell := doc.Cells()[1]
	require.NoError(t, cell.SetSource("Trade.all()"))
	require.NoError(t, Save(doc))

	reloaded, err := Load(path, ReadOptions{})
	require.NoError(t, err)
	require.Equal(t, "Trade.all()", reloaded.Cells()[1].Source())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp file is renamed away")
}

func TestSave_NoPath(t *testing.T) {
	require.Error(t, Save(New()))
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.ipynb"), ReadOptions{})
	require.ErrorIs(t, err, os.ErrNotExist)
}

const legacyNotebook = `{
 "cells": [
  {"cell_type": "markdown", "metadata": {}, "source": "# Legacy"},
  {"cell_type": "code", "metadata": {}, "source": "Trade.all()", "outputs": [], "execution_count": null}
 ],
 "metadata": {},
 "nbformat": 4,
 "nbformat_minor": 4
}`

func TestWrite_UpgradesMinorWhenWritingIDs(t *testing.T) {
	doc, err := Read(strings.NewReader(legacyNotebook), ReadOptions{})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, doc))

	var raw map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &raw))
	require.Equal(t, float64(4), raw["nbformat"])
	require.Equal(t, float64(5), raw["nbformat_minor"])
	for _, c := range raw["cells"].([]any) {
		require.NotEmpty(t, c.(map[string]any)["id"])
	}
}

func TestSync_LegacyFileMatchesByPosition(t *testing.T) {
	read := func() *Document {
		doc, err := Read(strings.NewReader(legacyNotebook), ReadOptions{})
		require.NoError(t, err)
		return doc
	}
	doc := read()
	before := doc.Cells()

	var changes []CellsChange
	doc.CellsChanged().Connect(func(ch CellsChange) { changes = append(changes, ch) })

	doc.Sync(read())

	require.Empty(t, changes, "an unchanged legacy file keeps every cell")
	require.Equal(t, before, doc.Cells())
}

func TestSync_LegacyFileKindChangeReplacesCell(t *testing.T) {
	doc, err := Read(strings.NewReader(legacyNotebook), ReadOptions{})
	require.NoError(t, err)
	code := doc.Cells()[1]

	edited := strings.Replace(legacyNotebook,
		`{"cell_type": "code", "metadata": {}, "source": "Trade.all()", "outputs": [], "execution_count": null}`,
		`{"cell_type": "raw", "metadata": {}, "source": "Trade.all()"}`, 1)
	fresh, err := Read(strings.NewReader(edited), ReadOptions{})
	require.NoError(t, err)

	doc.Sync(fresh)

	require.Equal(t, 2, doc.Len())
	require.False(t, code.Attached())
	require.Equal(t, KindRaw, doc.Cells()[1].Kind())
}

func TestSave_KeepsFileMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trades.ipynb")
	require.NoError(t, os.WriteFile(path, []byte(sampleNotebook), 0o644))
	require.NoError(t, os.Chmod(path, 0o644))

	doc, err := Load(path, ReadOptions{})
	require.NoError(t, err)
	require.NoError(t, Save(doc))

	fi, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o644), fi.Mode().Perm())

	require.NoError(t, os.Chmod(path, 0o640))
	require.NoError(t, Save(doc))
	fi, err = os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o640), fi.Mode().Perm())
}

func TestSave_NewFileIsWorldReadable(t *testing.T) {
	doc := New()
	doc.Append(NewCodeCell("x", "text/x-ilegend"))
	doc.SetPath(filepath.Join(t.TempDir(), "new.ipynb"))

	require.NoError(t, Save(doc))

	fi, err := os.Stat(doc.Path())
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o644), fi.Mode().Perm())
}

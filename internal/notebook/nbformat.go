package notebook

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// metadataKey namespaces this tool's per-cell metadata.
const metadataKey = "legendnb"

// ReadOptions controls how a notebook file is turned into a Document.
type ReadOptions struct {
	// IdentityFor picks the language identity of a code cell whose metadata
	// does not record one. Nil leaves such cells with an empty identity.
	IdentityFor func(source string) string
}

type cellExtra struct {
	metadata       map[string]any
	outputs        json.RawMessage
	executionCount json.RawMessage
	attachments    json.RawMessage
}

type docExtra struct {
	metadata      map[string]any
	nbformat      int
	nbformatMinor int
	// mintedIDs is set when the file predates cell ids (nbformat < 4.5)
	// and Read had to generate them.
	mintedIDs bool
}

func newDocExtra() docExtra {
	return docExtra{metadata: map[string]any{}, nbformat: 4, nbformatMinor: 5}
}

type rawNotebook struct {
	Cells         []rawCell      `json:"cells"`
	Metadata      map[string]any `json:"metadata"`
	NBFormat      int            `json:"nbformat"`
	NBFormatMinor int            `json:"nbformat_minor"`
}

type rawCell struct {
	CellType       string          `json:"cell_type"`
	ID             string          `json:"id,omitempty"`
	Metadata       map[string]any  `json:"metadata"`
	Source         json.RawMessage `json:"source"`
	Outputs        json.RawMessage `json:"outputs,omitempty"`
	ExecutionCount json.RawMessage `json:"execution_count,omitempty"`
	Attachments    json.RawMessage `json:"attachments,omitempty"`
}

// Load reads the notebook at path.
func Load(path string, opts ReadOptions) (*Document, error) {
	f, err := os.Open(path) //nolint:gosec // G304: user-selected notebook path
	if err != nil {
		return nil, fmt.Errorf("open notebook: %w", err)
	}
	defer func() { _ = f.Close() }()

	doc, err := Read(f, opts)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	doc.path = path
	return doc, nil
}

// Read decodes an nbformat v4 document.
func Read(r io.Reader, opts ReadOptions) (*Document, error) {
	var raw rawNotebook
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode notebook: %w", err)
	}
	if raw.NBFormat != 4 {
		return nil, fmt.Errorf("nbformat %d: %w", raw.NBFormat, ErrUnsupportedFormat)
	}

	doc := New()
	doc.extra = docExtra{
		metadata:      raw.Metadata,
		nbformat:      raw.NBFormat,
		nbformatMinor: raw.NBFormatMinor,
	}
	if doc.extra.metadata == nil {
		doc.extra.metadata = map[string]any{}
	}

	for i, rc := range raw.Cells {
		cell, err := decodeCell(rc, opts)
		if err != nil {
			return nil, fmt.Errorf("cell %d: %w", i, err)
		}
		if rc.ID == "" {
			doc.extra.mintedIDs = true
		}
		cell.doc = doc
		doc.cells = append(doc.cells, cell)
	}
	if len(doc.cells) > 0 {
		doc.active = 0
	}
	return doc, nil
}

func decodeCell(rc rawCell, opts ReadOptions) (*Cell, error) {
	kind := Kind(rc.CellType)
	switch kind {
	case KindCode, KindMarkdown, KindRaw:
	default:
		return nil, fmt.Errorf("cell_type %q: %w", rc.CellType, ErrUnsupportedFormat)
	}

	source, err := decodeSource(rc.Source)
	if err != nil {
		return nil, err
	}

	id := rc.ID
	if id == "" {
		id = uuid.NewString()
	}

	metadata := rc.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}

	identity := ""
	if own, ok := metadata[metadataKey].(map[string]any); ok {
		if mime, ok := own["mimetype"].(string); ok {
			identity = mime
		}
		delete(metadata, metadataKey)
	}
	switch {
	case kind == KindMarkdown:
		identity = "text/x-markdown"
	case kind == KindCode && identity == "" && opts.IdentityFor != nil:
		identity = opts.IdentityFor(source)
	}

	readOnly := false
	if editable, ok := metadata["editable"].(bool); ok && !editable {
		readOnly = true
	}

	return &Cell{
		id:       id,
		kind:     kind,
		source:   source,
		identity: identity,
		readOnly: readOnly,
		extra: cellExtra{
			metadata:       metadata,
			outputs:        rc.Outputs,
			executionCount: rc.ExecutionCount,
			attachments:    rc.Attachments,
		},
	}, nil
}

// decodeSource accepts both the multiline-string form (list of lines with
// trailing newlines) and the plain string form.
func decodeSource(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", fmt.Errorf("decode source: %w", err)
		}
		return s, nil
	}
	var lines []string
	if err := json.Unmarshal(raw, &lines); err != nil {
		return "", fmt.Errorf("decode source: %w", err)
	}
	return strings.Join(lines, ""), nil
}

// encodeSource splits a source into nbformat's list-of-lines form.
func encodeSource(source string) []string {
	if source == "" {
		return []string{}
	}
	lines := strings.SplitAfter(source, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// Write encodes d as nbformat v4 JSON with one-space indentation, the layout
// Jupyter itself writes.
func Write(w io.Writer, d *Document) error {
	raw := rawNotebook{
		Cells:         make([]rawCell, 0, len(d.cells)),
		Metadata:      d.extra.metadata,
		NBFormat:      d.extra.nbformat,
		NBFormatMinor: d.extra.nbformatMinor,
	}
	if raw.Metadata == nil {
		raw.Metadata = map[string]any{}
	}
	// Cell ids are only valid from 4.5 on.
	if raw.NBFormat == 4 && raw.NBFormatMinor < 5 {
		raw.NBFormatMinor = 5
	}

	for _, c := range d.cells {
		source, err := json.Marshal(encodeSource(c.source))
		if err != nil {
			return fmt.Errorf("encode cell %s: %w", c.id, err)
		}
		metadata := make(map[string]any, len(c.extra.metadata)+1)
		for k, v := range c.extra.metadata {
			metadata[k] = v
		}
		rc := rawCell{
			CellType:    string(c.kind),
			ID:          c.id,
			Metadata:    metadata,
			Source:      source,
			Attachments: c.extra.attachments,
		}
		if c.kind == KindCode {
			metadata[metadataKey] = map[string]any{"mimetype": c.identity}
			rc.Outputs = c.extra.outputs
			if len(rc.Outputs) == 0 {
				rc.Outputs = json.RawMessage("[]")
			}
			rc.ExecutionCount = c.extra.executionCount
			if len(rc.ExecutionCount) == 0 {
				rc.ExecutionCount = json.RawMessage("null")
			}
		}
		raw.Cells = append(raw.Cells, rc)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", " ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(raw); err != nil {
		return fmt.Errorf("encode notebook: %w", err)
	}
	return nil
}

// Save writes d back to its path through a temp file and rename, so a
// watcher never observes a half-written notebook. The file keeps the
// permissions it had; a new file gets 0644.
func Save(d *Document) error {
	if d.path == "" {
		return fmt.Errorf("save notebook: no path set")
	}
	var buf bytes.Buffer
	if err := Write(&buf, d); err != nil {
		return err
	}

	mode := os.FileMode(0o644)
	if fi, err := os.Stat(d.path); err == nil {
		mode = fi.Mode().Perm()
	}

	dir := filepath.Dir(d.path)
	tmp, err := os.CreateTemp(dir, ".legendnb-*.ipynb")
	if err != nil {
		return fmt.Errorf("save notebook: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("save notebook: %w", err)
	}
	if err := tmp.Chmod(mode); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("save notebook: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("save notebook: %w", err)
	}
	if err := os.Rename(tmpName, d.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("save notebook: %w", err)
	}
	return nil
}

package ingest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/joseph-ayodele/loan-compare/constants"
	"github.com/joseph-ayodele/loan-compare/internal/entity"
)

const defaultMaxBytes = 20 << 20

// ErrUnsupportedFormat is returned for extensions the loader cannot read.
var ErrUnsupportedFormat = errors.New("unsupported document format")

// Loader turns files on disk into pipeline documents: plain text as is,
// PDFs through their text layer, plus an optional <name>.tables.json with
// the tables the OCR step recognised.
type Loader struct {
	logger   *slog.Logger
	maxBytes int64
}

func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger, maxBytes: defaultMaxBytes}
}

func (l *Loader) LoadFile(path string) (entity.Document, error) {
	format := constants.MapExtToFormat(filepath.Ext(path))
	if format == "" {
		return entity.Document{}, fmt.Errorf("%s: %w", path, ErrUnsupportedFormat)
	}

	info, err := os.Stat(path)
	if err != nil {
		return entity.Document{}, fmt.Errorf("stat: %w", err)
	}
	if info.Size() > l.maxBytes {
		return entity.Document{}, fmt.Errorf("%s: file too large (%d bytes)", path, info.Size())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return entity.Document{}, fmt.Errorf("read: %w", err)
	}

	var text string
	switch format {
	case "PDF":
		text, err = pdfText(data)
		if err != nil {
			return entity.Document{}, fmt.Errorf("pdf text %s: %w", path, err)
		}
	default:
		text = string(data)
	}
	if strings.TrimSpace(text) == "" {
		l.logger.Warn("ingest.empty_text", "path", path, "format", format)
	}

	tables, err := loadTables(TablesPath(path))
	if err != nil {
		return entity.Document{}, err
	}

	return entity.Document{
		ID:         DocumentID(path),
		SourcePath: path,
		Format:     format,
		Text:       text,
		Tables:     tables,
	}, nil
}

// pdfText reads the text layer page by page, one line per text row.
func pdfText(data []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	var b strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		rows, err := p.GetTextByRow()
		if err != nil {
			return "", fmt.Errorf("page %d: %w", i, err)
		}
		for _, row := range rows {
			for _, word := range row.Content {
				b.WriteString(word.S)
			}
			b.WriteString("\n")
		}
	}
	return b.String(), nil
}

// loadTables returns nil when the sidecar does not exist.
func loadTables(path string) ([]entity.Table, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read tables: %w", err)
	}
	var tables []entity.Table
	if err := json.Unmarshal(data, &tables); err != nil {
		return nil, fmt.Errorf("decode tables %s: %w", path, err)
	}
	return tables, nil
}

package ingest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/loan-compare/internal/common"
	"github.com/joseph-ayodele/loan-compare/internal/entity"
)

type FileResult struct {
	Path       string
	DocumentID string
	Format     string
	Tables     int
	Err        string
}

type DirStats struct {
	Scanned   uint32
	Matched   uint32
	Succeeded uint32
	Failed    uint32
}

// LoadDirectory walks root, filters by includeExts (or defaults), skips hidden if requested,
// and loads each matching file. Returns the documents, per-file results and aggregate stats.
func (l *Loader) LoadDirectory(ctx context.Context, root string, includeExts []string, skipHidden bool) ([]entity.Document, []FileResult, DirStats, error) {
	if strings.TrimSpace(root) == "" {
		return nil, nil, DirStats{}, common.NewAppError("ROOT_REQUIRED", "root path is required", common.ErrInvalidInput)
	}
	if info, err := os.Stat(root); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil, DirStats{}, common.NewAppError("ROOT_NOT_FOUND", root, common.ErrNotFound)
		}
		return nil, nil, DirStats{}, fmt.Errorf("stat %s: %w", root, err)
	} else if !info.IsDir() {
		return nil, nil, DirStats{}, common.NewAppError("ROOT_NOT_DIRECTORY", root, common.ErrInvalidInput)
	}
	exts := extSet(includeExts)

	var docs []entity.Document
	var results []FileResult
	var stats DirStats

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		stats.Scanned++
		if walkErr != nil {
			results = append(results, FileResult{Path: path, Err: walkErr.Error()})
			stats.Failed++
			return nil // continue walking
		}
		if skipHidden && path != root && IsHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
		if _, ok := exts[ext]; !ok {
			return nil
		}
		stats.Matched++

		doc, err := l.LoadFile(path)
		if err != nil {
			l.logger.Warn("ingest.file.failed", "path", path, "err", err)
			results = append(results, FileResult{Path: path, Err: err.Error()})
			stats.Failed++
			return nil
		}
		docs = append(docs, doc)
		results = append(results, FileResult{
			Path:       path,
			DocumentID: doc.ID,
			Format:     doc.Format,
			Tables:     len(doc.Tables),
		})
		stats.Succeeded++
		return nil
	})

	if err != nil {
		return docs, results, stats, fmt.Errorf("walk: %w", err)
	}
	l.logger.Info("ingest.directory.ok",
		"root", root,
		"scanned", stats.Scanned,
		"matched", stats.Matched,
		"succeeded", stats.Succeeded,
		"failed", stats.Failed,
	)
	return docs, results, stats, nil
}

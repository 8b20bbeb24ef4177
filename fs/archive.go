// Package fs archives raw page snapshots to the local filesystem.
package fs

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/fwojciec/boothcrawl"
)

// ArchivePath converts a snapshot URL and content hash to a relative file
// path of the form <host>/<path>.<hash>.html.
// Example: https://venues.example/list?page=2 → venues.example/list_page-2.<hash>.html
func ArchivePath(rawURL, hash string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", boothcrawl.WrapError(boothcrawl.EINVALID, err, "invalid snapshot URL %q", rawURL)
	}
	if u.Host == "" {
		return "", boothcrawl.Errorf(boothcrawl.EINVALID, "snapshot URL %q has no host", rawURL)
	}

	path := strings.TrimPrefix(u.Path, "/")
	for _, seg := range strings.Split(path, "/") {
		if seg == ".." {
			return "", boothcrawl.Errorf(boothcrawl.EINVALID, "snapshot URL %q escapes the archive", rawURL)
		}
	}
	if path == "" || strings.HasSuffix(path, "/") {
		path += "index"
	}
	if u.RawQuery != "" {
		path += "_" + sanitize(u.RawQuery)
	}

	return filepath.Join(sanitize(u.Host), filepath.FromSlash(path)) + "." + hash + ".html", nil
}

// sanitize replaces characters that are unsafe in file names.
func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.' || r == '-' || r == '_' || r == '/':
			return r
		default:
			return '-'
		}
	}, s)
}

// Ensure Archive implements boothcrawl.SnapshotService at compile time.
var _ boothcrawl.SnapshotService = (*Archive)(nil)

// Archive wraps a SnapshotService and writes every new snapshot's content
// to a file under a base directory. Files are written to a temporary name
// and renamed into place, so readers never see partial content.
type Archive struct {
	boothcrawl.SnapshotService
	dir string
}

// NewArchive creates a new Archive writing below dir.
func NewArchive(next boothcrawl.SnapshotService, dir string) *Archive {
	return &Archive{SnapshotService: next, dir: dir}
}

// CreateSnapshot stores the snapshot and archives its content.
func (a *Archive) CreateSnapshot(ctx context.Context, snapshot *boothcrawl.Snapshot) error {
	if err := a.SnapshotService.CreateSnapshot(ctx, snapshot); err != nil {
		return err
	}

	rel, err := ArchivePath(snapshot.URL, snapshot.ContentHash)
	if err != nil {
		return err
	}
	return writeAtomic(filepath.Join(a.dir, rel), []byte(snapshot.Content))
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create archive dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".snapshot-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close snapshot: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename snapshot: %w", err)
	}
	return nil
}

package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"world-sync/core/crawler"

	"github.com/klauspost/compress/gzip"
	"go.uber.org/zap"
)

// File is one written snapshot file.
type File struct {
	// Name is the file name inside the world directory.
	Name string
	Path string
	Size int64
}

// Store writes snapshot files below a root directory.
type Store struct {
	dir    string
	level  int
	mirror *Mirror
	logger *zap.Logger
}

// NewStore creates a store. mirror may be nil.
func NewStore(cfg Config, mirror *Mirror, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	level := cfg.CompressionLevel
	if level < gzip.BestSpeed || level > gzip.BestCompression {
		level = gzip.DefaultCompression
	}
	dir := cfg.Dir
	if dir == "" {
		dir = "data"
	}
	return &Store{dir: dir, level: level, mirror: mirror, logger: logger}
}

// WorldDir returns the directory of worldID.
func (s *Store) WorldDir(worldID string) string {
	return filepath.Join(s.dir, worldID)
}

// Exists reports whether the info file of worldID is present.
func (s *Store) Exists(worldID string) bool {
	_, err := os.Stat(filepath.Join(s.WorldDir(worldID), infoFile))
	return err == nil
}

// Files lists the snapshot files currently stored for worldID.
func (s *Store) Files(worldID string) ([]File, error) {
	dir := s.WorldDir(worldID)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshot dir: %w", err)
	}

	var files []File
	for _, e := range entries {
		if e.IsDir() || (e.Name() != infoFile && !isContinent(e.Name())) {
			continue
		}
		stat, err := e.Info()
		if err != nil {
			return nil, err
		}
		files = append(files, File{Name: e.Name(), Path: filepath.Join(dir, e.Name()), Size: stat.Size()})
	}
	return files, nil
}

// Write writes the continent and info files of snap, removes continent files
// no longer occupied and mirrors the result when a mirror is configured.
func (s *Store) Write(ctx context.Context, snap *crawler.Snapshot) ([]File, error) {
	dir := s.WorldDir(snap.WorldID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create snapshot dir: %w", err)
	}

	conts := continents(snap)
	keys := make([]string, 0, len(conts))
	for k := range conts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	files := make([]File, 0, len(keys)+1)
	for _, key := range keys {
		f, err := s.writeFile(dir, key, conts[key])
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}

	f, err := s.writeFile(dir, infoFile, info(snap))
	if err != nil {
		return nil, err
	}
	files = append(files, f)

	if err := s.prune(dir, files); err != nil {
		return nil, err
	}

	s.logger.Debug("Snapshot files written", zap.String("world", snap.WorldID), zap.Int("files", len(files)))

	if s.mirror != nil {
		if err := s.mirror.Upload(ctx, snap.WorldID, files); err != nil {
			return files, err
		}
	}
	return files, nil
}

// writeFile encodes v as gzip JSON into dir/name through a temporary file.
func (s *Store) writeFile(dir, name string, v any) (File, error) {
	tmp, err := os.CreateTemp(dir, "."+name+"-*")
	if err != nil {
		return File{}, fmt.Errorf("failed to create %s: %w", name, err)
	}
	defer os.Remove(tmp.Name())

	zw, err := gzip.NewWriterLevel(tmp, s.level)
	if err != nil {
		tmp.Close()
		return File{}, err
	}
	if err := json.NewEncoder(zw).Encode(v); err != nil {
		tmp.Close()
		return File{}, fmt.Errorf("failed to encode %s: %w", name, err)
	}
	if err := zw.Close(); err != nil {
		tmp.Close()
		return File{}, fmt.Errorf("failed to compress %s: %w", name, err)
	}

	stat, err := tmp.Stat()
	if err != nil {
		tmp.Close()
		return File{}, err
	}
	if err := tmp.Close(); err != nil {
		return File{}, err
	}

	path := filepath.Join(dir, name)
	if err := os.Rename(tmp.Name(), path); err != nil {
		return File{}, fmt.Errorf("failed to replace %s: %w", name, err)
	}
	return File{Name: name, Path: path, Size: stat.Size()}, nil
}

func (s *Store) prune(dir string, keep []File) error {
	kept := make(map[string]bool, len(keep))
	for _, f := range keep {
		kept[f.Name] = true
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to list snapshot dir: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() || kept[e.Name()] || !isContinent(e.Name()) {
			continue
		}
		if err := os.Remove(filepath.Join(dir, e.Name())); err != nil {
			return fmt.Errorf("failed to remove stale continent %s: %w", e.Name(), err)
		}
	}
	return nil
}

func isContinent(name string) bool {
	return len(name) == 2 && name[0] >= '0' && name[0] <= '9' && name[1] >= '0' && name[1] <= '9'
}

// Read decodes the gzip JSON file name of worldID into v.
func (s *Store) Read(worldID, name string, v any) error {
	f, err := os.Open(filepath.Join(s.WorldDir(worldID), name))
	if err != nil {
		return err
	}
	defer f.Close()

	zr, err := gzip.NewReader(f)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", name, err)
	}
	defer zr.Close()

	data, err := io.ReadAll(zr)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

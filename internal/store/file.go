package store

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
)

var fileNames = map[Key]string{
	History:  "command_history.json",
	Aliases:  "aliases.json",
	Settings: "settings.json",
}

// File stores each key as a JSON file under a base directory.
type File struct {
	baseDir string
	fs      afs.Service
}

// NewFile returns a file store rooted at baseDir. The directory is created on first write.
func NewFile(baseDir string) *File {
	return &File{
		baseDir: baseDir,
		fs:      afs.New(),
	}
}

// Path returns the file backing key.
func (f *File) Path(key Key) string {
	name, ok := fileNames[key]
	if !ok {
		name = string(key) + ".json"
	}
	return filepath.Join(f.baseDir, name)
}

func (f *File) Load(ctx context.Context, key Key) ([]byte, error) {
	filePath := f.Path(key)
	exists, err := f.fs.Exists(ctx, filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to check %s: %w", filePath, err)
	}
	if !exists {
		return nil, ErrNotFound
	}
	data, err := f.fs.DownloadWithURL(ctx, filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filePath, err)
	}
	return data, nil
}

func (f *File) Save(ctx context.Context, key Key, data []byte) error {
	exists, err := f.fs.Exists(ctx, f.baseDir)
	if err != nil {
		return fmt.Errorf("failed to check %s: %w", f.baseDir, err)
	}
	if !exists {
		if err := f.fs.Create(ctx, f.baseDir, file.DefaultDirOsMode, true); err != nil {
			return fmt.Errorf("failed to create %s: %w", f.baseDir, err)
		}
	}
	filePath := f.Path(key)
	if err := f.fs.Upload(ctx, filePath, file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write %s: %w", filePath, err)
	}
	return nil
}

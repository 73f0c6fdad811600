// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package files

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var (
	yamlExts = []string{".yaml", ".yml"}
	jsonExts = []string{".json"}
)

type Type int

const (
	TypeUnknown Type = iota
	TypeYAML
	TypeJSON
)

type File struct {
	src     Source
	relPath string
}

// NewFiles expands paths into files. Directories are walked when recursive
// is set and contribute only their YAML files.
func NewFiles(paths []string, recursive bool) ([]*File, error) {
	var fileSrcs []Source

	for _, path := range paths {
		switch {
		case path == "-" || strings.Contains(path, "://"):
			fileSrcs = append(fileSrcs, NewSource(path))

		default:
			fileInfo, err := os.Stat(path)
			if err != nil {
				return nil, fmt.Errorf("Checking file '%s': %s", path, err)
			}

			if !fileInfo.IsDir() {
				fileSrcs = append(fileSrcs, NewLocalSource(path, ""))
				continue
			}
			if !recursive {
				return nil, fmt.Errorf("Expected file '%s' to not be a directory", path)
			}

			var selectedPaths []string

			err = filepath.Walk(path, func(walkedPath string, fi os.FileInfo, err error) error {
				if err != nil || fi.IsDir() || !hasExt(walkedPath, yamlExts) {
					return err
				}
				selectedPaths = append(selectedPaths, walkedPath)
				return nil
			})
			if err != nil {
				return nil, fmt.Errorf("Listing files '%s': %s", path, err)
			}

			sort.Strings(selectedPaths)

			for _, selectedPath := range selectedPaths {
				fileSrcs = append(fileSrcs, NewLocalSource(selectedPath, path))
			}
		}
	}

	var files []*File

	for _, fileSrc := range fileSrcs {
		file, err := NewFileFromSource(fileSrc)
		if err != nil {
			return nil, err
		}
		files = append(files, file)
	}

	return files, nil
}

func NewFileFromSource(fileSrc Source) (*File, error) {
	relPath, err := fileSrc.RelativePath()
	if err != nil {
		return nil, fmt.Errorf("Calculating relative path for '%s': %s", fileSrc.Description(), err)
	}

	return &File{src: fileSrc, relPath: relPath}, nil
}

func (r *File) Description() string                       { return r.src.Description() }
func (r *File) RelativePath() string                      { return r.relPath }
func (r *File) Bytes(ctx context.Context) ([]byte, error) { return r.src.Bytes(ctx) }

// URI identifies the file to the language service.
func (r *File) URI() string {
	if local, ok := r.src.(LocalSource); ok {
		if abs, err := filepath.Abs(local.Path()); err == nil {
			return "file://" + filepath.ToSlash(abs)
		}
	}
	return r.relPath
}

// LocalPath returns the path of a file read from the local filesystem.
func (r *File) LocalPath() (string, bool) {
	local, ok := r.src.(LocalSource)
	if !ok {
		return "", false
	}
	return local.Path(), true
}

func (r *File) Type() Type {
	return TypeOf(r.RelativePath())
}

// TypeOf classifies a path or URI by its extension.
func TypeOf(path string) Type {
	switch {
	case hasExt(path, yamlExts):
		return TypeYAML
	case hasExt(path, jsonExts):
		return TypeJSON
	default:
		return TypeUnknown
	}
}

func hasExt(path string, exts []string) bool {
	filename := strings.ToLower(filepath.Base(path))
	for _, ext := range exts {
		if strings.HasSuffix(filename, ext) {
			return true
		}
	}
	return false
}

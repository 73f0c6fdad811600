// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package files

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"go.lsp.dev/uri"
)

type Source interface {
	Description() string
	RelativePath() (string, error)
	Bytes(ctx context.Context) ([]byte, error)
}

var _ []Source = []Source{BytesSource{}, StdinSource{}, LocalSource{}, HTTPSource{}}

// NewSource picks the Source for a location given on the command line or
// in settings: "-" for stdin, an http(s) URL, a file URI or a local path.
func NewSource(location string) Source {
	switch {
	case location == "-":
		return NewStdinSource()
	case strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://"):
		return NewHTTPSource(location)
	case strings.HasPrefix(location, uri.FileScheme+"://"):
		return NewLocalSource(uri.URI(location).Filename(), "")
	default:
		return NewLocalSource(location, "")
	}
}

type BytesSource struct {
	path string
	data []byte
}

func NewBytesSource(path string, data []byte) BytesSource { return BytesSource{path, data} }

func (s BytesSource) Description() string                   { return s.path }
func (s BytesSource) RelativePath() (string, error)         { return s.path, nil }
func (s BytesSource) Bytes(context.Context) ([]byte, error) { return s.data, nil }

type StdinSource struct {
	bytes []byte
	err   error
}

func NewStdinSource() StdinSource {
	bs, err := ReadStdin()
	return StdinSource{bs, err}
}

func (s StdinSource) Description() string                   { return "stdin.yml" }
func (s StdinSource) RelativePath() (string, error)         { return "stdin.yml", nil }
func (s StdinSource) Bytes(context.Context) ([]byte, error) { return s.bytes, s.err }

type LocalSource struct {
	path string
	dir  string
}

func NewLocalSource(path, dir string) LocalSource { return LocalSource{path, dir} }

func (s LocalSource) Description() string { return fmt.Sprintf("file '%s'", s.path) }

func (s LocalSource) RelativePath() (string, error) {
	if s.dir == "" {
		return filepath.Base(s.path), nil
	}

	cleanPath, err := filepath.Abs(filepath.Clean(s.path))
	if err != nil {
		return "", err
	}

	cleanDir, err := filepath.Abs(filepath.Clean(s.dir))
	if err != nil {
		return "", err
	}

	if strings.HasPrefix(cleanPath, cleanDir) {
		result := strings.TrimPrefix(cleanPath, cleanDir)
		result = strings.TrimPrefix(result, string(os.PathSeparator))
		return result, nil
	}

	return "", fmt.Errorf("unknown relative path for %s", s.path)
}

func (s LocalSource) Bytes(context.Context) ([]byte, error) { return os.ReadFile(s.path) }

// Path is the location on disk.
func (s LocalSource) Path() string { return s.path }

type HTTPSource struct {
	url    string
	Client *http.Client
}

func NewHTTPSource(path string) HTTPSource { return HTTPSource{path, &http.Client{}} }

func (s HTTPSource) Description() string {
	return fmt.Sprintf("HTTP URL '%s'", s.url)
}

func (s HTTPSource) RelativePath() (string, error) { return path.Base(s.url), nil }

func (s HTTPSource) Bytes(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("Building request for URL '%s': %s", s.url, err)
	}

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("Requesting URL '%s': %s", s.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("Requesting URL '%s': %s", s.url, resp.Status)
	}

	result, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("Reading URL '%s': %s", s.url, err)
	}

	return result, nil
}

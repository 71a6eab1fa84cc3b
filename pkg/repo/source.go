/*
   IECDrive - Commodore 1541 drive emulator
   Copyright (c) 2022, Alexander Vollschwitz

   This file is part of IECDrive.

   IECDrive is free software: you can redistribute it and/or modify
   it under the terms of the GNU General Public License as published by
   the Free Software Foundation, either version 3 of the License, or
   (at your option) any later version.

   IECDrive is distributed in the hope that it will be useful,
   but WITHOUT ANY WARRANTY; without even the implied warranty of
   MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
   GNU General Public License for more details.

   You should have received a copy of the GNU General Public License
   along with IECDrive. If not, see <http://www.gnu.org/licenses/>.
*/

package repo

import (
	"bufio"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
)

// MaxFetchSize is the largest file that gets fetched into the served tree.
const MaxFetchSize = 1048576

//
func NewFileSource(file string) (*FileSource, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	return &FileSource{file: f, reader: bufio.NewReader(f)}, nil
}

//
type FileSource struct {
	file   *os.File
	reader io.Reader
}

//
func (fs *FileSource) Read(p []byte) (n int, err error) {
	return fs.reader.Read(p)
}

//
func (fs *FileSource) Close() error {
	return fs.file.Close()
}

//
func NewHTTPSource(url string) (*HTTPSource, error) {
	resp, err := http.Get(url)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("fetching %s failed: %s", url, resp.Status)
	}
	return &HTTPSource{
		url:      url,
		response: resp,
		reader:   io.LimitReader(resp.Body, MaxFetchSize+1)}, nil
}

//
type HTTPSource struct {
	url      string
	response *http.Response
	reader   io.Reader
}

//
func (hs *HTTPSource) Read(p []byte) (n int, err error) {
	return hs.reader.Read(p)
}

//
func (hs *HTTPSource) Close() error {
	return hs.response.Body.Close()
}

/*
	Resolve opens the source ref points to. This is either an http(s) URL, or
	a file path, optionally prefixed with file://. Relative file paths are
	resolved against dir.
*/
func Resolve(ref, dir string) (io.ReadCloser, error) {

	switch {
	case strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"):
		return NewHTTPSource(ref)
	case strings.Contains(ref, "://") && !strings.HasPrefix(ref, "file://"):
		return nil, fmt.Errorf("unsupported reference: %s", ref)
	}

	path := strings.TrimPrefix(ref, "file://")
	if !filepath.IsAbs(path) {
		path = filepath.Join(dir, path)
	}
	return NewFileSource(path)
}

// Inside resolves path relative to root, and fails if the result is not
// inside of root.
func Inside(root, path string) (string, error) {
	abs := filepath.Join(root, filepath.FromSlash(path))
	rel, err := filepath.Rel(root, abs)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("'%s' is not inside of served directory", path)
	}
	return abs, nil
}

/*
	Store writes everything read from src to path, relative to root. An
	existing file is only replaced when force is set. Data exceeding
	MaxFetchSize is refused.
*/
func Store(root, path string, src io.Reader, force bool) (int64, error) {

	dest, err := Inside(root, path)
	if err != nil {
		return 0, err
	}

	flags := os.O_WRONLY | os.O_CREATE | os.O_EXCL
	if force {
		flags = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return 0, err
	}

	f, err := os.OpenFile(dest, flags, 0644)
	if err != nil {
		if os.IsExist(err) {
			return 0, fmt.Errorf("'%s' already exists", path)
		}
		return 0, err
	}

	n, err := io.Copy(f, io.LimitReader(src, MaxFetchSize+1))
	if e := f.Close(); err == nil {
		err = e
	}
	if err == nil && n > MaxFetchSize {
		err = fmt.Errorf("'%s' is larger than %d bytes", path, MaxFetchSize)
	}
	if err != nil {
		os.Remove(dest)
		return 0, err
	}

	log.WithFields(log.Fields{"path": path, "bytes": n}).Info("stored file")
	return n, nil
}

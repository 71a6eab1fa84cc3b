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

/*
	Package native serves files straight from a host directory tree. The
	driver is sandboxed to a root directory and keeps a current directory
	inside of it.
*/
package native

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/xelalexv/iecdrive/pkg/vfs/base"
)

//
func New(root string, showDirs bool) (*Driver, error) {

	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(abs)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root '%s' is not a directory", abs)
	}

	d := &Driver{root: abs, cwd: abs, showDirs: showDirs}
	d.SetReady(true)
	return d, nil
}

//
type Driver struct {
	base.Lifecycle
	//
	root     string
	cwd      string
	showDirs bool
	filter   string
	//
	stream *Stream
	name   string
}

//
func (d *Driver) Kind() base.Kind {
	return base.KindNative
}

// Accepts is always false, the native driver is never probed for images.
func (d *Driver) Accepts(path string, info os.FileInfo) bool {
	return false
}

// Mount changes into directory path, which must be inside of root.
func (d *Driver) Mount(path string) bool {
	if !d.inside(path) {
		return false
	}
	if info, err := os.Stat(path); err != nil || !info.IsDir() {
		return false
	}
	d.closeStream()
	d.cwd = path
	return true
}

// Unmount only closes an open file, the native driver stays usable.
func (d *Driver) Unmount() {
	d.closeStream()
}

//
func (d *Driver) Path() string {
	return d.cwd
}

//
func (d *Driver) Root() string {
	return d.root
}

// Name is the current directory name as shown in listings.
func (d *Driver) Name() string {
	if d.cwd == d.root {
		return "IECDRIVE"
	}
	return DisplayName(filepath.Base(d.cwd))
}

// SetShowDirs switches listing of sub-directories on or off.
func (d *Driver) SetShowDirs(show bool) {
	d.showDirs = show
}

// SetFilter sets a wildcard pattern for the next listing.
func (d *Driver) SetFilter(pattern string) {
	d.filter = pattern
}

// ChangeDir changes into the sub-directory matching name. Names "_" and
// ".." go to the parent directory, "/" and "//" to the root.
func (d *Driver) ChangeDir(name string) bool {

	switch name {
	case "_", "..", "<-":
		return d.Parent()
	case "/", "//":
		d.ToRoot()
		return true
	}

	path, info, ok := d.Resolve(name)
	if !ok || !info.IsDir() {
		return false
	}
	return d.Mount(path)
}

//
func (d *Driver) Parent() bool {
	if d.cwd == d.root {
		return false
	}
	return d.Mount(filepath.Dir(d.cwd))
}

//
func (d *Driver) ToRoot() {
	d.closeStream()
	d.cwd = d.root
}

// Resolve finds the entry in the current directory that matches name. Host
// names match case-insensitively, and with or without their extension.
func (d *Driver) Resolve(name string) (string, os.FileInfo, bool) {

	if name == "" {
		return "", nil, false
	}

	entries, err := os.ReadDir(d.cwd)
	if err != nil {
		log.WithField("dir", d.cwd).Errorf("cannot read directory: %v", err)
		return "", nil, false
	}

	for _, pass := range []func(string) string{
		func(n string) string { return n },
		DisplayName,
	} {
		for _, e := range entries {
			if base.MatchFold(name, pass(e.Name())) {
				path := filepath.Join(d.cwd, e.Name())
				info, err := os.Stat(path)
				if err != nil {
					continue
				}
				return path, info, true
			}
		}
	}

	return "", nil, false
}

// OpenRead opens the first plain file matching name.
func (d *Driver) OpenRead(name string) bool {

	path, info, ok := d.Resolve(name)
	if !ok || info.IsDir() {
		return false
	}
	return d.OpenPath(path)
}

// OpenPath opens the host file at path for reading.
func (d *Driver) OpenPath(path string) bool {

	d.closeStream()

	s, err := OpenStream(path, 0)
	if err != nil {
		log.WithField("path", path).Errorf("cannot open file: %v", err)
		return false
	}

	d.stream = s
	d.name = DisplayName(filepath.Base(path))
	d.OpenStream()
	if s.EOF() {
		d.SetEOF()
	}
	return true
}

//
func (d *Driver) OpenWrite(name string, replace bool) base.Status {

	if name == "" {
		return base.StatusSyntaxNoFile
	}
	if base.IsIllegalFilename(name) {
		return base.StatusSyntaxFilename
	}

	path, ok := d.target(HostName(name))
	if !ok {
		return base.StatusSyntaxFilename
	}

	d.closeStream()

	if existing, info, ok := d.Resolve(name); ok {
		if !replace {
			return base.StatusFileExists
		}
		if info.IsDir() {
			return base.StatusFileTypeMismatch
		}
		path = existing
	}

	s, err := CreateStream(path, replace)
	if err != nil {
		log.WithField("path", path).Errorf("cannot create file: %v", err)
		if os.IsExist(err) {
			return base.StatusFileExists
		}
		return base.StatusWriteVerify
	}

	d.stream = s
	d.name = name
	d.OpenStream()
	return base.StatusOK
}

//
func (d *Driver) Getc() byte {
	if d.stream == nil {
		return 0
	}
	b := d.stream.Getc()
	if d.stream.EOF() {
		d.SetEOF()
	}
	return b
}

//
func (d *Driver) Putc(b byte) bool {
	if d.stream == nil {
		return false
	}
	if err := d.stream.Putc(b); err != nil {
		log.Errorf("cannot write to '%s': %v", d.name, err)
		return false
	}
	return true
}

//
func (d *Driver) IsEOF() bool {
	return d.stream == nil || d.stream.EOF()
}

//
func (d *Driver) Close() bool {
	d.closeStream()
	return true
}

//
func (d *Driver) closeStream() {
	if d.stream != nil {
		if err := d.stream.Close(); err != nil {
			log.Errorf("error closing '%s': %v", d.name, err)
		}
		d.stream = nil
	}
	d.CloseStream()
}

//
func (d *Driver) FileSize() int {
	if d.stream == nil {
		return 0
	}
	return d.stream.Size()
}

//
func (d *Driver) Rename(oldName, newName string) bool {

	path, _, ok := d.Resolve(oldName)
	if !ok {
		return false
	}

	target, ok := d.target(newName + filepath.Ext(path))
	if !ok {
		log.WithField("name", newName).Warn("refusing rename out of directory")
		return false
	}
	if err := os.Rename(path, target); err != nil {
		log.WithFields(log.Fields{
			"from": path, "to": target}).Errorf("rename failed: %v", err)
		return false
	}
	return true
}

//
func (d *Driver) Remove(pattern string) int {

	entries, err := os.ReadDir(d.cwd)
	if err != nil {
		return 0
	}

	count := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if base.MatchFold(pattern, e.Name()) ||
			base.MatchFold(pattern, DisplayName(e.Name())) {
			path := filepath.Join(d.cwd, e.Name())
			if err := os.Remove(path); err != nil {
				log.WithField("path", path).Errorf("cannot remove: %v", err)
				continue
			}
			count++
		}
	}
	return count
}

//
func (d *Driver) Copy(dest string, srcs []string) base.Status {

	if len(srcs) == 0 {
		return base.StatusSyntaxNoFile
	}

	var paths []string
	for _, s := range srcs {
		path, info, ok := d.Resolve(s)
		if !ok || info.IsDir() {
			return base.StatusFileNotFound
		}
		paths = append(paths, path)
	}

	if d.FileExists(dest) {
		return base.StatusFileExists
	}

	target, ok := d.target(dest + filepath.Ext(paths[0]))
	if !ok {
		return base.StatusSyntaxFilename
	}
	out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		log.WithField("path", target).Errorf("cannot create copy: %v", err)
		return base.StatusWriteVerify
	}
	defer out.Close()

	for _, p := range paths {
		if err := appendFile(out, p); err != nil {
			log.WithField("path", p).Errorf("copy failed: %v", err)
			return base.StatusReadData
		}
	}
	return base.StatusOK
}

//
func appendFile(w io.Writer, path string) error {
	in, err := os.Open(path)
	if err != nil {
		return err
	}
	defer in.Close()
	_, err = io.Copy(w, in)
	return err
}

//
func (d *Driver) FileExists(name string) bool {
	_, _, ok := d.Resolve(name)
	return ok
}

// NewDisk is not supported on host directories.
func (d *Driver) NewDisk(label, id string) base.Status {
	return base.StatusNotImplemented
}

//
func (d *Driver) inside(path string) bool {
	rel, err := filepath.Rel(d.root, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, "../"))
}

// target returns the host path for a new file host in the current
// directory. Names reaching into other directories are refused.
func (d *Driver) target(host string) (string, bool) {
	if host == "" || host == "." || host == ".." ||
		strings.ContainsAny(host, `/\`) {
		return "", false
	}
	path := filepath.Join(d.cwd, host)
	return path, filepath.Dir(path) == filepath.Clean(d.cwd) && d.inside(path)
}

// RelPath returns the current directory relative to root.
func (d *Driver) RelPath() string {
	rel, err := filepath.Rel(d.root, d.cwd)
	if err != nil || rel == "." {
		return "/"
	}
	return "/" + filepath.ToSlash(rel)
}

// sortedEntries lists the current directory, directories first.
func (d *Driver) sortedEntries() ([]os.DirEntry, error) {
	entries, err := os.ReadDir(d.cwd)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].IsDir() != entries[j].IsDir() {
			return entries[i].IsDir()
		}
		return strings.ToUpper(entries[i].Name()) <
			strings.ToUpper(entries[j].Name())
	})
	return entries, nil
}

// DisplayName turns a host file name into a drive file name: upper case,
// without a ".prg" extension, and at most 16 characters.
func DisplayName(host string) string {
	name := host
	if strings.EqualFold(filepath.Ext(name), ".prg") {
		name = name[:len(name)-4]
	}
	name = strings.ToUpper(name)
	if len(name) > base.MaxNameLength {
		name = name[:base.MaxNameLength]
	}
	return name
}

// HostName turns a drive file name into the host file name used for saving.
func HostName(name string) string {
	if filepath.Ext(name) == "" {
		return strings.ToLower(name) + ".prg"
	}
	return strings.ToLower(name)
}

// FileType is the drive file type shown for a host file.
func FileType(host string) string {
	switch ext := strings.ToUpper(filepath.Ext(host)); ext {
	case ".SEQ", ".USR", ".REL", ".D64", ".T64", ".M2I", ".P00":
		return ext[1:]
	}
	return "PRG"
}

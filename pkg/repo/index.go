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
	Package repo maintains a search index over the directory tree served by
	the drive, and fetches media into that tree. Besides the host files
	themselves, the index records the names of the files stored inside disk
	and tape images, so that searching for a program name also finds the
	image that holds it.
*/
package repo

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/blevesearch/bleve/v2"
	"github.com/fsnotify/fsnotify"
	log "github.com/sirupsen/logrus"

	"github.com/xelalexv/iecdrive/pkg/util"
	"github.com/xelalexv/iecdrive/pkg/vfs/base"
	"github.com/xelalexv/iecdrive/pkg/vfs/d64"
	"github.com/xelalexv/iecdrive/pkg/vfs/m2i"
	"github.com/xelalexv/iecdrive/pkg/vfs/p00"
	"github.com/xelalexv/iecdrive/pkg/vfs/t64"
)

//
const (
	replaceChars      = "`~!@#$%^&*_-+=()[]{}|;:',.<>?/\\\""
	defaultFlushDelay = 5 * time.Second
	maxBatch          = 100
)

var nameCleaner *strings.Replacer

//
func init() {
	rep := make([]string, 2*len(replaceChars))
	for ix, c := range replaceChars {
		rep[ix*2] = string(c)
		rep[ix*2+1] = " "
	}
	nameCleaner = strings.NewReplacer(rep...)
}

// Entry is what gets indexed for a host file.
type Entry struct {
	Name  string `json:"name"`
	Kind  string `json:"kind"`
	Files string `json:"files,omitempty"`
}

//
type Index struct {
	base    string
	root    string
	stopped bool
	//
	index      bleve.Index
	empty      bool
	watcher    *util.DirWatcher
	flushDelay time.Duration
	formats    []base.Driver
	//
	batch      *bleve.Batch
	batchCount int
}

// NewIndex creates or opens the index stored at dir, for the directory
// tree rooted in root.
func NewIndex(dir, root string) (*Index, error) {

	var err error
	i := &Index{
		flushDelay: defaultFlushDelay,
		formats:    []base.Driver{d64.New(), t64.New(), m2i.New(), p00.New()},
	}

	if i.base, err = filepath.Abs(dir); err != nil {
		return nil, err
	}
	if i.root, err = filepath.Abs(root); err != nil {
		return nil, err
	}
	if rel, err := filepath.Rel(i.root, i.base); err == nil &&
		!strings.HasPrefix(rel, "..") {
		return nil, fmt.Errorf("index must not be inside of served directory")
	}

	logger := log.WithFields(log.Fields{"base": i.base, "root": i.root})

	if _, err := os.Stat(i.base); err != nil {
		if os.IsNotExist(err) {
			logger.Info("creating new index")
			i.index, err = bleve.New(i.base, bleve.NewIndexMapping())
		}
		if err != nil {
			return nil, fmt.Errorf("cannot create index: %v", err)
		}
		i.empty = true

	} else {
		logger.Info("opening index")
		if i.index, err = bleve.Open(i.base); err != nil {
			return nil, fmt.Errorf("cannot open index: %v", err)
		}
	}

	i.batch = i.index.NewBatch()
	return i, nil
}

// Start brings the index up to date and starts watching the served tree.
func (i *Index) Start() error {

	start := time.Now()
	if err := i.prune(); err != nil {
		return fmt.Errorf("error pruning index: %v", err)
	}
	log.WithField("duration", time.Since(start)).Info("index pruning finished")

	start = time.Now()
	if err := i.update(); err != nil {
		return fmt.Errorf("error updating index: %v", err)
	}
	log.WithField("duration", time.Since(start)).Info("index update finished")

	if err := i.batched(true); err != nil {
		return err
	}

	log.Info("starting index watcher")
	var err error
	if i.watcher, err = util.NewDirWatcher(i.root); err != nil {
		return fmt.Errorf("error creating index watcher: %v", err)
	}
	if err := i.watcher.Start(i.flushDelay, i.watchEvent, i.flushEvent); err != nil {
		return fmt.Errorf("error starting index watcher: %v", err)
	}

	log.Info("index ready")
	return nil
}

//
func (i *Index) Stop() {
	i.stopped = true
	if i.watcher != nil {
		i.watcher.Stop()
		i.watcher = nil
	}
	if i.index != nil {
		if err := i.index.Close(); err != nil {
			log.Errorf("error closing index: %v", err)
		}
		i.index = nil
	}
}

// prune removes entries for files that no longer exist.
func (i *Index) prune() error {

	if i.empty {
		return nil
	}

	ix, err := i.index.Advanced()
	if err != nil {
		return err
	}

	rd, err := ix.Reader()
	if err != nil {
		return err
	}
	defer rd.Close()

	docs, err := rd.DocIDReaderAll()
	if err != nil {
		return err
	}
	defer docs.Close()

	for {
		d, err := docs.Next()
		if err != nil {
			return err
		}
		if d == nil {
			return nil
		}
		id, err := rd.ExternalID(d)
		if err != nil {
			return err
		}
		if _, err := os.Stat(filepath.Join(i.root, id)); os.IsNotExist(err) {
			i.removeEntry(id)
		}
	}
}

// update adds everything changed since the index was last written.
func (i *Index) update() error {

	var lastMod time.Time
	if !i.empty {
		if store, err := os.Stat(filepath.Join(i.base, "store")); err == nil {
			lastMod = store.ModTime()
			log.Debugf("last index mod time: %v", lastMod)
		}
	}

	i.empty = false

	return filepath.Walk(i.root,
		func(path string, info os.FileInfo, err error) error {
			if i.stopped {
				return fmt.Errorf("forced exit")
			}
			if err != nil {
				log.Warnf("skipping %s: %v", path, err)
				return nil
			}
			if !info.IsDir() && info.ModTime().After(lastMod) {
				i.addEntry(path, info)
			}
			return nil
		})
}

//
func (i *Index) watchEvent(evt fsnotify.Event) error {

	rel := i.makeRelative(evt.Name)
	log.WithFields(log.Fields{"path": rel, "op": evt.Op}).Debug("index update")

	switch {

	case evt.Op&(fsnotify.Create|fsnotify.Write) != 0:
		if info, err := os.Stat(evt.Name); err != nil {
			log.Debugf("cannot index %s: %v", rel, err)
		} else if !info.IsDir() {
			return i.addEntry(evt.Name, info)
		}

	case evt.Op&(fsnotify.Rename|fsnotify.Remove) != 0:
		return i.removeEntry(rel)
	}

	return nil
}

//
func (i *Index) flushEvent() error {
	return i.batched(true)
}

// entry builds the index entry for the host file at path. For images, the
// names of the files inside are included.
func (i *Index) entry(path string, info os.FileInfo) *Entry {

	rel := i.makeRelative(path)
	ret := &Entry{Name: nameCleaner.Replace(rel), Kind: base.KindNative.String()}

	for _, f := range i.formats {
		if !f.Accepts(path, info) {
			continue
		}
		if !f.Mount(path) {
			log.WithField("path", rel).Debug("cannot read image for index")
			break
		}
		ret.Kind = f.Kind().String()
		ret.Files = strings.Join(imageFiles(f), " ")
		f.Unmount()
		break
	}

	return ret
}

// imageFiles collects the quoted file names from the directory listing of
// the mounted image, skipping the header line.
func imageFiles(d base.Driver) []string {

	l := &base.Listing{}
	if !d.ListDirectory(l) {
		return nil
	}

	var ret []string
	for ix, line := range l.Lines() {
		if ix == 0 {
			continue
		}
		text := string(line.Text)
		start := strings.IndexByte(text, '"')
		end := strings.LastIndexByte(text, '"')
		if start > -1 && end > start+1 {
			ret = append(ret, nameCleaner.Replace(text[start+1:end]))
		}
	}
	return ret
}

//
func (i *Index) addEntry(path string, info os.FileInfo) error {

	rel := i.makeRelative(path)
	logger := log.WithField("file", rel)
	logger.Debug("adding entry to index")

	if err := i.batch.Index(rel, i.entry(path, info)); err != nil {
		logger.Errorf("failed to batch entry add: %v", err)
		return err
	}

	return i.batched(false)
}

//
func (i *Index) removeEntry(rel string) error {
	log.WithField("file", rel).Debug("removing entry from index")
	i.batch.Delete(rel)
	return i.batched(false)
}

// This is not thread safe. After Start, add and remove are only ever called
// from the dir watcher.
func (i *Index) batched(flush bool) error {

	if i.batchCount++; flush || i.batchCount > maxBatch {
		log.Debug("flushing pending index actions")
		if err := i.index.Batch(i.batch); err != nil {
			log.Errorf("failed to execute index batch: %v", err)
			return err
		}
		i.batch = i.index.NewBatch()
		i.batchCount = 0
	}

	return nil
}

//
func (i *Index) makeRelative(path string) string {
	if len(path) > len(i.root) && strings.HasPrefix(path, i.root) {
		return filepath.ToSlash(path[len(i.root)+1:])
	}
	return path
}

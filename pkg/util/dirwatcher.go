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

package util

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	log "github.com/sirupsen/logrus"
)

/*
	NewDirWatcher creates a recursive file system watcher for the directory
	tree rooted in dir. Directories created later on are added to the watch.
	Hidden directories are skipped. The watcher does not deliver events until
	Start has been called.
*/
func NewDirWatcher(dir string) (*DirWatcher, error) {

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	ret := &DirWatcher{watcher: w, dirs: map[string]bool{}, done: make(chan bool)}

	if err := filepath.Walk(dir, ret.addDirWalking); err != nil {
		w.Close()
		return nil, fmt.Errorf("error walking directory '%s': %v", dir, err)
	}

	return ret, nil
}

//
type DirWatcher struct {
	watcher *fsnotify.Watcher
	dirs    map[string]bool
	done    chan bool
	running bool
	mutex   sync.Mutex
}

/*
	Start starts delivering events. Whenever something changes in the watched
	tree, handler gets called. Once there were no further changes for the
	duration of backoff, flush gets called. Both are called on the watcher's
	goroutine, so clients do not need to be thread safe.
*/
func (dw *DirWatcher) Start(backoff time.Duration,
	handler func(fsnotify.Event) error, flush func() error) error {

	dw.mutex.Lock()
	defer dw.mutex.Unlock()

	if dw.watcher == nil {
		return fmt.Errorf("directory watcher stopped")
	}
	if dw.running {
		return fmt.Errorf("directory watcher already started")
	}
	dw.running = true

	go dw.run(backoff, handler, flush)
	return nil
}

//
func (dw *DirWatcher) run(backoff time.Duration,
	handler func(fsnotify.Event) error, flush func() error) {

	defer close(dw.done)

	timer := time.NewTimer(backoff)
	timer.Stop()

	for {
		select {

		case evt, ok := <-dw.watcher.Events:
			if !ok {
				log.Debug("directory watcher exiting")
				return
			}
			dw.track(evt)
			if err := handler(evt); err != nil {
				log.Errorf("error in watch event handler: %v", err)
			}
			timer.Reset(backoff)

		case err, ok := <-dw.watcher.Errors:
			if ok {
				log.Errorf("directory watcher error: %v", err)
			}

		case <-timer.C:
			if err := flush(); err != nil {
				log.Errorf("error flushing: %v", err)
			}
		}
	}
}

// Stop stops the watcher and waits until its goroutine has ended. A stopped
// watcher cannot be started again.
func (dw *DirWatcher) Stop() {

	dw.mutex.Lock()
	defer dw.mutex.Unlock()

	if dw.watcher == nil {
		return
	}

	log.Debug("closing directory watcher")
	if err := dw.watcher.Close(); err != nil {
		log.Errorf("could not close directory watcher: %v", err)
	}
	if dw.running {
		<-dw.done
	}
	dw.watcher = nil
	dw.running = false
}

// track keeps the set of watched directories in sync with the tree.
func (dw *DirWatcher) track(evt fsnotify.Event) {

	log.WithFields(
		log.Fields{"path": evt.Name, "op": evt.Op}).Trace("watch event")

	switch {
	case evt.Op&fsnotify.Create != 0:
		if info, err := os.Lstat(evt.Name); err == nil && info.IsDir() {
			filepath.Walk(evt.Name, dw.addDirWalking)
		}
	case evt.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		dw.removeDir(evt.Name)
	}
}

//
func (dw *DirWatcher) addDirWalking(
	path string, info os.FileInfo, err error) error {

	if err != nil {
		return err
	}
	if !info.IsDir() {
		return nil
	}
	if strings.HasPrefix(info.Name(), ".") && len(info.Name()) > 1 {
		return filepath.SkipDir
	}

	if err := dw.watcher.Add(path); err != nil {
		return fmt.Errorf("error adding watch for '%s': %v", path, err)
	}
	dw.dirs[path] = true
	log.WithField("path", path).Debug("watching directory")
	return nil
}

// removeDir drops path and everything below it from the watch. Removed
// directories have already disappeared from the watcher, so this only
// updates the bookkeeping.
func (dw *DirWatcher) removeDir(path string) {
	prefix := path + string(filepath.Separator)
	for d := range dw.dirs {
		if d == path || strings.HasPrefix(d, prefix) {
			dw.watcher.Remove(d)
			delete(dw.dirs, d)
			log.WithField("path", d).Debug("stopped watching directory")
		}
	}
}

// Watched returns the number of directories being watched.
func (dw *DirWatcher) Watched() int {
	return len(dw.dirs)
}

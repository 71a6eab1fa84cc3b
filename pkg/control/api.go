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
	Package control provides the HTTP API for controlling a running drive.
	It offers status and listings, mounting and unmounting, resetting, write
	protection, search over the served tree, and fetching files into it.
*/
package control

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/xelalexv/iecdrive/pkg/daemon"
	"github.com/xelalexv/iecdrive/pkg/repo"
	"github.com/xelalexv/iecdrive/pkg/vfs/base"
)

// Drive is what the API controls.
type Drive interface {
	Status() (*daemon.Status, error)
	Listing(info bool) (*base.Listing, error)
	Mount(path string) error
	Unmount() error
	Reset() error
	SetWriteProtected(on bool)
	IsWriteProtected() bool
	Root() string
}

// Searcher finds files in the served tree.
type Searcher interface {
	Search(term string, max int) (*repo.SearchResult, error)
}

//
type APIServer interface {
	Serve() error
	Stop() error
}

// NewAPIServer creates an API server for drive. Pass a nil index when
// search is not available.
func NewAPIServer(addr string, drive Drive, index Searcher) APIServer {
	return &api{address: addr, daemon: drive, index: index}
}

//
type api struct {
	address string
	daemon  Drive
	index   Searcher
	server  *http.Server
}

//
func (a *api) Serve() error {

	a.server = &http.Server{
		Addr:         a.address,
		Handler:      a.router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	log.Infof("API server listening on %s", a.address)
	if err := a.server.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

//
func (a *api) Stop() error {
	if a.server == nil {
		return nil
	}
	log.Info("API server stopping")
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	return a.server.Shutdown(ctx)
}

//
func (a *api) router() *mux.Router {

	r := mux.NewRouter().StrictSlash(true)
	addRoute(r, "version", "GET", "/version", a.version)
	addRoute(r, "status", "GET", "/status", a.status)
	addRoute(r, "ls", "GET", "/ls", a.driveList)
	addRoute(r, "dump", "GET", "/dump", a.dump)
	addRoute(r, "mount", "PUT", "/mount", a.mount)
	addRoute(r, "unmount", "PUT", "/unmount", a.unmount)
	addRoute(r, "reset", "PUT", "/reset", a.reset)
	addRoute(r, "getConfig", "GET", "/config/{item}", a.getConfig)
	addRoute(r, "setConfig", "PUT", "/config/{item}", a.setConfig)
	addRoute(r, "search", "GET", "/search", a.search)
	addRoute(r, "upload", "PUT", "/upload", a.upload)
	return r
}

//
func addRoute(r *mux.Router, name, method, pattern string, handler http.HandlerFunc) {
	r.Methods(method).Path(pattern).Name(name).Handler(logged(handler, name))
}

//
func logged(h http.Handler, name string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()
		h.ServeHTTP(w, req)
		log.WithFields(log.Fields{
			"method":   req.Method,
			"uri":      req.RequestURI,
			"route":    name,
			"duration": time.Since(start),
		}).Debug("API call")
	})
}

// --- helpers ------------------------------------------------------------------

// getArg returns the path variable key, or the query parameter of that name.
func getArg(req *http.Request, key string) string {
	if v, ok := mux.Vars(req)[key]; ok {
		return v
	}
	return req.URL.Query().Get(key)
}

//
func getIntArg(req *http.Request, key string, def int) (int, error) {
	v := getArg(req, key)
	if v == "" {
		return def, nil
	}
	ret, err := strconv.Atoi(v)
	if err != nil {
		return def, fmt.Errorf("invalid value for %s: %s", key, v)
	}
	return ret, nil
}

//
func isFlagSet(req *http.Request, key string) bool {
	q := req.URL.Query()
	if _, ok := q[key]; !ok {
		return false
	}
	v := strings.ToLower(q.Get(key))
	return v == "" || v == "true" || v == "1" || v == "on"
}

//
func wantsJSON(req *http.Request) bool {
	return strings.Contains(req.Header.Get("Accept"), "application/json")
}

//
func handleError(err error, statusCode int, w http.ResponseWriter) bool {
	if err == nil {
		return false
	}
	log.Errorf("API error: %v", err)
	sendReply([]byte(err.Error()), statusCode, w)
	return true
}

//
func sendReply(body []byte, statusCode int, w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/plain; charset=UTF-8")
	w.WriteHeader(statusCode)
	if _, err := w.Write(body); err != nil {
		log.Errorf("problem sending reply: %v", err)
	}
}

//
func sendJSONReply(obj interface{}, statusCode int, w http.ResponseWriter) {
	body, err := json.Marshal(obj)
	if handleError(err, http.StatusInternalServerError, w) {
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	w.WriteHeader(statusCode)
	if _, err := w.Write(body); err != nil {
		log.Errorf("problem sending reply: %v", err)
	}
}

//
func sendStreamReply(r io.Reader, statusCode int, w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/plain; charset=UTF-8")
	w.WriteHeader(statusCode)
	if _, err := io.Copy(w, r); err != nil {
		log.Errorf("problem sending reply: %v", err)
	}
}

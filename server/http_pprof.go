/******************************************************************************
 *
 *  Description :
 *
 *  Optional runtime profiling endpoint. When enabled, named runtime/pprof
 *  profiles are dumped at <configured-path>/<profile-name>.
 *
 *****************************************************************************/

package main

import (
	"net/http"
	"path"
	"runtime/pprof"
	"strings"

	"github.com/isomorphiccat/kemotown/server/logs"
)

// servePprof mounts the profile dump handler. Disabled when the path is
// empty.
func servePprof(mux *http.ServeMux, serveAt string) {
	if serveAt == "" || serveAt == "-" {
		return
	}

	root := path.Clean("/"+serveAt) + "/"
	mux.HandleFunc(root, func(wrt http.ResponseWriter, req *http.Request) {
		dumpProfile(wrt, strings.TrimPrefix(req.URL.Path, root))
	})

	logs.Info.Printf("pprof: profiling info exposed at '%s'", root)
}

func dumpProfile(wrt http.ResponseWriter, name string) {
	wrt.Header().Set("X-Content-Type-Options", "nosniff")
	wrt.Header().Set("Content-Type", "text/plain; charset=utf-8")

	profile := pprof.Lookup(name)
	if profile == nil {
		http.Error(wrt, "Unknown profile '"+name+"'", http.StatusNotFound)
		return
	}
	profile.WriteTo(wrt, 2)
}

// Copyright (c) 2026 Arista Networks, Inc.
// Use of this source code is governed by the Apache License 2.0
// that can be found in the COPYING file.

package monitor

import (
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/aristanetworks/glog"
)

var (
	loglevelMu sync.Mutex
	resetTimer *time.Timer
)

// loglevelHandler handles a POST to /debug/loglevel, setting the global glog
// verbosity. An optional "timeout" form value (a duration between 1s and
// 24h) restores the previous verbosity after it elapses; a later request
// cancels a pending restore.
func loglevelHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "loglevel: HTTP method must be POST", http.StatusBadRequest)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "loglevel: could not parse form: "+err.Error(), http.StatusBadRequest)
		return
	}
	v, err := strconv.Atoi(r.Form.Get("glog"))
	if err != nil || v < 0 {
		http.Error(w, "loglevel: invalid glog argument", http.StatusBadRequest)
		return
	}
	var timeout time.Duration
	if t := r.Form.Get("timeout"); t != "" {
		timeout, err = time.ParseDuration(t)
		if err != nil || timeout < time.Second || timeout > 24*time.Hour {
			http.Error(w, "loglevel: timeout must be a duration between 1s and 24h",
				http.StatusBadRequest)
			return
		}
	}

	loglevelMu.Lock()
	defer loglevelMu.Unlock()
	if resetTimer != nil {
		resetTimer.Stop()
		resetTimer = nil
	}
	prev := glog.SetVGlobal(glog.Level(v))
	glog.Infof("verbosity set to %d (was %d)", v, prev)
	if timeout != 0 {
		resetTimer = time.AfterFunc(timeout, func() {
			loglevelMu.Lock()
			defer loglevelMu.Unlock()
			glog.SetVGlobal(prev)
			glog.Infof("verbosity reset to %d", prev)
			resetTimer = nil
		})
	}
	fmt.Fprint(w, "OK\n")
}

// Copyright 2026 ccpemu project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

package stat

import (
	"context"
	"fmt"
	"net/http"
	"text/tabwriter"

	"github.com/google/ccpemu/pkg/log"
	"github.com/gorilla/handlers"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler serves /metrics in the Prometheus format and /stats as a plain text table.
func Handler() http.Handler {
	mux := http.NewServeMux()
	handle := func(pattern string, handler http.Handler) {
		mux.Handle(pattern, handlers.CompressHandler(handler))
	}
	handle("/metrics", promhttp.HandlerFor(prometheus.DefaultGatherer, promhttp.HandlerOpts{}))
	handle("/stats", http.HandlerFunc(httpStats))
	return mux
}

func httpStats(w http.ResponseWriter, r *http.Request) {
	level := All
	if r.FormValue("level") == "console" {
		level = Console
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, v := range Collect(level) {
		fmt.Fprintf(tw, "%v\t%v\t%v\n", v.Name, v.Value, v.Desc)
	}
	tw.Flush()
}

// Serve serves Handler on addr until ctx is cancelled.
func Serve(ctx context.Context, addr string) error {
	log.Logf(0, "serving http on http://%v", addr)
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	server := &http.Server{Addr: addr, Handler: Handler()}
	go func() {
		<-ctx.Done()
		server.Close()
	}()
	err := server.ListenAndServe()
	if err != http.ErrServerClosed {
		return err
	}
	return nil
}

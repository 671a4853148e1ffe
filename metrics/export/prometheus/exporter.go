package prometheus

import (
	"bufio"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/MrEthical07/authservice"
	"github.com/MrEthical07/authservice/metrics/export/internaldefs"
)

const contentType = "text/plain; version=0.0.4; charset=utf-8"

// MetricsSource is satisfied by *authservice.Engine.
type MetricsSource interface {
	MetricsSnapshot() authservice.MetricsSnapshot
}

// PrometheusExporter writes engine metrics in the Prometheus text
// exposition format.
type PrometheusExporter struct {
	source MetricsSource
}

func NewPrometheusExporter(source MetricsSource) *PrometheusExporter {
	return &PrometheusExporter{source: source}
}

func (p *PrometheusExporter) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", contentType)
		_ = p.Write(w)
	})
}

// Render returns the exposition as a string, or "" when metrics are
// disabled.
func (p *PrometheusExporter) Render() string {
	var b strings.Builder
	_ = p.Write(&b)
	return b.String()
}

// Write streams the current snapshot to w. Histograms missing from the
// snapshot are skipped.
func (p *PrometheusExporter) Write(w io.Writer) error {
	if p == nil || p.source == nil {
		return nil
	}
	snap := p.source.MetricsSnapshot()
	if len(snap.Counters) == 0 && len(snap.Histograms) == 0 {
		return nil
	}

	bw := bufio.NewWriter(w)
	for _, def := range internaldefs.Defs {
		switch def.Kind {
		case internaldefs.Counter:
			header(bw, def, "counter")
			fmt.Fprintf(bw, "%s %d\n", def.Name, snap.Counters[def.ID])
		case internaldefs.Histogram:
			raw, ok := snap.Histograms[def.ID]
			if !ok {
				continue
			}
			header(bw, def, "histogram")
			cumulative := internaldefs.Cumulative(raw)
			for i, bucket := range internaldefs.Buckets {
				fmt.Fprintf(bw, "%s_bucket{le=%q} %d\n", def.Name, bucket.LE, cumulative[i])
			}
			fmt.Fprintf(bw, "%s_count %d\n", def.Name, cumulative[len(cumulative)-1])
			// Only bucket counts are tracked.
			fmt.Fprintf(bw, "%s_sum 0\n", def.Name)
		}
	}
	return bw.Flush()
}

func header(w io.Writer, def internaldefs.Def, kind string) {
	help := strings.NewReplacer(`\`, `\\`, "\n", `\n`).Replace(def.Help)
	fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s %s\n", def.Name, help, def.Name, kind)
}

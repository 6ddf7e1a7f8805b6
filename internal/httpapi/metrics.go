package httpapi

import (
	"net/http"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"go.uber.org/zap"
	"google.golang.org/protobuf/proto"

	"github.com/hamed0406/uptimeboard/internal/dashboard"
	"github.com/hamed0406/uptimeboard/internal/domain"
)

var statuses = []domain.Status{domain.StatusGood, domain.StatusBad, domain.StatusUnknown}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	snap, err := s.snapshot(r.Context())
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	w.Header().Set("Content-Type", string(expfmt.NewFormat(expfmt.TypeTextPlain)))
	for _, mf := range families(snap) {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			s.Logger.Warn("metrics_write_error", zap.Error(err))
			return
		}
	}
}

// families converts a snapshot into Prometheus gauges, one series per target.
func families(snap dashboard.Snapshot) []*dto.MetricFamily {
	pct := gaugeFamily("uptime_percentage", "Share of good samples over the full history.")
	cur := gaugeFamily("uptime_current_status", "1 for the target's current status, 0 for the others.")
	last := gaugeFamily("uptime_last_checked_seconds", "Unix time of the newest sample.")

	for _, w := range snap.Websites {
		labels := targetLabels(w)

		pct.Metric = append(pct.Metric, gauge(labels, w.UptimePercentage))

		for _, st := range statuses {
			v := 0.0
			if w.CurrentStatus == st {
				v = 1
			}
			sl := append(append([]*dto.LabelPair(nil), labels...), label("status", string(st)))
			cur.Metric = append(cur.Metric, gauge(sl, v))
		}

		if w.LastChecked != nil {
			last.Metric = append(last.Metric, gauge(labels, float64(w.LastChecked.UnixMilli())/1000))
		}
	}

	out := []*dto.MetricFamily{pct, cur}
	if len(last.Metric) > 0 {
		out = append(out, last)
	}
	return out
}

func gaugeFamily(name, help string) *dto.MetricFamily {
	return &dto.MetricFamily{
		Name: proto.String(name),
		Help: proto.String(help),
		Type: dto.MetricType_GAUGE.Enum(),
	}
}

func gauge(labels []*dto.LabelPair, v float64) *dto.Metric {
	return &dto.Metric{
		Label: labels,
		Gauge: &dto.Gauge{Value: proto.Float64(v)},
	}
}

func label(name, value string) *dto.LabelPair {
	return &dto.LabelPair{Name: proto.String(name), Value: proto.String(value)}
}

func targetLabels(s domain.Summary) []*dto.LabelPair {
	return []*dto.LabelPair{
		label("id", string(s.ID)),
		label("url", s.URL),
	}
}

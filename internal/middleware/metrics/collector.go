package metrics

import (
	"context"
	"time"

	"github.com/itchan-dev/studyboard/internal/domain"
	"github.com/itchan-dev/studyboard/internal/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

var (
	PostsTotal = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "studyboard_posts",
		Help: "Number of posts by state",
	}, []string{"state"})

	RepliesTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "studyboard_replies",
		Help: "Number of replies",
	})
)

// StatsSource returns a point-in-time snapshot of the board.
type StatsSource func() domain.BoardStats

// StartCollector refreshes the board gauges every interval until ctx is cancelled.
func StartCollector(ctx context.Context, src StatsSource, interval time.Duration) {
	collect(src)

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				collect(src)
			}
		}
	}()

	logger.Log.Info("metrics collector started", "interval", interval)
}

func collect(src StatsSource) {
	s := src()
	PostsTotal.WithLabelValues("all").Set(float64(s.Posts))
	PostsTotal.WithLabelValues("deleted").Set(float64(s.DeletedPosts))
	PostsTotal.WithLabelValues("flagged").Set(float64(s.FlaggedPosts))
	PostsTotal.WithLabelValues("hidden").Set(float64(s.HiddenPosts))
	RepliesTotal.Set(float64(s.Replies))
}

// GaugeValue reads the current value of a prometheus.Gauge.
func GaugeValue(g prometheus.Gauge) float64 {
	m := &dto.Metric{}
	if err := g.Write(m); err != nil {
		return 0
	}
	return m.GetGauge().GetValue()
}

package database

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func poolGauge(name, help string, read func(*pgxpool.Stat) float64) {
	promauto.NewGaugeFunc(prometheus.GaugeOpts{Name: name, Help: help}, func() float64 {
		s := stats()
		if s == nil {
			return 0
		}
		return read(s)
	})
}

func init() {
	poolGauge("db_pool_total_conns", "Connections currently open in the pool",
		func(s *pgxpool.Stat) float64 { return float64(s.TotalConns()) })
	poolGauge("db_pool_acquired_conns", "Connections currently checked out of the pool",
		func(s *pgxpool.Stat) float64 { return float64(s.AcquiredConns()) })
	poolGauge("db_pool_idle_conns", "Idle connections in the pool",
		func(s *pgxpool.Stat) float64 { return float64(s.IdleConns()) })
}

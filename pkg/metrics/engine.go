package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// initEngineMetrics initializes memory engine metrics.
func (m *Manager) initEngineMetrics() {
	m.recordsCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "memory_records_created_total",
			Help: "Total number of memory records created, by record type",
		},
		[]string{"type"},
	)

	m.duplicatesRejected = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "memory_duplicates_rejected_total",
			Help: "Total number of writes rejected by the duplicate filter",
		},
	)

	m.recallsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "memory_recalls_total",
			Help: "Total number of recall queries served",
		},
	)

	m.recallCacheHits = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "memory_recall_cache_hits_total",
			Help: "Total number of recall queries served from the debounce cache",
		},
	)

	m.storeErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "memory_store_errors_total",
			Help: "Total number of record store errors swallowed, by operation",
		},
		[]string{"operation"},
	)

	m.recordsDecayed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "memory_records_decayed_total",
			Help: "Total number of records removed by decay passes",
		},
	)

	m.recordsMerged = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "memory_records_merged_total",
			Help: "Total number of records merged by consolidation passes",
		},
	)

	m.checkpointsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "memory_checkpoints_total",
			Help: "Total number of episodic checkpoint summaries created",
		},
	)

	m.registry.MustRegister(m.recordsCreated)
	m.registry.MustRegister(m.duplicatesRejected)
	m.registry.MustRegister(m.recallsTotal)
	m.registry.MustRegister(m.recallCacheHits)
	m.registry.MustRegister(m.storeErrors)
	m.registry.MustRegister(m.recordsDecayed)
	m.registry.MustRegister(m.recordsMerged)
	m.registry.MustRegister(m.checkpointsTotal)
}

// RecordCreated records the creation of a memory record.
func (m *Manager) RecordCreated(recordType string) {
	if !m.enabled {
		return
	}
	m.recordsCreated.WithLabelValues(recordType).Inc()
}

// RecordDuplicateRejected records a write rejected by the duplicate filter.
func (m *Manager) RecordDuplicateRejected() {
	if !m.enabled {
		return
	}
	m.duplicatesRejected.Inc()
}

// RecordRecall records a served recall query.
func (m *Manager) RecordRecall() {
	if !m.enabled {
		return
	}
	m.recallsTotal.Inc()
}

// RecordRecallCacheHit records a recall served from the debounce cache.
func (m *Manager) RecordRecallCacheHit() {
	if !m.enabled {
		return
	}
	m.recallCacheHits.Inc()
}

// RecordStoreError records a swallowed record store error.
func (m *Manager) RecordStoreError(operation string) {
	if !m.enabled {
		return
	}
	m.storeErrors.WithLabelValues(operation).Inc()
}

// RecordDecayed records records removed by a decay pass.
func (m *Manager) RecordDecayed(count int) {
	if !m.enabled {
		return
	}
	m.recordsDecayed.Add(float64(count))
}

// RecordMerged records records merged by a consolidation pass.
func (m *Manager) RecordMerged(count int) {
	if !m.enabled {
		return
	}
	m.recordsMerged.Add(float64(count))
}

// RecordCheckpoint records an episodic checkpoint summary creation.
func (m *Manager) RecordCheckpoint() {
	if !m.enabled {
		return
	}
	m.checkpointsTotal.Inc()
}

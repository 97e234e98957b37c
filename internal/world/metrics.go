package world

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics Prometheus-метрики стриминга чанков
type Metrics struct {
	generated      prometheus.Counter
	evicted        prometheus.Counter
	discarded      prometheus.Counter
	panics         prometheus.Counter
	meshBuilds     prometheus.Counter
	uploads        prometheus.Counter
	uploadFailures prometheus.Counter
	releases       prometheus.Counter
	destroyed      prometheus.Counter
	resident       prometheus.Gauge
	pending        prometheus.Gauge
	uploadQueue    prometheus.Gauge
}

// NewMetrics создаёт метрики и регистрирует их в reg; nil: метрики не регистрируются
func NewMetrics(reg prometheus.Registerer) *Metrics {
	counter := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{Namespace: "voxel", Subsystem: "world", Name: name, Help: help})
	}
	gauge := func(name, help string) prometheus.Gauge {
		return prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "voxel", Subsystem: "world", Name: name, Help: help})
	}

	m := &Metrics{
		generated:      counter("chunks_generated_total", "Чанков сгенерировано и добавлено в мир."),
		evicted:        counter("chunks_evicted_total", "Чанков выгружено за пределами окна видимости."),
		discarded:      counter("chunks_discarded_total", "Готовых чанков, отброшенных из-за смещения окна."),
		panics:         counter("generation_panics_total", "Задач генерации, завершившихся паникой."),
		meshBuilds:     counter("mesh_builds_total", "Пересборок мешей чанков."),
		uploads:        counter("mesh_uploads_total", "Мешей, переданных в MeshSink."),
		uploadFailures: counter("mesh_upload_failures_total", "Мешей, отвергнутых MeshSink."),
		releases:       counter("mesh_releases_total", "Освобождённых дескрипторов мешей."),
		destroyed:      counter("blocks_destroyed_total", "Разрушенных блоков."),
		resident:       gauge("chunks_resident", "Резидентных чанков."),
		pending:        gauge("chunks_pending", "Чанков в генерации."),
		uploadQueue:    gauge("upload_queue_length", "Чанков в очереди на загрузку меша."),
	}

	if reg != nil {
		reg.MustRegister(
			m.generated, m.evicted, m.discarded, m.panics,
			m.meshBuilds, m.uploads, m.uploadFailures, m.releases, m.destroyed,
			m.resident, m.pending, m.uploadQueue,
		)
	}
	return m
}

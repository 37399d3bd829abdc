package http

import (
	"io"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"

	"kcvdb/pkg/keystore"
)

func ptr[T any](v T) *T { return &v }

// metricFamilies renders per-store statistics, in names order, as
// Prometheus metric families. Families without samples are omitted.
func metricFamilies(names []string, stats map[string]keystore.Stats) []*dto.MetricFamily {
	if len(names) == 0 {
		return nil
	}

	keys := &dto.MetricFamily{
		Name: ptr("kcvdb_store_keys"),
		Help: ptr("Number of non-empty rows in the store."),
		Type: dto.MetricType_GAUGE.Enum(),
	}
	entries := &dto.MetricFamily{
		Name: ptr("kcvdb_store_entries"),
		Help: ptr("Number of live columns across all rows of the store."),
		Type: dto.MetricType_GAUGE.Enum(),
	}
	mutations := &dto.MetricFamily{
		Name: ptr("kcvdb_store_mutations_total"),
		Help: ptr("Number of row mutations applied to the store."),
		Type: dto.MetricType_COUNTER.Enum(),
	}

	for _, name := range names {
		st := stats[name]
		label := []*dto.LabelPair{{Name: ptr("store"), Value: ptr(name)}}

		keys.Metric = append(keys.Metric, &dto.Metric{
			Label: label,
			Gauge: &dto.Gauge{Value: ptr(float64(st.Keys))},
		})
		entries.Metric = append(entries.Metric, &dto.Metric{
			Label: label,
			Gauge: &dto.Gauge{Value: ptr(float64(st.Entries))},
		})
		mutations.Metric = append(mutations.Metric, &dto.Metric{
			Label:   label,
			Counter: &dto.Counter{Value: ptr(float64(st.Mutations))},
		})
	}

	return []*dto.MetricFamily{keys, entries, mutations}
}

func writeMetrics(w io.Writer, families []*dto.MetricFamily) error {
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}

//go:build dev

package metrics

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"sync"
	"time"
)

var (
	startTime    = time.Now()
	gaugesLocker = &sync.RWMutex{}
	gauges       = []*Gauge{}
)

func NewGauge(name string) *Gauge {
	gauge := &Gauge{
		name: name,
	}

	gaugesLocker.Lock()
	defer gaugesLocker.Unlock()

	gauges = append(gauges, gauge)

	return gauge
}

// WriteMetrics dumps every recorded sample as CSV: name, label, value, elapsed nanoseconds.
func WriteMetrics(w io.Writer) error {
	csvWriter := csv.NewWriter(w)

	if err := csvWriter.Write([]string{"name", "label", "value", "time"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	gaugesLocker.RLock()
	defer gaugesLocker.RUnlock()

	for _, gauge := range gauges {
		for _, record := range gauge.getRecords() {
			err := csvWriter.Write([]string{
				gauge.name,
				record.label,
				strconv.FormatFloat(record.value, 'f', -1, 64),
				strconv.FormatInt(record.time.Sub(startTime).Nanoseconds(), 10),
			})
			if err != nil {
				return fmt.Errorf("write record: %w", err)
			}
		}
	}

	csvWriter.Flush()
	if err := csvWriter.Error(); err != nil {
		return fmt.Errorf("flush metrics: %w", err)
	}

	return nil
}

type record struct {
	value float64
	time  time.Time
	label string
}

type Gauge struct {
	name          string
	recordsLocker sync.RWMutex
	records       []record
}

func (g *Gauge) Set(value float64, label string) {
	g.recordsLocker.Lock()
	defer g.recordsLocker.Unlock()

	g.records = append(g.records, record{
		value: value,
		time:  time.Now(),
		label: label,
	})
}

func (g *Gauge) getRecords() []record {
	g.recordsLocker.RLock()
	defer g.recordsLocker.RUnlock()

	return g.records
}

// Stopwatch runs f and records its wall time in nanoseconds under label.
func (g *Gauge) Stopwatch(f func(), label string) {
	start := time.Now()
	start = start.Round(0) // delete monotonic clock value
	f()
	g.Set(float64(time.Since(start).Nanoseconds()), label)
}

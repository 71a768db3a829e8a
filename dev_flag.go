//go:build dev

package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"runtime/pprof"

	"github.com/felixge/fgprof"
	"github.com/mazrean/blobbackup/internal/metrics"
)

type DevFlag struct {
	CPUProf       string       `kong:"optional,help='CPU profile output file',type='path'"`
	MemProf       string       `kong:"optional,help='Memory profile output file',type='path'"`
	Metrics       string       `kong:"optional,help='Metrics output file (CSV)',type='path'"`
	FgProf        string       `kong:"optional,help='fgprof output file',type='path'"`
	cpuProfFile   *os.File     `kong:"-"`
	fgprofFile    *os.File     `kong:"-"`
	fgprofStop    func() error `kong:"-"`
	procStatsStop func()       `kong:"-"`
}

func (d *DevFlag) StartProfiling() error {
	if d.CPUProf != "" {
		f, err := os.Create(d.CPUProf)
		if err != nil {
			return fmt.Errorf("create CPU profile file: %w", err)
		}
		d.cpuProfFile = f

		if err := pprof.StartCPUProfile(f); err != nil {
			return fmt.Errorf("start CPU profiling: %w", err)
		}
	}

	if d.FgProf != "" {
		f, err := os.Create(d.FgProf)
		if err != nil {
			return fmt.Errorf("create fgprof file: %w", err)
		}
		d.fgprofFile = f

		d.fgprofStop = fgprof.Start(f, fgprof.FormatPprof)
	}

	if d.Metrics != "" {
		stop, err := metrics.InitProcStat()
		if err != nil {
			return fmt.Errorf("initialize proc stat: %w", err)
		}
		d.procStatsStop = stop
	}

	return nil
}

func (d *DevFlag) StopProfiling() error {
	var errs []error

	if d.cpuProfFile != nil {
		pprof.StopCPUProfile()
		if err := d.cpuProfFile.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close CPU profile: %w", err))
		}
	}

	if d.fgprofStop != nil {
		if err := d.fgprofStop(); err != nil {
			errs = append(errs, fmt.Errorf("stop fgprof: %w", err))
		}
		if err := d.fgprofFile.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close fgprof file: %w", err))
		}
	}

	if d.MemProf != "" {
		runtime.GC()
		if err := writeFile(d.MemProf, pprof.WriteHeapProfile); err != nil {
			errs = append(errs, fmt.Errorf("write memory profile: %w", err))
		}
	}

	if d.Metrics != "" {
		if d.procStatsStop != nil {
			d.procStatsStop()
		}
		if err := writeFile(d.Metrics, metrics.WriteMetrics); err != nil {
			errs = append(errs, fmt.Errorf("write metrics: %w", err))
		}
	}

	return errors.Join(errs...)
}

func writeFile(path string, write func(w io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()

	return write(f)
}

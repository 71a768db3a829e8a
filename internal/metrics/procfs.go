package metrics

import (
	"fmt"
	"log"
	"time"

	"github.com/prometheus/procfs"
)

const sampleInterval = 250 * time.Millisecond

var (
	cpuSelfGauge   = NewGauge("cpu_self")
	memSelfGauge   = NewGauge("mem_self")
	ioSelfGauge    = NewGauge("io_self")
	networkTxGauge = NewGauge("network_tx")
)

// InitProcStat samples the process' own CPU, memory, disk reads and network
// transmit counters until the returned stop function is called.
func InitProcStat() (stop func(), err error) {
	fs, err := procfs.NewDefaultFS()
	if err != nil {
		return nil, fmt.Errorf("create procfs: %w", err)
	}

	proc, err := fs.Self()
	if err != nil {
		return nil, fmt.Errorf("get self proc: %w", err)
	}

	ticker := time.NewTicker(sampleInterval)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if err := sampleSelf(proc); err != nil {
					log.Printf("failed to sample proc: %v", err)
				}
			}
		}
	}()

	return func() {
		ticker.Stop()
		close(done)
	}, nil
}

func sampleSelf(proc procfs.Proc) error {
	stat, err := proc.Stat()
	if err != nil {
		return fmt.Errorf("get stat: %w", err)
	}

	cpuSelfGauge.Set(stat.CPUTime(), "total")
	memSelfGauge.Set(float64(stat.ResidentMemory()), "resident")
	memSelfGauge.Set(float64(stat.VirtualMemory()), "virtual")

	ioStat, err := proc.IO()
	if err != nil {
		return fmt.Errorf("get io: %w", err)
	}
	ioSelfGauge.Set(float64(ioStat.ReadBytes), "read_bytes")

	netDev, err := proc.NetDev()
	if err != nil {
		return fmt.Errorf("get net dev: %w", err)
	}

	for _, dev := range netDev {
		networkTxGauge.Set(float64(dev.TxBytes), dev.Name)
	}

	return nil
}

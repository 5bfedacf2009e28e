// Package procstat samples resource usage of the running process.
package procstat

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v4/process"
)

// Snapshot is a point-in-time usage sample.
type Snapshot struct {
	RSS        uint64
	CPUPercent float64
}

// Sample reads the current usage of this process.
func Sample() (Snapshot, error) {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return Snapshot{}, err
	}
	mem, err := p.MemoryInfo()
	if err != nil {
		return Snapshot{}, err
	}
	cpu, err := p.CPUPercent()
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{RSS: mem.RSS, CPUPercent: cpu}, nil
}

// Attach adds the current usage to a log event. Sampling errors leave the
// event unchanged.
func Attach(e *zerolog.Event) *zerolog.Event {
	if !e.Enabled() {
		return e
	}
	s, err := Sample()
	if err != nil {
		return e
	}
	return e.Uint64("rssBytes", s.RSS).Float64("cpuPercent", s.CPUPercent)
}

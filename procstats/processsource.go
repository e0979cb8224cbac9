package procstats

import "github.com/shirou/gopsutil/process"

// ProcessSource reads per-process CPU and storage I/O counters through
// gopsutil. On Linux this maps to /proc/[pid]/stat and /proc/[pid]/io;
// the latter may be unreadable without matching privileges, which
// surfaces as an error and therefore as invalid OS counters.
type ProcessSource struct{}

// ReadCounters reads the counters for pid.
func (ProcessSource) ReadCounters(pid int32) (OSCounters, error) {
	proc, err := process.NewProcess(pid)
	if err != nil {
		return OSCounters{}, err
	}

	times, err := proc.Times()
	if err != nil {
		return OSCounters{}, err
	}

	ioCounters, err := proc.IOCounters()
	if err != nil {
		return OSCounters{}, err
	}

	return OSCounters{
		CPUUserSeconds:   times.User,
		CPUSystemSeconds: times.System,
		ReadBytes:        ioCounters.ReadBytes,
		WriteBytes:       ioCounters.WriteBytes,
		Valid:            true,
	}, nil
}

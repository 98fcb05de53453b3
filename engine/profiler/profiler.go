package profiler

import (
	"os"
	"runtime"
	"time"

	"github.com/Carmen-Shannon/oxy-blend/common"
	"github.com/shirou/gopsutil/v3/process"
	"go.uber.org/zap"
)

// Stats is one profiler report.
type Stats struct {
	// TPS is the number of ticks per second over the report interval.
	TPS float64

	// Instances is the number of active playbacks at the last tick.
	Instances int

	HeapMB      float64
	AllocRateMB float64
	GCCount     uint32
	LastPauseUs uint64
	MaxPauseUs  uint64
	SysMB       float64

	// CPUPercent and RSSMB come from the operating system. Zero when unavailable.
	CPUPercent float64
	RSSMB      float64
}

// Profiler tracks tick rate, playback count, and memory statistics for performance
// monitoring. Outputs stats to the log at a configurable interval.
type Profiler struct {
	frameCount     int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64

	proc   *process.Process
	logger *zap.Logger
	last   Stats
}

// NewProfiler creates a new Profiler with default settings.
// Update interval defaults to 1 second.
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler() *Profiler {
	p := &Profiler{
		frameCount:     0,
		lastTime:       time.Now(),
		updateInterval: time.Second,
		memStats:       runtime.MemStats{},
	}
	// Process stats are optional; some sandboxes deny access to /proc.
	if proc, err := process.NewProcess(int32(os.Getpid())); err == nil {
		p.proc = proc
	}
	return p
}

// SetInterval changes how often stats are reported. Non-positive values are ignored.
//
// Parameters:
//   - d: the report interval
func (p *Profiler) SetInterval(d time.Duration) {
	if d > 0 {
		p.updateInterval = d
	}
}

// SetLogger sets the logger stats are written to. nil restores the shared engine logger.
//
// Parameters:
//   - l: the logger
func (p *Profiler) SetLogger(l *zap.Logger) {
	p.logger = l
}

// Last returns the most recent report.
func (p *Profiler) Last() Stats {
	return p.last
}

// Tick should be called once per engine tick to track tick timing.
// Logs performance statistics when the update interval has elapsed.
// Statistics include: TPS, active playbacks, heap usage, allocation rate, GC count/pause
// times, total memory, process CPU and resident memory.
//
// Parameters:
//   - instances: the number of active playbacks
//
// Returns:
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick(instances int) bool {
	p.frameCount++
	currentTime := time.Now()
	elapsed := currentTime.Sub(p.lastTime)

	if elapsed < p.updateInterval {
		return false
	}

	runtime.ReadMemStats(&p.memStats)
	s := Stats{
		TPS:       float64(p.frameCount) / elapsed.Seconds(),
		Instances: instances,
		// Alloc is live heap; Sys is the process footprint obtained from the OS.
		HeapMB:      float64(p.memStats.Alloc) / 1024 / 1024,
		SysMB:       float64(p.memStats.Sys) / 1024 / 1024,
		AllocRateMB: float64(p.memStats.TotalAlloc-p.lastTotalAlloc) / 1024 / 1024 / elapsed.Seconds(),
		GCCount:     p.memStats.NumGC,
	}

	if gcCount := s.GCCount; gcCount > 0 {
		// PauseNs is a circular buffer of last 256 GC pauses
		s.LastPauseUs = p.memStats.PauseNs[(gcCount-1)%256] / 1000

		startIdx := p.lastGCCount
		if gcCount-startIdx > 256 {
			startIdx = gcCount - 256
		}
		for i := startIdx; i < gcCount; i++ {
			s.MaxPauseUs = max(s.MaxPauseUs, p.memStats.PauseNs[i%256]/1000)
		}
	}

	if p.proc != nil {
		if cpu, err := p.proc.Percent(0); err == nil {
			s.CPUPercent = cpu
		}
		if mem, err := p.proc.MemoryInfo(); err == nil {
			s.RSSMB = float64(mem.RSS) / 1024 / 1024
		}
	}

	logger := p.logger
	if logger == nil {
		logger = common.Logger()
	}
	logger.Info("profiler",
		zap.Float64("tps", s.TPS),
		zap.Int("instances", s.Instances),
		zap.Float64("heap_mb", s.HeapMB),
		zap.Float64("alloc_rate_mb", s.AllocRateMB),
		zap.Uint32("gc", s.GCCount),
		zap.Uint64("gc_last_us", s.LastPauseUs),
		zap.Uint64("gc_max_us", s.MaxPauseUs),
		zap.Float64("sys_mb", s.SysMB),
		zap.Float64("cpu_percent", s.CPUPercent),
		zap.Float64("rss_mb", s.RSSMB),
	)

	p.last = s
	p.frameCount = 0
	p.lastTime = currentTime
	p.lastGCCount = s.GCCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return true
}

package bench

import (
	"runtime"

	"golang.org/x/sys/cpu"

	"github.com/exascience/parsort/history"
)

// HostInfo describes the current machine. Features lists the SIMD
// extensions relevant to sorting throughput.
func HostInfo() history.Host {
	h := history.Host{
		GOOS:       runtime.GOOS,
		GOARCH:     runtime.GOARCH,
		CPUs:       runtime.NumCPU(),
		GOMAXPROCS: runtime.GOMAXPROCS(0),
	}
	add := func(name string, ok bool) {
		if ok {
			h.Features = append(h.Features, name)
		}
	}
	switch runtime.GOARCH {
	case "amd64", "386":
		add("sse4.2", cpu.X86.HasSSE42)
		add("avx", cpu.X86.HasAVX)
		add("avx2", cpu.X86.HasAVX2)
		add("avx512f", cpu.X86.HasAVX512F)
	case "arm64":
		add("asimd", cpu.ARM64.HasASIMD)
		add("sve", cpu.ARM64.HasSVE)
	}
	return h
}

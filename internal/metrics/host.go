package metrics

import (
	"fmt"

	"github.com/klauspost/cpuid/v2"
)

// Host describes the machine a run was timed on, so throughput numbers in the
// run history can be compared across hosts.
type Host struct {
	CPU   string `json:"cpu"`
	Cores int    `json:"cores"`
	AVX2  bool   `json:"avx2"`
	FMA   bool   `json:"fma"`
}

// CurrentHost reads the CPU identification of this process's host.
func CurrentHost() Host {
	return Host{
		CPU:   cpuid.CPU.BrandName,
		Cores: cpuid.CPU.PhysicalCores,
		AVX2:  cpuid.CPU.Supports(cpuid.AVX2),
		FMA:   cpuid.CPU.Supports(cpuid.FMA3),
	}
}

func (h Host) String() string {
	return fmt.Sprintf("cpu=%q cores=%d avx2=%t fma=%t", h.CPU, h.Cores, h.AVX2, h.FMA)
}

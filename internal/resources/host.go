package resources

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/load"
	"github.com/shirou/gopsutil/v4/mem"
)

// Host summarizes the machine for the check command. It is never consulted on
// the scheduling path.
type Host struct {
	LogicalCores   int
	PhysicalCores  int
	TotalMemory    uint64
	AvailMemory    uint64
	MemoryPercent  float64
	Load1          float64
	Load5          float64
	Load15         float64
	TaskWorkers    int
	SegmentWorkers int
}

// HostReport gathers CPU, memory, and load figures. Individual probe failures
// are joined into the returned error while the remaining fields are still
// filled in.
func HostReport(ctx context.Context, sizer Sizer) (Host, error) {
	host := Host{
		LogicalCores:   runtime.NumCPU(),
		TaskWorkers:    sizer.TaskPoolSize(),
		SegmentWorkers: sizer.SegmentPoolSize(),
	}
	var errs []error

	if n, err := cpu.CountsWithContext(ctx, true); err == nil && n > 0 {
		host.LogicalCores = n
	} else if err != nil {
		errs = append(errs, fmt.Errorf("logical cpu count: %w", err))
	}
	if n, err := cpu.CountsWithContext(ctx, false); err == nil {
		host.PhysicalCores = n
	} else {
		errs = append(errs, fmt.Errorf("physical cpu count: %w", err))
	}

	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		host.TotalMemory = vm.Total
		host.AvailMemory = vm.Available
		host.MemoryPercent = vm.UsedPercent
	} else {
		errs = append(errs, fmt.Errorf("virtual memory: %w", err))
	}

	if avg, err := load.AvgWithContext(ctx); err == nil {
		host.Load1 = avg.Load1
		host.Load5 = avg.Load5
		host.Load15 = avg.Load15
	} else {
		errs = append(errs, fmt.Errorf("load average: %w", err))
	}

	return host, errors.Join(errs...)
}

package system

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
)

// FindLatest returns the most recently modified file in dir whose
// extension is one of exts (case-insensitive).
func FindLatest(dir string, exts ...string) (string, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}

	var latestFile string
	var latestTime time.Time

	for _, f := range files {
		if f.IsDir() || !hasExt(f.Name(), exts) {
			continue
		}
		info, err := f.Info()
		if err != nil {
			continue
		}
		if latestFile == "" || info.ModTime().After(latestTime) {
			latestTime = info.ModTime()
			latestFile = filepath.Join(dir, f.Name())
		}
	}

	if latestFile == "" {
		return "", fmt.Errorf("no %s files found in %s", strings.Join(exts, "/"), dir)
	}

	return latestFile, nil
}

func hasExt(name string, exts []string) bool {
	lower := strings.ToLower(name)
	for _, ext := range exts {
		if strings.HasSuffix(lower, strings.ToLower(ext)) {
			return true
		}
	}
	return false
}

// LookupBinary resolves an external tool such as ffplay or ffprobe.
func LookupBinary(name string) (string, error) {
	path, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("%s not found in PATH: %w", name, err)
	}
	return path, nil
}

// HostInfo is a short description of the machine the carousel runs on.
type HostInfo struct {
	Hostname    string
	Platform    string
	LogicalCPUs int
	TotalMemory uint64
	FreeMemory  uint64
}

func (h HostInfo) String() string {
	return fmt.Sprintf("%s (%s) | CPU: %d | RAM: %.1f/%.1f GiB free",
		h.Hostname, h.Platform, h.LogicalCPUs,
		float64(h.FreeMemory)/(1<<30), float64(h.TotalMemory)/(1<<30))
}

// Describe collects host details. Fields that cannot be read stay zero.
func Describe(ctx context.Context) HostInfo {
	info := HostInfo{
		Platform:    runtime.GOOS + "/" + runtime.GOARCH,
		LogicalCPUs: runtime.NumCPU(),
	}

	if hi, err := host.InfoWithContext(ctx); err == nil {
		info.Hostname = hi.Hostname
		if hi.Platform != "" {
			info.Platform = hi.Platform + " " + hi.PlatformVersion
		}
	}
	if n, err := cpu.CountsWithContext(ctx, true); err == nil && n > 0 {
		info.LogicalCPUs = n
	}
	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		info.TotalMemory = vm.Total
		info.FreeMemory = vm.Available
	}
	return info
}

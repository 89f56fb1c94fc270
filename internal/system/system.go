package system

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// DefaultWorkers returns the number of physical cores, falling back to the
// logical CPU count when gopsutil cannot tell.
func DefaultWorkers() int {
	n, err := cpu.Counts(false)
	if err != nil || n <= 0 {
		return runtime.NumCPU()
	}
	return n
}

// FrameBytes is the memory an NRGBA frame of the given size takes.
func FrameBytes(width, height int) uint64 {
	return uint64(width) * uint64(height) * 4
}

// CheckFrameBudget fails when keeping frames frames of width x height in
// memory would use more than half of the available RAM.
func CheckFrameBudget(frames, width, height int) error {
	vm, err := mem.VirtualMemory()
	if err != nil {
		// Unknown memory, do not block rendering
		return nil
	}
	return checkBudget(uint64(frames)*FrameBytes(width, height), vm.Available)
}

func checkBudget(need, available uint64) error {
	if need > available/2 {
		return fmt.Errorf("frames need %d MiB, only %d MiB available; lower -fps or the window size",
			need>>20, available>>20)
	}
	return nil
}

// FindLatest returns the most recently modified file in dir accepted by match.
func FindLatest(dir string, match func(name string) bool) (string, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}

	var latestFile string
	var latestTime time.Time

	for _, f := range files {
		if f.IsDir() || !match(f.Name()) {
			continue
		}
		info, err := f.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(latestTime) {
			latestTime = info.ModTime()
			latestFile = filepath.Join(dir, f.Name())
		}
	}

	if latestFile == "" {
		return "", fmt.Errorf("no matching files in %s", dir)
	}

	return latestFile, nil
}

// FindLatestInput finds the newest PDF or image in dir.
func FindLatestInput(dir string, isImage func(name string) bool) (string, error) {
	return FindLatest(dir, func(name string) bool {
		return strings.HasSuffix(strings.ToLower(name), ".pdf") || isImage(name)
	})
}

func GetBestH264Encoder() (string, string) {
	// Priority: VideoToolbox (macOS), NVENC, then software libx264
	encoders := []struct {
		name string
		args string
	}{
		{"h264_videotoolbox", ""},
		{"h264_nvenc", ""},
	}

	out, err := exec.Command("ffmpeg", "-encoders").CombinedOutput()
	if err != nil {
		return "libx264", ""
	}
	for _, enc := range encoders {
		if strings.Contains(string(out), enc.name) {
			return enc.name, enc.args
		}
	}

	return "libx264", ""
}

// DefaultQuality returns a sensible quality value for the encoder.
func DefaultQuality(encoder string) int {
	switch encoder {
	case "h264_videotoolbox":
		return 75
	case "h264_nvenc":
		return 28
	default:
		return 23
	}
}

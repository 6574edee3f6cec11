package workload

import (
	"bufio"
	"os"
	"runtime"
	"strings"
)

// DetectHardware returns a short hardware label for evidence rows:
// the CPU model from /proc/cpuinfo where available, the architecture
// otherwise.
func DetectHardware() string {
	if model := cpuModel(); model != "" {
		return model + "_" + runtime.GOARCH
	}
	return "CPU_" + runtime.GOARCH
}

func cpuModel() string {
	f, err := os.Open("/proc/cpuinfo")
	if err != nil {
		return ""
	}
	defer func() { _ = f.Close() }()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "model name") {
			continue
		}
		parts := strings.SplitN(line, ":", 2)
		if len(parts) != 2 {
			continue
		}
		model := strings.TrimSpace(parts[1])
		return strings.ReplaceAll(model, " ", "_")
	}
	return ""
}

package blocks

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// readUint reads a file holding a single unsigned integer, as sysfs does.
func readUint(path string) (uint64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseUint(string(bytes.TrimSpace(data)), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", path, err)
	}
	return v, nil
}

func readTrimmed(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// cpuTimes is the aggregate line of /proc/stat.
type cpuTimes struct {
	idle  uint64
	total uint64
}

func readCPUTimes(root string) (cpuTimes, error) {
	f, err := os.Open(filepath.Join(root, "proc/stat"))
	if err != nil {
		return cpuTimes{}, err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	if !sc.Scan() {
		return cpuTimes{}, fmt.Errorf("read /proc/stat: %w", sc.Err())
	}
	fields := strings.Fields(sc.Text())
	if len(fields) < 9 || fields[0] != "cpu" {
		return cpuTimes{}, fmt.Errorf("unexpected /proc/stat line: %q", sc.Text())
	}
	// user nice system idle iowait irq softirq steal
	var v [8]uint64
	for i := range v {
		n, err := strconv.ParseUint(fields[i+1], 10, 64)
		if err != nil {
			return cpuTimes{}, fmt.Errorf("parse /proc/stat: %w", err)
		}
		v[i] = n
	}
	idle := v[3] + v[4]
	return cpuTimes{idle: idle, total: idle + v[0] + v[1] + v[2] + v[5] + v[6] + v[7]}, nil
}

// usage returns the busy percentage between two samples.
func (c cpuTimes) usage(prev cpuTimes) float64 {
	dt := float64(c.total - prev.total)
	if c.total <= prev.total {
		return 0
	}
	di := float64(c.idle - prev.idle)
	return (dt - di) / dt * 100
}

type memInfo struct {
	total     uint64
	available uint64
}

func (m memInfo) usedPercent() float64 {
	if m.total == 0 {
		return 0
	}
	return float64(m.total-m.available) / float64(m.total) * 100
}

// readMemInfo reads /proc/meminfo, falling back to free+buffers+cached on
// kernels without MemAvailable. Values are in bytes.
func readMemInfo(root string) (memInfo, error) {
	f, err := os.Open(filepath.Join(root, "proc/meminfo"))
	if err != nil {
		return memInfo{}, err
	}
	defer f.Close()

	vals := map[string]uint64{}
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		key, rest, ok := strings.Cut(sc.Text(), ":")
		if !ok {
			continue
		}
		fields := strings.Fields(rest)
		if len(fields) == 0 {
			continue
		}
		if n, err := strconv.ParseUint(fields[0], 10, 64); err == nil {
			vals[key] = n * 1024
		}
	}
	if err := sc.Err(); err != nil {
		return memInfo{}, err
	}
	total := vals["MemTotal"]
	if total == 0 {
		return memInfo{}, fmt.Errorf("no MemTotal in /proc/meminfo")
	}
	avail, ok := vals["MemAvailable"]
	if !ok {
		avail = vals["MemFree"] + vals["Buffers"] + vals["Cached"]
	}
	return memInfo{total: total, available: avail}, nil
}

// netCounters sums received and transmitted bytes from /proc/net/dev.
// When only is non-empty, other interfaces are skipped.
func readNetCounters(root string, only map[string]bool) (rx, tx uint64, err error) {
	f, err := os.Open(filepath.Join(root, "proc/net/dev"))
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		name, rest, ok := strings.Cut(sc.Text(), ":")
		if !ok {
			continue
		}
		name = strings.TrimSpace(name)
		if len(only) > 0 && !only[name] {
			continue
		}
		fields := strings.Fields(rest)
		if len(fields) < 9 {
			continue
		}
		r, err1 := strconv.ParseUint(fields[0], 10, 64)
		t, err2 := strconv.ParseUint(fields[8], 10, 64)
		if err1 != nil || err2 != nil {
			continue
		}
		rx += r
		tx += t
	}
	return rx, tx, sc.Err()
}

package blocks

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/sys/unix"

	"istat/config"
	"istat/pager"
	"istat/theme"
)

const diskIcon = "\uf0a0"

type diskUsage struct {
	mount     string
	available uint64
	total     uint64
}

func (d diskUsage) availablePercent() float64 {
	if d.total == 0 {
		return 0
	}
	return float64(d.available) / float64(d.total) * 100
}

// statfs is swapped out in tests.
var statfs = func(path string) (avail, total uint64, err error) {
	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		return 0, 0, err
	}
	return st.Bavail * uint64(st.Bsize), st.Blocks * uint64(st.Bsize), nil
}

// disk shows free space per mount point, one page per mount.
type disk struct {
	Interval Duration `json:"interval"`
	Mounts   []string `json:"mounts"`

	root string
}

func init() {
	Register(Kind{Name: "disk", Build: newDisk})
}

func newDisk(it config.Item) (Item, error) {
	d := &disk{root: "/"}
	if err := it.Decode(d); err != nil {
		return nil, err
	}
	return d, nil
}

// mounts lists block device mounts, restricted to the configured ones if any.
func (d *disk) mounts() ([]string, error) {
	f, err := os.Open(filepath.Join(d.root, "proc/mounts"))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	want := map[string]bool{}
	for _, m := range d.Mounts {
		want[m] = true
	}
	seen := map[string]bool{}
	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) < 2 || !strings.HasPrefix(fields[0], "/dev/") {
			continue
		}
		mount := unescapeMount(fields[1])
		if seen[mount] || (len(want) > 0 && !want[mount]) {
			continue
		}
		seen[mount] = true
		out = append(out, mount)
	}
	sort.Strings(out)
	return out, sc.Err()
}

// unescapeMount undoes the octal escapes /proc/mounts uses for spaces.
func unescapeMount(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+4 <= len(s) {
			if c, err := strconv.ParseUint(s[i+1:i+4], 8, 8); err == nil {
				b.WriteByte(byte(c))
				i += 3
				continue
			}
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

func (d *disk) usage() ([]diskUsage, error) {
	mounts, err := d.mounts()
	if err != nil {
		return nil, err
	}
	out := make([]diskUsage, 0, len(mounts))
	for _, m := range mounts {
		avail, total, err := statfs(m)
		if err != nil {
			continue
		}
		out = append(out, diskUsage{mount: m, available: avail, total: total})
	}
	return out, nil
}

func diskBlock(t theme.Theme, u diskUsage, p *pager.Paginator) Block {
	b := Block{
		FullText:  fmt.Sprintf("%s %s %s%s", diskIcon, u.mount, humanize.Bytes(u.available), p.Format(t)),
		ShortText: u.mount,
		Markup:    MarkupPango,
	}
	switch pct := u.availablePercent(); {
	case pct < 11:
		b.Color = ColorRef(t.Red)
	case pct < 21:
		b.Color = ColorRef(t.Orange)
	case pct < 31:
		b.Color = ColorRef(t.Yellow)
	}
	return b
}

func (d *disk) Start(ctx *Context) (StopAction, error) {
	interval := d.Interval.Or(time.Minute)
	p := pager.New()
	for {
		disks, err := d.usage()
		if err != nil {
			return Complete, err
		}
		var b Block
		if len(disks) > 0 {
			if err := p.SetLen(len(disks)); err != nil {
				return Complete, err
			}
			b = diskBlock(ctx.Theme(), disks[p.Idx()], p)
		}
		if err := ctx.Update(b); err != nil {
			return Complete, nil
		}
		if err := ctx.DelayWithEventHandler(interval, p.Update); err != nil {
			return Complete, nil
		}
	}
}

package blocks

import (
	"bufio"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"istat/config"
	"istat/pager"
	"istat/theme"
)

type nicAddr struct {
	name string
	addr string
}

// listAddrs is swapped out in tests.
var listAddrs = func() ([]nicAddr, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}
	var out []nicAddr
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, a := range addrs {
			ip, _, err := net.ParseCIDR(a.String())
			if err != nil {
				continue
			}
			out = append(out, nicAddr{name: iface.Name, addr: ip.String()})
		}
	}
	return out, nil
}

// wirelessQuality reads link quality percentages from /proc/net/wireless.
func wirelessQuality(root string) map[string]int {
	out := map[string]int{}
	f, err := os.Open(filepath.Join(root, "proc/net/wireless"))
	if err != nil {
		return out
	}
	defer f.Close()
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		name, rest, ok := strings.Cut(sc.Text(), ":")
		if !ok {
			continue
		}
		fields := strings.Fields(rest)
		if len(fields) < 2 {
			continue
		}
		link, err := strconv.ParseFloat(strings.TrimSuffix(fields[1], "."), 64)
		if err != nil {
			continue
		}
		out[strings.TrimSpace(name)] = int(link * 100 / 70)
	}
	return out
}

// nic shows each address of every interface that is up, one page per
// address.
type nic struct {
	Interval Duration `json:"interval"`

	root string
}

func init() {
	Register(Kind{Name: "nic", Build: newNic})
}

func newNic(it config.Item) (Item, error) {
	n := &nic{root: "/"}
	if err := it.Decode(n); err != nil {
		return nil, err
	}
	return n, nil
}

func (n *nic) addrs() ([]nicAddr, error) {
	addrs, err := listAddrs()
	if err != nil {
		return nil, err
	}
	sort.Slice(addrs, func(i, j int) bool {
		if addrs[i].name != addrs[j].name {
			return addrs[i].name < addrs[j].name
		}
		return addrs[i].addr < addrs[j].addr
	})
	return addrs, nil
}

func nicBlock(t theme.Theme, a nicAddr, quality map[string]int, p *pager.Paginator) Block {
	fg := t.Green
	extra := ""
	if q, ok := quality[a.name]; ok {
		extra = fmt.Sprintf(" %d%%", q)
		switch {
		case q >= 80:
			fg = t.Green
		case q >= 60:
			fg = t.Yellow
		case q >= 40:
			fg = t.Orange
		default:
			fg = t.Red
		}
	}
	return Block{
		FullText:  fmt.Sprintf(`<span foreground="%s">%s(%s)%s</span>%s`, fg, a.name, a.addr, extra, p.Format(t)),
		ShortText: fmt.Sprintf(`<span foreground="%s">%s</span>`, fg, a.name),
		Markup:    MarkupPango,
	}
}

func (n *nic) Start(ctx *Context) (StopAction, error) {
	interval := n.Interval.Or(30 * time.Second)
	p := pager.New()
	for {
		addrs, err := n.addrs()
		if err != nil {
			return Complete, err
		}
		var b Block
		if len(addrs) > 0 {
			if err := p.SetLen(len(addrs)); err != nil {
				return Complete, err
			}
			b = nicBlock(ctx.Theme(), addrs[p.Idx()], wirelessQuality(n.root), p)
		}
		if err := ctx.Update(b); err != nil {
			return Complete, nil
		}
		if err := ctx.DelayWithEventHandler(interval, p.Update); err != nil {
			return Complete, nil
		}
	}
}

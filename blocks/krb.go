package blocks

import (
	"fmt"
	"time"

	"istat/config"
	"istat/shell"
	"istat/theme"
)

// krb shows whether a Kerberos ticket is held.
type krb struct {
	Interval Duration `json:"interval"`

	check func(ctx *Context) bool
}

func init() {
	Register(Kind{Name: "krb", Build: newKrb})
}

func newKrb(it config.Item) (Item, error) {
	k := &krb{check: func(ctx *Context) bool {
		return shell.Succeeds(ctx.Context(), "klist", "-s")
	}}
	if err := it.Decode(k); err != nil {
		return nil, err
	}
	return k, nil
}

func krbBlock(t theme.Theme, ok bool) Block {
	fg := t.Red
	if ok {
		fg = t.Green
	}
	return Block{
		FullText: fmt.Sprintf(`<span foreground="%s">K</span>`, fg),
		Markup:   MarkupPango,
	}
}

func (k *krb) Start(ctx *Context) (StopAction, error) {
	interval := k.Interval.Or(2 * time.Minute)
	for {
		if err := ctx.Update(krbBlock(ctx.Theme(), k.check(ctx))); err != nil {
			return Complete, nil
		}
		if _, err := ctx.WaitForEvent(interval); err != nil {
			return Complete, nil
		}
	}
}

package blocks

import "istat/config"

// raw shows a block taken straight from the config and never changes it.
type raw struct {
	block Block
}

func init() {
	Register(Kind{Name: "raw", Build: newRaw})
}

func newRaw(it config.Item) (Item, error) {
	var b Block
	if err := it.Decode(&b); err != nil {
		return nil, err
	}
	// the descriptor's own keys are not block fields
	b.Name, b.Instance = "", ""
	b.Separator = nil
	return &raw{block: b}, nil
}

func (r *raw) Start(ctx *Context) (StopAction, error) {
	if err := ctx.Update(r.block); err != nil {
		return Complete, err
	}
	return Complete, nil
}

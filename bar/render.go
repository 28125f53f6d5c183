package bar

import (
	"strings"

	"istat/blocks"
	"istat/theme"
)

const (
	dataUrgent       = "_urgent"
	dataPowerlineSep = "_powerline_sep"
)

// Render turns the stored blocks into a frame for theme t. Render is called
// from the frame loop only.
func (b *Bar) Render(t theme.Theme) []blocks.Block {
	src := b.Snapshot()
	if t.PowerlineEnable && len(t.Powerline) > 0 {
		return b.renderPowerline(t, src)
	}
	return renderPlain(t, src)
}

// renderPlain paints urgent blocks with the urgent pair and takes the
// urgent flag off the wire so the bar does not restyle them.
func renderPlain(t theme.Theme, src []blocks.Block) []blocks.Block {
	out := make([]blocks.Block, len(src))
	for i, blk := range src {
		if blk.IsUrgent() {
			blk.Color = blocks.ColorRef(t.UrgentFg)
			blk.Background = blocks.ColorRef(t.UrgentBg)
			blk.Urgent = nil
			blk = blk.WithData(dataUrgent, true)
		}
		out[i] = blk
	}
	return out
}

// renderPowerline emits a separator and a padded content block for every
// visible block. Colors rotate through the powerline pairs so the rightmost
// segment always gets the first pair.
func (b *Bar) renderPowerline(t theme.Theme, src []blocks.Block) []blocks.Block {
	k := len(t.Powerline)
	visible := 0
	for _, blk := range src {
		if !blk.IsEmpty() {
			visible++
		}
	}

	out := make([]blocks.Block, 0, 2*visible)
	idx := k - visible%k
	sep := t.PowerlineSeparator.Span()
	var prevBg *theme.Color
	for _, blk := range src {
		if blk.IsEmpty() {
			continue
		}
		pair := t.Powerline[(idx+1)%k]
		idx++

		urgent := blk.IsUrgent()
		var fg, bg theme.Color
		if urgent {
			fg, bg = t.UrgentFg, t.UrgentBg
		} else {
			bg = pair.Bg
			if blk.Background != nil {
				bg = *blk.Background
			}
			fg = pair.Fg
			if blk.Color != nil {
				fg = *blk.Color
				if fg == t.Dim {
					fg = b.dims.adjust(t, bg)
				}
			}
		}

		out = append(out, blocks.Block{
			FullText:            sep,
			Instance:            blk.Instance,
			Name:                blk.Name,
			Color:               blocks.ColorRef(bg),
			Background:          prevBg,
			Separator:           blocks.Bool(false),
			SeparatorBlockWidth: blocks.Int(0),
			Markup:              blocks.MarkupPango,
			Data:                map[string]any{dataPowerlineSep: true},
		})

		content := blk
		content.FullText = " " + strings.ReplaceAll(blk.FullText, t.Dim.String(), b.dims.adjust(t, bg).String()) + " "
		content.Color = blocks.ColorRef(fg)
		content.Background = blocks.ColorRef(bg)
		content.Separator = blocks.Bool(false)
		content.SeparatorBlockWidth = blocks.Int(0)
		content.Urgent = nil
		if urgent {
			content = content.WithData(dataUrgent, true)
		}
		out = append(out, content)

		prevBg = blocks.ColorRef(bg)
	}
	return out
}

type dimKey struct {
	fg, dim theme.Color
}

// dimCache holds the per channel offset that keeps dim text readable on a
// segment background.
type dimCache map[dimKey]theme.Color

func (c dimCache) adjust(t theme.Theme, bg theme.Color) theme.Color {
	key := dimKey{fg: t.Fg, dim: t.Dim}
	offset, ok := c[key]
	if !ok {
		offset = t.Fg.AbsDiff(t.Dim)
		c[key] = offset
	}
	return bg.SaturatingAdd(offset)
}

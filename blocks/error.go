package blocks

import "istat/theme"

// ErrorBlock marks an item that stopped with an error.
func ErrorBlock(t theme.Theme, name string) Block {
	return alertBlock(t, "ERROR("+name+")")
}

// MaxRetriesBlock replaces an item that restarted too often.
func MaxRetriesBlock(t theme.Theme) Block {
	return alertBlock(t, "MAX RETRIES")
}

func alertBlock(t theme.Theme, text string) Block {
	return Block{
		FullText:   text,
		Color:      ColorRef(t.Bg),
		Background: ColorRef(t.Red),
	}
}

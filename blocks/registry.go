package blocks

import (
	"fmt"

	"istat/config"
)

// Kind describes how to build an item of one type from its descriptor.
type Kind struct {
	Name  string
	Build func(config.Item) (Item, error)
}

var (
	reg      = map[string]Kind{}
	regOrder []string
)

// Register adds a kind. Registering the same name again replaces the
// builder but keeps the original ordering.
func Register(k Kind) {
	if _, exists := reg[k.Name]; !exists {
		regOrder = append(regOrder, k.Name)
	}
	reg[k.Name] = k
}

// Kinds lists the registered item types in registration order.
func Kinds() []string {
	return append([]string(nil), regOrder...)
}

// Build creates the item described by it.
func Build(it config.Item) (Item, error) {
	k, ok := reg[it.Type]
	if !ok {
		return nil, fmt.Errorf("unknown item type %q", it.Type)
	}
	item, err := k.Build(it)
	if err != nil {
		return nil, err
	}
	return item, nil
}

// BuildItems creates every configured item, in config order.
func BuildItems(cfg *config.Config) ([]Item, error) {
	items := make([]Item, 0, len(cfg.Items))
	for i, it := range cfg.Items {
		item, err := Build(it)
		if err != nil {
			return nil, fmt.Errorf("item[%d]: %w", i, err)
		}
		items = append(items, item)
	}
	return items, nil
}


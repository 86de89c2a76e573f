package state

// Item is one row of a filterable list. Label is what gets rendered; Data
// carries the domain value behind the row.
type Item struct {
	ID    string
	Label string
	// Keywords are extra search terms that are not part of the label, such
	// as a player's SteamID or a setting's description.
	Keywords []string
	Data     interface{}
}

// searchKeys lists everything a filter term may match, label first.
func (it Item) searchKeys() []string {
	keys := make([]string, 0, 2+len(it.Keywords))
	keys = append(keys, it.Label, it.ID)
	for _, k := range it.Keywords {
		if k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}

// CloneItems produces a shallow copy of the provided items.
func CloneItems(items []Item) []Item {
	dup := make([]Item, len(items))
	copy(dup, items)
	return dup
}

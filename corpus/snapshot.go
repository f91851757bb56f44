package corpus

type snapshot struct {
	// exact maps every normalized lookup form (full name and, for
	// double-faced cards, the front face alone) to a card ID.
	exact map[string]string
	cards map[string]Card
	// entries is the flat list of (normalized name, card ID) pairs fuzzy
	// matching scans; built once per Rebuild.
	entries []entry
	// phonetic buckets entries by phoneticKey so FuzzyCandidates can test
	// shared-key membership by index instead of recomputing the key.
	phonetic map[string][]int
}

type entry struct {
	normalized string
	cardID     string
}

func newSnapshot(cards []Card, normalizedNames func(Card) []string) *snapshot {
	s := &snapshot{
		exact:    make(map[string]string, len(cards)*2),
		cards:    make(map[string]Card, len(cards)),
		phonetic: make(map[string][]int),
	}
	for _, c := range cards {
		s.cards[c.ID] = c
		for _, form := range normalizedNames(c) {
			if _, exists := s.exact[form]; !exists {
				s.exact[form] = c.ID
			}
			idx := len(s.entries)
			s.entries = append(s.entries, entry{normalized: form, cardID: c.ID})
			key := phoneticKey(form)
			s.phonetic[key] = append(s.phonetic[key], idx)
		}
	}
	return s
}

package delta

// candidate is an entity name with its identity key, key is empty for entities without id
type candidate struct {
	name string
	key  string
}

type pair struct {
	before string
	after  string
	byID   bool
}

type matching struct {
	byBefore map[string]*pair
	byAfter  map[string]*pair
	removed  []string
}

func (m *matching) link(before, after string, byID bool) {
	p := &pair{before: before, after: after, byID: byID}
	m.byBefore[before] = p
	m.byAfter[after] = p
}

// match pairs entities by identity first, then by exact name when at least one side has no id,
// then, if compatible is set, by unique one-to-one structural compatibility between leftovers
// without ids. Ambiguous candidates stay unmatched.
func match(before, after []candidate, compatible func(before, after string) bool) *matching {
	m := &matching{byBefore: map[string]*pair{}, byAfter: map[string]*pair{}}
	beforeByKey := map[string]string{}
	beforeByName := map[string]candidate{}
	for _, c := range before {
		beforeByName[c.name] = c
		if c.key == "" {
			continue
		}
		if _, ok := beforeByKey[c.key]; !ok {
			beforeByKey[c.key] = c.name
		}
	}
	afterByName := map[string]bool{}
	for _, c := range after {
		afterByName[c.name] = true
	}

	for _, c := range after {
		if c.key == "" {
			continue
		}
		if name, ok := beforeByKey[c.key]; ok && m.byBefore[name] == nil {
			m.link(name, c.name, true)
		}
	}

	for _, c := range after {
		if m.byAfter[c.name] != nil || m.byBefore[c.name] != nil {
			continue
		}
		prev, ok := beforeByName[c.name]
		if ok && (prev.key == "" || c.key == "") {
			m.link(c.name, c.name, false)
		}
	}

	if compatible != nil {
		var olds, news []string
		for _, c := range before {
			if c.key == "" && m.byBefore[c.name] == nil && !afterByName[c.name] {
				olds = append(olds, c.name)
			}
		}
		for _, c := range after {
			if c.key == "" && m.byAfter[c.name] == nil && beforeByName[c.name].name == "" {
				news = append(news, c.name)
			}
		}
		oldCandidates := map[string][]string{}
		newCandidates := map[string][]string{}
		for _, o := range olds {
			for _, n := range news {
				if compatible(o, n) {
					oldCandidates[o] = append(oldCandidates[o], n)
					newCandidates[n] = append(newCandidates[n], o)
				}
			}
		}
		for _, o := range olds {
			if len(oldCandidates[o]) != 1 {
				continue
			}
			n := oldCandidates[o][0]
			if len(newCandidates[n]) == 1 {
				m.link(o, n, false)
			}
		}
	}

	for _, c := range before {
		if m.byBefore[c.name] == nil {
			m.removed = append(m.removed, c.name)
		}
	}
	return m
}

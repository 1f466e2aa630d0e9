package rustsema

import (
	"fmt"

	"github.com/jward/forgen/internal/store"
)

// intern assigns every item its entity number. Keys are collected in a
// fixed order (crates in manifest order, each module tree depth-first in
// declaration order) so a fresh store numbers the same source the same way.
func (m *Model) intern(ds store.DataStore) error {
	var (
		keys  []store.EntityKey
		items []*item
	)
	var collect func(prefix string, list []*item)
	collect = func(prefix string, list []*item) {
		seen := make(map[store.EntityKey]int)
		for _, it := range list {
			k := store.EntityKey{Kind: string(it.kind), Key: prefix + "::" + it.name}
			// Same-named siblings (cfg variants, const _) stay distinct.
			if n := seen[k]; n > 0 {
				seen[k] = n + 1
				k.Key = fmt.Sprintf("%s#%d", k.Key, n)
			} else {
				seen[k] = 1
			}
			it.key = k.Key
			keys = append(keys, k)
			items = append(items, it)
			collect(k.Key, it.children)
		}
	}
	for _, file := range m.order {
		st := m.state[file]
		collect(st.module, st.syntax.items)
	}
	if len(keys) == 0 {
		return nil
	}

	nums, err := ds.InternAll(keys)
	if err != nil {
		return fmt.Errorf("rustsema: intern: %w", err)
	}
	if len(nums) != len(keys) {
		return fmt.Errorf("rustsema: intern: got %d numbers for %d keys", len(nums), len(keys))
	}
	for i, it := range items {
		it.num = nums[i]
		it.hasID = true
	}
	return nil
}

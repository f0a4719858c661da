package script

// Pool 跨分集的资产池：同一项目下所有分集的既有条目
type Pool struct {
	Characters []Item
	Scenes     []Item
	Storyboard []Item
}

// AddDocument 把一份文档的条目并入资产池
func (p *Pool) AddDocument(d *Document) {
	if d == nil {
		return
	}
	p.Characters = append(p.Characters, d.Characters...)
	p.Scenes = append(p.Scenes, d.Scenes...)
	p.Storyboard = append(p.Storyboard, d.Storyboard...)
}

// Merge 将新生成的文档条目并入分集的现有文档
//
// 每个集合按同一套规则处理：
//  1. 先用跨分集资产池匹配（先 id，后归一化名称），命中即逐字替换为池中对象，
//     绝不做字段级合并，既有对象永远获胜；
//  2. 再与当前文档匹配，已有条目全部保留，只追加真正的新条目；
//  3. 最后按 id 或归一化名称去重，先出现者保留。
//
// 条目身份一旦分配就不再变动，只有未命中的新条目会获得新 id，
// 前缀取自技能声明的 prefixes（集合名 → 前缀），缺省回退到内置前缀。
func Merge(pool *Pool, existing, incoming *Document, prefixes map[string]string) *Document {
	if existing == nil {
		existing = NewDocument()
	}
	if incoming == nil {
		return existing
	}
	if pool == nil {
		pool = &Pool{}
	}

	out := &Document{Extra: existing.Extra}
	out.Characters = mergeCollection(pool.Characters, existing.Characters, incoming.Characters, CharacterNameKey, prefixFor(prefixes, "characters", "char"))
	out.Scenes = mergeCollection(pool.Scenes, existing.Scenes, incoming.Scenes, SceneNameKey, prefixFor(prefixes, "scenes", "scene"))
	out.Storyboard = mergeCollection(pool.Storyboard, existing.Storyboard, incoming.Storyboard, ShotNameKey, prefixFor(prefixes, "storyboard", "shot"))
	return out
}

func prefixFor(prefixes map[string]string, collection, fallback string) string {
	if p := prefixes[collection]; p != "" {
		return p
	}
	return fallback
}

func mergeCollection(pool, existing, incoming []Item, nameKey, idPrefix string) []Item {
	// 新条目先对资产池替换
	substituted := make([]Item, 0, len(incoming))
	for _, it := range incoming {
		if match := findMatch(pool, it, nameKey); match != nil {
			substituted = append(substituted, match)
		} else {
			substituted = append(substituted, it)
		}
	}

	// 保留现有条目，追加真正的新条目
	merged := make([]Item, 0, len(existing)+len(substituted))
	merged = append(merged, existing...)
	for i, it := range substituted {
		if findMatch(existing, it, nameKey) != nil {
			continue
		}
		if it.ID() == "" {
			it["id"] = MintID(idPrefix, i)
		}
		merged = append(merged, it)
	}

	return dedupe(merged, nameKey)
}

// findMatch 在候选列表中查找条目：先按 id 精确匹配，再按归一化名称匹配
func findMatch(candidates []Item, it Item, nameKey string) Item {
	if id := it.ID(); id != "" {
		for _, c := range candidates {
			if c.ID() == id {
				return c
			}
		}
	}
	if name := NormalizeName(it.Field(nameKey)); name != "" {
		for _, c := range candidates {
			if NormalizeName(c.Field(nameKey)) == name {
				return c
			}
		}
	}
	return nil
}

// dedupe 按 id 或归一化名称去重，先出现者保留
func dedupe(items []Item, nameKey string) []Item {
	seenID := make(map[string]bool, len(items))
	seenName := make(map[string]bool, len(items))
	out := make([]Item, 0, len(items))
	for _, it := range items {
		id := it.ID()
		name := NormalizeName(it.Field(nameKey))
		if id != "" && seenID[id] {
			continue
		}
		if name != "" && seenName[name] {
			continue
		}
		if id != "" {
			seenID[id] = true
		}
		if name != "" {
			seenName[name] = true
		}
		out = append(out, it)
	}
	return out
}

// Package script 负责剧本文档的合并与编辑
//
// 一个分集拥有一份剧本文档（人物 / 场景 / 分镜）。多次生成运行和手工编辑
// 都会汇入同一份文档，合并逻辑保证身份稳定且不覆盖已有条目。
package script

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Item 文档中的一个条目
// 条目来自模型输出，字段集合是开放的，保留原样以便逐字回写。
type Item map[string]any

// ID 返回条目标识，缺失时为空串
func (it Item) ID() string {
	if v, ok := it["id"].(string); ok {
		return v
	}
	return ""
}

// Field 返回条目的字符串字段
func (it Item) Field(key string) string {
	if v, ok := it[key].(string); ok {
		return v
	}
	return ""
}

// Document 剧本文档的结构化树
// characters / scenes / storyboard 之外的键在序列化往返中原样保留。
type Document struct {
	Characters []Item
	Scenes     []Item
	Storyboard []Item
	Extra      map[string]any
}

// 各集合的名称键：人物按 name，场景按 location_name，分镜按 action 松匹配
const (
	CharacterNameKey = "name"
	SceneNameKey     = "location_name"
	ShotNameKey      = "action"
)

// NewDocument 创建空文档
func NewDocument() *Document {
	return &Document{
		Characters: []Item{},
		Scenes:     []Item{},
		Storyboard: []Item{},
	}
}

// MarshalJSON 序列化文档，合并保留的额外键
func (d *Document) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(d.Extra)+3)
	for k, v := range d.Extra {
		out[k] = v
	}
	out["characters"] = emptyIfNil(d.Characters)
	out["scenes"] = emptyIfNil(d.Scenes)
	out["storyboard"] = emptyIfNil(d.Storyboard)
	return json.Marshal(out)
}

// UnmarshalJSON 反序列化文档，未知键进入 Extra
func (d *Document) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	d.Characters = itemList(raw["characters"])
	d.Scenes = itemList(raw["scenes"])
	d.Storyboard = itemList(raw["storyboard"])
	delete(raw, "characters")
	delete(raw, "scenes")
	delete(raw, "storyboard")
	if len(raw) > 0 {
		d.Extra = raw
	} else {
		d.Extra = nil
	}
	return nil
}

// ToMap 将文档展开为通用树，供路径寻址的更新命令使用
func (d *Document) ToMap() map[string]any {
	out := make(map[string]any, len(d.Extra)+3)
	for k, v := range d.Extra {
		out[k] = v
	}
	out["characters"] = anyList(d.Characters)
	out["scenes"] = anyList(d.Scenes)
	out["storyboard"] = anyList(d.Storyboard)
	return out
}

// FromMap 从通用树重建文档
func FromMap(m map[string]any) *Document {
	d := NewDocument()
	d.Characters = itemList(m["characters"])
	d.Scenes = itemList(m["scenes"])
	d.Storyboard = itemList(m["storyboard"])
	extra := make(map[string]any)
	for k, v := range m {
		if k == "characters" || k == "scenes" || k == "storyboard" {
			continue
		}
		extra[k] = v
	}
	if len(extra) > 0 {
		d.Extra = extra
	}
	return d
}

// FindItem 在全部集合中按 id 查找条目
// 返回条目所在集合名、下标；未找到时下标为 -1。
func (d *Document) FindItem(id string) (string, int) {
	for i, it := range d.Characters {
		if it.ID() == id {
			return "characters", i
		}
	}
	for i, it := range d.Scenes {
		if it.ID() == id {
			return "scenes", i
		}
	}
	for i, it := range d.Storyboard {
		if it.ID() == id {
			return "storyboard", i
		}
	}
	return "", -1
}

// Collection 按集合名取条目列表
func (d *Document) Collection(name string) []Item {
	switch name {
	case "characters":
		return d.Characters
	case "scenes":
		return d.Scenes
	case "storyboard":
		return d.Storyboard
	}
	return nil
}

// SetCollection 按集合名整体替换条目列表
func (d *Document) SetCollection(name string, items []Item) {
	switch name {
	case "characters":
		d.Characters = items
	case "scenes":
		d.Scenes = items
	case "storyboard":
		d.Storyboard = items
	}
}

// MintID 生成稳定条目标识：<prefix>_<epoch 秒>_<序号>_<4 位随机>
func MintID(prefix string, index int) string {
	buf := make([]byte, 2)
	_, _ = rand.Read(buf)
	return fmt.Sprintf("%s_%d_%d_%s", prefix, time.Now().Unix(), index, hex.EncodeToString(buf))
}

// NormalizeName 名称归一化：去除所有空白并小写，用于跨来源的宽松匹配
func NormalizeName(name string) string {
	var b strings.Builder
	for _, r := range name {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '　' {
			continue
		}
		b.WriteRune(r)
	}
	return strings.ToLower(b.String())
}

func emptyIfNil(items []Item) []Item {
	if items == nil {
		return []Item{}
	}
	return items
}

func itemList(v any) []Item {
	switch list := v.(type) {
	case []any:
		out := make([]Item, 0, len(list))
		for _, el := range list {
			if m, ok := el.(map[string]any); ok {
				out = append(out, Item(m))
			}
		}
		return out
	case []Item:
		return list
	}
	return []Item{}
}

func anyList(items []Item) []any {
	out := make([]any, len(items))
	for i, it := range items {
		out[i] = map[string]any(it)
	}
	return out
}

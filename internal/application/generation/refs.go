package generation

import (
	"fmt"
	"regexp"
	"strings"

	"short-director-api/internal/application/script"
	apperrors "short-director-api/pkg/errors"
)

var refTagRe = regexp.MustCompile(`\{\{(char|scene)_([A-Za-z0-9_]+)\}\}`)

// ResolvedRefs 引用标签解析结果
type ResolvedRefs struct {
	// Prompt 标签被替换为条目名称后的提示词
	Prompt string
	// ImageURLs 被引用条目的参考图，按出现顺序去重
	ImageURLs []string
}

// ResolveReferences 解析提示词中的 {{char_N}} / {{scene_N}} 引用标签
// 标签只在当前剧本文档中查找，找不到的条目保留原文。
// 非文本模态要求被引用条目已有参考图，缺图在发起任何网络请求前报错。
func ResolveReferences(doc *script.Document, prompt string, requireImage bool) (*ResolvedRefs, error) {
	out := &ResolvedRefs{Prompt: prompt}
	if doc == nil {
		return out, nil
	}

	seen := make(map[string]struct{})
	var resolveErr error

	out.Prompt = refTagRe.ReplaceAllStringFunc(prompt, func(tag string) string {
		if resolveErr != nil {
			return tag
		}
		m := refTagRe.FindStringSubmatch(tag)
		kind, rawID := m[1], m[2]

		item := lookupRef(doc, kind, rawID)
		if item == nil {
			// 未解析的标签保留原文
			return tag
		}

		if requireImage {
			imageURL := item.Field("image_url")
			if imageURL == "" {
				resolveErr = apperrors.ErrReferenceNotReady.WithDetail(
					fmt.Sprintf("%s has no generated image yet", tag))
				return tag
			}
			if _, ok := seen[imageURL]; !ok {
				seen[imageURL] = struct{}{}
				out.ImageURLs = append(out.ImageURLs, imageURL)
			}
		}

		if name := refName(item); name != "" {
			return name
		}
		return tag
	})

	if resolveErr != nil {
		return nil, resolveErr
	}
	return out, nil
}

// lookupRef 在对应集合中按 id 查找条目，同时尝试带前缀与裸 id 两种形式
func lookupRef(doc *script.Document, kind, rawID string) script.Item {
	collection := "characters"
	if kind == "scene" {
		collection = "scenes"
	}

	full := kind + "_" + rawID
	for _, it := range doc.Collection(collection) {
		id := it.ID()
		if id == full || id == rawID {
			return it
		}
	}
	return nil
}

func refName(item script.Item) string {
	for _, key := range []string{"name", "location_name"} {
		if v := strings.TrimSpace(item.Field(key)); v != "" {
			return v
		}
	}
	return ""
}

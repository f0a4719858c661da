package script

import (
	"strings"

	apperrors "short-director-api/pkg/errors"
)

// Command 针对剧本文档树的路径寻址更新命令
// 路径是点号分隔的键序列，中间段不是对象时命令失败。
type Command interface {
	Apply(doc map[string]any) error
}

// Replace 将路径处的值整体替换（不存在时创建）
type Replace struct {
	Path  string
	Value any
}

// Apply 实现 Command
func (c Replace) Apply(doc map[string]any) error {
	parent, key, err := walk(doc, c.Path, true)
	if err != nil {
		return err
	}
	parent[key] = c.Value
	return nil
}

// AppendToList 将条目追加到路径处的列表（不存在时创建列表）
type AppendToList struct {
	Path  string
	Items []any
}

// Apply 实现 Command
func (c AppendToList) Apply(doc map[string]any) error {
	parent, key, err := walk(doc, c.Path, true)
	if err != nil {
		return err
	}
	current, ok := parent[key]
	if !ok || current == nil {
		parent[key] = append([]any{}, c.Items...)
		return nil
	}
	list, ok := current.([]any)
	if !ok {
		return apperrors.ErrInvalidParam.WithDetail(
			"path " + c.Path + " does not address a list")
	}
	parent[key] = append(list, c.Items...)
	return nil
}

// ApplyCommands 依序执行一组命令，任一失败即停止
func ApplyCommands(doc map[string]any, cmds ...Command) error {
	for _, cmd := range cmds {
		if err := cmd.Apply(doc); err != nil {
			return err
		}
	}
	return nil
}

// walk 沿点号路径下行到倒数第二段，返回父对象和末段键
// create 为真时缺失的中间对象会被创建；中间段不是对象时返回明确错误。
func walk(doc map[string]any, path string, create bool) (map[string]any, string, error) {
	segments := strings.Split(path, ".")
	if path == "" || len(segments) == 0 {
		return nil, "", apperrors.ErrInvalidParam.WithDetail("empty update path")
	}

	current := doc
	for i := 0; i < len(segments)-1; i++ {
		seg := segments[i]
		next, ok := current[seg]
		if !ok || next == nil {
			if !create {
				return nil, "", apperrors.ErrInvalidParam.WithDetail(
					"path segment " + seg + " not found in " + path)
			}
			child := make(map[string]any)
			current[seg] = child
			current = child
			continue
		}
		child, ok := next.(map[string]any)
		if !ok {
			return nil, "", apperrors.ErrInvalidParam.WithDetail(
				"path segment " + seg + " in " + path + " is not an object")
		}
		current = child
	}
	return current, segments[len(segments)-1], nil
}

// UpdateItem 更新文档中指定 id 的条目字段，条目不存在时返回 404 级错误
func UpdateItem(doc *Document, itemID string, fields map[string]any) error {
	collection, idx := doc.FindItem(itemID)
	if idx < 0 {
		return apperrors.ErrScriptItemNotFound.WithDetail(itemID)
	}
	items := doc.Collection(collection)
	for k, v := range fields {
		if k == "id" {
			// 身份一旦分配就不可变
			continue
		}
		items[idx][k] = v
	}
	return nil
}

// DeleteItem 删除文档中指定 id 的条目，条目不存在时返回 404 级错误
func DeleteItem(doc *Document, itemID string) error {
	collection, idx := doc.FindItem(itemID)
	if idx < 0 {
		return apperrors.ErrScriptItemNotFound.WithDetail(itemID)
	}
	items := doc.Collection(collection)
	doc.SetCollection(collection, append(items[:idx:idx], items[idx+1:]...))
	return nil
}

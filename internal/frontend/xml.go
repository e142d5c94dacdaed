package frontend

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"strings"

	"github.com/aretw0/launchtree/internal/dto"
)

// itemTags lists, per parent tag, the child elements that are items of the parent
// rather than entities of their own.
var itemTags = map[string][]string{
	"include":              {"arg"},
	"arg":                  {"choice"},
	"group":                {"keep"},
	"node":                 {"param", "remap"},
	"node_container":       {"param", "remap", "composable_node"},
	"param":                {"param"},
	"composable_node":      {"param", "remap"},
	"load_composable_node": {"composable_node"},
}

type xmlElement struct {
	tag    string
	fields map[string]any
}

// xmlToMap decodes an XML launch file into the generic launch map.
func xmlToMap(path string, data []byte) (map[string]any, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	var stack []*xmlElement
	var root *xmlElement
	lines := lineCounter{data: data, line: 1}

	for {
		offset := dec.InputOffset()
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var syntax *xml.SyntaxError
			if errors.As(err, &syntax) {
				return nil, &ParseError{Path: path, Line: syntax.Line, Msg: syntax.Msg}
			}
			return nil, &ParseError{Path: path, Msg: "invalid XML", Err: err}
		}

		switch t := tok.(type) {
		case xml.StartElement:
			el := &xmlElement{
				tag:    normalizeKey(t.Name.Local),
				fields: map[string]any{dto.LineKey: lines.at(offset)},
			}
			for _, attr := range t.Attr {
				el.fields[normalizeKey(attr.Name.Local)] = attr.Value
			}
			stack = append(stack, el)
		case xml.EndElement:
			el := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				root = el
				continue
			}
			attach(stack[len(stack)-1], el)
		}
	}

	if root == nil {
		return nil, &ParseError{Path: path, Msg: "empty document"}
	}
	if root.tag != "launch" {
		return nil, &ParseError{Path: path, Line: lineOf(root.fields), Msg: "root element must be <launch>, got <" + root.tag + ">"}
	}
	return root.fields, nil
}

func attach(parent, child *xmlElement) {
	for _, item := range itemTags[parent.tag] {
		if item == child.tag {
			list, _ := parent.fields[child.tag].([]any)
			parent.fields[child.tag] = append(list, child.fields)
			return
		}
	}
	list, _ := parent.fields[dto.ChildrenKey].([]any)
	parent.fields[dto.ChildrenKey] = append(list, map[string]any{child.tag: child.fields})
}

// lineCounter maps increasing byte offsets to line numbers, counting each
// newline once.
type lineCounter struct {
	data []byte
	pos  int
	line int
}

func (l *lineCounter) at(offset int64) int {
	end := int(min(offset, int64(len(l.data))))
	if end > l.pos {
		l.line += bytes.Count(l.data[l.pos:end], []byte("\n"))
		l.pos = end
	}
	return l.line
}

func lineOf(fields map[string]any) int {
	line, _ := fields[dto.LineKey].(int)
	return line
}

// normalizeKey maps hyphenated names to their underscore form (node-container, value-sep).
func normalizeKey(k string) string {
	return strings.ReplaceAll(k, "-", "_")
}

package graph

import (
	"fmt"
	"path/filepath"

	"github.com/aretw0/launchtree/pkg/domain"
	"github.com/aretw0/launchtree/pkg/serializer"
)

// Label returns a short human-readable description of a serialized node.
func Label(n serializer.Node) string {
	switch n.Type {
	case "IncludeLaunchDescription":
		path := str(n, "path")
		if pkg := str(n, "package"); pkg != "" {
			return fmt.Sprintf("include %s/%s", pkg, filepath.Base(path))
		}
		return "include " + path
	case "GroupAction":
		if scoped, ok := n.Field("scoped"); ok && scoped == false {
			return "group (unscoped)"
		}
		return "group"
	case "Node", "ComposableNodeContainer":
		return nodeLabel(str(n, "namespace"), str(n, "name"), str(n, "package"), str(n, "executable"))
	case "LoadComposableNodes":
		count := 0
		nodes, _ := n.Field("loaded_nodes")
		switch list := nodes.(type) {
		case []domain.Attributes:
			count = len(list)
		case []any:
			count = len(list)
		}
		return fmt.Sprintf("load %d into %s", count, str(n, "target_container"))
	default:
		return n.Type
	}
}

func nodeLabel(ns, name, pkg, exec string) string {
	id := pkg + "/" + exec
	if name == "" {
		return id
	}
	if ns == "" || ns == "/" {
		ns = ""
	}
	return fmt.Sprintf("%s/%s (%s)", ns, name, id)
}

func str(n serializer.Node, key string) string {
	v, ok := n.Field(key)
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

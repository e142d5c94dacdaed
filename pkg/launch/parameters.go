package launch

import (
	"github.com/aretw0/launchtree/pkg/domain"
	"github.com/aretw0/launchtree/pkg/schema"
	"github.com/aretw0/launchtree/pkg/scope"
)

// ParamFilesKey is the attribute under which parameter files are listed.
const ParamFilesKey = "__param_files"

// resolveParameters flattens nested declarations with "." and groups duplicate
// keys into lists, in order of first appearance. Parameter files are listed last.
func (e *Engine) resolveParameters(c *scope.Context, params []Parameter) (domain.Attributes, error) {
	var pairs []domain.Attr
	var files []any
	if err := e.collectParameters(c, "", params, &pairs, &files); err != nil {
		return nil, err
	}
	out := groupByKey(pairs)
	if len(files) > 0 {
		out = append(out, domain.Attr{Key: ParamFilesKey, Value: files})
	}
	return out, nil
}

func (e *Engine) collectParameters(c *scope.Context, prefix string, params []Parameter, pairs *[]domain.Attr, files *[]any) error {
	for _, p := range params {
		if !p.From.IsZero() {
			path, err := e.ResolveSubstitution(c, p.From)
			if err != nil {
				return err
			}
			*files = append(*files, e.resolveSymlink(path))
			continue
		}
		name := prefix + p.Name
		if len(p.Children) > 0 {
			if err := e.collectParameters(c, name+".", p.Children, pairs, files); err != nil {
				return err
			}
			continue
		}
		raw, err := e.resolveOptional(c, p.Value)
		if err != nil {
			return err
		}
		v, err := schema.Coerce(name, p.Type, p.Sep, raw)
		if err != nil {
			return err
		}
		*pairs = append(*pairs, domain.Attr{Key: name, Value: v})
	}
	return nil
}

func groupByKey(pairs []domain.Attr) domain.Attributes {
	var out domain.Attributes
	index := map[string]int{}
	counts := map[string]int{}
	for _, p := range pairs {
		counts[p.Key]++
	}
	for _, p := range pairs {
		if counts[p.Key] == 1 {
			out = append(out, p)
			continue
		}
		i, seen := index[p.Key]
		if !seen {
			index[p.Key] = len(out)
			out = append(out, domain.Attr{Key: p.Key, Value: []any{p.Value}})
			continue
		}
		out[i].Value = append(out[i].Value.([]any), p.Value)
	}
	return out
}

// nodeParameters merges the global parameter overlay with a node's own parameters.
// The node's values replace global ones with the same name.
func (e *Engine) nodeParameters(c *scope.Context, params []Parameter) (domain.Attributes, error) {
	own, err := e.resolveParameters(c, params)
	if err != nil {
		return nil, err
	}
	out := c.Parameters()
	for _, attr := range own {
		out = out.Set(attr.Key, attr.Value)
	}
	if out == nil {
		out = domain.Attributes{}
	}
	return out, nil
}

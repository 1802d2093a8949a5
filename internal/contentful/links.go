package contentful

// resolveLinks replaces Entry and Asset links inside the fields of every
// object in the page with the linked objects themselves. Targets are shared
// by reference, which is what makes cyclic graphs possible.
func resolveLinks(c *Collection) {
	index := make(map[string]Object)
	add := func(objects []Object) {
		for _, o := range objects {
			if id := o.ID(); id != "" {
				index[o.Type()+":"+id] = o
			}
		}
	}
	add(c.Items)
	add(c.Includes.Entry)
	add(c.Includes.Asset)

	visit := func(objects []Object) {
		for _, o := range objects {
			if fields, ok := o["fields"].(map[string]any); ok {
				for key, value := range fields {
					fields[key] = resolveValue(value, index)
				}
			}
		}
	}
	visit(c.Items)
	visit(c.Includes.Entry)
	visit(c.Includes.Asset)
}

func resolveValue(value any, index map[string]Object) any {
	switch v := value.(type) {
	case map[string]any:
		if target, ok := linkTarget(v, index); ok {
			return map[string]any(target)
		}
		if isLink(v) {
			return v
		}
		for key, item := range v {
			v[key] = resolveValue(item, index)
		}
		return v
	case []any:
		for i, item := range v {
			v[i] = resolveValue(item, index)
		}
		return v
	}
	return value
}

func isLink(m map[string]any) bool {
	sys := asMap(m["sys"])
	return sys != nil && sys["type"] == "Link"
}

func linkTarget(m map[string]any, index map[string]Object) (Object, bool) {
	if !isLink(m) {
		return nil, false
	}
	sys := asMap(m["sys"])
	linkType, _ := sys["linkType"].(string)
	id, _ := sys["id"].(string)
	if linkType == "" || id == "" {
		return nil, false
	}
	target, ok := index[linkType+":"+id]
	return target, ok
}

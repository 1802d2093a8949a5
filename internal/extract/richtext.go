package extract

var blockNodes = map[string]bool{
	"document":                true,
	"paragraph":               true,
	"heading-1":               true,
	"heading-2":               true,
	"heading-3":               true,
	"heading-4":               true,
	"heading-5":               true,
	"heading-6":               true,
	"ordered-list":            true,
	"unordered-list":          true,
	"list-item":               true,
	"hr":                      true,
	"blockquote":              true,
	"embedded-entry-block":    true,
	"embedded-asset-block":    true,
	"embedded-resource-block": true,
	"table":                   true,
	"table-row":               true,
	"table-cell":              true,
	"table-header-cell":       true,
}

var inlineNodes = map[string]bool{
	"hyperlink":                true,
	"entry-hyperlink":          true,
	"asset-hyperlink":          true,
	"resource-hyperlink":       true,
	"embedded-entry-inline":    true,
	"embedded-resource-inline": true,
}

// BlockDivisor separates the text of adjacent block nodes
const BlockDivisor = " "

// PlainText flattens a rich text document into its text content. The
// divisor is written after a node only when the node that follows it is a
// block; empty blocks and inlines contribute nothing.
func PlainText(node map[string]any) string {
	return plainText(node, BlockDivisor)
}

func plainText(node map[string]any, divisor string) string {
	children, ok := node["content"].([]any)
	if !ok {
		return ""
	}

	var out []byte
	for i, child := range children {
		n, ok := child.(map[string]any)
		if !ok {
			continue
		}

		nodeType, _ := n["nodeType"].(string)
		var text string
		switch {
		case nodeType == "text":
			text, _ = n["value"].(string)
		case blockNodes[nodeType] || inlineNodes[nodeType]:
			text = plainText(n, divisor)
			if text == "" {
				continue
			}
		default:
			continue
		}

		out = append(out, text...)
		if i+1 < len(children) && isBlock(children[i+1]) {
			out = append(out, divisor...)
		}
	}
	return string(out)
}

func isBlock(v any) bool {
	n, ok := v.(map[string]any)
	if !ok {
		return false
	}
	nodeType, _ := n["nodeType"].(string)
	return blockNodes[nodeType]
}

// isRichTextNode tells a rich text document apart from a locale mapping
func isRichTextNode(v map[string]any) bool {
	_, ok := v["nodeType"].(string)
	return ok
}

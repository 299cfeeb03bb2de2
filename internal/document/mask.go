package document

// MaskValue replaces every secret in a masked document.
const MaskValue = "••••••"

// secretKeys are masked wherever they appear.
var secretKeys = map[string]bool{
	"token":    true,
	"apiKey":   true,
	"botToken": true,
}

// varSecretKeys are masked only directly under a "vars" object.
var varSecretKeys = map[string]bool{
	"AUTH_TOKEN": true,
	"CT0":        true,
}

// Mask returns a deep copy of d with non-empty secret strings replaced by
// MaskValue. Key order is kept.
func Mask(d *Document) *Document {
	order := make(map[string][]string, len(d.order))
	for k, v := range d.order {
		order[k] = v
	}
	root, _ := maskValue(d.root, "").(map[string]any)
	return &Document{root: root, order: order}
}

func maskValue(v any, parent string) any {
	switch node := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(node))
		for k, child := range node {
			if s, ok := child.(string); ok && s != "" && isSecret(parent, k) {
				out[k] = MaskValue
				continue
			}
			out[k] = maskValue(child, k)
		}
		return out
	case []any:
		out := make([]any, len(node))
		for i, child := range node {
			out[i] = maskValue(child, parent)
		}
		return out
	default:
		return v
	}
}

func isSecret(parent, key string) bool {
	return secretKeys[key] || (parent == "vars" && varSecretKeys[key])
}

package content

import "strings"

// previewRuneBudget bounds derived article teasers.
const previewRuneBudget = 400

// Preview returns the teaser body for partial access. A precomputed
// preview_body wins; otherwise a prefix of the body is derived. The result
// is always strictly shorter than the full body so a preview response can
// never carry the whole item.
func (d Descriptor) Preview() string {
	if d.Body == "" {
		return ""
	}
	if p := strings.TrimSpace(d.PreviewBody); p != "" && len(p) < len(d.Body) {
		return p
	}
	runes := []rune(d.Body)
	limit := previewRuneBudget
	if limit >= len(runes) {
		limit = len(runes) / 2
	}
	return string(runes[:limit])
}

package color

import (
	"strings"

	"github.com/lumipallolabs/nanovis/internal/model"
)

// CSSBackground returns a CSS background value for c. Stripe pairs become
// an inline SVG with the same 25%/67% layering as the canvas texture.
func CSSBackground(c model.Color) string {
	if !c.IsPattern() {
		return c.Primary
	}
	var b strings.Builder
	b.WriteString(`url('data:image/svg+xml,`)
	b.WriteString(`<svg width="26" height="26" xmlns="http://www.w3.org/2000/svg">`)
	b.WriteString(`<rect width="26" height="26" fill="` + c.Primary + `"/>`)
	b.WriteString(`<rect width="26" height="26" fill="` + c.Secondary + `" fill-opacity="25%"/>`)
	b.WriteString(`<path d="M22.5 -3.5L-3.5 22.5M35.5 9.5L9.5 35.5" stroke="` + c.Secondary + `" stroke-opacity="67%" stroke-width="9.19239"/>`)
	b.WriteString(`</svg>')`)
	return b.String()
}

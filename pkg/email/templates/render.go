package templates

import (
	"context"
	"fmt"
	"strings"

	"github.com/a-h/templ"
)

// Render renders c into an HTML email body.
func Render(ctx context.Context, c templ.Component) (string, error) {
	var body strings.Builder
	body.Grow(2048)
	if err := c.Render(ctx, &body); err != nil {
		return "", fmt.Errorf("render email body: %w", err)
	}
	return body.String(), nil
}

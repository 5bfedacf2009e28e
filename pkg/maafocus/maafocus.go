// Package maafocus shows messages in the client GUI through the focus field
// of a pipeline node.
package maafocus

import (
	"fmt"
	"strings"

	maa "github.com/MaaXYZ/maa-framework-go/v4"
)

// focusNode is a no-op pipeline node that only exists to carry focus text.
const focusNode = "LogMXU"

// NodeActionStarting shows content when focusNode starts its action.
func NodeActionStarting(ctx *maa.Context, content string) {
	override := map[string]any{
		focusNode: map[string]any{
			"focus": map[string]any{
				"Node.Action.Starting": strings.TrimLeft(content, " \t\r\n"),
			},
		},
	}
	ctx.RunTask(focusNode, override)
}

// Colored shows text as a single coloured span.
func Colored(ctx *maa.Context, text, color string) {
	NodeActionStarting(ctx, fmt.Sprintf(`<span style="color: %s; font-weight: 500;">%s</span>`, color, text))
}

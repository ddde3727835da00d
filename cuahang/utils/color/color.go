// cuahang/utils/color/color.go
package color

import (
	"github.com/fatih/color"
)

var (
	labelColor   = color.New(color.FgCyan, color.Bold)
	infoColor    = color.New(color.FgGreen)
	warningColor = color.New(color.FgYellow, color.Bold)
	errorColor   = color.New(color.FgRed, color.Bold)
	successColor = color.New(color.FgGreen, color.Bold)
)

func ColorLabel(s string) string {
	return labelColor.Sprint(s)
}

func ColorInfo(s string) string {
	return infoColor.Sprint(s)
}

func ColorWarning(s string) string {
	return warningColor.Sprint(s)
}

func ColorError(s string) string {
	return errorColor.Sprint(s)
}

func ColorSuccess(s string) string {
	return successColor.Sprint(s)
}

// Disable turns coloring off, e.g. when output is piped to a file.
func Disable() {
	color.NoColor = true
}

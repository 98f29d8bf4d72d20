package update

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/Masterminds/semver/v3"

	"github.com/markmybytes/driver-box-updater/internal/messages"
)

const summaryValueWidth = 13

// Summary renders the confirmation table shown before an update starts.
func Summary(intent Intent) string {
	webview := messages.UpdateSummaryNo
	if intent.WebView {
		webview = messages.UpdateSummaryYes
	}
	var b strings.Builder
	b.WriteString(messages.UpdateSummaryBorder + "\n")
	writeSummaryRow(&b, messages.UpdateSummaryFrom, versionString(intent.From))
	writeSummaryRow(&b, messages.UpdateSummaryTo, versionString(intent.To))
	writeSummaryRow(&b, messages.UpdateSummaryBinary, intent.BinaryType)
	writeSummaryRow(&b, messages.UpdateSummaryWebView, webview)
	b.WriteString(messages.UpdateSummaryBorder + "\n")
	return b.String()
}

func writeSummaryRow(b *strings.Builder, label string, value string) {
	fmt.Fprintf(b, messages.UpdateSummaryRowFmt, label, center(value, summaryValueWidth))
}

// center pads value on both sides to width, leaving the extra space on the right.
func center(value string, width int) string {
	n := utf8.RuneCountInString(value)
	if n >= width {
		return value
	}
	left := (width - n) / 2
	return strings.Repeat(" ", left) + value + strings.Repeat(" ", width-n-left)
}

func versionString(v *semver.Version) string {
	if v == nil {
		return ""
	}
	return v.String()
}

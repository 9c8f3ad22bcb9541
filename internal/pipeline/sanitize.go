package pipeline

import "regexp"

// Script elements, case-insensitive, spanning lines, shortest match.
var scriptElement = regexp.MustCompile(`(?is)<script\b[^>]*>.*?</script>`)

// StripScripts removes <script>…</script> regions from markup.
//
// This is a textual best-effort pass: unterminated or obfuscated scripts can
// survive it. The live DOM strip after navigation and the network whitelist
// are what actually keep scripts from running.
func StripScripts(htmlContent string) string {
	return scriptElement.ReplaceAllString(htmlContent, "")
}

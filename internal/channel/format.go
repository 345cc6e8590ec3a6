package channel

import (
	"fmt"
	"regexp"
	"strings"
)

// The transforms below are order-sensitive: code is extracted first so no
// later rule can touch it, bold is placeholder-protected before the italic
// pass, and everything is restored at the end.
var (
	codeBlockRe  = regexp.MustCompile("(?s)```.*?```")
	inlineCodeRe = regexp.MustCompile("`[^`]+`")
	headingRe    = regexp.MustCompile(`(?m)^#{1,6}\s+(.+)$`)
	boldItalicRe = regexp.MustCompile(`\*\*\*([^*]+)\*\*\*`)
	boldRe       = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	italicRe     = regexp.MustCompile(`\*([^*]+)\*`)
	linkRe       = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`)
)

// FormatForSlack converts Markdown produced by the model into Slack mrkdwn.
// Text inside fenced or inline code is never mutated.
func FormatForSlack(text string) string {
	formatted := text

	// Protect code blocks, then inline code.
	var codeBlocks []string
	formatted = codeBlockRe.ReplaceAllStringFunc(formatted, func(match string) string {
		codeBlocks = append(codeBlocks, match)
		return fmt.Sprintf("___CODE_BLOCK_%d___", len(codeBlocks)-1)
	})

	var inlineCode []string
	formatted = inlineCodeRe.ReplaceAllStringFunc(formatted, func(match string) string {
		inlineCode = append(inlineCode, match)
		return fmt.Sprintf("___INLINE_CODE_%d___", len(inlineCode)-1)
	})

	// Headings become bold lines, protected so the italic pass cannot see
	// their single asterisks.
	var boldText []string
	formatted = headingRe.ReplaceAllStringFunc(formatted, func(match string) string {
		content := headingRe.FindStringSubmatch(match)[1]
		boldText = append(boldText, "*"+content+"*")
		return fmt.Sprintf("___BOLD_%d___", len(boldText)-1)
	})

	// ***bold italic*** must go before the bold and italic rules.
	formatted = boldItalicRe.ReplaceAllString(formatted, "*_${1}_*")

	// **bold** -> *bold*, protected like headings.
	formatted = boldRe.ReplaceAllStringFunc(formatted, func(match string) string {
		content := boldRe.FindStringSubmatch(match)[1]
		boldText = append(boldText, "*"+content+"*")
		return fmt.Sprintf("___BOLD_%d___", len(boldText)-1)
	})

	// Remaining single asterisks are italic.
	formatted = italicRe.ReplaceAllString(formatted, "_${1}_")

	for i, bold := range boldText {
		formatted = strings.Replace(formatted, fmt.Sprintf("___BOLD_%d___", i), bold, 1)
	}

	// [text](url) -> <url|text>
	formatted = linkRe.ReplaceAllString(formatted, "<$2|$1>")

	for i, code := range codeBlocks {
		formatted = strings.Replace(formatted, fmt.Sprintf("___CODE_BLOCK_%d___", i), code, 1)
	}
	for i, code := range inlineCode {
		formatted = strings.Replace(formatted, fmt.Sprintf("___INLINE_CODE_%d___", i), code, 1)
	}

	return formatted
}

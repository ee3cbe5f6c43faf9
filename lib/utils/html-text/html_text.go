package htmltext

import (
	"strings"

	"golang.org/x/net/html"
)

// PlainText текст без разметки, пробелы схлопнуты
func PlainText(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return strings.Join(strings.Fields(s), " ")
	}
	tokenizer := html.NewTokenizer(strings.NewReader(s))
	sb := strings.Builder{}
	for {
		tt := tokenizer.Next()
		switch tt {
		case html.ErrorToken:
			return strings.Join(strings.Fields(sb.String()), " ")
		case html.TextToken:
			sb.Write(tokenizer.Text())
			sb.WriteString(" ")
		case html.StartTagToken, html.SelfClosingTagToken, html.EndTagToken:
			sb.WriteString(" ")
		}
	}
}

// IsBlank true, если после удаления разметки не осталось текста
func IsBlank(s string) bool {
	return PlainText(s) == ""
}

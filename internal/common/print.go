package common

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const DefaultWidth = 80

func PrintHeader(title string, width int) {
	fmt.Println(strings.Repeat("═", width))
	fmt.Println(center(title, width))
	fmt.Println(strings.Repeat("═", width))
}

func PrintFooter(summary string, width int) {
	fmt.Println()
	fmt.Println(strings.Repeat("═", width))
	fmt.Println(center(summary, width))
	fmt.Println(strings.Repeat("═", width))
}

func PrintBoxSeparator(width int) {
	fmt.Println("├" + strings.Repeat("─", width-1))
}

// BoxPrefix returns the tree glyph for a row inside a box
func BoxPrefix(isLast bool) string {
	if isLast {
		return "└─"
	}
	return "├─"
}

func center(text string, width int) string {
	padding := (width - utf8.RuneCountInString(text)) / 2
	if padding <= 0 {
		return text
	}
	return strings.Repeat(" ", padding) + text
}

func PrintSeparator(char string, width int) {
	fmt.Println(strings.Repeat(char, width))
}

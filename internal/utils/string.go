package utils

import (
	"strings"
)

// TruncateString は文字列を指定された長さで切り詰め、必要に応じて省略記号を追加する
func TruncateString(s string, maxLength int) string {
	if len(s) <= maxLength {
		return s
	}

	if maxLength <= 3 {
		return strings.Repeat(".", maxLength)
	}

	return s[:maxLength-3] + "..."
}

// PadLeft は文字列を右寄せで指定幅にパディングする（幅はルーン数で数える）
func PadLeft(s string, width int) string {
	n := len([]rune(s))
	if n >= width {
		return s
	}
	return strings.Repeat(" ", width-n) + s
}

// CreateSeparatorLine は指定された文字で区切り線を作成する
func CreateSeparatorLine(char string, length int) string {
	return strings.Repeat(char, length)
}

// SanitizeFileName はファイル名として使用できない文字を置換する
func SanitizeFileName(filename string) string {
	replacer := strings.NewReplacer(
		"/", "_",
		"\\", "_",
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
	)

	// 先頭・末尾の空白とピリオドを除去
	return strings.Trim(replacer.Replace(filename), " .")
}

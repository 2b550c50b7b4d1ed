package utils

import (
	"fmt"
	"strings"
)

var sizeUnits = []string{"B", "KB", "MB", "GB", "TB"}

// HumanSize renders a byte count in the largest unit that keeps the scaled
// value below 1024, with the requested number of decimal places. Values past
// the table stay in TB.
func HumanSize(size float64, decimals int) string {
	for _, unit := range sizeUnits {
		if size < 1024.0 {
			return fmt.Sprintf("%.*f %s", decimals, size, unit)
		}
		size /= 1024.0
	}
	return fmt.Sprintf("%.*f TB", decimals, size)
}

// SanitizeFilename replaces characters that are unsafe in file names.
func SanitizeFilename(filename string) string {
	invalidChars := []string{"/", "\\", ":", "*", "?", "\"", "<", ">", "|"}
	result := filename
	for _, char := range invalidChars {
		result = strings.ReplaceAll(result, char, "_")
	}
	return result
}

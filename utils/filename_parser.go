package utils

import (
	"path/filepath"
	"regexp"
	"strings"
)

const maxDisplayNameRunes = 60

var (
	extRegex       = regexp.MustCompile(`(?i)\.(png|jpe?g|webp|heic|heif)$`)
	separatorRegex = regexp.MustCompile(`[_\-\s]+`)
)

// DisplayName derives the name shown in the cart from an uploaded filename:
// IMG_2041-final.JPG -> "IMG 2041 final". Empty names become "Foto".
func DisplayName(filename string) string {
	name := filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	name = extRegex.ReplaceAllString(name, "")
	name = strings.TrimSpace(separatorRegex.ReplaceAllString(name, " "))
	if name == "" || name == "." || name == "/" {
		return "Foto"
	}
	runes := []rune(name)
	if len(runes) > maxDisplayNameRunes {
		name = strings.TrimSpace(string(runes[:maxDisplayNameRunes]))
	}
	return name
}

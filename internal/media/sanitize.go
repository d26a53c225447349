package media

import (
	"strings"
)

// maxFilenameLen keeps names under common filesystem limits with room
// for a retry suffix.
const maxFilenameLen = 200

// illegal characters for cross-platform filenames.
const illegalChars = `<>:"/\|?*`

// reservedNames are device names Windows refuses as file stems.
var reservedNames = map[string]bool{
	"CON": true, "PRN": true, "AUX": true, "NUL": true,
	"COM1": true, "COM2": true, "COM3": true, "COM4": true, "COM5": true,
	"COM6": true, "COM7": true, "COM8": true, "COM9": true,
	"LPT1": true, "LPT2": true, "LPT3": true, "LPT4": true, "LPT5": true,
	"LPT6": true, "LPT7": true, "LPT8": true, "LPT9": true,
}

// SanitizeFilename rewrites name so it is safe on every filesystem we
// download to: illegal characters become underscores, reserved device
// stems get a prefix, and overlong names are truncated ahead of the
// extension.
func SanitizeFilename(name string) string {
	var b strings.Builder
	for _, r := range name {
		if r < 0x20 || strings.ContainsRune(illegalChars, r) {
			b.WriteRune('_')
		} else {
			b.WriteRune(r)
		}
	}
	name = strings.Trim(b.String(), " .")
	if name == "" {
		name = "unnamed"
	}

	stem, ext := splitExt(name)
	if reservedNames[strings.ToUpper(stem)] {
		name = "safe_" + name
		stem, ext = splitExt(name)
	}

	if len(name) > maxFilenameLen {
		keep := maxFilenameLen - len(ext)
		if keep < 1 {
			keep = 1
		}
		name = stem[:min(keep, len(stem))] + ext
	}
	return name
}

func splitExt(name string) (stem, ext string) {
	if idx := strings.LastIndex(name, "."); idx > 0 {
		return name[:idx], name[idx:]
	}
	return name, ""
}

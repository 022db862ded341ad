// Package toon implements TOON (Token-Oriented Object Notation) encoding of
// repair reports.
package toon

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/phobologic/uirepair/internal/model"
)

var (
	needsQuoting = regexp.MustCompile(`[,:"\\{}\[\]]`)
	looksNumeric = regexp.MustCompile(`^-?(?:0|[1-9]\d*)(?:\.\d+)?$`)
	keywords     = map[string]struct{}{
		"true":  {},
		"false": {},
		"null":  {},
	}
)

// Encode converts a Report into TOON format. Files that needed no repair are
// listed in the files table but contribute no fix rows.
func Encode(r *model.Report) string {
	var parts []string

	changed, fixes := 0, 0
	for i := range r.Files {
		if r.Files[i].Changed() {
			changed++
		}
		fixes += len(r.Files[i].Fixes)
	}

	parts = append(parts, fmt.Sprintf("root: %s", encodeValue(r.Root)))
	parts = append(parts, fmt.Sprintf("changed: %d", changed))

	var fileRows [][]any
	for i := range r.Files {
		fr := &r.Files[i]
		fileRows = append(fileRows, []any{
			fr.Path,
			fr.Pages,
			fr.FooterChanged,
			fr.NavbarRepairs,
			len(fr.Fixes),
		})
	}
	parts = append(parts, formatTabular("files", []string{"path", "pages", "footer", "navbars", "fixes"}, fileRows))

	fixRows := make([][]any, 0, fixes)
	for i := range r.Files {
		fr := &r.Files[i]
		for j := range fr.Fixes {
			fx := &fr.Fixes[j]
			fixRows = append(fixRows, []any{
				fr.Path,
				fx.Page,
				fx.NodeID,
				fx.Rule,
				strings.Join(fx.Keys, " "),
			})
		}
	}
	parts = append(parts, formatTabular("fixes", []string{"file", "page", "node", "rule", "keys"}, fixRows))

	return strings.Join(parts, "\n")
}

// formatTabular renders rows under a name[N]{columns}: header. String cells
// are quoted as needed; other cells are written bare.
func formatTabular(name string, columns []string, rows [][]any) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s[%d]{%s}:", name, len(rows), strings.Join(columns, ","))
	for _, row := range rows {
		encoded := make([]string, len(row))
		for i, cell := range row {
			if s, ok := cell.(string); ok {
				encoded[i] = encodeValue(s)
			} else {
				encoded[i] = fmt.Sprint(cell)
			}
		}
		fmt.Fprintf(&b, "\n  %s", strings.Join(encoded, ","))
	}
	return b.String()
}

func encodeValue(value string) string {
	if value == "" {
		return `""`
	}

	if value != strings.TrimSpace(value) {
		return quote(value)
	}

	if strings.ContainsAny(value, "\n\r\t") {
		return quote(value)
	}

	if _, ok := keywords[strings.ToLower(value)]; ok {
		return quote(value)
	}

	if looksNumeric.MatchString(value) {
		// A numeric-looking string would read back as a number.
		return quote(value)
	}

	if needsQuoting.MatchString(value) {
		return quote(value)
	}

	if strings.HasPrefix(value, "-") {
		return quote(value)
	}

	return value
}

func quote(value string) string {
	escaped := strings.ReplaceAll(value, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, `"`, `\"`)
	escaped = strings.ReplaceAll(escaped, "\n", `\n`)
	escaped = strings.ReplaceAll(escaped, "\r", `\r`)
	escaped = strings.ReplaceAll(escaped, "\t", `\t`)
	return `"` + escaped + `"`
}

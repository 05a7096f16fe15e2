package wheelcipher

import (
	"fmt"
	"strings"
)

// Render lays the five wheels out as aligned columns, alphabet on top, for
// debugging a key by eye.
func (ws *WheelSet) Render() string {
	var sb strings.Builder
	writeRow(&sb, "", ws.alphabet)
	for n, w := range ws.codes {
		writeRow(&sb, fmt.Sprintf("w%d", n+1), w)
	}
	return sb.String()
}

func writeRow(sb *strings.Builder, label string, w Wheel) {
	fmt.Fprintf(sb, "%-3s", label)
	for _, entry := range w {
		fmt.Fprintf(sb, " %2s", entry)
	}
	sb.WriteByte('\n')
}

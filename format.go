package tzdb

import "strings"

// resolveAbbreviation renders a Zone FORMAT field against an active
// rule's savings amount and letter substitution. format has already
// passed tzsrc.validateFormat, so it is one of: a literal, a STD/DST
// pair, or a %s template.
func resolveAbbreviation(format, letter string, savingsSeconds int32) (string, error) {
	var out string
	if idx := strings.IndexByte(format, '/'); idx >= 0 {
		std, dst := format[:idx], format[idx+1:]
		if savingsSeconds != 0 {
			out = dst
		} else {
			out = std
		}
	} else {
		var b strings.Builder
		for i := 0; i < len(format); i++ {
			if format[i] == '%' && i+1 < len(format) {
				switch format[i+1] {
				case 's':
					b.WriteString(letter)
					i++
					continue
				case '%':
					b.WriteByte('%')
					i++
					continue
				}
			}
			b.WriteByte(format[i])
		}
		out = b.String()
	}
	if len(out) > 5 {
		return "", newError(Overflow, "abbreviation %q exceeds 5 bytes", out)
	}
	return out, nil
}

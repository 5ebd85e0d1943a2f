package extract

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// unquote strips the quotes of a JavaScript string literal and decodes its
// escape sequences
func unquote(literal string) (string, error) {
	if len(literal) < 2 {
		return "", fmt.Errorf("malformed string literal %s", literal)
	}
	quote := literal[0]
	if (quote != '\'' && quote != '"') || literal[len(literal)-1] != quote {
		return "", fmt.Errorf("malformed string literal %s", literal)
	}
	return unescape(literal[1 : len(literal)-1])
}

// unescape decodes JavaScript escape sequences
func unescape(s string) (string, error) {
	if !strings.Contains(s, `\`) {
		return s, nil
	}

	var b strings.Builder
	b.Grow(len(s))

	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' {
			b.WriteByte(c)
			continue
		}
		i++
		if i >= len(s) {
			return "", fmt.Errorf("trailing backslash in %q", s)
		}

		switch c = s[i]; c {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case 'b':
			b.WriteByte('\b')
		case 'f':
			b.WriteByte('\f')
		case 'v':
			b.WriteByte('\v')
		case '0':
			b.WriteByte(0)
		case '\n':
			// line continuation
		case '\r':
			if i+1 < len(s) && s[i+1] == '\n' {
				i++
			}
		case 'x':
			r, n, err := hexRune(s[i+1:], 2)
			if err != nil {
				return "", err
			}
			b.WriteRune(r)
			i += n
		case 'u':
			if i+1 < len(s) && s[i+1] == '{' {
				closing := strings.IndexByte(s[i+1:], '}')
				if closing < 0 {
					return "", fmt.Errorf("unterminated unicode escape in %q", s)
				}
				r, _, err := hexRune(s[i+2:i+1+closing], closing-1)
				if err != nil {
					return "", err
				}
				b.WriteRune(r)
				i += closing + 1
				continue
			}
			r, n, err := hexRune(s[i+1:], 4)
			if err != nil {
				return "", err
			}
			b.WriteRune(r)
			i += n
		default:
			// any other escaped character stands for itself
			r, size := utf8.DecodeRuneInString(s[i:])
			b.WriteRune(r)
			i += size - 1
		}
	}

	return b.String(), nil
}

func hexRune(s string, digits int) (rune, int, error) {
	if digits <= 0 || len(s) < digits {
		return 0, 0, fmt.Errorf("invalid hex escape %q", s)
	}
	v, err := strconv.ParseUint(s[:digits], 16, 32)
	if err != nil || v > utf8.MaxRune {
		return 0, 0, fmt.Errorf("invalid hex escape %q", s[:digits])
	}
	return rune(v), digits, nil
}

package parse

import (
	"fmt"
	"strconv"

	"github.com/technichron/telda/pkg/terr"
)

// parseByteChar consumes one (possibly escaped) byte character from
// the front of s, returning its value and the unconsumed remainder.
// Recognised escapes: \r \t \n \0 \\ \' \" \xHH.
func parseByteChar(s string) (byte, string, error) {
	if len(s) == 0 {
		return 0, "", fmt.Errorf("%w: unexpected end of character data", terr.ErrParse)
	}

	if s[0] != '\\' {
		return s[0], s[1:], nil
	}

	if len(s) < 2 {
		return 0, "", fmt.Errorf("%w: dangling escape character", terr.ErrParse)
	}

	switch s[1] {
	case 'r':
		return '\r', s[2:], nil
	case 't':
		return '\t', s[2:], nil
	case 'n':
		return '\n', s[2:], nil
	case '0':
		return 0, s[2:], nil
	case '\\':
		return '\\', s[2:], nil
	case '\'':
		return '\'', s[2:], nil
	case '"':
		return '"', s[2:], nil
	case 'x':
		if len(s) < 4 {
			return 0, "", fmt.Errorf("%w: truncated \\x escape in %q", terr.ErrParse, s)
		}
		v, err := strconv.ParseUint(s[2:4], 16, 8)
		if err != nil {
			return 0, "", fmt.Errorf("%w: invalid \\x escape %q: %v", terr.ErrParse, s[2:4], err)
		}
		return byte(v), s[4:], nil
	default:
		return 0, "", fmt.Errorf("%w: invalid escape character \\%c", terr.ErrParse, s[1])
	}
}

// parseStringLiteral decodes a .string directive's argument (without
// surrounding quotes) into its raw byte sequence.
func parseStringLiteral(s string) ([]byte, error) {
	out := make([]byte, 0, len(s))
	for len(s) > 0 {
		c, rest, err := parseByteChar(s)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
		s = rest
	}
	return out, nil
}

package corpus

// phoneticKey computes a Soundex-style phonetic code for a normalized card
// name: first letter kept verbatim, subsequent consonants mapped to a
// reduced digit alphabet, vowels and duplicate-in-a-row digits dropped, and
// the result padded or truncated to four characters. No phonetic-coding
// library was found anywhere in the retrieved corpus, so this is a
// deliberately small hand-rolled implementation rather than a third-party
// dependency.
func phoneticKey(s string) string {
	if s == "" {
		return "0000"
	}
	code := make([]byte, 0, 4)
	var first byte
	var lastDigit byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < 'a' || c > 'z' {
			continue
		}
		if first == 0 {
			first = c
			code = append(code, c)
			lastDigit = soundexDigit(c)
			continue
		}
		d := soundexDigit(c)
		if d == 0 {
			lastDigit = 0
			continue
		}
		if d != lastDigit {
			code = append(code, '0'+d)
		}
		lastDigit = d
		if len(code) == 4 {
			break
		}
	}
	for len(code) < 4 {
		code = append(code, '0')
	}
	return string(code[:4])
}

func soundexDigit(c byte) byte {
	switch c {
	case 'b', 'f', 'p', 'v':
		return 1
	case 'c', 'g', 'j', 'k', 'q', 's', 'x', 'z':
		return 2
	case 'd', 't':
		return 3
	case 'l':
		return 4
	case 'm', 'n':
		return 5
	case 'r':
		return 6
	default:
		return 0
	}
}

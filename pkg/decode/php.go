package decode

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// PHP decodes the output of PHP's serialize(). Arrays whose keys are the
// sequence 0..n-1 become a *List, every other array or object becomes a
// *Map with its keys rendered as strings. Object class names are dropped.
func PHP(raw string) (any, error) {
	p := &phpParser{src: raw}
	v, err := p.value()
	if err != nil {
		return nil, err
	}
	if p.pos != len(p.src) {
		return nil, p.errorf("unexpected trailing data")
	}
	return v, nil
}

type phpParser struct {
	src string
	pos int
}

func (p *phpParser) errorf(format string, args ...any) error {
	return fmt.Errorf("php unserialize at offset %d: %s", p.pos, fmt.Sprintf(format, args...))
}

func (p *phpParser) expect(s string) error {
	if !strings.HasPrefix(p.src[p.pos:], s) {
		return p.errorf("expected %q", s)
	}
	p.pos += len(s)
	return nil
}

// until consumes up to (not including) the delimiter and skips it.
func (p *phpParser) until(delim byte) (string, error) {
	i := strings.IndexByte(p.src[p.pos:], delim)
	if i < 0 {
		return "", p.errorf("missing %q", delim)
	}
	s := p.src[p.pos : p.pos+i]
	p.pos += i + 1
	return s, nil
}

func (p *phpParser) length() (int, error) {
	s, err := p.until(':')
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, p.errorf("invalid length %q", s)
	}
	return n, nil
}

func (p *phpParser) value() (any, error) {
	if p.pos+1 >= len(p.src) {
		return nil, p.errorf("unexpected end of input")
	}
	tag := p.src[p.pos]
	if tag == 'N' {
		p.pos++
		return nil, p.expect(";")
	}
	p.pos++
	if err := p.expect(":"); err != nil {
		return nil, err
	}

	switch tag {
	case 'b':
		s, err := p.until(';')
		if err != nil {
			return nil, err
		}
		switch s {
		case "0":
			return false, nil
		case "1":
			return true, nil
		}
		return nil, p.errorf("invalid boolean %q", s)
	case 'i':
		s, err := p.until(';')
		if err != nil {
			return nil, err
		}
		i, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, p.errorf("invalid integer %q", s)
		}
		return i, nil
	case 'd':
		s, err := p.until(';')
		if err != nil {
			return nil, err
		}
		switch s {
		case "INF":
			return math.Inf(1), nil
		case "-INF":
			return math.Inf(-1), nil
		case "NAN":
			return math.NaN(), nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, p.errorf("invalid float %q", s)
		}
		return f, nil
	case 's':
		return p.str(';')
	case 'a':
		return p.array()
	case 'O':
		// O:<len>:"<class>":<count>:{...}
		if _, err := p.str(':'); err != nil {
			return nil, err
		}
		return p.array()
	}
	return nil, p.errorf("unsupported type %q", tag)
}

// str parses `<len>:"<bytes>"` followed by term, with the leading tag
// already consumed. Object class names end in ':', string values in ';'.
func (p *phpParser) str(term byte) (string, error) {
	n, err := p.length()
	if err != nil {
		return "", err
	}
	if err := p.expect(`"`); err != nil {
		return "", err
	}
	if n > len(p.src)-p.pos {
		return "", p.errorf("string length %d exceeds input", n)
	}
	s := p.src[p.pos : p.pos+n]
	p.pos += n
	if err := p.expect(`"`); err != nil {
		return "", err
	}
	if p.pos >= len(p.src) || p.src[p.pos] != term {
		return "", p.errorf("expected %q after string", term)
	}
	p.pos++
	return s, nil
}

func (p *phpParser) array() (any, error) {
	n, err := p.length()
	if err != nil {
		return nil, err
	}
	if err := p.expect("{"); err != nil {
		return nil, err
	}

	// every element needs at least one byte, so a larger count cannot be
	// satisfied by the rest of the input
	if n > len(p.src)-p.pos {
		return nil, p.errorf("array length %d exceeds input", n)
	}

	b := NewMapBuilder()
	items := make([]any, 0, n)
	sequential := true
	for i := 0; i < n; i++ {
		key, err := p.value()
		if err != nil {
			return nil, err
		}
		value, err := p.value()
		if err != nil {
			return nil, err
		}
		var name string
		switch k := key.(type) {
		case int64:
			name = strconv.FormatInt(k, 10)
			if k != int64(i) {
				sequential = false
			}
		case string:
			name = stripVisibility(k)
			sequential = false
		default:
			return nil, p.errorf("invalid array key type %T", key)
		}
		b.Add(name, value)
		items = append(items, value)
	}
	if err := p.expect("}"); err != nil {
		return nil, err
	}
	if sequential {
		return &List{items: items}, nil
	}
	return b.Map(), nil
}

// stripVisibility removes the "\x00Class\x00" / "\x00*\x00" prefix PHP puts
// on private and protected property names.
func stripVisibility(name string) string {
	if len(name) > 0 && name[0] == 0 {
		if i := strings.IndexByte(name[1:], 0); i >= 0 {
			return name[i+2:]
		}
	}
	return name
}

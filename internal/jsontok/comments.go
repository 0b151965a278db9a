package jsontok

import (
	"bufio"
	"io"
)

const (
	stCode = iota
	stString
	stEscape
	stSlash
	stLine
	stBlock
	stBlockStar
)

// StripComments returns a reader that drops // line comments and /* */ block
// comments found outside string literals. The newline ending a line comment
// is kept.
func StripComments(r io.Reader) io.Reader {
	return &commentFilter{src: bufio.NewReader(r)}
}

type commentFilter struct {
	src   *bufio.Reader
	state int
	out   []byte
	err   error
}

func (f *commentFilter) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	for len(f.out) == 0 && f.err == nil {
		f.fill(len(p))
	}
	n := copy(p, f.out)
	f.out = f.out[n:]
	if n == 0 {
		return 0, f.err
	}
	return n, nil
}

func (f *commentFilter) fill(max int) {
	for len(f.out) < max {
		b, err := f.src.ReadByte()
		if err != nil {
			if f.state == stSlash {
				f.out = append(f.out, '/')
			}
			f.err = err
			return
		}
		f.step(b)
	}
}

func (f *commentFilter) step(b byte) {
	switch f.state {
	case stCode:
		switch b {
		case '"':
			f.state = stString
		case '/':
			f.state = stSlash
			return
		}
		f.out = append(f.out, b)
	case stString:
		switch b {
		case '\\':
			f.state = stEscape
		case '"':
			f.state = stCode
		}
		f.out = append(f.out, b)
	case stEscape:
		f.state = stString
		f.out = append(f.out, b)
	case stSlash:
		switch b {
		case '/':
			f.state = stLine
		case '*':
			f.state = stBlock
		default:
			f.state = stCode
			f.out = append(f.out, '/')
			f.step(b)
		}
	case stLine:
		if b == '\n' {
			f.state = stCode
			f.out = append(f.out, b)
		}
	case stBlock:
		if b == '*' {
			f.state = stBlockStar
		}
	case stBlockStar:
		switch b {
		case '/':
			f.state = stCode
		case '*':
		default:
			f.state = stBlock
		}
	}
}

// Package keyinput reads single keystrokes from a raw-mode terminal.
package keyinput

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"time"
	"unicode"

	"golang.org/x/term"

	"github.com/verte-zerg/keydrill/internal/drill"
)

const (
	keyCtrlC = 0x03
	keyCtrlD = 0x04
	keyEsc   = 0x1b
)

// Terminal collects keys from a terminal file descriptor.
type Terminal struct {
	in    *bufio.Reader
	fd    int
	state *term.State
	now   func() time.Time
}

// Open switches f into raw mode. Close restores the previous mode.
func Open(f *os.File) (*Terminal, error) {
	fd := int(f.Fd())
	if !term.IsTerminal(fd) {
		return nil, fmt.Errorf("stdin is not a terminal")
	}
	state, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("failed to enter raw mode: %w", err)
	}
	return &Terminal{in: bufio.NewReader(f), fd: fd, state: state, now: time.Now}, nil
}

// NewReader collects keys from r without touching terminal modes.
func NewReader(r io.Reader) *Terminal {
	return &Terminal{in: bufio.NewReader(r), fd: -1, now: time.Now}
}

// ReadKey blocks for one key and reports how long the wait took.
// Ctrl-C, Ctrl-D, a lone Esc and end of input abort the drill. Other
// control keys and escape sequences (arrows, function keys, Alt
// chords) are skipped.
func (t *Terminal) ReadKey() (drill.KeyPress, error) {
	start := t.now()
	for {
		r, _, err := t.in.ReadRune()
		if err != nil {
			if err == io.EOF {
				return drill.KeyPress{}, drill.ErrInterrupted
			}
			return drill.KeyPress{}, err
		}
		switch {
		case r == keyCtrlC || r == keyCtrlD:
			return drill.KeyPress{}, drill.ErrInterrupted
		case r == keyEsc:
			if t.in.Buffered() == 0 {
				return drill.KeyPress{}, drill.ErrInterrupted
			}
			if err := t.skipEscapeSequence(); err != nil {
				return drill.KeyPress{}, err
			}
		case r == '\t' || !unicode.IsControl(r):
			return drill.KeyPress{Key: string(r), StartedAt: start, Elapsed: t.now().Sub(start)}, nil
		}
	}
}

// skipEscapeSequence drops the rest of a sequence whose leading Esc was
// already read. CSI and SS3 sequences end at a byte in '@'..'~'; an Alt
// chord is Esc plus one key.
func (t *Terminal) skipEscapeSequence() error {
	r, _, err := t.in.ReadRune()
	if err != nil {
		return err
	}
	if r != '[' && r != 'O' {
		return nil
	}
	for t.in.Buffered() > 0 {
		b, err := t.in.ReadByte()
		if err != nil {
			return err
		}
		if b >= '@' && b <= '~' {
			return nil
		}
	}
	return nil
}

// Close restores the terminal.
func (t *Terminal) Close() error {
	if t.state == nil {
		return nil
	}
	return term.Restore(t.fd, t.state)
}

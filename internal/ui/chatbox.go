package ui

import (
	"strings"
	"unicode/utf8"
)

const maxChatRunes = 280

// ChatBox is the single-line chat input. While active it owns the keyboard.
type ChatBox struct {
	active bool
	buf    []rune
}

// NewChatBox returns an inactive, empty box.
func NewChatBox() *ChatBox {
	return &ChatBox{}
}

func (b *ChatBox) Active() bool { return b.active }

func (b *ChatBox) Text() string { return string(b.buf) }

// Open focuses the box.
func (b *ChatBox) Open() {
	b.active = true
}

// Type appends printable runes up to the length limit.
func (b *ChatBox) Type(runes []rune) {
	for _, r := range runes {
		if r < ' ' || r == utf8.RuneError || len(b.buf) >= maxChatRunes {
			continue
		}
		b.buf = append(b.buf, r)
	}
}

// Backspace deletes the last rune.
func (b *ChatBox) Backspace() {
	if len(b.buf) > 0 {
		b.buf = b.buf[:len(b.buf)-1]
	}
}

// Cancel clears and blurs the box.
func (b *ChatBox) Cancel() {
	b.buf = b.buf[:0]
	b.active = false
}

// Submit returns the trimmed line and blurs the box.
func (b *ChatBox) Submit() string {
	line := strings.TrimSpace(string(b.buf))
	b.Cancel()
	return line
}

// wrap splits s into lines of at most width runes, preferring spaces.
func wrap(s string, width int) []string {
	if width <= 0 {
		return []string{s}
	}
	var out []string
	for _, para := range strings.Split(s, "\n") {
		runes := []rune(para)
		for len(runes) > width {
			cut := width
			for i := width; i > width/2; i-- {
				if runes[i] == ' ' {
					cut = i
					break
				}
			}
			out = append(out, strings.TrimRight(string(runes[:cut]), " "))
			runes = []rune(strings.TrimLeft(string(runes[cut:]), " "))
		}
		out = append(out, string(runes))
	}
	return out
}

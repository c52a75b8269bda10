package irc

import (
	"bytes"
)

// maxLineLen bounds the data buffered while waiting for a line terminator.
// Twitch allows tags, so this is well above the classic 512 bytes.
const maxLineLen = 8192

// LineFramer splits a byte stream into lines.  Partial data is kept until the
// next Feed call completes it.
type LineFramer struct {
	buf []byte
}

// Feed appends data to the stream and returns every line it completes,
// without their "\n" or "\r\n" terminators.  Empty lines are dropped.
func (f *LineFramer) Feed(data []byte) (lines []string) {
	f.buf = append(f.buf, data...)

	for {
		i := bytes.IndexByte(f.buf, '\n')
		if i < 0 {
			break
		}
		line := bytes.TrimRight(f.buf[:i], "\r")
		if len(line) != 0 {
			lines = append(lines, string(line))
		}
		f.buf = f.buf[i+1:]
	}

	if maxLineLen < len(f.buf) {
		// the peer is not speaking our protocol, drop what we have.
		f.buf = f.buf[:0]
	}
	if len(f.buf) == 0 {
		f.buf = nil
	}

	return
}

// Reset drops any buffered partial line.
func (f *LineFramer) Reset() {
	f.buf = nil
}

// Buffered returns the number of bytes waiting for a terminator.
func (f *LineFramer) Buffered() int {
	return len(f.buf)
}

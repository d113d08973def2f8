package chatstream

import "strings"

// Splitter buffers decoded text and carves it into newline-delimited frames.
// Frames come out in delimiter order no matter how the text was chunked on
// its way in. The zero value is ready to use. A Splitter is owned by a
// single stream and is not safe for concurrent use.
type Splitter struct {
	buf string
}

// Append adds decoded text to the buffer.
func (s *Splitter) Append(text string) {
	s.buf += text
}

// Drain removes and returns every complete frame in the buffer, without
// its delimiter and otherwise verbatim. An empty line yields an empty
// frame. Text after the last delimiter stays buffered.
func (s *Splitter) Drain() []string {
	var frames []string
	for {
		frame, rest, found := strings.Cut(s.buf, "\n")
		if !found {
			return frames
		}
		frames = append(frames, frame)
		s.buf = rest
	}
}

// Buffered returns the undelimited remainder.
func (s *Splitter) Buffered() string {
	return s.buf
}

// Reset discards any buffered text.
func (s *Splitter) Reset() {
	s.buf = ""
}

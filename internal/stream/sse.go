package stream

import (
	"bufio"
	"io"
	"strconv"
	"strings"
	"time"
)

// Message is one dispatched server-sent event.
type Message struct {
	Event string
	ID    string
	Data  string
	Retry time.Duration
}

// Decoder reads text/event-stream framing from r.
type Decoder struct {
	r       *bufio.Reader
	started bool
	afterCR bool
	lastID  string
}

// NewDecoder returns a decoder reading from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: bufio.NewReader(r)}
}

// Next blocks until a complete event has been read. An event still pending
// when the stream ends is dropped and the read error is returned.
func (d *Decoder) Next() (Message, error) {
	var (
		msg  Message
		data strings.Builder
		has  bool
	)
	for {
		line, err := d.readLine()
		if err != nil {
			return Message{}, err
		}
		if line == "" {
			if !has {
				msg = Message{}
				continue
			}
			msg.Data = strings.TrimSuffix(data.String(), "\n")
			msg.ID = d.lastID
			return msg, nil
		}
		if strings.HasPrefix(line, ":") {
			continue
		}
		field, value := line, ""
		if i := strings.IndexByte(line, ':'); i >= 0 {
			field = line[:i]
			value = strings.TrimPrefix(line[i+1:], " ")
		}
		switch field {
		case "data":
			data.WriteString(value)
			data.WriteByte('\n')
			has = true
		case "event":
			msg.Event = value
		case "id":
			if !strings.ContainsRune(value, 0) {
				d.lastID = value
			}
		case "retry":
			if ms, err := strconv.Atoi(value); err == nil && ms >= 0 {
				msg.Retry = time.Duration(ms) * time.Millisecond
			}
		}
	}
}

// readLine returns the next line without its terminator. Lines end in LF,
// CRLF or a bare CR. The LF of a CRLF pair is skipped on the following call
// so a line ending in CR is returned without waiting for more input.
func (d *Decoder) readLine() (string, error) {
	var buf []byte
	for {
		b, err := d.r.ReadByte()
		if err != nil {
			if err == io.EOF && len(buf) > 0 {
				// A final line without a terminator never completes an event.
				return "", io.ErrUnexpectedEOF
			}
			return "", err
		}
		if d.afterCR {
			d.afterCR = false
			if b == '\n' {
				continue
			}
		}
		switch b {
		case '\r':
			d.afterCR = true
			return d.finishLine(buf), nil
		case '\n':
			return d.finishLine(buf), nil
		}
		buf = append(buf, b)
	}
}

func (d *Decoder) finishLine(buf []byte) string {
	line := string(buf)
	if !d.started {
		d.started = true
		line = strings.TrimPrefix(line, "\ufeff")
	}
	return line
}

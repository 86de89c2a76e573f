package stream

import (
	"errors"
	"io"
	"strings"
	"testing"
	"time"
)

func TestDecoderJoinsMultilineData(t *testing.T) {
	dec := NewDecoder(strings.NewReader("data: first\ndata: second\n\n"))
	msg, err := dec.Next()
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if msg.Data != "first\nsecond" {
		t.Fatalf("expected joined data, got %q", msg.Data)
	}
}

func TestDecoderIgnoresCommentsAndRecordsFields(t *testing.T) {
	input := ": keepalive\r\nevent: log\r\nid: 7\r\nretry: 2500\r\ndata:no-space\r\n\r\n"
	dec := NewDecoder(strings.NewReader(input))
	msg, err := dec.Next()
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if msg.Event != "log" || msg.ID != "7" || msg.Data != "no-space" {
		t.Fatalf("unexpected message %#v", msg)
	}
	if msg.Retry != 2500*time.Millisecond {
		t.Fatalf("expected retry 2.5s, got %s", msg.Retry)
	}
}

func TestDecoderSkipsBlankLinesWithoutData(t *testing.T) {
	dec := NewDecoder(strings.NewReader("\n\nevent: ping\n\ndata: real\n\n"))
	msg, err := dec.Next()
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if msg.Data != "real" || msg.Event != "" {
		t.Fatalf("expected only the data event, got %#v", msg)
	}
}

func TestDecoderDropsUnterminatedTrailingEvent(t *testing.T) {
	dec := NewDecoder(strings.NewReader("data: done\n\ndata: partial\n"))
	if _, err := dec.Next(); err != nil {
		t.Fatalf("first event: %v", err)
	}
	if _, err := dec.Next(); !errors.Is(err, io.EOF) {
		t.Fatalf("expected EOF for pending event, got %v", err)
	}
}

func TestDecoderKeepsLastEventID(t *testing.T) {
	dec := NewDecoder(strings.NewReader("id: 1\ndata: a\n\ndata: b\n\n"))
	first, _ := dec.Next()
	second, err := dec.Next()
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if first.ID != "1" || second.ID != "1" {
		t.Fatalf("expected id to carry over, got %q and %q", first.ID, second.ID)
	}
}

func TestDecoderAcceptsBareCarriageReturns(t *testing.T) {
	dec := NewDecoder(strings.NewReader("event: log\rdata: one\rdata: two\r\rdata: mixed\r\n\r\n"))
	msg, err := dec.Next()
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	if msg.Event != "log" || msg.Data != "one\ntwo" {
		t.Fatalf("unexpected message %#v", msg)
	}
	msg, err = dec.Next()
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	if msg.Data != "mixed" {
		t.Fatalf("expected CRLF after CR lines to frame normally, got %#v", msg)
	}
}

func TestDecoderDispatchesOnCarriageReturnWithoutMoreInput(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()
	go func() {
		_, _ = pw.Write([]byte("data: live\r\r"))
	}()
	done := make(chan Message, 1)
	go func() {
		msg, _ := NewDecoder(pr).Next()
		done <- msg
	}()
	select {
	case msg := <-done:
		if msg.Data != "live" {
			t.Fatalf("unexpected message %#v", msg)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("decoder waited for input past the final CR")
	}
}

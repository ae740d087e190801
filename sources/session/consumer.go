package session

import (
	"encoding/json"
	"strings"

	"steinberg/sources/texting"
)

const (
	dataPrefix   = "data: "
	doneSentinel = "[DONE]"
)

// StreamConsumer assembles an SSE token stream into the full assistant reply.
// Transport chunks arrive at arbitrary byte boundaries, so an incomplete
// trailing line is carried over between Feed calls. Every increment publishes
// the complete normalized content so far, never a bare delta, which keeps the
// rendered message monotonically growing no matter how chunks split.
type StreamConsumer struct {
	carry   string
	content strings.Builder
	done    bool
	lines   int
	publish func(full string)
}

func NewStreamConsumer(publish func(full string)) *StreamConsumer {
	return &StreamConsumer{publish: publish}
}

func (x *StreamConsumer) Feed(chunk []byte) {
	x.carry += string(chunk)

	lines := strings.Split(x.carry, "\n")
	x.carry = lines[len(lines)-1]

	for _, line := range lines[:len(lines)-1] {
		x.consumeLine(line)
	}
}

// Flush processes a final unterminated line once the transport reaches EOF.
func (x *StreamConsumer) Flush() {
	if strings.HasPrefix(x.carry, dataPrefix) {
		x.consumeLine(x.carry)
	}
	x.carry = ""
}

func (x *StreamConsumer) Content() string {
	return texting.Normalize(x.content.String())
}

// Done reports whether the logical end-of-stream sentinel was seen. The
// transport is still drained to EOF after it.
func (x *StreamConsumer) Done() bool {
	return x.done
}

func (x *StreamConsumer) Lines() int {
	return x.lines
}

func (x *StreamConsumer) consumeLine(line string) {
	if !strings.HasPrefix(line, dataPrefix) {
		return
	}

	payload := strings.TrimSpace(strings.TrimPrefix(line, dataPrefix))
	if payload == doneSentinel {
		x.done = true
		return
	}

	var delta struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal([]byte(payload), &delta); err != nil {
		// malformed frames are dropped silently, heartbeats included
		return
	}
	if delta.Text == "" {
		return
	}

	x.content.WriteString(delta.Text)
	x.lines++

	if x.publish != nil {
		x.publish(texting.Normalize(x.content.String()))
	}
}

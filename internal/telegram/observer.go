package telegram

import (
	"sync"

	"phoneclaw/internal/agent/call"
)

// chatObserver renders run events into a status message.
type chatObserver struct {
	status *statusMessage

	mu       sync.Mutex
	streamed bool
}

var (
	_ call.Observer       = (*chatObserver)(nil)
	_ call.StreamObserver = (*chatObserver)(nil)
)

func newChatObserver(status *statusMessage) *chatObserver {
	return &chatObserver{status: status}
}

func (o *chatObserver) OnThinking() {
	o.mu.Lock()
	o.streamed = false
	o.mu.Unlock()
}

func (o *chatObserver) OnToolCall(name string, args map[string]any) {
	o.status.Append("\n🛠 Executing: "+name+"\n", false)
}

func (o *chatObserver) OnToolResult(name, result string) {}

func (o *chatObserver) OnStreamChunk(fragment string) {
	o.mu.Lock()
	o.streamed = true
	o.mu.Unlock()
	o.status.Append(fragment, false)
}

// OnResponse shows the final text unless it already arrived as stream chunks.
func (o *chatObserver) OnResponse(text string) {
	o.mu.Lock()
	streamed := o.streamed
	o.mu.Unlock()
	if streamed && text != call.StoppedMessage {
		return
	}
	if o.status.Text() != "" {
		text = "\n" + text
	}
	o.status.Append(text, true)
}

func (o *chatObserver) OnError(message string) {
	o.status.Append("\n❌ Error: "+message, true)
}

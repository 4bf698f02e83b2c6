package call

// Observer receives progress events from a run. Events are delivered on the
// run's goroutine in the order they happen.
type Observer interface {
	OnThinking()
	OnToolCall(name string, args map[string]any)
	OnToolResult(name, result string)
	OnResponse(text string)
	OnError(message string)
}

// StreamObserver is implemented by observers that want content deltas.
type StreamObserver interface {
	OnStreamChunk(fragment string)
}

// ObserverFuncs adapts optional callbacks to Observer. Nil fields are skipped.
type ObserverFuncs struct {
	Thinking    func()
	ToolCall    func(name string, args map[string]any)
	ToolResult  func(name, result string)
	Response    func(text string)
	Error       func(message string)
	StreamChunk func(fragment string)
}

func (o ObserverFuncs) OnThinking() {
	if o.Thinking != nil {
		o.Thinking()
	}
}

func (o ObserverFuncs) OnToolCall(name string, args map[string]any) {
	if o.ToolCall != nil {
		o.ToolCall(name, args)
	}
}

func (o ObserverFuncs) OnToolResult(name, result string) {
	if o.ToolResult != nil {
		o.ToolResult(name, result)
	}
}

func (o ObserverFuncs) OnResponse(text string) {
	if o.Response != nil {
		o.Response(text)
	}
}

func (o ObserverFuncs) OnError(message string) {
	if o.Error != nil {
		o.Error(message)
	}
}

func (o ObserverFuncs) OnStreamChunk(fragment string) {
	if o.StreamChunk != nil {
		o.StreamChunk(fragment)
	}
}

type nopObserver struct{}

func (nopObserver) OnThinking()                       {}
func (nopObserver) OnToolCall(string, map[string]any) {}
func (nopObserver) OnToolResult(string, string)       {}
func (nopObserver) OnResponse(string)                 {}
func (nopObserver) OnError(string)                    {}

func observerOrNop(observer Observer) Observer {
	if observer == nil {
		return nopObserver{}
	}
	return observer
}

// chunkHandlerFor returns a chunk callback when the observer streams.
func chunkHandlerFor(observer Observer) func(string) {
	stream, ok := observer.(StreamObserver)
	if !ok {
		return nil
	}
	return stream.OnStreamChunk
}

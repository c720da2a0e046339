package llm

import (
	"context"
	"encoding/json"
	"iter"

	"agentcore/pkg/message"
)

// fakeClient is a scripted Client used by this package's own tests. Each
// call to CreateMessage/CreateMessageStream pops the
// next scripted Response off the queue; calling past the end panics, which
// surfaces test-author mistakes immediately rather than hanging.
type fakeClient struct {
	responses []Response
	calls     int
}

func newFakeClient(responses ...Response) *fakeClient {
	return &fakeClient{responses: responses}
}

func (f *fakeClient) CreateMessage(ctx context.Context, req Request) (Response, error) {
	if f.calls >= len(f.responses) {
		panic("fakeClient: no scripted response left")
	}
	resp := f.responses[f.calls]
	f.calls++
	return resp, nil
}

func (f *fakeClient) CreateMessageStream(ctx context.Context, req Request) iter.Seq2[StreamEvent, error] {
	resp, _ := f.CreateMessage(ctx, req)
	return func(yield func(StreamEvent, error) bool) {
		if !yield(StreamEvent{Type: EventMessageStart, Message: &Response{ID: resp.ID, Model: resp.Model, Usage: resp.Usage}}, nil) {
			return
		}
		for i, block := range resp.Content {
			start := block
			start.Text = ""
			if !yield(StreamEvent{Type: EventContentBlockStart, Index: i, BlockStart: &start}, nil) {
				return
			}
			switch block.Type {
			case message.BlockText:
				if !yield(StreamEvent{Type: EventContentBlockDelta, Index: i, TextDelta: block.Text}, nil) {
					return
				}
			case message.BlockToolUse:
				raw, _ := json.Marshal(block.Input)
				if !yield(StreamEvent{Type: EventContentBlockDelta, Index: i, PartialJSONDelta: string(raw)}, nil) {
					return
				}
			}
			if !yield(StreamEvent{Type: EventContentBlockStop, Index: i}, nil) {
				return
			}
		}
		reason := resp.StopReason
		if !yield(StreamEvent{Type: EventMessageDelta, StopReason: &reason, Usage: &resp.Usage}, nil) {
			return
		}
		yield(StreamEvent{Type: EventMessageStop}, nil)
	}
}

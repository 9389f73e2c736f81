package bridge

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingOutbox struct {
	mu   sync.Mutex
	sent []Outbound
	err  error
}

func (o *recordingOutbox) PublishOutbound(_ context.Context, msg Outbound) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.err != nil {
		return o.err
	}
	o.sent = append(o.sent, msg)
	return nil
}

func (o *recordingOutbox) messages() []Outbound {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]Outbound(nil), o.sent...)
}

func newTestRouter(t *testing.T, doc map[string]any) (*Router, *recordingOutbox) {
	t.Helper()
	cfg, err := Parse(doc)
	require.NoError(t, err)
	out := &recordingOutbox{}
	return NewRouter(cfg, out), out
}

func TestRouterForwardsOneWay(t *testing.T) {
	r, out := newTestRouter(t, map[string]any{
		"OneWay": []any{rule("err", "#general", "discord", "100")},
	})

	got := r.Handle(context.Background(), InboundMessage{
		Side: SideErr, ChatID: "#general", SenderID: "@alice", SenderName: "alice", Body: "hi",
	})
	assert.Equal(t, OutcomeForwarded, got)
	assert.Equal(t, []Outbound{{
		Side: SideDiscord, ChatID: "100", Content: "alice: hi",
		AllowImages: true, AllowLinks: true, AllowThreads: true,
	}}, out.messages())

	// One way only: nothing comes back from the destination channel.
	got = r.Handle(context.Background(), InboundMessage{
		Side: SideDiscord, ChatID: "100", SenderID: "7", SenderName: "bob", Body: "hey",
	})
	assert.Equal(t, OutcomeNoRoute, got)
	assert.Len(t, out.messages(), 1)
}

func TestRouterTwoWayBothDirections(t *testing.T) {
	r, out := newTestRouter(t, map[string]any{
		"TwoWay": []any{map[string]any{
			"source":      map[string]any{"identifier": "#ops"},
			"destination": map[string]any{"identifier": "555", "message_template": "**{sender}**: {message}"},
		}},
	})
	ctx := context.Background()

	assert.Equal(t, OutcomeForwarded, r.Handle(ctx, InboundMessage{Side: SideErr, ChatID: "#ops", SenderID: "@a", Body: "up"}))
	assert.Equal(t, OutcomeForwarded, r.Handle(ctx, InboundMessage{Side: SideDiscord, ChatID: "555", SenderID: "9", SenderName: "zed", Body: "ack"}))

	msgs := out.messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, SideDiscord, msgs[0].Side)
	assert.Equal(t, "555", msgs[0].ChatID)
	assert.Equal(t, "**@a**: up", msgs[0].Content, "sender id is used when no display name is known")
	assert.Equal(t, SideErr, msgs[1].Side)
	assert.Equal(t, "#ops", msgs[1].ChatID)
	assert.Equal(t, "**zed**: ack", msgs[1].Content)
}

func TestRouterDirectMessagesKeyedBySender(t *testing.T) {
	r, out := newTestRouter(t, map[string]any{
		"OneWay": []any{rule("discord", "42", "err", "@ops")},
	})
	ctx := context.Background()

	// A DM from user 42 routes by sender, whatever the DM channel id is.
	dm := InboundMessage{Side: SideDiscord, ChatID: "dm-channel", SenderID: "42", SenderName: "u", Body: "psst", Direct: true}
	assert.Equal(t, Key(SideDiscord, "42"), dm.RoutingKey())
	assert.Equal(t, OutcomeForwarded, r.Handle(ctx, dm))

	// The same user in a channel routes by channel id and finds nothing.
	room := dm
	room.Direct = false
	assert.Equal(t, Key(SideDiscord, "dm-channel"), room.RoutingKey())
	assert.Equal(t, OutcomeNoRoute, r.Handle(ctx, room))

	assert.Len(t, out.messages(), 1)
}

func TestRouterDrops(t *testing.T) {
	doc := map[string]any{
		"OneWay": []any{rule("discord", "1", "err", "@x")},
		"Config": map[string]any{"ignore_all_bots": true},
	}
	r, out := newTestRouter(t, doc)
	r.SetSelf(SideDiscord, "bot-id")
	ctx := context.Background()
	before := r.Config().Destinations()

	base := InboundMessage{Side: SideDiscord, ChatID: "1", SenderID: "u", Body: "text"}

	empty := base
	empty.Body = ""
	assert.Equal(t, OutcomeEmpty, r.Handle(ctx, empty))

	self := base
	self.SenderID = "bot-id"
	assert.Equal(t, OutcomeSelf, r.Handle(ctx, self))

	bot := base
	bot.FromBot = true
	assert.Equal(t, OutcomeBot, r.Handle(ctx, bot))

	assert.Empty(t, out.messages())
	assert.Same(t, before, r.Config().Destinations())

	assert.Equal(t, OutcomeForwarded, r.Handle(ctx, base))
}

func TestRouterSelfFilterCanBeDisabled(t *testing.T) {
	r, out := newTestRouter(t, map[string]any{
		"OneWay": []any{rule("err", "#r", "discord", "1")},
		"Config": map[string]any{"ignore_messages_from_self": false},
	})
	r.SetSelf(SideErr, "@bridge")

	got := r.Handle(context.Background(), InboundMessage{Side: SideErr, ChatID: "#r", SenderID: "@bridge", Body: "echo"})
	assert.Equal(t, OutcomeForwarded, got)
	assert.Len(t, out.messages(), 1)
}

func TestRouterReplyIsUnimplemented(t *testing.T) {
	r, out := newTestRouter(t, map[string]any{
		"Reply": []any{rule("err", "#help", "discord", "77")},
	})
	ctx := context.Background()

	assert.Equal(t, OutcomeReplyUnimplemented, r.Handle(ctx, InboundMessage{Side: SideErr, ChatID: "#help", SenderID: "@a", Body: "q"}))
	assert.Equal(t, OutcomeReplyUnimplemented, r.Handle(ctx, InboundMessage{Side: SideDiscord, ChatID: "77", SenderID: "1", Body: "a"}))
	assert.Empty(t, out.messages())
}

func TestRouterPublishFailureIsIsolated(t *testing.T) {
	r, out := newTestRouter(t, map[string]any{
		"OneWay": []any{rule("err", "#r", "discord", "1")},
	})
	out.err = errors.New("queue full")
	msg := InboundMessage{Side: SideErr, ChatID: "#r", SenderID: "@a", Body: "x"}

	assert.Equal(t, OutcomeUndelivered, r.Handle(context.Background(), msg))
	out.err = nil
	assert.Equal(t, OutcomeForwarded, r.Handle(context.Background(), msg))
}

func TestRouterSwap(t *testing.T) {
	r, out := newTestRouter(t, map[string]any{
		"OneWay": []any{rule("err", "#old", "discord", "1")},
	})
	next, err := Parse(map[string]any{"OneWay": []any{rule("err", "#new", "discord", "2")}})
	require.NoError(t, err)

	prev := r.Swap(next)
	assert.Equal(t, "#old", prev.OneWay[0].Source.Identifier)
	assert.Same(t, next, r.Config())

	ctx := context.Background()
	assert.Equal(t, OutcomeNoRoute, r.Handle(ctx, InboundMessage{Side: SideErr, ChatID: "#old", SenderID: "@a", Body: "x"}))
	assert.Equal(t, OutcomeForwarded, r.Handle(ctx, InboundMessage{Side: SideErr, ChatID: "#new", SenderID: "@a", Body: "x"}))
	assert.Equal(t, "2", out.messages()[0].ChatID)
}

type sliceSource struct {
	msgs []InboundMessage
}

func (s *sliceSource) ConsumeInbound(context.Context) (InboundMessage, bool) {
	if len(s.msgs) == 0 {
		return InboundMessage{}, false
	}
	m := s.msgs[0]
	s.msgs = s.msgs[1:]
	return m, true
}

type panickingOutbox struct{ calls int }

func (p *panickingOutbox) PublishOutbound(context.Context, Outbound) error {
	p.calls++
	if p.calls == 1 {
		panic("boom")
	}
	return nil
}

func TestRouterRunIsolatesMessages(t *testing.T) {
	cfg, err := Parse(map[string]any{"OneWay": []any{rule("err", "#r", "discord", "1")}})
	require.NoError(t, err)
	out := &panickingOutbox{}
	r := NewRouter(cfg, out)

	msg := InboundMessage{Side: SideErr, ChatID: "#r", SenderID: "@a", Body: "x"}
	src := &sliceSource{msgs: []InboundMessage{msg, {Side: SideErr, ChatID: "#nowhere", Body: "y"}, msg}}

	assert.NotPanics(t, func() { r.Run(context.Background(), src) })
	assert.Equal(t, 2, out.calls)
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "forwarded", OutcomeForwarded.String())
	assert.Equal(t, "reply_unimplemented", OutcomeReplyUnimplemented.String())
	assert.Equal(t, "outcome(99)", Outcome(99).String())
}

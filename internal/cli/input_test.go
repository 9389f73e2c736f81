package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseInput(t *testing.T) {
	tests := []struct {
		line string
		want Input
	}{
		{"", Input{Kind: InputNone}},
		{"   ", Input{Kind: InputNone}},
		{"hello there", Input{Kind: InputText, Arg: "hello there"}},
		{"  padded  ", Input{Kind: InputText, Arg: "padded"}},
		{"//etc/hosts", Input{Kind: InputText, Arg: "/etc/hosts"}},
		{"/as @bob", Input{Kind: InputAs, Arg: "@bob"}},
		{"/as bob", Input{Kind: InputAs, Arg: "@bob"}},
		{"/join #ops", Input{Kind: InputJoin, Arg: "#ops"}},
		{"/JOIN ops", Input{Kind: InputJoin, Arg: "#ops"}},
		{"/dm", Input{Kind: InputDM}},
		{"/bot", Input{Kind: InputBot}},
		{"/help", Input{Kind: InputHelp}},
		{"/quit", Input{Kind: InputQuit}},
		{":q", Input{Kind: InputQuit}},
		{"/as", Input{Kind: InputInvalid, Arg: "usage: /as @person"}},
		{"/join  ", Input{Kind: InputInvalid, Arg: "usage: /join #room"}},
		{"/shrug", Input{Kind: InputInvalid, Arg: "unknown command /shrug (try /help)"}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseInput(tt.line), "line %q", tt.line)
	}
}

func TestConsoleStateApply(t *testing.T) {
	s := consoleState{person: "@alice", room: "#general"}

	_, post, quit := s.apply(ParseInput("hi"))
	require.NotNil(t, post)
	assert.False(t, quit)
	assert.Equal(t, ConsolePost{Person: "@alice", Room: "#general", Text: "hi"}, *post)

	note, post, _ := s.apply(ParseInput("/as bob"))
	assert.Nil(t, post)
	assert.Equal(t, "now posting as @bob", note)

	s.apply(ParseInput("/dm"))
	s.apply(ParseInput("/bot"))
	assert.Equal(t, "@bob (bot) direct", s.where())

	_, post, _ = s.apply(ParseInput("secret"))
	require.NotNil(t, post)
	assert.True(t, post.Direct)
	assert.True(t, post.Bot)
	assert.Equal(t, "@bob", post.Person)

	// Joining a room leaves the direct conversation.
	s.apply(ParseInput("/join #ops"))
	assert.False(t, s.direct)
	assert.Equal(t, "@bob (bot) in #ops", s.where())

	_, _, quit = s.apply(ParseInput("/exit"))
	assert.True(t, quit)

	note, _, _ = s.apply(ParseInput("/help"))
	assert.Contains(t, note, "/join #room")
}

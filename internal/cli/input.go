package cli

import "strings"

// InputKind says what a console input line asks for.
type InputKind int

const (
	InputNone InputKind = iota
	InputText
	InputAs
	InputJoin
	InputDM
	InputBot
	InputHelp
	InputQuit
	InputInvalid
)

// Input is a parsed console line. Arg holds the text to post, the new
// person or room, or the problem for InputInvalid.
type Input struct {
	Kind InputKind
	Arg  string
}

// ParseInput interprets one line typed into the console. A leading "//"
// posts a literal slash.
func ParseInput(line string) Input {
	line = strings.TrimSpace(line)
	if line == "" {
		return Input{Kind: InputNone}
	}
	if strings.HasPrefix(line, "//") {
		return Input{Kind: InputText, Arg: line[1:]}
	}
	if isExitCmd(line) {
		return Input{Kind: InputQuit}
	}
	if !strings.HasPrefix(line, "/") {
		return Input{Kind: InputText, Arg: line}
	}

	cmd, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)
	switch strings.ToLower(cmd) {
	case "/as":
		if arg == "" {
			return Input{Kind: InputInvalid, Arg: "usage: /as @person"}
		}
		return Input{Kind: InputAs, Arg: prefixed(arg, "@")}
	case "/join":
		if arg == "" {
			return Input{Kind: InputInvalid, Arg: "usage: /join #room"}
		}
		return Input{Kind: InputJoin, Arg: prefixed(arg, "#")}
	case "/dm":
		return Input{Kind: InputDM}
	case "/bot":
		return Input{Kind: InputBot}
	case "/help":
		return Input{Kind: InputHelp}
	default:
		return Input{Kind: InputInvalid, Arg: "unknown command " + cmd + " (try /help)"}
	}
}

func prefixed(s, prefix string) string {
	if strings.HasPrefix(s, prefix) {
		return s
	}
	return prefix + s
}

func isExitCmd(s string) bool {
	s = strings.ToLower(s)
	return s == "/exit" || s == "/quit" || s == ":q"
}

// ConsolePost is a message the operator typed into the console.
type ConsolePost struct {
	Person string
	Room   string
	Direct bool
	Bot    bool
	Text   string
}

// consoleState is who the operator is posting as and where.
type consoleState struct {
	person string
	room   string
	direct bool
	bot    bool
}

// apply updates the state for in. It returns a note to show, the post to
// submit if any, and whether the console should quit.
func (s *consoleState) apply(in Input) (note string, post *ConsolePost, quit bool) {
	switch in.Kind {
	case InputText:
		return "", &ConsolePost{
			Person: s.person,
			Room:   s.room,
			Direct: s.direct,
			Bot:    s.bot,
			Text:   in.Arg,
		}, false
	case InputAs:
		s.person = in.Arg
		return "now posting as " + s.person, nil, false
	case InputJoin:
		s.room = in.Arg
		s.direct = false
		return "joined " + s.room, nil, false
	case InputDM:
		s.direct = !s.direct
		if s.direct {
			return "direct conversation with the bridge", nil, false
		}
		return "back in " + s.room, nil, false
	case InputBot:
		s.bot = !s.bot
		if s.bot {
			return s.person + " is now flagged as a bot", nil, false
		}
		return s.person + " is no longer flagged as a bot", nil, false
	case InputHelp:
		return helpText, nil, false
	case InputQuit:
		return "", nil, true
	case InputInvalid:
		return in.Arg, nil, false
	}
	return "", nil, false
}

// where describes the current posting target.
func (s *consoleState) where() string {
	who := s.person
	if s.bot {
		who += " (bot)"
	}
	if s.direct {
		return who + " direct"
	}
	return who + " in " + s.room
}

const helpText = `/as @person   post as another person
/join #room   post into another room
/dm           toggle a direct conversation with the bridge
/bot          toggle the bot flag on your posts
//text        post text starting with a slash
/quit         stop the bridge`

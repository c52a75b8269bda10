package lilhelper

import (
	"strings"
)

// completionWords is a snapshot of the names the input goroutine may
// complete, refreshed by the event loop.
type completionWords struct {
	channels []string
	users    []string
}

func (app *App) refreshWords() {
	var w completionWords
	for _, c := range app.registry.List() {
		w.channels = append(w.channels, c.Name)
	}
	w.users = app.ledger.Users()

	app.wordsMu.Lock()
	app.words = w
	app.wordsMu.Unlock()
}

func (app *App) currentWords() completionWords {
	app.wordsMu.Lock()
	defer app.wordsMu.Unlock()
	return app.words
}

// AutoComplete completes the word before the cursor when tab is pressed:
// command names first, then channel names or banned users depending on the
// command.  It has the signature of [term.Terminal.AutoCompleteCallback].
func (app *App) AutoComplete(line string, pos int, key rune) (newLine string, newPos int, ok bool) {
	if key != '\t' || pos < 0 || len(line) < pos {
		return
	}

	text := []rune(line[:pos])
	start := len(text)
	for 0 < start && text[start-1] != ' ' {
		start--
	}
	word := string(text[start:])

	var candidates []string
	prefix := strings.TrimLeft(string(text[:start]), " ")
	if prefix == "" || prefix == "/" {
		word = strings.TrimPrefix(word, "/")
		candidates = app.completionsCommand(word)
	} else if strings.Count(strings.TrimSpace(prefix), " ") == 0 {
		candidates = app.completionsArgument(prefix, word)
	}

	completion, full := commonPrefix(candidates, word)
	if completion == "" || (completion == word && !full) {
		return
	}
	if full {
		completion += " "
	}

	head := line[:pos-len(word)]
	newLine = head + completion + line[pos:]
	newPos = len(head) + len(completion)
	ok = true
	return
}

func (app *App) completionsCommand(word string) (cs []string) {
	upper := strings.ToUpper(word)
	lower := word == strings.ToLower(word)
	for _, name := range commandNames() {
		if !strings.HasPrefix(name, upper) {
			continue
		}
		if lower {
			name = strings.ToLower(name)
		}
		cs = append(cs, name)
	}
	return
}

func (app *App) completionsArgument(prefix, word string) (cs []string) {
	cmdName, _ := parseCommand(prefix)
	name, _, err := findCommand(cmdName)
	if err != nil {
		return
	}

	words := app.currentWords()
	var names []string
	switch name {
	case "REMOVE", "ENABLE", "DISABLE":
		names = words.channels
	case "BAN", "UNBAN", "BANS":
		names = words.users
	default:
		return
	}

	hash := strings.HasPrefix(word, "#")
	lower := strings.ToLower(strings.TrimPrefix(word, "#"))
	for _, n := range names {
		if !strings.HasPrefix(strings.ToLower(n), lower) {
			continue
		}
		if hash {
			n = "#" + n
		}
		cs = append(cs, n)
	}
	return
}

// commonPrefix returns the longest prefix shared by the candidates, and
// whether it designates a single candidate.
func commonPrefix(candidates []string, word string) (string, bool) {
	if len(candidates) == 0 {
		return "", false
	}
	if len(candidates) == 1 {
		return candidates[0], true
	}

	res := candidates[0]
	for _, c := range candidates[1:] {
		i := 0
		for i < len(res) && i < len(c) && res[i] == c[i] {
			i++
		}
		res = res[:i]
	}
	if len(res) < len(word) {
		return word, false
	}
	return res, false
}

package runner

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/aretw0/waypoint/pkg/domain"
)

// ErrUnknownCommand is returned for command names the player does not know.
var ErrUnknownCommand = errors.New("unknown command")

// Command names.
const (
	CmdStart     = "start"
	CmdNext      = "next"
	CmdPrev      = "prev"
	CmdEdit      = "edit"
	CmdHome      = "home"
	CmdTour      = "tour"
	CmdSet       = "set"
	CmdTemplate  = "template"
	CmdTemplates = "templates"
	CmdSubmit    = "submit"
	CmdReset     = "reset"
	CmdDelete    = "delete"
	CmdMove      = "move"
	CmdGoto      = "goto"
	CmdSteps     = "steps"
	CmdHelp      = "help"
	CmdQuit      = "quit"
)

var aliases = map[string]string{
	"n":    CmdNext,
	"p":    CmdPrev,
	"q":    CmdQuit,
	"exit": CmdQuit,
	"rm":   CmdDelete,
	"?":    CmdHelp,
}

// intentOf maps the commands that are plain intents.
var intentOf = map[string]domain.Intent{
	CmdStart:  domain.IntentStartDemo,
	CmdNext:   domain.IntentNextStep,
	CmdPrev:   domain.IntentPrevStep,
	CmdEdit:   domain.IntentOpenEditor,
	CmdHome:   domain.IntentBackToHero,
	CmdTour:   domain.IntentBackToTour,
	CmdSubmit: domain.IntentSubmit,
	CmdReset:  domain.IntentResetDraft,
}

var arity = map[string]int{
	CmdSet:      2,
	CmdTemplate: 1,
	CmdDelete:   1,
	CmdMove:     2,
	CmdGoto:     1,
}

// Command is one parsed player command.
type Command struct {
	Name string
	Args []string
}

// Intent returns the intent the command stands for, if it is a plain intent.
func (c Command) Intent() (domain.Intent, bool) {
	i, ok := intentOf[c.Name]
	return i, ok
}

// Destructive reports whether the command discards authored content.
func (c Command) Destructive() bool {
	return c.Name == CmdDelete
}

// Position parses argument i as a 1-based step position and returns the
// 0-based index.
func (c Command) Position(i int) (int, error) {
	n, err := strconv.Atoi(c.Args[i])
	if err != nil {
		return 0, fmt.Errorf("%s: position %q is not a number", c.Name, c.Args[i])
	}
	return n - 1, nil
}

// ParseCommand splits a line into a command. For set, the value is the rest
// of the line and a literal \n becomes a line break.
func ParseCommand(line string) (Command, error) {
	line = strings.TrimSpace(line)
	name, rest, _ := strings.Cut(line, " ")
	name = strings.ToLower(name)
	if alias, ok := aliases[name]; ok {
		name = alias
	}
	rest = strings.TrimSpace(rest)

	cmd := Command{Name: name}
	switch name {
	case CmdSet:
		field, value, _ := strings.Cut(rest, " ")
		if field != "" {
			cmd.Args = []string{strings.ToLower(field), strings.ReplaceAll(strings.TrimSpace(value), `\n`, "\n")}
		}
	case CmdTemplate:
		if rest != "" {
			cmd.Args = []string{rest}
		}
	default:
		if _, known := intentOf[name]; !known && !isLocal(name) {
			return Command{}, fmt.Errorf("%w: %q (type help)", ErrUnknownCommand, name)
		}
		cmd.Args = strings.Fields(rest)
	}

	if want := arity[name]; len(cmd.Args) < want {
		return Command{}, fmt.Errorf("%s: expected %d argument(s)", name, want)
	}
	return cmd, nil
}

func isLocal(name string) bool {
	switch name {
	case CmdSet, CmdTemplate, CmdTemplates, CmdDelete, CmdMove, CmdGoto, CmdSteps, CmdHelp, CmdQuit:
		return true
	}
	return false
}

// Help lists the player commands.
const Help = `Commands:
  start              begin the tour
  next, n / prev, p  move through the steps
  goto <n>           jump to step n
  edit               open the step editor
  home               back to the landing view
  tour               back to the tour from the editor
  set <field> <val>  set title, description, image or category
  template <name>    prefill the draft from a template
  templates          list templates
  submit             add the draft as a new step
  reset              clear the draft
  steps              list steps
  delete <id>        remove a step
  move <from> <to>   reorder steps (1-based positions)
  quit               leave the player`

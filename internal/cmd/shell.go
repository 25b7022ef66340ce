package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/shlex"
	"github.com/spf13/cobra"

	"github.com/runger/cinematch/internal/picker"
	"github.com/runger/cinematch/internal/recommend"
	"github.com/runger/cinematch/internal/render"
)

var shellCmd = &cobra.Command{
	Use:     "shell",
	Short:   "Start an interactive recommendation session",
	Long:    "Start an interactive session over one loaded catalog.\n\n" + shellHelp,
	Args:    cobra.NoArgs,
	GroupID: groupCore,
	RunE:    runShell,
}

const shellHelp = `Commands:
  similar <title> [n]       movies closest to a title (quote titles ending in a number)
  prefs feature=value ...   movies closest to stated preferences
  titles <query>            list matching titles
  n <count>                 set the number of results
  features                  show feature columns
  help                      show this help
  quit                      leave the session
`

// errQuit ends the session.
var errQuit = errors.New("quit")

// shellSession holds the state of one interactive session. The prompt
// chooser reads from the same buffered reader as the command loop.
type shellSession struct {
	app     *app
	in      *bufio.Reader
	out     io.Writer
	engine  *recommend.Engine
	printer *render.Printer
	n       int
}

func runShell(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	in := bufio.NewReader(cmd.InOrStdin())
	out := cmd.OutOrStdout()
	s := &shellSession{
		app:     a,
		in:      in,
		out:     out,
		engine:  a.engine(picker.NewLineChooser(in, out)),
		printer: a.printer(out, ""),
		n:       a.cfg.Recommend.DefaultN,
	}
	return s.run(cmdContext(cmd))
}

// run reads and executes commands until quit or end of input.
func (s *shellSession) run(ctx context.Context) error {
	fmt.Fprintf(s.out, "cinematch: %d movies loaded. Type help for commands.\n", s.app.norm.Len())
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		fmt.Fprint(s.out, "cinematch> ")

		line, readErr := s.in.ReadString('\n')
		if strings.TrimSpace(line) != "" {
			err := s.exec(ctx, line)
			if errors.Is(err, errQuit) {
				return nil
			}
			if err != nil {
				fmt.Fprintf(s.out, "error: %v\n", err)
			}
		}
		if readErr != nil {
			fmt.Fprintln(s.out)
			if readErr == io.EOF {
				return nil
			}
			return readErr
		}
	}
}

// exec runs one command line.
func (s *shellSession) exec(ctx context.Context, line string) error {
	words, err := shlex.Split(line)
	if err != nil {
		return fmt.Errorf("cannot parse command: %w", err)
	}
	if len(words) == 0 {
		return nil
	}

	switch strings.ToLower(words[0]) {
	case "similar", "s":
		return s.similar(ctx, words[1:])
	case "prefs", "p":
		return s.prefs(ctx, words[1:])
	case "titles", "t":
		return s.titles(words[1:])
	case "n":
		return s.setN(words[1:])
	case "features", "f":
		return s.printer.Features(render.FeatureRows(s.app.raw, s.app.cfg.Catalog.Scale))
	case "help", "?":
		_, err := io.WriteString(s.out, shellHelp)
		return err
	case "quit", "exit", "q":
		return errQuit
	default:
		return fmt.Errorf("unknown command %q (type help)", words[0])
	}
}

func (s *shellSession) similar(ctx context.Context, args []string) error {
	n := s.n
	if len(args) >= 2 {
		if v, err := strconv.Atoi(args[len(args)-1]); err == nil {
			if v < 1 {
				return fmt.Errorf("invalid count %d: must be positive", v)
			}
			n = v
			args = args[:len(args)-1]
		}
	}
	title := strings.TrimSpace(strings.Join(args, " "))
	if title == "" {
		return errors.New("usage: similar <title> [n]")
	}
	return s.recommend(ctx, recommend.Request{Title: title, N: n})
}

func (s *shellSession) prefs(ctx context.Context, args []string) error {
	prefs, err := parsePrefs(args)
	if err != nil {
		return err
	}
	return s.recommend(ctx, recommend.Request{N: s.n, Preferences: prefs})
}

func (s *shellSession) recommend(ctx context.Context, req recommend.Request) error {
	res, err := s.engine.Recommend(ctx, req)
	if err != nil {
		if selectionAborted(err) {
			fmt.Fprintln(s.out, "No movie selected.")
			return nil
		}
		return err
	}
	return s.printer.Result(res)
}

func (s *shellSession) titles(args []string) error {
	query := strings.Join(args, " ")
	if strings.TrimSpace(query) == "" {
		return errors.New("usage: titles <query>")
	}
	matches := recommend.Matches(s.app.raw, query)
	if len(matches) == 0 {
		return s.printer.Warn("Movie not found: " + recommend.Canonicalize(query))
	}
	return s.printer.Titles(matches)
}

func (s *shellSession) setN(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: n <count>")
	}
	v, err := strconv.Atoi(args[0])
	if err != nil || v < 1 {
		return fmt.Errorf("invalid count %q: must be a positive integer", args[0])
	}
	s.n = v
	fmt.Fprintf(s.out, "Showing %d results.\n", v)
	return nil
}

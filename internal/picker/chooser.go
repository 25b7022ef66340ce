package picker

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// ErrCancelled is returned when the user dismisses the picker without
// choosing.
var ErrCancelled = errors.New("selection cancelled")

// TUIChooser asks for a title with the full-screen picker.
type TUIChooser struct {
	In  io.Reader // Terminal input (usually /dev/tty or stdin)
	Out io.Writer // Terminal output

	// opts are extra program options, used by tests to run headless.
	opts []tea.ProgramOption
}

// NewTUIChooser creates a chooser reading keys from in and drawing to out.
func NewTUIChooser(in io.Reader, out io.Writer) *TUIChooser {
	return &TUIChooser{In: in, Out: out}
}

// Choose runs the picker over options and returns the chosen index.
func (c *TUIChooser) Choose(ctx context.Context, options []string) (int, error) {
	header := fmt.Sprintf("%d movies match, pick one", len(options))
	model := NewModel(header, NewOptionsProvider(options))

	popts := append([]tea.ProgramOption{
		tea.WithContext(ctx),
		tea.WithInput(c.In),
		tea.WithOutput(c.Out),
		tea.WithAltScreen(),
	}, c.opts...)

	final, err := tea.NewProgram(model, popts...).Run()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return -1, ctxErr
		}
		return -1, fmt.Errorf("picker: %w", err)
	}

	m, ok := final.(Model)
	if !ok {
		return -1, errors.New("picker: unexpected model type")
	}
	if idx, chosen := m.Result(); chosen {
		return idx, nil
	}
	return -1, ErrCancelled
}

// LineChooser asks for a title by printing a numbered list and reading a
// 1-based number from a line of input. It works on pipes and dumb
// terminals.
type LineChooser struct {
	r *bufio.Reader
	w io.Writer
}

// NewLineChooser creates a LineChooser. A *bufio.Reader is used as is so
// a caller reading further lines from the same input loses nothing to
// buffering.
func NewLineChooser(r io.Reader, w io.Writer) *LineChooser {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	return &LineChooser{r: br, w: w}
}

// Choose prints options and returns the 0-based index of the number the
// user enters. Input that is not a number is asked for again here; a
// number outside the list is returned for the caller to reject. End of
// input returns io.EOF.
func (c *LineChooser) Choose(ctx context.Context, options []string) (int, error) {
	fmt.Fprintln(c.w, "Multiple movies match:")
	for i, o := range options {
		fmt.Fprintf(c.w, "  %d) %s\n", i+1, o)
	}

	for {
		if err := ctx.Err(); err != nil {
			return -1, err
		}
		fmt.Fprintf(c.w, "Select a movie [1-%d]: ", len(options))

		line, err := c.r.ReadString('\n')
		text := strings.TrimSpace(line)
		if err != nil && (err != io.EOF || text == "") {
			fmt.Fprintln(c.w)
			return -1, err
		}

		n, convErr := strconv.Atoi(text)
		if convErr == nil {
			if n < 1 || n > len(options) {
				fmt.Fprintf(c.w, "%d is not between 1 and %d.\n", n, len(options))
			}
			return n - 1, nil
		}
		if err == io.EOF {
			fmt.Fprintln(c.w)
			return -1, io.EOF
		}
		fmt.Fprintf(c.w, "%q is not a number.\n", text)
	}
}

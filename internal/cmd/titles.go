package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/runger/cinematch/internal/recommend"
	"github.com/runger/cinematch/internal/render"
)

var (
	titlesLimit int
	titlesJSON  bool
)

var titlesCmd = &cobra.Command{
	Use:   "titles <query>",
	Short: "List catalog titles matching a partial title",
	Long: `List every catalog title containing the query, ignoring case, in
catalog order. This is the candidate list recommend would ask you to pick
from.`,
	Args:    cobra.MinimumNArgs(1),
	GroupID: groupCore,
	RunE:    runTitles,
}

func init() {
	titlesCmd.Flags().IntVar(&titlesLimit, "limit", 0, "maximum number of titles (0 = all)")
	titlesCmd.Flags().BoolVar(&titlesJSON, "json", false, "output as JSON")
}

func runTitles(cmd *cobra.Command, args []string) error {
	if titlesLimit < 0 {
		return fmt.Errorf("invalid --limit %d", titlesLimit)
	}

	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	query := strings.Join(args, " ")
	matches := recommend.Matches(a.raw, query)
	if titlesLimit > 0 && len(matches) > titlesLimit {
		matches = matches[:titlesLimit]
	}

	if a.wantJSON(titlesJSON) {
		if matches == nil {
			matches = []string{}
		}
		return render.JSON(cmd.OutOrStdout(), matches)
	}

	p := a.printer(cmd.OutOrStdout(), "")
	if len(matches) == 0 {
		return p.Warn("Movie not found: " + recommend.Canonicalize(query))
	}
	return p.Titles(matches)
}

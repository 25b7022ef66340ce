package cmd

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/runger/cinematch/internal/recommend"
	"github.com/runger/cinematch/internal/render"
)

var (
	recommendN       int
	recommendPrefs   []string
	recommendJSON    bool
	recommendChooser string
	recommendColor   string
)

var recommendCmd = &cobra.Command{
	Use:     "recommend [title]",
	Aliases: []string{"rec", "similar"},
	Short:   "Recommend movies similar to a title or matching preferences",
	Long: `Recommend movies by distance over normalized catalog features.

With a title, the closest movies to that title are listed. The title may be
partial and is matched case-insensitively; when several catalog titles match
you are asked to pick one.

Without a title, a query is built from preferences: every continuous feature
starts at its catalog maximum and each --pref overrides one feature.
Preference values are in normalized units (0..scale for continuous features,
0 or 1 for genres). Unknown feature names are ignored with a warning.

Examples:
  cinematch recommend pocahontas
  cinematch recommend "toy story" -n 5
  cinematch recommend --pref Drama=1 --pref year=0.5 --json`,
	GroupID: groupCore,
	RunE:    runRecommend,
}

func init() {
	recommendCmd.Flags().IntVarP(&recommendN, "count", "n", 0, "number of recommendations (default recommend.default_n)")
	recommendCmd.Flags().StringArrayVarP(&recommendPrefs, "pref", "p", nil, "preference as feature=value (repeatable)")
	recommendCmd.Flags().BoolVar(&recommendJSON, "json", false, "output as JSON")
	recommendCmd.Flags().StringVar(&recommendChooser, "chooser", "", "title chooser: prompt or picker (default recommend.chooser)")
	recommendCmd.Flags().StringVar(&recommendColor, "color", "", "color output: auto, always, or never")
}

func runRecommend(cmd *cobra.Command, args []string) error {
	if recommendN < 0 {
		return fmt.Errorf("invalid -n %d: must be positive", recommendN)
	}
	if err := validateColorFlag(recommendColor); err != nil {
		return err
	}
	switch recommendChooser {
	case "", "prompt", "picker":
	default:
		return fmt.Errorf("invalid --chooser %q (must be prompt or picker)", recommendChooser)
	}

	prefs, err := parsePrefs(recommendPrefs)
	if err != nil {
		return err
	}
	title := strings.TrimSpace(strings.Join(args, " "))
	if title != "" && len(prefs) > 0 {
		return errors.New("give either a title or --pref values, not both")
	}

	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	n := recommendN
	if n == 0 {
		n = a.cfg.Recommend.DefaultN
	}
	mode := a.cfg.Recommend.Chooser
	if recommendChooser != "" {
		mode = recommendChooser
	}

	eng := a.engine(chooserFor(mode, cmd.InOrStdin(), cmd.ErrOrStderr()))
	res, err := eng.Recommend(cmdContext(cmd), recommend.Request{Title: title, N: n, Preferences: prefs})
	if err != nil {
		if selectionAborted(err) {
			fmt.Fprintln(cmd.ErrOrStderr(), "No movie selected.")
			return nil
		}
		return err
	}

	if a.wantJSON(recommendJSON) {
		return render.JSON(cmd.OutOrStdout(), res)
	}
	return a.printer(cmd.OutOrStdout(), recommendColor).Result(res)
}

// parsePrefs parses feature=value pairs. A later pair for the same feature
// wins.
func parsePrefs(pairs []string) (map[string]float64, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	prefs := make(map[string]float64, len(pairs))
	for _, p := range pairs {
		name, raw, ok := strings.Cut(p, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid preference %q (want feature=value)", p)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid value for preference %s: %w", name, err)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("invalid value for preference %s: must be finite", name)
		}
		prefs[name] = v
	}
	return prefs, nil
}

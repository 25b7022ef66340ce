package cmd

import (
	"github.com/spf13/cobra"

	"github.com/runger/cinematch/internal/render"
)

var featuresJSON bool

var featuresCmd = &cobra.Command{
	Use:   "features",
	Short: "Show the catalog's feature columns",
	Long: `Show every feature column of the catalog with its kind, the minimum
and maximum in source units, and the normalization scale of continuous
features. Feature names are what --pref accepts.`,
	Args:    cobra.NoArgs,
	GroupID: groupCore,
	RunE:    runFeatures,
}

func init() {
	featuresCmd.Flags().BoolVar(&featuresJSON, "json", false, "output as JSON")
}

func runFeatures(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	rows := render.FeatureRows(a.raw, a.cfg.Catalog.Scale)
	if a.wantJSON(featuresJSON) {
		return render.JSON(cmd.OutOrStdout(), rows)
	}
	return a.printer(cmd.OutOrStdout(), "").Features(rows)
}

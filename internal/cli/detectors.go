package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dshills/premerge/internal/detect"
)

var flagDetectorsJSON bool

var detectorsCmd = &cobra.Command{
	Use:   "detectors",
	Short: "Inspect the detector catalogue",
}

type detectorInfo struct {
	Name        string          `json:"name"`
	Set         detect.Set      `json:"set"`
	Severity    detect.Severity `json:"severity"`
	Pattern     string          `json:"pattern"`
	Remediation string          `json:"remediation"`
}

var detectorsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List builtin and custom detectors in evaluation order",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		defs, err := detect.LoadDefinitions(cfg.RulesFile)
		if err != nil {
			fail(err)
			return nil
		}
		reg, err := detect.Build(defs)
		if err != nil {
			fail(err)
			return nil
		}

		var infos []detectorInfo
		for _, d := range reg.All() {
			infos = append(infos, detectorInfo{
				Name:        d.Name,
				Set:         d.Set,
				Severity:    d.Severity,
				Pattern:     d.Pattern.String(),
				Remediation: d.Remediation,
			})
		}

		out := cmd.OutOrStdout()
		if flagDetectorsJSON {
			data, err := json.MarshalIndent(infos, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(out, string(data))
			return nil
		}

		fmt.Fprintf(out, "%-7s %-9s %s\n", "SET", "SEVERITY", "NAME")
		for _, info := range infos {
			fmt.Fprintf(out, "%-7s %-9s %s\n", info.Set, info.Severity, info.Name)
		}
		return nil
	},
}

func init() {
	detectorsCmd.AddCommand(detectorsListCmd)
	detectorsListCmd.Flags().BoolVar(&flagDetectorsJSON, "json", false, "Print detectors as JSON")
	detectorsListCmd.Flags().StringVar(&flagRules, "rules", "", "Custom detectors file (YAML)")
}


package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/coolbeans/convictions/pkg/iucr"
	"github.com/coolbeans/convictions/pkg/statute"
)

func classifyCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classify <statute>...",
		Short: "Resolve statutes to IUCR offense codes",
		Long: `Resolve raw statute citations to IUCR offense codes.

Each statute prints one line per matching offense, or the reason it could
not be classified.

Example:
  convictions classify "720-570/402(c)" "38 9-1E" "720-5/8-4 (720-5/9-1)"
  convictions classify --json "56.5-704-D"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			asJSON, _ := cmd.Flags().GetBool("json")
			out := cmd.OutOrStdout()

			var resolutions []*statute.Resolution
			for _, raw := range args {
				resolution, err := app.classifier.Resolve(raw)
				if err != nil {
					app.logger.Debug("Unable to classify statute", zap.String("statute", raw), zap.Error(err))
				}
				if asJSON {
					resolutions = append(resolutions, resolution)
					continue
				}

				if err != nil {
					fmt.Fprintf(out, "%s\t%s\n", raw, describeError(err))
					continue
				}
				for _, offense := range resolution.Offenses {
					fmt.Fprintf(out, "%s\t%s\t%s\t%s\n", raw, offense.Code, offense.Category, offense.Description)
				}
				if resolution.Ambiguous() {
					fmt.Fprintf(out, "%s\tambiguous: %d offenses\n", raw, len(resolution.Offenses))
				}
			}

			if asJSON {
				return writeJSON(cmd, "", resolutions)
			}
			return nil
		},
	}

	cmd.Flags().Bool("json", false, "Print every resolution stage as JSON")
	return cmd
}

// describeError names the kind of classification failure.
func describeError(err error) string {
	var (
		formatErr *statute.FormatError
		ilcsErr   *statute.ILCSLookupError
		iucrErr   *statute.IUCRLookupError
	)
	switch {
	case errors.As(err, &formatErr):
		return "format error: " + err.Error()
	case errors.As(err, &ilcsErr):
		return "ILCS lookup error: " + err.Error()
	case errors.As(err, &iucrErr):
		return "IUCR lookup error: " + err.Error()
	default:
		return "error: " + err.Error()
	}
}

func parseCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "parse <statute>",
		Short: "Decompose a statute into chapter, act, section and subsections",
		Long: `Repair a statute, strip any inchoate modifier and decompose it with the
ILCS parser, falling back to the ILRS parser. Nothing is looked up.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repaired := app.repairs.Repair(args[0])
			primary, modifier := statute.StripModifier(repaired)

			parsed, ok := app.classifier.Parse(primary)
			if !ok {
				return &statute.FormatError{RawStatute: args[0]}
			}

			return writeJSON(cmd, "", struct {
				Statute  string            `json:"statute"`
				Repaired string            `json:"repaired"`
				Primary  string            `json:"primary"`
				Modifier *statute.Modifier `json:"modifier,omitempty"`
				Parsed   statute.Parsed    `json:"parsed"`
			}{args[0], repaired, primary, modifier, parsed})
		},
	}
}

func stripCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "strip <statute>",
		Short: "Separate an inchoate-offense modifier from a statute",
		Long: `Separate the attempt, conspiracy or solicitation citation that clerks
packed into the same field as the target offense.

Example:
  convictions strip "720-5/8-4 (720-5/9-1)"
  720-5/9-1	720-5/8-4	attempt`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			primary, modifier := statute.StripModifier(args[0])
			if modifier == nil {
				fmt.Fprintln(cmd.OutOrStdout(), primary)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", primary, modifier.Raw, modifier.Kind)
			return nil
		},
	}
}

func categoriesCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "categories [code]",
		Short: "List IUCR category groups",
		Long: `List the category groups reports bucket convictions into, or the groups
containing one IUCR code.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			registry := iucr.DefaultRegistry()
			out := cmd.OutOrStdout()

			if len(args) == 1 {
				code := strings.ToUpper(args[0])
				if offense, ok := app.offenses.LookupCode(code); ok {
					fmt.Fprintf(out, "%s\t%s\t%s\n", offense.Code, offense.Category, offense.Description)
				}
				for _, name := range registry.GroupsFor(code) {
					fmt.Fprintln(out, name)
				}
				return nil
			}

			for _, group := range registry.Groups() {
				fmt.Fprintf(out, "%s\t%s\t%d codes\n", group.Name, group.Label, len(group.Codes))
			}
			return nil
		},
	}
}

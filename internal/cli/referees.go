package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/dfbnet-assist/internal/referee"
)

var (
	flagForce       bool
	flagRefereeFile string
	flagContext     map[string]string
)

func newRefereesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "referees",
		Short: "Manage the referee store",
	}

	convert := &cobra.Command{
		Use:   "convert",
		Short: "Convert the referee CSV into the JSON store",
		Args:  cobra.NoArgs,
		RunE:  runRefereesConvert,
	}
	convert.Flags().BoolVar(&flagForce, "force", false, "Overwrite an existing JSON store")

	ensure := &cobra.Command{
		Use:   "ensure",
		Short: "Create the JSON store from the CSV or the defaults if it is missing",
		Args:  cobra.NoArgs,
		RunE:  runRefereesEnsure,
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List referee groups",
		Args:  cobra.NoArgs,
		RunE:  runRefereesList,
	}
	list.Flags().StringVar(&flagRefereeFile, "file", "", "Read this file instead of the store")
	list.Flags().StringVar(&flagFormat, "format", "text", "Output format: text or json")

	lookup := &cobra.Command{
		Use:   "lookup",
		Short: "Show the referees for a match context",
		Long: `Show the referees for a match context. The configured target context is
used; --context overrides single keys, e.g. --context Runde="RundeRunde 2".`,
		Args: cobra.NoArgs,
		RunE: runRefereesLookup,
	}
	lookup.Flags().StringVar(&flagRefereeFile, "file", "", "Read this file instead of the store")
	lookup.Flags().StringToStringVar(&flagContext, "context", nil, "Context key=value overrides ("+strings.Join(referee.ContextKeys[:], ", ")+")")
	lookup.Flags().StringVar(&flagFormat, "format", "text", "Output format: text or json")

	cmd.AddCommand(convert, ensure, list, lookup)
	return cmd
}

func runRefereesConvert(cmd *cobra.Command, args []string) error {
	e, err := setup(cmd)
	if err != nil {
		return err
	}
	groups, err := e.store().ConvertCSV(flagForce)
	if err != nil {
		return err
	}
	fmt.Fprintf(e.out, "Converted %s to %s (%d groups)\n", e.cfg.RefereeCSV, e.cfg.RefereeJSON, len(groups))
	return nil
}

func runRefereesEnsure(cmd *cobra.Command, args []string) error {
	e, err := setup(cmd)
	if err != nil {
		return err
	}
	store := e.store()
	store.Ensure()
	if _, err := os.Stat(store.JSONPath()); err != nil {
		return fmt.Errorf("referee store unavailable: %w", err)
	}
	fmt.Fprintf(e.out, "Referee store ready: %s\n", store.JSONPath())
	return nil
}

func runRefereesList(cmd *cobra.Command, args []string) error {
	e, err := setup(cmd)
	if err != nil {
		return err
	}
	format, err := ParseFormat(flagFormat, FormatText, FormatJSON)
	if err != nil {
		return err
	}
	groups, err := e.store().Load(flagRefereeFile)
	if err != nil {
		return err
	}
	if format == FormatJSON {
		return writeJSON(e.out, groups)
	}

	if len(groups) == 0 {
		fmt.Fprintln(e.out, "No referee groups.")
		return nil
	}
	for i, g := range groups {
		if i > 0 {
			fmt.Fprintln(e.out)
		}
		fmt.Fprintln(e.out, g.Context.Key())
		for _, r := range g.Referees {
			fmt.Fprintf(e.out, "  %s %s\n", r.FirstName, r.LastName)
		}
	}
	return nil
}

func runRefereesLookup(cmd *cobra.Command, args []string) error {
	e, err := setup(cmd)
	if err != nil {
		return err
	}
	format, err := ParseFormat(flagFormat, FormatText, FormatJSON)
	if err != nil {
		return err
	}

	ctx := e.cfg.TargetContext
	for key, value := range flagContext {
		if !ctx.Set(key, value) {
			return fmt.Errorf("unknown context key: %s", key)
		}
	}

	names, err := e.store().FindForContext(ctx, flagRefereeFile)
	if err != nil {
		return err
	}
	if format == FormatJSON {
		return writeJSON(e.out, map[string]interface{}{"context": ctx, "referees": names})
	}
	if len(names) == 0 {
		fmt.Fprintf(e.out, "No referees for %s\n", ctx.Key())
		return nil
	}
	for _, n := range names {
		fmt.Fprintf(e.out, "%s %s\n", n.First(), n.Last())
	}
	return nil
}

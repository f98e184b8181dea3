package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"mtbench/internal/catalog"
)

func newResolveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve MODEL TASK",
		Short: "Print the tokenizer language codes for a model/task pair",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, tgt, err := a.catalog.Resolve(args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", src, tgt)
			return nil
		},
	}
}

func newTasksCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tasks",
		Short: "List translation tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "TASK\tSRC\tTGT\tDIRECTION")
			for _, t := range a.catalog.Tasks() {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s -> %s\n", t.Name, t.SrcLang, t.TgtLang,
					catalog.LanguageName(t.SrcLang), catalog.LanguageName(t.TgtLang))
			}
			return tw.Flush()
		},
	}
}

func newModelsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List supported models",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "MODEL\tFAMILY\tRESTRICTION\tCONTROL")
			for _, m := range a.catalog.Models() {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", m.ID, m.Family, m.Restriction, m.Control)
			}
			return tw.Flush()
		},
	}
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"admissions/internal/shell"
)

func (a *app) sectionsCmd() *cobra.Command {
	var (
		search   string
		category string
	)
	cmd := &cobra.Command{
		Use:   "sections",
		Short: "List configuration sections",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := shell.ParseCategory(category)
			if err != nil {
				return err
			}
			sections := a.catalog().Filter(search, c)
			if len(sections) == 0 {
				fmt.Fprintln(a.term.out, "No sections match")
				return nil
			}
			return a.term.renderSections(sections, "")
		},
	}
	cmd.Flags().StringVar(&search, "search", "", "Filter sections by title, description or keyword")
	cmd.Flags().StringVar(&category, "category", "", "Filter by category (academic, leads, communication, team, integrations)")
	return cmd
}

func (a *app) openCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "open <path>",
		Short: "Open the section answering to a console URL path and list it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sh, err := shell.New(a.catalog(), args[0])
			if err != nil {
				return err
			}
			if _, matched := sh.Registry().Resolve(args[0]); !matched {
				fmt.Fprintf(a.term.err, "No section for %s, opening %s\n", args[0], sh.Active().Title)
			}
			mounted, err := sh.Mount(cmd.Context())
			if err != nil {
				return reported{err}
			}
			fmt.Fprintf(a.term.out, "%s\n\n", sh.Active().Title)
			return a.term.renderView(mounted.View())
		},
	}
}

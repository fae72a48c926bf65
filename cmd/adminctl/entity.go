package main

import (
	"bufio"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"admissions/internal/client"
	"admissions/internal/crud"
	"admissions/internal/screen"
	"admissions/internal/table"
	"admissions/pkg/errors"
)

// entityCmd builds the list/create/edit/duplicate/delete commands of one
// entity on top of its screen.
func entityCmd[T any](a *app, schema crud.Schema[T]) *cobra.Command {
	cmd := &cobra.Command{
		Use:   schema.Path,
		Short: fmt.Sprintf("Manage %s", strings.ReplaceAll(schema.Path, "-", " ")),
	}

	open := func() *screen.Screen[T] {
		return screen.New(schema, client.NewResource(a.client, schema), a.identity(), a.term.notifier(),
			screen.WithFormatter[T](table.ParseLocale(a.cfg.Locale)))
	}

	var (
		search  string
		sortKey string
		desc    bool
		filters []string
	)
	list := &cobra.Command{
		Use:   "list",
		Short: "List records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := open()
			if err := s.Load(cmd.Context()); err != nil {
				return reported{err}
			}
			t := s.Table()
			t.Search(search)
			if sortKey != "" {
				dir := table.Ascending
				if desc {
					dir = table.Descending
				}
				if err := t.SetSort(table.SortState{Key: sortKey, Direction: dir}); err != nil {
					return err
				}
			}
			for _, f := range filters {
				key, value, ok := strings.Cut(f, "=")
				if !ok {
					return fmt.Errorf("filter %q must be key=value", f)
				}
				if err := t.Filter(key, value); err != nil {
					return err
				}
			}
			return a.term.renderView(s.View())
		},
	}
	list.Flags().StringVar(&search, "search", "", "Case-insensitive search over the visible columns")
	list.Flags().StringVar(&sortKey, "sort", "", "Sort by column key")
	list.Flags().BoolVar(&desc, "desc", false, "Sort descending")
	list.Flags().StringArrayVar(&filters, "filter", nil, "Column filter key=value (repeatable)")

	var createSets []string
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a record from the defaults and --set fields",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := open()
			s.Add()
			if err := applySets(s, createSets); err != nil {
				return err
			}
			return saveAndShow(a, cmd, s)
		},
	}
	create.Flags().StringArrayVar(&createSets, "set", nil, "Field assignment key=value (repeatable)")

	var editSets []string
	edit := &cobra.Command{
		Use:   "edit <id>",
		Short: "Update fields of a record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := open()
			if err := s.Load(cmd.Context()); err != nil {
				return reported{err}
			}
			if err := s.Edit(args[0]); err != nil {
				return err
			}
			if err := applySets(s, editSets); err != nil {
				return err
			}
			return saveAndShow(a, cmd, s)
		},
	}
	edit.Flags().StringArrayVar(&editSets, "set", nil, "Field assignment key=value (repeatable)")

	var dupSets []string
	duplicate := &cobra.Command{
		Use:   "duplicate <id>",
		Short: "Create a copy of a record, optionally changing fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := open()
			if err := s.Load(cmd.Context()); err != nil {
				return reported{err}
			}
			if err := s.Duplicate(args[0]); err != nil {
				return err
			}
			if err := applySets(s, dupSets); err != nil {
				return err
			}
			return saveAndShow(a, cmd, s)
		},
	}
	duplicate.Flags().StringArrayVar(&dupSets, "set", nil, "Field assignment key=value (repeatable)")

	var yes bool
	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a record after confirmation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s := open()
			if err := s.Load(ctx); err != nil {
				return reported{err}
			}
			if err := s.RequestDelete(args[0]); err != nil {
				return err
			}
			row, _ := s.PendingDelete()
			if !yes {
				ok, err := a.confirm(fmt.Sprintf("Delete %s %q?", strings.ToLower(schema.Title), schema.LabelOf(row)))
				if err != nil {
					return err
				}
				if !ok {
					s.CancelDelete()
					fmt.Fprintln(a.term.err, "Cancelled")
					return nil
				}
			}
			if err := s.ConfirmDelete(ctx); err != nil {
				return reported{err}
			}
			return nil
		},
	}
	del.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")

	cmd.AddCommand(list, create, edit, duplicate, del)
	return cmd
}

func saveAndShow[T any](a *app, cmd *cobra.Command, s *screen.Screen[T]) error {
	if err := s.Save(cmd.Context()); err != nil {
		if errors.IsValidation(err) && strings.Contains(err.Error(), "expression") {
			a.term.expressionHints()
		}
		return reported{err}
	}
	return a.term.renderView(s.View())
}

// applySets assigns each key=value. A value is read as JSON first (numbers,
// booleans, arrays, null), then as a plain string, then as a comma separated
// list.
func applySets[T any](s *screen.Screen[T], sets []string) error {
	for _, set := range sets {
		key, raw, ok := strings.Cut(set, "=")
		if !ok || key == "" {
			return fmt.Errorf("--set %q must be key=value", set)
		}

		var candidates []interface{}
		var decoded interface{}
		if err := json.Unmarshal([]byte(raw), &decoded); err == nil {
			candidates = append(candidates, decoded)
		}
		candidates = append(candidates, raw)
		if raw == "" {
			candidates = append(candidates, []string{})
		} else {
			candidates = append(candidates, splitList(raw))
		}

		var err error
		for _, v := range candidates {
			if err = s.SetField(key, v); err == nil || stderrors.Is(err, screen.ErrUnknownField) {
				break
			}
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// confirm asks a yes/no question on the terminal. Without a terminal the
// answer must come from --yes.
func (a *app) confirm(question string) (bool, error) {
	fmt.Fprintf(a.term.err, "%s [y/N] ", question)
	line, err := bufio.NewReader(a.term.in).ReadString('\n')
	if err != nil && line == "" {
		return false, fmt.Errorf("no confirmation received, pass --yes to delete without a prompt")
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}

func describe(err error) string {
	var appErr *errors.Error
	if stderrors.As(err, &appErr) {
		return appErr.Description()
	}
	return err.Error()
}

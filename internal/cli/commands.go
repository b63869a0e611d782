package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Makepad-fr/dashboard/internal/form"
	"github.com/Makepad-fr/dashboard/internal/ui"
)

func newListCommand(opts *Options) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List records",
		Args:    usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts, func(a *app) error {
				recs := a.store.Records()
				if asJSON {
					b, err := json.MarshalIndent(recs, "", "  ")
					if err != nil {
						return fmt.Errorf("json marshal: %w", err)
					}
					fmt.Fprintln(opts.Out, string(b))
					return nil
				}
				lines := []string{ui.Summary(recs), ""}
				lines = append(lines, ui.TableLines(recs)...)
				ui.Panel(opts.Out, lines)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the stored JSON array")
	return cmd
}

func newAddCommand(opts *Options) *cobra.Command {
	var f form.Fields
	cmd := &cobra.Command{
		Use:     "add --name NAME --value VALUE [--phone PHONE]",
		Short:   "Add a record",
		Example: `  dashboard add --name Widget --value 42 --phone "555 123 4567"`,
		Args:    usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts, func(a *app) error {
				a.ctrl.Fields = f
				out, err := a.ctrl.Submit()
				if err != nil {
					return err
				}
				ui.OK(opts.Out, fmt.Sprintf("added record %d", out.Record.ID))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&f.Name, "name", "", "record name")
	cmd.Flags().StringVar(&f.Value, "value", "", "non-negative number")
	cmd.Flags().StringVar(&f.Phone, "phone", "", "10-digit phone number")
	return cmd
}

func newEditCommand(opts *Options) *cobra.Command {
	var f form.Fields
	cmd := &cobra.Command{
		Use:   "edit <id> [--name NAME] [--value VALUE] [--phone PHONE]",
		Short: "Change fields of a record; omitted fields keep their value",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withApp(opts, func(a *app) error {
				if !a.ctrl.Edit(id) {
					return fmt.Errorf("%w: no record with id %d", form.ErrNotFound, id)
				}
				flags := cmd.Flags()
				if flags.Changed("name") {
					a.ctrl.Fields.Name = f.Name
				}
				if flags.Changed("value") {
					a.ctrl.Fields.Value = f.Value
				}
				if flags.Changed("phone") {
					a.ctrl.Fields.Phone = f.Phone
				}
				if _, err := a.ctrl.Submit(); err != nil {
					return err
				}
				ui.OK(opts.Out, fmt.Sprintf("saved record %d", id))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&f.Name, "name", "", "new name")
	cmd.Flags().StringVar(&f.Value, "value", "", "new value")
	cmd.Flags().StringVar(&f.Phone, "phone", "", "new phone number")
	return cmd
}

func newRemoveCommand(opts *Options) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a record after confirmation",
		Args:    usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withApp(opts, func(a *app) error {
				if !a.ctrl.RequestDelete(id) {
					return fmt.Errorf("%w: no record with id %d", form.ErrNotFound, id)
				}
				if !yes {
					r, _ := a.store.FindByID(id)
					if !confirm(opts, fmt.Sprintf("Delete record %d (%s)? [y/N] ", id, r.Name)) {
						a.ctrl.CancelDelete()
						ui.Println(opts.Out, ui.C(ui.Current().Muted, "cancelled"))
						return nil
					}
				}
				if _, err := a.ctrl.ConfirmDelete(); err != nil {
					return err
				}
				ui.OK(opts.Out, fmt.Sprintf("removed record %d", id))
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func newSeedCommand(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Replace every record with the sample data",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts, func(a *app) error {
				if err := a.store.Reset(); err != nil {
					return err
				}
				ui.OK(opts.Out, fmt.Sprintf("seeded %d records", a.store.Len()))
				return nil
			})
		},
	}
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, usagef("not a record id: %s", s)
	}
	return id, nil
}

// confirm asks question on Out and reads one answer line from In.
func confirm(opts *Options, question string) bool {
	fmt.Fprint(opts.Out, question)
	line, _ := bufio.NewReader(opts.In).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

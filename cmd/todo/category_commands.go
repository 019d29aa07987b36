package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fastygo/todos/api/transport"
	"github.com/fastygo/todos/domain"
	"github.com/fastygo/todos/internal/ui"
)

var categoryFlags struct {
	name  string
	color string
	json  bool
}

func init() {
	categoryAddCmd.Flags().StringVar(&categoryFlags.color, "color", "", "display color, e.g. #ff8800")
	categoryUpdateCmd.Flags().StringVar(&categoryFlags.name, "name", "", "new name")
	categoryUpdateCmd.Flags().StringVar(&categoryFlags.color, "color", "", "new color; empty resets to the default")
	categoryListCmd.Flags().BoolVar(&categoryFlags.json, "json", false, "print JSON")

	categoryCmd.AddCommand(categoryAddCmd, categoryListCmd, categoryUpdateCmd, categoryRemoveCmd)
	rootCmd.AddCommand(categoryCmd)
}

var categoryCmd = &cobra.Command{
	Use:     "category",
	Aliases: []string{"cat"},
	Short:   "Manage categories",
}

var categoryAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a category",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		category, err := current.Categories.Add(cmd.Context(), transport.CategoryRequest{
			Name:  args[0],
			Color: categoryFlags.color,
		}.ToInput())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "added category %s: %s\n", category.ID, category.Name)
		return nil
	},
}

var categoryListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List categories",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		categories, err := current.Categories.List(cmd.Context())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if categoryFlags.json {
			return printJSON(out, categories)
		}
		if len(categories) == 0 {
			fmt.Fprintln(out, "no categories")
			return nil
		}
		fmt.Fprint(out, ui.CategoryTable(categories))
		return nil
	},
}

var categoryUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Rename or recolor a category",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var req transport.CategoryPatchRequest
		if cmd.Flags().Changed("name") {
			req.Name = &categoryFlags.name
		}
		if cmd.Flags().Changed("color") {
			req.Color = &categoryFlags.color
		}
		if req.Name == nil && req.Color == nil {
			return domain.WrapError(domain.ErrCodeInvalid, "nothing to update", errors.New("pass --name or --color"))
		}

		category, err := current.Categories.Update(cmd.Context(), domain.CategoryID(args[0]), req.ToPatch())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "updated category %s: %s\n", category.ID, category.Name)
		return nil
	},
}

var categoryRemoveCmd = &cobra.Command{
	Use:     "rm <id>",
	Aliases: []string{"remove", "delete"},
	Short:   "Delete a category and detach its todos",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := current.Categories.Delete(cmd.Context(), domain.CategoryID(args[0])); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted category %s\n", args[0])
		return nil
	},
}

package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fastygo/todos/api/transport"
	"github.com/fastygo/todos/domain"
	"github.com/fastygo/todos/internal/ui"
	todoUC "github.com/fastygo/todos/usecase/todo"
)

var todoFlags struct {
	title       string
	description string
	deadline    string
	category    string
	priority    string
}

var listFlags struct {
	status       string
	category     string
	sortPriority bool
	json         bool
}

var showJSON bool

var clearYes bool

func init() {
	for _, cmd := range []*cobra.Command{addCmd, updateCmd} {
		cmd.Flags().StringVarP(&todoFlags.description, "description", "d", "", "longer description")
		cmd.Flags().StringVar(&todoFlags.deadline, "deadline", "", "deadline as YYYY-MM-DD or RFC 3339")
		cmd.Flags().StringVarP(&todoFlags.category, "category", "c", "", "category id")
		cmd.Flags().StringVarP(&todoFlags.priority, "priority", "p", "", "high, medium or low")
	}
	updateCmd.Flags().StringVarP(&todoFlags.title, "title", "t", "", "new title")

	listCmd.Flags().StringVarP(&listFlags.status, "status", "s", "all", "all, active or completed")
	listCmd.Flags().StringVarP(&listFlags.category, "category", "c", "", `category id or "uncategorized"`)
	listCmd.Flags().BoolVar(&listFlags.sortPriority, "sort-priority", false, "order by priority, high first")
	listCmd.Flags().BoolVar(&listFlags.json, "json", false, "print JSON")

	showCmd.Flags().BoolVar(&showJSON, "json", false, "print JSON")
	clearCmd.Flags().BoolVar(&clearYes, "yes", false, "confirm deleting every todo")

	rootCmd.AddCommand(addCmd, listCmd, showCmd, updateCmd, toggleCmd, removeCmd, statsCmd, clearCmd)
}

var addCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Add a todo",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		input, err := transport.TodoRequest{
			Title:       args[0],
			Description: todoFlags.description,
			Deadline:    todoFlags.deadline,
			CategoryID:  todoFlags.category,
			Priority:    todoFlags.priority,
		}.ToInput()
		if err != nil {
			return err
		}
		todo, err := current.Todos.Add(cmd.Context(), input)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "added %s: %s\n", todo.ID, todo.Title)
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List todos",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		status, err := todoUC.ParseStatusFilter(listFlags.status)
		if err != nil {
			return err
		}
		res, err := current.Todos.List(cmd.Context(), todoUC.ListOptions{
			Status:         status,
			Category:       listFlags.category,
			SortByPriority: listFlags.sortPriority,
		})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if listFlags.json {
			return printJSON(out, res.Todos)
		}
		if len(res.Todos) == 0 {
			fmt.Fprintln(out, "no todos")
			return nil
		}
		categories, err := current.Categories.List(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprint(out, ui.TodoTable(res.Todos, categories))
		return nil
	},
}

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one todo",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		todo, err := current.Todos.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if showJSON {
			return printJSON(cmd.OutOrStdout(), todo)
		}
		category, err := current.Categories.Resolve(cmd.Context(), *todo)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), ui.TodoDetail(*todo, category))
		return nil
	},
}

var updateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Change fields of a todo",
	Long:  "Change fields of a todo. Only the flags given are applied; an empty --deadline or --category clears it.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		var req transport.TodoPatchRequest
		if flags.Changed("title") {
			req.Title = &todoFlags.title
		}
		if flags.Changed("description") {
			req.Description = &todoFlags.description
		}
		if flags.Changed("deadline") {
			req.Deadline = &todoFlags.deadline
		}
		if flags.Changed("category") {
			req.CategoryID = &todoFlags.category
		}
		if flags.Changed("priority") {
			req.Priority = &todoFlags.priority
		}
		patch, err := req.ToPatch()
		if err != nil {
			return err
		}
		if patch.IsEmpty() {
			return domain.WrapError(domain.ErrCodeInvalid, "nothing to update", errors.New("pass at least one field flag"))
		}

		todo, err := current.Todos.Update(cmd.Context(), args[0], patch)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "updated %s: %s\n", todo.ID, todo.Title)
		return nil
	},
}

var toggleCmd = &cobra.Command{
	Use:     "toggle <id>",
	Aliases: []string{"done"},
	Short:   "Flip a todo between active and completed",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		todo, err := current.Todos.Toggle(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		state := "reopened"
		if todo.Completed {
			state = "completed"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s: %s\n", state, todo.ID, todo.Title)
		return nil
	},
}

var removeCmd = &cobra.Command{
	Use:     "rm <id>",
	Aliases: []string{"remove", "delete"},
	Short:   "Delete a todo",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := current.Todos.Delete(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Count todos by state",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		stats, err := current.Todos.Stats(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), ui.Stats(stats))
		return nil
	},
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every todo",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !clearYes {
			return domain.NewError(domain.ErrCodeInvalid, "refusing to delete every todo without --yes")
		}
		if err := current.Todos.Clear(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "cleared all todos")
		return nil
	},
}

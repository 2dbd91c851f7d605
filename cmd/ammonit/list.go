package main

import (
	"fmt"

	"ammonit/internal/ui"

	"github.com/spf13/cobra"
)

var listPage int

var listCmd = &cobra.Command{
	Use:   "list <collection>",
	Short: "Print one page of a collection",
	Long: `Fetches a single page and prints it as a table. The page becomes the
remembered position of that collection, so the console resumes there.

Collections: users, clients, orders, emails, prompts.`,
	Args: cobra.ExactArgs(1),
	RunE: runList,
}

func init() {
	listCmd.Flags().IntVarP(&listPage, "page", "p", 0, "Page to print (default: the remembered page)")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	route, err := ui.RouteFor(args[0])
	if err != nil {
		return err
	}

	c, err := openConsole(cmd.Context())
	if err != nil {
		return err
	}
	defer c.Close()

	tab, _ := ui.FindTab(c.tabs(), args[0])
	c.router.Navigate(route)
	if cmd.Flags().Changed("page") {
		c.router.Binding(route).SetPage(listPage)
	}

	frame, err := tab.View.Render(cmd.Context())
	fmt.Fprintln(cmd.OutOrStdout(), tab.Title)
	fmt.Fprintln(cmd.OutOrStdout(), frame)
	if err != nil {
		return fmt.Errorf("list %s: %w", args[0], err)
	}
	return nil
}

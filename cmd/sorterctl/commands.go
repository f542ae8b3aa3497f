package main

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/tendant/simple-sorter/pkg/simplesorter"
)

type rootOptions struct {
	configPath string
	category   string
	output     string
	factory    serviceFactory
}

func (o *rootOptions) service() (simplesorter.Service, error) {
	svc, err := o.factory(o.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to build service: %w", err)
	}
	return svc, nil
}

func listCmd(opts *rootOptions) *cobra.Command {
	var parent string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List published items in display order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := opts.service()
			if err != nil {
				return err
			}

			req := simplesorter.ListOrderedRequest{Category: opts.category}
			if parent != "" {
				parentID, err := uuid.Parse(parent)
				if err != nil {
					return fmt.Errorf("invalid parent id %q: %w", parent, err)
				}
				req.ParentID = &parentID
			}

			items, err := svc.ListOrdered(cmd.Context(), req)
			if err != nil {
				return err
			}
			return printItems(cmd.OutOrStdout(), opts.output, items)
		},
	}

	cmd.Flags().StringVar(&parent, "parent", "", "only list children of this item")

	return cmd
}

func reorderCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reorder <item-id>...",
		Short: "Commit a complete order; each item takes its argument position",
		Long: `Commit a complete order for the category. The first id gets order 0,
the second order 1 and so on.

Examples:
  sorterctl reorder 3f0c... 9a1b... 77de...
  sorterctl reorder -c page 9a1b... 3f0c...`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := make([]uuid.UUID, len(args))
			for i, arg := range args {
				id, err := uuid.Parse(arg)
				if err != nil {
					return fmt.Errorf("%w: %q", simplesorter.ErrInvalidOrderData, arg)
				}
				ids[i] = id
			}

			svc, err := opts.service()
			if err != nil {
				return err
			}
			if err := svc.Reorder(cmd.Context(), simplesorter.ReorderRequest{
				Category: opts.category,
				ItemIDs:  ids,
			}); err != nil {
				return err
			}

			printSuccess(cmd.OutOrStdout(), "Order saved for %d items in %s", len(ids), opts.category)
			return nil
		},
	}

	return cmd
}

func insertCmd(opts *rootOptions) *cobra.Command {
	var position string

	cmd := &cobra.Command{
		Use:   "insert <item-id> <target-index>",
		Short: "Move or insert an item before or after a list index",
		Long: `Move an item to sit before or after the item at target-index. An item
that has never been ordered is inserted and the items at or after its
new slot move down by one.

Examples:
  sorterctl insert 3f0c... 0 --position before
  sorterctl insert 3f0c... 2`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			itemID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("%w: %q", simplesorter.ErrInvalidItem, args[0])
			}
			targetIndex, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("%w: target index %q", simplesorter.ErrInvalidPosition, args[1])
			}
			pos, err := simplesorter.ParsePosition(position)
			if err != nil {
				return fmt.Errorf("%w: %q", err, position)
			}

			svc, err := opts.service()
			if err != nil {
				return err
			}
			result, err := svc.Reposition(cmd.Context(), simplesorter.RepositionRequest{
				Category:    opts.category,
				ItemID:      itemID,
				Position:    pos,
				TargetIndex: targetIndex,
			})
			if err != nil {
				return err
			}

			return printReposition(cmd.OutOrStdout(), opts.output, result)
		},
	}

	cmd.Flags().StringVarP(&position, "position", "p", string(simplesorter.PositionAfter), "before or after")

	return cmd
}

func searchCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <term>",
		Short: "Find published items by title",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := opts.service()
			if err != nil {
				return err
			}
			results, err := svc.Search(cmd.Context(), simplesorter.SearchRequest{
				Term:     args[0],
				Category: opts.category,
			})
			if err != nil {
				return err
			}
			return printSearchResults(cmd.OutOrStdout(), opts.output, results)
		},
	}

	return cmd
}

func addCmd(opts *rootOptions) *cobra.Command {
	var (
		status string
		parent string
	)

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Create an item in the category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := simplesorter.CreateItemRequest{
				Category: opts.category,
				Title:    args[0],
				Status:   simplesorter.ItemStatus(status),
			}
			if parent != "" {
				parentID, err := uuid.Parse(parent)
				if err != nil {
					return fmt.Errorf("invalid parent id %q: %w", parent, err)
				}
				req.ParentID = &parentID
			}

			svc, err := opts.service()
			if err != nil {
				return err
			}
			item, err := svc.CreateItem(cmd.Context(), req)
			if err != nil {
				return err
			}
			return printItems(cmd.OutOrStdout(), opts.output, []*simplesorter.Item{item})
		},
	}

	cmd.Flags().StringVar(&status, "status", string(simplesorter.ItemStatusPublished), "publish or draft")
	cmd.Flags().StringVar(&parent, "parent", "", "parent item id")

	return cmd
}

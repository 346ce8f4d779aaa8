package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/oxidian/engine/internal/vault"
)

func newCardCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "card", Short: "Spaced-repetition card review and connections"}
	cmd.AddCommand(newCardReviewCmd(), newCardDashboardCmd(), newCardRelatedCmd())
	return cmd
}

func newCardReviewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "review <path> <quality 0-5>",
		Short: "Review a card, scheduling its next review via SM-2",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			quality, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("quality must be an integer 0-5: %w", err)
			}
			return withVault(func(v *vault.Vault) error {
				card, err := v.ReviewCard(args[0], quality, time.Now())
				if err != nil {
					return err
				}
				fmt.Printf("interval=%d ease=%.2f next_review=%s\n", card.Interval, card.Ease, card.NextReview)
				return nil
			})
		},
	}
}

func newCardDashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show today's review stats",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withVault(func(v *vault.Vault) error {
				dash, err := v.Dashboard(time.Now().Format("2006-01-02"))
				if err != nil {
					return err
				}
				fmt.Printf("total reviews: %d\nstreak: %d (best %d)\ntoday: reviewed=%d again=%d hard=%d good=%d easy=%d\n",
					dash.TotalReviews, dash.Streak.Current, dash.Streak.Best,
					dash.Today.Reviewed, dash.Today.Again, dash.Today.Hard, dash.Today.Good, dash.Today.Easy)
				return nil
			})
		},
	}
}

func newCardRelatedCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "related <path>",
		Short: "Find cards related to a card by shared tags/source",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withVault(func(v *vault.Vault) error {
				all, err := v.AllCards()
				if err != nil {
					return err
				}
				for _, c := range all {
					if c.Path != args[0] {
						continue
					}
					related, err := v.RelatedCards(c, limit)
					if err != nil {
						return err
					}
					for _, r := range related {
						fmt.Printf("%s (%d)\n", r.Path, r.Score)
					}
					return nil
				}
				return fmt.Errorf("card %q not found", args[0])
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "maximum related cards")
	return cmd
}

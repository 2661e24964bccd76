package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/nutricalc/backend/internal/domain"
	"github.com/nutricalc/backend/internal/usecase"
	"github.com/spf13/cobra"
)

var suggestLimit int

var searchCmd = &cobra.Command{
	Use:     "search <query>",
	Short:   "Look up a food, or a comma-separated list of ingredients",
	Example: "  nutricalc search egg\n  nutricalc search \"150g oats, milk, banana\"",
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := strings.Join(args, " ")
		return withService(cmd, func(ctx context.Context, svc nutritionService) error {
			result, err := svc.Search(ctx, cliSession, query)
			if err != nil {
				return err
			}
			return printResult(cmd, svc, result)
		})
	},
}

var recipeCmd = &cobra.Command{
	Use:     "recipe <name[:grams]>...",
	Short:   "Total the nutrition of a recipe",
	Long:    "Total the nutrition of a recipe. Each ingredient is name[:grams]; the quantity defaults to 100g.",
	Example: "  nutricalc recipe oats:50 milk:200 banana:120",
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ingredients := make([]domain.IngredientQuery, 0, len(args))
		for _, arg := range args {
			if strings.TrimSpace(arg) == "" {
				continue
			}
			ing, err := usecase.ParseIngredientArg(arg)
			if err != nil {
				return err
			}
			ingredients = append(ingredients, ing)
		}
		if len(ingredients) == 0 {
			return domain.ErrEmptyRecipe
		}

		return withService(cmd, func(ctx context.Context, svc nutritionService) error {
			result, err := svc.CalculateRecipe(ctx, cliSession, ingredients)
			if err != nil {
				return err
			}
			return printResult(cmd, svc, result)
		})
	},
}

var suggestCmd = &cobra.Command{
	Use:   "suggest <text>",
	Short: "Suggest food names for partially typed text",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text := strings.Join(args, " ")
		return withService(cmd, func(ctx context.Context, svc nutritionService) error {
			results, err := svc.Suggest(ctx, text, suggestLimit)
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), map[string]interface{}{"results": results})
			}
			if len(results) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No suggestions.")
				return nil
			}
			writeSuggestions(cmd.OutOrStdout(), results)
			return nil
		})
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent searches, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(cmd, func(ctx context.Context, svc nutritionService) error {
			items, err := svc.History(ctx)
			if err != nil {
				return err
			}
			if items == nil {
				items = []string{}
			}
			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), map[string]interface{}{"history": items})
			}
			if len(items) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No recent searches.")
				return nil
			}
			for i, item := range items {
				fmt.Fprintf(cmd.OutOrStdout(), "%d. %s\n", i+1, item)
			}
			return nil
		})
	},
}

func printResult(cmd *cobra.Command, svc nutritionService, result *domain.NutritionResult) error {
	label := svc.Label(result)
	if jsonOutput {
		return writeJSON(cmd.OutOrStdout(), map[string]interface{}{
			"result": result,
			"label":  label,
		})
	}
	writeLabel(cmd.OutOrStdout(), label)
	return nil
}

func init() {
	suggestCmd.Flags().IntVar(&suggestLimit, "limit", usecase.DefaultSuggestionLimit, "Maximum number of suggestions")

	rootCmd.AddCommand(searchCmd, recipeCmd, suggestCmd, historyCmd)
}

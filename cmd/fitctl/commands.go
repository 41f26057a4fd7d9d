package main

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"fittrack-bot/internal/dashboard"
	"fittrack-bot/internal/models"
	"fittrack-bot/internal/planner"
	"fittrack-bot/internal/trends"
)

func newLoginCmd(a *app) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and print a bearer token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				password = os.Getenv("FITTRACK_PASSWORD")
			}
			if strings.TrimSpace(email) == "" || password == "" {
				return fmt.Errorf("--email and --password (or FITTRACK_PASSWORD) are required")
			}
			token, err := a.client.Login(cmd.Context(), strings.TrimSpace(email), password)
			if err != nil {
				return fmt.Errorf("login: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password")
	return cmd
}

func newTodayCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "today",
		Short: "Show today's totals and logged meals",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := a.authed(cmd)
			if err != nil {
				return err
			}
			v, err := a.dash.Today(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Date: %s\n", v.Date)
			if v.Entry == nil {
				fmt.Fprintln(out, "Nothing logged yet.")
			} else {
				if w := v.Entry.Weight; w != nil {
					fmt.Fprintf(out, "Weight: %s kg (%s)\n", num(w.Value), w.MeasuredAt)
				}
				if ac := v.Entry.Activity; ac != nil {
					fmt.Fprintf(out, "Activity: %s, %s steps, %s min\n", ac.Type, num(ac.Steps), num(ac.Duration))
				}
				if t := v.Entry.Totals; t != nil {
					fmt.Fprintf(out, "Macros: %s kcal | P %sg | C %sg | F %sg | Fib %sg\n",
						num(t.Calories), num(t.Protein), num(t.Carbs), num(t.Fat), num(t.Fiber))
				}
			}
			if v.HasMeals {
				for _, slot := range models.MealSlots {
					if desc := v.Meals[slot]; desc != "" {
						fmt.Fprintf(out, "%s: %s\n", slot, desc)
					}
				}
			}
			return nil
		},
	}
}

func newLogCmd(a *app) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "log",
		Short: "List daily logs, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := a.authed(cmd)
			if err != nil {
				return err
			}
			logs, err := a.dash.LogBook(ctx)
			if err != nil {
				return err
			}
			if limit > 0 && len(logs) > limit {
				logs = logs[:limit]
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "DATE\tWEIGHT\tSTEPS\tMIN\tKCAL\tP\tC\tF")
			for _, e := range logs {
				weight, steps, minutes := "-", "-", "-"
				if e.Weight != nil {
					weight = num(e.Weight.Value)
				}
				if e.Activity != nil {
					steps, minutes = num(e.Activity.Steps), num(e.Activity.Duration)
				}
				var m models.Macros
				if e.Totals != nil {
					m = *e.Totals
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n", e.Date, weight, steps, minutes,
					num(m.Calories), num(m.Protein), num(m.Carbs), num(m.Fat))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "Show at most N days (0 for all)")
	return cmd
}

func newExportCmd(a *app) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export daily logs as CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := a.authed(cmd)
			if err != nil {
				return err
			}
			logs, err := a.dash.LogBook(ctx)
			if err != nil {
				return err
			}

			if out == "" || out == "-" {
				return dashboard.WriteCSV(cmd.OutOrStdout(), logs)
			}
			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("create export csv: %w", err)
			}
			defer f.Close()
			if err := dashboard.WriteCSV(f, logs); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d days to %s\n", len(logs), out)
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "-", "Output file, - for stdout")
	return cmd
}

func newTrendsCmd(a *app) *cobra.Command {
	var rangeFlag string

	cmd := &cobra.Command{
		Use:   "trends",
		Short: "Show KPIs, goal bands and weekly streaks",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := trends.ParseRange(rangeFlag)
			if err != nil {
				return err
			}
			ctx, err := a.authed(cmd)
			if err != nil {
				return err
			}
			v, err := a.dash.Trends(ctx, r)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			s := v.Summary
			fmt.Fprintf(out, "Range: %s (%d days)\n", v.Range, s.Days)
			fmt.Fprintf(out, "Weight change: %s kg\n", num(s.WeightDelta))
			fmt.Fprintf(out, "Avg calories: %s kcal\n", num(s.AvgCalories))
			fmt.Fprintf(out, "Avg active minutes: %s\n", num(s.AvgActiveMinutes))
			fmt.Fprintf(out, "Energy split: P %s | C %s | F %s kcal\n",
				num(s.EnergySplit.Protein), num(s.EnergySplit.Carbs), num(s.EnergySplit.Fat))

			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "MACRO\tAVG\tMIN\tMID\tMAX")
			for _, k := range models.MacroKeys {
				b := v.Bands[k]
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", k, num(s.MacroAvg.Get(k)), bound(b.Min), bound(b.Mid), bound(b.Max))
			}
			if err := tw.Flush(); err != nil {
				return err
			}

			st := v.Streaks
			fmt.Fprintf(out, "Steps streak: %d/%d days\n", st.StepsDays, st.StepsTarget)
			fmt.Fprintf(out, "Calories streak: %d/%d days\n", st.CaloriesWithinDays, st.CaloriesWithinTarget)
			return nil
		},
	}
	cmd.Flags().StringVar(&rangeFlag, "range", string(trends.Range30D), "7d, 30d, 90d or all")
	return cmd
}

func newGoalsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "goals",
		Short: "Print the saved goals as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := a.authed(cmd)
			if err != nil {
				return err
			}
			st, err := a.dash.Goals(ctx)
			if err != nil {
				return err
			}
			b, err := json.MarshalIndent(st.Server, "", "  ")
			if err != nil {
				return fmt.Errorf("marshal goals: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(b))
			return nil
		},
	}
}

func newSuggestCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "suggest [key...]",
		Short: "List goal suggestions, or apply the given ones and save",
		Long: `Without arguments, lists the suggestions computed from all logged days.

With suggestion keys, applies each one to the goals and saves the result.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := a.authed(cmd)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if len(args) == 0 {
				list, err := a.dash.Suggestions(ctx)
				if err != nil {
					return err
				}
				if len(list) == 0 {
					fmt.Fprintln(out, "No suggestions, your goals match your averages.")
					return nil
				}
				for _, s := range list {
					fmt.Fprintf(out, "%s\t%s\n", s.Key, s.Message)
				}
				return nil
			}

			for _, key := range args {
				_, s, err := a.dash.ApplySuggestion(ctx, key)
				if err != nil {
					return fmt.Errorf("apply %s: %w", key, err)
				}
				fmt.Fprintf(out, "Applied: %s\n", s.Message)
			}
			if _, err := a.dash.SaveGoals(ctx); err != nil {
				return err
			}
			fmt.Fprintln(out, "Goals saved.")
			return nil
		},
	}
	return cmd
}

func newPantryCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pantry",
		Short: "Show the pantry split by status",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := a.authed(cmd)
			if err != nil {
				return err
			}
			printPantry(cmd, a.planner.Pantry(ctx))
			return nil
		},
	}

	var status string
	add := &cobra.Command{
		Use:   "add <name>",
		Short: "Add an item",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := a.authed(cmd)
			if err != nil {
				return err
			}
			p, err := a.planner.AddItem(ctx, strings.Join(args, " "), models.PantryStatus(status))
			if err != nil {
				return err
			}
			printPantry(cmd, p)
			return nil
		},
	}
	add.Flags().StringVar(&status, "status", string(models.StatusToBuy), "in_stock or to_buy")

	toggle := &cobra.Command{
		Use:   "toggle <id>",
		Short: "Flip an item between in stock and to buy",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := a.authed(cmd)
			if err != nil {
				return err
			}
			p, err := a.planner.Toggle(ctx, args[0])
			if err != nil {
				return err
			}
			printPantry(cmd, p)
			return nil
		},
	}

	remove := &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := a.authed(cmd)
			if err != nil {
				return err
			}
			p, err := a.planner.Delete(ctx, args[0])
			if err != nil {
				return err
			}
			printPantry(cmd, p)
			return nil
		},
	}

	cmd.AddCommand(add, toggle, remove)
	return cmd
}

func printPantry(cmd *cobra.Command, p models.Pantry) {
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tSTATUS")
	for _, list := range [][]models.PantryItem{p.InStock, p.ToBuy} {
		for _, it := range list {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", it.ID, it.Name, it.Status)
		}
	}
	_ = tw.Flush()
}

func newPlanCmd(a *app) *cobra.Command {
	var week string
	var generate bool

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show or generate the meal plan of a week",
		RunE: func(cmd *cobra.Command, args []string) error {
			weekStart := planner.WeekStart(time.Now())
			if week != "" {
				t, err := time.Parse(time.DateOnly, week)
				if err != nil {
					return fmt.Errorf("invalid --week %q (expected YYYY-MM-DD)", week)
				}
				weekStart = planner.WeekStart(t)
			}
			ctx, err := a.authed(cmd)
			if err != nil {
				return err
			}

			var plan *models.MealPlan
			if generate {
				plan, err = a.planner.Generate(ctx, weekStart)
			} else {
				plan, err = a.planner.Week(ctx, weekStart)
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if plan == nil || len(plan.Meals) == 0 {
				fmt.Fprintf(out, "No meals planned for the week of %s.\n", weekStart)
				return nil
			}
			meals := make([]models.PlannedMeal, len(plan.Meals))
			copy(meals, plan.Meals)
			sort.SliceStable(meals, func(i, j int) bool { return meals[i].Date < meals[j].Date })

			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "DATE\tMEAL\tNAME\tKCAL")
			for _, m := range meals {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", m.Date, m.MealType, m.Name, num(m.Macros.Calories))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&week, "week", "", "Any date in the week, YYYY-MM-DD (default this week)")
	cmd.Flags().BoolVar(&generate, "generate", false, "Ask the backend to generate the plan")
	return cmd
}

func bound(v *float64) string {
	if v == nil {
		return "-"
	}
	return num(*v)
}

func num(v float64) string {
	switch {
	case math.IsNaN(v) || math.IsInf(v, 0):
		return "-"
	case v == math.Trunc(v):
		return fmt.Sprintf("%.0f", v)
	default:
		return fmt.Sprintf("%.1f", v)
	}
}

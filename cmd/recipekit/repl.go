package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/rushteam/recipekit/core"
	"github.com/rushteam/recipekit/service"
)

// runREPL 运行一次用户会话：输入用户 ID，反复描述想吃什么并对推荐逐条反馈，
// 输入 stats 查看统计，quit 退出。
func runREPL(ctx context.Context, r *service.Recommender, in io.Reader, out io.Writer) error {
	sc := bufio.NewScanner(in)
	ask := func(prompt string) (string, bool) {
		fmt.Fprint(out, prompt)
		if !sc.Scan() {
			return "", false
		}
		return strings.TrimSpace(sc.Text()), true
	}

	if users, err := r.Users(ctx); err != nil {
		fmt.Fprintf(out, "warning: %v\n", err)
	} else if len(users) > 0 {
		fmt.Fprintf(out, "Known users: %s\n", strings.Join(users, ", "))
	}

	var userID string
	for userID == "" {
		s, ok := ask("Enter your user id: ")
		if !ok {
			return sc.Err()
		}
		userID = core.NormalizeUserID(s)
	}

	unlock := r.Lock(userID)
	defer unlock()

	profile, err := r.Open(ctx, userID)
	if profile == nil {
		return err
	}
	if err != nil {
		fmt.Fprintf(out, "warning: %v\n", err)
	}
	fmt.Fprintf(out, "Welcome, %s! (%d liked recipes)\n", profile.UserID, len(profile.Preferences.LikedRecipes))

	for {
		if ctx.Err() != nil {
			return nil
		}
		text, ok := ask("\nWhat would you like to eat? (stats / quit): ")
		if !ok {
			return sc.Err()
		}

		switch strings.ToLower(text) {
		case "":
			continue
		case "quit", "exit", "q":
			fmt.Fprintln(out, "Goodbye!")
			return nil
		case "stats":
			printStats(out, r, profile)
			continue
		}

		meal, recipes, err := r.Suggest(ctx, profile, text)
		if err != nil && recipes == nil {
			fmt.Fprintf(out, "error: %v\n", err)
			continue
		}
		if err != nil {
			fmt.Fprintf(out, "warning: %v\n", err)
		}
		if len(recipes) == 0 {
			fmt.Fprintf(out, "No %s recipes to suggest right now.\n", meal)
			continue
		}

		fmt.Fprintf(out, "Suggested %s recipes:\n", meal)
		for i, rec := range recipes {
			mark := ""
			if profile.IsLiked(rec.ID) {
				mark = " *"
			}
			fmt.Fprintf(out, "  %d. %s%s%s\n", i+1, rec.Name, describe(rec), mark)
		}

		for _, rec := range recipes {
			answer, ok := ask(fmt.Sprintf("Did you like %q? (y/n, enter to skip): ", rec.Name))
			if !ok {
				return sc.Err()
			}
			var liked bool
			switch strings.ToLower(answer) {
			case "y", "yes":
				liked = true
			case "n", "no":
				liked = false
			default:
				continue
			}
			if _, err := r.Feedback(ctx, profile, rec.ID, rec.Name, meal, liked); err != nil {
				fmt.Fprintf(out, "warning: %v\n", err)
			}
		}
	}
}

func describe(r *core.Recipe) string {
	var parts []string
	if r.AggregatedRating != nil {
		parts = append(parts, fmt.Sprintf("rating %.1f", *r.AggregatedRating))
	}
	if n := r.Reviews(); n > 0 {
		parts = append(parts, fmt.Sprintf("%d reviews", n))
	}
	if r.TotalTime != "" {
		parts = append(parts, r.TotalTime)
	}
	if len(parts) == 0 {
		return ""
	}
	return " (" + strings.Join(parts, ", ") + ")"
}

func printStats(out io.Writer, r *service.Recommender, p *core.UserProfile) {
	s := r.Stats(p)
	fmt.Fprintf(out, "Suggestions received: %d\n", s.SuggestionsReceived)
	fmt.Fprintf(out, "Interactions: %d\n", s.Interactions)
	fmt.Fprintf(out, "Liked: %d, disliked: %d\n", s.LikedCount, s.DislikedCount)
	fmt.Fprintln(out, "Meal type weights:")
	for _, m := range core.MealTypes() {
		fmt.Fprintf(out, "  %-10s %.2f\n", m, s.Weights[m])
	}
}

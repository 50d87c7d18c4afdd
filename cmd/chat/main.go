package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/localflavor/recipebot/config"
	"github.com/localflavor/recipebot/internal/app"
	"github.com/localflavor/recipebot/internal/service"
)

var exitCommands = []string{
	"exit", "quit", "bye", "goodbye", "see you later",
	"leave", "end chat", "stop", "close", "finish",
}

func main() {
	cliApp := &cli.App{
		Name:  "recipebot-chat",
		Usage: "interactive recipe search in the terminal",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "count",
				Usage: "number of recipes to request per query",
				Value: service.DefaultRetrieveCount,
			},
		},
		Action: runChat,
	}

	if err := cliApp.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func runChat(c *cli.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, err := config.NewLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	deps, err := app.Build(cfg, logger)
	if err != nil {
		return err
	}

	count := c.Int("count")
	callerID := "cli:" + uuid.New().String()
	ctx := context.Background()

	bot := color.New(color.FgCyan, color.Bold).SprintFunc()
	you := color.New(color.FgGreen, color.Bold).SprintFunc()
	heading := color.New(color.FgYellow).SprintFunc()

	fmt.Println(bot("Hello! I'm Local Flavor Bot!"))
	fmt.Println("I'm your personal culinary assistant, ready to help you discover delicious recipes based on your ingredients or cravings.")
	fmt.Println("How can I assist you today? (type 'exit' to quit)")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print(you("You: "))
		if !scanner.Scan() {
			break
		}
		query := scanner.Text()
		if isExitCommand(query) {
			fmt.Println(bot("Bot: See you later!"))
			break
		}

		logger.Info("user query", zap.String("query", query))
		result := deps.Retrieval.Retrieve(ctx, query, callerID, count)

		switch {
		case result.Rejected != nil && result.Rejected.Kind == service.ViolationRateLimited:
			fmt.Println(bot("Bot:"), "Easy there! Please wait a few seconds before asking again.")
		case result.Rejected != nil:
			fmt.Println(bot("Bot:"), result.Rejected.Message)
		case result.QuotaExceeded:
			fmt.Println(bot("Bot:"), "I'm sorry, we've reached our daily API limit. Please try again tomorrow!")
		case len(result.Recipes) == 0:
			fmt.Println(bot("Bot:"), "I'm sorry, I couldn't find any matching recipes. Can you try rephrasing your request?")
		default:
			if len(result.Excluded) > 0 {
				fmt.Println(bot("Bot:"), "Noted, you want to avoid:", strings.Join(result.Excluded, ", "))
			}
			fmt.Println(bot("Bot:"), "Here are some recipes that might interest you:")
			for i, recipe := range result.Recipes {
				fmt.Println()
				fmt.Println(heading(strings.Repeat("=", 20)))
				fmt.Printf("Recipe #%d: %s\n", i+1, recipe.Name)
				fmt.Println(heading(strings.Repeat("=", 20)))
				fmt.Printf("Ready in: %d minutes, servings: %d\n", recipe.ReadyInMinutes, recipe.Servings)
				fmt.Println(heading("Ingredients:"))
				for _, ingredient := range recipe.Ingredients {
					fmt.Printf("  - %s\n", ingredient)
				}
				fmt.Println(heading("Instructions:"))
				for n, step := range recipe.Steps {
					fmt.Printf("  %d. %s\n", n+1, step)
				}
				if recipe.SourceURL != "" {
					fmt.Printf("Source: %s\n", recipe.SourceURL)
				}
			}
			fmt.Println()
		}
	}

	return scanner.Err()
}

func isExitCommand(input string) bool {
	lower := strings.ToLower(strings.TrimSpace(input))
	for _, cmd := range exitCommands {
		if lower == cmd {
			return true
		}
	}
	return false
}

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"server/pkg/thumbclient"
)

func main() {
	var (
		baseURL  string
		email    string
		password string
		name     string
		title    string
		promptIn string
		style    string
		ratio    string
		colors   string
		overlay  bool
		interval time.Duration
	)
	flag.StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the thumbnail API")
	flag.StringVar(&email, "email", "", "Account email (required)")
	flag.StringVar(&password, "password", "", "Account password (required)")
	flag.StringVar(&name, "name", "", "Display name; when set a new account is registered first")
	flag.StringVar(&title, "title", "", "Video title to generate a thumbnail for (required)")
	flag.StringVar(&promptIn, "prompt", "", "Extra creative direction")
	flag.StringVar(&style, "style", "Bold & Graphic", "Visual style")
	flag.StringVar(&ratio, "ratio", "", "Aspect ratio (16:9, 1:1 or 9:16)")
	flag.StringVar(&colors, "colors", "", "Color scheme")
	flag.BoolVar(&overlay, "overlay", true, "Render the title as a text overlay")
	flag.DurationVar(&interval, "interval", thumbclient.DefaultPollInterval, "Poll interval while waiting for the result")
	flag.Parse()

	if strings.TrimSpace(email) == "" || strings.TrimSpace(password) == "" {
		fmt.Fprintln(os.Stderr, "-email and -password are required")
		os.Exit(1)
	}
	if strings.TrimSpace(title) == "" {
		fmt.Fprintln(os.Stderr, "-title is required")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	client, err := thumbclient.New(baseURL)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if strings.TrimSpace(name) != "" {
		if _, err := client.Register(ctx, name, email, password); err != nil {
			fmt.Fprintf(os.Stderr, "register failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("registered", email)
	} else {
		if _, err := client.Login(ctx, email, password); err != nil {
			fmt.Fprintf(os.Stderr, "login failed: %v\n", err)
			os.Exit(1)
		}
	}

	rec, err := client.Generate(ctx, thumbclient.GenerateParams{
		Title:       title,
		Prompt:      promptIn,
		Style:       style,
		AspectRatio: ratio,
		ColorScheme: colors,
		TextOverlay: overlay,
	})
	if err != nil && rec == nil {
		fmt.Fprintf(os.Stderr, "generate failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("submitted", rec.ID, "status:", rec.Status)

	if !rec.Terminal() {
		rec, err = client.PollUntilTerminal(ctx, rec.ID, interval)
		if err != nil {
			fmt.Fprintf(os.Stderr, "polling failed: %v\n", err)
			os.Exit(1)
		}
	}

	switch rec.Status {
	case "complete":
		fmt.Println("complete:", rec.ImageURL)
	default:
		fmt.Fprintf(os.Stderr, "generation %s: %s\n", rec.Status, rec.Error)
		os.Exit(1)
	}
}

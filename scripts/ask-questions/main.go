// Package main replays a list of questions against a running insights API, the way an analyst
// would use the assistant endpoint.
//
// Usage:
//
//	go run ./scripts/ask-questions -file questions.txt -api-url http://localhost:8080 -api-key YOUR_API_KEY
//
// The file holds one question per line. Blank lines and lines starting with # are ignored.
package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
)

// Config holds the CLI configuration
type Config struct {
	FilePath   string
	APIBaseURL string
	APIKey     string
	TopK       int
	DelayMS    int
	DryRun     bool
}

type askRequest struct {
	Question string `json:"question"`
	TopK     int    `json:"topK,omitempty"`
}

type askResponse struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Feedback []struct {
		Text  string  `json:"text"`
		Score float64 `json:"score"`
	} `json:"feedback"`
}

type problem struct {
	Title  string `json:"title"`
	Detail string `json:"detail"`
}

var (
	boldGreen = color.New(color.FgGreen, color.Bold).SprintFunc()
	boldCyan  = color.New(color.FgCyan, color.Bold).SprintFunc()
	red       = color.New(color.FgRed).SprintFunc()
	faint     = color.New(color.Faint).SprintFunc()
)

// Stats summarizes a run.
type Stats struct {
	Questions int
	Answered  int
	Failed    int
}

func main() {
	cfg := parseFlags()

	if cfg.FilePath == "" {
		fmt.Println("Error: -file is required")
		flag.Usage()
		os.Exit(1)
	}

	if cfg.APIKey == "" && !cfg.DryRun {
		fmt.Println("Error: -api-key is required")
		flag.Usage()
		os.Exit(1)
	}

	questions, err := readQuestions(cfg.FilePath)
	if err != nil {
		fmt.Printf("Error reading questions: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(boldGreen("Feedback assistant replay"))
	fmt.Printf("   API URL:   %s\n", cfg.APIBaseURL)
	fmt.Printf("   Questions: %d\n", len(questions))
	if cfg.DryRun {
		fmt.Printf("   DRY RUN MODE - no API calls will be made\n")
	}
	fmt.Println()

	stats := Stats{Questions: len(questions)}
	client := &http.Client{Timeout: 2 * time.Minute}

	for i, q := range questions {
		fmt.Printf("%s %s\n", boldCyan(fmt.Sprintf("[%d/%d]", i+1, len(questions))), q)

		if cfg.DryRun {
			continue
		}

		resp, err := ask(client, cfg, q)
		if err != nil {
			stats.Failed++
			fmt.Printf("   %s %v\n\n", red("FAILED:"), err)
		} else {
			stats.Answered++
			printAnswer(resp)
		}

		if i < len(questions)-1 {
			time.Sleep(time.Duration(cfg.DelayMS) * time.Millisecond)
		}
	}

	fmt.Println(boldGreen("Summary"))
	fmt.Println("   ---------------------")
	fmt.Printf("   Questions: %d\n", stats.Questions)
	fmt.Printf("   Answered:  %d\n", stats.Answered)
	fmt.Printf("   Failed:    %d\n", stats.Failed)

	if stats.Failed > 0 {
		os.Exit(1)
	}
}

func parseFlags() Config {
	cfg := Config{}

	flag.StringVar(&cfg.FilePath, "file", "", "Path to a file with one question per line (required)")
	flag.StringVar(&cfg.APIBaseURL, "api-url", "http://localhost:8080", "Insights API base URL")
	flag.StringVar(&cfg.APIKey, "api-key", "", "API key for authentication (required)")
	flag.IntVar(&cfg.TopK, "top-k", 5, "Feedback entries per answer")
	flag.IntVar(&cfg.DelayMS, "delay", 1000, "Delay in milliseconds between questions; the ask endpoint is rate limited")
	flag.BoolVar(&cfg.DryRun, "dry-run", false, "List the questions without calling the API")

	flag.Parse()

	return cfg
}

func readQuestions(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = file.Close() }()

	var questions []string

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		questions = append(questions, line)
	}

	return questions, scanner.Err()
}

func ask(client *http.Client, cfg Config, question string) (*askResponse, error) {
	body, _ := json.Marshal(askRequest{Question: question, TopK: cfg.TopK})

	req, err := http.NewRequest(http.MethodPost, strings.TrimRight(cfg.APIBaseURL, "/")+"/v1/assistant/ask", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+cfg.APIKey)

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)

		var p problem
		if json.Unmarshal(respBody, &p) == nil && p.Title != "" {
			return nil, fmt.Errorf("status %d: %s: %s", resp.StatusCode, p.Title, p.Detail)
		}

		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, string(respBody))
	}

	var out askResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}

	return &out, nil
}

func printAnswer(resp *askResponse) {
	fmt.Printf("   %s\n", strings.ReplaceAll(resp.Answer, "\n", "\n   "))

	for i, f := range resp.Feedback {
		fmt.Printf("   %d. %s %s\n", i+1, f.Text, faint(fmt.Sprintf("(%.3f)", f.Score)))
	}

	fmt.Println()
}

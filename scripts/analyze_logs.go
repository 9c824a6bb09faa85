package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"
)

type LogStats struct {
	TotalErrors          int
	WebhooksReceived     int
	SignatureRejections  int
	TransitionsApplied   int
	ProviderUnavailable  int
	PersistenceFailures  int
	SweepRuns            int
	FailedRequests       int
	OrderActivity        map[string]int
	ErrorPatterns        map[string]int
}

func main() {
	// Get today's date for log file names
	today := time.Now().Format("2006-01-02")
	logDir := "./logs"

	// Initialize stats
	stats := &LogStats{
		OrderActivity: make(map[string]int),
		ErrorPatterns: make(map[string]int),
	}

	// Analyze error logs
	analyzeErrorLogs(filepath.Join(logDir, fmt.Sprintf("error-%s.log", today)), stats)

	// Analyze info logs
	analyzeInfoLogs(filepath.Join(logDir, fmt.Sprintf("info-%s.log", today)), stats)

	// Print report
	printReport(stats)
}

var orderIDPattern = regexp.MustCompile(`order[_ ]([A-Za-z0-9-]+)`)

func analyzeErrorLogs(logFile string, stats *LogStats) {
	file, err := os.Open(logFile)
	if err != nil {
		fmt.Printf("Error opening log file %s: %v\n", logFile, err)
		return
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		stats.TotalErrors++

		switch {
		case strings.Contains(line, "signature verification failed"):
			stats.SignatureRejections++
		case strings.Contains(line, "provider unavailable") || strings.Contains(line, "Provider unavailable"):
			stats.ProviderUnavailable++
		case strings.Contains(line, "persistence failure") || strings.Contains(line, "Failed to update"):
			stats.PersistenceFailures++
		case strings.Contains(line, "Status: 4") || strings.Contains(line, "Status: 5"):
			stats.FailedRequests++
		}

		// Track recurring error shapes by their first few words
		words := strings.Fields(line)
		if len(words) > 5 {
			pattern := strings.Join(words[3:6], " ")
			stats.ErrorPatterns[pattern]++
		}

		if match := orderIDPattern.FindStringSubmatch(line); match != nil {
			stats.OrderActivity[match[1]]++
		}
	}
}

func analyzeInfoLogs(logFile string, stats *LogStats) {
	file, err := os.Open(logFile)
	if err != nil {
		fmt.Printf("Error opening log file %s: %v\n", logFile, err)
		return
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()

		switch {
		case strings.Contains(line, "HandleCashfreeWebhook called"):
			stats.WebhooksReceived++
		case strings.Contains(line, "reconciled:"):
			stats.TransitionsApplied++
		case strings.Contains(line, "Sweep started"):
			stats.SweepRuns++
		}

		if match := orderIDPattern.FindStringSubmatch(line); match != nil {
			stats.OrderActivity[match[1]]++
		}
	}
}

func printReport(stats *LogStats) {
	fmt.Println("=== BloomVest Payment Log Report ===")
	fmt.Printf("Total errors:            %d\n", stats.TotalErrors)
	fmt.Printf("Webhooks received:       %d\n", stats.WebhooksReceived)
	fmt.Printf("Signature rejections:    %d\n", stats.SignatureRejections)
	fmt.Printf("Transitions applied:     %d\n", stats.TransitionsApplied)
	fmt.Printf("Provider unavailable:    %d\n", stats.ProviderUnavailable)
	fmt.Printf("Persistence failures:    %d\n", stats.PersistenceFailures)
	fmt.Printf("Sweep runs:              %d\n", stats.SweepRuns)
	fmt.Printf("Failed HTTP requests:    %d\n", stats.FailedRequests)

	if len(stats.ErrorPatterns) > 0 {
		fmt.Println("\nTop error patterns:")
		type patternCount struct {
			pattern string
			count   int
		}
		var patterns []patternCount
		for p, c := range stats.ErrorPatterns {
			patterns = append(patterns, patternCount{p, c})
		}
		sort.Slice(patterns, func(i, j int) bool { return patterns[i].count > patterns[j].count })
		for i, p := range patterns {
			if i >= 10 {
				break
			}
			fmt.Printf("  %4d  %s\n", p.count, p.pattern)
		}
	}

	if len(stats.OrderActivity) > 0 {
		fmt.Printf("\nOrders seen in logs: %d\n", len(stats.OrderActivity))
		noisy := 0
		for _, c := range stats.OrderActivity {
			if c > 10 {
				noisy++
			}
		}
		if noisy > 0 {
			fmt.Printf("Orders with unusually high activity (>10 log lines): %d\n", noisy)
		}
	}
}

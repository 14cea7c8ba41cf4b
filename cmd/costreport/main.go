package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// Rates used for the pricing breakdown section.
const (
	inputRatePer1K  = 0.005
	outputRatePer1K = 0.015
)

var (
	topicRe        = regexp.MustCompile(`Topic: (.+)`)
	inputTokensRe  = regexp.MustCompile(`Input Tokens: ([\d,]+)`)
	outputTokensRe = regexp.MustCompile(`Output Tokens: ([\d,]+)`)
	costRe         = regexp.MustCompile(`Cost: \$([\d.]+)`)
	wordCountRe    = regexp.MustCompile(`Word Count: (\d+)`)
	modelRe        = regexp.MustCompile(`Model Used: (.+)`)
)

type blogReport struct {
	Topic        string
	Model        string
	InputTokens  int
	OutputTokens int
	TotalTokens  int
	WordCount    int
	Cost         float64
}

func main() {
	reportsDir := "generated_blogs"
	if len(os.Args) > 1 {
		reportsDir = os.Args[1]
	}

	reports, err := scanReports(reportsDir)
	if err != nil {
		log.Fatal(err)
	}
	if len(reports) == 0 {
		log.Fatalf("No blog reports found in %s", reportsDir)
	}

	printBreakdown(reports)

	outFile := "COST_REPORT.txt"
	if err := os.WriteFile(outFile, []byte(formatCostReport(reports)), 0644); err != nil {
		log.Fatalf("Writing %s: %v", outFile, err)
	}
	fmt.Printf("\nDetailed report saved to: %s\n", outFile)
}

// scanReports parses every blog report file in dir, in name order.
func scanReports(dir string) ([]blogReport, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading directory %s: %w", dir, err)
	}

	var reports []blogReport
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, "blog_") || !strings.HasSuffix(name, ".txt") {
			continue
		}

		content, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			log.Printf("Error reading %s: %v", name, err)
			continue
		}

		report, ok := parseReport(string(content))
		if !ok {
			log.Printf("Skipping %s: missing token or cost data", name)
			continue
		}
		reports = append(reports, report)
	}

	return reports, nil
}

// parseReport extracts the header fields from one report. Topic, token
// counts, and cost are required; the rest default to zero values.
func parseReport(content string) (blogReport, bool) {
	var report blogReport

	topic := firstMatch(topicRe, content)
	input := firstMatch(inputTokensRe, content)
	output := firstMatch(outputTokensRe, content)
	cost := firstMatch(costRe, content)
	if topic == "" || input == "" || output == "" || cost == "" {
		return report, false
	}

	report.Topic = topic
	report.InputTokens = parseCount(input)
	report.OutputTokens = parseCount(output)
	report.TotalTokens = report.InputTokens + report.OutputTokens
	report.Cost, _ = strconv.ParseFloat(cost, 64)
	report.WordCount = parseCount(firstMatch(wordCountRe, content))
	report.Model = firstMatch(modelRe, content)
	if report.Model == "" {
		report.Model = "Unknown"
	}

	return report, true
}

func firstMatch(re *regexp.Regexp, content string) string {
	matches := re.FindStringSubmatch(content)
	if len(matches) >= 2 {
		return strings.TrimSpace(matches[1])
	}
	return ""
}

func parseCount(s string) int {
	n, _ := strconv.Atoi(strings.ReplaceAll(s, ",", ""))
	return n
}

func totals(reports []blogReport) (inputTokens, outputTokens int, cost float64) {
	for _, r := range reports {
		inputTokens += r.InputTokens
		outputTokens += r.OutputTokens
		cost += r.Cost
	}
	return inputTokens, outputTokens, cost
}

// printBreakdown writes the per-blog table to the console.
func printBreakdown(reports []blogReport) {
	inputTokens, outputTokens, cost := totals(reports)
	totalTokens := inputTokens + outputTokens
	avgCost := cost / float64(len(reports))

	fmt.Println("COST REPORT - TOKEN USAGE")
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("Report Date: %s\n", time.Now().Format("2006-01-02 15:04:05"))
	fmt.Printf("Model Used: %s\n", reports[0].Model)
	fmt.Printf("Total Blogs: %d\n", len(reports))
	fmt.Printf("Total Input Tokens: %s\n", humanize.Comma(int64(inputTokens)))
	fmt.Printf("Total Output Tokens: %s\n", humanize.Comma(int64(outputTokens)))
	fmt.Printf("Total Tokens: %s\n", humanize.Comma(int64(totalTokens)))
	fmt.Printf("Total Cost: $%.4f\n", cost)
	fmt.Printf("Average Cost per Blog: $%.4f\n", avgCost)
	if totalTokens > 0 {
		fmt.Printf("Cost per 1,000 tokens: $%.4f\n", cost*1000/float64(totalTokens))
	}

	fmt.Println("\nINDIVIDUAL BLOG BREAKDOWN:")
	fmt.Println(strings.Repeat("-", 80))
	fmt.Printf("%-3s %-35s %-8s %-6s %-8s\n", "#", "Topic", "Tokens", "Words", "Cost")
	fmt.Println(strings.Repeat("-", 80))
	for i, r := range reports {
		topic := r.Topic
		if len(topic) > 34 {
			topic = topic[:34] + "..."
		}
		fmt.Printf("%-3d %-35s %-8s %-6d $%-7.4f\n", i+1, topic, humanize.Comma(int64(r.TotalTokens)), r.WordCount, r.Cost)
	}
}

// formatCostReport renders the detailed text report.
func formatCostReport(reports []blogReport) string {
	inputTokens, outputTokens, cost := totals(reports)
	totalTokens := inputTokens + outputTokens
	avgCost := cost / float64(len(reports))

	var b strings.Builder
	b.WriteString("BLOG GENERATION - TOKEN USAGE AND COST REPORT\n")
	b.WriteString(strings.Repeat("=", 60) + "\n\n")
	fmt.Fprintf(&b, "Report Generated: %s\n\n", time.Now().Format("2006-01-02 15:04:05"))

	b.WriteString("SUMMARY:\n")
	b.WriteString(strings.Repeat("-", 30) + "\n")
	fmt.Fprintf(&b, "Model Used: %s\n", reports[0].Model)
	fmt.Fprintf(&b, "Total Blogs: %d\n", len(reports))
	fmt.Fprintf(&b, "Total Input Tokens: %s\n", humanize.Comma(int64(inputTokens)))
	fmt.Fprintf(&b, "Total Output Tokens: %s\n", humanize.Comma(int64(outputTokens)))
	fmt.Fprintf(&b, "Total Tokens: %s\n", humanize.Comma(int64(totalTokens)))
	fmt.Fprintf(&b, "Total Cost: $%.4f\n", cost)
	fmt.Fprintf(&b, "Average Cost per Blog: $%.4f\n", avgCost)
	if totalTokens > 0 {
		fmt.Fprintf(&b, "Cost per 1,000 tokens: $%.4f\n", cost*1000/float64(totalTokens))
	}

	b.WriteString("\nPRICING BREAKDOWN:\n")
	b.WriteString(strings.Repeat("-", 30) + "\n")
	fmt.Fprintf(&b, "Input Token Cost ($%g/1K): $%.4f\n", inputRatePer1K, float64(inputTokens)*inputRatePer1K/1000)
	fmt.Fprintf(&b, "Output Token Cost ($%g/1K): $%.4f\n", outputRatePer1K, float64(outputTokens)*outputRatePer1K/1000)

	b.WriteString("\nINDIVIDUAL BLOG DETAILS:\n")
	b.WriteString(strings.Repeat("-", 30) + "\n")
	for i, r := range reports {
		fmt.Fprintf(&b, "\nBlog %d: %s\n", i+1, r.Topic)
		fmt.Fprintf(&b, "  Input Tokens: %s\n", humanize.Comma(int64(r.InputTokens)))
		fmt.Fprintf(&b, "  Output Tokens: %s\n", humanize.Comma(int64(r.OutputTokens)))
		fmt.Fprintf(&b, "  Total Tokens: %s\n", humanize.Comma(int64(r.TotalTokens)))
		fmt.Fprintf(&b, "  Word Count: %d\n", r.WordCount)
		fmt.Fprintf(&b, "  Cost: $%.4f\n", r.Cost)
	}

	return b.String()
}

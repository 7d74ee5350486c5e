// Command apitest runs a smoke suite against a running daily-office server.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// =============================================================================
// Response Types - Match the actual API response structure
// =============================================================================

type APIResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   *ErrorInfo      `json:"error,omitempty"`
}

type ErrorInfo struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type Lessons struct {
	First     []string `json:"first"`
	Second    []string `json:"second"`
	Communion *struct {
		Epistle []string `json:"epistle"`
		Gospel  []string `json:"gospel"`
	} `json:"communion,omitempty"`
	Collects []struct {
		Title string `json:"title"`
	} `json:"collects"`
}

// Item is one day of the lectionary.
type Item struct {
	Date                string  `json:"date"`
	Season              string  `json:"season"`
	PrimaryObservance   string  `json:"primaryObservance"`
	SecondaryObservance string  `json:"secondaryObservance,omitempty"`
	Morning             Lessons `json:"morning"`
	Evening             Lessons `json:"evening"`
}

type HealthResponse struct {
	Status string         `json:"status"`
	Tables map[string]int `json:"tables"`
}

type Season struct {
	Name  string `json:"name"`
	Start string `json:"start"`
	End   string `json:"end"`
}

type SeasonsResponse struct {
	LiturgicalYear int      `json:"liturgicalYear"`
	Current        Season   `json:"current"`
	Seasons        []Season `json:"seasons"`
}

// =============================================================================
// Test Runner
// =============================================================================

type TestRunner struct {
	baseURL      string
	client       *http.Client
	out          io.Writer
	verbose      bool
	successCount int
	errorCount   int
	errors       []string
}

func NewTestRunner(baseURL string, out io.Writer, verbose bool) *TestRunner {
	return &TestRunner{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		out:     out,
		verbose: verbose,
	}
}

func (tr *TestRunner) Run() {
	fmt.Fprintln(tr.out, "==============================================")
	fmt.Fprintln(tr.out, "Daily Office API Test Suite")
	fmt.Fprintln(tr.out, "==============================================")
	fmt.Fprintf(tr.out, "Base URL: %s\n", tr.baseURL)

	tr.testHealth()
	tr.testToday()
	tr.testSpecificDates()
	tr.testSeasons()
	tr.testDateRange()
	tr.testICS()
	tr.testEdgeCases()

	tr.printSummary()
}

// =============================================================================
// Test Groups
// =============================================================================

func (tr *TestRunner) testHealth() {
	tr.printSection("Health Check")

	var health HealthResponse
	if err := tr.getData("/health", &health); err != nil {
		tr.recordError("Health", err.Error())
		return
	}

	if health.Status != "healthy" {
		tr.recordError("Health", fmt.Sprintf("Unexpected status: %s", health.Status))
		return
	}
	tr.recordSuccess(fmt.Sprintf("Health check passed %v", health.Tables))
}

func (tr *TestRunner) testToday() {
	tr.printSection("Today's Lectionary")

	status, err := tr.status("/api/v1/lectionary/today")
	switch {
	case err != nil:
		tr.recordError("Today", err.Error())
	case status == http.StatusOK || status == http.StatusNotFound:
		tr.recordSuccess(fmt.Sprintf("Today answered HTTP %d", status))
	default:
		tr.recordError("Today", fmt.Sprintf("HTTP %d", status))
	}
}

func (tr *TestRunner) testSpecificDates() {
	tr.printSection("Specific Date Tests")

	testCases := []struct {
		date        string
		observance  string
		season      string
		description string
	}{
		{"2025-12-01", "Monday after the First Sunday of Advent", "Advent", "Weekday takes the Sunday's title"},
		{"2025-12-24", "Christmas Eve", "Advent", "Vigil"},
		{"2025-12-25", "Christmas Day", "Christmastide", "Principal feast"},
		{"2026-04-05", "Easter Day", "Eastertide", "Easter 2026"},
		{"2026-10-18", "Twentieth Sunday after Trinity", "Trinitytide", "Sunday outranks St Luke"},
	}

	for _, tc := range testCases {
		var item Item
		if err := tr.getData("/api/v1/lectionary/date/"+tc.date, &item); err != nil {
			tr.recordError(tc.description, err.Error())
			continue
		}

		if item.PrimaryObservance != tc.observance || item.Season != tc.season {
			tr.recordError(tc.description, fmt.Sprintf("got %q in %s, want %q in %s",
				item.PrimaryObservance, item.Season, tc.observance, tc.season))
			continue
		}

		tr.recordSuccess(fmt.Sprintf("%s: %s (%s)", tc.date, item.PrimaryObservance, tc.description))
		if tr.verbose {
			tr.printItemDetail(&item)
		}
	}
}

func (tr *TestRunner) testSeasons() {
	tr.printSection("Seasons")

	var data SeasonsResponse
	if err := tr.getData("/api/v1/calendar/seasons?date=2026-01-01", &data); err != nil {
		tr.recordError("Seasons", err.Error())
		return
	}
	if len(data.Seasons) != 8 {
		tr.recordError("Seasons", fmt.Sprintf("expected 8 seasons, got %d", len(data.Seasons)))
		return
	}
	for i := 1; i < len(data.Seasons); i++ {
		if data.Seasons[i].Start <= data.Seasons[i-1].End {
			tr.recordError("Seasons", fmt.Sprintf("%s overlaps %s", data.Seasons[i].Name, data.Seasons[i-1].Name))
			return
		}
	}
	tr.recordSuccess(fmt.Sprintf("Liturgical year %d: 8 ordered seasons, current %s", data.LiturgicalYear, data.Current.Name))
}

func (tr *TestRunner) testDateRange() {
	tr.printSection("Full December 2025 (Advent → Christmas)")

	var items []Item
	if err := tr.getData("/api/v1/lectionary/range?start=2025-12-01&end=2025-12-31", &items); err != nil {
		tr.recordError("December", err.Error())
		return
	}

	if len(items) != 31 {
		tr.recordError("December", fmt.Sprintf("expected 31 days, got %d", len(items)))
	}
	for _, item := range items {
		if item.PrimaryObservance == "" {
			tr.recordError(item.Date, "missing observance title")
			continue
		}
		tr.recordSuccess(fmt.Sprintf("%s: %s [%s]", item.Date, item.PrimaryObservance, item.Season))
		if tr.verbose {
			tr.printItemDetail(&item)
		}
	}
}

func (tr *TestRunner) testICS() {
	tr.printSection("iCalendar Feed")

	resp, err := tr.getRaw("/api/v1/calendar/2026.ics")
	if err != nil {
		tr.recordError("ICS", err.Error())
		return
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		tr.recordError("ICS", err.Error())
		return
	}
	if resp.StatusCode != http.StatusOK || !strings.HasPrefix(string(body), "BEGIN:VCALENDAR") {
		tr.recordError("ICS", fmt.Sprintf("HTTP %d, %d bytes", resp.StatusCode, len(body)))
		return
	}
	tr.recordSuccess(fmt.Sprintf("2026.ics: %d events", strings.Count(string(body), "BEGIN:VEVENT")))
}

func (tr *TestRunner) testEdgeCases() {
	tr.printSection("Edge Cases")

	testCases := []struct {
		path   string
		status int
		name   string
	}{
		{"/api/v1/lectionary/date/2025-13-01", http.StatusBadRequest, "Invalid month"},
		{"/api/v1/lectionary/date/1850-01-01", http.StatusBadRequest, "Year out of range"},
		{"/api/v1/lectionary/range?start=0005-12-25&end=0005-12-26", http.StatusBadRequest, "Range year out of range"},
		{"/api/v1/lectionary/range?start=2026-01-01&end=2026-12-31", http.StatusBadRequest, "Range too long"},
		{"/api/v1/lectionary/range?start=2026-02-01&end=2026-01-01", http.StatusBadRequest, "Range reversed"},
		{"/api/v1/nope", http.StatusNotFound, "Unknown route"},
	}

	for _, tc := range testCases {
		status, err := tr.status(tc.path)
		if err != nil {
			tr.recordError(tc.name, err.Error())
			continue
		}
		if status != tc.status {
			tr.recordError(tc.name, fmt.Sprintf("HTTP %d, want %d", status, tc.status))
			continue
		}
		tr.recordSuccess(fmt.Sprintf("%s → %d", tc.name, status))
	}
}

// =============================================================================
// Helper Methods
// =============================================================================

// getData fetches path and decodes the envelope's data into target.
func (tr *TestRunner) getData(path string, target any) error {
	resp, err := tr.getRaw(path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var apiResp APIResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return fmt.Errorf("parse error: %w", err)
	}

	if !apiResp.Success {
		errMsg := "unknown error"
		if apiResp.Error != nil {
			errMsg = apiResp.Error.Message
		}
		return fmt.Errorf("API error: %s", errMsg)
	}

	return json.Unmarshal(apiResp.Data, target)
}

func (tr *TestRunner) status(path string) (int, error) {
	resp, err := tr.getRaw(path)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	return resp.StatusCode, nil
}

func (tr *TestRunner) getRaw(path string) (*http.Response, error) {
	return tr.client.Get(tr.baseURL + path)
}

func (tr *TestRunner) printSection(name string) {
	fmt.Fprintf(tr.out, "\n--- %s ---\n\n", name)
}

func (tr *TestRunner) printItemDetail(item *Item) {
	if item.SecondaryObservance != "" {
		fmt.Fprintf(tr.out, "    Also: %s\n", item.SecondaryObservance)
	}
	fmt.Fprintf(tr.out, "    Morning: %v / %v\n", item.Morning.First, item.Morning.Second)
	fmt.Fprintf(tr.out, "    Evening: %v / %v\n", item.Evening.First, item.Evening.Second)
	if c := item.Morning.Communion; c != nil {
		fmt.Fprintf(tr.out, "    Communion: %v / %v\n", c.Epistle, c.Gospel)
	}
	fmt.Fprintln(tr.out)
}

func (tr *TestRunner) recordSuccess(msg string) {
	tr.successCount++
	fmt.Fprintf(tr.out, "  ✓ %s\n", msg)
}

func (tr *TestRunner) recordError(context, msg string) {
	tr.errorCount++
	errStr := fmt.Sprintf("%s: %s", context, msg)
	tr.errors = append(tr.errors, errStr)
	fmt.Fprintf(tr.out, "  ✗ %s\n", errStr)
}

func (tr *TestRunner) printSummary() {
	fmt.Fprintln(tr.out)
	fmt.Fprintln(tr.out, "==============================================")
	fmt.Fprintln(tr.out, "Summary")
	fmt.Fprintln(tr.out, "==============================================")
	fmt.Fprintf(tr.out, "  Passed: %d\n", tr.successCount)
	fmt.Fprintf(tr.out, "  Failed: %d\n\n", tr.errorCount)

	if tr.errorCount > 0 {
		fmt.Fprintln(tr.out, "Failures:")
		for _, err := range tr.errors {
			fmt.Fprintf(tr.out, "  • %s\n", err)
		}
		fmt.Fprintf(tr.out, "\nTests completed with %d failure(s)\n", tr.errorCount)
		return
	}
	fmt.Fprintln(tr.out, "All tests passed! ✓")
}

// =============================================================================
// Main
// =============================================================================

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "Base URL of the API")
	verbose := flag.Bool("v", false, "Verbose output (show lessons)")
	flag.Parse()

	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(*baseURL + "/health")
	if err != nil {
		fmt.Printf("Error: Cannot connect to %s\n", *baseURL)
		fmt.Println("Make sure the API server is running.")
		os.Exit(1)
	}
	resp.Body.Close()

	runner := NewTestRunner(*baseURL, os.Stdout, *verbose)
	runner.Run()

	if runner.errorCount > 0 {
		os.Exit(1)
	}
}

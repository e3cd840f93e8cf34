package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// PurchaseRequest represents the purchase payload
type PurchaseRequest struct {
	ProductID             string `json:"productId"`
	PackageID             string `json:"packageId"`
	PaymentMethodID       string `json:"paymentMethodId"`
	GameAccountID         string `json:"gameAccountId"`
	ConfirmationRequested bool   `json:"confirmationRequested"`
}

// PurchaseResponse represents the fields of the API response the test reads
type PurchaseResponse struct {
	Outcome     string `json:"outcome"`
	Transaction *struct {
		TransactionID string `json:"transactionId"`
		Status        string `json:"status"`
	} `json:"transaction"`
}

// BalanceResponse represents the balance endpoint response
type BalanceResponse struct {
	UserID  string `json:"userId"`
	Balance int64  `json:"balance"`
}

// TestResult contains metrics for a single purchase, including its confirmation if any
type TestResult struct {
	Outcome      string
	ResponseTime time.Duration
	StatusCode   int
	Error        error
}

// TestStats contains aggregated test statistics
type TestStats struct {
	TotalRequests int
	Completed     int
	TotalTime     time.Duration
	ResponseTimes []time.Duration
	OutcomeCounts map[string]int
	ErrorCounts   map[string]int
	UserStats     map[string]int
	ScenarioStats map[string]int
	Lock          sync.Mutex
}

// PurchaseScenario is one package bought with one payment method
type PurchaseScenario struct {
	Name            string
	ProductID       string
	PackageID       string
	PaymentMethodID string
}

func main() {
	concurrency := flag.Int("c", 5, "Number of concurrent goroutines")
	totalRequests := flag.Int("n", 100, "Total number of purchases to make")
	usersStr := flag.String("u", "demo-user-1,demo-user-2", "Comma-separated list of user IDs to distribute load across")
	baseURL := flag.String("url", "http://localhost:8080", "Base URL for the API")
	secret := flag.String("secret", "dev-only-secret-change-me", "HS256 secret used to mint user tokens")
	delayMs := flag.Int("delay", 50, "Delay between requests in milliseconds")
	confirmRatio := flag.Float64("confirm", 0.3, "Share of purchases using the pending-then-confirm flow")
	flag.Parse()

	var users []string
	for _, id := range strings.Split(*usersStr, ",") {
		if id = strings.TrimSpace(id); id != "" {
			users = append(users, id)
		}
	}
	if len(users) == 0 {
		users = []string{"demo-user-1"}
	}

	tokens := make(map[string]string, len(users))
	for _, userID := range users {
		token, err := mintToken(*secret, userID)
		if err != nil {
			fmt.Printf("Failed to mint token for %s: %v\n", userID, err)
			return
		}
		tokens[userID] = token
	}

	scenarios := []PurchaseScenario{
		{"MLBB 86 wallet", "prod-mlbb", "pkg-mlbb-86", "pm-wallet"},
		{"MLBB 86 e-wallet", "prod-mlbb", "pkg-mlbb-86", "pm-ewallet"},
		{"MLBB 172 VA", "prod-mlbb", "pkg-mlbb-172", "pm-va"},
		{"FF 100 wallet", "prod-ff", "pkg-ff-100", "pm-wallet"},
		{"Play 50k e-wallet", "prod-gplay", "pkg-gplay-50k", "pm-ewallet"},
	}

	fmt.Printf("Load testing purchases across %d users: %v\n", len(users), users)
	fmt.Printf("Scenarios: %d, confirm share: %.0f%%\n", len(scenarios), *confirmRatio*100)
	fmt.Printf("Concurrency: %d goroutines, total purchases: %d, delay: %d ms\n", *concurrency, *totalRequests, *delayMs)

	client := &http.Client{Timeout: 30 * time.Second}

	before := fetchBalances(client, *baseURL, tokens)

	stats := &TestStats{
		TotalRequests: *totalRequests,
		ResponseTimes: make([]time.Duration, 0, *totalRequests),
		OutcomeCounts: make(map[string]int),
		ErrorCounts:   make(map[string]int),
		UserStats:     make(map[string]int),
		ScenarioStats: make(map[string]int),
	}

	results := make(chan TestResult, *totalRequests)
	jobs := make(chan int, *totalRequests)

	var wg sync.WaitGroup
	for i := 0; i < *concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			worker(client, *baseURL, tokens, users, scenarios, *delayMs, *confirmRatio, jobs, results, stats)
		}()
	}

	for i := 0; i < *totalRequests; i++ {
		jobs <- i
	}
	close(jobs)

	var collected sync.WaitGroup
	collected.Add(1)
	go func() {
		defer collected.Done()
		for result := range results {
			stats.Lock.Lock()
			stats.Completed++
			if result.Error != nil {
				stats.ErrorCounts[result.Error.Error()]++
			} else {
				stats.OutcomeCounts[result.Outcome]++
			}
			stats.ResponseTimes = append(stats.ResponseTimes, result.ResponseTime)
			stats.Lock.Unlock()
		}
	}()

	startTime := time.Now()
	ticker := time.NewTicker(time.Second)
	go func() {
		for range ticker.C {
			stats.Lock.Lock()
			if stats.Completed > 0 {
				fmt.Printf("Progress: %d/%d purchases completed (%.1f%%)\n",
					stats.Completed, stats.TotalRequests, float64(stats.Completed)/float64(stats.TotalRequests)*100)
			}
			stats.Lock.Unlock()
		}
	}()

	wg.Wait()
	close(results)
	collected.Wait()
	ticker.Stop()
	stats.TotalTime = time.Since(startTime)

	printResults(stats)
	printBalances(before, fetchBalances(client, *baseURL, tokens))
}

func mintToken(secret, userID string) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte(secret))
}

func worker(client *http.Client, baseURL string, tokens map[string]string, users []string,
	scenarios []PurchaseScenario, delayMs int, confirmRatio float64,
	jobs <-chan int, results chan<- TestResult, stats *TestStats) {

	for jobID := range jobs {
		if delayMs > 0 {
			time.Sleep(time.Duration(delayMs) * time.Millisecond)
		}

		userID := users[rand.Intn(len(users))]
		scenario := scenarios[rand.Intn(len(scenarios))]
		confirm := rand.Float64() < confirmRatio

		stats.Lock.Lock()
		stats.UserStats[userID]++
		stats.ScenarioStats[scenario.Name]++
		stats.Lock.Unlock()

		start := time.Now()
		result := purchase(client, baseURL, tokens[userID], PurchaseRequest{
			ProductID:             scenario.ProductID,
			PackageID:             scenario.PackageID,
			PaymentMethodID:       scenario.PaymentMethodID,
			GameAccountID:         fmt.Sprintf("load-%d", jobID),
			ConfirmationRequested: confirm,
		})
		result.ResponseTime = time.Since(start)
		results <- result
	}
}

// purchase creates a purchase and, for the confirm flow, confirms it.
// The reported outcome is the final one.
func purchase(client *http.Client, baseURL, token string, req PurchaseRequest) TestResult {
	body, err := json.Marshal(req)
	if err != nil {
		return TestResult{Error: err}
	}

	var created PurchaseResponse
	status, err := call(client, http.MethodPost, baseURL+"/v1/purchases", token, body, &created)
	if err != nil {
		return TestResult{StatusCode: status, Error: err}
	}
	if !req.ConfirmationRequested || created.Outcome != "accepted" || created.Transaction == nil {
		return TestResult{Outcome: "create:" + created.Outcome, StatusCode: status}
	}

	var confirmed PurchaseResponse
	url := fmt.Sprintf("%s/v1/purchases/%s/confirm", baseURL, created.Transaction.TransactionID)
	status, err = call(client, http.MethodPost, url, token, nil, &confirmed)
	if err != nil {
		return TestResult{StatusCode: status, Error: err}
	}
	return TestResult{Outcome: "confirm:" + confirmed.Outcome, StatusCode: status}
}

// call sends an authenticated request and decodes any JSON answer; only
// transport failures and 5xx answers without a body are errors
func call(client *http.Client, method, url, token string, body []byte, out any) (int, error) {
	req, err := http.NewRequest(method, url, bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, fmt.Errorf("HTTP status code %d", resp.StatusCode)
	}
	return resp.StatusCode, nil
}

func fetchBalances(client *http.Client, baseURL string, tokens map[string]string) map[string]int64 {
	balances := make(map[string]int64, len(tokens))
	for userID, token := range tokens {
		var resp BalanceResponse
		if _, err := call(client, http.MethodGet, baseURL+"/v1/balance", token, nil, &resp); err != nil {
			fmt.Printf("Failed to read balance of %s: %v\n", userID, err)
			continue
		}
		balances[userID] = resp.Balance
	}
	return balances
}

func percentile(sorted []time.Duration, p int) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	return sorted[len(sorted)*p/100]
}

func printResults(stats *TestStats) {
	sorted := slices.Clone(stats.ResponseTimes)
	slices.Sort(sorted)

	var total time.Duration
	for _, d := range sorted {
		total += d
	}
	var avg time.Duration
	if len(sorted) > 0 {
		avg = total / time.Duration(len(sorted))
	}

	fmt.Println("\n================= TEST RESULTS =================")
	fmt.Printf("Total Purchases:     %d\n", stats.TotalRequests)
	fmt.Printf("Completed:           %d\n", stats.Completed)
	fmt.Printf("Total Test Time:     %.2f seconds\n", stats.TotalTime.Seconds())
	fmt.Printf("Throughput:          %.2f purchases/s\n", float64(stats.Completed)/stats.TotalTime.Seconds())

	fmt.Println("\n----------------- RESPONSE TIMES -----------------")
	fmt.Printf("Average Response:    %v\n", avg)
	if len(sorted) > 0 {
		fmt.Printf("Minimum Response:    %v\n", sorted[0])
		fmt.Printf("Maximum Response:    %v\n", sorted[len(sorted)-1])
	}
	fmt.Printf("P50 Response:        %v\n", percentile(sorted, 50))
	fmt.Printf("P90 Response:        %v\n", percentile(sorted, 90))
	fmt.Printf("P99 Response:        %v\n", percentile(sorted, 99))

	fmt.Println("\n----------------- OUTCOMES -----------------")
	for outcome, count := range stats.OutcomeCounts {
		fmt.Printf("%-32s: %d\n", outcome, count)
	}

	fmt.Println("\n----------------- SCENARIO DISTRIBUTION -----------------")
	for scenario, count := range stats.ScenarioStats {
		fmt.Printf("%-20s: %d\n", scenario, count)
	}

	if len(stats.ErrorCounts) > 0 {
		fmt.Println("\n----------------- ERRORS -----------------")
		for errMsg, count := range stats.ErrorCounts {
			fmt.Printf("%-40s: %d\n", errMsg, count)
		}
	}
}

func printBalances(before, after map[string]int64) {
	fmt.Println("\n----------------- BALANCES -----------------")
	overdrawn := false
	for userID, end := range after {
		fmt.Printf("%-20s: %d -> %d\n", userID, before[userID], end)
		if end < 0 {
			overdrawn = true
		}
	}

	fmt.Println("\n================= CONCLUSION =================")
	if overdrawn {
		fmt.Println("FAIL: a balance went negative under concurrent purchases")
	} else {
		fmt.Println("OK: no balance went negative under concurrent purchases")
	}
	fmt.Println("================================================")
}

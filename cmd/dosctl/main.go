// Package main implements the dosctl CLI for manual operations against
// the dosd HTTP server.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var (
	// serverURL is the base URL for the dosd HTTP server
	serverURL string
	// sessionToken authenticates protected endpoints
	sessionToken string
	// version information
	version = "dev"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "dosctl",
	Short: "CLI for dosd platform operations",
	Long: `dosctl is a command-line interface for interacting with the dosd daemon.
It provides commands for checking platform status, querying the knowledge
base, executing workflows, and dispatching agent tasks.`,
	Version: version,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:9090", "dosd server URL")
	rootCmd.PersistentFlags().StringVar(&sessionToken, "token", os.Getenv("DOS_TOKEN"), "session token (defaults to DOS_TOKEN)")
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(agentsCmd)
	rootCmd.AddCommand(taskCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(workflowsCmd)
	rootCmd.AddCommand(executeCmd)
	rootCmd.AddCommand(pricingCmd)
}

// statusCmd shows platform status
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show platform status and pillar health",
	Long: `Show the platform status and the latest per-pillar health snapshot.

Examples:
  # Check status
  dosctl status

  # Check status on a different server
  dosctl status --server http://localhost:8080`,
	RunE: runStatus,
}

// loginCmd opens a session and prints the token
var loginCmd = &cobra.Command{
	Use:   "login <email>",
	Short: "Authenticate and print a session token",
	Long: `Authenticate against the platform and print the session token.
The password is read from the DOS_PASSWORD environment variable.

Examples:
  DOS_PASSWORD=secret dosctl login admin@brainsait.com`,
	Args: cobra.ExactArgs(1),
	RunE: runLogin,
}

// agentsCmd lists the registered agents
var agentsCmd = &cobra.Command{
	Use:   "agents",
	Short: "List registered agents and their status",
	RunE:  runAgents,
}

// taskCmd dispatches a task across agents
var taskCmd = &cobra.Command{
	Use:   "task <description> [agent...]",
	Short: "Dispatch a task across one or more agents",
	Long: `Dispatch a task across the named agents. With no agents given the
task goes to every registered agent.

Examples:
  dosctl task "process pending claims" ClaimLinc
  dosctl task "quarterly review" MasterLinc MapLinc`,
	Args: cobra.MinimumNArgs(1),
	RunE: runTask,
}

// queryCmd runs a knowledge base query
var queryCmd = &cobra.Command{
	Use:   "query <text>",
	Short: "Query the knowledge base",
	Long: `Run a semantic query against the knowledge base.

Examples:
  dosctl query "PDPL compliance requirements"
  dosctl query --domain Healthcare "NPHIES claim submission"`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

// workflowsCmd lists the workflow catalog
var workflowsCmd = &cobra.Command{
	Use:   "workflows",
	Short: "List the workflow catalog",
	RunE:  runWorkflows,
}

// executeCmd runs a workflow
var executeCmd = &cobra.Command{
	Use:   "execute <workflow>",
	Short: "Execute a catalog workflow and wait for its result",
	Long: `Execute a catalog workflow and wait for its result.

Examples:
  dosctl execute "Claim Processing" --subject claim-42
  dosctl execute "Client Onboarding" --subject client@clinic.sa`,
	Args: cobra.ExactArgs(1),
	RunE: runExecute,
}

// pricingCmd prints the pricing catalog
var pricingCmd = &cobra.Command{
	Use:   "pricing",
	Short: "Show the pricing catalog",
	RunE:  runPricing,
}

var (
	queryDomain    string
	queryLimit     int
	executeSubject string
)

func init() {
	queryCmd.Flags().StringVar(&queryDomain, "domain", "", "restrict results to one knowledge domain")
	queryCmd.Flags().IntVar(&queryLimit, "limit", 5, "maximum number of results")
	executeCmd.Flags().StringVar(&executeSubject, "subject", "", "primary entity the workflow operates on")
}

// doRequest sends one JSON request and decodes the response into out.
func doRequest(method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	url := serverURL + path
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if sessionToken != "" {
		req.Header.Set("Authorization", "Bearer "+sessionToken)
	}

	client := &http.Client{
		Timeout: 30 * time.Second,
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request to %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return fmt.Errorf("server returned status %d (failed to read response body: %w)", resp.StatusCode, readErr)
		}
		return fmt.Errorf("server returned status %d: %s", resp.StatusCode, string(respBody))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	var resp struct {
		Status  string            `json:"status"`
		Overall string            `json:"overall_health"`
		Pillars map[string]string `json:"pillars"`
		Counts  struct {
			Agents    int `json:"agents"`
			Documents int `json:"documents"`
			Workflows int `json:"workflows"`
		} `json:"counts"`
	}
	if err := doRequest(http.MethodGet, "/api/v1/status", nil, &resp); err != nil {
		return err
	}

	fmt.Printf("Platform Status: %s\n", resp.Status)
	fmt.Printf("Overall Health:  %s\n", resp.Overall)
	fmt.Println("Pillars:")
	for _, name := range []string{"identity", "knowledge", "automation", "agents", "monetization"} {
		fmt.Printf("  %-13s %s\n", name, resp.Pillars[name])
	}
	fmt.Printf("Agents: %d  Documents: %d  Workflows: %d\n",
		resp.Counts.Agents, resp.Counts.Documents, resp.Counts.Workflows)
	return nil
}

func runLogin(cmd *cobra.Command, args []string) error {
	password := os.Getenv("DOS_PASSWORD")
	if password == "" {
		return fmt.Errorf("set DOS_PASSWORD to authenticate")
	}

	var resp struct {
		Session struct {
			Token     string    `json:"token"`
			ExpiresAt time.Time `json:"expires_at"`
		} `json:"session"`
	}
	body := map[string]string{"email": args[0], "password": password}
	if err := doRequest(http.MethodPost, "/api/v1/auth/login", body, &resp); err != nil {
		return err
	}

	fmt.Println(resp.Session.Token)
	fmt.Fprintf(os.Stderr, "[dosctl] session expires %s\n", resp.Session.ExpiresAt.Format(time.RFC3339))
	return nil
}

func runAgents(cmd *cobra.Command, args []string) error {
	var agents []struct {
		Type        string `json:"type"`
		Description string `json:"description"`
		Status      string `json:"status"`
	}
	if err := doRequest(http.MethodGet, "/api/v1/agents", nil, &agents); err != nil {
		return err
	}

	for _, agent := range agents {
		fmt.Printf("%-12s %-8s %s\n", agent.Type, agent.Status, agent.Description)
	}
	return nil
}

func runTask(cmd *cobra.Command, args []string) error {
	body := map[string]any{
		"task":   args[0],
		"agents": args[1:],
	}

	var outcomes map[string]struct {
		Result struct {
			Output map[string]string `json:"output"`
		} `json:"result"`
		Error string `json:"error,omitempty"`
	}
	if err := doRequest(http.MethodPost, "/api/v1/agents/tasks", body, &outcomes); err != nil {
		return err
	}

	for agent, outcome := range outcomes {
		if outcome.Error != "" {
			fmt.Printf("%-12s FAILED: %s\n", agent, outcome.Error)
			continue
		}
		pairs := make([]string, 0, len(outcome.Result.Output))
		for k, v := range outcome.Result.Output {
			pairs = append(pairs, k+"="+v)
		}
		fmt.Printf("%-12s ok %s\n", agent, strings.Join(pairs, " "))
	}
	return nil
}

func runQuery(cmd *cobra.Command, args []string) error {
	body := map[string]any{
		"query":  args[0],
		"domain": queryDomain,
		"limit":  queryLimit,
	}

	var results []struct {
		Document struct {
			Title  string `json:"title"`
			Domain string `json:"domain"`
		} `json:"document"`
		Score   float32 `json:"score"`
		Snippet string  `json:"snippet"`
	}
	if err := doRequest(http.MethodPost, "/api/v1/knowledge/query", body, &results); err != nil {
		return err
	}

	if len(results) == 0 {
		fmt.Println("No results.")
		return nil
	}
	for i, r := range results {
		fmt.Printf("%d. [%.2f] %s (%s)\n   %s\n", i+1, r.Score, r.Document.Title, r.Document.Domain, r.Snippet)
	}
	return nil
}

func runWorkflows(cmd *cobra.Command, args []string) error {
	var workflows []struct {
		Name        string   `json:"name"`
		Description string   `json:"description"`
		Triggers    []string `json:"triggers"`
		Active      bool     `json:"active"`
	}
	if err := doRequest(http.MethodGet, "/api/v1/workflows", nil, &workflows); err != nil {
		return err
	}

	for _, wf := range workflows {
		state := "inactive"
		if wf.Active {
			state = "active"
		}
		fmt.Printf("%-22s %-8s triggers=%s\n  %s\n", wf.Name, state, strings.Join(wf.Triggers, ","), wf.Description)
	}
	return nil
}

func runExecute(cmd *cobra.Command, args []string) error {
	body := map[string]any{
		"name": args[0],
		"params": map[string]any{
			"requester": "dosctl",
			"subject":   executeSubject,
		},
	}

	var result struct {
		ExecutionID string            `json:"execution_id"`
		Status      string            `json:"status"`
		Output      map[string]string `json:"output"`
		Error       string            `json:"error,omitempty"`
	}
	if err := doRequest(http.MethodPost, "/api/v1/workflows/execute", body, &result); err != nil {
		return err
	}

	fmt.Printf("Execution: %s\n", result.ExecutionID)
	fmt.Printf("Status:    %s\n", result.Status)
	for k, v := range result.Output {
		fmt.Printf("  %s=%s\n", k, v)
	}
	if result.Error != "" {
		fmt.Fprintf(os.Stderr, "[dosctl] execution failed: %s\n", result.Error)
	}
	return nil
}

func runPricing(cmd *cobra.Command, args []string) error {
	var resp map[string][]struct {
		Name         string  `json:"name"`
		MonthlyPrice float64 `json:"monthly_price"`
		Description  string  `json:"description"`
	}
	if err := doRequest(http.MethodGet, "/api/v1/pricing", nil, &resp); err != nil {
		return err
	}

	for product, plans := range resp {
		fmt.Printf("%s:\n", product)
		for _, plan := range plans {
			fmt.Printf("  %-24s %8.0f SAR/mo  %s\n", plan.Name, plan.MonthlyPrice, plan.Description)
		}
	}
	return nil
}

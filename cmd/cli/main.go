package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	baseURL   string
	timeout   time.Duration
	authToken string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "ledger-cli",
		Short: "QuickDrop ledger CLI",
		Long:  `A command line interface for the QuickDrop wallet and settlement ledger API.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the ledger API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")
	rootCmd.PersistentFlags().StringVar(&authToken, "token", "", "Operator bearer token for protected endpoints")

	rootCmd.AddCommand(walletCmd())
	rootCmd.AddCommand(payoutCmd())
	rootCmd.AddCommand(settlementCmd())
	rootCmd.AddCommand(ledgerCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func walletCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wallet",
		Short: "Wallet operations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "balance <entity-type> <entity-id>",
		Short: "Show a wallet's balances",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			get(fmt.Sprintf("/api/v1/wallets/%s/%s", args[0], args[1]))
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "transactions <entity-type> <entity-id>",
		Short: "List a wallet's ledger rows",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			get(fmt.Sprintf("/api/v1/wallets/%s/%s/transactions", args[0], args[1]))
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "verify <entity-type> <entity-id>",
		Short: "Replay a wallet from its ledger rows",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			get(fmt.Sprintf("/api/v1/wallets/%s/%s/verify", args[0], args[1]))
		},
	})

	return cmd
}

func payoutCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "payout",
		Short: "Payout operations",
	}

	var status string
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List payout requests by status",
		Run: func(cmd *cobra.Command, args []string) {
			get("/api/v1/payouts/?status=" + status)
		},
	}
	listCmd.Flags().StringVar(&status, "status", "PENDING", "Payout status to list")
	cmd.AddCommand(listCmd)

	var reference string
	approveCmd := &cobra.Command{
		Use:   "approve <payout-id>",
		Short: "Approve a pending payout",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			post("/api/v1/payouts/"+args[0]+"/approve", map[string]string{
				"external_reference": reference,
			})
		},
	}
	approveCmd.Flags().StringVar(&reference, "reference", "", "Payment rail reference of the disbursement")
	cmd.AddCommand(approveCmd)

	var reason string
	rejectCmd := &cobra.Command{
		Use:   "reject <payout-id>",
		Short: "Reject a pending payout and release its hold",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			post("/api/v1/payouts/"+args[0]+"/reject", map[string]string{
				"reason": reason,
			})
		},
	}
	rejectCmd.Flags().StringVar(&reason, "reason", "", "Reason for the rejection")
	cmd.AddCommand(rejectCmd)

	return cmd
}

func settlementCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settlement",
		Short: "Settlement operations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "get <order-id>",
		Short: "Show the settlement receipt for an order",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			get("/api/v1/settlements/order/" + args[0])
		},
	})

	return cmd
}

func ledgerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Ledger operations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "consistency",
		Short: "Sweep all wallets against the ledger identity",
		Run: func(cmd *cobra.Command, args []string) {
			get("/api/v1/ledger/consistency")
		},
	})

	return cmd
}

func get(path string) {
	do(http.MethodGet, path, nil)
}

func post(path string, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		fmt.Printf("Failed to encode request: %v\n", err)
		os.Exit(1)
	}
	do(http.MethodPost, path, body)
}

func do(method, path string, body []byte) {
	req, err := newRequest(method, baseURL+path, body)
	if err != nil {
		fmt.Printf("Failed to build request: %v\n", err)
		os.Exit(1)
	}

	client := &http.Client{Timeout: timeout}
	resp, err := client.Do(req)
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		fmt.Printf("Request FAILED (Status: %d)\nResponse: %s\n", resp.StatusCode, truncate(string(respBody), 500))
		os.Exit(1)
	}

	var result any
	if err := json.Unmarshal(respBody, &result); err != nil {
		fmt.Println(string(respBody))
		return
	}
	printJSON(result)
}

func newRequest(method, url string, body []byte) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		return nil, err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authToken != "" {
		req.Header.Set("Authorization", "Bearer "+authToken)
	}

	return req, nil
}

func printJSON(v any) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("Failed to format response: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

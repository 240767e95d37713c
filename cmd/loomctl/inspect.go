package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spf13/cobra"
)

func inspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Query a running devtools inspector",
	}

	cmd.AddCommand(inspectTreeCmd(), inspectQueuesCmd(), inspectPortalsCmd(), inspectSessionsCmd())
	return cmd
}

func inspectSessionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sessions",
		Short: "List active sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, _ := cmd.Flags().GetString("addr")
			return fetchAndPrint(addr + "/sessions")
		},
	}
}

func inspectTreeCmd() *cobra.Command {
	var sessionID string
	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Print a session's live view-id tree",
		RunE: func(cmd *cobra.Command, args []string) error {
			if sessionID == "" {
				return fmt.Errorf("--session is required")
			}
			addr, _ := cmd.Flags().GetString("addr")
			return fetchAndPrint(addr + "/sessions/" + sessionID + "/tree")
		},
	}
	cmd.Flags().StringVar(&sessionID, "session", "", "session id to inspect")
	return cmd
}

func inspectQueuesCmd() *cobra.Command {
	var sessionID string
	cmd := &cobra.Command{
		Use:   "queues",
		Short: "Print a session's scheduler queue depths",
		RunE: func(cmd *cobra.Command, args []string) error {
			if sessionID == "" {
				return fmt.Errorf("--session is required")
			}
			addr, _ := cmd.Flags().GetString("addr")
			return fetchAndPrint(addr + "/sessions/" + sessionID + "/queues")
		},
	}
	cmd.Flags().StringVar(&sessionID, "session", "", "session id to inspect")
	return cmd
}

func inspectPortalsCmd() *cobra.Command {
	var sessionID string
	cmd := &cobra.Command{
		Use:   "portals",
		Short: "Print a session's anchor/portal bindings",
		RunE: func(cmd *cobra.Command, args []string) error {
			if sessionID == "" {
				return fmt.Errorf("--session is required")
			}
			addr, _ := cmd.Flags().GetString("addr")
			return fetchAndPrint(addr + "/sessions/" + sessionID + "/portals")
		},
	}
	cmd.Flags().StringVar(&sessionID, "session", "", "session id to inspect")
	return cmd
}

func fetchAndPrint(url string) error {
	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("loomctl: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("loomctl: reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("loomctl: %s returned %s: %s", url, resp.Status, body)
	}

	var pretty any
	if err := json.Unmarshal(body, &pretty); err != nil {
		fmt.Println(string(body))
		return nil
	}
	out, err := json.MarshalIndent(pretty, "", "  ")
	if err != nil {
		fmt.Println(string(body))
		return nil
	}
	fmt.Println(string(out))
	return nil
}

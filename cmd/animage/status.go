// If you are AI: This file implements `animage status`, which shows the slot pool of a
// running server.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"animage/internal/svc/api"
)

// statusTimeout bounds the /api/pool request.
const statusTimeout = 5 * time.Second

// fetchPool reads the pool snapshot from a server base URL.
func fetchPool(ctx context.Context, client *http.Client, baseURL string) (*api.PoolResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, statusTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(baseURL, "/")+"/api/pool", nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("query server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var apiErr api.ErrorResponse
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		return nil, fmt.Errorf("query server: status %d: %s", resp.StatusCode, apiErr.Error)
	}

	var pool api.PoolResponse
	if err := json.NewDecoder(resp.Body).Decode(&pool); err != nil {
		return nil, fmt.Errorf("decode pool: %w", err)
	}
	return &pool, nil
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var addr string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the slot pool of a running server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr == "" {
				cfg, err := ctx.ensureConfig()
				if err != nil {
					return err
				}
				addr = fmt.Sprintf("http://localhost:%d", cfg.Server.HTTPPort)
			}

			pool, err := fetchPool(cmd.Context(), http.DefaultClient, addr)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, pool)
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderPool(pool))
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Server base URL (default http://localhost:<http_port>)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON instead of a table")
	return cmd
}

func renderPool(pool *api.PoolResponse) string {
	rows := make([][]string, 0, len(pool.Slots))
	for _, s := range pool.Slots {
		size := "-"
		if s.Width > 0 {
			size = fmt.Sprintf("%dx%d", s.Width, s.Height)
		}
		active := ""
		if s.Active {
			active = "*"
		}
		rows = append(rows, []string{
			s.ID,
			s.State,
			orDash(s.Surface),
			orDash(s.Source),
			size,
			strconv.Itoa(s.Frames),
			strconv.Itoa(s.LoopsRemaining),
			strconv.Itoa(s.Presented),
			active,
		})
	}
	return renderTable(
		[]string{"Slot", "State", "Surface", "Source", "Size", "Frames", "Loops Left", "Presented", "Active"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignLeft},
	)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

package main

import (
	"encoding/json"
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/insights-agent/internal/orchestrator"
)

var (
	askPropertyID string
	askSheetID    string
	askShowData   bool
)

var askCmd = &cobra.Command{
	Use:   "ask [query]",
	Short: "Answer a single question from the command line",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := args[0]
		if len(query) > maxQueryLength {
			return eris.Errorf("query exceeds maximum length of %d characters", maxQueryLength)
		}

		orch := buildOrchestrator(cfg)
		resp := orch.Process(cmd.Context(), orchestrator.Request{
			Query:      query,
			PropertyID: askPropertyID,
			SheetID:    askSheetID,
		})

		fmt.Printf("[%s]\n%s\n", resp.AgentUsed, resp.Answer)

		if askShowData && resp.Data != nil {
			raw, err := json.MarshalIndent(resp.Data, "", "  ")
			if err != nil {
				return eris.Wrap(err, "marshal data")
			}
			fmt.Println(string(raw))
		}

		return nil
	},
}

func init() {
	askCmd.Flags().StringVar(&askPropertyID, "property-id", "", "GA4 property ID override")
	askCmd.Flags().StringVar(&askSheetID, "sheet-id", "", "Google Sheet ID override")
	askCmd.Flags().BoolVar(&askShowData, "data", false, "print the data payload as JSON")
	rootCmd.AddCommand(askCmd)
}

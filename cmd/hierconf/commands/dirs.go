package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hierconf/hierconf/internal/logging"
)

var dirsCmd = &cobra.Command{
	Use:   "dirs",
	Short: "List the discovered configuration directories",
	Long: `List every configuration directory the hierarchical walk discovers,
nearest first, with its level. Levels that exist but contribute no document
are still listed.`,
	RunE: runDirs,
}

func runDirs(cmd *cobra.Command, args []string) error {
	result, err := loadHierarchy()
	if err != nil {
		return err
	}

	for _, e := range result.Errors {
		logging.Warn().Msg(e)
	}

	data, err := json.MarshalIndent(result.DiscoveredDirs, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hierconf/hierconf/pkg/boundary"
	"github.com/hierconf/hierconf/pkg/hierarchy"
	"github.com/hierconf/hierconf/pkg/merge"
	"github.com/hierconf/hierconf/pkg/naming"
	"github.com/hierconf/hierconf/pkg/parser"
	"github.com/hierconf/hierconf/pkg/rootmark"
)

var (
	appendFields  []string
	prependFields []string
	pathFields    []string
	stopAtRoot    bool
	allowUnsafe   bool
)

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Print the merged configuration as JSON",
	RunE:  runResolve,
}

func init() {
	resolveCmd.Flags().StringArrayVar(&appendFields, "append", nil, "Dot-path field merged by appending sequence elements")
	resolveCmd.Flags().StringArrayVar(&prependFields, "prepend", nil, "Dot-path field merged by prepending sequence elements")
	resolveCmd.Flags().StringArrayVar(&pathFields, "path-field", nil, "Dot-path field resolved relative to its config directory")
	resolveCmd.Flags().BoolVar(&stopAtRoot, "stop-at-root", true, "Stop the walk at the project root")
	resolveCmd.Flags().BoolVar(&allowUnsafe, "unsafe", false, "Disable traversal boundary checks")
}

func runResolve(cmd *cobra.Command, args []string) error {
	result, err := loadHierarchy()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(result.Config, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

// loadHierarchy runs the core loader with the CLI's flags applied.
func loadHierarchy() (hierarchy.Result, error) {
	dir, err := getWorkDir()
	if err != nil {
		return hierarchy.Result{}, err
	}

	overlaps := merge.OverlapModes{}
	for _, f := range appendFields {
		overlaps[f] = merge.ModeAppend
	}
	for _, f := range prependFields {
		overlaps[f] = merge.ModePrepend
	}

	cfg := boundary.DefaultConfig()
	cfg.AllowUnsafe = allowUnsafe

	return hierarchy.Load(hierarchy.Options{
		StartingDir: dir,
		Naming: &naming.Options{
			AppName:        appName,
			Extensions:     parser.Default().Extensions(),
			SearchHidden:   true,
			WarnOnMultiple: true,
		},
		PathFields:    pathFields,
		FieldOverlaps: overlaps,
		Boundary:      boundary.New(cfg),
		StopAt:        rootmark.DefaultStopAt(),
		RootMarkers:   rootmark.DefaultMarkers(),
		StopAtRoot:    stopAtRoot,
	}), nil
}

package commands

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/hierconf/hierconf/pkg/rootmark"
)

var rootDirCmd = &cobra.Command{
	Use:   "root",
	Short: "Print the detected project root",
	RunE:  runRootDir,
}

func runRootDir(cmd *cobra.Command, args []string) error {
	dir, err := getWorkDir()
	if err != nil {
		return err
	}

	info, found := rootmark.FindRoot(afero.NewOsFs(), dir, rootmark.DefaultMarkers(), 0)
	if !found {
		return fmt.Errorf("no project root found above %s", dir)
	}

	fmt.Printf("%s (marker: %s %s)\n", info.Path, info.Matched.Kind, info.Matched.Name)
	return nil
}

package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hierconf/hierconf/pkg/boundary"
)

var checkCmd = &cobra.Command{
	Use:   "check <path>",
	Short: "Check a path against the default traversal boundary",
	Args:  cobra.ExactArgs(1),
	RunE:  runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	dir, err := getWorkDir()
	if err != nil {
		return err
	}

	v := boundary.Default().Check(args[0], dir)
	switch {
	case !v.Allowed:
		fmt.Printf("denied: %s\n", v.Reason)
	case v.SoftStop:
		fmt.Printf("allowed (stop point): %s\n", v.Reason)
	default:
		fmt.Println("allowed")
	}
	return nil
}

package cli

import "github.com/spf13/cobra"

func newDeleteCmd() *cobra.Command {
	return newRequestCmd("DELETE", "Make a DELETE request")
}

package cli

import "github.com/spf13/cobra"

func newPutCmd() *cobra.Command {
	return newRequestCmd("PUT", "Make a PUT request; parameters are form-encoded into the body")
}

package cli

import "github.com/spf13/cobra"

func newPostCmd() *cobra.Command {
	return newRequestCmd("POST", "Make a POST request; parameters are form-encoded into the body")
}

func newPatchCmd() *cobra.Command {
	return newRequestCmd("PATCH", "Make a PATCH request; parameters are form-encoded into the body")
}

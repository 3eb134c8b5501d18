// Command imapctl runs single IMAP commands against a server and prints the
// raw untagged response data.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	// Set via -ldflags at build time.
	version = "dev"
	commit  = ""
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	o := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:           "imapctl",
		Short:         "Run IMAP commands over a raw socket",
		Version:       versionString(),
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	o.register(rootCmd)

	rootCmd.AddCommand(
		newCapabilitiesCmd(o),
		newListCmd(o, "list"),
		newListCmd(o, "lsub"),
		newSelectCmd(o),
		newFetchCmd(o),
		newMessageCmd(o),
		newCredentialCmd(o),
	)
	return rootCmd
}

func versionString() string {
	if commit != "" {
		return fmt.Sprintf("%s (%s)", version, commit)
	}
	return version
}

package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	imap "github.com/BrianLeishman/imapsock"
	"github.com/BrianLeishman/imapsock/internal/credential"
)

func newCapabilitiesCmd(o *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "capabilities",
		Short: "Print the capabilities the server advertises after login",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.withClient(cmd, func(c *imap.Client) error {
				caps, err := c.Capabilities()
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), strings.Join(caps, "\n"))
				return nil
			})
		},
	}
}

// newListCmd builds both "list" and "lsub", which only differ in the
// command sent.
func newListCmd(o *globalOptions, name string) *cobra.Command {
	var reference string
	cmd := &cobra.Command{
		Use:   name + " [pattern]",
		Short: "Print the raw " + strings.ToUpper(name) + " response",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pattern := "*"
			if len(args) == 1 {
				pattern = args[0]
			}
			return o.withClient(cmd, func(c *imap.Client) error {
				run := c.List
				if name == "lsub" {
					run = c.Lsub
				}
				resp, err := run(reference, pattern)
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), resp)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&reference, "reference", "", "Reference name")
	return cmd
}

func newSelectCmd(o *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "select <mailbox>",
		Short: "Select a mailbox and print the untagged SELECT data",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.withClient(cmd, func(c *imap.Client) error {
				resp, err := c.Select(args[0])
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), resp)
				return nil
			})
		},
	}
}

func newFetchCmd(o *globalOptions) *cobra.Command {
	var items string
	cmd := &cobra.Command{
		Use:   "fetch <mailbox> <uid-set>",
		Short: "Run UID FETCH in a mailbox and print the untagged FETCH data",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.withClient(cmd, func(c *imap.Client) error {
				if _, err := c.Select(args[0]); err != nil {
					return err
				}
				resp, err := c.UIDFetch(args[1], items)
				if err != nil {
					return err
				}
				if resp == "" {
					fmt.Fprintln(os.Stderr, "no matching messages")
					return nil
				}
				fmt.Fprint(cmd.OutOrStdout(), resp)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&items, "items", "(UID FLAGS RFC822.SIZE)", "Fetch items")
	return cmd
}

func newMessageCmd(o *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "message <mailbox> <uid>",
		Short: "Fetch one message and print a decoded summary",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			uid, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid uid %q: %w", args[1], err)
			}
			return o.withClient(cmd, func(c *imap.Client) error {
				if _, err := c.Select(args[0]); err != nil {
					return err
				}
				e, err := c.FetchMessage(uid)
				if err != nil {
					return err
				}
				if e == nil {
					return fmt.Errorf("no message with UID %d in %s", uid, args[0])
				}
				fmt.Fprint(cmd.OutOrStdout(), e)
				return nil
			})
		},
	}
}

func newCredentialCmd(o *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "credential",
		Short: "Manage the secret stored in the OS keyring",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set",
		Short: "Prompt for the secret and store it in the keyring",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := o.loadConfig(cmd)
			if err != nil {
				return err
			}
			secret, err := promptSecret(cfg)
			if err != nil {
				return err
			}
			return credential.Set(credential.Key(cfg.Username, cfg.Host), secret)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete",
		Short: "Remove the stored secret from the keyring",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := o.loadConfig(cmd)
			if err != nil {
				return err
			}
			return credential.Delete(credential.Key(cfg.Username, cfg.Host))
		},
	})

	return cmd
}

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	cobradoc "github.com/spf13/cobra/doc"
)

const rootLongDesc = `
xmldocmd converts the XML documentation file the C# compiler emits
(<GenerateDocumentationFile>) into a single Markdown page per assembly.

The page opens with a table of contents, then one section per type with its
constructors, methods, properties, fields and events nested beneath. Cross
references become in-page links, and framework types link to the .NET API
browser.

Point --assembly (or --auto-assembly) at the compiled assembly to leave out
types that are not public. Settings can also come from .xmldocmd.yaml and
XMLDOCMD_* environment variables; flags win.
`

func newRootCmd(stdout io.Writer) *cobra.Command {
	app := &cliApp{stdout: stdout, stderr: os.Stderr}
	cmd := &cobra.Command{
		Use:           "xmldocmd [flags] <doc.xml>...",
		Short:         "Render .NET XML documentation as Markdown",
		Long:          strings.TrimSpace(rootLongDesc),
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.DisableAutoGenTag = true
	cmd.Version = Version
	cmd.SetOut(stdout)
	cmd.SetErr(io.Discard)
	cmd.CompletionOptions.DisableDefaultCmd = true

	flags := cmd.Flags()
	flags.StringVar(&app.opts.configPath, "config", "", "YAML config file (default .xmldocmd.yaml when present)")
	flags.StringVarP(&app.opts.assembly, "assembly", "a", "", "assembly used to leave out non-public types (single input only)")
	flags.BoolVar(&app.opts.autoAssembly, "auto-assembly", false, "look for <name>.dll or <name>.exe beside each XML file")
	flags.StringVarP(&app.opts.outputPath, "output", "o", "", "write Markdown to this file, or one file per input when it is a directory")
	flags.BoolVar(&app.opts.verify, "verify", false, "fail when a generated in-page link has no anchor")
	flags.StringVar(&app.opts.logLevel, "log-level", "", "debug, info, warn or error (default warn)")
	flags.StringVar(&app.opts.logFormat, "log-format", "", "console (stderr), json or pretty")
	_ = cmd.MarkFlagFilename("config", "yaml", "yml")
	_ = cmd.MarkFlagFilename("assembly", "dll", "exe")

	cmd.ValidArgsFunction = func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{"xml"}, cobra.ShellCompDirectiveFilterFileExt
	}
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		app.changed = cmd.Flags().Changed
		return app.execute(ctx, args)
	}

	cmd.AddCommand(newCompletionCmd(cmd))
	cmd.AddCommand(newDocsCmd(cmd))
	return cmd
}

func newCompletionCmd(root *cobra.Command) *cobra.Command {
	const (
		longDesc = `Generate shell completion scripts for xmldocmd.

The output should be evaluated by your shell. For example:

  # bash
  xmldocmd completion bash > /usr/local/etc/bash_completion.d/xmldocmd

  # zsh
  xmldocmd completion zsh > "${fpath[1]}/_xmldocmd"

  # fish
  xmldocmd completion fish | source

  # PowerShell
  xmldocmd completion powershell | Out-String | Invoke-Expression
`
	)
	cmd := &cobra.Command{
		Use:                   "completion [bash|zsh|fish|powershell]",
		Short:                 "Generate shell completion scripts",
		Long:                  longDesc,
		Args:                  cobra.ExactValidArgs(1),
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		SilenceUsage:          true,
		SilenceErrors:         true,
		DisableFlagsInUseLine: true,
	}
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		switch args[0] {
		case "bash":
			return root.GenBashCompletion(cmd.OutOrStdout())
		case "zsh":
			return root.GenZshCompletion(cmd.OutOrStdout())
		case "fish":
			return root.GenFishCompletion(cmd.OutOrStdout(), true)
		case "powershell":
			return root.GenPowerShellCompletion(cmd.OutOrStdout())
		default:
			return fmt.Errorf("unsupported shell %q", args[0])
		}
	}
	return cmd
}

func newDocsCmd(root *cobra.Command) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gen-docs [directory]",
		Short: "Generate Markdown reference docs for the CLI",
		Long: strings.TrimSpace(`
Write a Markdown file per command (suitable for publishing CLI docs).

Example:

  xmldocmd gen-docs ./docs/cli
`),
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		target := args[0]
		if target == "" {
			return fmt.Errorf("target directory is required")
		}
		if err := os.MkdirAll(target, 0o755); err != nil {
			return err
		}
		return cobradoc.GenMarkdownTree(root, target)
	}
	return cmd
}

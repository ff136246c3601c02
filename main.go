package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"

	"github.com/fatih/color"
	"github.com/graphport/wikitext/util"
	"github.com/graphport/wikitext/wikicode"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Fatal().Err(err).Msg("command failed")
	}
}

type rootOptions struct {
	configPath string
	noColor    bool
	verbose    bool
}

// setup loads the config and wires the global logger and color state.
// Every subcommand calls it first.
func (opts *rootOptions) setup() (util.Config, error) {
	config, err := util.LoadConfig(opts.configPath)
	if err != nil {
		return util.Config{}, err
	}

	level, err := zerolog.ParseLevel(config.LogLevel)
	if err != nil {
		return util.Config{}, fmt.Errorf("cannot parse log level: %w", err)
	}
	if opts.verbose {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)

	if config.Environment == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, NoColor: opts.noColor})
	}

	if opts.noColor {
		color.NoColor = true
	}

	return config, nil
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "wikitext",
		Short: "Parse, inspect and round-trip MediaWiki wikitext",
		Long: `wikitext parses MediaWiki markup into a node tree whose rendering
reproduces the input byte for byte. It can dump the parse tree or the
raw token stream, project a document to plain text, and batch-verify
that parsing stays lossless.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", ".", "directory holding the optional app.env config file")
	cmd.PersistentFlags().BoolVar(&opts.noColor, "no-color", false, "disable colored output")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "debug-level logging")

	cmd.AddCommand(newParseCmd(opts))
	cmd.AddCommand(newTokensCmd(opts))
	cmd.AddCommand(newStripCmd(opts))
	cmd.AddCommand(newCheckCmd(opts))

	return cmd
}

func newParseCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse [file]",
		Short: "Print the node tree of a document",
		Long: `Parse wikitext and print its node tree, one syntax element per line.
Reads standard input when no file is given or the file is "-".`,
		Example: `  wikitext parse page.wiki
  echo '{{foo|bar}}' | wikitext parse`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := root.setup(); err != nil {
				return err
			}

			text, err := readInput(fileArg(args))
			if err != nil {
				return err
			}

			return runParse(text, os.Stdout)
		},
	}

	return cmd
}

func newTokensCmd(root *rootOptions) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "tokens [file]",
		Short: "Dump the token stream of a document",
		Long: `Tokenize wikitext and print the raw token stream without building a
tree. Reads standard input when no file is given or the file is "-".`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := root.setup()
			if err != nil {
				return err
			}
			if format == "" {
				format = config.OutputFormat
			}

			text, err := readInput(fileArg(args))
			if err != nil {
				return err
			}

			return runTokens(text, format, os.Stdout)
		},
	}

	cmd.Flags().StringVar(&format, "format", "", "output format: text or yaml (default from config)")

	return cmd
}

func newStripCmd(root *rootOptions) *cobra.Command {
	normalize := true
	collapse := true

	cmd := &cobra.Command{
		Use:   "strip [file]",
		Short: "Project a document to plain text",
		Long: `Parse wikitext and print it with all markup removed. Reads standard
input when no file is given or the file is "-".`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := root.setup(); err != nil {
				return err
			}

			text, err := readInput(fileArg(args))
			if err != nil {
				return err
			}

			return runStrip(text, normalize, collapse, os.Stdout)
		},
	}

	cmd.Flags().BoolVar(&normalize, "normalize", true, "decode HTML entities to their characters")
	cmd.Flags().BoolVar(&collapse, "collapse", true, "squeeze runs of blank lines and trim the result")

	return cmd
}

func newCheckCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <file>...",
		Short: "Verify that documents survive a parse and render round trip",
		Long: `Parse every file and verify that rendering the tree reproduces the
input byte for byte. Files are checked in parallel; the exit status is
non-zero when any file fails.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := root.setup()
			if err != nil {
				return err
			}

			return runCheck(args, config.CheckConcurrency)
		},
	}

	return cmd
}

func fileArg(args []string) string {
	if len(args) == 0 {
		return "-"
	}

	return args[0]
}

// readInput returns the contents of path, or of standard input for "-".
func readInput(path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("cannot read standard input: %w", err)
		}

		return string(data), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("cannot read %s: %w", path, err)
	}

	return string(data), nil
}

var treeMarkup = color.New(color.FgCyan)

func runParse(text string, out io.Writer) error {
	code, err := wikicode.Parse(text)
	if err != nil {
		return err
	}

	for _, line := range strings.Split(code.GetTree(), "\n") {
		if isTreeMarkup(strings.TrimLeft(line, " ")) {
			treeMarkup.Fprintln(out, line)
		} else {
			fmt.Fprintln(out, line)
		}
	}

	return nil
}

// isTreeMarkup reports whether a tree line is pure markup, like "{{" or
// "]]", as opposed to one carrying document text.
func isTreeMarkup(line string) bool {
	if line == "" {
		return false
	}

	return !strings.ContainsFunc(line, func(r rune) bool {
		return unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r)
	})
}

// tokenDump is the YAML view of a token; zero-valued fields are omitted.
type tokenDump struct {
	Type          string `yaml:"type"`
	Text          string `yaml:"text,omitempty"`
	Level         int    `yaml:"level,omitempty"`
	Brackets      bool   `yaml:"brackets,omitempty"`
	SuppressSpace bool   `yaml:"suppress_space,omitempty"`
	Char          string `yaml:"char,omitempty"`
	WikiMarkup    string `yaml:"wiki_markup,omitempty"`
	Invalid       bool   `yaml:"invalid,omitempty"`
	Implicit      bool   `yaml:"implicit,omitempty"`
	Padding       string `yaml:"padding,omitempty"`
	PadFirst      string `yaml:"pad_first,omitempty"`
	PadBeforeEq   string `yaml:"pad_before_eq,omitempty"`
	PadAfterEq    string `yaml:"pad_after_eq,omitempty"`
}

func runTokens(text string, format string, out io.Writer) error {
	tokens, err := wikicode.Tokenize(text)
	if err != nil {
		return err
	}

	switch format {
	case "text":
		for _, tok := range tokens {
			fmt.Fprintln(out, tok)
		}

		return nil
	case "yaml":
		dump := make([]tokenDump, len(tokens))
		for i, tok := range tokens {
			dump[i] = tokenDump{
				Type:          tok.Type.String(),
				Text:          tok.Text,
				Level:         tok.Level,
				Brackets:      tok.Brackets,
				SuppressSpace: tok.SuppressSpace,
				Char:          tok.Char,
				WikiMarkup:    tok.WikiMarkup,
				Invalid:       tok.Invalid,
				Implicit:      tok.Implicit,
				Padding:       tok.Padding,
				PadFirst:      tok.PadFirst,
				PadBeforeEq:   tok.PadBeforeEq,
				PadAfterEq:    tok.PadAfterEq,
			}
		}

		enc := yaml.NewEncoder(out)
		if err := enc.Encode(dump); err != nil {
			return err
		}

		return enc.Close()
	}

	return fmt.Errorf("invalid output format %q: want text or yaml", format)
}

func runStrip(text string, normalize, collapse bool, out io.Writer) error {
	code, err := wikicode.Parse(text)
	if err != nil {
		return err
	}

	stripped := code.StripCodeOpts(wikicode.StripOptions{
		Normalize: normalize,
		Collapse:  collapse,
	})
	fmt.Fprintln(out, stripped)

	return nil
}

func runCheck(paths []string, concurrency int) error {
	group := new(errgroup.Group)
	group.SetLimit(concurrency)

	for _, path := range paths {
		path := path
		group.Go(func() error {
			return checkFile(path)
		})
	}

	if err := group.Wait(); err != nil {
		return fmt.Errorf("round-trip check failed: %w", err)
	}

	log.Info().Int("files", len(paths)).Msg("all files round-trip cleanly")

	return nil
}

func checkFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Error().Err(err).Str("file", path).Msg("cannot read file")
		return err
	}
	text := string(data)

	code, err := wikicode.Parse(text)
	if err != nil {
		log.Error().Err(err).Str("file", path).Msg("parse failed")
		return fmt.Errorf("%s: %w", path, err)
	}

	if code.String() != text {
		log.Error().Str("file", path).Msg("render does not match input")
		return fmt.Errorf("%s: render does not match input", path)
	}

	log.Debug().Str("file", path).Int("bytes", len(data)).Msg("round trip ok")

	return nil
}

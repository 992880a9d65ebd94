package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/agentflare-ai/go-xmldocmd/internal/clrmeta"
	"github.com/agentflare-ai/go-xmldocmd/internal/config"
	"github.com/agentflare-ai/go-xmldocmd/internal/convert"
	"github.com/agentflare-ai/go-xmldocmd/internal/logging"
	"github.com/agentflare-ai/go-xmldocmd/internal/member"
	"github.com/agentflare-ai/go-xmldocmd/internal/render"
	"github.com/agentflare-ai/go-xmldocmd/internal/xmldoc"
)

type options struct {
	configPath   string
	assembly     string
	autoAssembly bool
	outputPath   string
	verify       bool
	logLevel     string
	logFormat    string
}

type assemblyDoc struct {
	input    string
	name     string
	types    int
	members  int
	markdown []byte
}

type cliApp struct {
	stdout  io.Writer
	stderr  io.Writer
	opts    options
	changed func(name string) bool
}

func run(argv []string, stdout io.Writer) error {
	cmd := newRootCmd(stdout)
	cmd.SetArgs(normalizeLegacyArgs(argv))
	return cmd.Execute()
}

func (app *cliApp) execute(ctx context.Context, positionals []string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := app.settings()
	if err != nil {
		return err
	}
	if len(positionals) == 0 {
		return errors.New("no documentation files provided")
	}
	if cfg.Assembly != "" && len(positionals) > 1 {
		return errors.New("--assembly accepts a single documentation file; use --auto-assembly for several")
	}
	dirMode := len(positionals) > 1 || wantsDirectoryOutput(cfg.Output)
	toStdout := cfg.Output == "" || cfg.Output == "-"
	if dirMode && toStdout {
		return errors.New("several documentation files require -o pointing to a directory")
	}
	if toStdout && logging.UsesStdout(cfg.LogFormat) {
		return fmt.Errorf("--log-format %s writes to stdout; use -o to send Markdown to a file", cfg.LogFormat)
	}
	logger, err := logging.New(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat}, app.stderr)
	if err != nil {
		return err
	}

	docs := make([]assemblyDoc, 0, len(positionals))
	for _, input := range positionals {
		if err := ctx.Err(); err != nil {
			return err
		}
		doc, err := convertFile(input, cfg, logger.WithFields(map[string]any{"input": input}))
		if err != nil {
			return fmt.Errorf("%s: %w", input, err)
		}
		docs = append(docs, doc)
	}
	if dirMode {
		return writeAssemblyDocsToDir(cfg.Output, docs)
	}
	return writeOutput(cfg.Output, app.stdout, docs[0].markdown)
}

// settings layers config file, environment and explicitly set flags, in
// that order.
func (app *cliApp) settings() (config.Config, error) {
	cfg, err := config.Load(app.opts.configPath)
	if err != nil {
		return config.Config{}, err
	}
	env, err := config.Environment(config.DotEnvPath)
	if err != nil {
		return config.Config{}, err
	}
	if err := cfg.ApplyEnv(env); err != nil {
		return config.Config{}, err
	}

	changed := app.changed
	if changed == nil {
		changed = func(string) bool { return false }
	}
	o := app.opts
	if changed("assembly") {
		cfg.Assembly = o.assembly
		if !changed("auto-assembly") {
			cfg.AutoAssembly = false
		}
	}
	if changed("auto-assembly") {
		cfg.AutoAssembly = o.autoAssembly
		if !changed("assembly") {
			cfg.Assembly = ""
		}
	}
	if changed("output") {
		cfg.Output = o.outputPath
	}
	if changed("verify") {
		cfg.Verify = o.verify
	}
	if changed("log-level") {
		cfg.LogLevel = o.logLevel
	}
	if changed("log-format") {
		cfg.LogFormat = o.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func convertFile(input string, cfg config.Config, logger logging.Logger) (assemblyDoc, error) {
	doc, err := xmldoc.Load(input)
	if err != nil {
		return assemblyDoc{}, err
	}
	oracle, err := resolveOracle(input, cfg, logger)
	if err != nil {
		return assemblyDoc{}, err
	}
	units, err := convert.New(convert.WithOracle(oracle), convert.WithLogger(logger)).Units(doc)
	if err != nil {
		return assemblyDoc{}, err
	}
	markdown := render.Join(units)
	if cfg.Verify {
		if err := render.Verify(markdown); err != nil {
			return assemblyDoc{}, err
		}
	}
	result := assemblyDoc{input: input, markdown: []byte(markdown)}
	for _, u := range units {
		switch u := u.(type) {
		case render.AssemblyUnit:
			result.name = u.Name
		case *render.MemberUnit:
			if u.Entry.Kind == member.Type {
				result.types++
			} else {
				result.members++
			}
		}
	}
	return result, nil
}

// resolveOracle opens the assembly that decides visibility. A nil oracle
// keeps every member.
func resolveOracle(input string, cfg config.Config, logger logging.Logger) (member.Oracle, error) {
	switch {
	case cfg.Assembly != "":
		return openAssembly(cfg.Assembly, logger)
	case cfg.AutoAssembly:
		if path := siblingAssembly(input); path != "" {
			return openAssembly(path, logger)
		}
		logger.Warn("no assembly beside documentation file; keeping every member")
	}
	return nil, nil
}

func openAssembly(path string, logger logging.Logger) (member.Oracle, error) {
	asm, err := clrmeta.Open(path)
	if err != nil {
		return nil, err
	}
	logger.Debug("loaded assembly", "path", path, "types", len(asm.Types))
	return asm, nil
}

func siblingAssembly(input string) string {
	base := strings.TrimSuffix(input, filepath.Ext(input))
	for _, ext := range []string{".dll", ".exe"} {
		if info, err := os.Stat(base + ext); err == nil && !info.IsDir() {
			return base + ext
		}
	}
	return ""
}

func writeOutput(path string, stdout io.Writer, data []byte) error {
	if path == "" || path == "-" {
		_, err := stdout.Write(data)
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

var legacyLongFlagSet = map[string]struct{}{
	"output":        {},
	"assembly":      {},
	"auto-assembly": {},
	"verify":        {},
	"config":        {},
	"log-level":     {},
	"log-format":    {},
}

func normalizeLegacyArgs(args []string) []string {
	if len(args) == 0 {
		return args
	}
	modified := false
	converted := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			converted = append(converted, args[i:]...)
			break
		}
		if !strings.HasPrefix(arg, "-") || strings.HasPrefix(arg, "--") || arg == "-" || len(arg) == 2 {
			converted = append(converted, arg)
			continue
		}
		name, value, hasValue := strings.Cut(arg[1:], "=")
		if _, ok := legacyLongFlagSet[name]; ok {
			if hasValue {
				converted = append(converted, "--"+name+"="+value)
			} else {
				converted = append(converted, "--"+name)
			}
			modified = true
			continue
		}
		converted = append(converted, arg)
	}
	if !modified {
		return args
	}
	return converted
}

func wantsDirectoryOutput(path string) bool {
	if path == "" || path == "-" {
		return false
	}
	info, err := os.Stat(path)
	if err == nil {
		return info.IsDir()
	}
	if !errors.Is(err, os.ErrNotExist) {
		return false
	}
	if strings.HasSuffix(path, string(os.PathSeparator)) {
		return true
	}
	return filepath.Ext(path) == ""
}

type tocEntry struct {
	title   string
	link    string
	summary string
}

// writeAssemblyDocsToDir writes <base>.md per input and a README.md index.
func writeAssemblyDocsToDir(outDir string, docs []assemblyDoc) error {
	if outDir == "" {
		return errors.New("missing output directory")
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}
	written := make(map[string]string, len(docs))
	entries := make([]tocEntry, 0, len(docs))
	for _, doc := range docs {
		base := strings.TrimSuffix(filepath.Base(doc.input), filepath.Ext(doc.input)) + ".md"
		if strings.EqualFold(base, "README.md") {
			return fmt.Errorf("%s: output name %s is reserved for the index", doc.input, base)
		}
		if prev, ok := written[base]; ok {
			return fmt.Errorf("%s and %s both write %s", prev, doc.input, base)
		}
		written[base] = doc.input
		if err := os.WriteFile(filepath.Join(outDir, base), doc.markdown, 0o644); err != nil {
			return err
		}
		title := doc.name
		if title == "" {
			title = strings.TrimSuffix(base, ".md")
		}
		entries = append(entries, tocEntry{
			title:   title,
			link:    base,
			summary: docSummary(doc),
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].title < entries[j].title
	})
	return os.WriteFile(filepath.Join(outDir, "README.md"), buildTOC(entries), 0o644)
}

func docSummary(doc assemblyDoc) string {
	return fmt.Sprintf("%d %s, %d %s", doc.types, plural(doc.types, "type"), doc.members, plural(doc.members, "member"))
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}

func buildTOC(entries []tocEntry) []byte {
	var buf bytes.Buffer
	buf.WriteString("## Assemblies\n")
	if len(entries) > 0 {
		buf.WriteString("\n")
	}
	for _, entry := range entries {
		if entry.summary != "" {
			fmt.Fprintf(&buf, "- [%s](%s): %s\n", entry.title, entry.link, entry.summary)
		} else {
			fmt.Fprintf(&buf, "- [%s](%s)\n", entry.title, entry.link)
		}
	}
	return buf.Bytes()
}

// # xmldocmd
//
// `xmldocmd` turns the XML documentation file produced by the C# compiler
// (`<GenerateDocumentationFile>true</GenerateDocumentationFile>`) into one
// GitHub-friendly Markdown page per assembly.
//
// Key capabilities:
//
//   - a table of contents listing every type with its members nested beneath.
//   - one anchored section per type and member, with summary, value, returns,
//     parameters, generic types, exceptions, remarks, example and see-also
//     sections when the documentation provides them.
//   - `<see cref>` links to documented members resolve to in-page anchors;
//     `System.*` and `Microsoft.*` references link to the .NET API browser.
//   - with `--assembly` (or `--auto-assembly`) the compiled assembly's type
//     table decides which types are public; the rest are left out.
//   - a Cobra-powered CLI with `--help`, `--version`, shell completion and a
//     `gen-docs` helper for publishing the CLI reference itself.
//
// ## Usage
//
//	xmldocmd [flags] <doc.xml>...
//
// Examples:
//
//   - Print the Markdown for one assembly:
//
//     xmldocmd bin/Release/net8.0/Sample.xml
//
//   - Leave out internal types and write to a file:
//
//     xmldocmd -a bin/Release/net8.0/Sample.dll -o docs/Sample.md bin/Release/net8.0/Sample.xml
//
//   - Convert several assemblies into a docs folder with an index:
//
//     xmldocmd --auto-assembly -o docs bin/Release/net8.0/*.xml
//
// ## Supported Flags
//
//   - `-o FILE|DIR`: write Markdown to `FILE` (stdout when omitted). A
//     directory, or a path without an extension, writes `<name>.md` per input
//     and a `README.md` listing them under `## Assemblies`.
//   - `-a FILE`: assembly whose type table filters non-public types. Only
//     valid with a single input.
//   - `--auto-assembly`: use `<name>.dll` or `<name>.exe` beside each input.
//   - `--verify`: fail when an in-page link has no matching anchor.
//   - `--config FILE`: YAML settings; `.xmldocmd.yaml` is read when present.
//   - `--log-level`, `--log-format`: diagnostics on stderr (`console`) or as
//     structured `json`/`pretty` records on stdout, which then requires `-o`.
//
// Single-dash long flags (`-assembly`, `-verify`, ...) are accepted too.
//
// ## Configuration
//
// Settings are layered: `.xmldocmd.yaml` (or `--config`), then
// `XMLDOCMD_LOG_LEVEL`, `XMLDOCMD_LOG_FORMAT` and `XMLDOCMD_VERIFY` from the
// environment or a `.env` file, then flags given on the command line.
//
//	assembly: bin/Release/net8.0/Sample.dll
//	output: docs/
//	verify: true
//	log_level: info
//
// ## Shell Completion
//
//	xmldocmd completion bash        # bash
//	xmldocmd completion zsh         # zsh
//	xmldocmd completion fish | source
//	xmldocmd completion powershell | Out-String | Invoke-Expression
//
// ## CLI Docs
//
//	xmldocmd gen-docs ./docs/cli
//
// Every command becomes its own Markdown file under the provided directory.
package main

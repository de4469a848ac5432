// Package report renders analysis runs for people and tools.
//
// Writers:
//   - SimpleWriter: plain text for terminal display
//   - JSONWriter / FullJSONWriter: structured output for tool integration
//   - MarkdownWriter: tables, a mermaid severity chart and a GitHub alert,
//     for pull request comments and documentation
//
// Writers implement the Writer interface so they can be used
// interchangeably and combined with MultiWriter.
package report

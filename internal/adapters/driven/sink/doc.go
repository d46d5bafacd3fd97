// Package sink provides event sinks a heading stream reports to: a
// JSON-lines writer for terminals, pipes and files, and a channel sink for
// in-process consumers such as the MCP server.
package sink

package mcp

import (
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{Content: []mcp.Content{mcp.NewTextContent(text)}}
}

func errorResult(message string) *mcp.CallToolResult {
	res := textResult(message)
	res.IsError = true
	return res
}

// missing reports required arguments the caller left out.
func missing(names ...string) *mcp.CallToolResult {
	if len(names) == 1 {
		return errorResult("Error: " + names[0] + " parameter is required")
	}
	return errorResult("Error: " + strings.Join(names, " and ") + " parameters are required")
}

// has reports whether the caller supplied key at all, so zero values can
// be told apart from omitted ones.
func has(request mcp.CallToolRequest, key string) bool {
	v, ok := request.GetArguments()[key]
	return ok && v != nil
}

func optionalFloat(request mcp.CallToolRequest, key string) *float64 {
	if !has(request, key) {
		return nil
	}
	v := request.GetFloat(key, 0)
	return &v
}

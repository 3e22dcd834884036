package mcp

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Sumatoshi-tech/cognit/internal/scan"
	"github.com/Sumatoshi-tech/cognit/pkg/lang"
)

// handleScoreSource processes score_source tool calls.
func handleScoreSource(
	ctx context.Context,
	_ *mcpsdk.CallToolRequest,
	input ScoreSourceInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	err := validateCodeInput(input.Code, input.Language)
	if err != nil {
		return errorResult(err)
	}

	language, ok := lang.DefaultRegistry().ByName(input.Language)
	if !ok {
		return errorResult(fmt.Errorf("%w: %s", ErrUnsupportedLanguage, input.Language))
	}

	file, err := scan.ScoreBytes(ctx, language, syntheticFilename(input.Language), []byte(input.Code))
	if err != nil {
		return errorResult(fmt.Errorf("score code: %w", err))
	}

	return jsonResult(file)
}

// handleScorePath processes score_path tool calls.
func handleScorePath(
	ctx context.Context,
	_ *mcpsdk.CallToolRequest,
	input ScorePathInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	err := validatePathInput(input.Path)
	if err != nil {
		return errorResult(err)
	}

	scanner := scan.New(scan.Options{})

	rep, _, err := scanner.Run(ctx, []string{input.Path})
	if err != nil {
		return errorResult(fmt.Errorf("scan path: %w", err))
	}

	return jsonResult(rep)
}

// validatePathInput checks score_path input constraints.
func validatePathInput(path string) error {
	if path == "" {
		return ErrEmptyPath
	}

	if !filepath.IsAbs(path) {
		return ErrPathNotAbsolute
	}

	_, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrPathNotFound, path)
	}

	return nil
}

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pratik-mahalle/docbrief/internal/extract"
	"github.com/pratik-mahalle/docbrief/pkg/client"
	"github.com/spf13/cobra"
)

// newExtractor builds the local PDF extractor; tests replace it.
var newExtractor = func() *extract.Extractor {
	return extract.New(extract.Options{Renderer: extract.NewLedongthucRenderer()})
}

type summaryOutput struct {
	File        string         `json:"file" yaml:"file"`
	Pages       int            `json:"pages" yaml:"pages"`
	FailedPages []int          `json:"failed_pages,omitempty" yaml:"failed_pages,omitempty"`
	Summary     string         `json:"summary" yaml:"summary"`
	Blocks      []client.Block `json:"blocks" yaml:"blocks"`
}

func newSummarizeCmd() *cobra.Command {
	var remote bool

	cmd := &cobra.Command{
		Use:   "summarize <file.pdf>",
		Short: "Summarize a PDF document",
		Long: `Extract the text of a PDF and request a structured summary. Text is
extracted locally unless --remote is set, in which case the file is uploaded
for server-side extraction first.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := summarizeFile(context.Background(), apiClient, args[0], remote)
			if err != nil {
				return explainAPIError(err)
			}
			w := cmd.OutOrStdout()
			if getOutputFormat() != "text" {
				return printOutput(w, out)
			}
			if len(out.FailedPages) > 0 {
				fmt.Fprintf(cmd.ErrOrStderr(), "Warning: could not read pages %v\n", out.FailedPages)
			}
			renderBlocks(w, out.Blocks, useColor(w))
			return nil
		},
	}

	cmd.Flags().BoolVar(&remote, "remote", false, "extract text on the server")

	return cmd
}

func summarizeFile(ctx context.Context, c *client.Client, path string, remote bool) (*summaryOutput, error) {
	res, err := extractFile(ctx, c, path, remote)
	if err != nil {
		return nil, err
	}
	summary, err := c.Analyze(ctx, res.Text)
	if err != nil {
		return nil, err
	}
	return &summaryOutput{
		File:        filepath.Base(path),
		Pages:       res.Pages,
		FailedPages: res.FailedPages,
		Summary:     summary,
		Blocks:      client.ParseSummary(summary),
	}, nil
}

func extractFile(ctx context.Context, c *client.Client, path string, remote bool) (*extract.Result, error) {
	if remote {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", path, err)
		}
		defer f.Close()
		resp, err := c.Extract(ctx, filepath.Base(path), f)
		if err != nil {
			return nil, err
		}
		return &extract.Result{Text: resp.Text, Pages: resp.Pages, FailedPages: resp.FailedPages}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return newExtractor().Extract(ctx, data)
}

// explainAPIError adds the next step to errors the user can act on.
func explainAPIError(err error) error {
	var apiErr *client.APIError
	if !errors.As(err, &apiErr) {
		return err
	}
	switch {
	case apiErr.IsUnauthorized():
		return fmt.Errorf("%w. Run 'docbrief auth login' to sign in again", err)
	case apiErr.IsSubscriptionRequired():
		return fmt.Errorf("%w. Run 'docbrief billing checkout' to subscribe", err)
	case apiErr.IsRateLimited():
		return fmt.Errorf("%w. Wait a moment and retry", err)
	case apiErr.IsServerError():
		return fmt.Errorf("%w. The server failed to handle the request, try again later", err)
	default:
		return err
	}
}

func newExtractCmd() *cobra.Command {
	var remote bool

	cmd := &cobra.Command{
		Use:   "extract <file.pdf>",
		Short: "Print the text of a PDF document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if remote && apiClient.GetToken() == "" {
				return fmt.Errorf("not authenticated. Run 'docbrief auth login' first")
			}
			res, err := extractFile(context.Background(), apiClient, args[0], remote)
			if err != nil {
				return explainAPIError(err)
			}
			return writeExtract(cmd.OutOrStdout(), res)
		},
	}

	cmd.Flags().BoolVar(&remote, "remote", false, "extract text on the server")

	return cmd
}

func writeExtract(w io.Writer, res *extract.Result) error {
	if getOutputFormat() != "text" {
		return printOutput(w, res)
	}
	_, err := fmt.Fprintln(w, res.Text)
	return err
}

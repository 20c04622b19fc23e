package main

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/hrygo/datesense/internal/profile"
	"github.com/hrygo/datesense/plugin/datetext"
	"github.com/hrygo/datesense/plugin/timeout"
	"github.com/hrygo/datesense/server/export"
	"github.com/hrygo/datesense/server/service/parse"
	"github.com/hrygo/datesense/server/timezone"
)

// outputFlags are shared by parse and batch.
type outputFlags struct {
	format    string
	where     string
	reference string
	markdown  bool
}

func (o *outputFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVarP(&o.format, "format", "f", "json", "output format: json, yaml or ics")
	flags.StringVarP(&o.where, "where", "w", "", `CEL filter over results, e.g. 'certain["year"]'`)
	flags.StringVar(&o.reference, "ref", "", "reference instant in any common layout; default now")
	flags.BoolVar(&o.markdown, "markdown", false, "treat input as markdown and skip code")
}

func (a *app) newParseCmd() *cobra.Command {
	var o outputFlags
	cmd := &cobra.Command{
		Use:   "parse [TEXT...]",
		Short: "Parse the date expressions in TEXT, or in stdin when no text is given",
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			id := "args"
			if len(args) == 0 {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return errors.Wrap(err, "failed to read stdin")
				}
				text, id = string(data), "stdin"
			}
			return a.run(cmd, []parse.Document{{ID: id, Text: text, Markdown: o.markdown}}, o)
		},
	}
	o.register(cmd)
	return cmd
}

func (a *app) newBatchCmd() *cobra.Command {
	var o outputFlags
	cmd := &cobra.Command{
		Use:   "batch FILE...",
		Short: "Parse every FILE concurrently; .md files are read as markdown",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			docs := make([]parse.Document, 0, len(args))
			for _, path := range args {
				data, err := os.ReadFile(path)
				if err != nil {
					return errors.Wrapf(err, "failed to read %s", path)
				}
				docs = append(docs, parse.Document{
					ID:       path,
					Text:     string(data),
					Markdown: o.markdown || isMarkdown(path),
				})
			}
			return a.run(cmd, docs, o)
		},
	}
	o.register(cmd)
	cmd.Flags().Int(profile.KeyConcurrency, 4, "files parsed at once")
	cmd.Flags().Int(profile.KeyContextChars, 40, "snippet width around each match; 0 disables snippets")
	return cmd
}

// run parses docs and writes the results. It fails when any document failed,
// after writing the output.
func (a *app) run(cmd *cobra.Command, docs []parse.Document, o outputFlags) error {
	p := a.profile
	format, err := export.ParseFormat(o.format)
	if err != nil {
		return err
	}
	encoder, err := export.NewEncoder(format)
	if err != nil {
		return err
	}
	reference, err := timezone.ParseReference(o.reference, p.Location())
	if err != nil {
		return err
	}

	svc := parse.NewService(datetext.NewService(p.Locale, p.Timezone), parse.Config{
		Concurrency:    p.Concurrency,
		MaxInputLength: p.MaxInputLength,
		MaxBatchSize:   len(docs),
		RequestTimeout: timeout.BatchTimeout,
		BatchTimeout:   timeout.BatchTimeout,
		ContextChars:   p.ContextChars,
		Location:       p.Location(),
	})
	req := parse.Request{
		Reference: reference,
		Options: datetext.Options{
			Locale:      p.Locale,
			Strict:      p.Strict,
			ForwardDate: p.ForwardDate,
		},
		Filter: o.where,
	}

	results, err := svc.ParseBatch(cmd.Context(), docs, req)
	if err != nil {
		return err
	}
	if err := encoder.Encode(cmd.OutOrStdout(), results); err != nil {
		return err
	}

	failed := 0
	for _, r := range results {
		if r.Error != nil {
			failed++
		}
	}
	if failed > 0 {
		return errors.Errorf("%d of %d documents failed", failed, len(results))
	}
	return nil
}

func isMarkdown(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return true
	}
	return false
}

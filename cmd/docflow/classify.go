package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/savetree-1/docflow/internal/api"
	"github.com/savetree-1/docflow/internal/classifications"
	"github.com/savetree-1/docflow/internal/prompts"
	"github.com/savetree-1/docflow/internal/routingrules"
	"github.com/savetree-1/docflow/internal/workflow"
)

type classifyOutput struct {
	File     string                 `json:"file"`
	Result   workflow.Result        `json:"result"`
	Decision *routingrules.Decision `json:"routing_decision,omitempty"`
}

func newClassifyCmd(opts *options) *cobra.Command {
	var (
		department string
		rulesPath  string
	)

	cmd := &cobra.Command{
		Use:   "classify <file>...",
		Short: "Classify extracted text files through the fallback chain",
		Long: "Classify runs each file through the hard rules, the configured providers, " +
			"and local extraction, and prints one JSON result per file. With --rules the " +
			"result is also resolved against a routing rule set.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			logger := opts.logger()

			matcher, err := loadHardRules(cfg.HardRulesPath)
			if err != nil {
				return fmt.Errorf("hard rules: %w", err)
			}
			primary, err := api.NewBackend(&cfg.Providers.Primary, logger)
			if err != nil {
				return fmt.Errorf("primary provider: %w", err)
			}
			secondary, err := api.NewBackend(&cfg.Providers.Secondary, logger)
			if err != nil {
				return fmt.Errorf("secondary provider: %w", err)
			}

			var snapshot *routingrules.Snapshot
			if rulesPath != "" {
				if snapshot, err = loadSnapshot(rulesPath); err != nil {
					return err
				}
			}

			texts := make([]string, len(args))
			reqs := make([]workflow.Request, len(args))
			for i, path := range args {
				data, err := os.ReadFile(path)
				if err != nil {
					return err
				}
				texts[i] = string(data)
				reqs[i] = workflow.Request{
					Text: texts[i],
					Metadata: workflow.Metadata{
						Title:               strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
						UploadingDepartment: department,
					},
				}
			}

			orch := workflow.New(cfg.Classification, primary, secondary, matcher, prompts.Defaults{}, logger)
			results := orch.ClassifyBatch(cmd.Context(), reqs)

			out := make([]classifyOutput, len(results))
			for i, res := range results {
				out[i] = classifyOutput{File: args[i], Result: res}
				if snapshot != nil {
					if d, ok := snapshot.Resolve(classifications.Attributes(res, texts[i])); ok {
						out[i].Decision = d
					}
				}
			}

			return writeJSON(cmd, out)
		},
	}

	cmd.Flags().StringVar(&department, "department", "Registry", "uploading department used when no provider answers")
	cmd.Flags().StringVar(&rulesPath, "rules", "", "JSON file of routing rules to resolve each result against")

	return cmd
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

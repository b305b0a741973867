package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/savetree-1/docflow/internal/routingrules"
	"github.com/savetree-1/docflow/internal/taxonomy"
)

func newRulesCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Inspect hard rules and routing rules",
	}

	cmd.AddCommand(
		newRulesListCmd(opts),
		newRulesCheckCmd(opts),
		newRulesResolveCmd(),
	)

	return cmd
}

func newRulesListCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print the hard-rule table in evaluation order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			matcher, err := loadHardRules(cfg.HardRulesPath)
			if err != nil {
				return err
			}
			return writeJSON(cmd, matcher.Rules())
		},
	}
}

func newRulesCheckCmd(opts *options) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "check [text]",
		Short: "Report the first hard rule matching text",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := inputText(args, file)
			if err != nil {
				return err
			}

			cfg, err := opts.load()
			if err != nil {
				return err
			}
			matcher, err := loadHardRules(cfg.HardRulesPath)
			if err != nil {
				return err
			}

			hit, ok := matcher.Match(text)
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "no hard rule matched")
				return nil
			}
			return writeJSON(cmd, hit)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "read text from file instead of the argument")
	return cmd
}

func newRulesResolveCmd() *cobra.Command {
	var (
		rulesPath  string
		department string
		category   string
		urgency    string
		text       string
	)

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve document attributes against a routing rule set",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			snapshot, err := loadSnapshot(rulesPath)
			if err != nil {
				return err
			}

			attrs := routingrules.Attributes{
				Department: department,
				Keywords:   routingrules.Terms(text),
			}
			if attrs.Category, err = taxonomy.ParseCategory(category); err != nil {
				return err
			}
			if attrs.Urgency, err = taxonomy.ParseUrgency(urgency); err != nil {
				return err
			}

			d, ok := snapshot.Resolve(attrs)
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "no routing rule matched")
				return nil
			}
			return writeJSON(cmd, d)
		},
	}

	cmd.Flags().StringVar(&rulesPath, "rules", "", "JSON file of routing rules (required)")
	cmd.Flags().StringVar(&department, "department", "", "suggested primary department")
	cmd.Flags().StringVar(&category, "category", string(taxonomy.GeneralAdministration), "document category")
	cmd.Flags().StringVar(&urgency, "urgency", string(taxonomy.Medium), "document urgency")
	cmd.Flags().StringVar(&text, "text", "", "text whose words are offered as keywords")
	cmd.MarkFlagRequired("rules")

	return cmd
}

func loadSnapshot(path string) (*routingrules.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules: %w", err)
	}

	var cmds []routingrules.Command
	if err := json.Unmarshal(data, &cmds); err != nil {
		return nil, fmt.Errorf("parse rules: %w", err)
	}

	rules, err := routingrules.FromCommands(cmds)
	if err != nil {
		return nil, err
	}
	return routingrules.NewSnapshot(rules), nil
}

func inputText(args []string, file string) (string, error) {
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		return "", fmt.Errorf("text argument or --file required")
	}
	return args[0], nil
}

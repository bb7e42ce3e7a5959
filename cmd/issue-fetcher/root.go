package main

import (
	"fmt"

	"github.com/ksysoev/issue-fetcher/pkg/core"
	"github.com/ksysoev/issue-fetcher/pkg/github"
	"github.com/sethvargo/go-githubactions"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// newRootCommand builds the issue-fetcher command.
// clientOpts are passed to the GitHub client, tests use them to target a fake API.
func newRootCommand(action *githubactions.Action, clientOpts ...github.Option) *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "issue-fetcher",
		Short: "Save open GitHub issues with a label to a JSON snapshot",
		Long: `issue-fetcher downloads all open issues of one repository that carry a
label and writes number, url, title, body and label names to issues.json.

Configuration comes from OWNER, REPO, GITHUB_PAT, LABEL and the optional
LIMIT environment variables. Flags override the environment.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, v, action, clientOpts)
		},
	}

	flags := cmd.Flags()
	flags.String(core.KeyOwner, "", "repository owner (env OWNER)")
	flags.String(core.KeyRepo, "", "repository name (env REPO)")
	flags.String(core.KeyLabel, "", "label to filter issues by (env LABEL)")
	flags.String(core.KeyLimit, "", "maximum number of issues to fetch (env LIMIT)")
	flags.String(core.KeyOutput, core.DefaultOutputPath, "output file (env OUTPUT)")

	if err := bindFlags(v, flags, core.KeyOwner, core.KeyRepo, core.KeyLabel, core.KeyLimit, core.KeyOutput); err != nil {
		panic(err)
	}

	return cmd
}

// bindFlags makes each named flag a viper source for the key of the same name
func bindFlags(v *viper.Viper, flags *pflag.FlagSet, keys ...string) error {
	for _, key := range keys {
		if err := v.BindPFlag(key, flags.Lookup(key)); err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", key, err)
		}
	}

	return nil
}

func run(cmd *cobra.Command, v *viper.Viper, action *githubactions.Action, clientOpts []github.Option) error {
	if err := core.BindEnv(v); err != nil {
		return err
	}

	config, err := core.LoadConfig(v)

	if config.Token != "" && action.Getenv("GITHUB_ACTIONS") == "true" {
		action.AddMask(config.Token)
	}

	action.Infof("Configuration loaded: %s", config)

	if err != nil {
		return err
	}

	scope := "all"
	if config.HasLimit() {
		scope = fmt.Sprintf("up to %d", config.Limit)
	}

	action.Infof("Fetching %s open issues from %s/%s with label: %s", scope, config.Owner, config.Repo, config.Label)

	client, err := github.NewClient(config, clientOpts...)
	if err != nil {
		return err
	}

	issues, err := client.FetchIssues(cmd.Context())
	if err != nil {
		return err
	}

	if err := core.WriteIssues(config.OutputPath, issues); err != nil {
		return err
	}

	action.Infof("Successfully fetched %d open issues and saved to %s", len(issues), config.OutputPath)

	if action.Getenv("GITHUB_OUTPUT") != "" {
		action.SetOutput("path", config.OutputPath)
		action.SetOutput("count", fmt.Sprint(len(issues)))
	}

	return nil
}

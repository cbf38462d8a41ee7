package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/okian/gridiron/internal/adapters/csvio"
	app "github.com/okian/gridiron/internal/app"
	"github.com/okian/gridiron/internal/domain/forecast"
	"github.com/okian/gridiron/internal/domain/money"
	"github.com/okian/gridiron/internal/domain/scenario"
	"github.com/okian/gridiron/pkg/logger"
)

var errNoInput = errors.New("either --file or --id is required")

// importSummary is printed after a CSV intake.
type importSummary struct {
	Kind     string   `json:"kind"`
	Players  int      `json:"players"`
	Usage    int      `json:"usage_rows"`
	Warnings []string `json:"warnings"`
}

func (c *cli) importCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:       "import roster|usage",
		Short:     "Import a roster-intake or usage/grades CSV file",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"roster", "usage"},
		RunE: c.run(func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			in, err := openInput(cmd, file)
			if err != nil {
				return err
			}
			defer in.Close()

			var res csvio.Result
			switch args[0] {
			case "roster":
				res, err = csvio.ReadRoster(in)
			default:
				rel, rerr := c.svc.Relations(ctx)
				if rerr != nil {
					return rerr
				}
				res, err = csvio.ReadUsage(in, csvio.RefIndex(rel))
			}
			if err != nil {
				return fmt.Errorf("read %s csv: %w", args[0], err)
			}
			if err := c.svc.Import(ctx, res.Relations, nil); err != nil {
				return err
			}
			for _, w := range res.Warnings {
				c.log.Warn(ctx, "csv row", logger.String("warning", w))
			}
			warnings := res.Warnings
			if warnings == nil {
				warnings = []string{}
			}
			return printJSON(cmd.OutOrStdout(), importSummary{
				Kind:     args[0],
				Players:  len(res.Relations.Players),
				Usage:    len(res.Relations.Usage),
				Warnings: warnings,
			})
		}),
	}
	cmd.Flags().StringVarP(&file, "file", "f", "-", "CSV file to read, - for stdin")
	return cmd
}

func (c *cli) exportCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "export roster|usage",
		Short:     "Write the stored relations as CSV to stdout",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"roster", "usage"},
		RunE: c.run(func(cmd *cobra.Command, args []string) error {
			rel, err := c.svc.Relations(cmd.Context())
			if err != nil {
				return err
			}
			if args[0] == "roster" {
				return csvio.WriteRoster(cmd.OutOrStdout(), rel)
			}
			return csvio.WriteUsage(cmd.OutOrStdout(), rel)
		}),
	}
}

func (c *cli) valueCmd() *cobra.Command {
	var persist bool
	cmd := &cobra.Command{
		Use:   "value",
		Short: "Compute the guarded valuation snapshot",
		Args:  cobra.NoArgs,
		RunE: c.run(func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			snap, err := c.svc.ComputeValuation(ctx, c.policyID, c.poolID, persist)
			if err != nil {
				return err
			}
			c.log.Info(ctx, "valuation computed",
				logger.Int("players", snap.Summary.TotalPlayers),
				logger.String("allocatable", money.USD(snap.Summary.Allocatable)),
				logger.Bool("persisted", persist),
			)
			return printJSON(cmd.OutOrStdout(), snap)
		}),
	}
	cmd.Flags().BoolVar(&persist, "persist", false, "replace the stored snapshot rows for the policy and pool")
	return cmd
}

func (c *cli) budgetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "budget",
		Short: "Report roster spend against the budget guardrails",
		Args:  cobra.NoArgs,
		RunE: c.run(func(cmd *cobra.Command, _ []string) error {
			r, err := c.svc.BudgetReport(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), r)
		}),
	}
}

func (c *cli) forecastCmd() *cobra.Command {
	var years int
	cmd := &cobra.Command{
		Use:   "forecast",
		Short: "Project departures, spend and depth gaps for the coming seasons",
		Args:  cobra.NoArgs,
		RunE: c.run(func(cmd *cobra.Command, _ []string) error {
			out, err := c.svc.Forecast(cmd.Context(), years)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), out)
		}),
	}
	cmd.Flags().IntVar(&years, "years", forecast.MaxYears, "number of seasons to project")
	return cmd
}

func (c *cli) replacementCmd() *cobra.Command {
	var group string
	cmd := &cobra.Command{
		Use:   "replacement",
		Short: "Suggest the roster spot a recruit in a position group would take",
		Args:  cobra.NoArgs,
		RunE: c.run(func(cmd *cobra.Command, _ []string) error {
			p, err := c.svc.SuggestReplacement(cmd.Context(), group)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), p)
		}),
	}
	cmd.Flags().StringVar(&group, "group", "", "position group (default from the demo recruit)")
	return cmd
}

func (c *cli) whatIfCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whatif",
		Short: "Build the before/after report for the configured recruit",
		Args:  cobra.NoArgs,
		RunE: c.run(func(cmd *cobra.Command, _ []string) error {
			st, err := c.svc.BeforeAfter(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), st)
		}),
	}
}

// scenarioFile is the on-disk shape of a what-if scenario.
type scenarioFile struct {
	Name      string          `json:"name"`
	PolicyID  string          `json:"policy_id"`
	PoolID    string          `json:"pool_id"`
	Mutations json.RawMessage `json:"mutations"`
}

func (c *cli) scenarioCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scenario",
		Short: "Run or save what-if scenarios",
	}

	var runFile, runID string
	run := &cobra.Command{
		Use:   "run",
		Short: "Run a scenario file or a saved scenario and print the diff",
		Args:  cobra.NoArgs,
		RunE: c.run(func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			var (
				res scenario.Result
				err error
			)
			switch {
			case runID != "":
				res, err = c.svc.RunSavedScenario(ctx, runID)
			case runFile != "":
				var sf scenarioFile
				if sf, err = readScenarioFile(cmd, runFile); err != nil {
					return err
				}
				var muts []scenario.Mutation
				if muts, err = scenario.DecodeMutations(sf.Mutations); err != nil {
					return err
				}
				res, err = c.svc.RunScenario(ctx, app.ScenarioRequest{
					Name:      sf.Name,
					PolicyID:  firstNonEmpty(sf.PolicyID, c.policyID),
					PoolID:    firstNonEmpty(sf.PoolID, c.poolID),
					Mutations: muts,
				})
			default:
				return errNoInput
			}
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		}),
	}
	run.Flags().StringVarP(&runFile, "file", "f", "", "scenario JSON file, - for stdin")
	run.Flags().StringVar(&runID, "id", "", "id of a saved scenario")

	var saveFile string
	save := &cobra.Command{
		Use:   "save",
		Short: "Validate and store a scenario file",
		Args:  cobra.NoArgs,
		RunE: c.run(func(cmd *cobra.Command, _ []string) error {
			sf, err := readScenarioFile(cmd, saveFile)
			if err != nil {
				return err
			}
			rec, err := c.svc.SaveScenario(cmd.Context(), sf.Name,
				firstNonEmpty(sf.PolicyID, c.policyID), firstNonEmpty(sf.PoolID, c.poolID), sf.Mutations)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), rec)
		}),
	}
	save.Flags().StringVarP(&saveFile, "file", "f", "-", "scenario JSON file, - for stdin")

	cmd.AddCommand(run, save)
	return cmd
}

func readScenarioFile(cmd *cobra.Command, path string) (scenarioFile, error) {
	in, err := openInput(cmd, path)
	if err != nil {
		return scenarioFile{}, err
	}
	defer in.Close()

	var sf scenarioFile
	if err := json.NewDecoder(in).Decode(&sf); err != nil {
		return scenarioFile{}, fmt.Errorf("decode scenario %s: %w", path, err)
	}
	return sf, nil
}

// openInput opens path, or the command's stdin for "-".
func openInput(cmd *cobra.Command, path string) (io.ReadCloser, error) {
	if path == "-" || path == "" {
		return io.NopCloser(cmd.InOrStdin()), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return f, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

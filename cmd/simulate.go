package cmd

import (
	"fmt"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"

	"github.com/driftline/supportsim/api/schemas"
	"github.com/driftline/supportsim/internal/config"
	"github.com/driftline/supportsim/internal/persona"
	"github.com/driftline/supportsim/internal/simulation"
)

// newBuilderFromConfig constructs the simulation builder with the configured
// timing constants and random seed.
func newBuilderFromConfig(cfg *config.Config) *simulation.Builder {
	params := simulation.Params{
		CharsPerWord:    cfg.Simulator.CharsPerWord,
		ThinkingPauseMs: cfg.Simulator.ThinkingPauseMs,
		PauseBaseMs:     cfg.Simulator.PauseBaseMs,
		BacktrackMinMs:  cfg.Simulator.BacktrackMinMs,
		BacktrackMaxMs:  cfg.Simulator.BacktrackMaxMs,
	}
	var rng simulation.Rand
	if cfg.Simulator.Seed != 0 {
		rng = simulation.NewRand(cfg.Simulator.Seed)
	}
	return simulation.NewBuilder(params, rng)
}

// newSimulateCmd creates the `simulate` command: build a typing timeline for
// one message and print it, without playing it out in real time.
func newSimulateCmd() *cobra.Command {
	var (
		personaID  string
		mood       float64
		difficulty string
		asJSON     bool
	)

	simCmd := &cobra.Command{
		Use:   "simulate [message...]",
		Short: "Builds and prints the typing timeline for a message",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			message := strings.Join(args, " ")

			builder := newBuilderFromConfig(cfg)
			sim := builder.Build(message, personaID, mood, nil)
			sim = simulation.AdjustForDifficulty(sim, schemas.DifficultyLevel(difficulty))

			if asJSON {
				out, err := jsoniter.ConfigCompatibleWithStandardLibrary.MarshalIndent(sim, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to encode simulation: %w", err)
				}
				cmd.Println(string(out))
				return nil
			}

			printTimeline(cmd, message, personaID, sim)
			return nil
		},
	}

	simCmd.Flags().StringVarP(&personaID, "persona", "p", "office_worker",
		fmt.Sprintf("persona id (one of %s, or anything for the default profile)", strings.Join(persona.IDs(), ", ")))
	simCmd.Flags().Float64VarP(&mood, "mood", "m", 1.0, "mood modifier scalar (1.0 = neutral)")
	simCmd.Flags().StringVarP(&difficulty, "difficulty", "d", "intermediate", "difficulty level (beginner|intermediate|advanced)")
	simCmd.Flags().BoolVar(&asJSON, "json", false, "emit the raw simulation as JSON")
	return simCmd
}

func printTimeline(cmd *cobra.Command, message, personaID string, sim simulation.Simulation) {
	complexity := simulation.AnalyzeComplexity(message)

	cmd.Printf("persona:    %s%s\n", personaID, unknownSuffix(personaID))
	cmd.Printf("complexity: %s (words=%d technical=%d questions=%d intensity=%.2f)\n",
		complexity.Level, complexity.WordCount, complexity.TechnicalTerms,
		complexity.QuestionCount, complexity.EmotionalIntensity)
	cmd.Printf("total:      %.0fms over %d chunks, %d pauses, %d corrections\n\n",
		sim.TotalDurationMs, len(sim.Chunks), len(sim.PausePoints), len(sim.Backtracks))

	for i, c := range sim.Chunks {
		cmd.Printf("  [%3d] +%7.0fms  %6.0fms  %5.1f wpm  %q\n",
			i, c.StartOffsetMs, c.DurationMs, c.WPM, c.Text)
	}
	for _, p := range sim.PausePoints {
		cmd.Printf("  pause @%d chars: %.0fms (%s)\n", p.PositionChars, p.DurationMs, p.Reason)
	}
	for _, b := range sim.Backtracks {
		cmd.Printf("  backtrack @%d chars: delete %d, retype %q, %.0fms\n",
			b.PositionChars, b.CharactersDeleted, b.CorrectionText, b.DurationMs)
	}
}

func unknownSuffix(personaID string) string {
	if persona.Known(personaID) {
		return ""
	}
	return " (unknown, default profile)"
}

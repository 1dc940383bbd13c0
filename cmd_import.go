package main

import (
	"fmt"
	"os"

	"mindmeld/mindmeld"
	"mindmeld/tools"

	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import <csv>",
	Short: "Seed the round history from a CSV of played rounds",
	Long: `Reads a CSV with the columns roundNumber,userWord,aiWord,correctGuess,
embeds every row and appends it to the round history.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func runImport(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	rounds, bad, err := tools.ReadRoundsCSV(f)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "parsed %d rounds (%d malformed rows skipped)\n", len(rounds), bad)

	if dry, _ := cmd.Flags().GetBool("dry-run"); dry {
		return nil
	}

	a, err := newApp(true)
	if err != nil {
		return err
	}
	defer a.Close()

	recorder := mindmeld.NewRecorder(a.store, a.embedder, a.log, a.conf.Game.RecordBatchSize)
	res, err := recorder.Import(cmd.Context(), rounds)
	fmt.Fprintf(out, "inserted %d, skipped %d, embedding failures %d\n", res.Inserted, res.Skipped, res.EmbedFailures)
	return err
}

package main

import (
	"encoding/json"
	"fmt"

	"mindmeld/mindmeld"

	"github.com/spf13/cobra"
)

var wordsCmd = &cobra.Command{
	Use:   "words",
	Short: "List every word in the round history",
	Args:  cobra.NoArgs,
	RunE:  runWords,
}

func runWords(cmd *cobra.Command, args []string) error {
	a, err := newApp(false)
	if err != nil {
		return err
	}
	defer a.Close()

	words, err := mindmeld.NewNovelty(a.store, a.conf.Game.ScanLimit).KnownWords(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		if words == nil {
			words = []string{}
		}
		return json.NewEncoder(out).Encode(words)
	}
	for _, w := range words {
		fmt.Fprintln(out, w)
	}
	return nil
}

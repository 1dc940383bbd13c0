package tools

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"mindmeld/models"
)

var csvColumns = []string{"roundNumber", "userWord", "aiWord", "correctGuess"}

// ReadRoundsCSV parses historical rounds from a CSV with a header row holding
// roundNumber, userWord, aiWord and correctGuess (any order, extra columns
// ignored). Rows with a missing field or a bad roundNumber are skipped and
// counted.
func ReadRoundsCSV(r io.Reader) ([]models.Round, int, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, 0, fmt.Errorf("csv is empty")
	}
	if err != nil {
		return nil, 0, fmt.Errorf("read csv header: %w", err)
	}

	idx := map[string]int{}
	for i, h := range header {
		idx[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	for _, col := range csvColumns {
		if _, ok := idx[col]; !ok {
			return nil, 0, fmt.Errorf("csv header missing column %q", col)
		}
	}

	field := func(row []string, col string) string {
		i := idx[col]
		if i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var (
		out     []models.Round
		skipped int
	)
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, skipped, fmt.Errorf("read csv: %w", err)
		}

		n, err := strconv.Atoi(field(row, "roundNumber"))
		round := models.Round{
			RoundNumber:  n,
			UserWord:     field(row, "userWord"),
			AiWord:       field(row, "aiWord"),
			CorrectGuess: field(row, "correctGuess"),
		}
		if err != nil || round.UserWord == "" || round.AiWord == "" || round.CorrectGuess == "" {
			skipped++
			continue
		}
		out = append(out, round)
	}
	return out, skipped, nil
}

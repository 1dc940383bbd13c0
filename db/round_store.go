package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"sort"

	"mindmeld/logger"
	"mindmeld/models"

	"github.com/jinzhu/gorm"
)

var ErrDimensionMismatch = errors.New("embedding dimension mismatch")

// RoundStore é o histórico de rodadas. A busca por similaridade é feita em Go
// (cosine) sobre os vetores gravados em texto, igual em sqlite e postgres.
type RoundStore struct {
	db          *gorm.DB
	log         *logger.Logger
	dimension   int
	searchLimit int
}

// NewRoundStore: dimension fixa a dimensão aceita nos inserts; searchLimit
// limita quantas linhas uma busca por similaridade percorre (0 = sem limite).
func NewRoundStore(db *gorm.DB, log *logger.Logger, dimension, searchLimit int) *RoundStore {
	return &RoundStore{
		db:          db,
		log:         log.With("service", "RoundStore"),
		dimension:   dimension,
		searchLimit: searchLimit,
	}
}

func (s *RoundStore) Ping(ctx context.Context) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("round store unavailable")
	}
	return s.db.DB().PingContext(ctx)
}

// ScanAll devolve até limit linhas, sem o vetor.
func (s *RoundStore) ScanAll(ctx context.Context, limit int) ([]models.RoundRecord, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("round store unavailable")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	q := s.db.Model(&models.RoundRecord{}).
		Select("id, round_number, user_word, ai_word, correct_guess").
		Order("id asc")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var out []models.RoundRecord
	if err := q.Find(&out).Error; err != nil {
		return nil, fmt.Errorf("scan rounds: %w", err)
	}
	return out, nil
}

// SimilaritySearch devolve os limit registros mais próximos de query, em ordem
// decrescente de similaridade. Similaridade = (cos+1)/2, sempre em [0,1].
// Empates ficam com o registro mais recente (id maior) primeiro.
func (s *RoundStore) SimilaritySearch(ctx context.Context, query []float64, limit int) ([]models.ScoredRecord, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("round store unavailable")
	}
	if limit <= 0 {
		return nil, nil
	}
	if s.dimension > 0 && len(query) != s.dimension {
		return nil, fmt.Errorf("%w: query has %d, store has %d", ErrDimensionMismatch, len(query), s.dimension)
	}

	q := s.db.Model(&models.RoundRecord{}).
		Where("vector IS NOT NULL AND vector != '' AND dimension = ?", len(query)).
		Order("id desc")
	if s.searchLimit > 0 {
		q = q.Limit(s.searchLimit)
	}

	rows, err := q.Rows()
	if err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}
	defer rows.Close()

	top := make([]models.ScoredRecord, 0, limit+1)
	skipped := 0
	for rows.Next() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var rec models.RoundRecord
		if err := s.db.ScanRows(rows, &rec); err != nil {
			return nil, fmt.Errorf("similarity search scan: %w", err)
		}
		vec, err := rec.ParseVector()
		if err != nil {
			skipped++
			continue
		}
		cos, ok := cosineSimilarity(query, vec)
		if !ok {
			skipped++
			continue
		}
		rec.Vector = ""
		top = insertTopK(top, models.ScoredRecord{Record: rec, Similarity: normalizeCosine(cos)}, limit)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("similarity search rows: %w", err)
	}
	if skipped > 0 {
		s.log.Warn("similarity search skipped invalid vectors", "skipped", skipped)
	}
	return top, nil
}

// MaxID devolve o maior id gravado; ok=false com a tabela vazia.
func (s *RoundStore) MaxID(ctx context.Context) (int64, bool, error) {
	if s == nil || s.db == nil {
		return 0, false, fmt.Errorf("round store unavailable")
	}
	if err := ctx.Err(); err != nil {
		return 0, false, err
	}
	var max sql.NullInt64
	if err := s.db.Model(&models.RoundRecord{}).Select("MAX(id)").Row().Scan(&max); err != nil {
		return 0, false, fmt.Errorf("max id: %w", err)
	}
	return max.Int64, max.Valid, nil
}

// InsertBatch grava o lote numa transação: ou entra tudo ou nada.
func (s *RoundStore) InsertBatch(ctx context.Context, records []models.RoundRecord) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("round store unavailable")
	}
	if len(records) == 0 {
		return nil
	}
	for _, r := range records {
		if s.dimension > 0 && r.Dimension != s.dimension {
			return fmt.Errorf("%w: record %d has %d, store has %d", ErrDimensionMismatch, r.ID, r.Dimension, s.dimension)
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	tx := s.db.Begin()
	if tx.Error != nil {
		return tx.Error
	}
	for i := range records {
		rec := records[i]
		if err := tx.Create(&rec).Error; err != nil {
			tx.Rollback()
			return fmt.Errorf("insert round %d: %w", rec.ID, err)
		}
	}
	return tx.Commit().Error
}

func insertTopK(top []models.ScoredRecord, item models.ScoredRecord, k int) []models.ScoredRecord {
	idx := sort.Search(len(top), func(i int) bool {
		if top[i].Similarity != item.Similarity {
			return top[i].Similarity < item.Similarity
		}
		return top[i].Record.ID < item.Record.ID
	})
	if idx >= k {
		return top
	}
	top = append(top, models.ScoredRecord{})
	copy(top[idx+1:], top[idx:])
	top[idx] = item
	if len(top) > k {
		top = top[:k]
	}
	return top
}

func normalizeCosine(cos float64) float64 {
	v := (cos + 1) / 2
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func cosineSimilarity(a, b []float64) (float64, bool) {
	if len(a) == 0 || len(a) != len(b) {
		return 0, false
	}
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0, false
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb)), true
}

// Package seed は参照データ（材料・タグ）のTOMLフィクスチャ投入を提供する。
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/hitoshi/cookbook/internal/model"
	"github.com/hitoshi/cookbook/internal/repository"
)

// Fixture は投入データのTOML表現。
type Fixture struct {
	Ingredients []IngredientFixture `toml:"ingredients"`
	Tags        []TagFixture        `toml:"tags"`
}

// IngredientFixture は材料1件のTOML表現。
type IngredientFixture struct {
	Name            string `toml:"name"`
	MeasurementUnit string `toml:"measurement_unit"`
}

// TagFixture はタグ1件のTOML表現。
type TagFixture struct {
	Name  string `toml:"name"`
	Color string `toml:"color"`
	Slug  string `toml:"slug"`
}

// Seeder は参照データの投入を行う。
// 既存データは(名前, 単位)またはslugで検出してスキップするため、
// 同じフィクスチャを何度投入しても結果は変わらない。
type Seeder struct {
	ingredientRepo repository.IngredientRepository
	tagRepo        repository.TagRepository
	logger         *slog.Logger
}

// NewSeeder はSeederの新しいインスタンスを生成する。
func NewSeeder(
	ingredientRepo repository.IngredientRepository,
	tagRepo repository.TagRepository,
	logger *slog.Logger,
) *Seeder {
	return &Seeder{
		ingredientRepo: ingredientRepo,
		tagRepo:        tagRepo,
		logger:         logger,
	}
}

// LoadFixture はTOMLフィクスチャファイルを読み込む。
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("フィクスチャの読み込みに失敗しました: %w", err)
	}
	var f Fixture
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("フィクスチャの解析に失敗しました: %w", err)
	}
	return &f, nil
}

// Run はフィクスチャの内容をデータベースに投入する。
func (s *Seeder) Run(ctx context.Context, f *Fixture) error {
	createdIngredients := 0
	for _, in := range f.Ingredients {
		existing, err := s.ingredientRepo.FindByNameAndUnit(ctx, in.Name, in.MeasurementUnit)
		if err != nil {
			return fmt.Errorf("材料の検索に失敗しました: %w", err)
		}
		if existing != nil {
			continue
		}
		ingredient := &model.Ingredient{Name: in.Name, MeasurementUnit: in.MeasurementUnit}
		if err := s.ingredientRepo.Create(ctx, ingredient); err != nil {
			return fmt.Errorf("材料の投入に失敗しました: %w", err)
		}
		createdIngredients++
	}

	createdTags := 0
	for _, t := range f.Tags {
		existing, err := s.tagRepo.FindBySlug(ctx, t.Slug)
		if err != nil {
			return fmt.Errorf("タグの検索に失敗しました: %w", err)
		}
		if existing != nil {
			continue
		}
		tag := &model.Tag{Name: t.Name, Color: t.Color, Slug: t.Slug}
		if err := s.tagRepo.Create(ctx, tag); err != nil {
			return fmt.Errorf("タグの投入に失敗しました: %w", err)
		}
		createdTags++
	}

	s.logger.Info("seed completed",
		slog.Int("ingredients_created", createdIngredients),
		slog.Int("ingredients_total", len(f.Ingredients)),
		slog.Int("tags_created", createdTags),
		slog.Int("tags_total", len(f.Tags)),
	)
	return nil
}

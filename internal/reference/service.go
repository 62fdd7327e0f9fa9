// Package reference はタグ・材料の参照データ提供のドメインロジックを提供する。
//
// 参照データの閲覧は公開APIとして提供し、投入・更新は管理者専用の
// APIまたはシードコマンドで行う。
package reference

import (
	"context"
	"fmt"
	"strings"

	"github.com/hitoshi/cookbook/internal/model"
	"github.com/hitoshi/cookbook/internal/repository"
	"github.com/hitoshi/cookbook/internal/security"
)

// Service は参照データのサービス層。
type Service struct {
	tagRepo        repository.TagRepository
	ingredientRepo repository.IngredientRepository
	sanitizer      security.ContentSanitizerService
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	tagRepo repository.TagRepository,
	ingredientRepo repository.IngredientRepository,
	sanitizer security.ContentSanitizerService,
) *Service {
	return &Service{
		tagRepo:        tagRepo,
		ingredientRepo: ingredientRepo,
		sanitizer:      sanitizer,
	}
}

// TagInput はタグ作成の入力。
type TagInput struct {
	Name  string
	Color string
	Slug  string
}

// TagUpdateInput はタグ部分更新の入力。nilのフィールドは変更しない。
type TagUpdateInput struct {
	Name  *string
	Color *string
	Slug  *string
}

// IngredientInput は材料作成の入力。
type IngredientInput struct {
	Name            string
	MeasurementUnit string
}

// IngredientUpdateInput は材料部分更新の入力。nilのフィールドは変更しない。
type IngredientUpdateInput struct {
	Name            *string
	MeasurementUnit *string
}

// ListTags は全タグを名前昇順で返す。ページングはしない。
func (s *Service) ListTags(ctx context.Context) ([]*model.Tag, error) {
	tags, err := s.tagRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("タグ一覧の取得に失敗しました: %w", err)
	}
	return tags, nil
}

// GetTag は指定IDのタグを返す。
func (s *Service) GetTag(ctx context.Context, id int64) (*model.Tag, error) {
	tag, err := s.tagRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("タグの取得に失敗しました: %w", err)
	}
	if tag == nil {
		return nil, model.NewTagNotFoundError(id)
	}
	return tag, nil
}

// CreateTag はタグを作成する。管理者のみ実行できる。
// slugが既存のタグと重複する場合はエラーを返す。
func (s *Service) CreateTag(ctx context.Context, actor *model.User, input TagInput) (*model.Tag, error) {
	if !actor.IsAdmin {
		return nil, model.NewPermissionDeniedError()
	}

	tag := &model.Tag{
		Name:  s.sanitizer.SanitizeText(input.Name),
		Color: strings.TrimSpace(input.Color),
		Slug:  strings.TrimSpace(input.Slug),
	}
	if err := validateTag(tag); err != nil {
		return nil, err
	}

	existing, err := s.tagRepo.FindBySlug(ctx, tag.Slug)
	if err != nil {
		return nil, fmt.Errorf("タグの重複確認に失敗しました: %w", err)
	}
	if existing != nil {
		return nil, model.NewDuplicateTagError(tag.Slug)
	}

	if err := s.tagRepo.Create(ctx, tag); err != nil {
		return nil, fmt.Errorf("タグの作成に失敗しました: %w", err)
	}
	return tag, nil
}

// UpdateTag はタグを部分更新する。管理者のみ実行できる。
func (s *Service) UpdateTag(ctx context.Context, actor *model.User, id int64, input TagUpdateInput) (*model.Tag, error) {
	if !actor.IsAdmin {
		return nil, model.NewPermissionDeniedError()
	}

	tag, err := s.tagRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("タグの取得に失敗しました: %w", err)
	}
	if tag == nil {
		return nil, model.NewTagNotFoundError(id)
	}

	if input.Name != nil {
		tag.Name = s.sanitizer.SanitizeText(*input.Name)
	}
	if input.Color != nil {
		tag.Color = strings.TrimSpace(*input.Color)
	}
	if input.Slug != nil {
		newSlug := strings.TrimSpace(*input.Slug)
		if newSlug != tag.Slug {
			existing, err := s.tagRepo.FindBySlug(ctx, newSlug)
			if err != nil {
				return nil, fmt.Errorf("タグの重複確認に失敗しました: %w", err)
			}
			if existing != nil {
				return nil, model.NewDuplicateTagError(newSlug)
			}
		}
		tag.Slug = newSlug
	}
	if err := validateTag(tag); err != nil {
		return nil, err
	}

	if err := s.tagRepo.Update(ctx, tag); err != nil {
		return nil, fmt.Errorf("タグの更新に失敗しました: %w", err)
	}
	return tag, nil
}

// DeleteTag はタグを削除する。管理者のみ実行できる。
// タグを参照するレシピとの結合行はCASCADE削除される。
func (s *Service) DeleteTag(ctx context.Context, actor *model.User, id int64) error {
	if !actor.IsAdmin {
		return model.NewPermissionDeniedError()
	}

	tag, err := s.tagRepo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("タグの取得に失敗しました: %w", err)
	}
	if tag == nil {
		return model.NewTagNotFoundError(id)
	}

	if err := s.tagRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("タグの削除に失敗しました: %w", err)
	}
	return nil
}

// ListIngredients は材料一覧を返す。ページングはしない。
// namePrefixが非空の場合は名前の前方一致で絞り込む。
func (s *Service) ListIngredients(ctx context.Context, namePrefix string) ([]*model.Ingredient, error) {
	ingredients, err := s.ingredientRepo.List(ctx, namePrefix)
	if err != nil {
		return nil, fmt.Errorf("材料一覧の取得に失敗しました: %w", err)
	}
	return ingredients, nil
}

// GetIngredient は指定IDの材料を返す。
func (s *Service) GetIngredient(ctx context.Context, id int64) (*model.Ingredient, error) {
	ingredient, err := s.ingredientRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("材料の取得に失敗しました: %w", err)
	}
	if ingredient == nil {
		return nil, model.NewIngredientNotFoundError(id)
	}
	return ingredient, nil
}

// CreateIngredient は材料を作成する。管理者のみ実行できる。
// 名前と計量単位の組が既存の材料と重複する場合はエラーを返す。
func (s *Service) CreateIngredient(ctx context.Context, actor *model.User, input IngredientInput) (*model.Ingredient, error) {
	if !actor.IsAdmin {
		return nil, model.NewPermissionDeniedError()
	}

	ingredient := &model.Ingredient{
		Name:            s.sanitizer.SanitizeText(input.Name),
		MeasurementUnit: s.sanitizer.SanitizeText(input.MeasurementUnit),
	}
	if err := validateIngredient(ingredient); err != nil {
		return nil, err
	}

	existing, err := s.ingredientRepo.FindByNameAndUnit(ctx, ingredient.Name, ingredient.MeasurementUnit)
	if err != nil {
		return nil, fmt.Errorf("材料の重複確認に失敗しました: %w", err)
	}
	if existing != nil {
		return nil, model.NewDuplicateUnitError(ingredient.Name, ingredient.MeasurementUnit)
	}

	if err := s.ingredientRepo.Create(ctx, ingredient); err != nil {
		return nil, fmt.Errorf("材料の作成に失敗しました: %w", err)
	}
	return ingredient, nil
}

// UpdateIngredient は材料を部分更新する。管理者のみ実行できる。
func (s *Service) UpdateIngredient(ctx context.Context, actor *model.User, id int64, input IngredientUpdateInput) (*model.Ingredient, error) {
	if !actor.IsAdmin {
		return nil, model.NewPermissionDeniedError()
	}

	ingredient, err := s.ingredientRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("材料の取得に失敗しました: %w", err)
	}
	if ingredient == nil {
		return nil, model.NewIngredientNotFoundError(id)
	}

	changed := false
	if input.Name != nil {
		ingredient.Name = s.sanitizer.SanitizeText(*input.Name)
		changed = true
	}
	if input.MeasurementUnit != nil {
		ingredient.MeasurementUnit = s.sanitizer.SanitizeText(*input.MeasurementUnit)
		changed = true
	}
	if err := validateIngredient(ingredient); err != nil {
		return nil, err
	}

	if changed {
		existing, err := s.ingredientRepo.FindByNameAndUnit(ctx, ingredient.Name, ingredient.MeasurementUnit)
		if err != nil {
			return nil, fmt.Errorf("材料の重複確認に失敗しました: %w", err)
		}
		if existing != nil && existing.ID != id {
			return nil, model.NewDuplicateUnitError(ingredient.Name, ingredient.MeasurementUnit)
		}
	}

	if err := s.ingredientRepo.Update(ctx, ingredient); err != nil {
		return nil, fmt.Errorf("材料の更新に失敗しました: %w", err)
	}
	return ingredient, nil
}

// DeleteIngredient は材料を削除する。管理者のみ実行できる。
func (s *Service) DeleteIngredient(ctx context.Context, actor *model.User, id int64) error {
	if !actor.IsAdmin {
		return model.NewPermissionDeniedError()
	}

	ingredient, err := s.ingredientRepo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("材料の取得に失敗しました: %w", err)
	}
	if ingredient == nil {
		return model.NewIngredientNotFoundError(id)
	}

	if err := s.ingredientRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("材料の削除に失敗しました: %w", err)
	}
	return nil
}

// validateTag はタグの必須フィールドと色コード形式を検証する。
func validateTag(tag *model.Tag) error {
	if tag.Name == "" {
		return model.NewInvalidReferenceError("タグ名が空です")
	}
	if tag.Slug == "" {
		return model.NewInvalidReferenceError("slugが空です")
	}
	if !isHexColor(tag.Color) {
		return model.NewInvalidReferenceError("色は#RRGGBB形式で指定してください")
	}
	return nil
}

// validateIngredient は材料の必須フィールドを検証する。
func validateIngredient(ingredient *model.Ingredient) error {
	if ingredient.Name == "" {
		return model.NewInvalidReferenceError("材料名が空です")
	}
	if ingredient.MeasurementUnit == "" {
		return model.NewInvalidReferenceError("計量単位が空です")
	}
	return nil
}

// isHexColor は#RRGGBB形式の色コードか判定する。
func isHexColor(s string) bool {
	if len(s) != 7 || s[0] != '#' {
		return false
	}
	for _, c := range s[1:] {
		switch {
		case c >= '0' && c <= '9', c >= 'a' && c <= 'f', c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}

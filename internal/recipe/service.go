package recipe

import (
	"context"
	"fmt"

	"github.com/hitoshi/cookbook/internal/config"
	"github.com/hitoshi/cookbook/internal/model"
	"github.com/hitoshi/cookbook/internal/repository"
	"github.com/hitoshi/cookbook/internal/security"
	"github.com/hitoshi/cookbook/internal/storage"
	"github.com/hitoshi/cookbook/internal/user"
)

// IngredientAmount はレシピ入力の材料1行（材料IDと数量）を表す。
type IngredientAmount struct {
	IngredientID int64
	Amount       int
}

// CreateInput はレシピ作成の入力。
// ImageDataURLはbase64エンコードされたdata URL形式の画像。
type CreateInput struct {
	Name         string
	Text         string
	ImageDataURL string
	CookingTime  int
	TagIDs       []int64
	Ingredients  []IngredientAmount
}

// UpdateInput はレシピ更新の入力。nilのフィールドは変更しない。
// TagIDs・Ingredientsは指定された場合に集合全体を置換する。
type UpdateInput struct {
	Name         *string
	Text         *string
	ImageDataURL *string
	CookingTime  *int
	TagIDs       *[]int64
	Ingredients  *[]IngredientAmount
}

// Filter はレシピ一覧の絞り込み条件。
// OnlyFavorited・OnlyInCartは認証済み閲覧者に対してのみ効き、
// 匿名閲覧では無視される。
type Filter struct {
	AuthorID      *int64
	TagSlugs      []string
	OnlyFavorited bool
	OnlyInCart    bool
}

// Service はレシピ管理のサービス層。
// 作成・更新・削除・一覧・お気に入り・買い物リストのビジネスロジックを提供する。
type Service struct {
	recipeRepo     repository.RecipeRepository
	tagRepo        repository.TagRepository
	ingredientRepo repository.IngredientRepository
	userRepo       repository.UserRepository
	subRepo        repository.SubscriptionRepository
	favoriteRepo   repository.RecipeMarkRepository
	cartRepo       repository.RecipeMarkRepository
	imageStore     storage.ImageStore
	sanitizer      security.ContentSanitizerService
	limits         config.Limits
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	recipeRepo repository.RecipeRepository,
	tagRepo repository.TagRepository,
	ingredientRepo repository.IngredientRepository,
	userRepo repository.UserRepository,
	subRepo repository.SubscriptionRepository,
	favoriteRepo repository.RecipeMarkRepository,
	cartRepo repository.RecipeMarkRepository,
	imageStore storage.ImageStore,
	sanitizer security.ContentSanitizerService,
	limits config.Limits,
) *Service {
	return &Service{
		recipeRepo:     recipeRepo,
		tagRepo:        tagRepo,
		ingredientRepo: ingredientRepo,
		userRepo:       userRepo,
		subRepo:        subRepo,
		favoriteRepo:   favoriteRepo,
		cartRepo:       cartRepo,
		imageStore:     imageStore,
		sanitizer:      sanitizer,
		limits:         limits,
	}
}

// Get は指定IDのレシピを閲覧者スコープの読み取り表現で返す。
func (s *Service) Get(ctx context.Context, viewerID *int64, recipeID int64) (*View, error) {
	r, err := s.recipeRepo.FindByID(ctx, recipeID)
	if err != nil {
		return nil, fmt.Errorf("レシピの取得に失敗しました: %w", err)
	}
	if r == nil {
		return nil, model.NewRecipeNotFoundError(recipeID)
	}
	return s.buildView(ctx, viewerID, r)
}

// List はフィルタ適用済みのレシピ一覧を公開日時降順で返す。総数も返す。
func (s *Service) List(ctx context.Context, viewerID *int64, filter Filter, limit, offset int) ([]*View, int, error) {
	repoFilter := repository.RecipeFilter{
		AuthorID: filter.AuthorID,
		TagSlugs: filter.TagSlugs,
	}
	// 閲覧者スコープのフィルタは匿名閲覧では無視する
	if viewerID != nil {
		if filter.OnlyFavorited {
			repoFilter.FavoritedBy = viewerID
		}
		if filter.OnlyInCart {
			repoFilter.InCartOf = viewerID
		}
	}

	recipes, err := s.recipeRepo.List(ctx, repoFilter, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("レシピ一覧の取得に失敗しました: %w", err)
	}
	total, err := s.recipeRepo.Count(ctx, repoFilter)
	if err != nil {
		return nil, 0, fmt.Errorf("レシピ数の取得に失敗しました: %w", err)
	}

	views := make([]*View, len(recipes))
	for i, r := range recipes {
		view, err := s.buildView(ctx, viewerID, r)
		if err != nil {
			return nil, 0, err
		}
		views[i] = view
	}
	return views, total, nil
}

// Create は新規レシピを作成し、作成者を閲覧者とした読み取り表現で返す。
// 作成者はサーバ側で注入され、クライアントからは指定できない。
// 検証違反がある場合、レシピ本体も結合行も一切作成されない。
func (s *Service) Create(ctx context.Context, authorID int64, input CreateInput) (*View, error) {
	if err := s.validateCookingTime(input.CookingTime); err != nil {
		return nil, err
	}
	ingredients, err := s.resolveIngredients(ctx, input.Ingredients)
	if err != nil {
		return nil, err
	}
	if err := s.validateTags(ctx, input.TagIDs); err != nil {
		return nil, err
	}

	img, err := storage.ParseDataURL(input.ImageDataURL)
	if err != nil {
		return nil, err
	}
	imageURL, err := s.imageStore.Save(ctx, img)
	if err != nil {
		return nil, fmt.Errorf("画像の保存に失敗しました: %w", err)
	}

	r := &model.Recipe{
		AuthorID:    authorID,
		Name:        s.sanitizer.SanitizeText(input.Name),
		ImageURL:    imageURL,
		Text:        s.sanitizer.SanitizeRichText(input.Text),
		CookingTime: input.CookingTime,
	}
	if err := s.recipeRepo.Create(ctx, r, input.TagIDs, ingredients); err != nil {
		return nil, err
	}

	return s.buildView(ctx, &authorID, r)
}

// Update はレシピを部分更新し、更新後の読み取り表現で返す。
// 省略されたフィールドは変更されず、タグ・材料は指定時に全置換される。
// 作成者本人と管理者のみが更新できる。
func (s *Service) Update(ctx context.Context, actor *model.User, recipeID int64, input UpdateInput) (*View, error) {
	r, err := s.recipeRepo.FindByID(ctx, recipeID)
	if err != nil {
		return nil, fmt.Errorf("レシピの取得に失敗しました: %w", err)
	}
	if r == nil {
		return nil, model.NewRecipeNotFoundError(recipeID)
	}
	if r.AuthorID != actor.ID && !actor.IsAdmin {
		return nil, model.NewPermissionDeniedError()
	}

	if input.Name != nil {
		r.Name = s.sanitizer.SanitizeText(*input.Name)
	}
	if input.Text != nil {
		r.Text = s.sanitizer.SanitizeRichText(*input.Text)
	}
	if input.CookingTime != nil {
		if err := s.validateCookingTime(*input.CookingTime); err != nil {
			return nil, err
		}
		r.CookingTime = *input.CookingTime
	}
	if input.ImageDataURL != nil {
		img, err := storage.ParseDataURL(*input.ImageDataURL)
		if err != nil {
			return nil, err
		}
		imageURL, err := s.imageStore.Save(ctx, img)
		if err != nil {
			return nil, fmt.Errorf("画像の保存に失敗しました: %w", err)
		}
		r.ImageURL = imageURL
	}

	var tagIDs []int64
	replaceTags := input.TagIDs != nil
	if replaceTags {
		tagIDs = *input.TagIDs
		if err := s.validateTags(ctx, tagIDs); err != nil {
			return nil, err
		}
	}

	var ingredients []model.RecipeIngredient
	replaceIngredients := input.Ingredients != nil
	if replaceIngredients {
		ingredients, err = s.resolveIngredients(ctx, *input.Ingredients)
		if err != nil {
			return nil, err
		}
	}

	if err := s.recipeRepo.Update(ctx, r, tagIDs, replaceTags, ingredients, replaceIngredients); err != nil {
		return nil, err
	}

	return s.buildView(ctx, &actor.ID, r)
}

// Delete はレシピを削除する。作成者本人と管理者のみが削除できる。
// 全ユーザーのお気に入り・買い物リストからもCASCADE削除される。
func (s *Service) Delete(ctx context.Context, actor *model.User, recipeID int64) error {
	r, err := s.recipeRepo.FindByID(ctx, recipeID)
	if err != nil {
		return fmt.Errorf("レシピの取得に失敗しました: %w", err)
	}
	if r == nil {
		return model.NewRecipeNotFoundError(recipeID)
	}
	if r.AuthorID != actor.ID && !actor.IsAdmin {
		return model.NewPermissionDeniedError()
	}
	return s.recipeRepo.Delete(ctx, recipeID)
}

// validateCookingTime は調理時間が設定された境界内にあることを検証する。
func (s *Service) validateCookingTime(value int) error {
	if value < s.limits.MinAmount || value > s.limits.MaxAmount {
		return model.NewInvalidCookingTimeError(value, s.limits.MinAmount, s.limits.MaxAmount)
	}
	return nil
}

// resolveIngredients は材料入力を検証してデータベース行の形に解決する。
// 未知の材料ID、境界外の数量、同一材料の重複をAPIErrorとして返す。
// 重複エラーには解決済みの材料名を含める。
func (s *Service) resolveIngredients(ctx context.Context, inputs []IngredientAmount) ([]model.RecipeIngredient, error) {
	ids := make([]int64, len(inputs))
	for i, in := range inputs {
		ids[i] = in.IngredientID
	}

	found, err := s.ingredientRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("材料の取得に失敗しました: %w", err)
	}
	byID := make(map[int64]*model.Ingredient, len(found))
	for _, ing := range found {
		byID[ing.ID] = ing
	}

	seen := make(map[int64]bool, len(inputs))
	rows := make([]model.RecipeIngredient, len(inputs))
	for i, in := range inputs {
		ing, ok := byID[in.IngredientID]
		if !ok {
			return nil, model.NewIngredientNotFoundError(in.IngredientID)
		}
		if seen[in.IngredientID] {
			return nil, model.NewDuplicateIngredientError(ing.Name)
		}
		seen[in.IngredientID] = true

		if in.Amount < s.limits.MinAmount || in.Amount > s.limits.MaxAmount {
			return nil, model.NewInvalidAmountError(in.IngredientID, in.Amount, s.limits.MinAmount, s.limits.MaxAmount)
		}
		rows[i] = model.RecipeIngredient{
			IngredientID: in.IngredientID,
			Amount:       in.Amount,
		}
	}
	return rows, nil
}

// validateTags は全タグIDが存在することを検証する。
func (s *Service) validateTags(ctx context.Context, tagIDs []int64) error {
	if len(tagIDs) == 0 {
		return nil
	}
	found, err := s.tagRepo.FindByIDs(ctx, tagIDs)
	if err != nil {
		return fmt.Errorf("タグの取得に失敗しました: %w", err)
	}
	byID := make(map[int64]bool, len(found))
	for _, t := range found {
		byID[t.ID] = true
	}
	for _, id := range tagIDs {
		if !byID[id] {
			return model.NewTagNotFoundError(id)
		}
	}
	return nil
}

// buildView はレシピの読み取り表現を組み立てる。
// 作成者プロフィール、タグ、解決済み材料、閲覧者スコープのフラグを解決する。
func (s *Service) buildView(ctx context.Context, viewerID *int64, r *model.Recipe) (*View, error) {
	author, err := s.userRepo.FindByID(ctx, r.AuthorID)
	if err != nil {
		return nil, fmt.Errorf("作成者の取得に失敗しました: %w", err)
	}
	if author == nil {
		return nil, fmt.Errorf("作成者が見つかりません: %d", r.AuthorID)
	}

	subscribed := false
	favorited := false
	inCart := false
	if viewerID != nil {
		if *viewerID != author.ID {
			subscribed, err = s.subRepo.Exists(ctx, *viewerID, author.ID)
			if err != nil {
				return nil, fmt.Errorf("フォロー状態の取得に失敗しました: %w", err)
			}
		}
		favorited, err = s.favoriteRepo.Exists(ctx, *viewerID, r.ID)
		if err != nil {
			return nil, fmt.Errorf("お気に入り状態の取得に失敗しました: %w", err)
		}
		inCart, err = s.cartRepo.Exists(ctx, *viewerID, r.ID)
		if err != nil {
			return nil, fmt.Errorf("買い物リスト状態の取得に失敗しました: %w", err)
		}
	}

	tags, err := s.tagRepo.ListByRecipeID(ctx, r.ID)
	if err != nil {
		return nil, fmt.Errorf("タグの取得に失敗しました: %w", err)
	}
	ingredients, err := s.recipeRepo.ListIngredients(ctx, r.ID)
	if err != nil {
		return nil, fmt.Errorf("材料の取得に失敗しました: %w", err)
	}

	return &View{
		ID: r.ID,
		Author: &user.Profile{
			ID:           author.ID,
			Email:        author.Email,
			Username:     author.Username,
			FirstName:    author.FirstName,
			LastName:     author.LastName,
			IsSubscribed: subscribed,
		},
		Tags:             tags,
		Ingredients:      ingredients,
		IsFavorited:      favorited,
		IsInShoppingCart: inCart,
		Name:             r.Name,
		ImageURL:         r.ImageURL,
		Text:             r.Text,
		CookingTime:      r.CookingTime,
		PubDate:          r.PubDate,
	}, nil
}

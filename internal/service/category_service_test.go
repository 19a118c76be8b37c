package service

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/aibianji/sticky-notes-app/internal/domain"
	"github.com/aibianji/sticky-notes-app/internal/dto"
	"github.com/aibianji/sticky-notes-app/pkg/code"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"gorm.io/gorm"
)

type mockCategoryRepo struct {
	domain.CategoryRepository

	categories []*domain.Category
	reordered  []int64
	nextID     int64
}

func (m *mockCategoryRepo) GetByID(ctx context.Context, id int64) (*domain.Category, error) {
	for _, c := range m.categories {
		if c.ID == id {
			copied := *c
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCategoryRepo) GetByName(ctx context.Context, name string) (*domain.Category, error) {
	for _, c := range m.categories {
		if c.Name == name {
			copied := *c
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCategoryRepo) Create(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	m.nextID++
	category.ID = m.nextID
	m.categories = append(m.categories, category)
	copied := *category
	return &copied, nil
}

func (m *mockCategoryRepo) Update(ctx context.Context, category *domain.Category) error {
	for _, c := range m.categories {
		if c.ID == category.ID {
			c.Name = category.Name
			c.Color = category.Color
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (m *mockCategoryRepo) List(ctx context.Context) ([]*domain.Category, error) {
	result := make([]*domain.Category, 0, len(m.categories))
	for _, c := range m.categories {
		copied := *c
		result = append(result, &copied)
	}
	// 按 sort_order 升序，并列时按 id 升序，与 domain.CategoryRepository 契约一致
	sort.Slice(result, func(i, j int) bool {
		if result[i].SortOrder != result[j].SortOrder {
			return result[i].SortOrder < result[j].SortOrder
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (m *mockCategoryRepo) Reorder(ctx context.Context, orderedIDs []int64) error {
	m.reordered = append([]int64{}, orderedIDs...)
	for position, id := range orderedIDs {
		for _, c := range m.categories {
			if c.ID == id {
				c.SortOrder = position
			}
		}
	}
	return nil
}

func (m *mockCategoryRepo) MaxSortOrder(ctx context.Context) (int, error) {
	max := -1
	for _, c := range m.categories {
		if c.SortOrder > max {
			max = c.SortOrder
		}
	}
	return max, nil
}

func newCategoryRepoWith(names ...string) *mockCategoryRepo {
	repo := &mockCategoryRepo{}
	for i, name := range names {
		repo.nextID++
		repo.categories = append(repo.categories, &domain.Category{
			ID:        repo.nextID,
			Name:      name,
			SortOrder: i,
		})
	}
	return repo
}

func TestCategoryService_Create(t *testing.T) {
	repo := newCategoryRepoWith("work", "home")
	svc := NewCategoryService(repo, &ServiceConfig{})
	ctx := context.Background()

	created, err := svc.Create(ctx, &dto.CategoryCreateRequest{Name: "ideas", Color: "#AACCEE"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.SortOrder != 2 {
		t.Errorf("new category should append to the end, got sortOrder %d", created.SortOrder)
	}

	if _, err := svc.Create(ctx, &dto.CategoryCreateRequest{Name: "work"}); !errors.Is(err, code.ErrorCategoryNameExist) {
		t.Errorf("expected ErrorCategoryNameExist, got %v", err)
	}
}

func TestCategoryService_Update_NameConflict(t *testing.T) {
	repo := newCategoryRepoWith("work", "home")
	svc := NewCategoryService(repo, &ServiceConfig{})
	ctx := context.Background()

	// 改为他人名称被拒绝
	if _, err := svc.Update(ctx, &dto.CategoryUpdateRequest{ID: 1, Name: "home"}); !errors.Is(err, code.ErrorCategoryNameExist) {
		t.Errorf("expected ErrorCategoryNameExist, got %v", err)
	}

	// 保持自身名称仅改颜色是允许的
	updated, err := svc.Update(ctx, &dto.CategoryUpdateRequest{ID: 1, Name: "work", Color: "#112233"})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.Color != "#112233" {
		t.Errorf("expected color updated, got %q", updated.Color)
	}

	if _, err := svc.Update(ctx, &dto.CategoryUpdateRequest{ID: 99, Name: "x"}); !errors.Is(err, code.ErrorCategoryNotFound) {
		t.Errorf("expected ErrorCategoryNotFound, got %v", err)
	}
}

func TestCategoryService_Reorder(t *testing.T) {
	tests := []struct {
		name       string
		orderedIDs []int64
		wantErr    error
	}{
		{name: "valid permutation", orderedIDs: []int64{3, 1, 2}},
		{name: "missing id", orderedIDs: []int64{1, 2}, wantErr: code.ErrorCategoryReorder},
		{name: "unknown id", orderedIDs: []int64{1, 2, 99}, wantErr: code.ErrorCategoryReorder},
		{name: "duplicate id", orderedIDs: []int64{1, 2, 2}, wantErr: code.ErrorCategoryReorder},
		{name: "extra id", orderedIDs: []int64{1, 2, 3, 4}, wantErr: code.ErrorCategoryReorder},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newCategoryRepoWith("a", "b", "c")
			svc := NewCategoryService(repo, &ServiceConfig{})

			result, err := svc.Reorder(context.Background(), &dto.CategoryReorderRequest{OrderedIDs: tt.orderedIDs})
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				if repo.reordered != nil {
					t.Error("repository must not be touched on a rejected reorder")
				}
				return
			}
			if err != nil {
				t.Fatalf("Reorder failed: %v", err)
			}
			for position, category := range result {
				if category.ID != tt.orderedIDs[position] {
					t.Errorf("position %d: expected id %d, got %d", position, tt.orderedIDs[position], category.ID)
				}
				if category.SortOrder != position {
					t.Errorf("position %d: expected dense sortOrder, got %d", position, category.SortOrder)
				}
			}
		})
	}
}

// 重排后的 sort_order 必须是 0 起始的连续序列，与输入排列一一对应
func TestProperty_ReorderKeepsDenseOrder(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("any full permutation is accepted and applied densely", prop.ForAll(
		func(seed []int64) bool {
			names := make([]string, len(seed))
			for i := range seed {
				names[i] = string(rune('a' + i))
			}
			repo := newCategoryRepoWith(names...)
			svc := NewCategoryService(repo, &ServiceConfig{})

			// 以 seed 生成一个确定性排列
			ids := make([]int64, len(seed))
			for i := range ids {
				ids[i] = int64(i + 1)
			}
			for i := len(ids) - 1; i > 0; i-- {
				j := int(seed[i]%int64(i+1)+int64(i+1)) % (i + 1)
				ids[i], ids[j] = ids[j], ids[i]
			}

			result, err := svc.Reorder(context.Background(), &dto.CategoryReorderRequest{OrderedIDs: ids})
			if err != nil {
				return false
			}
			for position, category := range result {
				if category.ID != ids[position] || category.SortOrder != position {
					return false
				}
			}
			return true
		},
		gen.SliceOfN(5, gen.Int64()),
	))

	properties.TestingRun(t)
}

package category

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sarishop/sarishop-backend/pkg/db/models"
	pkgerrors "github.com/sarishop/sarishop-backend/pkg/errors"
	"github.com/sarishop/sarishop-backend/pkg/pagination"
	"github.com/sarishop/sarishop-backend/pkg/slug"
)

type stubProductCounter struct {
	counts map[uuid.UUID]int64
}

func (s *stubProductCounter) CountByCategory(_ context.Context, id uuid.UUID) (int64, error) {
	return s.counts[id], nil
}

func newTestService(t *testing.T, tx *gorm.DB, counts map[uuid.UUID]int64) Service {
	t.Helper()
	svc, err := NewService(NewRepository(tx), &stubProductCounter{counts: counts})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func mustCreateCategory(t *testing.T, svc Service, name string, parentID *uuid.UUID) *CategoryDTO {
	t.Helper()
	dto, err := svc.CreateCategory(context.Background(), CreateCategoryInput{
		Name:     name,
		ParentID: parentID,
	})
	if err != nil {
		t.Fatalf("create category %q: %v", name, err)
	}
	return dto
}

func TestServiceCategoryLifecycle(t *testing.T) {
	conn := openTestDB(t)
	tx := conn.Begin()
	if tx.Error != nil {
		t.Fatalf("begin tx: %v", tx.Error)
	}
	t.Cleanup(func() {
		_ = tx.Rollback()
	})

	svc := newTestService(t, tx, nil)
	ctx := context.Background()

	name := fmt.Sprintf("Silk Saris %s", uuid.NewString())
	root := mustCreateCategory(t, svc, name, nil)
	if root.Slug == "" || root.ParentID != nil {
		t.Fatalf("unexpected root: %+v", root)
	}

	if _, err := svc.CreateCategory(ctx, CreateCategoryInput{Name: name}); err == nil {
		t.Fatal("expected duplicate name rejection")
	} else if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeDuplicateName {
		t.Fatalf("expected duplicate name code, got %v", err)
	}

	child := mustCreateCategory(t, svc, fmt.Sprintf("Banarasi %s", uuid.NewString()), &root.ID)

	if err := svc.DeleteCategory(ctx, root.ID); err == nil {
		t.Fatal("expected delete guard for subcategories")
	} else if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeHasChildren {
		t.Fatalf("expected has children code, got %v", err)
	}

	if err := svc.DeleteCategory(ctx, child.ID); err != nil {
		t.Fatalf("delete leaf: %v", err)
	}
	if err := svc.DeleteCategory(ctx, root.ID); err != nil {
		t.Fatalf("delete root after leaf: %v", err)
	}
	if err := svc.DeleteCategory(ctx, root.ID); err == nil {
		t.Fatal("expected not found for second delete")
	} else if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found code, got %v", err)
	}
}

func TestServiceRejectsParentCycles(t *testing.T) {
	conn := openTestDB(t)
	tx := conn.Begin()
	if tx.Error != nil {
		t.Fatalf("begin tx: %v", tx.Error)
	}
	t.Cleanup(func() {
		_ = tx.Rollback()
	})

	svc := newTestService(t, tx, nil)
	ctx := context.Background()

	a := mustCreateCategory(t, svc, fmt.Sprintf("A %s", uuid.NewString()), nil)
	b := mustCreateCategory(t, svc, fmt.Sprintf("B %s", uuid.NewString()), &a.ID)
	c := mustCreateCategory(t, svc, fmt.Sprintf("C %s", uuid.NewString()), &b.ID)

	if _, err := svc.UpdateCategory(ctx, a.ID, UpdateCategoryInput{ParentID: &a.ID, ParentIDSet: true}); err == nil {
		t.Fatal("expected self parent rejection")
	} else if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeSelfParent {
		t.Fatalf("expected self parent code, got %v", err)
	}

	if _, err := svc.UpdateCategory(ctx, a.ID, UpdateCategoryInput{ParentID: &c.ID, ParentIDSet: true}); err == nil {
		t.Fatal("expected cycle rejection")
	} else if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeCircularReference {
		t.Fatalf("expected circular reference code, got %v", err)
	}

	missing := uuid.New()
	if _, err := svc.UpdateCategory(ctx, a.ID, UpdateCategoryInput{ParentID: &missing, ParentIDSet: true}); err == nil {
		t.Fatal("expected parent not found rejection")
	} else if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeParentNotFound {
		t.Fatalf("expected parent not found code, got %v", err)
	}

	// Moving a subtree sideways stays legal.
	if _, err := svc.UpdateCategory(ctx, c.ID, UpdateCategoryInput{ParentID: &a.ID, ParentIDSet: true}); err != nil {
		t.Fatalf("reparent leaf: %v", err)
	}
}

func TestServiceDeleteGuardsProductsInUse(t *testing.T) {
	conn := openTestDB(t)
	tx := conn.Begin()
	if tx.Error != nil {
		t.Fatalf("begin tx: %v", tx.Error)
	}
	t.Cleanup(func() {
		_ = tx.Rollback()
	})

	repo := NewRepository(tx)
	cat, err := repo.Create(context.Background(), &models.Category{
		Name: fmt.Sprintf("Cotton %s", uuid.NewString()),
		Slug: "cotton",
	})
	if err != nil {
		t.Fatalf("create category: %v", err)
	}

	svc := newTestService(t, tx, map[uuid.UUID]int64{cat.ID: 3})
	if err := svc.DeleteCategory(context.Background(), cat.ID); err == nil {
		t.Fatal("expected in use rejection")
	} else if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeCategoryInUse {
		t.Fatalf("expected category in use code, got %v", err)
	}
}

func TestServiceRenameReslugs(t *testing.T) {
	conn := openTestDB(t)
	tx := conn.Begin()
	if tx.Error != nil {
		t.Fatalf("begin tx: %v", tx.Error)
	}
	t.Cleanup(func() {
		_ = tx.Rollback()
	})

	svc := newTestService(t, tx, nil)
	ctx := context.Background()

	cat := mustCreateCategory(t, svc, fmt.Sprintf("Festive Wear %s", uuid.NewString()), nil)
	newName := fmt.Sprintf("Wedding Collection %s", uuid.NewString())
	updated, err := svc.UpdateCategory(ctx, cat.ID, UpdateCategoryInput{Name: &newName})
	if err != nil {
		t.Fatalf("update category: %v", err)
	}
	if updated.Slug != slug.Make(newName) {
		t.Fatalf("expected slug %q, got %q", slug.Make(newName), updated.Slug)
	}
}

func TestServiceToggleActive(t *testing.T) {
	conn := openTestDB(t)
	tx := conn.Begin()
	if tx.Error != nil {
		t.Fatalf("begin tx: %v", tx.Error)
	}
	t.Cleanup(func() {
		_ = tx.Rollback()
	})

	svc := newTestService(t, tx, nil)
	ctx := context.Background()

	cat := mustCreateCategory(t, svc, fmt.Sprintf("Cotton Saris %s", uuid.NewString()), nil)
	if !cat.IsActive {
		t.Fatalf("new category should start active: %+v", cat)
	}

	hidden, err := svc.ToggleActive(ctx, cat.ID)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if hidden.IsActive {
		t.Fatal("expected category to be hidden after toggle")
	}

	flat, err := svc.ListFlat(ctx, true)
	if err != nil {
		t.Fatalf("list flat: %v", err)
	}
	for _, got := range flat {
		if got.ID == cat.ID {
			t.Fatal("hidden category should not appear in the active list")
		}
	}

	restored, err := svc.ToggleActive(ctx, cat.ID)
	if err != nil {
		t.Fatalf("toggle back: %v", err)
	}
	if !restored.IsActive {
		t.Fatal("expected category to be active again")
	}

	if _, err := svc.ToggleActive(ctx, uuid.New()); err == nil {
		t.Fatal("expected not found for unknown id")
	} else if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found code, got %v", err)
	}
}

func TestServiceListFiltersAndPages(t *testing.T) {
	conn := openTestDB(t)
	tx := conn.Begin()
	if tx.Error != nil {
		t.Fatalf("begin tx: %v", tx.Error)
	}
	t.Cleanup(func() {
		_ = tx.Rollback()
	})

	svc := newTestService(t, tx, nil)
	ctx := context.Background()

	marker := uuid.NewString()
	root := mustCreateCategory(t, svc, fmt.Sprintf("Aroot %s", marker), nil)
	mustCreateCategory(t, svc, fmt.Sprintf("Bchild %s", marker), &root.ID)
	mustCreateCategory(t, svc, fmt.Sprintf("Cchild %s", marker), &root.ID)

	byParent, err := svc.List(ctx, ListFilter{ParentID: &root.ID}, pagination.Params{})
	if err != nil {
		t.Fatalf("list by parent: %v", err)
	}
	if byParent.TotalCount != 2 || len(byParent.Items) != 2 {
		t.Fatalf("expected 2 children, got total=%d items=%d", byParent.TotalCount, len(byParent.Items))
	}
	if byParent.Items[0].Name > byParent.Items[1].Name {
		t.Fatalf("expected name-ordered children, got %q then %q", byParent.Items[0].Name, byParent.Items[1].Name)
	}

	searched, err := svc.List(ctx, ListFilter{Search: marker}, pagination.Params{})
	if err != nil {
		t.Fatalf("list by search: %v", err)
	}
	if searched.TotalCount != 3 {
		t.Fatalf("expected 3 matches for marker, got %d", searched.TotalCount)
	}

	paged, err := svc.List(ctx, ListFilter{Search: marker}, pagination.Params{Page: 2, PageSize: 2})
	if err != nil {
		t.Fatalf("list page 2: %v", err)
	}
	if len(paged.Items) != 1 || paged.PageCount != 2 || paged.TotalCount != 3 {
		t.Fatalf("unexpected page 2: items=%d page_count=%d total=%d", len(paged.Items), paged.PageCount, paged.TotalCount)
	}

	roots, err := svc.List(ctx, ListFilter{Search: marker, RootOnly: true}, pagination.Params{})
	if err != nil {
		t.Fatalf("list roots: %v", err)
	}
	if roots.TotalCount != 1 || roots.Items[0].ID != root.ID {
		t.Fatalf("expected only the root, got total=%d", roots.TotalCount)
	}
}

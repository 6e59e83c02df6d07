package category

import (
	"sort"

	"github.com/google/uuid"

	"github.com/sarishop/sarishop-backend/pkg/db/models"
)

// BuildTree assembles the category forest from a flat list. When activeOnly
// is set, inactive categories are dropped; children whose parent was filtered
// out (or is missing) surface as roots. Siblings are ordered by sort_order,
// then name.
func BuildTree(cats []models.Category, activeOnly bool) []CategoryDTO {
	included := make(map[uuid.UUID]*models.Category, len(cats))
	for i := range cats {
		if activeOnly && !cats[i].IsActive {
			continue
		}
		included[cats[i].ID] = &cats[i]
	}

	childrenOf := make(map[uuid.UUID][]*models.Category)
	var roots []*models.Category
	for _, cat := range included {
		if cat.ParentID != nil {
			if _, ok := included[*cat.ParentID]; ok {
				childrenOf[*cat.ParentID] = append(childrenOf[*cat.ParentID], cat)
				continue
			}
		}
		roots = append(roots, cat)
	}

	var build func(cat *models.Category) CategoryDTO
	build = func(cat *models.Category) CategoryDTO {
		node := *NewCategoryDTO(cat)
		kids := childrenOf[cat.ID]
		sortCategories(kids)
		for _, child := range kids {
			node.Children = append(node.Children, build(child))
		}
		return node
	}

	sortCategories(roots)
	out := make([]CategoryDTO, 0, len(roots))
	for _, root := range roots {
		out = append(out, build(root))
	}
	return out
}

func sortCategories(cats []*models.Category) {
	sort.SliceStable(cats, func(i, j int) bool {
		if cats[i].SortOrder != cats[j].SortOrder {
			return cats[i].SortOrder < cats[j].SortOrder
		}
		return cats[i].Name < cats[j].Name
	})
}

package service

import (
	"context"
	"sort"

	"focal/internal/model"
	"focal/internal/repository"
)

// CategoryOverview is one line of the categories screen.
type CategoryOverview struct {
	Name      string
	Icon      string
	Total     int64
	Recurring int64
}

// CategoryService lists categories together with how they are used.
type CategoryService struct {
	repo *repository.CategoryRepository
}

func NewCategoryService(repo *repository.CategoryRepository) *CategoryService {
	return &CategoryService{repo: repo}
}

func (s *CategoryService) List(ctx context.Context, user *model.User) ([]model.Category, error) {
	return s.repo.ListByUser(ctx, user.ID)
}

// Overview returns every category with its task counts, busiest first. Uncategorized
// tasks are reported under an empty Name when there are any.
func (s *CategoryService) Overview(ctx context.Context, user *model.User) ([]CategoryOverview, error) {
	categories, err := s.repo.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	usage, err := s.repo.Usage(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	byID := make(map[uint]repository.CategoryUsage, len(usage))
	var loose repository.CategoryUsage
	for _, u := range usage {
		if u.CategoryID == nil {
			loose = u
			continue
		}
		byID[*u.CategoryID] = u
	}

	out := make([]CategoryOverview, 0, len(categories)+1)
	for _, cat := range categories {
		icon := cat.Icon
		if icon == "" {
			icon = model.CategoryIcon(cat.Name)
		}
		u := byID[cat.ID]
		out = append(out, CategoryOverview{Name: cat.Name, Icon: icon, Total: u.Total, Recurring: u.Recurring})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Total > out[j].Total })
	if loose.Total > 0 {
		out = append(out, CategoryOverview{Icon: "📁", Total: loose.Total, Recurring: loose.Recurring})
	}
	return out, nil
}

package services

import (
	"database/sql"
	"errors"
	"time"

	"pastehub/pkg/repository"
)

type TextAnalytics struct {
	TotalViews int            `json:"totalViews"`
	ViewsByDay map[string]int `json:"viewsByDay"`
}

type AnalyticsService interface {
	TextStats(textID, authorID int) (TextAnalytics, error)
}

type analyticsService struct {
	texts repository.TextRepository
	views repository.ViewRepository
}

func NewAnalyticsService(texts repository.TextRepository, views repository.ViewRepository) AnalyticsService {
	return &analyticsService{texts: texts, views: views}
}

// TextStats returns the total view count plus a per-day breakdown over the
// last 30 days. Owner-only.
func (s *analyticsService) TextStats(textID, authorID int) (TextAnalytics, error) {
	text, err := s.texts.GetByID(textID)
	if errors.Is(err, sql.ErrNoRows) {
		return TextAnalytics{}, ErrNotFound
	}
	if err != nil {
		return TextAnalytics{}, err
	}
	if text.AuthorID != authorID {
		return TextAnalytics{}, ErrForbidden
	}

	total, err := s.views.CountByText(textID)
	if err != nil {
		return TextAnalytics{}, err
	}

	end := time.Now()
	start := end.AddDate(0, 0, -30)
	recent, err := s.views.ListByPeriod(textID, start, end)
	if err != nil {
		return TextAnalytics{}, err
	}

	byDay := map[string]int{}
	for _, v := range recent {
		byDay[v.ViewedAt.Format("2006-01-02")]++
	}

	return TextAnalytics{TotalViews: total, ViewsByDay: byDay}, nil
}

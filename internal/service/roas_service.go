package service

import (
	"context"
	"fmt"
	"time"

	"github.com/quickcommerce/insights/internal/insighterrors"
	"github.com/quickcommerce/insights/internal/models"
)

// MarketingRepository reads daily marketing spend joined with revenue.
type MarketingRepository interface {
	DailyRoas(ctx context.Context, start, end *time.Time) ([]models.RoasDay, error)
}

// RoasService computes return-on-ad-spend KPIs.
type RoasService struct {
	repo MarketingRepository
}

// NewRoasService creates a RoasService.
func NewRoasService(repo MarketingRepository) *RoasService {
	return &RoasService{repo: repo}
}

// Summary returns the ROAS KPIs for the optional inclusive date range.
func (s *RoasService) Summary(ctx context.Context, start, end *time.Time) (models.RoasSummary, error) {
	if start != nil && end != nil && start.After(*end) {
		return models.RoasSummary{}, insighterrors.NewValidationError("start", "start must not be after end")
	}

	days, err := s.repo.DailyRoas(ctx, start, end)
	if err != nil {
		return models.RoasSummary{}, fmt.Errorf("daily roas: %w", err)
	}

	summary := Summarize(days)
	summary.Start = start
	summary.End = end

	return summary, nil
}

// Summarize totals revenue and spend, averages ROAS over the days that have one and
// collects the days with ROAS below 1.
func Summarize(days []models.RoasDay) models.RoasSummary {
	out := models.RoasSummary{Days: days, LowRoasDays: []models.RoasDay{}}
	if out.Days == nil {
		out.Days = []models.RoasDay{}
	}

	var (
		roasSum   float64
		roasCount int
	)

	for _, d := range days {
		out.TotalRevenue += d.TotalRevenue
		out.TotalSpend += d.TotalSpend

		if d.ROAS == nil {
			continue
		}

		roasSum += *d.ROAS
		roasCount++

		if *d.ROAS < 1 {
			out.LowRoasDays = append(out.LowRoasDays, d)
		}
	}

	if roasCount > 0 {
		avg := roasSum / float64(roasCount)
		profitable := avg >= 1
		out.AverageROAS = &avg
		out.Profitable = &profitable
	}

	return out
}

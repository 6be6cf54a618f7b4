package service

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/unclebandit/battery-reminder/internal/errors"
	"github.com/unclebandit/battery-reminder/internal/model"
)

const DefaultTrendWeeks = 8

// AnalyticsService derives the reporting views from the stored engagement facts.
type AnalyticsService struct {
	Store  AnalyticsStore
	Logger *zap.Logger
	Now    func() time.Time
}

// CampaignEffectiveness lists every campaign newest first, or only
// campaignID when it is not empty.
func (s *AnalyticsService) CampaignEffectiveness(ctx context.Context, campaignID string) ([]model.CampaignEffectiveness, error) {
	rows, err := s.Store.ListEffectiveness(ctx, campaignID)
	if err != nil {
		return nil, appErrors.NewBackend("list campaign effectiveness", err)
	}
	out := make([]model.CampaignEffectiveness, len(rows))
	for i, r := range rows {
		out[i] = Effectiveness(r)
	}
	return out, nil
}

func (s *AnalyticsService) CampaignStats(ctx context.Context, campaignID string) (*model.CampaignEffectiveness, error) {
	rows, err := s.CampaignEffectiveness(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, appErrors.NewCampaignNotFound(campaignID)
	}
	return &rows[0], nil
}

// WeeklyTrends groups the campaigns of the last weeks by the Monday their
// week starts on, newest week first.
func (s *AnalyticsService) WeeklyTrends(ctx context.Context, weeks int) ([]model.WeeklyTrend, error) {
	if weeks <= 0 {
		weeks = DefaultTrendWeeks
	}
	since := TrendCutoff(s.now(), weeks)

	rows, err := s.Store.ListEffectivenessSince(ctx, since)
	if err != nil {
		return nil, appErrors.NewBackend("list weekly trends", err)
	}
	s.Logger.Debug("weekly trends", zap.Time("since", since), zap.Int("campaigns", len(rows)))
	return BuildWeeklyTrends(rows), nil
}

func (s *AnalyticsService) UserEngagement(ctx context.Context) (model.UserEngagementStats, error) {
	rows, err := s.Store.ListUserEngagement(ctx)
	if err != nil {
		return model.UserEngagementStats{}, appErrors.NewBackend("list user engagement", err)
	}
	return CollapseEngagement(rows), nil
}

// ResponseTimes is ordered by average response days, fastest first.
func (s *AnalyticsService) ResponseTimes(ctx context.Context) ([]model.ResponseTime, error) {
	rows, err := s.Store.ListResponseDays(ctx)
	if err != nil {
		return nil, appErrors.NewBackend("list response times", err)
	}
	return AggregateResponseTimes(rows), nil
}

func Effectiveness(c model.CampaignCounts) model.CampaignEffectiveness {
	return model.CampaignEffectiveness{
		CampaignID:            c.CampaignID,
		CampaignType:          c.CampaignType,
		CreatedAt:             c.CreatedAt,
		ThresholdDays:         c.ThresholdDays,
		Status:                c.Status,
		TotalSent:             c.TotalSent,
		TotalFailed:           c.TotalFailed,
		TotalClicks:           c.TotalClicks,
		UniqueClickers:        c.UniqueClickers,
		TotalBatteryChecks:    c.TotalBatteryChecks,
		UniqueBatteryCheckers: c.UniqueBatteryCheckers,
		ClickThroughRate:      percentage(c.TotalClicks, c.TotalSent),
		ConversionRate:        percentage(c.TotalBatteryChecks, c.TotalSent),
	}
}

// WeekStart truncates t to Monday 00:00 UTC of its week.
func WeekStart(t time.Time) time.Time {
	t = t.UTC()
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

// TrendCutoff is today 00:00 UTC minus 7*weeks days.
func TrendCutoff(now time.Time, weeks int) time.Time {
	now = now.UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return today.AddDate(0, 0, -7*weeks)
}

func BuildWeeklyTrends(rows []model.CampaignCounts) []model.WeeklyTrend {
	type bucket struct {
		trend           model.WeeklyTrend
		ctrs            []float64
		conversionRates []float64
	}

	buckets := make(map[time.Time]*bucket)
	for _, r := range rows {
		week := WeekStart(r.CreatedAt)
		b, ok := buckets[week]
		if !ok {
			b = &bucket{trend: model.WeeklyTrend{WeekStart: week}}
			buckets[week] = b
		}
		b.trend.CampaignsCount++
		b.trend.TotalSent += r.TotalSent
		b.trend.TotalClicks += r.TotalClicks
		b.trend.TotalUniqueClickers += r.UniqueClickers
		b.trend.TotalActions += r.TotalBatteryChecks

		e := Effectiveness(r)
		b.ctrs = append(b.ctrs, e.ClickThroughRate)
		b.conversionRates = append(b.conversionRates, e.ConversionRate)
	}

	trends := make([]model.WeeklyTrend, 0, len(buckets))
	for _, b := range buckets {
		t := b.trend
		t.AvgCTR = meanFloat(b.ctrs)
		t.AvgConversionRate = meanFloat(b.conversionRates)
		t.OverallCTR = percentage(t.TotalClicks, t.TotalSent)
		t.OverallConversionRate = percentage(t.TotalActions, t.TotalSent)
		trends = append(trends, t)
	}
	sort.Slice(trends, func(i, j int) bool {
		return trends[i].WeekStart.After(trends[j].WeekStart)
	})
	return trends
}

func CollapseEngagement(rows []model.UserEngagement) model.UserEngagementStats {
	var (
		stats                    model.UserEngagementStats
		received, clicked, acted         int
	)
	stats.TotalUsers = len(rows)
	for _, r := range rows {
		received += r.CampaignsReceived
		clicked += r.CampaignsClicked
		acted += r.CampaignsActedUpon
		if r.CampaignsClicked > 0 {
			stats.UsersWhoClicked++
		}
		if r.CampaignsActedUpon > 0 {
			stats.UsersWhoActed++
		}
	}
	stats.AvgCampaignsPerUser = meanInt(received, stats.TotalUsers)
	stats.AvgClicksPerUser = meanInt(clicked, stats.TotalUsers)
	stats.AvgActionsPerUser = meanInt(acted, stats.TotalUsers)
	stats.UserClickRate = percentage(stats.UsersWhoClicked, stats.TotalUsers)
	stats.UserActionRate = percentage(stats.UsersWhoActed, stats.TotalUsers)
	return stats
}

func AggregateResponseTimes(rows []model.ResponseDays) []model.ResponseTime {
	type acc struct {
		rt  model.ResponseTime
		sum int
	}

	byCampaign := make(map[string]*acc)
	var order []string
	for _, r := range rows {
		a, ok := byCampaign[r.CampaignID]
		if !ok {
			a = &acc{rt: model.ResponseTime{
				CampaignID:      r.CampaignID,
				MinResponseDays: r.DaysAfterNotification,
				MaxResponseDays: r.DaysAfterNotification,
			}}
			byCampaign[r.CampaignID] = a
			order = append(order, r.CampaignID)
		}
		d := r.DaysAfterNotification
		a.sum += d
		a.rt.TotalResponses++
		if d < a.rt.MinResponseDays {
			a.rt.MinResponseDays = d
		}
		if d > a.rt.MaxResponseDays {
			a.rt.MaxResponseDays = d
		}
		if d <= 1 {
			a.rt.SameDayResponses++
		}
		if d <= 7 {
			a.rt.WeekResponses++
		}
	}

	out := make([]model.ResponseTime, 0, len(order))
	for _, id := range order {
		a := byCampaign[id]
		a.rt.AvgResponseDays = meanInt(a.sum, a.rt.TotalResponses)
		out = append(out, a.rt)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].AvgResponseDays < out[j].AvgResponseDays
	})
	return out
}

// SummarizeResponseTimes averages the per-campaign averages and pools the counts.
func SummarizeResponseTimes(rows []model.ResponseTime) model.ResponseTimeSummary {
	if len(rows) == 0 {
		return model.ResponseTimeSummary{}
	}
	summary := model.ResponseTimeSummary{HasData: true}
	avgs := make([]float64, len(rows))
	for i, r := range rows {
		avgs[i] = r.AvgResponseDays
		summary.TotalResponses += r.TotalResponses
		summary.SameDayResponses += r.SameDayResponses
		summary.WeekResponses += r.WeekResponses
	}
	summary.AvgResponseDays = meanFloat(avgs)
	summary.SameDayResponseRate = percentage(summary.SameDayResponses, summary.TotalResponses)
	summary.WeekResponseRate = percentage(summary.WeekResponses, summary.TotalResponses)
	return summary
}

func Overview(rows []model.CampaignEffectiveness) model.CampaignOverview {
	o := model.CampaignOverview{TotalCampaigns: len(rows)}
	for _, r := range rows {
		o.TotalSent += r.TotalSent
		o.TotalClicks += r.TotalClicks
		o.TotalActions += r.TotalBatteryChecks
	}
	o.OverallCTR = percentage(o.TotalClicks, o.TotalSent)
	o.OverallConversionRate = percentage(o.TotalActions, o.TotalSent)
	return o
}

func (s *AnalyticsService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/unclebandit/battery-reminder/internal/model"
	"github.com/unclebandit/battery-reminder/internal/service"
)

// Analytics is implemented by service.AnalyticsService.
type Analytics interface {
	CampaignEffectiveness(ctx context.Context, campaignID string) ([]model.CampaignEffectiveness, error)
	WeeklyTrends(ctx context.Context, weeks int) ([]model.WeeklyTrend, error)
	UserEngagement(ctx context.Context) (model.UserEngagementStats, error)
	ResponseTimes(ctx context.Context) ([]model.ResponseTime, error)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeReport(ctx context.Context, w io.Writer, a Analytics, now time.Time) error {
	rule := strings.Repeat("=", 60)
	section := strings.Repeat("-", 40)

	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "BATTERY NOTIFICATION CAMPAIGN ANALYTICS REPORT")
	fmt.Fprintln(w, rule)

	campaigns, err := a.CampaignEffectiveness(ctx, "")
	if err != nil {
		return err
	}
	overview := service.Overview(campaigns)
	fmt.Fprintln(w, "\nCAMPAIGN OVERVIEW")
	fmt.Fprintln(w, section)
	fmt.Fprintf(w, "Total Campaigns: %d\n", overview.TotalCampaigns)
	if overview.TotalCampaigns > 0 {
		fmt.Fprintf(w, "Total Notifications Sent: %d\n", overview.TotalSent)
		fmt.Fprintf(w, "Total Clicks: %d\n", overview.TotalClicks)
		fmt.Fprintf(w, "Total Battery Checks: %d\n", overview.TotalActions)
		fmt.Fprintf(w, "Overall Click-Through Rate: %.2f%%\n", overview.OverallCTR)
		fmt.Fprintf(w, "Overall Conversion Rate: %.2f%%\n", overview.OverallConversionRate)
	}

	trends, err := a.WeeklyTrends(ctx, service.DefaultTrendWeeks)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "\nWEEKLY TRENDS (Last %d Weeks)\n", service.DefaultTrendWeeks)
	fmt.Fprintln(w, section)
	for _, week := range trends {
		fmt.Fprintf(w, "Week of %s:\n", week.WeekStart.Format("2006-01-02"))
		fmt.Fprintf(w, "  Campaigns: %d\n", week.CampaignsCount)
		fmt.Fprintf(w, "  Notifications: %d\n", week.TotalSent)
		fmt.Fprintf(w, "  Clicks: %d (%d unique)\n", week.TotalClicks, week.TotalUniqueClickers)
		fmt.Fprintf(w, "  Actions: %d\n", week.TotalActions)
		fmt.Fprintf(w, "  CTR: %.2f%% (avg per campaign %.2f%%)\n", week.OverallCTR, week.AvgCTR)
		fmt.Fprintf(w, "  Conversion: %.2f%% (avg per campaign %.2f%%)\n", week.OverallConversionRate, week.AvgConversionRate)
		fmt.Fprintln(w)
	}

	users, err := a.UserEngagement(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, "\nUSER ENGAGEMENT STATISTICS")
	fmt.Fprintln(w, section)
	fmt.Fprintf(w, "Total Users Reached: %d\n", users.TotalUsers)
	fmt.Fprintf(w, "Users Who Clicked: %d (%.2f%%)\n", users.UsersWhoClicked, users.UserClickRate)
	fmt.Fprintf(w, "Users Who Took Action: %d (%.2f%%)\n", users.UsersWhoActed, users.UserActionRate)
	fmt.Fprintf(w, "Avg Campaigns per User: %.2f\n", users.AvgCampaignsPerUser)
	fmt.Fprintf(w, "Avg Clicks per User: %.2f\n", users.AvgClicksPerUser)
	fmt.Fprintf(w, "Avg Actions per User: %.2f\n", users.AvgActionsPerUser)

	responses, err := a.ResponseTimes(ctx)
	if err != nil {
		return err
	}
	summary := service.SummarizeResponseTimes(responses)
	fmt.Fprintln(w, "\nRESPONSE TIME ANALYSIS")
	fmt.Fprintln(w, section)
	if summary.HasData {
		fmt.Fprintf(w, "Average Response Time: %.2f days\n", summary.AvgResponseDays)
		fmt.Fprintf(w, "Same-Day Responses: %d/%d (%.2f%%)\n", summary.SameDayResponses, summary.TotalResponses, summary.SameDayResponseRate)
		fmt.Fprintf(w, "Within-Week Responses: %d/%d (%.2f%%)\n", summary.WeekResponses, summary.TotalResponses, summary.WeekResponseRate)
	} else {
		fmt.Fprintln(w, "No response data available yet.")
	}

	fmt.Fprintln(w, "\n"+rule)
	fmt.Fprintln(w, "Report generated at:", now.UTC().Format(time.RFC3339))
	fmt.Fprintln(w, rule)
	return nil
}

package model

import "time"

// CampaignCounts is one row of the campaign_effectiveness view.
type CampaignCounts struct {
	CampaignID            string    `db:"campaign_id"`
	CampaignType          string    `db:"campaign_type"`
	CreatedAt             time.Time `db:"created_at"`
	ThresholdDays         int       `db:"threshold_days"`
	Status                string    `db:"status"`
	TotalSent             int       `db:"total_sent"`
	TotalFailed           int       `db:"total_failed"`
	TotalClicks           int       `db:"total_clicks"`
	UniqueClickers        int       `db:"unique_clickers"`
	TotalBatteryChecks    int       `db:"total_battery_checks"`
	UniqueBatteryCheckers int       `db:"unique_battery_checkers"`
}

type CampaignEffectiveness struct {
	CampaignID            string    `json:"campaign_id"`
	CampaignType          string    `json:"campaign_type"`
	CreatedAt             time.Time `json:"created_at"`
	ThresholdDays         int       `json:"threshold_days"`
	Status                string    `json:"status"`
	TotalSent             int       `json:"total_sent"`
	TotalFailed           int       `json:"total_failed"`
	TotalClicks           int       `json:"total_clicks"`
	UniqueClickers        int       `json:"unique_clickers"`
	TotalBatteryChecks    int       `json:"total_battery_checks"`
	UniqueBatteryCheckers int       `json:"unique_battery_checkers"`
	ClickThroughRate      float64   `json:"click_through_rate"`
	ConversionRate        float64   `json:"conversion_rate"`
}

// WeeklyTrend carries both the mean of per-campaign rates (Avg*) and the
// pooled rate over the whole week (Overall*). They are different numbers.
type WeeklyTrend struct {
	WeekStart             time.Time `json:"week_start"`
	CampaignsCount        int       `json:"campaigns_count"`
	TotalSent             int       `json:"total_sent"`
	TotalClicks           int       `json:"total_clicks"`
	TotalUniqueClickers   int       `json:"total_unique_clickers"`
	TotalActions          int       `json:"total_actions"`
	AvgCTR                float64   `json:"avg_ctr"`
	AvgConversionRate     float64   `json:"avg_conversion_rate"`
	OverallCTR            float64   `json:"overall_ctr"`
	OverallConversionRate float64   `json:"overall_conversion_rate"`
}

// UserEngagement is the per-user row before it is collapsed into population stats.
type UserEngagement struct {
	UserID             int64 `db:"user_id"`
	CampaignsReceived  int   `db:"campaigns_received"`
	CampaignsClicked   int   `db:"campaigns_clicked"`
	CampaignsActedUpon int   `db:"campaigns_acted_upon"`
}

type UserEngagementStats struct {
	TotalUsers          int     `json:"total_users"`
	AvgCampaignsPerUser float64 `json:"avg_campaigns_per_user"`
	AvgClicksPerUser    float64 `json:"avg_clicks_per_user"`
	AvgActionsPerUser   float64 `json:"avg_actions_per_user"`
	UsersWhoClicked     int     `json:"users_who_clicked"`
	UsersWhoActed       int     `json:"users_who_acted"`
	UserClickRate       float64 `json:"user_click_rate"`
	UserActionRate      float64 `json:"user_action_rate"`
}

// ResponseDays is a single conversion's delay, keyed by campaign.
type ResponseDays struct {
	CampaignID            string `db:"campaign_id"`
	DaysAfterNotification int    `db:"days_after_notification"`
}

type ResponseTime struct {
	CampaignID       string  `json:"campaign_id"`
	AvgResponseDays  float64 `json:"avg_response_days"`
	MinResponseDays  int     `json:"min_response_days"`
	MaxResponseDays  int     `json:"max_response_days"`
	TotalResponses   int     `json:"total_responses"`
	SameDayResponses int     `json:"same_day_responses"`
	WeekResponses    int     `json:"week_responses"`
}

type ResponseTimeSummary struct {
	HasData             bool    `json:"has_data"`
	AvgResponseDays     float64 `json:"avg_response_days"`
	TotalResponses      int     `json:"total_responses"`
	SameDayResponses    int     `json:"same_day_responses"`
	WeekResponses       int     `json:"week_responses"`
	SameDayResponseRate float64 `json:"same_day_response_rate"`
	WeekResponseRate    float64 `json:"week_response_rate"`
}

type CampaignOverview struct {
	TotalCampaigns        int     `json:"total_campaigns"`
	TotalSent             int     `json:"total_sent"`
	TotalClicks           int     `json:"total_clicks"`
	TotalActions          int     `json:"total_actions"`
	OverallCTR            float64 `json:"overall_ctr"`
	OverallConversionRate float64 `json:"overall_conversion_rate"`
}

package repository

import "github.com/unclebandit/battery-reminder/internal/service"

var (
	_ service.CampaignStore   = (*CampaignRepository)(nil)
	_ service.DeliveryStore   = (*DeliveryRepository)(nil)
	_ service.EngagementStore = (*EngagementRepository)(nil)
	_ service.RecipientSource = (*MappingRepository)(nil)
	_ service.AnalyticsStore  = (*AnalyticsRepository)(nil)
)

package services

import (
	"context"
	"time"

	"lifelink/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// DashboardService handles dashboard operations
type DashboardService struct {
	db *gorm.DB
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(db *gorm.DB) *DashboardService {
	return &DashboardService{db: db}
}

// ============================================================
// Admin Dashboard
// ============================================================

// AdminDashboardData represents admin dashboard data
type AdminDashboardData struct {
	// User Statistics
	TotalUsers      int64 `json:"total_users"`
	TotalDonors     int64 `json:"total_donors"`
	TotalRecipients int64 `json:"total_recipients"`
	AvailableDonors int64 `json:"available_donors"`

	// Request Statistics
	TotalRequests    int64 `json:"total_requests"`
	OpenRequests     int64 `json:"open_requests"`
	ClosedRequests   int64 `json:"closed_requests"`
	CriticalRequests int64 `json:"critical_requests"`

	// Donation Statistics
	TotalDonations       int64 `json:"total_donations"`
	TotalUnitsDonated    int64 `json:"total_units_donated"`
	PendingVerifications int64 `json:"pending_verifications"`
	ExpiredVerifications int64 `json:"expired_verifications"`

	// Monthly Statistics
	DonationsThisMonth int64 `json:"donations_this_month"`
	RequestsThisMonth  int64 `json:"requests_this_month"`

	// Demand per blood type
	OpenUnitsByBloodType []BloodTypeDemand `json:"open_units_by_blood_type"`

	// Top Donors
	TopDonors []DonorSummary `json:"top_donors"`

	// Recent Activity
	RecentRequests []RequestSummary `json:"recent_requests"`
}

// DonorSummary represents a donor leaderboard entry
type DonorSummary struct {
	DonorID      string `json:"donor_id"`
	FullName     string `json:"full_name"`
	BloodType    string `json:"blood_type"`
	Donations    int64  `json:"donations"`
	UnitsDonated int64  `json:"units_donated"`
}

// BloodTypeDemand represents outstanding demand for one blood type
type BloodTypeDemand struct {
	BloodType      string `json:"blood_type"`
	OpenRequests   int64  `json:"open_requests"`
	UnitsRemaining int64  `json:"units_remaining"`
}

// RequestSummary represents a blood request summary
type RequestSummary struct {
	ID             string    `json:"id"`
	BloodType      string    `json:"blood_type"`
	UnitsRequired  int       `json:"units_required"`
	UnitsFulfilled int       `json:"units_fulfilled"`
	Urgency        string    `json:"urgency"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
}

// GetAdminDashboard returns admin dashboard data
func (s *DashboardService) GetAdminDashboard(ctx context.Context) (*AdminDashboardData, error) {
	data := &AdminDashboardData{}

	// User counts by role
	s.db.WithContext(ctx).Table("users").Where("deleted_at IS NULL").Count(&data.TotalUsers)
	s.db.WithContext(ctx).Table("users").Where("role = ? AND deleted_at IS NULL", models.RoleDonor).Count(&data.TotalDonors)
	s.db.WithContext(ctx).Table("users").Where("role = ? AND deleted_at IS NULL", models.RoleRecipient).Count(&data.TotalRecipients)
	s.db.WithContext(ctx).Table("users").
		Where("role = ? AND is_available = ? AND is_active = ? AND deleted_at IS NULL", models.RoleDonor, true, true).
		Count(&data.AvailableDonors)

	// Request counts
	s.db.WithContext(ctx).Table("blood_requests").Count(&data.TotalRequests)
	s.db.WithContext(ctx).Table("blood_requests").Where("status = ?", models.RequestStatusOpen).Count(&data.OpenRequests)
	s.db.WithContext(ctx).Table("blood_requests").Where("status = ?", models.RequestStatusClosed).Count(&data.ClosedRequests)
	s.db.WithContext(ctx).Table("blood_requests").
		Where("status = ? AND urgency = ?", models.RequestStatusOpen, models.UrgencyCritical).
		Count(&data.CriticalRequests)

	// Donation counts (finalized only)
	s.db.WithContext(ctx).Table("donations").Where("donation_date IS NOT NULL").Count(&data.TotalDonations)
	s.db.WithContext(ctx).Table("donations").
		Where("donation_date IS NOT NULL").
		Select("COALESCE(SUM(units_donated), 0)").
		Scan(&data.TotalUnitsDonated)

	// Verification counts
	s.db.WithContext(ctx).Table("donation_verifications").
		Where("status = ?", models.VerificationStatusPending).
		Count(&data.PendingVerifications)
	s.db.WithContext(ctx).Table("donation_verifications").
		Where("status = ?", models.VerificationStatusExpired).
		Count(&data.ExpiredVerifications)

	// This month statistics
	startOfMonth := time.Now().AddDate(0, 0, -time.Now().Day()+1).Truncate(24 * time.Hour)
	s.db.WithContext(ctx).Table("donations").
		Where("donation_date IS NOT NULL AND donation_date >= ?", startOfMonth).
		Count(&data.DonationsThisMonth)
	s.db.WithContext(ctx).Table("blood_requests").
		Where("created_at >= ?", startOfMonth).
		Count(&data.RequestsThisMonth)

	// Outstanding demand per blood type
	var demand []struct {
		BloodType      string
		OpenRequests   int64
		UnitsRemaining int64
	}
	s.db.WithContext(ctx).Table("blood_requests").
		Select(`
			blood_type,
			COUNT(*) as open_requests,
			COALESCE(SUM(units_required - units_fulfilled), 0) as units_remaining
		`).
		Where("status = ?", models.RequestStatusOpen).
		Group("blood_type").
		Order("units_remaining DESC").
		Scan(&demand)

	data.OpenUnitsByBloodType = make([]BloodTypeDemand, len(demand))
	for i, d := range demand {
		data.OpenUnitsByBloodType[i] = BloodTypeDemand{
			BloodType:      d.BloodType,
			OpenRequests:   d.OpenRequests,
			UnitsRemaining: d.UnitsRemaining,
		}
	}

	// Top donors by verified units
	var topDonors []struct {
		DonorID      string
		FullName     string
		BloodType    string
		Donations    int64
		UnitsDonated int64
	}
	s.db.WithContext(ctx).Table("donations").
		Select(`
			donations.donor_id,
			users.full_name,
			users.blood_type,
			COUNT(*) as donations,
			COALESCE(SUM(donations.units_donated), 0) as units_donated
		`).
		Joins("JOIN users ON users.id = donations.donor_id").
		Where("donations.donation_date IS NOT NULL").
		Group("donations.donor_id, users.full_name, users.blood_type").
		Order("units_donated DESC").
		Limit(5).
		Scan(&topDonors)

	data.TopDonors = make([]DonorSummary, len(topDonors))
	for i, d := range topDonors {
		data.TopDonors[i] = DonorSummary{
			DonorID:      d.DonorID,
			FullName:     d.FullName,
			BloodType:    d.BloodType,
			Donations:    d.Donations,
			UnitsDonated: d.UnitsDonated,
		}
	}

	// Recent requests
	var recent []struct {
		ID             string
		BloodType      string
		UnitsRequired  int
		UnitsFulfilled int
		Urgency        string
		Status         string
		CreatedAt      time.Time
	}
	s.db.WithContext(ctx).Table("blood_requests").
		Select("id, blood_type, units_required, units_fulfilled, urgency, status, created_at").
		Order("created_at DESC").
		Limit(10).
		Scan(&recent)

	data.RecentRequests = make([]RequestSummary, len(recent))
	for i, r := range recent {
		data.RecentRequests[i] = RequestSummary{
			ID:             r.ID,
			BloodType:      r.BloodType,
			UnitsRequired:  r.UnitsRequired,
			UnitsFulfilled: r.UnitsFulfilled,
			Urgency:        r.Urgency,
			Status:         r.Status,
			CreatedAt:      r.CreatedAt,
		}
	}

	return data, nil
}

// ============================================================
// Donor Dashboard
// ============================================================

// DonorDashboardData represents donor dashboard data
type DonorDashboardData struct {
	TotalDonations    int64      `json:"total_donations"`
	TotalUnitsDonated int64      `json:"total_units_donated"`
	LastDonation      *time.Time `json:"last_donation"`
	UnreadMessages    int64      `json:"unread_messages"`

	// Open requests matching the donor's blood type
	MatchingRequests []RequestSummary `json:"matching_requests"`
}

// GetDonorDashboard returns donor dashboard data
func (s *DashboardService) GetDonorDashboard(ctx context.Context, donorID string) (*DonorDashboardData, error) {
	var donor models.User
	if err := s.db.WithContext(ctx).Where("id = ?", donorID).First(&donor).Error; err != nil {
		return nil, err
	}

	data := &DonorDashboardData{
		LastDonation: donor.LastDonation,
	}

	s.db.WithContext(ctx).Table("donations").
		Where("donor_id = ? AND donation_date IS NOT NULL", donorID).
		Count(&data.TotalDonations)

	s.db.WithContext(ctx).Table("donations").
		Where("donor_id = ? AND donation_date IS NOT NULL", donorID).
		Select("COALESCE(SUM(units_donated), 0)").
		Scan(&data.TotalUnitsDonated)

	s.db.WithContext(ctx).Table("messages").
		Where("receiver_id = ? AND is_read = ?", donorID, false).
		Count(&data.UnreadMessages)

	// Open requests for the donor's blood type, most urgent first
	var matching []struct {
		ID             string
		BloodType      string
		UnitsRequired  int
		UnitsFulfilled int
		Urgency        string
		Status         string
		CreatedAt      time.Time
	}
	s.db.WithContext(ctx).Table("blood_requests").
		Select("id, blood_type, units_required, units_fulfilled, urgency, status, created_at").
		Where("status = ? AND blood_type = ?", models.RequestStatusOpen, donor.BloodType).
		Order(`
			CASE urgency
				WHEN 'CRITICAL' THEN 0
				WHEN 'HIGH' THEN 1
				WHEN 'MEDIUM' THEN 2
				ELSE 3
			END, created_at ASC
		`).
		Limit(10).
		Scan(&matching)

	data.MatchingRequests = make([]RequestSummary, len(matching))
	for i, r := range matching {
		data.MatchingRequests[i] = RequestSummary{
			ID:             r.ID,
			BloodType:      r.BloodType,
			UnitsRequired:  r.UnitsRequired,
			UnitsFulfilled: r.UnitsFulfilled,
			Urgency:        r.Urgency,
			Status:         r.Status,
			CreatedAt:      r.CreatedAt,
		}
	}

	return data, nil
}

// ============================================================
// Recipient Dashboard
// ============================================================

// RecipientDashboardData represents recipient dashboard data
type RecipientDashboardData struct {
	TotalRequests        int64 `json:"total_requests"`
	OpenRequests         int64 `json:"open_requests"`
	ClosedRequests       int64 `json:"closed_requests"`
	UnitsReceived        int64 `json:"units_received"`
	PendingVerifications int64 `json:"pending_verifications"`
	UnreadMessages       int64 `json:"unread_messages"`

	// My requests, newest first
	Requests []RequestSummary `json:"requests"`
}

// GetRecipientDashboard returns recipient dashboard data
func (s *DashboardService) GetRecipientDashboard(ctx context.Context, recipientID string) (*RecipientDashboardData, error) {
	data := &RecipientDashboardData{}

	s.db.WithContext(ctx).Table("blood_requests").
		Where("requester_id = ?", recipientID).
		Count(&data.TotalRequests)

	s.db.WithContext(ctx).Table("blood_requests").
		Where("requester_id = ? AND status = ?", recipientID, models.RequestStatusOpen).
		Count(&data.OpenRequests)

	s.db.WithContext(ctx).Table("blood_requests").
		Where("requester_id = ? AND status = ?", recipientID, models.RequestStatusClosed).
		Count(&data.ClosedRequests)

	s.db.WithContext(ctx).Table("blood_requests").
		Where("requester_id = ?", recipientID).
		Select("COALESCE(SUM(units_fulfilled), 0)").
		Scan(&data.UnitsReceived)

	s.db.WithContext(ctx).Table("donation_verifications").
		Where("recipient_id = ? AND status = ?", recipientID, models.VerificationStatusPending).
		Count(&data.PendingVerifications)

	s.db.WithContext(ctx).Table("messages").
		Where("receiver_id = ? AND is_read = ?", recipientID, false).
		Count(&data.UnreadMessages)

	var requests []struct {
		ID             string
		BloodType      string
		UnitsRequired  int
		UnitsFulfilled int
		Urgency        string
		Status         string
		CreatedAt      time.Time
	}
	s.db.WithContext(ctx).Table("blood_requests").
		Select("id, blood_type, units_required, units_fulfilled, urgency, status, created_at").
		Where("requester_id = ?", recipientID).
		Order("created_at DESC").
		Limit(10).
		Scan(&requests)

	data.Requests = make([]RequestSummary, len(requests))
	for i, r := range requests {
		data.Requests[i] = RequestSummary{
			ID:             r.ID,
			BloodType:      r.BloodType,
			UnitsRequired:  r.UnitsRequired,
			UnitsFulfilled: r.UnitsFulfilled,
			Urgency:        r.Urgency,
			Status:         r.Status,
			CreatedAt:      r.CreatedAt,
		}
	}

	return data, nil
}

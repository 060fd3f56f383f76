package services

import (
	"bytes"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"time"

	"lifelink/internal/adapters/persistence/models"
)

// NotificationService handles LINE notifications for the coordination team
type NotificationService struct {
	lineNotifyToken string
	enabled         bool
}

// NewNotificationService creates a new notification service
func NewNotificationService() *NotificationService {
	token := os.Getenv("LINE_NOTIFY_TOKEN")
	return &NotificationService{
		lineNotifyToken: token,
		enabled:         token != "",
	}
}

// IsEnabled checks if notification is enabled
func (s *NotificationService) IsEnabled() bool {
	return s.enabled
}

// sendLineNotify sends a message via LINE Notify
func (s *NotificationService) sendLineNotify(message string) error {
	if !s.enabled {
		return nil
	}

	data := url.Values{}
	data.Set("message", message)

	req, err := http.NewRequest("POST", "https://notify-api.line.me/api/notify", bytes.NewBufferString(data.Encode()))
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+s.lineNotifyToken)

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return nil
}

// NotifyNewRequest sends notification for a new blood request
func (s *NotificationService) NotifyNewRequest(request *models.BloodRequest, requesterName string) {
	message := fmt.Sprintf(`
🆕 New blood request

🩸 Blood type: %s
📦 Units: %d
🚨 Urgency: %s
👤 Requester: %s
🏥 Hospital: %s`,
		request.BloodType,
		request.UnitsRequired,
		request.Urgency,
		requesterName,
		request.HospitalName,
	)

	s.sendLineNotify(message)
}

// NotifyDonationVerified sends notification when a donation is verified
func (s *NotificationService) NotifyDonationVerified(request *models.BloodRequest, units int) {
	message := fmt.Sprintf(`
✅ Donation verified

🩸 Blood type: %s
📦 Units received: %d
📋 Request: %s`,
		request.BloodType,
		units,
		request.ID,
	)

	s.sendLineNotify(message)
}

// NotifyRequestClosed sends notification when a request is fully fulfilled
func (s *NotificationService) NotifyRequestClosed(request *models.BloodRequest) {
	message := fmt.Sprintf(`
🎉 Request fulfilled

🩸 Blood type: %s
📦 Units required: %d
📋 Request: %s`,
		request.BloodType,
		request.UnitsRequired,
		request.ID,
	)

	s.sendLineNotify(message)
}

// NotifyCriticalRequest sends a reminder for an open CRITICAL request
func (s *NotificationService) NotifyCriticalRequest(request *models.BloodRequest) {
	remaining := request.UnitsRequired - request.UnitsFulfilled
	message := fmt.Sprintf(`
🚨 CRITICAL request still open

🩸 Blood type: %s
📦 Units remaining: %d
🏥 Hospital: %s
📋 Request: %s`,
		request.BloodType,
		remaining,
		request.HospitalName,
		request.ID,
	)

	s.sendLineNotify(message)
}

// NotifyNewEvent sends notification for a new blood drive event
func (s *NotificationService) NotifyNewEvent(event *models.BloodDriveEvent, clubName string) {
	message := fmt.Sprintf(`
📅 New blood drive event

📌 %s
🏛️ Club: %s
📆 Date: %s
📍 Venue: %s
🎯 Target donors: %d`,
		event.Title,
		clubName,
		event.EventDate.Format("2006-01-02"),
		event.VenueName,
		event.TargetDonors,
	)

	s.sendLineNotify(message)
}

package dto

import "github.com/SaltaGet/Back-SIJAC/internal/models"

// OpenSlotDTO is what the public booking page sees of a slot: no client data.
type OpenSlotDTO struct {
	ID        string `json:"id"`
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

func OpenSlots(aps []models.Appointment) []OpenSlotDTO {
	out := make([]OpenSlotDTO, 0, len(aps))
	for _, ap := range aps {
		out = append(out, OpenSlotDTO{
			ID:        ap.ID,
			Date:      ap.Date.Format("2006-01-02"),
			StartTime: ap.StartTime,
			EndTime:   ap.EndTime,
		})
	}
	return out
}

// ReservationDTO answers a reservation or confirmation.
type ReservationDTO struct {
	ID        string `json:"id"`
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	State     string `json:"state"`
}

func Reservation(ap *models.Appointment) ReservationDTO {
	return ReservationDTO{
		ID:        ap.ID,
		Date:      ap.Date.Format("2006-01-02"),
		StartTime: ap.StartTime,
		EndTime:   ap.EndTime,
		State:     ap.State,
	}
}

// StaffDTO is the public card of a staff member.
type StaffDTO struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Specialty string `json:"specialty"`
	ImageURL  string `json:"image_url,omitempty"`
}

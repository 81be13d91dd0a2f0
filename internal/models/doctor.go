package models

// ConsultationFee is the price of one consultation type.
type ConsultationFee struct {
	Type     ConsultationType `json:"type"`
	Amount   int64            `json:"amount"` // minor currency units
	Currency string           `json:"currency"`
}

// DoctorProfile is the provider profile consumed by the booking flow.
type DoctorProfile struct {
	ID                string            `json:"id"`
	Name              string            `json:"name"`
	Specialty         string            `json:"specialty"`
	City              string            `json:"city,omitempty"`
	ConsultationTypes []ConsultationType `json:"consultation_types"`
	Fees              []ConsultationFee `json:"fees,omitempty"`
	Timezone          string            `json:"timezone,omitempty"`
}

// Offers reports whether the doctor offers the given consultation type.
func (p DoctorProfile) Offers(ct ConsultationType) bool {
	for _, offered := range p.ConsultationTypes {
		if offered.Matches(ct) {
			return true
		}
	}
	return false
}
